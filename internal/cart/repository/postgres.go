package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fekuna/omnipos-commerce-service/internal/database/postgres"
	"github.com/fekuna/omnipos-commerce-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Cart, error) {
	var c model.Cart
	query := `SELECT id, user_id, created_at, updated_at FROM carts WHERE id = $1`
	if err := postgres.Conn(ctx, r.DB).GetContext(ctx, &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *PGRepository) FindByUserID(ctx context.Context, userID string) (*model.Cart, error) {
	var c model.Cart
	query := `SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`
	if err := postgres.Conn(ctx, r.DB).GetContext(ctx, &c, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *PGRepository) Create(ctx context.Context, cart *model.Cart) (*model.Cart, error) {
	query := `
        INSERT INTO carts (id, user_id, created_at, updated_at)
        VALUES (:id, :user_id, :created_at, :updated_at)
        ON CONFLICT (user_id) DO NOTHING
    `
	if _, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, cart); err != nil {
		return nil, err
	}
	// A concurrent first request may have won the insert.
	return r.FindByUserID(ctx, cart.UserID)
}

func (r *PGRepository) Touch(ctx context.Context, cartID string) error {
	query := `UPDATE carts SET updated_at = $1 WHERE id = $2`
	_, err := postgres.Conn(ctx, r.DB).ExecContext(ctx, query, time.Now(), cartID)
	return err
}

func (r *PGRepository) FindItemByID(ctx context.Context, cartID, itemID string) (*model.CartItem, error) {
	var item model.CartItem
	query := `SELECT * FROM cart_items WHERE id = $1 AND cart_id = $2`
	if err := postgres.Conn(ctx, r.DB).GetContext(ctx, &item, query, itemID, cartID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *PGRepository) FindItemByProduct(ctx context.Context, cartID, productID string) (*model.CartItem, error) {
	var item model.CartItem
	query := `SELECT * FROM cart_items WHERE cart_id = $1 AND product_id = $2`
	if err := postgres.Conn(ctx, r.DB).GetContext(ctx, &item, query, cartID, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *PGRepository) InsertItem(ctx context.Context, item *model.CartItem) error {
	query := `
        INSERT INTO cart_items (
            id, cart_id, product_id, quantity, unit_price, discount, discount_type,
            gst_amount, status, created_at, updated_at
        )
        VALUES (
            :id, :cart_id, :product_id, :quantity, :unit_price, :discount, :discount_type,
            :gst_amount, :status, :created_at, :updated_at
        )
    `
	_, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, item)
	return err
}

func (r *PGRepository) UpdateItem(ctx context.Context, item *model.CartItem) error {
	query := `
        UPDATE cart_items SET
            quantity = :quantity,
            unit_price = :unit_price,
            discount = :discount,
            discount_type = :discount_type,
            gst_amount = :gst_amount,
            status = :status,
            updated_at = :updated_at
        WHERE id = :id AND cart_id = :cart_id
    `
	_, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, item)
	return err
}

func (r *PGRepository) ListItems(ctx context.Context, cartID string, statuses ...model.CartItemStatus) ([]model.CartItem, error) {
	items := []model.CartItem{}
	conn := postgres.Conn(ctx, r.DB)

	if len(statuses) == 0 {
		query := `SELECT * FROM cart_items WHERE cart_id = $1 ORDER BY created_at`
		if err := conn.SelectContext(ctx, &items, query, cartID); err != nil {
			return nil, err
		}
		return items, nil
	}

	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	query := `SELECT * FROM cart_items WHERE cart_id = $1 AND status = ANY($2) ORDER BY created_at`
	if err := conn.SelectContext(ctx, &items, query, cartID, pq.Array(names)); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PGRepository) UpdateStatusByCart(ctx context.Context, cartID string, from, to model.CartItemStatus) (int64, error) {
	query := `UPDATE cart_items SET status = $1, updated_at = $2 WHERE cart_id = $3 AND status = $4`
	res, err := postgres.Conn(ctx, r.DB).ExecContext(ctx, query, to, time.Now(), cartID, from)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PGRepository) UpdateStatusByIDs(ctx context.Context, cartID string, itemIDs []string, to model.CartItemStatus) error {
	if len(itemIDs) == 0 {
		return nil
	}
	query := `UPDATE cart_items SET status = $1, updated_at = $2 WHERE cart_id = $3 AND id = ANY($4)`
	_, err := postgres.Conn(ctx, r.DB).ExecContext(ctx, query, to, time.Now(), cartID, pq.Array(itemIDs))
	return err
}
