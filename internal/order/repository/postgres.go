package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-commerce-service/internal/database/postgres"
	"github.com/fekuna/omnipos-commerce-service/internal/model"
	"github.com/fekuna/omnipos-commerce-service/internal/order/dto"
	"github.com/jmoiron/sqlx"
)

// sortColumns maps accepted sort fields to columns. Anything else never reaches SQL.
var sortColumns = map[string]string{
	"created_at":   "created_at",
	"updated_at":   "updated_at",
	"final_amount": "final_amount",
	"total_amount": "total_amount",
	"status":       "status",
}

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, o *model.Order) error {
	query := `
        INSERT INTO orders (
            id, user_id, cart_id, status, total_amount, discount_amount, discount_type,
            gst_amount, final_amount, currency, gst_number, created_at, updated_at
        )
        VALUES (
            :id, :user_id, :cart_id, :status, :total_amount, :discount_amount, :discount_type,
            :gst_amount, :final_amount, :currency, :gst_number, :created_at, :updated_at
        )
    `
	_, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, o)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string, forUpdate bool) (*model.Order, error) {
	var o model.Order
	query := `SELECT * FROM orders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	if err := postgres.Conn(ctx, r.DB).GetContext(ctx, &o, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *PGRepository) Update(ctx context.Context, o *model.Order) error {
	query := `
        UPDATE orders
        SET status = :status,
            total_amount = :total_amount,
            discount_amount = :discount_amount,
            discount_type = :discount_type,
            gst_amount = :gst_amount,
            final_amount = :final_amount,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, o)
	return err
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.OrderFilters) ([]model.Order, int, error) {
	orders := []model.Order{}
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.UserID != "" {
		conditions = append(conditions, "user_id = :user_id")
		args["user_id"] = f.UserID
	}
	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at <= :end_date")
		args["end_date"] = *f.EndDate
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	conn := postgres.Conn(ctx, r.DB)

	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM orders"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	if err := conn.GetContext(ctx, &count, conn.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[f.SortField]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if f.SortDesc {
		direction = "DESC"
	}

	query := fmt.Sprintf("SELECT * FROM orders%s ORDER BY %s %s, id", whereClause, column, direction)
	if f.Limit > 0 {
		offset := (f.Page - 1) * f.Limit
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, offset)
	}

	listQuery, listArgs, err := sqlx.Named(query, args)
	if err != nil {
		return nil, 0, err
	}
	if err := conn.SelectContext(ctx, &orders, conn.Rebind(listQuery), listArgs...); err != nil {
		return nil, 0, err
	}

	return orders, count, nil
}

func (r *PGRepository) InsertItems(ctx context.Context, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	query := `
        INSERT INTO order_items (
            id, order_id, product_id, product_name, quantity, unit_price,
            discount_amount, discount_type, gst_amount, status, created_at, updated_at
        )
        VALUES (
            :id, :order_id, :product_id, :product_name, :quantity, :unit_price,
            :discount_amount, :discount_type, :gst_amount, :status, :created_at, :updated_at
        )
    `
	_, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, items)
	return err
}

func (r *PGRepository) FindItems(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	items := []model.OrderItem{}
	query := `SELECT * FROM order_items WHERE order_id = $1 ORDER BY created_at, id`
	if err := postgres.Conn(ctx, r.DB).SelectContext(ctx, &items, query, orderID); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PGRepository) FindItem(ctx context.Context, orderID, itemID string) (*model.OrderItem, error) {
	var item model.OrderItem
	query := `SELECT * FROM order_items WHERE id = $1 AND order_id = $2`
	if err := postgres.Conn(ctx, r.DB).GetContext(ctx, &item, query, itemID, orderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *PGRepository) UpdateItem(ctx context.Context, item *model.OrderItem) error {
	query := `
        UPDATE order_items
        SET quantity = :quantity,
            status = :status,
            updated_at = :updated_at
        WHERE id = :id AND order_id = :order_id
    `
	_, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, item)
	return err
}

func (r *PGRepository) UpdateItemsStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	query := `
        UPDATE order_items
        SET status = $1, updated_at = now()
        WHERE order_id = $2 AND status <> 'cancelled'
    `
	_, err := postgres.Conn(ctx, r.DB).ExecContext(ctx, query, status, orderID)
	return err
}

func (r *PGRepository) AppendStatusLog(ctx context.Context, entry *model.OrderStatusLog) error {
	query := `
        INSERT INTO order_status_logs (id, order_id, status, comment, user_id, created_at)
        VALUES (:id, :order_id, :status, :comment, :user_id, :created_at)
    `
	_, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, entry)
	return err
}

func (r *PGRepository) FindStatusLog(ctx context.Context, orderID string) ([]model.OrderStatusLog, error) {
	entries := []model.OrderStatusLog{}
	query := `SELECT * FROM order_status_logs WHERE order_id = $1 ORDER BY created_at, id`
	if err := postgres.Conn(ctx, r.DB).SelectContext(ctx, &entries, query, orderID); err != nil {
		return nil, err
	}
	return entries, nil
}
