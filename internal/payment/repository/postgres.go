package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-commerce-service/internal/database/postgres"
	"github.com/fekuna/omnipos-commerce-service/internal/model"
	"github.com/fekuna/omnipos-commerce-service/internal/payment/dto"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var sortColumns = map[string]string{
	"created_at":  "created_at",
	"updated_at":  "updated_at",
	"amount_paid": "amount_paid",
	"status":      "status",
}

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, p *model.Payment) error {
	query := `
        INSERT INTO payments (
            id, order_id, user_id, amount_paid, currency, method, payment_type, gateway,
            payment_ref, payment_url, expiry_time, status, gst_number, gst_amount, metadata,
            created_at, updated_at
        )
        VALUES (
            :id, :order_id, :user_id, :amount_paid, :currency, :method, :payment_type, :gateway,
            :payment_ref, :payment_url, :expiry_time, :status, :gst_number, :gst_amount, :metadata,
            :created_at, :updated_at
        )
    `
	_, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, p)
	return err
}

func (r *PGRepository) findOne(ctx context.Context, column, value string, forUpdate bool) (*model.Payment, error) {
	var p model.Payment
	query := fmt.Sprintf(`SELECT * FROM payments WHERE %s = $1`, column)
	if forUpdate {
		query += ` FOR UPDATE`
	}
	if err := postgres.Conn(ctx, r.DB).GetContext(ctx, &p, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string, forUpdate bool) (*model.Payment, error) {
	return r.findOne(ctx, "id", id, forUpdate)
}

func (r *PGRepository) FindByRef(ctx context.Context, ref string, forUpdate bool) (*model.Payment, error) {
	return r.findOne(ctx, "payment_ref", ref, forUpdate)
}

func (r *PGRepository) Update(ctx context.Context, p *model.Payment) error {
	query := `
        UPDATE payments
        SET status = :status,
            metadata = :metadata,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, p)
	return err
}

func (r *PGRepository) FindByOrderIDs(ctx context.Context, orderIDs []string) ([]model.Payment, error) {
	payments := []model.Payment{}
	if len(orderIDs) == 0 {
		return payments, nil
	}
	query := `SELECT * FROM payments WHERE order_id = ANY($1) ORDER BY created_at DESC, id`
	if err := postgres.Conn(ctx, r.DB).SelectContext(ctx, &payments, query, pq.Array(orderIDs)); err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.PaymentFilters) ([]model.Payment, int, error) {
	payments := []model.Payment{}
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
	if f.Method != "" {
		conditions = append(conditions, "method = :method")
		args["method"] = f.Method
	}
	if f.Gateway != "" {
		conditions = append(conditions, "gateway = :gateway")
		args["gateway"] = f.Gateway
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

	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM payments"+whereClause, args)
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

	query := fmt.Sprintf("SELECT * FROM payments%s ORDER BY %s %s, id", whereClause, column, direction)
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, (f.Page-1)*f.Limit)
	}

	listQuery, listArgs, err := sqlx.Named(query, args)
	if err != nil {
		return nil, 0, err
	}
	if err := conn.SelectContext(ctx, &payments, conn.Rebind(listQuery), listArgs...); err != nil {
		return nil, 0, err
	}

	return payments, count, nil
}

func (r *PGRepository) HasOpenPayment(ctx context.Context, orderID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM payments WHERE order_id = $1 AND status IN ('pending', 'processing'))`
	if err := postgres.Conn(ctx, r.DB).GetContext(ctx, &exists, query, orderID); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PGRepository) InsertRefund(ctx context.Context, refund *model.PaymentRefund) error {
	query := `
        INSERT INTO payment_refunds (id, payment_id, amount, reason, reference, created_at)
        VALUES (:id, :payment_id, :amount, :reason, :reference, :created_at)
    `
	_, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, refund)
	return err
}

func (r *PGRepository) FindRefunds(ctx context.Context, paymentIDs []string) ([]model.PaymentRefund, error) {
	refunds := []model.PaymentRefund{}
	if len(paymentIDs) == 0 {
		return refunds, nil
	}
	query := `SELECT * FROM payment_refunds WHERE payment_id = ANY($1) ORDER BY created_at, id`
	if err := postgres.Conn(ctx, r.DB).SelectContext(ctx, &refunds, query, pq.Array(paymentIDs)); err != nil {
		return nil, err
	}
	return refunds, nil
}

func (r *PGRepository) RecordWebhookEvent(ctx context.Context, ev *model.PaymentWebhookEvent) (bool, error) {
	query := `
        INSERT INTO payment_webhook_events (id, payment_ref, event, status, payload, created_at)
        VALUES (:id, :payment_ref, :event, :status, :payload, :created_at)
        ON CONFLICT (payment_ref, event, status) DO NOTHING
    `
	res, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, ev)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
