package payment

import (
	"context"

	"github.com/fekuna/omnipos-commerce-service/internal/model"
	"github.com/fekuna/omnipos-commerce-service/internal/payment/dto"
)

type Repository interface {
	Create(ctx context.Context, p *model.Payment) error
	FindByID(ctx context.Context, id string, forUpdate bool) (*model.Payment, error)
	FindByRef(ctx context.Context, ref string, forUpdate bool) (*model.Payment, error)
	Update(ctx context.Context, p *model.Payment) error
	// FindByOrderIDs returns the payments of every listed order, newest first.
	FindByOrderIDs(ctx context.Context, orderIDs []string) ([]model.Payment, error)
	FindAll(ctx context.Context, filters *dto.PaymentFilters) ([]model.Payment, int, error)
	HasOpenPayment(ctx context.Context, orderID string) (bool, error)

	InsertRefund(ctx context.Context, refund *model.PaymentRefund) error
	FindRefunds(ctx context.Context, paymentIDs []string) ([]model.PaymentRefund, error)

	// RecordWebhookEvent stores a delivery and reports false when it was already recorded.
	RecordWebhookEvent(ctx context.Context, ev *model.PaymentWebhookEvent) (bool, error)
}
