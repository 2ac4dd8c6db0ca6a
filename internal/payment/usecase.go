package payment

import (
	"context"

	"github.com/fekuna/omnipos-commerce-service/internal/model"
	orderdto "github.com/fekuna/omnipos-commerce-service/internal/order/dto"
	"github.com/fekuna/omnipos-commerce-service/internal/payment/dto"
)

type UseCase interface {
	Initiate(ctx context.Context, input *dto.InitiateInput) (*dto.InitiateResult, error)
	HandleWebhook(ctx context.Context, body []byte, signature string, input *dto.WebhookInput) (*dto.WebhookResult, error)
	Refund(ctx context.Context, id string, input *dto.RefundInput) (*model.Payment, error)
	Abort(ctx context.Context, actor orderdto.Actor, id string) (*model.Payment, error)

	GetPayment(ctx context.Context, actor orderdto.Actor, id string) (*model.Payment, error)
	ListOrderPayments(ctx context.Context, actor orderdto.Actor, orderID string) ([]model.Payment, error)
	ListUserPayments(ctx context.Context, userID string, filters *dto.PaymentFilters) (*dto.PaymentList, error)
	// PaymentsByOrder loads the payments of many orders at once, keyed by order id.
	PaymentsByOrder(ctx context.Context, orderIDs []string) (map[string][]model.Payment, error)
}

// Orders drives the order side of the payment lifecycle; order.UseCase implements it.
type Orders interface {
	GetOrder(ctx context.Context, actor orderdto.Actor, id string) (*model.Order, error)
	UpdateStatus(ctx context.Context, id string, input *orderdto.UpdateStatusInput) (*model.Order, error)
	CancelOrder(ctx context.Context, actor orderdto.Actor, id, reason string) (*model.Order, error)
}
