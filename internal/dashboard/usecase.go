// Package dashboard composes users, orders and payments into read-only views.
package dashboard

import (
	"context"

	"github.com/fekuna/omnipos-commerce-service/internal/model"
	orderdto "github.com/fekuna/omnipos-commerce-service/internal/order/dto"
)

type OrderWithPayments struct {
	model.Order
	Payments []model.Payment `json:"payments"`
}

type UserOrdersView struct {
	User   *model.User         `json:"user"`
	Orders []OrderWithPayments `json:"orders"`
	Total  int                 `json:"total"`
	Page   int                 `json:"page"`
	Limit  int                 `json:"limit"`
	Pages  int                 `json:"pages"`
}

// CustomerOrder is an order row of the admin view, with its owner.
type CustomerOrder struct {
	OrderWithPayments
	Customer *model.User `json:"customer"`
}

type CustomerOrdersView struct {
	Orders []CustomerOrder `json:"orders"`
	Total  int             `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
	Pages  int             `json:"pages"`
}

type OrderOverview struct {
	Order     *model.Order           `json:"order"`
	StatusLog []model.OrderStatusLog `json:"status_log"`
	User      *model.User            `json:"user"`
}

type UseCase interface {
	UserOrdersWithPayments(ctx context.Context, userID string, filters *orderdto.OrderFilters) (*UserOrdersView, error)
	OrderStatusWithUser(ctx context.Context, actor orderdto.Actor, orderID string) (*OrderOverview, error)
	// OrdersWithCustomers is the admin order list joined with payments and owner profiles.
	OrdersWithCustomers(ctx context.Context, filters *orderdto.OrderFilters) (*CustomerOrdersView, error)
}
