package order

import (
	"context"

	"github.com/fekuna/omnipos-commerce-service/internal/model"
	"github.com/fekuna/omnipos-commerce-service/internal/order/dto"
)

type Repository interface {
	Create(ctx context.Context, o *model.Order) error
	// FindByID locks the row when forUpdate is set and ctx carries a transaction.
	FindByID(ctx context.Context, id string, forUpdate bool) (*model.Order, error)
	Update(ctx context.Context, o *model.Order) error
	FindAll(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error)

	InsertItems(ctx context.Context, items []model.OrderItem) error
	FindItems(ctx context.Context, orderID string) ([]model.OrderItem, error)
	FindItem(ctx context.Context, orderID, itemID string) (*model.OrderItem, error)
	UpdateItem(ctx context.Context, item *model.OrderItem) error
	// UpdateItemsStatus moves every line that is not cancelled to status.
	UpdateItemsStatus(ctx context.Context, orderID string, status model.OrderStatus) error

	AppendStatusLog(ctx context.Context, entry *model.OrderStatusLog) error
	FindStatusLog(ctx context.Context, orderID string) ([]model.OrderStatusLog, error)
}
