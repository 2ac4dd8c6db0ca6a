package order

import (
	"context"

	invdto "github.com/fekuna/omnipos-commerce-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-commerce-service/internal/model"
	"github.com/fekuna/omnipos-commerce-service/internal/order/dto"
)

type UseCase interface {
	CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*model.Order, error)
	GetOrder(ctx context.Context, actor dto.Actor, id string) (*model.Order, error)
	GetOrderItems(ctx context.Context, actor dto.Actor, id string) ([]model.OrderItem, error)
	GetStatusLog(ctx context.Context, actor dto.Actor, id string) ([]model.OrderStatusLog, error)
	ListOrders(ctx context.Context, filters *dto.OrderFilters) (*dto.OrderList, error)
	ListUserOrders(ctx context.Context, userID string, filters *dto.OrderFilters) (*dto.OrderList, error)

	UpdateStatus(ctx context.Context, id string, input *dto.UpdateStatusInput) (*model.Order, error)
	CancelOrder(ctx context.Context, actor dto.Actor, id, reason string) (*model.Order, error)
	CancelOrderItem(ctx context.Context, actor dto.Actor, orderID, itemID, reason string) (*model.Order, error)
	ApplyDiscount(ctx context.Context, actor dto.Actor, id string, input *dto.ApplyDiscountInput) (*model.Order, error)
	UpdateOrderItem(ctx context.Context, actor dto.Actor, orderID, itemID string, input *dto.UpdateItemInput) (*model.Order, error)
	DeleteOrderItem(ctx context.Context, actor dto.Actor, orderID, itemID string) (*model.Order, error)
}

// Catalog prices order lines; product.UseCase implements it.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (*model.Product, error)
}

// StockKeeper moves stock; inventory.UseCase implements it.
type StockKeeper interface {
	DecreaseStock(ctx context.Context, input *invdto.StockChangeInput) error
	IncreaseStock(ctx context.Context, input *invdto.StockChangeInput) error
}

// CartSource supplies and then empties the lines of a cart; cart.UseCase implements it.
type CartSource interface {
	CheckoutItems(ctx context.Context, userID, cartID string) ([]model.CartItem, error)
	MarkCheckedOut(ctx context.Context, cartID string, itemIDs []string) error
}
