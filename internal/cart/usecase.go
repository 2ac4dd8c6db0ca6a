package cart

import (
	"context"

	"github.com/fekuna/omnipos-commerce-service/internal/cart/dto"
	"github.com/fekuna/omnipos-commerce-service/internal/model"
)

type UseCase interface {
	GetOrCreateCart(ctx context.Context, userID string) (*model.Cart, error)
	GetCartView(ctx context.Context, userID string) (*dto.CartView, error)
	AddItem(ctx context.Context, userID string, input *dto.AddItemInput) (*dto.CartView, error)
	UpdateItem(ctx context.Context, userID, itemID string, input *dto.UpdateItemInput) (*dto.CartView, error)
	RemoveItem(ctx context.Context, userID, itemID string) (*dto.CartView, error)
	ClearCart(ctx context.Context, userID string) (*dto.CartView, error)
	SaveForLater(ctx context.Context, userID, itemID string) (*dto.CartView, error)
	MoveToCart(ctx context.Context, userID, itemID string) (*dto.CartView, error)
	GetCartSnapshot(ctx context.Context, userID string) (*dto.CartSnapshot, error)

	// CheckoutItems returns the active lines of a cart owned by userID, for order creation.
	CheckoutItems(ctx context.Context, userID, cartID string) ([]model.CartItem, error)
	// MarkCheckedOut empties the given lines once an order has been placed from them.
	MarkCheckedOut(ctx context.Context, cartID string, itemIDs []string) error
}

// Catalog is the slice of the product store the cart reads; product.UseCase implements it.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) (map[string]model.Product, error)
}
