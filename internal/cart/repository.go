package cart

import (
	"context"

	"github.com/fekuna/omnipos-commerce-service/internal/model"
)

type Repository interface {
	FindByID(ctx context.Context, id string) (*model.Cart, error)
	FindByUserID(ctx context.Context, userID string) (*model.Cart, error)
	// Create inserts the cart unless the user already has one, and returns whichever row exists.
	Create(ctx context.Context, cart *model.Cart) (*model.Cart, error)
	Touch(ctx context.Context, cartID string) error

	FindItemByID(ctx context.Context, cartID, itemID string) (*model.CartItem, error)
	FindItemByProduct(ctx context.Context, cartID, productID string) (*model.CartItem, error)
	InsertItem(ctx context.Context, item *model.CartItem) error
	UpdateItem(ctx context.Context, item *model.CartItem) error
	ListItems(ctx context.Context, cartID string, statuses ...model.CartItemStatus) ([]model.CartItem, error)
	UpdateStatusByCart(ctx context.Context, cartID string, from, to model.CartItemStatus) (int64, error)
	UpdateStatusByIDs(ctx context.Context, cartID string, itemIDs []string, to model.CartItemStatus) error
}
