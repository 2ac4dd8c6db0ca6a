package inventory

import (
	"context"

	"github.com/fekuna/omnipos-commerce-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-commerce-service/internal/model"
)

type Repository interface {
	// DecreaseStock takes qty only if enough is available. ok is false when it was not.
	DecreaseStock(ctx context.Context, productID string, qty int) (after int, ok bool, err error)
	// IncreaseStock returns ok=false when the product does not exist.
	IncreaseStock(ctx context.Context, productID string, qty int) (after int, ok bool, err error)
	GetStock(ctx context.Context, productID string, forUpdate bool) (*int, error)
	SetStock(ctx context.Context, productID string, qty int) error

	// Movements / Audit
	LogMovement(ctx context.Context, movement *model.InventoryMovement) error
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)
}
