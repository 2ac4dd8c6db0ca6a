package inventory

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-commerce-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-commerce-service/internal/model"
)

type UseCase interface {
	DecreaseStock(ctx context.Context, input *dto.StockChangeInput) error
	IncreaseStock(ctx context.Context, input *dto.StockChangeInput) error
	AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.InventoryMovement, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)
}

// Locker is a distributed mutex; *cache.RedisClient implements it.
type Locker interface {
	AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, token string) error
}
