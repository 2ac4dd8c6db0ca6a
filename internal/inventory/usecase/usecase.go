package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-commerce-service/internal/apperror"
	"github.com/fekuna/omnipos-commerce-service/internal/database"
	"github.com/fekuna/omnipos-commerce-service/internal/inventory"
	"github.com/fekuna/omnipos-commerce-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-commerce-service/internal/logger"
	"github.com/fekuna/omnipos-commerce-service/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	lockTTL      = 5 * time.Second
	lockAttempts = 3
	lockBackoff  = 100 * time.Millisecond
)

type inventoryUseCase struct {
	repo   inventory.Repository
	tx     database.Transactor
	locker inventory.Locker
	logger logger.ZapLogger
}

func NewInventoryUseCase(repo inventory.Repository, tx database.Transactor, locker inventory.Locker, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:   repo,
		tx:     tx,
		locker: locker,
		logger: log,
	}
}

func (uc *inventoryUseCase) DecreaseStock(ctx context.Context, input *dto.StockChangeInput) error {
	if input.Quantity < 1 {
		return apperror.Validation("quantity must be at least 1")
	}

	return uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		after, ok, err := uc.repo.DecreaseStock(ctx, input.ProductID, input.Quantity)
		if err != nil {
			return apperror.Internal("failed to decrease stock", err)
		}
		if !ok {
			return apperror.Unavailable("insufficient stock for product %s", input.ProductID)
		}
		return uc.logMovement(ctx, input, -input.Quantity, after)
	})
}

func (uc *inventoryUseCase) IncreaseStock(ctx context.Context, input *dto.StockChangeInput) error {
	if input.Quantity < 1 {
		return apperror.Validation("quantity must be at least 1")
	}

	return uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		after, ok, err := uc.repo.IncreaseStock(ctx, input.ProductID, input.Quantity)
		if err != nil {
			return apperror.Internal("failed to increase stock", err)
		}
		if !ok {
			return apperror.NotFound("product %s not found", input.ProductID)
		}
		return uc.logMovement(ctx, input, input.Quantity, after)
	})
}

func (uc *inventoryUseCase) logMovement(ctx context.Context, input *dto.StockChangeInput, change, after int) error {
	var refType, refID, createdBy *string
	if input.ReferenceType != "" {
		refType = &input.ReferenceType
	}
	if input.ReferenceID != "" {
		refID = &input.ReferenceID
	}
	if input.UserID != "" && input.UserID != "system" {
		createdBy = &input.UserID
	}

	m := &model.InventoryMovement{
		ID:             uuid.New().String(),
		ProductID:      input.ProductID,
		MovementType:   input.MovementType,
		QuantityChange: change,
		QuantityBefore: after - change,
		QuantityAfter:  after,
		ReferenceType:  refType,
		ReferenceID:    refID,
		Notes:          input.Notes,
		CreatedBy:      createdBy,
		CreatedAt:      time.Now(),
	}
	if err := uc.repo.LogMovement(ctx, m); err != nil {
		return apperror.Internal("failed to record stock movement", err)
	}
	return nil
}

// AdjustStock applies a manual correction. It reads then writes, so it runs under a per-product lock.
func (uc *inventoryUseCase) AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.InventoryMovement, error) {
	if input.QuantityChange == 0 {
		return nil, apperror.Validation("quantity_change must not be zero")
	}

	lockKey := fmt.Sprintf("lock:inventory:%s", input.ProductID)
	lockValue := uuid.New().String()

	acquired := false
	for i := 0; i < lockAttempts; i++ {
		ok, err := uc.locker.AcquireLock(ctx, lockKey, lockValue, lockTTL)
		if err != nil {
			uc.logger.Error("failed to acquire lock redis error", zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		time.Sleep(lockBackoff)
	}
	if !acquired {
		return nil, apperror.Unavailable("system busy, please try again later")
	}
	defer func() {
		if err := uc.locker.ReleaseLock(context.Background(), lockKey, lockValue); err != nil {
			uc.logger.Warn("failed to release inventory lock", zap.String("key", lockKey), zap.Error(err))
		}
	}()

	var movement *model.InventoryMovement
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := uc.repo.GetStock(ctx, input.ProductID, true)
		if err != nil {
			return apperror.Internal("failed to read stock", err)
		}
		if current == nil {
			return apperror.NotFound("product %s not found", input.ProductID)
		}

		after := *current + input.QuantityChange
		if after < 0 {
			return apperror.Validation("adjustment would make stock negative (%d available)", *current)
		}
		if err := uc.repo.SetStock(ctx, input.ProductID, after); err != nil {
			return apperror.Internal("failed to update stock", err)
		}

		var createdBy *string
		if input.UserID != "" {
			createdBy = &input.UserID
		}
		refType := "manual"
		movement = &model.InventoryMovement{
			ID:             uuid.New().String(),
			ProductID:      input.ProductID,
			MovementType:   model.MovementAdjustment,
			QuantityChange: input.QuantityChange,
			QuantityBefore: *current,
			QuantityAfter:  after,
			ReferenceType:  &refType,
			Notes:          input.Reason,
			CreatedBy:      createdBy,
			CreatedAt:      time.Now(),
		}
		if err := uc.repo.LogMovement(ctx, movement); err != nil {
			return apperror.Internal("failed to record stock movement", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("stock adjusted",
		zap.String("product_id", input.ProductID),
		zap.Int("before", movement.QuantityBefore),
		zap.Int("after", movement.QuantityAfter),
	)
	return movement, nil
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 100 {
		filters.PageSize = 20
	}
	items, count, err := uc.repo.ListMovements(ctx, filters)
	if err != nil {
		return nil, 0, apperror.Internal("failed to list movements", err)
	}
	return items, count, nil
}
