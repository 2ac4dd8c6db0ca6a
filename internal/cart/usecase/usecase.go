package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-commerce-service/internal/apperror"
	"github.com/fekuna/omnipos-commerce-service/internal/cart"
	"github.com/fekuna/omnipos-commerce-service/internal/cart/dto"
	"github.com/fekuna/omnipos-commerce-service/internal/database/postgres"
	"github.com/fekuna/omnipos-commerce-service/internal/logger"
	"github.com/fekuna/omnipos-commerce-service/internal/model"
	"github.com/fekuna/omnipos-commerce-service/internal/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var priceTolerance = decimal.New(1, -2)

type cartUseCase struct {
	repo    cart.Repository
	catalog cart.Catalog
	calc    pricing.Calculator
	logger  logger.ZapLogger
}

func NewCartUseCase(repo cart.Repository, catalog cart.Catalog, calc pricing.Calculator, log logger.ZapLogger) cart.UseCase {
	return &cartUseCase{
		repo:    repo,
		catalog: catalog,
		calc:    calc,
		logger:  log,
	}
}

func (uc *cartUseCase) GetOrCreateCart(ctx context.Context, userID string) (*model.Cart, error) {
	c, err := uc.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("failed to load cart", err)
	}
	if c != nil {
		return c, nil
	}

	now := time.Now()
	c, err = uc.repo.Create(ctx, &model.Cart{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		UserID:    userID,
	})
	if err != nil {
		return nil, apperror.Internal("failed to create cart", err)
	}
	return c, nil
}

// findCart is for mutations: a user without a cart has nothing to change.
func (uc *cartUseCase) findCart(ctx context.Context, userID string) (*model.Cart, error) {
	c, err := uc.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("failed to load cart", err)
	}
	if c == nil {
		return nil, apperror.NotFound("cart not found")
	}
	return c, nil
}

func (uc *cartUseCase) findItem(ctx context.Context, cartID, itemID string) (*model.CartItem, error) {
	item, err := uc.repo.FindItemByID(ctx, cartID, itemID)
	if err != nil {
		return nil, apperror.Internal("failed to load cart item", err)
	}
	if item == nil {
		return nil, apperror.NotFound("item %s not found in cart", itemID)
	}
	return item, nil
}

func (uc *cartUseCase) GetCartView(ctx context.Context, userID string) (*dto.CartView, error) {
	c, err := uc.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.view(ctx, c)
}

func (uc *cartUseCase) view(ctx context.Context, c *model.Cart) (*dto.CartView, error) {
	items, err := uc.repo.ListItems(ctx, c.ID, model.CartItemActive, model.CartItemSavedForLater)
	if err != nil {
		return nil, apperror.Internal("failed to load cart items", err)
	}

	v := &dto.CartView{
		ID:            c.ID,
		UserID:        c.UserID,
		Items:         []model.CartItem{},
		SavedForLater: []model.CartItem{},
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
	for _, it := range items {
		if it.Status == model.CartItemActive {
			v.Items = append(v.Items, it)
		} else {
			v.SavedForLater = append(v.SavedForLater, it)
		}
	}
	v.Summary = pricing.SummarizeCart(v.Items)
	return v, nil
}

// requireStock reports an unavailable product; quantities are never clamped.
func requireStock(p *model.Product, qty int) error {
	if !p.CanFulfil(qty) {
		return apperror.Unavailable("product %s is not available in the requested quantity (%d)", p.ID, qty)
	}
	return nil
}

// reprice copies the current catalog terms onto a line.
func (uc *cartUseCase) reprice(item *model.CartItem, p *model.Product) {
	item.UnitPrice = p.Price
	item.Discount = p.DiscountAmount
	item.DiscountType = p.DiscountType
	if !item.DiscountType.Valid() {
		item.DiscountType = model.DiscountPercentage
	}
	item.GSTAmount = uc.calc.UnitGST(p.Price)
}

func (uc *cartUseCase) AddItem(ctx context.Context, userID string, input *dto.AddItemInput) (*dto.CartView, error) {
	if input.ProductID == "" {
		return nil, apperror.Validation("product_id is required")
	}
	if input.Quantity < 1 {
		return nil, apperror.Validation("quantity must be at least 1")
	}

	c, err := uc.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	p, err := uc.catalog.GetProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if err := requireStock(p, input.Quantity); err != nil {
		return nil, err
	}

	if err := uc.upsertItem(ctx, c, p, input.Quantity); err != nil {
		return nil, err
	}
	return uc.touchAndView(ctx, c)
}

func (uc *cartUseCase) upsertItem(ctx context.Context, c *model.Cart, p *model.Product, qty int) error {
	existing, err := uc.repo.FindItemByProduct(ctx, c.ID, p.ID)
	if err != nil {
		return apperror.Internal("failed to load cart item", err)
	}

	now := time.Now()
	if existing == nil {
		item := &model.CartItem{
			BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
			CartID:    c.ID,
			ProductID: p.ID,
			Quantity:  qty,
			Status:    model.CartItemActive,
		}
		uc.reprice(item, p)
		err := uc.repo.InsertItem(ctx, item)
		if err == nil {
			return nil
		}
		if !postgres.IsUniqueViolation(err) {
			return apperror.Internal("failed to add cart item", err)
		}
		// Lost a race with a concurrent add of the same product; merge into the winner.
		if existing, err = uc.repo.FindItemByProduct(ctx, c.ID, p.ID); err != nil || existing == nil {
			return apperror.Internal("failed to load cart item", err)
		}
	}

	if existing.Status == model.CartItemActive {
		merged := existing.Quantity + qty
		if err := requireStock(p, merged); err != nil {
			return err
		}
		existing.Quantity = merged
	} else {
		existing.Status = model.CartItemActive
		existing.Quantity = qty
	}
	uc.reprice(existing, p)
	existing.UpdatedAt = now

	if err := uc.repo.UpdateItem(ctx, existing); err != nil {
		return apperror.Internal("failed to update cart item", err)
	}
	return nil
}

func (uc *cartUseCase) touchAndView(ctx context.Context, c *model.Cart) (*dto.CartView, error) {
	if err := uc.repo.Touch(ctx, c.ID); err != nil {
		uc.logger.Warn("failed to touch cart", zap.String("cart_id", c.ID), zap.Error(err))
	}
	return uc.view(ctx, c)
}

func (uc *cartUseCase) UpdateItem(ctx context.Context, userID, itemID string, input *dto.UpdateItemInput) (*dto.CartView, error) {
	if input.Quantity == nil && input.Status == nil {
		return nil, apperror.Validation("quantity or status is required")
	}
	if input.Quantity != nil && *input.Quantity < 1 {
		return nil, apperror.Validation("quantity must be at least 1")
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, apperror.Validation("status must be one of active, removed, saved_for_later")
	}

	c, err := uc.findCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	item, err := uc.findItem(ctx, c.ID, itemID)
	if err != nil {
		return nil, err
	}

	if err := uc.applyUpdate(ctx, item, input); err != nil {
		return nil, err
	}
	return uc.touchAndView(ctx, c)
}

func (uc *cartUseCase) applyUpdate(ctx context.Context, item *model.CartItem, input *dto.UpdateItemInput) error {
	qty := item.Quantity
	if input.Quantity != nil {
		qty = *input.Quantity
	}
	status := item.Status
	if input.Status != nil {
		status = *input.Status
	}

	quantityChanged := qty != item.Quantity
	activating := status == model.CartItemActive && item.Status != model.CartItemActive
	if quantityChanged || activating {
		p, err := uc.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if status == model.CartItemActive {
			if err := requireStock(p, qty); err != nil {
				return err
			}
		}
	}

	item.Quantity = qty
	item.Status = status
	item.UpdatedAt = time.Now()
	if err := uc.repo.UpdateItem(ctx, item); err != nil {
		return apperror.Internal("failed to update cart item", err)
	}
	return nil
}

func (uc *cartUseCase) setStatus(ctx context.Context, userID, itemID string, status model.CartItemStatus) (*dto.CartView, error) {
	return uc.UpdateItem(ctx, userID, itemID, &dto.UpdateItemInput{Status: &status})
}

func (uc *cartUseCase) RemoveItem(ctx context.Context, userID, itemID string) (*dto.CartView, error) {
	return uc.setStatus(ctx, userID, itemID, model.CartItemRemoved)
}

func (uc *cartUseCase) SaveForLater(ctx context.Context, userID, itemID string) (*dto.CartView, error) {
	return uc.setStatus(ctx, userID, itemID, model.CartItemSavedForLater)
}

func (uc *cartUseCase) MoveToCart(ctx context.Context, userID, itemID string) (*dto.CartView, error) {
	return uc.setStatus(ctx, userID, itemID, model.CartItemActive)
}

func (uc *cartUseCase) ClearCart(ctx context.Context, userID string) (*dto.CartView, error) {
	c, err := uc.findCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	n, err := uc.repo.UpdateStatusByCart(ctx, c.ID, model.CartItemActive, model.CartItemRemoved)
	if err != nil {
		return nil, apperror.Internal("failed to clear cart", err)
	}
	uc.logger.Debug("cart cleared", zap.String("cart_id", c.ID), zap.Int64("items", n))
	return uc.touchAndView(ctx, c)
}

func (uc *cartUseCase) GetCartSnapshot(ctx context.Context, userID string) (*dto.CartSnapshot, error) {
	c, err := uc.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := uc.repo.ListItems(ctx, c.ID, model.CartItemActive)
	if err != nil {
		return nil, apperror.Internal("failed to load cart items", err)
	}

	snap := &dto.CartSnapshot{
		CartID:   c.ID,
		UserID:   c.UserID,
		Items:    make([]dto.SnapshotItem, 0, len(items)),
		Subtotal: decimal.Zero,
	}
	if len(items) == 0 {
		return snap, nil
	}

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}
	products, err := uc.catalog.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, it := range items {
		s := dto.SnapshotItem{
			ItemID:          it.ID,
			ProductID:       it.ProductID,
			Quantity:        it.Quantity,
			PriceAtAddition: it.UnitPrice,
			Discount:        it.Discount,
			DiscountType:    it.DiscountType,
		}
		if p, ok := products[it.ProductID]; ok {
			s.Name = p.Name
			s.CurrentPrice = p.Price
			s.PriceDifference = p.Price.Sub(it.UnitPrice)
			s.PriceChanged = s.PriceDifference.Abs().GreaterThan(priceTolerance)
			s.IsAvailable = p.CanFulfil(it.Quantity)
			s.InStock = p.AvailableStock >= it.Quantity
		} else {
			s.Name = "Product no longer available"
			s.CurrentPrice = decimal.Zero
			s.PriceDifference = decimal.Zero
		}

		snap.TotalItems += it.Quantity
		snap.HasPriceChanges = snap.HasPriceChanges || s.PriceChanged
		if !s.IsAvailable {
			snap.HasUnavailableItems = true
		} else {
			base := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
			snap.Subtotal = snap.Subtotal.Add(base.Sub(pricing.LineDiscount(base, it.Discount, it.DiscountType)))
		}
		snap.Items = append(snap.Items, s)
	}
	return snap, nil
}

func (uc *cartUseCase) CheckoutItems(ctx context.Context, userID, cartID string) ([]model.CartItem, error) {
	c, err := uc.repo.FindByID(ctx, cartID)
	if err != nil {
		return nil, apperror.Internal("failed to load cart", err)
	}
	if c == nil {
		return nil, apperror.NotFound("cart %s not found", cartID)
	}
	if c.UserID != userID {
		return nil, apperror.Authorization("cart does not belong to user")
	}

	items, err := uc.repo.ListItems(ctx, c.ID, model.CartItemActive)
	if err != nil {
		return nil, apperror.Internal("failed to load cart items", err)
	}
	if len(items) == 0 {
		return nil, apperror.Validation("cart has no active items")
	}
	return items, nil
}

func (uc *cartUseCase) MarkCheckedOut(ctx context.Context, cartID string, itemIDs []string) error {
	if err := uc.repo.UpdateStatusByIDs(ctx, cartID, itemIDs, model.CartItemRemoved); err != nil {
		return apperror.Internal("failed to empty cart", err)
	}
	return nil
}
