package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fekuna/omnipos-commerce-service/internal/apperror"
	"github.com/fekuna/omnipos-commerce-service/internal/database"
	"github.com/fekuna/omnipos-commerce-service/internal/event"
	invdto "github.com/fekuna/omnipos-commerce-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-commerce-service/internal/logger"
	"github.com/fekuna/omnipos-commerce-service/internal/model"
	"github.com/fekuna/omnipos-commerce-service/internal/order"
	"github.com/fekuna/omnipos-commerce-service/internal/order/dto"
	"github.com/fekuna/omnipos-commerce-service/internal/pricing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var sortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"final_amount": true,
	"total_amount": true,
	"status":       true,
}

type Config struct {
	DefaultCurrency string
	DefaultLimit    int
	MaxLimit        int
}

type orderUseCase struct {
	repo    order.Repository
	catalog order.Catalog
	stock   order.StockKeeper
	carts   order.CartSource
	tx      database.Transactor
	events  *event.Publisher
	calc    pricing.Calculator
	cfg     Config
	logger  logger.ZapLogger
}

func NewOrderUseCase(
	repo order.Repository,
	catalog order.Catalog,
	stock order.StockKeeper,
	carts order.CartSource,
	tx database.Transactor,
	events *event.Publisher,
	calc pricing.Calculator,
	cfg Config,
	log logger.ZapLogger,
) order.UseCase {
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "USD"
	}
	if cfg.DefaultLimit < 1 {
		cfg.DefaultLimit = 10
	}
	if cfg.MaxLimit < cfg.DefaultLimit {
		cfg.MaxLimit = 100
	}
	return &orderUseCase{
		repo:    repo,
		catalog: catalog,
		stock:   stock,
		carts:   carts,
		tx:      tx,
		events:  events,
		calc:    calc,
		cfg:     cfg,
		logger:  log,
	}
}

type line struct {
	productID string
	quantity  int
}

func (uc *orderUseCase) CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*model.Order, error) {
	if input.UserID == "" {
		return nil, apperror.Validation("user_id is required")
	}
	hasCart, hasItems := input.CartID != "", len(input.Items) > 0
	if hasCart && hasItems {
		return nil, apperror.Validation("cannot provide both cart_id and items")
	}
	if !hasCart && !hasItems {
		return nil, apperror.Validation("either cart_id or items is required")
	}
	for _, it := range input.Items {
		if it.ProductID == "" {
			return nil, apperror.Validation("product_id is required for every item")
		}
		if it.Quantity < 1 {
			return nil, apperror.Validation("quantity must be at least 1")
		}
	}
	discountType := input.DiscountType
	if discountType == "" {
		discountType = model.DiscountFixed
	}
	currency := input.Currency
	if currency == "" {
		currency = uc.cfg.DefaultCurrency
	}

	now := time.Now()
	o := &model.Order{
		BaseModel:      model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		UserID:         input.UserID,
		Status:         model.OrderPending,
		DiscountAmount: input.DiscountAmount,
		DiscountType:   discountType,
		Currency:       currency,
		GSTNumber:      input.GSTNumber,
	}
	if hasCart {
		o.CartID = &input.CartID
	}

	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		lines, cartItemIDs, err := uc.collectLines(ctx, input)
		if err != nil {
			return err
		}

		items, err := uc.priceLines(ctx, o, lines)
		if err != nil {
			return err
		}
		if err := pricing.ValidateDiscount(o.TotalAmount, o.DiscountAmount, o.DiscountType); err != nil {
			return err
		}
		pricing.Reprice(o)

		if err := uc.repo.Create(ctx, o); err != nil {
			return apperror.Internal("failed to create order", err)
		}
		if err := uc.repo.InsertItems(ctx, items); err != nil {
			return apperror.Internal("failed to create order items", err)
		}
		for _, it := range items {
			if err := uc.stock.DecreaseStock(ctx, &invdto.StockChangeInput{
				ProductID:     it.ProductID,
				Quantity:      it.Quantity,
				MovementType:  model.MovementSale,
				ReferenceType: "order",
				ReferenceID:   o.ID,
				UserID:        o.UserID,
			}); err != nil {
				return err
			}
		}
		if err := uc.appendLog(ctx, o.ID, model.OrderPending, "Order created", o.UserID); err != nil {
			return err
		}
		if hasCart {
			return uc.carts.MarkCheckedOut(ctx, input.CartID, cartItemIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("order created",
		zap.String("order_id", o.ID),
		zap.String("user_id", o.UserID),
		zap.String("final_amount", o.FinalAmount.String()),
	)
	created, err := uc.load(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, event.OrderCreated, created, created.Items)
	return created, nil
}

func (uc *orderUseCase) collectLines(ctx context.Context, input *dto.CreateOrderInput) ([]line, []string, error) {
	if input.CartID == "" {
		lines := make([]line, len(input.Items))
		for i, it := range input.Items {
			lines[i] = line{productID: it.ProductID, quantity: it.Quantity}
		}
		return lines, nil, nil
	}

	cartItems, err := uc.carts.CheckoutItems(ctx, input.UserID, input.CartID)
	if err != nil {
		return nil, nil, err
	}
	lines := make([]line, len(cartItems))
	ids := make([]string, len(cartItems))
	for i, it := range cartItems {
		lines[i] = line{productID: it.ProductID, quantity: it.Quantity}
		ids[i] = it.ID
	}
	return lines, ids, nil
}

// priceLines freezes catalog prices onto new order lines and accumulates the order totals.
// Line discounts are recorded for reference only; the order discount is applied once on the total.
func (uc *orderUseCase) priceLines(ctx context.Context, o *model.Order, lines []line) ([]model.OrderItem, error) {
	items := make([]model.OrderItem, 0, len(lines))
	for _, l := range lines {
		p, err := uc.catalog.GetProduct(ctx, l.productID)
		if err != nil {
			return nil, err
		}
		if !p.CanFulfil(l.quantity) {
			return nil, apperror.Unavailable("product %s is not available in the requested quantity", p.Name)
		}

		discountType := p.DiscountType
		if !discountType.Valid() {
			discountType = model.DiscountFixed
		}
		item := model.OrderItem{
			BaseModel:      model.BaseModel{ID: uuid.New().String(), CreatedAt: o.CreatedAt, UpdatedAt: o.CreatedAt},
			OrderID:        o.ID,
			ProductID:      p.ID,
			ProductName:    p.Name,
			Quantity:       l.quantity,
			UnitPrice:      p.Price,
			DiscountAmount: p.DiscountAmount,
			DiscountType:   discountType,
			GSTAmount:      uc.calc.UnitGST(p.Price),
			Status:         model.OrderPending,
		}
		o.TotalAmount = o.TotalAmount.Add(pricing.ItemTotal(&item))
		o.GSTAmount = o.GSTAmount.Add(pricing.ItemGST(&item))
		items = append(items, item)
	}
	return items, nil
}

func (uc *orderUseCase) appendLog(ctx context.Context, orderID string, status model.OrderStatus, comment, userID string) error {
	entry := &model.OrderStatusLog{
		ID:        uuid.New().String(),
		OrderID:   orderID,
		Status:    status,
		Comment:   comment,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	if err := uc.repo.AppendStatusLog(ctx, entry); err != nil {
		return apperror.Internal("failed to write status log", err)
	}
	return nil
}

// lockOrder loads an order for a mutation inside the current transaction.
func (uc *orderUseCase) lockOrder(ctx context.Context, actor dto.Actor, id string) (*model.Order, error) {
	o, err := uc.repo.FindByID(ctx, id, true)
	if err != nil {
		return nil, apperror.Internal("failed to load order", err)
	}
	if o == nil {
		return nil, apperror.NotFound("order %s not found", id)
	}
	if !actor.CanAccess(o) {
		return nil, apperror.Authorization("order does not belong to user")
	}
	return o, nil
}

func (uc *orderUseCase) findItem(ctx context.Context, orderID, itemID string) (*model.OrderItem, error) {
	item, err := uc.repo.FindItem(ctx, orderID, itemID)
	if err != nil {
		return nil, apperror.Internal("failed to load order item", err)
	}
	if item == nil {
		return nil, apperror.NotFound("order item %s not found", itemID)
	}
	return item, nil
}

// load returns the order with its lines and status log.
func (uc *orderUseCase) load(ctx context.Context, id string) (*model.Order, error) {
	o, err := uc.repo.FindByID(ctx, id, false)
	if err != nil {
		return nil, apperror.Internal("failed to load order", err)
	}
	if o == nil {
		return nil, apperror.NotFound("order %s not found", id)
	}
	if err := uc.hydrate(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (uc *orderUseCase) hydrate(ctx context.Context, o *model.Order) error {
	items, err := uc.repo.FindItems(ctx, o.ID)
	if err != nil {
		return apperror.Internal("failed to load order items", err)
	}
	for i := range items {
		items[i].Subtotal = pricing.ItemSubtotal(&items[i])
	}
	logs, err := uc.repo.FindStatusLog(ctx, o.ID)
	if err != nil {
		return apperror.Internal("failed to load status log", err)
	}
	o.Items = items
	o.StatusLog = logs
	return nil
}

func (uc *orderUseCase) publish(ctx context.Context, eventType string, o *model.Order, items []model.OrderItem) {
	payload := event.OrderPayload{
		ID:     o.ID,
		UserID: o.UserID,
		Status: string(o.Status),
		Items:  make([]event.OrderItemPayload, 0, len(items)),
	}
	for _, it := range items {
		payload.Items = append(payload.Items, event.OrderItemPayload{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	uc.events.Publish(ctx, eventType, o.ID, payload)
}

func (uc *orderUseCase) GetOrder(ctx context.Context, actor dto.Actor, id string) (*model.Order, error) {
	o, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(o) {
		return nil, apperror.Authorization("order does not belong to user")
	}
	return o, nil
}

func (uc *orderUseCase) GetOrderItems(ctx context.Context, actor dto.Actor, id string) ([]model.OrderItem, error) {
	o, err := uc.GetOrder(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return o.Items, nil
}

func (uc *orderUseCase) GetStatusLog(ctx context.Context, actor dto.Actor, id string) ([]model.OrderStatusLog, error) {
	o, err := uc.GetOrder(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return o.StatusLog, nil
}

func (uc *orderUseCase) normalize(filters *dto.OrderFilters) error {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.Limit < 1 {
		filters.Limit = uc.cfg.DefaultLimit
	}
	if filters.Limit > uc.cfg.MaxLimit {
		filters.Limit = uc.cfg.MaxLimit
	}
	if filters.Status != "" && !filters.Status.Valid() {
		return apperror.Validation("unknown order status %q", filters.Status)
	}
	if filters.StartDate != nil && filters.EndDate != nil && filters.EndDate.Before(*filters.StartDate) {
		return apperror.Validation("end_date must not be before start_date")
	}

	sort := filters.Sort
	if sort == "" {
		sort = "-created_at"
	}
	field := strings.TrimPrefix(sort, "-")
	if !sortFields[field] {
		return apperror.Validation("cannot sort by %q", field)
	}
	filters.SortField = field
	filters.SortDesc = strings.HasPrefix(sort, "-")
	return nil
}

func (uc *orderUseCase) ListOrders(ctx context.Context, filters *dto.OrderFilters) (*dto.OrderList, error) {
	if err := uc.normalize(filters); err != nil {
		return nil, err
	}
	orders, total, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, apperror.Internal("failed to list orders", err)
	}
	return &dto.OrderList{
		Orders: orders,
		Total:  total,
		Page:   filters.Page,
		Limit:  filters.Limit,
		Pages:  int(math.Ceil(float64(total) / float64(filters.Limit))),
	}, nil
}

func (uc *orderUseCase) ListUserOrders(ctx context.Context, userID string, filters *dto.OrderFilters) (*dto.OrderList, error) {
	if userID == "" {
		return nil, apperror.Validation("user_id is required")
	}
	filters.UserID = userID
	return uc.ListOrders(ctx, filters)
}

func checkTransition(from, to model.OrderStatus) error {
	switch from {
	case model.OrderCancelled:
		if to != model.OrderRefunded {
			return apperror.InvalidTransition("cannot change status of a cancelled order")
		}
	case model.OrderRefunded:
		return apperror.InvalidTransition("order is already refunded")
	case model.OrderDelivered:
		if to != model.OrderRefunded {
			return apperror.InvalidTransition("order is already delivered")
		}
	}
	return nil
}

func (uc *orderUseCase) UpdateStatus(ctx context.Context, id string, input *dto.UpdateStatusInput) (*model.Order, error) {
	if !input.Status.Valid() {
		return nil, apperror.Validation("unknown order status %q", input.Status)
	}
	// Cancelling has side effects on stock; route it through the cancel workflow.
	if input.Status == model.OrderCancelled {
		reason := input.Comment
		if reason == "" {
			reason = "Status updated to cancelled"
		}
		return uc.cancel(ctx, dto.Actor{UserID: input.UserID, Admin: true}, id, reason)
	}

	var o *model.Order
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if o, err = uc.lockOrder(ctx, dto.SystemActor, id); err != nil {
			return err
		}
		if err := checkTransition(o.Status, input.Status); err != nil {
			return err
		}

		o.Status = input.Status
		o.UpdatedAt = time.Now()
		if err := uc.repo.Update(ctx, o); err != nil {
			return apperror.Internal("failed to update order", err)
		}
		if err := uc.repo.UpdateItemsStatus(ctx, o.ID, input.Status); err != nil {
			return apperror.Internal("failed to update order items", err)
		}

		comment := input.Comment
		if comment == "" {
			comment = fmt.Sprintf("Status updated to %s", input.Status)
		}
		return uc.appendLog(ctx, o.ID, input.Status, comment, input.UserID)
	})
	if err != nil {
		return nil, err
	}

	updated, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, event.OrderStatusChanged, updated, nil)
	return updated, nil
}

func (uc *orderUseCase) CancelOrder(ctx context.Context, actor dto.Actor, id, reason string) (*model.Order, error) {
	if reason == "" {
		reason = "Cancelled by user"
	}
	return uc.cancel(ctx, actor, id, reason)
}

func (uc *orderUseCase) cancel(ctx context.Context, actor dto.Actor, id, reason string) (*model.Order, error) {
	var restored []model.OrderItem
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := uc.lockOrder(ctx, actor, id)
		if err != nil {
			return err
		}
		if !o.Status.Cancellable() {
			return apperror.InvalidTransition("cannot cancel order in %s state", o.Status)
		}

		items, err := uc.repo.FindItems(ctx, o.ID)
		if err != nil {
			return apperror.Internal("failed to load order items", err)
		}

		o.Status = model.OrderCancelled
		o.UpdatedAt = time.Now()
		if err := uc.repo.Update(ctx, o); err != nil {
			return apperror.Internal("failed to update order", err)
		}
		if err := uc.repo.UpdateItemsStatus(ctx, o.ID, model.OrderCancelled); err != nil {
			return apperror.Internal("failed to update order items", err)
		}

		// Lines cancelled earlier already gave their stock back.
		for _, it := range items {
			if it.Status == model.OrderCancelled {
				continue
			}
			if err := uc.stock.IncreaseStock(ctx, &invdto.StockChangeInput{
				ProductID:     it.ProductID,
				Quantity:      it.Quantity,
				MovementType:  model.MovementCancellation,
				ReferenceType: "order",
				ReferenceID:   o.ID,
				Notes:         reason,
				UserID:        actor.UserID,
			}); err != nil {
				return err
			}
			restored = append(restored, it)
		}
		return uc.appendLog(ctx, o.ID, model.OrderCancelled, reason, actor.UserID)
	})
	if err != nil {
		return nil, err
	}

	cancelled, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("order cancelled", zap.String("order_id", id), zap.String("by", actor.UserID))
	uc.publish(ctx, event.OrderCancelled, cancelled, restored)
	return cancelled, nil
}

func (uc *orderUseCase) CancelOrderItem(ctx context.Context, actor dto.Actor, orderID, itemID, reason string) (*model.Order, error) {
	if reason == "" {
		reason = "Item cancelled by user"
	}
	return uc.cancelItem(ctx, actor, actor.UserID, orderID, itemID, reason)
}

func (uc *orderUseCase) DeleteOrderItem(ctx context.Context, actor dto.Actor, orderID, itemID string) (*model.Order, error) {
	return uc.cancelItem(ctx, actor, dto.SystemActor.UserID, orderID, itemID, "Item removed from order")
}

func (uc *orderUseCase) cancelItem(ctx context.Context, actor dto.Actor, logUserID, orderID, itemID, reason string) (*model.Order, error) {
	var (
		o             *model.Order
		cancelled     *model.OrderItem
		autoCancelled bool
	)
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if o, err = uc.lockOrder(ctx, actor, orderID); err != nil {
			return err
		}
		if !o.Status.Cancellable() {
			return apperror.InvalidTransition("cannot cancel items in order with %s state", o.Status)
		}
		item, err := uc.findItem(ctx, o.ID, itemID)
		if err != nil {
			return err
		}
		if item.Status == model.OrderCancelled {
			return nil
		}

		items, err := uc.repo.FindItems(ctx, o.ID)
		if err != nil {
			return apperror.Internal("failed to load order items", err)
		}
		remaining := 0
		for _, it := range items {
			if it.ID != item.ID && it.Status != model.OrderCancelled {
				remaining++
			}
		}

		o.TotalAmount = o.TotalAmount.Sub(pricing.ItemTotal(item))
		o.GSTAmount = o.GSTAmount.Sub(pricing.ItemGST(item))
		pricing.Reprice(o)
		o.UpdatedAt = time.Now()

		item.Status = model.OrderCancelled
		item.UpdatedAt = o.UpdatedAt
		if err := uc.repo.UpdateItem(ctx, item); err != nil {
			return apperror.Internal("failed to update order item", err)
		}
		if err := uc.stock.IncreaseStock(ctx, &invdto.StockChangeInput{
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			MovementType:  model.MovementCancellation,
			ReferenceType: "order_item",
			ReferenceID:   item.ID,
			Notes:         reason,
			UserID:        logUserID,
		}); err != nil {
			return err
		}
		comment := fmt.Sprintf("Item %s cancelled: %s", item.ProductName, reason)
		if err := uc.appendLog(ctx, o.ID, o.Status, comment, logUserID); err != nil {
			return err
		}

		if remaining == 0 {
			o.Status = model.OrderCancelled
			autoCancelled = true
			if err := uc.appendLog(ctx, o.ID, model.OrderCancelled, "All items cancelled, order automatically cancelled", logUserID); err != nil {
				return err
			}
		}
		if err := uc.repo.Update(ctx, o); err != nil {
			return apperror.Internal("failed to update order", err)
		}
		cancelled = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := uc.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if cancelled != nil {
		uc.publish(ctx, event.OrderItemCancelled, updated, []model.OrderItem{*cancelled})
	}
	if autoCancelled {
		uc.publish(ctx, event.OrderCancelled, updated, nil)
	}
	return updated, nil
}

func (uc *orderUseCase) ApplyDiscount(ctx context.Context, actor dto.Actor, id string, input *dto.ApplyDiscountInput) (*model.Order, error) {
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := uc.lockOrder(ctx, actor, id)
		if err != nil {
			return err
		}
		if o.Status != model.OrderPending {
			return apperror.InvalidTransition("can only apply discount to pending orders")
		}
		if err := pricing.ValidateDiscount(o.TotalAmount, input.DiscountAmount, input.DiscountType); err != nil {
			return err
		}

		// A percentage is stored as the percentage; the money off is derived from the total.
		o.DiscountAmount = input.DiscountAmount
		o.DiscountType = input.DiscountType
		pricing.Reprice(o)
		o.UpdatedAt = time.Now()
		if err := uc.repo.Update(ctx, o); err != nil {
			return apperror.Internal("failed to update order", err)
		}

		comment := fmt.Sprintf("Discount applied: %s %s", input.DiscountAmount.String(), o.Currency)
		if input.DiscountType == model.DiscountPercentage {
			comment = fmt.Sprintf("Discount applied: %s%%", input.DiscountAmount.String())
		}
		return uc.appendLog(ctx, o.ID, o.Status, comment, actor.UserID)
	})
	if err != nil {
		return nil, err
	}
	return uc.load(ctx, id)
}

func (uc *orderUseCase) UpdateOrderItem(ctx context.Context, actor dto.Actor, orderID, itemID string, input *dto.UpdateItemInput) (*model.Order, error) {
	if input.Quantity == nil && input.Status == nil {
		return nil, apperror.Validation("quantity or status is required")
	}
	if input.Quantity != nil && *input.Quantity < 1 {
		return nil, apperror.Validation("quantity must be at least 1")
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, apperror.Validation("unknown item status %q", *input.Status)
	}
	if input.Status != nil && *input.Status == model.OrderCancelled {
		return uc.CancelOrderItem(ctx, actor, orderID, itemID, "")
	}

	var (
		updated *model.OrderItem
		delta   int
	)
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := uc.lockOrder(ctx, actor, orderID)
		if err != nil {
			return err
		}
		if o.Status != model.OrderPending {
			return apperror.InvalidTransition("can only update items in pending orders")
		}
		item, err := uc.findItem(ctx, o.ID, itemID)
		if err != nil {
			return err
		}
		if item.Status == model.OrderCancelled {
			return apperror.InvalidTransition("order item %s is cancelled", item.ID)
		}

		oldTotal, oldGST := pricing.ItemTotal(item), pricing.ItemGST(item)

		if input.Quantity != nil {
			delta = *input.Quantity - item.Quantity
			if err := uc.moveStock(ctx, item, delta, actor.UserID); err != nil {
				return err
			}
			item.Quantity = *input.Quantity
		}
		if input.Status != nil {
			item.Status = *input.Status
		}
		item.UpdatedAt = time.Now()
		if err := uc.repo.UpdateItem(ctx, item); err != nil {
			return apperror.Internal("failed to update order item", err)
		}

		o.TotalAmount = o.TotalAmount.Sub(oldTotal).Add(pricing.ItemTotal(item))
		o.GSTAmount = o.GSTAmount.Sub(oldGST).Add(pricing.ItemGST(item))
		pricing.Reprice(o)
		o.UpdatedAt = item.UpdatedAt
		if err := uc.repo.Update(ctx, o); err != nil {
			return apperror.Internal("failed to update order", err)
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	result, err := uc.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if delta != 0 {
		moved := *updated
		moved.Quantity = delta
		if delta < 0 {
			moved.Quantity = -delta
		}
		uc.publish(ctx, event.OrderItemUpdated, result, []model.OrderItem{moved})
	}
	return result, nil
}

// moveStock takes delta more units for a line (delta > 0) or gives -delta back.
func (uc *orderUseCase) moveStock(ctx context.Context, item *model.OrderItem, delta int, userID string) error {
	change := &invdto.StockChangeInput{
		ProductID:     item.ProductID,
		MovementType:  model.MovementOrderUpdate,
		ReferenceType: "order_item",
		ReferenceID:   item.ID,
		UserID:        userID,
	}
	switch {
	case delta > 0:
		p, err := uc.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if !p.CanFulfil(delta) {
			return apperror.Unavailable("product %s is not available in the requested quantity", p.Name)
		}
		change.Quantity = delta
		return uc.stock.DecreaseStock(ctx, change)
	case delta < 0:
		change.Quantity = -delta
		return uc.stock.IncreaseStock(ctx, change)
	}
	return nil
}
