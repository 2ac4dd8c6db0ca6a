package usecase

import (
	"context"
	"encoding/json"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/fekuna/omnipos-commerce-service/internal/apperror"
	"github.com/fekuna/omnipos-commerce-service/internal/database"
	"github.com/fekuna/omnipos-commerce-service/internal/event"
	"github.com/fekuna/omnipos-commerce-service/internal/logger"
	"github.com/fekuna/omnipos-commerce-service/internal/model"
	orderdto "github.com/fekuna/omnipos-commerce-service/internal/order/dto"
	"github.com/fekuna/omnipos-commerce-service/internal/payment"
	"github.com/fekuna/omnipos-commerce-service/internal/payment/dto"
	"github.com/fekuna/omnipos-commerce-service/internal/payment/gateway"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"
)

// gatewayStatuses maps provider vocabulary onto PaymentStatus. Unknown values mean processing.
var gatewayStatuses = map[string]model.PaymentStatus{
	"success":            model.PaymentCompleted,
	"successful":         model.PaymentCompleted,
	"completed":          model.PaymentCompleted,
	"authorized":         model.PaymentCompleted,
	"captured":           model.PaymentCompleted,
	"paid":               model.PaymentCompleted,
	"pending":            model.PaymentPending,
	"processing":         model.PaymentProcessing,
	"failed":             model.PaymentFailed,
	"error":              model.PaymentFailed,
	"declined":           model.PaymentFailed,
	"cancelled":          model.PaymentCancelled,
	"refunded":           model.PaymentRefunded,
	"partially_refunded": model.PaymentPartiallyRefunded,
}

func MapGatewayStatus(status string) model.PaymentStatus {
	if s, ok := gatewayStatuses[strings.ToLower(status)]; ok {
		return s
	}
	return model.PaymentProcessing
}

var sortFields = map[string]bool{
	"created_at":  true,
	"updated_at":  true,
	"amount_paid": true,
	"status":      true,
}

type Config struct {
	DefaultLimit int
	MaxLimit     int
}

type paymentUseCase struct {
	repo     payment.Repository
	orders   payment.Orders
	gateways *gateway.Registry
	tx       database.Transactor
	events   *event.Publisher
	cfg      Config
	logger   logger.ZapLogger
}

func NewPaymentUseCase(
	repo payment.Repository,
	orders payment.Orders,
	gateways *gateway.Registry,
	tx database.Transactor,
	events *event.Publisher,
	cfg Config,
	log logger.ZapLogger,
) payment.UseCase {
	if cfg.DefaultLimit < 1 {
		cfg.DefaultLimit = 10
	}
	if cfg.MaxLimit < cfg.DefaultLimit {
		cfg.MaxLimit = 100
	}
	return &paymentUseCase{
		repo:     repo,
		orders:   orders,
		gateways: gateways,
		tx:       tx,
		events:   events,
		cfg:      cfg,
		logger:   log,
	}
}

// withMetadata returns raw with key set to v. Unreadable metadata is replaced.
func withMetadata(raw types.JSONText, key string, v interface{}) types.JSONText {
	m := map[string]interface{}{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &m)
	}
	m[key] = v
	out, err := json.Marshal(m)
	if err != nil {
		return raw
	}
	return out
}

func (uc *paymentUseCase) publish(ctx context.Context, eventType string, p *model.Payment) {
	uc.events.Publish(ctx, eventType, p.OrderID, event.PaymentPayload{
		ID:      p.ID,
		OrderID: p.OrderID,
		UserID:  p.UserID,
		Status:  string(p.Status),
		Amount:  p.AmountPaid.String(),
	})
}

func (uc *paymentUseCase) Initiate(ctx context.Context, input *dto.InitiateInput) (*dto.InitiateResult, error) {
	if input.OrderID == "" {
		return nil, apperror.Validation("order_id is required")
	}
	if !input.Method.Valid() {
		return nil, apperror.Validation("unsupported payment method %q", input.Method)
	}
	if input.PaymentType == "" {
		input.PaymentType = model.PaymentTypeFull
	}
	if !input.PaymentType.Valid() {
		return nil, apperror.Validation("unsupported payment type %q", input.PaymentType)
	}
	gw, err := uc.gateways.Get(input.Gateway)
	if err != nil {
		return nil, err
	}

	o, err := uc.orders.GetOrder(ctx, orderdto.Actor{UserID: input.UserID}, input.OrderID)
	if err != nil {
		return nil, err
	}
	if o.Status != model.OrderPending {
		return nil, apperror.InvalidTransition("cannot initiate payment for order in %s state", o.Status)
	}
	if err := uc.ensureNoOpenPayment(ctx, o.ID); err != nil {
		return nil, err
	}

	resp, err := gw.Initiate(ctx, &gateway.InitiateRequest{
		Amount:    o.FinalAmount,
		Currency:  o.Currency,
		OrderID:   o.ID,
		UserID:    input.UserID,
		Method:    input.Method,
		ReturnURL: input.ReturnURL,
		Metadata:  input.Metadata,
	})
	if err != nil {
		return nil, apperror.Internal("payment gateway rejected initiation", err)
	}

	gstNumber := input.GSTNumber
	if gstNumber == "" {
		gstNumber = o.GSTNumber
	}
	metadata := types.JSONText(`{}`)
	for k, v := range input.Metadata {
		metadata = withMetadata(metadata, k, v)
	}
	metadata = withMetadata(metadata, "gateway_data", resp.Metadata)

	now := time.Now()
	expiry := resp.ExpiryTime
	p := &model.Payment{
		BaseModel:   model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		OrderID:     o.ID,
		UserID:      input.UserID,
		AmountPaid:  o.FinalAmount,
		Currency:    o.Currency,
		Method:      input.Method,
		PaymentType: input.PaymentType,
		Gateway:     gw.Name(),
		PaymentRef:  resp.PaymentRef,
		PaymentURL:  resp.PaymentURL,
		ExpiryTime:  &expiry,
		Status:      model.PaymentPending,
		GSTNumber:   gstNumber,
		GSTAmount:   o.GSTAmount,
		Metadata:    metadata,
	}

	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		// Moving the order locks its row, so concurrent initiations queue up behind it.
		if _, err := uc.orders.UpdateStatus(ctx, o.ID, &orderdto.UpdateStatusInput{
			Status:  model.OrderProcessing,
			Comment: "Payment initiated",
			UserID:  input.UserID,
		}); err != nil {
			return err
		}
		if err := uc.ensureNoOpenPayment(ctx, o.ID); err != nil {
			return err
		}
		if err := uc.repo.Create(ctx, p); err != nil {
			return apperror.Internal("failed to save payment", err)
		}
		return nil
	})
	if err != nil {
		uc.compensate(ctx, gw, resp.PaymentRef, err)
		return nil, err
	}

	uc.logger.Info("payment initiated",
		zap.String("payment_id", p.ID),
		zap.String("order_id", p.OrderID),
		zap.String("gateway", p.Gateway),
	)
	uc.publish(ctx, event.PaymentInitiated, p)

	return &dto.InitiateResult{
		PaymentID:  p.ID,
		OrderID:    o.ID,
		Amount:     o.FinalAmount,
		Currency:   o.Currency,
		PaymentURL: resp.PaymentURL,
		ExpiryTime: resp.ExpiryTime,
		Method:     input.Method,
	}, nil
}

func (uc *paymentUseCase) ensureNoOpenPayment(ctx context.Context, orderID string) error {
	open, err := uc.repo.HasOpenPayment(ctx, orderID)
	if err != nil {
		return apperror.Internal("failed to check payments", err)
	}
	if open {
		return apperror.InvalidTransition("order %s already has a payment in progress", orderID)
	}
	return nil
}

// compensate aborts a gateway attempt whose payment could not be recorded.
func (uc *paymentUseCase) compensate(ctx context.Context, gw gateway.Gateway, ref string, cause error) {
	uc.logger.Warn("aborting gateway payment after failed initiation",
		zap.String("gateway", gw.Name()),
		zap.String("payment_ref", ref),
		zap.Error(cause),
	)
	if _, err := gw.Abort(context.WithoutCancel(ctx), ref); err != nil {
		uc.logger.Error("compensating abort failed",
			zap.String("gateway", gw.Name()),
			zap.String("payment_ref", ref),
			zap.Error(err),
		)
	}
}

func (uc *paymentUseCase) HandleWebhook(ctx context.Context, body []byte, signature string, input *dto.WebhookInput) (*dto.WebhookResult, error) {
	if input.PaymentRef == "" || input.Status == "" {
		return nil, apperror.Validation("payment_ref and status are required")
	}

	p, err := uc.repo.FindByRef(ctx, input.PaymentRef, false)
	if err != nil {
		return nil, apperror.Internal("failed to load payment", err)
	}
	if p == nil {
		return nil, apperror.NotFound("payment %s not found", input.PaymentRef)
	}
	gw, err := uc.gateways.Get(p.Gateway)
	if err != nil {
		return nil, err
	}
	if err := gw.VerifyWebhook(body, signature); err != nil {
		return nil, err
	}

	status := MapGatewayStatus(input.Status)
	duplicate, unchanged := false, false
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		fresh, err := uc.repo.RecordWebhookEvent(ctx, &model.PaymentWebhookEvent{
			ID:         uuid.New().String(),
			PaymentRef: input.PaymentRef,
			Event:      input.Event,
			Status:     input.Status,
			Payload:    body,
			CreatedAt:  time.Now(),
		})
		if err != nil {
			return apperror.Internal("failed to record webhook", err)
		}
		if !fresh {
			duplicate = true
			return nil
		}

		if p, err = uc.repo.FindByRef(ctx, input.PaymentRef, true); err != nil {
			return apperror.Internal("failed to load payment", err)
		}
		if p.Status == status && !p.Status.Open() {
			unchanged = true
			return nil
		}
		if !webhookAllowed(p.Status, status) {
			return apperror.InvalidTransition("payment %s is already %s", p.ID, p.Status)
		}

		p.Status = status
		p.Metadata = withMetadata(p.Metadata, "webhook_data", input)
		p.UpdatedAt = time.Now()
		if err := uc.repo.Update(ctx, p); err != nil {
			return apperror.Internal("failed to update payment", err)
		}
		return uc.applyToOrder(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	if duplicate {
		uc.logger.Info("duplicate webhook acknowledged", zap.String("payment_ref", input.PaymentRef), zap.String("status", input.Status))
		return &dto.WebhookResult{Success: true, Message: "Webhook already processed"}, nil
	}
	if unchanged {
		return &dto.WebhookResult{Success: true, Message: "Payment already " + string(p.Status)}, nil
	}

	switch p.Status {
	case model.PaymentCompleted:
		uc.publish(ctx, event.PaymentCompleted, p)
	case model.PaymentFailed:
		uc.publish(ctx, event.PaymentFailed, p)
	case model.PaymentCancelled:
		uc.publish(ctx, event.PaymentCancelled, p)
	case model.PaymentRefunded, model.PaymentPartiallyRefunded:
		uc.publish(ctx, event.PaymentRefunded, p)
	}
	return &dto.WebhookResult{Success: true, Message: "Webhook processed successfully"}, nil
}

// webhookTransitions lists where a webhook may move a payment that has left pending/processing.
// Failed, cancelled and refunded payments are final.
var webhookTransitions = map[model.PaymentStatus][]model.PaymentStatus{
	model.PaymentCompleted:         {model.PaymentRefunded, model.PaymentPartiallyRefunded},
	model.PaymentPartiallyRefunded: {model.PaymentRefunded},
}

func webhookAllowed(from, to model.PaymentStatus) bool {
	if from.Open() {
		return true
	}
	return slices.Contains(webhookTransitions[from], to)
}

// orderCancelled reports whether the order was cancelled while its payment was still open.
func (uc *paymentUseCase) orderCancelled(ctx context.Context, orderID string) (bool, error) {
	o, err := uc.orders.GetOrder(ctx, orderdto.SystemActor, orderID)
	if err != nil {
		return false, err
	}
	return o.Status == model.OrderCancelled, nil
}

func (uc *paymentUseCase) applyToOrder(ctx context.Context, p *model.Payment) error {
	if p.Status == model.PaymentFailed || p.Status == model.PaymentCancelled {
		cancelled, err := uc.orderCancelled(ctx, p.OrderID)
		if err != nil || cancelled {
			return err
		}
	}

	var err error
	switch p.Status {
	case model.PaymentCompleted:
		_, err = uc.orders.UpdateStatus(ctx, p.OrderID, &orderdto.UpdateStatusInput{
			Status:  model.OrderProcessing,
			Comment: "Payment completed, order is being processed",
			UserID:  orderdto.SystemActor.UserID,
		})
	case model.PaymentFailed:
		_, err = uc.orders.UpdateStatus(ctx, p.OrderID, &orderdto.UpdateStatusInput{
			Status:  model.OrderPending,
			Comment: "Payment failed, order is pending payment",
			UserID:  orderdto.SystemActor.UserID,
		})
	case model.PaymentCancelled:
		_, err = uc.orders.CancelOrder(ctx, orderdto.SystemActor, p.OrderID, "Payment cancelled")
	}
	return err
}

func (uc *paymentUseCase) Refund(ctx context.Context, id string, input *dto.RefundInput) (*model.Payment, error) {
	var p *model.Payment
	var refundRef string
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if p, err = uc.lockPayment(ctx, orderdto.SystemActor, id); err != nil {
			return err
		}
		if p.Status != model.PaymentCompleted {
			return apperror.InvalidTransition("cannot refund payment with status %s", p.Status)
		}

		amount := p.AmountPaid
		if input.Amount != nil {
			amount = *input.Amount
		}
		if !amount.IsPositive() || amount.GreaterThan(p.AmountPaid) {
			return apperror.Validation("refund amount must be greater than 0 and at most %s", p.AmountPaid.String())
		}

		gw, err := uc.gateways.Get(p.Gateway)
		if err != nil {
			return err
		}
		resp, err := gw.ProcessRefund(ctx, &gateway.RefundRequest{PaymentRef: p.PaymentRef, Amount: amount, Reason: input.Reason})
		if err != nil {
			return apperror.Internal("payment gateway rejected refund", err)
		}
		refundRef = resp.Reference

		now := time.Now()
		if err := uc.repo.InsertRefund(ctx, &model.PaymentRefund{
			ID:        uuid.New().String(),
			PaymentID: p.ID,
			Amount:    amount,
			Reason:    input.Reason,
			Reference: resp.Reference,
			CreatedAt: now,
		}); err != nil {
			return apperror.Internal("failed to save refund", err)
		}

		p.Status = model.PaymentPartiallyRefunded
		if amount.Equal(p.AmountPaid) {
			p.Status = model.PaymentRefunded
		}
		p.UpdatedAt = now
		if err := uc.repo.Update(ctx, p); err != nil {
			return apperror.Internal("failed to update payment", err)
		}

		if p.Status != model.PaymentRefunded {
			return nil
		}
		_, err = uc.orders.UpdateStatus(ctx, p.OrderID, &orderdto.UpdateStatusInput{
			Status:  model.OrderRefunded,
			Comment: "Payment refunded: " + input.Reason,
			UserID:  orderdto.SystemActor.UserID,
		})
		return err
	})
	if err != nil {
		if refundRef != "" {
			// The gateway has moved the money; reconcile by hand from this entry.
			uc.logger.Error("gateway refund not recorded",
				zap.String("payment_id", id),
				zap.String("refund_reference", refundRef),
				zap.Error(err),
			)
		}
		return nil, err
	}

	uc.publish(ctx, event.PaymentRefunded, p)
	return uc.withRefunds(ctx, p)
}

func (uc *paymentUseCase) Abort(ctx context.Context, actor orderdto.Actor, id string) (*model.Payment, error) {
	var p *model.Payment
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if p, err = uc.lockPayment(ctx, actor, id); err != nil {
			return err
		}
		if !p.Status.Open() {
			return apperror.InvalidTransition("cannot abort payment with status %s", p.Status)
		}

		gw, err := uc.gateways.Get(p.Gateway)
		if err != nil {
			return err
		}
		resp, err := gw.Abort(ctx, p.PaymentRef)
		if err != nil {
			return apperror.Internal("payment gateway rejected abort", err)
		}

		p.Status = model.PaymentCancelled
		p.Metadata = withMetadata(p.Metadata, "abort_data", resp)
		p.UpdatedAt = time.Now()
		if err := uc.repo.Update(ctx, p); err != nil {
			return apperror.Internal("failed to update payment", err)
		}

		cancelled, err := uc.orderCancelled(ctx, p.OrderID)
		if err != nil || cancelled {
			return err
		}
		_, err = uc.orders.UpdateStatus(ctx, p.OrderID, &orderdto.UpdateStatusInput{
			Status:  model.OrderPending,
			Comment: "Payment aborted, order is pending payment",
			UserID:  actor.UserID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, event.PaymentCancelled, p)
	return uc.withRefunds(ctx, p)
}

func (uc *paymentUseCase) lockPayment(ctx context.Context, actor orderdto.Actor, id string) (*model.Payment, error) {
	p, err := uc.repo.FindByID(ctx, id, true)
	if err != nil {
		return nil, apperror.Internal("failed to load payment", err)
	}
	if p == nil {
		return nil, apperror.NotFound("payment %s not found", id)
	}
	if !actor.Admin && actor.UserID != p.UserID {
		return nil, apperror.Authorization("payment does not belong to user")
	}
	return p, nil
}

func (uc *paymentUseCase) GetPayment(ctx context.Context, actor orderdto.Actor, id string) (*model.Payment, error) {
	p, err := uc.repo.FindByID(ctx, id, false)
	if err != nil {
		return nil, apperror.Internal("failed to load payment", err)
	}
	if p == nil {
		return nil, apperror.NotFound("payment %s not found", id)
	}
	if !actor.Admin && actor.UserID != p.UserID {
		return nil, apperror.Authorization("payment does not belong to user")
	}
	return uc.withRefunds(ctx, p)
}

func (uc *paymentUseCase) withRefunds(ctx context.Context, p *model.Payment) (*model.Payment, error) {
	payments := []model.Payment{*p}
	if err := uc.attachRefunds(ctx, payments); err != nil {
		return nil, err
	}
	return &payments[0], nil
}

func (uc *paymentUseCase) attachRefunds(ctx context.Context, payments []model.Payment) error {
	ids := make([]string, len(payments))
	for i := range payments {
		ids[i] = payments[i].ID
		payments[i].RefundDetails = []model.PaymentRefund{}
	}
	refunds, err := uc.repo.FindRefunds(ctx, ids)
	if err != nil {
		return apperror.Internal("failed to load refunds", err)
	}
	index := make(map[string]int, len(payments))
	for i := range payments {
		index[payments[i].ID] = i
	}
	for _, r := range refunds {
		if i, ok := index[r.PaymentID]; ok {
			payments[i].RefundDetails = append(payments[i].RefundDetails, r)
		}
	}
	return nil
}

func (uc *paymentUseCase) ListOrderPayments(ctx context.Context, actor orderdto.Actor, orderID string) ([]model.Payment, error) {
	if _, err := uc.orders.GetOrder(ctx, actor, orderID); err != nil {
		return nil, err
	}
	payments, err := uc.repo.FindByOrderIDs(ctx, []string{orderID})
	if err != nil {
		return nil, apperror.Internal("failed to list payments", err)
	}
	if err := uc.attachRefunds(ctx, payments); err != nil {
		return nil, err
	}
	return payments, nil
}

func (uc *paymentUseCase) ListUserPayments(ctx context.Context, userID string, filters *dto.PaymentFilters) (*dto.PaymentList, error) {
	if userID == "" {
		return nil, apperror.Validation("user_id is required")
	}
	filters.UserID = userID
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.Limit < 1 {
		filters.Limit = uc.cfg.DefaultLimit
	}
	if filters.Limit > uc.cfg.MaxLimit {
		filters.Limit = uc.cfg.MaxLimit
	}
	if filters.Method != "" && !filters.Method.Valid() {
		return nil, apperror.Validation("unsupported payment method %q", filters.Method)
	}
	sort := filters.Sort
	if sort == "" {
		sort = "-created_at"
	}
	field := strings.TrimPrefix(sort, "-")
	if !sortFields[field] {
		return nil, apperror.Validation("cannot sort by %q", field)
	}
	filters.SortField = field
	filters.SortDesc = strings.HasPrefix(sort, "-")

	payments, total, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, apperror.Internal("failed to list payments", err)
	}
	if err := uc.attachRefunds(ctx, payments); err != nil {
		return nil, err
	}
	return &dto.PaymentList{
		Payments: payments,
		Total:    total,
		Page:     filters.Page,
		Limit:    filters.Limit,
		Pages:    int(math.Ceil(float64(total) / float64(filters.Limit))),
	}, nil
}

func (uc *paymentUseCase) PaymentsByOrder(ctx context.Context, orderIDs []string) (map[string][]model.Payment, error) {
	payments, err := uc.repo.FindByOrderIDs(ctx, orderIDs)
	if err != nil {
		return nil, apperror.Internal("failed to list payments", err)
	}
	if err := uc.attachRefunds(ctx, payments); err != nil {
		return nil, err
	}
	byOrder := make(map[string][]model.Payment, len(orderIDs))
	for _, p := range payments {
		byOrder[p.OrderID] = append(byOrder[p.OrderID], p)
	}
	return byOrder, nil
}
