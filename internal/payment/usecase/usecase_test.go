package usecase

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/fekuna/omnipos-commerce-service/internal/apperror"
	"github.com/fekuna/omnipos-commerce-service/internal/database/dbtest"
	"github.com/fekuna/omnipos-commerce-service/internal/model"
	orderdto "github.com/fekuna/omnipos-commerce-service/internal/order/dto"
	"github.com/fekuna/omnipos-commerce-service/internal/payment/dto"
	"github.com/fekuna/omnipos-commerce-service/internal/payment/gateway"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeRepo struct {
	payments  map[string]*model.Payment
	refunds   []model.PaymentRefund
	webhooks  map[string]bool
	createErr error
	refundErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{payments: map[string]*model.Payment{}, webhooks: map[string]bool{}}
}

func (f *fakeRepo) Create(_ context.Context, p *model.Payment) error {
	if f.createErr != nil {
		return f.createErr
	}
	cp := *p
	f.payments[p.ID] = &cp
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, id string, _ bool) (*model.Payment, error) {
	if p, ok := f.payments[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRepo) FindByRef(_ context.Context, ref string, _ bool) (*model.Payment, error) {
	for _, p := range f.payments {
		if p.PaymentRef == ref {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) Update(_ context.Context, p *model.Payment) error {
	cp := *p
	f.payments[p.ID] = &cp
	return nil
}

func (f *fakeRepo) FindByOrderIDs(_ context.Context, orderIDs []string) ([]model.Payment, error) {
	var out []model.Payment
	for _, p := range f.payments {
		for _, id := range orderIDs {
			if p.OrderID == id {
				out = append(out, *p)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) FindAll(_ context.Context, filters *dto.PaymentFilters) ([]model.Payment, int, error) {
	var out []model.Payment
	for _, p := range f.payments {
		if p.UserID == filters.UserID {
			out = append(out, *p)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepo) HasOpenPayment(_ context.Context, orderID string) (bool, error) {
	for _, p := range f.payments {
		if p.OrderID == orderID && p.Status.Open() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) InsertRefund(_ context.Context, r *model.PaymentRefund) error {
	if f.refundErr != nil {
		return f.refundErr
	}
	f.refunds = append(f.refunds, *r)
	return nil
}

func (f *fakeRepo) FindRefunds(_ context.Context, ids []string) ([]model.PaymentRefund, error) {
	var out []model.PaymentRefund
	for _, r := range f.refunds {
		for _, id := range ids {
			if r.PaymentID == id {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (f *fakeRepo) RecordWebhookEvent(_ context.Context, ev *model.PaymentWebhookEvent) (bool, error) {
	key := ev.PaymentRef + "|" + ev.Event + "|" + ev.Status
	if f.webhooks[key] {
		return false, nil
	}
	f.webhooks[key] = true
	return true, nil
}

type statusChange struct {
	status  model.OrderStatus
	comment string
}

type fakeOrders struct {
	orders    map[string]*model.Order
	changes   []statusChange
	cancelled []string
}

func (f *fakeOrders) GetOrder(_ context.Context, actor orderdto.Actor, id string) (*model.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, apperror.NotFound("order %s not found", id)
	}
	if !actor.CanAccess(o) {
		return nil, apperror.Authorization("order does not belong to user")
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id string, in *orderdto.UpdateStatusInput) (*model.Order, error) {
	f.orders[id].Status = in.Status
	f.changes = append(f.changes, statusChange{in.Status, in.Comment})
	return f.orders[id], nil
}

func (f *fakeOrders) CancelOrder(_ context.Context, _ orderdto.Actor, id, reason string) (*model.Order, error) {
	f.orders[id].Status = model.OrderCancelled
	f.cancelled = append(f.cancelled, reason)
	return f.orders[id], nil
}

// recordingGateway counts aborts on top of the mock.
type recordingGateway struct {
	*gateway.Mock
	aborted []string
}

func (g *recordingGateway) Abort(ctx context.Context, ref string) (*gateway.AbortResponse, error) {
	g.aborted = append(g.aborted, ref)
	return g.Mock.Abort(ctx, ref)
}

type fixture struct {
	uc     *paymentUseCase
	repo   *fakeRepo
	orders *fakeOrders
	gw     *recordingGateway
}

func newFixture(secret string) *fixture {
	f := &fixture{
		repo: newFakeRepo(),
		orders: &fakeOrders{orders: map[string]*model.Order{
			"o-1": {
				BaseModel:   model.BaseModel{ID: "o-1"},
				UserID:      "alice",
				Status:      model.OrderPending,
				FinalAmount: decimal.RequireFromString("177"),
				GSTAmount:   decimal.RequireFromString("27"),
				Currency:    "USD",
			},
		}},
		gw: &recordingGateway{Mock: gateway.NewMock(gateway.MockConfig{Name: "stripe", BaseURL: "https://pay.example.com", Secret: secret})},
	}
	f.uc = NewPaymentUseCase(f.repo, f.orders, gateway.NewRegistry(f.gw), &dbtest.Transactor{}, nil, Config{}, zap.NewNop()).(*paymentUseCase)
	return f
}

func (f *fixture) initiate(t *testing.T) *model.Payment {
	t.Helper()
	res, err := f.uc.Initiate(context.Background(), &dto.InitiateInput{
		UserID: "alice", OrderID: "o-1", Method: model.MethodCreditCard, Gateway: "stripe",
	})
	require.NoError(t, err)
	return f.repo.payments[res.PaymentID]
}

func TestMapGatewayStatus(t *testing.T) {
	tests := map[string]model.PaymentStatus{
		"success":            model.PaymentCompleted,
		"CAPTURED":           model.PaymentCompleted,
		"paid":               model.PaymentCompleted,
		"declined":           model.PaymentFailed,
		"error":              model.PaymentFailed,
		"cancelled":          model.PaymentCancelled,
		"partially_refunded": model.PaymentPartiallyRefunded,
		"something-new":      model.PaymentProcessing,
	}
	for in, want := range tests {
		assert.Equal(t, want, MapGatewayStatus(in), in)
	}
}

func TestInitiate(t *testing.T) {
	f := newFixture("")

	res, err := f.uc.Initiate(context.Background(), &dto.InitiateInput{
		UserID: "alice", OrderID: "o-1", Method: model.MethodUPI, Gateway: "stripe",
	})
	require.NoError(t, err)

	assert.Equal(t, "177", res.Amount.String())
	assert.Equal(t, "USD", res.Currency)
	assert.Equal(t, "https://pay.example.com/o-1", res.PaymentURL)

	p := f.repo.payments[res.PaymentID]
	require.NotNil(t, p)
	assert.Equal(t, model.PaymentPending, p.Status)
	assert.Equal(t, model.PaymentTypeFull, p.PaymentType)
	assert.Equal(t, "27", p.GSTAmount.String())
	assert.Regexp(t, `^ref_\d+_\d+$`, p.PaymentRef)
	assert.Equal(t, model.OrderProcessing, f.orders.orders["o-1"].Status)
	assert.Equal(t, "Payment initiated", f.orders.changes[0].comment)
}

func TestInitiate_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		input dto.InitiateInput
		setup func(f *fixture)
		want  error
	}{
		{"unknown gateway", dto.InitiateInput{UserID: "alice", OrderID: "o-1", Method: model.MethodUPI, Gateway: "bitcoin"}, nil, apperror.ErrValidation},
		{"bad method", dto.InitiateInput{UserID: "alice", OrderID: "o-1", Method: "barter", Gateway: "stripe"}, nil, apperror.ErrValidation},
		{"not owner", dto.InitiateInput{UserID: "mallory", OrderID: "o-1", Method: model.MethodUPI, Gateway: "stripe"}, nil, apperror.ErrAuthorization},
		{"order not pending", dto.InitiateInput{UserID: "alice", OrderID: "o-1", Method: model.MethodUPI, Gateway: "stripe"},
			func(f *fixture) { f.orders.orders["o-1"].Status = model.OrderShipped }, apperror.ErrInvalidTransition},
		{"payment in progress", dto.InitiateInput{UserID: "alice", OrderID: "o-1", Method: model.MethodUPI, Gateway: "stripe"},
			func(f *fixture) {
				f.repo.payments["p-0"] = &model.Payment{BaseModel: model.BaseModel{ID: "p-0"}, OrderID: "o-1", Status: model.PaymentProcessing}
			}, apperror.ErrInvalidTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture("")
			if tt.setup != nil {
				tt.setup(f)
			}
			_, err := f.uc.Initiate(context.Background(), &tt.input)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Empty(t, f.orders.changes)
		})
	}
}

func TestInitiate_CompensatesGatewayWhenSaveFails(t *testing.T) {
	f := newFixture("")
	f.repo.createErr = errors.New("disk full")

	_, err := f.uc.Initiate(context.Background(), &dto.InitiateInput{
		UserID: "alice", OrderID: "o-1", Method: model.MethodUPI, Gateway: "stripe",
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	require.Len(t, f.gw.aborted, 1)
	assert.Regexp(t, `^ref_`, f.gw.aborted[0])
}

func TestHandleWebhook_Outcomes(t *testing.T) {
	tests := []struct {
		status      string
		wantPayment model.PaymentStatus
		wantOrder   model.OrderStatus
	}{
		{"success", model.PaymentCompleted, model.OrderProcessing},
		{"declined", model.PaymentFailed, model.OrderPending},
		{"cancelled", model.PaymentCancelled, model.OrderCancelled},
		{"queued", model.PaymentProcessing, model.OrderProcessing},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			f := newFixture("")
			p := f.initiate(t)

			res, err := f.uc.HandleWebhook(context.Background(), []byte(`{}`), "", &dto.WebhookInput{
				Event: "payment.updated", PaymentRef: p.PaymentRef, Status: tt.status,
			})
			require.NoError(t, err)
			assert.True(t, res.Success)
			assert.Equal(t, tt.wantPayment, f.repo.payments[p.ID].Status)
			assert.Equal(t, tt.wantOrder, f.orders.orders["o-1"].Status)
		})
	}
}

func TestHandleWebhook_CancelledUsesSystemReason(t *testing.T) {
	f := newFixture("")
	p := f.initiate(t)

	_, err := f.uc.HandleWebhook(context.Background(), []byte(`{}`), "", &dto.WebhookInput{PaymentRef: p.PaymentRef, Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Payment cancelled"}, f.orders.cancelled)
}

func TestHandleWebhook_DuplicateIsAcknowledged(t *testing.T) {
	f := newFixture("")
	p := f.initiate(t)
	in := &dto.WebhookInput{Event: "payment.updated", PaymentRef: p.PaymentRef, Status: "success"}

	_, err := f.uc.HandleWebhook(context.Background(), []byte(`{}`), "", in)
	require.NoError(t, err)
	changes := len(f.orders.changes)

	res, err := f.uc.HandleWebhook(context.Background(), []byte(`{}`), "", in)
	require.NoError(t, err)
	assert.Equal(t, "Webhook already processed", res.Message)
	assert.Len(t, f.orders.changes, changes)
}

func TestHandleWebhook_Errors(t *testing.T) {
	f := newFixture("s3cret")
	p := f.initiate(t)
	body := []byte(`{"payment_ref":"x"}`)

	_, err := f.uc.HandleWebhook(context.Background(), body, "", &dto.WebhookInput{PaymentRef: "nope", Status: "success"})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	_, err = f.uc.HandleWebhook(context.Background(), body, "bad", &dto.WebhookInput{PaymentRef: p.PaymentRef, Status: "success"})
	assert.True(t, errors.Is(err, apperror.ErrAuthorization))

	_, err = f.uc.HandleWebhook(context.Background(), body, gateway.Sign("s3cret", body), &dto.WebhookInput{PaymentRef: p.PaymentRef, Status: "success"})
	assert.NoError(t, err)

	_, err = f.uc.HandleWebhook(context.Background(), body, "", &dto.WebhookInput{PaymentRef: p.PaymentRef})
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestHandleWebhook_FinalPaymentsRejectLateStatuses(t *testing.T) {
	tests := []struct {
		name  string
		first string
		late  string
	}{
		{"completed then cancelled", "success", "cancelled"},
		{"completed then failed", "success", "declined"},
		{"completed then processing", "captured", "queued"},
		{"failed then completed", "declined", "success"},
		{"cancelled then completed", "cancelled", "paid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture("")
			p := f.initiate(t)

			_, err := f.uc.HandleWebhook(context.Background(), []byte(`{}`), "", &dto.WebhookInput{Event: "first", PaymentRef: p.PaymentRef, Status: tt.first})
			require.NoError(t, err)
			before := f.repo.payments[p.ID].Status
			orderBefore := f.orders.orders["o-1"].Status
			cancelled := len(f.orders.cancelled)

			_, err = f.uc.HandleWebhook(context.Background(), []byte(`{}`), "", &dto.WebhookInput{Event: "late", PaymentRef: p.PaymentRef, Status: tt.late})
			assert.True(t, errors.Is(err, apperror.ErrInvalidTransition), "got %v", err)
			assert.Equal(t, before, f.repo.payments[p.ID].Status)
			assert.Equal(t, orderBefore, f.orders.orders["o-1"].Status)
			assert.Len(t, f.orders.cancelled, cancelled)
		})
	}
}

func TestHandleWebhook_CompletedCannotBeChargedTwice(t *testing.T) {
	f := newFixture("")
	p := f.initiate(t)
	complete(t, f, p)

	_, err := f.uc.HandleWebhook(context.Background(), []byte(`{}`), "", &dto.WebhookInput{Event: "late", PaymentRef: p.PaymentRef, Status: "failed"})
	require.Error(t, err)
	assert.Equal(t, model.OrderProcessing, f.orders.orders["o-1"].Status)

	_, err = f.uc.Initiate(context.Background(), &dto.InitiateInput{
		UserID: "alice", OrderID: "o-1", Method: model.MethodUPI, Gateway: "stripe",
	})
	assert.True(t, errors.Is(err, apperror.ErrInvalidTransition), "got %v", err)
}

func TestHandleWebhook_RefundAndRepeatAfterCompletion(t *testing.T) {
	f := newFixture("")
	p := f.initiate(t)
	complete(t, f, p)

	res, err := f.uc.HandleWebhook(context.Background(), []byte(`{}`), "", &dto.WebhookInput{Event: "again", PaymentRef: p.PaymentRef, Status: "captured"})
	require.NoError(t, err)
	assert.Equal(t, "Payment already completed", res.Message)

	_, err = f.uc.HandleWebhook(context.Background(), []byte(`{}`), "", &dto.WebhookInput{Event: "refund", PaymentRef: p.PaymentRef, Status: "partially_refunded"})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPartiallyRefunded, f.repo.payments[p.ID].Status)

	_, err = f.uc.HandleWebhook(context.Background(), []byte(`{}`), "", &dto.WebhookInput{Event: "refund", PaymentRef: p.PaymentRef, Status: "refunded"})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentRefunded, f.repo.payments[p.ID].Status)
}

func TestCancelledOrderReleasesOpenPayment(t *testing.T) {
	t.Run("cancelled webhook", func(t *testing.T) {
		f := newFixture("")
		p := f.initiate(t)
		f.orders.orders["o-1"].Status = model.OrderCancelled

		_, err := f.uc.HandleWebhook(context.Background(), []byte(`{}`), "", &dto.WebhookInput{PaymentRef: p.PaymentRef, Status: "cancelled"})
		require.NoError(t, err)
		assert.Equal(t, model.PaymentCancelled, f.repo.payments[p.ID].Status)
		assert.Empty(t, f.orders.cancelled)
	})

	t.Run("failed webhook", func(t *testing.T) {
		f := newFixture("")
		p := f.initiate(t)
		f.orders.orders["o-1"].Status = model.OrderCancelled

		_, err := f.uc.HandleWebhook(context.Background(), []byte(`{}`), "", &dto.WebhookInput{PaymentRef: p.PaymentRef, Status: "failed"})
		require.NoError(t, err)
		assert.Equal(t, model.OrderCancelled, f.orders.orders["o-1"].Status)
	})

	t.Run("abort", func(t *testing.T) {
		f := newFixture("")
		p := f.initiate(t)
		f.orders.orders["o-1"].Status = model.OrderCancelled
		changes := len(f.orders.changes)

		got, err := f.uc.Abort(context.Background(), orderdto.Actor{UserID: "alice"}, p.ID)
		require.NoError(t, err)
		assert.Equal(t, model.PaymentCancelled, got.Status)
		assert.Equal(t, model.OrderCancelled, f.orders.orders["o-1"].Status)
		assert.Len(t, f.orders.changes, changes)
	})
}

func complete(t *testing.T, f *fixture, p *model.Payment) {
	t.Helper()
	_, err := f.uc.HandleWebhook(context.Background(), []byte(`{}`), "", &dto.WebhookInput{PaymentRef: p.PaymentRef, Status: "paid"})
	require.NoError(t, err)
}

func TestRefund(t *testing.T) {
	f := newFixture("")
	p := f.initiate(t)

	_, err := f.uc.Refund(context.Background(), p.ID, &dto.RefundInput{Reason: "early"})
	assert.True(t, errors.Is(err, apperror.ErrInvalidTransition))

	complete(t, f, p)

	tooMuch := decimal.RequireFromString("200")
	_, err = f.uc.Refund(context.Background(), p.ID, &dto.RefundInput{Amount: &tooMuch})
	assert.True(t, errors.Is(err, apperror.ErrValidation))
	zero := decimal.Zero
	_, err = f.uc.Refund(context.Background(), p.ID, &dto.RefundInput{Amount: &zero})
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	got, err := f.uc.Refund(context.Background(), p.ID, &dto.RefundInput{Reason: "damaged"})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentRefunded, got.Status)
	require.Len(t, got.RefundDetails, 1)
	assert.Equal(t, "177", got.RefundDetails[0].Amount.String())
	assert.Regexp(t, `^refund_`, got.RefundDetails[0].Reference)
	assert.Equal(t, model.OrderRefunded, f.orders.orders["o-1"].Status)
	assert.Equal(t, "Payment refunded: damaged", f.orders.changes[len(f.orders.changes)-1].comment)
}

func TestRefund_LogsUnrecordedGatewayRefund(t *testing.T) {
	f := newFixture("")
	p := f.initiate(t)
	complete(t, f, p)

	core, logs := observer.New(zap.ErrorLevel)
	f.uc.logger = zap.New(core)
	f.repo.refundErr = errors.New("connection reset")

	_, err := f.uc.Refund(context.Background(), p.ID, &dto.RefundInput{Reason: "damaged"})
	require.Error(t, err)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))

	entries := logs.FilterMessage("gateway refund not recorded").All()
	require.Len(t, entries, 1)
	assert.Regexp(t, `^refund_`, entries[0].ContextMap()["refund_reference"])
	assert.Equal(t, p.ID, entries[0].ContextMap()["payment_id"])
}

func TestRefund_Partial(t *testing.T) {
	f := newFixture("")
	p := f.initiate(t)
	complete(t, f, p)

	part := decimal.RequireFromString("50")
	got, err := f.uc.Refund(context.Background(), p.ID, &dto.RefundInput{Amount: &part})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPartiallyRefunded, got.Status)
	assert.Equal(t, model.OrderProcessing, f.orders.orders["o-1"].Status)

	// only completed payments can be refunded
	_, err = f.uc.Refund(context.Background(), p.ID, &dto.RefundInput{Amount: &part})
	assert.True(t, errors.Is(err, apperror.ErrInvalidTransition))
}

func TestAbort(t *testing.T) {
	f := newFixture("")
	p := f.initiate(t)

	_, err := f.uc.Abort(context.Background(), orderdto.Actor{UserID: "mallory"}, p.ID)
	assert.True(t, errors.Is(err, apperror.ErrAuthorization))

	got, err := f.uc.Abort(context.Background(), orderdto.Actor{UserID: "alice"}, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCancelled, got.Status)
	assert.Contains(t, string(got.Metadata), "abort_data")
	assert.Equal(t, model.OrderPending, f.orders.orders["o-1"].Status)
	assert.Equal(t, []string{p.PaymentRef}, f.gw.aborted)

	_, err = f.uc.Abort(context.Background(), orderdto.Actor{UserID: "alice"}, p.ID)
	assert.True(t, errors.Is(err, apperror.ErrInvalidTransition))

	// the order can be paid again once the attempt is aborted
	f.initiate(t)
}

func TestListing(t *testing.T) {
	f := newFixture("")
	p := f.initiate(t)

	payments, err := f.uc.ListOrderPayments(context.Background(), orderdto.Actor{UserID: "alice"}, "o-1")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.NotNil(t, payments[0].RefundDetails)

	_, err = f.uc.ListOrderPayments(context.Background(), orderdto.Actor{UserID: "mallory"}, "o-1")
	assert.True(t, errors.Is(err, apperror.ErrAuthorization))

	_, err = f.uc.GetPayment(context.Background(), orderdto.Actor{UserID: "mallory"}, p.ID)
	assert.True(t, errors.Is(err, apperror.ErrAuthorization))

	list, err := f.uc.ListUserPayments(context.Background(), "alice", &dto.PaymentFilters{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, 100, list.Limit)

	_, err = f.uc.ListUserPayments(context.Background(), "alice", &dto.PaymentFilters{Sort: "payment_ref"})
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	byOrder, err := f.uc.PaymentsByOrder(context.Background(), []string{"o-1", "o-2"})
	require.NoError(t, err)
	assert.Len(t, byOrder["o-1"], 1)
	assert.Empty(t, byOrder["o-2"])
}
