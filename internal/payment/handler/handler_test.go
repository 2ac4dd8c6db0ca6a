package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-commerce-service/internal/apperror"
	"github.com/fekuna/omnipos-commerce-service/internal/auth"
	"github.com/fekuna/omnipos-commerce-service/internal/httpx"
	"github.com/fekuna/omnipos-commerce-service/internal/model"
	orderdto "github.com/fekuna/omnipos-commerce-service/internal/order/dto"
	"github.com/fekuna/omnipos-commerce-service/internal/payment"
	"github.com/fekuna/omnipos-commerce-service/internal/payment/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubUseCase struct {
	payment.UseCase
	initiated *dto.InitiateInput
	body      string
	signature string
	refunded  string
	actor     orderdto.Actor
}

func (s *stubUseCase) Initiate(_ context.Context, in *dto.InitiateInput) (*dto.InitiateResult, error) {
	s.initiated = in
	return &dto.InitiateResult{PaymentID: "pay-1", OrderID: in.OrderID}, nil
}

func (s *stubUseCase) HandleWebhook(_ context.Context, body []byte, sig string, in *dto.WebhookInput) (*dto.WebhookResult, error) {
	s.body, s.signature = string(body), sig
	if in.PaymentRef == "unknown" {
		return nil, apperror.NotFound("payment not found")
	}
	return &dto.WebhookResult{Success: true, Message: "Webhook processed successfully"}, nil
}

func (s *stubUseCase) Refund(_ context.Context, id string, _ *dto.RefundInput) (*model.Payment, error) {
	s.refunded = id
	return &model.Payment{BaseModel: model.BaseModel{ID: id}, Status: model.PaymentRefunded}, nil
}

func (s *stubUseCase) Abort(_ context.Context, actor orderdto.Actor, id string) (*model.Payment, error) {
	s.actor = actor
	return &model.Payment{BaseModel: model.BaseModel{ID: id}, Status: model.PaymentCancelled}, nil
}

func as(userID, role string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID == "" {
				httpx.WriteUnauthorized(w, r, "")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), &auth.UserContext{UserID: userID, Role: role})))
		})
	}
}

func serve(uc payment.UseCase, userID, role string, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	NewPaymentHandler(uc, zap.NewNop()).RegisterRoutes(mux, as(userID, role))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestWebhook_PublicAndRaw(t *testing.T) {
	uc := &stubUseCase{}
	body := `{"payment_ref":"ref_1","status":"success","event":"payment.updated"}`
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", strings.NewReader(body))
	req.Header.Set(SignatureHeader, "abc123")

	rec := serve(uc, "", "", req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, body, uc.body)
	assert.Equal(t, "abc123", uc.signature)
	assert.Contains(t, rec.Body.String(), `"success":true`)

	rec = serve(uc, "", "", httptest.NewRequest(http.MethodPost, "/api/payments/webhook", strings.NewReader(`{"payment_ref":"unknown","status":"paid"}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(uc, "", "", httptest.NewRequest(http.MethodPost, "/api/payments/webhook", strings.NewReader(`not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInitiate_RequiresAuth(t *testing.T) {
	uc := &stubUseCase{}
	body := `{"order_id":"o-1","method":"upi","gateway":"stripe"}`

	rec := serve(uc, "", "", httptest.NewRequest(http.MethodPost, "/api/payments/initiate", strings.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(uc, "alice", auth.RoleUser, httptest.NewRequest(http.MethodPost, "/api/payments/initiate", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "alice", uc.initiated.UserID)
	assert.Equal(t, model.MethodUPI, uc.initiated.Method)
}

func TestRefund_AdminOnly(t *testing.T) {
	uc := &stubUseCase{}

	rec := serve(uc, "alice", auth.RoleUser, httptest.NewRequest(http.MethodPost, "/api/payments/pay-1/refund", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, uc.refunded)

	rec = serve(uc, "root", auth.RoleAdmin, httptest.NewRequest(http.MethodPost, "/api/payments/pay-1/refund", strings.NewReader(`{"reason":"damaged"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pay-1", uc.refunded)
}

func TestAbort_PassesActor(t *testing.T) {
	uc := &stubUseCase{}
	rec := serve(uc, "alice", auth.RoleUser, httptest.NewRequest(http.MethodPost, "/api/payments/pay-1/abort", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, orderdto.Actor{UserID: "alice"}, uc.actor)
}
