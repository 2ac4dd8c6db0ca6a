package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/fekuna/omnipos-commerce-service/internal/apperror"
	"github.com/fekuna/omnipos-commerce-service/internal/auth"
	"github.com/fekuna/omnipos-commerce-service/internal/httpx"
	"github.com/fekuna/omnipos-commerce-service/internal/logger"
	"github.com/fekuna/omnipos-commerce-service/internal/model"
	orderdto "github.com/fekuna/omnipos-commerce-service/internal/order/dto"
	"github.com/fekuna/omnipos-commerce-service/internal/payment"
	"github.com/fekuna/omnipos-commerce-service/internal/payment/dto"
)

// SignatureHeader carries the webhook HMAC.
const SignatureHeader = "X-Webhook-Signature"

const maxWebhookBytes = 1 << 20

type PaymentHandler struct {
	uc     payment.UseCase
	logger logger.ZapLogger
}

func NewPaymentHandler(uc payment.UseCase, log logger.ZapLogger) *PaymentHandler {
	return &PaymentHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *PaymentHandler) RegisterRoutes(mux *http.ServeMux, authn httpx.Middleware) {
	user := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, httpx.Chain(fn, authn))
	}

	mux.HandleFunc("POST /api/payments/webhook", h.Webhook)

	user("POST /api/payments/initiate", h.Initiate)
	user("GET /api/payments/me", h.ListMyPayments)
	user("GET /api/orders/{id}/payments", h.ListOrderPayments)
	user("GET /api/payments/{id}", h.GetPayment)
	user("POST /api/payments/{id}/abort", h.Abort)
	mux.Handle("POST /api/payments/{id}/refund", httpx.Chain(http.HandlerFunc(h.Refund), authn, auth.RequireRole(auth.RoleAdmin)))
}

func actorFrom(r *http.Request) orderdto.Actor {
	return orderdto.Actor{UserID: auth.GetUserID(r.Context()), Admin: auth.IsAdmin(r.Context())}
}

func (h *PaymentHandler) respond(w http.ResponseWriter, r *http.Request, status int, v interface{}, err error) {
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, status, v)
}

func (h *PaymentHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	var input dto.InitiateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	input.UserID = auth.GetUserID(r.Context())
	res, err := h.uc.Initiate(r.Context(), &input)
	h.respond(w, r, http.StatusCreated, res, err)
}

// Webhook is called by gateways. The raw body is kept for signature checks.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		httpx.WriteError(w, r, h.logger, apperror.Validation("failed to read webhook body"))
		return
	}
	var input dto.WebhookInput
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&input); err != nil {
		httpx.WriteError(w, r, h.logger, apperror.Validation("invalid webhook body: %v", err))
		return
	}
	res, err := h.uc.HandleWebhook(r.Context(), body, r.Header.Get(SignatureHeader), &input)
	h.respond(w, r, http.StatusOK, res, err)
}

func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	p, err := h.uc.GetPayment(r.Context(), actorFrom(r), r.PathValue("id"))
	h.respond(w, r, http.StatusOK, p, err)
}

func (h *PaymentHandler) ListOrderPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.uc.ListOrderPayments(r.Context(), actorFrom(r), r.PathValue("id"))
	h.respond(w, r, http.StatusOK, map[string]interface{}{"payments": payments}, err)
}

func (h *PaymentHandler) ListMyPayments(w http.ResponseWriter, r *http.Request) {
	start, err := httpx.QueryTime(r, "start_date")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	end, err := httpx.QueryTime(r, "end_date")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	q := r.URL.Query()
	filters := &dto.PaymentFilters{
		Status:    model.PaymentStatus(q.Get("status")),
		Method:    model.PaymentMethod(q.Get("method")),
		Gateway:   q.Get("gateway"),
		StartDate: start,
		EndDate:   end,
		Sort:      q.Get("sort"),
		Page:      httpx.QueryInt(r, "page", 1),
		Limit:     httpx.QueryInt(r, "limit", 0),
	}
	list, err := h.uc.ListUserPayments(r.Context(), auth.GetUserID(r.Context()), filters)
	h.respond(w, r, http.StatusOK, list, err)
}

func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	var input dto.RefundInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	p, err := h.uc.Refund(r.Context(), r.PathValue("id"), &input)
	h.respond(w, r, http.StatusOK, p, err)
}

func (h *PaymentHandler) Abort(w http.ResponseWriter, r *http.Request) {
	p, err := h.uc.Abort(r.Context(), actorFrom(r), r.PathValue("id"))
	h.respond(w, r, http.StatusOK, p, err)
}
