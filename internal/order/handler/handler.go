package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-commerce-service/internal/auth"
	"github.com/fekuna/omnipos-commerce-service/internal/httpx"
	"github.com/fekuna/omnipos-commerce-service/internal/logger"
	"github.com/fekuna/omnipos-commerce-service/internal/model"
	"github.com/fekuna/omnipos-commerce-service/internal/order"
	"github.com/fekuna/omnipos-commerce-service/internal/order/dto"
)

type OrderHandler struct {
	uc     order.UseCase
	logger logger.ZapLogger
}

func NewOrderHandler(uc order.UseCase, log logger.ZapLogger) *OrderHandler {
	return &OrderHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux, authn httpx.Middleware) {
	user := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, httpx.Chain(fn, authn))
	}
	admin := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, httpx.Chain(fn, authn, auth.RequireRole(auth.RoleAdmin)))
	}

	user("POST /api/orders/create", h.CreateOrder)
	user("GET /api/me/orders", h.ListMyOrders)
	user("GET /api/orders/{id}", h.GetOrder)
	user("GET /api/orders/{id}/items", h.GetOrderItems)
	user("GET /api/orders/{id}/status-log", h.GetStatusLog)
	user("PATCH /api/orders/{id}/cancel", h.CancelOrder)
	user("PATCH /api/orders/{id}/items/{itemId}/cancel", h.CancelOrderItem)
	user("POST /api/orders/{id}/discount", h.ApplyDiscount)
	user("PATCH /api/orders/{id}/items/{itemId}", h.UpdateOrderItem)
	user("DELETE /api/orders/{id}/items/{itemId}", h.DeleteOrderItem)

	admin("GET /api/orders", h.ListOrders)
	admin("GET /api/users/{userId}/orders", h.ListUserOrders)
	admin("PATCH /api/orders/{id}/status", h.UpdateStatus)
}

func actorFrom(r *http.Request) dto.Actor {
	return dto.Actor{UserID: auth.GetUserID(r.Context()), Admin: auth.IsAdmin(r.Context())}
}

func (h *OrderHandler) respond(w http.ResponseWriter, r *http.Request, status int, v interface{}, err error) {
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, status, v)
}

func filtersFrom(r *http.Request) (*dto.OrderFilters, error) {
	start, err := httpx.QueryTime(r, "start_date")
	if err != nil {
		return nil, err
	}
	end, err := httpx.QueryTime(r, "end_date")
	if err != nil {
		return nil, err
	}
	q := r.URL.Query()
	return &dto.OrderFilters{
		Status:    model.OrderStatus(q.Get("status")),
		StartDate: start,
		EndDate:   end,
		Sort:      q.Get("sort"),
		Page:      httpx.QueryInt(r, "page", 1),
		Limit:     httpx.QueryInt(r, "limit", 0),
	}, nil
}

// decodeOptional accepts an empty body.
func decodeOptional(r *http.Request, dst interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return httpx.DecodeJSON(r, dst)
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var input dto.CreateOrderInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	input.UserID = auth.GetUserID(r.Context())
	o, err := h.uc.CreateOrder(r.Context(), &input)
	h.respond(w, r, http.StatusCreated, o, err)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.uc.GetOrder(r.Context(), actorFrom(r), r.PathValue("id"))
	h.respond(w, r, http.StatusOK, o, err)
}

func (h *OrderHandler) GetOrderItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.uc.GetOrderItems(r.Context(), actorFrom(r), r.PathValue("id"))
	h.respond(w, r, http.StatusOK, map[string]interface{}{"items": items}, err)
}

func (h *OrderHandler) GetStatusLog(w http.ResponseWriter, r *http.Request) {
	logs, err := h.uc.GetStatusLog(r.Context(), actorFrom(r), r.PathValue("id"))
	h.respond(w, r, http.StatusOK, map[string]interface{}{"status_log": logs}, err)
}

func (h *OrderHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	filters, err := filtersFrom(r)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	list, err := h.uc.ListUserOrders(r.Context(), auth.GetUserID(r.Context()), filters)
	h.respond(w, r, http.StatusOK, list, err)
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	filters, err := filtersFrom(r)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	filters.UserID = r.URL.Query().Get("user_id")
	list, err := h.uc.ListOrders(r.Context(), filters)
	h.respond(w, r, http.StatusOK, list, err)
}

func (h *OrderHandler) ListUserOrders(w http.ResponseWriter, r *http.Request) {
	filters, err := filtersFrom(r)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	list, err := h.uc.ListUserOrders(r.Context(), r.PathValue("userId"), filters)
	h.respond(w, r, http.StatusOK, list, err)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var input dto.UpdateStatusInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	input.UserID = auth.GetUserID(r.Context())
	o, err := h.uc.UpdateStatus(r.Context(), r.PathValue("id"), &input)
	h.respond(w, r, http.StatusOK, o, err)
}

func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	var input dto.CancelInput
	if err := decodeOptional(r, &input); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	o, err := h.uc.CancelOrder(r.Context(), actorFrom(r), r.PathValue("id"), input.Reason)
	h.respond(w, r, http.StatusOK, o, err)
}

func (h *OrderHandler) CancelOrderItem(w http.ResponseWriter, r *http.Request) {
	var input dto.CancelInput
	if err := decodeOptional(r, &input); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	o, err := h.uc.CancelOrderItem(r.Context(), actorFrom(r), r.PathValue("id"), r.PathValue("itemId"), input.Reason)
	h.respond(w, r, http.StatusOK, o, err)
}

func (h *OrderHandler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	var input dto.ApplyDiscountInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	o, err := h.uc.ApplyDiscount(r.Context(), actorFrom(r), r.PathValue("id"), &input)
	h.respond(w, r, http.StatusOK, o, err)
}

func (h *OrderHandler) UpdateOrderItem(w http.ResponseWriter, r *http.Request) {
	var input dto.UpdateItemInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	o, err := h.uc.UpdateOrderItem(r.Context(), actorFrom(r), r.PathValue("id"), r.PathValue("itemId"), &input)
	h.respond(w, r, http.StatusOK, o, err)
}

func (h *OrderHandler) DeleteOrderItem(w http.ResponseWriter, r *http.Request) {
	o, err := h.uc.DeleteOrderItem(r.Context(), actorFrom(r), r.PathValue("id"), r.PathValue("itemId"))
	h.respond(w, r, http.StatusOK, o, err)
}
