package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-commerce-service/internal/auth"
	"github.com/fekuna/omnipos-commerce-service/internal/dashboard"
	"github.com/fekuna/omnipos-commerce-service/internal/httpx"
	"github.com/fekuna/omnipos-commerce-service/internal/logger"
	"github.com/fekuna/omnipos-commerce-service/internal/model"
	orderdto "github.com/fekuna/omnipos-commerce-service/internal/order/dto"
)

type DashboardHandler struct {
	uc     dashboard.UseCase
	logger logger.ZapLogger
}

func NewDashboardHandler(uc dashboard.UseCase, log logger.ZapLogger) *DashboardHandler {
	return &DashboardHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *DashboardHandler) RegisterRoutes(mux *http.ServeMux, authn httpx.Middleware) {
	mux.Handle("GET /api/me/orders-with-payments", httpx.Chain(http.HandlerFunc(h.UserOrdersWithPayments), authn))
	mux.Handle("GET /api/orders/{id}/overview", httpx.Chain(http.HandlerFunc(h.OrderOverview), authn))
	mux.Handle("GET /api/admin/orders-with-payments", httpx.Chain(http.HandlerFunc(h.OrdersWithCustomers), authn, auth.RequireRole(auth.RoleAdmin)))
}

func (h *DashboardHandler) UserOrdersWithPayments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := &orderdto.OrderFilters{
		Status: model.OrderStatus(q.Get("status")),
		Sort:   q.Get("sort"),
		Page:   httpx.QueryInt(r, "page", 1),
		Limit:  httpx.QueryInt(r, "limit", 0),
	}
	view, err := h.uc.UserOrdersWithPayments(r.Context(), auth.GetUserID(r.Context()), filters)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *DashboardHandler) OrdersWithCustomers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := &orderdto.OrderFilters{
		UserID: q.Get("user_id"),
		Status: model.OrderStatus(q.Get("status")),
		Sort:   q.Get("sort"),
		Page:   httpx.QueryInt(r, "page", 1),
		Limit:  httpx.QueryInt(r, "limit", 0),
	}
	view, err := h.uc.OrdersWithCustomers(r.Context(), filters)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *DashboardHandler) OrderOverview(w http.ResponseWriter, r *http.Request) {
	actor := orderdto.Actor{UserID: auth.GetUserID(r.Context()), Admin: auth.IsAdmin(r.Context())}
	overview, err := h.uc.OrderStatusWithUser(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, overview)
}
