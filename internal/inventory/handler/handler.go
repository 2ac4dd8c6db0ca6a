package handler

import (
	"context"
	"net/http"

	"github.com/fekuna/omnipos-commerce-service/internal/auth"
	"github.com/fekuna/omnipos-commerce-service/internal/httpx"
	"github.com/fekuna/omnipos-commerce-service/internal/inventory"
	"github.com/fekuna/omnipos-commerce-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-commerce-service/internal/logger"
	"go.uber.org/zap"
)

// Refresher drops stale catalog views after a manual adjustment; product.UseCase implements it.
type Refresher interface {
	RefreshProduct(ctx context.Context, id string) error
}

type InventoryHandler struct {
	uc        inventory.UseCase
	refresher Refresher
	logger    logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, refresher Refresher, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:        uc,
		refresher: refresher,
		logger:    log,
	}
}

// RegisterRoutes mounts the stock audit endpoints; both are admin only.
func (h *InventoryHandler) RegisterRoutes(mux *http.ServeMux, authn httpx.Middleware) {
	guard := []httpx.Middleware{authn, auth.RequireRole(auth.RoleAdmin)}
	mux.Handle("GET /api/inventory/movements", httpx.Chain(http.HandlerFunc(h.ListMovements), guard...))
	mux.Handle("POST /api/inventory/adjust", httpx.Chain(http.HandlerFunc(h.AdjustStock), guard...))
}

func (h *InventoryHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var input dto.AdjustStockInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	input.UserID = auth.GetUserID(r.Context())

	movement, err := h.uc.AdjustStock(r.Context(), &input)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	if h.refresher != nil {
		if err := h.refresher.RefreshProduct(r.Context(), input.ProductID); err != nil {
			h.logger.Warn("failed to refresh product after adjustment", zap.String("product_id", input.ProductID), zap.Error(err))
		}
	}
	httpx.WriteJSON(w, http.StatusOK, movement)
}

func (h *InventoryHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := &dto.MovementFilters{
		ProductID:     q.Get("product_id"),
		MovementType:  q.Get("movement_type"),
		ReferenceType: q.Get("reference_type"),
		ReferenceID:   q.Get("reference_id"),
		Page:          httpx.QueryInt(r, "page", 1),
		PageSize:      httpx.QueryInt(r, "page_size", 20),
	}

	movements, total, err := h.uc.ListMovements(r.Context(), filters)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"movements": movements,
		"total":     total,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}
