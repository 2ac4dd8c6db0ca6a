package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-commerce-service/internal/auth"
	"github.com/fekuna/omnipos-commerce-service/internal/cart"
	"github.com/fekuna/omnipos-commerce-service/internal/cart/dto"
	"github.com/fekuna/omnipos-commerce-service/internal/httpx"
	"github.com/fekuna/omnipos-commerce-service/internal/logger"
)

type CartHandler struct {
	uc     cart.UseCase
	logger logger.ZapLogger
}

func NewCartHandler(uc cart.UseCase, log logger.ZapLogger) *CartHandler {
	return &CartHandler{
		uc:     uc,
		logger: log,
	}
}

// RegisterRoutes mounts the cart of the authenticated user.
func (h *CartHandler) RegisterRoutes(mux *http.ServeMux, authn httpx.Middleware) {
	handle := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, httpx.Chain(fn, authn))
	}

	handle("GET /api/cart", h.GetCart)
	handle("DELETE /api/cart", h.ClearCart)
	handle("GET /api/cart/snapshot", h.GetSnapshot)
	handle("POST /api/cart/items", h.AddItem)
	handle("PUT /api/cart/items/{id}", h.UpdateItem)
	handle("DELETE /api/cart/items/{id}", h.RemoveItem)
	handle("POST /api/cart/items/{id}/save-for-later", h.SaveForLater)
	handle("POST /api/cart/items/{id}/move-to-cart", h.MoveToCart)
}

func (h *CartHandler) respond(w http.ResponseWriter, r *http.Request, v *dto.CartView, err error) {
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, v)
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	v, err := h.uc.GetCartView(r.Context(), auth.GetUserID(r.Context()))
	h.respond(w, r, v, err)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var input dto.AddItemInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	v, err := h.uc.AddItem(r.Context(), auth.GetUserID(r.Context()), &input)
	h.respond(w, r, v, err)
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var input dto.UpdateItemInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	v, err := h.uc.UpdateItem(r.Context(), auth.GetUserID(r.Context()), r.PathValue("id"), &input)
	h.respond(w, r, v, err)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	v, err := h.uc.RemoveItem(r.Context(), auth.GetUserID(r.Context()), r.PathValue("id"))
	h.respond(w, r, v, err)
}

func (h *CartHandler) SaveForLater(w http.ResponseWriter, r *http.Request) {
	v, err := h.uc.SaveForLater(r.Context(), auth.GetUserID(r.Context()), r.PathValue("id"))
	h.respond(w, r, v, err)
}

func (h *CartHandler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	v, err := h.uc.MoveToCart(r.Context(), auth.GetUserID(r.Context()), r.PathValue("id"))
	h.respond(w, r, v, err)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	v, err := h.uc.ClearCart(r.Context(), auth.GetUserID(r.Context()))
	h.respond(w, r, v, err)
}

func (h *CartHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.uc.GetCartSnapshot(r.Context(), auth.GetUserID(r.Context()))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, snap)
}
