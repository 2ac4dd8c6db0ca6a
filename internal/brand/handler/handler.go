package handler

import (
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-commerce-service/internal/auth"
	"github.com/fekuna/omnipos-commerce-service/internal/brand"
	"github.com/fekuna/omnipos-commerce-service/internal/brand/dto"
	"github.com/fekuna/omnipos-commerce-service/internal/httpx"
	"github.com/fekuna/omnipos-commerce-service/internal/logger"
)

type BrandHandler struct {
	uc     brand.UseCase
	logger logger.ZapLogger
}

func NewBrandHandler(uc brand.UseCase, log logger.ZapLogger) *BrandHandler {
	return &BrandHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *BrandHandler) RegisterRoutes(mux *http.ServeMux, authn httpx.Middleware) {
	admin := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, authn, auth.RequireRole(auth.RoleAdmin))
	}

	mux.HandleFunc("GET /api/brands", h.ListBrands)
	mux.HandleFunc("GET /api/brands/{id}", h.GetBrand)
	mux.HandleFunc("GET /api/brands/{id}/products", h.ListBrandProducts)
	mux.HandleFunc("GET /api/brand-slugs/{slug}", h.GetBrandBySlug)
	mux.Handle("POST /api/brands", admin(h.CreateBrand))
	mux.Handle("PUT /api/brands/{id}", admin(h.UpdateBrand))
	mux.Handle("DELETE /api/brands/{id}", admin(h.DeleteBrand))
}

func (h *BrandHandler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	var input dto.CreateBrandInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	b, err := h.uc.CreateBrand(r.Context(), &input)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, b)
}

func (h *BrandHandler) GetBrand(w http.ResponseWriter, r *http.Request) {
	b, err := h.uc.GetBrand(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func (h *BrandHandler) GetBrandBySlug(w http.ResponseWriter, r *http.Request) {
	b, err := h.uc.GetBrandBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func (h *BrandHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := &dto.BrandFilters{
		Name:      q.Get("name"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
		Page:      httpx.QueryInt(r, "page", 1),
		PageSize:  httpx.QueryInt(r, "page_size", 10),
	}
	if v := q.Get("is_active"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			filters.IsActive = &b
		}
	}

	brands, total, err := h.uc.ListBrands(r.Context(), filters)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"brands":    brands,
		"total":     total,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

func (h *BrandHandler) ListBrandProducts(w http.ResponseWriter, r *http.Request) {
	page := httpx.QueryInt(r, "page", 1)
	pageSize := httpx.QueryInt(r, "page_size", 20)

	products, total, err := h.uc.ListBrandProducts(r.Context(), r.PathValue("id"), page, pageSize)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"products":  products,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func (h *BrandHandler) UpdateBrand(w http.ResponseWriter, r *http.Request) {
	var input dto.UpdateBrandInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	input.ID = r.PathValue("id")

	b, err := h.uc.UpdateBrand(r.Context(), &input)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func (h *BrandHandler) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.DeleteBrand(r.Context(), r.PathValue("id")); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
