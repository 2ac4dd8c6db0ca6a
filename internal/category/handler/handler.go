package handler

import (
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-commerce-service/internal/auth"
	"github.com/fekuna/omnipos-commerce-service/internal/category"
	"github.com/fekuna/omnipos-commerce-service/internal/category/dto"
	"github.com/fekuna/omnipos-commerce-service/internal/httpx"
	"github.com/fekuna/omnipos-commerce-service/internal/logger"
)

type CategoryHandler struct {
	uc     category.UseCase
	logger logger.ZapLogger
}

func NewCategoryHandler(uc category.UseCase, log logger.ZapLogger) *CategoryHandler {
	return &CategoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *CategoryHandler) RegisterRoutes(mux *http.ServeMux, authn httpx.Middleware) {
	admin := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, authn, auth.RequireRole(auth.RoleAdmin))
	}

	mux.HandleFunc("GET /api/categories", h.ListCategories)
	mux.HandleFunc("GET /api/categories/{id}", h.GetCategory)
	mux.HandleFunc("GET /api/category-slugs/{slug}", h.GetCategoryBySlug)
	mux.Handle("POST /api/categories", admin(h.CreateCategory))
	mux.Handle("PUT /api/categories/{id}", admin(h.UpdateCategory))
	mux.Handle("DELETE /api/categories/{id}", admin(h.DeleteCategory))
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input dto.CreateCategoryInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	c, err := h.uc.CreateCategory(r.Context(), &input)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, c)
}

func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.uc.GetCategory(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

func (h *CategoryHandler) GetCategoryBySlug(w http.ResponseWriter, r *http.Request) {
	c, err := h.uc.GetCategoryBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := &dto.CategoryFilters{
		Name:      q.Get("name"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
		Page:      httpx.QueryInt(r, "page", 1),
		PageSize:  httpx.QueryInt(r, "page_size", 20),
	}
	if q.Has("parent_id") {
		parentID := q.Get("parent_id")
		filters.ParentID = &parentID
	}
	if v := q.Get("is_active"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			filters.IsActive = &b
		}
	}

	categories, total, err := h.uc.ListCategories(r.Context(), filters)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"total":      total,
		"page":       filters.Page,
		"page_size":  filters.PageSize,
	})
}

func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var input dto.UpdateCategoryInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	input.ID = r.PathValue("id")

	c, err := h.uc.UpdateCategory(r.Context(), &input)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
