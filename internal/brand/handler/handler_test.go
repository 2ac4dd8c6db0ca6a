package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-commerce-service/internal/apperror"
	"github.com/fekuna/omnipos-commerce-service/internal/auth"
	"github.com/fekuna/omnipos-commerce-service/internal/brand"
	"github.com/fekuna/omnipos-commerce-service/internal/brand/dto"
	"github.com/fekuna/omnipos-commerce-service/internal/httpx"
	"github.com/fekuna/omnipos-commerce-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubUseCase struct {
	brand.UseCase
	created *dto.CreateBrandInput
	filters *dto.BrandFilters
	page    [2]int
}

func (s *stubUseCase) CreateBrand(_ context.Context, in *dto.CreateBrandInput) (*model.Brand, error) {
	s.created = in
	return &model.Brand{BaseModel: model.BaseModel{ID: "b-1"}, Name: in.Name}, nil
}

func (s *stubUseCase) GetBrandBySlug(_ context.Context, slug string) (*model.Brand, error) {
	if slug != "acme" {
		return nil, apperror.NotFound("brand %q not found", slug)
	}
	return &model.Brand{BaseModel: model.BaseModel{ID: "b-1"}, Slug: slug}, nil
}

func (s *stubUseCase) ListBrands(_ context.Context, f *dto.BrandFilters) ([]model.Brand, int, error) {
	s.filters = f
	return []model.Brand{}, 0, nil
}

func (s *stubUseCase) ListBrandProducts(_ context.Context, id string, page, pageSize int) ([]model.Product, int, error) {
	if id != "b-1" {
		return nil, 0, apperror.NotFound("brand %s not found", id)
	}
	s.page = [2]int{page, pageSize}
	return []model.Product{{BaseModel: model.BaseModel{ID: "p-1"}}}, 1, nil
}

func (s *stubUseCase) DeleteBrand(_ context.Context, _ string) error {
	return nil
}

func headerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := r.Header.Get("X-Role")
		if role == "" {
			httpx.WriteUnauthorized(w, r, "")
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), &auth.UserContext{UserID: "u-1", Role: role})))
	})
}

func newMux(uc brand.UseCase) *http.ServeMux {
	mux := http.NewServeMux()
	NewBrandHandler(uc, zap.NewNop()).RegisterRoutes(mux, headerAuth)
	return mux
}

func TestBrandRoutes(t *testing.T) {
	uc := &stubUseCase{}
	mux := newMux(uc)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		role       string
		wantStatus int
	}{
		{"by slug", http.MethodGet, "/api/brand-slugs/acme", "", "", http.StatusOK},
		{"by slug missing", http.MethodGet, "/api/brand-slugs/globex", "", "", http.StatusNotFound},
		{"products of missing brand", http.MethodGet, "/api/brands/b-9/products", "", "", http.StatusNotFound},
		{"create anonymous", http.MethodPost, "/api/brands", `{"name":"Acme"}`, "", http.StatusUnauthorized},
		{"create as user", http.MethodPost, "/api/brands", `{"name":"Acme"}`, auth.RoleUser, http.StatusForbidden},
		{"create as admin", http.MethodPost, "/api/brands", `{"name":"Acme","logo_url":"https://cdn/acme.png"}`, auth.RoleAdmin, http.StatusCreated},
		{"delete as user", http.MethodDelete, "/api/brands/b-1", "", auth.RoleUser, http.StatusForbidden},
		{"delete as admin", http.MethodDelete, "/api/brands/b-1", "", auth.RoleAdmin, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.role != "" {
				req.Header.Set("X-Role", tt.role)
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}

	require.NotNil(t, uc.created)
	assert.Equal(t, "https://cdn/acme.png", uc.created.LogoURL)
}

func TestListBrandProducts_Pages(t *testing.T) {
	uc := &stubUseCase{}
	req := httptest.NewRequest(http.MethodGet, "/api/brands/b-1/products?page=3", nil)
	rec := httptest.NewRecorder()
	newMux(uc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, [2]int{3, 20}, uc.page)

	var body struct {
		Products []model.Product `json:"products"`
		Total    int             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
	assert.Len(t, body.Products, 1)
}

func TestListBrands_ParsesFilters(t *testing.T) {
	uc := &stubUseCase{}
	req := httptest.NewRequest(http.MethodGet, "/api/brands?name=ac&is_active=true&sort_by=name&sort_order=desc", nil)
	rec := httptest.NewRecorder()
	newMux(uc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ac", uc.filters.Name)
	assert.True(t, *uc.filters.IsActive)
	assert.Equal(t, "name", uc.filters.SortBy)
	assert.Equal(t, 1, uc.filters.Page)
	assert.Equal(t, 10, uc.filters.PageSize)
}
