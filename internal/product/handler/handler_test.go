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
	"github.com/fekuna/omnipos-commerce-service/internal/product"
	"github.com/fekuna/omnipos-commerce-service/internal/product/dto"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubUseCase struct {
	product.UseCase
	created *dto.CreateProductInput
	filters *dto.ProductFilters
}

func (s *stubUseCase) GetProduct(_ context.Context, id string) (*model.Product, error) {
	if id == "missing" {
		return nil, apperror.NotFound("product %s not found", id)
	}
	return &model.Product{BaseModel: model.BaseModel{ID: id}, Name: "Lamp"}, nil
}

func (s *stubUseCase) CreateProduct(_ context.Context, in *dto.CreateProductInput) (*model.Product, error) {
	s.created = in
	return &model.Product{BaseModel: model.BaseModel{ID: "p-new"}, Name: in.Name}, nil
}

func (s *stubUseCase) ListProducts(_ context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	s.filters = f
	return []model.Product{}, 0, nil
}

// headerAuth trusts an X-Role header; enough to exercise route guarding.
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

func newMux(uc product.UseCase) *http.ServeMux {
	mux := http.NewServeMux()
	NewProductHandler(uc, zap.NewNop()).RegisterRoutes(mux, headerAuth)
	return mux
}

func TestProductRoutes(t *testing.T) {
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
		{"get", http.MethodGet, "/api/products/p-1", "", "", http.StatusOK},
		{"get missing", http.MethodGet, "/api/products/missing", "", "", http.StatusNotFound},
		{"create anonymous", http.MethodPost, "/api/products", `{"name":"Lamp"}`, "", http.StatusUnauthorized},
		{"create as user", http.MethodPost, "/api/products", `{"name":"Lamp"}`, auth.RoleUser, http.StatusForbidden},
		{"create as admin", http.MethodPost, "/api/products", `{"name":"Lamp","price":"10.50"}`, auth.RoleAdmin, http.StatusCreated},
		{"create bad body", http.MethodPost, "/api/products", `{`, auth.RoleAdmin, http.StatusBadRequest},
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

	assert.Equal(t, "10.5", uc.created.Price.String())
}

func TestListProducts_ParsesFilters(t *testing.T) {
	uc := &stubUseCase{}
	req := httptest.NewRequest(http.MethodGet, "/api/products?q=lamp&is_available=true&min_price=5&page=2&page_size=7", nil)
	rec := httptest.NewRecorder()
	newMux(uc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "lamp", uc.filters.SearchQuery)
	assert.True(t, *uc.filters.IsAvailable)
	assert.Equal(t, "5", uc.filters.MinPrice.String())
	assert.Nil(t, uc.filters.MaxPrice)
	assert.Equal(t, 2, uc.filters.Page)
	assert.Equal(t, 7, uc.filters.PageSize)
}
