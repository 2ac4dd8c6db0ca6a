package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-commerce-service/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWriteError_Mapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{"validation", apperror.Validation("quantity must be at least 1"), http.StatusBadRequest, "quantity must be at least 1"},
		{"not found", apperror.NotFound("cart not found"), http.StatusNotFound, "cart not found"},
		{"unavailable", apperror.Unavailable("insufficient stock"), http.StatusConflict, "insufficient stock"},
		{"transition", apperror.InvalidTransition("order is cancelled"), http.StatusConflict, "order is cancelled"},
		{"authorization", apperror.Authorization("not your order"), http.StatusForbidden, "not your order"},
		{"internal is masked", errors.New("pq: connection refused"), http.StatusInternalServerError, "An unexpected error occurred. Please try again later."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/orders/o-1", nil)

			WriteError(rec, req, zap.NewNop(), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
			var p ProblemDetail
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
			assert.Equal(t, tt.wantDetail, p.Detail)
			assert.Equal(t, "/api/orders/o-1", p.Instance)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Quantity int `json:"quantity"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quantity":3}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, 3, dst.Quantity)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quantity":`))
	assert.ErrorIs(t, DecodeJSON(req, &dst), apperror.ErrValidation)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	assert.ErrorIs(t, DecodeJSON(req, &dst), apperror.ErrValidation)
}

func TestQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&limit=abc&start_date=2025-01-02&end_date=bogus", nil)

	assert.Equal(t, 3, QueryInt(req, "page", 1))
	assert.Equal(t, 10, QueryInt(req, "limit", 10))

	start, err := QueryTime(req, "start_date")
	require.NoError(t, err)
	assert.Equal(t, 2025, start.Year())

	_, err = QueryTime(req, "end_date")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	missing, err := QueryTime(req, "other")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	// another client has its own bucket
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.2, 10.0.0.9")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRecoverer(t *testing.T) {
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), Recoverer(zap.NewNop()), RequestLogger(zap.NewNop()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
