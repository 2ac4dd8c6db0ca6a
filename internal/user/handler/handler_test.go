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
	"github.com/fekuna/omnipos-commerce-service/internal/user"
	"github.com/fekuna/omnipos-commerce-service/internal/user/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubUseCase struct {
	user.UseCase
	profile *dto.UpdateProfileInput
	address *dto.UpdateAddressInput
	image   *dto.UpdateProfileImageInput
}

func (s *stubUseCase) GetProfile(_ context.Context, id string) (*model.User, error) {
	if id != "u-1" {
		return nil, apperror.NotFound("user %s not found", id)
	}
	return &model.User{BaseModel: model.BaseModel{ID: id}, FullName: "Ada"}, nil
}

func (s *stubUseCase) UpdateProfile(_ context.Context, in *dto.UpdateProfileInput) (*model.User, error) {
	s.profile = in
	return &model.User{BaseModel: model.BaseModel{ID: in.UserID}}, nil
}

func (s *stubUseCase) UpdateAddress(_ context.Context, in *dto.UpdateAddressInput) (*model.User, error) {
	s.address = in
	if in.City == "" {
		return nil, apperror.Validation("city is required")
	}
	return &model.User{BaseModel: model.BaseModel{ID: in.UserID}}, nil
}

func (s *stubUseCase) UpdateProfileImage(_ context.Context, in *dto.UpdateProfileImageInput) (*model.User, error) {
	s.image = in
	return &model.User{BaseModel: model.BaseModel{ID: in.UserID}}, nil
}

// headerAuth signs the request in as the user named by X-User.
func headerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-User")
		if id == "" {
			httpx.WriteUnauthorized(w, r, "")
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), &auth.UserContext{UserID: id, Role: auth.RoleUser})))
	})
}

func TestProfileRoutes(t *testing.T) {
	uc := &stubUseCase{}
	mux := http.NewServeMux()
	NewProfileHandler(uc, zap.NewNop()).RegisterRoutes(mux, headerAuth)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		userID     string
		wantStatus int
	}{
		{"get anonymous", http.MethodGet, "/api/me/profile", "", "", http.StatusUnauthorized},
		{"get", http.MethodGet, "/api/me/profile", "", "u-1", http.StatusOK},
		{"get deleted account", http.MethodGet, "/api/me/profile", "", "u-9", http.StatusNotFound},
		{"update", http.MethodPut, "/api/me/profile", `{"full_name":"Ada L","phone":""}`, "u-1", http.StatusOK},
		{"update malformed", http.MethodPut, "/api/me/profile", `{"full_name":`, "u-1", http.StatusBadRequest},
		{"address", http.MethodPatch, "/api/me/address", `{"street":"1 Main St","city":"Pune","state":"MH","postal_code":"411001","country":"IN"}`, "u-1", http.StatusOK},
		{"address invalid", http.MethodPatch, "/api/me/address", `{"street":"1 Main St"}`, "u-1", http.StatusBadRequest},
		{"image", http.MethodPatch, "/api/me/image", `{"profile_image":"https://cdn/ada.png"}`, "u-1", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.userID != "" {
				req.Header.Set("X-User", tt.userID)
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}

	require.NotNil(t, uc.profile)
	assert.Equal(t, "u-1", uc.profile.UserID)
	assert.Equal(t, "Ada L", *uc.profile.FullName)
	require.NotNil(t, uc.profile.Phone)
	assert.Empty(t, *uc.profile.Phone)
	assert.Nil(t, uc.profile.DateOfBirth)

	require.NotNil(t, uc.image)
	assert.Equal(t, "u-1", uc.image.UserID)
	assert.Equal(t, "https://cdn/ada.png", uc.image.ProfileImage)
}

func TestUpdateProfile_IgnoresUserIDInBody(t *testing.T) {
	uc := &stubUseCase{}
	mux := http.NewServeMux()
	NewProfileHandler(uc, zap.NewNop()).RegisterRoutes(mux, headerAuth)

	req := httptest.NewRequest(http.MethodPut, "/api/me/profile", strings.NewReader(`{"UserID":"u-2","full_name":"Mallory"}`))
	req.Header.Set("X-User", "u-1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-1", uc.profile.UserID)
}
