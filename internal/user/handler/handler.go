package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-commerce-service/internal/auth"
	"github.com/fekuna/omnipos-commerce-service/internal/httpx"
	"github.com/fekuna/omnipos-commerce-service/internal/logger"
	"github.com/fekuna/omnipos-commerce-service/internal/user"
	"github.com/fekuna/omnipos-commerce-service/internal/user/dto"
)

// ProfileHandler serves the signed-in user's own profile. The user always comes from the token.
type ProfileHandler struct {
	uc     user.UseCase
	logger logger.ZapLogger
}

func NewProfileHandler(uc user.UseCase, log logger.ZapLogger) *ProfileHandler {
	return &ProfileHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ProfileHandler) RegisterRoutes(mux *http.ServeMux, authn httpx.Middleware) {
	me := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, httpx.Chain(fn, authn))
	}

	me("GET /api/me/profile", h.GetProfile)
	me("PUT /api/me/profile", h.UpdateProfile)
	me("PATCH /api/me/address", h.UpdateAddress)
	me("PATCH /api/me/image", h.UpdateProfileImage)
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	u, err := h.uc.GetProfile(r.Context(), auth.GetUserID(r.Context()))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var input dto.UpdateProfileInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	input.UserID = auth.GetUserID(r.Context())

	u, err := h.uc.UpdateProfile(r.Context(), &input)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *ProfileHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	var input dto.UpdateAddressInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	input.UserID = auth.GetUserID(r.Context())

	u, err := h.uc.UpdateAddress(r.Context(), &input)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *ProfileHandler) UpdateProfileImage(w http.ResponseWriter, r *http.Request) {
	var input dto.UpdateProfileImageInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	input.UserID = auth.GetUserID(r.Context())

	u, err := h.uc.UpdateProfileImage(r.Context(), &input)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}
