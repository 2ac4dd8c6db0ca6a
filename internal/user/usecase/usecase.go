package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-commerce-service/internal/apperror"
	"github.com/fekuna/omnipos-commerce-service/internal/model"
	"github.com/fekuna/omnipos-commerce-service/internal/user"
	"github.com/fekuna/omnipos-commerce-service/internal/user/dto"
)

const dateLayout = "2006-01-02"

type userUseCase struct {
	repo user.Repository
}

func NewUserUseCase(repo user.Repository) user.UseCase {
	return &userUseCase{repo: repo}
}

func (uc *userUseCase) GetProfile(ctx context.Context, id string) (*model.User, error) {
	u, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal("failed to load user", err)
	}
	if u == nil {
		return nil, apperror.NotFound("user %s not found", id)
	}
	return u, nil
}

func (uc *userUseCase) GetProfiles(ctx context.Context, ids []string) (map[string]model.User, error) {
	users, err := uc.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Internal("failed to load users", err)
	}
	out := make(map[string]model.User, len(users))
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (uc *userUseCase) UpdateProfile(ctx context.Context, input *dto.UpdateProfileInput) (*model.User, error) {
	u, err := uc.GetProfile(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return nil, apperror.Validation("full_name cannot be empty")
		}
		u.FullName = name
	}
	if input.Phone != nil {
		u.Phone = optional(strings.TrimSpace(*input.Phone))
	}
	if input.DateOfBirth != nil {
		if u.DateOfBirth, err = parseBirthDate(*input.DateOfBirth); err != nil {
			return nil, err
		}
	}
	if input.IsCompleted != nil {
		u.IsCompleted = *input.IsCompleted
	}
	return uc.save(ctx, u)
}

func (uc *userUseCase) UpdateAddress(ctx context.Context, input *dto.UpdateAddressInput) (*model.User, error) {
	addr := model.Address{
		Street:     strings.TrimSpace(input.Street),
		City:       strings.TrimSpace(input.City),
		State:      strings.TrimSpace(input.State),
		PostalCode: strings.TrimSpace(input.PostalCode),
		Country:    strings.TrimSpace(input.Country),
	}
	required := []struct{ field, value string }{
		{"street", addr.Street},
		{"city", addr.City},
		{"state", addr.State},
		{"postal_code", addr.PostalCode},
		{"country", addr.Country},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, apperror.Validation("%s is required", r.field)
		}
	}

	u, err := uc.GetProfile(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	u.Address = addr
	return uc.save(ctx, u)
}

func (uc *userUseCase) UpdateProfileImage(ctx context.Context, input *dto.UpdateProfileImageInput) (*model.User, error) {
	img := strings.TrimSpace(input.ProfileImage)
	if img == "" {
		return nil, apperror.Validation("profile_image is required")
	}
	u, err := uc.GetProfile(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	u.ProfileImage = &img
	return uc.save(ctx, u)
}

// save covers a row deleted between the read and the write as not found.
func (uc *userUseCase) save(ctx context.Context, u *model.User) (*model.User, error) {
	u.UpdatedAt = time.Now()
	found, err := uc.repo.Update(ctx, u)
	if err != nil {
		return nil, apperror.Internal("failed to update user", err)
	}
	if !found {
		return nil, apperror.NotFound("user %s not found", u.ID)
	}
	return u, nil
}

func parseBirthDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, apperror.Validation("date_of_birth must be YYYY-MM-DD")
	}
	if !d.Before(time.Now()) {
		return nil, apperror.Validation("date_of_birth must be in the past")
	}
	return &d, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
