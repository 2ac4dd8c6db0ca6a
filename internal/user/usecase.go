package user

import (
	"context"

	"github.com/fekuna/omnipos-commerce-service/internal/model"
	"github.com/fekuna/omnipos-commerce-service/internal/user/dto"
)

// UseCase covers the profile a signed-in user can see and edit. Accounts and credentials are managed elsewhere.
type UseCase interface {
	GetProfile(ctx context.Context, id string) (*model.User, error)
	GetProfiles(ctx context.Context, ids []string) (map[string]model.User, error)
	UpdateProfile(ctx context.Context, input *dto.UpdateProfileInput) (*model.User, error)
	UpdateAddress(ctx context.Context, input *dto.UpdateAddressInput) (*model.User, error)
	UpdateProfileImage(ctx context.Context, input *dto.UpdateProfileImageInput) (*model.User, error)
}
