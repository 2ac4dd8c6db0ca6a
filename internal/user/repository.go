package user

import (
	"context"

	"github.com/fekuna/omnipos-commerce-service/internal/model"
)

type Repository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.User, error)

	// Update writes the editable profile columns and reports whether the row exists.
	Update(ctx context.Context, u *model.User) (bool, error)
}
