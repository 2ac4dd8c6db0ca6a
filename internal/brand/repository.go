package brand

import (
	"context"

	"github.com/fekuna/omnipos-commerce-service/internal/brand/dto"
	"github.com/fekuna/omnipos-commerce-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, brand *model.Brand) error
	FindByID(ctx context.Context, id string) (*model.Brand, error)
	FindBySlug(ctx context.Context, slug string) (*model.Brand, error)
	FindAll(ctx context.Context, filters *dto.BrandFilters) ([]model.Brand, int, error)
	IsSlugUnique(ctx context.Context, slug, excludeID string) (bool, error)
	Update(ctx context.Context, brand *model.Brand) error
	Delete(ctx context.Context, id string) (bool, error)
}
