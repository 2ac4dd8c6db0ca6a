package brand

import (
	"context"

	"github.com/fekuna/omnipos-commerce-service/internal/brand/dto"
	"github.com/fekuna/omnipos-commerce-service/internal/model"
)

type UseCase interface {
	CreateBrand(ctx context.Context, input *dto.CreateBrandInput) (*model.Brand, error)
	GetBrand(ctx context.Context, id string) (*model.Brand, error)
	GetBrandBySlug(ctx context.Context, slug string) (*model.Brand, error)
	ListBrands(ctx context.Context, filters *dto.BrandFilters) ([]model.Brand, int, error)
	UpdateBrand(ctx context.Context, input *dto.UpdateBrandInput) (*model.Brand, error)
	DeleteBrand(ctx context.Context, id string) error

	// ListBrandProducts pages through the catalog for one existing brand.
	ListBrandProducts(ctx context.Context, id string, page, pageSize int) ([]model.Product, int, error)
}
