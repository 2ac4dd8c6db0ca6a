package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/fekuna/omnipos-commerce-service/internal/apperror"
	"github.com/fekuna/omnipos-commerce-service/internal/brand/dto"
	"github.com/fekuna/omnipos-commerce-service/internal/model"
	"github.com/fekuna/omnipos-commerce-service/internal/product"
	productdto "github.com/fekuna/omnipos-commerce-service/internal/product/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRepo struct {
	brands map[string]*model.Brand
	err    error
}

func newFakeRepo(brands ...*model.Brand) *fakeRepo {
	r := &fakeRepo{brands: map[string]*model.Brand{}}
	for _, b := range brands {
		r.brands[b.ID] = b
	}
	return r
}

func (r *fakeRepo) Create(_ context.Context, b *model.Brand) error {
	if r.err != nil {
		return r.err
	}
	cp := *b
	r.brands[b.ID] = &cp
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*model.Brand, error) {
	if r.err != nil {
		return nil, r.err
	}
	b, ok := r.brands[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *fakeRepo) FindBySlug(_ context.Context, slug string) (*model.Brand, error) {
	for _, b := range r.brands {
		if b.Slug == slug {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) FindAll(_ context.Context, _ *dto.BrandFilters) ([]model.Brand, int, error) {
	if r.err != nil {
		return nil, 0, r.err
	}
	return nil, 0, nil
}

func (r *fakeRepo) IsSlugUnique(_ context.Context, slug, excludeID string) (bool, error) {
	for id, b := range r.brands {
		if b.Slug == slug && id != excludeID {
			return false, nil
		}
	}
	return true, nil
}

func (r *fakeRepo) Update(_ context.Context, b *model.Brand) error {
	cp := *b
	r.brands[b.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := r.brands[id]; !ok {
		return false, nil
	}
	delete(r.brands, id)
	return true, nil
}

type stubProducts struct {
	product.UseCase
	filters *productdto.ProductFilters
}

func (s *stubProducts) ListProducts(_ context.Context, f *productdto.ProductFilters) ([]model.Product, int, error) {
	s.filters = f
	return []model.Product{{BaseModel: model.BaseModel{ID: "p-1"}, Name: "Anvil"}}, 1, nil
}

func acme() *model.Brand {
	return &model.Brand{BaseModel: model.BaseModel{ID: "b-1"}, Name: "Acme", Slug: "acme", IsActive: true}
}

func TestCreateBrand(t *testing.T) {
	repo := newFakeRepo(acme())
	uc := NewBrandUseCase(repo, &stubProducts{}, zap.NewNop())

	b, err := uc.CreateBrand(context.Background(), &dto.CreateBrandInput{Name: " Globex Corp ", LogoURL: "https://cdn/globex.png"})
	require.NoError(t, err)
	assert.Equal(t, "Globex Corp", b.Name)
	assert.Equal(t, "globex-corp", b.Slug)
	assert.Equal(t, "https://cdn/globex.png", *b.LogoURL)
	assert.Nil(t, b.Description)
	assert.True(t, b.IsActive)
	assert.Contains(t, repo.brands, b.ID)
}

func TestCreateBrand_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input dto.CreateBrandInput
	}{
		{"blank name", dto.CreateBrandInput{Name: " "}},
		{"same name", dto.CreateBrandInput{Name: "Acme"}},
		{"same name other case", dto.CreateBrandInput{Name: "ACME"}},
		{"unusable slug", dto.CreateBrandInput{Name: "Initech", Slug: "???"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewBrandUseCase(newFakeRepo(acme()), &stubProducts{}, zap.NewNop())
			_, err := uc.CreateBrand(context.Background(), &tt.input)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestCreateBrand_StoreFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.err = errors.New("connection reset")
	uc := NewBrandUseCase(repo, &stubProducts{}, zap.NewNop())

	_, err := uc.CreateBrand(context.Background(), &dto.CreateBrandInput{Name: "Acme"})
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
}

func TestUpdateBrand(t *testing.T) {
	ctx := context.Background()
	globex := &model.Brand{BaseModel: model.BaseModel{ID: "b-2"}, Name: "Globex", Slug: "globex"}
	repo := newFakeRepo(acme(), globex)
	uc := NewBrandUseCase(repo, &stubProducts{}, zap.NewNop())

	name := "Acme Tools"
	b, err := uc.UpdateBrand(ctx, &dto.UpdateBrandInput{ID: "b-1", Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "acme-tools", b.Slug)

	taken := "Globex"
	_, err = uc.UpdateBrand(ctx, &dto.UpdateBrandInput{ID: "b-1", Name: &taken})
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "Acme Tools", repo.brands["b-1"].Name, "rejected rename is not stored")

	desc, inactive := "hardware", false
	b, err = uc.UpdateBrand(ctx, &dto.UpdateBrandInput{ID: "b-1", Description: &desc, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "hardware", *b.Description)
	assert.False(t, b.IsActive)
	assert.Equal(t, "acme-tools", b.Slug)

	_, err = uc.UpdateBrand(ctx, &dto.UpdateBrandInput{ID: "missing", Name: &name})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetAndDeleteBrand(t *testing.T) {
	ctx := context.Background()
	uc := NewBrandUseCase(newFakeRepo(acme()), &stubProducts{}, zap.NewNop())

	b, err := uc.GetBrandBySlug(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "b-1", b.ID)

	_, err = uc.GetBrandBySlug(ctx, "globex")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	require.NoError(t, uc.DeleteBrand(ctx, "b-1"))
	assert.ErrorIs(t, uc.DeleteBrand(ctx, "b-1"), apperror.ErrNotFound)
	_, err = uc.GetBrand(ctx, "b-1")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestListBrands_DefaultsPage(t *testing.T) {
	uc := NewBrandUseCase(newFakeRepo(), &stubProducts{}, zap.NewNop())

	filters := &dto.BrandFilters{}
	brands, total, err := uc.ListBrands(context.Background(), filters)
	require.NoError(t, err)
	assert.NotNil(t, brands)
	assert.Zero(t, total)
	assert.Equal(t, 1, filters.Page)
}

func TestListBrandProducts(t *testing.T) {
	ctx := context.Background()
	products := &stubProducts{}
	uc := NewBrandUseCase(newFakeRepo(acme()), products, zap.NewNop())

	items, total, err := uc.ListBrandProducts(ctx, "b-1", 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "b-1", products.filters.BrandID)
	assert.Equal(t, 2, products.filters.Page)
	assert.Equal(t, 5, products.filters.PageSize)

	products.filters = nil
	_, _, err = uc.ListBrandProducts(ctx, "b-9", 1, 10)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Nil(t, products.filters, "catalog is not queried for an unknown brand")
}
