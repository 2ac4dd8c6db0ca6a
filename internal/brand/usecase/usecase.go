package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-commerce-service/internal/apperror"
	"github.com/fekuna/omnipos-commerce-service/internal/brand"
	"github.com/fekuna/omnipos-commerce-service/internal/brand/dto"
	"github.com/fekuna/omnipos-commerce-service/internal/logger"
	"github.com/fekuna/omnipos-commerce-service/internal/model"
	"github.com/fekuna/omnipos-commerce-service/internal/product"
	productdto "github.com/fekuna/omnipos-commerce-service/internal/product/dto"
	catalog "github.com/fekuna/omnipos-commerce-service/internal/product/usecase"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type brandUseCase struct {
	repo     brand.Repository
	products product.UseCase
	logger   logger.ZapLogger
}

func NewBrandUseCase(repo brand.Repository, products product.UseCase, log logger.ZapLogger) brand.UseCase {
	return &brandUseCase{
		repo:     repo,
		products: products,
		logger:   log,
	}
}

func (uc *brandUseCase) CreateBrand(ctx context.Context, input *dto.CreateBrandInput) (*model.Brand, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperror.Validation("name is required")
	}

	slug := input.Slug
	if slug == "" {
		slug = input.Name
	}
	slug, err := uc.claimSlug(ctx, slug, "")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	b := &model.Brand{
		BaseModel:   model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:        strings.TrimSpace(input.Name),
		Slug:        slug,
		Description: optional(input.Description),
		LogoURL:     optional(input.LogoURL),
		IsActive:    true,
	}

	if err := uc.repo.Create(ctx, b); err != nil {
		return nil, apperror.Internal("failed to create brand", err)
	}
	uc.logger.Info("brand created", zap.String("brand_id", b.ID), zap.String("slug", b.Slug))
	return b, nil
}

// claimSlug normalizes raw and fails when another brand already owns it.
// Names that only differ in case or punctuation collide here.
func (uc *brandUseCase) claimSlug(ctx context.Context, raw, excludeID string) (string, error) {
	slug := catalog.Slugify(raw)
	if slug == "" {
		return "", apperror.Validation("slug must contain letters or digits")
	}
	unique, err := uc.repo.IsSlugUnique(ctx, slug, excludeID)
	if err != nil {
		return "", apperror.Internal("failed to check slug", err)
	}
	if !unique {
		return "", apperror.Validation("brand with slug %q already exists", slug)
	}
	return slug, nil
}

func (uc *brandUseCase) GetBrand(ctx context.Context, id string) (*model.Brand, error) {
	b, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal("failed to load brand", err)
	}
	if b == nil {
		return nil, apperror.NotFound("brand %s not found", id)
	}
	return b, nil
}

func (uc *brandUseCase) GetBrandBySlug(ctx context.Context, slug string) (*model.Brand, error) {
	b, err := uc.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, apperror.Internal("failed to load brand", err)
	}
	if b == nil {
		return nil, apperror.NotFound("brand %q not found", slug)
	}
	return b, nil
}

func (uc *brandUseCase) ListBrands(ctx context.Context, filters *dto.BrandFilters) ([]model.Brand, int, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	brands, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, apperror.Internal("failed to list brands", err)
	}
	if brands == nil {
		brands = []model.Brand{}
	}
	return brands, count, nil
}

func (uc *brandUseCase) UpdateBrand(ctx context.Context, input *dto.UpdateBrandInput) (*model.Brand, error) {
	b, err := uc.GetBrand(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperror.Validation("name cannot be empty")
		}
		b.Name = strings.TrimSpace(*input.Name)
	}

	switch {
	case input.Slug != nil && *input.Slug != "":
		if b.Slug, err = uc.claimSlug(ctx, *input.Slug, b.ID); err != nil {
			return nil, err
		}
	case input.Name != nil:
		if b.Slug, err = uc.claimSlug(ctx, *input.Name, b.ID); err != nil {
			return nil, err
		}
	}

	if input.Description != nil {
		b.Description = optional(*input.Description)
	}
	if input.LogoURL != nil {
		b.LogoURL = optional(*input.LogoURL)
	}
	if input.IsActive != nil {
		b.IsActive = *input.IsActive
	}
	b.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, b); err != nil {
		return nil, apperror.Internal("failed to update brand", err)
	}
	return b, nil
}

func (uc *brandUseCase) DeleteBrand(ctx context.Context, id string) error {
	deleted, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return apperror.Internal("failed to delete brand", err)
	}
	if !deleted {
		return apperror.NotFound("brand %s not found", id)
	}
	uc.logger.Info("brand deleted", zap.String("brand_id", id))
	return nil
}

func (uc *brandUseCase) ListBrandProducts(ctx context.Context, id string, page, pageSize int) ([]model.Product, int, error) {
	if _, err := uc.GetBrand(ctx, id); err != nil {
		return nil, 0, err
	}
	return uc.products.ListProducts(ctx, &productdto.ProductFilters{
		BrandID:  id,
		Page:     page,
		PageSize: pageSize,
	})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
