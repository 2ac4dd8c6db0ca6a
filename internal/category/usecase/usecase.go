package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-commerce-service/internal/apperror"
	"github.com/fekuna/omnipos-commerce-service/internal/category"
	"github.com/fekuna/omnipos-commerce-service/internal/category/dto"
	"github.com/fekuna/omnipos-commerce-service/internal/logger"
	"github.com/fekuna/omnipos-commerce-service/internal/model"
	catalog "github.com/fekuna/omnipos-commerce-service/internal/product/usecase"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type categoryUseCase struct {
	repo   category.Repository
	logger logger.ZapLogger
}

func NewCategoryUseCase(repo category.Repository, log logger.ZapLogger) category.UseCase {
	return &categoryUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperror.Validation("name is required")
	}
	parentID := nonEmpty(input.ParentID)
	if err := uc.checkParent(ctx, parentID, ""); err != nil {
		return nil, err
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
	cat := &model.Category{
		BaseModel:   model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		ParentID:    parentID,
		Name:        input.Name,
		Slug:        slug,
		Description: optional(input.Description),
		ImageURL:    optional(input.ImageURL),
		SortOrder:   input.SortOrder,
		IsActive:    true,
	}

	if err := uc.repo.Create(ctx, cat); err != nil {
		return nil, apperror.Internal("failed to create category", err)
	}
	uc.logger.Info("category created", zap.String("category_id", cat.ID), zap.String("slug", cat.Slug))
	return cat, nil
}

// claimSlug normalizes raw and fails when another category already owns it.
func (uc *categoryUseCase) claimSlug(ctx context.Context, raw, excludeID string) (string, error) {
	slug := catalog.Slugify(raw)
	if slug == "" {
		return "", apperror.Validation("slug must contain letters or digits")
	}
	unique, err := uc.repo.IsSlugUnique(ctx, slug, excludeID)
	if err != nil {
		return "", apperror.Internal("failed to check slug", err)
	}
	if !unique {
		return "", apperror.Validation("category with slug %q already exists", slug)
	}
	return slug, nil
}

func (uc *categoryUseCase) checkParent(ctx context.Context, parentID *string, selfID string) error {
	if parentID == nil {
		return nil
	}
	if *parentID == selfID {
		return apperror.Validation("category cannot be its own parent")
	}
	parent, err := uc.repo.FindByID(ctx, *parentID)
	if err != nil {
		return apperror.Internal("failed to load parent category", err)
	}
	if parent == nil {
		return apperror.Validation("parent category %s does not exist", *parentID)
	}
	return nil
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	cat, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal("failed to load category", err)
	}
	if cat == nil {
		return nil, apperror.NotFound("category %s not found", id)
	}
	return cat, nil
}

func (uc *categoryUseCase) GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	cat, err := uc.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, apperror.Internal("failed to load category", err)
	}
	if cat == nil {
		return nil, apperror.NotFound("category %q not found", slug)
	}
	return cat, nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	categories, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, apperror.Internal("failed to list categories", err)
	}
	if categories == nil {
		categories = []model.Category{}
	}
	return categories, count, nil
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error) {
	cat, err := uc.GetCategory(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperror.Validation("name cannot be empty")
		}
		cat.Name = *input.Name
	}

	// A rename without an explicit slug regenerates it.
	switch {
	case input.Slug != nil && *input.Slug != "":
		if cat.Slug, err = uc.claimSlug(ctx, *input.Slug, cat.ID); err != nil {
			return nil, err
		}
	case input.Name != nil:
		if cat.Slug, err = uc.claimSlug(ctx, *input.Name, cat.ID); err != nil {
			return nil, err
		}
	}

	if input.ParentID != nil {
		parentID := nonEmpty(input.ParentID)
		if err := uc.checkParent(ctx, parentID, cat.ID); err != nil {
			return nil, err
		}
		cat.ParentID = parentID
	}
	if input.Description != nil {
		cat.Description = optional(*input.Description)
	}
	if input.ImageURL != nil {
		cat.ImageURL = optional(*input.ImageURL)
	}
	if input.SortOrder != nil {
		cat.SortOrder = *input.SortOrder
	}
	if input.IsActive != nil {
		cat.IsActive = *input.IsActive
	}
	cat.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, cat); err != nil {
		return nil, apperror.Internal("failed to update category", err)
	}
	return cat, nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, id string) error {
	deleted, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return apperror.Internal("failed to delete category", err)
	}
	if !deleted {
		return apperror.NotFound("category %s not found", id)
	}
	uc.logger.Info("category deleted", zap.String("category_id", id))
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	return optional(*s)
}
