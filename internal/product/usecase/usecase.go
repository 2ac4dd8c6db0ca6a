package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/fekuna/omnipos-commerce-service/internal/apperror"
	"github.com/fekuna/omnipos-commerce-service/internal/logger"
	"github.com/fekuna/omnipos-commerce-service/internal/model"
	"github.com/fekuna/omnipos-commerce-service/internal/product"
	"github.com/fekuna/omnipos-commerce-service/internal/product/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	indexName    = "products"
	listCacheTTL = 5 * time.Minute
	listKeyAll   = "products:list:*"
)

const indexMapping = `{
	"mappings": {
		"properties": {
			"name": { "type": "text" },
			"slug": { "type": "keyword" },
			"description": { "type": "text" },
			"category_id": { "type": "keyword" },
			"brand_id": { "type": "keyword" },
			"price": { "type": "double" },
			"available_stock": { "type": "integer" },
			"is_available": { "type": "boolean" },
			"created_at": { "type": "date" }
		}
	}
}`

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

type productUseCase struct {
	repo   product.Repository
	cache  product.Cache
	es     product.SearchIndex
	logger logger.ZapLogger
}

// NewProductUseCase wires the catalog. es may be nil when Elasticsearch is unavailable.
func NewProductUseCase(repo product.Repository, cache product.Cache, es product.SearchIndex, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:   repo,
		cache:  cache,
		es:     es,
		logger: log,
	}
}

func Slugify(s string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperror.Validation("name is required")
	}
	if input.Price.IsNegative() {
		return nil, apperror.Validation("price cannot be negative")
	}
	if input.AvailableStock < 0 {
		return nil, apperror.Validation("available_stock cannot be negative")
	}
	if input.DiscountAmount.IsNegative() {
		return nil, apperror.Validation("discount_amount cannot be negative")
	}
	discountType := input.DiscountType
	if discountType == "" {
		discountType = model.DiscountFixed
	}
	if !discountType.Valid() {
		return nil, apperror.Validation("discount_type must be percentage or fixed")
	}

	slug, err := uc.resolveSlug(ctx, input.Slug, input.Name, "")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	isAvailable := true
	if input.IsAvailable != nil {
		isAvailable = *input.IsAvailable
	}

	p := &model.Product{
		BaseModel:      model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:           input.Name,
		Slug:           slug,
		Description:    optional(input.Description),
		CategoryID:     optional(input.CategoryID),
		BrandID:        optional(input.BrandID),
		Price:          input.Price,
		DiscountAmount: input.DiscountAmount,
		DiscountType:   discountType,
		AvailableStock: input.AvailableStock,
		IsAvailable:    isAvailable,
		ImageURL:       optional(input.ImageURL),
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, apperror.Internal("failed to create product", err)
	}

	go uc.invalidateListCache(context.Background())
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

// resolveSlug returns an explicit slug if it is free, or derives a unique one from name.
func (uc *productUseCase) resolveSlug(ctx context.Context, explicit, name, excludeID string) (string, error) {
	if explicit != "" {
		slug := Slugify(explicit)
		unique, err := uc.repo.IsSlugUnique(ctx, slug, excludeID)
		if err != nil {
			return "", apperror.Internal("failed to check slug", err)
		}
		if !unique {
			return "", apperror.Validation("slug %q already exists", slug)
		}
		return slug, nil
	}

	slug := Slugify(name)
	unique, err := uc.repo.IsSlugUnique(ctx, slug, excludeID)
	if err != nil {
		return "", apperror.Internal("failed to check slug", err)
	}
	if !unique {
		slug = slug + "-" + uuid.New().String()[:6]
	}
	return slug, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (uc *productUseCase) syncToElastic(ctx context.Context, p *model.Product) {
	if uc.es == nil {
		return
	}
	// Lazily ensure the index; an existing index is fine.
	if err := uc.es.CreateIndex(ctx, indexName, indexMapping); err != nil {
		uc.logger.Warn("failed to ensure product index", zap.Error(err))
	}
	if err := uc.es.Index(ctx, indexName, p.ID, p); err != nil {
		uc.logger.Error("failed to index product", zap.String("product_id", p.ID), zap.Error(err))
	}
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal("failed to load product", err)
	}
	if p == nil {
		return nil, apperror.NotFound("product %s not found", id)
	}
	return p, nil
}

func (uc *productUseCase) GetProductsByIDs(ctx context.Context, ids []string) (map[string]model.Product, error) {
	products, err := uc.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Internal("failed to load products", err)
	}
	out := make(map[string]model.Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (uc *productUseCase) GetProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	p, err := uc.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, apperror.Internal("failed to load product", err)
	}
	if p == nil {
		return nil, apperror.NotFound("product %q not found", slug)
	}
	return p, nil
}

type cachedPage struct {
	Products []model.Product
	Count    int
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 100 {
		filters.PageSize = 20
	}

	cacheKey, err := generateCacheKey(filters)
	if err == nil {
		if val, err := uc.cache.Get(ctx, cacheKey); err == nil {
			var page cachedPage
			if err := json.Unmarshal([]byte(val), &page); err == nil {
				return page.Products, page.Count, nil
			}
		}
	}

	if filters.SearchQuery != "" && uc.es != nil {
		products, count, err := uc.searchElastic(ctx, filters)
		if err == nil {
			return products, count, nil
		}
		// fall through to SQL
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
	}

	products, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, apperror.Internal("failed to list products", err)
	}

	if cacheKey != "" {
		if data, err := json.Marshal(cachedPage{Products: products, Count: count}); err == nil {
			if err := uc.cache.Set(ctx, cacheKey, string(data), listCacheTTL); err != nil {
				uc.logger.Warn("failed to cache product list", zap.Error(err))
			}
		}
	}

	return products, count, nil
}

func (uc *productUseCase) searchElastic(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	must := []map[string]interface{}{
		{
			"multi_match": map[string]interface{}{
				"query":     filters.SearchQuery,
				"fields":    []string{"name^3", "slug", "description"},
				"fuzziness": "AUTO",
			},
		},
	}
	filter := []map[string]interface{}{}
	if filters.IsAvailable != nil {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"is_available": *filters.IsAvailable}})
	}
	if filters.CategoryID != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"category_id": filters.CategoryID}})
	}
	if filters.BrandID != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"brand_id": filters.BrandID}})
	}

	q := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
		"from": (filters.Page - 1) * filters.PageSize,
		"size": filters.PageSize,
	}

	res, err := uc.es.Search(ctx, indexName, q)
	if err != nil {
		return nil, 0, err
	}

	products := make([]model.Product, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var p model.Product
		if err := json.Unmarshal(hit.Source, &p); err == nil {
			products = append(products, p)
		}
	}
	return products, res.Hits.Total.Value, nil
}

func generateCacheKey(filters *dto.ProductFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("products:list:%x", md5.Sum(data)), nil
}

func (uc *productUseCase) invalidateListCache(ctx context.Context) {
	if err := uc.cache.DeleteByPattern(ctx, listKeyAll); err != nil {
		uc.logger.Warn("failed to invalidate product list cache", zap.Error(err))
	}
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	p, err := uc.GetProduct(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperror.Validation("name cannot be empty")
		}
		p.Name = *input.Name
	}
	if input.Slug != nil && Slugify(*input.Slug) != p.Slug {
		slug, err := uc.resolveSlug(ctx, *input.Slug, p.Name, p.ID)
		if err != nil {
			return nil, err
		}
		p.Slug = slug
	}
	if input.Description != nil {
		p.Description = optional(*input.Description)
	}
	if input.CategoryID != nil {
		p.CategoryID = optional(*input.CategoryID)
	}
	if input.BrandID != nil {
		p.BrandID = optional(*input.BrandID)
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, apperror.Validation("price cannot be negative")
		}
		p.Price = *input.Price
	}
	if input.DiscountAmount != nil {
		if input.DiscountAmount.IsNegative() {
			return nil, apperror.Validation("discount_amount cannot be negative")
		}
		p.DiscountAmount = *input.DiscountAmount
	}
	if input.DiscountType != nil {
		if !input.DiscountType.Valid() {
			return nil, apperror.Validation("discount_type must be percentage or fixed")
		}
		p.DiscountType = *input.DiscountType
	}
	if input.IsAvailable != nil {
		p.IsAvailable = *input.IsAvailable
	}
	if input.ImageURL != nil {
		p.ImageURL = optional(*input.ImageURL)
	}

	p.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, apperror.Internal("failed to update product", err)
	}

	go uc.invalidateListCache(context.Background())
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id string) error {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return apperror.Internal("failed to load product", err)
	}
	if p == nil {
		return nil // Already deleted
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return apperror.Internal("failed to delete product", err)
	}

	go uc.invalidateListCache(context.Background())
	if uc.es != nil {
		go func() {
			if err := uc.es.Delete(context.Background(), indexName, id); err != nil {
				uc.logger.Error("failed to delete product from ES", zap.Error(err))
			}
		}()
	}

	return nil
}

func (uc *productUseCase) CheckAvailability(ctx context.Context, id string, quantity int) (*dto.Availability, error) {
	if quantity < 1 {
		quantity = 1
	}
	p, err := uc.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.Availability{
		ProductID:      p.ID,
		Requested:      quantity,
		AvailableStock: p.AvailableStock,
		IsAvailable:    p.IsAvailable,
		CanFulfil:      p.CanFulfil(quantity),
	}, nil
}

// RefreshProduct runs synchronously; the caller is already off the request path.
func (uc *productUseCase) RefreshProduct(ctx context.Context, id string) error {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return apperror.Internal("failed to load product", err)
	}

	uc.invalidateListCache(ctx)

	if uc.es == nil {
		return nil
	}
	if p == nil {
		return uc.es.Delete(ctx, indexName, id)
	}
	return uc.es.Index(ctx, indexName, p.ID, p)
}
