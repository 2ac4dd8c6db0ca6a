package dto

import (
	"github.com/fekuna/omnipos-commerce-service/internal/model"
	"github.com/shopspring/decimal"
)

type CreateProductInput struct {
	Name           string             `json:"name"`
	Slug           string             `json:"slug"`
	Description    string             `json:"description"`
	CategoryID     string             `json:"category_id"`
	BrandID        string             `json:"brand_id"`
	Price          decimal.Decimal    `json:"price"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
	DiscountType   model.DiscountType `json:"discount_type"`
	AvailableStock int                `json:"available_stock"`
	IsAvailable    *bool              `json:"is_available"`
	ImageURL       string             `json:"image_url"`
}

// UpdateProductInput changes only the fields that are set. Stock is managed through inventory.
type UpdateProductInput struct {
	ID             string              `json:"-"`
	Name           *string             `json:"name"`
	Slug           *string             `json:"slug"`
	Description    *string             `json:"description"`
	CategoryID     *string             `json:"category_id"`
	BrandID        *string             `json:"brand_id"`
	Price          *decimal.Decimal    `json:"price"`
	DiscountAmount *decimal.Decimal    `json:"discount_amount"`
	DiscountType   *model.DiscountType `json:"discount_type"`
	IsAvailable    *bool               `json:"is_available"`
	ImageURL       *string             `json:"image_url"`
}
