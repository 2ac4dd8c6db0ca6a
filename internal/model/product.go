package model

import "github.com/shopspring/decimal"

type Product struct {
	BaseModel
	Name           string          `db:"name" json:"name"`
	Slug           string          `db:"slug" json:"slug"`
	Description    *string         `db:"description" json:"description"`
	CategoryID     *string         `db:"category_id" json:"category_id"`
	BrandID        *string         `db:"brand_id" json:"brand_id"`
	Price          decimal.Decimal `db:"price" json:"price"`
	DiscountAmount decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	DiscountType   DiscountType    `db:"discount_type" json:"discount_type"`
	AvailableStock int             `db:"available_stock" json:"available_stock"`
	IsAvailable    bool            `db:"is_available" json:"is_available"`
	ImageURL       *string         `db:"image_url" json:"image_url"`
}

// CanFulfil reports whether qty units can be taken from stock right now.
func (p *Product) CanFulfil(qty int) bool {
	return p.IsAvailable && p.AvailableStock >= qty
}
