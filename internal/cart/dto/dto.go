package dto

import (
	"time"

	"github.com/fekuna/omnipos-commerce-service/internal/model"
	"github.com/fekuna/omnipos-commerce-service/internal/pricing"
	"github.com/shopspring/decimal"
)

// CartView is the cart as the shopper sees it: active lines, saved lines and the running summary.
type CartView struct {
	ID            string              `json:"id"`
	UserID        string              `json:"user_id"`
	Items         []model.CartItem    `json:"items"`
	SavedForLater []model.CartItem    `json:"saved_for_later"`
	Summary       pricing.CartSummary `json:"summary"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// SnapshotItem compares a cart line with the catalog as it is now.
type SnapshotItem struct {
	ItemID          string             `json:"item_id"`
	ProductID       string             `json:"product_id"`
	Name            string             `json:"name"`
	Quantity        int                `json:"quantity"`
	PriceAtAddition decimal.Decimal    `json:"price_at_addition"`
	CurrentPrice    decimal.Decimal    `json:"current_price"`
	PriceDifference decimal.Decimal    `json:"price_difference"`
	PriceChanged    bool               `json:"price_changed"`
	Discount        decimal.Decimal    `json:"discount"`
	DiscountType    model.DiscountType `json:"discount_type"`
	IsAvailable     bool               `json:"is_available"`
	InStock         bool               `json:"in_stock"`
}

type CartSnapshot struct {
	CartID              string          `json:"cart_id"`
	UserID              string          `json:"user_id"`
	Items               []SnapshotItem  `json:"items"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	TotalItems          int             `json:"total_items"`
	HasUnavailableItems bool            `json:"has_unavailable_items"`
	HasPriceChanges     bool            `json:"has_price_changes"`
}
