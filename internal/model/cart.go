package model

import "github.com/shopspring/decimal"

type CartItemStatus string

const (
	CartItemActive        CartItemStatus = "active"
	CartItemRemoved       CartItemStatus = "removed"
	CartItemSavedForLater CartItemStatus = "saved_for_later"
)

func (s CartItemStatus) Valid() bool {
	switch s {
	case CartItemActive, CartItemRemoved, CartItemSavedForLater:
		return true
	}
	return false
}

type Cart struct {
	BaseModel
	UserID string `db:"user_id" json:"user_id"`
}

type CartItem struct {
	BaseModel
	CartID       string          `db:"cart_id" json:"cart_id"`
	ProductID    string          `db:"product_id" json:"product_id"`
	Quantity     int             `db:"quantity" json:"quantity"`
	UnitPrice    decimal.Decimal `db:"unit_price" json:"unit_price"`
	Discount     decimal.Decimal `db:"discount" json:"discount"`
	DiscountType DiscountType    `db:"discount_type" json:"discount_type"`
	GSTAmount    decimal.Decimal `db:"gst_amount" json:"gst_amount"`
	Status       CartItemStatus  `db:"status" json:"status"`
}
