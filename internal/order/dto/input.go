package dto

import (
	"github.com/fekuna/omnipos-commerce-service/internal/model"
	"github.com/shopspring/decimal"
)

type CreateOrderItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderInput takes its lines from exactly one of CartID or Items.
type CreateOrderInput struct {
	UserID         string                 `json:"-"`
	CartID         string                 `json:"cart_id"`
	Items          []CreateOrderItemInput `json:"items"`
	DiscountAmount decimal.Decimal        `json:"discount_amount"`
	DiscountType   model.DiscountType     `json:"discount_type"`
	GSTNumber      string                 `json:"gst_number"`
	Currency       string                 `json:"currency"`
}

type UpdateStatusInput struct {
	Status  model.OrderStatus `json:"status"`
	Comment string            `json:"comment"`
	UserID  string            `json:"-"`
}

type ApplyDiscountInput struct {
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
	DiscountType   model.DiscountType `json:"discount_type"`
}

// UpdateItemInput changes only the fields that are set.
type UpdateItemInput struct {
	Quantity *int               `json:"quantity"`
	Status   *model.OrderStatus `json:"status"`
}

type CancelInput struct {
	Reason string `json:"reason"`
}
