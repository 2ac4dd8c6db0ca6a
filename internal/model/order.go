package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled, OrderRefunded:
		return true
	}
	return false
}

// Cancellable reports whether an order (or item) in this status may still be cancelled.
func (s OrderStatus) Cancellable() bool {
	return s == OrderPending || s == OrderProcessing
}

type Order struct {
	BaseModel
	UserID         string           `db:"user_id" json:"user_id"`
	CartID         *string          `db:"cart_id" json:"cart_id,omitempty"`
	Status         OrderStatus      `db:"status" json:"status"`
	TotalAmount    decimal.Decimal  `db:"total_amount" json:"total_amount"`
	DiscountAmount decimal.Decimal  `db:"discount_amount" json:"discount_amount"`
	DiscountType   DiscountType     `db:"discount_type" json:"discount_type"`
	GSTAmount      decimal.Decimal  `db:"gst_amount" json:"gst_amount"`
	FinalAmount    decimal.Decimal  `db:"final_amount" json:"final_amount"`
	Currency       string           `db:"currency" json:"currency"`
	GSTNumber      string           `db:"gst_number" json:"gst_number"`
	Items          []OrderItem      `db:"-" json:"items,omitempty"`
	StatusLog      []OrderStatusLog `db:"-" json:"status_log,omitempty"`
}

type OrderItem struct {
	BaseModel
	OrderID        string          `db:"order_id" json:"order_id"`
	ProductID      string          `db:"product_id" json:"product_id"`
	ProductName    string          `db:"product_name" json:"product_name"`
	Quantity       int             `db:"quantity" json:"quantity"`
	UnitPrice      decimal.Decimal `db:"unit_price" json:"unit_price"`
	DiscountAmount decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	DiscountType   DiscountType    `db:"discount_type" json:"discount_type"`
	GSTAmount      decimal.Decimal `db:"gst_amount" json:"gst_amount"`
	Status         OrderStatus     `db:"status" json:"status"`
	Subtotal       decimal.Decimal `db:"-" json:"subtotal"`
}

type OrderStatusLog struct {
	ID        string      `db:"id" json:"id"`
	OrderID   string      `db:"order_id" json:"order_id"`
	Status    OrderStatus `db:"status" json:"status"`
	Comment   string      `db:"comment" json:"comment"`
	UserID    string      `db:"user_id" json:"user_id"`
	CreatedAt time.Time   `db:"created_at" json:"timestamp"`
}
