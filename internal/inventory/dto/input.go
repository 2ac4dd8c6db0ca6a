package dto

import "github.com/fekuna/omnipos-commerce-service/internal/model"

// StockChangeInput moves Quantity units out of (decrease) or back into (increase) stock.
type StockChangeInput struct {
	ProductID     string
	Quantity      int
	MovementType  model.MovementType
	ReferenceType string // 'order', 'order_item', 'manual'
	ReferenceID   string
	Notes         string
	UserID        string
}

type AdjustStockInput struct {
	ProductID      string `json:"product_id"`
	QuantityChange int    `json:"quantity_change"`
	Reason         string `json:"reason"`
	UserID         string `json:"-"`
}
