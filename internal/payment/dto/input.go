package dto

import (
	"github.com/fekuna/omnipos-commerce-service/internal/model"
	"github.com/shopspring/decimal"
)

type InitiateInput struct {
	UserID      string                 `json:"-"`
	OrderID     string                 `json:"order_id"`
	Method      model.PaymentMethod    `json:"method"`
	PaymentType model.PaymentType      `json:"payment_type"`
	Gateway     string                 `json:"gateway"`
	GSTNumber   string                 `json:"gst_number"`
	ReturnURL   string                 `json:"return_url"`
	Metadata    map[string]interface{} `json:"metadata"`
}

type WebhookInput struct {
	Event      string                 `json:"event"`
	PaymentRef string                 `json:"payment_ref"`
	Status     string                 `json:"status"`
	Metadata   map[string]interface{} `json:"metadata"`
}

// RefundInput refunds the whole amount paid when Amount is nil.
type RefundInput struct {
	Amount *decimal.Decimal `json:"amount"`
	Reason string           `json:"reason"`
}
