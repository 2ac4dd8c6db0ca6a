package dto

import (
	"time"

	"github.com/fekuna/omnipos-commerce-service/internal/model"
	"github.com/shopspring/decimal"
)

type InitiateResult struct {
	PaymentID  string              `json:"payment_id"`
	OrderID    string              `json:"order_id"`
	Amount     decimal.Decimal     `json:"amount"`
	Currency   string              `json:"currency"`
	PaymentURL string              `json:"payment_url"`
	ExpiryTime time.Time           `json:"expiry_time"`
	Method     model.PaymentMethod `json:"method"`
}

type WebhookResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type PaymentFilters struct {
	UserID    string
	Status    model.PaymentStatus
	Method    model.PaymentMethod
	Gateway   string
	StartDate *time.Time
	EndDate   *time.Time
	Sort      string
	Page      int
	Limit     int

	SortField string
	SortDesc  bool
}

type PaymentList struct {
	Payments []model.Payment `json:"payments"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	Limit    int             `json:"limit"`
	Pages    int             `json:"pages"`
}
