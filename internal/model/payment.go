package model

import (
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentProcessing        PaymentStatus = "processing"
	PaymentCompleted         PaymentStatus = "completed"
	PaymentFailed            PaymentStatus = "failed"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
	PaymentCancelled         PaymentStatus = "cancelled"
)

// Open reports whether the attempt is still waiting on the gateway.
func (s PaymentStatus) Open() bool {
	return s == PaymentPending || s == PaymentProcessing
}

type PaymentMethod string

const (
	MethodCreditCard     PaymentMethod = "credit_card"
	MethodDebitCard      PaymentMethod = "debit_card"
	MethodUPI            PaymentMethod = "upi"
	MethodNetBanking     PaymentMethod = "net_banking"
	MethodWallet         PaymentMethod = "wallet"
	MethodCashOnDelivery PaymentMethod = "cash_on_delivery"
	MethodOther          PaymentMethod = "other"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCreditCard, MethodDebitCard, MethodUPI, MethodNetBanking, MethodWallet, MethodCashOnDelivery, MethodOther:
		return true
	}
	return false
}

type PaymentType string

const (
	PaymentTypeFull        PaymentType = "full"
	PaymentTypePartial     PaymentType = "partial"
	PaymentTypeInstallment PaymentType = "installment"
)

func (t PaymentType) Valid() bool {
	return t == PaymentTypeFull || t == PaymentTypePartial || t == PaymentTypeInstallment
}

type Payment struct {
	BaseModel
	OrderID       string          `db:"order_id" json:"order_id"`
	UserID        string          `db:"user_id" json:"user_id"`
	AmountPaid    decimal.Decimal `db:"amount_paid" json:"amount_paid"`
	Currency      string          `db:"currency" json:"currency"`
	Method        PaymentMethod   `db:"method" json:"method"`
	PaymentType   PaymentType     `db:"payment_type" json:"payment_type"`
	Gateway       string          `db:"gateway" json:"gateway"`
	PaymentRef    string          `db:"payment_ref" json:"payment_ref"`
	PaymentURL    string          `db:"payment_url" json:"payment_url"`
	ExpiryTime    *time.Time      `db:"expiry_time" json:"expiry_time"`
	Status        PaymentStatus   `db:"status" json:"status"`
	GSTNumber     string          `db:"gst_number" json:"gst_number"`
	GSTAmount     decimal.Decimal `db:"gst_amount" json:"gst_amount"`
	Metadata      types.JSONText  `db:"metadata" json:"metadata"`
	RefundDetails []PaymentRefund `db:"-" json:"refund_details"`
}

type PaymentRefund struct {
	ID        string          `db:"id" json:"id"`
	PaymentID string          `db:"payment_id" json:"payment_id"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	Reason    string          `db:"reason" json:"reason"`
	Reference string          `db:"reference" json:"reference"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

type PaymentWebhookEvent struct {
	ID         string         `db:"id"`
	PaymentRef string         `db:"payment_ref"`
	Event      string         `db:"event"`
	Status     string         `db:"status"`
	Payload    types.JSONText `db:"payload"`
	CreatedAt  time.Time      `db:"created_at"`
}
