// Package gateway is the boundary to external payment providers.
package gateway

import (
	"context"
	"sort"
	"time"

	"github.com/fekuna/omnipos-commerce-service/internal/apperror"
	"github.com/fekuna/omnipos-commerce-service/internal/model"
	"github.com/shopspring/decimal"
)

type InitiateRequest struct {
	Amount    decimal.Decimal
	Currency  string
	OrderID   string
	UserID    string
	Method    model.PaymentMethod
	ReturnURL string
	Metadata  map[string]interface{}
}

type InitiateResponse struct {
	PaymentRef string
	PaymentURL string
	ExpiryTime time.Time
	Metadata   map[string]interface{}
}

type RefundRequest struct {
	PaymentRef string
	Amount     decimal.Decimal
	Reason     string
}

type RefundResponse struct {
	Reference string `json:"refund_reference"`
	Status    string `json:"status"`
}

type AbortResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type Gateway interface {
	Name() string
	Initiate(ctx context.Context, req *InitiateRequest) (*InitiateResponse, error)
	// VerifyWebhook authenticates a raw webhook body against its signature header.
	VerifyWebhook(body []byte, signature string) error
	ProcessRefund(ctx context.Context, req *RefundRequest) (*RefundResponse, error)
	Abort(ctx context.Context, paymentRef string) (*AbortResponse, error)
}

// Registry resolves gateways by name.
type Registry struct {
	gateways map[string]Gateway
}

func NewRegistry(gateways ...Gateway) *Registry {
	r := &Registry{gateways: make(map[string]Gateway, len(gateways))}
	for _, g := range gateways {
		r.gateways[g.Name()] = g
	}
	return r
}

func (r *Registry) Get(name string) (Gateway, error) {
	g, ok := r.gateways[name]
	if !ok {
		return nil, apperror.Validation("unsupported payment gateway %q", name)
	}
	return g, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.gateways))
	for name := range r.gateways {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
