package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/fekuna/omnipos-commerce-service/internal/apperror"
)

// Mock accepts every request. It stands in for any provider without a real integration.
type Mock struct {
	name    string
	baseURL string
	expiry  time.Duration
	secret  string
	now     func() time.Time
}

type MockConfig struct {
	Name    string
	BaseURL string
	Expiry  time.Duration
	// Secret enables HMAC-SHA256 webhook signatures when set.
	Secret string
}

func NewMock(cfg MockConfig) *Mock {
	if cfg.Expiry <= 0 {
		cfg.Expiry = time.Hour
	}
	return &Mock{
		name:    cfg.Name,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		expiry:  cfg.Expiry,
		secret:  cfg.Secret,
		now:     time.Now,
	}
}

func (m *Mock) Name() string { return m.name }

func (m *Mock) reference(prefix string) string {
	return fmt.Sprintf("%s_%d_%d", prefix, m.now().UnixMilli(), rand.IntN(1000))
}

func (m *Mock) Initiate(_ context.Context, req *InitiateRequest) (*InitiateResponse, error) {
	now := m.now()
	return &InitiateResponse{
		PaymentRef: m.reference("ref"),
		PaymentURL: fmt.Sprintf("%s/%s", m.baseURL, req.OrderID),
		ExpiryTime: now.Add(m.expiry),
		Metadata:   map[string]interface{}{"initiated_at": now.UTC()},
	}, nil
}

func (m *Mock) VerifyWebhook(body []byte, signature string) error {
	if m.secret == "" {
		return nil
	}
	if !hmac.Equal([]byte(Sign(m.secret, body)), []byte(strings.ToLower(signature))) {
		return apperror.Authorization("invalid webhook signature")
	}
	return nil
}

func (m *Mock) ProcessRefund(context.Context, *RefundRequest) (*RefundResponse, error) {
	return &RefundResponse{Reference: m.reference("refund"), Status: "success"}, nil
}

func (m *Mock) Abort(context.Context, string) (*AbortResponse, error) {
	return &AbortResponse{Status: "aborted", Timestamp: m.now().UTC()}, nil
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
