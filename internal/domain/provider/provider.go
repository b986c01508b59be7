package provider

import (
	"context"

	"github.com/shopspring/decimal"
)

// PaymentProvider defines the outbound gateway boundary for recurring
// charges. Implementations normalize every gateway and transport outcome
// into a ChargeResult; a non-nil error is returned only when no attempt
// could be made at all (for example a request that cannot be built), and
// callers still log such attempts.
type PaymentProvider interface {
	// Charge submits one billing-key charge and returns the normalized result.
	Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error)

	// Name returns the provider name
	Name() string
}

// ChargeRequest represents one recurring charge against a stored billing key
type ChargeRequest struct {
	UserID     int64
	BillingKey string // decrypted gateway token
	Amount     decimal.Decimal
	GoodName   string
	BuyerName  string
	BuyerEmail string
	BuyerTel   string
}

// ChargeResult is the normalized outcome of one charge attempt.
// Success is true only for the gateway's documented success code; every
// other result code, including transport failures mapped to synthetic
// codes, is a failure.
type ChargeResult struct {
	Success       bool
	OrderNumber   string // unique per attempt, generated by the provider
	ResultCode    string
	ResultMessage string
	RawResponse   string
}

// Synthetic result codes for outcomes that never reached a gateway verdict
const (
	ResultCodeNetworkError = "NETWORK_ERROR"
	ResultCodeHTTPError    = "HTTP_ERROR"
	ResultCodeClientError  = "CLIENT_ERROR"
)

// ProviderError carries a gateway error code alongside the message
type ProviderError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *ProviderError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}
