package payment

import (
	"context"
	"errors"
)

// ErrSignatureMismatch is returned by every gateway when a callback fails
// signature verification.
var ErrSignatureMismatch = errors.New("payment: callback signature mismatch")

// PayURLRequest asks a gateway for a hosted payment page.
type PayURLRequest struct {
	// ReferenceNumber is the order reference we generate and the gateway
	// echoes back on its callback.
	ReferenceNumber string
	Amount          int64
	OrderInfo       string
	ClientIP        string
}

// CallbackData is the normalized result of a verified gateway callback.
type CallbackData struct {
	ReferenceNumber string
	Amount          int64
	TransactionID   string
	Success         bool
	// Raw keeps the gateway's parameters for diagnostic logging.
	Raw map[string]string
}

// Gateway is one external wallet provider. Signature schemes differ per
// provider; callers only see the normalized contract.
type Gateway interface {
	CreatePayURL(ctx context.Context, req *PayURLRequest) (string, error)
	// VerifyCallback authenticates and decodes a return/IPN callback. It
	// fails on signature mismatch without looking at business state.
	VerifyCallback(params map[string]string) (*CallbackData, error)
}
