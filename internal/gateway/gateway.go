// Package gateway is the boundary to third-party payment providers. The
// engine only needs two things from a provider: a payable intent for an
// order, and a verdict on whether an inbound callback is authentic.
package gateway

import (
	"context"

	"github.com/shopspring/decimal"
)

type IntentRequest struct {
	Provider string // provider code chosen by the buyer, e.g. "wechat", "alipay"
	OrderNo  string
	Amount   decimal.Decimal
	Subject  string // human-readable purchase description shown on the pay page
}

type Intent struct {
	PayURL string
	QRCode string // base64 QR payload, empty when the provider only issues a URL
}

// Callback is the provider-independent view of a verified payment
// notification.
type Callback struct {
	OrderNo   string
	PayMethod string
	TradeRef  string // provider-side transaction id
}

type PaymentGateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	// VerifyCallback authenticates a raw callback payload. ok=false means
	// the payload failed verification; the caller must not mutate any state
	// and should log the event.
	VerifyCallback(ctx context.Context, payload []byte) (cb *Callback, ok bool, err error)
}
