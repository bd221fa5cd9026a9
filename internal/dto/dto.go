package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type CreateOrderRequest struct {
	TierPriceID uint `json:"tier_price_id"`
}

type PayRequest struct {
	Provider string `json:"provider"`
}

type PayURLResponse struct {
	OrderNo string `json:"order_no"`
	PayURL  string `json:"pay_url,omitempty"`
	QRCode  string `json:"qr_code,omitempty"`
	// Paid is true when test mode settled the order inline and there is
	// nothing left to pay.
	Paid bool `json:"paid,omitempty"`
}

type WithdrawRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	AccountInfo json.RawMessage `json:"account_info"`
}

type ReviewWithdrawalRequest struct {
	Approved     bool             `json:"approved"`
	Reason       string           `json:"reason,omitempty"`
	RefundAmount *decimal.Decimal `json:"refund_amount,omitempty"`
}

type ListResponse struct {
	Items any   `json:"items"`
	Total int64 `json:"total"`
}
