package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ichewm/MedicalBible-sub004/internal/config"
)

// httpGateway talks to the payment aggregator's collect API. The aggregator
// authenticates us by channel/secret headers and signs its callbacks; we
// never verify signatures locally, we echo the payload back to its verify
// endpoint and trust the verdict.
type httpGateway struct {
	httpClient  *http.Client
	baseAPIURL  string
	channel     string
	secret      string
	callbackURL string
}

func NewHTTPGateway(cfg *config.Gateway) PaymentGateway {
	return &httpGateway{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseAPIURL:  cfg.BaseAPIURL,
		channel:     cfg.Channel,
		secret:      cfg.Secret,
		callbackURL: cfg.CallbackURL,
	}
}

type collectRequest struct {
	Provider string `json:"provider"`
	OrderNo  string `json:"order_no"`
	// minor units: the provider API refuses fractional amounts
	AmountCents int64  `json:"amount_cents"`
	Subject     string `json:"subject"`
	CallbackURL string `json:"callback_url"`
}

type collectResponse struct {
	Status bool   `json:"status"`
	PayURL string `json:"pay_url"`
	QRCode string `json:"qr_code"`
	Error  string `json:"error"`
}

func (g *httpGateway) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	payload := collectRequest{
		Provider:    req.Provider,
		OrderNo:     req.OrderNo,
		AmountCents: req.Amount.Shift(2).IntPart(),
		Subject:     req.Subject,
		CallbackURL: g.callbackURL,
	}

	var resp collectResponse
	if err := g.post(ctx, "/payment/collect", payload, &resp); err != nil {
		return nil, err
	}
	if !resp.Status {
		return nil, fmt.Errorf("provider rejected order %s: %s", req.OrderNo, resp.Error)
	}

	return &Intent{
		PayURL: resp.PayURL,
		QRCode: resp.QRCode,
	}, nil
}

type verifyResponse struct {
	Valid     bool   `json:"valid"`
	OrderNo   string `json:"order_no"`
	PayMethod string `json:"pay_method"`
	TradeRef  string `json:"trade_ref"`
}

func (g *httpGateway) VerifyCallback(ctx context.Context, payload []byte) (*Callback, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseAPIURL+"/payment/verify", bytes.NewReader(payload))
	if err != nil {
		return nil, false, fmt.Errorf("http new request: %w", err)
	}
	g.setHeaders(req)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, false, fmt.Errorf("verify endpoint error %d: %s", resp.StatusCode, string(b))
	}

	var result verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, false, fmt.Errorf("decode verify response: %w", err)
	}
	if !result.Valid {
		return nil, false, nil
	}

	return &Callback{
		OrderNo:   result.OrderNo,
		PayMethod: result.PayMethod,
		TradeRef:  result.TradeRef,
	}, true, nil
}

func (g *httpGateway) post(ctx context.Context, endpoint string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseAPIURL+endpoint, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	g.setHeaders(req)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("provider error %d: %s", resp.StatusCode, string(b))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}
	return nil
}

func (g *httpGateway) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("channel", g.channel)
	req.Header.Set("secret", g.secret)
}
