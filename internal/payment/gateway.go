// Package payment talks to the external payment gateway: it creates orders
// for a checkout total and verifies the signature the gateway attaches to a
// completed payment.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/config"
	"github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/model"
)

// ErrMisconfigured is returned when gateway credentials are absent.
var ErrMisconfigured = errors.New("payment gateway is not configured")

// ErrInvalidAmount is returned for totals that are not positive finite
// numbers or that round to zero minor units.
var ErrInvalidAmount = errors.New("amount must be a positive number")

// maxDiagnosticBytes caps how much of a failed gateway response is kept.
const maxDiagnosticBytes = 4 << 10

// GatewayError reports a non-2xx answer from the gateway.  Body carries the
// gateway's diagnostic payload verbatim.
type GatewayError struct {
	StatusCode int
	Body       json.RawMessage
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway returned status %d", e.StatusCode)
}

// Order is the handle a client needs to open the gateway's payment UI.
type Order struct {
	ID          string       `json:"order_id"`
	AmountMinor model.Amount `json:"-"`
	Amount      int64        `json:"amount"`
	Currency    string       `json:"currency"`
	Receipt     string       `json:"receipt"`
	PublicKey   string       `json:"key"`
}

// Gateway creates orders against the gateway's REST API using basic auth.
type Gateway struct {
	baseURL   string
	keyID     string
	keySecret string
	currency  string
	client    *http.Client
}

// NewGateway builds a Gateway from configuration.  Missing credentials are
// not rejected here; CreateOrder reports ErrMisconfigured instead so the
// rest of the API can keep serving.
func NewGateway(cfg config.GatewayConfig, client *http.Client) *Gateway {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	currency := cfg.Currency
	if currency == "" {
		currency = "INR"
	}
	return &Gateway{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		currency:  currency,
		client:    client,
	}
}

type createOrderRequest struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
	PaymentCapture int    `json:"payment_capture"`
}

type createOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// CreateOrder asks the gateway for an order worth total major units.  The
// amount is sent in minor units rounded to the nearest integer, with
// automatic capture enabled.
func (g *Gateway) CreateOrder(ctx context.Context, total float64) (Order, error) {
	if g.keyID == "" || g.keySecret == "" {
		return Order{}, ErrMisconfigured
	}
	amount, err := model.AmountFromMajor(total)
	if err != nil || amount <= 0 {
		return Order{}, ErrInvalidAmount
	}

	payload, err := json.Marshal(createOrderRequest{
		Amount:         int64(amount),
		Currency:       g.currency,
		Receipt:        "rcpt_" + uuid.NewString(),
		PaymentCapture: 1,
	})
	if err != nil {
		return Order{}, fmt.Errorf("encode order: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return Order{}, fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.client.Do(req)
	if err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxDiagnosticBytes))
		return Order{}, &GatewayError{StatusCode: resp.StatusCode, Body: diagnostic(body)}
	}

	var out createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Order{}, fmt.Errorf("decode order: %w", err)
	}
	if out.ID == "" {
		return Order{}, fmt.Errorf("decode order: gateway returned no order id")
	}
	if out.Currency == "" {
		out.Currency = g.currency
	}
	if out.Amount == 0 {
		out.Amount = int64(amount)
	}
	return Order{
		ID:          out.ID,
		AmountMinor: model.Amount(out.Amount),
		Amount:      out.Amount,
		Currency:    out.Currency,
		Receipt:     out.Receipt,
		PublicKey:   g.keyID,
	}, nil
}

// diagnostic keeps a JSON body as-is and wraps anything else in a JSON
// string so it can be embedded in an API response.
func diagnostic(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(string(trimmed))
	return json.RawMessage(quoted)
}
