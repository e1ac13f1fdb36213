package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ChargeRequest struct {
	IdempotencyKey string
	SessionID      uuid.UUID
	PatientID      uuid.UUID
	Amount         float64
	Currency       string
}

type ChargeResult struct {
	ProviderRef string
}

// PaymentGateway fronts the external payment service. Charge must be
// idempotent with respect to the idempotency key so that a retried
// confirmation never double-charges the patient.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	Refund(ctx context.Context, providerRef string, amount float64, reason string) error
}

type HTTPPaymentGateway struct {
	baseURL string
	client  *http.Client
}

func NewHTTPPaymentGateway(baseURL string) *HTTPPaymentGateway {
	return &HTTPPaymentGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type chargePayload struct {
	SessionID string  `json:"session_id"`
	PatientID string  `json:"patient_id"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
}

type chargeResponse struct {
	Ref string `json:"ref"`
}

func (g *HTTPPaymentGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	body, err := json.Marshal(chargePayload{
		SessionID: req.SessionID.String(),
		PatientID: req.PatientID.String(),
		Amount:    req.Amount,
		Currency:  req.Currency,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal charge payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/charges", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create charge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var parsed chargeResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return nil, fmt.Errorf("%w: decode charge response: %v", ErrPaymentProvider, err)
		}
		return &ChargeResult{ProviderRef: parsed.Ref}, nil
	case resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, ErrPaymentDeclined
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrPaymentProvider, resp.StatusCode, string(snippet))
	}
}

type refundPayload struct {
	Ref    string  `json:"ref"`
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
}

func (g *HTTPPaymentGateway) Refund(ctx context.Context, providerRef string, amount float64, reason string) error {
	body, err := json.Marshal(refundPayload{Ref: providerRef, Amount: amount, Reason: reason})
	if err != nil {
		return fmt.Errorf("marshal refund payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/refunds", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create refund request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrPaymentProvider, resp.StatusCode, string(snippet))
	}
	return nil
}
