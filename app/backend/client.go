// Package backend is the typed client for the membership backend. This
// service only reports verified outcomes; the backend owns order state and
// enforces idempotency by transaction id.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// MembershipConfirmation reports a verified payment outcome. BillingHash is a
// log-correlation hash, never raw billing data.
type MembershipConfirmation struct {
	PlanID        string  `json:"plan_id"`
	CustomerID    string  `json:"customer_id"`
	Method        string  `json:"method"`
	Reference     string  `json:"reference"`
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Success       bool    `json:"success"`
	BillingHash   string  `json:"billing_hash,omitempty"`
}

// ConfirmMembershipPayment posts the outcome to the backend.
// POST /api/v1/memberships/payment-confirmations
func (c *Client) ConfirmMembershipPayment(ctx context.Context, confirmation *MembershipConfirmation) error {
	body, err := json.Marshal(confirmation)
	if err != nil {
		return err
	}

	url := c.baseURL + "/api/v1/memberships/payment-confirmations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Internal-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend confirmation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("backend returned status %d: %s", resp.StatusCode, string(payload))
	}

	return nil
}
