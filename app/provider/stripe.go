package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/0xBoji/realty-payments/app/entity"
	"github.com/0xBoji/realty-payments/app/validation"
)

const stripeAPIBase = "https://api.stripe.com"

// Stripe event types this service reacts to.
const (
	EventCheckoutCompleted      = "checkout.session.completed"
	EventPaymentIntentSucceeded = "payment_intent.succeeded"
	EventPaymentIntentFailed    = "payment_intent.payment_failed"
	EventInvoicePaid            = "invoice.paid"
	EventSubscriptionCreated    = "customer.subscription.created"
	EventSubscriptionUpdated    = "customer.subscription.updated"
	EventSubscriptionDeleted    = "customer.subscription.deleted"
)

type StripeConfig struct {
	SecretKey   string
	SuccessURL  string
	CancelURL   string
	VNDPerUSD   int64
	HTTPTimeout time.Duration
}

type StripeProvider struct {
	cfg      StripeConfig
	verifier WebhookVerifier
	client   *http.Client
}

// Event is a verified webhook envelope.
type Event struct {
	ID     string
	Type   string
	Object json.RawMessage
}

// SessionStatus is the return-flow view of a checkout session. Paid is the
// binary success signal; everything else is surfaced raw.
type SessionStatus struct {
	ID            string
	Status        string
	PaymentStatus string
	Paid          bool
	AmountCents   int64
	Currency      string
	CustomerEmail string
}

func NewStripeProvider(cfg StripeConfig, verifier WebhookVerifier) *StripeProvider {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if cfg.VNDPerUSD <= 0 {
		cfg.VNDPerUSD = 25_000
	}

	return &StripeProvider{
		cfg:      cfg,
		verifier: verifier,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *StripeProvider) Code() string {
	return entity.MethodStripe
}

// CreateCheckout converts the dong amount to settlement cents and creates a
// hosted checkout session. Billing details travel only as a correlation hash
// in metadata, never in the clear.
func (p *StripeProvider) CreateCheckout(ctx context.Context, input *CheckoutInput) (*CheckoutOutput, error) {
	if strings.TrimSpace(p.cfg.SecretKey) == "" {
		return nil, entity.NewPaymentError(entity.ErrTypeGateway, "stripe secret key is not configured")
	}

	cents := p.ConvertVNDToUSDCents(input.AmountVND)

	values := url.Values{}
	values.Set("mode", "payment")
	values.Set("line_items[0][quantity]", "1")
	values.Set("line_items[0][price_data][currency]", "usd")
	values.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(cents, 10))
	values.Set("line_items[0][price_data][product_data][name]", productName(input))

	if email := strings.TrimSpace(input.CustomerEmail); email != "" {
		values.Set("customer_email", email)
	}

	successURL := strings.TrimSpace(input.SuccessURL)
	cancelURL := strings.TrimSpace(input.CancelURL)
	if successURL == "" {
		successURL = p.cfg.SuccessURL
	}
	if cancelURL == "" {
		cancelURL = p.cfg.CancelURL
	}
	values.Set("success_url", successURL)
	values.Set("cancel_url", cancelURL)

	for k, v := range input.Metadata {
		values.Set("metadata["+k+"]", v)
	}
	values.Set("metadata[plan_id]", input.PlanID)
	values.Set("metadata[customer_id]", input.CustomerID)
	values.Set("metadata[billing_hash]", validation.HashForLogging(
		input.CustomerName+"|"+input.CustomerEmail,
	))

	body, err := p.postForm(ctx, "/v1/checkout/sessions", values)
	if err != nil {
		return nil, err
	}

	var payload struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, entity.WrapPaymentError(entity.ErrTypeGateway, "stripe session response could not be parsed", err)
	}
	if strings.TrimSpace(payload.ID) == "" || strings.TrimSpace(payload.URL) == "" {
		return nil, entity.NewPaymentError(entity.ErrTypeGateway, "stripe session response missing id or url")
	}

	return &CheckoutOutput{
		Reference:  payload.ID,
		PaymentURL: payload.URL,
		Currency:   "USD",
		Amount:     float64(cents) / 100,
	}, nil
}

// ConvertVNDToUSDCents applies the configured fixed rate, rounding to the
// nearest cent.
// TODO: replace the fixed FX_VND_PER_USD rate with a real-time rate source.
func (p *StripeProvider) ConvertVNDToUSDCents(amountVND float64) int64 {
	return int64(math.Round(amountVND / float64(p.cfg.VNDPerUSD) * 100))
}

// RetrieveSession fetches session state for the return-flow UI. Any provider
// state is tolerated; Paid is the only success signal.
func (p *StripeProvider) RetrieveSession(ctx context.Context, sessionID string) (*SessionStatus, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, entity.NewPaymentError(entity.ErrTypeValidation, "session id is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		stripeAPIBase+"/v1/checkout/sessions/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.SecretKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err, "stripe session lookup failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, entity.NewPaymentErrorWithCode(entity.ErrTypeGateway,
			fmt.Sprintf("stripe session lookup returned status %d", resp.StatusCode), strconv.Itoa(resp.StatusCode))
	}

	var payload struct {
		ID            string `json:"id"`
		Status        string `json:"status"`
		PaymentStatus string `json:"payment_status"`
		AmountTotal   int64  `json:"amount_total"`
		Currency      string `json:"currency"`
		CustomerEmail string `json:"customer_email"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, entity.WrapPaymentError(entity.ErrTypeGateway, "stripe session response could not be parsed", err)
	}

	return &SessionStatus{
		ID:            payload.ID,
		Status:        payload.Status,
		PaymentStatus: payload.PaymentStatus,
		Paid:          payload.PaymentStatus == "paid" || payload.PaymentStatus == "no_payment_required",
		AmountCents:   payload.AmountTotal,
		Currency:      strings.ToUpper(payload.Currency),
		CustomerEmail: payload.CustomerEmail,
	}, nil
}

// VerifyAndParseEvent fails closed: any verification problem is an
// invalid-signature rejection, never a parsed event.
func (p *StripeProvider) VerifyAndParseEvent(payload []byte, signatureHeader string) (*Event, error) {
	if p.verifier == nil {
		return nil, errors.New("webhook verifier is not configured")
	}
	if err := p.verifier.Verify(payload, signatureHeader); err != nil {
		return nil, err
	}

	var envelope struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object json.RawMessage `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, err
	}

	return &Event{
		ID:     strings.TrimSpace(envelope.ID),
		Type:   strings.TrimSpace(envelope.Type),
		Object: envelope.Data.Object,
	}, nil
}

func (p *StripeProvider) postForm(ctx context.Context, path string, values url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, stripeAPIBase+path, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err, "stripe request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, entity.NewPaymentErrorWithCode(entity.ErrTypeGateway,
			fmt.Sprintf("stripe request failed: path=%s status=%d", path, resp.StatusCode), strconv.Itoa(resp.StatusCode))
	}

	return body, nil
}

func classifyTransportError(err error, message string) error {
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return entity.WrapPaymentError(entity.ErrTypeNetwork, message+": timed out", err)
	}
	return entity.WrapPaymentError(entity.ErrTypeNetwork, message, err)
}

func productName(input *CheckoutInput) string {
	name := strings.TrimSpace(input.Description)
	if name != "" {
		return name
	}
	if strings.TrimSpace(input.PlanID) != "" {
		return "membership-" + strings.TrimSpace(input.PlanID)
	}
	return "payment"
}
