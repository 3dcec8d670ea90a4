package types

import (
	"errors"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/0xBoji/realty-payments/app/entity"
	"github.com/0xBoji/realty-payments/app/validation"
)

// CheckoutRequest is a single checkout attempt. Amount is in Vietnamese dong
// regardless of method; the international adapter converts it.
type CheckoutRequest struct {
	PlanID      string  `json:"plan_id"`
	Method      string  `json:"method"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	OrderType   string  `json:"order_type"`
	CustomerID  string  `json:"customer_id"`

	Billing entity.BillingInfo `json:"billing"`
	Card    *CardPayload       `json:"card,omitempty"`

	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`

	// Populated from the connection, not the body.
	ClientIP string `json:"-"`
}

// CardPayload is validated and discarded. It is never persisted and never
// logged in clear form.
type CardPayload struct {
	Number         string `json:"number"`
	Expiry         string `json:"expiry"`
	CVV            string `json:"cvv"`
	CardholderName string `json:"cardholder_name"`
}

func NewCheckoutRequestFromContext(ctx echo.Context) (*CheckoutRequest, error) {
	var body CheckoutRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.PlanID = strings.TrimSpace(body.PlanID)
	body.Method = strings.ToLower(strings.TrimSpace(body.Method))
	body.Description = strings.TrimSpace(body.Description)
	body.OrderType = strings.TrimSpace(body.OrderType)
	body.CustomerID = strings.TrimSpace(body.CustomerID)
	body.Billing.FullName = strings.TrimSpace(body.Billing.FullName)
	body.Billing.Email = strings.TrimSpace(body.Billing.Email)
	body.Billing.Phone = strings.TrimSpace(body.Billing.Phone)
	body.Billing.Address = strings.TrimSpace(body.Billing.Address)
	body.Billing.City = strings.TrimSpace(body.Billing.City)
	body.Billing.PostalCode = strings.TrimSpace(body.Billing.PostalCode)
	body.SuccessURL = strings.TrimSpace(body.SuccessURL)
	body.CancelURL = strings.TrimSpace(body.CancelURL)
	body.ClientIP = ctx.RealIP()

	body.Amount = validation.SanitizeAmount(body.Amount)

	return &body, nil
}

// Validate covers structure and card checks. Amount bounds are gateway
// specific and enforced by the service.
func (r *CheckoutRequest) Validate() error {
	if r.PlanID == "" {
		return errors.New("plan_id is required")
	}
	if r.Method != entity.MethodVNPay && r.Method != entity.MethodStripe {
		return errors.New("method must be vnpay or stripe")
	}
	if r.Amount <= 0 {
		return errors.New("amount must be > 0")
	}
	if r.Billing.FullName == "" {
		return errors.New("billing full_name is required")
	}
	if r.Billing.Email == "" {
		return errors.New("billing email is required")
	}
	if r.Billing.Phone == "" {
		return errors.New("billing phone is required")
	}
	if r.Billing.Address == "" {
		return errors.New("billing address is required")
	}
	if r.Billing.City == "" {
		return errors.New("billing city is required")
	}

	if r.Method == entity.MethodStripe {
		if r.Card == nil {
			return errors.New("card is required for stripe checkout")
		}
		if !validation.ValidateCardNumber(r.Card.Number) {
			return errors.New("card number is invalid")
		}
		if !validation.ValidateExpiryDate(r.Card.Expiry, time.Now()) {
			return errors.New("card expiry is invalid or in the past")
		}
		cardType := validation.DetectCardType(r.Card.Number)
		if !validation.ValidateCVV(r.Card.CVV, cardType) {
			return errors.New("card cvv is invalid")
		}
		if strings.TrimSpace(r.Card.CardholderName) == "" {
			return errors.New("cardholder_name is required")
		}
	}

	return nil
}

// NewVNPayParamsFromContext flattens the vnp_* params of a return redirect or
// IPN call. The gateway sends them as a GET query or a POST form body; form
// values win on collision. Unknown params are carried through; verification
// decides what matters.
func NewVNPayParamsFromContext(ctx echo.Context) map[string]string {
	values := ctx.QueryParams()
	params := make(map[string]string, len(values))
	for key := range values {
		params[key] = values.Get(key)
	}
	if form, err := ctx.FormParams(); err == nil {
		for key := range form {
			params[key] = form.Get(key)
		}
	}
	return params
}

// NewStripeWebhookFromContext reads the raw body and signature header. The
// raw bytes must reach the verifier untouched.
func NewStripeWebhookFromContext(ctx echo.Context) ([]byte, string, error) {
	body, err := readBody(ctx)
	if err != nil {
		return nil, "", err
	}
	return body, strings.TrimSpace(ctx.Request().Header.Get("Stripe-Signature")), nil
}
