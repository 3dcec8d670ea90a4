package types

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/0xBoji/realty-payments/app/entity"
)

func validCheckoutBody() string {
	return `{
		"plan_id": "pro-monthly",
		"method": "VNPAY",
		"amount": 1000000.999,
		"description": "Thanh toan goi pro",
		"customer_id": "user-1",
		"billing": {
			"full_name": "Nguyen Van A",
			"email": "a@example.com",
			"phone": "0901234567",
			"address": "1 Ly Thuong Kiet",
			"city": "Ha Noi"
		}
	}`
}

func TestNewCheckoutRequestFromContext(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest("POST", "/checkout", bytes.NewBufferString(validCheckoutBody()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	parsed, err := NewCheckoutRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if parsed.Method != entity.MethodVNPay {
		t.Fatalf("expected lowercased method, got %q", parsed.Method)
	}
	if parsed.Amount != 1_000_001.00 {
		t.Fatalf("expected sanitized amount, got %v", parsed.Amount)
	}
	if parsed.ClientIP == "" {
		t.Fatal("expected client ip from connection")
	}
	if err := parsed.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestCheckoutValidateRequiredFields(t *testing.T) {
	req := &CheckoutRequest{}
	if err := req.Validate(); err == nil {
		t.Fatal("expected plan_id validation error")
	}

	req = &CheckoutRequest{PlanID: "pro", Method: "paypal", Amount: 100}
	if err := req.Validate(); err == nil {
		t.Fatal("expected method validation error")
	}

	req = &CheckoutRequest{
		PlanID: "pro",
		Method: entity.MethodVNPay,
		Amount: 100000,
		Billing: entity.BillingInfo{
			FullName: "Nguyen Van A",
			Email:    "a@example.com",
			Phone:    "0901234567",
			Address:  "1 Ly Thuong Kiet",
			City:     "Ha Noi",
		},
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("expected valid vnpay request without card, got %v", err)
	}

	req.Billing.City = ""
	if err := req.Validate(); err == nil {
		t.Fatal("expected billing city validation error")
	}
}

func TestCheckoutValidatePostalCodeOptional(t *testing.T) {
	req := &CheckoutRequest{
		PlanID: "pro",
		Method: entity.MethodVNPay,
		Amount: 100000,
		Billing: entity.BillingInfo{
			FullName: "Nguyen Van A",
			Email:    "a@example.com",
			Phone:    "0901234567",
			Address:  "1 Ly Thuong Kiet",
			City:     "Ha Noi",
		},
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("expected postal code to be optional, got %v", err)
	}
}

func TestCheckoutValidateStripeRequiresCard(t *testing.T) {
	req := &CheckoutRequest{
		PlanID: "pro",
		Method: entity.MethodStripe,
		Amount: 1_000_000,
		Billing: entity.BillingInfo{
			FullName: "Nguyen Van A",
			Email:    "a@example.com",
			Phone:    "0901234567",
			Address:  "1 Ly Thuong Kiet",
			City:     "Ha Noi",
		},
	}
	if err := req.Validate(); err == nil {
		t.Fatal("expected card requirement error")
	}

	req.Card = &CardPayload{
		Number:         "4111111111111111",
		Expiry:         "12/39",
		CVV:            "123",
		CardholderName: "NGUYEN VAN A",
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("expected valid stripe request, got %v", err)
	}

	req.Card.Number = "4111111111111112"
	if err := req.Validate(); err == nil {
		t.Fatal("expected luhn validation error")
	}

	req.Card.Number = "371449635398431"
	req.Card.CVV = "123"
	if err := req.Validate(); err == nil {
		t.Fatal("expected amex 4-digit cvv requirement")
	}
	req.Card.CVV = "1234"
	if err := req.Validate(); err != nil {
		t.Fatalf("expected valid amex card, got %v", err)
	}
}

func TestNewVNPayParamsFromContext(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest("GET", "/payments/vnpay/return?vnp_TxnRef=20250101120000123456&vnp_ResponseCode=00&vnp_SecureHash=abc", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	params := NewVNPayParamsFromContext(ctx)
	if params["vnp_TxnRef"] != "20250101120000123456" {
		t.Fatalf("unexpected params: %+v", params)
	}
	if params["vnp_SecureHash"] != "abc" {
		t.Fatalf("expected hash param carried through: %+v", params)
	}
}

func TestNewVNPayParamsFromContextPostForm(t *testing.T) {
	e := echo.New()
	form := "vnp_TxnRef=20250101120000123456&vnp_ResponseCode=00&vnp_SecureHash=abc"
	req := httptest.NewRequest("POST", "/payments/vnpay/ipn", bytes.NewBufferString(form))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	params := NewVNPayParamsFromContext(ctx)
	if params["vnp_TxnRef"] != "20250101120000123456" || params["vnp_ResponseCode"] != "00" {
		t.Fatalf("unexpected params: %+v", params)
	}
	if params["vnp_SecureHash"] != "abc" {
		t.Fatalf("expected hash param carried through: %+v", params)
	}
}

func TestNewStripeWebhookFromContext(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest("POST", "/webhooks/stripe", bytes.NewBufferString(`{"id":"evt_1"}`))
	req.Header.Set("Stripe-Signature", " t=1,v1=abc ")
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	body, sig, err := NewStripeWebhookFromContext(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(body) != `{"id":"evt_1"}` {
		t.Fatalf("unexpected body: %s", body)
	}
	if sig != "t=1,v1=abc" {
		t.Fatalf("unexpected signature header: %q", sig)
	}
}
