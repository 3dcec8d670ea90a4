package types

import (
	"io"

	"github.com/labstack/echo/v4"
)

type HealthResponse struct {
	Status string `json:"status"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type,omitempty"`
	Code  string `json:"code,omitempty"`
}

type CheckoutResponse struct {
	Reference  string   `json:"reference"`
	PaymentURL string   `json:"payment_url"`
	Method     string   `json:"method"`
	Amount     float64  `json:"amount"`
	Currency   string   `json:"currency"`
	Warnings   []string `json:"warnings,omitempty"`
}

type OutcomeResponse struct {
	Success       bool    `json:"success"`
	Message       string  `json:"message"`
	TransactionID string  `json:"transaction_id,omitempty"`
	Reference     string  `json:"reference,omitempty"`
	Amount        float64 `json:"amount,omitempty"`
	Currency      string  `json:"currency,omitempty"`
	OrderInfo     string  `json:"order_info,omitempty"`
	BankCode      string  `json:"bank_code,omitempty"`
	PayDate       string  `json:"pay_date,omitempty"`
	ResponseCode  string  `json:"response_code,omitempty"`
}

// IPNResponse is the domestic gateway's required acknowledgment shape. It is
// returned with HTTP 200 no matter what, to stop provider retries.
type IPNResponse struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

// WebhookAckResponse is the international gateway's acknowledgment shape.
type WebhookAckResponse struct {
	Received bool `json:"received"`
}

type SessionResponse struct {
	SessionID     string  `json:"session_id"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
	Paid          bool    `json:"paid"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	CustomerEmail string  `json:"customer_email,omitempty"`
}

type PendingPaymentResponse struct {
	ID        string  `json:"id"`
	PlanID    string  `json:"plan_id"`
	Method    string  `json:"method"`
	Reference string  `json:"reference"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
}

func readBody(ctx echo.Context) ([]byte, error) {
	return io.ReadAll(ctx.Request().Body)
}
