package provider

import "context"

// CheckoutInput carries a validated checkout attempt into a gateway adapter.
// AmountVND is the sanitized amount in Vietnamese dong; adapters convert to
// their own minor-unit convention.
type CheckoutInput struct {
	PlanID      string
	CustomerID  string
	Description string
	OrderType   string
	AmountVND   float64
	ClientIP    string

	CustomerEmail string
	CustomerName  string

	Metadata map[string]string

	SuccessURL string
	CancelURL  string
}

// CheckoutOutput is what the browser needs to continue the flow: where to go
// and which reference identifies the attempt with the gateway.
type CheckoutOutput struct {
	Reference  string
	PaymentURL string
	Currency   string
	Amount     float64
}

type Provider interface {
	Code() string
	CreateCheckout(ctx context.Context, input *CheckoutInput) (*CheckoutOutput, error)
}
