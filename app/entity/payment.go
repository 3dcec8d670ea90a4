package entity

import "time"

// Payment methods accepted at checkout.
const (
	MethodVNPay  = "vnpay"
	MethodStripe = "stripe"
)

// A pending record is written once the gateway has issued a redirect; terminal
// outcomes delete it from the store.
const PendingStatusRedirected = "redirected"

// BillingInfo is the customer snapshot captured at checkout. Postal code is
// the only optional field.
type BillingInfo struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code,omitempty"`
}

// PendingPayment is the server-side record of an in-flight checkout attempt.
// It is a hint, not a ledger: the membership backend owns durable state. At
// most one live record exists per customer; a new checkout overwrites it.
type PendingPayment struct {
	ID         string      `json:"id"`
	CustomerID string      `json:"customer_id"`
	PlanID     string      `json:"plan_id"`
	Method     string      `json:"method"`
	Reference  string      `json:"reference"`
	Amount     float64     `json:"amount"`
	Currency   string      `json:"currency"`
	Status     string      `json:"status"`
	Billing    BillingInfo `json:"billing"`
	CreatedAt  time.Time   `json:"created_at"`
}

// PaymentOutcome is the normalized result of a return redirect or webhook.
// Success requires both an authentic signature and a provider success code;
// a valid signature with a failure code is a verified failure.
type PaymentOutcome struct {
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
	Status        string  `json:"status,omitempty"`
}
