package entity

import "fmt"

// PaymentErrorType classifies every externally visible payment failure.
type PaymentErrorType string

const (
	ErrTypeValidation        PaymentErrorType = "VALIDATION_ERROR"
	ErrTypeNetwork           PaymentErrorType = "NETWORK_ERROR"
	ErrTypeGateway           PaymentErrorType = "GATEWAY_ERROR"
	ErrTypeInsufficientFunds PaymentErrorType = "INSUFFICIENT_FUNDS"
	ErrTypeCardDeclined      PaymentErrorType = "CARD_DECLINED"
	ErrTypeExpiredCard       PaymentErrorType = "EXPIRED_CARD"
	ErrTypeInvalidCard       PaymentErrorType = "INVALID_CARD"
	ErrTypeFraudDetected     PaymentErrorType = "FRAUD_DETECTED"
	ErrTypeSystem            PaymentErrorType = "SYSTEM_ERROR"
)

// PaymentError carries the classification alongside a user-presentable
// message and the raw provider code when one exists.
type PaymentError struct {
	Type    PaymentErrorType
	Message string
	Code    string
	Err     error
}

func (e *PaymentError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

func NewPaymentError(errType PaymentErrorType, message string) *PaymentError {
	return &PaymentError{Type: errType, Message: message}
}

func NewPaymentErrorWithCode(errType PaymentErrorType, message, code string) *PaymentError {
	return &PaymentError{Type: errType, Message: message, Code: code}
}

func WrapPaymentError(errType PaymentErrorType, message string, err error) *PaymentError {
	return &PaymentError{Type: errType, Message: message, Err: err}
}
