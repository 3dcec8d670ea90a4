package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/0xBoji/realty-payments/app/entity"
	"github.com/0xBoji/realty-payments/app/provider"
)

// IPN acknowledgment codes required by the domestic gateway.
const (
	ipnCodeAcknowledged     = "00"
	ipnCodeInvalidSignature = "97"
	ipnCodeUnknownError     = "99"
)

// IPNResult is the gateway-mandated acknowledgment pair.
type IPNResult struct {
	RspCode string
	Message string
}

// HandleVNPayReturn verifies the synchronous browser redirect. The verdict
// here is advisory; the IPN path is authoritative on disagreement.
func (s *PaymentService) HandleVNPayReturn(ctx context.Context, params map[string]string) *entity.PaymentOutcome {
	outcome := s.vnpay.VerifyReturn(params)
	s.finalizeOutcome(ctx, outcome)
	return outcome
}

// HandleVNPayIPN processes the asynchronous notification. It never fails
// outward: whatever happens internally, the gateway gets its acknowledgment
// shape so retries stop.
func (s *PaymentService) HandleVNPayIPN(ctx context.Context, params map[string]string) *IPNResult {
	if len(params) == 0 || params["vnp_TxnRef"] == "" {
		return &IPNResult{RspCode: ipnCodeUnknownError, Message: "Unknown error"}
	}

	if !s.vnpay.SignatureValid(params) {
		s.logger.WithField("reference", params["vnp_TxnRef"]).Warn("IPN signature verification failed")
		return &IPNResult{RspCode: ipnCodeInvalidSignature, Message: "Invalid signature"}
	}

	outcome := s.vnpay.VerifyIPN(params)
	s.finalizeOutcome(ctx, outcome)

	// Internal processing problems are ours, not the gateway's; receipt is
	// still acknowledged.
	return &IPNResult{RspCode: ipnCodeAcknowledged, Message: "Confirm success"}
}

// HandleStripeWebhook verifies the signed event envelope and dispatches per
// event type. Handler failures are isolated: one failing handler neither
// blocks acknowledgment nor other event types.
func (s *PaymentService) HandleStripeWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := s.stripe.VerifyAndParseEvent(payload, signatureHeader)
	if err != nil {
		s.logger.WithError(err).Warn("Stripe webhook rejected")
		return ErrInvalidSignature
	}

	logger := s.logger.WithFields(logrus.Fields{"event_id": event.ID, "event_type": event.Type})

	var handler func(ctx context.Context, object json.RawMessage) error
	switch event.Type {
	case provider.EventCheckoutCompleted:
		handler = s.handleCheckoutCompleted
	case provider.EventPaymentIntentSucceeded:
		handler = s.handlePaymentIntentSucceeded
	case provider.EventPaymentIntentFailed:
		handler = s.handlePaymentIntentFailed
	case provider.EventInvoicePaid:
		handler = s.handleInvoicePaid
	case provider.EventSubscriptionCreated, provider.EventSubscriptionUpdated, provider.EventSubscriptionDeleted:
		handler = s.handleSubscriptionChange
	default:
		logger.Debug("Unhandled stripe event type")
		return nil
	}

	if err := handler(ctx, event.Object); err != nil {
		logger.WithError(err).Error("Stripe event handler failed")
	}
	return nil
}

func (s *PaymentService) handleCheckoutCompleted(ctx context.Context, object json.RawMessage) error {
	var session struct {
		ID            string            `json:"id"`
		AmountTotal   int64             `json:"amount_total"`
		Currency      string            `json:"currency"`
		PaymentStatus string            `json:"payment_status"`
		PaymentIntent string            `json:"payment_intent"`
		Metadata      map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(object, &session); err != nil {
		return err
	}

	outcome := &entity.PaymentOutcome{
		Success:       session.PaymentStatus == "paid" || session.PaymentStatus == "no_payment_required",
		Message:       "checkout session completed",
		TransactionID: session.PaymentIntent,
		Reference:     session.ID,
		Amount:        float64(session.AmountTotal) / 100,
		Currency:      strings.ToUpper(session.Currency),
		Status:        session.PaymentStatus,
	}
	s.finalizeOutcome(ctx, outcome)
	return nil
}

func (s *PaymentService) handlePaymentIntentSucceeded(_ context.Context, object json.RawMessage) error {
	var intent struct {
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := json.Unmarshal(object, &intent); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"payment_intent": intent.ID,
		"amount_cents":   intent.Amount,
		"currency":       strings.ToUpper(intent.Currency),
	}).Info("Payment intent succeeded")
	return nil
}

func (s *PaymentService) handlePaymentIntentFailed(_ context.Context, object json.RawMessage) error {
	var intent struct {
		ID               string `json:"id"`
		LastPaymentError struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"last_payment_error"`
	}
	if err := json.Unmarshal(object, &intent); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"payment_intent": intent.ID,
		"decline_code":   intent.LastPaymentError.Code,
	}).Warn("Payment intent failed")
	return nil
}

func (s *PaymentService) handleInvoicePaid(_ context.Context, object json.RawMessage) error {
	var invoice struct {
		ID           string `json:"id"`
		Subscription string `json:"subscription"`
	}
	if err := json.Unmarshal(object, &invoice); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"invoice":      invoice.ID,
		"subscription": invoice.Subscription,
	}).Info("Invoice paid")
	return nil
}

func (s *PaymentService) handleSubscriptionChange(_ context.Context, object json.RawMessage) error {
	var subscription struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(object, &subscription); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"subscription": subscription.ID,
		"status":       subscription.Status,
	}).Info("Subscription changed")
	return nil
}

// finalizeOutcome reports a verified terminal verdict to the backend and
// clears the pending hint. An invalid signature is not a verdict: nothing is
// reported and the record stays for reconciliation.
func (s *PaymentService) finalizeOutcome(ctx context.Context, outcome *entity.PaymentOutcome) {
	if outcome == nil || provider.IsInvalidSignature(outcome) {
		return
	}

	pending, err := s.pending.FindByReference(ctx, outcome.Reference)
	if err != nil {
		s.logger.WithError(err).WithField("reference", outcome.Reference).Warn("Pending lookup failed")
	}

	s.notifyBackend(ctx, pending, outcome)
	if pending != nil {
		s.clearPending(ctx, outcome.Reference)
	}
}
