package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/0xBoji/realty-payments/app/backend"
	"github.com/0xBoji/realty-payments/app/entity"
	"github.com/0xBoji/realty-payments/app/factory"
	"github.com/0xBoji/realty-payments/app/provider"
	"github.com/0xBoji/realty-payments/app/repository"
	"github.com/0xBoji/realty-payments/app/types"
	"github.com/0xBoji/realty-payments/app/validation"
	"github.com/0xBoji/realty-payments/config"
)

type pendingStore interface {
	Save(ctx context.Context, pending *entity.PendingPayment) error
	FindByReference(ctx context.Context, reference string) (*entity.PendingPayment, error)
	Delete(ctx context.Context, reference string) error
	ListStale(ctx context.Context, cutoff time.Time, limit int32) ([]*entity.PendingPayment, error)
}

type backendNotifier interface {
	ConfirmMembershipPayment(ctx context.Context, confirmation *backend.MembershipConfirmation) error
}

type domesticGateway interface {
	provider.Provider
	VerifyReturn(params map[string]string) *entity.PaymentOutcome
	VerifyIPN(params map[string]string) *entity.PaymentOutcome
	SignatureValid(params map[string]string) bool
	QueryTransaction(ctx context.Context, txnRef, transactionDate string) (*entity.PaymentOutcome, error)
}

type internationalGateway interface {
	provider.Provider
	ConvertVNDToUSDCents(amountVND float64) int64
	RetrieveSession(ctx context.Context, sessionID string) (*provider.SessionStatus, error)
	VerifyAndParseEvent(payload []byte, signatureHeader string) (*provider.Event, error)
}

type PaymentService struct {
	pending     pendingStore
	notifier    backendNotifier
	vnpay       domesticGateway
	stripe      internationalGateway
	providerReg *provider.Registry
	paymentsCfg config.PaymentsConfig
	jobsCfg     config.JobsConfig
	logger      logrus.FieldLogger
}

func NewPaymentService(
	pending pendingStore,
	notifier backendNotifier,
	vnpay domesticGateway,
	stripe internationalGateway,
	paymentsCfg config.PaymentsConfig,
	jobsCfg config.JobsConfig,
) *PaymentService {
	return &PaymentService{
		pending:     pending,
		notifier:    notifier,
		vnpay:       vnpay,
		stripe:      stripe,
		providerReg: provider.NewRegistry(vnpay, stripe),
		paymentsCfg: paymentsCfg,
		jobsCfg:     jobsCfg,
		logger:      factory.NewModuleLogger("payments-service"),
	}
}

// CreateCheckout validates the attempt, checks gateway-specific amount
// bounds, dispatches to the chosen gateway and records the pending hint.
func (s *PaymentService) CreateCheckout(ctx context.Context, req *types.CheckoutRequest) (*types.CheckoutResponse, error) {
	amount := validation.SanitizeAmount(req.Amount)

	switch req.Method {
	case entity.MethodVNPay:
		if !validation.ValidateAmount(amount, float64(s.paymentsCfg.VNDMinAmount), float64(s.paymentsCfg.VNDMaxAmount)) {
			return nil, entity.NewPaymentError(entity.ErrTypeValidation,
				fmt.Sprintf("amount must be between %d and %d VND", s.paymentsCfg.VNDMinAmount, s.paymentsCfg.VNDMaxAmount))
		}
	case entity.MethodStripe:
		cents := s.stripe.ConvertVNDToUSDCents(amount)
		if !validation.ValidateAmount(float64(cents), float64(s.paymentsCfg.USDMinCents), float64(s.paymentsCfg.USDMaxCents)) {
			return nil, entity.NewPaymentError(entity.ErrTypeValidation,
				fmt.Sprintf("converted amount must be between %d and %d USD cents", s.paymentsCfg.USDMinCents, s.paymentsCfg.USDMaxCents))
		}
	default:
		return nil, ErrProviderUnsupported
	}

	warnings := validation.DetectSuspiciousActivity(amount, req.Billing.Email)
	if len(warnings) > 0 {
		s.logger.WithFields(logrus.Fields{
			"plan_id":    req.PlanID,
			"email_hash": validation.HashForLogging(req.Billing.Email),
			"warnings":   warnings,
		}).Warn("Suspicious checkout activity")
	}

	gateway, err := s.providerReg.Get(req.Method)
	if err != nil {
		if errors.Is(err, provider.ErrProviderNotSupported) {
			return nil, ErrProviderUnsupported
		}
		return nil, err
	}

	output, err := gateway.CreateCheckout(ctx, &provider.CheckoutInput{
		PlanID:        req.PlanID,
		CustomerID:    req.CustomerID,
		Description:   req.Description,
		OrderType:     req.OrderType,
		AmountVND:     amount,
		ClientIP:      req.ClientIP,
		CustomerEmail: req.Billing.Email,
		CustomerName:  req.Billing.FullName,
		SuccessURL:    req.SuccessURL,
		CancelURL:     req.CancelURL,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	pending := &entity.PendingPayment{
		ID:         uuid.NewString(),
		CustomerID: req.CustomerID,
		PlanID:     req.PlanID,
		Method:     req.Method,
		Reference:  output.Reference,
		Amount:     output.Amount,
		Currency:   output.Currency,
		Status:     entity.PendingStatusRedirected,
		Billing:    req.Billing,
		CreatedAt:  now,
	}
	if err := s.pending.Save(ctx, pending); err != nil {
		// The record is a reconciliation hint; losing it degrades but does
		// not break the flow.
		s.logger.WithError(err).WithField("reference", output.Reference).Warn("Failed to save pending payment")
	}

	return &types.CheckoutResponse{
		Reference:  output.Reference,
		PaymentURL: output.PaymentURL,
		Method:     req.Method,
		Amount:     output.Amount,
		Currency:   output.Currency,
		Warnings:   warnings,
	}, nil
}

func (s *PaymentService) GetPendingPayment(ctx context.Context, reference string) (*entity.PendingPayment, error) {
	pending, err := s.pending.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if pending == nil {
		return nil, ErrPendingNotFound
	}
	return pending, nil
}

func (s *PaymentService) CancelPendingPayment(ctx context.Context, reference string) error {
	if err := s.pending.Delete(ctx, reference); err != nil {
		if errors.Is(err, repository.ErrPendingNotFound) {
			return ErrPendingNotFound
		}
		return err
	}
	return nil
}

// GetStripeSession serves the return-flow UI; a paid session also clears the
// pending record.
func (s *PaymentService) GetStripeSession(ctx context.Context, sessionID string) (*provider.SessionStatus, error) {
	session, err := s.stripe.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Paid {
		s.clearPending(ctx, session.ID)
	}
	return session, nil
}

// notifyBackend reports a verified terminal outcome. Failures are logged and
// swallowed; webhook acknowledgment must never depend on the backend.
func (s *PaymentService) notifyBackend(ctx context.Context, pending *entity.PendingPayment, outcome *entity.PaymentOutcome) {
	confirmation := &backend.MembershipConfirmation{
		Reference:     outcome.Reference,
		TransactionID: outcome.TransactionID,
		Amount:        outcome.Amount,
		Currency:      outcome.Currency,
		Success:       outcome.Success,
	}
	if pending != nil {
		confirmation.PlanID = pending.PlanID
		confirmation.CustomerID = pending.CustomerID
		confirmation.Method = pending.Method
		confirmation.BillingHash = validation.HashForLogging(pending.Billing.FullName + "|" + pending.Billing.Email)
	}

	if err := s.notifier.ConfirmMembershipPayment(ctx, confirmation); err != nil {
		s.logger.WithError(err).WithField("reference", outcome.Reference).Error("Backend confirmation failed")
	}
}

func (s *PaymentService) clearPending(ctx context.Context, reference string) {
	if err := s.pending.Delete(ctx, reference); err != nil && !errors.Is(err, repository.ErrPendingNotFound) {
		s.logger.WithError(err).WithField("reference", reference).Warn("Pending record not cleared")
	}
}
