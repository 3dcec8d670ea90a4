package mapper

import (
	"time"

	"github.com/0xBoji/realty-payments/app/entity"
	"github.com/0xBoji/realty-payments/app/provider"
	"github.com/0xBoji/realty-payments/app/types"
)

func OutcomeToResponse(outcome *entity.PaymentOutcome) *types.OutcomeResponse {
	if outcome == nil {
		return nil
	}
	return &types.OutcomeResponse{
		Success:       outcome.Success,
		Message:       outcome.Message,
		TransactionID: outcome.TransactionID,
		Reference:     outcome.Reference,
		Amount:        outcome.Amount,
		Currency:      outcome.Currency,
		OrderInfo:     outcome.OrderInfo,
		BankCode:      outcome.BankCode,
		PayDate:       outcome.PayDate,
		ResponseCode:  outcome.ResponseCode,
	}
}

func PendingToResponse(pending *entity.PendingPayment) *types.PendingPaymentResponse {
	if pending == nil {
		return nil
	}
	return &types.PendingPaymentResponse{
		ID:        pending.ID,
		PlanID:    pending.PlanID,
		Method:    pending.Method,
		Reference: pending.Reference,
		Amount:    pending.Amount,
		Currency:  pending.Currency,
		Status:    pending.Status,
		CreatedAt: pending.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func SessionToResponse(session *provider.SessionStatus) *types.SessionResponse {
	if session == nil {
		return nil
	}
	return &types.SessionResponse{
		SessionID:     session.ID,
		Status:        session.Status,
		PaymentStatus: session.PaymentStatus,
		Paid:          session.Paid,
		Amount:        float64(session.AmountCents) / 100,
		Currency:      session.Currency,
		CustomerEmail: session.CustomerEmail,
	}
}
