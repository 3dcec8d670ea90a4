package service

import (
	"context"
	"time"

	"github.com/0xBoji/realty-payments/app/entity"
)

// RunReconcileBatch resolves stale domestic-gateway pending records by asking
// the gateway's query API. Records whose attempt reached a terminal state are
// reported and cleared; the rest age out via the store's TTL.
func (s *PaymentService) RunReconcileBatch(ctx context.Context) error {
	now := time.Now().UTC()
	cutoff := now.Add(-s.jobsCfg.ReconcileStaleAfter)

	items, err := s.pending.ListStale(ctx, cutoff, s.jobsCfg.JobBatchSize)
	if err != nil {
		return err
	}

	var firstErr error
	for _, pending := range items {
		if pending == nil || pending.Method != entity.MethodVNPay {
			continue
		}

		transactionDate := pending.CreatedAt.Format("20060102150405")
		outcome, err := s.vnpay.QueryTransaction(ctx, pending.Reference, transactionDate)
		if err != nil {
			firstErr = keepFirstErr(firstErr, err)
			continue
		}

		// Status "01" means the gateway still considers it in flight.
		if outcome.Status == "01" {
			continue
		}

		s.logger.WithField("reference", pending.Reference).
			WithField("response_code", outcome.ResponseCode).
			Info("Reconciled pending payment")

		s.notifyBackend(ctx, pending, outcome)
		s.clearPending(ctx, pending.Reference)
	}

	return firstErr
}

func keepFirstErr(current, candidate error) error {
	if current != nil {
		return current
	}
	return candidate
}
