// Package repository holds the pending-checkout store. It is a hint cache,
// not a ledger; the membership backend owns durable payment state.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/0xBoji/realty-payments/app/entity"
)

var ErrPendingNotFound = errors.New("pending payment not found")

// Key prefixes
const (
	pendingRefPrefix      = "pending:ref:"
	pendingCustomerPrefix = "pending:customer:"
)

type PendingStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPendingStore(client *redis.Client, ttl time.Duration) *PendingStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &PendingStore{client: client, ttl: ttl}
}

// Save writes the record under both its gateway reference and its customer.
// A customer's previous pending record is overwritten: at most one checkout
// is in flight per customer.
func (s *PendingStore) Save(ctx context.Context, pending *entity.PendingPayment) error {
	data, err := json.Marshal(pending)
	if err != nil {
		return err
	}

	if pending.CustomerID != "" {
		prevRef, err := s.client.Get(ctx, pendingCustomerPrefix+pending.CustomerID).Result()
		if err == nil && prevRef != "" && prevRef != pending.Reference {
			_ = s.client.Del(ctx, pendingRefPrefix+prevRef).Err()
		} else if err != nil && err != redis.Nil {
			return err
		}
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, pendingRefPrefix+pending.Reference, data, s.ttl)
	if pending.CustomerID != "" {
		pipe.Set(ctx, pendingCustomerPrefix+pending.CustomerID, pending.Reference, s.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// FindByReference returns nil without error on a miss.
func (s *PendingStore) FindByReference(ctx context.Context, reference string) (*entity.PendingPayment, error) {
	data, err := s.client.Get(ctx, pendingRefPrefix+reference).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var pending entity.PendingPayment
	if err := json.Unmarshal(data, &pending); err != nil {
		return nil, err
	}
	return &pending, nil
}

// Delete clears a record once a terminal outcome is observed or the customer
// cancels.
func (s *PendingStore) Delete(ctx context.Context, reference string) error {
	pending, err := s.FindByReference(ctx, reference)
	if err != nil {
		return err
	}
	if pending == nil {
		return ErrPendingNotFound
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, pendingRefPrefix+reference)
	if pending.CustomerID != "" {
		pipe.Del(ctx, pendingCustomerPrefix+pending.CustomerID)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// ListStale scans for pending records older than the cutoff, up to limit.
// Used by the reconcile job to drive gateway status queries.
func (s *PendingStore) ListStale(ctx context.Context, cutoff time.Time, limit int32) ([]*entity.PendingPayment, error) {
	if limit <= 0 {
		limit = 100
	}

	items := make([]*entity.PendingPayment, 0, limit)
	iter := s.client.Scan(ctx, 0, pendingRefPrefix+"*", int64(limit)*4).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, err
		}
		var pending entity.PendingPayment
		if err := json.Unmarshal(data, &pending); err != nil {
			continue
		}
		if pending.CreatedAt.After(cutoff) {
			continue
		}
		items = append(items, &pending)
		if int32(len(items)) >= limit {
			break
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
