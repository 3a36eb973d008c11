package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/budgetledger/internal/domain"
	"github.com/iho/budgetledger/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	s *Store
}

func (r *LedgerRepository) Positions(ctx context.Context, ownerID string) ([]domain.LedgerPosition, error) {
	var positions []domain.LedgerPosition
	err := r.s.autocommit(ctx, func() error {
		effects := make(map[string]decimal.Decimal)
		for _, t := range r.s.transactions {
			for _, e := range t.Effects() {
				effects[e.AccountID] = effects[e.AccountID].Add(e.Delta)
			}
		}

		owned := make([]*domain.Account, 0)
		for _, acc := range r.s.accounts {
			if acc.OwnerID == ownerID {
				owned = append(owned, acc)
			}
		}
		sort.Slice(owned, func(i, j int) bool {
			if !owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
				return owned[i].CreatedAt.Before(owned[j].CreatedAt)
			}
			return owned[i].ID < owned[j].ID
		})

		for _, acc := range owned {
			positions = append(positions, domain.LedgerPosition{
				AccountID:      acc.ID,
				Balance:        acc.Balance,
				OpeningBalance: acc.OpeningBalance,
				Effects:        effects[acc.ID],
			})
		}
		return nil
	})
	return positions, err
}

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	s *Store
}

func (r *OutboxRepository) Create(_ context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if err := r.s.check(tx); err != nil {
		return err
	}
	if err := r.s.fault("CreateOutboxEvent"); err != nil {
		return err
	}
	c := *event
	r.s.outbox = append(r.s.outbox, &c)
	return nil
}

func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	var events []*domain.OutboxEvent
	err := r.s.autocommit(ctx, func() error {
		for _, e := range r.s.outbox {
			if e.Published {
				continue
			}
			c := *e
			events = append(events, &c)
			if limit > 0 && len(events) == limit {
				break
			}
		}
		return nil
	})
	return events, err
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	return r.s.autocommit(ctx, func() error {
		for _, e := range r.s.outbox {
			if e.ID == id {
				at := publishedAt
				e.Published = true
				e.PublishedAt = &at
				return nil
			}
		}
		return nil
	})
}

func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	return r.s.autocommit(ctx, func() error {
		kept := r.s.outbox[:0]
		for _, e := range r.s.outbox {
			if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
				continue
			}
			kept = append(kept, e)
		}
		r.s.outbox = kept
		return nil
	})
}

// AuditRepository implements usecase.AuditRepository.
type AuditRepository struct {
	s *Store
}

func (r *AuditRepository) CreateTx(_ context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	if err := r.s.check(tx); err != nil {
		return err
	}
	c := *log
	r.s.audit = append(r.s.audit, &c)
	return nil
}

func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	var logs []*domain.AuditLog
	err := r.s.autocommit(ctx, func() error {
		for i := len(r.s.audit) - 1; i >= 0; i-- {
			l := r.s.audit[i]
			if filter.UserID != "" && l.UserID != filter.UserID {
				continue
			}
			if filter.Action != "" && l.Action != filter.Action {
				continue
			}
			if filter.ResourceType != "" && l.ResourceType != filter.ResourceType {
				continue
			}
			if filter.ResourceID != "" && l.ResourceID != filter.ResourceID {
				continue
			}
			c := *l
			logs = append(logs, &c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paginate(logs, filter.Limit, filter.Offset), nil
}
