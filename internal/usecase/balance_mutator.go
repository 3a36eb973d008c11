package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/budgetledger/internal/domain"
)

// BalanceMutator writes balance effects against locked account rows. It
// never commits; the caller's transaction decides the outcome.
type BalanceMutator struct {
	accountRepo AccountRepository
}

// NewBalanceMutator creates a new BalanceMutator.
func NewBalanceMutator(accountRepo AccountRepository) *BalanceMutator {
	return &BalanceMutator{accountRepo: accountRepo}
}

// Adjust adds delta to one account's balance. A zero delta still takes the lock.
func (m *BalanceMutator) Adjust(ctx context.Context, tx Transaction, accountID string, delta decimal.Decimal) error {
	return m.Apply(ctx, tx, nil, []domain.Effect{{AccountID: accountID, Delta: delta}})
}

// Apply reverses one set of effects and applies another as a single step.
//
// Every account touched by either set is locked exactly once, in id order.
// Deltas are netted per account and only non-zero nets are written.
// Reversals against accounts that no longer exist are skipped, while an
// application against a missing account fails with ErrAccountNotFound.
func (m *BalanceMutator) Apply(ctx context.Context, tx Transaction, reversals, applications []domain.Effect) error {
	ids := effectAccountIDs(reversals, applications)
	if len(ids) == 0 {
		return nil
	}

	locked, err := m.accountRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return domain.NewStorageError("lock accounts", err)
	}

	exists := make(map[string]bool, len(locked))
	for _, acc := range locked {
		exists[acc.ID] = true
	}

	for _, e := range applications {
		if !exists[e.AccountID] {
			return domain.ErrAccountNotFound
		}
	}

	live := make([]domain.Effect, 0, len(reversals))
	for _, e := range reversals {
		if exists[e.AccountID] {
			live = append(live, e)
		}
	}

	now := time.Now().UTC()
	for _, net := range domain.NetEffects(live, applications) {
		if net.Delta.IsZero() {
			continue
		}
		if err := m.accountRepo.AdjustBalance(ctx, tx, net.AccountID, net.Delta, now); err != nil {
			return domain.NewStorageError("adjust balance", err)
		}
	}

	return nil
}

func effectAccountIDs(sets ...[]domain.Effect) []string {
	seen := make(map[string]struct{})
	for _, set := range sets {
		for _, e := range set {
			seen[e.AccountID] = struct{}{}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}
