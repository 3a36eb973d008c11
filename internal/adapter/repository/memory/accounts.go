package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/budgetledger/internal/domain"
	"github.com/iho/budgetledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	s *Store
}

func (r *AccountRepository) Create(_ context.Context, tx usecase.Transaction, account *domain.Account) error {
	if err := r.s.check(tx); err != nil {
		return err
	}
	if err := r.s.fault("CreateAccount"); err != nil {
		return err
	}
	c := *account
	r.s.accounts[account.ID] = &c
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Account, error) {
	var found *domain.Account
	err := r.s.autocommit(ctx, func() error {
		acc, ok := r.s.accounts[id]
		if !ok || acc.OwnerID != ownerID {
			return domain.ErrAccountNotFound
		}
		c := *acc
		found = &c
		return nil
	})
	return found, err
}

func (r *AccountRepository) GetByIDForUpdate(_ context.Context, tx usecase.Transaction, ownerID, id string) (*domain.Account, error) {
	if err := r.s.check(tx); err != nil {
		return nil, err
	}
	acc, ok := r.s.accounts[id]
	if !ok || acc.OwnerID != ownerID {
		return nil, domain.ErrAccountNotFound
	}
	c := *acc
	return &c, nil
}

func (r *AccountRepository) GetByIDsForUpdate(_ context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	if err := r.s.check(tx); err != nil {
		return nil, err
	}
	if err := r.s.fault("GetByIDsForUpdate"); err != nil {
		return nil, err
	}

	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	accounts := make([]*domain.Account, 0, len(sorted))
	for _, id := range sorted {
		if acc, ok := r.s.accounts[id]; ok {
			c := *acc
			accounts = append(accounts, &c)
		}
	}
	return accounts, nil
}

func (r *AccountRepository) AdjustBalance(_ context.Context, tx usecase.Transaction, id string, delta decimal.Decimal, updatedAt time.Time) error {
	if err := r.s.check(tx); err != nil {
		return err
	}
	if err := r.s.fault("AdjustBalance"); err != nil {
		return err
	}
	acc, ok := r.s.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.Balance = acc.Balance.Add(delta)
	acc.UpdatedAt = updatedAt
	return nil
}

func (r *AccountRepository) UpdateBalance(_ context.Context, tx usecase.Transaction, id string, balance, openingBalance decimal.Decimal, updatedAt time.Time) error {
	if err := r.s.check(tx); err != nil {
		return err
	}
	acc, ok := r.s.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.Balance = balance
	acc.OpeningBalance = openingBalance
	acc.UpdatedAt = updatedAt
	return nil
}

func (r *AccountRepository) List(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Account, error) {
	var accounts []*domain.Account
	err := r.s.autocommit(ctx, func() error {
		for _, acc := range r.s.accounts {
			if acc.OwnerID == ownerID {
				c := *acc
				accounts = append(accounts, &c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(accounts, func(i, j int) bool {
		if !accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
		}
		return accounts[i].ID < accounts[j].ID
	})

	return paginate(accounts, limit, offset), nil
}

// Delete removes the account; records referencing it lose that side.
func (r *AccountRepository) Delete(ctx context.Context, ownerID, id string) error {
	return r.s.autocommit(ctx, func() error {
		acc, ok := r.s.accounts[id]
		if !ok || acc.OwnerID != ownerID {
			return domain.ErrAccountNotFound
		}
		delete(r.s.accounts, id)

		for _, t := range r.s.transactions {
			if t.SourceAccountID != nil && *t.SourceAccountID == id {
				t.SourceAccountID = nil
			}
			if t.DestinationAccountID != nil && *t.DestinationAccountID == id {
				t.DestinationAccountID = nil
			}
		}
		return nil
	})
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
