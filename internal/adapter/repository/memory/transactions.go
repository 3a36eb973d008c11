package memory

import (
	"context"
	"sort"

	"github.com/iho/budgetledger/internal/domain"
	"github.com/iho/budgetledger/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	s *Store
}

func (r *TransactionRepository) Create(_ context.Context, tx usecase.Transaction, record *domain.Transaction) error {
	if err := r.s.check(tx); err != nil {
		return err
	}
	if err := r.s.fault("CreateTransaction"); err != nil {
		return err
	}
	r.s.transactions[record.ID] = record.Clone()
	return nil
}

func (r *TransactionRepository) GetByIDForUpdate(_ context.Context, tx usecase.Transaction, ownerID, id string) (*domain.Transaction, error) {
	if err := r.s.check(tx); err != nil {
		return nil, err
	}
	t, ok := r.s.ownedRecord(ownerID, id)
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	return t.Clone(), nil
}

func (r *TransactionRepository) Update(_ context.Context, tx usecase.Transaction, record *domain.Transaction) error {
	if err := r.s.check(tx); err != nil {
		return err
	}
	if err := r.s.fault("UpdateTransaction"); err != nil {
		return err
	}
	if _, ok := r.s.transactions[record.ID]; !ok {
		return domain.ErrTransactionNotFound
	}
	r.s.transactions[record.ID] = record.Clone()
	return nil
}

func (r *TransactionRepository) Delete(_ context.Context, tx usecase.Transaction, id string) error {
	if err := r.s.check(tx); err != nil {
		return err
	}
	if err := r.s.fault("DeleteTransaction"); err != nil {
		return err
	}
	delete(r.s.transactions, id)
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Transaction, error) {
	var found *domain.Transaction
	err := r.s.autocommit(ctx, func() error {
		t, ok := r.s.ownedRecord(ownerID, id)
		if !ok {
			return domain.ErrTransactionNotFound
		}
		found = t.Clone()
		return nil
	})
	return found, err
}

func (r *TransactionRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int, error) {
	var matched []*domain.Transaction
	err := r.s.autocommit(ctx, func() error {
		matched = r.s.matching(filter)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sortNewestFirst(matched)

	return paginate(matched, filter.Limit, filter.Offset), len(matched), nil
}

func (r *TransactionRepository) ListByCategories(ctx context.Context, ownerID string, categoryIDs []string) ([]*domain.Transaction, error) {
	wanted := make(map[string]bool, len(categoryIDs))
	for _, id := range categoryIDs {
		wanted[id] = true
	}

	var matched []*domain.Transaction
	err := r.s.autocommit(ctx, func() error {
		for _, t := range r.s.matching(domain.TransactionFilter{OwnerID: ownerID}) {
			if wanted[t.CategoryID] {
				matched = append(matched, t)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortNewestFirst(matched)
	if matched == nil {
		matched = []*domain.Transaction{}
	}
	return matched, nil
}

func (r *TransactionRepository) ListByCategoryForUpdate(_ context.Context, tx usecase.Transaction, categoryID string) ([]*domain.Transaction, error) {
	if err := r.s.check(tx); err != nil {
		return nil, err
	}

	var matched []*domain.Transaction
	for _, t := range r.s.transactions {
		if t.CategoryID == categoryID {
			matched = append(matched, t.Clone())
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched, nil
}

func (r *TransactionRepository) Summary(ctx context.Context, filter domain.SummaryFilter) (*domain.Summary, error) {
	var summary *domain.Summary
	err := r.s.autocommit(ctx, func() error {
		summary = domain.Summarize(r.s.matching(filter.AsTransactionFilter()))
		return nil
	})
	return summary, err
}

// matching returns clones of the owner's records that pass the filter.
func (s *Store) matching(filter domain.TransactionFilter) []*domain.Transaction {
	var out []*domain.Transaction
	for _, t := range s.transactions {
		owner, ok := s.ownerOfCategory(t.CategoryID)
		if !ok || owner != filter.OwnerID {
			continue
		}
		if filter.Matches(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

func sortNewestFirst(items []*domain.Transaction) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.TransactionDate.Equal(b.TransactionDate) {
			return a.TransactionDate.After(b.TransactionDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}
