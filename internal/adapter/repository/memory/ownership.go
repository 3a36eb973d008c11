package memory

import (
	"context"

	"github.com/iho/budgetledger/internal/usecase"
)

// OwnershipRepository implements usecase.OwnershipRepository.
type OwnershipRepository struct {
	s *Store
}

func (r *OwnershipRepository) CategoryOwnedBy(_ context.Context, tx usecase.Transaction, categoryID, userID string) (bool, error) {
	if err := r.s.check(tx); err != nil {
		return false, err
	}
	if err := r.s.fault("CategoryOwnedBy"); err != nil {
		return false, err
	}
	owner, ok := r.s.ownerOfCategory(categoryID)
	return ok && owner == userID, nil
}

func (r *OwnershipRepository) AccountOwnedBy(_ context.Context, tx usecase.Transaction, accountID, userID string) (bool, error) {
	if err := r.s.check(tx); err != nil {
		return false, err
	}
	acc, ok := r.s.accounts[accountID]
	return ok && acc.OwnerID == userID, nil
}

func (r *OwnershipRepository) CountOwnedCategories(ctx context.Context, userID string, ids []string) (int, error) {
	count := 0
	err := r.s.autocommit(ctx, func() error {
		for _, id := range ids {
			if owner, ok := r.s.ownerOfCategory(id); ok && owner == userID {
				count++
			}
		}
		return nil
	})
	return count, err
}
