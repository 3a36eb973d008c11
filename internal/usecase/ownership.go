package usecase

import (
	"context"

	"github.com/iho/budgetledger/internal/domain"
)

// OwnershipValidator checks, inside the caller's transaction, that the
// category and accounts a record references belong to the acting user.
type OwnershipValidator struct {
	repo OwnershipRepository
}

// NewOwnershipValidator creates a new OwnershipValidator.
func NewOwnershipValidator(repo OwnershipRepository) *OwnershipValidator {
	return &OwnershipValidator{repo: repo}
}

// Category returns ErrCategoryNotFound unless the category's budget is owned by userID.
func (v *OwnershipValidator) Category(ctx context.Context, tx Transaction, categoryID, userID string) error {
	ok, err := v.repo.CategoryOwnedBy(ctx, tx, categoryID, userID)
	if err != nil {
		return domain.NewStorageError("check category ownership", err)
	}
	if !ok {
		return domain.ErrCategoryNotFound
	}
	return nil
}

// Account returns ErrAccountNotFound unless the account is owned by userID.
// A nil account id is accepted.
func (v *OwnershipValidator) Account(ctx context.Context, tx Transaction, accountID *string, userID string) error {
	if accountID == nil {
		return nil
	}

	ok, err := v.repo.AccountOwnedBy(ctx, tx, *accountID, userID)
	if err != nil {
		return domain.NewStorageError("check account ownership", err)
	}
	if !ok {
		return domain.ErrAccountNotFound
	}
	return nil
}
