package postgres

import (
	"context"

	"github.com/iho/budgetledger/internal/infrastructure/postgres/generated"
	"github.com/iho/budgetledger/internal/usecase"
)

// OwnershipRepository implements usecase.OwnershipRepository.
type OwnershipRepository struct {
	queries *generated.Queries
}

// NewOwnershipRepository creates a new OwnershipRepository.
func NewOwnershipRepository(db generated.DBTX) *OwnershipRepository {
	return &OwnershipRepository{queries: generated.New(db)}
}

// CategoryOwnedBy reports whether the category's budget belongs to userID.
func (r *OwnershipRepository) CategoryOwnedBy(ctx context.Context, tx usecase.Transaction, categoryID, userID string) (bool, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return false, err
	}

	return queries.CategoryOwnedBy(ctx, generated.CategoryOwnedByParams{ID: categoryID, OwnerID: userID})
}

// AccountOwnedBy reports whether the account belongs to userID.
func (r *OwnershipRepository) AccountOwnedBy(ctx context.Context, tx usecase.Transaction, accountID, userID string) (bool, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return false, err
	}

	return queries.AccountOwnedBy(ctx, generated.AccountOwnedByParams{ID: accountID, OwnerID: userID})
}

// CountOwnedCategories counts how many of ids belong to the user's budgets.
func (r *OwnershipRepository) CountOwnedCategories(ctx context.Context, userID string, ids []string) (int, error) {
	n, err := r.queries.CountOwnedCategories(ctx, generated.CountOwnedCategoriesParams{
		OwnerID:     userID,
		CategoryIds: ids,
	})

	return int(n), err
}
