package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/budgetledger/internal/domain"
	"github.com/iho/budgetledger/internal/infrastructure/postgres/generated"
	"github.com/iho/budgetledger/internal/usecase"
)

// BudgetRepository implements usecase.BudgetRepository.
type BudgetRepository struct {
	queries *generated.Queries
}

// NewBudgetRepository creates a new BudgetRepository.
func NewBudgetRepository(db generated.DBTX) *BudgetRepository {
	return &BudgetRepository{queries: generated.New(db)}
}

// Create inserts a budget.
func (r *BudgetRepository) Create(ctx context.Context, budget *domain.Budget) error {
	return r.queries.CreateBudget(ctx, generated.CreateBudgetParams{
		ID:        budget.ID,
		OwnerID:   budget.OwnerID,
		Name:      budget.Name,
		Month:     timeToPgDate(budget.Month),
		Amount:    decimalToNumeric(budget.Amount),
		Currency:  budget.Currency,
		CreatedAt: timeToPgTimestamptz(budget.CreatedAt),
		UpdatedAt: timeToPgTimestamptz(budget.UpdatedAt),
	})
}

// GetByID retrieves one of the owner's budgets.
func (r *BudgetRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Budget, error) {
	row, err := r.queries.GetBudgetByID(ctx, generated.GetBudgetByIDParams{ID: id, OwnerID: ownerID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}

		return nil, err
	}

	return rowToBudget(row), nil
}

// List lists the owner's budgets, latest month first.
func (r *BudgetRepository) List(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Budget, error) {
	rows, err := r.queries.ListBudgets(ctx, generated.ListBudgetsParams{
		OwnerID: ownerID,
		Limit:   int32(limit),
		Offset:  int32(offset),
	})
	if err != nil {
		return nil, err
	}

	budgets := make([]*domain.Budget, 0, len(rows))
	for _, row := range rows {
		budgets = append(budgets, rowToBudget(row))
	}

	return budgets, nil
}

// CategoryRepository implements usecase.CategoryRepository.
type CategoryRepository struct {
	queries *generated.Queries
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db generated.DBTX) *CategoryRepository {
	return &CategoryRepository{queries: generated.New(db)}
}

// Create inserts a category.
func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	return r.queries.CreateCategory(ctx, generated.CreateCategoryParams{
		ID:        category.ID,
		BudgetID:  category.BudgetID,
		Name:      category.Name,
		ColorHex:  category.ColorHex,
		CreatedAt: timeToPgTimestamptz(category.CreatedAt),
		UpdatedAt: timeToPgTimestamptz(category.UpdatedAt),
	})
}

// ListByBudget lists a budget's categories by name.
func (r *CategoryRepository) ListByBudget(ctx context.Context, budgetID string) ([]*domain.Category, error) {
	rows, err := r.queries.ListCategoriesByBudget(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	categories := make([]*domain.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, &domain.Category{
			ID:        row.ID,
			BudgetID:  row.BudgetID,
			Name:      row.Name,
			ColorHex:  row.ColorHex,
			CreatedAt: row.CreatedAt.Time,
			UpdatedAt: row.UpdatedAt.Time,
		})
	}

	return categories, nil
}

// Delete removes a category within a transaction.
func (r *CategoryRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	n, err := queries.DeleteCategory(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrCategoryNotFound
	}

	return nil
}

func rowToBudget(row generated.Budget) *domain.Budget {
	return &domain.Budget{
		ID:        row.ID,
		OwnerID:   row.OwnerID,
		Name:      row.Name,
		Month:     row.Month.Time,
		Amount:    numericToDecimal(row.Amount),
		Currency:  row.Currency,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}
