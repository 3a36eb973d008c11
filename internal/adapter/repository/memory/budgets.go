package memory

import (
	"context"
	"sort"

	"github.com/iho/budgetledger/internal/domain"
	"github.com/iho/budgetledger/internal/usecase"
)

// BudgetRepository implements usecase.BudgetRepository.
type BudgetRepository struct {
	s *Store
}

func (r *BudgetRepository) Create(ctx context.Context, budget *domain.Budget) error {
	return r.s.autocommit(ctx, func() error {
		c := *budget
		r.s.budgets[budget.ID] = &c
		return nil
	})
}

func (r *BudgetRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Budget, error) {
	var found *domain.Budget
	err := r.s.autocommit(ctx, func() error {
		b, ok := r.s.budgets[id]
		if !ok || b.OwnerID != ownerID {
			return domain.ErrBudgetNotFound
		}
		c := *b
		found = &c
		return nil
	})
	return found, err
}

func (r *BudgetRepository) List(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Budget, error) {
	var budgets []*domain.Budget
	err := r.s.autocommit(ctx, func() error {
		for _, b := range r.s.budgets {
			if b.OwnerID == ownerID {
				c := *b
				budgets = append(budgets, &c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(budgets, func(i, j int) bool {
		if !budgets[i].Month.Equal(budgets[j].Month) {
			return budgets[i].Month.After(budgets[j].Month)
		}
		return budgets[i].ID < budgets[j].ID
	})

	return paginate(budgets, limit, offset), nil
}

// CategoryRepository implements usecase.CategoryRepository.
type CategoryRepository struct {
	s *Store
}

func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	return r.s.autocommit(ctx, func() error {
		if _, ok := r.s.budgets[category.BudgetID]; !ok {
			return domain.ErrBudgetNotFound
		}
		c := *category
		r.s.categories[category.ID] = &c
		return nil
	})
}

func (r *CategoryRepository) ListByBudget(ctx context.Context, budgetID string) ([]*domain.Category, error) {
	categories := []*domain.Category{}
	err := r.s.autocommit(ctx, func() error {
		for _, c := range r.s.categories {
			if c.BudgetID == budgetID {
				cc := *c
				categories = append(categories, &cc)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

// Delete removes the category and, like the foreign key cascade in
// PostgreSQL, any record still filed under it.
func (r *CategoryRepository) Delete(_ context.Context, tx usecase.Transaction, id string) error {
	if err := r.s.check(tx); err != nil {
		return err
	}
	if _, ok := r.s.categories[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	delete(r.s.categories, id)
	for tid, t := range r.s.transactions {
		if t.CategoryID == id {
			delete(r.s.transactions, tid)
		}
	}
	return nil
}
