package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/budgetledger/internal/domain"
)

// DefaultCategoryColor is used when a category is created without a color.
const DefaultCategoryColor = "#808080"

// BudgetUseCase handles budgets and their categories.
type BudgetUseCase struct {
	txManager    TransactionManager
	budgetRepo   BudgetRepository
	categoryRepo CategoryRepository
	ledger       *TransactionUseCase
	idGen        IDGenerator
}

// NewBudgetUseCase creates a new BudgetUseCase. Category deletion goes
// through the ledger so that removed records give their effects back.
func NewBudgetUseCase(
	txManager TransactionManager,
	budgetRepo BudgetRepository,
	categoryRepo CategoryRepository,
	ledger *TransactionUseCase,
	idGen IDGenerator,
) *BudgetUseCase {
	return &BudgetUseCase{
		txManager:    txManager,
		budgetRepo:   budgetRepo,
		categoryRepo: categoryRepo,
		ledger:       ledger,
		idGen:        idGen,
	}
}

// CreateBudgetInput represents input for creating a budget.
type CreateBudgetInput struct {
	UserID   string
	Name     string
	Month    time.Time
	Amount   decimal.Decimal
	Currency string
}

// CreateBudget creates a monthly budget.
func (uc *BudgetUseCase) CreateBudget(ctx context.Context, input CreateBudgetInput) (*domain.Budget, error) {
	if err := domain.ValidateName(input.Name); err != nil {
		return nil, err
	}
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}
	if input.Amount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	if err := domain.ValidateBalance(input.Amount); err != nil {
		return nil, err
	}
	if input.Month.IsZero() {
		return nil, domain.ErrInvalidMonth
	}

	now := time.Now().UTC()
	budget := &domain.Budget{
		ID:        uc.idGen.Generate(),
		OwnerID:   input.UserID,
		Name:      strings.TrimSpace(input.Name),
		Month:     domain.MonthStart(input.Month),
		Amount:    input.Amount,
		Currency:  strings.ToUpper(strings.TrimSpace(input.Currency)),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.budgetRepo.Create(ctx, budget); err != nil {
		return nil, domain.NewStorageError("insert budget", err)
	}

	return budget, nil
}

// GetBudget retrieves one of the user's budgets.
func (uc *BudgetUseCase) GetBudget(ctx context.Context, userID, id string) (*domain.Budget, error) {
	budget, err := uc.budgetRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, domain.NewStorageError("get budget", err)
	}
	return budget, nil
}

// ListBudgets lists the user's budgets, newest month first.
func (uc *BudgetUseCase) ListBudgets(ctx context.Context, userID string, limit, offset int) ([]*domain.Budget, error) {
	limit, offset = domain.ValidatePagination(limit, offset)

	budgets, err := uc.budgetRepo.List(ctx, userID, limit, offset)
	if err != nil {
		return nil, domain.NewStorageError("list budgets", err)
	}
	return budgets, nil
}

// CreateCategoryInput represents input for creating a category.
type CreateCategoryInput struct {
	UserID   string
	BudgetID string
	Name     string
	ColorHex string
}

// CreateCategory adds a category to one of the user's budgets.
func (uc *BudgetUseCase) CreateCategory(ctx context.Context, input CreateCategoryInput) (*domain.Category, error) {
	if err := domain.ValidateName(input.Name); err != nil {
		return nil, err
	}

	color := input.ColorHex
	if color == "" {
		color = DefaultCategoryColor
	}
	if err := domain.ValidateColor(color); err != nil {
		return nil, err
	}

	if _, err := uc.GetBudget(ctx, input.UserID, input.BudgetID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	category := &domain.Category{
		ID:        uc.idGen.Generate(),
		BudgetID:  input.BudgetID,
		Name:      strings.TrimSpace(input.Name),
		ColorHex:  strings.ToUpper(color),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.categoryRepo.Create(ctx, category); err != nil {
		return nil, domain.NewStorageError("insert category", err)
	}

	return category, nil
}

// ListCategories lists the categories of one of the user's budgets.
func (uc *BudgetUseCase) ListCategories(ctx context.Context, userID, budgetID string) ([]*domain.Category, error) {
	if _, err := uc.GetBudget(ctx, userID, budgetID); err != nil {
		return nil, err
	}

	categories, err := uc.categoryRepo.ListByBudget(ctx, budgetID)
	if err != nil {
		return nil, domain.NewStorageError("list categories", err)
	}
	return categories, nil
}

// DeleteCategory removes a category together with its records, reversing
// each record's balance effects first. It returns the number of records removed.
func (uc *BudgetUseCase) DeleteCategory(ctx context.Context, userID, categoryID string) (int, error) {
	var removed int

	err := uc.ledger.retry(ctx, func() error {
		var err error
		removed, err = uc.deleteCategory(ctx, userID, categoryID)
		return err
	})
	if err != nil {
		return 0, uc.ledger.fail("delete_category", err)
	}

	uc.ledger.summaries.Invalidate(ctx, userID)

	return removed, nil
}

func (uc *BudgetUseCase) deleteCategory(ctx context.Context, userID, categoryID string) (int, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return 0, domain.NewStorageError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.ledger.ownership.Category(txCtx, tx, categoryID, userID); err != nil {
		return 0, err
	}

	removed, err := uc.ledger.purgeCategory(txCtx, tx, userID, categoryID)
	if err != nil {
		return 0, err
	}

	if err := uc.categoryRepo.Delete(txCtx, tx, categoryID); err != nil {
		return 0, domain.NewStorageError("delete category", err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return 0, domain.NewStorageError("commit", err)
	}

	return removed, nil
}
