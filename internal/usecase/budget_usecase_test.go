package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iho/budgetledger/internal/domain"
	"github.com/iho/budgetledger/internal/usecase"
)

func TestBudgetUseCase_CreateBudgetAndCategory(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv(t)

	budget, err := env.budgets.CreateBudget(ctx, usecase.CreateBudgetInput{
		UserID:   "u1",
		Name:     "Household",
		Month:    time.Date(2026, 4, 17, 13, 0, 0, 0, time.UTC),
		Amount:   amount("800"),
		Currency: "eur",
	})
	if err != nil {
		t.Fatalf("CreateBudget() error = %v", err)
	}
	if !budget.Month.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Month = %v, want first of April", budget.Month)
	}

	category, err := env.budgets.CreateCategory(ctx, usecase.CreateCategoryInput{UserID: "u1", BudgetID: budget.ID, Name: "Rent"})
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
	if category.ColorHex != usecase.DefaultCategoryColor {
		t.Errorf("ColorHex = %s, want default", category.ColorHex)
	}

	tests := []struct {
		name    string
		input   usecase.CreateCategoryInput
		wantErr error
	}{
		{"foreign budget", usecase.CreateCategoryInput{UserID: "u2", BudgetID: budget.ID, Name: "Food"}, domain.ErrBudgetNotFound},
		{"bad color", usecase.CreateCategoryInput{UserID: "u1", BudgetID: budget.ID, Name: "Food", ColorHex: "red"}, domain.ErrInvalidColor},
		{"empty name", usecase.CreateCategoryInput{UserID: "u1", BudgetID: budget.ID}, domain.ErrInvalidName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.budgets.CreateCategory(ctx, tt.input); !errors.Is(err, tt.wantErr) {
				t.Fatalf("CreateCategory() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	categories, err := env.budgets.ListCategories(ctx, "u1", budget.ID)
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	if len(categories) != 1 {
		t.Errorf("ListCategories() = %d, want 1", len(categories))
	}
}

func TestBudgetUseCase_DeleteCategoryReversesRecords(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv(t)
	doomed := env.category(t, "u1")
	kept := env.category(t, "u1")
	a := env.account(t, "u1", "100.00")
	b := env.account(t, "u1", "100.00")

	for _, in := range []usecase.CreateTransactionInput{
		{CategoryID: doomed, SourceAccountID: &a, Amount: amount("10.00"), Kind: domain.KindExpense},
		{CategoryID: doomed, SourceAccountID: &a, DestinationAccountID: &b, Amount: amount("25.00"), Kind: domain.KindTransfer},
		{CategoryID: kept, SourceAccountID: &b, Amount: amount("5.00"), Kind: domain.KindIncome},
	} {
		in.UserID = "u1"
		in.TransactionDate = march
		if _, err := env.ledger.CreateTransaction(ctx, in); err != nil {
			t.Fatalf("CreateTransaction() error = %v", err)
		}
	}

	if _, err := env.budgets.DeleteCategory(ctx, "u2", doomed); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("DeleteCategory(foreign) error = %v", err)
	}

	removed, err := env.budgets.DeleteCategory(ctx, "u1", doomed)
	if err != nil {
		t.Fatalf("DeleteCategory() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	env.requireBalance(t, "u1", a, "100.00")
	env.requireBalance(t, "u1", b, "105.00")
	env.requireReconciled(t, "u1")

	if _, err := env.ledger.ListByCategories(ctx, "u1", []string{doomed}); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Errorf("ListByCategories(deleted) error = %v", err)
	}
}
