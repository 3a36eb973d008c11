package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/budgetledger/internal/adapter/repository/memory"
	"github.com/iho/budgetledger/internal/domain"
	"github.com/iho/budgetledger/internal/infrastructure/metrics"
	"github.com/iho/budgetledger/internal/usecase"
	"github.com/iho/budgetledger/internal/usecase/mocks"
)

// ledgerEnv wires the use cases over an in-memory store.
type ledgerEnv struct {
	store          *memory.Store
	ledger         *usecase.TransactionUseCase
	accounts       *usecase.AccountUseCase
	budgets        *usecase.BudgetUseCase
	reconciliation *usecase.ReconciliationUseCase
	metrics        *metrics.Metrics
}

func newLedgerEnv(t *testing.T) *ledgerEnv {
	t.Helper()

	store := memory.NewStore()
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	idGen := mocks.NewSequenceIDGenerator("id")

	ledger := usecase.NewTransactionUseCase(
		store,
		store.Transactions(),
		store.Accounts(),
		store.Ownership(),
		store.Outbox(),
		store.Audit(),
		nil,
		idGen,
		m,
		zerolog.Nop(),
	)

	return &ledgerEnv{
		store:          store,
		ledger:         ledger,
		accounts:       usecase.NewAccountUseCase(store, store.Accounts(), store.Outbox(), store.Audit(), idGen, m),
		budgets:        usecase.NewBudgetUseCase(store, store.Budgets(), store.Categories(), ledger, idGen),
		reconciliation: usecase.NewReconciliationUseCase(store.Ledger(), m),
		metrics:        m,
	}
}

func (e *ledgerEnv) account(t *testing.T, userID, balance string) string {
	t.Helper()

	acc, err := e.accounts.CreateAccount(context.Background(), usecase.CreateAccountInput{
		UserID:         userID,
		Name:           "Account",
		Type:           domain.AccountTypeChecking,
		Currency:       "USD",
		InitialBalance: decimal.RequireFromString(balance),
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	return acc.ID
}

func (e *ledgerEnv) category(t *testing.T, userID string) string {
	t.Helper()
	ctx := context.Background()

	budget, err := e.budgets.CreateBudget(ctx, usecase.CreateBudgetInput{
		UserID:   userID,
		Name:     "March",
		Month:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:   decimal.NewFromInt(1000),
		Currency: "USD",
	})
	if err != nil {
		t.Fatalf("create budget: %v", err)
	}

	category, err := e.budgets.CreateCategory(ctx, usecase.CreateCategoryInput{
		UserID:   userID,
		BudgetID: budget.ID,
		Name:     "Groceries",
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	return category.ID
}

func (e *ledgerEnv) balance(t *testing.T, userID, accountID string) decimal.Decimal {
	t.Helper()

	acc, err := e.accounts.GetAccount(context.Background(), userID, accountID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	return acc.Balance
}

func (e *ledgerEnv) requireBalance(t *testing.T, userID, accountID, want string) {
	t.Helper()

	got := e.balance(t, userID, accountID)
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("balance(%s) = %s, want %s", accountID, got, want)
	}
}

func (e *ledgerEnv) requireReconciled(t *testing.T, userID string) {
	t.Helper()

	report, err := e.reconciliation.GenerateReport(context.Background(), userID)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	for _, d := range report.Discrepancies {
		t.Errorf("account %s: recorded %s, ledger says %s", d.AccountID, d.RecordedBalance, d.CalculatedBalance)
	}
}

// decimalEq matches a decimal.Decimal by value, ignoring its exponent.
func decimalEq(s string) gomock.Matcher {
	want := decimal.RequireFromString(s)
	return gomock.Cond(func(x any) bool {
		got, ok := x.(decimal.Decimal)
		return ok && got.Equal(want)
	})
}

func amount(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func strPtr(s string) *string { return &s }

func kindPtr(k domain.Kind) *domain.Kind { return &k }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

var march = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
