package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/budgetledger/internal/domain"
)

func seed(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.Budgets().Create(ctx, &domain.Budget{ID: "b1", OwnerID: "u1", Month: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}))
	require.NoError(t, s.Categories().Create(ctx, &domain.Category{ID: "c1", BudgetID: "b1", Name: "Food"}))

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Accounts().Create(ctx, tx, &domain.Account{ID: "a1", OwnerID: "u1", Balance: decimal.NewFromInt(100), OpeningBalance: decimal.NewFromInt(100)}))
	require.NoError(t, s.Accounts().Create(ctx, tx, &domain.Account{ID: "a2", OwnerID: "u1"}))
	require.NoError(t, tx.Commit(ctx))
}

func TestStore_RollbackRestoresState(t *testing.T) {
	s := NewStore()
	seed(t, s)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)

	src := "a1"
	require.NoError(t, s.Transactions().Create(ctx, tx, &domain.Transaction{ID: "t1", CategoryID: "c1", SourceAccountID: &src, Kind: domain.KindExpense, Amount: decimal.NewFromInt(10)}))
	require.NoError(t, s.Accounts().AdjustBalance(ctx, tx, "a1", decimal.NewFromInt(-10), time.Now()))
	require.NoError(t, s.Outbox().Create(ctx, tx, &domain.OutboxEvent{ID: "e1"}))
	require.NoError(t, tx.Rollback(ctx))

	acc, err := s.Accounts().GetByID(ctx, "u1", "a1")
	require.NoError(t, err)
	assert.True(t, acc.Balance.Equal(decimal.NewFromInt(100)), "balance = %s", acc.Balance)

	_, err = s.Transactions().GetByID(ctx, "u1", "t1")
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)

	events, err := s.Outbox().GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestStore_FinishedTransactionIsRejected(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	assert.ErrorIs(t, tx.Rollback(ctx), ErrTxDone)
	assert.ErrorIs(t, s.Accounts().Create(ctx, tx, &domain.Account{ID: "x"}), ErrTxDone)
}

func TestStore_BeginWaitsForRunningTransaction(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = s.Begin(waitCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, tx.Commit(ctx))

	tx2, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx2.Rollback(ctx))
}

func TestStore_InjectFault(t *testing.T) {
	s := NewStore()
	seed(t, s)
	ctx := context.Background()
	boom := errors.New("boom")

	s.InjectFault("AdjustBalance", boom)
	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Accounts().AdjustBalance(ctx, tx, "a1", decimal.NewFromInt(1), time.Now()), boom)
	require.NoError(t, tx.Rollback(ctx))

	s.InjectFault("AdjustBalance", nil)
	tx, err = s.Begin(ctx)
	require.NoError(t, err)
	assert.NoError(t, s.Accounts().AdjustBalance(ctx, tx, "a1", decimal.NewFromInt(1), time.Now()))
	require.NoError(t, tx.Commit(ctx))
}

func TestAccountRepository_DeleteDetachesRecords(t *testing.T) {
	s := NewStore()
	seed(t, s)
	ctx := context.Background()

	src, dst := "a1", "a2"
	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Transactions().Create(ctx, tx, &domain.Transaction{ID: "t1", CategoryID: "c1", SourceAccountID: &src, DestinationAccountID: &dst, Kind: domain.KindTransfer, Amount: decimal.NewFromInt(5)}))
	require.NoError(t, tx.Commit(ctx))

	require.NoError(t, s.Accounts().Delete(ctx, "u1", "a2"))
	assert.ErrorIs(t, s.Accounts().Delete(ctx, "u1", "a2"), domain.ErrAccountNotFound)

	rec, err := s.Transactions().GetByID(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.Nil(t, rec.DestinationAccountID)
	require.NotNil(t, rec.SourceAccountID)
	assert.Equal(t, "a1", *rec.SourceAccountID)
}

func TestTransactionRepository_ListOrderAndOwnership(t *testing.T) {
	s := NewStore()
	seed(t, s)
	ctx := context.Background()

	require.NoError(t, s.Budgets().Create(ctx, &domain.Budget{ID: "b2", OwnerID: "u2"}))
	require.NoError(t, s.Categories().Create(ctx, &domain.Category{ID: "c2", BudgetID: "b2"}))

	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	records := []*domain.Transaction{
		{ID: "old", CategoryID: "c1", Kind: domain.KindIncome, Amount: decimal.NewFromInt(1), TransactionDate: day},
		{ID: "new", CategoryID: "c1", Kind: domain.KindIncome, Amount: decimal.NewFromInt(1), TransactionDate: day.AddDate(0, 0, 3)},
		{ID: "mid", CategoryID: "c1", Kind: domain.KindIncome, Amount: decimal.NewFromInt(1), TransactionDate: day.AddDate(0, 0, 1)},
		{ID: "foreign", CategoryID: "c2", Kind: domain.KindIncome, Amount: decimal.NewFromInt(1), TransactionDate: day},
	}
	for _, r := range records {
		require.NoError(t, s.Transactions().Create(ctx, tx, r))
	}
	require.NoError(t, tx.Commit(ctx))

	items, total, err := s.Transactions().List(ctx, domain.TransactionFilter{OwnerID: "u1", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 2)
	assert.Equal(t, "new", items[0].ID)
	assert.Equal(t, "mid", items[1].ID)

	_, err = s.Transactions().GetByID(ctx, "u1", "foreign")
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}
