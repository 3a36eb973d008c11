package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"

	"github.com/iho/budgetledger/internal/domain"
)

func TestAuditRepositoryListNumbersPlaceholders(t *testing.T) {
	pool := newMockPool(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	pool.ExpectQuery(`user_id = \$1 AND action = \$2 AND resource_id = \$3 ORDER BY created_at DESC, id DESC LIMIT \$4`).
		WithArgs("user-1", "transaction.create", "tx-1", 10).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "action", "resource_type", "resource_id", "request_id",
			"before_state", "after_state", "status", "error_message", "created_at",
		}).AddRow("a-1", "user-1", "transaction.create", "transaction", "tx-1", "req-1",
			nil, []byte(`{"amount":"10"}`), "success", "", now))

	repo := NewAuditRepository(pool)
	logs, err := repo.List(context.Background(), domain.AuditFilter{
		UserID:     "user-1",
		Action:     "transaction.create",
		ResourceID: "tx-1",
		Limit:      10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(logs) != 1 {
		t.Fatalf("expected 1 log, got %d", len(logs))
	}
	if logs[0].BeforeState != nil {
		t.Fatalf("expected empty before state")
	}
	if logs[0].AfterState["amount"] != "10" {
		t.Fatalf("expected after state amount, got %v", logs[0].AfterState)
	}

	assertExpectations(t, pool)
}

func TestAuditRepositoryCreateTxAssignsID(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectBegin()
	pool.ExpectExec("INSERT INTO audit_logs").
		WithArgs(pgxmock.AnyArg(), "user-1", "transaction.delete", "transaction", "tx-1", "",
			[]byte(`{"id":"tx-1"}`), []byte(nil), "success", "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectCommit()

	ctx := context.Background()
	tx, err := newTxManagerWithPool(pool).Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	log := &domain.AuditLog{
		UserID:       "user-1",
		Action:       "transaction.delete",
		ResourceType: "transaction",
		ResourceID:   "tx-1",
		BeforeState:  domain.JSON{"id": "tx-1"},
		Status:       "success",
		CreatedAt:    time.Now(),
	}

	repo := NewAuditRepository(pool)
	if err := repo.CreateTx(ctx, tx, log); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if log.ID == "" {
		t.Fatalf("expected generated id")
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	assertExpectations(t, pool)
}
