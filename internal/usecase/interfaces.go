package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/budgetledger/internal/domain"
)

// AccountRepository defines data access for accounts. Reads outside a
// transaction are scoped to the owner; locking reads are not, ownership is
// checked separately inside the same transaction.
type AccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, ownerID, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, ownerID, id string) (*domain.Account, error)
	// GetByIDsForUpdate locks the given accounts in id order and returns the
	// ones that exist.
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	AdjustBalance(ctx context.Context, tx Transaction, id string, delta decimal.Decimal, updatedAt time.Time) error
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance, openingBalance decimal.Decimal, updatedAt time.Time) error
	List(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Account, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// TransactionRepository defines data access for ledger records.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, record *domain.Transaction) error
	// GetByIDForUpdate loads and locks a record owned by ownerID.
	GetByIDForUpdate(ctx context.Context, tx Transaction, ownerID, id string) (*domain.Transaction, error)
	Update(ctx context.Context, tx Transaction, record *domain.Transaction) error
	Delete(ctx context.Context, tx Transaction, id string) error
	GetByID(ctx context.Context, ownerID, id string) (*domain.Transaction, error)
	List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int, error)
	ListByCategories(ctx context.Context, ownerID string, categoryIDs []string) ([]*domain.Transaction, error)
	// ListByCategoryForUpdate locks every record of a category.
	ListByCategoryForUpdate(ctx context.Context, tx Transaction, categoryID string) ([]*domain.Transaction, error)
	Summary(ctx context.Context, filter domain.SummaryFilter) (*domain.Summary, error)
}

// OwnershipRepository answers ownership questions inside a transaction.
type OwnershipRepository interface {
	CategoryOwnedBy(ctx context.Context, tx Transaction, categoryID, userID string) (bool, error)
	AccountOwnedBy(ctx context.Context, tx Transaction, accountID, userID string) (bool, error)
	// CountOwnedCategories returns how many of ids belong to the user's budgets.
	CountOwnedCategories(ctx context.Context, userID string, ids []string) (int, error)
}

// BudgetRepository defines data access for budgets.
type BudgetRepository interface {
	Create(ctx context.Context, budget *domain.Budget) error
	GetByID(ctx context.Context, ownerID, id string) (*domain.Budget, error)
	List(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Budget, error)
}

// CategoryRepository defines data access for categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	ListByBudget(ctx context.Context, budgetID string) ([]*domain.Category, error)
	Delete(ctx context.Context, tx Transaction, id string) error
}

// LedgerRepository defines data access for ledger-wide checks.
type LedgerRepository interface {
	// Positions returns every account of the owner with its stored balances
	// and the net effect of all records on it, read from one snapshot.
	Positions(ctx context.Context, ownerID string) ([]domain.LedgerPosition, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier reruns a whole unit of work on transient store conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// ErrCacheMiss is returned by Cache.Get for absent keys.
var ErrCacheMiss = errors.New("cache miss")

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so the request may be retried.
	Release(ctx context.Context, key string) error
}
