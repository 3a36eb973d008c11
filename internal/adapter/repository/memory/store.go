// Package memory provides in-memory implementations of the repository
// interfaces, used for tests and local development without PostgreSQL.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/iho/budgetledger/internal/domain"
	"github.com/iho/budgetledger/internal/usecase"
)

// ErrTxDone is returned when a finished or foreign transaction is used.
var ErrTxDone = errors.New("memory: transaction already finished")

// Store holds all state. A transaction owns the whole store from Begin
// until Commit or Rollback, which gives every unit the isolation of a
// serial schedule. Rollback restores the snapshot taken at Begin.
type Store struct {
	sem chan struct{}

	accounts     map[string]*domain.Account
	budgets      map[string]*domain.Budget
	categories   map[string]*domain.Category
	transactions map[string]*domain.Transaction
	outbox       []*domain.OutboxEvent
	audit        []*domain.AuditLog

	faultMu sync.Mutex
	faults  map[string]error
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		sem:          make(chan struct{}, 1),
		accounts:     make(map[string]*domain.Account),
		budgets:      make(map[string]*domain.Budget),
		categories:   make(map[string]*domain.Category),
		transactions: make(map[string]*domain.Transaction),
		faults:       make(map[string]error),
	}
}

// InjectFault makes the named operation fail with err until cleared with a
// nil err. Operation names match the repository method, e.g. "AdjustBalance".
func (s *Store) InjectFault(op string, err error) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

func (s *Store) fault(op string) error {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	return s.faults[op]
}

func (s *Store) acquire(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) release() {
	<-s.sem
}

// Begin starts a transaction, waiting for any running one to finish.
func (s *Store) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := s.fault("Begin"); err != nil {
		return nil, err
	}
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	return &Tx{store: s, snap: s.snapshot()}, nil
}

// Tx is a transaction on a Store.
type Tx struct {
	store *Store
	snap  snapshot
	done  bool
}

// Commit keeps the changes made since Begin.
func (t *Tx) Commit(_ context.Context) error {
	if t.done {
		return ErrTxDone
	}
	if err := t.store.fault("Commit"); err != nil {
		return err
	}
	t.done = true
	t.store.release()
	return nil
}

// Rollback discards the changes made since Begin. Rolling back a finished
// transaction is a no-op returning ErrTxDone.
func (t *Tx) Rollback(_ context.Context) error {
	if t.done {
		return ErrTxDone
	}
	t.store.restore(t.snap)
	t.done = true
	t.store.release()
	return nil
}

func (s *Store) check(tx usecase.Transaction) error {
	t, ok := tx.(*Tx)
	if !ok || t.store != s || t.done {
		return ErrTxDone
	}
	return nil
}

// autocommit runs fn as its own single-statement transaction.
func (s *Store) autocommit(ctx context.Context, fn func() error) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()
	return fn()
}

type snapshot struct {
	accounts     map[string]*domain.Account
	budgets      map[string]*domain.Budget
	categories   map[string]*domain.Category
	transactions map[string]*domain.Transaction
	outboxLen    int
	auditLen     int
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		accounts:     make(map[string]*domain.Account, len(s.accounts)),
		budgets:      make(map[string]*domain.Budget, len(s.budgets)),
		categories:   make(map[string]*domain.Category, len(s.categories)),
		transactions: make(map[string]*domain.Transaction, len(s.transactions)),
		outboxLen:    len(s.outbox),
		auditLen:     len(s.audit),
	}
	for k, v := range s.accounts {
		c := *v
		snap.accounts[k] = &c
	}
	for k, v := range s.budgets {
		c := *v
		snap.budgets[k] = &c
	}
	for k, v := range s.categories {
		c := *v
		snap.categories[k] = &c
	}
	for k, v := range s.transactions {
		snap.transactions[k] = v.Clone()
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.accounts = snap.accounts
	s.budgets = snap.budgets
	s.categories = snap.categories
	s.transactions = snap.transactions
	s.outbox = s.outbox[:snap.outboxLen]
	s.audit = s.audit[:snap.auditLen]
}

// ownerOfCategory returns the owner of the category's budget.
func (s *Store) ownerOfCategory(categoryID string) (string, bool) {
	c, ok := s.categories[categoryID]
	if !ok {
		return "", false
	}
	b, ok := s.budgets[c.BudgetID]
	if !ok {
		return "", false
	}
	return b.OwnerID, true
}

func (s *Store) ownedRecord(ownerID, id string) (*domain.Transaction, bool) {
	t, ok := s.transactions[id]
	if !ok {
		return nil, false
	}
	owner, ok := s.ownerOfCategory(t.CategoryID)
	if !ok || owner != ownerID {
		return nil, false
	}
	return t, true
}

// Accounts returns the account repository view.
func (s *Store) Accounts() *AccountRepository { return &AccountRepository{s: s} }

// Transactions returns the ledger record repository view.
func (s *Store) Transactions() *TransactionRepository { return &TransactionRepository{s: s} }

func (s *Store) Ownership() *OwnershipRepository { return &OwnershipRepository{s: s} }

func (s *Store) Budgets() *BudgetRepository { return &BudgetRepository{s: s} }

func (s *Store) Categories() *CategoryRepository { return &CategoryRepository{s: s} }

func (s *Store) Ledger() *LedgerRepository { return &LedgerRepository{s: s} }

func (s *Store) Outbox() *OutboxRepository { return &OutboxRepository{s: s} }

func (s *Store) Audit() *AuditRepository { return &AuditRepository{s: s} }
