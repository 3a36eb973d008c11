package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/budgetledger/internal/domain"
	"github.com/iho/budgetledger/internal/infrastructure/metrics"
)

// TransactionUseCase is the ledger engine. Every mutation runs as one
// database transaction that validates ownership, writes the record, moves
// the account balances and records the outbox event and audit entry.
type TransactionUseCase struct {
	txManager     TransactionManager
	txRepo        TransactionRepository
	accountRepo   AccountRepository
	ownershipRepo OwnershipRepository
	ownership     *OwnershipValidator
	mutator       *BalanceMutator
	outboxRepo    OutboxRepository
	auditRepo     AuditRepository
	retrier       Retrier
	idGen         IDGenerator
	metrics       *metrics.Metrics
	logger        zerolog.Logger

	summaries *SummaryCache
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	txManager TransactionManager,
	txRepo TransactionRepository,
	accountRepo AccountRepository,
	ownershipRepo OwnershipRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	retrier Retrier,
	idGen IDGenerator,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *TransactionUseCase {
	return &TransactionUseCase{
		txManager:     txManager,
		txRepo:        txRepo,
		accountRepo:   accountRepo,
		ownershipRepo: ownershipRepo,
		ownership:     NewOwnershipValidator(ownershipRepo),
		mutator:       NewBalanceMutator(accountRepo),
		outboxRepo:    outboxRepo,
		auditRepo:     auditRepo,
		retrier:       retrier,
		idGen:         idGen,
		metrics:       metrics,
		logger:        logger.With().Str("component", "ledger").Logger(),
	}
}

// WithSummaryCache enables caching of summaries.
func (uc *TransactionUseCase) WithSummaryCache(cache *SummaryCache) *TransactionUseCase {
	uc.summaries = cache
	return uc
}

// CreateTransactionInput represents input for creating a ledger record.
type CreateTransactionInput struct {
	UserID               string
	CategoryID           string
	SourceAccountID      *string
	DestinationAccountID *string
	Amount               decimal.Decimal
	Kind                 domain.Kind
	TransactionDate      time.Time
	Description          *string
}

// UpdateTransactionInput represents a partial update. Nil pointers keep the
// current value; the two account fields additionally support clearing.
type UpdateTransactionInput struct {
	UserID             string
	TransactionID      string
	CategoryID         *string
	SourceAccount      domain.FieldUpdate[string]
	DestinationAccount domain.FieldUpdate[string]
	Amount             *decimal.Decimal
	Kind               *domain.Kind
	TransactionDate    *time.Time
	Description        *string
}

// CreateTransaction records a new transaction and applies its balance effects.
func (uc *TransactionUseCase) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*domain.Transaction, error) {
	start := time.Now()

	now := start.UTC()
	record := &domain.Transaction{
		ID:                   uc.idGen.Generate(),
		CategoryID:           input.CategoryID,
		SourceAccountID:      input.SourceAccountID,
		DestinationAccountID: input.DestinationAccountID,
		Amount:               input.Amount,
		Kind:                 input.Kind,
		TransactionDate:      input.TransactionDate,
		Description:          input.Description,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := record.Validate(); err != nil {
		return nil, uc.fail("create", err)
	}

	var created *domain.Transaction
	err := uc.retry(ctx, func() error {
		var err error
		created, err = uc.create(ctx, input.UserID, record.Clone())
		return err
	})
	if err != nil {
		return nil, uc.fail("create", err)
	}

	uc.summaries.Invalidate(ctx, input.UserID)

	if uc.metrics != nil {
		uc.metrics.TransactionsCreated.Inc()
		uc.metrics.TransactionAmount.WithLabelValues(created.Kind.String()).Observe(created.Amount.InexactFloat64())
		uc.metrics.LedgerDuration.WithLabelValues("create").Observe(time.Since(start).Seconds())
	}

	return created, nil
}

func (uc *TransactionUseCase) create(ctx context.Context, userID string, record *domain.Transaction) (*domain.Transaction, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, domain.NewStorageError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.ownership.Category(txCtx, tx, record.CategoryID, userID); err != nil {
		return nil, err
	}
	if err := uc.ownership.Account(txCtx, tx, record.SourceAccountID, userID); err != nil {
		return nil, err
	}
	if err := uc.ownership.Account(txCtx, tx, record.DestinationAccountID, userID); err != nil {
		return nil, err
	}

	if err := uc.txRepo.Create(txCtx, tx, record); err != nil {
		return nil, domain.NewStorageError("insert transaction", err)
	}

	effects := record.Effects()
	if err := uc.mutator.Apply(txCtx, tx, nil, effects); err != nil {
		return nil, err
	}

	if err := uc.record(txCtx, tx, userID, domain.EventTypeTransactionCreated, domain.AuditActionTransactionCreate, record, effects, nil, record.State()); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, domain.NewStorageError("commit", err)
	}

	return record, nil
}

// UpdateTransaction reverses the record's old effects and applies the new
// ones in the same database transaction as the row update.
func (uc *TransactionUseCase) UpdateTransaction(ctx context.Context, input UpdateTransactionInput) (*domain.Transaction, error) {
	start := time.Now()

	if input.Amount != nil {
		if err := domain.ValidateTransactionAmount(*input.Amount); err != nil {
			return nil, uc.fail("update", err)
		}
	}
	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, uc.fail("update", err)
	}

	var updated *domain.Transaction
	err := uc.retry(ctx, func() error {
		var err error
		updated, err = uc.update(ctx, input)
		return err
	})
	if err != nil {
		return nil, uc.fail("update", err)
	}

	uc.summaries.Invalidate(ctx, input.UserID)

	if uc.metrics != nil {
		uc.metrics.TransactionsUpdated.Inc()
		uc.metrics.LedgerDuration.WithLabelValues("update").Observe(time.Since(start).Seconds())
	}

	return updated, nil
}

func (uc *TransactionUseCase) update(ctx context.Context, input UpdateTransactionInput) (*domain.Transaction, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, domain.NewStorageError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	existing, err := uc.txRepo.GetByIDForUpdate(txCtx, tx, input.UserID, input.TransactionID)
	if err != nil {
		return nil, domain.NewStorageError("lock transaction", err)
	}

	updated := applyUpdate(existing, input)

	if updated.CategoryID != existing.CategoryID {
		if err := uc.ownership.Category(txCtx, tx, updated.CategoryID, input.UserID); err != nil {
			return nil, err
		}
	}
	if id, ok := input.SourceAccount.Value(); ok {
		if err := uc.ownership.Account(txCtx, tx, &id, input.UserID); err != nil {
			return nil, err
		}
	}
	if id, ok := input.DestinationAccount.Value(); ok {
		if err := uc.ownership.Account(txCtx, tx, &id, input.UserID); err != nil {
			return nil, err
		}
	}

	if err := updated.Validate(); err != nil {
		return nil, err
	}

	oldEffects := domain.Reverse(existing.Effects())
	newEffects := updated.Effects()
	if err := uc.mutator.Apply(txCtx, tx, oldEffects, newEffects); err != nil {
		return nil, err
	}

	if err := uc.txRepo.Update(txCtx, tx, updated); err != nil {
		return nil, domain.NewStorageError("update transaction", err)
	}

	net := domain.NetEffects(oldEffects, newEffects)
	if err := uc.record(txCtx, tx, input.UserID, domain.EventTypeTransactionUpdated, domain.AuditActionTransactionUpdate, updated, net, existing.State(), updated.State()); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, domain.NewStorageError("commit", err)
	}

	return updated, nil
}

func applyUpdate(existing *domain.Transaction, input UpdateTransactionInput) *domain.Transaction {
	updated := existing.Clone()

	if input.CategoryID != nil {
		updated.CategoryID = *input.CategoryID
	}
	updated.SourceAccountID = input.SourceAccount.Apply(existing.SourceAccountID)
	updated.DestinationAccountID = input.DestinationAccount.Apply(existing.DestinationAccountID)
	if input.Amount != nil {
		updated.Amount = *input.Amount
	}
	if input.Kind != nil {
		updated.Kind = *input.Kind
	}
	if input.TransactionDate != nil {
		updated.TransactionDate = *input.TransactionDate
	}
	if input.Description != nil {
		desc := *input.Description
		updated.Description = &desc
	}
	updated.UpdatedAt = time.Now().UTC()

	return updated
}

// DeleteTransaction reverses the record's effects and removes it.
func (uc *TransactionUseCase) DeleteTransaction(ctx context.Context, userID, id string) error {
	start := time.Now()

	err := uc.retry(ctx, func() error {
		return uc.delete(ctx, userID, id)
	})
	if err != nil {
		return uc.fail("delete", err)
	}

	uc.summaries.Invalidate(ctx, userID)

	if uc.metrics != nil {
		uc.metrics.TransactionsDeleted.Inc()
		uc.metrics.LedgerDuration.WithLabelValues("delete").Observe(time.Since(start).Seconds())
	}

	return nil
}

func (uc *TransactionUseCase) delete(ctx context.Context, userID, id string) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return domain.NewStorageError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	existing, err := uc.txRepo.GetByIDForUpdate(txCtx, tx, userID, id)
	if err != nil {
		return domain.NewStorageError("lock transaction", err)
	}

	if err := uc.removeLocked(txCtx, tx, userID, existing); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return domain.NewStorageError("commit", err)
	}

	return nil
}

// removeLocked reverses and deletes a record already locked by tx.
func (uc *TransactionUseCase) removeLocked(ctx context.Context, tx Transaction, userID string, existing *domain.Transaction) error {
	reversal := domain.Reverse(existing.Effects())
	if err := uc.mutator.Apply(ctx, tx, reversal, nil); err != nil {
		return err
	}

	if err := uc.txRepo.Delete(ctx, tx, existing.ID); err != nil {
		return domain.NewStorageError("delete transaction", err)
	}

	return uc.record(ctx, tx, userID, domain.EventTypeTransactionDeleted, domain.AuditActionTransactionDelete, existing, reversal, existing.State(), nil)
}

// record writes the outbox event and audit entry for a ledger mutation.
func (uc *TransactionUseCase) record(
	ctx context.Context,
	tx Transaction,
	userID, eventType string,
	action domain.AuditAction,
	t *domain.Transaction,
	effects []domain.Effect,
	before, after domain.JSON,
) error {
	now := time.Now().UTC()

	if uc.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   t.ID,
			AggregateType: domain.AggregateTypeTransaction,
			EventType:     eventType,
			Payload:       domain.TransactionEventPayload(t, effects),
			CreatedAt:     now,
		}
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return domain.NewStorageError("write outbox event", err)
		}
	}

	if uc.auditRepo != nil {
		auditLog := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			UserID:       userID,
			Action:       string(action),
			ResourceType: domain.AggregateTypeTransaction,
			ResourceID:   t.ID,
			RequestID:    domain.RequestIDFromContext(ctx),
			BeforeState:  before,
			AfterState:   after,
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    now,
		}
		if err := uc.auditRepo.CreateTx(ctx, tx, auditLog); err != nil {
			return domain.NewStorageError("write audit log", err)
		}
	}

	return nil
}

// GetTransaction returns one of the user's records.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, userID, id string) (*domain.Transaction, error) {
	t, err := uc.txRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, uc.fail("get", domain.NewStorageError("get transaction", err))
	}
	return t, nil
}

// ListTransactionsInput represents input for listing records.
type ListTransactionsInput struct {
	UserID     string
	From       *time.Time
	To         *time.Time
	CategoryID *string
	AccountID  *string
	Kind       *domain.Kind
	Limit      int
	Offset     int
}

// TransactionPage is one page of records plus the total match count.
type TransactionPage struct {
	Items  []*domain.Transaction
	Total  int
	Limit  int
	Offset int
}

// ListTransactions lists the user's records, newest transaction date first.
func (uc *TransactionUseCase) ListTransactions(ctx context.Context, input ListTransactionsInput) (*TransactionPage, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	items, total, err := uc.txRepo.List(ctx, domain.TransactionFilter{
		OwnerID:    input.UserID,
		From:       input.From,
		To:         input.To,
		CategoryID: input.CategoryID,
		AccountID:  input.AccountID,
		Kind:       input.Kind,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, uc.fail("list", domain.NewStorageError("list transactions", err))
	}

	return &TransactionPage{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

// ListByAccount lists records where the account is source or destination.
func (uc *TransactionUseCase) ListByAccount(ctx context.Context, userID, accountID string, limit, offset int) (*TransactionPage, error) {
	if _, err := uc.accountRepo.GetByID(ctx, userID, accountID); err != nil {
		return nil, uc.fail("list", domain.NewStorageError("get account", err))
	}

	return uc.ListTransactions(ctx, ListTransactionsInput{
		UserID:    userID,
		AccountID: &accountID,
		Limit:     limit,
		Offset:    offset,
	})
}

// ListByCategories returns every record in the given categories. All of
// them must belong to the user.
func (uc *TransactionUseCase) ListByCategories(ctx context.Context, userID string, categoryIDs []string) ([]*domain.Transaction, error) {
	ids := uniqueStrings(categoryIDs)
	if len(ids) == 0 {
		return []*domain.Transaction{}, nil
	}

	owned, err := uc.ownershipRepo.CountOwnedCategories(ctx, userID, ids)
	if err != nil {
		return nil, uc.fail("list", domain.NewStorageError("check category ownership", err))
	}
	if owned != len(ids) {
		return nil, uc.fail("list", domain.ErrCategoryNotFound)
	}

	items, err := uc.txRepo.ListByCategories(ctx, userID, ids)
	if err != nil {
		return nil, uc.fail("list", domain.NewStorageError("list transactions", err))
	}

	return items, nil
}

// SummaryInput represents input for a summary.
type SummaryInput struct {
	UserID    string
	From      *time.Time
	To        *time.Time
	AccountID *string
}

// Summary totals the user's income and expenses over a window.
func (uc *TransactionUseCase) Summary(ctx context.Context, input SummaryInput) (*domain.Summary, error) {
	filter := domain.SummaryFilter{
		OwnerID:   input.UserID,
		From:      input.From,
		To:        input.To,
		AccountID: input.AccountID,
	}

	key := uc.summaries.Key(ctx, filter)
	if cached, ok := uc.summaries.Get(ctx, key); ok {
		if uc.metrics != nil {
			uc.metrics.SummaryCacheHits.Inc()
		}
		return cached, nil
	}
	if uc.metrics != nil {
		uc.metrics.SummaryCacheMisses.Inc()
	}

	summary, err := uc.txRepo.Summary(ctx, filter)
	if err != nil {
		return nil, uc.fail("summary", domain.NewStorageError("summarize transactions", err))
	}

	uc.summaries.Put(ctx, key, summary)

	return summary, nil
}

func (uc *TransactionUseCase) retry(ctx context.Context, op func() error) error {
	if uc.retrier == nil {
		return op()
	}

	attempts := 0
	return uc.retrier.Retry(ctx, func() error {
		attempts++
		if attempts > 1 && uc.metrics != nil {
			uc.metrics.LedgerRetries.Inc()
		}
		return op()
	})
}

// fail logs and counts an error. Anything outside the domain taxonomy is
// wrapped as a StorageError so callers can map it to an opaque failure.
func (uc *TransactionUseCase) fail(op string, err error) error {
	err = domain.NewStorageError(op, err)

	errType := errorType(err)
	if errType == "storage" {
		uc.logger.Error().Err(err).Str("operation", op).Msg("ledger operation failed")
	} else {
		uc.logger.Debug().Err(err).Str("operation", op).Msg("ledger operation rejected")
	}

	if uc.metrics != nil {
		uc.metrics.LedgerErrors.WithLabelValues(op, errType).Inc()
	}

	return err
}

func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrStorage):
		return "storage"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "invalid"
	}
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// purgeCategory reverses and deletes every record of a category inside tx.
func (uc *TransactionUseCase) purgeCategory(ctx context.Context, tx Transaction, userID, categoryID string) (int, error) {
	records, err := uc.txRepo.ListByCategoryForUpdate(ctx, tx, categoryID)
	if err != nil {
		return 0, domain.NewStorageError("lock category transactions", err)
	}

	for _, t := range records {
		if err := uc.removeLocked(ctx, tx, userID, t); err != nil {
			return 0, err
		}
	}

	return len(records), nil
}
