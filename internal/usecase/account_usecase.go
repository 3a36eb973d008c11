package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/budgetledger/internal/domain"
	"github.com/iho/budgetledger/internal/infrastructure/metrics"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	outboxRepo  OutboxRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
	summaries   *SummaryCache
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
		metrics:     metrics,
	}
}

// WithSummaryCache lets account deletion retire cached summaries.
func (uc *AccountUseCase) WithSummaryCache(cache *SummaryCache) *AccountUseCase {
	uc.summaries = cache
	return uc
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	UserID         string
	Name           string
	Type           domain.AccountType
	Currency       string
	InitialBalance decimal.Decimal
}

// CreateAccount creates a new account. The initial balance becomes the
// opening balance the ledger builds on.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateName(input.Name); err != nil {
		return nil, err
	}
	if err := domain.ValidateAccountType(input.Type); err != nil {
		return nil, err
	}
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}
	if err := domain.ValidateBalance(input.InitialBalance); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:             uc.idGen.Generate(),
		OwnerID:        input.UserID,
		Name:           strings.TrimSpace(input.Name),
		Type:           input.Type,
		Currency:       strings.ToUpper(strings.TrimSpace(input.Currency)),
		Balance:        input.InitialBalance,
		OpeningBalance: input.InitialBalance,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, domain.NewStorageError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.accountRepo.Create(txCtx, tx, account); err != nil {
		return nil, domain.NewStorageError("insert account", err)
	}

	payload := map[string]any{
		"account_id": account.ID,
		"owner_id":   account.OwnerID,
		"name":       account.Name,
		"currency":   account.Currency,
		"balance":    account.Balance.String(),
	}
	if err := uc.record(txCtx, tx, input.UserID, domain.EventTypeAccountCreated, domain.AuditActionAccountCreate, account.ID, payload, nil, domain.MarshalState(account)); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, domain.NewStorageError("commit", err)
	}

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
		uc.metrics.AccountOperations.WithLabelValues("create").Inc()
	}

	return account, nil
}

// GetAccount retrieves one of the user's accounts.
func (uc *AccountUseCase) GetAccount(ctx context.Context, userID, id string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, domain.NewStorageError("get account", err)
	}
	return account, nil
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	UserID string
	Limit  int
	Offset int
}

// ListAccounts lists the user's accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	accounts, err := uc.accountRepo.List(ctx, input.UserID, limit, offset)
	if err != nil {
		return nil, domain.NewStorageError("list accounts", err)
	}
	return accounts, nil
}

// SetBalance overwrites an account's balance outside the ledger. The
// opening balance moves by the same amount so reconciliation still holds.
func (uc *AccountUseCase) SetBalance(ctx context.Context, userID, id string, balance decimal.Decimal) (*domain.Account, error) {
	if err := domain.ValidateBalance(balance); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, domain.NewStorageError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, userID, id)
	if err != nil {
		return nil, domain.NewStorageError("lock account", err)
	}

	before := domain.MarshalState(account)
	previous := account.Balance
	account.Rebase(balance)
	account.UpdatedAt = time.Now().UTC()

	if err := uc.accountRepo.UpdateBalance(txCtx, tx, account.ID, account.Balance, account.OpeningBalance, account.UpdatedAt); err != nil {
		return nil, domain.NewStorageError("update balance", err)
	}

	payload := map[string]any{
		"account_id":       account.ID,
		"previous_balance": previous.String(),
		"balance":          account.Balance.String(),
	}
	if err := uc.record(txCtx, tx, userID, domain.EventTypeAccountRebased, domain.AuditActionAccountSetBalance, account.ID, payload, before, domain.MarshalState(account)); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, domain.NewStorageError("commit", err)
	}

	if uc.metrics != nil {
		uc.metrics.AccountOperations.WithLabelValues("set_balance").Inc()
	}

	return account, nil
}

// DeleteAccount removes one of the user's accounts. Records that referenced
// it keep existing without that side.
func (uc *AccountUseCase) DeleteAccount(ctx context.Context, userID, id string) error {
	if err := uc.accountRepo.Delete(ctx, userID, id); err != nil {
		return domain.NewStorageError("delete account", err)
	}

	uc.summaries.Invalidate(ctx, userID)

	if uc.metrics != nil {
		uc.metrics.AccountOperations.WithLabelValues("delete").Inc()
	}

	return nil
}

func (uc *AccountUseCase) record(
	ctx context.Context,
	tx Transaction,
	userID, eventType string,
	action domain.AuditAction,
	accountID string,
	payload map[string]any,
	before, after domain.JSON,
) error {
	now := time.Now().UTC()

	if uc.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   accountID,
			AggregateType: domain.AggregateTypeAccount,
			EventType:     eventType,
			Payload:       payload,
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
			ResourceType: domain.AggregateTypeAccount,
			ResourceID:   accountID,
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
