package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/budgetledger/internal/domain"
	"github.com/iho/budgetledger/internal/infrastructure/postgres/generated"
	"github.com/iho/budgetledger/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db generated.DBTX) *TransactionRepository {
	return &TransactionRepository{queries: generated.New(db)}
}

// Create inserts a record within a transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.Transaction) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	return queries.CreateTransaction(ctx, generated.CreateTransactionParams{
		ID:                   record.ID,
		CategoryID:           record.CategoryID,
		SourceAccountID:      textFromPtr(record.SourceAccountID),
		DestinationAccountID: textFromPtr(record.DestinationAccountID),
		Amount:               decimalToNumeric(record.Amount),
		Kind:                 record.Kind.String(),
		TransactionDate:      timeToPgTimestamptz(record.TransactionDate),
		Description:          textFromPtr(record.Description),
		CreatedAt:            timeToPgTimestamptz(record.CreatedAt),
		UpdatedAt:            timeToPgTimestamptz(record.UpdatedAt),
	})
}

// GetByIDForUpdate loads and locks a record owned by ownerID.
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, ownerID, id string) (*domain.Transaction, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetTransactionByIDForUpdate(ctx, generated.GetTransactionByIDForUpdateParams{ID: id, OwnerID: ownerID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return rowToTransaction(row)
}

// Update overwrites every mutable column of a record.
func (r *TransactionRepository) Update(ctx context.Context, tx usecase.Transaction, record *domain.Transaction) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	n, err := queries.UpdateTransaction(ctx, generated.UpdateTransactionParams{
		ID:                   record.ID,
		CategoryID:           record.CategoryID,
		SourceAccountID:      textFromPtr(record.SourceAccountID),
		DestinationAccountID: textFromPtr(record.DestinationAccountID),
		Amount:               decimalToNumeric(record.Amount),
		Kind:                 record.Kind.String(),
		TransactionDate:      timeToPgTimestamptz(record.TransactionDate),
		Description:          textFromPtr(record.Description),
		UpdatedAt:            timeToPgTimestamptz(record.UpdatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// Delete removes a record within a transaction.
func (r *TransactionRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	n, err := queries.DeleteTransaction(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// GetByID retrieves a record owned by ownerID.
func (r *TransactionRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Transaction, error) {
	row, err := r.queries.GetTransactionByID(ctx, generated.GetTransactionByIDParams{ID: id, OwnerID: ownerID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return rowToTransaction(row)
}

// List returns one page of matching records, newest first, and the total
// number of matches.
func (r *TransactionRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int, error) {
	var kind pgtype.Text
	if filter.Kind != nil {
		kind = pgtype.Text{String: filter.Kind.String(), Valid: true}
	}

	rows, err := r.queries.ListTransactions(ctx, generated.ListTransactionsParams{
		OwnerID:     filter.OwnerID,
		FromDate:    optionalTimestamptz(filter.From),
		ToDate:      optionalTimestamptz(filter.To),
		CategoryID:  textFromPtr(filter.CategoryID),
		AccountID:   textFromPtr(filter.AccountID),
		Kind:        kind,
		LimitCount:  int32(filter.Limit),
		OffsetCount: int32(filter.Offset),
	})
	if err != nil {
		return nil, 0, err
	}

	total, err := r.queries.CountTransactions(ctx, generated.CountTransactionsParams{
		OwnerID:    filter.OwnerID,
		FromDate:   optionalTimestamptz(filter.From),
		ToDate:     optionalTimestamptz(filter.To),
		CategoryID: textFromPtr(filter.CategoryID),
		AccountID:  textFromPtr(filter.AccountID),
		Kind:       kind,
	})
	if err != nil {
		return nil, 0, err
	}

	records, err := rowsToTransactions(rows)
	if err != nil {
		return nil, 0, err
	}

	return records, int(total), nil
}

// ListByCategories returns every record of the given categories that the
// owner's budgets hold.
func (r *TransactionRepository) ListByCategories(ctx context.Context, ownerID string, categoryIDs []string) ([]*domain.Transaction, error) {
	rows, err := r.queries.ListTransactionsByCategories(ctx, generated.ListTransactionsByCategoriesParams{
		OwnerID:     ownerID,
		CategoryIds: categoryIDs,
	})
	if err != nil {
		return nil, err
	}

	return rowsToTransactions(rows)
}

// ListByCategoryForUpdate locks every record of a category.
func (r *TransactionRepository) ListByCategoryForUpdate(ctx context.Context, tx usecase.Transaction, categoryID string) ([]*domain.Transaction, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	rows, err := queries.ListTransactionsByCategoryForUpdate(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	return rowsToTransactions(rows)
}

// Summary aggregates matching records per kind and category in SQL and folds
// the groups into a domain.Summary.
func (r *TransactionRepository) Summary(ctx context.Context, filter domain.SummaryFilter) (*domain.Summary, error) {
	rows, err := r.queries.SummarizeTransactions(ctx, generated.SummarizeTransactionsParams{
		OwnerID:   filter.OwnerID,
		FromDate:  optionalTimestamptz(filter.From),
		ToDate:    optionalTimestamptz(filter.To),
		AccountID: textFromPtr(filter.AccountID),
	})
	if err != nil {
		return nil, err
	}

	return foldSummary(rows)
}

func foldSummary(rows []generated.SummarizeTransactionsRow) (*domain.Summary, error) {
	summary := &domain.Summary{ByCategory: []domain.CategoryTotal{}}

	for _, row := range rows {
		kind, err := domain.ParseKind(row.Kind)
		if err != nil {
			return nil, fmt.Errorf("summary row: %w", err)
		}

		total := numericToDecimal(row.Total)
		summary.TransactionCount += int(row.Count)

		switch kind {
		case domain.KindIncome:
			summary.TotalIncome = summary.TotalIncome.Add(total)
		case domain.KindExpense:
			summary.TotalExpenses = summary.TotalExpenses.Add(total)
			summary.ByCategory = append(summary.ByCategory, domain.CategoryTotal{
				CategoryID: row.CategoryID,
				Total:      total,
				Count:      int(row.Count),
			})
		}
	}

	domain.SortCategoryTotals(summary.ByCategory)
	summary.Net = summary.TotalIncome.Sub(summary.TotalExpenses)

	return summary, nil
}

func rowsToTransactions(rows []generated.Transaction) ([]*domain.Transaction, error) {
	records := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		record, err := rowToTransaction(row)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

func rowToTransaction(row generated.Transaction) (*domain.Transaction, error) {
	kind, err := domain.ParseKind(row.Kind)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", row.ID, err)
	}

	return &domain.Transaction{
		ID:                   row.ID,
		CategoryID:           row.CategoryID,
		SourceAccountID:      ptrFromText(row.SourceAccountID),
		DestinationAccountID: ptrFromText(row.DestinationAccountID),
		Amount:               numericToDecimal(row.Amount),
		Kind:                 kind,
		TransactionDate:      row.TransactionDate.Time,
		Description:          ptrFromText(row.Description),
		CreatedAt:            row.CreatedAt.Time,
		UpdatedAt:            row.UpdatedAt.Time,
	}, nil
}
