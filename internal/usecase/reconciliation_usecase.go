package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/budgetledger/internal/domain"
	"github.com/iho/budgetledger/internal/infrastructure/metrics"
)

// ReconciliationUseCase checks stored balances against the ledger:
// balance must equal opening balance plus the effects of every record.
type ReconciliationUseCase struct {
	ledgerRepo LedgerRepository
	metrics    *metrics.Metrics
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(ledgerRepo LedgerRepository, metrics *metrics.Metrics) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		ledgerRepo: ledgerRepo,
		metrics:    metrics,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	AccountID         string
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	IsReconciled      bool
	LastChecked       time.Time
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	CheckedAt          time.Time
}

// ReconcileAccount compares one account's stored balance with the ledger.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, userID, accountID string) (*ReconciliationResult, error) {
	positions, err := uc.ledgerRepo.Positions(ctx, userID)
	if err != nil {
		return nil, domain.NewStorageError("read ledger positions", err)
	}

	for _, p := range positions {
		if p.AccountID == accountID {
			return reconcile(p, time.Now().UTC()), nil
		}
	}

	return nil, domain.ErrAccountNotFound
}

// GenerateReport reconciles every account of the user.
func (uc *ReconciliationUseCase) GenerateReport(ctx context.Context, userID string) (*ReconciliationReport, error) {
	positions, err := uc.ledgerRepo.Positions(ctx, userID)
	if err != nil {
		return nil, domain.NewStorageError("read ledger positions", err)
	}

	report := &ReconciliationReport{
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     time.Now().UTC(),
	}

	for _, p := range positions {
		result := reconcile(p, report.CheckedAt)
		report.TotalAccounts++
		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	if uc.metrics != nil {
		uc.metrics.Discrepancies.Set(float64(len(report.Discrepancies)))
	}

	return report, nil
}

func reconcile(p domain.LedgerPosition, at time.Time) *ReconciliationResult {
	calculated := p.Expected()
	diff := p.Balance.Sub(calculated)

	return &ReconciliationResult{
		AccountID:         p.AccountID,
		RecordedBalance:   p.Balance,
		CalculatedBalance: calculated,
		Difference:        diff,
		IsReconciled:      diff.IsZero(),
		LastChecked:       at,
	}
}
