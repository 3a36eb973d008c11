package postgres

import (
	"context"

	"github.com/iho/budgetledger/internal/domain"
	"github.com/iho/budgetledger/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// Positions reads balances and record effects in one statement, so both
// sides come from the same snapshot.
func (r *LedgerRepository) Positions(ctx context.Context, ownerID string) ([]domain.LedgerPosition, error) {
	rows, err := r.queries.AccountPositions(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	positions := make([]domain.LedgerPosition, 0, len(rows))
	for _, row := range rows {
		positions = append(positions, domain.LedgerPosition{
			AccountID:      row.AccountID,
			Balance:        numericToDecimal(row.Balance),
			OpeningBalance: numericToDecimal(row.OpeningBalance),
			Effects:        numericToDecimal(row.Effects),
		})
	}

	return positions, nil
}
