package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies an account for display purposes.
type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
	AccountTypeCredit   AccountType = "credit"
)

// Valid reports whether the account type is known.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCredit:
		return true
	}
	return false
}

// Account holds a balance that the ledger keeps in step with the
// transactions referencing it. OpeningBalance is the balance the account
// had before any ledger effect and moves only on an explicit reset.
type Account struct {
	ID             string          `json:"id"`
	OwnerID        string          `json:"owner_id"`
	Name           string          `json:"name"`
	Type           AccountType     `json:"type"`
	Currency       string          `json:"currency"`
	Balance        decimal.Decimal `json:"balance"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Rebase sets the balance directly and moves the opening balance by the
// same amount, so the ledger sum still explains the new balance.
func (a *Account) Rebase(balance decimal.Decimal) {
	diff := balance.Sub(a.Balance)
	a.OpeningBalance = a.OpeningBalance.Add(diff)
	a.Balance = balance
}

// LedgerPosition is an account's stored balances next to the net effect of
// every record on it, all read at the same instant.
type LedgerPosition struct {
	AccountID      string
	Balance        decimal.Decimal
	OpeningBalance decimal.Decimal
	Effects        decimal.Decimal
}

// Expected is the balance the ledger explains.
func (p LedgerPosition) Expected() decimal.Decimal {
	return p.OpeningBalance.Add(p.Effects)
}
