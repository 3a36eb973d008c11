package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the direction of a ledger record.
type Kind uint8

const (
	KindExpense Kind = iota + 1
	KindIncome
	KindTransfer
)

// String returns the storage form of the kind.
func (k Kind) String() string {
	switch k {
	case KindExpense:
		return "expense"
	case KindIncome:
		return "income"
	case KindTransfer:
		return "transfer"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k >= KindExpense && k <= KindTransfer
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, ErrInvalidKind
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind converts the storage form back into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "expense":
		return KindExpense, nil
	case "income":
		return KindIncome, nil
	case "transfer":
		return KindTransfer, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// Transaction is a single ledger record. Account balances are derived from
// the set of persisted transactions that reference them.
type Transaction struct {
	ID                   string          `json:"id"`
	CategoryID           string          `json:"category_id"`
	SourceAccountID      *string         `json:"source_account_id,omitempty"`
	DestinationAccountID *string         `json:"destination_account_id,omitempty"`
	Amount               decimal.Decimal `json:"amount"`
	Kind                 Kind            `json:"kind"`
	TransactionDate      time.Time       `json:"transaction_date"`
	Description          *string         `json:"description,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// Effects returns the balance effects this record has on its accounts.
func (t *Transaction) Effects() []Effect {
	return Effects(t.Kind, t.Amount, t.SourceAccountID, t.DestinationAccountID)
}

// AccountIDs returns the distinct accounts referenced by the record.
func (t *Transaction) AccountIDs() []string {
	ids := make([]string, 0, 2)
	if t.SourceAccountID != nil {
		ids = append(ids, *t.SourceAccountID)
	}
	if t.DestinationAccountID != nil && (t.SourceAccountID == nil || *t.SourceAccountID != *t.DestinationAccountID) {
		ids = append(ids, *t.DestinationAccountID)
	}
	return ids
}

// Validate checks the amount, description and kind/account combination.
func (t *Transaction) Validate() error {
	if err := ValidateTransactionAmount(t.Amount); err != nil {
		return err
	}
	if err := ValidateDescription(t.Description); err != nil {
		return err
	}
	return ValidateCombination(t.Kind, t.SourceAccountID, t.DestinationAccountID)
}

// ValidateCombination checks that the accounts fit the kind: only transfers
// carry a destination, and a transfer never moves money to its own source.
func ValidateCombination(kind Kind, source, destination *string) error {
	if !kind.Valid() {
		return ErrInvalidKind
	}

	if kind != KindTransfer && destination != nil {
		return ErrDestinationNotAllowed
	}

	if kind == KindTransfer && source != nil && destination != nil && *source == *destination {
		return ErrSameAccount
	}

	return nil
}

// Clone returns a deep copy of the record.
func (t *Transaction) Clone() *Transaction {
	c := *t
	c.SourceAccountID = clonePtr(t.SourceAccountID)
	c.DestinationAccountID = clonePtr(t.DestinationAccountID)
	c.Description = clonePtr(t.Description)
	return &c
}

// State flattens the record for audit logs and event payloads.
func (t *Transaction) State() JSON {
	return MarshalState(t)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// References reports whether the record touches accountID on either side.
func (t *Transaction) References(accountID string) bool {
	return (t.SourceAccountID != nil && *t.SourceAccountID == accountID) ||
		(t.DestinationAccountID != nil && *t.DestinationAccountID == accountID)
}
