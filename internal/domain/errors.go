package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the base for every lookup miss, including ownership
	// failures: a resource owned by someone else is reported as absent.
	ErrNotFound = errors.New("not found")

	ErrAccountNotFound     = fmt.Errorf("account %w", ErrNotFound)
	ErrCategoryNotFound    = fmt.Errorf("category %w", ErrNotFound)
	ErrBudgetNotFound      = fmt.Errorf("budget %w", ErrNotFound)
	ErrTransactionNotFound = fmt.Errorf("transaction %w", ErrNotFound)

	// ErrInvalidCombination covers kind/account combinations the ledger rejects.
	ErrInvalidCombination    = errors.New("invalid transaction combination")
	ErrSameAccount           = fmt.Errorf("%w: source and destination accounts must differ", ErrInvalidCombination)
	ErrDestinationNotAllowed = fmt.Errorf("%w: only transfers may have a destination account", ErrInvalidCombination)
	ErrInvalidKind           = errors.New("invalid transaction kind")

	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrDescriptionTooLong = errors.New("description is too long")

	// ErrStorage marks failures of the backing store.
	ErrStorage = errors.New("storage failure")
)

// StorageError wraps a store failure with the operation that hit it.
// Its message is never meant for clients.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// NewStorageError wraps err unless it is already a domain error or nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomainError(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsDomainError reports whether err belongs to the ledger's own taxonomy
// rather than an infrastructure failure.
func IsDomainError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInvalidCombination),
		errors.Is(err, ErrInvalidKind),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrDescriptionTooLong),
		errors.Is(err, ErrInvalidCurrency),
		errors.Is(err, ErrInvalidName),
		errors.Is(err, ErrAmountTooLarge),
		errors.Is(err, ErrInvalidMonth),
		errors.Is(err, ErrInvalidColor),
		errors.Is(err, ErrInvalidAccountType),
		errors.Is(err, ErrStorage):
		return true
	}
	return false
}
