package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidName        = errors.New("invalid name")
	ErrInvalidCurrency    = errors.New("invalid currency code")
	ErrAmountTooLarge     = errors.New("amount exceeds maximum allowed")
	ErrInvalidMonth       = errors.New("invalid budget month")
	ErrInvalidColor       = errors.New("invalid color")
	ErrInvalidAccountType = errors.New("invalid account type")
)

// Validation constants
const (
	MaxNameLength        = 255
	MaxDescriptionLength = 200
	MaxTransactionAmount = "1000000000000" // 1 trillion
	MaxBalance           = "9999999999999999"
	// MoneyScale is the number of decimal places stored for amounts and balances.
	MoneyScale = 4
	DefaultPageSize      = 50
	MaxPageSize          = 100
)

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"SEK": true, "NZD": true, "KRW": true, "SGD": true,
	"NOK": true, "MXN": true, "INR": true, "BRL": true,
	"ZAR": true, "PLN": true, "TRY": true, "HKD": true,
	"UAH": true, "CZK": true, "DKK": true, "ILS": true,
}

var colorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

var (
	maxTransactionAmount = decimal.RequireFromString(MaxTransactionAmount)
	maxBalance           = decimal.RequireFromString(MaxBalance)
)

// ValidateName validates account, budget and category names.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}

	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, MaxNameLength)
	}

	return nil
}

// ValidateCurrency validates currency code
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s is not a valid ISO 4217 currency code", ErrInvalidCurrency, currency)
	}

	return nil
}

// ValidateTransactionAmount checks that a ledger amount is strictly positive
// and within bounds.
func ValidateTransactionAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if amount.GreaterThan(maxTransactionAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxTransactionAmount)
	}

	return validateScale(amount)
}

// ValidateBalance checks a balance set directly by a caller. Balances may be
// negative but must fit the stored precision.
func ValidateBalance(balance decimal.Decimal) error {
	if balance.Abs().GreaterThan(maxBalance) {
		return fmt.Errorf("%w: maximum balance is %s", ErrAmountTooLarge, MaxBalance)
	}

	return validateScale(balance)
}

// validateScale rejects values the store would round. A rounded amount and a
// separately rounded balance would no longer agree.
func validateScale(d decimal.Decimal) error {
	if !d.Equal(d.Truncate(MoneyScale)) {
		return fmt.Errorf("%w: at most %d decimal places", ErrInvalidAmount, MoneyScale)
	}
	return nil
}

// ValidateDescription limits descriptions to MaxDescriptionLength characters.
func ValidateDescription(description *string) error {
	if description == nil {
		return nil
	}

	if utf8.RuneCountInString(*description) > MaxDescriptionLength {
		return fmt.Errorf("%w: maximum is %d characters", ErrDescriptionTooLong, MaxDescriptionLength)
	}

	return nil
}

// ValidateColor accepts #RRGGBB colors.
func ValidateColor(color string) error {
	if !colorRegex.MatchString(color) {
		return fmt.Errorf("%w: %q is not #RRGGBB", ErrInvalidColor, color)
	}
	return nil
}

// ValidateAccountType rejects unknown account types.
func ValidateAccountType(t AccountType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAccountType, t)
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
