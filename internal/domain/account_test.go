package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAccount_Rebase(t *testing.T) {
	tests := []struct {
		name        string
		opening     decimal.Decimal
		balance     decimal.Decimal
		target      decimal.Decimal
		wantOpening decimal.Decimal
	}{
		{
			name:        "raise balance",
			opening:     decimal.NewFromInt(100),
			balance:     decimal.NewFromInt(80),
			target:      decimal.NewFromInt(200),
			wantOpening: decimal.NewFromInt(220),
		},
		{
			name:        "lower balance below zero",
			opening:     decimal.Zero,
			balance:     decimal.NewFromInt(50),
			target:      decimal.NewFromInt(-25),
			wantOpening: decimal.NewFromInt(-75),
		},
		{
			name:        "unchanged",
			opening:     decimal.NewFromInt(10),
			balance:     decimal.NewFromInt(30),
			target:      decimal.NewFromInt(30),
			wantOpening: decimal.NewFromInt(10),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &Account{OpeningBalance: tt.opening, Balance: tt.balance}
			ledgerSum := tt.balance.Sub(tt.opening)

			acc.Rebase(tt.target)

			if !acc.Balance.Equal(tt.target) {
				t.Errorf("balance = %s, want %s", acc.Balance, tt.target)
			}
			if !acc.OpeningBalance.Equal(tt.wantOpening) {
				t.Errorf("opening = %s, want %s", acc.OpeningBalance, tt.wantOpening)
			}
			if !acc.OpeningBalance.Add(ledgerSum).Equal(acc.Balance) {
				t.Errorf("opening + ledger sum no longer explains balance")
			}
		})
	}
}

func TestAccountType_Valid(t *testing.T) {
	for _, typ := range []AccountType{AccountTypeChecking, AccountTypeSavings, AccountTypeCredit} {
		if !typ.Valid() {
			t.Errorf("%s should be valid", typ)
		}
	}
	if AccountType("brokerage").Valid() {
		t.Error("unknown type should be invalid")
	}
}
