package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/budgetledger/internal/domain"
	"github.com/iho/budgetledger/internal/usecase"
)

func TestAccountUseCase_CreateAccount(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		input   usecase.CreateAccountInput
		wantErr error
	}{
		{
			name:  "valid",
			input: usecase.CreateAccountInput{Name: " Wallet ", Type: domain.AccountTypeChecking, Currency: "usd", InitialBalance: amount("12.50")},
		},
		{
			name:    "empty name",
			input:   usecase.CreateAccountInput{Name: "  ", Type: domain.AccountTypeChecking, Currency: "USD"},
			wantErr: domain.ErrInvalidName,
		},
		{
			name:    "bad currency",
			input:   usecase.CreateAccountInput{Name: "Wallet", Type: domain.AccountTypeChecking, Currency: "dollars"},
			wantErr: domain.ErrInvalidCurrency,
		},
		{
			name:    "unknown type",
			input:   usecase.CreateAccountInput{Name: "Wallet", Type: "brokerage", Currency: "USD"},
			wantErr: domain.ErrInvalidAccountType,
		},
		{
			name:    "initial balance beyond stored precision",
			input:   usecase.CreateAccountInput{Name: "Wallet", Type: domain.AccountTypeChecking, Currency: "USD", InitialBalance: amount("10.12345")},
			wantErr: domain.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newLedgerEnv(t)
			tt.input.UserID = "u1"

			acc, err := env.accounts.CreateAccount(ctx, tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CreateAccount() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateAccount() error = %v", err)
			}

			if acc.Name != "Wallet" || acc.Currency != "USD" {
				t.Errorf("account = %+v, want trimmed name and upper-case currency", acc)
			}
			if !acc.Balance.Equal(acc.OpeningBalance) {
				t.Errorf("balance %s != opening balance %s", acc.Balance, acc.OpeningBalance)
			}
			if got := testutil.ToFloat64(env.metrics.AccountsCreated); got != 1 {
				t.Errorf("AccountsCreated = %v, want 1", got)
			}

			events, _ := env.store.Outbox().GetUnpublished(ctx, 10)
			if len(events) != 1 || events[0].EventType != domain.EventTypeAccountCreated {
				t.Errorf("events = %+v", events)
			}
		})
	}
}

func TestAccountUseCase_Ownership(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv(t)
	id := env.account(t, "u1", "10")

	if _, err := env.accounts.GetAccount(ctx, "u2", id); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("GetAccount(foreign) error = %v", err)
	}
	if _, err := env.accounts.SetBalance(ctx, "u2", id, amount("1")); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("SetBalance(foreign) error = %v", err)
	}
	if err := env.accounts.DeleteAccount(ctx, "u2", id); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("DeleteAccount(foreign) error = %v", err)
	}

	env.account(t, "u2", "10")
	list, err := env.accounts.ListAccounts(ctx, usecase.ListAccountsInput{UserID: "u1"})
	if err != nil {
		t.Fatalf("ListAccounts() error = %v", err)
	}
	if len(list) != 1 || list[0].ID != id {
		t.Errorf("ListAccounts() = %+v", list)
	}
}

func TestAccountUseCase_SetBalanceKeepsLedgerConsistent(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv(t)
	cat := env.category(t, "u1")
	a := env.account(t, "u1", "100.00")

	created, err := env.ledger.CreateTransaction(ctx, usecase.CreateTransactionInput{
		UserID:          "u1",
		CategoryID:      cat,
		SourceAccountID: &a,
		Amount:          amount("30.00"),
		Kind:            domain.KindExpense,
		TransactionDate: march,
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	acc, err := env.accounts.SetBalance(ctx, "u1", a, amount("500.00"))
	if err != nil {
		t.Fatalf("SetBalance() error = %v", err)
	}
	if !acc.Balance.Equal(amount("500.00")) || !acc.OpeningBalance.Equal(amount("530.00")) {
		t.Errorf("account = balance %s opening %s", acc.Balance, acc.OpeningBalance)
	}
	env.requireReconciled(t, "u1")

	if err := env.ledger.DeleteTransaction(ctx, "u1", created.ID); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
	env.requireBalance(t, "u1", a, "530.00")
	env.requireReconciled(t, "u1")

	if _, err := env.accounts.SetBalance(ctx, "u1", a, amount("98.99995")); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("SetBalance() beyond stored precision error = %v, want ErrInvalidAmount", err)
	}
	env.requireBalance(t, "u1", a, "530.00")
}

func TestAccountUseCase_CreateRollsBackOnOutboxFailure(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv(t)
	env.store.InjectFault("CreateOutboxEvent", errors.New("full"))

	_, err := env.accounts.CreateAccount(ctx, usecase.CreateAccountInput{
		UserID: "u1", Name: "Wallet", Type: domain.AccountTypeSavings, Currency: "EUR",
	})
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("CreateAccount() error = %v, want storage error", err)
	}

	list, err := env.accounts.ListAccounts(ctx, usecase.ListAccountsInput{UserID: "u1"})
	if err != nil {
		t.Fatalf("ListAccounts() error = %v", err)
	}
	if len(list) != 0 {
		t.Errorf("ListAccounts() = %d accounts, want 0", len(list))
	}
}
