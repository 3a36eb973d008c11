package usecase_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/budgetledger/internal/domain"
	"github.com/iho/budgetledger/internal/usecase"
)

func TestTransactionUseCase_Scenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("expense debits the source account", func(t *testing.T) {
		env := newLedgerEnv(t)
		cat := env.category(t, "u1")
		a := env.account(t, "u1", "100.00")

		_, err := env.ledger.CreateTransaction(ctx, usecase.CreateTransactionInput{
			UserID:          "u1",
			CategoryID:      cat,
			SourceAccountID: &a,
			Amount:          amount("50.00"),
			Kind:            domain.KindExpense,
			TransactionDate: march,
		})
		if err != nil {
			t.Fatalf("CreateTransaction() error = %v", err)
		}

		env.requireBalance(t, "u1", a, "50.00")
	})

	t.Run("transfer moves money between accounts", func(t *testing.T) {
		env := newLedgerEnv(t)
		cat := env.category(t, "u1")
		a := env.account(t, "u1", "50.00")
		b := env.account(t, "u1", "20.00")

		_, err := env.ledger.CreateTransaction(ctx, usecase.CreateTransactionInput{
			UserID:               "u1",
			CategoryID:           cat,
			SourceAccountID:      &a,
			DestinationAccountID: &b,
			Amount:               amount("30.00"),
			Kind:                 domain.KindTransfer,
			TransactionDate:      march,
		})
		if err != nil {
			t.Fatalf("CreateTransaction() error = %v", err)
		}

		env.requireBalance(t, "u1", a, "20.00")
		env.requireBalance(t, "u1", b, "50.00")
	})

	t.Run("amount update reverses the old effect", func(t *testing.T) {
		env := newLedgerEnv(t)
		cat := env.category(t, "u1")
		a := env.account(t, "u1", "100.00")

		created, err := env.ledger.CreateTransaction(ctx, usecase.CreateTransactionInput{
			UserID:          "u1",
			CategoryID:      cat,
			SourceAccountID: &a,
			Amount:          amount("50.00"),
			Kind:            domain.KindExpense,
			TransactionDate: march,
		})
		if err != nil {
			t.Fatalf("CreateTransaction() error = %v", err)
		}

		_, err = env.ledger.UpdateTransaction(ctx, usecase.UpdateTransactionInput{
			UserID:        "u1",
			TransactionID: created.ID,
			Amount:        decPtr("20.00"),
		})
		if err != nil {
			t.Fatalf("UpdateTransaction() error = %v", err)
		}

		env.requireBalance(t, "u1", a, "80.00")
	})

	t.Run("kind flip swings the balance by twice the amount", func(t *testing.T) {
		env := newLedgerEnv(t)
		cat := env.category(t, "u1")
		a := env.account(t, "u1", "100.00")

		created, err := env.ledger.CreateTransaction(ctx, usecase.CreateTransactionInput{
			UserID:          "u1",
			CategoryID:      cat,
			SourceAccountID: &a,
			Amount:          amount("50.00"),
			Kind:            domain.KindExpense,
			TransactionDate: march,
		})
		if err != nil {
			t.Fatalf("CreateTransaction() error = %v", err)
		}
		env.requireBalance(t, "u1", a, "50.00")

		_, err = env.ledger.UpdateTransaction(ctx, usecase.UpdateTransactionInput{
			UserID:        "u1",
			TransactionID: created.ID,
			Kind:          kindPtr(domain.KindIncome),
		})
		if err != nil {
			t.Fatalf("UpdateTransaction() error = %v", err)
		}

		env.requireBalance(t, "u1", a, "150.00")
	})

	t.Run("foreign category is not found", func(t *testing.T) {
		env := newLedgerEnv(t)
		foreign := env.category(t, "u2")
		a := env.account(t, "u1", "100.00")

		_, err := env.ledger.CreateTransaction(ctx, usecase.CreateTransactionInput{
			UserID:          "u1",
			CategoryID:      foreign,
			SourceAccountID: &a,
			Amount:          amount("50.00"),
			Kind:            domain.KindExpense,
			TransactionDate: march,
		})
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("CreateTransaction() error = %v, want not found", err)
		}

		env.requireBalance(t, "u1", a, "100.00")
	})

	t.Run("transfer to the same account is rejected", func(t *testing.T) {
		env := newLedgerEnv(t)
		cat := env.category(t, "u1")
		a := env.account(t, "u1", "100.00")

		_, err := env.ledger.CreateTransaction(ctx, usecase.CreateTransactionInput{
			UserID:               "u1",
			CategoryID:           cat,
			SourceAccountID:      &a,
			DestinationAccountID: &a,
			Amount:               amount("10.00"),
			Kind:                 domain.KindTransfer,
			TransactionDate:      march,
		})
		if !errors.Is(err, domain.ErrInvalidCombination) {
			t.Fatalf("CreateTransaction() error = %v, want invalid combination", err)
		}

		page, err := env.ledger.ListTransactions(ctx, usecase.ListTransactionsInput{UserID: "u1"})
		if err != nil {
			t.Fatalf("ListTransactions() error = %v", err)
		}
		if page.Total != 0 {
			t.Errorf("persisted %d records, want 0", page.Total)
		}
		env.requireBalance(t, "u1", a, "100.00")
	})
}

func TestTransactionUseCase_CreateValidation(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv(t)
	cat := env.category(t, "u1")
	a := env.account(t, "u1", "100.00")
	b := env.account(t, "u1", "100.00")
	foreign := env.account(t, "u2", "100.00")
	missing := "missing"

	tests := []struct {
		name    string
		input   usecase.CreateTransactionInput
		wantErr error
	}{
		{
			name:    "zero amount",
			input:   usecase.CreateTransactionInput{CategoryID: cat, SourceAccountID: &a, Amount: amount("0"), Kind: domain.KindExpense},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			input:   usecase.CreateTransactionInput{CategoryID: cat, SourceAccountID: &a, Amount: amount("-1"), Kind: domain.KindExpense},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "fifth decimal place",
			input:   usecase.CreateTransactionInput{CategoryID: cat, SourceAccountID: &a, Amount: amount("1.00005"), Kind: domain.KindExpense},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "rounds to zero",
			input:   usecase.CreateTransactionInput{CategoryID: cat, SourceAccountID: &a, Amount: amount("0.00004"), Kind: domain.KindExpense},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "expense with destination",
			input:   usecase.CreateTransactionInput{CategoryID: cat, SourceAccountID: &a, DestinationAccountID: &b, Amount: amount("1"), Kind: domain.KindExpense},
			wantErr: domain.ErrInvalidCombination,
		},
		{
			name:    "unknown kind",
			input:   usecase.CreateTransactionInput{CategoryID: cat, SourceAccountID: &a, Amount: amount("1"), Kind: domain.Kind(9)},
			wantErr: domain.ErrInvalidKind,
		},
		{
			name:    "foreign source account",
			input:   usecase.CreateTransactionInput{CategoryID: cat, SourceAccountID: &foreign, Amount: amount("1"), Kind: domain.KindExpense},
			wantErr: domain.ErrAccountNotFound,
		},
		{
			name:    "missing destination account",
			input:   usecase.CreateTransactionInput{CategoryID: cat, SourceAccountID: &a, DestinationAccountID: &missing, Amount: amount("1"), Kind: domain.KindTransfer},
			wantErr: domain.ErrAccountNotFound,
		},
		{
			name:    "unknown category",
			input:   usecase.CreateTransactionInput{CategoryID: "nope", SourceAccountID: &a, Amount: amount("1"), Kind: domain.KindExpense},
			wantErr: domain.ErrCategoryNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.input.UserID = "u1"
			tt.input.TransactionDate = march

			_, err := env.ledger.CreateTransaction(ctx, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CreateTransaction() error = %v, want %v", err, tt.wantErr)
			}
			if errors.Is(err, domain.ErrStorage) {
				t.Errorf("CreateTransaction() error = %v classified as storage", err)
			}
		})
	}

	env.requireBalance(t, "u1", a, "100.00")
	env.requireBalance(t, "u1", b, "100.00")
	env.requireBalance(t, "u2", foreign, "100.00")
}

func TestTransactionUseCase_NoAccountHasNoEffect(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv(t)
	cat := env.category(t, "u1")
	a := env.account(t, "u1", "10.00")

	created, err := env.ledger.CreateTransaction(ctx, usecase.CreateTransactionInput{
		UserID:          "u1",
		CategoryID:      cat,
		Amount:          amount("5.00"),
		Kind:            domain.KindExpense,
		TransactionDate: march,
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	if created.SourceAccountID != nil {
		t.Fatalf("SourceAccountID = %v, want nil", *created.SourceAccountID)
	}

	if err := env.ledger.DeleteTransaction(ctx, "u1", created.ID); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
	env.requireBalance(t, "u1", a, "10.00")
}

func TestTransactionUseCase_UpdateAccountFields(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		update  func(a, b string) usecase.UpdateTransactionInput
		wantSrc func(a, b string) *string
		wantA   string
		wantB   string
	}{
		{
			name:    "keep",
			update:  func(a, b string) usecase.UpdateTransactionInput { return usecase.UpdateTransactionInput{} },
			wantSrc: func(a, b string) *string { return &a },
			wantA:   "60.00",
			wantB:   "100.00",
		},
		{
			name: "clear",
			update: func(a, b string) usecase.UpdateTransactionInput {
				return usecase.UpdateTransactionInput{SourceAccount: domain.Clear[string]()}
			},
			wantSrc: func(a, b string) *string { return nil },
			wantA:   "100.00",
			wantB:   "100.00",
		},
		{
			name: "set",
			update: func(a, b string) usecase.UpdateTransactionInput {
				return usecase.UpdateTransactionInput{SourceAccount: domain.Set(b)}
			},
			wantSrc: func(a, b string) *string { return &b },
			wantA:   "100.00",
			wantB:   "60.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newLedgerEnv(t)
			cat := env.category(t, "u1")
			a := env.account(t, "u1", "100.00")
			b := env.account(t, "u1", "100.00")

			created, err := env.ledger.CreateTransaction(ctx, usecase.CreateTransactionInput{
				UserID:          "u1",
				CategoryID:      cat,
				SourceAccountID: &a,
				Amount:          amount("40.00"),
				Kind:            domain.KindExpense,
				TransactionDate: march,
			})
			if err != nil {
				t.Fatalf("CreateTransaction() error = %v", err)
			}

			input := tt.update(a, b)
			input.UserID = "u1"
			input.TransactionID = created.ID

			updated, err := env.ledger.UpdateTransaction(ctx, input)
			if err != nil {
				t.Fatalf("UpdateTransaction() error = %v", err)
			}

			want := tt.wantSrc(a, b)
			switch {
			case want == nil && updated.SourceAccountID != nil:
				t.Errorf("SourceAccountID = %v, want nil", *updated.SourceAccountID)
			case want != nil && (updated.SourceAccountID == nil || *updated.SourceAccountID != *want):
				t.Errorf("SourceAccountID = %v, want %v", updated.SourceAccountID, *want)
			}

			env.requireBalance(t, "u1", a, tt.wantA)
			env.requireBalance(t, "u1", b, tt.wantB)
			env.requireReconciled(t, "u1")
		})
	}
}

func TestTransactionUseCase_UpdateRejections(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv(t)
	cat := env.category(t, "u1")
	foreignCat := env.category(t, "u2")
	a := env.account(t, "u1", "100.00")
	foreign := env.account(t, "u2", "100.00")

	created, err := env.ledger.CreateTransaction(ctx, usecase.CreateTransactionInput{
		UserID:          "u1",
		CategoryID:      cat,
		SourceAccountID: &a,
		Amount:          amount("25.00"),
		Kind:            domain.KindExpense,
		TransactionDate: march,
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	tests := []struct {
		name    string
		input   usecase.UpdateTransactionInput
		wantErr error
	}{
		{"foreign category", usecase.UpdateTransactionInput{CategoryID: &foreignCat}, domain.ErrCategoryNotFound},
		{"foreign account", usecase.UpdateTransactionInput{SourceAccount: domain.Set(foreign)}, domain.ErrAccountNotFound},
		{"expense with destination", usecase.UpdateTransactionInput{DestinationAccount: domain.Set(a)}, domain.ErrInvalidCombination},
		{"zero amount", usecase.UpdateTransactionInput{Amount: decPtr("0")}, domain.ErrInvalidAmount},
		{"fifth decimal place", usecase.UpdateTransactionInput{Amount: decPtr("1.00005")}, domain.ErrInvalidAmount},
		{"missing record", usecase.UpdateTransactionInput{TransactionID: "nope"}, domain.ErrTransactionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.input.UserID = "u1"
			if tt.input.TransactionID == "" {
				tt.input.TransactionID = created.ID
			}

			_, err := env.ledger.UpdateTransaction(ctx, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("UpdateTransaction() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	got, err := env.ledger.GetTransaction(ctx, "u1", created.ID)
	if err != nil {
		t.Fatalf("GetTransaction() error = %v", err)
	}
	if !got.Amount.Equal(amount("25.00")) || got.Kind != domain.KindExpense {
		t.Errorf("record changed after rejected updates: %+v", got)
	}
	env.requireBalance(t, "u1", a, "75.00")

	if _, err := env.ledger.UpdateTransaction(ctx, usecase.UpdateTransactionInput{UserID: "u2", TransactionID: created.ID, Amount: decPtr("1")}); !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Errorf("update by another user error = %v, want not found", err)
	}
}

func TestTransactionUseCase_RoundTrip(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv(t)
	cat := env.category(t, "u1")
	a := env.account(t, "u1", "300.00")
	b := env.account(t, "u1", "40.00")

	inputs := []usecase.CreateTransactionInput{
		{SourceAccountID: &a, Amount: amount("12.34"), Kind: domain.KindExpense},
		{SourceAccountID: &b, Amount: amount("99.99"), Kind: domain.KindIncome},
		{SourceAccountID: &a, DestinationAccountID: &b, Amount: amount("0.01"), Kind: domain.KindTransfer},
		{SourceAccountID: &b, DestinationAccountID: &a, Amount: amount("250.00"), Kind: domain.KindTransfer},
	}

	for _, in := range inputs {
		in.UserID = "u1"
		in.CategoryID = cat
		in.TransactionDate = march

		created, err := env.ledger.CreateTransaction(ctx, in)
		if err != nil {
			t.Fatalf("CreateTransaction(%s) error = %v", in.Kind, err)
		}
		if err := env.ledger.DeleteTransaction(ctx, "u1", created.ID); err != nil {
			t.Fatalf("DeleteTransaction(%s) error = %v", in.Kind, err)
		}

		env.requireBalance(t, "u1", a, "300.00")
		env.requireBalance(t, "u1", b, "40.00")
	}

	if err := env.ledger.DeleteTransaction(ctx, "u1", "nope"); !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Errorf("DeleteTransaction(missing) error = %v, want not found", err)
	}
}

func TestTransactionUseCase_UpdateMatchesDeleteAndCreate(t *testing.T) {
	ctx := context.Background()

	run := func(t *testing.T, viaUpdate bool) (string, string) {
		env := newLedgerEnv(t)
		cat := env.category(t, "u1")
		a := env.account(t, "u1", "500.00")
		b := env.account(t, "u1", "500.00")

		created, err := env.ledger.CreateTransaction(ctx, usecase.CreateTransactionInput{
			UserID:               "u1",
			CategoryID:           cat,
			SourceAccountID:      &a,
			DestinationAccountID: &b,
			Amount:               amount("70.00"),
			Kind:                 domain.KindTransfer,
			TransactionDate:      march,
		})
		if err != nil {
			t.Fatalf("CreateTransaction() error = %v", err)
		}

		if viaUpdate {
			_, err = env.ledger.UpdateTransaction(ctx, usecase.UpdateTransactionInput{
				UserID:             "u1",
				TransactionID:      created.ID,
				Amount:             decPtr("15.50"),
				Kind:               kindPtr(domain.KindIncome),
				SourceAccount:      domain.Set(b),
				DestinationAccount: domain.Clear[string](),
			})
			if err != nil {
				t.Fatalf("UpdateTransaction() error = %v", err)
			}
		} else {
			if err := env.ledger.DeleteTransaction(ctx, "u1", created.ID); err != nil {
				t.Fatalf("DeleteTransaction() error = %v", err)
			}
			_, err = env.ledger.CreateTransaction(ctx, usecase.CreateTransactionInput{
				UserID:          "u1",
				CategoryID:      cat,
				SourceAccountID: &b,
				Amount:          amount("15.50"),
				Kind:            domain.KindIncome,
				TransactionDate: march,
			})
			if err != nil {
				t.Fatalf("CreateTransaction() error = %v", err)
			}
		}

		return env.balance(t, "u1", a).String(), env.balance(t, "u1", b).String()
	}

	ua, ub := run(t, true)
	da, db := run(t, false)
	if ua != da || ub != db {
		t.Fatalf("update gave (%s, %s), delete+create gave (%s, %s)", ua, ub, da, db)
	}
	if ua != "500" || ub != "515.5" {
		t.Errorf("balances = (%s, %s), want (500, 515.5)", ua, ub)
	}
}

func TestTransactionUseCase_ReversalSkipsDeletedAccount(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv(t)
	cat := env.category(t, "u1")
	a := env.account(t, "u1", "100.00")
	b := env.account(t, "u1", "100.00")

	created, err := env.ledger.CreateTransaction(ctx, usecase.CreateTransactionInput{
		UserID:               "u1",
		CategoryID:           cat,
		SourceAccountID:      &a,
		DestinationAccountID: &b,
		Amount:               amount("30.00"),
		Kind:                 domain.KindTransfer,
		TransactionDate:      march,
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	if err := env.accounts.DeleteAccount(ctx, "u1", b); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}

	got, err := env.ledger.GetTransaction(ctx, "u1", created.ID)
	if err != nil {
		t.Fatalf("GetTransaction() error = %v", err)
	}
	if got.DestinationAccountID != nil {
		t.Fatalf("DestinationAccountID = %v, want detached", *got.DestinationAccountID)
	}

	if err := env.ledger.DeleteTransaction(ctx, "u1", created.ID); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
	env.requireBalance(t, "u1", a, "100.00")
}

func TestTransactionUseCase_Conservation(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv(t)
	cat := env.category(t, "u1")
	accounts := []string{
		env.account(t, "u1", "1000.00"),
		env.account(t, "u1", "250.00"),
		env.account(t, "u1", "0"),
	}

	rng := rand.New(rand.NewSource(42))
	pick := func() *string {
		id := accounts[rng.Intn(len(accounts))]
		return &id
	}
	other := func(not string) *string {
		for {
			id := accounts[rng.Intn(len(accounts))]
			if id != not {
				return &id
			}
		}
	}
	randomAmount := func() string {
		return decimal.New(int64(rng.Intn(100000)+1), -2).String()
	}

	var live []string
	for i := 0; i < 200; i++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(live) == 0:
			in := usecase.CreateTransactionInput{
				UserID:          "u1",
				CategoryID:      cat,
				Amount:          amount(randomAmount()),
				Kind:            domain.Kind(rng.Intn(3) + 1),
				TransactionDate: march.AddDate(0, 0, rng.Intn(20)),
			}
			in.SourceAccountID = pick()
			if in.Kind == domain.KindTransfer {
				in.DestinationAccountID = other(*in.SourceAccountID)
			}
			created, err := env.ledger.CreateTransaction(ctx, in)
			if err != nil {
				t.Fatalf("step %d: CreateTransaction() error = %v", i, err)
			}
			live = append(live, created.ID)
		case op == 1:
			idx := rng.Intn(len(live))
			kind := domain.Kind(rng.Intn(3) + 1)
			src := pick()
			in := usecase.UpdateTransactionInput{
				UserID:        "u1",
				TransactionID: live[idx],
				Amount:        decPtr(randomAmount()),
				Kind:          &kind,
				SourceAccount: domain.Set(*src),
			}
			if kind == domain.KindTransfer {
				in.DestinationAccount = domain.Set(*other(*src))
			} else {
				in.DestinationAccount = domain.Clear[string]()
			}
			if _, err := env.ledger.UpdateTransaction(ctx, in); err != nil {
				t.Fatalf("step %d: UpdateTransaction() error = %v", i, err)
			}
		default:
			idx := rng.Intn(len(live))
			if err := env.ledger.DeleteTransaction(ctx, "u1", live[idx]); err != nil {
				t.Fatalf("step %d: DeleteTransaction() error = %v", i, err)
			}
			live = append(live[:idx], live[idx+1:]...)
		}

		if i%20 == 0 {
			env.requireReconciled(t, "u1")
		}
	}

	env.requireReconciled(t, "u1")

	for _, id := range live {
		if err := env.ledger.DeleteTransaction(ctx, "u1", id); err != nil {
			t.Fatalf("DeleteTransaction() error = %v", err)
		}
	}
	env.requireBalance(t, "u1", accounts[0], "1000.00")
	env.requireBalance(t, "u1", accounts[1], "250.00")
	env.requireBalance(t, "u1", accounts[2], "0")
}

func TestTransactionUseCase_FailureLeavesNoPartialState(t *testing.T) {
	ctx := context.Background()
	injected := errors.New("disk on fire")

	for _, op := range []string{"AdjustBalance", "CreateOutboxEvent", "CreateTransaction", "Commit"} {
		t.Run(op, func(t *testing.T) {
			env := newLedgerEnv(t)
			cat := env.category(t, "u1")
			a := env.account(t, "u1", "100.00")
			b := env.account(t, "u1", "100.00")

			existing, err := env.ledger.CreateTransaction(ctx, usecase.CreateTransactionInput{
				UserID:          "u1",
				CategoryID:      cat,
				SourceAccountID: &a,
				Amount:          amount("10.00"),
				Kind:            domain.KindExpense,
				TransactionDate: march,
			})
			if err != nil {
				t.Fatalf("CreateTransaction() error = %v", err)
			}
			events, _ := env.store.Outbox().GetUnpublished(ctx, 100)

			env.store.InjectFault(op, injected)

			_, err = env.ledger.CreateTransaction(ctx, usecase.CreateTransactionInput{
				UserID:               "u1",
				CategoryID:           cat,
				SourceAccountID:      &a,
				DestinationAccountID: &b,
				Amount:               amount("60.00"),
				Kind:                 domain.KindTransfer,
				TransactionDate:      march,
			})
			if !errors.Is(err, domain.ErrStorage) {
				t.Fatalf("CreateTransaction() error = %v, want storage error", err)
			}
			if !errors.Is(err, injected) {
				t.Errorf("CreateTransaction() error = %v does not wrap the cause", err)
			}

			// Updates and deletes never insert a record.
			if op != "CreateTransaction" {
				_, err = env.ledger.UpdateTransaction(ctx, usecase.UpdateTransactionInput{
					UserID:        "u1",
					TransactionID: existing.ID,
					Amount:        decPtr("90.00"),
				})
				if !errors.Is(err, domain.ErrStorage) {
					t.Fatalf("UpdateTransaction() error = %v, want storage error", err)
				}

				if err := env.ledger.DeleteTransaction(ctx, "u1", existing.ID); !errors.Is(err, domain.ErrStorage) {
					t.Fatalf("DeleteTransaction() error = %v, want storage error", err)
				}
			}

			env.store.InjectFault(op, nil)

			env.requireBalance(t, "u1", a, "90.00")
			env.requireBalance(t, "u1", b, "100.00")

			got, err := env.ledger.GetTransaction(ctx, "u1", existing.ID)
			if err != nil {
				t.Fatalf("GetTransaction() error = %v", err)
			}
			if !got.Amount.Equal(amount("10.00")) {
				t.Errorf("amount = %s, want 10.00", got.Amount)
			}

			page, err := env.ledger.ListTransactions(ctx, usecase.ListTransactionsInput{UserID: "u1"})
			if err != nil {
				t.Fatalf("ListTransactions() error = %v", err)
			}
			if page.Total != 1 {
				t.Errorf("records = %d, want 1", page.Total)
			}

			after, _ := env.store.Outbox().GetUnpublished(ctx, 100)
			if len(after) != len(events) {
				t.Errorf("outbox events = %d, want %d", len(after), len(events))
			}
			env.requireReconciled(t, "u1")
		})
	}
}

func TestTransactionUseCase_ConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv(t)
	cat := env.category(t, "u1")
	a := env.account(t, "u1", "1000.00")
	b := env.account(t, "u1", "1000.00")

	const workers = 8
	const perWorker = 10

	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker*2)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			src, dst := a, b
			if w%2 == 1 {
				src, dst = b, a
			}
			for i := 0; i < perWorker; i++ {
				created, err := env.ledger.CreateTransaction(ctx, usecase.CreateTransactionInput{
					UserID:               "u1",
					CategoryID:           cat,
					SourceAccountID:      &src,
					DestinationAccountID: &dst,
					Amount:               amount("3.00"),
					Kind:                 domain.KindTransfer,
					TransactionDate:      march,
				})
				if err != nil {
					errs <- err
					continue
				}
				if i%2 == 0 {
					if err := env.ledger.DeleteTransaction(ctx, "u1", created.ID); err != nil {
						errs <- err
					}
				}
			}
		}(w)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent mutation failed: %v", err)
	}

	env.requireBalance(t, "u1", a, "1000.00")
	env.requireBalance(t, "u1", b, "1000.00")
	env.requireReconciled(t, "u1")
}

func TestTransactionUseCase_WritesEventsAndAudit(t *testing.T) {
	ctx := domain.ContextWithRequestID(context.Background(), "req-1")
	env := newLedgerEnv(t)
	cat := env.category(t, "u1")
	a := env.account(t, "u1", "100.00")

	created, err := env.ledger.CreateTransaction(ctx, usecase.CreateTransactionInput{
		UserID:          "u1",
		CategoryID:      cat,
		SourceAccountID: &a,
		Amount:          amount("1.00"),
		Kind:            domain.KindIncome,
		TransactionDate: march,
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	if _, err := env.ledger.UpdateTransaction(ctx, usecase.UpdateTransactionInput{UserID: "u1", TransactionID: created.ID, Amount: decPtr("2.00")}); err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}
	if err := env.ledger.DeleteTransaction(ctx, "u1", created.ID); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}

	events, err := env.store.Outbox().GetUnpublished(ctx, 100)
	if err != nil {
		t.Fatalf("GetUnpublished() error = %v", err)
	}
	var types []string
	for _, e := range events {
		if e.AggregateID == created.ID {
			types = append(types, e.EventType)
		}
	}
	want := []string{domain.EventTypeTransactionCreated, domain.EventTypeTransactionUpdated, domain.EventTypeTransactionDeleted}
	if len(types) != len(want) {
		t.Fatalf("event types = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event[%d] = %s, want %s", i, types[i], want[i])
		}
	}

	logs, err := env.store.Audit().List(ctx, domain.AuditFilter{ResourceID: created.ID})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("audit entries = %d, want 3", len(logs))
	}
	for _, l := range logs {
		if l.UserID != "u1" || l.RequestID != "req-1" {
			t.Errorf("audit entry %+v missing user or request id", l)
		}
	}
}

func TestTransactionUseCase_Listing(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv(t)
	cat := env.category(t, "u1")
	other := env.category(t, "u1")
	foreign := env.category(t, "u2")
	a := env.account(t, "u1", "100.00")
	b := env.account(t, "u1", "100.00")

	create := func(category string, src, dst *string, kind domain.Kind, day int) *domain.Transaction {
		t.Helper()
		created, err := env.ledger.CreateTransaction(ctx, usecase.CreateTransactionInput{
			UserID:               "u1",
			CategoryID:           category,
			SourceAccountID:      src,
			DestinationAccountID: dst,
			Amount:               amount("1.00"),
			Kind:                 kind,
			TransactionDate:      march.AddDate(0, 0, day),
		})
		if err != nil {
			t.Fatalf("CreateTransaction() error = %v", err)
		}
		return created
	}

	first := create(cat, &a, nil, domain.KindExpense, 1)
	second := create(other, &b, nil, domain.KindIncome, 3)
	third := create(cat, &a, &b, domain.KindTransfer, 2)

	page, err := env.ledger.ListTransactions(ctx, usecase.ListTransactionsInput{UserID: "u1"})
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if page.Total != 3 || page.Limit != domain.DefaultPageSize {
		t.Fatalf("page = total %d limit %d", page.Total, page.Limit)
	}
	order := []string{second.ID, third.ID, first.ID}
	for i, id := range order {
		if page.Items[i].ID != id {
			t.Errorf("items[%d] = %s, want %s", i, page.Items[i].ID, id)
		}
	}

	byAccount, err := env.ledger.ListByAccount(ctx, "u1", b, 0, 0)
	if err != nil {
		t.Fatalf("ListByAccount() error = %v", err)
	}
	if byAccount.Total != 2 {
		t.Errorf("ListByAccount() total = %d, want 2", byAccount.Total)
	}
	if _, err := env.ledger.ListByAccount(ctx, "u2", b, 0, 0); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("ListByAccount(foreign) error = %v, want not found", err)
	}

	byCategories, err := env.ledger.ListByCategories(ctx, "u1", []string{cat, cat})
	if err != nil {
		t.Fatalf("ListByCategories() error = %v", err)
	}
	if len(byCategories) != 2 {
		t.Errorf("ListByCategories() = %d records, want 2", len(byCategories))
	}

	empty, err := env.ledger.ListByCategories(ctx, "u1", nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("ListByCategories(nil) = %v, %v", empty, err)
	}

	if _, err := env.ledger.ListByCategories(ctx, "u1", []string{cat, foreign}); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Errorf("ListByCategories(foreign) error = %v, want not found", err)
	}

	if _, err := env.ledger.GetTransaction(ctx, "u2", first.ID); !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Errorf("GetTransaction(foreign) error = %v, want not found", err)
	}

	kind := domain.KindTransfer
	filtered, err := env.ledger.ListTransactions(ctx, usecase.ListTransactionsInput{UserID: "u1", Kind: &kind})
	if err != nil {
		t.Fatalf("ListTransactions(kind) error = %v", err)
	}
	if filtered.Total != 1 || filtered.Items[0].ID != third.ID {
		t.Errorf("ListTransactions(kind) = %+v", filtered)
	}
}

func TestTransactionUseCase_Summary(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv(t)
	cat := env.category(t, "u1")
	a := env.account(t, "u1", "100.00")
	b := env.account(t, "u1", "100.00")

	for _, in := range []usecase.CreateTransactionInput{
		{SourceAccountID: &a, Amount: amount("40.00"), Kind: domain.KindIncome},
		{SourceAccountID: &a, Amount: amount("15.00"), Kind: domain.KindExpense},
		{SourceAccountID: &a, DestinationAccountID: &b, Amount: amount("5.00"), Kind: domain.KindTransfer},
	} {
		in.UserID = "u1"
		in.CategoryID = cat
		in.TransactionDate = march
		if _, err := env.ledger.CreateTransaction(ctx, in); err != nil {
			t.Fatalf("CreateTransaction() error = %v", err)
		}
	}

	summary, err := env.ledger.Summary(ctx, usecase.SummaryInput{UserID: "u1"})
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if !summary.TotalIncome.Equal(amount("40")) || !summary.TotalExpenses.Equal(amount("15")) || !summary.Net.Equal(amount("25")) {
		t.Errorf("Summary() = %+v", summary)
	}
	if summary.TransactionCount != 3 {
		t.Errorf("TransactionCount = %d, want 3", summary.TransactionCount)
	}

	from := march.Add(24 * time.Hour)
	later, err := env.ledger.Summary(ctx, usecase.SummaryInput{UserID: "u1", From: &from})
	if err != nil {
		t.Fatalf("Summary(from) error = %v", err)
	}
	if later.TransactionCount != 0 {
		t.Errorf("Summary(from).TransactionCount = %d, want 0", later.TransactionCount)
	}
}
