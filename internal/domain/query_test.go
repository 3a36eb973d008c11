package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSummarize(t *testing.T) {
	records := []*Transaction{
		{CategoryID: "food", Kind: KindExpense, Amount: decimal.NewFromInt(30)},
		{CategoryID: "food", Kind: KindExpense, Amount: decimal.NewFromInt(20)},
		{CategoryID: "rent", Kind: KindExpense, Amount: decimal.NewFromInt(900)},
		{CategoryID: "salary", Kind: KindIncome, Amount: decimal.NewFromInt(3000)},
		{CategoryID: "moves", Kind: KindTransfer, Amount: decimal.NewFromInt(500)},
	}

	s := Summarize(records)

	if !s.TotalIncome.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("income = %s", s.TotalIncome)
	}
	if !s.TotalExpenses.Equal(decimal.NewFromInt(950)) {
		t.Errorf("expenses = %s", s.TotalExpenses)
	}
	if !s.Net.Equal(decimal.NewFromInt(2050)) {
		t.Errorf("net = %s", s.Net)
	}
	if s.TransactionCount != 5 {
		t.Errorf("count = %d", s.TransactionCount)
	}
	if len(s.ByCategory) != 2 {
		t.Fatalf("expected 2 expense categories, got %d", len(s.ByCategory))
	}
	if s.ByCategory[0].CategoryID != "rent" || s.ByCategory[1].Count != 2 {
		t.Errorf("unexpected breakdown: %+v", s.ByCategory)
	}
}

func TestTransactionFilter_Matches(t *testing.T) {
	day := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	before := day.AddDate(0, 0, -1)
	after := day.AddDate(0, 0, 1)
	kind := KindTransfer

	tx := &Transaction{
		CategoryID:           "c1",
		Kind:                 KindTransfer,
		SourceAccountID:      ptr("a"),
		DestinationAccountID: ptr("b"),
		TransactionDate:      day,
	}

	tests := []struct {
		name   string
		filter TransactionFilter
		want   bool
	}{
		{"owner only", TransactionFilter{OwnerID: "u1"}, true},
		{"date window", TransactionFilter{OwnerID: "u1", From: &before, To: &after}, true},
		{"before window", TransactionFilter{OwnerID: "u1", From: &after}, false},
		{"destination account", TransactionFilter{OwnerID: "u1", AccountID: ptr("b")}, true},
		{"unrelated account", TransactionFilter{OwnerID: "u1", AccountID: ptr("c")}, false},
		{"kind", TransactionFilter{OwnerID: "u1", Kind: &kind}, true},
		{"category", TransactionFilter{OwnerID: "u1", CategoryID: ptr("c2")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(tx); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
