package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionFilter narrows a listing of one owner's records. Nil fields
// do not filter.
type TransactionFilter struct {
	OwnerID    string
	From       *time.Time
	To         *time.Time
	CategoryID *string
	AccountID  *string
	Kind       *Kind
	Limit      int
	Offset     int
}

// Matches reports whether t passes the filter. Ownership and paging are
// left to the store.
func (f TransactionFilter) Matches(t *Transaction) bool {
	if f.From != nil && t.TransactionDate.Before(*f.From) {
		return false
	}
	if f.To != nil && t.TransactionDate.After(*f.To) {
		return false
	}
	if f.CategoryID != nil && t.CategoryID != *f.CategoryID {
		return false
	}
	if f.Kind != nil && t.Kind != *f.Kind {
		return false
	}
	if f.AccountID != nil && !t.References(*f.AccountID) {
		return false
	}
	return true
}

// SummaryFilter selects the records a summary is computed over.
type SummaryFilter struct {
	OwnerID   string
	From      *time.Time
	To        *time.Time
	AccountID *string
}

// Summary aggregates income and expenses. Transfers only count towards
// TransactionCount.
type Summary struct {
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpenses    decimal.Decimal `json:"total_expenses"`
	Net              decimal.Decimal `json:"net"`
	TransactionCount int             `json:"transaction_count"`
	ByCategory       []CategoryTotal `json:"by_category"`
}

// CategoryTotal is the expense total of one category.
type CategoryTotal struct {
	CategoryID string          `json:"category_id"`
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
}

// Summarize builds a Summary from records already selected by a filter.
func Summarize(records []*Transaction) *Summary {
	s := &Summary{
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
		ByCategory:    []CategoryTotal{},
	}
	byCategory := make(map[string]*CategoryTotal)

	for _, t := range records {
		s.TransactionCount++
		switch t.Kind {
		case KindIncome:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case KindExpense:
			s.TotalExpenses = s.TotalExpenses.Add(t.Amount)
			ct, ok := byCategory[t.CategoryID]
			if !ok {
				ct = &CategoryTotal{CategoryID: t.CategoryID, Total: decimal.Zero}
				byCategory[t.CategoryID] = ct
			}
			ct.Total = ct.Total.Add(t.Amount)
			ct.Count++
		}
	}

	for _, ct := range byCategory {
		s.ByCategory = append(s.ByCategory, *ct)
	}
	SortCategoryTotals(s.ByCategory)
	s.Net = s.TotalIncome.Sub(s.TotalExpenses)

	return s
}

// SortCategoryTotals orders by total descending, then category id.
func SortCategoryTotals(totals []CategoryTotal) {
	sort.Slice(totals, func(i, j int) bool {
		if c := totals[i].Total.Cmp(totals[j].Total); c != 0 {
			return c > 0
		}
		return totals[i].CategoryID < totals[j].CategoryID
	})
}

// AsTransactionFilter converts the summary filter for record matching.
func (f SummaryFilter) AsTransactionFilter() TransactionFilter {
	return TransactionFilter{OwnerID: f.OwnerID, From: f.From, To: f.To, AccountID: f.AccountID}
}
