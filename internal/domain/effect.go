package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Effect is a signed change to one account's balance.
type Effect struct {
	AccountID string
	Delta     decimal.Decimal
}

// Effects computes the balance effects of a record. A missing account side
// simply produces no effect.
//
//	expense:  source -amount
//	income:   source +amount
//	transfer: source -amount, destination +amount
func Effects(kind Kind, amount decimal.Decimal, source, destination *string) []Effect {
	effects := make([]Effect, 0, 2)

	switch kind {
	case KindExpense:
		if source != nil {
			effects = append(effects, Effect{AccountID: *source, Delta: amount.Neg()})
		}
	case KindIncome:
		if source != nil {
			effects = append(effects, Effect{AccountID: *source, Delta: amount})
		}
	case KindTransfer:
		if source != nil {
			effects = append(effects, Effect{AccountID: *source, Delta: amount.Neg()})
		}
		if destination != nil {
			effects = append(effects, Effect{AccountID: *destination, Delta: amount})
		}
	}

	return effects
}

// Reverse negates every effect.
func Reverse(effects []Effect) []Effect {
	reversed := make([]Effect, len(effects))
	for i, e := range effects {
		reversed[i] = Effect{AccountID: e.AccountID, Delta: e.Delta.Neg()}
	}
	return reversed
}

// NetEffects folds effects into one net delta per account, ordered by account id.
// Accounts whose net delta is zero are kept so callers still lock them.
func NetEffects(effects ...[]Effect) []Effect {
	totals := make(map[string]decimal.Decimal)
	for _, list := range effects {
		for _, e := range list {
			totals[e.AccountID] = totals[e.AccountID].Add(e.Delta)
		}
	}

	net := make([]Effect, 0, len(totals))
	for id, delta := range totals {
		net = append(net, Effect{AccountID: id, Delta: delta})
	}
	sort.Slice(net, func(i, j int) bool { return net[i].AccountID < net[j].AccountID })

	return net
}

// SignedAmount returns the effect of a record on one specific account.
func SignedAmount(t *Transaction, accountID string) decimal.Decimal {
	total := decimal.Zero
	for _, e := range t.Effects() {
		if e.AccountID == accountID {
			total = total.Add(e.Delta)
		}
	}
	return total
}
