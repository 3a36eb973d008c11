package domain

import "time"

// Event types
const (
	EventTypeTransactionCreated = "transaction.created"
	EventTypeTransactionUpdated = "transaction.updated"
	EventTypeTransactionDeleted = "transaction.deleted"
	EventTypeAccountCreated     = "account.created"
	EventTypeAccountRebased     = "account.balance_set"
)

// Aggregate types
const (
	AggregateTypeTransaction = "transaction"
	AggregateTypeAccount     = "account"
)

// OutboxEvent is written in the same database transaction as the change it
// describes and published afterwards.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// TransactionEventPayload builds the payload for transaction events.
func TransactionEventPayload(t *Transaction, effects []Effect) map[string]any {
	deltas := make(map[string]string, len(effects))
	for _, e := range effects {
		deltas[e.AccountID] = e.Delta.String()
	}

	return map[string]any{
		"transaction_id": t.ID,
		"category_id":    t.CategoryID,
		"kind":           t.Kind.String(),
		"amount":         t.Amount.String(),
		"balance_deltas": deltas,
	}
}
