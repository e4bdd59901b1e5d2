package events

import "time"

// Publisher delivers domain events to external consumers. Publishing is
// best-effort relative to the ledger: a failed publish never rolls back a
// committed credit.
type Publisher interface {
	Publish(topic string, event any) error
}

// WalletCredited is emitted after a ledger apply commits.
type WalletCredited struct {
	WalletID    string    `json:"wallet_id"`
	UserID      string    `json:"user_id"`
	AmountDelta int64     `json:"amount_delta"`
	NewBalance  int64     `json:"new_balance"`
	Currency    string    `json:"currency"`
	Reference   *string   `json:"reference,omitempty"`
	EntryID     string    `json:"entry_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NoopPublisher drops events; used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(topic string, event any) error { return nil }
