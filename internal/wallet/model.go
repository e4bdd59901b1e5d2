package wallet

import "time"

// WalletType distinguishes wallets a user may hold; one wallet per user
// per type+currency.
const TypeToken = "TOKEN"

// Sync status of the wallet summary relative to upstream consumers.
const (
	SyncPending = "PENDING"
	SyncSynced  = "SYNCED"
)

// Entry types for the append-only ledger.
const (
	EntrySmsCredit    = "SMS_CREDIT"
	EntryManualCredit = "MANUAL_CREDIT"
	EntryDebit        = "DEBIT"
)

// Reference types recorded on ledger entries.
const RefTypeSmsTransaction = "SMS_TRANSACTION"

// Wallet is the mutable per-user balance summary. Balance is integer minor
// units and must always equal the BalanceAfter of the newest ledger entry.
type Wallet struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Balance    int64     `json:"balance"`
	Currency   string    `json:"currency"`
	WalletType string    `json:"wallet_type"`
	SyncStatus string    `json:"sync_status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Entry is one append-only ledger row. BalanceAfter = BalanceBefore +
// AmountDelta holds for every row.
type Entry struct {
	ID            string            `json:"id"`
	WalletID      string            `json:"wallet_id"`
	AmountDelta   int64             `json:"amount_delta"`
	Type          string            `json:"type"`
	BalanceBefore int64             `json:"balance_before"`
	BalanceAfter  int64             `json:"balance_after"`
	Reference     *string           `json:"reference,omitempty"`
	ReferenceType *string           `json:"reference_type,omitempty"`
	Description   *string           `json:"description,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}
