package storage

import (
	"context"
	"errors"

	"github.com/ikanisa/MomoTerminal-sub001/internal/momo"
	"github.com/ikanisa/MomoTerminal-sub001/internal/wallet"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrDuplicateReference is the storage-level backstop for the
	// dedup-then-insert race: two concurrent inserts of the same reference
	// cannot both commit.
	ErrDuplicateReference = errors.New("duplicate reference")
	// ErrInsufficientBalance means the apply would drive the balance
	// negative; nothing was mutated.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// ApplyInput describes one balance-changing ledger entry to apply.
type ApplyInput struct {
	AmountDelta   int64
	Type          string
	Reference     *string
	ReferenceType *string
	Description   *string
	Metadata      map[string]string
}

// RecordStore persists SMS transaction records, indexed by reference for
// the deduplication gate.
type RecordStore interface {
	InsertRecord(ctx context.Context, rec momo.SmsTransactionRecord) error
	GetRecord(ctx context.Context, id string) (momo.SmsTransactionRecord, error)
	FindRecordByReference(ctx context.Context, reference string) (momo.SmsTransactionRecord, error)
	ListRecords(ctx context.Context, userID string, credited *bool, limit int) ([]momo.SmsTransactionRecord, error)
	// ListUncredited returns Received records not yet settled, oldest first.
	ListUncredited(ctx context.Context, userID string) ([]momo.SmsTransactionRecord, error)
	// MarkCredited flips walletCredited false -> true. Monotonic, one-way.
	MarkCredited(ctx context.Context, id string) error
}

// WalletStore persists token wallets and their append-only ledger.
// ApplyTransaction must update the wallet balance and append the entry in a
// single atomic unit: a partial write must be unobservable.
type WalletStore interface {
	GetOrCreateWallet(ctx context.Context, userID, walletType, currency string) (wallet.Wallet, error)
	GetWallet(ctx context.Context, walletID string) (wallet.Wallet, error)
	ApplyTransaction(ctx context.Context, walletID string, in ApplyInput) (wallet.Wallet, wallet.Entry, error)
	ListEntries(ctx context.Context, walletID string, limit int) ([]wallet.Entry, error)
}

// Store is the full persistence surface of the pipeline.
type Store interface {
	RecordStore
	WalletStore
}
