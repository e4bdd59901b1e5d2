// Package ledger owns every balance-changing write to a token wallet.
package ledger

import (
	"context"
	"errors"
	"sync"

	"github.com/ikanisa/MomoTerminal-sub001/internal/events"
	"github.com/ikanisa/MomoTerminal-sub001/internal/storage"
	"github.com/ikanisa/MomoTerminal-sub001/internal/wallet"
)

var (
	ErrInsufficientBalance = storage.ErrInsufficientBalance
	ErrZeroDelta           = errors.New("amount delta must be non-zero")
)

// Ledger applies balance-changing entries to wallets. Applies to the same
// wallet are serialized through a per-wallet mutex on top of the store's
// own row locking, so two concurrent credits can never both read the same
// stale balance. Different wallets proceed in parallel.
type Ledger struct {
	store     storage.WalletStore
	watcher   *wallet.Watcher
	publisher events.Publisher
	topic     string

	muMap map[string]*sync.Mutex
	mapMu sync.Mutex
}

func New(store storage.WalletStore, watcher *wallet.Watcher, publisher events.Publisher, topic string) *Ledger {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Ledger{
		store:     store,
		watcher:   watcher,
		publisher: publisher,
		topic:     topic,
		muMap:     make(map[string]*sync.Mutex),
	}
}

func (l *Ledger) walletLock(walletID string) *sync.Mutex {
	l.mapMu.Lock()
	defer l.mapMu.Unlock()

	if _, ok := l.muMap[walletID]; !ok {
		l.muMap[walletID] = &sync.Mutex{}
	}
	return l.muMap[walletID]
}

// GetOrCreateWallet lazily creates a zero-balance token wallet. Crediting a
// user who has no wallet yet is not an error.
func (l *Ledger) GetOrCreateWallet(ctx context.Context, userID, currency string) (wallet.Wallet, error) {
	return l.store.GetOrCreateWallet(ctx, userID, wallet.TypeToken, currency)
}

// ApplyTransaction reads the wallet balance, computes the new one and
// appends the ledger entry, all in one atomic unit inside the store.
// A delta that would drive the balance negative fails with
// ErrInsufficientBalance and mutates nothing.
func (l *Ledger) ApplyTransaction(ctx context.Context, walletID string, in storage.ApplyInput) (wallet.Wallet, wallet.Entry, error) {
	if in.AmountDelta == 0 {
		return wallet.Wallet{}, wallet.Entry{}, ErrZeroDelta
	}

	mu := l.walletLock(walletID)
	mu.Lock()
	defer mu.Unlock()

	w, entry, err := l.store.ApplyTransaction(ctx, walletID, in)
	if err != nil {
		return wallet.Wallet{}, wallet.Entry{}, err
	}

	if l.watcher != nil {
		l.watcher.Notify(wallet.Update{Wallet: w, Entry: entry})
	}
	if in.AmountDelta > 0 {
		// Publish failures are not the caller's problem: the credit is
		// committed and consumers can re-read state.
		_ = l.publisher.Publish(l.topic, events.WalletCredited{
			WalletID:    w.ID,
			UserID:      w.UserID,
			AmountDelta: entry.AmountDelta,
			NewBalance:  entry.BalanceAfter,
			Currency:    w.Currency,
			Reference:   entry.Reference,
			EntryID:     entry.ID,
			OccurredAt:  entry.CreatedAt,
		})
	}

	return w, entry, nil
}

// GetWallet returns the current wallet summary.
func (l *Ledger) GetWallet(ctx context.Context, walletID string) (wallet.Wallet, error) {
	return l.store.GetWallet(ctx, walletID)
}

// ListEntries returns the newest ledger entries for a wallet.
func (l *Ledger) ListEntries(ctx context.Context, walletID string, limit int) ([]wallet.Entry, error) {
	return l.store.ListEntries(ctx, walletID, limit)
}
