package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ikanisa/MomoTerminal-sub001/internal/storage"
	"github.com/ikanisa/MomoTerminal-sub001/internal/storage/memory"
	"github.com/ikanisa/MomoTerminal-sub001/internal/wallet"
)

func newTestLedger() (*Ledger, *memory.Store, *wallet.Watcher) {
	store := memory.NewStore()
	watcher := wallet.NewWatcher()
	return New(store, watcher, nil, "wallet_credited"), store, watcher
}

func TestApplyTransactionLedgerInvariant(t *testing.T) {
	led, _, _ := newTestLedger()
	ctx := context.Background()

	w, err := led.GetOrCreateWallet(ctx, "user-1", "GHS")
	if err != nil {
		t.Fatalf("GetOrCreateWallet: %v", err)
	}
	if w.Balance != 0 {
		t.Fatalf("new wallet balance = %d, want 0", w.Balance)
	}

	deltas := []int64{5000, 1200, -300, 2500}
	for _, d := range deltas {
		typ := wallet.EntrySmsCredit
		if d < 0 {
			typ = wallet.EntryDebit
		}
		if _, _, err := led.ApplyTransaction(ctx, w.ID, storage.ApplyInput{AmountDelta: d, Type: typ}); err != nil {
			t.Fatalf("ApplyTransaction(%d): %v", d, err)
		}
	}

	entries, err := led.ListEntries(ctx, w.ID, 0)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(entries) != len(deltas) {
		t.Fatalf("entries = %d, want %d", len(entries), len(deltas))
	}
	for _, e := range entries {
		if e.BalanceAfter != e.BalanceBefore+e.AmountDelta {
			t.Errorf("entry %s: balanceAfter %d != balanceBefore %d + delta %d",
				e.ID, e.BalanceAfter, e.BalanceBefore, e.AmountDelta)
		}
	}

	// The mutable summary must equal the newest entry's balanceAfter.
	got, err := led.GetWallet(ctx, w.ID)
	if err != nil {
		t.Fatalf("GetWallet: %v", err)
	}
	if got.Balance != entries[0].BalanceAfter {
		t.Errorf("wallet balance %d != latest entry balanceAfter %d", got.Balance, entries[0].BalanceAfter)
	}
	if got.Balance != 8400 {
		t.Errorf("wallet balance = %d, want 8400", got.Balance)
	}
}

func TestApplyTransactionInsufficientBalance(t *testing.T) {
	led, _, _ := newTestLedger()
	ctx := context.Background()

	w, err := led.GetOrCreateWallet(ctx, "user-1", "GHS")
	if err != nil {
		t.Fatalf("GetOrCreateWallet: %v", err)
	}
	if _, _, err := led.ApplyTransaction(ctx, w.ID, storage.ApplyInput{AmountDelta: 1000, Type: wallet.EntrySmsCredit}); err != nil {
		t.Fatalf("credit: %v", err)
	}

	_, _, err = led.ApplyTransaction(ctx, w.ID, storage.ApplyInput{AmountDelta: -1500, Type: wallet.EntryDebit})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}

	// No partial state: balance untouched, no extra entry.
	got, _ := led.GetWallet(ctx, w.ID)
	if got.Balance != 1000 {
		t.Errorf("balance = %d, want 1000", got.Balance)
	}
	entries, _ := led.ListEntries(ctx, w.ID, 0)
	if len(entries) != 1 {
		t.Errorf("entries = %d, want 1", len(entries))
	}
}

func TestApplyTransactionZeroDelta(t *testing.T) {
	led, _, _ := newTestLedger()
	ctx := context.Background()

	w, _ := led.GetOrCreateWallet(ctx, "user-1", "GHS")
	if _, _, err := led.ApplyTransaction(ctx, w.ID, storage.ApplyInput{AmountDelta: 0, Type: wallet.EntrySmsCredit}); !errors.Is(err, ErrZeroDelta) {
		t.Fatalf("err = %v, want ErrZeroDelta", err)
	}
}

func TestConcurrentCreditsSameWallet(t *testing.T) {
	led, _, _ := newTestLedger()
	ctx := context.Background()

	w, err := led.GetOrCreateWallet(ctx, "user-1", "GHS")
	if err != nil {
		t.Fatalf("GetOrCreateWallet: %v", err)
	}

	const workers = 50
	const delta = int64(100)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, _, err := led.ApplyTransaction(ctx, w.ID, storage.ApplyInput{AmountDelta: delta, Type: wallet.EntrySmsCredit}); err != nil {
				t.Errorf("ApplyTransaction: %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := led.GetWallet(ctx, w.ID)
	if got.Balance != workers*delta {
		t.Errorf("balance = %d, want %d: lost update under concurrency", got.Balance, workers*delta)
	}

	entries, _ := led.ListEntries(ctx, w.ID, 0)
	if len(entries) != workers {
		t.Fatalf("entries = %d, want %d", len(entries), workers)
	}
	// Entries come newest first; walking backwards they must chain.
	for i := len(entries) - 1; i > 0; i-- {
		if entries[i-1].BalanceBefore != entries[i].BalanceAfter {
			t.Fatalf("ledger chain broken between entries %d and %d", i, i-1)
		}
	}
}

func TestWatcherReceivesUpdates(t *testing.T) {
	led, _, watcher := newTestLedger()
	ctx := context.Background()

	updates, cancel := watcher.Subscribe(4)
	defer cancel()

	w, _ := led.GetOrCreateWallet(ctx, "user-1", "GHS")
	if _, _, err := led.ApplyTransaction(ctx, w.ID, storage.ApplyInput{AmountDelta: 700, Type: wallet.EntrySmsCredit}); err != nil {
		t.Fatalf("ApplyTransaction: %v", err)
	}

	select {
	case u := <-updates:
		if u.Wallet.Balance != 700 || u.Entry.AmountDelta != 700 {
			t.Errorf("update = %+v, want balance 700 delta 700", u)
		}
	default:
		t.Fatal("expected a buffered wallet update")
	}
}
