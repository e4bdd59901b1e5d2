package wallet

import "testing"

func TestWatcherFanOut(t *testing.T) {
	w := NewWatcher()

	a, cancelA := w.Subscribe(2)
	b, cancelB := w.Subscribe(2)
	defer cancelA()
	defer cancelB()

	w.Notify(Update{Wallet: Wallet{ID: "w1", Balance: 100}})

	for name, ch := range map[string]<-chan Update{"a": a, "b": b} {
		select {
		case u := <-ch:
			if u.Wallet.Balance != 100 {
				t.Errorf("subscriber %s got balance %d, want 100", name, u.Wallet.Balance)
			}
		default:
			t.Errorf("subscriber %s missed the update", name)
		}
	}
}

func TestWatcherDropsWhenSubscriberFull(t *testing.T) {
	w := NewWatcher()

	ch, cancel := w.Subscribe(1)
	defer cancel()

	// Second notify must not block; the slow subscriber loses it.
	w.Notify(Update{Wallet: Wallet{Balance: 1}})
	w.Notify(Update{Wallet: Wallet{Balance: 2}})

	u := <-ch
	if u.Wallet.Balance != 1 {
		t.Errorf("got balance %d, want 1", u.Wallet.Balance)
	}
	select {
	case u := <-ch:
		t.Errorf("unexpected second update with balance %d", u.Wallet.Balance)
	default:
	}
}

func TestWatcherCancelClosesChannel(t *testing.T) {
	w := NewWatcher()

	ch, cancel := w.Subscribe(1)
	cancel()
	cancel() // idempotent

	if _, ok := <-ch; ok {
		t.Error("channel still open after cancel")
	}

	// Notifying with no subscribers is a no-op.
	w.Notify(Update{Wallet: Wallet{Balance: 3}})
}
