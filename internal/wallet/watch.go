package wallet

import "sync"

// Update is one observable wallet mutation: the post-apply wallet summary
// together with the ledger entry that produced it.
type Update struct {
	Wallet Wallet
	Entry  Entry
}

// Watcher fans wallet updates out to in-process subscribers over channels,
// decoupled from any transport. Sends never block the ledger path: a
// subscriber that falls behind misses updates rather than stalling writes,
// and can always re-read committed state.
type Watcher struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Update
}

func NewWatcher() *Watcher {
	return &Watcher{subs: make(map[int]chan Update)}
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called to release the channel.
func (w *Watcher) Subscribe(buffer int) (<-chan Update, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Update, buffer)

	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.subs[id] = ch
	w.mu.Unlock()

	cancel := func() {
		w.mu.Lock()
		if c, ok := w.subs[id]; ok {
			delete(w.subs, id)
			close(c)
		}
		w.mu.Unlock()
	}
	return ch, cancel
}

// Notify delivers an update to every subscriber, dropping it for any whose
// buffer is full.
func (w *Watcher) Notify(u Update) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, ch := range w.subs {
		select {
		case ch <- u:
		default:
		}
	}
}
