// Package memory is an in-memory implementation of storage.Store,
// substitutable for the postgres store in tests. It mirrors the postgres
// constraints: unique reference on records, per-wallet serialization of
// ApplyTransaction, one wallet per user+type+currency.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ikanisa/MomoTerminal-sub001/internal/momo"
	"github.com/ikanisa/MomoTerminal-sub001/internal/storage"
	"github.com/ikanisa/MomoTerminal-sub001/internal/wallet"
)

type Store struct {
	mu         sync.Mutex
	records    map[string]momo.SmsTransactionRecord // by id
	references map[string]string                    // reference -> record id
	wallets    map[string]wallet.Wallet             // by id
	walletKeys map[string]string                    // user+type+currency -> wallet id
	entries    map[string][]wallet.Entry            // wallet id -> ordered entries

	walletMu map[string]*sync.Mutex // per-wallet apply serialization
}

func NewStore() *Store {
	return &Store{
		records:    make(map[string]momo.SmsTransactionRecord),
		references: make(map[string]string),
		wallets:    make(map[string]wallet.Wallet),
		walletKeys: make(map[string]string),
		entries:    make(map[string][]wallet.Entry),
		walletMu:   make(map[string]*sync.Mutex),
	}
}

func walletKey(userID, walletType, currency string) string {
	return userID + "|" + walletType + "|" + currency
}

func (s *Store) InsertRecord(ctx context.Context, rec momo.SmsTransactionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.Reference != nil {
		if _, exists := s.references[*rec.Reference]; exists {
			return storage.ErrDuplicateReference
		}
		s.references[*rec.Reference] = rec.ID
	}
	s.records[rec.ID] = rec
	return nil
}

func (s *Store) GetRecord(ctx context.Context, id string) (momo.SmsTransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return momo.SmsTransactionRecord{}, storage.ErrNotFound
	}
	return rec, nil
}

func (s *Store) FindRecordByReference(ctx context.Context, reference string) (momo.SmsTransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.references[reference]
	if !ok {
		return momo.SmsTransactionRecord{}, storage.ErrNotFound
	}
	return s.records[id], nil
}

func (s *Store) ListRecords(ctx context.Context, userID string, credited *bool, limit int) ([]momo.SmsTransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []momo.SmsTransactionRecord
	for _, rec := range s.records {
		if rec.UserID != userID {
			continue
		}
		if credited != nil && rec.WalletCredited != *credited {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ListUncredited(ctx context.Context, userID string) ([]momo.SmsTransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []momo.SmsTransactionRecord
	for _, rec := range s.records {
		if rec.UserID == userID && rec.Category == momo.CategoryReceived && !rec.WalletCredited {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) MarkCredited(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return storage.ErrNotFound
	}
	rec.WalletCredited = true
	s.records[id] = rec
	return nil
}

func (s *Store) GetOrCreateWallet(ctx context.Context, userID, walletType, currency string) (wallet.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := walletKey(userID, walletType, currency)
	if id, ok := s.walletKeys[key]; ok {
		return s.wallets[id], nil
	}

	now := time.Now().UTC()
	w := wallet.Wallet{
		ID:         uuid.NewString(),
		UserID:     userID,
		Balance:    0,
		Currency:   currency,
		WalletType: walletType,
		SyncStatus: wallet.SyncPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.wallets[w.ID] = w
	s.walletKeys[key] = w.ID
	return w, nil
}

func (s *Store) GetWallet(ctx context.Context, walletID string) (wallet.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wallets[walletID]
	if !ok {
		return wallet.Wallet{}, storage.ErrNotFound
	}
	return w, nil
}

// lockWallet returns the mutex serializing applies for one wallet,
// creating it on first use.
func (s *Store) lockWallet(walletID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.walletMu[walletID]; !ok {
		s.walletMu[walletID] = &sync.Mutex{}
	}
	return s.walletMu[walletID]
}

func (s *Store) ApplyTransaction(ctx context.Context, walletID string, in storage.ApplyInput) (wallet.Wallet, wallet.Entry, error) {
	mu := s.lockWallet(walletID)
	mu.Lock()
	defer mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wallets[walletID]
	if !ok {
		return wallet.Wallet{}, wallet.Entry{}, storage.ErrNotFound
	}

	newBalance := w.Balance + in.AmountDelta
	if newBalance < 0 {
		return wallet.Wallet{}, wallet.Entry{}, storage.ErrInsufficientBalance
	}

	entry := wallet.Entry{
		ID:            uuid.NewString(),
		WalletID:      walletID,
		AmountDelta:   in.AmountDelta,
		Type:          in.Type,
		BalanceBefore: w.Balance,
		BalanceAfter:  newBalance,
		Reference:     in.Reference,
		ReferenceType: in.ReferenceType,
		Description:   in.Description,
		Metadata:      in.Metadata,
		CreatedAt:     time.Now().UTC(),
	}

	w.Balance = newBalance
	w.UpdatedAt = entry.CreatedAt
	s.wallets[walletID] = w
	s.entries[walletID] = append(s.entries[walletID], entry)

	return w, entry, nil
}

func (s *Store) ListEntries(ctx context.Context, walletID string, limit int) ([]wallet.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.entries[walletID]
	out := make([]wallet.Entry, len(entries))
	copy(out, entries)
	// newest first, matching the postgres query
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ storage.Store = (*Store)(nil)
