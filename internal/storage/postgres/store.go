// Package postgres implements storage.Store over pgx. The reference unique
// index and the wallet row lock (SELECT ... FOR UPDATE) are the storage-level
// backstops for the dedup race and the lost-update race.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ikanisa/MomoTerminal-sub001/internal/momo"
	"github.com/ikanisa/MomoTerminal-sub001/internal/storage"
	"github.com/ikanisa/MomoTerminal-sub001/internal/wallet"
)

const uniqueViolation = "23505"

type Store struct {
	Pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

func (s *Store) InsertRecord(ctx context.Context, rec momo.SmsTransactionRecord) error {
	_, err := s.Pool.Exec(ctx, `
INSERT INTO sms_transactions
  (id, user_id, sender, provider, category, amount_minor, currency,
   counterparty, reference, balance_after_minor, raw_message, wallet_credited, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
`, rec.ID, rec.UserID, rec.Sender, string(rec.Provider), string(rec.Category),
		rec.AmountMinorUnits, rec.Currency, rec.Counterparty, rec.Reference,
		rec.BalanceAfterMinorUnits, rec.RawMessage, rec.WalletCredited, rec.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return storage.ErrDuplicateReference
		}
		return err
	}
	return nil
}

const recordColumns = `
id, user_id, sender, provider, category, amount_minor, currency,
counterparty, reference, balance_after_minor, raw_message, wallet_credited, created_at`

func scanRecord(row pgx.Row) (momo.SmsTransactionRecord, error) {
	var rec momo.SmsTransactionRecord
	var provider, category string
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Sender, &provider, &category,
		&rec.AmountMinorUnits, &rec.Currency, &rec.Counterparty, &rec.Reference,
		&rec.BalanceAfterMinorUnits, &rec.RawMessage, &rec.WalletCredited, &rec.CreatedAt)
	if err != nil {
		return momo.SmsTransactionRecord{}, err
	}
	rec.Provider = momo.Provider(provider)
	rec.Category = momo.Category(category)
	return rec, nil
}

func (s *Store) GetRecord(ctx context.Context, id string) (momo.SmsTransactionRecord, error) {
	rec, err := scanRecord(s.Pool.QueryRow(ctx, `
SELECT `+recordColumns+`
FROM sms_transactions
WHERE id = $1
`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return momo.SmsTransactionRecord{}, storage.ErrNotFound
	}
	return rec, err
}

func (s *Store) FindRecordByReference(ctx context.Context, reference string) (momo.SmsTransactionRecord, error) {
	rec, err := scanRecord(s.Pool.QueryRow(ctx, `
SELECT `+recordColumns+`
FROM sms_transactions
WHERE reference = $1
`, reference))
	if errors.Is(err, pgx.ErrNoRows) {
		return momo.SmsTransactionRecord{}, storage.ErrNotFound
	}
	return rec, err
}

func (s *Store) ListRecords(ctx context.Context, userID string, credited *bool, limit int) ([]momo.SmsTransactionRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := s.Pool.Query(ctx, `
SELECT `+recordColumns+`
FROM sms_transactions
WHERE user_id = $1
  AND ($2::boolean IS NULL OR wallet_credited = $2)
ORDER BY created_at DESC
LIMIT $3
`, userID, credited, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRecords(rows)
}

func (s *Store) ListUncredited(ctx context.Context, userID string) ([]momo.SmsTransactionRecord, error) {
	rows, err := s.Pool.Query(ctx, `
SELECT `+recordColumns+`
FROM sms_transactions
WHERE user_id = $1
  AND category = $2
  AND wallet_credited = false
ORDER BY created_at ASC
`, userID, string(momo.CategoryReceived))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRecords(rows)
}

func collectRecords(rows pgx.Rows) ([]momo.SmsTransactionRecord, error) {
	var out []momo.SmsTransactionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) MarkCredited(ctx context.Context, id string) error {
	tag, err := s.Pool.Exec(ctx, `
UPDATE sms_transactions
SET wallet_credited = true
WHERE id = $1
`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) GetOrCreateWallet(ctx context.Context, userID, walletType, currency string) (wallet.Wallet, error) {
	return scanWallet(s.Pool.QueryRow(ctx, `
INSERT INTO token_wallets (user_id, balance, currency, wallet_type, sync_status)
VALUES ($1, 0, $2, $3, $4)
ON CONFLICT (user_id, wallet_type, currency) DO UPDATE
SET updated_at = token_wallets.updated_at
RETURNING id::text, user_id, balance, currency, wallet_type, sync_status, created_at, updated_at
`, userID, currency, walletType, wallet.SyncPending))
}

func (s *Store) GetWallet(ctx context.Context, walletID string) (wallet.Wallet, error) {
	w, err := scanWallet(s.Pool.QueryRow(ctx, `
SELECT id::text, user_id, balance, currency, wallet_type, sync_status, created_at, updated_at
FROM token_wallets
WHERE id = $1::uuid
`, walletID))
	if errors.Is(err, pgx.ErrNoRows) {
		return wallet.Wallet{}, storage.ErrNotFound
	}
	return w, err
}

func scanWallet(row pgx.Row) (wallet.Wallet, error) {
	var w wallet.Wallet
	err := row.Scan(&w.ID, &w.UserID, &w.Balance, &w.Currency, &w.WalletType,
		&w.SyncStatus, &w.CreatedAt, &w.UpdatedAt)
	return w, err
}

// ApplyTransaction updates the wallet balance and appends the ledger entry
// inside one transaction. Both writes commit together or not at all.
func (s *Store) ApplyTransaction(ctx context.Context, walletID string, in storage.ApplyInput) (wallet.Wallet, wallet.Entry, error) {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return wallet.Wallet{}, wallet.Entry{}, err
	}
	defer tx.Rollback(ctx)

	w, err := scanWallet(tx.QueryRow(ctx, `
SELECT id::text, user_id, balance, currency, wallet_type, sync_status, created_at, updated_at
FROM token_wallets
WHERE id = $1::uuid
FOR UPDATE
`, walletID))
	if errors.Is(err, pgx.ErrNoRows) {
		return wallet.Wallet{}, wallet.Entry{}, storage.ErrNotFound
	}
	if err != nil {
		return wallet.Wallet{}, wallet.Entry{}, err
	}

	newBalance := w.Balance + in.AmountDelta
	if newBalance < 0 {
		return wallet.Wallet{}, wallet.Entry{}, storage.ErrInsufficientBalance
	}

	entry := wallet.Entry{
		WalletID:      walletID,
		AmountDelta:   in.AmountDelta,
		Type:          in.Type,
		BalanceBefore: w.Balance,
		BalanceAfter:  newBalance,
		Reference:     in.Reference,
		ReferenceType: in.ReferenceType,
		Description:   in.Description,
		Metadata:      in.Metadata,
	}
	err = tx.QueryRow(ctx, `
INSERT INTO token_transaction_entries
  (wallet_id, amount_delta, type, balance_before, balance_after,
   reference, reference_type, description, metadata)
VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id::text, created_at
`, walletID, in.AmountDelta, in.Type, w.Balance, newBalance,
		in.Reference, in.ReferenceType, in.Description, in.Metadata).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return wallet.Wallet{}, wallet.Entry{}, err
	}

	_, err = tx.Exec(ctx, `
UPDATE token_wallets
SET balance = $2,
    updated_at = now()
WHERE id = $1::uuid
`, walletID, newBalance)
	if err != nil {
		return wallet.Wallet{}, wallet.Entry{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return wallet.Wallet{}, wallet.Entry{}, err
	}

	w.Balance = newBalance
	w.UpdatedAt = entry.CreatedAt
	return w, entry, nil
}

func (s *Store) ListEntries(ctx context.Context, walletID string, limit int) ([]wallet.Entry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := s.Pool.Query(ctx, `
SELECT id::text, wallet_id::text, amount_delta, type, balance_before, balance_after,
       reference, reference_type, description, metadata, created_at
FROM token_transaction_entries
WHERE wallet_id = $1::uuid
ORDER BY created_at DESC
LIMIT $2
`, walletID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []wallet.Entry
	for rows.Next() {
		var e wallet.Entry
		if err := rows.Scan(&e.ID, &e.WalletID, &e.AmountDelta, &e.Type,
			&e.BalanceBefore, &e.BalanceAfter, &e.Reference, &e.ReferenceType,
			&e.Description, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

var _ storage.Store = (*Store)(nil)
