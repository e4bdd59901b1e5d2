// Package ingest runs the message pipeline: classify, extract, build,
// dedup-check, persist, credit. One message is one sequential unit of work;
// messages for different users and wallets may run concurrently.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ikanisa/MomoTerminal-sub001/internal/audit"
	"github.com/ikanisa/MomoTerminal-sub001/internal/ledger"
	"github.com/ikanisa/MomoTerminal-sub001/internal/logger"
	"github.com/ikanisa/MomoTerminal-sub001/internal/momo"
	"github.com/ikanisa/MomoTerminal-sub001/internal/storage"
	"github.com/ikanisa/MomoTerminal-sub001/internal/wallet"
)

type Service struct {
	Classifier *momo.Classifier
	Extractor  *momo.Extractor
	Records    storage.RecordStore
	Ledger     *ledger.Ledger

	// AuditDB is optional; nil disables processing audit rows (tests).
	AuditDB *pgxpool.Pool
}

func NewService(classifier *momo.Classifier, extractor *momo.Extractor, records storage.RecordStore, led *ledger.Ledger) *Service {
	return &Service{
		Classifier: classifier,
		Extractor:  extractor,
		Records:    records,
		Ledger:     led,
	}
}

// Process runs the full pipeline for one raw message. Parsing ambiguity is
// resolved inside the extractor with deterministic tie-breaks and never
// surfaces as an error. Ledger failures come back as typed results so a bad
// message cannot take down ingestion of the next one. The returned error is
// non-nil only when storage itself is unavailable, in which case the caller
// should surface it and let the upstream redeliver the message.
func (s *Service) Process(ctx context.Context, userID string, raw momo.RawMessage) (ProcessResult, error) {
	log := logger.FromContext(ctx)

	if !s.Classifier.IsMoneyMessage(raw.Sender, raw.Body) {
		return notMoneyMessage(), nil
	}

	parsed, ok := s.Extractor.Extract(raw.Sender, raw.Body)
	if !ok {
		log.Debug().Str("sender", raw.Sender).Msg("money message with no parseable amount, dropped")
		return parseFailed(), nil
	}

	// Dedup gate. A nil reference skips deduplication entirely: redelivery
	// of a reference-less transaction will be credited again. Accepted
	// risk, kept deliberately instead of guessing a content-hash key.
	if parsed.Reference != nil {
		existing, err := s.Records.FindRecordByReference(ctx, *parsed.Reference)
		switch {
		case err == nil:
			return duplicate(*existing.Reference), nil
		case !errors.Is(err, storage.ErrNotFound):
			return ProcessResult{}, fmt.Errorf("dedup lookup: %w", err)
		}
	}

	rec := momo.BuildRecord(userID, raw.Sender, parsed)
	if err := s.Records.InsertRecord(ctx, rec); err != nil {
		if errors.Is(err, storage.ErrDuplicateReference) {
			// Lost the dedup-then-insert race to a concurrent delivery.
			return duplicate(deref(parsed.Reference)), nil
		}
		return ProcessResult{}, fmt.Errorf("insert record: %w", err)
	}

	result := s.settle(ctx, rec)
	s.writeAudit(ctx, userID, rec.ID, result)
	return result, nil
}

// settle credits the wallet for a freshly persisted record. Only Received
// transactions credit tokens; everything else stays a Saved record.
func (s *Service) settle(ctx context.Context, rec momo.SmsTransactionRecord) ProcessResult {
	if rec.Category != momo.CategoryReceived {
		return saved(rec.ID)
	}

	log := logger.FromContext(ctx)

	w, entry, err := s.credit(ctx, rec)
	if err != nil {
		log.Warn().Err(err).Str("record_id", rec.ID).Msg("wallet credit failed, record left uncredited")
		return creditFailed(rec.ID, err.Error())
	}

	if err := s.Records.MarkCredited(ctx, rec.ID); err != nil {
		// The credit is committed; the flag flip is what makes recovery
		// retries idempotent, so a miss here means this record may be
		// credited again by the scanner.
		log.Error().Err(err).Str("record_id", rec.ID).Msg("credited but could not flag record as settled")
	}

	return creditedWallet(rec.ID, entry.AmountDelta, w.Balance)
}

// credit applies one SMS credit for a record through the ledger.
func (s *Service) credit(ctx context.Context, rec momo.SmsTransactionRecord) (wallet.Wallet, wallet.Entry, error) {
	w, err := s.Ledger.GetOrCreateWallet(ctx, rec.UserID, rec.Currency)
	if err != nil {
		return wallet.Wallet{}, wallet.Entry{}, fmt.Errorf("get wallet: %w", err)
	}

	refType := wallet.RefTypeSmsTransaction
	desc := fmt.Sprintf("SMS credit from %s", rec.Sender)
	return s.Ledger.ApplyTransaction(ctx, w.ID, storage.ApplyInput{
		AmountDelta:   rec.AmountMinorUnits,
		Type:          wallet.EntrySmsCredit,
		Reference:     rec.Reference,
		ReferenceType: &refType,
		Description:   &desc,
		Metadata: map[string]string{
			"provider":  string(rec.Provider),
			"category":  string(rec.Category),
			"sender":    rec.Sender,
			"record_id": rec.ID,
		},
	})
}

// writeAudit records the processing outcome, best-effort.
func (s *Service) writeAudit(ctx context.Context, userID, recordID string, result ProcessResult) {
	if s.AuditDB == nil {
		return
	}
	meta, _ := json.Marshal(result)
	_ = audit.Write(ctx, s.AuditDB, audit.Entry{
		UserID:     &userID,
		Action:     "sms_processed",
		EntityType: "sms_transaction",
		EntityID:   &recordID,
		Metadata:   meta,
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
