package ingest

import (
	"context"

	"github.com/ikanisa/MomoTerminal-sub001/internal/logger"
)

// ReprocessUncredited retries crediting for records that were saved but
// never settled, e.g. because the ledger was briefly unavailable. The flip
// to walletCredited happens only after a successful apply, so the sweep can
// run repeatedly with no ordering dependency on live processing. Returns
// how many records were newly credited.
func (s *Service) ReprocessUncredited(ctx context.Context, userID string) (int, error) {
	log := logger.FromContext(ctx)

	records, err := s.Records.ListUncredited(ctx, userID)
	if err != nil {
		return 0, err
	}

	credited := 0
	for _, rec := range records {
		if _, _, err := s.credit(ctx, rec); err != nil {
			log.Warn().Err(err).Str("record_id", rec.ID).Msg("recovery credit failed, will retry next sweep")
			continue
		}
		if err := s.Records.MarkCredited(ctx, rec.ID); err != nil {
			log.Error().Err(err).Str("record_id", rec.ID).Msg("recovery credited but could not flag record")
			continue
		}
		credited++
	}

	if credited > 0 {
		log.Info().Int("credited", credited).Str("user_id", userID).Msg("recovery sweep settled records")
	}
	return credited, nil
}
