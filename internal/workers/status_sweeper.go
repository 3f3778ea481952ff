package workers

import (
	"context"
	"time"

	"giveaway-engine-backend/internal/features/giveaway/models"
	giveawayservice "giveaway-engine-backend/internal/features/giveaway/service"

	"github.com/rs/zerolog/log"
)

const sweepInterval = time.Minute

// StatusSweeper periodically promotes giveaways whose start or end date has
// passed. Reads already apply due transitions lazily; the sweeper exists so
// a giveaway nobody looks at still moves forward on time.
type StatusSweeper struct {
	service giveawayservice.GiveawayService
}

func NewStatusSweeper(service giveawayservice.GiveawayService) *StatusSweeper {
	return &StatusSweeper{service: service}
}

// Start blocks until ctx is cancelled.
func (w *StatusSweeper) Start(ctx context.Context) {
	log.Info().Dur("interval", sweepInterval).Msg("starting status sweeper")

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("stopping status sweeper")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *StatusSweeper) sweep(ctx context.Context) {
	// Listing applies the compare-and-swap transition per due giveaway, so
	// the sweep itself needs no extra writes. Upcoming and active are the
	// only statuses the clock can move.
	for _, status := range []models.GiveawayStatus{models.GiveawayStatusUpcoming, models.GiveawayStatusActive} {
		if _, err := w.service.List(ctx, models.ListFilter{Status: status}); err != nil {
			log.Warn().Err(err).Str("status", string(status)).Msg("status sweep failed")
		}
	}
}
