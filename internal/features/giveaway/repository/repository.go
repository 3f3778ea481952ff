package repository

import (
	"context"
	"errors"

	"giveaway-engine-backend/internal/features/giveaway/models"
	pmodels "giveaway-engine-backend/internal/features/participant/models"
)

var (
	ErrGiveawayNotFound = errors.New("giveaway not found")
	ErrSlugTaken        = errors.New("slug already in use")
	ErrHasParticipants  = errors.New("giveaway has participants")

	// ErrStatusConflict is returned when a conditional write lost against a
	// concurrent update. Callers decide whether to resubmit.
	ErrStatusConflict = errors.New("giveaway changed concurrently")

	ErrWinnerAlreadySelected = errors.New("winner already selected")
	ErrWrongStatusForWinner  = errors.New("giveaway status does not allow winner selection")
)

// ChooseWinnerFunc picks the winner from a snapshot of all participants taken
// inside the commit transaction. It returns the chosen user id and the size
// of the pool the choice was made from.
type ChooseWinnerFunc func(participants []*pmodels.Participant) (winnerID int64, poolSize int, err error)

// GiveawayRepository owns giveaway records, their lifecycle indexes and the
// winner commit. All check-then-act sequences are single atomic units against
// the store.
type GiveawayRepository interface {
	Create(ctx context.Context, giveaway *models.Giveaway) error
	GetByID(ctx context.Context, id string) (*models.Giveaway, error)
	GetBySlug(ctx context.Context, slug string) (*models.Giveaway, error)

	// Update overwrites the record; prevStatus keeps the status indexes
	// consistent when the patch moved the lifecycle forward.
	Update(ctx context.Context, giveaway *models.Giveaway, prevStatus models.GiveawayStatus) error

	// TransitionStatus advances the lifecycle from exactly `from` to `to`.
	// A concurrent transition surfaces as ErrStatusConflict, which makes
	// time-driven promotion idempotent under concurrent readers.
	TransitionStatus(ctx context.Context, id string, from, to models.GiveawayStatus) error

	// Delete removes a giveaway only while it has no participants.
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, filter models.ListFilter) ([]*models.Giveaway, error)

	// CommitWinner atomically validates the giveaway is selectable, snapshots
	// the participant pool, lets choose pick the winner, and commits
	// status=winner_selected + WinnerID + the participant status flips as one
	// compare-and-swap guarded unit. At most one call per giveaway ever
	// succeeds.
	CommitWinner(ctx context.Context, giveawayID string, mode models.SelectionMode, choose ChooseWinnerFunc) (*models.SelectWinnerResult, error)
}
