package service

import (
	"context"

	apperrors "giveaway-engine-backend/internal/common/errors"
	"giveaway-engine-backend/internal/features/giveaway/models"
	"giveaway-engine-backend/internal/features/giveaway/repository"
	pmodels "giveaway-engine-backend/internal/features/participant/models"
	"giveaway-engine-backend/internal/platform/audit"
	"giveaway-engine-backend/internal/utils/random"

	"github.com/rs/zerolog/log"
)

// SelectWinner picks exactly one winner for the giveaway. SYSTEM_RANDOM draws
// uniformly from the eligible pool; ADMIN_RANDOM lets the operator name a
// participant directly, deliberately bypassing the eligibility filter. The
// draw and the commit happen inside one atomic store transaction, so two
// concurrent calls can never both succeed.
func (s *giveawayService) SelectWinner(ctx context.Context, adminID int64, giveawayID string, input *models.SelectWinnerInput) (*models.SelectWinnerResult, error) {
	giveaway, err := s.GetRecord(ctx, giveawayID)
	if err != nil {
		return nil, err
	}

	var choose repository.ChooseWinnerFunc
	switch input.Mode {
	case models.SelectionModeSystemRandom:
		requiredIDs, err := s.tasks.RequiredTaskIDs(ctx, giveaway.ID)
		if err != nil {
			return nil, apperrors.NewDatabaseError("list required tasks", err)
		}
		choose = systemRandomChooser(requiredIDs)
	case models.SelectionModeAdminRandom:
		if input.WinnerUserID == nil {
			return nil, apperrors.NewValidationError("winner_user_id", "winner user ID required for admin selection")
		}
		choose = adminChooser(*input.WinnerUserID)
	default:
		return nil, apperrors.NewValidationError("mode", "unknown selection mode")
	}

	result, err := s.repo.CommitWinner(ctx, giveaway.ID, input.Mode, choose)
	if err != nil {
		switch err {
		case repository.ErrWrongStatusForWinner:
			return nil, apperrors.NewForbiddenError("cannot select a winner in the current giveaway status")
		case repository.ErrWinnerAlreadySelected, repository.ErrStatusConflict:
			return nil, apperrors.NewConflictError("giveaway", "winner already selected")
		case repository.ErrGiveawayNotFound:
			return nil, apperrors.NewNotFoundError("giveaway", giveawayID)
		}
		if _, ok := apperrors.AsAppError(err); ok {
			return nil, err
		}
		return nil, apperrors.NewDatabaseError("commit winner", err)
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:  adminID,
		Action:   "giveaway.select_winner",
		Resource: giveaway.ID,
		Details: map[string]interface{}{
			"mode":      string(result.Mode),
			"winner_id": result.WinnerID,
			"pool_size": result.PoolSize,
		},
	})

	log.Info().
		Str("giveaway_id", giveaway.ID).
		Int64("winner_id", result.WinnerID).
		Str("mode", string(result.Mode)).
		Int("pool_size", result.PoolSize).
		Msg("winner selected")

	return result, nil
}

// systemRandomChooser filters the snapshot down to eligible participants and
// draws one uniformly, giving every eligible participant the same 1/poolSize
// selection probability.
func systemRandomChooser(requiredTaskIDs []string) repository.ChooseWinnerFunc {
	return func(participants []*pmodels.Participant) (int64, int, error) {
		pool := make([]*pmodels.Participant, 0, len(participants))
		for _, p := range participants {
			if p.IsEligible(requiredTaskIDs) {
				pool = append(pool, p)
			}
		}

		if len(pool) == 0 {
			return 0, 0, apperrors.NewValidationError("participants", "no eligible participants")
		}

		idx, err := random.PickIndex(len(pool))
		if err != nil {
			return 0, 0, err
		}
		return pool[idx].UserID, len(pool), nil
	}
}

// adminChooser validates the named user is a genuine participant. Eligibility
// is intentionally not checked: the override exists for operators who need to
// award a prize outside strict task completion.
func adminChooser(winnerUserID int64) repository.ChooseWinnerFunc {
	return func(participants []*pmodels.Participant) (int64, int, error) {
		for _, p := range participants {
			if p.UserID == winnerUserID {
				return p.UserID, 1, nil
			}
		}
		return 0, 0, apperrors.NewNotFoundError("participant", winnerUserID)
	}
}
