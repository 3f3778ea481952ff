package service

import (
	"context"
	"time"

	apperrors "giveaway-engine-backend/internal/common/errors"
	"giveaway-engine-backend/internal/common/validation"
	"giveaway-engine-backend/internal/features/giveaway/models"
	"giveaway-engine-backend/internal/features/giveaway/repository"
	"giveaway-engine-backend/internal/platform/audit"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type giveawayService struct {
	repo         repository.GiveawayRepository
	participants ParticipantCounter
	tasks        RequiredTaskLister
	audit        audit.Logger
}

func NewGiveawayService(
	repo repository.GiveawayRepository,
	participants ParticipantCounter,
	tasks RequiredTaskLister,
	auditLogger audit.Logger,
) GiveawayService {
	return &giveawayService{
		repo:         repo,
		participants: participants,
		tasks:        tasks,
		audit:        auditLogger,
	}
}

func (s *giveawayService) SetRequiredTaskLister(tasks RequiredTaskLister) {
	s.tasks = tasks
}

func (s *giveawayService) Create(ctx context.Context, creatorID int64, input *models.GiveawayCreate) (*models.GiveawayResponse, error) {
	if err := validation.ValidateSlug(input.Slug); err != nil {
		return nil, apperrors.NewValidationError("slug", err.Error())
	}
	if err := validation.ValidateTitle(input.Title); err != nil {
		return nil, apperrors.NewValidationError("title", err.Error())
	}
	if err := validation.ValidateDescription(input.Description); err != nil {
		return nil, apperrors.NewValidationError("description", err.Error())
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, apperrors.NewValidationError("end_date", "must be after start_date")
	}

	now := time.Now()
	status := models.GiveawayStatusUpcoming
	if !input.StartDate.After(now) {
		status = models.GiveawayStatusActive
	}

	giveaway := &models.Giveaway{
		ID:          uuid.New().String(),
		Slug:        input.Slug,
		Title:       input.Title,
		Description: input.Description,
		PrizeName:   input.PrizeName,
		PrizeValue:  input.PrizeValue,
		Status:      status,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		CreatorID:   creatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, giveaway); err != nil {
		if err == repository.ErrSlugTaken {
			return nil, apperrors.NewConflictError("giveaway", "slug already in use")
		}
		return nil, apperrors.NewDatabaseError("create giveaway", err)
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:  creatorID,
		Action:   "giveaway.create",
		Resource: giveaway.ID,
	})

	return s.toResponse(ctx, giveaway), nil
}

func (s *giveawayService) Get(ctx context.Context, idOrSlug string) (*models.GiveawayResponse, error) {
	giveaway, err := s.GetRecord(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, giveaway), nil
}

func (s *giveawayService) GetRecord(ctx context.Context, idOrSlug string) (*models.Giveaway, error) {
	giveaway, err := s.repo.GetByID(ctx, idOrSlug)
	if err == repository.ErrGiveawayNotFound {
		giveaway, err = s.repo.GetBySlug(ctx, idOrSlug)
	}
	if err != nil {
		if err == repository.ErrGiveawayNotFound {
			return nil, apperrors.NewNotFoundError("giveaway", idOrSlug)
		}
		return nil, apperrors.NewDatabaseError("get giveaway", err)
	}

	return s.applyDueTransition(ctx, giveaway), nil
}

// applyDueTransition promotes upcoming->active and active->ended once the
// clock has passed the respective boundary. The compare-and-swap transition
// makes the promotion idempotent: when several readers observe the same due
// giveaway, exactly one write applies and the rest are no-ops.
func (s *giveawayService) applyDueTransition(ctx context.Context, giveaway *models.Giveaway) *models.Giveaway {
	due := giveaway.DueStatus(time.Now())
	if due == giveaway.Status {
		return giveaway
	}

	err := s.repo.TransitionStatus(ctx, giveaway.ID, giveaway.Status, due)
	switch err {
	case nil:
		giveaway.Status = due
	case repository.ErrStatusConflict:
		// Another request already applied the transition; re-read for the
		// committed state.
		if fresh, ferr := s.repo.GetByID(ctx, giveaway.ID); ferr == nil {
			return fresh
		}
	default:
		log.Warn().Err(err).Str("giveaway_id", giveaway.ID).Msg("failed to apply due status transition")
	}
	return giveaway
}

func (s *giveawayService) List(ctx context.Context, filter models.ListFilter) ([]*models.GiveawayResponse, error) {
	giveaways, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list giveaways", err)
	}

	responses := make([]*models.GiveawayResponse, 0, len(giveaways))
	for _, giveaway := range giveaways {
		giveaway = s.applyDueTransition(ctx, giveaway)
		if filter.Status != "" && giveaway.Status != filter.Status {
			continue
		}
		responses = append(responses, s.toResponse(ctx, giveaway))
	}
	return responses, nil
}

func (s *giveawayService) Update(ctx context.Context, adminID int64, id string, input *models.GiveawayUpdate) (*models.GiveawayResponse, error) {
	giveaway, err := s.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	prevStatus := giveaway.Status

	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, apperrors.NewValidationError("status", "unknown status")
		}
		if *input.Status == models.GiveawayStatusWinnerSelected && prevStatus != models.GiveawayStatusWinnerSelected {
			return nil, apperrors.NewValidationError("status", "winner_selected is only reachable through winner selection")
		}
		if !prevStatus.CanTransitionTo(*input.Status) {
			return nil, apperrors.NewValidationError("status", "status cannot move backward")
		}
		giveaway.Status = *input.Status
	}
	if input.Title != nil {
		if err := validation.ValidateTitle(*input.Title); err != nil {
			return nil, apperrors.NewValidationError("title", err.Error())
		}
		giveaway.Title = *input.Title
	}
	if input.Description != nil {
		if err := validation.ValidateDescription(*input.Description); err != nil {
			return nil, apperrors.NewValidationError("description", err.Error())
		}
		giveaway.Description = *input.Description
	}
	if input.PrizeName != nil {
		giveaway.PrizeName = *input.PrizeName
	}
	if input.PrizeValue != nil {
		giveaway.PrizeValue = *input.PrizeValue
	}
	if input.StartDate != nil {
		giveaway.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		giveaway.EndDate = *input.EndDate
	}
	if !giveaway.EndDate.After(giveaway.StartDate) {
		return nil, apperrors.NewValidationError("end_date", "must be after start_date")
	}

	giveaway.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, giveaway, prevStatus); err != nil {
		return nil, apperrors.NewDatabaseError("update giveaway", err)
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:  adminID,
		Action:   "giveaway.update",
		Resource: giveaway.ID,
	})

	return s.toResponse(ctx, giveaway), nil
}

func (s *giveawayService) Delete(ctx context.Context, adminID int64, id string) error {
	giveaway, err := s.GetRecord(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, giveaway.ID); err != nil {
		switch err {
		case repository.ErrHasParticipants:
			return apperrors.NewConflictError("giveaway", "cannot delete a giveaway with participants")
		case repository.ErrGiveawayNotFound:
			return apperrors.NewNotFoundError("giveaway", id)
		case repository.ErrStatusConflict:
			return apperrors.NewConflictError("giveaway", "giveaway changed concurrently")
		}
		return apperrors.NewDatabaseError("delete giveaway", err)
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:  adminID,
		Action:   "giveaway.delete",
		Resource: giveaway.ID,
	})

	return nil
}

func (s *giveawayService) toResponse(ctx context.Context, giveaway *models.Giveaway) *models.GiveawayResponse {
	count, err := s.participants.Count(ctx, giveaway.ID)
	if err != nil {
		log.Warn().Err(err).Str("giveaway_id", giveaway.ID).Msg("failed to count participants")
	}

	return &models.GiveawayResponse{
		ID:                  giveaway.ID,
		Slug:                giveaway.Slug,
		Title:               giveaway.Title,
		Description:         giveaway.Description,
		PrizeName:           giveaway.PrizeName,
		PrizeValue:          giveaway.PrizeValue,
		Status:              giveaway.Status,
		StartDate:           giveaway.StartDate,
		EndDate:             giveaway.EndDate,
		WinnerID:            giveaway.WinnerID,
		WinnerSelectionMode: giveaway.WinnerSelectionMode,
		ParticipantsCount:   count,
		CreatedAt:           giveaway.CreatedAt,
	}
}
