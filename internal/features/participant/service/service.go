package service

import (
	"context"
	"time"

	apperrors "giveaway-engine-backend/internal/common/errors"
	gmodels "giveaway-engine-backend/internal/features/giveaway/models"
	"giveaway-engine-backend/internal/features/participant/models"
	"giveaway-engine-backend/internal/features/participant/repository"
	"giveaway-engine-backend/internal/utils/random"

	"github.com/rs/zerolog/log"
)

const (
	inviteCodeLength = 8

	// Collisions on an 8-char code are vanishingly rare; the retry bound
	// exists so a broken store cannot loop forever.
	maxInviteCodeAttempts = 3
)

// GiveawayProvider looks up giveaways for membership checks.
type GiveawayProvider interface {
	GetRecord(ctx context.Context, idOrSlug string) (*gmodels.Giveaway, error)
}

// RequiredTaskLister exposes the required task ids used to derive eligibility.
type RequiredTaskLister interface {
	RequiredTaskIDs(ctx context.Context, giveawayID string) ([]string, error)
}

// ParticipantService is the registry of per-user participation records.
type ParticipantService interface {
	Join(ctx context.Context, giveawayID string, userID int64) (*models.ParticipantResponse, error)
	Get(ctx context.Context, giveawayID string, userID int64) (*models.ParticipantResponse, error)
	List(ctx context.Context, giveawayID string, filter models.ParticipantFilter) ([]*models.ParticipantResponse, int, error)
	Count(ctx context.Context, giveawayID string) (int64, error)
}

type participantService struct {
	repo      repository.ParticipantRepository
	giveaways GiveawayProvider
	tasks     RequiredTaskLister
}

func NewParticipantService(repo repository.ParticipantRepository, giveaways GiveawayProvider, tasks RequiredTaskLister) ParticipantService {
	return &participantService{
		repo:      repo,
		giveaways: giveaways,
		tasks:     tasks,
	}
}

func (s *participantService) Join(ctx context.Context, giveawayID string, userID int64) (*models.ParticipantResponse, error) {
	giveaway, err := s.giveaways.GetRecord(ctx, giveawayID)
	if err != nil {
		return nil, err
	}

	if giveaway.Status != gmodels.GiveawayStatusActive {
		return nil, apperrors.NewForbiddenError("giveaway is not open for joining")
	}

	for attempt := 0; attempt < maxInviteCodeAttempts; attempt++ {
		code, err := random.Code(inviteCodeLength)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to generate invite code")
		}

		participant := &models.Participant{
			GiveawayID:     giveaway.ID,
			UserID:         userID,
			Status:         models.ParticipantStatusJoined,
			Points:         0,
			InviteCode:     code,
			InviteCount:    0,
			CompletedTasks: []string{},
			JoinedAt:       time.Now(),
		}

		err = s.repo.Create(ctx, participant)
		switch err {
		case nil:
			log.Debug().Str("giveaway_id", giveaway.ID).Int64("user_id", userID).Msg("participant joined")
			return s.toResponse(ctx, participant), nil
		case repository.ErrAlreadyJoined:
			return nil, apperrors.NewConflictError("participant", "already joined this giveaway")
		case repository.ErrInviteCodeTaken:
			continue
		default:
			return nil, apperrors.NewDatabaseError("join giveaway", err)
		}
	}

	return nil, apperrors.New(apperrors.ErrCodeInternal, "failed to allocate a unique invite code")
}

// Get returns the participation record, or nil without error when the user
// has not joined. Callers use it for status checks.
func (s *participantService) Get(ctx context.Context, giveawayID string, userID int64) (*models.ParticipantResponse, error) {
	giveaway, err := s.giveaways.GetRecord(ctx, giveawayID)
	if err != nil {
		return nil, err
	}

	participant, err := s.repo.Get(ctx, giveaway.ID, userID)
	if err != nil {
		if err == repository.ErrParticipantNotFound {
			return nil, nil
		}
		return nil, apperrors.NewDatabaseError("get participant", err)
	}

	return s.toResponse(ctx, participant), nil
}

func (s *participantService) List(ctx context.Context, giveawayID string, filter models.ParticipantFilter) ([]*models.ParticipantResponse, int, error) {
	giveaway, err := s.giveaways.GetRecord(ctx, giveawayID)
	if err != nil {
		return nil, 0, err
	}

	participants, total, err := s.repo.List(ctx, giveaway.ID, filter)
	if err != nil {
		return nil, 0, apperrors.NewDatabaseError("list participants", err)
	}

	requiredIDs := s.requiredTaskIDs(ctx, giveaway.ID)
	responses := make([]*models.ParticipantResponse, len(participants))
	for i, participant := range participants {
		responses[i] = toResponseWith(participant, requiredIDs)
	}
	return responses, total, nil
}

// Count is the public-safe aggregate: a number, no PII.
func (s *participantService) Count(ctx context.Context, giveawayID string) (int64, error) {
	count, err := s.repo.Count(ctx, giveawayID)
	if err != nil {
		return 0, apperrors.NewDatabaseError("count participants", err)
	}
	return count, nil
}

func (s *participantService) requiredTaskIDs(ctx context.Context, giveawayID string) []string {
	requiredIDs, err := s.tasks.RequiredTaskIDs(ctx, giveawayID)
	if err != nil {
		log.Warn().Err(err).Str("giveaway_id", giveawayID).Msg("failed to load required tasks")
		return nil
	}
	return requiredIDs
}

func (s *participantService) toResponse(ctx context.Context, participant *models.Participant) *models.ParticipantResponse {
	return toResponseWith(participant, s.requiredTaskIDs(ctx, participant.GiveawayID))
}

func toResponseWith(participant *models.Participant, requiredTaskIDs []string) *models.ParticipantResponse {
	return &models.ParticipantResponse{
		GiveawayID:     participant.GiveawayID,
		UserID:         participant.UserID,
		Status:         participant.Status,
		Points:         participant.Points,
		InviteCode:     participant.InviteCode,
		InviteCount:    participant.InviteCount,
		CompletedTasks: participant.CompletedTasks,
		Eligible:       participant.IsEligible(requiredTaskIDs),
		JoinedAt:       participant.JoinedAt,
	}
}
