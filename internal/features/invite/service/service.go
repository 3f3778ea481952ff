package service

import (
	"context"

	"giveaway-engine-backend/internal/common/config"
	apperrors "giveaway-engine-backend/internal/common/errors"
	gmodels "giveaway-engine-backend/internal/features/giveaway/models"
	"giveaway-engine-backend/internal/features/invite/models"
	prepository "giveaway-engine-backend/internal/features/participant/repository"
	"giveaway-engine-backend/internal/platform/audit"

	"github.com/rs/zerolog/log"
)

// GiveawayProvider looks up giveaways for state checks.
type GiveawayProvider interface {
	GetRecord(ctx context.Context, idOrSlug string) (*gmodels.Giveaway, error)
}

// InviteService credits referrals and reports invite standings.
type InviteService interface {
	ProcessInvite(ctx context.Context, giveawayID string, inviteeID int64, code string) (*models.InviteRedeemResult, error)
	GetInviteStats(ctx context.Context, giveawayID string, userID int64) (*models.InviteStats, error)
}

type inviteService struct {
	participants prepository.ParticipantRepository
	giveaways    GiveawayProvider
	cfg          *config.Config
	audit        audit.Logger
}

func NewInviteService(
	participants prepository.ParticipantRepository,
	giveaways GiveawayProvider,
	cfg *config.Config,
	auditLogger audit.Logger,
) InviteService {
	return &inviteService{
		participants: participants,
		giveaways:    giveaways,
		cfg:          cfg,
		audit:        auditLogger,
	}
}

// ProcessInvite credits the referrer behind code and grants the invitee their
// bonus. Each invitee is credited at most once per giveaway and the referrer
// stops earning once the configured cap is reached.
func (s *inviteService) ProcessInvite(ctx context.Context, giveawayID string, inviteeID int64, code string) (*models.InviteRedeemResult, error) {
	giveaway, err := s.giveaways.GetRecord(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	if giveaway.Status != gmodels.GiveawayStatusActive {
		return nil, apperrors.NewForbiddenError("giveaway is not active")
	}

	ref, err := s.participants.ResolveInviteCode(ctx, code)
	if err != nil {
		if err == prepository.ErrInviteCodeNotFound {
			return nil, apperrors.NewNotFoundError("invite code", code)
		}
		return nil, apperrors.NewDatabaseError("resolve invite code", err)
	}

	if ref.GiveawayID != giveaway.ID {
		return nil, apperrors.NewValidationError("code", "invite code belongs to another giveaway")
	}
	if ref.UserID == inviteeID {
		return nil, apperrors.NewValidationError("code", "cannot redeem your own invite code")
	}

	bonuses := s.cfg.Giveaway
	err = s.participants.CreditInvite(ctx, giveaway.ID, ref.UserID, inviteeID,
		bonuses.InviteCap, bonuses.InviteReferrerBonus, bonuses.InviteInviteeBonus)
	if err != nil {
		switch err {
		case prepository.ErrParticipantNotFound:
			return nil, apperrors.NewValidationError("user", "must join the giveaway before redeeming an invite")
		case prepository.ErrInviteAlreadyCredited:
			return nil, apperrors.NewConflictError("invite", "already redeemed an invite for this giveaway")
		case prepository.ErrInviteCapReached:
			return nil, apperrors.NewCapacityError("invites", bonuses.InviteCap)
		case prepository.ErrConcurrentUpdate:
			return nil, apperrors.NewConflictError("invite", "concurrent update, please retry")
		}
		return nil, apperrors.NewDatabaseError("credit invite", err)
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:  inviteeID,
		Action:   "invite.redeem",
		Resource: giveaway.ID,
		Details:  map[string]interface{}{"referrer_id": ref.UserID},
	})

	log.Info().
		Str("giveaway_id", giveaway.ID).
		Int64("referrer_id", ref.UserID).
		Int64("invitee_id", inviteeID).
		Msg("invite credited")

	return &models.InviteRedeemResult{
		GiveawayID:    giveaway.ID,
		ReferrerID:    ref.UserID,
		InviteeID:     inviteeID,
		ReferrerBonus: bonuses.InviteReferrerBonus,
		InviteeBonus:  bonuses.InviteInviteeBonus,
	}, nil
}

func (s *inviteService) GetInviteStats(ctx context.Context, giveawayID string, userID int64) (*models.InviteStats, error) {
	giveaway, err := s.giveaways.GetRecord(ctx, giveawayID)
	if err != nil {
		return nil, err
	}

	participant, err := s.participants.Get(ctx, giveaway.ID, userID)
	if err != nil {
		if err == prepository.ErrParticipantNotFound {
			return nil, apperrors.NewNotFoundError("participant", giveaway.ID)
		}
		return nil, apperrors.NewDatabaseError("get participant", err)
	}

	return &models.InviteStats{
		GiveawayID:   giveaway.ID,
		UserID:       userID,
		InviteCode:   participant.InviteCode,
		InviteCount:  participant.InviteCount,
		InviteCap:    s.cfg.Giveaway.InviteCap,
		PointsEarned: participant.InviteCount * s.cfg.Giveaway.InviteReferrerBonus,
	}, nil
}
