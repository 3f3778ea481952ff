package service

import (
	"context"
	"strings"
	"time"

	apperrors "giveaway-engine-backend/internal/common/errors"
	gmodels "giveaway-engine-backend/internal/features/giveaway/models"
	pmodels "giveaway-engine-backend/internal/features/participant/models"
	prepository "giveaway-engine-backend/internal/features/participant/repository"
	"giveaway-engine-backend/internal/features/shipping/models"
	"giveaway-engine-backend/internal/features/shipping/repository"
	"giveaway-engine-backend/internal/platform/audit"
)

// GiveawayProvider looks up giveaways for state checks.
type GiveawayProvider interface {
	GetRecord(ctx context.Context, idOrSlug string) (*gmodels.Giveaway, error)
}

// ShippingService collects and serves winner delivery addresses.
type ShippingService interface {
	SubmitShipping(ctx context.Context, giveawayID string, userID int64, input *models.ShippingSubmit) (*models.ShippingInfo, error)
	GetShipping(ctx context.Context, giveawayID string, targetUserID, callerID int64, isAdmin bool) (*models.ShippingInfo, error)
}

type shippingService struct {
	repo         repository.ShippingRepository
	participants prepository.ParticipantRepository
	giveaways    GiveawayProvider
	audit        audit.Logger
}

func NewShippingService(
	repo repository.ShippingRepository,
	participants prepository.ParticipantRepository,
	giveaways GiveawayProvider,
	auditLogger audit.Logger,
) ShippingService {
	return &shippingService{
		repo:         repo,
		participants: participants,
		giveaways:    giveaways,
		audit:        auditLogger,
	}
}

// SubmitShipping accepts an address only from the selected winner.
// Resubmissions overwrite the previous address and keep the original
// submission timestamp.
func (s *shippingService) SubmitShipping(ctx context.Context, giveawayID string, userID int64, input *models.ShippingSubmit) (*models.ShippingInfo, error) {
	giveaway, err := s.giveaways.GetRecord(ctx, giveawayID)
	if err != nil {
		return nil, err
	}

	participant, err := s.participants.Get(ctx, giveaway.ID, userID)
	if err != nil {
		if err == prepository.ErrParticipantNotFound {
			return nil, apperrors.NewForbiddenError("only the winner can submit shipping info")
		}
		return nil, apperrors.NewDatabaseError("get participant", err)
	}
	if participant.Status != pmodels.ParticipantStatusWinner {
		return nil, apperrors.NewForbiddenError("only the winner can submit shipping info")
	}

	if err := validateSubmit(input); err != nil {
		return nil, err
	}

	now := time.Now()
	info := &models.ShippingInfo{
		GiveawayID:  giveaway.ID,
		UserID:      userID,
		FullName:    strings.TrimSpace(input.FullName),
		Phone:       strings.TrimSpace(input.Phone),
		Country:     strings.TrimSpace(input.Country),
		City:        strings.TrimSpace(input.City),
		AddressLine: strings.TrimSpace(input.AddressLine),
		PostalCode:  strings.TrimSpace(input.PostalCode),
		Comment:     strings.TrimSpace(input.Comment),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if existing, err := s.repo.Get(ctx, giveaway.ID, userID); err == nil {
		info.CreatedAt = existing.CreatedAt
	} else if err != repository.ErrShippingNotFound {
		return nil, apperrors.NewDatabaseError("get shipping info", err)
	}

	if err := s.repo.Upsert(ctx, info); err != nil {
		return nil, apperrors.NewDatabaseError("save shipping info", err)
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:  userID,
		Action:   "shipping.submit",
		Resource: giveaway.ID,
	})

	return info, nil
}

// GetShipping is restricted to the winner themselves and admins.
func (s *shippingService) GetShipping(ctx context.Context, giveawayID string, targetUserID, callerID int64, isAdmin bool) (*models.ShippingInfo, error) {
	giveaway, err := s.giveaways.GetRecord(ctx, giveawayID)
	if err != nil {
		return nil, err
	}

	if !isAdmin {
		if callerID != targetUserID {
			return nil, apperrors.NewForbiddenError("shipping info is private")
		}

		participant, err := s.participants.Get(ctx, giveaway.ID, callerID)
		if err != nil {
			if err == prepository.ErrParticipantNotFound {
				return nil, apperrors.NewForbiddenError("shipping info is restricted to the winner")
			}
			return nil, apperrors.NewDatabaseError("get participant", err)
		}
		if participant.Status != pmodels.ParticipantStatusWinner {
			return nil, apperrors.NewForbiddenError("shipping info is restricted to the winner")
		}
	}

	info, err := s.repo.Get(ctx, giveaway.ID, targetUserID)
	if err != nil {
		if err == repository.ErrShippingNotFound {
			return nil, apperrors.NewNotFoundError("shipping info", giveaway.ID)
		}
		return nil, apperrors.NewDatabaseError("get shipping info", err)
	}
	return info, nil
}

func validateSubmit(input *models.ShippingSubmit) error {
	checks := []struct {
		field string
		value string
	}{
		{"full_name", input.FullName},
		{"phone", input.Phone},
		{"country", input.Country},
		{"city", input.City},
		{"address_line", input.AddressLine},
		{"postal_code", input.PostalCode},
	}
	for _, check := range checks {
		if strings.TrimSpace(check.value) == "" {
			return apperrors.NewValidationError(check.field, "is required")
		}
	}
	return nil
}
