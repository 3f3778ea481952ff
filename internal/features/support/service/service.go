package service

import (
	"context"
	"time"

	apperrors "giveaway-engine-backend/internal/common/errors"
	gmodels "giveaway-engine-backend/internal/features/giveaway/models"
	"giveaway-engine-backend/internal/features/support/models"
	"giveaway-engine-backend/internal/features/support/repository"
	"giveaway-engine-backend/internal/platform/audit"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const anonymousDisplayName = "Anonymous"

// GiveawayProvider looks up giveaways for state checks.
type GiveawayProvider interface {
	GetRecord(ctx context.Context, idOrSlug string) (*gmodels.Giveaway, error)
}

// SupportService records prize-pool contributions and serves the supporter board.
type SupportService interface {
	RecordSupport(ctx context.Context, giveawayID string, userID int64, input *models.SupportCreate) (*models.Support, error)
	GetTotals(ctx context.Context, giveawayID string) (*models.SupportTotals, error)
	ListSupporters(ctx context.Context, giveawayID string, isAdmin bool) ([]*models.SupporterView, error)
}

type supportService struct {
	repo      repository.SupportRepository
	giveaways GiveawayProvider
	audit     audit.Logger
}

func NewSupportService(repo repository.SupportRepository, giveaways GiveawayProvider, auditLogger audit.Logger) SupportService {
	return &supportService{repo: repo, giveaways: giveaways, audit: auditLogger}
}

func (s *supportService) RecordSupport(ctx context.Context, giveawayID string, userID int64, input *models.SupportCreate) (*models.Support, error) {
	giveaway, err := s.giveaways.GetRecord(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	if giveaway.Status != gmodels.GiveawayStatusUpcoming && giveaway.Status != gmodels.GiveawayStatusActive {
		return nil, apperrors.NewForbiddenError("giveaway is no longer accepting contributions")
	}

	if !input.Amount.IsPositive() {
		return nil, apperrors.NewValidationError("amount", "must be greater than zero")
	}

	support := &models.Support{
		ID:          uuid.New().String(),
		GiveawayID:  giveaway.ID,
		UserID:      userID,
		Amount:      input.Amount,
		IsAnonymous: input.IsAnonymous,
		DisplayName: input.DisplayName,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.Append(ctx, support); err != nil {
		return nil, apperrors.NewDatabaseError("record support", err)
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:  userID,
		Action:   "support.record",
		Resource: giveaway.ID,
		Details:  map[string]interface{}{"amount": input.Amount.String()},
	})

	return support, nil
}

func (s *supportService) GetTotals(ctx context.Context, giveawayID string) (*models.SupportTotals, error) {
	giveaway, err := s.giveaways.GetRecord(ctx, giveawayID)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.List(ctx, giveaway.ID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list support entries", err)
	}

	total := decimal.Zero
	supporters := make(map[int64]struct{}, len(entries))
	for _, entry := range entries {
		total = total.Add(entry.Amount)
		supporters[entry.UserID] = struct{}{}
	}

	return &models.SupportTotals{
		GiveawayID:     giveaway.ID,
		TotalAmount:    total,
		SupporterCount: len(supporters),
	}, nil
}

// ListSupporters returns entries in submission order. Anonymous entries keep
// their amounts visible but hide who pledged them unless the caller is an admin.
func (s *supportService) ListSupporters(ctx context.Context, giveawayID string, isAdmin bool) ([]*models.SupporterView, error) {
	giveaway, err := s.giveaways.GetRecord(ctx, giveawayID)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.List(ctx, giveaway.ID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list support entries", err)
	}

	views := make([]*models.SupporterView, 0, len(entries))
	for _, entry := range entries {
		view := &models.SupporterView{
			DisplayName: entry.DisplayName,
			Amount:      entry.Amount,
			IsAnonymous: entry.IsAnonymous,
			CreatedAt:   entry.CreatedAt,
		}
		if entry.IsAnonymous && !isAdmin {
			view.DisplayName = anonymousDisplayName
		}
		if isAdmin {
			view.UserID = entry.UserID
		}
		views = append(views, view)
	}
	return views, nil
}
