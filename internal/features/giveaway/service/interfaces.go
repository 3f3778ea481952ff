package service

import (
	"context"

	"giveaway-engine-backend/internal/features/giveaway/models"
)

// GiveawayService manages the giveaway lifecycle and winner selection.
type GiveawayService interface {
	Create(ctx context.Context, creatorID int64, input *models.GiveawayCreate) (*models.GiveawayResponse, error)
	Get(ctx context.Context, idOrSlug string) (*models.GiveawayResponse, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.GiveawayResponse, error)
	Update(ctx context.Context, adminID int64, id string, input *models.GiveawayUpdate) (*models.GiveawayResponse, error)
	Delete(ctx context.Context, adminID int64, id string) error

	// GetRecord returns the raw giveaway after applying due time transitions.
	// Other features use it for existence and status checks.
	GetRecord(ctx context.Context, idOrSlug string) (*models.Giveaway, error)

	SelectWinner(ctx context.Context, adminID int64, giveawayID string, input *models.SelectWinnerInput) (*models.SelectWinnerResult, error)

	// SetRequiredTaskLister wires the task catalog after construction. The
	// task service itself depends on this service, so the reference is set
	// once both exist and never changes afterwards.
	SetRequiredTaskLister(tasks RequiredTaskLister)
}

// ParticipantCounter exposes the public participant aggregate of the registry.
type ParticipantCounter interface {
	Count(ctx context.Context, giveawayID string) (int64, error)
}

// RequiredTaskLister exposes the required task ids used to derive eligibility.
type RequiredTaskLister interface {
	RequiredTaskIDs(ctx context.Context, giveawayID string) ([]string, error)
}
