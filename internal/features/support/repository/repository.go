package repository

import (
	"context"

	"giveaway-engine-backend/internal/features/support/models"
)

// SupportRepository stores the append-only contribution log per giveaway.
type SupportRepository interface {
	Append(ctx context.Context, support *models.Support) error
	List(ctx context.Context, giveawayID string) ([]*models.Support, error)
}
