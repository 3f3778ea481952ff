package repository

import (
	"context"
	"errors"

	"giveaway-engine-backend/internal/features/shipping/models"
)

var ErrShippingNotFound = errors.New("shipping info not found")

// ShippingRepository stores one address record per (giveaway, winner).
type ShippingRepository interface {
	Upsert(ctx context.Context, info *models.ShippingInfo) error
	Get(ctx context.Context, giveawayID string, userID int64) (*models.ShippingInfo, error)
}
