package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"giveaway-engine-backend/internal/features/shipping/models"
	"giveaway-engine-backend/internal/features/shipping/repository"

	"github.com/redis/go-redis/v9"
)

type redisRepository struct {
	client *redis.Client
}

const keyPrefixGiveaway = "giveaway:"

func NewRedisShippingRepository(client *redis.Client) repository.ShippingRepository {
	return &redisRepository{client: client}
}

func makeShippingKey(giveawayID string, userID int64) string {
	return fmt.Sprintf("%s%s:shipping:%d", keyPrefixGiveaway, giveawayID, userID)
}

func (r *redisRepository) Upsert(ctx context.Context, info *models.ShippingInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping info: %w", err)
	}
	return r.client.Set(ctx, makeShippingKey(info.GiveawayID, info.UserID), data, 0).Err()
}

func (r *redisRepository) Get(ctx context.Context, giveawayID string, userID int64) (*models.ShippingInfo, error) {
	data, err := r.client.Get(ctx, makeShippingKey(giveawayID, userID)).Bytes()
	if err == redis.Nil {
		return nil, repository.ErrShippingNotFound
	}
	if err != nil {
		return nil, err
	}

	var info models.ShippingInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
