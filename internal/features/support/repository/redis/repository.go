package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"giveaway-engine-backend/internal/features/support/models"
	"giveaway-engine-backend/internal/features/support/repository"

	"github.com/redis/go-redis/v9"
)

type redisRepository struct {
	client *redis.Client
}

const keyPrefixGiveaway = "giveaway:"

func NewRedisSupportRepository(client *redis.Client) repository.SupportRepository {
	return &redisRepository{client: client}
}

func makeSupportKey(giveawayID string) string {
	return keyPrefixGiveaway + giveawayID + ":support"
}

// Append pushes onto the per-giveaway list; RPUSH keeps entries in
// submission order without any coordination.
func (r *redisRepository) Append(ctx context.Context, support *models.Support) error {
	data, err := json.Marshal(support)
	if err != nil {
		return fmt.Errorf("failed to marshal support entry: %w", err)
	}
	return r.client.RPush(ctx, makeSupportKey(support.GiveawayID), data).Err()
}

func (r *redisRepository) List(ctx context.Context, giveawayID string) ([]*models.Support, error) {
	raw, err := r.client.LRange(ctx, makeSupportKey(giveawayID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]*models.Support, 0, len(raw))
	for _, item := range raw {
		var support models.Support
		if err := json.Unmarshal([]byte(item), &support); err != nil {
			return nil, err
		}
		entries = append(entries, &support)
	}
	return entries, nil
}
