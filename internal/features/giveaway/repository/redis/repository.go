package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"giveaway-engine-backend/internal/features/giveaway/models"
	"giveaway-engine-backend/internal/features/giveaway/repository"
	pmodels "giveaway-engine-backend/internal/features/participant/models"

	"github.com/redis/go-redis/v9"
)

type redisRepository struct {
	client *redis.Client
}

const (
	keyPrefixGiveaway  = "giveaway:"
	keyPrefixSlug      = "giveaway:slug:"
	keyGiveawaysByDate = "giveaways:by_date"
	keyPrefixStatusSet = "giveaways:status:"
)

func NewRedisGiveawayRepository(client *redis.Client) repository.GiveawayRepository {
	return &redisRepository{client: client}
}

func makeGiveawayKey(id string) string {
	return keyPrefixGiveaway + id
}

func makeSlugKey(slug string) string {
	return keyPrefixSlug + slug
}

func makeStatusSetKey(status models.GiveawayStatus) string {
	return keyPrefixStatusSet + string(status)
}

func makeParticipantsSetKey(id string) string {
	return keyPrefixGiveaway + id + ":participants"
}

func makeParticipantKey(giveawayID string, userID int64) string {
	return fmt.Sprintf("%s%s:participant:%d", keyPrefixGiveaway, giveawayID, userID)
}

func (r *redisRepository) Create(ctx context.Context, giveaway *models.Giveaway) error {
	// Reserve the slug first; the reservation doubles as the uniqueness check.
	ok, err := r.client.SetNX(ctx, makeSlugKey(giveaway.Slug), giveaway.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to reserve slug: %w", err)
	}
	if !ok {
		return repository.ErrSlugTaken
	}

	data, err := json.Marshal(giveaway)
	if err != nil {
		return fmt.Errorf("failed to marshal giveaway: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, makeGiveawayKey(giveaway.ID), data, 0)
	pipe.SAdd(ctx, makeStatusSetKey(giveaway.Status), giveaway.ID)
	pipe.ZAdd(ctx, keyGiveawaysByDate, redis.Z{
		Score:  float64(giveaway.CreatedAt.Unix()),
		Member: giveaway.ID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		// Release the reservation so the slug is not burned by a failed create.
		r.client.Del(ctx, makeSlugKey(giveaway.Slug))
		return err
	}
	return nil
}

func (r *redisRepository) GetByID(ctx context.Context, id string) (*models.Giveaway, error) {
	return getGiveaway(ctx, r.client, id)
}

func getGiveaway(ctx context.Context, c redis.Cmdable, id string) (*models.Giveaway, error) {
	data, err := c.Get(ctx, makeGiveawayKey(id)).Bytes()
	if err == redis.Nil {
		return nil, repository.ErrGiveawayNotFound
	}
	if err != nil {
		return nil, err
	}

	var giveaway models.Giveaway
	if err := json.Unmarshal(data, &giveaway); err != nil {
		return nil, err
	}
	return &giveaway, nil
}

func (r *redisRepository) GetBySlug(ctx context.Context, slug string) (*models.Giveaway, error) {
	id, err := r.client.Get(ctx, makeSlugKey(slug)).Result()
	if err == redis.Nil {
		return nil, repository.ErrGiveawayNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *redisRepository) Update(ctx context.Context, giveaway *models.Giveaway, prevStatus models.GiveawayStatus) error {
	data, err := json.Marshal(giveaway)
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, makeGiveawayKey(giveaway.ID), data, 0)
	if giveaway.Status != prevStatus {
		pipe.SRem(ctx, makeStatusSetKey(prevStatus), giveaway.ID)
		pipe.SAdd(ctx, makeStatusSetKey(giveaway.Status), giveaway.ID)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (r *redisRepository) TransitionStatus(ctx context.Context, id string, from, to models.GiveawayStatus) error {
	key := makeGiveawayKey(id)

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		giveaway, err := getGiveaway(ctx, tx, id)
		if err != nil {
			return err
		}

		if giveaway.Status != from {
			return repository.ErrStatusConflict
		}

		giveaway.Status = to
		giveaway.UpdatedAt = time.Now()

		data, err := json.Marshal(giveaway)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.SRem(ctx, makeStatusSetKey(from), id)
			pipe.SAdd(ctx, makeStatusSetKey(to), id)
			return nil
		})
		return err
	}, key)

	if err == redis.TxFailedErr {
		return repository.ErrStatusConflict
	}
	return err
}

func (r *redisRepository) Delete(ctx context.Context, id string) error {
	key := makeGiveawayKey(id)
	participantsKey := makeParticipantsSetKey(id)

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		giveaway, err := getGiveaway(ctx, tx, id)
		if err != nil {
			return err
		}

		count, err := tx.SCard(ctx, participantsKey).Result()
		if err != nil {
			return err
		}
		if count > 0 {
			return repository.ErrHasParticipants
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.Del(ctx, makeSlugKey(giveaway.Slug))
			pipe.SRem(ctx, makeStatusSetKey(giveaway.Status), id)
			pipe.ZRem(ctx, keyGiveawaysByDate, id)
			pipe.Del(ctx, participantsKey)
			return nil
		})
		return err
	}, key, participantsKey)

	if err == redis.TxFailedErr {
		return repository.ErrStatusConflict
	}
	return err
}

func (r *redisRepository) List(ctx context.Context, filter models.ListFilter) ([]*models.Giveaway, error) {
	// Most recent first.
	ids, err := r.client.ZRevRange(ctx, keyGiveawaysByDate, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get giveaway ids: %w", err)
	}

	result := make([]*models.Giveaway, 0, len(ids))
	for _, id := range ids {
		giveaway, err := r.GetByID(ctx, id)
		if err != nil {
			if err == repository.ErrGiveawayNotFound {
				continue
			}
			return nil, fmt.Errorf("failed to get giveaway %s: %w", id, err)
		}
		if filter.Status != "" && giveaway.Status != filter.Status {
			continue
		}
		result = append(result, giveaway)
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*models.Giveaway{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *redisRepository) CommitWinner(ctx context.Context, giveawayID string, mode models.SelectionMode, choose repository.ChooseWinnerFunc) (*models.SelectWinnerResult, error) {
	key := makeGiveawayKey(giveawayID)
	participantsKey := makeParticipantsSetKey(giveawayID)

	var result *models.SelectWinnerResult

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		giveaway, err := getGiveaway(ctx, tx, giveawayID)
		if err != nil {
			return err
		}

		if giveaway.Status != models.GiveawayStatusActive && giveaway.Status != models.GiveawayStatusEnded {
			return repository.ErrWrongStatusForWinner
		}
		if giveaway.WinnerID != nil {
			return repository.ErrWinnerAlreadySelected
		}

		memberIDs, err := tx.SMembers(ctx, participantsKey).Result()
		if err != nil {
			return err
		}

		// Watch every participant record so the committed pool is exactly
		// the snapshot the draw was made from.
		participantKeys := make([]string, 0, len(memberIDs))
		participants := make([]*pmodels.Participant, 0, len(memberIDs))
		for _, member := range memberIDs {
			var userID int64
			if _, err := fmt.Sscanf(member, "%d", &userID); err != nil {
				continue
			}
			participantKeys = append(participantKeys, makeParticipantKey(giveawayID, userID))
		}
		if len(participantKeys) > 0 {
			if err := tx.Watch(ctx, participantKeys...).Err(); err != nil {
				return err
			}
		}

		for _, pkey := range participantKeys {
			data, err := tx.Get(ctx, pkey).Bytes()
			if err == redis.Nil {
				continue
			}
			if err != nil {
				return err
			}
			var p pmodels.Participant
			if err := json.Unmarshal(data, &p); err != nil {
				return err
			}
			participants = append(participants, &p)
		}

		// Deterministic ordering keeps the draw independent of set iteration.
		sort.Slice(participants, func(i, j int) bool {
			return participants[i].UserID < participants[j].UserID
		})

		winnerID, poolSize, err := choose(participants)
		if err != nil {
			return err
		}

		now := time.Now()
		prevStatus := giveaway.Status
		giveaway.Status = models.GiveawayStatusWinnerSelected
		giveaway.WinnerID = &winnerID
		giveaway.WinnerSelectionMode = mode
		giveaway.UpdatedAt = now

		giveawayData, err := json.Marshal(giveaway)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, giveawayData, 0)
			pipe.SRem(ctx, makeStatusSetKey(prevStatus), giveawayID)
			pipe.SAdd(ctx, makeStatusSetKey(models.GiveawayStatusWinnerSelected), giveawayID)

			for _, p := range participants {
				if p.UserID == winnerID {
					p.Status = pmodels.ParticipantStatusWinner
				} else {
					p.Status = pmodels.ParticipantStatusNotSelected
				}
				data, err := json.Marshal(p)
				if err != nil {
					return err
				}
				pipe.Set(ctx, makeParticipantKey(giveawayID, p.UserID), data, 0)
			}
			return nil
		})
		if err != nil {
			return err
		}

		result = &models.SelectWinnerResult{
			GiveawayID: giveawayID,
			WinnerID:   winnerID,
			Mode:       mode,
			PoolSize:   poolSize,
		}
		return nil
	}, key, participantsKey)

	if err == redis.TxFailedErr {
		return nil, repository.ErrStatusConflict
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}
