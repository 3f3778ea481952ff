package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"giveaway-engine-backend/internal/features/participant/models"
	"giveaway-engine-backend/internal/features/participant/repository"

	"github.com/redis/go-redis/v9"
)

type redisRepository struct {
	client *redis.Client
}

const (
	keyPrefixGiveaway   = "giveaway:"
	keyPrefixInviteCode = "invite:code:"
)

func NewRedisParticipantRepository(client *redis.Client) repository.ParticipantRepository {
	return &redisRepository{client: client}
}

func makeParticipantKey(giveawayID string, userID int64) string {
	return fmt.Sprintf("%s%s:participant:%d", keyPrefixGiveaway, giveawayID, userID)
}

func makeParticipantsSetKey(giveawayID string) string {
	return keyPrefixGiveaway + giveawayID + ":participants"
}

func makeInviteCodeKey(code string) string {
	return keyPrefixInviteCode + code
}

func makeInviteUsesKey(giveawayID string, referrerID int64) string {
	return fmt.Sprintf("%s%s:invites:%d", keyPrefixGiveaway, giveawayID, referrerID)
}

func (r *redisRepository) Create(ctx context.Context, participant *models.Participant) error {
	data, err := json.Marshal(participant)
	if err != nil {
		return fmt.Errorf("failed to marshal participant: %w", err)
	}

	// The participant key is the uniqueness guard: SETNX either inserts the
	// one record for this (giveaway, user) pair or reports the duplicate.
	ok, err := r.client.SetNX(ctx, makeParticipantKey(participant.GiveawayID, participant.UserID), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrAlreadyJoined
	}

	ref := repository.InviteCodeRef{GiveawayID: participant.GiveawayID, UserID: participant.UserID}
	refData, err := json.Marshal(ref)
	if err != nil {
		return err
	}

	codeOK, err := r.client.SetNX(ctx, makeInviteCodeKey(participant.InviteCode), refData, 0).Result()
	if err != nil {
		return err
	}
	if !codeOK {
		// Roll the insert back so the caller can retry with a fresh code.
		r.client.Del(ctx, makeParticipantKey(participant.GiveawayID, participant.UserID))
		return repository.ErrInviteCodeTaken
	}

	return r.client.SAdd(ctx, makeParticipantsSetKey(participant.GiveawayID), participant.UserID).Err()
}

func (r *redisRepository) Get(ctx context.Context, giveawayID string, userID int64) (*models.Participant, error) {
	return getParticipant(ctx, r.client, giveawayID, userID)
}

func getParticipant(ctx context.Context, c redis.Cmdable, giveawayID string, userID int64) (*models.Participant, error) {
	data, err := c.Get(ctx, makeParticipantKey(giveawayID, userID)).Bytes()
	if err == redis.Nil {
		return nil, repository.ErrParticipantNotFound
	}
	if err != nil {
		return nil, err
	}

	var participant models.Participant
	if err := json.Unmarshal(data, &participant); err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *redisRepository) List(ctx context.Context, giveawayID string, filter models.ParticipantFilter) ([]*models.Participant, int, error) {
	members, err := r.client.SMembers(ctx, makeParticipantsSetKey(giveawayID)).Result()
	if err != nil {
		return nil, 0, err
	}

	participants := make([]*models.Participant, 0, len(members))
	for _, member := range members {
		userID, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		participant, err := r.Get(ctx, giveawayID, userID)
		if err != nil {
			if err == repository.ErrParticipantNotFound {
				continue
			}
			return nil, 0, err
		}
		if filter.Status != "" && participant.Status != filter.Status {
			continue
		}
		participants = append(participants, participant)
	}

	sort.Slice(participants, func(i, j int) bool {
		return participants[i].JoinedAt.Before(participants[j].JoinedAt)
	})

	total := len(participants)
	if filter.Offset > 0 {
		if filter.Offset >= len(participants) {
			return []*models.Participant{}, total, nil
		}
		participants = participants[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(participants) {
		participants = participants[:filter.Limit]
	}
	return participants, total, nil
}

func (r *redisRepository) Count(ctx context.Context, giveawayID string) (int64, error) {
	return r.client.SCard(ctx, makeParticipantsSetKey(giveawayID)).Result()
}

func (r *redisRepository) ResolveInviteCode(ctx context.Context, code string) (*repository.InviteCodeRef, error) {
	data, err := r.client.Get(ctx, makeInviteCodeKey(code)).Bytes()
	if err == redis.Nil {
		return nil, repository.ErrInviteCodeNotFound
	}
	if err != nil {
		return nil, err
	}

	var ref repository.InviteCodeRef
	if err := json.Unmarshal(data, &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}

func (r *redisRepository) CompleteTask(ctx context.Context, giveawayID string, userID int64, taskID string, points int) (*models.Participant, error) {
	key := makeParticipantKey(giveawayID, userID)

	var updated *models.Participant
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		participant, err := getParticipant(ctx, tx, giveawayID, userID)
		if err != nil {
			return err
		}

		if participant.HasCompleted(taskID) {
			return repository.ErrTaskAlreadyCompleted
		}

		participant.CompletedTasks = append(participant.CompletedTasks, taskID)
		participant.Points += points

		data, err := json.Marshal(participant)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err != nil {
			return err
		}

		updated = participant
		return nil
	}, key)

	if err == redis.TxFailedErr {
		return nil, repository.ErrConcurrentUpdate
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *redisRepository) CreditInvite(ctx context.Context, giveawayID string, referrerID, inviteeID int64, cap, referrerBonus, inviteeBonus int) error {
	referrerKey := makeParticipantKey(giveawayID, referrerID)
	inviteeKey := makeParticipantKey(giveawayID, inviteeID)
	usesKey := makeInviteUsesKey(giveawayID, referrerID)

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		referrer, err := getParticipant(ctx, tx, giveawayID, referrerID)
		if err != nil {
			return err
		}
		invitee, err := getParticipant(ctx, tx, giveawayID, inviteeID)
		if err != nil {
			return err
		}

		credited, err := tx.SIsMember(ctx, usesKey, inviteeID).Result()
		if err != nil {
			return err
		}
		if credited {
			return repository.ErrInviteAlreadyCredited
		}

		if referrer.InviteCount >= cap {
			return repository.ErrInviteCapReached
		}

		referrer.InviteCount++
		referrer.Points += referrerBonus
		invitee.Points += inviteeBonus

		referrerData, err := json.Marshal(referrer)
		if err != nil {
			return err
		}
		inviteeData, err := json.Marshal(invitee)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SAdd(ctx, usesKey, inviteeID)
			pipe.Set(ctx, referrerKey, referrerData, 0)
			pipe.Set(ctx, inviteeKey, inviteeData, 0)
			return nil
		})
		return err
	}, referrerKey, inviteeKey, usesKey)

	if err == redis.TxFailedErr {
		return repository.ErrConcurrentUpdate
	}
	return err
}

func (r *redisRepository) HasAnyCompletion(ctx context.Context, giveawayID string, taskID string) (bool, error) {
	participants, _, err := r.List(ctx, giveawayID, models.ParticipantFilter{})
	if err != nil {
		return false, err
	}
	for _, participant := range participants {
		if participant.HasCompleted(taskID) {
			return true, nil
		}
	}
	return false, nil
}
