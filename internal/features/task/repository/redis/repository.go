package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"giveaway-engine-backend/internal/features/task/models"
	"giveaway-engine-backend/internal/features/task/repository"

	"github.com/redis/go-redis/v9"
)

type redisRepository struct {
	client *redis.Client
}

const (
	keyPrefixGiveaway  = "giveaway:"
	keyPrefixTaskStart = "taskstart:"
)

func NewRedisTaskRepository(client *redis.Client) repository.TaskRepository {
	return &redisRepository{client: client}
}

func makeTaskKey(giveawayID, taskID string) string {
	return keyPrefixGiveaway + giveawayID + ":task:" + taskID
}

func makeTasksIndexKey(giveawayID string) string {
	return keyPrefixGiveaway + giveawayID + ":tasks"
}

func makeTaskStartKey(giveawayID, taskID string, userID int64) string {
	return fmt.Sprintf("%s%s:%s:%d", keyPrefixTaskStart, giveawayID, taskID, userID)
}

func (r *redisRepository) Create(ctx context.Context, task *models.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, makeTaskKey(task.GiveawayID, task.ID), data, 0)
	pipe.ZAdd(ctx, makeTasksIndexKey(task.GiveawayID), redis.Z{
		Score:  float64(task.CreatedAt.UnixNano()),
		Member: task.ID,
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (r *redisRepository) Get(ctx context.Context, giveawayID, taskID string) (*models.Task, error) {
	data, err := r.client.Get(ctx, makeTaskKey(giveawayID, taskID)).Bytes()
	if err == redis.Nil {
		return nil, repository.ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}

	var task models.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *redisRepository) Update(ctx context.Context, task *models.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, makeTaskKey(task.GiveawayID, task.ID), data, 0).Err()
}

func (r *redisRepository) Delete(ctx context.Context, giveawayID, taskID string) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, makeTaskKey(giveawayID, taskID))
	pipe.ZRem(ctx, makeTasksIndexKey(giveawayID), taskID)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *redisRepository) List(ctx context.Context, giveawayID string) ([]*models.Task, error) {
	// Creation order.
	ids, err := r.client.ZRange(ctx, makeTasksIndexKey(giveawayID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	tasks := make([]*models.Task, 0, len(ids))
	for _, id := range ids {
		task, err := r.Get(ctx, giveawayID, id)
		if err != nil {
			if err == repository.ErrTaskNotFound {
				continue
			}
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (r *redisRepository) SetStart(ctx context.Context, giveawayID, taskID string, userID int64, startedAt time.Time, ttl time.Duration) error {
	// Upsert: re-starting resets the marker.
	return r.client.Set(ctx, makeTaskStartKey(giveawayID, taskID, userID), startedAt.Unix(), ttl).Err()
}

func (r *redisRepository) GetStart(ctx context.Context, giveawayID, taskID string, userID int64) (time.Time, error) {
	raw, err := r.client.Get(ctx, makeTaskStartKey(giveawayID, taskID, userID)).Result()
	if err == redis.Nil {
		return time.Time{}, repository.ErrTaskStartNotFound
	}
	if err != nil {
		return time.Time{}, err
	}

	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt task start marker: %w", err)
	}
	return time.Unix(unix, 0), nil
}
