package repository

import (
	"context"
	"errors"
	"time"

	"giveaway-engine-backend/internal/features/task/models"
)

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrTaskStartNotFound = errors.New("task start marker not found")
)

// TaskRepository owns task definitions and the ephemeral task-start markers.
// Markers may be pruned at any time; losing one only re-requires the minimum
// wait before completion.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	Get(ctx context.Context, giveawayID, taskID string) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, giveawayID, taskID string) error
	List(ctx context.Context, giveawayID string) ([]*models.Task, error)

	SetStart(ctx context.Context, giveawayID, taskID string, userID int64, startedAt time.Time, ttl time.Duration) error
	GetStart(ctx context.Context, giveawayID, taskID string, userID int64) (time.Time, error)
}
