// Package memory holds a map-backed TaskRepository for tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"giveaway-engine-backend/internal/features/task/models"
	"giveaway-engine-backend/internal/features/task/repository"
)

type startKey struct {
	giveawayID string
	taskID     string
	userID     int64
}

type Repository struct {
	mu     sync.Mutex
	tasks  map[string]map[string]*models.Task
	starts map[startKey]time.Time
}

func NewRepository() *Repository {
	return &Repository{
		tasks:  make(map[string]map[string]*models.Task),
		starts: make(map[startKey]time.Time),
	}
}

func clone(t *models.Task) *models.Task {
	cp := *t
	return &cp
}

func (r *Repository) Create(ctx context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tasks[task.GiveawayID] == nil {
		r.tasks[task.GiveawayID] = make(map[string]*models.Task)
	}
	r.tasks[task.GiveawayID][task.ID] = clone(task)
	return nil
}

func (r *Repository) Get(ctx context.Context, giveawayID, taskID string) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[giveawayID][taskID]
	if !ok {
		return nil, repository.ErrTaskNotFound
	}
	return clone(t), nil
}

func (r *Repository) Update(ctx context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[task.GiveawayID][task.ID]; !ok {
		return repository.ErrTaskNotFound
	}
	r.tasks[task.GiveawayID][task.ID] = clone(task)
	return nil
}

func (r *Repository) Delete(ctx context.Context, giveawayID, taskID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tasks[giveawayID], taskID)
	return nil
}

func (r *Repository) List(ctx context.Context, giveawayID string) ([]*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.Task, 0, len(r.tasks[giveawayID]))
	for _, t := range r.tasks[giveawayID] {
		out = append(out, clone(t))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *Repository) SetStart(ctx context.Context, giveawayID, taskID string, userID int64, startedAt time.Time, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.starts[startKey{giveawayID, taskID, userID}] = startedAt
	return nil
}

func (r *Repository) GetStart(ctx context.Context, giveawayID, taskID string, userID int64) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	startedAt, ok := r.starts[startKey{giveawayID, taskID, userID}]
	if !ok {
		return time.Time{}, repository.ErrTaskStartNotFound
	}
	return startedAt, nil
}
