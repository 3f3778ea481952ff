package service

import (
	"context"
	"time"

	"giveaway-engine-backend/internal/common/config"
	apperrors "giveaway-engine-backend/internal/common/errors"
	"giveaway-engine-backend/internal/common/validation"
	gmodels "giveaway-engine-backend/internal/features/giveaway/models"
	pmodels "giveaway-engine-backend/internal/features/participant/models"
	prepository "giveaway-engine-backend/internal/features/participant/repository"
	"giveaway-engine-backend/internal/features/task/models"
	"giveaway-engine-backend/internal/features/task/repository"
	"giveaway-engine-backend/internal/platform/audit"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// GiveawayProvider looks up giveaways for existence checks.
type GiveawayProvider interface {
	GetRecord(ctx context.Context, idOrSlug string) (*gmodels.Giveaway, error)
}

// TaskService owns task definitions and per-participant completion tracking.
type TaskService interface {
	AddTask(ctx context.Context, adminID int64, giveawayID string, input *models.TaskCreate) (*models.Task, error)
	UpdateTask(ctx context.Context, adminID int64, giveawayID, taskID string, input *models.TaskUpdate) (*models.Task, error)
	RemoveTask(ctx context.Context, adminID int64, giveawayID, taskID string) error
	ListTasks(ctx context.Context, giveawayID string) ([]*models.Task, error)

	StartTask(ctx context.Context, giveawayID string, userID int64, taskID string) error
	CompleteTask(ctx context.Context, giveawayID string, userID int64, taskID string) (*pmodels.Participant, error)

	// RequiredTaskIDs returns the ids of non-retired required tasks; it is
	// the single derivation source for participant eligibility.
	RequiredTaskIDs(ctx context.Context, giveawayID string) ([]string, error)
}

type taskService struct {
	repo         repository.TaskRepository
	participants prepository.ParticipantRepository
	giveaways    GiveawayProvider
	cfg          *config.Config
	audit        audit.Logger
}

func NewTaskService(
	repo repository.TaskRepository,
	participants prepository.ParticipantRepository,
	giveaways GiveawayProvider,
	cfg *config.Config,
	auditLogger audit.Logger,
) TaskService {
	return &taskService{
		repo:         repo,
		participants: participants,
		giveaways:    giveaways,
		cfg:          cfg,
		audit:        auditLogger,
	}
}

func (s *taskService) AddTask(ctx context.Context, adminID int64, giveawayID string, input *models.TaskCreate) (*models.Task, error) {
	giveaway, err := s.giveaways.GetRecord(ctx, giveawayID)
	if err != nil {
		return nil, err
	}

	if err := validation.ValidateTitle(input.Title); err != nil {
		return nil, apperrors.NewValidationError("title", err.Error())
	}
	if err := validation.ValidatePositiveInt(int64(input.PointValue), "point_value"); err != nil {
		return nil, apperrors.NewValidationError("point_value", err.Error())
	}
	if err := validation.ValidateNonNegativeInt(input.MinDuration, "min_duration"); err != nil {
		return nil, apperrors.NewValidationError("min_duration", err.Error())
	}

	now := time.Now()
	task := &models.Task{
		ID:          uuid.New().String(),
		GiveawayID:  giveaway.ID,
		Title:       input.Title,
		Description: input.Description,
		Required:    input.Required,
		PointValue:  input.PointValue,
		MinDuration: input.MinDuration,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, apperrors.NewDatabaseError("create task", err)
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:  adminID,
		Action:   "task.create",
		Resource: task.ID,
		Details:  map[string]interface{}{"giveaway_id": giveaway.ID},
	})

	return task, nil
}

func (s *taskService) UpdateTask(ctx context.Context, adminID int64, giveawayID, taskID string, input *models.TaskUpdate) (*models.Task, error) {
	giveaway, err := s.giveaways.GetRecord(ctx, giveawayID)
	if err != nil {
		return nil, err
	}

	task, err := s.repo.Get(ctx, giveaway.ID, taskID)
	if err != nil {
		if err == repository.ErrTaskNotFound {
			return nil, apperrors.NewNotFoundError("task", taskID)
		}
		return nil, apperrors.NewDatabaseError("get task", err)
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Required != nil {
		task.Required = *input.Required
	}
	if input.PointValue != nil {
		task.PointValue = *input.PointValue
	}
	if input.MinDuration != nil {
		task.MinDuration = *input.MinDuration
	}
	task.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, apperrors.NewDatabaseError("update task", err)
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:  adminID,
		Action:   "task.update",
		Resource: task.ID,
		Details:  map[string]interface{}{"giveaway_id": giveaway.ID},
	})

	return task, nil
}

// RemoveTask retires the task when completions reference it, so points that
// were already awarded keep their meaning; it hard-deletes otherwise.
func (s *taskService) RemoveTask(ctx context.Context, adminID int64, giveawayID, taskID string) error {
	giveaway, err := s.giveaways.GetRecord(ctx, giveawayID)
	if err != nil {
		return err
	}

	task, err := s.repo.Get(ctx, giveaway.ID, taskID)
	if err != nil {
		if err == repository.ErrTaskNotFound {
			return apperrors.NewNotFoundError("task", taskID)
		}
		return apperrors.NewDatabaseError("get task", err)
	}

	completed, err := s.participants.HasAnyCompletion(ctx, giveaway.ID, taskID)
	if err != nil {
		return apperrors.NewDatabaseError("check task completions", err)
	}

	action := "task.delete"
	if completed {
		task.Retired = true
		task.UpdatedAt = time.Now()
		if err := s.repo.Update(ctx, task); err != nil {
			return apperrors.NewDatabaseError("retire task", err)
		}
		action = "task.retire"
	} else {
		if err := s.repo.Delete(ctx, giveaway.ID, taskID); err != nil {
			return apperrors.NewDatabaseError("delete task", err)
		}
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:  adminID,
		Action:   action,
		Resource: taskID,
		Details:  map[string]interface{}{"giveaway_id": giveaway.ID},
	})

	return nil
}

func (s *taskService) ListTasks(ctx context.Context, giveawayID string) ([]*models.Task, error) {
	giveaway, err := s.giveaways.GetRecord(ctx, giveawayID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.repo.List(ctx, giveaway.ID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list tasks", err)
	}

	visible := make([]*models.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.Retired {
			continue
		}
		visible = append(visible, task)
	}
	return visible, nil
}

func (s *taskService) RequiredTaskIDs(ctx context.Context, giveawayID string) ([]string, error) {
	tasks, err := s.repo.List(ctx, giveawayID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(tasks))
	for _, task := range tasks {
		if task.Required && !task.Retired {
			ids = append(ids, task.ID)
		}
	}
	return ids, nil
}

func (s *taskService) StartTask(ctx context.Context, giveawayID string, userID int64, taskID string) error {
	giveaway, err := s.giveaways.GetRecord(ctx, giveawayID)
	if err != nil {
		return err
	}

	task, err := s.repo.Get(ctx, giveaway.ID, taskID)
	if err != nil {
		if err == repository.ErrTaskNotFound {
			return apperrors.NewNotFoundError("task", taskID)
		}
		return apperrors.NewDatabaseError("get task", err)
	}
	if task.Retired {
		return apperrors.NewNotFoundError("task", taskID)
	}

	if err := s.repo.SetStart(ctx, giveaway.ID, taskID, userID, time.Now(), s.cfg.Giveaway.TaskStartTTL); err != nil {
		return apperrors.NewDatabaseError("record task start", err)
	}
	return nil
}

func (s *taskService) CompleteTask(ctx context.Context, giveawayID string, userID int64, taskID string) (*pmodels.Participant, error) {
	giveaway, err := s.giveaways.GetRecord(ctx, giveawayID)
	if err != nil {
		return nil, err
	}

	task, err := s.repo.Get(ctx, giveaway.ID, taskID)
	if err != nil {
		if err == repository.ErrTaskNotFound {
			return nil, apperrors.NewNotFoundError("task", taskID)
		}
		return nil, apperrors.NewDatabaseError("get task", err)
	}
	if task.Retired {
		return nil, apperrors.NewNotFoundError("task", taskID)
	}

	if task.MinDuration > 0 {
		startedAt, err := s.repo.GetStart(ctx, giveaway.ID, taskID, userID)
		if err != nil {
			if err == repository.ErrTaskStartNotFound {
				return nil, apperrors.NewValidationError("task", "task must be started before it can be completed")
			}
			return nil, apperrors.NewDatabaseError("get task start", err)
		}

		if elapsed := time.Since(startedAt); elapsed < time.Duration(task.MinDuration)*time.Second {
			return nil, apperrors.NewValidationError("task", "completed too quickly").
				WithDetail("min_duration_seconds", task.MinDuration)
		}
	}

	participant, err := s.participants.CompleteTask(ctx, giveaway.ID, userID, taskID, task.PointValue)
	if err != nil {
		switch err {
		case prepository.ErrParticipantNotFound:
			return nil, apperrors.NewForbiddenError("not a participant of this giveaway")
		case prepository.ErrTaskAlreadyCompleted:
			return nil, apperrors.NewConflictError("task", "already completed")
		case prepository.ErrConcurrentUpdate:
			return nil, apperrors.NewConflictError("participant", "concurrent update, please retry")
		}
		return nil, apperrors.NewDatabaseError("complete task", err)
	}

	log.Debug().
		Str("giveaway_id", giveaway.ID).
		Int64("user_id", userID).
		Str("task_id", taskID).
		Int("points", task.PointValue).
		Msg("task completed")

	return participant, nil
}
