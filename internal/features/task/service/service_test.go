package service

import (
	"context"
	"testing"
	"time"

	"giveaway-engine-backend/internal/common/config"
	apperrors "giveaway-engine-backend/internal/common/errors"
	gmodels "giveaway-engine-backend/internal/features/giveaway/models"
	gmemory "giveaway-engine-backend/internal/features/giveaway/repository/memory"
	gservice "giveaway-engine-backend/internal/features/giveaway/service"
	pmodels "giveaway-engine-backend/internal/features/participant/models"
	pmemory "giveaway-engine-backend/internal/features/participant/repository/memory"
	"giveaway-engine-backend/internal/features/task/models"
	tmemory "giveaway-engine-backend/internal/features/task/repository/memory"
	"giveaway-engine-backend/internal/platform/audit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noTasks struct{}

func (noTasks) RequiredTaskIDs(ctx context.Context, giveawayID string) ([]string, error) {
	return nil, nil
}

type fixture struct {
	svc          TaskService
	tasks        *tmemory.Repository
	participants *pmemory.Repository
	giveawayID   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	participants := pmemory.NewRepository()
	grepo := gmemory.NewRepository(participants)
	gsvc := gservice.NewGiveawayService(grepo, participants, noTasks{}, audit.NewZerologAudit())

	now := time.Now()
	created, err := gsvc.Create(ctx, 1, &gmodels.GiveawayCreate{
		Slug:      "task-fixture",
		Title:     "Prize Drop",
		PrizeName: "Gadget",
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(time.Hour),
	})
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Giveaway.TaskStartTTL = 24 * time.Hour

	tasks := tmemory.NewRepository()
	return &fixture{
		svc:          NewTaskService(tasks, participants, gsvc, cfg, audit.NewZerologAudit()),
		tasks:        tasks,
		participants: participants,
		giveawayID:   created.ID,
	}
}

func (f *fixture) join(t *testing.T, userID int64) {
	t.Helper()
	require.NoError(t, f.participants.Create(context.Background(), &pmodels.Participant{
		GiveawayID: f.giveawayID,
		UserID:     userID,
		Status:     pmodels.ParticipantStatusJoined,
		InviteCode: "CODE0001",
		JoinedAt:   time.Now(),
	}))
}

func (f *fixture) addTask(t *testing.T, input *models.TaskCreate) *models.Task {
	t.Helper()
	task, err := f.svc.AddTask(context.Background(), 1, f.giveawayID, input)
	require.NoError(t, err)
	return task
}

func TestCompleteTaskAwardsPointsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.join(t, 100)
	task := f.addTask(t, &models.TaskCreate{Title: "Follow channel", Required: true, PointValue: 25})

	p, err := f.svc.CompleteTask(ctx, f.giveawayID, 100, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, p.Points)
	assert.True(t, p.HasCompleted(task.ID))

	_, err = f.svc.CompleteTask(ctx, f.giveawayID, 100, task.ID)
	requireCode(t, err, apperrors.ErrCodeConflict)

	// Points unchanged after the rejected retry.
	after, err := f.participants.Get(ctx, f.giveawayID, 100)
	require.NoError(t, err)
	assert.Equal(t, 25, after.Points)
}

func TestCompleteTaskRequiresMembership(t *testing.T) {
	f := newFixture(t)
	task := f.addTask(t, &models.TaskCreate{Title: "Share post", PointValue: 10})

	_, err := f.svc.CompleteTask(context.Background(), f.giveawayID, 999, task.ID)
	requireCode(t, err, apperrors.ErrCodeForbidden)
}

func TestCompleteUnknownTask(t *testing.T) {
	f := newFixture(t)
	f.join(t, 100)

	_, err := f.svc.CompleteTask(context.Background(), f.giveawayID, 100, "missing")
	requireCode(t, err, apperrors.ErrCodeNotFound)
}

func TestMinDurationEnforced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.join(t, 100)
	task := f.addTask(t, &models.TaskCreate{Title: "Watch video", PointValue: 10, MinDuration: 60})

	// Never started.
	_, err := f.svc.CompleteTask(ctx, f.giveawayID, 100, task.ID)
	requireCode(t, err, apperrors.ErrCodeValidation)

	// Started just now: too quick.
	require.NoError(t, f.svc.StartTask(ctx, f.giveawayID, 100, task.ID))
	_, err = f.svc.CompleteTask(ctx, f.giveawayID, 100, task.ID)
	requireCode(t, err, apperrors.ErrCodeValidation)

	// Backdate the start past the minimum wait.
	require.NoError(t, f.tasks.SetStart(ctx, f.giveawayID, task.ID, 100, time.Now().Add(-2*time.Minute), time.Hour))
	p, err := f.svc.CompleteTask(ctx, f.giveawayID, 100, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, p.Points)
}

func TestRemoveTaskHardDeletesWithoutCompletions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.addTask(t, &models.TaskCreate{Title: "Unused", PointValue: 5})

	require.NoError(t, f.svc.RemoveTask(ctx, 1, f.giveawayID, task.ID))

	tasks, err := f.svc.ListTasks(ctx, f.giveawayID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestRemoveTaskRetiresWithCompletions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.join(t, 100)
	task := f.addTask(t, &models.TaskCreate{Title: "Done once", Required: true, PointValue: 30})

	_, err := f.svc.CompleteTask(ctx, f.giveawayID, 100, task.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.RemoveTask(ctx, 1, f.giveawayID, task.ID))

	// Hidden from listings and from eligibility derivation.
	tasks, err := f.svc.ListTasks(ctx, f.giveawayID)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	required, err := f.svc.RequiredTaskIDs(ctx, f.giveawayID)
	require.NoError(t, err)
	assert.Empty(t, required)

	// But the earned points survive.
	p, err := f.participants.Get(ctx, f.giveawayID, 100)
	require.NoError(t, err)
	assert.Equal(t, 30, p.Points)

	// And it can no longer be completed.
	_, err = f.svc.CompleteTask(ctx, f.giveawayID, 100, task.ID)
	requireCode(t, err, apperrors.ErrCodeNotFound)
}

func TestRequiredTaskIDsFiltersOptional(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	required := f.addTask(t, &models.TaskCreate{Title: "Must", Required: true, PointValue: 10})
	f.addTask(t, &models.TaskCreate{Title: "Bonus", Required: false, PointValue: 5})

	ids, err := f.svc.RequiredTaskIDs(ctx, f.giveawayID)
	require.NoError(t, err)
	assert.Equal(t, []string{required.ID}, ids)
}

func requireCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	require.Equal(t, code, appErr.Code, "unexpected error code: %v", appErr)
}
