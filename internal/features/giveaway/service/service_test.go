package service

import (
	"context"
	"testing"
	"time"

	apperrors "giveaway-engine-backend/internal/common/errors"
	"giveaway-engine-backend/internal/features/giveaway/models"
	gmemory "giveaway-engine-backend/internal/features/giveaway/repository/memory"
	pmodels "giveaway-engine-backend/internal/features/participant/models"
	pmemory "giveaway-engine-backend/internal/features/participant/repository/memory"
	"giveaway-engine-backend/internal/platform/audit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTaskLister []string

func (l staticTaskLister) RequiredTaskIDs(ctx context.Context, giveawayID string) ([]string, error) {
	return l, nil
}

func newTestService(t *testing.T, required []string) (GiveawayService, *pmemory.Repository) {
	t.Helper()
	participants := pmemory.NewRepository()
	repo := gmemory.NewRepository(participants)
	svc := NewGiveawayService(repo, participants, staticTaskLister(required), audit.NewZerologAudit())
	return svc, participants
}

func validCreate(slug string, start, end time.Time) *models.GiveawayCreate {
	return &models.GiveawayCreate{
		Slug:        slug,
		Title:       "Summer Prize Drop",
		Description: "Win a gadget",
		PrizeName:   "Gadget",
		StartDate:   start,
		EndDate:     end,
	}
}

func TestCreateSetsStatusFromStartDate(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	now := time.Now()

	upcoming, err := svc.Create(ctx, 1, validCreate("future-drop", now.Add(time.Hour), now.Add(48*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, models.GiveawayStatusUpcoming, upcoming.Status)

	active, err := svc.Create(ctx, 1, validCreate("live-drop", now.Add(-time.Hour), now.Add(48*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, models.GiveawayStatusActive, active.Status)
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	now := time.Now()

	_, err := svc.Create(ctx, 1, validCreate("Bad Slug!", now, now.Add(time.Hour)))
	requireCode(t, err, apperrors.ErrCodeValidation)

	_, err = svc.Create(ctx, 1, validCreate("ok-slug", now.Add(time.Hour), now))
	requireCode(t, err, apperrors.ErrCodeValidation)
}

func TestCreateDuplicateSlugConflicts(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	now := time.Now()

	_, err := svc.Create(ctx, 1, validCreate("taken", now, now.Add(time.Hour)))
	require.NoError(t, err)

	_, err = svc.Create(ctx, 1, validCreate("taken", now, now.Add(time.Hour)))
	requireCode(t, err, apperrors.ErrCodeConflict)
}

func TestGetBySlugFallback(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	now := time.Now()

	created, err := svc.Create(ctx, 1, validCreate("by-slug", now, now.Add(time.Hour)))
	require.NoError(t, err)

	byID, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	bySlug, err := svc.Get(ctx, "by-slug")
	require.NoError(t, err)
	assert.Equal(t, byID.ID, bySlug.ID)

	_, err = svc.Get(ctx, "no-such-giveaway")
	requireCode(t, err, apperrors.ErrCodeNotFound)
}

func TestReadPromotesDueStatus(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	now := time.Now()

	// Already past its end date at creation: created active, promoted to
	// ended on the first read.
	created, err := svc.Create(ctx, 1, validCreate("over", now.Add(-2*time.Hour), now.Add(-time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, models.GiveawayStatusActive, created.Status)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GiveawayStatusEnded, got.Status)

	// Idempotent under repeated reads.
	again, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GiveawayStatusEnded, again.Status)
}

func TestUpdateRejectsStatusRegression(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	now := time.Now()

	created, err := svc.Create(ctx, 1, validCreate("no-rewind", now.Add(-time.Hour), now.Add(time.Hour)))
	require.NoError(t, err)
	require.Equal(t, models.GiveawayStatusActive, created.Status)

	back := models.GiveawayStatusUpcoming
	_, err = svc.Update(ctx, 1, created.ID, &models.GiveawayUpdate{Status: &back})
	requireCode(t, err, apperrors.ErrCodeValidation)

	forward := models.GiveawayStatusEnded
	updated, err := svc.Update(ctx, 1, created.ID, &models.GiveawayUpdate{Status: &forward})
	require.NoError(t, err)
	assert.Equal(t, models.GiveawayStatusEnded, updated.Status)
}

func TestUpdateSameStatusIsNoOp(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	now := time.Now()

	created, err := svc.Create(ctx, 1, validCreate("echo-status", now.Add(-time.Hour), now.Add(time.Hour)))
	require.NoError(t, err)
	require.Equal(t, models.GiveawayStatusActive, created.Status)

	// A PUT that echoes the current status back must not be rejected.
	same := models.GiveawayStatusActive
	title := "Renamed Drop"
	updated, err := svc.Update(ctx, 1, created.ID, &models.GiveawayUpdate{Status: &same, Title: &title})
	require.NoError(t, err)
	assert.Equal(t, models.GiveawayStatusActive, updated.Status)
	assert.Equal(t, "Renamed Drop", updated.Title)
}

func TestUpdateCannotForceWinnerSelected(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	now := time.Now()

	created, err := svc.Create(ctx, 1, validCreate("no-shortcut", now.Add(-time.Hour), now.Add(time.Hour)))
	require.NoError(t, err)

	target := models.GiveawayStatusWinnerSelected
	_, err = svc.Update(ctx, 1, created.ID, &models.GiveawayUpdate{Status: &target})
	requireCode(t, err, apperrors.ErrCodeValidation)
}

func TestDeleteRefusedWithParticipants(t *testing.T) {
	svc, participants := newTestService(t, nil)
	ctx := context.Background()
	now := time.Now()

	created, err := svc.Create(ctx, 1, validCreate("populated", now.Add(-time.Hour), now.Add(time.Hour)))
	require.NoError(t, err)

	require.NoError(t, participants.Create(ctx, &pmodels.Participant{
		GiveawayID: created.ID,
		UserID:     42,
		Status:     pmodels.ParticipantStatusJoined,
		InviteCode: "CODE4242",
		JoinedAt:   now,
	}))

	err = svc.Delete(ctx, 1, created.ID)
	requireCode(t, err, apperrors.ErrCodeConflict)

	// Still there.
	_, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
}

func TestResponseCarriesParticipantCount(t *testing.T) {
	svc, participants := newTestService(t, nil)
	ctx := context.Background()
	now := time.Now()

	created, err := svc.Create(ctx, 1, validCreate("counted", now.Add(-time.Hour), now.Add(time.Hour)))
	require.NoError(t, err)

	for i := int64(1); i <= 3; i++ {
		require.NoError(t, participants.Create(ctx, &pmodels.Participant{
			GiveawayID: created.ID,
			UserID:     i,
			Status:     pmodels.ParticipantStatusJoined,
			InviteCode: "CODE000" + string(rune('0'+i)),
			JoinedAt:   now,
		}))
	}

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.ParticipantsCount)
}

func requireCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	require.Equal(t, code, appErr.Code, "unexpected error code: %v", appErr)
}
