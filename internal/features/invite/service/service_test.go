package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"giveaway-engine-backend/internal/common/config"
	apperrors "giveaway-engine-backend/internal/common/errors"
	gmodels "giveaway-engine-backend/internal/features/giveaway/models"
	gmemory "giveaway-engine-backend/internal/features/giveaway/repository/memory"
	gservice "giveaway-engine-backend/internal/features/giveaway/service"
	pmodels "giveaway-engine-backend/internal/features/participant/models"
	pmemory "giveaway-engine-backend/internal/features/participant/repository/memory"
	"giveaway-engine-backend/internal/platform/audit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noTasks struct{}

func (noTasks) RequiredTaskIDs(ctx context.Context, giveawayID string) ([]string, error) {
	return nil, nil
}

type fixture struct {
	svc          InviteService
	participants *pmemory.Repository
	giveawayID   string
	cfg          *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	participants := pmemory.NewRepository()
	grepo := gmemory.NewRepository(participants)
	gsvc := gservice.NewGiveawayService(grepo, participants, noTasks{}, audit.NewZerologAudit())

	now := time.Now()
	created, err := gsvc.Create(ctx, 1, &gmodels.GiveawayCreate{
		Slug:      "invite-fixture",
		Title:     "Prize Drop",
		PrizeName: "Gadget",
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(time.Hour),
	})
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Giveaway.InviteCap = 2
	cfg.Giveaway.InviteReferrerBonus = 50
	cfg.Giveaway.InviteInviteeBonus = 25

	return &fixture{
		svc:          NewInviteService(participants, gsvc, cfg, audit.NewZerologAudit()),
		participants: participants,
		giveawayID:   created.ID,
		cfg:          cfg,
	}
}

func (f *fixture) join(t *testing.T, userID int64) string {
	t.Helper()
	code := fmt.Sprintf("CODE%04d", userID)
	require.NoError(t, f.participants.Create(context.Background(), &pmodels.Participant{
		GiveawayID: f.giveawayID,
		UserID:     userID,
		Status:     pmodels.ParticipantStatusJoined,
		InviteCode: code,
		JoinedAt:   time.Now(),
	}))
	return code
}

func TestProcessInviteCreditsBothSides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	referrerCode := f.join(t, 10)
	f.join(t, 20)

	result, err := f.svc.ProcessInvite(ctx, f.giveawayID, 20, referrerCode)
	require.NoError(t, err)
	assert.Equal(t, int64(10), result.ReferrerID)
	assert.Equal(t, int64(20), result.InviteeID)

	referrer, err := f.participants.Get(ctx, f.giveawayID, 10)
	require.NoError(t, err)
	assert.Equal(t, 50, referrer.Points)
	assert.Equal(t, 1, referrer.InviteCount)

	invitee, err := f.participants.Get(ctx, f.giveawayID, 20)
	require.NoError(t, err)
	assert.Equal(t, 25, invitee.Points)

	stats, err := f.svc.GetInviteStats(ctx, f.giveawayID, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.InviteCount)
	assert.Equal(t, 2, stats.InviteCap)
	assert.Equal(t, 50, stats.PointsEarned)
}

func TestProcessInviteRejectsSelfReferral(t *testing.T) {
	f := newFixture(t)
	code := f.join(t, 10)

	_, err := f.svc.ProcessInvite(context.Background(), f.giveawayID, 10, code)
	requireCode(t, err, apperrors.ErrCodeValidation)
}

func TestProcessInviteUnknownCode(t *testing.T) {
	f := newFixture(t)
	f.join(t, 20)

	_, err := f.svc.ProcessInvite(context.Background(), f.giveawayID, 20, "NOPE1234")
	requireCode(t, err, apperrors.ErrCodeNotFound)
}

func TestProcessInviteRequiresJoinedInvitee(t *testing.T) {
	f := newFixture(t)
	code := f.join(t, 10)

	// 30 never joined the giveaway.
	_, err := f.svc.ProcessInvite(context.Background(), f.giveawayID, 30, code)
	requireCode(t, err, apperrors.ErrCodeValidation)
}

func TestProcessInviteOncePerInvitee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code := f.join(t, 10)
	f.join(t, 20)

	_, err := f.svc.ProcessInvite(ctx, f.giveawayID, 20, code)
	require.NoError(t, err)

	_, err = f.svc.ProcessInvite(ctx, f.giveawayID, 20, code)
	requireCode(t, err, apperrors.ErrCodeConflict)

	referrer, err := f.participants.Get(ctx, f.giveawayID, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, referrer.InviteCount, "double redeem must not double credit")
}

func TestInviteCapEnforcedUnderConcurrency(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code := f.join(t, 10)

	const invitees = 6
	for i := int64(0); i < invitees; i++ {
		f.join(t, 100+i)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var credited, capped int
	for i := int64(0); i < invitees; i++ {
		wg.Add(1)
		go func(invitee int64) {
			defer wg.Done()
			_, err := f.svc.ProcessInvite(ctx, f.giveawayID, invitee, code)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				credited++
				return
			}
			if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.ErrCodeCapacity {
				capped++
			}
		}(100 + i)
	}
	wg.Wait()

	assert.Equal(t, f.cfg.Giveaway.InviteCap, credited)
	assert.Equal(t, invitees-f.cfg.Giveaway.InviteCap, capped)

	referrer, err := f.participants.Get(ctx, f.giveawayID, 10)
	require.NoError(t, err)
	assert.Equal(t, f.cfg.Giveaway.InviteCap, referrer.InviteCount)
	assert.Equal(t, f.cfg.Giveaway.InviteCap*f.cfg.Giveaway.InviteReferrerBonus, referrer.Points)
}

func requireCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	require.Equal(t, code, appErr.Code, "unexpected error code: %v", appErr)
}
