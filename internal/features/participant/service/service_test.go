package service

import (
	"context"
	"sync"
	"testing"
	"time"

	apperrors "giveaway-engine-backend/internal/common/errors"
	gmodels "giveaway-engine-backend/internal/features/giveaway/models"
	gmemory "giveaway-engine-backend/internal/features/giveaway/repository/memory"
	gservice "giveaway-engine-backend/internal/features/giveaway/service"
	"giveaway-engine-backend/internal/features/participant/models"
	pmemory "giveaway-engine-backend/internal/features/participant/repository/memory"
	"giveaway-engine-backend/internal/platform/audit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTaskLister []string

func (l staticTaskLister) RequiredTaskIDs(ctx context.Context, giveawayID string) ([]string, error) {
	return l, nil
}

type fixture struct {
	svc          ParticipantService
	giveaways    gservice.GiveawayService
	participants *pmemory.Repository
}

func newFixture(t *testing.T, required []string) *fixture {
	t.Helper()
	participants := pmemory.NewRepository()
	grepo := gmemory.NewRepository(participants)
	gsvc := gservice.NewGiveawayService(grepo, participants, staticTaskLister(required), audit.NewZerologAudit())
	return &fixture{
		svc:          NewParticipantService(participants, gsvc, staticTaskLister(required)),
		giveaways:    gsvc,
		participants: participants,
	}
}

func (f *fixture) newGiveaway(t *testing.T, slug string, start, end time.Time) string {
	t.Helper()
	created, err := f.giveaways.Create(context.Background(), 1, &gmodels.GiveawayCreate{
		Slug:      slug,
		Title:     "Prize Drop",
		PrizeName: "Gadget",
		StartDate: start,
		EndDate:   end,
	})
	require.NoError(t, err)
	return created.ID
}

func TestJoinActiveGiveaway(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	now := time.Now()
	id := f.newGiveaway(t, "open", now.Add(-time.Hour), now.Add(time.Hour))

	p, err := f.svc.Join(ctx, id, 100)
	require.NoError(t, err)
	assert.Equal(t, models.ParticipantStatusJoined, p.Status)
	assert.Equal(t, 0, p.Points)
	assert.Len(t, p.InviteCode, 8)
	assert.True(t, p.Eligible, "no required tasks means eligible immediately")
}

func TestJoinRequiresActiveStatus(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	now := time.Now()
	id := f.newGiveaway(t, "not-yet", now.Add(time.Hour), now.Add(2*time.Hour))

	_, err := f.svc.Join(ctx, id, 100)
	requireCode(t, err, apperrors.ErrCodeForbidden)
}

func TestJoinTwiceConflicts(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	now := time.Now()
	id := f.newGiveaway(t, "once", now.Add(-time.Hour), now.Add(time.Hour))

	_, err := f.svc.Join(ctx, id, 100)
	require.NoError(t, err)

	_, err = f.svc.Join(ctx, id, 100)
	requireCode(t, err, apperrors.ErrCodeConflict)
}

func TestConcurrentJoinsCreateOneRecord(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	now := time.Now()
	id := f.newGiveaway(t, "stampede", now.Add(-time.Hour), now.Add(time.Hour))

	const attempts = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	var joined, conflicted int

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Join(ctx, id, 100)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				joined++
			default:
				appErr, ok := apperrors.AsAppError(err)
				if ok && appErr.Code == apperrors.ErrCodeConflict {
					conflicted++
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, joined)
	assert.Equal(t, attempts-1, conflicted)

	count, err := f.svc.Count(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGetReturnsNilForNonParticipant(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	now := time.Now()
	id := f.newGiveaway(t, "quiet", now.Add(-time.Hour), now.Add(time.Hour))

	p, err := f.svc.Get(ctx, id, 100)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestEligibilityDerivedFromRequiredTasks(t *testing.T) {
	f := newFixture(t, []string{"t1", "t2"})
	ctx := context.Background()
	now := time.Now()
	id := f.newGiveaway(t, "tasked", now.Add(-time.Hour), now.Add(time.Hour))

	_, err := f.svc.Join(ctx, id, 100)
	require.NoError(t, err)

	p, err := f.svc.Get(ctx, id, 100)
	require.NoError(t, err)
	assert.False(t, p.Eligible)

	_, err = f.participants.CompleteTask(ctx, id, 100, "t1", 10)
	require.NoError(t, err)
	p, err = f.svc.Get(ctx, id, 100)
	require.NoError(t, err)
	assert.False(t, p.Eligible, "one of two required tasks is not enough")

	_, err = f.participants.CompleteTask(ctx, id, 100, "t2", 10)
	require.NoError(t, err)
	p, err = f.svc.Get(ctx, id, 100)
	require.NoError(t, err)
	assert.True(t, p.Eligible)
	assert.Equal(t, 20, p.Points)
}

func TestListPaginates(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	now := time.Now()
	id := f.newGiveaway(t, "pages", now.Add(-time.Hour), now.Add(time.Hour))

	for i := int64(1); i <= 5; i++ {
		_, err := f.svc.Join(ctx, id, i)
		require.NoError(t, err)
	}

	page, total, err := f.svc.List(ctx, id, models.ParticipantFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, page, 2)
}

func requireCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	require.Equal(t, code, appErr.Code, "unexpected error code: %v", appErr)
}
