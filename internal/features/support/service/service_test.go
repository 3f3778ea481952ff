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
	pmemory "giveaway-engine-backend/internal/features/participant/repository/memory"
	"giveaway-engine-backend/internal/features/support/models"
	"giveaway-engine-backend/internal/platform/audit"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noTasks struct{}

func (noTasks) RequiredTaskIDs(ctx context.Context, giveawayID string) ([]string, error) {
	return nil, nil
}

type memorySupportRepo struct {
	mu      sync.Mutex
	entries []*models.Support
}

func (r *memorySupportRepo) Append(ctx context.Context, support *models.Support) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *support
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *memorySupportRepo) List(ctx context.Context, giveawayID string) ([]*models.Support, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Support, 0, len(r.entries))
	for _, e := range r.entries {
		if e.GiveawayID == giveawayID {
			out = append(out, e)
		}
	}
	return out, nil
}

func newFixture(t *testing.T) (SupportService, string) {
	t.Helper()
	ctx := context.Background()

	participants := pmemory.NewRepository()
	grepo := gmemory.NewRepository(participants)
	gsvc := gservice.NewGiveawayService(grepo, participants, noTasks{}, audit.NewZerologAudit())

	now := time.Now()
	created, err := gsvc.Create(ctx, 1, &gmodels.GiveawayCreate{
		Slug:      "support-fixture",
		Title:     "Prize Drop",
		PrizeName: "Gadget",
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(time.Hour),
	})
	require.NoError(t, err)

	return NewSupportService(&memorySupportRepo{}, gsvc, audit.NewZerologAudit()), created.ID
}

func TestRecordSupportValidatesAmount(t *testing.T) {
	svc, id := newFixture(t)
	ctx := context.Background()

	_, err := svc.RecordSupport(ctx, id, 10, &models.SupportCreate{Amount: decimal.Zero})
	requireCode(t, err, apperrors.ErrCodeValidation)

	_, err = svc.RecordSupport(ctx, id, 10, &models.SupportCreate{Amount: decimal.NewFromInt(-5)})
	requireCode(t, err, apperrors.ErrCodeValidation)
}

func TestTotalsSumExactly(t *testing.T) {
	svc, id := newFixture(t)
	ctx := context.Background()

	// Amounts chosen to expose float rounding if it sneaked in.
	amounts := []string{"0.10", "0.20", "0.30"}
	for i, a := range amounts {
		amt, err := decimal.NewFromString(a)
		require.NoError(t, err)
		_, err = svc.RecordSupport(ctx, id, int64(i+1), &models.SupportCreate{Amount: amt, DisplayName: "Backer"})
		require.NoError(t, err)
	}

	// Second pledge from the same user counts toward the total but not the
	// supporter count.
	again, _ := decimal.NewFromString("0.40")
	_, err := svc.RecordSupport(ctx, id, 1, &models.SupportCreate{Amount: again, DisplayName: "Backer"})
	require.NoError(t, err)

	totals, err := svc.GetTotals(ctx, id)
	require.NoError(t, err)
	assert.True(t, totals.TotalAmount.Equal(decimal.RequireFromString("1.00")), "got %s", totals.TotalAmount)
	assert.Equal(t, 3, totals.SupporterCount)
}

func TestAnonymousSupportersMaskedForPublic(t *testing.T) {
	svc, id := newFixture(t)
	ctx := context.Background()

	_, err := svc.RecordSupport(ctx, id, 1, &models.SupportCreate{
		Amount:      decimal.NewFromInt(5),
		IsAnonymous: true,
		DisplayName: "Secret Santa",
	})
	require.NoError(t, err)
	_, err = svc.RecordSupport(ctx, id, 2, &models.SupportCreate{
		Amount:      decimal.NewFromInt(3),
		DisplayName: "Proud Backer",
	})
	require.NoError(t, err)

	public, err := svc.ListSupporters(ctx, id, false)
	require.NoError(t, err)
	require.Len(t, public, 2)
	assert.Equal(t, "Anonymous", public[0].DisplayName)
	assert.Zero(t, public[0].UserID)
	assert.Equal(t, "Proud Backer", public[1].DisplayName)
	// Amounts stay visible either way.
	assert.True(t, public[0].Amount.Equal(decimal.NewFromInt(5)))

	admin, err := svc.ListSupporters(ctx, id, true)
	require.NoError(t, err)
	assert.Equal(t, "Secret Santa", admin[0].DisplayName)
	assert.Equal(t, int64(1), admin[0].UserID)
}

func requireCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	require.Equal(t, code, appErr.Code, "unexpected error code: %v", appErr)
}
