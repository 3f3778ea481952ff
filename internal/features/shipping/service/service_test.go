package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	apperrors "giveaway-engine-backend/internal/common/errors"
	gmodels "giveaway-engine-backend/internal/features/giveaway/models"
	gmemory "giveaway-engine-backend/internal/features/giveaway/repository/memory"
	gservice "giveaway-engine-backend/internal/features/giveaway/service"
	pmodels "giveaway-engine-backend/internal/features/participant/models"
	pmemory "giveaway-engine-backend/internal/features/participant/repository/memory"
	"giveaway-engine-backend/internal/features/shipping/models"
	"giveaway-engine-backend/internal/features/shipping/repository"
	"giveaway-engine-backend/internal/platform/audit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noTasks struct{}

func (noTasks) RequiredTaskIDs(ctx context.Context, giveawayID string) ([]string, error) {
	return nil, nil
}

type memoryShippingRepo struct {
	mu    sync.Mutex
	infos map[string]*models.ShippingInfo
}

func newMemoryShippingRepo() *memoryShippingRepo {
	return &memoryShippingRepo{infos: make(map[string]*models.ShippingInfo)}
}

func shippingKey(giveawayID string, userID int64) string {
	return fmt.Sprintf("%s/%d", giveawayID, userID)
}

func (r *memoryShippingRepo) Upsert(ctx context.Context, info *models.ShippingInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *info
	r.infos[shippingKey(info.GiveawayID, info.UserID)] = &cp
	return nil
}

func (r *memoryShippingRepo) Get(ctx context.Context, giveawayID string, userID int64) (*models.ShippingInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.infos[shippingKey(giveawayID, userID)]
	if !ok {
		return nil, repository.ErrShippingNotFound
	}
	cp := *info
	return &cp, nil
}

type fixture struct {
	svc          ShippingService
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
		Slug:      "shipping-fixture",
		Title:     "Prize Drop",
		PrizeName: "Gadget",
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(time.Hour),
	})
	require.NoError(t, err)

	return &fixture{
		svc:          NewShippingService(newMemoryShippingRepo(), participants, gsvc, audit.NewZerologAudit()),
		participants: participants,
		giveawayID:   created.ID,
	}
}

func (f *fixture) join(t *testing.T, userID int64, status pmodels.ParticipantStatus) {
	t.Helper()
	require.NoError(t, f.participants.Create(context.Background(), &pmodels.Participant{
		GiveawayID: f.giveawayID,
		UserID:     userID,
		Status:     status,
		InviteCode: "CODE0001",
		JoinedAt:   time.Now(),
	}))
}

func validSubmit() *models.ShippingSubmit {
	return &models.ShippingSubmit{
		FullName:    "Jane Roe",
		Phone:       "+123456789",
		Country:     "Estonia",
		City:        "Tallinn",
		AddressLine: "Main St 1",
		PostalCode:  "10111",
	}
}

func TestSubmitRestrictedToWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.join(t, 100, pmodels.ParticipantStatusJoined)

	_, err := f.svc.SubmitShipping(ctx, f.giveawayID, 100, validSubmit())
	requireCode(t, err, apperrors.ErrCodeForbidden)

	_, err = f.svc.SubmitShipping(ctx, f.giveawayID, 999, validSubmit())
	requireCode(t, err, apperrors.ErrCodeForbidden)
}

func TestSubmitAndResubmit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.join(t, 100, pmodels.ParticipantStatusWinner)

	first, err := f.svc.SubmitShipping(ctx, f.giveawayID, 100, validSubmit())
	require.NoError(t, err)
	assert.Equal(t, "Tallinn", first.City)

	update := validSubmit()
	update.City = "Tartu"
	second, err := f.svc.SubmitShipping(ctx, f.giveawayID, 100, update)
	require.NoError(t, err)
	assert.Equal(t, "Tartu", second.City)
	assert.Equal(t, first.CreatedAt, second.CreatedAt, "resubmission keeps the original timestamp")
}

func TestSubmitRejectsBlankFields(t *testing.T) {
	f := newFixture(t)
	f.join(t, 100, pmodels.ParticipantStatusWinner)

	input := validSubmit()
	input.PostalCode = "   "
	_, err := f.svc.SubmitShipping(context.Background(), f.giveawayID, 100, input)
	requireCode(t, err, apperrors.ErrCodeValidation)
}

func TestGetShippingPrivacy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.join(t, 100, pmodels.ParticipantStatusWinner)

	_, err := f.svc.SubmitShipping(ctx, f.giveawayID, 100, validSubmit())
	require.NoError(t, err)

	// Winner reads their own record.
	info, err := f.svc.GetShipping(ctx, f.giveawayID, 100, 100, false)
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe", info.FullName)

	// Another user is refused.
	_, err = f.svc.GetShipping(ctx, f.giveawayID, 100, 200, false)
	requireCode(t, err, apperrors.ErrCodeForbidden)

	// Admin reads anyone's record.
	info, err = f.svc.GetShipping(ctx, f.giveawayID, 100, 200, true)
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe", info.FullName)
}

func TestGetShippingRequiresWinnerStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.join(t, 100, pmodels.ParticipantStatusJoined)

	// A participant who did not win gets refused, not a lookup miss.
	_, err := f.svc.GetShipping(ctx, f.giveawayID, 100, 100, false)
	requireCode(t, err, apperrors.ErrCodeForbidden)

	// Same for someone who never joined at all.
	_, err = f.svc.GetShipping(ctx, f.giveawayID, 999, 999, false)
	requireCode(t, err, apperrors.ErrCodeForbidden)
}

func TestGetShippingMissingRecord(t *testing.T) {
	f := newFixture(t)
	f.join(t, 100, pmodels.ParticipantStatusWinner)

	_, err := f.svc.GetShipping(context.Background(), f.giveawayID, 100, 100, false)
	requireCode(t, err, apperrors.ErrCodeNotFound)
}

func requireCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	require.Equal(t, code, appErr.Code, "unexpected error code: %v", appErr)
}
