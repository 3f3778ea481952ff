// Package memory holds a map-backed ParticipantRepository honoring the same
// conditional-write contracts as the redis implementation. Tests use it to
// exercise service logic without a store.
package memory

import (
	"context"
	"sort"
	"sync"

	"giveaway-engine-backend/internal/features/participant/models"
	"giveaway-engine-backend/internal/features/participant/repository"
)

type key struct {
	giveawayID string
	userID     int64
}

type Repository struct {
	mu           sync.Mutex
	participants map[key]*models.Participant
	codes        map[string]repository.InviteCodeRef
	credited     map[key]map[int64]bool
}

func NewRepository() *Repository {
	return &Repository{
		participants: make(map[key]*models.Participant),
		codes:        make(map[string]repository.InviteCodeRef),
		credited:     make(map[key]map[int64]bool),
	}
}

func clone(p *models.Participant) *models.Participant {
	cp := *p
	cp.CompletedTasks = append([]string(nil), p.CompletedTasks...)
	return &cp
}

func (r *Repository) Create(ctx context.Context, participant *models.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{participant.GiveawayID, participant.UserID}
	if _, exists := r.participants[k]; exists {
		return repository.ErrAlreadyJoined
	}
	if _, exists := r.codes[participant.InviteCode]; exists {
		return repository.ErrInviteCodeTaken
	}

	r.participants[k] = clone(participant)
	r.codes[participant.InviteCode] = repository.InviteCodeRef{
		GiveawayID: participant.GiveawayID,
		UserID:     participant.UserID,
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, giveawayID string, userID int64) (*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[key{giveawayID, userID}]
	if !ok {
		return nil, repository.ErrParticipantNotFound
	}
	return clone(p), nil
}

func (r *Repository) List(ctx context.Context, giveawayID string, filter models.ParticipantFilter) ([]*models.Participant, int, error) {
	all := r.Snapshot(giveawayID)

	filtered := make([]*models.Participant, 0, len(all))
	for _, p := range all {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		filtered = append(filtered, p)
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].JoinedAt.Before(filtered[j].JoinedAt)
	})

	total := len(filtered)
	if filter.Offset > 0 {
		if filter.Offset >= len(filtered) {
			return []*models.Participant{}, total, nil
		}
		filtered = filtered[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(filtered) {
		filtered = filtered[:filter.Limit]
	}
	return filtered, total, nil
}

func (r *Repository) Count(ctx context.Context, giveawayID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for k := range r.participants {
		if k.giveawayID == giveawayID {
			n++
		}
	}
	return n, nil
}

func (r *Repository) ResolveInviteCode(ctx context.Context, code string) (*repository.InviteCodeRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ref, ok := r.codes[code]
	if !ok {
		return nil, repository.ErrInviteCodeNotFound
	}
	return &ref, nil
}

func (r *Repository) CompleteTask(ctx context.Context, giveawayID string, userID int64, taskID string, points int) (*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[key{giveawayID, userID}]
	if !ok {
		return nil, repository.ErrParticipantNotFound
	}
	if p.HasCompleted(taskID) {
		return nil, repository.ErrTaskAlreadyCompleted
	}

	p.CompletedTasks = append(p.CompletedTasks, taskID)
	p.Points += points
	return clone(p), nil
}

func (r *Repository) CreditInvite(ctx context.Context, giveawayID string, referrerID, inviteeID int64, cap, referrerBonus, inviteeBonus int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	referrer, ok := r.participants[key{giveawayID, referrerID}]
	if !ok {
		return repository.ErrParticipantNotFound
	}
	invitee, ok := r.participants[key{giveawayID, inviteeID}]
	if !ok {
		return repository.ErrParticipantNotFound
	}

	refKey := key{giveawayID, referrerID}
	if r.credited[refKey] == nil {
		r.credited[refKey] = make(map[int64]bool)
	}
	if r.credited[refKey][inviteeID] {
		return repository.ErrInviteAlreadyCredited
	}
	if referrer.InviteCount >= cap {
		return repository.ErrInviteCapReached
	}

	r.credited[refKey][inviteeID] = true
	referrer.InviteCount++
	referrer.Points += referrerBonus
	invitee.Points += inviteeBonus
	return nil
}

func (r *Repository) HasAnyCompletion(ctx context.Context, giveawayID string, taskID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, p := range r.participants {
		if k.giveawayID == giveawayID && p.HasCompleted(taskID) {
			return true, nil
		}
	}
	return false, nil
}

// Snapshot returns copies of every participant of the giveaway.
func (r *Repository) Snapshot(giveawayID string) []*models.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.Participant, 0)
	for k, p := range r.participants {
		if k.giveawayID == giveawayID {
			out = append(out, clone(p))
		}
	}
	return out
}

// SetStatus overwrites a participant's status, bypassing the usual guards.
func (r *Repository) SetStatus(giveawayID string, userID int64, status models.ParticipantStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.participants[key{giveawayID, userID}]; ok {
		p.Status = status
	}
}
