// Package memory holds a map-backed GiveawayRepository honoring the same
// conditional-write contracts as the redis implementation. Tests use it to
// exercise service logic without a store.
package memory

import (
	"context"
	"sort"
	"sync"

	"giveaway-engine-backend/internal/features/giveaway/models"
	"giveaway-engine-backend/internal/features/giveaway/repository"
	pmodels "giveaway-engine-backend/internal/features/participant/models"
	pmemory "giveaway-engine-backend/internal/features/participant/repository/memory"
)

type Repository struct {
	mu           sync.Mutex
	giveaways    map[string]*models.Giveaway
	slugs        map[string]string
	participants *pmemory.Repository
}

func NewRepository(participants *pmemory.Repository) *Repository {
	return &Repository{
		giveaways:    make(map[string]*models.Giveaway),
		slugs:        make(map[string]string),
		participants: participants,
	}
}

func clone(g *models.Giveaway) *models.Giveaway {
	cp := *g
	if g.WinnerID != nil {
		id := *g.WinnerID
		cp.WinnerID = &id
	}
	return &cp
}

func (r *Repository) Create(ctx context.Context, giveaway *models.Giveaway) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.slugs[giveaway.Slug]; exists {
		return repository.ErrSlugTaken
	}
	r.giveaways[giveaway.ID] = clone(giveaway)
	r.slugs[giveaway.Slug] = giveaway.ID
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*models.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.giveaways[id]
	if !ok {
		return nil, repository.ErrGiveawayNotFound
	}
	return clone(g), nil
}

func (r *Repository) GetBySlug(ctx context.Context, slug string) (*models.Giveaway, error) {
	r.mu.Lock()
	id, ok := r.slugs[slug]
	r.mu.Unlock()
	if !ok {
		return nil, repository.ErrGiveawayNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *Repository) Update(ctx context.Context, giveaway *models.Giveaway, prevStatus models.GiveawayStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.giveaways[giveaway.ID]; !ok {
		return repository.ErrGiveawayNotFound
	}
	r.giveaways[giveaway.ID] = clone(giveaway)
	return nil
}

func (r *Repository) TransitionStatus(ctx context.Context, id string, from, to models.GiveawayStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.giveaways[id]
	if !ok {
		return repository.ErrGiveawayNotFound
	}
	if g.Status != from {
		return repository.ErrStatusConflict
	}
	g.Status = to
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	count, err := r.participants.Count(ctx, id)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.giveaways[id]
	if !ok {
		return repository.ErrGiveawayNotFound
	}
	if count > 0 {
		return repository.ErrHasParticipants
	}
	delete(r.slugs, g.Slug)
	delete(r.giveaways, id)
	return nil
}

func (r *Repository) List(ctx context.Context, filter models.ListFilter) ([]*models.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.Giveaway, 0, len(r.giveaways))
	for _, g := range r.giveaways {
		if filter.Status != "" && g.Status != filter.Status {
			continue
		}
		out = append(out, clone(g))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*models.Giveaway{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *Repository) CommitWinner(ctx context.Context, giveawayID string, mode models.SelectionMode, choose repository.ChooseWinnerFunc) (*models.SelectWinnerResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.giveaways[giveawayID]
	if !ok {
		return nil, repository.ErrGiveawayNotFound
	}
	if g.Status != models.GiveawayStatusActive && g.Status != models.GiveawayStatusEnded {
		return nil, repository.ErrWrongStatusForWinner
	}
	if g.WinnerID != nil {
		return nil, repository.ErrWinnerAlreadySelected
	}

	pool := r.participants.Snapshot(giveawayID)
	sort.Slice(pool, func(i, j int) bool { return pool[i].UserID < pool[j].UserID })

	winnerID, poolSize, err := choose(pool)
	if err != nil {
		return nil, err
	}

	g.Status = models.GiveawayStatusWinnerSelected
	g.WinnerID = &winnerID
	g.WinnerSelectionMode = mode

	for _, p := range pool {
		status := pmodels.ParticipantStatusNotSelected
		if p.UserID == winnerID {
			status = pmodels.ParticipantStatusWinner
		}
		r.participants.SetStatus(giveawayID, p.UserID, status)
	}

	return &models.SelectWinnerResult{
		GiveawayID: giveawayID,
		WinnerID:   winnerID,
		Mode:       mode,
		PoolSize:   poolSize,
	}, nil
}
