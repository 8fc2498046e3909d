package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rosterhub/rosterhub/internal/domain/match"
)

type MatchesRepo struct {
	mu    sync.RWMutex
	items map[string]match.Match
}

func NewMatchesRepo() *MatchesRepo {
	return &MatchesRepo{
		items: make(map[string]match.Match),
	}
}

func (r *MatchesRepo) Create(ctx context.Context, teamID string, req match.CreateMatchRequest) (match.Match, error) {
	now := time.Now().UTC()

	m := match.Match{
		ID:        uuid.NewString(),
		TeamID:    teamID,
		Opponent:  req.Opponent,
		Location:  req.Location,
		KickoffAt: req.KickoffAt,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	r.items[m.ID] = m
	r.mu.Unlock()

	return m, nil
}

func (r *MatchesRepo) GetByID(ctx context.Context, id string) (match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.items[id]

	if !ok {
		return match.Match{}, match.ErrNotFound
	}

	return m, nil
}

func (r *MatchesRepo) ListByTeam(ctx context.Context, teamID string) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0)

	for _, m := range r.items {
		if m.TeamID == teamID {
			out = append(out, m)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].KickoffAt.Before(out[j].KickoffAt) })

	return out, nil
}

func (r *MatchesRepo) Update(ctx context.Context, id string, req match.UpdateMatchRequest) (match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.items[id]

	if !ok {
		return match.Match{}, match.ErrNotFound
	}

	m.Opponent = req.Opponent
	m.Location = req.Location
	m.KickoffAt = req.KickoffAt
	m.Notes = req.Notes
	m.UpdatedAt = time.Now().UTC()
	r.items[id] = m

	return m, nil
}

func (r *MatchesRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return match.ErrNotFound
	}

	delete(r.items, id)

	return nil
}
