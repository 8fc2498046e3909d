package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rosterhub/rosterhub/internal/domain/team"
)

type TeamsRepo struct {
	mu         sync.RWMutex
	items      map[string]team.Team
	byJoinCode map[string]string // join code -> team id
}

func NewTeamsRepo() *TeamsRepo {
	return &TeamsRepo{
		items:      make(map[string]team.Team),
		byJoinCode: make(map[string]string),
	}
}

func (r *TeamsRepo) Create(ctx context.Context, t team.Team) (team.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byJoinCode[t.JoinCode]; taken {
		return team.Team{}, team.ErrJoinCodeTaken
	}

	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	r.items[t.ID] = t
	r.byJoinCode[t.JoinCode] = t.ID

	return t, nil
}

func (r *TeamsRepo) GetByID(ctx context.Context, id string) (team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]

	if !ok {
		return team.Team{}, team.ErrNotFound
	}

	return t, nil
}

func (r *TeamsRepo) GetByJoinCode(ctx context.Context, code string) (team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byJoinCode[code]

	if !ok {
		return team.Team{}, team.ErrNotFound
	}

	return r.items[id], nil
}

// UpdateJoinCode atomically replaces the stored code, failing if another team
// already holds the new one.
func (r *TeamsRepo) UpdateJoinCode(ctx context.Context, teamID, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[teamID]

	if !ok {
		return team.ErrNotFound
	}

	if holder, taken := r.byJoinCode[code]; taken && holder != teamID {
		return team.ErrJoinCodeTaken
	}

	delete(r.byJoinCode, t.JoinCode)
	t.JoinCode = code
	t.UpdatedAt = time.Now().UTC()
	r.items[teamID] = t
	r.byJoinCode[code] = teamID

	return nil
}

func (r *TeamsRepo) List(ctx context.Context) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.items))

	for _, t := range r.items {
		out = append(out, t)
	}

	return out, nil
}
