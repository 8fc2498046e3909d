package memory

import (
	"context"
	"sync"
	"time"

	"github.com/rosterhub/rosterhub/internal/domain/team"
)

type MembershipsRepo struct {
	mu    sync.RWMutex
	items map[string]team.Membership // teamID + "/" + userID
}

func NewMembershipsRepo() *MembershipsRepo {
	return &MembershipsRepo{
		items: make(map[string]team.Membership),
	}
}

func membershipKey(teamID, userID string) string {
	return teamID + "/" + userID
}

// Create enforces the one-membership-per-(team,user) invariant.
func (r *MembershipsRepo) Create(ctx context.Context, m team.Membership) (team.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := membershipKey(m.TeamID, m.UserID)

	if _, exists := r.items[key]; exists {
		return team.Membership{}, team.ErrAlreadyMember
	}

	m.CreatedAt = time.Now().UTC()
	r.items[key] = m

	return m, nil
}

func (r *MembershipsRepo) Get(ctx context.Context, teamID, userID string) (team.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.items[membershipKey(teamID, userID)]

	if !ok {
		return team.Membership{}, team.ErrMembershipNotFound
	}

	return m, nil
}

func (r *MembershipsRepo) ListByTeam(ctx context.Context, teamID string) ([]team.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Membership, 0)

	for _, m := range r.items {
		if m.TeamID == teamID {
			out = append(out, m)
		}
	}

	return out, nil
}

func (r *MembershipsRepo) UpdateRole(ctx context.Context, teamID, userID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := membershipKey(teamID, userID)
	m, ok := r.items[key]

	if !ok {
		return team.ErrMembershipNotFound
	}

	m.Role = role
	r.items[key] = m

	return nil
}

func (r *MembershipsRepo) Delete(ctx context.Context, teamID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := membershipKey(teamID, userID)

	if _, ok := r.items[key]; !ok {
		return team.ErrMembershipNotFound
	}

	delete(r.items, key)

	return nil
}
