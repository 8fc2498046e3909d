package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rosterhub/rosterhub/internal/domain/announcement"
)

type AnnouncementsRepo struct {
	mu    sync.RWMutex
	items map[string]announcement.Announcement
}

func NewAnnouncementsRepo() *AnnouncementsRepo {
	return &AnnouncementsRepo{
		items: make(map[string]announcement.Announcement),
	}
}

func (r *AnnouncementsRepo) Create(ctx context.Context, teamID, authorID string, req announcement.CreateAnnouncementRequest) (announcement.Announcement, error) {
	a := announcement.Announcement{
		ID:        uuid.NewString(),
		TeamID:    teamID,
		AuthorID:  authorID,
		Title:     req.Title,
		Body:      req.Body,
		CreatedAt: time.Now().UTC(),
	}

	r.mu.Lock()
	r.items[a.ID] = a
	r.mu.Unlock()

	return a, nil
}

func (r *AnnouncementsRepo) GetByID(ctx context.Context, id string) (announcement.Announcement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.items[id]

	if !ok {
		return announcement.Announcement{}, announcement.ErrNotFound
	}

	return a, nil
}

func (r *AnnouncementsRepo) ListByTeam(ctx context.Context, teamID string) ([]announcement.Announcement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]announcement.Announcement, 0)

	for _, a := range r.items {
		if a.TeamID == teamID {
			out = append(out, a)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	return out, nil
}

func (r *AnnouncementsRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return announcement.ErrNotFound
	}

	delete(r.items, id)

	return nil
}
