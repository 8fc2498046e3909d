package memory

import (
	"context"
	"sync"

	"github.com/rosterhub/rosterhub/internal/session"
)

type SessionsRepo struct {
	mu    sync.RWMutex
	items map[string]session.Session
}

func NewSessionsRepo() *SessionsRepo {
	return &SessionsRepo{
		items: make(map[string]session.Session),
	}
}

func (r *SessionsRepo) Create(ctx context.Context, s session.Session) error {
	r.mu.Lock()
	r.items[s.ID] = s
	r.mu.Unlock()

	return nil
}

func (r *SessionsRepo) Get(ctx context.Context, id string) (session.Session, error) {
	r.mu.RLock()
	s, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return session.Session{}, session.ErrNoSession
	}

	return s, nil
}

func (r *SessionsRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	delete(r.items, id)
	r.mu.Unlock()

	return nil
}
