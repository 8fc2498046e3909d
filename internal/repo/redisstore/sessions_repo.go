package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rosterhub/rosterhub/internal/session"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

// SessionsRepo is the Redis-backed session store. Keys carry the session TTL
// so expired sessions vanish without a reaper.
type SessionsRepo struct {
	client *redis.Client
}

func New(cfg Config) (*SessionsRepo, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &SessionsRepo{client: client}, nil
}

// NewWithClient wraps an existing client (used by tests).
func NewWithClient(client *redis.Client) *SessionsRepo {
	return &SessionsRepo{client: client}
}

var _ session.Store = (*SessionsRepo)(nil)

func sessionKey(id string) string {
	return "session:" + id
}

func (r *SessionsRepo) Create(ctx context.Context, s session.Session) error {
	data, err := json.Marshal(s)

	if err != nil {
		return err
	}

	ttl := time.Until(s.ExpiresAt)

	if ttl <= 0 {
		return nil // already expired, nothing to store
	}

	return r.client.Set(ctx, sessionKey(s.ID), data, ttl).Err()
}

func (r *SessionsRepo) Get(ctx context.Context, id string) (session.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return session.Session{}, session.ErrNoSession
		}
		return session.Session{}, err
	}

	var s session.Session

	if err := json.Unmarshal(data, &s); err != nil {
		return session.Session{}, err
	}

	return s, nil
}

func (r *SessionsRepo) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, sessionKey(id)).Err()
}

func (r *SessionsRepo) Close() error {
	return r.client.Close()
}

func (r *SessionsRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
