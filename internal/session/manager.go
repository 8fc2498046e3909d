package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rosterhub/rosterhub/internal/domain/user"
	"github.com/rosterhub/rosterhub/internal/security"
)

// UserStore is the slice of the user repository the manager needs.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}

// MigrationMetrics records hash migration outcomes. Satisfied by
// observability.Prom; nil-safe via the noop default.
type MigrationMetrics interface {
	IncHashMigration(outcome string)
}

type noopMetrics struct{}

func (noopMetrics) IncHashMigration(string) {}

type Manager struct {
	users   UserStore
	store   Store
	hasher  *security.Hasher
	log     *slog.Logger
	metrics MigrationMetrics
	ttl     time.Duration
}

func NewManager(users UserStore, store Store, hasher *security.Hasher, log *slog.Logger, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	return &Manager{
		users:   users,
		store:   store,
		hasher:  hasher,
		log:     log,
		metrics: noopMetrics{},
		ttl:     ttl,
	}
}

func (m *Manager) WithMetrics(metrics MigrationMetrics) *Manager {
	if metrics != nil {
		m.metrics = metrics
	}
	return m
}

// Login verifies the credential and creates a server-side session. Unknown
// username and wrong password both come back as ErrInvalidCredentials.
// A successful verify against a legacy-format hash triggers a best-effort
// background re-hash; failure to persist the upgrade never fails the login.
func (m *Manager) Login(ctx context.Context, username, password string) (user.User, Session, error) {
	u, err := m.users.GetByUsername(ctx, username)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, Session{}, ErrInvalidCredentials
		}
		return user.User{}, Session{}, err
	}

	matched, legacy := m.hasher.Verify(ctx, password, u.PasswordHash)

	if !matched {
		return user.User{}, Session{}, ErrInvalidCredentials
	}

	if legacy {
		m.migrateHash(ctx, u.ID, username, password)
	}

	id, err := NewSessionID()

	if err != nil {
		return user.User{}, Session{}, err
	}

	now := time.Now().UTC()

	s := Session{
		ID:        id,
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	if err := m.store.Create(ctx, s); err != nil {
		return user.User{}, Session{}, err
	}

	return u, s, nil
}

// Resolve maps a session cookie value to the current user record. The user
// row is always re-fetched so role changes take effect on the next request,
// not the next login. Store failures propagate: a storage error must never
// silently authenticate (or anonymize) a caller.
func (m *Manager) Resolve(ctx context.Context, sessionID string) (user.User, error) {
	if sessionID == "" {
		return user.User{}, ErrNoSession
	}

	s, err := m.store.Get(ctx, sessionID)

	if err != nil {
		return user.User{}, err
	}

	if s.Expired(time.Now().UTC()) {
		_ = m.store.Delete(ctx, s.ID)
		return user.User{}, ErrNoSession
	}

	u, err := m.users.GetByID(ctx, s.UserID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// user deleted after the session was issued
			_ = m.store.Delete(ctx, s.ID)
			return user.User{}, ErrNoSession
		}
		return user.User{}, err
	}

	return u, nil
}

// FreshUser re-fetches a user row by id. Used by the bearer-token auth path,
// which trusts only the token subject, never claims-cached role data.
func (m *Manager) FreshUser(ctx context.Context, userID string) (user.User, error) {
	u, err := m.users.GetByID(ctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrNoSession
		}
		return user.User{}, err
	}

	return u, nil
}

// Logout destroys the session server-side. A stale-but-unexpired id replayed
// afterwards resolves to anonymous.
func (m *Manager) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	return m.store.Delete(ctx, sessionID)
}

// migrateHash re-hashes the plaintext with the modern algorithm and persists
// it, detached from the login request so a slow or failing upgrade cannot
// delay or fail the response.
func (m *Manager) migrateHash(ctx context.Context, userID, username, password string) {
	bg := context.WithoutCancel(ctx)

	go func() {
		mctx, cancel := context.WithTimeout(bg, 10*time.Second)
		defer cancel()

		encoded, err := m.hasher.Hash(mctx, password)

		if err != nil {
			m.log.Warn("password hash migration failed", "user_id", userID, "err", err)
			m.metrics.IncHashMigration("hash_error")
			return
		}

		if err := m.users.UpdatePasswordHash(mctx, userID, encoded); err != nil {
			m.log.Warn("password hash migration persist failed", "user_id", userID, "err", err)
			m.metrics.IncHashMigration("store_error")
			return
		}

		m.log.Info("password hash migrated to argon2id", "username", username)
		m.metrics.IncHashMigration("ok")
	}()
}
