package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rosterhub/rosterhub/internal/config"
	"github.com/rosterhub/rosterhub/internal/domain/user"
	"github.com/rosterhub/rosterhub/internal/repo/postgres"
	"github.com/rosterhub/rosterhub/internal/security"
)

// EnsureSuperuser creates the bootstrap superuser account on first start.
// A no-op when unconfigured or when the username already exists.
func EnsureSuperuser(ctx context.Context, pool *pgxpool.Pool, hasher *security.Hasher, cfg config.Config) error {
	if cfg.SuperuserUsername == "" || cfg.SuperuserPassword == "" {
		return nil
	}

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE username = $1`, cfg.SuperuserUsername).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := hasher.Hash(ctx, cfg.SuperuserPassword)

	if err != nil {
		return err
	}

	users := postgres.NewUsersRepo(pool, nil)

	_, err = users.Create(ctx, user.User{
		Username:     cfg.SuperuserUsername,
		PasswordHash: hash,
		Role:         user.RoleSuperuser,
	})

	if errors.Is(err, user.ErrUsernameTaken) {
		// lost the race to a concurrent boot, the account exists
		return nil
	}

	return err
}
