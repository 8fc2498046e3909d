package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rosterhub/rosterhub/internal/domain/team"
	"github.com/rosterhub/rosterhub/internal/observability"
)

type TeamsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewTeamsRepo(pool *pgxpool.Pool, prom *observability.Prom) *TeamsRepo {
	return &TeamsRepo{pool: pool, prom: prom}
}

const teamColumns = `id, name, created_by, join_code, logo_url, created_at, updated_at`

func scanTeam(row pgx.Row) (team.Team, error) {
	var t team.Team

	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.CreatedByID,
		&t.JoinCode,
		&t.LogoURL,
		&t.CreatedAt,
		&t.UpdatedAt,
	)

	return t, err
}

func (r *TeamsRepo) Create(ctx context.Context, t team.Team) (team.Team, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	err := observe(r.prom, "teams.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO teams (id, name, created_by, join_code, logo_url, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			t.ID, t.Name, t.CreatedByID, t.JoinCode, t.LogoURL, t.CreatedAt, t.UpdatedAt,
		)
		return err
	})

	if err != nil {
		// the only unique index on teams is the join code
		if isUniqueViolation(err) {
			return team.Team{}, team.ErrJoinCodeTaken
		}
		return team.Team{}, err
	}

	return t, nil
}

func (r *TeamsRepo) GetByID(ctx context.Context, id string) (team.Team, error) {
	var t team.Team

	err := observe(r.prom, "teams.get_by_id", func() error {
		var err error
		t, err = scanTeam(r.pool.QueryRow(ctx,
			`SELECT `+teamColumns+` FROM teams WHERE id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return team.Team{}, team.ErrNotFound
		}
		return team.Team{}, err
	}

	return t, nil
}

func (r *TeamsRepo) GetByJoinCode(ctx context.Context, code string) (team.Team, error) {
	var t team.Team

	err := observe(r.prom, "teams.get_by_join_code", func() error {
		var err error
		t, err = scanTeam(r.pool.QueryRow(ctx,
			`SELECT `+teamColumns+` FROM teams WHERE join_code = $1`, code))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return team.Team{}, team.ErrNotFound
		}
		return team.Team{}, err
	}

	return t, nil
}

func (r *TeamsRepo) UpdateJoinCode(ctx context.Context, teamID, code string) error {
	err := observe(r.prom, "teams.update_join_code", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE teams SET join_code = $1, updated_at = $2 WHERE id = $3`,
			code, time.Now().UTC(), teamID,
		)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return team.ErrNotFound
		}

		return nil
	})

	if err != nil && isUniqueViolation(err) {
		return team.ErrJoinCodeTaken
	}

	return err
}

func (r *TeamsRepo) List(ctx context.Context) ([]team.Team, error) {
	var out []team.Team

	err := observe(r.prom, "teams.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+teamColumns+` FROM teams ORDER BY created_at ASC, id ASC`)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			t, err := scanTeam(rows)

			if err != nil {
				return err
			}

			out = append(out, t)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}
