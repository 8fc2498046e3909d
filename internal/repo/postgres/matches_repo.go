package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rosterhub/rosterhub/internal/domain/match"
	"github.com/rosterhub/rosterhub/internal/observability"
)

type MatchesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewMatchesRepo(pool *pgxpool.Pool, prom *observability.Prom) *MatchesRepo {
	return &MatchesRepo{pool: pool, prom: prom}
}

const matchColumns = `id, team_id, opponent, location, kickoff_at, notes, created_at, updated_at`

func scanMatch(row pgx.Row) (match.Match, error) {
	var m match.Match

	err := row.Scan(
		&m.ID,
		&m.TeamID,
		&m.Opponent,
		&m.Location,
		&m.KickoffAt,
		&m.Notes,
		&m.CreatedAt,
		&m.UpdatedAt,
	)

	return m, err
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

	err := observe(r.prom, "matches.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO matches (id, team_id, opponent, location, kickoff_at, notes, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			m.ID, m.TeamID, m.Opponent, m.Location, m.KickoffAt, m.Notes, m.CreatedAt, m.UpdatedAt,
		)
		return err
	})

	if err != nil {
		return match.Match{}, err
	}

	return m, nil
}

func (r *MatchesRepo) GetByID(ctx context.Context, id string) (match.Match, error) {
	var m match.Match

	err := observe(r.prom, "matches.get_by_id", func() error {
		var err error
		m, err = scanMatch(r.pool.QueryRow(ctx,
			`SELECT `+matchColumns+` FROM matches WHERE id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return match.Match{}, match.ErrNotFound
		}
		return match.Match{}, err
	}

	return m, nil
}

func (r *MatchesRepo) ListByTeam(ctx context.Context, teamID string) ([]match.Match, error) {
	var out []match.Match

	err := observe(r.prom, "matches.list_by_team", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+matchColumns+` FROM matches WHERE team_id = $1 ORDER BY kickoff_at ASC, id ASC`,
			teamID,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			m, err := scanMatch(rows)

			if err != nil {
				return err
			}

			out = append(out, m)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *MatchesRepo) Update(ctx context.Context, id string, req match.UpdateMatchRequest) (match.Match, error) {
	var m match.Match

	err := observe(r.prom, "matches.update", func() error {
		var err error
		m, err = scanMatch(r.pool.QueryRow(ctx,
			`UPDATE matches
			 SET opponent = $1, location = $2, kickoff_at = $3, notes = $4, updated_at = $5
			 WHERE id = $6
			 RETURNING `+matchColumns,
			req.Opponent, req.Location, req.KickoffAt, req.Notes, time.Now().UTC(), id,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return match.Match{}, match.ErrNotFound
		}
		return match.Match{}, err
	}

	return m, nil
}

func (r *MatchesRepo) Delete(ctx context.Context, id string) error {
	return observe(r.prom, "matches.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM matches WHERE id = $1`, id)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return match.ErrNotFound
		}

		return nil
	})
}
