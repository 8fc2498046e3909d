package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rosterhub/rosterhub/internal/domain/team"
	"github.com/rosterhub/rosterhub/internal/observability"
)

type MembershipsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewMembershipsRepo(pool *pgxpool.Pool, prom *observability.Prom) *MembershipsRepo {
	return &MembershipsRepo{pool: pool, prom: prom}
}

// Create inserts the membership; the (team_id, user_id) primary key enforces
// one membership per user per team.
func (r *MembershipsRepo) Create(ctx context.Context, m team.Membership) (team.Membership, error) {
	m.CreatedAt = time.Now().UTC()

	err := observe(r.prom, "memberships.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO memberships (team_id, user_id, role, created_at)
			 VALUES ($1, $2, $3, $4)`,
			m.TeamID, m.UserID, m.Role, m.CreatedAt,
		)
		return err
	})

	if err != nil {
		if isUniqueViolation(err) {
			return team.Membership{}, team.ErrAlreadyMember
		}
		return team.Membership{}, err
	}

	return m, nil
}

func (r *MembershipsRepo) Get(ctx context.Context, teamID, userID string) (team.Membership, error) {
	var m team.Membership

	err := observe(r.prom, "memberships.get", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT team_id, user_id, role, created_at
			 FROM memberships
			 WHERE team_id = $1 AND user_id = $2`,
			teamID, userID,
		).Scan(&m.TeamID, &m.UserID, &m.Role, &m.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return team.Membership{}, team.ErrMembershipNotFound
		}
		return team.Membership{}, err
	}

	return m, nil
}

func (r *MembershipsRepo) ListByTeam(ctx context.Context, teamID string) ([]team.Membership, error) {
	var out []team.Membership

	err := observe(r.prom, "memberships.list_by_team", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT team_id, user_id, role, created_at
			 FROM memberships
			 WHERE team_id = $1
			 ORDER BY created_at ASC, user_id ASC`,
			teamID,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var m team.Membership

			if err := rows.Scan(&m.TeamID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
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

func (r *MembershipsRepo) UpdateRole(ctx context.Context, teamID, userID, role string) error {
	return observe(r.prom, "memberships.update_role", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE memberships SET role = $1 WHERE team_id = $2 AND user_id = $3`,
			role, teamID, userID,
		)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return team.ErrMembershipNotFound
		}

		return nil
	})
}

func (r *MembershipsRepo) Delete(ctx context.Context, teamID, userID string) error {
	return observe(r.prom, "memberships.delete", func() error {
		tag, err := r.pool.Exec(ctx,
			`DELETE FROM memberships WHERE team_id = $1 AND user_id = $2`,
			teamID, userID,
		)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return team.ErrMembershipNotFound
		}

		return nil
	})
}
