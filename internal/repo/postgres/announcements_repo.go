package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rosterhub/rosterhub/internal/domain/announcement"
	"github.com/rosterhub/rosterhub/internal/observability"
)

type AnnouncementsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewAnnouncementsRepo(pool *pgxpool.Pool, prom *observability.Prom) *AnnouncementsRepo {
	return &AnnouncementsRepo{pool: pool, prom: prom}
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

	err := observe(r.prom, "announcements.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO announcements (id, team_id, author_id, title, body, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			a.ID, a.TeamID, a.AuthorID, a.Title, a.Body, a.CreatedAt,
		)
		return err
	})

	if err != nil {
		return announcement.Announcement{}, err
	}

	return a, nil
}

func (r *AnnouncementsRepo) GetByID(ctx context.Context, id string) (announcement.Announcement, error) {
	var a announcement.Announcement

	err := observe(r.prom, "announcements.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, team_id, author_id, title, body, created_at
			 FROM announcements
			 WHERE id = $1`, id,
		).Scan(&a.ID, &a.TeamID, &a.AuthorID, &a.Title, &a.Body, &a.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return announcement.Announcement{}, announcement.ErrNotFound
		}
		return announcement.Announcement{}, err
	}

	return a, nil
}

func (r *AnnouncementsRepo) ListByTeam(ctx context.Context, teamID string) ([]announcement.Announcement, error) {
	var out []announcement.Announcement

	err := observe(r.prom, "announcements.list_by_team", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, team_id, author_id, title, body, created_at
			 FROM announcements
			 WHERE team_id = $1
			 ORDER BY created_at DESC, id ASC`,
			teamID,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var a announcement.Announcement

			if err := rows.Scan(&a.ID, &a.TeamID, &a.AuthorID, &a.Title, &a.Body, &a.CreatedAt); err != nil {
				return err
			}

			out = append(out, a)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *AnnouncementsRepo) Delete(ctx context.Context, id string) error {
	return observe(r.prom, "announcements.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM announcements WHERE id = $1`, id)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return announcement.ErrNotFound
		}

		return nil
	})
}
