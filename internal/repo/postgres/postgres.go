package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rosterhub/rosterhub/internal/observability"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// observe wraps a store call in DB latency/error metrics when wired.
func observe(prom *observability.Prom, op string, fn func() error) error {
	if prom == nil {
		return fn()
	}

	return prom.ObserveDB(op, fn)
}
