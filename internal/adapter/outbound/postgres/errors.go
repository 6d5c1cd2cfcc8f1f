package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgCheckViolation = "23514"

// isCheckViolation reports whether err is a CHECK constraint failure.
func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation
}
