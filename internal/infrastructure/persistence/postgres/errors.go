package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// isForeignKeyViolation checks if an error is a PostgreSQL FK violation,
// optionally on a specific constraint or column.
func isForeignKeyViolation(err error, column string) bool {
	return isPgError(err, pgForeignKeyViolation, column)
}

// isUniqueViolation checks if an error is a PostgreSQL unique violation.
func isUniqueViolation(err error, column string) bool {
	return isPgError(err, pgUniqueViolation, column)
}

func isPgError(err error, code, column string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != code {
		return false
	}
	if column == "" {
		return true
	}
	return strings.Contains(pgErr.ConstraintName, column) ||
		strings.Contains(pgErr.Message, column)
}
