package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error classes the repositories translate into domain errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation reports whether err is a unique constraint breach,
// such as two chapters landing on the same (project, sort_order) slot.
func isUniqueViolation(err error) bool {
	return pgErrCode(err) == codeUniqueViolation
}

// isForeignKeyViolation reports whether err references a row that does
// not exist, typically a project deleted out from under a write.
func isForeignKeyViolation(err error) bool {
	return pgErrCode(err) == codeForeignKeyViolation
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
