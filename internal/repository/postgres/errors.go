package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsPgDuplicateError checks if error is a unique constraint violation
func IsPgDuplicateError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23505 = unique_violation
		return pgErr.Code == "23505"
	}
	return false
}

// IsPgInvalidTextRepresentation checks for malformed input such as a non-UUID id
func IsPgInvalidTextRepresentation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 22P02 = invalid_text_representation
		return pgErr.Code == "22P02"
	}
	return false
}

// PathArg converts a path for a TEXT[] parameter. A nil slice would encode as
// NULL, so root becomes an empty array.
func PathArg(p []string) []string {
	if p == nil {
		return []string{}
	}
	return p
}
