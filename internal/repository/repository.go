// Package repository contains the gorm-backed implementations of the
// per-domain repository interfaces. Uniqueness is enforced twice: a
// read-before-write pre-check in the services gives friendly errors, and
// the database indexes close the race the pre-check leaves open. Unique
// violations that slip past the pre-check are translated back to the same
// domain sentinels here.
package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a Postgres duplicate-key error,
// optionally on a constraint whose name contains the given fragment.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || strings.Contains(pgErr.ConstraintName, constraint)
}
