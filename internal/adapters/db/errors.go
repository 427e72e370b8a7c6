package db

import (
	"errors"

	"github.com/lib/pq"
)

const uniqueViolation = pq.ErrorCode("23505")

// isUniqueViolation reports whether err is a unique constraint failure,
// optionally on a specific constraint
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}
