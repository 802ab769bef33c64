package repository

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrDuplicate is returned when a unique column already holds the value.
	ErrDuplicate = errors.New("duplicate value")
	// ErrOverlapFound is returned when the pre-insert check finds an
	// overlapping reservation for the room.
	ErrOverlapFound = errors.New("overlapping reservation exists")
	// ErrOverlapConstraint is returned when the storage-level exclusion
	// constraint rejects an insert that passed the pre-insert check.
	ErrOverlapConstraint = errors.New("reservation overlap constraint violated")
)

const (
	pqUniqueViolation    = "23505"
	pqExclusionViolation = "23P01"
	sqliteOverlapMessage = "reservation_overlap"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// isOverlapViolation recognises the no-overlap constraint of the reservations
// table: the Postgres exclusion constraint, the SQLite trigger, or a unique
// violation on an identical interval.
func isOverlapViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqExclusionViolation || pqErr.Code == pqUniqueViolation
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code != sqlite3.ErrConstraint {
			return false
		}
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			(sqliteErr.ExtendedCode == sqlite3.ErrConstraintTrigger &&
				strings.Contains(sqliteErr.Error(), sqliteOverlapMessage))
	}
	return false
}
