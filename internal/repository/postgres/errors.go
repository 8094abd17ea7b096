// internal/repository/postgres/errors.go
package postgres

import (
	"database/sql"
	"errors"

	"coinquest/internal/util"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// mapError translates driver errors into the application's sentinel errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return util.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return util.ErrDuplicateEntry
	}
	return err
}

// checkAffected returns util.ErrNotFound when an UPDATE or DELETE touched no row.
func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return util.ErrNotFound
	}
	return nil
}
