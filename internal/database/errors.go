package database

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"

	"icut-go/internal/timeline"
)

// classify maps a driver error onto the timeline error kinds. Missing rows
// and broken references are NotFound, other constraint failures are
// validation errors, and anything else means the library could not be read
// or written.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var tErr *timeline.Error
	if errors.As(err, &tErr) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return timeline.Wrap(timeline.ErrNotFound, op, err)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch {
		case sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey:
			return timeline.Wrap(timeline.ErrNotFound, op, err)
		case sqliteErr.Code == sqlite3.ErrConstraint:
			return timeline.Wrap(timeline.ErrValidation, op, err)
		}
	}

	return timeline.Wrap(timeline.ErrBackendUnavailable, op, err)
}
