// Package migrations owns the library schema. Migration files are embedded
// in the binary and applied with golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/*.sql
var migrationFiles embed.FS

var (
	// ErrNoSchema means the library file has never been migrated.
	ErrNoSchema = errors.New("library has no schema version")
	// ErrDirty means an earlier migration stopped half way.
	ErrDirty = errors.New("library schema is dirty")
	// ErrOutdated means the library schema is older than this binary.
	ErrOutdated = errors.New("library schema is outdated")
	// ErrNewerSchema means the library was written by a newer icut.
	ErrNewerSchema = errors.New("library schema is newer than this binary")
)

// Status describes where a library's schema stands.
type Status struct {
	Version uint
	Latest  uint
	Dirty   bool
}

// ReadStatus reports the schema version of db next to the newest embedded
// migration. A never-migrated library has Version 0.
func ReadStatus(db *sql.DB) (Status, error) {
	latest, err := LatestVersion()
	if err != nil {
		return Status{}, err
	}
	m, err := newMigrate(db)
	if err != nil {
		return Status{}, err
	}
	// m is not closed: that would close db, which the caller owns.

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return Status{}, fmt.Errorf("reading schema version: %w", err)
	}
	return Status{Version: version, Latest: latest, Dirty: dirty}, nil
}

// Check returns nil when db is at the newest schema version.
func Check(db *sql.DB) error {
	st, err := ReadStatus(db)
	if err != nil {
		return err
	}
	switch {
	case st.Dirty:
		return fmt.Errorf("%w at version %d", ErrDirty, st.Version)
	case st.Version == 0:
		return ErrNoSchema
	case st.Version < st.Latest:
		return fmt.Errorf("%w: at version %d, want %d", ErrOutdated, st.Version, st.Latest)
	case st.Version > st.Latest:
		return fmt.Errorf("%w: at version %d, binary knows %d", ErrNewerSchema, st.Version, st.Latest)
	}
	return nil
}

// Up applies every pending migration and returns the resulting version.
// An already current library is left alone.
func Up(db *sql.DB) (uint, error) {
	m, err := newMigrate(db)
	if err != nil {
		return 0, err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migrating library: %w", err)
	}
	version, _, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

// LatestVersion returns the newest embedded migration version.
func LatestVersion() (uint, error) {
	src, err := iofs.New(migrationFiles, "files")
	if err != nil {
		return 0, fmt.Errorf("reading migration files: %w", err)
	}
	defer src.Close()
	return lastVersion(src)
}

func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFiles, "files")
	if err != nil {
		return nil, fmt.Errorf("reading migration files: %w", err)
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("wrapping library connection: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("creating migrator: %w", err)
	}
	return m, nil
}

// lastVersion walks the source forward; Next fails past the final file.
func lastVersion(src source.Driver) (uint, error) {
	v, err := src.First()
	if err != nil {
		return 0, err
	}
	for {
		next, err := src.Next(v)
		if err != nil {
			return v, nil
		}
		v = next
	}
}
