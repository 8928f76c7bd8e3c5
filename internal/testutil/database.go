package testutil

import (
	"testing"

	"icut-go/internal/database"
	"icut-go/internal/editor"
)

// NewTestDatabase creates a new in-memory SQLite library with schema applied.
// The database is automatically closed when the test completes.
func NewTestDatabase(t *testing.T, clock editor.Clock) *database.SQLiteDatabase {
	t.Helper()

	sqlDB, err := database.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if _, err := sqlDB.Exec(database.Schema); err != nil {
		sqlDB.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	db := database.NewSQLiteDatabaseFromDB(sqlDB, clock, 0)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
