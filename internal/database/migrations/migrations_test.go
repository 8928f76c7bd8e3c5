package migrations

import (
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestUp_FreshLibrary(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	version, err := Up(db)
	if err != nil {
		t.Fatalf("Up() error = %v", err)
	}
	latest, err := LatestVersion()
	if err != nil {
		t.Fatalf("LatestVersion() error = %v", err)
	}
	if version != latest || latest == 0 {
		t.Errorf("Up() = %d, LatestVersion() = %d", version, latest)
	}

	for _, table := range []string{"projects", "assets", "tracks", "clips", "edit_operations", "schema_migrations"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s was not created: %v", table, err)
		}
	}
}

func TestCheck(t *testing.T) {
	t.Run("fresh library", func(t *testing.T) {
		db := openTestDB(t)
		defer db.Close()

		if err := Check(db); !errors.Is(err, ErrNoSchema) {
			t.Errorf("Check() error = %v, want ErrNoSchema", err)
		}
		st, err := ReadStatus(db)
		if err != nil {
			t.Fatalf("ReadStatus() error = %v", err)
		}
		if st.Version != 0 || st.Dirty || st.Latest == 0 {
			t.Errorf("ReadStatus() = %+v", st)
		}
	})

	t.Run("migrated library", func(t *testing.T) {
		db := openTestDB(t)
		defer db.Close()

		if _, err := Up(db); err != nil {
			t.Fatalf("Up() error = %v", err)
		}
		if err := Check(db); err != nil {
			t.Errorf("Check() error = %v", err)
		}
	})

	t.Run("dirty library", func(t *testing.T) {
		db := openTestDB(t)
		defer db.Close()

		if _, err := Up(db); err != nil {
			t.Fatalf("Up() error = %v", err)
		}
		if _, err := db.Exec("UPDATE schema_migrations SET dirty = 1"); err != nil {
			t.Fatalf("marking dirty: %v", err)
		}
		if err := Check(db); !errors.Is(err, ErrDirty) {
			t.Errorf("Check() error = %v, want ErrDirty", err)
		}
	})

	t.Run("newer library", func(t *testing.T) {
		db := openTestDB(t)
		defer db.Close()

		if _, err := Up(db); err != nil {
			t.Fatalf("Up() error = %v", err)
		}
		if _, err := db.Exec("UPDATE schema_migrations SET version = 999"); err != nil {
			t.Fatalf("bumping version: %v", err)
		}
		if err := Check(db); !errors.Is(err, ErrNewerSchema) {
			t.Errorf("Check() error = %v, want ErrNewerSchema", err)
		}
	})
}

func TestUp_Idempotent(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	first, err := Up(db)
	if err != nil {
		t.Fatalf("first Up() error = %v", err)
	}
	second, err := Up(db)
	if err != nil {
		t.Errorf("second Up() error = %v", err)
	}
	if first != second {
		t.Errorf("second Up() = %d, want %d", second, first)
	}
}

func TestForeignKeyConstraints(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if _, err := Up(db); err != nil {
		t.Fatalf("Up() error = %v", err)
	}

	// Asset pointing at a project that does not exist
	_, err := db.Exec(`
		INSERT INTO assets (project_id, file_path, asset_type, file_size_bytes, imported_at)
		VALUES (42, '/media/a.png', 'image', 10, datetime('now'))
	`)
	if err == nil {
		t.Error("Expected foreign key constraint violation, but insert succeeded")
	}
}

func TestSchema_ProjectCascade(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if _, err := Up(db); err != nil {
		t.Fatalf("Up() error = %v", err)
	}

	stmts := []string{
		`INSERT INTO projects (id, name, frame_rate, resolution_width, resolution_height, created_at, updated_at)
		 VALUES (1, 'demo', 30, 1920, 1080, datetime('now'), datetime('now'))`,
		`INSERT INTO assets (id, project_id, file_path, asset_type, file_size_bytes, imported_at)
		 VALUES (1, 1, '/media/a.png', 'image', 10, datetime('now'))`,
		`INSERT INTO tracks (id, project_id, track_type, order_index) VALUES (1, 1, 'video', 0)`,
		`INSERT INTO clips (track_id, asset_id, start_time_ms, duration_ms) VALUES (1, 1, 0, 5000)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("Exec(%q) error = %v", stmt, err)
		}
	}

	if _, err := db.Exec("DELETE FROM assets WHERE id = 1"); err == nil {
		t.Error("deleting a referenced asset succeeded, want constraint violation")
	}

	if _, err := db.Exec("DELETE FROM projects WHERE id = 1"); err != nil {
		t.Fatalf("deleting project error = %v", err)
	}
	for _, table := range []string{"assets", "tracks", "clips"} {
		var n int
		if err := db.QueryRow("SELECT count(*) FROM " + table).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != 0 {
			t.Errorf("%s has %d rows after project delete, want 0", table, n)
		}
	}
}

func TestSchema_TrackOrderUnique(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if _, err := Up(db); err != nil {
		t.Fatalf("Up() error = %v", err)
	}

	_, err := db.Exec(`INSERT INTO projects (id, name, frame_rate, resolution_width, resolution_height, created_at, updated_at)
		VALUES (1, 'demo', 30, 1920, 1080, datetime('now'), datetime('now'))`)
	if err != nil {
		t.Fatalf("Failed to insert project: %v", err)
	}

	if _, err := db.Exec("INSERT INTO tracks (project_id, track_type, order_index) VALUES (1, 'video', 0)"); err != nil {
		t.Fatalf("Failed to insert first track: %v", err)
	}
	if _, err := db.Exec("INSERT INTO tracks (project_id, track_type, order_index) VALUES (1, 'audio', 0)"); err != nil {
		t.Errorf("audio track at index 0 rejected: %v", err)
	}
	if _, err := db.Exec("INSERT INTO tracks (project_id, track_type, order_index) VALUES (1, 'video', 0)"); err == nil {
		t.Error("Expected unique constraint violation for duplicate order index, but insert succeeded")
	}
}

// openTestDB opens an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// Every pooled connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	return db
}
