package database

import (
	"path/filepath"
	"testing"

	"icut-go/internal/config"
)

func TestNewDatabaseFromConfig(t *testing.T) {
	t.Run("memory database", func(t *testing.T) {
		cfg := config.DatabaseConfig{Type: "memory"}
		got, err := NewDatabaseFromConfig(cfg, "lib-123", nil, 0)
		if err != nil {
			t.Fatalf("NewDatabaseFromConfig() unexpected error: %v", err)
		}
		defer got.Close()

		if got.Path() != ":memory:" {
			t.Errorf("Path() = %q, want :memory:", got.Path())
		}
		if got.stillDurationMs != 5000 {
			t.Errorf("stillDurationMs = %d, want default 5000", got.stillDurationMs)
		}
	})

	t.Run("sqlite database creates data_dir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "db")
		cfg := config.DatabaseConfig{Type: "sqlite", DataDir: dir}
		got, err := NewDatabaseFromConfig(cfg, "lib-123", nil, 2500)
		if err != nil {
			t.Fatalf("NewDatabaseFromConfig() unexpected error: %v", err)
		}
		defer got.Close()

		if want := filepath.Join(dir, "lib-123.db"); got.Path() != want {
			t.Errorf("Path() = %q, want %q", got.Path(), want)
		}
		if got.stillDurationMs != 2500 {
			t.Errorf("stillDurationMs = %d, want 2500", got.stillDurationMs)
		}
	})

	tests := []struct {
		name      string
		cfg       config.DatabaseConfig
		libraryID string
	}{
		{"sqlite without data_dir", config.DatabaseConfig{Type: "sqlite"}, "lib-123"},
		{"sqlite without library id", config.DatabaseConfig{Type: "sqlite", DataDir: "/tmp"}, ""},
		{"unknown type", config.DatabaseConfig{Type: "postgres"}, "lib-123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewDatabaseFromConfig(tt.cfg, tt.libraryID, nil, 0)
			if err == nil {
				t.Error("NewDatabaseFromConfig() expected error, got nil")
			}
			if got != nil {
				t.Error("NewDatabaseFromConfig() should return nil on error")
				got.Close()
			}
		})
	}
}
