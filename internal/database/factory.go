package database

import (
	"fmt"
	"os"
	"path/filepath"

	"icut-go/internal/config"
	"icut-go/internal/editor"
)

// NewDatabaseFromConfig opens the library selected by the database config
// type. A sqlite library lives at <data_dir>/<libraryID>.db.
func NewDatabaseFromConfig(cfg config.DatabaseConfig, libraryID string, clock editor.Clock, stillDurationMs int64) (*SQLiteDatabase, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if libraryID == "" {
			return nil, fmt.Errorf("library_id required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dbPath := filepath.Join(cfg.DataDir, libraryID+".db")
		return NewSQLiteDatabase(dbPath, clock, stillDurationMs)
	case "memory":
		return NewSQLiteDatabase(":memory:", clock, stillDurationMs)
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
