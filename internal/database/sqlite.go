package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"icut-go/internal/database/migrations"
	"icut-go/internal/database/sqlc"
	"icut-go/internal/editor"
	"icut-go/internal/timeline"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase is the command backend: it owns the library file and
// implements editor.Gateway on top of it.
type SQLiteDatabase struct {
	db              *sql.DB
	queries         *sqlc.Queries
	path            string
	clock           editor.Clock
	stillDurationMs int64
}

// NewSQLiteDatabase opens the library at path, which can be a file path or
// ":memory:". A nil clock means wall time; a non-positive stillDurationMs
// means timeline.DefaultStillDurationMs.
func NewSQLiteDatabase(path string, clock editor.Clock, stillDurationMs int64) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	s := NewSQLiteDatabaseFromDB(db, clock, stillDurationMs)
	s.path = path
	return s, nil
}

// NewSQLiteDatabaseFromDB wraps an existing connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB, clock editor.Clock, stillDurationMs int64) *SQLiteDatabase {
	if clock == nil {
		clock = editor.RealClock{}
	}
	if stillDurationMs <= 0 {
		stillDurationMs = timeline.DefaultStillDurationMs
	}
	return &SQLiteDatabase{
		db:              db,
		queries:         sqlc.New(db),
		clock:           clock,
		stillDurationMs: stillDurationMs,
	}
}

// OpenConnection opens and configures a SQLite connection. Foreign keys are
// enabled through the DSN so every pooled connection enforces them. An
// in-memory database is limited to one connection, since each connection
// would otherwise see its own empty database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Projects

func (s *SQLiteDatabase) ListProjects(ctx context.Context) ([]timeline.Project, error) {
	rows, err := s.queries.ListProjects(ctx)
	if err != nil {
		return nil, classify("list projects", err)
	}
	projects := make([]timeline.Project, len(rows))
	for i, r := range rows {
		projects[i] = toProject(r)
	}
	return projects, nil
}

func (s *SQLiteDatabase) CreateProject(ctx context.Context, p timeline.NewProject) (*timeline.Project, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, timeline.Validationf("create project", "name must not be empty")
	}
	if p.FrameRate < 0 || p.ResolutionWidth < 0 || p.ResolutionHeight < 0 {
		return nil, timeline.Validationf("create project", "frame rate and resolution must be positive")
	}

	params := sqlc.InsertProjectParams{
		Name:             name,
		FrameRate:        timeline.DefaultFrameRate,
		ResolutionWidth:  timeline.DefaultResolutionWidth,
		ResolutionHeight: timeline.DefaultResolutionHeight,
	}
	if p.FrameRate > 0 {
		params.FrameRate = p.FrameRate
	}
	if p.ResolutionWidth > 0 && p.ResolutionHeight > 0 {
		params.ResolutionWidth = p.ResolutionWidth
		params.ResolutionHeight = p.ResolutionHeight
	}
	now := s.clock.Now().UTC()
	params.CreatedAt = now
	params.UpdatedAt = now

	id, err := s.queries.InsertProject(ctx, params)
	if err != nil {
		return nil, classify("create project", err)
	}
	row, err := s.queries.GetProject(ctx, id)
	if err != nil {
		return nil, classify("create project", err)
	}
	project := toProject(row)
	return &project, nil
}

func (s *SQLiteDatabase) GetProject(ctx context.Context, projectID int64) (*timeline.Project, error) {
	row, err := s.queries.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, timeline.NotFoundf("get project", "project %d", projectID)
		}
		return nil, classify("get project", err)
	}
	project := toProject(row)
	return &project, nil
}

// Assets

func (s *SQLiteDatabase) ListAssets(ctx context.Context, projectID int64) ([]timeline.Asset, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}
	rows, err := s.queries.ListAssetsByProject(ctx, projectID)
	if err != nil {
		return nil, classify("list assets", err)
	}
	assets := make([]timeline.Asset, len(rows))
	for i, r := range rows {
		assets[i] = toAsset(r)
	}
	return assets, nil
}

func (s *SQLiteDatabase) AddAsset(ctx context.Context, a timeline.NewAsset) (*timeline.Asset, error) {
	switch {
	case strings.TrimSpace(a.FilePath) == "":
		return nil, timeline.Validationf("add asset", "file path must not be empty")
	case a.FileSizeBytes < 0:
		return nil, timeline.Validationf("add asset", "file size must not be negative")
	}
	kind := a.Kind
	if kind == "" {
		kind = timeline.AssetKindOf(a.FilePath)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify("add asset", err)
	}
	defer tx.Rollback()
	qtx := s.queries.WithTx(tx)

	if _, err := qtx.GetProject(ctx, a.ProjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, timeline.NotFoundf("add asset", "project %d", a.ProjectID)
		}
		return nil, classify("add asset", err)
	}

	now := s.clock.Now().UTC()
	id, err := qtx.InsertAsset(ctx, sqlc.InsertAssetParams{
		ProjectID:     a.ProjectID,
		FilePath:      a.FilePath,
		AssetType:     string(kind),
		DurationMs:    toNullInt(a.DurationMs),
		Width:         toNullInt(a.Width),
		Height:        toNullInt(a.Height),
		FileSizeBytes: a.FileSizeBytes,
		ImportedAt:    now,
	})
	if err != nil {
		return nil, classify("add asset", err)
	}
	row, err := qtx.GetAsset(ctx, id)
	if err != nil {
		return nil, classify("add asset", err)
	}
	if err := qtx.TouchProject(ctx, sqlc.TouchProjectParams{UpdatedAt: now, ID: a.ProjectID}); err != nil {
		return nil, classify("add asset", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, classify("add asset", err)
	}
	asset := toAsset(row)
	return &asset, nil
}

func (s *SQLiteDatabase) GetAsset(ctx context.Context, assetID int64) (*timeline.Asset, error) {
	row, err := s.queries.GetAsset(ctx, assetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, timeline.NotFoundf("get asset", "asset %d", assetID)
		}
		return nil, classify("get asset", err)
	}
	asset := toAsset(row)
	return &asset, nil
}

// DeleteAsset removes an asset no clip refers to. Assets still placed on the
// timeline are rejected rather than cascaded or orphaned.
func (s *SQLiteDatabase) DeleteAsset(ctx context.Context, assetID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("delete asset", err)
	}
	defer tx.Rollback()
	qtx := s.queries.WithTx(tx)

	asset, err := qtx.GetAsset(ctx, assetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return timeline.NotFoundf("delete asset", "asset %d", assetID)
		}
		return classify("delete asset", err)
	}

	refs, err := qtx.CountClipsByAsset(ctx, assetID)
	if err != nil {
		return classify("delete asset", err)
	}
	if refs > 0 {
		return timeline.Validationf("delete asset", "asset %d is used by %d clip(s)", assetID, refs)
	}

	if _, err := qtx.DeleteAsset(ctx, assetID); err != nil {
		return classify("delete asset", err)
	}
	if err := qtx.TouchProject(ctx, sqlc.TouchProjectParams{UpdatedAt: s.clock.Now().UTC(), ID: asset.ProjectID}); err != nil {
		return classify("delete asset", err)
	}

	if err := tx.Commit(); err != nil {
		return classify("delete asset", err)
	}
	return nil
}

// Tracks

func (s *SQLiteDatabase) ListTracks(ctx context.Context, projectID int64) ([]timeline.Track, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, fmt.Errorf("listing tracks: %w", err)
	}
	rows, err := s.queries.ListTracksByProject(ctx, projectID)
	if err != nil {
		return nil, classify("list tracks", err)
	}
	return toTracks(rows), nil
}

// CreateTrackWithClip creates a track at the next order index for its type
// and places the asset on it, in one transaction.
func (s *SQLiteDatabase) CreateTrackWithClip(ctx context.Context, projectID, assetID int64, trackType timeline.TrackType, startMs int64) (*timeline.TrackWithClip, error) {
	const op = "create track with clip"
	if !trackType.Valid() {
		return nil, timeline.Validationf(op, "unknown track type %q", trackType)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify(op, err)
	}
	defer tx.Rollback()
	qtx := s.queries.WithTx(tx)

	asset, err := qtx.GetAsset(ctx, assetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, timeline.NotFoundf(op, "asset %d", assetID)
		}
		return nil, classify(op, err)
	}
	if asset.ProjectID != projectID {
		return nil, timeline.Validationf(op, "asset %d belongs to project %d, not %d", assetID, asset.ProjectID, projectID)
	}

	existing, err := qtx.ListTracksByProject(ctx, projectID)
	if err != nil {
		return nil, classify(op, err)
	}

	candidate := timeline.Clip{AssetID: assetID, StartMs: startMs, DurationMs: s.clipDuration(asset)}
	if err := timeline.ValidateClipPlacement(nil, candidate); err != nil {
		return nil, err
	}

	trackID, err := qtx.InsertTrack(ctx, sqlc.InsertTrackParams{
		ProjectID:  projectID,
		TrackType:  string(trackType),
		OrderIndex: timeline.NextOrderIndex(toTracks(existing), projectID, trackType),
	})
	if err != nil {
		return nil, classify(op, err)
	}
	track, err := qtx.GetTrack(ctx, trackID)
	if err != nil {
		return nil, classify(op, err)
	}

	clipID, err := qtx.InsertClip(ctx, sqlc.InsertClipParams{
		TrackID:     trackID,
		AssetID:     assetID,
		StartTimeMs: candidate.StartMs,
		DurationMs:  candidate.DurationMs,
	})
	if err != nil {
		return nil, classify(op, err)
	}
	clip, err := qtx.GetClip(ctx, clipID)
	if err != nil {
		return nil, classify(op, err)
	}
	if err := qtx.TouchProject(ctx, sqlc.TouchProjectParams{UpdatedAt: s.clock.Now().UTC(), ID: projectID}); err != nil {
		return nil, classify(op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, classify(op, err)
	}
	return &timeline.TrackWithClip{Track: toTrack(track), Clip: toClip(clip)}, nil
}

// Clips

func (s *SQLiteDatabase) ListClips(ctx context.Context, trackID int64) ([]timeline.Clip, error) {
	if _, err := s.queries.GetTrack(ctx, trackID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, timeline.NotFoundf("list clips", "track %d", trackID)
		}
		return nil, classify("list clips", err)
	}
	rows, err := s.queries.ListClipsByTrack(ctx, trackID)
	if err != nil {
		return nil, classify("list clips", err)
	}
	return toClips(rows), nil
}

// AddClip places an asset on an existing track at startMs. The clip takes
// the asset's duration and must not overlap any clip already on the track.
func (s *SQLiteDatabase) AddClip(ctx context.Context, trackID, assetID, startMs int64) (*timeline.Clip, error) {
	const op = "add clip"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify(op, err)
	}
	defer tx.Rollback()
	qtx := s.queries.WithTx(tx)

	track, err := qtx.GetTrack(ctx, trackID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, timeline.NotFoundf(op, "track %d", trackID)
		}
		return nil, classify(op, err)
	}
	if track.IsLocked {
		return nil, timeline.Validationf(op, "track %d is locked", trackID)
	}

	asset, err := qtx.GetAsset(ctx, assetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, timeline.NotFoundf(op, "asset %d", assetID)
		}
		return nil, classify(op, err)
	}
	if asset.ProjectID != track.ProjectID {
		return nil, timeline.Validationf(op, "asset %d and track %d belong to different projects", assetID, trackID)
	}

	existing, err := qtx.ListClipsByTrack(ctx, trackID)
	if err != nil {
		return nil, classify(op, err)
	}
	candidate := timeline.Clip{TrackID: trackID, AssetID: assetID, StartMs: startMs, DurationMs: s.clipDuration(asset)}
	if err := timeline.ValidateClipPlacement(toClips(existing), candidate); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	clipID, err := qtx.InsertClip(ctx, sqlc.InsertClipParams{
		TrackID:     trackID,
		AssetID:     assetID,
		StartTimeMs: startMs,
		DurationMs:  candidate.DurationMs,
	})
	if err != nil {
		return nil, classify(op, err)
	}
	row, err := qtx.GetClip(ctx, clipID)
	if err != nil {
		return nil, classify(op, err)
	}
	if err := qtx.TouchProject(ctx, sqlc.TouchProjectParams{UpdatedAt: s.clock.Now().UTC(), ID: track.ProjectID}); err != nil {
		return nil, classify(op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, classify(op, err)
	}
	clip := toClip(row)
	return &clip, nil
}

// clipDuration is the asset's own duration, or the still duration for
// assets that have none.
func (s *SQLiteDatabase) clipDuration(a sqlc.Asset) int64 {
	if a.DurationMs.Valid && a.DurationMs.Int64 > 0 {
		return a.DurationMs.Int64
	}
	return s.stillDurationMs
}

// Edit operation tracking

func (s *SQLiteDatabase) CreateEditOperation(ctx context.Context, operation string, parameters string) (*sqlc.EditOperation, error) {
	id, err := s.queries.InsertEditOperation(ctx, sqlc.InsertEditOperationParams{
		StartedAt:  s.clock.Now().UTC(),
		Operation:  operation,
		Parameters: parameters,
	})
	if err != nil {
		return nil, fmt.Errorf("creating edit operation: %w", err)
	}
	op, err := s.queries.GetEditOperation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reading edit operation %d: %w", id, err)
	}
	return &op, nil
}

func (s *SQLiteDatabase) FinishEditOperation(ctx context.Context, id int64, status string) error {
	err := s.queries.UpdateEditOperationFinished(ctx, sqlc.UpdateEditOperationFinishedParams{
		FinishedAt: sql.NullTime{Time: s.clock.Now().UTC(), Valid: true},
		Status:     status,
		ID:         id,
	})
	if err != nil {
		return fmt.Errorf("finishing edit operation: %w", err)
	}
	return nil
}

// ListEditOperations returns up to limit operations, newest first.
func (s *SQLiteDatabase) ListEditOperations(ctx context.Context, limit int) ([]*sqlc.EditOperation, error) {
	ops, err := s.queries.GetEditOperations(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("listing edit operations: %w", err)
	}

	result := make([]*sqlc.EditOperation, len(ops))
	for i := range ops {
		result[i] = &ops[i]
	}
	return result, nil
}

func (s *SQLiteDatabase) MaxEditOperationID(ctx context.Context) (int64, error) {
	id, err := s.queries.GetMaxEditOperationID(ctx)
	if err != nil {
		return 0, fmt.Errorf("getting max edit operation ID: %w", err)
	}
	return id, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	if err := migrations.Check(s.db); err != nil {
		return fmt.Errorf("checking library schema: %w", err)
	}
	return nil
}

// Migrate brings the schema to the latest version.
func (s *SQLiteDatabase) Migrate() error {
	_, err := migrations.Up(s.db)
	return err
}

// BackupTo writes a complete, consistent copy of the library to destPath
// using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(ctx context.Context, destPath string) error {
	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

var _ editor.Gateway = (*SQLiteDatabase)(nil)
