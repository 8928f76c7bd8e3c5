package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"icut-go/internal/cache"
	"icut-go/internal/config"
	"icut-go/internal/database"
	"icut-go/internal/database/sqlc"
	"icut-go/internal/dragdrop"
	"icut-go/internal/editor"
	"icut-go/internal/encryption"
	"icut-go/internal/fs"
	"icut-go/internal/media"
	"icut-go/internal/snapshot"
	"icut-go/internal/timeline"

	"github.com/google/uuid"
)

// ICutApp is the application layer between the CLI and the editor. It
// constructs all dependencies from config, exposes high-level operations
// that accept raw ids and paths, and snapshots the library on Close.
type ICutApp struct {
	cfg       *config.Config
	db        *database.SQLiteDatabase
	fsmgr     *fs.OSFilesystemManager
	prober    *media.Prober
	store     *cache.Store
	publisher *snapshot.Publisher
	logger    *slogAdapter
	op        *EditOperation
	logFile   *os.File
}

// NewICutApp creates a fully wired ICutApp from the given config.
// operation names the CLI command being run (e.g. "ImportAssets") and
// parameters describes its arguments for the history.
// The caller must call Close when done.
func NewICutApp(ctx context.Context, cfg *config.Config, operation, parameters string) (*ICutApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	stores, err := snapshot.NewStoresFromConfig(ctx, cfg.Snapshots)
	if err != nil {
		return nil, fmt.Errorf("creating snapshot stores: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database, cfg.LibraryID, editor.RealClock{}, cfg.Timeline.StillDurationMs)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating library: %w", err)
	}
	if err := db.CheckMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	opID := uuid.NewString()[:8]
	logger, logFile, err := newLogger(cfg.LogDir, opID, LogLevel())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	adapter := &slogAdapter{l: logger}

	publisher := snapshot.NewPublisher(cfg.LibraryID, stores, enc, "", adapter)

	// A newer snapshot elsewhere means this library missed edits.
	localMax, err := db.MaxEditOperationID(ctx)
	if err != nil {
		db.Close()
		logFile.Close()
		return nil, fmt.Errorf("checking local library version: %w", err)
	}
	if err := publisher.CheckLocal(ctx, localMax); err != nil {
		db.Close()
		logFile.Close()
		return nil, err
	}

	return &ICutApp{
		cfg:       cfg,
		db:        db,
		fsmgr:     fs.NewOSFilesystemManager(cfg.Filesystem),
		prober:    media.NewProber(cfg.Media),
		store:     cache.NewStore(),
		publisher: publisher,
		logger:    adapter,
		op:        NewEditOperation(operation, parameters),
		logFile:   logFile,
	}, nil
}

// persistOperation saves the edit operation, giving it an id. Only
// mutating commands call it.
func (a *ICutApp) persistOperation(ctx context.Context) error {
	if a.op.Persisted() {
		return nil
	}
	dbOp, err := a.db.CreateEditOperation(ctx, a.op.Operation, a.op.Parameters)
	if err != nil {
		return fmt.Errorf("persisting edit operation: %w", err)
	}
	a.op.ID = dbOp.ID
	return nil
}

// mutate runs fn as part of the persisted edit operation and records a
// failure in its status.
func (a *ICutApp) mutate(ctx context.Context, fn func() error) error {
	if err := a.persistOperation(ctx); err != nil {
		return err
	}
	if err := fn(); err != nil {
		a.op.Fail()
		return err
	}
	return nil
}

func (a *ICutApp) newEditor(projectID int64) *editor.Editor {
	return editor.New(projectID, a.db, a.store, a.prober, a.fsmgr, a.logger, editor.RealClock{}, editor.UUIDGenerator{})
}

// CreateProject creates a project. Zero settings take the [project] config
// defaults.
func (a *ICutApp) CreateProject(ctx context.Context, p timeline.NewProject) (*timeline.Project, error) {
	if p.FrameRate == 0 {
		p.FrameRate = a.cfg.Project.FrameRate
	}
	if p.ResolutionWidth == 0 && p.ResolutionHeight == 0 {
		p.ResolutionWidth = a.cfg.Project.Width
		p.ResolutionHeight = a.cfg.Project.Height
	}

	var project *timeline.Project
	err := a.mutate(ctx, func() error {
		var err error
		project, err = a.db.CreateProject(ctx, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	a.logger.Info("project created", "project", project.ID, "name", project.Name)
	return project, nil
}

// ListProjects returns all projects, newest first.
func (a *ICutApp) ListProjects(ctx context.Context) ([]timeline.Project, error) {
	return a.db.ListProjects(ctx)
}

// ShowProject returns the project's library and timeline.
func (a *ICutApp) ShowProject(ctx context.Context, projectID int64) (*editor.View, error) {
	return a.newEditor(projectID).LoadView(ctx)
}

// ImportAssets ingests paths into the project as one batch. Per-path
// failures are reported in the result and mark the operation partial.
func (a *ICutApp) ImportAssets(ctx context.Context, projectID int64, paths []string) (*editor.BatchResult, error) {
	if _, err := a.db.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	if err := a.persistOperation(ctx); err != nil {
		return nil, err
	}

	result := a.newEditor(projectID).IngestPaths(ctx, paths)
	switch {
	case len(result.Failures) > 0 && len(result.Assets) == 0:
		a.op.Fail()
	case len(result.Failures) > 0:
		a.op.Partial()
	}
	return result, nil
}

// AssetEntry is an asset together with whether its file is still on disk.
type AssetEntry struct {
	timeline.Asset
	Missing bool
}

// ListAssets returns the project's assets, flagging those whose file has
// gone missing since import.
func (a *ICutApp) ListAssets(ctx context.Context, projectID int64) ([]AssetEntry, error) {
	assets, err := a.db.ListAssets(ctx, projectID)
	if err != nil {
		return nil, err
	}
	entries := make([]AssetEntry, len(assets))
	for i, asset := range assets {
		entries[i] = AssetEntry{Asset: asset, Missing: !a.fsmgr.Exists(asset.FilePath)}
	}
	return entries, nil
}

// DeleteAsset removes an asset that no clip uses.
func (a *ICutApp) DeleteAsset(ctx context.Context, assetID int64) error {
	return a.mutate(ctx, func() error {
		if err := a.db.DeleteAsset(ctx, assetID); err != nil {
			return err
		}
		a.logger.Info("asset deleted", "asset", assetID)
		return nil
	})
}

// CommitAsset selects the asset and targets the project's empty timeline,
// creating its first track and clip.
func (a *ICutApp) CommitAsset(ctx context.Context, projectID, assetID int64) (*timeline.TrackWithClip, error) {
	var result *timeline.TrackWithClip
	err := a.mutate(ctx, func() error {
		ed := a.newEditor(projectID)
		if err := ed.Select(ctx, assetID); err != nil {
			return err
		}
		var err error
		result, err = ed.TargetTimeline(ctx)
		if err != nil {
			return err
		}
		if result == nil {
			return timeline.Validationf("commit asset", "project %d already has a track; use 'icut clip add'", projectID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ShowTimeline returns the project's tracks and clips.
func (a *ICutApp) ShowTimeline(ctx context.Context, projectID int64) (*editor.View, error) {
	return a.newEditor(projectID).LoadView(ctx)
}

// AddClip places an asset on an existing track.
func (a *ICutApp) AddClip(ctx context.Context, trackID, assetID, startMs int64) (*timeline.Clip, error) {
	var clip *timeline.Clip
	err := a.mutate(ctx, func() error {
		var err error
		clip, err = a.db.AddClip(ctx, trackID, assetID, startMs)
		if err != nil {
			return err
		}
		a.logger.Info("clip added", "track", trackID, "asset", assetID, "clip", clip.ID, "start_ms", startMs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return clip, nil
}

// ReplayResult is the outcome of feeding an event script through a session.
type ReplayResult struct {
	Imported  []int64
	LastError error
	View      *editor.View
}

// ReplayScript runs a recorded drag-drop script against the project.
func (a *ICutApp) ReplayScript(ctx context.Context, projectID int64, scriptPath string) (*ReplayResult, error) {
	script, err := dragdrop.ReadScript(scriptPath)
	if err != nil {
		return nil, err
	}
	if _, err := a.db.GetProject(ctx, projectID); err != nil {
		return nil, err
	}

	var result *ReplayResult
	err = a.mutate(ctx, func() error {
		ed := a.newEditor(projectID)
		session := editor.NewSession(ed, script.Layout(), a.logger)
		defer session.Close()

		if err := session.Replay(ctx, script); err != nil {
			return fmt.Errorf("replaying %s: %w", filepath.Base(scriptPath), err)
		}

		view, err := ed.LoadView(ctx)
		if err != nil {
			return err
		}
		result = &ReplayResult{
			Imported:  session.Imported(),
			LastError: ed.LastError(),
			View:      view,
		}
		if result.LastError != nil {
			a.op.Partial()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// History returns the most recent edit operations, newest first.
func (a *ICutApp) History(ctx context.Context, limit int) ([]*sqlc.EditOperation, error) {
	return a.db.ListEditOperations(ctx, limit)
}

// OperationStatus returns the status the current operation will be
// recorded with.
func (a *ICutApp) OperationStatus() string {
	return a.op.Status
}

// Close finalizes the operation and closes all resources. A persisted
// operation is finished and the library is snapshotted with the operation
// id as its version. Other commands just close the database.
func (a *ICutApp) Close(ctx context.Context) error {
	var errs []error

	if a.op.Persisted() {
		if err := a.db.FinishEditOperation(ctx, a.op.ID, a.op.Status); err != nil {
			errs = append(errs, fmt.Errorf("finishing edit operation: %w", err))
		} else if err := a.publisher.Publish(ctx, a.db, a.op.ID); err != nil {
			errs = append(errs, fmt.Errorf("publishing snapshot: %w", err))
		}
	}

	if err := a.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing database: %w", err))
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return errors.Join(errs...)
}

// SetupKeys generates the snapshot encryption key pair and returns the
// public key. It needs no library.
func SetupKeys(cfg *config.Config, passphrase string) (string, error) {
	if cfg.Encryption.Type != "age" {
		return "", fmt.Errorf("encryption type is %q; set [encryption] type = \"age\" first", cfg.Encryption.Type)
	}
	enc := encryption.NewAgeEncryptor(cfg.Encryption)
	if err := enc.Setup(passphrase); err != nil {
		return "", err
	}
	return enc.PublicKey()
}

// Restore replaces the local library with the newest snapshot from the
// named store, or from whichever store holds the newest snapshot when name
// is empty. passphrase is only asked for when snapshots are encrypted.
// It returns the restored version.
func Restore(ctx context.Context, cfg *config.Config, name string, passphrase func() (string, error)) (int64, error) {
	if cfg.Database.Type != "sqlite" {
		return 0, fmt.Errorf("restore needs a sqlite library, database type is %q", cfg.Database.Type)
	}

	stores, err := snapshot.NewStoresFromConfig(ctx, cfg.Snapshots)
	if err != nil {
		return 0, fmt.Errorf("creating snapshot stores: %w", err)
	}
	store, err := pickStore(ctx, stores, cfg.LibraryID, name)
	if err != nil {
		return 0, err
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return 0, fmt.Errorf("creating encryptor: %w", err)
	}
	var dec snapshot.DecryptionContext
	if enc != nil {
		pass, err := passphrase()
		if err != nil {
			return 0, fmt.Errorf("reading passphrase: %w", err)
		}
		if dec, err = enc.Unlock(pass); err != nil {
			return 0, fmt.Errorf("unlocking private key: %w", err)
		}
	}

	dest := filepath.Join(cfg.Database.DataDir, cfg.LibraryID+".db")
	return snapshot.Restore(ctx, store, cfg.LibraryID, dec, dest)
}

func pickStore(ctx context.Context, stores []snapshot.Store, libraryID, name string) (snapshot.Store, error) {
	if len(stores) == 0 {
		return nil, fmt.Errorf("no snapshot stores configured")
	}
	if name != "" {
		for _, s := range stores {
			if s.Name() == name {
				return s, nil
			}
		}
		return nil, fmt.Errorf("no snapshot store named %q", name)
	}

	var best snapshot.Store
	var bestVersion int64
	for _, s := range stores {
		v, err := s.Version(ctx, libraryID)
		if err != nil {
			return nil, fmt.Errorf("reading snapshot version from %s: %w", s.Name(), err)
		}
		if best == nil || v > bestVersion {
			best, bestVersion = s, v
		}
	}
	return best, nil
}
