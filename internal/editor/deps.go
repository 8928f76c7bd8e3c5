package editor

import (
	"context"
	"io/fs"
	"time"

	"github.com/google/uuid"

	"icut-go/internal/timeline"
)

// Gateway is the command backend. It is the single source of truth for
// entity identity: ids and final field values always come back from it.
// Every error it returns wraps one of the timeline error kinds.
type Gateway interface {
	ListProjects(ctx context.Context) ([]timeline.Project, error)
	CreateProject(ctx context.Context, p timeline.NewProject) (*timeline.Project, error)
	GetProject(ctx context.Context, projectID int64) (*timeline.Project, error)

	ListAssets(ctx context.Context, projectID int64) ([]timeline.Asset, error)
	AddAsset(ctx context.Context, a timeline.NewAsset) (*timeline.Asset, error)
	GetAsset(ctx context.Context, assetID int64) (*timeline.Asset, error)
	// DeleteAsset fails with a validation error while any clip references
	// the asset.
	DeleteAsset(ctx context.Context, assetID int64) error

	ListTracks(ctx context.Context, projectID int64) ([]timeline.Track, error)
	// CreateTrackWithClip atomically creates one track and one clip of the
	// asset at startMs on it.
	CreateTrackWithClip(ctx context.Context, projectID, assetID int64, trackType timeline.TrackType, startMs int64) (*timeline.TrackWithClip, error)

	ListClips(ctx context.Context, trackID int64) ([]timeline.Clip, error)
	// AddClip places an asset on an existing track. Fails with
	// timeline.ErrOverlap when the placement intersects another clip.
	AddClip(ctx context.Context, trackID, assetID, startMs int64) (*timeline.Clip, error)
}

// Cache is the reactive query store. Writers invalidate a (resource, scope)
// key after a mutation succeeds; readers load through it.
type Cache interface {
	Invalidate(resource, scope string)
	Load(ctx context.Context, resource, scope string, load func(context.Context) (any, error)) (any, error)
}

// Prober inspects a media file on disk. It fails with
// timeline.ErrUnsupportedMedia or timeline.ErrIO.
type Prober interface {
	Probe(ctx context.Context, path string) (*timeline.MediaInfo, error)
}

// FilesystemManager abstracts filesystem access so ingestion can be tested
// without touching the real filesystem.
type FilesystemManager interface {
	// Resolve makes rawPath absolute, stats it, and rejects anything that is
	// not a regular file or a directory.
	Resolve(rawPath string) (*Path, error)

	// Stat returns fresh file info for an absolute path.
	Stat(path string) (fs.FileInfo, error)

	// FindFiles returns the regular files under a directory in lexical
	// order, skipping ignored files.
	FindFiles(dir *Path, recursive bool) ([]*Path, error)
}

// Path is a resolved filesystem path with the stat info taken when it was
// resolved.
type Path struct {
	absPath string
	isDir   bool
	info    fs.FileInfo
}

// NewPath creates a Path. It is meant for FilesystemManager implementations.
func NewPath(absPath string, isDir bool, info fs.FileInfo) *Path {
	return &Path{absPath: absPath, isDir: isDir, info: info}
}

func (p *Path) String() string    { return p.absPath }
func (p *Path) IsDir() bool       { return p.isDir }
func (p *Path) Info() fs.FileInfo { return p.info }

// Logger takes slog-style alternating key/value args.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NopLogger discards everything.
type NopLogger struct{}

func NewNopLogger() *NopLogger { return &NopLogger{} }

func (*NopLogger) Debug(string, ...any) {}
func (*NopLogger) Info(string, ...any)  {}
func (*NopLogger) Warn(string, ...any)  {}
func (*NopLogger) Error(string, ...any) {}

// Clock abstracts time so batch timestamps are deterministic in tests.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator names ingestion batches.
type IDGenerator interface {
	New() string
}

type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }
