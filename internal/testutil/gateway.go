package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"icut-go/internal/editor"
	"icut-go/internal/timeline"
)

// Call is one recorded gateway invocation.
type Call struct {
	Op   string
	Args []any
}

// FakeGateway is an in-memory editor.Gateway that records every call in
// order. Failures and latency can be injected per asset path.
type FakeGateway struct {
	mu       sync.Mutex
	nextID   int64
	now      time.Time
	projects []timeline.Project
	assets   []timeline.Asset
	tracks   []timeline.Track
	clips    []timeline.Clip
	calls    []Call

	failPath    map[string]error
	delayPath   map[string]time.Duration
	failCommit  error
	stillLength int64
}

// NewFakeGateway creates an empty FakeGateway.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		now:         time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		failPath:    make(map[string]error),
		delayPath:   make(map[string]time.Duration),
		stillLength: 5000,
	}
}

// FailAddAsset makes AddAsset for path return err.
func (g *FakeGateway) FailAddAsset(path string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failPath[path] = err
}

// DelayAddAsset makes AddAsset for path take d before answering.
func (g *FakeGateway) DelayAddAsset(path string, d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.delayPath[path] = d
}

// FailCommit makes CreateTrackWithClip return err until reset with nil.
func (g *FakeGateway) FailCommit(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failCommit = err
}

// Calls returns a copy of the recorded calls.
func (g *FakeGateway) Calls() []Call {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Call(nil), g.calls...)
}

// CallsTo returns the recorded calls of one operation.
func (g *FakeGateway) CallsTo(op string) []Call {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []Call
	for _, c := range g.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// SeedProject stores a project without recording a call.
func (g *FakeGateway) SeedProject(name string) timeline.Project {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := timeline.Project{
		ID: g.id(), Name: name, FrameRate: 30, ResolutionWidth: 1920, ResolutionHeight: 1080,
		CreatedAt: g.now, UpdatedAt: g.now,
	}
	g.projects = append(g.projects, p)
	return p
}

// SeedAsset stores an asset without recording a call.
func (g *FakeGateway) SeedAsset(projectID int64, path string, kind timeline.Kind) timeline.Asset {
	g.mu.Lock()
	defer g.mu.Unlock()
	a := timeline.Asset{ID: g.id(), ProjectID: projectID, FilePath: path, Kind: kind, ImportedAt: g.now}
	g.assets = append(g.assets, a)
	return a
}

// SeedTrack stores a track without recording a call.
func (g *FakeGateway) SeedTrack(projectID int64, trackType timeline.TrackType) timeline.Track {
	g.mu.Lock()
	defer g.mu.Unlock()
	t := timeline.Track{
		ID: g.id(), ProjectID: projectID, TrackType: trackType,
		OrderIndex: timeline.NextOrderIndex(g.tracks, projectID, trackType),
	}
	g.tracks = append(g.tracks, t)
	return t
}

// SetNextID makes the next created entity take id.
func (g *FakeGateway) SetNextID(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID = id - 1
}

func (g *FakeGateway) id() int64 {
	g.nextID++
	return g.nextID
}

func (g *FakeGateway) record(op string, args ...any) {
	g.calls = append(g.calls, Call{Op: op, Args: args})
}

func (g *FakeGateway) projectLocked(id int64) (*timeline.Project, bool) {
	for i := range g.projects {
		if g.projects[i].ID == id {
			return &g.projects[i], true
		}
	}
	return nil, false
}

func (g *FakeGateway) assetLocked(id int64) (*timeline.Asset, bool) {
	for i := range g.assets {
		if g.assets[i].ID == id {
			return &g.assets[i], true
		}
	}
	return nil, false
}

func (g *FakeGateway) ListProjects(context.Context) ([]timeline.Project, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("ListProjects")
	out := append([]timeline.Project(nil), g.projects...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (g *FakeGateway) CreateProject(_ context.Context, p timeline.NewProject) (*timeline.Project, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("CreateProject", p.Name)

	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, timeline.Validationf("create project", "name must not be empty")
	}
	project := timeline.Project{
		ID: g.id(), Name: name, FrameRate: 30, ResolutionWidth: 1920, ResolutionHeight: 1080,
		CreatedAt: g.now, UpdatedAt: g.now,
	}
	if p.FrameRate > 0 {
		project.FrameRate = p.FrameRate
	}
	if p.ResolutionWidth > 0 && p.ResolutionHeight > 0 {
		project.ResolutionWidth, project.ResolutionHeight = p.ResolutionWidth, p.ResolutionHeight
	}
	g.projects = append(g.projects, project)
	return &project, nil
}

func (g *FakeGateway) GetProject(_ context.Context, projectID int64) (*timeline.Project, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("GetProject", projectID)
	p, ok := g.projectLocked(projectID)
	if !ok {
		return nil, timeline.NotFoundf("get project", "project %d", projectID)
	}
	cp := *p
	return &cp, nil
}

func (g *FakeGateway) ListAssets(_ context.Context, projectID int64) ([]timeline.Asset, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("ListAssets", projectID)
	if _, ok := g.projectLocked(projectID); !ok {
		return nil, timeline.NotFoundf("list assets", "project %d", projectID)
	}
	var out []timeline.Asset
	for _, a := range g.assets {
		if a.ProjectID == projectID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (g *FakeGateway) AddAsset(ctx context.Context, a timeline.NewAsset) (*timeline.Asset, error) {
	g.mu.Lock()
	g.record("AddAsset", a.FilePath)
	delay := g.delayPath[a.FilePath]
	g.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, timeline.Wrap(timeline.ErrBackendUnavailable, "add asset", ctx.Err())
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err, ok := g.failPath[a.FilePath]; ok {
		return nil, err
	}
	if _, ok := g.projectLocked(a.ProjectID); !ok {
		return nil, timeline.NotFoundf("add asset", "project %d", a.ProjectID)
	}
	asset := timeline.Asset{
		ID: g.id(), ProjectID: a.ProjectID, FilePath: a.FilePath, Kind: a.Kind,
		DurationMs: a.DurationMs, Width: a.Width, Height: a.Height,
		FileSizeBytes: a.FileSizeBytes, ImportedAt: g.now,
	}
	g.assets = append(g.assets, asset)
	return &asset, nil
}

func (g *FakeGateway) GetAsset(_ context.Context, assetID int64) (*timeline.Asset, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("GetAsset", assetID)
	a, ok := g.assetLocked(assetID)
	if !ok {
		return nil, timeline.NotFoundf("get asset", "asset %d", assetID)
	}
	cp := *a
	return &cp, nil
}

func (g *FakeGateway) DeleteAsset(_ context.Context, assetID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("DeleteAsset", assetID)
	for _, c := range g.clips {
		if c.AssetID == assetID {
			return timeline.Validationf("delete asset", "asset %d is used by clip %d", assetID, c.ID)
		}
	}
	for i, a := range g.assets {
		if a.ID == assetID {
			g.assets = append(g.assets[:i], g.assets[i+1:]...)
			return nil
		}
	}
	return timeline.NotFoundf("delete asset", "asset %d", assetID)
}

func (g *FakeGateway) ListTracks(_ context.Context, projectID int64) ([]timeline.Track, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("ListTracks", projectID)
	if _, ok := g.projectLocked(projectID); !ok {
		return nil, timeline.NotFoundf("list tracks", "project %d", projectID)
	}
	var out []timeline.Track
	for _, t := range g.tracks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (g *FakeGateway) CreateTrackWithClip(_ context.Context, projectID, assetID int64, trackType timeline.TrackType, startMs int64) (*timeline.TrackWithClip, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("CreateTrackWithClip", projectID, assetID, trackType, startMs)

	if g.failCommit != nil {
		return nil, g.failCommit
	}
	if !trackType.Valid() {
		return nil, timeline.Validationf("create track with clip", "unknown track type %q", trackType)
	}
	asset, ok := g.assetLocked(assetID)
	if !ok {
		return nil, timeline.NotFoundf("create track with clip", "asset %d", assetID)
	}
	if asset.ProjectID != projectID {
		return nil, timeline.Validationf("create track with clip", "asset %d belongs to project %d", assetID, asset.ProjectID)
	}

	clip := timeline.Clip{AssetID: assetID, StartMs: startMs, DurationMs: g.durationLocked(asset), Volume: 1}
	if err := timeline.ValidateClipPlacement(nil, clip); err != nil {
		return nil, err
	}

	track := timeline.Track{
		ID: g.id(), ProjectID: projectID, TrackType: trackType,
		OrderIndex: timeline.NextOrderIndex(g.tracks, projectID, trackType),
	}
	clip.ID = g.id()
	clip.TrackID = track.ID
	g.tracks = append(g.tracks, track)
	g.clips = append(g.clips, clip)
	return &timeline.TrackWithClip{Track: track, Clip: clip}, nil
}

func (g *FakeGateway) durationLocked(a *timeline.Asset) int64 {
	if a.DurationMs != nil && *a.DurationMs > 0 {
		return *a.DurationMs
	}
	return g.stillLength
}

func (g *FakeGateway) ListClips(_ context.Context, trackID int64) ([]timeline.Clip, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("ListClips", trackID)

	found := false
	for _, t := range g.tracks {
		if t.ID == trackID {
			found = true
			break
		}
	}
	if !found {
		return nil, timeline.NotFoundf("list clips", "track %d", trackID)
	}
	var out []timeline.Clip
	for _, c := range g.clips {
		if c.TrackID == trackID {
			out = append(out, c)
		}
	}
	timeline.SortClips(out)
	return out, nil
}

func (g *FakeGateway) AddClip(_ context.Context, trackID, assetID, startMs int64) (*timeline.Clip, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("AddClip", trackID, assetID, startMs)

	asset, ok := g.assetLocked(assetID)
	if !ok {
		return nil, timeline.NotFoundf("add clip", "asset %d", assetID)
	}
	var existing []timeline.Clip
	found := false
	for _, t := range g.tracks {
		if t.ID == trackID {
			found = true
		}
	}
	if !found {
		return nil, timeline.NotFoundf("add clip", "track %d", trackID)
	}
	for _, c := range g.clips {
		if c.TrackID == trackID {
			existing = append(existing, c)
		}
	}

	clip := timeline.Clip{TrackID: trackID, AssetID: assetID, StartMs: startMs, DurationMs: g.durationLocked(asset), Volume: 1}
	if err := timeline.ValidateClipPlacement(existing, clip); err != nil {
		return nil, fmt.Errorf("add clip: %w", err)
	}
	clip.ID = g.id()
	g.clips = append(g.clips, clip)
	return &clip, nil
}

var _ editor.Gateway = (*FakeGateway)(nil)
