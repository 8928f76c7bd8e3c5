package editor

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"icut-go/internal/cache"
	"icut-go/internal/timeline"
)

// State is the interaction state of an Editor.
type State int

const (
	StateIdle State = iota
	StateAssetSelected
	StateIngesting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAssetSelected:
		return "asset-selected"
	case StateIngesting:
		return "ingesting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Editor is the interaction state machine for one project. It tracks the
// selected library asset, runs ingestion batches, and commits the selection
// onto an empty timeline. Editor is safe for concurrent use: drop handlers
// run on their own goroutines.
type Editor struct {
	projectID int64
	gateway   Gateway
	cache     Cache
	prober    Prober
	fsmgr     FilesystemManager
	logger    Logger
	clock     Clock
	idgen     IDGenerator

	mu         sync.Mutex
	selected   int64 // 0 when nothing is selected
	committing bool
	batches    int // ingestion batches in flight
	lastErr    error
}

// New creates an Editor for projectID.
func New(projectID int64, gateway Gateway, cache Cache, prober Prober, fsmgr FilesystemManager, logger Logger, clock Clock, idgen IDGenerator) *Editor {
	return &Editor{
		projectID: projectID,
		gateway:   gateway,
		cache:     cache,
		prober:    prober,
		fsmgr:     fsmgr,
		logger:    logger,
		clock:     clock,
		idgen:     idgen,
	}
}

// ProjectID returns the project this editor works on.
func (e *Editor) ProjectID() int64 { return e.projectID }

// State reports Ingesting while any batch or a track commit is in flight,
// AssetSelected while an asset is selected, and Idle otherwise.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case e.committing || e.batches > 0:
		return StateIngesting
	case e.selected != 0:
		return StateAssetSelected
	default:
		return StateIdle
	}
}

// Selection returns the selected asset id.
func (e *Editor) Selection() (int64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected, e.selected != 0
}

// LastError returns the error of the most recent failed operation, or nil if
// the latest operation succeeded.
func (e *Editor) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Select makes assetID the selected library asset. The asset must belong to
// the editor's project.
func (e *Editor) Select(ctx context.Context, assetID int64) error {
	assets, err := e.assets(ctx)
	if err != nil {
		return fmt.Errorf("reading assets: %w", err)
	}
	found := false
	for _, a := range assets {
		if a.ID == assetID {
			found = true
			break
		}
	}
	if !found {
		return timeline.NotFoundf("select asset", "asset %d is not in project %d", assetID, e.projectID)
	}

	e.mu.Lock()
	e.selected = assetID
	e.mu.Unlock()

	e.logger.Debug("asset selected", "project", e.projectID, "asset", assetID)
	return nil
}

// ClearSelection returns the editor to Idle.
func (e *Editor) ClearSelection() {
	e.mu.Lock()
	e.selected = 0
	e.mu.Unlock()
}

// TargetTimeline commits the selected asset onto the timeline. It only acts
// while an asset is selected and the project has no tracks yet; otherwise it
// returns (nil, nil). On success one video track holding one clip at 0 ms is
// created and the selection clears. On failure the selection is kept so the
// user can retry.
func (e *Editor) TargetTimeline(ctx context.Context) (*timeline.TrackWithClip, error) {
	e.mu.Lock()
	assetID := e.selected
	switch {
	case assetID == 0:
		e.mu.Unlock()
		e.logger.Debug("timeline targeted without a selection", "project", e.projectID)
		return nil, nil
	case e.committing:
		e.mu.Unlock()
		e.logger.Debug("timeline commit already in flight", "project", e.projectID)
		return nil, nil
	}
	e.committing = true
	e.mu.Unlock()

	result, err := e.commit(ctx, assetID)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.committing = false
	if err != nil {
		e.lastErr = err
		e.logger.Warn("timeline commit failed", "project", e.projectID, "asset", assetID, "error", err)
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	if e.selected == assetID {
		e.selected = 0
	}
	e.lastErr = nil
	e.logger.Info("asset committed to timeline",
		"project", e.projectID, "asset", assetID, "track", result.Track.ID, "clip", result.Clip.ID)
	return result, nil
}

func (e *Editor) commit(ctx context.Context, assetID int64) (*timeline.TrackWithClip, error) {
	tracks, err := e.tracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading tracks: %w", err)
	}
	if len(tracks) > 0 {
		// Only the empty-timeline bootstrap is supported interactively.
		e.logger.Debug("timeline already has tracks, commit skipped", "project", e.projectID, "tracks", len(tracks))
		return nil, nil
	}

	result, err := e.gateway.CreateTrackWithClip(ctx, e.projectID, assetID, timeline.TrackVideo, 0)
	if err != nil {
		return nil, fmt.Errorf("committing asset %d to timeline: %w", assetID, err)
	}

	e.cache.Invalidate(cache.ResourceTracks, e.scope())
	e.cache.Invalidate(cache.ResourceClips, strconv.FormatInt(result.Track.ID, 10))
	return result, nil
}

func (e *Editor) scope() string {
	return strconv.FormatInt(e.projectID, 10)
}

func (e *Editor) tracks(ctx context.Context) ([]timeline.Track, error) {
	v, err := e.cache.Load(ctx, cache.ResourceTracks, e.scope(), func(ctx context.Context) (any, error) {
		return e.gateway.ListTracks(ctx, e.projectID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]timeline.Track), nil
}

func (e *Editor) assets(ctx context.Context) ([]timeline.Asset, error) {
	v, err := e.cache.Load(ctx, cache.ResourceAssets, e.scope(), func(ctx context.Context) (any, error) {
		return e.gateway.ListAssets(ctx, e.projectID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]timeline.Asset), nil
}

func (e *Editor) clips(ctx context.Context, trackID int64) ([]timeline.Clip, error) {
	v, err := e.cache.Load(ctx, cache.ResourceClips, strconv.FormatInt(trackID, 10), func(ctx context.Context) (any, error) {
		return e.gateway.ListClips(ctx, trackID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]timeline.Clip), nil
}
