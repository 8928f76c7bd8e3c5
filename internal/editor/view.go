package editor

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"icut-go/internal/timeline"
)

// maxClipLoads bounds concurrent ListClips calls while building a View.
const maxClipLoads = 4

// TrackView is one track and its clips ordered by start time.
type TrackView struct {
	Track timeline.Track
	Clips []timeline.Clip
}

// View is a read-only snapshot of a project's library and timeline.
type View struct {
	Project timeline.Project
	Assets  []timeline.Asset
	Tracks  []TrackView
}

// DurationMs returns the end of the last clip across all tracks.
func (v *View) DurationMs() int64 {
	var end int64
	for _, t := range v.Tracks {
		for _, c := range t.Clips {
			if c.EndMs() > end {
				end = c.EndMs()
			}
		}
	}
	return end
}

// LoadView reads the project, its assets, its tracks in order, and the clips
// of every track. Reads go through the cache, so an unchanged project costs
// no gateway calls.
func (e *Editor) LoadView(ctx context.Context) (*View, error) {
	project, err := e.gateway.GetProject(ctx, e.projectID)
	if err != nil {
		return nil, fmt.Errorf("reading project: %w", err)
	}

	assets, err := e.assets(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading assets: %w", err)
	}

	tracks, err := e.tracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading tracks: %w", err)
	}
	tracks = append([]timeline.Track(nil), tracks...)
	sort.SliceStable(tracks, func(i, j int) bool {
		if tracks[i].TrackType != tracks[j].TrackType {
			return tracks[i].TrackType == timeline.TrackVideo
		}
		return tracks[i].OrderIndex < tracks[j].OrderIndex
	})

	views := make([]TrackView, len(tracks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxClipLoads)
	for i, t := range tracks {
		g.Go(func() error {
			clips, err := e.clips(gctx, t.ID)
			if err != nil {
				return fmt.Errorf("reading clips of track %d: %w", t.ID, err)
			}
			clips = append([]timeline.Clip(nil), clips...)
			timeline.SortClips(clips)
			views[i] = TrackView{Track: t, Clips: clips}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &View{Project: *project, Assets: assets, Tracks: views}, nil
}
