package timeline

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"
)

// ValidateClipPlacement checks that candidate can be placed among existing
// clips on one track. Intervals are half-open, so a clip that starts exactly
// where another ends is not an overlap. A clip with the candidate's own
// non-zero ID is ignored, which lets callers re-validate a moved clip.
func ValidateClipPlacement(existing []Clip, candidate Clip) error {
	if candidate.StartMs < 0 {
		return Validationf("validate placement", "start_ms must be non-negative, got %d", candidate.StartMs)
	}
	if candidate.DurationMs <= 0 {
		return Validationf("validate placement", "duration_ms must be positive, got %d", candidate.DurationMs)
	}
	if candidate.DurationMs > math.MaxInt64-candidate.StartMs {
		return Validationf("validate placement", "clip at %d ms with duration %d ms ends past the timeline limit", candidate.StartMs, candidate.DurationMs)
	}

	for _, other := range existing {
		if candidate.ID != 0 && other.ID == candidate.ID {
			continue
		}
		if candidate.StartMs < other.EndMs() && other.StartMs < candidate.EndMs() {
			return fmt.Errorf("%w: [%d,%d) intersects clip %d [%d,%d)",
				ErrOverlap, candidate.StartMs, candidate.EndMs(), other.ID, other.StartMs, other.EndMs())
		}
	}
	return nil
}

// NextOrderIndex returns the order index a new track of trackType should take
// in the project: one past the highest existing index of that type, or 0.
func NextOrderIndex(tracks []Track, projectID int64, trackType TrackType) int64 {
	next := int64(0)
	for _, t := range tracks {
		if t.ProjectID != projectID || t.TrackType != trackType {
			continue
		}
		if t.OrderIndex+1 > next {
			next = t.OrderIndex + 1
		}
	}
	return next
}

// SortClips orders clips by start time, then id.
func SortClips(clips []Clip) {
	sort.Slice(clips, func(i, j int) bool {
		if clips[i].StartMs != clips[j].StartMs {
			return clips[i].StartMs < clips[j].StartMs
		}
		return clips[i].ID < clips[j].ID
	})
}

var (
	imageExtensions = map[string]bool{
		"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true, "svg": true, "bmp": true,
	}
	videoExtensions = map[string]bool{
		"mp4": true, "webm": true, "mov": true, "avi": true, "mkv": true,
	}
)

// AssetKindOf classifies a path by its extension against the image and video
// sets. Everything else, audio included, is KindOther; the prober may refine
// the guess. This says nothing about whether the file is playable.
func AssetKindOf(path string) Kind {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch {
	case imageExtensions[ext]:
		return KindImage
	case videoExtensions[ext]:
		return KindVideo
	default:
		return KindOther
	}
}
