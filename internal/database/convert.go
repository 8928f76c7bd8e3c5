package database

import (
	"database/sql"

	"icut-go/internal/database/sqlc"
	"icut-go/internal/timeline"
)

func toProject(p sqlc.Project) timeline.Project {
	return timeline.Project{
		ID:               p.ID,
		Name:             p.Name,
		DurationMs:       p.DurationMs,
		FrameRate:        p.FrameRate,
		ResolutionWidth:  p.ResolutionWidth,
		ResolutionHeight: p.ResolutionHeight,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func toAsset(a sqlc.Asset) timeline.Asset {
	return timeline.Asset{
		ID:            a.ID,
		ProjectID:     a.ProjectID,
		FilePath:      a.FilePath,
		Kind:          timeline.Kind(a.AssetType),
		DurationMs:    fromNullInt(a.DurationMs),
		Width:         fromNullInt(a.Width),
		Height:        fromNullInt(a.Height),
		FileSizeBytes: a.FileSizeBytes,
		ImportedAt:    a.ImportedAt,
	}
}

func toTrack(t sqlc.Track) timeline.Track {
	return timeline.Track{
		ID:         t.ID,
		ProjectID:  t.ProjectID,
		TrackType:  timeline.TrackType(t.TrackType),
		OrderIndex: t.OrderIndex,
		IsLocked:   t.IsLocked,
		IsMuted:    t.IsMuted,
	}
}

func toClip(c sqlc.Clip) timeline.Clip {
	return timeline.Clip{
		ID:                 c.ID,
		TrackID:            c.TrackID,
		AssetID:            c.AssetID,
		StartMs:            c.StartTimeMs,
		DurationMs:         c.DurationMs,
		AssetStartOffsetMs: c.AssetStartOffsetMs,
		AssetEndOffsetMs:   c.AssetEndOffsetMs,
		Volume:             c.Volume,
		IsMuted:            c.IsMuted,
	}
}

func toTracks(rows []sqlc.Track) []timeline.Track {
	out := make([]timeline.Track, len(rows))
	for i, r := range rows {
		out[i] = toTrack(r)
	}
	return out
}

func toClips(rows []sqlc.Clip) []timeline.Clip {
	out := make([]timeline.Clip, len(rows))
	for i, r := range rows {
		out[i] = toClip(r)
	}
	return out
}

func fromNullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func toNullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
