package database

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"icut-go/internal/timeline"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

func (c *fixedClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// newTestDB creates a new in-memory database with schema applied.
func newTestDB(t *testing.T) (*SQLiteDatabase, *fixedClock) {
	t.Helper()

	clock := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	db, err := NewSQLiteDatabase(":memory:", clock, 0)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}

	if _, err := db.db.Exec(Schema); err != nil {
		db.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db, clock
}

func int64p(v int64) *int64 {
	return &v
}

func mustProject(t *testing.T, db *SQLiteDatabase, name string) *timeline.Project {
	t.Helper()
	p, err := db.CreateProject(context.Background(), timeline.NewProject{Name: name})
	if err != nil {
		t.Fatalf("CreateProject(%q) error = %v", name, err)
	}
	return p
}

func mustAsset(t *testing.T, db *SQLiteDatabase, projectID int64, path string, durationMs *int64) *timeline.Asset {
	t.Helper()
	a, err := db.AddAsset(context.Background(), timeline.NewAsset{
		ProjectID:     projectID,
		FilePath:      path,
		DurationMs:    durationMs,
		FileSizeBytes: 1024,
	})
	if err != nil {
		t.Fatalf("AddAsset(%q) error = %v", path, err)
	}
	return a
}

func TestSQLiteDatabase_CreateProject(t *testing.T) {
	ctx := context.Background()

	t.Run("fills defaults and trims the name", func(t *testing.T) {
		db, clock := newTestDB(t)

		p, err := db.CreateProject(ctx, timeline.NewProject{Name: "  Demo reel "})
		if err != nil {
			t.Fatalf("CreateProject() error = %v", err)
		}
		if p.ID == 0 {
			t.Error("ID is zero")
		}
		if p.Name != "Demo reel" {
			t.Errorf("Name = %q, want %q", p.Name, "Demo reel")
		}
		if p.FrameRate != 30 || p.ResolutionWidth != 1920 || p.ResolutionHeight != 1080 {
			t.Errorf("defaults = %d fps %dx%d, want 30 fps 1920x1080", p.FrameRate, p.ResolutionWidth, p.ResolutionHeight)
		}
		if p.DurationMs != 0 {
			t.Errorf("DurationMs = %d, want 0", p.DurationMs)
		}
		if !p.CreatedAt.Equal(clock.now) {
			t.Errorf("CreatedAt = %v, want %v", p.CreatedAt, clock.now)
		}
	})

	t.Run("keeps explicit settings", func(t *testing.T) {
		db, _ := newTestDB(t)

		p, err := db.CreateProject(ctx, timeline.NewProject{Name: "vertical", FrameRate: 60, ResolutionWidth: 1080, ResolutionHeight: 1920})
		if err != nil {
			t.Fatalf("CreateProject() error = %v", err)
		}
		if p.FrameRate != 60 || p.ResolutionWidth != 1080 || p.ResolutionHeight != 1920 {
			t.Errorf("got %d fps %dx%d", p.FrameRate, p.ResolutionWidth, p.ResolutionHeight)
		}
	})

	tests := []struct {
		name string
		req  timeline.NewProject
	}{
		{"empty name", timeline.NewProject{Name: ""}},
		{"blank name", timeline.NewProject{Name: "   "}},
		{"negative frame rate", timeline.NewProject{Name: "x", FrameRate: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, _ := newTestDB(t)
			_, err := db.CreateProject(ctx, tt.req)
			if !errors.Is(err, timeline.ErrValidation) {
				t.Errorf("CreateProject() error = %v, want validation error", err)
			}
		})
	}
}

func TestSQLiteDatabase_Projects(t *testing.T) {
	ctx := context.Background()
	db, clock := newTestDB(t)

	first := mustProject(t, db, "first")
	clock.advance(time.Minute)
	second := mustProject(t, db, "second")

	projects, err := db.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if len(projects) != 2 || projects[0].ID != second.ID || projects[1].ID != first.ID {
		t.Errorf("ListProjects() = %+v, want newest first", projects)
	}

	got, err := db.GetProject(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetProject() error = %v", err)
	}
	if got.Name != "first" {
		t.Errorf("Name = %q, want first", got.Name)
	}

	if _, err := db.GetProject(ctx, 999); !errors.Is(err, timeline.ErrNotFound) {
		t.Errorf("GetProject(999) error = %v, want not found", err)
	}
}

func TestSQLiteDatabase_Assets(t *testing.T) {
	ctx := context.Background()

	t.Run("adds and lists in import order", func(t *testing.T) {
		db, clock := newTestDB(t)
		p := mustProject(t, db, "demo")

		a := mustAsset(t, db, p.ID, "/media/b.mp4", int64p(8000))
		clock.advance(time.Second)
		b := mustAsset(t, db, p.ID, "/media/a.png", nil)

		if a.Kind != timeline.KindVideo || b.Kind != timeline.KindImage {
			t.Errorf("kinds = %s, %s; want video, image", a.Kind, b.Kind)
		}
		if a.DurationMs == nil || *a.DurationMs != 8000 {
			t.Errorf("DurationMs = %v, want 8000", a.DurationMs)
		}
		if b.DurationMs != nil {
			t.Errorf("still DurationMs = %v, want nil", *b.DurationMs)
		}

		assets, err := db.ListAssets(ctx, p.ID)
		if err != nil {
			t.Fatalf("ListAssets() error = %v", err)
		}
		if len(assets) != 2 || assets[0].ID != a.ID || assets[1].ID != b.ID {
			t.Errorf("ListAssets() = %+v", assets)
		}

		got, err := db.GetAsset(ctx, b.ID)
		if err != nil {
			t.Fatalf("GetAsset() error = %v", err)
		}
		if got.FilePath != "/media/a.png" || got.FileSizeBytes != 1024 {
			t.Errorf("GetAsset() = %+v", got)
		}
	})

	t.Run("touches the project", func(t *testing.T) {
		db, clock := newTestDB(t)
		p := mustProject(t, db, "demo")
		clock.advance(time.Hour)
		mustAsset(t, db, p.ID, "/media/a.png", nil)

		got, err := db.GetProject(ctx, p.ID)
		if err != nil {
			t.Fatalf("GetProject() error = %v", err)
		}
		if !got.UpdatedAt.Equal(clock.now) {
			t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, clock.now)
		}
	})

	t.Run("unknown project", func(t *testing.T) {
		db, _ := newTestDB(t)
		_, err := db.AddAsset(ctx, timeline.NewAsset{ProjectID: 42, FilePath: "/media/a.png"})
		if !errors.Is(err, timeline.ErrNotFound) {
			t.Errorf("AddAsset() error = %v, want not found", err)
		}
		if _, err := db.ListAssets(ctx, 42); !errors.Is(err, timeline.ErrNotFound) {
			t.Errorf("ListAssets() error = %v, want not found", err)
		}
	})

	t.Run("rejects an empty path", func(t *testing.T) {
		db, _ := newTestDB(t)
		p := mustProject(t, db, "demo")
		_, err := db.AddAsset(ctx, timeline.NewAsset{ProjectID: p.ID, FilePath: " "})
		if !errors.Is(err, timeline.ErrValidation) {
			t.Errorf("AddAsset() error = %v, want validation error", err)
		}
	})

	t.Run("unknown asset", func(t *testing.T) {
		db, _ := newTestDB(t)
		if _, err := db.GetAsset(ctx, 7); !errors.Is(err, timeline.ErrNotFound) {
			t.Errorf("GetAsset() error = %v, want not found", err)
		}
	})
}

func TestSQLiteDatabase_DeleteAsset(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes an unreferenced asset", func(t *testing.T) {
		db, _ := newTestDB(t)
		p := mustProject(t, db, "demo")
		a := mustAsset(t, db, p.ID, "/media/a.png", nil)

		if err := db.DeleteAsset(ctx, a.ID); err != nil {
			t.Fatalf("DeleteAsset() error = %v", err)
		}
		if _, err := db.GetAsset(ctx, a.ID); !errors.Is(err, timeline.ErrNotFound) {
			t.Errorf("GetAsset() after delete error = %v, want not found", err)
		}
	})

	t.Run("rejects an asset used by a clip", func(t *testing.T) {
		db, _ := newTestDB(t)
		p := mustProject(t, db, "demo")
		a := mustAsset(t, db, p.ID, "/media/a.png", nil)
		if _, err := db.CreateTrackWithClip(ctx, p.ID, a.ID, timeline.TrackVideo, 0); err != nil {
			t.Fatalf("CreateTrackWithClip() error = %v", err)
		}

		err := db.DeleteAsset(ctx, a.ID)
		if !errors.Is(err, timeline.ErrValidation) {
			t.Errorf("DeleteAsset() error = %v, want validation error", err)
		}
		if _, err := db.GetAsset(ctx, a.ID); err != nil {
			t.Errorf("asset gone after rejected delete: %v", err)
		}
	})

	t.Run("unknown asset", func(t *testing.T) {
		db, _ := newTestDB(t)
		if err := db.DeleteAsset(ctx, 3); !errors.Is(err, timeline.ErrNotFound) {
			t.Errorf("DeleteAsset() error = %v, want not found", err)
		}
	})
}

func TestSQLiteDatabase_CreateTrackWithClip(t *testing.T) {
	ctx := context.Background()

	t.Run("still image gets the default duration", func(t *testing.T) {
		db, _ := newTestDB(t)
		p := mustProject(t, db, "demo")
		a := mustAsset(t, db, p.ID, "/media/a.png", nil)

		got, err := db.CreateTrackWithClip(ctx, p.ID, a.ID, timeline.TrackVideo, 0)
		if err != nil {
			t.Fatalf("CreateTrackWithClip() error = %v", err)
		}
		if got.Track.TrackType != timeline.TrackVideo || got.Track.OrderIndex != 0 || got.Track.ProjectID != p.ID {
			t.Errorf("Track = %+v", got.Track)
		}
		want := timeline.Clip{
			ID:         got.Clip.ID,
			TrackID:    got.Track.ID,
			AssetID:    a.ID,
			StartMs:    0,
			DurationMs: 5000,
			Volume:     1.0,
		}
		if got.Clip != want {
			t.Errorf("Clip = %+v, want %+v", got.Clip, want)
		}
	})

	t.Run("video takes its own duration", func(t *testing.T) {
		db, _ := newTestDB(t)
		p := mustProject(t, db, "demo")
		a := mustAsset(t, db, p.ID, "/media/a.mp4", int64p(12000))

		got, err := db.CreateTrackWithClip(ctx, p.ID, a.ID, timeline.TrackVideo, 0)
		if err != nil {
			t.Fatalf("CreateTrackWithClip() error = %v", err)
		}
		if got.Clip.DurationMs != 12000 {
			t.Errorf("DurationMs = %d, want 12000", got.Clip.DurationMs)
		}
	})

	t.Run("order index grows per track type", func(t *testing.T) {
		db, _ := newTestDB(t)
		p := mustProject(t, db, "demo")
		a := mustAsset(t, db, p.ID, "/media/a.png", nil)

		wantIndex := []struct {
			trackType timeline.TrackType
			index     int64
		}{
			{timeline.TrackVideo, 0},
			{timeline.TrackVideo, 1},
			{timeline.TrackAudio, 0},
			{timeline.TrackVideo, 2},
		}
		for _, w := range wantIndex {
			got, err := db.CreateTrackWithClip(ctx, p.ID, a.ID, w.trackType, 0)
			if err != nil {
				t.Fatalf("CreateTrackWithClip(%s) error = %v", w.trackType, err)
			}
			if got.Track.OrderIndex != w.index {
				t.Errorf("%s OrderIndex = %d, want %d", w.trackType, got.Track.OrderIndex, w.index)
			}
		}

		tracks, err := db.ListTracks(ctx, p.ID)
		if err != nil {
			t.Fatalf("ListTracks() error = %v", err)
		}
		if len(tracks) != 4 {
			t.Fatalf("ListTracks() returned %d tracks, want 4", len(tracks))
		}
		for i := 1; i < len(tracks); i++ {
			if tracks[i].OrderIndex < tracks[i-1].OrderIndex {
				t.Errorf("ListTracks() not ordered by order_index: %+v", tracks)
			}
		}
	})

	t.Run("validation failures leave nothing behind", func(t *testing.T) {
		db, _ := newTestDB(t)
		p := mustProject(t, db, "demo")
		other := mustProject(t, db, "other")
		a := mustAsset(t, db, p.ID, "/media/a.png", nil)

		tests := []struct {
			name      string
			projectID int64
			assetID   int64
			trackType timeline.TrackType
			startMs   int64
			want      error
		}{
			{"unknown asset", p.ID, 999, timeline.TrackVideo, 0, timeline.ErrNotFound},
			{"asset of another project", other.ID, a.ID, timeline.TrackVideo, 0, timeline.ErrValidation},
			{"bad track type", p.ID, a.ID, timeline.TrackType("subtitle"), 0, timeline.ErrValidation},
			{"negative start", p.ID, a.ID, timeline.TrackVideo, -1, timeline.ErrValidation},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := db.CreateTrackWithClip(ctx, tt.projectID, tt.assetID, tt.trackType, tt.startMs)
				if !errors.Is(err, tt.want) {
					t.Errorf("error = %v, want %v", err, tt.want)
				}
			})
		}

		for _, id := range []int64{p.ID, other.ID} {
			tracks, err := db.ListTracks(ctx, id)
			if err != nil {
				t.Fatalf("ListTracks() error = %v", err)
			}
			if len(tracks) != 0 {
				t.Errorf("project %d has %d tracks after failures, want 0", id, len(tracks))
			}
		}
	})
}

func TestSQLiteDatabase_AddClip(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)
	p := mustProject(t, db, "demo")
	still := mustAsset(t, db, p.ID, "/media/a.png", nil)
	video := mustAsset(t, db, p.ID, "/media/b.mp4", int64p(3000))

	first, err := db.CreateTrackWithClip(ctx, p.ID, still.ID, timeline.TrackVideo, 0)
	if err != nil {
		t.Fatalf("CreateTrackWithClip() error = %v", err)
	}
	trackID := first.Track.ID

	t.Run("adjacent clip is accepted", func(t *testing.T) {
		clip, err := db.AddClip(ctx, trackID, video.ID, 5000)
		if err != nil {
			t.Fatalf("AddClip() error = %v", err)
		}
		if clip.StartMs != 5000 || clip.DurationMs != 3000 || clip.TrackID != trackID {
			t.Errorf("AddClip() = %+v", clip)
		}
	})

	t.Run("overlapping clip is rejected", func(t *testing.T) {
		_, err := db.AddClip(ctx, trackID, video.ID, 7000)
		if !errors.Is(err, timeline.ErrOverlap) {
			t.Errorf("AddClip() error = %v, want overlap", err)
		}
		if !errors.Is(err, timeline.ErrValidation) {
			t.Errorf("overlap error %v should be a validation error", err)
		}
	})

	t.Run("start that overflows the clip end is rejected", func(t *testing.T) {
		_, err := db.AddClip(ctx, trackID, video.ID, math.MaxInt64-1000)
		if !errors.Is(err, timeline.ErrValidation) {
			t.Errorf("AddClip() error = %v, want validation error", err)
		}
	})

	t.Run("unknown track", func(t *testing.T) {
		if _, err := db.AddClip(ctx, 999, video.ID, 0); !errors.Is(err, timeline.ErrNotFound) {
			t.Errorf("AddClip() error = %v, want not found", err)
		}
	})

	t.Run("asset from another project", func(t *testing.T) {
		other := mustProject(t, db, "other")
		foreign := mustAsset(t, db, other.ID, "/media/c.png", nil)
		if _, err := db.AddClip(ctx, trackID, foreign.ID, 20000); !errors.Is(err, timeline.ErrValidation) {
			t.Errorf("AddClip() error = %v, want validation error", err)
		}
	})

	clips, err := db.ListClips(ctx, trackID)
	if err != nil {
		t.Fatalf("ListClips() error = %v", err)
	}
	if len(clips) != 2 || clips[0].StartMs != 0 || clips[1].StartMs != 5000 {
		t.Errorf("ListClips() = %+v, want clips at 0 and 5000", clips)
	}

	if _, err := db.ListClips(ctx, 999); !errors.Is(err, timeline.ErrNotFound) {
		t.Errorf("ListClips(999) error = %v, want not found", err)
	}
}

func TestSQLiteDatabase_EditOperations(t *testing.T) {
	ctx := context.Background()
	db, clock := newTestDB(t)

	maxID, err := db.MaxEditOperationID(ctx)
	if err != nil {
		t.Fatalf("MaxEditOperationID() error = %v", err)
	}
	if maxID != 0 {
		t.Errorf("MaxEditOperationID() on empty db = %d, want 0", maxID)
	}

	op1, err := db.CreateEditOperation(ctx, "project create", `["demo"]`)
	if err != nil {
		t.Fatalf("CreateEditOperation() error = %v", err)
	}
	if op1.Status != "pending" || op1.FinishedAt.Valid {
		t.Errorf("new operation = %+v, want pending and unfinished", op1)
	}

	clock.advance(time.Second)
	if err := db.FinishEditOperation(ctx, op1.ID, "success"); err != nil {
		t.Fatalf("FinishEditOperation() error = %v", err)
	}
	op2, err := db.CreateEditOperation(ctx, "asset import", `["/media/a.png"]`)
	if err != nil {
		t.Fatalf("CreateEditOperation() error = %v", err)
	}

	ops, err := db.ListEditOperations(ctx, 10)
	if err != nil {
		t.Fatalf("ListEditOperations() error = %v", err)
	}
	if len(ops) != 2 || ops[0].ID != op2.ID || ops[1].ID != op1.ID {
		t.Fatalf("ListEditOperations() = %+v, want newest first", ops)
	}
	if ops[1].Status != "success" || !ops[1].FinishedAt.Valid || !ops[1].FinishedAt.Time.Equal(clock.now) {
		t.Errorf("finished operation = %+v", ops[1])
	}

	limited, err := db.ListEditOperations(ctx, 1)
	if err != nil {
		t.Fatalf("ListEditOperations(1) error = %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("ListEditOperations(1) returned %d, want 1", len(limited))
	}

	maxID, err = db.MaxEditOperationID(ctx)
	if err != nil {
		t.Fatalf("MaxEditOperationID() error = %v", err)
	}
	if maxID != op2.ID {
		t.Errorf("MaxEditOperationID() = %d, want %d", maxID, op2.ID)
	}
}

func TestSQLiteDatabase_BackupTo(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)
	p := mustProject(t, db, "demo")
	mustAsset(t, db, p.ID, "/media/a.png", nil)

	dest := filepath.Join(t.TempDir(), "backup.db")
	if err := db.BackupTo(ctx, dest); err != nil {
		t.Fatalf("BackupTo() error = %v", err)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("backup file missing: %v", err)
	}

	restored, err := NewSQLiteDatabase(dest, nil, 0)
	if err != nil {
		t.Fatalf("opening backup: %v", err)
	}
	defer restored.Close()

	assets, err := restored.ListAssets(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListAssets() on backup error = %v", err)
	}
	if len(assets) != 1 || assets[0].FilePath != "/media/a.png" {
		t.Errorf("backup assets = %+v", assets)
	}
}

func TestSQLiteDatabase_Migrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")
	db, err := NewSQLiteDatabase(path, nil, 0)
	if err != nil {
		t.Fatalf("NewSQLiteDatabase() error = %v", err)
	}
	defer db.Close()

	if err := db.CheckMigrations(); err == nil {
		t.Error("CheckMigrations() on fresh file expected error")
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := db.CheckMigrations(); err != nil {
		t.Errorf("CheckMigrations() after Migrate error = %v", err)
	}
	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}
}
