package cache

import (
	"context"
	"errors"
	"testing"
)

func TestStore_Load(t *testing.T) {
	t.Run("loads once per version", func(t *testing.T) {
		s := NewStore()
		calls := 0
		load := func(context.Context) (any, error) {
			calls++
			return calls, nil
		}

		for i := 0; i < 3; i++ {
			v, err := s.Load(context.Background(), ResourceTracks, "1", load)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if v.(int) != 1 {
				t.Errorf("Load() = %v, want 1", v)
			}
		}
		if calls != 1 {
			t.Errorf("loader called %d times, want 1", calls)
		}
	})

	t.Run("reloads after invalidate", func(t *testing.T) {
		s := NewStore()
		calls := 0
		load := func(context.Context) (any, error) {
			calls++
			return calls, nil
		}

		s.Load(context.Background(), ResourceAssets, "1", load)
		s.Invalidate(ResourceAssets, "1")
		v, err := s.Load(context.Background(), ResourceAssets, "1", load)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if v.(int) != 2 {
			t.Errorf("Load() after invalidate = %v, want 2", v)
		}
	})

	t.Run("scopes are independent", func(t *testing.T) {
		s := NewStore()
		calls := 0
		load := func(context.Context) (any, error) {
			calls++
			return calls, nil
		}

		s.Load(context.Background(), ResourceAssets, "1", load)
		s.Load(context.Background(), ResourceAssets, "2", load)
		s.Invalidate(ResourceAssets, "2")
		v, _ := s.Load(context.Background(), ResourceAssets, "1", load)
		if v.(int) != 1 {
			t.Errorf("scope 1 reloaded after invalidating scope 2: got %v", v)
		}
	})

	t.Run("errors are not cached", func(t *testing.T) {
		s := NewStore()
		boom := errors.New("boom")
		fail := true
		load := func(context.Context) (any, error) {
			if fail {
				return nil, boom
			}
			return "ok", nil
		}

		if _, err := s.Load(context.Background(), ResourceProjects, "", load); !errors.Is(err, boom) {
			t.Fatalf("Load() error = %v, want boom", err)
		}
		fail = false
		v, err := s.Load(context.Background(), ResourceProjects, "", load)
		if err != nil || v != "ok" {
			t.Errorf("Load() = %v, %v; want ok, nil", v, err)
		}
	})

	t.Run("value loaded across an invalidate is not kept", func(t *testing.T) {
		s := NewStore()
		calls := 0
		load := func(context.Context) (any, error) {
			calls++
			if calls == 1 {
				s.Invalidate(ResourceClips, "1")
			}
			return calls, nil
		}

		s.Load(context.Background(), ResourceClips, "1", load)
		v, _ := s.Load(context.Background(), ResourceClips, "1", load)
		if v.(int) != 2 {
			t.Errorf("Load() = %v, want reload to 2", v)
		}
	})
}

func TestStore_Version(t *testing.T) {
	s := NewStore()
	if got := s.Version(ResourceTracks, "7"); got != 0 {
		t.Errorf("Version() = %d, want 0", got)
	}
	s.Invalidate(ResourceTracks, "7")
	s.Invalidate(ResourceTracks, "7")
	if got := s.Version(ResourceTracks, "7"); got != 2 {
		t.Errorf("Version() = %d, want 2", got)
	}
}

func TestStore_Subscribe(t *testing.T) {
	s := NewStore()
	ch, cancel := s.Subscribe(ResourceAssets, "1")
	defer cancel()

	s.Invalidate(ResourceAssets, "1")
	s.Invalidate(ResourceAssets, "1")

	select {
	case v := <-ch:
		if v != 2 {
			t.Errorf("received version %d, want latest 2", v)
		}
	default:
		t.Fatal("no notification received")
	}

	cancel()
	s.Invalidate(ResourceAssets, "1")
	select {
	case v := <-ch:
		t.Errorf("received version %d after cancel", v)
	default:
	}
}
