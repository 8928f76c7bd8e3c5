package snapshot

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// storeUnderTest builds each Store implementation against local fakes.
func storesUnderTest(t *testing.T) map[string]Store {
	t.Helper()
	fsStore, err := NewFileSystemStore("fs", filepath.Join(t.TempDir(), "snapshots"))
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}
	fake := newFakeS3()
	return map[string]Store{
		"memory":     NewMemoryStore("mem"),
		"filesystem": fsStore,
		"s3":         newS3Store("s3", "bucket", "libs", fake, fake),
	}
}

func TestStore_PutGetVersion(t *testing.T) {
	ctx := context.Background()
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			v, err := s.Version(ctx, "lib-1")
			if err != nil {
				t.Fatalf("Version() on empty store error = %v", err)
			}
			if v != 0 {
				t.Errorf("Version() on empty store = %d, want 0", v)
			}

			var buf bytes.Buffer
			if err := s.Get(ctx, "lib-1", &buf); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get() on empty store error = %v, want ErrNotFound", err)
			}

			data := "sqlite bytes"
			if err := s.Put(ctx, "lib-1", strings.NewReader(data), int64(len(data)), 7); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			if err := s.Put(ctx, "lib-2", strings.NewReader("other"), 5, 2); err != nil {
				t.Fatalf("Put(lib-2) error = %v", err)
			}

			v, err = s.Version(ctx, "lib-1")
			if err != nil {
				t.Fatalf("Version() error = %v", err)
			}
			if v != 7 {
				t.Errorf("Version() = %d, want 7", v)
			}

			buf.Reset()
			if err := s.Get(ctx, "lib-1", &buf); err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if buf.String() != data {
				t.Errorf("Get() = %q, want %q", buf.String(), data)
			}

			if err := s.ValidateSetup(ctx); err != nil {
				t.Errorf("ValidateSetup() error = %v", err)
			}
		})
	}
}

func TestStore_SizeMismatch(t *testing.T) {
	ctx := context.Background()
	for _, name := range []string{"memory", "filesystem"} {
		t.Run(name, func(t *testing.T) {
			s := storesUnderTest(t)[name]
			if err := s.Put(ctx, "lib-1", strings.NewReader("short"), 100, 1); err == nil {
				t.Error("Put() expected size mismatch error")
			}
			if v, _ := s.Version(ctx, "lib-1"); v != 0 {
				t.Errorf("Version() after failed Put = %d, want 0", v)
			}
		})
	}
}

func TestFileSystemStore_Layout(t *testing.T) {
	root := t.TempDir()
	s, err := NewFileSystemStore("fs", root)
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}
	if err := s.Put(context.Background(), "lib-1", strings.NewReader("abc"), 3, 12); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(root, "lib-1.version"))
	if err != nil {
		t.Fatalf("reading version file: %v", err)
	}
	if string(got) != "12" {
		t.Errorf("version file = %q, want 12", got)
	}
	if _, err := os.Stat(filepath.Join(root, "lib-1.snapshot")); err != nil {
		t.Errorf("snapshot file missing: %v", err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("root has %d entries, want 2 (no temp files left)", len(entries))
	}
}

func TestFileSystemStore_ValidateSetup(t *testing.T) {
	root := filepath.Join(t.TempDir(), "snapshots")
	s, err := NewFileSystemStore("fs", root)
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}
	if err := os.RemoveAll(root); err != nil {
		t.Fatal(err)
	}
	if err := s.ValidateSetup(context.Background()); err == nil {
		t.Error("ValidateSetup() expected error for missing root")
	}
}

func TestS3Store_Keys(t *testing.T) {
	fake := newFakeS3()
	s := newS3Store("s3", "bucket", "team/libs", fake, fake)
	if err := s.Put(context.Background(), "lib-1", strings.NewReader("x"), 1, 3); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	obj, ok := fake.objects["team/libs/lib-1.snapshot"]
	if !ok {
		t.Fatalf("object keys = %v, want team/libs/lib-1.snapshot", fake.keys())
	}
	if obj.meta[versionMetaKey] != "3" {
		t.Errorf("version metadata = %q, want 3", obj.meta[versionMetaKey])
	}
}
