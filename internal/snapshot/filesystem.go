package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FileSystemStore keeps snapshots as files under a root directory:
//
//	<root>/
//	  <libraryID>.snapshot
//	  <libraryID>.version
type FileSystemStore struct {
	name string
	root string
}

// NewFileSystemStore creates a store rooted at root, creating the directory.
func NewFileSystemStore(name, root string) (*FileSystemStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &FileSystemStore{name: name, root: root}, nil
}

func (s *FileSystemStore) Name() string { return s.name }

// Put writes the snapshot and then its version marker, each atomically.
func (s *FileSystemStore) Put(_ context.Context, libraryID string, r io.Reader, size int64, version int64) error {
	if err := writeFileAtomic(s.snapshotPath(libraryID), r, size); err != nil {
		return err
	}
	v := strings.NewReader(strconv.FormatInt(version, 10))
	return writeFileAtomic(s.versionPath(libraryID), v, v.Size())
}

func (s *FileSystemStore) Get(_ context.Context, libraryID string, w io.Writer) error {
	f, err := os.Open(s.snapshotPath(libraryID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: library %s", ErrNotFound, libraryID)
		}
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	return nil
}

// Version returns 0 if no version file exists.
func (s *FileSystemStore) Version(_ context.Context, libraryID string) (int64, error) {
	data, err := os.ReadFile(s.versionPath(libraryID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading version file: %w", err)
	}

	version, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing version: %w", err)
	}
	return version, nil
}

// ValidateSetup verifies that the root is a writable directory.
func (s *FileSystemStore) ValidateSetup(context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("snapshot root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("snapshot root is not a directory: %s", s.root)
	}

	probe, err := os.CreateTemp(s.root, ".probe-*")
	if err != nil {
		return fmt.Errorf("snapshot root not writable: %w", err)
	}
	probe.Close()
	return os.Remove(probe.Name())
}

func (s *FileSystemStore) snapshotPath(libraryID string) string {
	return filepath.Join(s.root, libraryID+".snapshot")
}

func (s *FileSystemStore) versionPath(libraryID string) string {
	return filepath.Join(s.root, libraryID+".version")
}

// writeFileAtomic writes r to destPath through a temp file in the same
// directory and a rename.
func writeFileAtomic(destPath string, r io.Reader, expectedSize int64) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	success = true
	return nil
}

var _ Store = (*FileSystemStore)(nil)
