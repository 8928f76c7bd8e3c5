// Package fs resolves dropped paths on the local filesystem and expands
// dropped folders into the media files they contain.
package fs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"icut-go/internal/config"
	"icut-go/internal/editor"
)

// OSFilesystemManager is the real filesystem implementation of
// editor.FilesystemManager.
type OSFilesystemManager struct {
	ignore []string
}

var _ editor.FilesystemManager = (*OSFilesystemManager)(nil)

// NewOSFilesystemManager creates a manager that skips the configured ignore
// patterns, plus any listed in a dropped folder's .icutignore.
func NewOSFilesystemManager(cfg config.FilesystemConfig) *OSFilesystemManager {
	return &OSFilesystemManager{ignore: cfg.Ignore}
}

// Resolve makes rawPath absolute and rejects devices, pipes and sockets.
// Symlinks are followed.
func (m *OSFilesystemManager) Resolve(rawPath string) (*editor.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}

	mode := info.Mode()
	switch {
	case mode&os.ModeDevice != 0:
		return nil, fmt.Errorf("device files not supported: %s", absPath)
	case mode&os.ModeNamedPipe != 0:
		return nil, fmt.Errorf("named pipes not supported: %s", absPath)
	case mode&os.ModeSocket != 0:
		return nil, fmt.Errorf("sockets not supported: %s", absPath)
	}

	return editor.NewPath(absPath, info.IsDir(), info), nil
}

// Stat returns fresh file info for an absolute path.
func (m *OSFilesystemManager) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// Exists reports whether path still names something on disk. Stat errors
// other than "not exist" count as present.
func (m *OSFilesystemManager) Exists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// FindFiles returns the regular files under dir in lexical path order.
func (m *OSFilesystemManager) FindFiles(dir *editor.Path, recursive bool) ([]*editor.Path, error) {
	if !dir.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir.String())
	}

	matcher, err := m.matcherFor(dir.String())
	if err != nil {
		return nil, err
	}

	var paths []*editor.Path
	root := dir.String()
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return fmt.Errorf("relative path of %s: %w", p, err)
		}
		if d.IsDir() {
			if !recursive || matcher.MatchDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || matcher.Match(rel) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}
		paths = append(paths, editor.NewPath(p, false, info))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i].String() < paths[j].String() })
	return paths, nil
}

func (m *OSFilesystemManager) matcherFor(root string) (*IgnoreMatcher, error) {
	fromFile, err := ParseIgnoreFile(filepath.Join(root, IgnoreFileName))
	if err != nil {
		return nil, err
	}
	patterns := make([]string, 0, len(defaultIgnorePatterns)+len(m.ignore)+len(fromFile))
	patterns = append(patterns, defaultIgnorePatterns...)
	patterns = append(patterns, m.ignore...)
	patterns = append(patterns, fromFile...)
	return NewIgnoreMatcher(patterns), nil
}
