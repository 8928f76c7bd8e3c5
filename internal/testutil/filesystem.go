package testutil

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"icut-go/internal/editor"
	ifs "icut-go/internal/fs"
)

// MockFile is an entry in the mock filesystem.
type MockFile struct {
	Content     []byte
	Permissions fs.FileMode
	ModTime     time.Time
	IsDirectory bool
}

// MockFilesystemManager is an in-memory filesystem for testing. Safe for
// concurrent use.
type MockFilesystemManager struct {
	mu      sync.Mutex
	files   map[string]*MockFile
	ignore  *ifs.IgnoreMatcher
	resolve []string
}

// NewMockFilesystemManager creates an empty mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files:  make(map[string]*MockFile),
		ignore: ifs.NewIgnoreMatcher(nil),
	}
}

// AddFile adds a regular file. Parent directories are created as needed.
func (m *MockFilesystemManager) AddFile(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addParentsLocked(path)
	m.files[path] = &MockFile{Content: content, Permissions: 0o644, ModTime: time.Now()}
}

// AddDirectory adds a directory.
func (m *MockFilesystemManager) AddDirectory(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addParentsLocked(path)
	m.files[path] = &MockFile{Permissions: 0o755, ModTime: time.Now(), IsDirectory: true}
}

// Remove deletes a file, simulating media that vanished after import.
func (m *MockFilesystemManager) Remove(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
}

// SetIgnorePatterns replaces the ignore patterns applied by FindFiles.
func (m *MockFilesystemManager) SetIgnorePatterns(patterns ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ignore = ifs.NewIgnoreMatcher(patterns)
}

// Resolved returns every raw path passed to Resolve, in call order.
func (m *MockFilesystemManager) Resolved() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.resolve...)
}

func (m *MockFilesystemManager) addParentsLocked(path string) {
	for dir := filepath.Dir(path); dir != "/" && dir != "."; dir = filepath.Dir(dir) {
		if _, ok := m.files[dir]; ok {
			return
		}
		m.files[dir] = &MockFile{Permissions: 0o755, ModTime: time.Now(), IsDirectory: true}
	}
}

func (m *MockFilesystemManager) Resolve(rawPath string) (*editor.Path, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolve = append(m.resolve, rawPath)

	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, err
	}
	info, err := m.statLocked(absPath)
	if err != nil {
		return nil, err
	}
	return editor.NewPath(absPath, info.IsDir(), info), nil
}

func (m *MockFilesystemManager) Stat(path string) (fs.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statLocked(path)
}

func (m *MockFilesystemManager) statLocked(path string) (fs.FileInfo, error) {
	file, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("stat %s: %w", path, fs.ErrNotExist)
	}
	return &mockFileInfo{
		name:    filepath.Base(path),
		size:    int64(len(file.Content)),
		mode:    file.Permissions,
		modTime: file.ModTime,
		isDir:   file.IsDirectory,
	}, nil
}

// FindFiles returns the files under dir in lexical order.
func (m *MockFilesystemManager) FindFiles(dir *editor.Path, recursive bool) ([]*editor.Path, error) {
	if !dir.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir.String())
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := dir.String() + "/"
	var names []string
	for name, file := range m.files {
		if file.IsDirectory || !strings.HasPrefix(name, prefix) {
			continue
		}
		rel := strings.TrimPrefix(name, prefix)
		if !recursive && strings.Contains(rel, "/") {
			continue
		}
		if m.ignore.Match(rel) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	paths := make([]*editor.Path, 0, len(names))
	for _, name := range names {
		info, err := m.statLocked(name)
		if err != nil {
			return nil, err
		}
		paths = append(paths, editor.NewPath(name, false, info))
	}
	return paths, nil
}

// mockFileInfo implements fs.FileInfo
type mockFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() any           { return nil }

var _ editor.FilesystemManager = (*MockFilesystemManager)(nil)
