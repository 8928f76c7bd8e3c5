package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryStore keeps snapshots in memory. It is safe for concurrent use.
type MemoryStore struct {
	name     string
	mu       sync.RWMutex
	data     map[string][]byte
	versions map[string]int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(name string) *MemoryStore {
	return &MemoryStore{
		name:     name,
		data:     make(map[string][]byte),
		versions: make(map[string]int64),
	}
}

func (m *MemoryStore) Name() string { return m.name }

func (m *MemoryStore) Put(_ context.Context, libraryID string, r io.Reader, size int64, version int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[libraryID] = data
	m.versions[libraryID] = version
	return nil
}

func (m *MemoryStore) Get(_ context.Context, libraryID string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.data[libraryID]
	if !ok {
		return fmt.Errorf("%w: library %s", ErrNotFound, libraryID)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

func (m *MemoryStore) Version(_ context.Context, libraryID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.versions[libraryID], nil
}

// ValidateSetup always succeeds for the in-memory store.
func (m *MemoryStore) ValidateSetup(context.Context) error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
