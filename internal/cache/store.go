package cache

import (
	"context"
	"sync"
)

// Resource names used as the first half of a cache key.
const (
	ResourceProjects = "projects"
	ResourceAssets   = "assets"
	ResourceTracks   = "tracks"
	ResourceClips    = "clips"
)

// Key identifies one query result: the kind of entity and the scope it was
// read for (usually a project id).
type Key struct {
	Resource string
	Scope    string
}

type entry struct {
	version uint64
	value   any
}

// Store is a (resource, scope) -> version map with the last loaded value for
// each key. Writers call Invalidate after a successful mutation; readers call
// Load and get a fresh value whenever the version moved since the last load.
// Store is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	versions map[Key]uint64
	entries  map[Key]entry
	subs     map[Key][]chan uint64
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		versions: make(map[Key]uint64),
		entries:  make(map[Key]entry),
		subs:     make(map[Key][]chan uint64),
	}
}

// Invalidate bumps the version of (resource, scope) and notifies subscribers.
func (s *Store) Invalidate(resource, scope string) {
	key := Key{Resource: resource, Scope: scope}

	s.mu.Lock()
	s.versions[key]++
	v := s.versions[key]
	subs := append([]chan uint64(nil), s.subs[key]...)
	s.mu.Unlock()

	for _, ch := range subs {
		// Latest version wins; a subscriber that has not drained the
		// previous bump only needs the newest one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v:
		default:
		}
	}
}

// Version returns the current version of (resource, scope). Keys never
// invalidated are at version 0.
func (s *Store) Version(resource, scope string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.versions[Key{Resource: resource, Scope: scope}]
}

// Load returns the cached value for (resource, scope) if it was loaded at the
// current version, and otherwise calls load and caches its result. Errors are
// not cached. The load function runs without the store lock held.
func (s *Store) Load(ctx context.Context, resource, scope string, load func(context.Context) (any, error)) (any, error) {
	key := Key{Resource: resource, Scope: scope}

	s.mu.Lock()
	v := s.versions[key]
	if e, ok := s.entries[key]; ok && e.version == v {
		s.mu.Unlock()
		return e.value, nil
	}
	s.mu.Unlock()

	value, err := load(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	// Only store if nobody invalidated the key while we were loading;
	// otherwise the value is already stale.
	if s.versions[key] == v {
		s.entries[key] = entry{version: v, value: value}
	}
	s.mu.Unlock()

	return value, nil
}

// Subscribe returns a channel receiving the new version each time
// (resource, scope) is invalidated, and a function that cancels the
// subscription.
func (s *Store) Subscribe(resource, scope string) (<-chan uint64, func()) {
	key := Key{Resource: resource, Scope: scope}
	ch := make(chan uint64, 1)

	s.mu.Lock()
	s.subs[key] = append(s.subs[key], ch)
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			subs := s.subs[key]
			for i, c := range subs {
				if c == ch {
					s.subs[key] = append(subs[:i], subs[i+1:]...)
					break
				}
			}
		})
	}
	return ch, cancel
}
