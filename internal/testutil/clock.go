package testutil

import (
	"fmt"
	"sync"
	"time"

	"icut-go/internal/editor"
)

// StubClock is a settable clock for editor and database tests.
type StubClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewStubClock starts a StubClock at t.
func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: t}
}

// FixedClock starts at 2026-03-01 09:00:00 UTC.
func FixedClock() *StubClock {
	return NewStubClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d, so successive imports get distinct
// timestamps.
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// StubIDGenerator names batches "id-1", "id-2", and so on.
type StubIDGenerator struct {
	mu   sync.Mutex
	next int
}

func NewStubIDGenerator() *StubIDGenerator {
	return &StubIDGenerator{}
}

func (g *StubIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("id-%d", g.next)
}

var (
	_ editor.Clock       = (*StubClock)(nil)
	_ editor.IDGenerator = (*StubIDGenerator)(nil)
)
