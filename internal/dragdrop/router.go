package dragdrop

import (
	"context"
	"sync"
)

// Layout supplies live zone geometry. The router asks for bounds on every
// event and never caches them, so zones may move or resize between events.
// ok is false when the zone is not currently laid out.
type Layout interface {
	CurrentBounds(zoneID string) (r Rect, ok bool)
}

// LayoutFunc adapts a function to the Layout interface.
type LayoutFunc func(zoneID string) (Rect, bool)

func (f LayoutFunc) CurrentBounds(zoneID string) (Rect, bool) { return f(zoneID) }

// Logger is the logging surface the router needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Zone is an interactive region and its handlers. All handlers are optional.
//
// OnHover is called for every over event inside the zone. OnLeave is called
// once when the pointer exits a zone that was active. OnDrop runs on its own
// goroutine; the router does not wait for it.
type Zone struct {
	ID      string
	OnHover func(p Point)
	OnDrop  func(ctx context.Context, paths []string, p Point) error
	OnLeave func()
}

// Router turns a stream of raw host drag events into zone-scoped callbacks.
type Router struct {
	layout Layout
	logger Logger

	mu     sync.Mutex
	zones  []*Zone // registration order
	active map[*Zone]bool
	closed bool

	inflight sync.WaitGroup
}

// NewRouter creates a Router that hit-tests against layout.
func NewRouter(layout Layout, logger Logger) *Router {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Router{
		layout: layout,
		logger: logger,
		active: make(map[*Zone]bool),
	}
}

// Register adds a zone and returns a function that removes it again. When
// zones overlap, the most recently registered one wins the hit test.
func (r *Router) Register(z Zone) (unregister func()) {
	zone := &z

	r.mu.Lock()
	r.zones = append(r.zones, zone)
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			for i, candidate := range r.zones {
				if candidate == zone {
					r.zones = append(r.zones[:i], r.zones[i+1:]...)
					break
				}
			}
			delete(r.active, zone)
		})
	}
}

// ZoneAt returns the id of the zone under p, if any.
func (r *Router) ZoneAt(p Point) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if z := r.hitLocked(p); z != nil {
		return z.ID, true
	}
	return "", false
}

// Dispatch classifies one event and invokes the matching handlers. It never
// blocks on drop handlers. After Close, Dispatch does nothing.
func (r *Router) Dispatch(ctx context.Context, ev Event) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}

	var calls []func()
	switch ev.Type {
	case EventOver:
		hit := r.hitLocked(ev.Position)
		for _, z := range r.zones {
			z := z
			if z == hit {
				if !r.active[z] {
					r.logger.Debug("drag entered zone", "zone", z.ID)
				}
				r.active[z] = true
				if z.OnHover != nil {
					calls = append(calls, func() { z.OnHover(ev.Position) })
				}
				continue
			}
			if r.active[z] {
				calls = append(calls, r.leaveLocked(z)...)
			}
		}

	case EventDrop:
		hit := r.hitLocked(ev.Position)
		for _, z := range r.zones {
			if z != hit && r.active[z] {
				calls = append(calls, r.leaveLocked(z)...)
			}
		}
		clear(r.active)

		switch {
		case hit == nil:
			r.logger.Debug("drop outside every zone discarded", "x", ev.Position.X, "y", ev.Position.Y, "paths", len(ev.Paths))
		case hit.OnDrop == nil:
			r.logger.Debug("drop on zone without drop handler discarded", "zone", hit.ID)
		default:
			r.logger.Info("drop routed", "zone", hit.ID, "paths", len(ev.Paths))
			r.startDropLocked(ctx, hit, ev)
		}

	case EventLeave:
		for _, z := range r.zones {
			if r.active[z] {
				calls = append(calls, r.leaveLocked(z)...)
			}
		}

	default:
		r.logger.Warn("ignoring unknown drag event", "type", string(ev.Type))
	}
	r.mu.Unlock()

	for _, call := range calls {
		call()
	}
}

// Run dispatches events from the channel until it is closed or ctx is done.
func (r *Router) Run(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			r.Dispatch(ctx, ev)
		}
	}
}

// Close turns further event delivery into a no-op. Drop handlers that are
// already running are left to finish.
func (r *Router) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	clear(r.active)
}

// Wait blocks until every drop handler started so far has returned.
func (r *Router) Wait() {
	r.inflight.Wait()
}

// hitLocked returns the zone containing p, checking the most recently
// registered zone first.
func (r *Router) hitLocked(p Point) *Zone {
	for i := len(r.zones) - 1; i >= 0; i-- {
		z := r.zones[i]
		rect, ok := r.layout.CurrentBounds(z.ID)
		if ok && rect.Contains(p) {
			return z
		}
	}
	return nil
}

func (r *Router) leaveLocked(z *Zone) []func() {
	delete(r.active, z)
	r.logger.Debug("drag left zone", "zone", z.ID)
	if z.OnLeave == nil {
		return nil
	}
	return []func(){z.OnLeave}
}

func (r *Router) startDropLocked(ctx context.Context, z *Zone, ev Event) {
	// Gateway calls issued by the handler are not cancellable; detach them
	// from the dispatcher's lifetime.
	hctx := context.WithoutCancel(ctx)
	paths := append([]string(nil), ev.Paths...)

	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		if err := z.OnDrop(hctx, paths, ev.Position); err != nil {
			r.logger.Warn("drop handler failed", "zone", z.ID, "error", err)
		}
	}()
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
