package editor

import (
	"context"
	"fmt"
	"sync"

	"icut-go/internal/dragdrop"
	"icut-go/internal/timeline"
)

// Zone ids registered by a Session.
const (
	ZoneLibrary  = "library"
	ZoneTimeline = "timeline"
)

// Session connects an Editor to a drag-drop Router: drops on the library
// panel import files, drops on the timeline panel import files and commit
// the first one in place of any selection, and clicks on the timeline commit
// the current selection.
type Session struct {
	editor *Editor
	router *dragdrop.Router
	logger Logger

	unregister []func()

	mu       sync.Mutex
	hovered  string
	imported []int64
}

// NewSession registers the library and timeline zones on a new router that
// reads zone geometry from layout.
func NewSession(editor *Editor, layout dragdrop.Layout, logger Logger) *Session {
	s := &Session{
		editor: editor,
		router: dragdrop.NewRouter(layout, logger),
		logger: logger,
	}

	s.unregister = append(s.unregister, s.router.Register(dragdrop.Zone{
		ID:      ZoneLibrary,
		OnHover: s.hover(ZoneLibrary),
		OnLeave: s.leave(ZoneLibrary),
		OnDrop:  s.dropOnLibrary,
	}))
	s.unregister = append(s.unregister, s.router.Register(dragdrop.Zone{
		ID:      ZoneTimeline,
		OnHover: s.hover(ZoneTimeline),
		OnLeave: s.leave(ZoneTimeline),
		OnDrop:  s.dropOnTimeline,
	}))
	return s
}

// Editor returns the session's editor.
func (s *Session) Editor() *Editor { return s.editor }

// Dispatch forwards a host drag event to the router.
func (s *Session) Dispatch(ctx context.Context, ev dragdrop.Event) {
	s.router.Dispatch(ctx, ev)
}

// Run dispatches host events until the channel closes or ctx is done.
func (s *Session) Run(ctx context.Context, events <-chan dragdrop.Event) error {
	return s.router.Run(ctx, events)
}

// Click handles a pointer click. A click inside the timeline zone targets the
// timeline with the current selection; clicks elsewhere do nothing.
func (s *Session) Click(ctx context.Context, p dragdrop.Point) (*timeline.TrackWithClip, error) {
	zone, ok := s.router.ZoneAt(p)
	if !ok || zone != ZoneTimeline {
		return nil, nil
	}
	return s.editor.TargetTimeline(ctx)
}

// HoveredZone returns the zone currently under a drag, if any.
func (s *Session) HoveredZone() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hovered
}

// Imported returns the ids of the assets imported through this session, in
// import order.
func (s *Session) Imported() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.imported...)
}

// Wait blocks until every drop handler started so far has finished.
func (s *Session) Wait() {
	s.router.Wait()
}

// Close unregisters the zones and stops event delivery. Ingestion already
// running is left to finish; call Wait to block on it.
func (s *Session) Close() {
	s.router.Close()
	for _, unregister := range s.unregister {
		unregister()
	}
}

// Replay feeds a recorded script through the session as a host would.
// Select steps with a zero asset id pick the first asset imported during the
// session. Replay waits for outstanding drops before returning.
func (s *Session) Replay(ctx context.Context, script *dragdrop.Script) error {
	defer s.Wait()

	for i, step := range script.Steps {
		if ev, ok := step.Event(); ok {
			s.Dispatch(ctx, ev)
			continue
		}

		switch step.Type {
		case dragdrop.StepWait:
			s.Wait()
		case dragdrop.StepSelect:
			assetID := step.AssetID
			if assetID == 0 {
				imported := s.Imported()
				if len(imported) == 0 {
					return fmt.Errorf("step %d: nothing imported to select", i)
				}
				assetID = imported[0]
			}
			if err := s.editor.Select(ctx, assetID); err != nil {
				return fmt.Errorf("step %d: %w", i, err)
			}
		case dragdrop.StepClick:
			if _, err := s.Click(ctx, step.Position); err != nil {
				return fmt.Errorf("step %d: %w", i, err)
			}
		default:
			return fmt.Errorf("step %d: unknown step type %q", i, step.Type)
		}
	}
	return nil
}

func (s *Session) hover(zone string) func(dragdrop.Point) {
	return func(dragdrop.Point) {
		s.mu.Lock()
		s.hovered = zone
		s.mu.Unlock()
	}
}

func (s *Session) leave(zone string) func() {
	return func() {
		s.mu.Lock()
		if s.hovered == zone {
			s.hovered = ""
		}
		s.mu.Unlock()
	}
}

func (s *Session) dropOnLibrary(ctx context.Context, paths []string, _ dragdrop.Point) error {
	s.clearHover()
	result := s.editor.IngestPaths(ctx, paths)
	s.record(result)
	return result.Err()
}

// dropOnTimeline imports the dropped files and commits the first imported
// asset onto the timeline. The dropped asset replaces any earlier selection.
func (s *Session) dropOnTimeline(ctx context.Context, paths []string, _ dragdrop.Point) error {
	s.clearHover()
	result := s.editor.IngestPaths(ctx, paths)
	s.record(result)
	if len(result.Assets) == 0 {
		return result.Err()
	}

	if err := s.editor.Select(ctx, result.Assets[0].ID); err != nil {
		return fmt.Errorf("selecting dropped asset: %w", err)
	}
	if _, err := s.editor.TargetTimeline(ctx); err != nil {
		return err
	}
	return result.Err()
}

func (s *Session) record(result *BatchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range result.Assets {
		s.imported = append(s.imported, a.ID)
	}
}

func (s *Session) clearHover() {
	s.mu.Lock()
	s.hovered = ""
	s.mu.Unlock()
}
