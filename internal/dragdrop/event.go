package dragdrop

import (
	"encoding/json"
	"fmt"
)

// Point is a pointer position in window coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle. Edges are inclusive, matching the hit
// test a host performs against an element's bounding client rect.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

// EventType is the kind of a raw host drag event.
type EventType string

const (
	EventOver  EventType = "over"
	EventDrop  EventType = "drop"
	EventLeave EventType = "leave"
)

// Event is one raw drag event from the host. Paths are host-native absolute
// file paths and are only present on drop events.
type Event struct {
	Type     EventType `json:"type"`
	Position Point     `json:"position"`
	Paths    []string  `json:"paths,omitempty"`
}

// Over builds an over event.
func Over(x, y float64) Event {
	return Event{Type: EventOver, Position: Point{X: x, Y: y}}
}

// Drop builds a drop event.
func Drop(x, y float64, paths ...string) Event {
	return Event{Type: EventDrop, Position: Point{X: x, Y: y}, Paths: paths}
}

// Leave builds a cancelled/leave event.
func Leave() Event {
	return Event{Type: EventLeave}
}

// ParseEventType maps a host event name to its EventType. Hosts report a
// cancelled drag as "leave"; "cancel" and "cancelled" are aliases for it.
func ParseEventType(name string) (EventType, bool) {
	switch t := EventType(name); t {
	case EventOver, EventDrop, EventLeave:
		return t, true
	case "cancel", "cancelled":
		return EventLeave, true
	}
	return "", false
}

// UnmarshalJSON validates the event type and resolves cancel aliases.
func (e *Event) UnmarshalJSON(data []byte) error {
	type raw Event
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	t, ok := ParseEventType(string(r.Type))
	if !ok {
		return fmt.Errorf("unknown drag event type %q", r.Type)
	}
	r.Type = t
	if r.Type != EventDrop && len(r.Paths) > 0 {
		return fmt.Errorf("%s event must not carry paths", r.Type)
	}
	*e = Event(r)
	return nil
}
