package dragdrop

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// StaticLayout is a Layout backed by fixed rectangles.
type StaticLayout map[string]Rect

func (l StaticLayout) CurrentBounds(zoneID string) (Rect, bool) {
	r, ok := l[zoneID]
	return r, ok
}

// Step kinds that are not host drag events. They stand in for the clicks a
// user makes in the presentation layer between drags.
const (
	StepSelect = "select"
	StepClick  = "click"
	StepWait   = "wait"
)

// Script is a recorded host session: zone geometry plus an ordered list of
// drag events and editor actions.
type Script struct {
	Zones map[string]Rect `json:"zones"`
	Steps []Step          `json:"steps"`
}

// Step is one scripted host event or editor action.
type Step struct {
	Type     string   `json:"type"`
	Position Point    `json:"position"`
	Paths    []string `json:"paths,omitempty"`
	// AssetID is the asset picked by a select step. Zero selects the first
	// asset ingested so far in the replay.
	AssetID int64 `json:"asset_id,omitempty"`
}

// Event returns the host drag event for an over, drop or leave step.
// Cancel aliases become leave events, as in Event.UnmarshalJSON.
func (s Step) Event() (Event, bool) {
	t, ok := ParseEventType(s.Type)
	if !ok {
		return Event{}, false
	}
	switch t {
	case EventOver:
		return Over(s.Position.X, s.Position.Y), true
	case EventDrop:
		return Drop(s.Position.X, s.Position.Y, s.Paths...), true
	case EventLeave:
		return Leave(), true
	}
	return Event{}, false
}

// Layout returns the script's zones as a StaticLayout.
func (s *Script) Layout() StaticLayout {
	return StaticLayout(s.Zones)
}

// ParseScript strips JSONC comments and trailing commas from data, then
// unmarshals and validates the script.
func ParseScript(data []byte) (*Script, error) {
	stripped := jsonc.ToJSON(data)

	var script Script
	if err := json.Unmarshal(stripped, &script); err != nil {
		return nil, fmt.Errorf("parsing drag script: %w", err)
	}
	if err := script.Validate(); err != nil {
		return nil, err
	}
	return &script, nil
}

// ReadScript reads and parses a JSONC script file.
func ReadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	script, err := ParseScript(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return script, nil
}

// Validate checks step types and zone rectangles.
func (s *Script) Validate() error {
	for id, r := range s.Zones {
		if r.Right < r.Left || r.Bottom < r.Top {
			return fmt.Errorf("zone %q: inverted rectangle", id)
		}
	}
	for i, step := range s.Steps {
		kind := step.Type
		if t, ok := ParseEventType(kind); ok {
			kind = string(t)
		}
		switch kind {
		case string(EventDrop):
			if len(step.Paths) == 0 {
				return fmt.Errorf("step %d: drop without paths", i)
			}
		case string(EventOver), string(EventLeave), StepClick, StepWait:
			if len(step.Paths) > 0 {
				return fmt.Errorf("step %d: %s step must not carry paths", i, step.Type)
			}
		case StepSelect:
			if step.AssetID < 0 {
				return fmt.Errorf("step %d: negative asset id", i)
			}
		default:
			return fmt.Errorf("step %d: unknown step type %q", i, step.Type)
		}
	}
	return nil
}
