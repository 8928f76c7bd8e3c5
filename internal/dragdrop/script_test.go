package dragdrop_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"icut-go/internal/dragdrop"
)

const sessionScript = `{
	// Two side-by-side panels.
	"zones": {
		"library":  {"left": 0,   "top": 0, "right": 300,  "bottom": 600},
		"timeline": {"left": 310, "top": 0, "right": 1000, "bottom": 600},
	},
	"steps": [
		{"type": "over", "position": {"x": 20, "y": 20}},
		{"type": "drop", "position": {"x": 20, "y": 20}, "paths": ["/media/a.png"]},
		{"type": "wait"},
		/* pick the first imported asset */
		{"type": "select"},
		{"type": "click", "position": {"x": 400, "y": 20}},
		{"type": "leave"},
	],
}`

func TestParseScript(t *testing.T) {
	script, err := dragdrop.ParseScript([]byte(sessionScript))
	if err != nil {
		t.Fatalf("ParseScript() error = %v", err)
	}

	if len(script.Steps) != 6 {
		t.Fatalf("len(Steps) = %d, want 6", len(script.Steps))
	}
	r, ok := script.Layout().CurrentBounds("timeline")
	if !ok || r.Left != 310 {
		t.Errorf("timeline bounds = %+v, %v", r, ok)
	}

	ev, ok := script.Steps[1].Event()
	if !ok || ev.Type != dragdrop.EventDrop || ev.Paths[0] != "/media/a.png" {
		t.Errorf("Steps[1].Event() = %+v, %v", ev, ok)
	}
	if _, ok := script.Steps[3].Event(); ok {
		t.Error("select step reported a host event")
	}
}

func TestParseScript_invalid(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "unknown step", input: `{"steps": [{"type": "hover"}]}`, wantErr: "unknown step type"},
		{name: "drop without paths", input: `{"steps": [{"type": "drop"}]}`, wantErr: "drop without paths"},
		{name: "paths on over", input: `{"steps": [{"type": "over", "paths": ["/a"]}]}`, wantErr: "must not carry paths"},
		{name: "inverted zone", input: `{"zones": {"z": {"left": 10, "right": 0}}}`, wantErr: "inverted rectangle"},
		{name: "malformed", input: `{"steps": [}`, wantErr: "parsing drag script"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dragdrop.ParseScript([]byte(tt.input))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ParseScript() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseScript_cancelAliases(t *testing.T) {
	input := `{"steps": [
		{"type": "over", "position": {"x": 1, "y": 1}},
		{"type": "cancel"},
		{"type": "cancelled"},
	]}`

	script, err := dragdrop.ParseScript([]byte(input))
	if err != nil {
		t.Fatalf("ParseScript() error = %v", err)
	}
	for _, i := range []int{1, 2} {
		ev, ok := script.Steps[i].Event()
		if !ok || ev.Type != dragdrop.EventLeave {
			t.Errorf("Steps[%d].Event() = %+v, %v; want leave", i, ev, ok)
		}
	}

	if _, err := dragdrop.ParseScript([]byte(`{"steps": [{"type": "cancel", "paths": ["/a"]}]}`)); err == nil {
		t.Error("ParseScript() accepted paths on a cancel step")
	}
}

func TestReadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jsonc")
	if err := os.WriteFile(path, []byte(sessionScript), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := dragdrop.ReadScript(path); err != nil {
		t.Errorf("ReadScript() error = %v", err)
	}
	if _, err := dragdrop.ReadScript(filepath.Join(t.TempDir(), "missing.jsonc")); err == nil {
		t.Error("ReadScript() expected error for missing file")
	}
}

func TestEvent_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    dragdrop.EventType
		wantErr bool
	}{
		{name: "over", input: `{"type":"over","position":{"x":1,"y":2}}`, want: dragdrop.EventOver},
		{name: "drop", input: `{"type":"drop","position":{"x":1,"y":2},"paths":["/a"]}`, want: dragdrop.EventDrop},
		{name: "cancelled alias", input: `{"type":"cancelled"}`, want: dragdrop.EventLeave},
		{name: "unknown", input: `{"type":"enter"}`, wantErr: true},
		{name: "paths on leave", input: `{"type":"leave","paths":["/a"]}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ev dragdrop.Event
			err := json.Unmarshal([]byte(tt.input), &ev)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && ev.Type != tt.want {
				t.Errorf("Type = %q, want %q", ev.Type, tt.want)
			}
		})
	}
}
