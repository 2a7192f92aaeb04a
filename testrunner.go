package trellis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

// sessionStep represents a single action in a session script.
type sessionStep struct {
	Action string   `json:"action"`
	Label  string   `json:"label,omitempty"`
	X      float64  `json:"x,omitempty"`
	Y      float64  `json:"y,omitempty"`
	FromX  float64  `json:"fromX,omitempty"`
	FromY  float64  `json:"fromY,omitempty"`
	ToX    float64  `json:"toX,omitempty"`
	ToY    float64  `json:"toY,omitempty"`
	DY     float64  `json:"dy,omitempty"`
	Key    string   `json:"key,omitempty"`
	Mods   []string `json:"mods,omitempty"`
	Frames int      `json:"frames,omitempty"`
}

// sessionScript is the top-level JSON structure for a session script.
type sessionScript struct {
	Steps []sessionStep `json:"steps"`
}

// SessionRunner sequences injected input events and screenshots across
// frames for automated editing sessions. Attach to a Canvas via
// SetSessionRunner.
type SessionRunner struct {
	steps     []sessionStep
	cursor    int
	waitCount int
	done      bool
}

// LoadSessionScript parses a JSON session script:
//
//	{"steps": [
//	  {"action": "drag", "fromX": 10, "fromY": 10, "toX": 80, "toY": 10, "frames": 8, "mods": ["shift"]},
//	  {"action": "move", "x": 120, "y": 40},
//	  {"action": "wheel", "x": 400, "y": 300, "dy": -1},
//	  {"action": "key", "key": "Escape"},
//	  {"action": "screenshot", "label": "after-drag"},
//	  {"action": "wait", "frames": 10}
//	]}
func LoadSessionScript(jsonData []byte) (*SessionRunner, error) {
	var script sessionScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse session script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse session script: no steps")
	}
	for i, st := range script.Steps {
		if _, err := parseMods(st.Mods); err != nil {
			return nil, fmt.Errorf("parse session script: step %d: %w", i, err)
		}
		if st.Action == "key" {
			var k ebiten.Key
			if err := k.UnmarshalText([]byte(st.Key)); err != nil {
				return nil, fmt.Errorf("parse session script: step %d: key %q: %w", i, st.Key, err)
			}
		}
	}
	return &SessionRunner{steps: script.Steps}, nil
}

func parseMods(names []string) (KeyModifiers, error) {
	var m KeyModifiers
	for _, n := range names {
		switch strings.ToLower(n) {
		case "shift":
			m |= ModShift
		case "ctrl", "control":
			m |= ModCtrl
		case "alt", "option":
			m |= ModAlt
		case "meta", "cmd", "command":
			m |= ModMeta
		default:
			return 0, fmt.Errorf("unknown modifier %q", n)
		}
	}
	return m, nil
}

// SetSessionRunner attaches a SessionRunner to the canvas. The runner's
// step method is called from Canvas.Update before input processing.
func (c *Canvas) SetSessionRunner(runner *SessionRunner) {
	c.session = runner
}

// Done reports whether all steps in the script have been executed.
func (r *SessionRunner) Done() bool {
	return r.done
}

// step advances the runner by one frame. Called from Canvas.Update.
func (r *SessionRunner) step(c *Canvas) {
	if r.done {
		return
	}
	if len(c.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++
	mods, _ := parseMods(st.Mods)

	switch st.Action {
	case "screenshot":
		c.Screenshot(st.Label)
	case "click":
		c.InjectClick(st.X, st.Y, mods)
	case "move":
		c.InjectHover(st.X, st.Y, mods)
	case "drag":
		c.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames, mods)
	case "wheel":
		c.InjectWheel(st.X, st.Y, st.DY, mods)
	case "key":
		var k ebiten.Key
		_ = k.UnmarshalText([]byte(st.Key))
		c.InjectKey(k, mods)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1
		}
	default:
		Logger().Warn("session script: unknown action", "action", st.Action)
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(c.injectQueue) == 0 {
		r.done = true
	}
}
