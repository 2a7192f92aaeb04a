package trellis

import (
	"strings"
	"testing"
)

func TestLoadSessionScript(t *testing.T) {
	r, err := LoadSessionScript([]byte(`{"steps":[
		{"action":"click","x":10,"y":20},
		{"action":"key","key":"Escape","mods":["Shift"]}
	]}`))
	if err != nil {
		t.Fatalf("LoadSessionScript: %v", err)
	}
	if len(r.steps) != 2 || r.Done() {
		t.Errorf("steps=%d done=%v", len(r.steps), r.Done())
	}
}

func TestLoadSessionScriptErrors(t *testing.T) {
	tests := []struct {
		name, data, want string
	}{
		{"bad json", `{"steps":`, "parse session script"},
		{"no steps", `{"steps":[]}`, "no steps"},
		{"bad key", `{"steps":[{"action":"key","key":"NoSuchKey"}]}`, "NoSuchKey"},
		{"bad modifier", `{"steps":[{"action":"click","mods":["hyper"]}]}`, "hyper"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSessionScript([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestParseMods(t *testing.T) {
	m, err := parseMods([]string{"shift", "CMD", "option"})
	if err != nil {
		t.Fatal(err)
	}
	if !m.Has(ModShift) || !m.Has(ModMeta) || !m.Has(ModAlt) || m.Has(ModCtrl) {
		t.Errorf("mods = %b", m)
	}
}

func TestSessionRunnerSteps(t *testing.T) {
	c, _ := newTestCanvas(t)
	StartClickCreate(c, ClickCreateOptions{Factory: func() *Object { return NewRect(10, 10) }})
	r, err := LoadSessionScript([]byte(`{"steps":[
		{"action":"move","x":40,"y":40},
		{"action":"click","x":50,"y":60},
		{"action":"wait","frames":2},
		{"action":"screenshot","label":"after click"}
	]}`))
	if err != nil {
		t.Fatal(err)
	}

	frames := 0
	for !r.Done() && frames < 20 {
		r.step(c)
		c.drainInjected()
		frames++
	}
	if !r.Done() {
		t.Fatal("runner did not finish")
	}
	if len(c.Objects()) != 1 || c.Objects()[0].CenterPoint() != (ScenePoint{50, 60}) {
		t.Errorf("objects = %v", c.Objects())
	}
	if len(c.screenshotQueue) != 1 || c.screenshotQueue[0] != "after click" {
		t.Errorf("screenshot queue = %v", c.screenshotQueue)
	}
	// move, click, two wait frames, screenshot.
	if frames != 5 {
		t.Errorf("frames = %d, want 5", frames)
	}
}

func TestSanitizeLabel(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", "unlabeled"},
		{"   ", "unlabeled"},
		{"after-drag", "after-drag"},
		{"zoom 2.0x", "zoom_2.0x"},
		{"a/b\\c", "a_b_c"},
	}
	for _, tt := range tests {
		if got := sanitizeLabel(tt.in); got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUnpremultiply(t *testing.T) {
	pix := []byte{64, 32, 0, 128, 10, 20, 30, 255, 0, 0, 0, 0}
	unpremultiply(pix)
	want := []byte{127, 63, 0, 128, 10, 20, 30, 255, 0, 0, 0, 0}
	for i := range want {
		if pix[i] != want[i] {
			t.Fatalf("pix = %v, want %v", pix, want)
		}
	}
}
