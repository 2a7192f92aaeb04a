package trellis

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestCanvasAddRemove(t *testing.T) {
	c, _ := newTestCanvas(t)
	var added, removed int
	c.OnObjectAdded(func(ObjectContext) { added++ })
	c.OnObjectRemoved(func(ObjectContext) { removed++ })

	a, b := NewRect(1, 1), NewRect(1, 1)
	c.Add(a, b)
	c.Add(a)
	if added != 2 || len(c.Objects()) != 2 {
		t.Fatalf("added=%d objects=%d, want 2 2", added, len(c.Objects()))
	}
	if a.Canvas() != c {
		t.Error("object not attached")
	}
	c.SetActiveObject(a)
	c.Remove(a)
	if removed != 1 || c.ActiveObject() != nil || a.Canvas() != nil {
		t.Errorf("removed=%d active=%v", removed, c.ActiveObject())
	}
	c.Remove(a)
	if removed != 1 {
		t.Error("removing twice fired again")
	}
}

func TestCanvasAddToSecondCanvasPanics(t *testing.T) {
	c1, _ := newTestCanvas(t)
	c2, _ := newTestCanvas(t)
	o := NewRect(1, 1)
	c1.Add(o)
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	c2.Add(o)
}

func TestFindTarget(t *testing.T) {
	c, _ := newTestCanvas(t)
	bottom := rectAt(0, 0, 100, 100)
	top := rectAt(50, 50, 100, 100)
	ghost := rectAt(0, 0, 300, 300)
	ghost.Evented = false
	c.Add(bottom, top, ghost)

	tests := []struct {
		at   ScreenPoint
		want *Object
	}{
		{ScreenPoint{10, 10}, bottom},
		{ScreenPoint{75, 75}, top},
		{ScreenPoint{250, 250}, nil},
		{ScreenPoint{500, 500}, nil},
	}
	for _, tt := range tests {
		if got := c.FindTarget(tt.at); got != tt.want {
			t.Errorf("FindTarget(%v) = %v, want %v", tt.at, got, tt.want)
		}
	}

	c.SetViewportTransform(Matrix{2, 0, 0, 2, 0, 0})
	if got := c.FindTarget(ScreenPoint{150, 150}); got != top {
		t.Errorf("zoomed FindTarget = %v, want top", got)
	}
}

func TestFindTargetConcavePolygon(t *testing.T) {
	c, _ := newTestCanvas(t)
	// A "U" shape: the notch at (50, 20) is outside.
	u := NewPolygon([]ScenePoint{{0, 0}, {30, 0}, {30, 60}, {70, 60}, {70, 0}, {100, 0}, {100, 100}, {0, 100}})
	c.Add(u)
	if c.FindTarget(ScreenPoint{50, 20}) != nil {
		t.Error("hit inside the notch")
	}
	if c.FindTarget(ScreenPoint{50, 80}) != u {
		t.Error("missed the base of the U")
	}
}

func TestVisibleBounds(t *testing.T) {
	c, _ := newTestCanvas(t)
	c.SetViewportTransform(Matrix{2, 0, 0, 2, -100, -50})
	b := c.VisibleBounds()
	if b.X != 50 || b.Y != 25 || b.Width != 400 || b.Height != 300 {
		t.Errorf("VisibleBounds = %+v", b)
	}
	o := rectAt(600, 0, 10, 10)
	c.Add(o)
	if o.IsOnScreen() {
		t.Error("offscreen object reported on screen")
	}
	o.SetPositionByOrigin(ScenePoint{440, 300}, OriginLeft, OriginTop)
	if !o.IsOnScreen() {
		t.Error("visible object reported offscreen")
	}
}

func TestSetVertexKeepsOtherVertices(t *testing.T) {
	p := NewPolygon([]ScenePoint{{0, 0}, {100, 0}, {100, 100}, {0, 100}})
	p.Angle = 30
	p.ScaleX = 2
	p.FlipY = true
	before := []ScenePoint{p.VertexToScene(0), p.VertexToScene(1), p.VertexToScene(2), p.VertexToScene(3)}

	want := ScenePoint{500, -40}
	p.SetVertex(2, want)
	if got := p.VertexToScene(2); !approxPoint(got, want, 1e-9) {
		t.Errorf("moved vertex at %v, want %v", got, want)
	}
	for _, i := range []int{0, 1, 3} {
		if got := p.VertexToScene(i); !approxPoint(got, before[i], 1e-9) {
			t.Errorf("vertex %d moved from %v to %v", i, before[i], got)
		}
	}
}

func TestSetVertexOutOfRangePanics(t *testing.T) {
	p := NewPolygon([]ScenePoint{{0, 0}, {10, 0}, {5, 5}})
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	p.SetVertex(3, ScenePoint{})
}

func TestScaleGesture(t *testing.T) {
	c, _ := newTestCanvas(t)
	c.UniformScaling = false
	o := rectAt(100, 100, 100, 100)
	c.Add(o)
	c.SetActiveObject(o)

	var scaling int
	c.OnObjectScaling(func(TransformContext) { scaling++ })
	var modified int
	c.OnObjectModified(func(ObjectContext) { modified++ })

	// Drag the br handle from (200,200) to (260,230).
	c.InjectPress(200, 200)
	c.InjectMove(260, 230)
	c.InjectRelease(260, 230)
	c.drainInjected()

	if scaling != 1 || modified != 1 {
		t.Errorf("scaling=%d modified=%d, want 1 1", scaling, modified)
	}
	if tl := o.PointByOrigin(OriginLeft, OriginTop); !approxPoint(tl, ScenePoint{100, 100}, 1e-9) {
		t.Errorf("anchor moved to %v", tl)
	}
	if !approxEqual(o.ScaledWidth(), 160, 1e-9) || !approxEqual(o.ScaledHeight(), 130, 1e-9) {
		t.Errorf("size = %vx%v, want 160x130", o.ScaledWidth(), o.ScaledHeight())
	}
}

func TestScaleGestureMinimumSize(t *testing.T) {
	c, _ := newTestCanvas(t)
	c.UniformScaling = false
	o := rectAt(100, 100, 100, 100)
	c.Add(o)
	c.SetActiveObject(o)

	c.InjectPress(200, 200)
	c.InjectMove(0, 0)
	c.InjectRelease(0, 0)
	c.drainInjected()
	if o.ScaledWidth() < minGestureSize || o.ScaledHeight() < minGestureSize {
		t.Errorf("size = %vx%v, below the minimum", o.ScaledWidth(), o.ScaledHeight())
	}
	if o.ScaleX <= 0 || o.ScaleY <= 0 {
		t.Error("gesture mirrored the object")
	}
}

func TestDragGestureLocks(t *testing.T) {
	c, _ := newTestCanvas(t)
	o := rectAt(0, 0, 100, 100)
	o.Locks.MovementY = true
	c.Add(o)
	c.InjectPress(50, 50)
	c.InjectMove(80, 90)
	c.InjectRelease(80, 90)
	c.drainInjected()
	if o.CenterPoint() != (ScenePoint{80, 50}) {
		t.Errorf("center = %v, want (80,50)", o.CenterPoint())
	}
}

func TestRequestFrame(t *testing.T) {
	c, _ := newTestCanvas(t)
	var runs []float64
	c.RequestFrame(func(dt float64) { runs = append(runs, dt) })
	h := c.RequestFrame(func(float64) { t.Error("canceled frame ran") })
	c.CancelFrame(h)
	var frames int
	c.OnFrame(func(FrameContext) { frames++ })

	c.Advance(0.5)
	c.Advance(0.25)
	if len(runs) != 1 || runs[0] != 0.5 {
		t.Errorf("runs = %v, want [0.5]", runs)
	}
	if frames != 2 {
		t.Errorf("frames = %d, want 2", frames)
	}
}

func TestKeyPropagation(t *testing.T) {
	c, _ := newTestCanvas(t)
	var order []string
	c.OnKeyDown(func(*KeyContext) { order = append(order, "bubble") })
	c.OnKeyDownCapture(func(k *KeyContext) {
		order = append(order, "capture")
		if k.Key == ebiten.KeyEscape {
			k.StopPropagation()
		}
	})
	c.InjectKey(ebiten.KeyA)
	c.InjectKey(ebiten.KeyEscape)
	c.drainInjected()
	want := []string{"capture", "bubble", "capture"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order = %v, want %v", order, want)
			break
		}
	}
}

func TestDefaultDeleteKey(t *testing.T) {
	c, _ := newTestCanvas(t)
	o := NewRect(10, 10)
	c.Add(o)
	c.SetActiveObject(o)
	c.InjectKey(ebiten.KeyDelete)
	c.drainInjected()
	if len(c.Objects()) != 0 {
		t.Error("Delete did not remove the active object")
	}

	p := NewRect(10, 10)
	c.Add(p)
	c.SetActiveObject(p)
	h := c.OnKeyDown(func(k *KeyContext) { k.StopPropagation() })
	c.InjectKey(ebiten.KeyDelete)
	c.drainInjected()
	if len(c.Objects()) != 1 {
		t.Error("stopped Delete still removed the object")
	}
	h.Remove()
	h.Remove()
}

func TestCallbackRemoveWhileFiring(t *testing.T) {
	c, _ := newTestCanvas(t)
	var calls int
	var h CallbackHandle
	h = c.OnObjectAdded(func(ObjectContext) {
		calls++
		h.Remove()
	})
	other := 0
	c.OnObjectAdded(func(ObjectContext) { other++ })
	c.Add(NewRect(1, 1))
	c.Add(NewRect(1, 1))
	if calls != 1 || other != 2 {
		t.Errorf("calls=%d other=%d, want 1 2", calls, other)
	}
}

func TestApplyObjectDefaults(t *testing.T) {
	c, _ := newTestCanvas(t)
	c.ControlStyle.CornerSize = 14
	c.ControlStyle.HiddenControls = []Control{ControlMT}

	circle := NewCircle(10)
	circle.Width, circle.Height = 40, 20
	circle.Locks.UniformScale = false
	ApplyObjectDefaults(c, circle)
	if circle.Controls.CornerSize != 14 || !circle.Locks.UniformScale {
		t.Errorf("circle defaults = %+v %+v", circle.Controls, circle.Locks)
	}
	if circle.RX != 20 || circle.RY != 10 {
		t.Errorf("circle radii = %v/%v, want 20/10", circle.RX, circle.RY)
	}
	for _, ctl := range []Control{ControlML, ControlMR, ControlMT, ControlMB} {
		if circle.controlVisible(ctl) {
			t.Errorf("circle edge handle %v visible", ctl)
		}
	}
	if len(c.ControlStyle.HiddenControls) != 1 {
		t.Error("defaults mutated the canvas control style")
	}

	poly := NewPolygon([]ScenePoint{{0, 0}, {10, 0}, {5, 5}})
	ApplyObjectDefaults(c, poly)
	if !poly.Locks.ScalingFlip || !poly.controlVisible(ControlML) || poly.controlVisible(ControlMT) {
		t.Errorf("polygon defaults = %+v %v", poly.Locks, poly.Controls.HiddenControls)
	}
}
