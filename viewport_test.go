package trellis

import (
	"testing"
	"time"
)

func TestViewportZoomToFit(t *testing.T) {
	c, _ := newTestCanvas(t)
	v := NewViewportController(c, ViewportOptions{})
	o := NewRect(200, 100)
	o.SetCenterPoint(ScenePoint{300, 400})
	c.Add(o)

	v.ZoomToFit(o, 0.1)
	// min(800*0.9/200, 600*0.9/100) = min(3.6, 5.4)
	if !approxEqual(c.Zoom(), 3.6, 1e-9) {
		t.Fatalf("zoom = %v, want 3.6", c.Zoom())
	}
	center := c.SceneToScreen(o.CenterPoint())
	if !approxEqual(center.X, 400, 1e-9) || !approxEqual(center.Y, 300, 1e-9) {
		t.Errorf("object center on screen = %v, want (400,300)", center)
	}
}

func TestViewportZoomToFitClamps(t *testing.T) {
	c, _ := newTestCanvas(t)
	v := NewViewportController(c, ViewportOptions{})
	tiny := NewRect(1, 1)
	c.Add(tiny)
	v.ZoomToFit(tiny, 0)
	if c.Zoom() != DefaultMaxZoom {
		t.Errorf("zoom = %v, want clamp to %v", c.Zoom(), DefaultMaxZoom)
	}

	flat := NewPolygon([]ScenePoint{{0, 0}, {10, 0}})
	before := c.ViewportTransform()
	v.ZoomToFit(flat, 0.1)
	if c.ViewportTransform() != before {
		t.Error("zero-area object changed the viewport")
	}
	v.ZoomToFit(nil, 0.1)
}

func TestViewportWheelZoom(t *testing.T) {
	c, _ := newTestCanvas(t)
	NewViewportController(c, ViewportOptions{})
	anchor := ScreenPoint{200, 150}
	under := c.ScreenToScene(anchor)

	c.InjectWheel(anchor.X, anchor.Y, -1)
	c.drainInjected()
	if !approxEqual(c.Zoom(), DefaultZoomFactor, 1e-9) {
		t.Fatalf("zoom = %v, want %v", c.Zoom(), DefaultZoomFactor)
	}
	if got := c.ScreenToScene(anchor); !approxPoint(got, under, 1e-9) {
		t.Errorf("point under cursor moved from %v to %v", under, got)
	}

	c.InjectWheel(anchor.X, anchor.Y, 1)
	c.drainInjected()
	if !approxEqual(c.Zoom(), 1, 1e-9) {
		t.Errorf("zoom after wheel down = %v, want 1", c.Zoom())
	}
}

func TestViewportWheelClamp(t *testing.T) {
	c, _ := newTestCanvas(t)
	NewViewportController(c, ViewportOptions{MinZoom: 0.5, MaxZoom: 2})
	for i := 0; i < 50; i++ {
		c.InjectWheel(10, 10, -1)
	}
	c.drainInjected()
	if c.Zoom() != 2 {
		t.Errorf("zoom = %v, want 2", c.Zoom())
	}
	for i := 0; i < 50; i++ {
		c.InjectWheel(10, 10, 1)
	}
	c.drainInjected()
	if c.Zoom() != 0.5 {
		t.Errorf("zoom = %v, want 0.5", c.Zoom())
	}
}

func TestViewportPinchClamp(t *testing.T) {
	c, _ := newTestCanvas(t)
	NewViewportController(c, ViewportOptions{})
	a := ScreenPoint{390, 300}
	c.updatePinch(a, ScreenPoint{410, 300})
	// Spread the fingers 50x in one step.
	c.updatePinch(ScreenPoint{0, 300}, ScreenPoint{1000, 300})
	if c.Zoom() != DefaultMaxZoom {
		t.Errorf("zoom = %v, want %v", c.Zoom(), DefaultMaxZoom)
	}
}

func TestViewportPinchZoomsAroundCenter(t *testing.T) {
	c, _ := newTestCanvas(t)
	NewViewportController(c, ViewportOptions{})
	mid := ScreenPoint{300, 200}
	under := c.ScreenToScene(mid)
	c.updatePinch(ScreenPoint{250, 200}, ScreenPoint{350, 200})
	c.updatePinch(ScreenPoint{200, 200}, ScreenPoint{400, 200})
	if !approxEqual(c.Zoom(), 2, 1e-9) {
		t.Fatalf("zoom = %v, want 2", c.Zoom())
	}
	if got := c.ScreenToScene(mid); !approxPoint(got, under, 1e-9) {
		t.Errorf("pinch center moved from %v to %v", under, got)
	}
}

func TestViewportDragPanEmptySpace(t *testing.T) {
	c, _ := newTestCanvas(t)
	v := NewViewportController(c, ViewportOptions{})
	c.InjectPress(100, 100)
	c.InjectMove(130, 90)
	c.drainInjected()
	if !v.Panning() {
		t.Fatal("press on empty canvas did not start a pan")
	}
	if c.Selection {
		t.Error("selection stayed on during pan")
	}
	c.InjectRelease(130, 90)
	c.drainInjected()
	m := c.ViewportTransform()
	if m[4] != 30 || m[5] != -10 {
		t.Errorf("pan = (%v, %v), want (30, -10)", m[4], m[5])
	}
	if v.Panning() || !c.Selection {
		t.Error("pan end did not restore selection")
	}
}

func TestViewportNoEmptySpacePan(t *testing.T) {
	c, _ := newTestCanvas(t)
	v := NewViewportController(c, ViewportOptions{NoEmptySpacePan: true})
	c.InjectPress(100, 100)
	c.drainInjected()
	if v.Panning() {
		t.Error("pan started with NoEmptySpacePan")
	}
	c.InjectRelease(100, 100)
	c.InjectPress(100, 100, ModAlt)
	c.drainInjected()
	if !v.Panning() {
		t.Error("pan modifier did not start a pan")
	}
}

func TestViewportDragOnObjectMovesObject(t *testing.T) {
	c, _ := newTestCanvas(t)
	v := NewViewportController(c, ViewportOptions{})
	o := rectAt(50, 50, 100, 100)
	c.Add(o)
	c.InjectPress(100, 100)
	c.InjectMove(120, 100)
	c.InjectRelease(120, 100)
	c.drainInjected()
	if v.Panning() || c.ViewportTransform() != IdentityMatrix {
		t.Error("dragging an object panned the viewport")
	}
	if o.CenterPoint() != (ScenePoint{120, 100}) {
		t.Errorf("object center = %v, want (120,100)", o.CenterPoint())
	}
}

func TestViewportMiddleButtonPan(t *testing.T) {
	c, _ := newTestCanvas(t)
	v := NewViewportController(c, ViewportOptions{})
	o := rectAt(50, 50, 100, 100)
	c.Add(o)
	c.InjectButtonPress(100, 100, MouseButtonMiddle)
	c.drainInjected()
	if !v.Panning() {
		t.Error("middle button on an object did not pan")
	}
}

func TestViewportSetModeRestoresFlags(t *testing.T) {
	c, _ := newTestCanvas(t)
	v := NewViewportController(c, ViewportOptions{})
	a := NewRect(10, 10)
	b := NewRect(10, 10)
	b.Selectable = false
	c.Add(a, b)
	c.SetActiveObject(a)

	v.SetMode(ModePan)
	if c.ActiveObject() != nil {
		t.Error("pan mode kept the selection")
	}
	late := NewRect(10, 10)
	c.Add(late)
	for _, o := range []*Object{a, b, late} {
		if o.Selectable || o.Evented {
			t.Errorf("object %d still interactive in pan mode", o.Handle)
		}
	}

	v.SetMode(ModeSelect)
	if !a.Selectable || !a.Evented || b.Selectable || !b.Evented || !late.Selectable {
		t.Errorf("flags not restored: a=%v/%v b=%v/%v late=%v",
			a.Selectable, a.Evented, b.Selectable, b.Evented, late.Selectable)
	}
	if !c.Selection {
		t.Error("select mode left Selection off")
	}
}

func TestViewportPanModeEveryDragPans(t *testing.T) {
	c, _ := newTestCanvas(t)
	v := NewViewportController(c, ViewportOptions{InitialMode: ModePan})
	o := rectAt(50, 50, 100, 100)
	c.Add(o)
	if v.Mode() != ModePan || o.Evented {
		t.Fatal("initial pan mode not applied")
	}
	c.InjectPress(100, 100)
	c.InjectMove(110, 100)
	c.InjectRelease(110, 100)
	c.drainInjected()
	if c.ViewportTransform()[4] != 10 {
		t.Errorf("pan X = %v, want 10", c.ViewportTransform()[4])
	}
	if o.CenterPoint() != (ScenePoint{100, 100}) {
		t.Error("object moved in pan mode")
	}
}

func TestViewportZoomInOutReset(t *testing.T) {
	c, _ := newTestCanvas(t)
	v := NewViewportController(c, ViewportOptions{ZoomFactor: 2})
	v.ZoomIn()
	if c.Zoom() != 2 {
		t.Errorf("ZoomIn = %v, want 2", c.Zoom())
	}
	center := c.ScreenToScene(ScreenPoint{400, 300})
	if !approxPoint(center, ScenePoint{400, 300}, 1e-9) {
		t.Errorf("canvas center moved to %v", center)
	}
	v.ZoomOut()
	v.ZoomOut()
	if c.Zoom() != 0.5 {
		t.Errorf("ZoomOut = %v, want 0.5", c.Zoom())
	}
	v.ResetView()
	if c.ViewportTransform() != IdentityMatrix {
		t.Errorf("ResetView = %v", c.ViewportTransform())
	}
}

func TestViewportPanToObject(t *testing.T) {
	c, _ := newTestCanvas(t)
	v := NewViewportController(c, ViewportOptions{})
	o := NewRect(10, 10)
	o.SetCenterPoint(ScenePoint{1000, -200})
	c.Add(o)

	v.PanToObject(o, PanOptions{})
	if got := c.SceneToScreen(o.CenterPoint()); got != (ScreenPoint{400, 300}) {
		t.Errorf("object on screen at %v, want (400,300)", got)
	}
}

func TestViewportPanToObjectAnimated(t *testing.T) {
	c, _ := newTestCanvas(t)
	v := NewViewportController(c, ViewportOptions{})
	o := NewRect(10, 10)
	o.SetCenterPoint(ScenePoint{600, 300})
	c.Add(o)

	v.PanToObject(o, PanOptions{Animate: true, Duration: 100 * time.Millisecond})
	if !v.Animating() {
		t.Fatal("animation not started")
	}
	c.Advance(0.05)
	mid := c.ViewportTransform()[4]
	if mid >= 0 || mid <= -200 {
		t.Errorf("pan halfway = %v, want between -200 and 0", mid)
	}
	for i := 0; i < 10 && v.Animating(); i++ {
		c.Advance(0.05)
	}
	if v.Animating() {
		t.Fatal("animation never finished")
	}
	if got := c.ViewportTransform()[4]; got != -200 {
		t.Errorf("final pan = %v, want -200", got)
	}
}

func TestViewportResetCancelsAnimation(t *testing.T) {
	c, _ := newTestCanvas(t)
	v := NewViewportController(c, ViewportOptions{})
	o := NewRect(10, 10)
	o.SetCenterPoint(ScenePoint{600, 300})
	c.Add(o)
	v.PanToObject(o, PanOptions{Animate: true})
	v.ResetView()
	c.Advance(1)
	if v.Animating() || c.ViewportTransform() != IdentityMatrix {
		t.Error("ResetView did not cancel the animation")
	}
}

func TestViewportDisabled(t *testing.T) {
	c, _ := newTestCanvas(t)
	v := NewViewportController(c, ViewportOptions{})
	v.SetEnabled(false)
	c.InjectWheel(10, 10, -1)
	c.InjectPress(100, 100)
	c.drainInjected()
	if c.Zoom() != 1 || v.Panning() {
		t.Error("disabled controller handled input")
	}
	v.ZoomIn()
	if c.Zoom() == 1 {
		t.Error("programmatic zoom blocked while disabled")
	}
}

func TestViewportDispose(t *testing.T) {
	c, _ := newTestCanvas(t)
	v := NewViewportController(c, ViewportOptions{InitialMode: ModePan})
	v.Dispose()
	if !c.Selection {
		t.Error("dispose left selection off")
	}
	c.InjectWheel(10, 10, -1)
	c.drainInjected()
	if c.Zoom() != 1 {
		t.Error("disposed controller still zooms")
	}
}

func TestSetViewportTransformRejectsSingular(t *testing.T) {
	c, _ := newTestCanvas(t)
	defer func() {
		if recover() == nil {
			t.Error("singular viewport accepted")
		}
	}()
	c.SetViewportTransform(Matrix{0, 0, 0, 0, 0, 0})
}

func TestViewportChangedFires(t *testing.T) {
	c, _ := newTestCanvas(t)
	var got []Matrix
	c.OnViewportChanged(func(m Matrix) { got = append(got, m) })
	c.RelativePan(5, 0)
	c.RelativePan(0, 0)
	if len(got) != 1 || got[0][4] != 5 {
		t.Errorf("viewport-changed events = %v, want one", got)
	}
}
