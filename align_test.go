package trellis

import "testing"

func hasLine(lines []AlignmentLine, origin, target ScenePoint) bool {
	for _, l := range lines {
		if approxPoint(l.Origin, origin, 1e-9) && approxPoint(l.Target, target, 1e-9) {
			return true
		}
	}
	return false
}

func TestAlignmentMoveSnap(t *testing.T) {
	c, _ := newTestCanvas(t)
	g := NewAlignmentGuides(c, AlignmentOptions{Margin: 6})
	a := rectAt(0, 0, 100, 100)
	b := rectAt(97, 300, 50, 50)
	c.Add(a, b)

	g.onMoving(TransformContext{Target: b})

	if got := b.PointByOrigin(OriginLeft, OriginTop); !approxPoint(got, ScenePoint{100, 300}, 1e-9) {
		t.Fatalf("B top-left = %v, want (100,300)", got)
	}
	vertical, horizontal := g.Lines()
	if len(horizontal) != 0 {
		t.Errorf("horizontal lines = %v, want none", horizontal)
	}
	// Three left-edge points of B against three right-edge points of A.
	if len(vertical) != 9 {
		t.Errorf("len(vertical) = %d, want 9", len(vertical))
	}
	if !hasLine(vertical, ScenePoint{97, 325}, ScenePoint{100, 50}) {
		t.Errorf("missing line from B's pre-snap left midpoint to A's right midpoint: %v", vertical)
	}
	for _, l := range vertical {
		if l.Target.X != 100 {
			t.Errorf("line target %v not on X=100", l.Target)
		}
	}
}

func TestAlignmentMoveRespectsLocks(t *testing.T) {
	tests := []struct {
		name       string
		locks      Locks
		wantTL     ScenePoint
		vert, horz int
	}{
		{"unlocked", Locks{}, ScenePoint{100, 100}, 9, 9},
		{"x locked", Locks{MovementX: true}, ScenePoint{97, 100}, 0, 9},
		{"y locked", Locks{MovementY: true}, ScenePoint{100, 103}, 9, 0},
		{"both locked", Locks{MovementX: true, MovementY: true}, ScenePoint{97, 103}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCanvas(t)
			g := NewAlignmentGuides(c, AlignmentOptions{Margin: 6})
			a := rectAt(0, 0, 100, 100)
			// B sits 3 right of A's right edge and 3 below its bottom.
			b := rectAt(97, 103, 50, 50)
			b.Locks = tt.locks
			c.Add(a, b)

			g.onMoving(TransformContext{Target: b})

			if got := b.PointByOrigin(OriginLeft, OriginTop); !approxPoint(got, tt.wantTL, 1e-9) {
				t.Errorf("B top-left = %v, want %v", got, tt.wantTL)
			}
			vertical, horizontal := g.Lines()
			if len(vertical) != tt.vert || len(horizontal) != tt.horz {
				t.Errorf("lines = %d vertical, %d horizontal; want %d, %d",
					len(vertical), len(horizontal), tt.vert, tt.horz)
			}
		})
	}
}

func TestAlignmentMoveOutsideMargin(t *testing.T) {
	c, _ := newTestCanvas(t)
	g := NewAlignmentGuides(c, AlignmentOptions{Margin: 6})
	a := rectAt(0, 0, 100, 100)
	b := rectAt(110, 300, 50, 50)
	c.Add(a, b)

	g.onMoving(TransformContext{Target: b})
	if got := b.PointByOrigin(OriginLeft, OriginTop); got != (ScenePoint{110, 300}) {
		t.Errorf("B moved to %v", got)
	}
	if v, h := g.Lines(); len(v)+len(h) != 0 {
		t.Errorf("lines = %v %v, want none", v, h)
	}
}

func TestAlignmentIgnoresOffscreenAndHidden(t *testing.T) {
	c, _ := newTestCanvas(t)
	g := NewAlignmentGuides(c, AlignmentOptions{Margin: 6})
	hidden := rectAt(0, 0, 100, 100)
	hidden.Visible = false
	offscreen := rectAt(97, 2000, 10, 10)
	b := rectAt(98, 300, 50, 50)
	c.Add(hidden, offscreen, b)

	g.onMoving(TransformContext{Target: b})
	if got := b.PointByOrigin(OriginLeft, OriginTop); got != (ScenePoint{98, 300}) {
		t.Errorf("B snapped to an ineligible object: %v", got)
	}
}

func TestAlignmentMarginFollowsZoom(t *testing.T) {
	c, _ := newTestCanvas(t)
	g := NewAlignmentGuides(c, AlignmentOptions{Margin: 6})
	c.SetViewportTransform(Matrix{4, 0, 0, 4, 0, 0})
	a := rectAt(0, 0, 100, 100)
	b := rectAt(97, 40, 50, 50)
	c.Add(a, b)

	// 6 px at zoom 4 is 1.5 scene units; 3 units away stays put on X.
	g.onMoving(TransformContext{Target: b})
	if got := b.PointByOrigin(OriginLeft, OriginTop); got.X != 97 {
		t.Errorf("B X = %v, want 97", got.X)
	}
}

func TestAlignmentResizeSnap(t *testing.T) {
	c, _ := newTestCanvas(t)
	c.UniformScaling = false
	g := NewAlignmentGuides(c, AlignmentOptions{})
	target := rectAt(150, 400, 50, 50)
	b := rectAt(0, 0, 100, 100)
	c.Add(target, b)

	// The BR handle was dragged to x=148.
	b.ScaleX = 1.48
	b.SetPositionByOrigin(ScenePoint{0, 0}, OriginLeft, OriginTop)
	tr := &Transform{Target: b, Action: ActionScale, Corner: ControlBR}
	g.onScaling(TransformContext{Target: b, Transform: tr})

	if tl := b.PointByOrigin(OriginLeft, OriginTop); !approxPoint(tl, ScenePoint{0, 0}, 1e-9) {
		t.Errorf("anchor moved to %v", tl)
	}
	if !approxEqual(b.ScaledWidth(), 150, 1e-9) || !approxEqual(b.ScaledHeight(), 100, 1e-9) {
		t.Errorf("size = %vx%v, want 150x100", b.ScaledWidth(), b.ScaledHeight())
	}
	vertical, _ := g.Lines()
	if len(vertical) == 0 || !hasLine(vertical, ScenePoint{148, 100}, ScenePoint{150, 400}) {
		t.Errorf("vertical = %v, want line from pre-snap handle to (150,400)", vertical)
	}
	if g.MarkersOnly() {
		t.Error("corner gesture reported markers-only")
	}
}

func TestAlignmentResizeRefetchesHandle(t *testing.T) {
	c, _ := newTestCanvas(t)
	g := NewAlignmentGuides(c, AlignmentOptions{})
	g.Register(func(o *Object) bool { return o.Data.Type == "pin" }, func(*Object) []ScenePoint {
		return []ScenePoint{{150, 500}, {500, 146}, {500, 151}}
	})
	pin := rectAt(480, 480, 10, 10)
	pin.Data.Type = "pin"
	b := rectAt(0, 0, 100, 100)
	c.Add(pin, b)

	b.ScaleX, b.ScaleY = 1.48, 1.48
	b.SetPositionByOrigin(ScenePoint{0, 0}, OriginLeft, OriginTop)
	tr := &Transform{Target: b, Action: ActionScale, Corner: ControlBR}
	g.onScaling(TransformContext{Target: b, Transform: tr})

	// X snaps 148 -> 150, which pushes the handle to y=150; Y then snaps to
	// the nearer 151 rather than to 146.
	br := b.PointByOrigin(OriginRight, OriginBottom)
	if !approxEqual(br.Y, 151, 1e-9) {
		t.Errorf("BR.Y = %v, want 151", br.Y)
	}
	// Uniform scaling carried the handle past X=150, so no vertical guide
	// may point at it.
	if !approxEqual(br.X, 151, 1e-9) {
		t.Errorf("BR.X = %v, want 151", br.X)
	}
	vertical, horizontal := g.Lines()
	if len(horizontal) != 1 || horizontal[0].Target.Y != 151 {
		t.Errorf("horizontal = %v, want one line to Y=151", horizontal)
	}
	if len(vertical) != 0 {
		t.Errorf("vertical = %v, want none", vertical)
	}
}

func TestAlignmentResizeFreeKeepsBothGuides(t *testing.T) {
	c, _ := newTestCanvas(t)
	c.UniformScaling = false
	g := NewAlignmentGuides(c, AlignmentOptions{})
	g.Register(func(o *Object) bool { return o.Data.Type == "pin" }, func(*Object) []ScenePoint {
		return []ScenePoint{{150, 500}, {500, 151}}
	})
	pin := rectAt(480, 480, 10, 10)
	pin.Data.Type = "pin"
	b := rectAt(0, 0, 100, 100)
	c.Add(pin, b)

	b.ScaleX, b.ScaleY = 1.48, 1.48
	b.SetPositionByOrigin(ScenePoint{0, 0}, OriginLeft, OriginTop)
	tr := &Transform{Target: b, Action: ActionScale, Corner: ControlBR}
	g.onScaling(TransformContext{Target: b, Transform: tr})

	br := b.PointByOrigin(OriginRight, OriginBottom)
	if !approxPoint(br, ScenePoint{150, 151}, 1e-9) {
		t.Errorf("BR = %v, want (150,151)", br)
	}
	vertical, horizontal := g.Lines()
	if len(vertical) != 1 || vertical[0].Target.X != 150 {
		t.Errorf("vertical = %v, want one line to X=150", vertical)
	}
	if len(horizontal) != 1 || horizontal[0].Target.Y != 151 {
		t.Errorf("horizontal = %v, want one line to Y=151", horizontal)
	}
}

func TestAlignmentUniformModifierInverts(t *testing.T) {
	c, _ := newTestCanvas(t)
	g := NewAlignmentGuides(c, AlignmentOptions{})
	target := rectAt(150, 400, 50, 50)
	b := rectAt(0, 0, 100, 100)
	c.Add(target, b)

	b.ScaleX = 1.48
	b.SetPositionByOrigin(ScenePoint{0, 0}, OriginLeft, OriginTop)
	tr := &Transform{Target: b, Action: ActionScale, Corner: ControlBR}
	// UniformScaling is on; Shift turns it off for this gesture.
	g.onScaling(TransformContext{Target: b, Transform: tr, Modifiers: ModShift})
	if !approxEqual(b.ScaledHeight(), 100, 1e-9) {
		t.Errorf("height = %v, want 100 for a free resize", b.ScaledHeight())
	}

	if !c.uniformFor(b, ControlBR, 0) || c.uniformFor(b, ControlBR, ModShift) {
		t.Error("uniformFor does not follow UniformScaling XOR UniScaleKey")
	}
	b.Locks.UniformScale = true
	if !c.uniformFor(b, ControlBR, ModShift) {
		t.Error("uniform lock ignored")
	}
	if c.uniformFor(b, ControlMR, 0) {
		t.Error("edge handles must never scale uniformly")
	}
}

func TestAlignmentEdgeHandleMarkersOnly(t *testing.T) {
	c, l := newTestCanvas(t)
	g := NewAlignmentGuides(c, AlignmentOptions{})
	target := rectAt(150, 400, 50, 50)
	b := rectAt(0, 0, 100, 100)
	c.Add(target, b)

	b.ScaleX = 1.48
	b.SetPositionByOrigin(ScenePoint{0, 0}, OriginLeft, OriginTop)
	tr := &Transform{Target: b, Action: ActionScale, Corner: ControlMR}
	g.onScaling(TransformContext{Target: b, Transform: tr})

	if !g.MarkersOnly() {
		t.Fatal("edge gesture not markers-only")
	}
	if !approxEqual(b.ScaledWidth(), 150, 1e-9) {
		t.Errorf("width = %v, want 150", b.ScaledWidth())
	}
	fireAfterRender(c)
	if len(l.lines) != 0 {
		t.Errorf("markers-only drew %d lines", len(l.lines))
	}
	if len(l.crosses) == 0 {
		t.Error("markers-only drew no markers")
	}
}

func TestAlignmentEdgeHandleRotatedSkipped(t *testing.T) {
	c, _ := newTestCanvas(t)
	g := NewAlignmentGuides(c, AlignmentOptions{})
	target := rectAt(150, 400, 50, 50)
	b := NewRect(100, 100)
	b.SetCenterPoint(ScenePoint{200, 200})
	b.Angle = 30
	c.Add(target, b)

	before := *b
	tr := &Transform{Target: b, Action: ActionScale, Corner: ControlMR}
	g.onScaling(TransformContext{Target: b, Transform: tr})
	if b.ScaleX != before.ScaleX || b.Left != before.Left || b.Top != before.Top {
		t.Error("rotated edge gesture was snapped")
	}
}

func TestAlignmentFlippedHandle(t *testing.T) {
	c, _ := newTestCanvas(t)
	c.UniformScaling = false
	g := NewAlignmentGuides(c, AlignmentOptions{})
	target := rectAt(150, 400, 50, 50)
	b := rectAt(0, 0, 100, 100)
	b.FlipX = true
	c.Add(target, b)

	b.ScaleX = 1.48
	b.SetPositionByOrigin(ScenePoint{0, 0}, OriginLeft, OriginTop)
	// Under FlipX the local "bl" handle is drawn bottom-right.
	tr := &Transform{Target: b, Action: ActionScale, Corner: ControlBL}
	g.onScaling(TransformContext{Target: b, Transform: tr})
	if !approxEqual(b.ScaledWidth(), 150, 1e-9) {
		t.Errorf("width = %v, want 150", b.ScaledWidth())
	}
	if tl := b.PointByOrigin(OriginLeft, OriginTop); !approxPoint(tl, ScenePoint{0, 0}, 1e-9) || !b.FlipX {
		t.Errorf("anchor moved to %v (flipX=%v)", tl, b.FlipX)
	}
}

func TestAlignmentRenderAndPointerUp(t *testing.T) {
	c, l := newTestCanvas(t)
	g := NewAlignmentGuides(c, AlignmentOptions{Margin: 6})
	a := rectAt(0, 0, 100, 100)
	b := rectAt(97, 300, 50, 50)
	c.Add(a, b)
	g.onMoving(TransformContext{Target: b})

	fireAfterRender(c)
	if len(l.lines) != 9 {
		t.Fatalf("lines drawn = %d, want 9", len(l.lines))
	}
	for _, seg := range l.lines {
		if seg[0].X != 100 || seg[1].X != 100 {
			t.Errorf("vertical guide %v not on X=100", seg)
		}
	}

	c.InjectPress(0, 0)
	c.InjectRelease(0, 0)
	c.drainInjected()
	if v, h := g.Lines(); len(v)+len(h) != 0 {
		t.Errorf("lines survived pointer up: %v %v", v, h)
	}
	fireAfterRender(c)
	if len(l.lines) != 0 {
		t.Errorf("stale guides drawn: %d", len(l.lines))
	}
}

func TestAlignmentDispose(t *testing.T) {
	c, _ := newTestCanvas(t)
	g := NewAlignmentGuides(c, AlignmentOptions{Margin: 6})
	a := rectAt(0, 0, 100, 100)
	b := rectAt(97, 300, 50, 50)
	c.Add(a, b)
	g.Dispose()

	c.handlers.objectMoving.fire(TransformContext{Target: b})
	if got := b.PointByOrigin(OriginLeft, OriginTop); got.X != 97 {
		t.Errorf("disposed engine still snapped B to %v", got)
	}
}

func TestAlignmentDragGesture(t *testing.T) {
	c, _ := newTestCanvas(t)
	NewAlignmentGuides(c, AlignmentOptions{Margin: 6})
	a := rectAt(0, 0, 100, 100)
	b := rectAt(200, 300, 50, 50)
	c.Add(a, b)

	// Drag B's center from (225,325) so its left edge lands at 97.
	c.InjectPress(225, 325)
	c.InjectMove(122, 325)
	c.InjectRelease(122, 325)
	c.drainInjected()
	if got := b.PointByOrigin(OriginLeft, OriginTop); !approxPoint(got, ScenePoint{100, 300}, 1e-9) {
		t.Errorf("B top-left after drag = %v, want (100,300)", got)
	}
}

func TestLineSetDedup(t *testing.T) {
	var s lineSet
	l := AlignmentLine{Origin: ScenePoint{1, 2}, Target: ScenePoint{1, 9}}
	s.add(l)
	s.add(l)
	if len(s.lines()) != 1 {
		t.Errorf("len = %d, want 1", len(s.lines()))
	}
	s.reset()
	if len(s.lines()) != 0 {
		t.Error("reset kept lines")
	}
}
