package trellis

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	maxPointers = 10 // pointer 0 = mouse, 1-9 = touch

	// minGestureSize is the smallest scaled width or height a handle drag
	// may produce, in scene units.
	minGestureSize = 1.0
)

// --- Per-pointer state ---

// Positions are kept in screen space: the viewport may change mid-gesture
// (panning), so scene positions are recomputed on every event.
type pointerState struct {
	down   bool
	last   ScreenPoint
	button MouseButton
}

type pinchState struct {
	active      bool
	initialDist float64
	prevDist    float64
}

// --- Transform gestures ---

// TransformAction names the kind of built-in gesture in progress.
type TransformAction uint8

const (
	ActionDrag  TransformAction = iota // the object follows the pointer
	ActionScale                        // a handle is being dragged
)

// Transform describes the built-in move or scale gesture in progress. It is
// created on pointer-down and discarded on pointer-up.
type Transform struct {
	Target *Object
	Action TransformAction
	// Corner is the handle being dragged, named in the object's local frame.
	// ControlNone for drags.
	Corner Control
	// Centered reports whether scaling keeps the center fixed instead of the
	// opposite handle. Resolved on every event from CenteredScaling and the
	// CenteredKey modifier.
	Centered bool
	// Uniform reports whether corner scaling keeps the aspect ratio. Resolved
	// on every event from UniformScaling, UniScaleKey and the object's locks.
	Uniform bool

	offsetX, offsetY float64 // pointer minus center at gesture start, scene space
	startW, startH   float64 // scaled size at gesture start
	changed          bool
}

// CancelTransform abandons the built-in gesture in progress, if any. The
// target keeps whatever changes were already applied.
func (c *Canvas) CancelTransform() {
	c.transform = nil
}

// CurrentTransform returns the built-in gesture in progress, or nil.
func (c *Canvas) CurrentTransform() *Transform {
	return c.transform
}

// uniformFor resolves whether a scale gesture on o keeps its aspect ratio.
func (c *Canvas) uniformFor(o *Object, corner Control, mods KeyModifiers) bool {
	if corner.IsEdge() {
		return false
	}
	if o.Locks.UniformScale {
		return true
	}
	return c.UniformScaling != mods.Has(c.UniScaleKey)
}

func (c *Canvas) centeredFor(mods KeyModifiers) bool {
	return c.CenteredScaling != mods.Has(c.CenteredKey)
}

// beginTransform starts the built-in gesture for a primary-button press.
func (c *Canvas) beginTransform(screen ScreenPoint, scene ScenePoint, target *Object) {
	if ctl := c.findControl(screen); ctl != ControlNone {
		o := c.active
		c.transform = &Transform{
			Target: o,
			Action: ActionScale,
			Corner: ctl,
			startW: o.ScaledWidth(),
			startH: o.ScaledHeight(),
		}
		return
	}
	if target == nil || !target.Selectable || !c.Selection {
		if c.Selection {
			c.DiscardActiveObject()
		}
		return
	}
	c.SetActiveObject(target)
	center := target.CenterPoint()
	c.transform = &Transform{
		Target:  target,
		Action:  ActionDrag,
		offsetX: scene.X - center.X,
		offsetY: scene.Y - center.Y,
	}
}

// applyTransform updates the gesture target for a pointer at scene point p
// and fires object-moving or object-scaling.
func (c *Canvas) applyTransform(p ScenePoint, mods KeyModifiers) {
	t := c.transform
	o := t.Target
	ctx := TransformContext{Target: o, Transform: t, Pointer: p, Modifiers: mods}
	switch t.Action {
	case ActionDrag:
		center := o.CenterPoint()
		next := ScenePoint{p.X - t.offsetX, p.Y - t.offsetY}
		if o.Locks.MovementX {
			next.X = center.X
		}
		if o.Locks.MovementY {
			next.Y = center.Y
		}
		if next == center {
			return
		}
		o.SetCenterPoint(next)
		t.changed = true
		c.handlers.objectMoving.fire(ctx)
	case ActionScale:
		t.Centered = c.centeredFor(mods)
		t.Uniform = c.uniformFor(o, t.Corner, mods)
		if !scaleToPointer(o, t, p) {
			return
		}
		t.changed = true
		c.handlers.objectScaling.fire(ctx)
	}
}

// scaleToPointer resizes o so its dragged handle follows p. The opposite
// handle (or the center) stays fixed. Reports whether anything changed.
func scaleToPointer(o *Object, t *Transform, p ScenePoint) bool {
	if o.Width == 0 || o.Height == 0 {
		return false
	}
	visual := t.Corner.flipped(o.FlipX, o.FlipY)
	sx, sy := visual.signs()
	anchor := o.visualPoint(visual.opposite())
	f := 1.0
	if t.Centered {
		anchor = o.CenterPoint()
		f = 0.5
	}
	vx, vy := rotateVector(p.X-anchor.X, p.Y-anchor.Y, -o.Angle)

	w, h := o.ScaledWidth(), o.ScaledHeight()
	if t.Uniform {
		if o.Locks.ScalingX || o.Locks.ScalingY {
			return false
		}
		base := math.Hypot(f*t.startW, f*t.startH)
		if base == 0 {
			return false
		}
		// Project the pointer onto the handle's diagonal so dragging inward
		// shrinks the object.
		proj := (vx*sx*t.startW + vy*sy*t.startH) * f / (base * base)
		k := math.Max(proj, minGestureSize/math.Min(t.startW, t.startH))
		w, h = t.startW*k, t.startH*k
	} else {
		if sx != 0 && !o.Locks.ScalingX {
			w = math.Max(vx*sx/f, minGestureSize)
		}
		if sy != 0 && !o.Locks.ScalingY {
			h = math.Max(vy*sy/f, minGestureSize)
		}
	}
	if w == o.ScaledWidth() && h == o.ScaledHeight() {
		return false
	}
	setScaledSize(o, w, h)
	if !t.Centered {
		// The dragged handle sits at anchor + R·(s·size); the center is
		// halfway along that vector.
		dx, dy := rotateVector(sx*w/2, sy*h/2, o.Angle)
		o.SetCenterPoint(anchor.Add(dx, dy))
	} else {
		o.SetCenterPoint(anchor)
	}
	return true
}

// setScaledSize sets the object's scaled size, through Width/Height for
// ResizeDimensions objects and through ScaleX/ScaleY otherwise. The caller
// re-anchors the object afterwards.
func setScaledSize(o *Object, w, h float64) {
	if o.ResizeDimensions {
		o.Width = w / math.Abs(o.ScaleX)
		o.Height = h / math.Abs(o.ScaleY)
		return
	}
	o.ScaleX = math.Copysign(w/o.Width, o.ScaleX)
	o.ScaleY = math.Copysign(h/o.Height, o.ScaleY)
}

// endTransform finishes the gesture, firing object-modified if the target
// changed.
func (c *Canvas) endTransform() {
	t := c.transform
	c.transform = nil
	if t != nil && t.changed && t.Target.canvas == c {
		c.fireObjectEvent(EventObjectModified, t.Target)
	}
}

// --- Input processing ---

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= ModMeta
	}
	return mods
}

// processInput is called from Canvas.Update to handle keyboard, wheel,
// mouse and touch input. Injected events take priority over real input.
func (c *Canvas) processInput() {
	mods := readModifiers()
	if c.processInjectedInput(mods) {
		return
	}

	c.keyBuf = inpututil.AppendJustPressedKeys(c.keyBuf[:0])
	for _, k := range c.keyBuf {
		c.dispatchKey(k, mods)
	}

	mx, my := ebiten.CursorPosition()
	cursor := ScreenPoint{float64(mx), float64(my)}
	if wx, wy := ebiten.Wheel(); wx != 0 || wy != 0 {
		c.processWheel(cursor, -wx, -wy, mods)
	}

	c.processMousePointer(cursor, mods)
	c.processTouchPointers(mods)
	c.detectPinch()
}

// processMousePointer handles mouse input (pointer 0).
func (c *Canvas) processMousePointer(p ScreenPoint, mods KeyModifiers) {
	var pressed bool
	var button MouseButton
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	middle := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	if left || right || middle {
		pressed = true
		switch {
		case left:
			button = MouseButtonLeft
		case right:
			button = MouseButtonRight
		default:
			button = MouseButtonMiddle
		}
	}
	c.processPointer(0, p, pressed, button, mods)
}

// processTouchPointers handles touch input (pointers 1-9).
func (c *Canvas) processTouchPointers(mods KeyModifiers) {
	touchIDs := ebiten.AppendTouchIDs(c.prevTouchIDs[:0])
	c.prevTouchIDs = touchIDs

	var activeSlots [maxPointers]bool
	for _, tid := range touchIDs {
		slot := c.touchSlot(tid)
		if slot < 0 {
			continue
		}
		activeSlots[slot] = true
		tx, ty := ebiten.TouchPosition(tid)
		c.processPointer(slot, ScreenPoint{float64(tx), float64(ty)}, true, MouseButtonLeft, mods)
	}

	for i := 1; i < maxPointers; i++ {
		if c.touchUsed[i] && !activeSlots[i] {
			ps := &c.pointers[i]
			if ps.down {
				c.processPointer(i, ps.last, false, MouseButtonLeft, mods)
			}
			c.touchUsed[i] = false
			c.touchMap[i] = 0
		}
	}
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9).
// Returns the existing slot or allocates a new one. Returns -1 if full.
func (c *Canvas) touchSlot(tid ebiten.TouchID) int {
	for i := 1; i < maxPointers; i++ {
		if c.touchUsed[i] && c.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !c.touchUsed[i] {
			c.touchUsed[i] = true
			c.touchMap[i] = tid
			return i
		}
	}
	return -1
}

// processPointer runs the pointer state machine for a single pointer.
func (c *Canvas) processPointer(pointerID int, p ScreenPoint, pressed bool, button MouseButton, mods KeyModifiers) {
	ps := &c.pointers[pointerID]
	scene := c.ScreenToScene(p)

	switch {
	case pressed && !ps.down:
		ps.down = true
		ps.button = button
		ps.last = p
		target := c.FindTarget(p)
		if button == MouseButtonLeft && !c.pinch.active {
			c.beginTransform(p, scene, target)
		}
		c.handlers.pointerDown.fire(c.pointerContext(pointerID, p, target, ps.button, mods))

	case !pressed && ps.down:
		ps.down = false
		ps.last = p
		c.endTransform()
		c.handlers.pointerUp.fire(c.pointerContext(pointerID, p, c.FindTarget(p), ps.button, mods))

	case pressed && ps.down:
		if p == ps.last {
			return
		}
		ps.last = p
		if c.transform != nil && !c.pinch.active {
			c.applyTransform(scene, mods)
		}
		c.handlers.pointerMove.fire(c.pointerContext(pointerID, p, c.FindTarget(p), ps.button, mods))

	default:
		if p == ps.last {
			return
		}
		ps.last = p
		c.handlers.pointerMove.fire(c.pointerContext(pointerID, p, c.FindTarget(p), button, mods))
	}
}

func (c *Canvas) pointerContext(pointerID int, p ScreenPoint, target *Object, button MouseButton, mods KeyModifiers) PointerContext {
	return PointerContext{
		Target:    target,
		Scene:     c.ScreenToScene(p),
		Screen:    p,
		Button:    button,
		PointerID: pointerID,
		Modifiers: mods,
		Transform: c.transform,
	}
}

// PointerDown reports whether pointer 0 (the mouse, or injected input) is
// currently pressed.
func (c *Canvas) PointerDown() bool {
	return c.pointers[0].down
}

// processWheel fires wheel handlers. dy > 0 scrolls down.
func (c *Canvas) processWheel(p ScreenPoint, dx, dy float64, mods KeyModifiers) {
	c.handlers.wheel.fire(WheelContext{
		Scene:     c.ScreenToScene(p),
		Screen:    p,
		DeltaX:    dx,
		DeltaY:    dy,
		Modifiers: mods,
	})
}

// --- Pinch detection ---

// detectPinch fires pinch handlers while exactly two touch pointers are down.
func (c *Canvas) detectPinch() {
	var pts [2]ScreenPoint
	count := 0
	for i := 1; i < maxPointers; i++ {
		if c.pointers[i].down {
			if count < 2 {
				pts[count] = c.pointers[i].last
			}
			count++
		}
	}
	if count != 2 {
		c.pinch.active = false
		return
	}
	c.updatePinch(pts[0], pts[1])
}

// updatePinch advances the pinch state for two touch positions.
func (c *Canvas) updatePinch(a, b ScreenPoint) {
	dist := a.Distance(b)
	center := ScreenPoint{(a.X + b.X) / 2, (a.Y + b.Y) / 2}
	if !c.pinch.active {
		c.pinch = pinchState{active: true, initialDist: dist, prevDist: dist}
		// A second finger turns any drag into a pinch.
		c.transform = nil
		return
	}
	if dist == c.pinch.prevDist {
		return
	}
	scale := 1.0
	if c.pinch.initialDist > 0 {
		scale = dist / c.pinch.initialDist
	}
	c.handlers.pinch.fire(PinchContext{
		Center:       center,
		Distance:     dist,
		PrevDistance: c.pinch.prevDist,
		Scale:        scale,
	})
	c.pinch.prevDist = dist
}

// --- Default key handling ---

// defaultKeyHandler removes the active object on Delete or Backspace. It
// runs after every bubble handler unless one stopped propagation.
func (c *Canvas) defaultKeyHandler(ctx *KeyContext) {
	switch ctx.Key {
	case ebiten.KeyDelete, ebiten.KeyBackspace:
		if c.active != nil && c.transform == nil {
			c.Remove(c.active)
		}
	}
}
