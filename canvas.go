package trellis

import (
	"fmt"
	"math"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
)

// EntityStore is the interface for optional ECS integration.
// When set on a Canvas, object lifecycle events are forwarded to it.
type EntityStore interface {
	EmitEvent(event ObjectEvent)
}

// ObjectEvent carries object lifecycle data for the ECS bridge.
type ObjectEvent struct {
	Type     EventType
	Handle   uint32
	DataType string
	DataID   string
	Center   ScenePoint
	Width    float64
	Height   float64
	Angle    float64
}

// FrameHandle identifies a pending RequestFrame callback.
type FrameHandle uint32

type frameRequest struct {
	id FrameHandle
	fn func(dt float64)
}

// Canvas owns the object list, the viewport transform, selection, input
// state and the guide overlay. It is single-threaded: every method must be
// called from the goroutine running the ebiten game loop (or the test).
type Canvas struct {
	width, height float64
	objects       []*Object
	vpt           Matrix
	handlers      handlerRegistry
	store         EntityStore
	debug         bool
	disposed      bool

	// Selection and gestures
	active *Object
	// Selection enables click selection and, for consumers such as the
	// viewport controller, multi-object selection gestures.
	Selection bool
	// UniformScaling is the default for corner-handle scaling; holding
	// UniScaleKey inverts it for the current gesture.
	UniformScaling bool
	UniScaleKey    KeyModifiers
	// CenteredScaling scales around the center instead of the opposite
	// handle; holding CenteredKey inverts it.
	CenteredScaling bool
	CenteredKey     KeyModifiers
	// ControlStyle is applied to objects by ApplyObjectDefaults.
	ControlStyle ControlStyle
	transform    *Transform

	// Canvas-level state persisted with the scene.
	background    *backgroundImage
	LockLightMode bool
	// BackgroundColor follows the UI theme. It is never persisted.
	BackgroundColor string

	// Features that keep shadow state the serializer must undo.
	strokes *ScaledStrokes
	radii   *VisualRadius

	// Scheduler
	frames      []frameRequest
	nextFrameID FrameHandle

	// Overlay and image sources
	top      GuideLayer
	topImage *ebiten.Image
	images   map[string]*ebiten.Image

	// Input state
	pointers     [maxPointers]pointerState
	touchMap     [maxPointers]ebiten.TouchID
	touchUsed    [maxPointers]bool
	prevTouchIDs []ebiten.TouchID
	pinch        pinchState
	keyBuf       []ebiten.Key
	injectQueue  []syntheticEvent

	// Scripted sessions and screenshots
	session         *SessionRunner
	screenshotQueue []string
	// ScreenshotDir is where Screenshot writes PNG files.
	ScreenshotDir string
}

// NewCanvas creates an empty canvas of the given size in pixels with an
// identity viewport.
func NewCanvas(width, height float64) *Canvas {
	return &Canvas{
		width:          width,
		height:         height,
		vpt:            IdentityMatrix,
		Selection:      true,
		UniformScaling: true,
		UniScaleKey:    ModShift,
		CenteredKey:    ModAlt,
		ControlStyle:   DefaultControlStyle,
		ScreenshotDir:  "screenshots",
	}
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() float64 { return c.width }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() float64 { return c.height }

// SetDimensions resizes the canvas. The overlay image is recreated lazily.
func (c *Canvas) SetDimensions(width, height float64) {
	c.width, c.height = width, height
	if c.topImage != nil {
		c.topImage.Deallocate()
		c.topImage = nil
		c.top = nil
	}
}

// --- Objects ---

// Add appends objects to the canvas, top-most last, and fires object-added
// for each. Panics if an object already belongs to another canvas.
func (c *Canvas) Add(objs ...*Object) {
	for _, o := range objs {
		if o == nil {
			panic("trellis: cannot add nil object")
		}
		if o.canvas == c {
			if c.debug {
				_, _ = fmt.Fprintf(os.Stderr, "[trellis] warning: object %d added twice\n", o.Handle)
			}
			continue
		}
		if o.canvas != nil {
			panic("trellis: object belongs to another canvas")
		}
		o.canvas = c
		c.objects = append(c.objects, o)
		c.fireObjectEvent(EventObjectAdded, o)
	}
	c.debugCheckObjectCount()
}

// Remove detaches objects from the canvas and fires object-removed for each.
// Objects not on this canvas are ignored.
func (c *Canvas) Remove(objs ...*Object) {
	for _, o := range objs {
		if o == nil || o.canvas != c {
			continue
		}
		for i, x := range c.objects {
			if x == o {
				copy(c.objects[i:], c.objects[i+1:])
				c.objects[len(c.objects)-1] = nil
				c.objects = c.objects[:len(c.objects)-1]
				break
			}
		}
		if c.active == o {
			c.active = nil
		}
		if c.transform != nil && c.transform.Target == o {
			c.transform = nil
		}
		o.canvas = nil
		c.fireObjectEvent(EventObjectRemoved, o)
	}
}

// Clear removes every object and the background image.
func (c *Canvas) Clear() {
	objs := make([]*Object, len(c.objects))
	copy(objs, c.objects)
	c.Remove(objs...)
	c.RemoveBackgroundImage()
}

// Objects returns the object list in paint order. The returned slice MUST
// NOT be mutated.
func (c *Canvas) Objects() []*Object {
	return c.objects
}

// VisibleObjects returns the objects with Visible set, in paint order.
func (c *Canvas) VisibleObjects() []*Object {
	out := make([]*Object, 0, len(c.objects))
	for _, o := range c.objects {
		if o.Visible {
			out = append(out, o)
		}
	}
	return out
}

// NotifyModified fires object-modified for o. Call it after changing an
// object programmatically so history and other listeners see the change.
func (c *Canvas) NotifyModified(o *Object) {
	c.fireObjectEvent(EventObjectModified, o)
}

// --- Viewport ---

// ViewportTransform returns the scene-to-screen matrix.
func (c *Canvas) ViewportTransform() Matrix {
	return c.vpt
}

// SetViewportTransform replaces the scene-to-screen matrix. Panics if m is
// not invertible: every coordinate conversion depends on the inverse.
func (c *Canvas) SetViewportTransform(m Matrix) {
	if !m.Invertible() {
		panic("trellis: viewport transform must be invertible")
	}
	if m == c.vpt {
		return
	}
	c.vpt = m
	c.handlers.viewportChanged.fire(m)
}

// Zoom returns the current zoom factor (the matrix's a component).
func (c *Canvas) Zoom() float64 {
	return c.vpt[0]
}

// ZoomToPoint sets the zoom to z while keeping the scene point under the
// screen point p fixed.
func (c *Canvas) ZoomToPoint(p ScreenPoint, z float64) {
	before := c.ScreenToScene(p)
	m := c.vpt
	m[0], m[3] = z, z
	m[1], m[2] = 0, 0
	ax, ay := m.Apply(before.X, before.Y)
	m[4] += p.X - ax
	m[5] += p.Y - ay
	c.SetViewportTransform(m)
}

// SetZoom zooms around the canvas center.
func (c *Canvas) SetZoom(z float64) {
	c.ZoomToPoint(ScreenPoint{c.width / 2, c.height / 2}, z)
}

// RelativePan shifts the viewport by a screen-space delta.
func (c *Canvas) RelativePan(dx, dy float64) {
	m := c.vpt
	m[4] += dx
	m[5] += dy
	c.SetViewportTransform(m)
}

// AbsolutePan places the viewport so screen offset (x, y) is the pan.
func (c *Canvas) AbsolutePan(x, y float64) {
	m := c.vpt
	m[4], m[5] = x, y
	c.SetViewportTransform(m)
}

// SceneToScreen converts a scene point to canvas pixels.
func (c *Canvas) SceneToScreen(p ScenePoint) ScreenPoint {
	x, y := c.vpt.Apply(p.X, p.Y)
	return ScreenPoint{x, y}
}

// ScreenToScene converts canvas pixels to a scene point.
func (c *Canvas) ScreenToScene(p ScreenPoint) ScenePoint {
	x, y := c.vpt.Invert().Apply(p.X, p.Y)
	return ScenePoint{x, y}
}

// VisibleBounds returns the scene-space rectangle covered by the canvas.
func (c *Canvas) VisibleBounds() Rect {
	return boundsOf(
		c.ScreenToScene(ScreenPoint{0, 0}),
		c.ScreenToScene(ScreenPoint{c.width, 0}),
		c.ScreenToScene(ScreenPoint{c.width, c.height}),
		c.ScreenToScene(ScreenPoint{0, c.height}),
	)
}

// --- Hit testing & selection ---

// FindTarget returns the topmost visible, evented object containing the
// screen point, or nil.
func (c *Canvas) FindTarget(p ScreenPoint) *Object {
	sp := c.ScreenToScene(p)
	for i := len(c.objects) - 1; i >= 0; i-- {
		o := c.objects[i]
		if !o.Visible || !o.Evented {
			continue
		}
		if objectContains(o, sp) {
			return o
		}
	}
	return nil
}

// objectContains tests a scene point against the object's rotated box, or
// its outline for polygons.
func objectContains(o *Object, p ScenePoint) bool {
	if o.Kind == KindPolygon && len(o.Points) >= 3 {
		return polygonContains(o, p)
	}
	l := o.SceneToLocal(p)
	hw, hh := o.Width/2, o.Height/2
	return l.X >= -hw && l.X <= hw && l.Y >= -hh && l.Y <= hh
}

// polygonContains is an even-odd ray cast in vertex space, so concave
// outlines hit-test correctly.
func polygonContains(o *Object, p ScenePoint) bool {
	v := o.SceneToVertex(p)
	in := false
	n := len(o.Points)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := o.Points[i], o.Points[j]
		if (a.Y > v.Y) != (b.Y > v.Y) &&
			v.X < (b.X-a.X)*(v.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}

// findControl returns the handle of the active object under the screen
// point, or ControlNone.
func (c *Canvas) findControl(p ScreenPoint) Control {
	o := c.active
	if o == nil || !o.HasControls {
		return ControlNone
	}
	size := o.Controls.CornerSize
	if size <= 0 {
		size = DefaultControlStyle.CornerSize
	}
	for _, ctl := range allControls {
		if !o.controlVisible(ctl) {
			continue
		}
		at := c.SceneToScreen(o.ControlPosition(ctl))
		if math.Abs(at.X-p.X) <= size/2 && math.Abs(at.Y-p.Y) <= size/2 {
			return ctl
		}
	}
	return ControlNone
}

// SetActiveObject selects o. Objects that are not selectable are ignored.
func (c *Canvas) SetActiveObject(o *Object) {
	if o != nil && (o.canvas != c || !o.Selectable) {
		return
	}
	c.active = o
}

// ActiveObject returns the selected object, or nil.
func (c *Canvas) ActiveObject() *Object {
	return c.active
}

// DiscardActiveObject clears the selection.
func (c *Canvas) DiscardActiveObject() {
	c.active = nil
}

// --- Scheduler ---

// RequestFrame schedules fn to run once on the next Advance. Callbacks that
// want to keep animating request another frame from inside fn.
func (c *Canvas) RequestFrame(fn func(dt float64)) FrameHandle {
	c.nextFrameID++
	c.frames = append(c.frames, frameRequest{id: c.nextFrameID, fn: fn})
	return c.nextFrameID
}

// CancelFrame drops a pending RequestFrame callback.
func (c *Canvas) CancelFrame(h FrameHandle) {
	for i, f := range c.frames {
		if f.id == h {
			c.frames = append(c.frames[:i:i], c.frames[i+1:]...)
			return
		}
	}
}

// Advance runs pending frame callbacks and frame handlers once. dt is the
// elapsed time in seconds.
func (c *Canvas) Advance(dt float64) {
	pending := c.frames
	c.frames = nil
	for _, f := range pending {
		f.fn(dt)
	}
	c.handlers.frame.fire(FrameContext{DT: dt})
}

// Update advances a scripted session, processes input, then runs Advance.
// Call it from ebiten.Game.Update.
func (c *Canvas) Update() {
	if c.disposed {
		return
	}
	if c.session != nil {
		c.session.step(c)
	}
	c.processInput()
	c.Advance(1.0 / float64(ebiten.TPS()))
}

// --- Lifecycle ---

// Dispose releases the overlay image and marks the canvas unusable.
// Components attached to the canvas should be disposed first.
func (c *Canvas) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	c.frames = nil
	if c.topImage != nil {
		c.topImage.Deallocate()
		c.topImage = nil
	}
	c.top = nil
}

// Disposed reports whether Dispose was called.
func (c *Canvas) Disposed() bool {
	return c.disposed
}

// SetEntityStore sets the optional ECS bridge.
func (c *Canvas) SetEntityStore(store EntityStore) {
	c.store = store
}

// SetDebugMode enables or disables debug mode. When enabled, misuse
// warnings and per-frame draw timings are printed to stderr.
func (c *Canvas) SetDebugMode(enabled bool) {
	c.debug = enabled
}

// emitStoreEvent forwards an object lifecycle event to the ECS bridge.
func (c *Canvas) emitStoreEvent(event EventType, o *Object) {
	if c.store == nil {
		return
	}
	c.store.EmitEvent(ObjectEvent{
		Type:     event,
		Handle:   o.Handle,
		DataType: o.Data.Type,
		DataID:   o.Data.ID,
		Center:   o.CenterPoint(),
		Width:    o.ScaledWidth(),
		Height:   o.ScaledHeight(),
		Angle:    o.Angle,
	})
}
