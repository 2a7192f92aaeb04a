package trellis

import (
	"math"
	"time"

	"github.com/tanema/gween/ease"
)

// Viewport defaults.
const (
	DefaultMinZoom    = 0.1
	DefaultMaxZoom    = 10.0
	DefaultZoomFactor = 1.1
)

// ViewportMode is the pointer mode of a ViewportController.
type ViewportMode uint8

const (
	ModeSelect ViewportMode = iota // objects are interactive; pan needs a trigger
	ModePan                        // every primary drag pans; objects are inert
)

// String returns "select" or "pan".
func (m ViewportMode) String() string {
	if m == ModePan {
		return "pan"
	}
	return "select"
}

// ViewportOptions configures NewViewportController. Zero fields take the
// package defaults.
type ViewportOptions struct {
	MinZoom     float64
	MaxZoom     float64
	ZoomFactor  float64
	InitialMode ViewportMode
	// PanModifier held during a press starts a pan in select mode.
	// Zero means ModAlt.
	PanModifier KeyModifiers
	// NoEmptySpacePan stops presses on empty canvas from panning in select
	// mode, for tools that click on empty space.
	NoEmptySpacePan bool
}

func (o ViewportOptions) withDefaults() ViewportOptions {
	if o.MinZoom <= 0 {
		o.MinZoom = DefaultMinZoom
	}
	if o.MaxZoom <= 0 {
		o.MaxZoom = DefaultMaxZoom
	}
	if o.MaxZoom < o.MinZoom {
		o.MinZoom, o.MaxZoom = o.MaxZoom, o.MinZoom
	}
	if o.ZoomFactor <= 1 {
		o.ZoomFactor = DefaultZoomFactor
	}
	if o.PanModifier == 0 {
		o.PanModifier = ModAlt
	}
	return o
}

// PanOptions configures PanToObject.
type PanOptions struct {
	Animate bool
	// Duration of the animation. Zero means DefaultPanDuration.
	Duration time.Duration
	// Ease is the interpolation curve. Nil means ease.OutCubic.
	Ease ease.TweenFunc
}

type interactivity struct {
	selectable, evented bool
}

// ViewportController turns wheel, drag and pinch input into pan and zoom,
// and animates panning to objects.
type ViewportController struct {
	canvas  *Canvas
	opts    ViewportOptions
	mode    ViewportMode
	enabled bool

	panning    bool
	panPointer int
	lastPan    ScreenPoint
	// selection holds Canvas.Selection from before a temporary pan.
	selection bool

	saved   map[*Object]interactivity
	anim    *panAnimation
	handles []CallbackHandle
}

// NewViewportController attaches a pan/zoom controller to c.
func NewViewportController(c *Canvas, opts ViewportOptions) *ViewportController {
	if c == nil {
		panic("trellis: NewViewportController requires a canvas")
	}
	v := &ViewportController{
		canvas:  c,
		opts:    opts.withDefaults(),
		enabled: true,
		saved:   make(map[*Object]interactivity),
	}
	v.handles = []CallbackHandle{
		c.OnWheel(v.onWheel),
		c.OnPointerDown(v.onPointerDown),
		c.OnPointerMove(v.onPointerMove),
		c.OnPointerUp(v.onPointerUp),
		c.OnPinch(v.onPinch),
		c.OnObjectAdded(v.onObjectAdded),
		c.OnObjectRemoved(func(ctx ObjectContext) { delete(v.saved, ctx.Object) }),
	}
	v.SetMode(v.opts.InitialMode)
	return v
}

// Mode returns the current pointer mode.
func (v *ViewportController) Mode() ViewportMode {
	return v.mode
}

// SetMode switches between select and pan. Entering pan mode makes every
// object inert and discards the selection; returning to select restores
// each object's previous flags.
func (v *ViewportController) SetMode(m ViewportMode) {
	if m == v.mode {
		return
	}
	c := v.canvas
	v.mode = m
	if m == ModePan {
		c.DiscardActiveObject()
		c.CancelTransform()
		c.Selection = false
		for _, o := range c.objects {
			v.disable(o)
		}
	} else {
		for o, s := range v.saved {
			o.Selectable, o.Evented = s.selectable, s.evented
		}
		clear(v.saved)
		c.Selection = true
	}
	Logger().Debug("viewport mode changed", "mode", m.String())
}

func (v *ViewportController) disable(o *Object) {
	if _, ok := v.saved[o]; ok {
		return
	}
	v.saved[o] = interactivity{o.Selectable, o.Evented}
	o.Selectable, o.Evented = false, false
}

func (v *ViewportController) onObjectAdded(ctx ObjectContext) {
	if v.mode == ModePan {
		v.disable(ctx.Object)
	}
}

// SetEnabled turns all input handling on or off. Programmatic pan and zoom
// keep working while disabled.
func (v *ViewportController) SetEnabled(enabled bool) {
	v.enabled = enabled
	if !enabled {
		v.stopPan()
	}
}

// Enabled reports whether input handling is on.
func (v *ViewportController) Enabled() bool {
	return v.enabled
}

func (v *ViewportController) clamp(z float64) float64 {
	return math.Max(v.opts.MinZoom, math.Min(v.opts.MaxZoom, z))
}

func (v *ViewportController) center() ScreenPoint {
	return ScreenPoint{v.canvas.width / 2, v.canvas.height / 2}
}

// ZoomIn zooms in one step around the canvas center.
func (v *ViewportController) ZoomIn() {
	v.canvas.ZoomToPoint(v.center(), v.clamp(v.canvas.Zoom()*v.opts.ZoomFactor))
}

// ZoomOut zooms out one step around the canvas center.
func (v *ViewportController) ZoomOut() {
	v.canvas.ZoomToPoint(v.center(), v.clamp(v.canvas.Zoom()/v.opts.ZoomFactor))
}

// ResetView cancels any animation and restores the identity viewport.
func (v *ViewportController) ResetView() {
	v.cancelAnimation()
	v.canvas.SetViewportTransform(IdentityMatrix)
}

// --- Input ---

func (v *ViewportController) onWheel(ctx WheelContext) {
	if !v.enabled || ctx.DeltaY == 0 {
		return
	}
	z := v.canvas.Zoom()
	if ctx.DeltaY < 0 {
		z *= v.opts.ZoomFactor
	} else {
		z /= v.opts.ZoomFactor
	}
	v.canvas.ZoomToPoint(ctx.Screen, v.clamp(z))
}

func (v *ViewportController) onPointerDown(ctx PointerContext) {
	if !v.enabled || v.panning {
		return
	}
	var start bool
	switch {
	case v.mode == ModePan:
		start = true
	case ctx.Button == MouseButtonMiddle:
		start = true
	case ctx.Modifiers.Has(v.opts.PanModifier):
		start = true
	case ctx.Button == MouseButtonLeft && ctx.Target == nil && !v.opts.NoEmptySpacePan:
		// Interaction modes turn Selection off and own empty-space clicks.
		start = ctx.Transform == nil && v.canvas.Selection
	}
	if !start {
		return
	}
	c := v.canvas
	v.cancelAnimation()
	c.CancelTransform()
	v.panning = true
	v.panPointer = ctx.PointerID
	v.lastPan = ctx.Screen
	v.selection = c.Selection
	c.Selection = false
}

func (v *ViewportController) onPointerMove(ctx PointerContext) {
	if !v.panning || ctx.PointerID != v.panPointer {
		return
	}
	dx, dy := ctx.Screen.X-v.lastPan.X, ctx.Screen.Y-v.lastPan.Y
	v.lastPan = ctx.Screen
	if dx != 0 || dy != 0 {
		v.canvas.RelativePan(dx, dy)
	}
}

func (v *ViewportController) onPointerUp(ctx PointerContext) {
	if v.panning && ctx.PointerID == v.panPointer {
		v.stopPan()
	}
}

func (v *ViewportController) stopPan() {
	if !v.panning {
		return
	}
	v.panning = false
	if v.mode == ModeSelect {
		v.canvas.Selection = v.selection
	}
}

// Panning reports whether a drag pan is in progress.
func (v *ViewportController) Panning() bool {
	return v.panning
}

func (v *ViewportController) onPinch(ctx PinchContext) {
	if !v.enabled || ctx.PrevDistance <= 0 {
		return
	}
	v.stopPan()
	ratio := ctx.Distance / ctx.PrevDistance
	v.canvas.ZoomToPoint(ctx.Center, v.clamp(v.canvas.Zoom()*ratio))
}

// --- Programmatic navigation ---

// PanToObject pans so o's center sits in the middle of the canvas. With
// Animate set the pan is tweened over the canvas scheduler, replacing any
// animation already in flight.
func (v *ViewportController) PanToObject(o *Object, opts PanOptions) {
	if o == nil {
		return
	}
	c := v.canvas
	v.cancelAnimation()
	at := c.SceneToScreen(o.CenterPoint())
	mid := v.center()
	from := ScreenPoint{c.vpt[4], c.vpt[5]}
	to := ScreenPoint{from.X + mid.X - at.X, from.Y + mid.Y - at.Y}
	if !opts.Animate {
		c.AbsolutePan(to.X, to.Y)
		return
	}
	d := opts.Duration
	if d <= 0 {
		d = DefaultPanDuration
	}
	anim := newPanAnimation(from, to, d, opts.Ease)
	v.anim = anim
	var tick func(dt float64)
	tick = func(dt float64) {
		p, done := anim.step(dt, ScreenPoint{c.vpt[4], c.vpt[5]})
		if done {
			c.AbsolutePan(to.X, to.Y)
			v.anim = nil
			return
		}
		c.AbsolutePan(p.X, p.Y)
		anim.frame = c.RequestFrame(tick)
	}
	anim.frame = c.RequestFrame(tick)
}

// ZoomToFit zooms so o's scaled bounding box fits the canvas minus padding
// (a fraction of each dimension, e.g. 0.1) and centers it. Objects with no
// area are ignored.
func (v *ViewportController) ZoomToFit(o *Object, padding float64) {
	if o == nil {
		return
	}
	b := o.BoundingRect()
	if b.Width <= 0 || b.Height <= 0 {
		return
	}
	padding = math.Max(0, math.Min(padding, 0.99))
	c := v.canvas
	z := math.Min(c.width*(1-padding)/b.Width, c.height*(1-padding)/b.Height)
	z = v.clamp(z)
	v.cancelAnimation()
	cx, cy := b.X+b.Width/2, b.Y+b.Height/2
	c.SetViewportTransform(Matrix{z, 0, 0, z, c.width/2 - z*cx, c.height/2 - z*cy})
}

// Animating reports whether a pan animation is in flight.
func (v *ViewportController) Animating() bool {
	return v.anim != nil
}

func (v *ViewportController) cancelAnimation() {
	if v.anim != nil {
		v.canvas.CancelFrame(v.anim.frame)
		v.anim = nil
	}
}

// Dispose cancels animation, restores select mode and detaches from the
// canvas.
func (v *ViewportController) Dispose() {
	v.cancelAnimation()
	v.stopPan()
	v.SetMode(ModeSelect)
	removeAll(v.handles)
	v.handles = nil
}
