package trellis

import "math"

// DefaultMinDragSize is the smallest box, in screen pixels, that a drag
// creates. Smaller drags are treated as clicks and discarded.
const DefaultMinDragSize = 3.0

// DragCreateOptions configures StartDragCreate.
type DragCreateOptions struct {
	ModeOptions
	// Factory builds the object sized by the drag. Required.
	Factory func() *Object
	// OnCreate runs once the drag finished and the object was kept.
	OnCreate func(o *Object)
	// MinSize is the minimum box side in screen pixels. Zero means
	// DefaultMinDragSize.
	MinSize float64
	// Once exits the mode after the first object.
	Once bool
}

// DragCreateMode creates an object spanning the box between the snapped
// press and release points. Circles keep a square box.
type DragCreateMode struct {
	modeBase
	opts    DragCreateOptions
	origin  ScenePoint
	preview *Object
	pointer int
}

// StartDragCreate starts drag-to-create on c.
func StartDragCreate(c *Canvas, opts DragCreateOptions) *DragCreateMode {
	if opts.Factory == nil {
		panic("trellis: StartDragCreate requires a factory")
	}
	if opts.MinSize <= 0 {
		opts.MinSize = DefaultMinDragSize
	}
	m := &DragCreateMode{opts: opts}
	m.start(c, "drag-create", opts.ModeOptions)
	m.handles = append(m.handles,
		c.OnPointerDown(m.onPointerDown),
		c.OnPointerMove(m.onPointerMove),
		c.OnPointerUp(m.onPointerUp),
	)
	return m
}

func (m *DragCreateMode) onPointerDown(ctx PointerContext) {
	if m.ignore(ctx) || m.preview != nil {
		return
	}
	o := m.opts.Factory()
	if o == nil {
		return
	}
	ApplyObjectDefaults(m.canvas, o)
	m.origin = m.snapPoint(ctx.Scene)
	m.preview = o
	m.pointer = ctx.PointerID
	m.resize(m.origin)
	m.canvas.Add(o)
}

func (m *DragCreateMode) onPointerMove(ctx PointerContext) {
	if m.preview == nil {
		m.snapPoint(ctx.Scene)
		return
	}
	if ctx.PointerID != m.pointer {
		return
	}
	m.resize(m.snapPoint(ctx.Scene, m.preview))
}

func (m *DragCreateMode) onPointerUp(ctx PointerContext) {
	o := m.preview
	if o == nil || ctx.PointerID != m.pointer {
		return
	}
	m.resize(m.snapPoint(ctx.Scene, o))
	m.preview = nil
	m.hideSnap()
	minSide := m.opts.MinSize / m.canvas.Zoom()
	if o.ScaledWidth() < minSide || o.ScaledHeight() < minSide {
		m.canvas.Remove(o)
		return
	}
	m.canvas.NotifyModified(o)
	if m.opts.OnCreate != nil {
		m.opts.OnCreate(o)
	}
	if m.opts.Once {
		m.Exit()
	}
}

// resize fits the preview to the box between the press point and p.
func (m *DragCreateMode) resize(p ScenePoint) {
	o := m.preview
	w, h := math.Abs(p.X-m.origin.X), math.Abs(p.Y-m.origin.Y)
	cx, cy := (p.X+m.origin.X)/2, (p.Y+m.origin.Y)/2
	if o.IsCircle() {
		side := math.Max(w, h)
		w, h = side, side
		cx = m.origin.X + math.Copysign(side/2, p.X-m.origin.X)
		cy = m.origin.Y + math.Copysign(side/2, p.Y-m.origin.Y)
	}
	o.Angle = 0
	o.ScaleX, o.ScaleY = 1, 1
	o.Width, o.Height = math.Max(w, minGestureSize), math.Max(h, minGestureSize)
	if o.IsCircle() {
		o.RX, o.RY = o.Width/2, o.Height/2
	}
	o.SetCenterPoint(ScenePoint{cx, cy})
}

// Exit stops the mode. A drag in progress is discarded.
func (m *DragCreateMode) Exit() {
	if !m.exit() {
		return
	}
	if m.preview != nil {
		m.canvas.Remove(m.preview)
		m.preview = nil
	}
}
