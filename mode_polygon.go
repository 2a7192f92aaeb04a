package trellis

import "github.com/hajimehoshi/ebiten/v2"

// DefaultCloseRadius is how close, in screen pixels, a click must land to
// the first vertex to close a polygon.
const DefaultCloseRadius = 8.0

// PolygonDrawOptions configures StartPolygonDraw.
type PolygonDrawOptions struct {
	ModeOptions
	// Factory builds the finished object from its scene-space vertices.
	// Nil means NewPolygon.
	Factory func(points []ScenePoint) *Object
	// OnCreate runs after the polygon was added.
	OnCreate func(o *Object)
	// OnCancel runs when Escape discards the outline.
	OnCancel func()
	// CloseRadius is in screen pixels. Zero means DefaultCloseRadius.
	CloseRadius float64
	// Line styles the outline preview. A zero value uses Guides.Color.
	Line LineStyle
	// Once exits the mode after the first polygon.
	Once bool
}

// PolygonDrawMode builds a polygon one snapped click at a time. Clicking
// the first vertex or pressing Enter closes it; Backspace drops the last
// vertex; Escape discards the outline and exits.
type PolygonDrawMode struct {
	modeBase
	opts   PolygonDrawOptions
	points []ScenePoint
	cursor ScenePoint
	hover  bool
}

// StartPolygonDraw starts freehand polygon drawing on c.
func StartPolygonDraw(c *Canvas, opts PolygonDrawOptions) *PolygonDrawMode {
	if opts.Factory == nil {
		opts.Factory = NewPolygon
	}
	if opts.CloseRadius <= 0 {
		opts.CloseRadius = DefaultCloseRadius
	}
	if opts.Line.Width <= 0 {
		opts.Line.Width = 1
	}
	if opts.Line.Color == (Color{}) {
		opts.Line.Color = opts.Guides.withDefaults().Color
	}
	m := &PolygonDrawMode{opts: opts}
	m.start(c, "polygon-draw", opts.ModeOptions)
	m.handles = append(m.handles,
		c.OnPointerMove(m.onPointerMove),
		c.OnPointerDown(m.onPointerDown),
		c.OnKeyDownCapture(m.onKey),
		c.OnAfterRender(func(ctx RenderContext) { m.drawOutline(ctx.Layer) }),
	)
	return m
}

// Points returns the vertices placed so far.
func (m *PolygonDrawMode) Points() []ScenePoint {
	return m.points
}

// snapVertex snaps against the canvas and the outline's own vertices.
func (m *PolygonDrawMode) snapVertex(raw ScenePoint) ScenePoint {
	if len(m.points) == 0 || m.opts.Snap.TargetPoints != nil {
		return m.snapPoint(raw)
	}
	saved := m.modeBase.opts.Snap
	targets := CollectSnapTargets(m.canvas, saved.Exclude, saved.Registry)
	m.modeBase.opts.Snap.TargetPoints = append(targets, m.points...)
	p := m.snapPoint(raw)
	m.modeBase.opts.Snap = saved
	return p
}

func (m *PolygonDrawMode) onPointerMove(ctx PointerContext) {
	m.cursor = m.snapVertex(ctx.Scene)
	m.hover = true
}

func (m *PolygonDrawMode) onPointerDown(ctx PointerContext) {
	if m.ignore(ctx) {
		return
	}
	if len(m.points) >= 3 {
		first := m.canvas.SceneToScreen(m.points[0])
		if first.Distance(ctx.Screen) <= m.opts.CloseRadius {
			m.finish()
			return
		}
	}
	p := m.snapVertex(ctx.Scene)
	if n := len(m.points); n > 0 && m.points[n-1] == p {
		return
	}
	m.points = append(m.points, p)
	m.cursor = p
}

func (m *PolygonDrawMode) onKey(ctx *KeyContext) {
	switch ctx.Key {
	case ebiten.KeyEscape:
		ctx.StopPropagation()
		m.points = nil
		if m.opts.OnCancel != nil {
			m.opts.OnCancel()
		}
		m.Exit()
	case ebiten.KeyEnter:
		ctx.StopPropagation()
		m.finish()
	case ebiten.KeyBackspace, ebiten.KeyDelete:
		if len(m.points) > 0 {
			ctx.StopPropagation()
			m.points = m.points[:len(m.points)-1]
		}
	}
}

// finish adds the polygon if it has at least three vertices.
func (m *PolygonDrawMode) finish() {
	if len(m.points) < 3 {
		return
	}
	pts := m.points
	m.points = nil
	o := m.opts.Factory(pts)
	if o == nil {
		return
	}
	ApplyObjectDefaults(m.canvas, o)
	m.canvas.Add(o)
	if m.opts.OnCreate != nil {
		m.opts.OnCreate(o)
	}
	if m.opts.Once {
		m.Exit()
	}
}

// drawOutline draws the placed edges, the rubber-band edge to the cursor
// and a dot on each vertex.
func (m *PolygonDrawMode) drawOutline(layer GuideLayer) {
	if len(m.points) == 0 {
		return
	}
	c := m.canvas
	prev := c.SceneToScreen(m.points[0])
	for _, p := range m.points[1:] {
		s := c.SceneToScreen(p)
		layer.StrokeLine(prev, s, m.opts.Line)
		prev = s
	}
	if m.hover {
		band := m.opts.Line
		if len(band.Dash) == 0 {
			band.Dash = []float64{4, 4}
		}
		layer.StrokeLine(prev, c.SceneToScreen(m.cursor), band)
	}
	for _, p := range m.points {
		layer.Dot(c.SceneToScreen(p), 3, m.opts.Line.Color)
	}
}

// Exit stops the mode, discarding an unfinished outline.
func (m *PolygonDrawMode) Exit() {
	if m.exit() {
		m.points = nil
	}
}
