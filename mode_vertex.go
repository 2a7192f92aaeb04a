package trellis

import "github.com/hajimehoshi/ebiten/v2"

// DefaultVertexHandleRadius is the vertex handle radius in screen pixels.
const DefaultVertexHandleRadius = 5.0

// VertexEditOptions configures StartVertexEdit.
type VertexEditOptions struct {
	ModeOptions
	// HandleRadius is in screen pixels. Zero means
	// DefaultVertexHandleRadius.
	HandleRadius float64
	// HandleColor fills the vertex handles. A zero value uses Guides.Color.
	HandleColor Color
	// OnExit runs once when the mode ends.
	OnExit func()
}

// VertexEditMode lets the user drag the vertices of one polygon. The
// dragged vertex snaps to other objects; every other vertex stays fixed in
// scene space. Escape exits.
type VertexEditMode struct {
	modeBase
	opts     VertexEditOptions
	target   *Object
	dragging int
	pointer  int
	moved    bool
}

// StartVertexEdit starts editing the vertices of polygon o.
func StartVertexEdit(c *Canvas, o *Object, opts VertexEditOptions) *VertexEditMode {
	if o == nil || o.Kind != KindPolygon {
		panic("trellis: StartVertexEdit requires a polygon")
	}
	if opts.HandleRadius <= 0 {
		opts.HandleRadius = DefaultVertexHandleRadius
	}
	if opts.HandleColor == (Color{}) {
		opts.HandleColor = opts.Guides.withDefaults().Color
	}
	m := &VertexEditMode{opts: opts, target: o, dragging: -1}
	m.start(c, "vertex-edit", opts.ModeOptions)
	m.handles = append(m.handles,
		c.OnPointerDown(m.onPointerDown),
		c.OnPointerMove(m.onPointerMove),
		c.OnPointerUp(m.onPointerUp),
		c.OnKeyDownCapture(m.onKey),
		c.OnObjectRemoved(func(ctx ObjectContext) {
			if ctx.Object == m.target {
				m.Exit()
			}
		}),
		c.OnAfterRender(func(ctx RenderContext) { m.drawHandles(ctx.Layer) }),
	)
	return m
}

// Target returns the polygon being edited.
func (m *VertexEditMode) Target() *Object {
	return m.target
}

// vertexAt returns the index of the vertex handle under the screen point,
// or -1.
func (m *VertexEditMode) vertexAt(p ScreenPoint) int {
	o := m.target
	for i := len(o.Points) - 1; i >= 0; i-- {
		if m.canvas.SceneToScreen(o.VertexToScene(i)).Distance(p) <= m.opts.HandleRadius {
			return i
		}
	}
	return -1
}

func (m *VertexEditMode) onPointerDown(ctx PointerContext) {
	if m.ignore(ctx) || m.dragging >= 0 {
		return
	}
	i := m.vertexAt(ctx.Screen)
	if i < 0 {
		return
	}
	m.canvas.CancelTransform()
	m.dragging = i
	m.pointer = ctx.PointerID
	m.moved = false
}

func (m *VertexEditMode) onPointerMove(ctx PointerContext) {
	if m.dragging < 0 || ctx.PointerID != m.pointer {
		return
	}
	p := m.snapPoint(ctx.Scene, m.target)
	if m.target.VertexToScene(m.dragging) == p {
		return
	}
	m.target.SetVertex(m.dragging, p)
	m.moved = true
}

func (m *VertexEditMode) onPointerUp(ctx PointerContext) {
	if m.dragging < 0 || ctx.PointerID != m.pointer {
		return
	}
	m.dragging = -1
	m.hideSnap()
	if m.moved {
		m.canvas.NotifyModified(m.target)
	}
}

func (m *VertexEditMode) onKey(ctx *KeyContext) {
	if ctx.Key == ebiten.KeyEscape {
		ctx.StopPropagation()
		m.Exit()
	}
}

func (m *VertexEditMode) drawHandles(layer GuideLayer) {
	o := m.target
	for i := range o.Points {
		at := m.canvas.SceneToScreen(o.VertexToScene(i))
		r := m.opts.HandleRadius
		if i == m.dragging {
			r *= 1.4
		}
		layer.Dot(at, r, m.opts.HandleColor)
	}
}

// Exit stops editing. A drag in progress keeps the changes made so far.
func (m *VertexEditMode) Exit() {
	dragging := m.dragging >= 0 && m.moved
	if !m.exit() {
		return
	}
	m.dragging = -1
	if dragging && m.target.canvas == m.canvas {
		m.canvas.NotifyModified(m.target)
	}
	if m.opts.OnExit != nil {
		m.opts.OnExit()
	}
}
