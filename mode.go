package trellis

// ModeOptions holds the settings every interaction mode shares.
type ModeOptions struct {
	// Snap configures cursor snapping. The mode adds the objects it is
	// drawing to Snap.Exclude.
	Snap CursorSnapOptions
	// Guides styles the cursor guidelines.
	Guides GuideStyle
	// Viewport, when set, lets the mode ignore presses that start a pan.
	// Create the viewport controller before the mode so its handlers run
	// first.
	Viewport *ViewportController
}

// modeBase carries the state shared by the interaction modes: the handles
// to remove on exit, the last snap result for guideline drawing and the
// canvas selection flag to restore.
type modeBase struct {
	canvas    *Canvas
	opts      ModeOptions
	name      string
	handles   []CallbackHandle
	snap      SnapResult
	showSnap  bool
	selection bool
	exited    bool
}

func (m *modeBase) start(c *Canvas, name string, opts ModeOptions) {
	if c == nil {
		panic("trellis: " + name + " requires a canvas")
	}
	m.canvas = c
	m.opts = opts
	m.name = name
	m.selection = c.Selection
	c.Selection = false
	c.DiscardActiveObject()
	c.CancelTransform()
	m.handles = append(m.handles, c.OnAfterRender(func(ctx RenderContext) {
		if m.showSnap && m.snap.Snapped() {
			DrawCursorGuidelines(ctx.Canvas, m.snap, m.opts.Guides)
		}
	}))
	Logger().Debug("mode started", "mode", name)
}

// ignore reports whether a press belongs to someone else: a non-primary
// button or a viewport pan.
func (m *modeBase) ignore(ctx PointerContext) bool {
	if ctx.Button != MouseButtonLeft {
		return true
	}
	return m.opts.Viewport != nil && m.opts.Viewport.Panning()
}

// snapPoint snaps raw and remembers the result for the guide overlay.
func (m *modeBase) snapPoint(raw ScenePoint, exclude ...*Object) ScenePoint {
	opts := m.opts.Snap
	if len(exclude) > 0 {
		opts.Exclude = append(append([]*Object(nil), opts.Exclude...), exclude...)
	}
	m.snap = SnapCursorPoint(m.canvas, raw, opts)
	m.showSnap = true
	return m.snap.Point
}

func (m *modeBase) hideSnap() {
	m.showSnap = false
}

// exit removes every handler and restores the selection flag. It reports
// false when the mode had already exited.
func (m *modeBase) exit() bool {
	if m.exited {
		return false
	}
	m.exited = true
	removeAll(m.handles)
	m.handles = nil
	m.showSnap = false
	m.canvas.Selection = m.selection
	Logger().Debug("mode exited", "mode", m.name)
	return true
}

// Active reports whether the mode is still running.
func (m *modeBase) Active() bool {
	return !m.exited
}
