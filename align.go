package trellis

import "math"

// Alignment defaults, in screen pixels.
const (
	DefaultAlignmentMargin = 4.0
	DefaultAlignmentWidth  = 1.0
	DefaultAlignmentXSize  = 2.4
)

// snapEpsilon absorbs float noise when comparing snap deltas.
const snapEpsilon = 1e-9

// AlignmentOptions configures NewAlignmentGuides.
type AlignmentOptions struct {
	// Margin is the snapping distance in screen pixels. Zero means
	// DefaultAlignmentMargin.
	Margin float64
	// Width is the guideline stroke width in screen pixels.
	Width float64
	// Color of lines and markers. Zero means DefaultGuideStyle.Color.
	Color Color
	// XSize is the arm length of the "x" end markers in screen pixels.
	XSize float64
	// LineDash, when set, dashes the guidelines.
	LineDash []float64
	// ScaleWithCanvasSize multiplies the margin by max(width, height)/1000.
	ScaleWithCanvasSize bool
}

func (o AlignmentOptions) withDefaults() AlignmentOptions {
	if o.Margin <= 0 {
		o.Margin = DefaultAlignmentMargin
	}
	if o.Width <= 0 {
		o.Width = DefaultAlignmentWidth
	}
	if o.XSize <= 0 {
		o.XSize = DefaultAlignmentXSize
	}
	if o.Color == (Color{}) {
		o.Color = DefaultGuideStyle.Color
	}
	return o
}

// AlignmentLine pairs a point of the transformed object (Origin, taken
// before the snap) with the point it aligned to (Target). Both are scene
// space. Vertical lines share Target.X, horizontal lines share Target.Y.
type AlignmentLine struct {
	Origin ScenePoint
	Target ScenePoint
}

// lineSet is a de-duplicated, insertion-ordered set of lines.
type lineSet struct {
	seen  map[AlignmentLine]struct{}
	order []AlignmentLine
}

func (s *lineSet) add(l AlignmentLine) {
	if s.seen == nil {
		s.seen = make(map[AlignmentLine]struct{})
	}
	if _, ok := s.seen[l]; ok {
		return
	}
	s.seen[l] = struct{}{}
	s.order = append(s.order, l)
}

func (s *lineSet) reset() {
	clear(s.seen)
	s.order = s.order[:0]
}

func (s *lineSet) lines() []AlignmentLine {
	out := make([]AlignmentLine, len(s.order))
	copy(out, s.order)
	return out
}

// AlignmentGuides snaps objects to each other while they are moved or
// scaled with the canvas's built-in gestures, and draws the matching
// guidelines on the guide layer. It stays attached until Dispose.
type AlignmentGuides struct {
	canvas      *Canvas
	opts        AlignmentOptions
	registry    *SnapPointRegistry
	cache       *snapPointCache
	vertical    lineSet
	horizontal  lineSet
	markersOnly bool
	handles     []CallbackHandle
}

// NewAlignmentGuides attaches an alignment engine to c.
func NewAlignmentGuides(c *Canvas, opts AlignmentOptions) *AlignmentGuides {
	if c == nil {
		panic("trellis: NewAlignmentGuides requires a canvas")
	}
	reg := NewSnapPointRegistry()
	g := &AlignmentGuides{
		canvas:   c,
		opts:     opts.withDefaults(),
		registry: reg,
		cache:    newSnapPointCache(reg),
	}
	g.handles = []CallbackHandle{
		c.OnObjectMoving(g.onMoving),
		c.OnObjectScaling(g.onScaling),
		c.OnBeforeRender(func(rc RenderContext) { rc.Layer.Clear() }),
		c.OnAfterRender(func(rc RenderContext) { g.render(rc.Layer) }),
		c.OnPointerUp(func(PointerContext) { g.endGesture() }),
		c.OnObjectRemoved(func(ctx ObjectContext) { g.cache.forget(ctx.Object) }),
	}
	return g
}

// Register adds a snap point extractor that takes precedence over the
// built-in ones and every earlier registration.
func (g *AlignmentGuides) Register(match SnapPredicate, extract SnapExtractor) {
	g.registry.Register(match, extract)
	g.cache.clear()
}

// Registry returns the engine's snap point registry.
func (g *AlignmentGuides) Registry() *SnapPointRegistry {
	return g.registry
}

// Lines returns the current vertical and horizontal alignment lines.
func (g *AlignmentGuides) Lines() (vertical, horizontal []AlignmentLine) {
	return g.vertical.lines(), g.horizontal.lines()
}

// MarkersOnly reports whether the current gesture draws target markers
// without connecting lines.
func (g *AlignmentGuides) MarkersOnly() bool {
	return g.markersOnly
}

// Dispose detaches the engine from its canvas.
func (g *AlignmentGuides) Dispose() {
	removeAll(g.handles)
	g.handles = nil
	g.resetLines()
	g.cache.clear()
}

func (g *AlignmentGuides) resetLines() {
	g.vertical.reset()
	g.horizontal.reset()
}

// endGesture drops the lines and the cache at pointer-up so the next
// gesture extracts fresh points.
func (g *AlignmentGuides) endGesture() {
	g.resetLines()
	g.markersOnly = false
	g.cache.clear()
}

func (g *AlignmentGuides) margin() float64 {
	return sceneMargin(g.canvas, g.opts.Margin, g.opts.ScaleWithCanvasSize)
}

// targetPoints returns the cached snap points of every visible, on-screen
// object other than o.
func (g *AlignmentGuides) targetPoints(o *Object) []ScenePoint {
	var pts []ScenePoint
	for _, other := range g.canvas.objects {
		if other == o || !other.Visible || !other.IsOnScreen() {
			continue
		}
		pts = append(pts, g.cache.points(other)...)
	}
	return pts
}

// --- Move ---

// axisSnap is the best match of a set of source points against targets on
// one axis. Lines holds every tied pair that agrees on Delta.
type axisSnap struct {
	distance float64
	delta    float64
	lines    []AlignmentLine
}

// bestAxisSnap finds, over all sources, the smallest axis distance to any
// target and collects every pair achieving it with the same delta.
func bestAxisSnap(sources, targets []ScenePoint, axis Axis) axisSnap {
	best := axisSnap{distance: math.Inf(1)}
	for _, src := range sources {
		m := FindNearestOnAxis(src, targets, axis)
		if len(m.Matches) == 0 {
			continue
		}
		if m.Distance < best.distance-snapEpsilon {
			best = axisSnap{distance: m.Distance, delta: axisDelta(src, m.Matches[0], axis)}
		} else if m.Distance > best.distance+snapEpsilon {
			continue
		}
		for _, t := range m.Matches {
			if math.Abs(axisDelta(src, t, axis)-best.delta) <= snapEpsilon {
				best.lines = append(best.lines, AlignmentLine{Origin: src, Target: t})
			}
		}
	}
	return best
}

func axisDelta(from, to ScenePoint, axis Axis) float64 {
	if axis == AxisY {
		return to.Y - from.Y
	}
	return to.X - from.X
}

// onMoving snaps the moving object's corners, edge midpoints and center to
// the nearest target on each axis by offsetting its center point.
func (g *AlignmentGuides) onMoving(ctx TransformContext) {
	o := ctx.Target
	g.resetLines()
	g.markersOnly = false

	targets := g.targetPoints(o)
	if len(targets) == 0 {
		return
	}
	sources := RectSnapPoints(o)
	margin := g.margin()

	var dx, dy float64
	if o.Locks.MovementX && o.Locks.MovementY {
		return
	}
	if s := bestAxisSnap(sources, targets, AxisX); !o.Locks.MovementX && s.distance <= margin {
		dx = s.delta
		for _, l := range s.lines {
			g.vertical.add(l)
		}
	}
	if s := bestAxisSnap(sources, targets, AxisY); !o.Locks.MovementY && s.distance <= margin {
		dy = s.delta
		for _, l := range s.lines {
			g.horizontal.add(l)
		}
	}
	if dx != 0 || dy != 0 {
		o.SetCenterPoint(o.CenterPoint().Add(dx, dy))
	}
}

// --- Scale / resize ---

// onScaling snaps the dragged handle. X snapping runs first; the handle's
// position is fetched again before Y snapping because the X step may have
// moved it on both axes.
func (g *AlignmentGuides) onScaling(ctx TransformContext) {
	o, t := ctx.Target, ctx.Transform
	g.resetLines()
	if t == nil || t.Corner == ControlNone {
		return
	}
	visual := t.Corner.flipped(o.FlipX, o.FlipY)
	g.markersOnly = visual.IsEdge()
	if g.markersOnly && !isRightAngle(o.Angle) {
		return
	}
	targets := g.targetPoints(o)
	if len(targets) == 0 {
		return
	}
	c := g.canvas
	uniform := !g.markersOnly &&
		(c.UniformScaling != ctx.Modifiers.Has(c.UniScaleKey) || o.Locks.UniformScale)
	rs := resizeSnap{obj: o, handle: visual, centered: t.Centered, uniform: uniform}
	margin := g.margin()

	dragged := o.visualPoint(visual)
	if m := FindNearestOnAxis(dragged, targets, AxisX); m.Distance <= margin {
		if rs.snapTo(AxisX, m.Matches[0].X) {
			for _, tp := range sameCoordinate(m.Matches, AxisX) {
				g.vertical.add(AlignmentLine{Origin: dragged, Target: tp})
			}
		}
	}

	dragged = o.visualPoint(visual)
	if m := FindNearestOnAxis(dragged, targets, AxisY); m.Distance <= margin {
		if rs.snapTo(AxisY, m.Matches[0].Y) {
			for _, tp := range sameCoordinate(m.Matches, AxisY) {
				g.horizontal.add(AlignmentLine{Origin: dragged, Target: tp})
			}
		}
	}

	// A uniform or rotated Y snap can pull the handle off the X target.
	if len(g.vertical.order) > 0 {
		final := o.visualPoint(visual)
		if math.Abs(final.X-g.vertical.order[0].Target.X) > snapEpsilon {
			g.vertical.reset()
		}
	}
}

// resizeSnap moves one handle of an object onto a target coordinate by
// changing its size, keeping the anchor (opposite handle or center) fixed.
type resizeSnap struct {
	obj      *Object
	handle   Control // visual (flip-resolved) handle name
	centered bool
	uniform  bool
}

// snapTo resizes so the handle's axis coordinate equals target. Snaps that
// would collapse or mirror the object are rejected. Reports whether the
// object now sits on target.
func (r resizeSnap) snapTo(axis Axis, target float64) bool {
	o := r.obj
	sx, sy := r.handle.signs()
	f := 1.0
	anchor := o.visualPoint(r.handle.opposite())
	if r.centered {
		f = 0.5
		anchor = o.CenterPoint()
	}
	w, h := o.ScaledWidth(), o.ScaledHeight()
	sin, cos := sincosDegrees(o.Angle)

	// handle = anchor + f·R·(sx·w, sy·h)
	var coefW, coefH, base float64
	if axis == AxisX {
		coefW, coefH, base = f*cos*sx, -f*sin*sy, anchor.X
	} else {
		coefW, coefH, base = f*sin*sx, f*cos*sy, anchor.Y
	}
	current := base + coefW*w + coefH*h
	if math.Abs(target-current) <= snapEpsilon {
		return true
	}

	if r.uniform {
		offset := current - base
		if math.Abs(offset) <= snapEpsilon || o.Locks.ScalingX || o.Locks.ScalingY {
			return false
		}
		k := (target - base) / offset
		if k <= 0 {
			return false
		}
		w, h = w*k, h*k
	} else {
		// Adjust the dimension that moves the handle most along this axis.
		if math.Abs(coefW) >= math.Abs(coefH) {
			if math.Abs(coefW) <= snapEpsilon || o.Locks.ScalingX {
				return false
			}
			w += (target - current) / coefW
		} else {
			if o.Locks.ScalingY {
				return false
			}
			h += (target - current) / coefH
		}
		if w <= 0 || h <= 0 {
			return false
		}
	}

	setScaledSize(o, w, h)
	if r.centered {
		o.SetCenterPoint(anchor)
	} else {
		dx, dy := rotateVector(sx*w/2, sy*h/2, o.Angle)
		o.SetCenterPoint(anchor.Add(dx, dy))
	}
	return true
}

// --- Rendering ---

// render draws the current lines. Full mode draws each line along its
// shared coordinate from origin to target with "x" markers at both ends;
// markers-only mode draws just the target markers.
func (g *AlignmentGuides) render(layer GuideLayer) {
	if len(g.vertical.order) == 0 && len(g.horizontal.order) == 0 {
		return
	}
	c := g.canvas
	style := LineStyle{Color: g.opts.Color, Width: g.opts.Width, Dash: g.opts.LineDash}
	if g.markersOnly {
		for _, l := range g.vertical.order {
			layer.Cross(c.SceneToScreen(l.Target), g.opts.XSize, style)
		}
		for _, l := range g.horizontal.order {
			layer.Cross(c.SceneToScreen(l.Target), g.opts.XSize, style)
		}
		return
	}
	for _, l := range g.vertical.order {
		a := c.SceneToScreen(ScenePoint{l.Target.X, l.Origin.Y})
		b := c.SceneToScreen(l.Target)
		layer.StrokeLine(a, b, style)
		layer.Cross(a, g.opts.XSize, style)
		layer.Cross(b, g.opts.XSize, style)
	}
	for _, l := range g.horizontal.order {
		a := c.SceneToScreen(ScenePoint{l.Origin.X, l.Target.Y})
		b := c.SceneToScreen(l.Target)
		layer.StrokeLine(a, b, style)
		layer.Cross(a, g.opts.XSize, style)
		layer.Cross(b, g.opts.XSize, style)
	}
}
