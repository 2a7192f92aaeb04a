package trellis

// DefaultCursorMargin is the cursor snapping distance in screen pixels.
const DefaultCursorMargin = 6.0

// sizeScaleReference is the canvas size at which ScaleWithCanvasSize leaves
// the margin unchanged.
const sizeScaleReference = 1000.0

// CursorSnapOptions configures SnapCursorPoint.
type CursorSnapOptions struct {
	// Margin is the snapping distance in screen pixels. Zero means
	// DefaultCursorMargin.
	Margin float64
	// Exclude lists objects whose points are never targets, typically the
	// object being drawn.
	Exclude []*Object
	// TargetPoints, when non-nil, replaces extraction from the canvas.
	TargetPoints []ScenePoint
	// ScaleWithCanvasSize multiplies the margin by max(width, height)/1000.
	ScaleWithCanvasSize bool
	// Registry extracts target points. Nil uses the built-in extractors.
	Registry *SnapPointRegistry
}

// SnapResult is the outcome of snapping one point. Each axis snaps
// independently.
type SnapResult struct {
	Raw   ScenePoint // the input point
	Point ScenePoint // the snapped point; equals Raw on axes that did not snap
	SnapX bool
	SnapY bool
	// TargetsX holds every tied target the X coordinate snapped to (they
	// share one X). TargetsY likewise for Y.
	TargetsX []ScenePoint
	TargetsY []ScenePoint
}

// Snapped reports whether either axis snapped.
func (r SnapResult) Snapped() bool {
	return r.SnapX || r.SnapY
}

// sceneMargin converts a screen-pixel margin to scene units for the canvas's
// current zoom.
func sceneMargin(c *Canvas, margin float64, scaleWithSize bool) float64 {
	m := margin / c.Zoom()
	if scaleWithSize {
		m *= max(c.width, c.height) / sizeScaleReference
	}
	return m
}

// CollectSnapTargets gathers the snap points of every visible object on the
// canvas except those in exclude.
func CollectSnapTargets(c *Canvas, exclude []*Object, registry *SnapPointRegistry) []ScenePoint {
	if registry == nil {
		registry = NewSnapPointRegistry()
	}
	var pts []ScenePoint
	for _, o := range c.objects {
		if !o.Visible || containsObject(exclude, o) {
			continue
		}
		pts = append(pts, registry.Extract(o)...)
	}
	return pts
}

func containsObject(objs []*Object, o *Object) bool {
	for _, x := range objs {
		if x == o {
			return true
		}
	}
	return false
}

// SnapCursorPoint snaps raw (scene space) to the nearest target on each
// axis when it lies within the margin. It never fails: with no targets the
// raw point is returned unsnapped.
func SnapCursorPoint(c *Canvas, raw ScenePoint, opts CursorSnapOptions) SnapResult {
	res := SnapResult{Raw: raw, Point: raw}
	margin := opts.Margin
	if margin <= 0 {
		margin = DefaultCursorMargin
	}
	margin = sceneMargin(c, margin, opts.ScaleWithCanvasSize)

	targets := opts.TargetPoints
	if targets == nil {
		targets = CollectSnapTargets(c, opts.Exclude, opts.Registry)
	}

	if m := FindNearestOnAxis(raw, targets, AxisX); m.Distance <= margin {
		res.SnapX = true
		res.Point.X = m.Matches[0].X
		res.TargetsX = sameCoordinate(m.Matches, AxisX)
	}
	if m := FindNearestOnAxis(raw, targets, AxisY); m.Distance <= margin {
		res.SnapY = true
		res.Point.Y = m.Matches[0].Y
		res.TargetsY = sameCoordinate(m.Matches, AxisY)
	}
	return res
}

// sameCoordinate keeps the matches that share the first match's coordinate
// on axis. Ties at equal distance on the opposite side of the source point
// would otherwise get a guideline to a position the point did not snap to.
func sameCoordinate(matches []ScenePoint, axis Axis) []ScenePoint {
	if len(matches) == 0 {
		return nil
	}
	first := matches[0]
	out := make([]ScenePoint, 0, len(matches))
	for _, p := range matches {
		if AxisDistance(p, first, axis) == 0 {
			out = append(out, p)
		}
	}
	return out
}

// GuideStyle describes guideline strokes and markers in screen pixels.
type GuideStyle struct {
	Color Color
	Width float64
	// XSize is the arm length of the "x" markers drawn at line ends.
	XSize float64
	Dash  []float64
}

// DefaultGuideStyle is the style used when a zero GuideStyle is given.
var DefaultGuideStyle = GuideStyle{
	Color: Color{1, 0, 0, 0.9},
	Width: 1,
	XSize: 2.4,
}

func (s GuideStyle) withDefaults() GuideStyle {
	if s.Color == (Color{}) {
		s.Color = DefaultGuideStyle.Color
	}
	if s.Width <= 0 {
		s.Width = DefaultGuideStyle.Width
	}
	if s.XSize <= 0 {
		s.XSize = DefaultGuideStyle.XSize
	}
	return s
}

// DrawCursorGuidelines draws one line plus end markers per tied target of
// res onto the canvas's guide layer. Widths are in screen pixels, so the
// guides look the same at every zoom.
func DrawCursorGuidelines(c *Canvas, res SnapResult, style GuideStyle) {
	style = style.withDefaults()
	layer := c.GuideLayer()
	line := LineStyle{Color: style.Color, Width: style.Width, Dash: style.Dash}
	at := c.SceneToScreen(res.Point)
	draw := func(targets []ScenePoint) {
		for _, t := range targets {
			ts := c.SceneToScreen(t)
			layer.StrokeLine(ts, at, line)
			layer.Cross(ts, style.XSize, line)
			layer.Cross(at, style.XSize, line)
		}
	}
	if res.SnapX {
		draw(res.TargetsX)
	}
	if res.SnapY {
		draw(res.TargetsY)
	}
}

// ClearCursorGuidelines clears the guide layer. The object layer is never
// touched.
func ClearCursorGuidelines(c *Canvas) {
	c.GuideLayer().Clear()
}
