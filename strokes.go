package trellis

// ScaledStrokes keeps object outlines a constant width on screen. It records
// each object's base stroke width and sets the runtime width to
// base / zoom whenever the viewport or the object list changes.
type ScaledStrokes struct {
	canvas  *Canvas
	base    map[*Object]float64
	handles []CallbackHandle
}

// EnableScaledStrokes starts scaled-stroke tracking on c, or returns the
// tracker already enabled.
func EnableScaledStrokes(c *Canvas) *ScaledStrokes {
	if c.strokes != nil {
		return c.strokes
	}
	s := &ScaledStrokes{canvas: c, base: make(map[*Object]float64)}
	s.handles = []CallbackHandle{
		c.OnObjectAdded(func(ctx ObjectContext) { s.track(ctx.Object) }),
		c.OnObjectRemoved(func(ctx ObjectContext) { s.untrack(ctx.Object) }),
		c.OnViewportChanged(func(Matrix) { s.refresh() }),
	}
	c.strokes = s
	for _, o := range c.objects {
		s.track(o)
	}
	return s
}

func (s *ScaledStrokes) track(o *Object) {
	if _, ok := s.base[o]; !ok {
		s.base[o] = o.StrokeWidth
	}
	s.apply(o)
}

// untrack restores o's base width so a removed object carries no
// zoom-dependent state.
func (s *ScaledStrokes) untrack(o *Object) {
	if b, ok := s.base[o]; ok {
		o.StrokeWidth = b
		delete(s.base, o)
	}
}

func (s *ScaledStrokes) apply(o *Object) {
	z := s.canvas.Zoom()
	if z <= 0 {
		return
	}
	o.StrokeWidth = s.base[o] / z
}

func (s *ScaledStrokes) refresh() {
	for o := range s.base {
		s.apply(o)
	}
}

// Base returns the recorded base stroke width of o.
func (s *ScaledStrokes) Base(o *Object) (float64, bool) {
	b, ok := s.base[o]
	return b, ok
}

// SetBase changes o's base stroke width and updates its runtime width.
func (s *ScaledStrokes) SetBase(o *Object, width float64) {
	if o.canvas != s.canvas {
		return
	}
	s.base[o] = width
	s.apply(o)
}

// Disable restores every base width and stops tracking.
func (s *ScaledStrokes) Disable() {
	if s.canvas.strokes != s {
		return
	}
	for o, b := range s.base {
		o.StrokeWidth = b
	}
	clear(s.base)
	removeAll(s.handles)
	s.handles = nil
	s.canvas.strokes = nil
}

// baseStrokeWidth returns the width serialization should persist for o.
func (c *Canvas) baseStrokeWidth(o *Object) float64 {
	if c.strokes != nil {
		if b, ok := c.strokes.base[o]; ok {
			return b
		}
	}
	return o.StrokeWidth
}
