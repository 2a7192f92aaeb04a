package trellis

import "math"

type radii struct {
	rx, ry float64
}

// VisualRadius keeps rounded-rect corners round under non-uniform scaling.
// The recorded base radius is in scene units; the visual RX/RY are
// base/|ScaleX| and base/|ScaleY| so the scaled corner matches the base.
// Circles are excluded: their radii always span the box.
type VisualRadius struct {
	canvas  *Canvas
	base    map[*Object]radii
	handles []CallbackHandle
}

// EnableVisualRadius starts visual-radius tracking on c, or returns the
// tracker already enabled.
func EnableVisualRadius(c *Canvas) *VisualRadius {
	if c.radii != nil {
		return c.radii
	}
	v := &VisualRadius{canvas: c, base: make(map[*Object]radii)}
	update := func(o *Object) {
		if _, ok := v.base[o]; ok {
			v.apply(o)
		}
	}
	v.handles = []CallbackHandle{
		c.OnObjectAdded(func(ctx ObjectContext) { v.track(ctx.Object) }),
		c.OnObjectRemoved(func(ctx ObjectContext) { v.untrack(ctx.Object) }),
		c.OnObjectScaling(func(ctx TransformContext) { update(ctx.Target) }),
		c.OnObjectModified(func(ctx ObjectContext) { update(ctx.Object) }),
	}
	c.radii = v
	for _, o := range c.objects {
		v.track(o)
	}
	return v
}

func (v *VisualRadius) track(o *Object) {
	if o.Kind != KindRect || o.IsCircle() || (o.RX == 0 && o.RY == 0) {
		return
	}
	if _, ok := v.base[o]; !ok {
		v.base[o] = radii{o.RX, o.RY}
	}
	v.apply(o)
}

func (v *VisualRadius) untrack(o *Object) {
	if b, ok := v.base[o]; ok {
		o.RX, o.RY = b.rx, b.ry
		delete(v.base, o)
	}
}

func (v *VisualRadius) apply(o *Object) {
	b := v.base[o]
	sx, sy := math.Abs(o.ScaleX), math.Abs(o.ScaleY)
	if sx == 0 || sy == 0 {
		return
	}
	o.RX, o.RY = b.rx/sx, b.ry/sy
}

// Base returns the recorded base radii of o.
func (v *VisualRadius) Base(o *Object) (rx, ry float64, ok bool) {
	b, ok := v.base[o]
	return b.rx, b.ry, ok
}

// Disable restores every base radius and stops tracking.
func (v *VisualRadius) Disable() {
	if v.canvas.radii != v {
		return
	}
	for o, b := range v.base {
		o.RX, o.RY = b.rx, b.ry
	}
	clear(v.base)
	removeAll(v.handles)
	v.handles = nil
	v.canvas.radii = nil
}

// baseRadius returns the radii serialization should persist for o.
func (c *Canvas) baseRadius(o *Object) (rx, ry float64) {
	if c.radii != nil {
		if b, ok := c.radii.base[o]; ok {
			return b.rx, b.ry
		}
	}
	return o.RX, o.RY
}
