package trellis

import (
	"math"
	"testing"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func approxPoint(a, b ScenePoint, eps float64) bool {
	return approxEqual(a.X, b.X, eps) && approxEqual(a.Y, b.Y, eps)
}

// recordLayer is a GuideLayer that records draw calls instead of
// rasterizing them.
type recordLayer struct {
	clears  int
	lines   [][2]ScreenPoint
	crosses []ScreenPoint
	dots    []ScreenPoint
}

func (l *recordLayer) Clear() {
	l.clears++
	l.lines = nil
	l.crosses = nil
	l.dots = nil
}

func (l *recordLayer) StrokeLine(a, b ScreenPoint, _ LineStyle) {
	l.lines = append(l.lines, [2]ScreenPoint{a, b})
}

func (l *recordLayer) Cross(at ScreenPoint, _ float64, _ LineStyle) {
	l.crosses = append(l.crosses, at)
}

func (l *recordLayer) Dot(at ScreenPoint, _ float64, _ Color) {
	l.dots = append(l.dots, at)
}

// newTestCanvas returns an 800x600 canvas drawing onto a recordLayer.
func newTestCanvas(t *testing.T) (*Canvas, *recordLayer) {
	t.Helper()
	c := NewCanvas(800, 600)
	l := &recordLayer{}
	c.SetGuideLayer(l)
	return c, l
}

// rectAt returns a w x h rect whose top-left corner is at (x, y).
func rectAt(x, y, w, h float64) *Object {
	r := NewRect(w, h)
	r.SetPositionByOrigin(ScenePoint{x, y}, OriginLeft, OriginTop)
	return r
}

// fireAfterRender runs the after-render handlers without a screen.
func fireAfterRender(c *Canvas) {
	rc := RenderContext{Canvas: c, Layer: c.GuideLayer()}
	rc.Layer.Clear()
	c.handlers.beforeRender.fire(rc)
	c.handlers.afterRender.fire(rc)
}
