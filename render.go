package trellis

import (
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// LineStyle describes an overlay stroke. Width is in screen pixels. Dash,
// when non-empty, alternates on/off lengths in screen pixels.
type LineStyle struct {
	Color Color
	Width float64
	Dash  []float64
}

// GuideLayer is the overlay drawn above every object. Guideline code only
// ever touches this layer, never the main object layer. All coordinates
// are screen space, so stroke widths stay constant under zoom.
type GuideLayer interface {
	Clear()
	StrokeLine(a, b ScreenPoint, style LineStyle)
	// Cross draws an "x" marker with arms of length size.
	Cross(at ScreenPoint, size float64, style LineStyle)
	Dot(at ScreenPoint, radius float64, c Color)
}

// GuideLayer returns the overlay layer, creating an image-backed layer of
// the canvas size on first use.
func (c *Canvas) GuideLayer() GuideLayer {
	if c.top == nil {
		w, h := max(1, int(math.Ceil(c.width))), max(1, int(math.Ceil(c.height)))
		c.topImage = ebiten.NewImage(w, h)
		c.top = &imageLayer{img: c.topImage}
	}
	return c.top
}

// SetGuideLayer replaces the overlay layer. Layers other than the built-in
// image layer are not composited by Draw.
func (c *Canvas) SetGuideLayer(l GuideLayer) {
	c.top = l
}

// imageLayer is the ebiten-backed GuideLayer.
type imageLayer struct {
	img *ebiten.Image
}

func (l *imageLayer) Clear() {
	l.img.Clear()
}

func (l *imageLayer) StrokeLine(a, b ScreenPoint, style LineStyle) {
	clr := style.Color.toRGBA()
	w := float32(style.Width)
	if len(style.Dash) == 0 {
		vector.StrokeLine(l.img, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), w, clr, true)
		return
	}
	for _, seg := range dashSegments(a, b, style.Dash) {
		vector.StrokeLine(l.img, float32(seg[0].X), float32(seg[0].Y), float32(seg[1].X), float32(seg[1].Y), w, clr, true)
	}
}

func (l *imageLayer) Cross(at ScreenPoint, size float64, style LineStyle) {
	solid := LineStyle{Color: style.Color, Width: style.Width}
	l.StrokeLine(ScreenPoint{at.X - size, at.Y - size}, ScreenPoint{at.X + size, at.Y + size}, solid)
	l.StrokeLine(ScreenPoint{at.X + size, at.Y - size}, ScreenPoint{at.X - size, at.Y + size}, solid)
}

func (l *imageLayer) Dot(at ScreenPoint, radius float64, c Color) {
	fillCircle(l.img, at, radius, c)
}

// dashSegments splits the line a-b into the "on" segments of pattern.
func dashSegments(a, b ScreenPoint, pattern []float64) [][2]ScreenPoint {
	length := a.Distance(b)
	var total float64
	for _, d := range pattern {
		total += math.Max(d, 0)
	}
	if length == 0 || total == 0 {
		return [][2]ScreenPoint{{a, b}}
	}
	ux, uy := (b.X-a.X)/length, (b.Y-a.Y)/length
	at := func(t float64) ScreenPoint { return ScreenPoint{a.X + ux*t, a.Y + uy*t} }
	var segs [][2]ScreenPoint
	pos, i := 0.0, 0
	for pos < length {
		d := math.Max(pattern[i%len(pattern)], 0)
		if i%2 == 0 && d > 0 {
			segs = append(segs, [2]ScreenPoint{at(pos), at(math.Min(pos+d, length))})
		}
		pos += d
		i++
	}
	return segs
}

// --- Drawing ---

// Draw renders the canvas onto screen: background color, background image,
// visible objects, the selection frame, then the guide overlay. Call it
// from ebiten.Game.Draw.
func (c *Canvas) Draw(screen *ebiten.Image) {
	if c.disposed {
		return
	}
	var stats debugStats
	var t0 time.Time
	if c.debug {
		t0 = time.Now()
	}
	rc := RenderContext{Canvas: c, Layer: c.GuideLayer()}
	// Overlay content lives for one frame; after-render handlers redraw it.
	rc.Layer.Clear()
	c.handlers.beforeRender.fire(rc)

	if c.BackgroundColor != "" {
		if bg, err := ParseColor(c.BackgroundColor); err == nil {
			screen.Fill(bg.toRGBA())
		}
	}
	c.drawBackgroundImage(screen)

	visible := c.VisibleBounds()
	for _, o := range c.objects {
		if !o.Visible {
			continue
		}
		if !o.BoundingRect().Intersects(visible) {
			stats.culled++
			continue
		}
		c.drawObject(screen, o)
		stats.drawn++
	}
	if c.active != nil && c.active.Visible {
		c.drawSelection(screen, c.active)
	}

	var t1 time.Time
	if c.debug {
		t1 = time.Now()
		stats.objectTime = t1.Sub(t0)
	}
	c.handlers.afterRender.fire(rc)
	if il, ok := c.top.(*imageLayer); ok {
		screen.DrawImage(il.img, nil)
	}
	if c.debug {
		stats.overlayTime = time.Since(t1)
	}

	c.flushScreenshots(screen)
	c.debugLog(stats)
}

// drawBackgroundImage draws the background with its top-left at the scene
// origin, through the viewport and filters.
func (c *Canvas) drawBackgroundImage(screen *ebiten.Image) {
	bg := c.background
	if bg == nil {
		return
	}
	img := bg.ebitenImage()
	var geo ebiten.GeoM
	vpt := c.vpt
	geo.SetElement(0, 0, vpt[0])
	geo.SetElement(1, 0, vpt[1])
	geo.SetElement(0, 1, vpt[2])
	geo.SetElement(1, 1, vpt[3])
	geo.SetElement(0, 2, vpt[4])
	geo.SetElement(1, 2, vpt[5])
	drawFiltered(screen, img, geo, bg.filters)
}

// drawObject fills and strokes one object in screen space.
func (c *Canvas) drawObject(screen *ebiten.Image, o *Object) {
	m := c.vpt.Multiply(o.Matrix())
	if o.Kind == KindImage {
		if img, ok := c.images[o.Src]; ok {
			b := img.Bounds()
			local := translateMatrix(-o.Width/2, -o.Height/2).Multiply(
				scaleMatrix(o.Width/float64(b.Dx()), o.Height/float64(b.Dy())))
			full := m.Multiply(local)
			var op ebiten.DrawImageOptions
			op.GeoM.SetElement(0, 0, full[0])
			op.GeoM.SetElement(1, 0, full[1])
			op.GeoM.SetElement(0, 1, full[2])
			op.GeoM.SetElement(1, 1, full[3])
			op.GeoM.SetElement(0, 2, full[4])
			op.GeoM.SetElement(1, 2, full[5])
			op.ColorScale.ScaleAlpha(float32(o.Opacity))
			op.Filter = ebiten.FilterLinear
			screen.DrawImage(img, &op)
			return
		}
	}
	path := screenPath(localOutline(o), m)
	if fill, err := ParseColor(o.Fill); err == nil {
		fill.A *= o.Opacity
		fillPath(screen, path, fill)
	}
	if stroke, err := ParseColor(o.Stroke); err == nil {
		stroke.A *= o.Opacity
		strokePath(screen, path, o.StrokeWidth*matrixScale(m), stroke)
	}
}

// drawSelection draws the border and handles of the active object.
func (c *Canvas) drawSelection(screen *ebiten.Image, o *Object) {
	style := o.Controls
	border, err := ParseColor(style.BorderColor)
	if err != nil {
		border = Color{0.18, 0.44, 0.93, 1}
	}
	k := o.Corners()
	pts := []ScenePoint{k.TL, k.TR, k.BR, k.BL}
	var p vector.Path
	for i, sp := range pts {
		s := c.SceneToScreen(sp)
		if i == 0 {
			p.MoveTo(float32(s.X), float32(s.Y))
		} else {
			p.LineTo(float32(s.X), float32(s.Y))
		}
	}
	p.Close()
	strokePath(screen, &p, 1, border)

	if !o.HasControls {
		return
	}
	size := style.CornerSize
	if size <= 0 {
		size = DefaultControlStyle.CornerSize
	}
	fill, err := ParseColor(style.CornerColor)
	if err != nil || style.TransparentCorners {
		fill = Color{}
	}
	edge, err := ParseColor(style.CornerStrokeColor)
	if err != nil {
		edge = border
	}
	for _, ctl := range allControls {
		if !o.controlVisible(ctl) {
			continue
		}
		at := c.SceneToScreen(o.ControlPosition(ctl))
		var h vector.Path
		h.MoveTo(float32(at.X-size/2), float32(at.Y-size/2))
		h.LineTo(float32(at.X+size/2), float32(at.Y-size/2))
		h.LineTo(float32(at.X+size/2), float32(at.Y+size/2))
		h.LineTo(float32(at.X-size/2), float32(at.Y+size/2))
		h.Close()
		fillPath(screen, &h, fill)
		strokePath(screen, &h, 1, edge)
	}
}

// RegisterImage associates an image source reference with decoded pixels
// so image objects with that Src can be drawn.
func (c *Canvas) RegisterImage(src string, img *ebiten.Image) {
	if c.images == nil {
		c.images = make(map[string]*ebiten.Image)
	}
	c.images[src] = img
}
