package trellis

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	ellipseSegments = 48
	cornerSegments  = 8
)

// localOutline returns the object's outline in local space (centered,
// unscaled). Rects with corner radii get rounded corners, circles become
// ellipses and polygons are shifted by their PathOffset.
func localOutline(o *Object) []LocalPoint {
	hw, hh := o.Width/2, o.Height/2
	switch {
	case o.Kind == KindPolygon:
		pts := make([]LocalPoint, len(o.Points))
		for i, p := range o.Points {
			pts[i] = LocalPoint{p.X - o.PathOffset.X, p.Y - o.PathOffset.Y}
		}
		return pts
	case o.IsCircle():
		pts := make([]LocalPoint, ellipseSegments)
		for i := range pts {
			a := 2 * math.Pi * float64(i) / ellipseSegments
			pts[i] = LocalPoint{hw * math.Cos(a), hh * math.Sin(a)}
		}
		return pts
	case o.RX > 0 || o.RY > 0:
		rx, ry := math.Min(o.RX, hw), math.Min(o.RY, hh)
		if o.RY == 0 {
			ry = math.Min(o.RX, hh)
		}
		if o.RX == 0 {
			rx = math.Min(o.RY, hw)
		}
		pts := make([]LocalPoint, 0, 4*(cornerSegments+1))
		corners := [4]struct{ cx, cy, start float64 }{
			{hw - rx, -hh + ry, -math.Pi / 2},
			{hw - rx, hh - ry, 0},
			{-hw + rx, hh - ry, math.Pi / 2},
			{-hw + rx, -hh + ry, math.Pi},
		}
		for _, k := range corners {
			for i := 0; i <= cornerSegments; i++ {
				a := k.start + math.Pi/2*float64(i)/cornerSegments
				pts = append(pts, LocalPoint{k.cx + rx*math.Cos(a), k.cy + ry*math.Sin(a)})
			}
		}
		return pts
	}
	return []LocalPoint{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}}
}

// screenPath builds a closed path from local points mapped through m.
func screenPath(pts []LocalPoint, m Matrix) *vector.Path {
	var p vector.Path
	for i, lp := range pts {
		x, y := m.Apply(lp.X, lp.Y)
		if i == 0 {
			p.MoveTo(float32(x), float32(y))
		} else {
			p.LineTo(float32(x), float32(y))
		}
	}
	p.Close()
	return &p
}

// tintVertices sets every vertex to sample the white pixel with color c.
func tintVertices(vs []ebiten.Vertex, c Color) {
	r, g, b, a := float32(c.R), float32(c.G), float32(c.B), float32(c.A)
	for i := range vs {
		vs[i].SrcX, vs[i].SrcY = 0.5, 0.5
		vs[i].ColorR = r * a
		vs[i].ColorG = g * a
		vs[i].ColorB = b * a
		vs[i].ColorA = a
	}
}

// fillPath fills a path with a solid color.
func fillPath(dst *ebiten.Image, p *vector.Path, c Color) {
	if c.A <= 0 {
		return
	}
	vs, is := p.AppendVerticesAndIndicesForFilling(nil, nil)
	tintVertices(vs, c)
	var op ebiten.DrawTrianglesOptions
	op.FillRule = ebiten.FillRuleNonZero
	op.AntiAlias = true
	dst.DrawTriangles(vs, is, ensureWhitePixel(), &op)
}

// strokePath strokes a path with a solid color and a width in pixels.
func strokePath(dst *ebiten.Image, p *vector.Path, width float64, c Color) {
	if c.A <= 0 || width <= 0 {
		return
	}
	vs, is := p.AppendVerticesAndIndicesForStroke(nil, nil, &vector.StrokeOptions{
		Width:      float32(width),
		LineJoin:   vector.LineJoinMiter,
		MiterLimit: 10,
	})
	tintVertices(vs, c)
	var op ebiten.DrawTrianglesOptions
	op.AntiAlias = true
	dst.DrawTriangles(vs, is, ensureWhitePixel(), &op)
}

// fillCircle fills a screen-space circle.
func fillCircle(dst *ebiten.Image, center ScreenPoint, radius float64, c Color) {
	var p vector.Path
	p.Arc(float32(center.X), float32(center.Y), float32(radius), 0, 2*math.Pi, vector.Clockwise)
	p.Close()
	fillPath(dst, &p, c)
}

// matrixScale returns the average linear scale of m, used to size strokes.
func matrixScale(m Matrix) float64 {
	return math.Sqrt(math.Abs(m.Determinant()))
}

// --- White pixel singleton (single-threaded, no sync.Once) ---

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white pixel image used
// as the source for untextured triangles.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.White)
	}
	return whitePixelImage
}
