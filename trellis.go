package trellis

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is opaque white.
var ColorWhite = Color{1, 1, 1, 1}

// toRGBA converts to a premultiplied color.RGBA for ebiten draw calls.
func (c Color) toRGBA() color.RGBA {
	a := clamp01(c.A)
	return color.RGBA{
		R: uint8(clamp01(c.R)*a*255 + 0.5),
		G: uint8(clamp01(c.G)*a*255 + 0.5),
		B: uint8(clamp01(c.B)*a*255 + 0.5),
		A: uint8(a*255 + 0.5),
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// ParseColor parses the CSS color forms used in scene documents: "#rgb",
// "#rrggbb", "#rrggbbaa", "rgb(r,g,b)", "rgba(r,g,b,a)" and "transparent".
// The empty string parses as fully transparent.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case s == "" || s == "transparent" || s == "none":
		return Color{}, nil
	case strings.HasPrefix(s, "#"):
		return parseHexColor(s[1:])
	case strings.HasPrefix(s, "rgba(") || strings.HasPrefix(s, "rgb("):
		open := strings.IndexByte(s, '(')
		if !strings.HasSuffix(s, ")") {
			return Color{}, fmt.Errorf("parse color %q: missing )", s)
		}
		parts := strings.Split(s[open+1:len(s)-1], ",")
		if len(parts) != 3 && len(parts) != 4 {
			return Color{}, fmt.Errorf("parse color %q: want 3 or 4 components", s)
		}
		var v [4]float64
		v[3] = 1
		for i, p := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return Color{}, fmt.Errorf("parse color %q: %w", s, err)
			}
			if i < 3 {
				f /= 255
			}
			v[i] = f
		}
		return Color{v[0], v[1], v[2], v[3]}, nil
	}
	return Color{}, fmt.Errorf("parse color %q: unsupported format", s)
}

func parseHexColor(h string) (Color, error) {
	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	case 6, 8:
	default:
		return Color{}, fmt.Errorf("parse color %q: bad hex length", "#"+h)
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", "#"+h, err)
	}
	if len(h) == 6 {
		n = n<<8 | 0xff
	}
	return Color{
		R: float64(n>>24&0xff) / 255,
		G: float64(n>>16&0xff) / 255,
		B: float64(n>>8&0xff) / 255,
		A: float64(n&0xff) / 255,
	}, nil
}

// ScenePoint is a point in scene (world) space, the space objects live in.
type ScenePoint struct {
	X, Y float64
}

// ScreenPoint is a point in canvas pixels, after the viewport transform.
type ScreenPoint struct {
	X, Y float64
}

// LocalPoint is a point in an object's own coordinate space.
type LocalPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by (dx, dy).
func (p ScenePoint) Add(dx, dy float64) ScenePoint {
	return ScenePoint{p.X + dx, p.Y + dy}
}

// Sub returns the scene-space delta p - q.
func (p ScenePoint) Sub(q ScenePoint) (dx, dy float64) {
	return p.X - q.X, p.Y - q.Y
}

// Distance returns the Euclidean distance between p and q.
func (p ScenePoint) Distance(q ScenePoint) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Distance returns the Euclidean distance between p and q in pixels.
func (p ScreenPoint) Distance(q ScreenPoint) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// boundsOf returns the axis-aligned rectangle enclosing pts.
func boundsOf(pts ...ScenePoint) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// ObjectKind distinguishes geometry and rendering behavior for an Object.
type ObjectKind uint8

const (
	KindRect    ObjectKind = iota // rectangle, optionally rounded or drawn as a circle
	KindPolygon                   // closed freeform shape defined by vertices
	KindImage                     // raster image placed in the scene
)

// String returns the document type tag for the kind.
func (k ObjectKind) String() string {
	switch k {
	case KindRect:
		return "rect"
	case KindPolygon:
		return "polygon"
	case KindImage:
		return "image"
	default:
		return "object"
	}
}

// OriginX names the horizontal reference point of an object's Left field.
type OriginX string

// OriginY names the vertical reference point of an object's Top field.
type OriginY string

const (
	OriginLeft    OriginX = "left"
	OriginCenterX OriginX = "center"
	OriginRight   OriginX = "right"

	OriginTop     OriginY = "top"
	OriginCenterY OriginY = "center"
	OriginBottom  OriginY = "bottom"
)

// offset returns the origin's position as a fraction of the width measured
// from the center: -0.5, 0 or 0.5.
func (o OriginX) offset() float64 {
	switch o {
	case OriginLeft:
		return -0.5
	case OriginRight:
		return 0.5
	default:
		return 0
	}
}

func (o OriginY) offset() float64 {
	switch o {
	case OriginTop:
		return -0.5
	case OriginBottom:
		return 0.5
	default:
		return 0
	}
}

// EventType identifies a kind of canvas event.
type EventType uint8

const (
	EventPointerDown     EventType = iota // a pointer button was pressed
	EventPointerMove                      // the pointer moved, pressed or not
	EventPointerUp                        // a pointer button was released
	EventWheel                            // the scroll wheel moved
	EventPinch                            // two-finger pinch gesture update
	EventKeyDown                          // a key was pressed
	EventObjectAdded                      // an object joined the canvas
	EventObjectRemoved                    // an object left the canvas
	EventObjectModified                   // a transform gesture finished and changed an object
	EventObjectMoving                     // a drag gesture moved an object
	EventObjectScaling                    // a handle gesture scaled or resized an object
	EventBeforeRender                     // Draw is about to render the main layer
	EventAfterRender                      // Draw finished the main layer; overlay may be drawn
	EventViewportChanged                  // the viewport transform changed
	EventFrame                            // Advance ran one frame
)

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// Has reports whether every modifier in m is held.
func (k KeyModifiers) Has(m KeyModifiers) bool {
	return m != 0 && k&m == m
}

// Axis selects one coordinate component.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
)

// Control names a transform handle on an object's selection frame. Names
// refer to the object's local (flip-aware) frame.
type Control string

const (
	ControlNone Control = ""
	ControlTL   Control = "tl"
	ControlTR   Control = "tr"
	ControlBR   Control = "br"
	ControlBL   Control = "bl"
	ControlML   Control = "ml"
	ControlMR   Control = "mr"
	ControlMT   Control = "mt"
	ControlMB   Control = "mb"
)

// allControls lists handles in hit-test priority order (corners first).
var allControls = [...]Control{ControlTL, ControlTR, ControlBR, ControlBL, ControlML, ControlMR, ControlMT, ControlMB}

// IsEdge reports whether c is an edge-midpoint handle.
func (c Control) IsEdge() bool {
	return c == ControlML || c == ControlMR || c == ControlMT || c == ControlMB
}

// signs returns the handle's position as multiples of the half width and
// half height measured from the center, in the object's local frame.
func (c Control) signs() (sx, sy float64) {
	switch c {
	case ControlTL:
		return -1, -1
	case ControlTR:
		return 1, -1
	case ControlBR:
		return 1, 1
	case ControlBL:
		return -1, 1
	case ControlML:
		return -1, 0
	case ControlMR:
		return 1, 0
	case ControlMT:
		return 0, -1
	case ControlMB:
		return 0, 1
	}
	return 0, 0
}

// flipped maps a local handle name to the visual position it occupies
// when the object is mirrored: under flipX "tl" is drawn top-right.
func (c Control) flipped(flipX, flipY bool) Control {
	s := []byte(c)
	for i, b := range s {
		switch {
		case flipX && b == 'l':
			s[i] = 'r'
		case flipX && b == 'r':
			s[i] = 'l'
		case flipY && b == 't':
			s[i] = 'b'
		case flipY && b == 'b':
			s[i] = 't'
		}
	}
	return Control(s)
}

// opposite returns the handle diagonally (or directly, for edges) across
// the frame from c.
func (c Control) opposite() Control {
	return c.flipped(true, true)
}
