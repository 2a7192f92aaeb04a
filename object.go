package trellis

import (
	"math"
)

// ObjectData is the application payload carried by every object. Consumers
// use it to correlate scene objects with their own entities.
type ObjectData struct {
	Type string `json:"type,omitempty"`
	ID   string `json:"id,omitempty"`
	// StrokeWidthBase is only written by the legacy document format, which
	// kept the unscaled stroke width here.
	StrokeWidthBase float64 `json:"strokeWidthBase,omitempty"`
}

// ControlStyle describes how an object's selection frame and handles look.
// Not part of the persisted geometry; reapplied on load.
type ControlStyle struct {
	CornerSize         float64 `json:"cornerSize,omitempty"`
	CornerColor        string  `json:"cornerColor,omitempty"`
	CornerStrokeColor  string  `json:"cornerStrokeColor,omitempty"`
	BorderColor        string  `json:"borderColor,omitempty"`
	TransparentCorners bool    `json:"transparentCorners,omitempty"`
	Padding            float64 `json:"padding,omitempty"`
	// HiddenControls lists handles that are not drawn or hit-tested.
	HiddenControls []Control `json:"hiddenControls,omitempty"`
}

// DefaultControlStyle is the control styling applied to new objects.
var DefaultControlStyle = ControlStyle{
	CornerSize:        10,
	CornerColor:       "#ffffff",
	CornerStrokeColor: "#2f6fed",
	BorderColor:       "#2f6fed",
}

// Locks restrict what the canvas's built-in transform gestures may change.
type Locks struct {
	MovementX    bool `json:"lockMovementX,omitempty"`
	MovementY    bool `json:"lockMovementY,omitempty"`
	ScalingX     bool `json:"lockScalingX,omitempty"`
	ScalingY     bool `json:"lockScalingY,omitempty"`
	Rotation     bool `json:"lockRotation,omitempty"`
	ScalingFlip  bool `json:"lockScalingFlip,omitempty"`
	UniformScale bool `json:"lockUniScaling,omitempty"`
}

// ShapeCircle is the ShapeType tag of a rect drawn as a circle.
const ShapeCircle = "circle"

// objectHandleCounter is a plain counter (no atomic — trellis is single-threaded).
var objectHandleCounter uint32

func nextObjectHandle() uint32 {
	objectHandleCounter++
	return objectHandleCounter
}

// Object is a scene object. A single flat struct covers every kind so the
// snapping and serialization paths never type-switch on interfaces.
//
// Left/Top locate the point named by OriginX/OriginY. Live objects use the
// center convention; documents may use the corner convention.
type Object struct {
	// Handle identifies the object within this process; it is not persisted.
	Handle uint32
	Kind   ObjectKind

	// Geometry
	OriginX       OriginX
	OriginY       OriginY
	Left, Top     float64
	Width, Height float64
	ScaleX        float64
	ScaleY        float64
	Angle         float64 // degrees, clockwise
	FlipX, FlipY  bool

	// Polygon vertices in the polygon's own coordinates. PathOffset is the
	// center of their bounding box and is subtracted before the object
	// matrix is applied.
	Points     []LocalPoint
	PathOffset LocalPoint

	// Style
	Fill        string
	Stroke      string
	StrokeWidth float64
	Opacity     float64
	RX, RY      float64

	// Image source reference (KindImage).
	Src string

	// Visibility & interaction
	Visible          bool
	Selectable       bool
	Evented          bool
	HasControls      bool
	Controls         ControlStyle
	Locks            Locks
	ResizeDimensions bool // handle gestures change Width/Height instead of ScaleX/ScaleY

	// Metadata
	Data      ObjectData
	ShapeType string

	canvas *Canvas
}

// objectDefaults sets the field values shared by all constructors.
func objectDefaults(o *Object) {
	o.Handle = nextObjectHandle()
	o.OriginX = OriginCenterX
	o.OriginY = OriginCenterY
	o.ScaleX = 1
	o.ScaleY = 1
	o.Opacity = 1
	o.Visible = true
	o.Selectable = true
	o.Evented = true
	o.HasControls = true
	o.Controls = DefaultControlStyle
	o.Stroke = "#000000"
	o.StrokeWidth = 1
	o.Fill = "#d9d9d9"
}

// NewRect creates a width x height rectangle centered on the scene origin.
func NewRect(width, height float64) *Object {
	o := &Object{Kind: KindRect, Width: width, Height: height}
	objectDefaults(o)
	o.Data.Type = KindRect.String()
	return o
}

// NewCircle creates a rect tagged with ShapeType "circle" whose corner radii
// always span the full box, so it draws as a circle (or ellipse once scaled
// non-uniformly).
func NewCircle(diameter float64) *Object {
	o := NewRect(diameter, diameter)
	o.ShapeType = ShapeCircle
	o.Data.Type = ShapeCircle
	o.RX, o.RY = diameter/2, diameter/2
	o.Locks.UniformScale = true
	return o
}

// NewPolygon creates a polygon from scene-space vertices. The object is
// positioned so each vertex renders exactly where it was given.
func NewPolygon(points []ScenePoint) *Object {
	o := &Object{Kind: KindPolygon}
	objectDefaults(o)
	o.Data.Type = KindPolygon.String()
	o.Points = make([]LocalPoint, len(points))
	for i, p := range points {
		o.Points[i] = LocalPoint(p)
	}
	o.updatePolygonDimensions()
	o.SetCenterPoint(ScenePoint(o.PathOffset))
	return o
}

// NewImage creates an image object of the given pixel size.
func NewImage(src string, width, height float64) *Object {
	o := &Object{Kind: KindImage, Src: src, Width: width, Height: height}
	objectDefaults(o)
	o.Fill = ""
	o.StrokeWidth = 0
	o.Data.Type = KindImage.String()
	return o
}

// Canvas returns the canvas the object belongs to, or nil.
func (o *Object) Canvas() *Canvas {
	return o.canvas
}

// IsCircle reports whether the object is a rect drawn as a circle.
func (o *Object) IsCircle() bool {
	return o.Kind == KindRect && o.ShapeType == ShapeCircle
}

// --- Polygons ---

// polygonBounds returns the bounding box of the raw vertex coordinates.
func polygonBounds(pts []LocalPoint) Rect {
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

// updatePolygonDimensions recomputes Width, Height and PathOffset from the
// vertices without moving the object.
func (o *Object) updatePolygonDimensions() {
	b := polygonBounds(o.Points)
	o.Width, o.Height = b.Width, b.Height
	o.PathOffset = LocalPoint{b.X + b.Width/2, b.Y + b.Height/2}
}

// VertexToScene converts vertex i to scene space, applying the PathOffset
// correction before the object matrix.
func (o *Object) VertexToScene(i int) ScenePoint {
	p := o.Points[i]
	return o.LocalToScene(LocalPoint{p.X - o.PathOffset.X, p.Y - o.PathOffset.Y})
}

// SceneToVertex converts a scene-space point into vertex coordinates
// (the inverse of VertexToScene).
func (o *Object) SceneToVertex(p ScenePoint) LocalPoint {
	l := o.SceneToLocal(p)
	return LocalPoint{l.X + o.PathOffset.X, l.Y + o.PathOffset.Y}
}

// SetVertex moves vertex i to the scene-space point p. The polygon's box
// and PathOffset are recomputed and the object is shifted so every other
// vertex stays where it was in scene space.
func (o *Object) SetVertex(i int, p ScenePoint) {
	if i < 0 || i >= len(o.Points) {
		panic("trellis: vertex index out of range")
	}
	o.Points[i] = o.SceneToVertex(p)
	oldOffset := o.PathOffset
	c := o.CenterPoint()
	o.updatePolygonDimensions()
	// The matrix maps (v - offset); moving the offset by d moves every
	// vertex by -M·d, so shift the center by +M·d to compensate.
	sx, sy := o.ScaleX, o.ScaleY
	if o.FlipX {
		sx = -sx
	}
	if o.FlipY {
		sy = -sy
	}
	lin := rotateMatrix(o.Angle).Multiply(scaleMatrix(sx, sy))
	dx, dy := lin.ApplyVector(o.PathOffset.X-oldOffset.X, o.PathOffset.Y-oldOffset.Y)
	o.SetCenterPoint(c.Add(dx, dy))
}

// --- Snapshot helpers ---

// Fingerprint identifies the geometry that snap points depend on. Two
// equal fingerprints guarantee equal snap points.
type Fingerprint struct {
	Matrix      Matrix
	Width       float64
	Height      float64
	VertexCount int
}

// Fingerprint returns the object's current geometry fingerprint.
func (o *Object) Fingerprint() Fingerprint {
	return Fingerprint{
		Matrix:      o.Matrix(),
		Width:       o.Width,
		Height:      o.Height,
		VertexCount: len(o.Points),
	}
}

// IsOnScreen reports whether the object's bounding box intersects the
// canvas's visible scene area. Objects not on a canvas are never on screen.
func (o *Object) IsOnScreen() bool {
	if o.canvas == nil {
		return false
	}
	return o.BoundingRect().Intersects(o.canvas.VisibleBounds())
}

// controlVisible reports whether handle c is drawn and hit-testable.
func (o *Object) controlVisible(c Control) bool {
	if !o.HasControls {
		return false
	}
	for _, h := range o.Controls.HiddenControls {
		if h == c {
			return false
		}
	}
	return true
}
