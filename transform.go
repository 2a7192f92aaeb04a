package trellis

import "math"

// Matrix is a 2D affine transform [a, b, c, d, e, f]:
//
//	| a  c  e |
//	| b  d  f |
//	| 0  0  1 |
type Matrix [6]float64

// IdentityMatrix is the identity affine matrix.
var IdentityMatrix = Matrix{1, 0, 0, 1, 0, 0}

// Multiply returns m * other: other is applied first, then m.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		m[0]*other[0] + m[2]*other[1],
		m[1]*other[0] + m[3]*other[1],
		m[0]*other[2] + m[2]*other[3],
		m[1]*other[2] + m[3]*other[3],
		m[0]*other[4] + m[2]*other[5] + m[4],
		m[1]*other[4] + m[3]*other[5] + m[5],
	}
}

// Determinant returns the determinant of the linear part.
func (m Matrix) Determinant() float64 {
	return m[0]*m[3] - m[2]*m[1]
}

// Invertible reports whether the matrix has a usable inverse.
func (m Matrix) Invertible() bool {
	det := m.Determinant()
	return !(det > -1e-12 && det < 1e-12) && !math.IsNaN(det) && !math.IsInf(det, 0)
}

// Invert returns the inverse of m.
// Returns the identity matrix if m is singular (determinant ≈ 0).
func (m Matrix) Invert() Matrix {
	if !m.Invertible() {
		return IdentityMatrix
	}
	invDet := 1.0 / m.Determinant()
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Matrix{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// Apply transforms the point (x, y).
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// ApplyVector transforms the direction (dx, dy), ignoring translation.
func (m Matrix) ApplyVector(dx, dy float64) (float64, float64) {
	return m[0]*dx + m[2]*dy, m[1]*dx + m[3]*dy
}

// translateMatrix returns a translation matrix.
func translateMatrix(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// rotateMatrix returns a rotation matrix for an angle in degrees
// (clockwise on screen, since Y grows downward).
func rotateMatrix(degrees float64) Matrix {
	sin, cos := sincosDegrees(degrees)
	return Matrix{cos, sin, -sin, cos, 0, 0}
}

// scaleMatrix returns a scale matrix.
func scaleMatrix(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// sincosDegrees returns exact values for multiples of 90° so axis-aligned
// objects do not pick up 1e-17 noise that would break equality snapping.
func sincosDegrees(degrees float64) (sin, cos float64) {
	d := math.Mod(degrees, 360)
	if d < 0 {
		d += 360
	}
	switch d {
	case 0:
		return 0, 1
	case 90:
		return 1, 0
	case 180:
		return 0, -1
	case 270:
		return -1, 0
	}
	return math.Sincos(d * math.Pi / 180)
}

// rotateVector rotates (x, y) by degrees.
func rotateVector(x, y, degrees float64) (float64, float64) {
	sin, cos := sincosDegrees(degrees)
	return cos*x - sin*y, sin*x + cos*y
}

// isRightAngle reports whether degrees is a multiple of 90.
func isRightAngle(degrees float64) bool {
	r := math.Mod(degrees, 90)
	return math.Abs(r) < 1e-9 || math.Abs(math.Abs(r)-90) < 1e-9
}

// --- Object transforms ---

// Matrix returns the object's full transform from local space to scene space:
//
//	Translate(center) * Rotate(Angle) * Scale(±ScaleX, ±ScaleY)
//
// where the signs come from FlipX/FlipY. Local space is centered on the
// object, so (±Width/2, ±Height/2) are its corners.
func (o *Object) Matrix() Matrix {
	c := o.CenterPoint()
	sx, sy := o.ScaleX, o.ScaleY
	if o.FlipX {
		sx = -sx
	}
	if o.FlipY {
		sy = -sy
	}
	return translateMatrix(c.X, c.Y).Multiply(rotateMatrix(o.Angle)).Multiply(scaleMatrix(sx, sy))
}

// LocalToScene converts a point in the object's local space to scene space.
func (o *Object) LocalToScene(p LocalPoint) ScenePoint {
	x, y := o.Matrix().Apply(p.X, p.Y)
	return ScenePoint{x, y}
}

// SceneToLocal converts a scene-space point into the object's local space.
func (o *Object) SceneToLocal(p ScenePoint) LocalPoint {
	x, y := o.Matrix().Invert().Apply(p.X, p.Y)
	return LocalPoint{x, y}
}

// ScaledWidth returns the object's width in scene units.
func (o *Object) ScaledWidth() float64 {
	return o.Width * math.Abs(o.ScaleX)
}

// ScaledHeight returns the object's height in scene units.
func (o *Object) ScaledHeight() float64 {
	return o.Height * math.Abs(o.ScaleY)
}

// CenterPoint returns the object's geometric center in scene space,
// whatever its origin convention.
func (o *Object) CenterPoint() ScenePoint {
	dx := -o.OriginX.offset() * o.ScaledWidth()
	dy := -o.OriginY.offset() * o.ScaledHeight()
	rx, ry := rotateVector(dx, dy, o.Angle)
	return ScenePoint{o.Left + rx, o.Top + ry}
}

// SetCenterPoint moves the object so its geometric center lands on p,
// keeping its current origin convention.
func (o *Object) SetCenterPoint(p ScenePoint) {
	o.SetPositionByOrigin(p, OriginCenterX, OriginCenterY)
}

// PointByOrigin returns the scene position of the given origin point of the
// object's rotated frame. Flip does not move origins.
func (o *Object) PointByOrigin(ox OriginX, oy OriginY) ScenePoint {
	c := o.CenterPoint()
	rx, ry := rotateVector(ox.offset()*o.ScaledWidth(), oy.offset()*o.ScaledHeight(), o.Angle)
	return ScenePoint{c.X + rx, c.Y + ry}
}

// SetPositionByOrigin places the object so the point named by (ox, oy)
// lands on p, then rewrites Left/Top for the object's own origin.
func (o *Object) SetPositionByOrigin(p ScenePoint, ox OriginX, oy OriginY) {
	rx, ry := rotateVector(-ox.offset()*o.ScaledWidth(), -oy.offset()*o.ScaledHeight(), o.Angle)
	center := ScenePoint{p.X + rx, p.Y + ry}
	lx, ly := rotateVector(o.OriginX.offset()*o.ScaledWidth(), o.OriginY.offset()*o.ScaledHeight(), o.Angle)
	o.Left = center.X + lx
	o.Top = center.Y + ly
}

// Corners holds an object's four visual corners in scene space. The names
// describe the unmirrored frame: flipping an object permutes which local
// vertex sits at which corner but not where the corners are.
type Corners struct {
	TL, TR, BR, BL ScenePoint
}

// Corners returns the rotation-aware bounding corners of the object.
func (o *Object) Corners() Corners {
	c := o.CenterPoint()
	hw, hh := o.ScaledWidth()/2, o.ScaledHeight()/2
	at := func(sx, sy float64) ScenePoint {
		x, y := rotateVector(sx*hw, sy*hh, o.Angle)
		return ScenePoint{c.X + x, c.Y + y}
	}
	return Corners{
		TL: at(-1, -1),
		TR: at(1, -1),
		BR: at(1, 1),
		BL: at(-1, 1),
	}
}

// visualPoint returns the scene position of a handle named in the
// unmirrored frame (see Control.flipped).
func (o *Object) visualPoint(c Control) ScenePoint {
	sx, sy := c.signs()
	center := o.CenterPoint()
	x, y := rotateVector(sx*o.ScaledWidth()/2, sy*o.ScaledHeight()/2, o.Angle)
	return ScenePoint{center.X + x, center.Y + y}
}

// ControlPosition returns where the handle c is drawn, in scene space. c is
// named in the local frame, so under FlipX the "tl" handle sits top-right.
func (o *Object) ControlPosition(c Control) ScenePoint {
	return o.visualPoint(c.flipped(o.FlipX, o.FlipY))
}

// BoundingRect returns the scene-space axis-aligned box around the object's
// rotated corners.
func (o *Object) BoundingRect() Rect {
	k := o.Corners()
	return boundsOf(k.TL, k.TR, k.BR, k.BL)
}
