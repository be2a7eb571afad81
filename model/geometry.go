package model

import "math"

// Point represents a 2D point
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Rect is an axis-aligned rectangle. In view space the origin is top-left
// and Y grows downward; in PDF page space the origin is bottom-left.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// NewRect creates a rectangle from its origin and size
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// RectFromCorners creates a normalized rectangle from two opposite corners,
// as found in PDF box arrays [x1 y1 x2 y2].
func RectFromCorners(x1, y1, x2, y2 float64) Rect {
	return Rect{
		X:      math.Min(x1, x2),
		Y:      math.Min(y1, y2),
		Width:  math.Abs(x2 - x1),
		Height: math.Abs(y2 - y1),
	}
}

// MinX returns the left edge
func (r Rect) MinX() float64 { return r.X }

// MaxX returns the right edge
func (r Rect) MaxX() float64 { return r.X + r.Width }

// MinY returns the smaller Y edge
func (r Rect) MinY() float64 { return r.Y }

// MaxY returns the larger Y edge
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// Origin returns the rectangle origin
func (r Rect) Origin() Point { return Point{X: r.X, Y: r.Y} }

// IsEmpty returns true if the rectangle has zero area
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Intersects reports whether the two rectangles share a region of non-zero
// area. Rectangles that only touch along an edge do not intersect.
func (r Rect) Intersects(other Rect) bool {
	if r.IsEmpty() || other.IsEmpty() {
		return false
	}
	return r.MinX() < other.MaxX() && other.MinX() < r.MaxX() &&
		r.MinY() < other.MaxY() && other.MinY() < r.MaxY()
}

// Intersection returns the overlapping region, or the zero Rect when the
// rectangles do not intersect.
func (r Rect) Intersection(other Rect) Rect {
	if !r.Intersects(other) {
		return Rect{}
	}
	x := math.Max(r.MinX(), other.MinX())
	y := math.Max(r.MinY(), other.MinY())
	return Rect{
		X:      x,
		Y:      y,
		Width:  math.Min(r.MaxX(), other.MaxX()) - x,
		Height: math.Min(r.MaxY(), other.MaxY()) - y,
	}
}

// Contains checks if a point is inside the rectangle
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX() && p.X <= r.MaxX() &&
		p.Y >= r.MinY() && p.Y <= r.MaxY()
}

// Corners returns the four corners in order (minX,minY), (maxX,minY),
// (maxX,maxY), (minX,maxY).
func (r Rect) Corners() Quad {
	return Quad{
		{r.MinX(), r.MinY()},
		{r.MaxX(), r.MinY()},
		{r.MaxX(), r.MaxY()},
		{r.MinX(), r.MaxY()},
	}
}

// Quad is a quadrilateral, typically a rectangle after an affine transform.
type Quad [4]Point

// Bounds returns the axis-aligned bounding rectangle of the quad
func (q Quad) Bounds() Rect {
	minX, minY := q[0].X, q[0].Y
	maxX, maxY := q[0].X, q[0].Y
	for _, p := range q[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Matrix represents a 2D affine transformation matrix [a b c d tx ty].
// A point maps as x' = a*x + c*y + tx, y' = b*x + d*y + ty.
type Matrix [6]float64

// Identity returns an identity matrix
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// MatrixFromSlice builds a matrix from a 6-element slice. Any other length
// yields the identity and ok=false.
func MatrixFromSlice(v []float64) (Matrix, bool) {
	if len(v) != 6 {
		return Identity(), false
	}
	var m Matrix
	copy(m[:], v)
	return m, true
}

// Transform applies the matrix transformation to a point
func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// TransformRect maps the corners of r through m
func (m Matrix) TransformRect(r Rect) Quad {
	q := r.Corners()
	for i := range q {
		q[i] = m.Transform(q[i])
	}
	return q
}

// Multiply multiplies two matrices.
// m.Multiply(other) applies m first, then other.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		m[0]*other[0] + m[1]*other[2],
		m[0]*other[1] + m[1]*other[3],
		m[2]*other[0] + m[3]*other[2],
		m[2]*other[1] + m[3]*other[3],
		m[4]*other[0] + m[5]*other[2] + other[4],
		m[4]*other[1] + m[5]*other[3] + other[5],
	}
}

// Concat returns m with op applied in m's input space. This is how a
// graphics context composes translate/scale/rotate calls: the most recently
// concatenated operation is the first one applied to a point.
func (m Matrix) Concat(op Matrix) Matrix {
	return op.Multiply(m)
}

// Determinant returns ad - bc
func (m Matrix) Determinant() float64 {
	return m[0]*m[3] - m[1]*m[2]
}

// Translate creates a translation matrix
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// Scale creates a scaling matrix
func Scale(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// Rotate creates a rotation matrix (angle in radians)
func Rotate(angle float64) Matrix {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return Matrix{cos, sin, -sin, cos, 0, 0}
}

// RotateQuarter creates an exact rotation by k quarter turns
// (counterclockwise in a y-up space). Unlike Rotate it carries no
// floating point noise.
func RotateQuarter(k int) Matrix {
	switch ((k % 4) + 4) % 4 {
	case 1:
		return Matrix{0, 1, -1, 0, 0, 0}
	case 2:
		return Matrix{-1, 0, 0, -1, 0, 0}
	case 3:
		return Matrix{0, -1, 1, 0, 0, 0}
	default:
		return Identity()
	}
}

// IsIdentity returns true if the matrix is an identity matrix
func (m Matrix) IsIdentity() bool {
	return m[0] == 1 && m[1] == 0 && m[2] == 0 && m[3] == 1 && m[4] == 0 && m[5] == 0
}

// Inverse returns the inverse matrix. ok is false when m is singular.
func (m Matrix) Inverse() (Matrix, bool) {
	det := m.Determinant()
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return Matrix{}, false
	}
	a := m[3] / det
	b := -m[1] / det
	c := -m[2] / det
	d := m[0] / det
	return Matrix{
		a, b, c, d,
		-(m[4]*a + m[5]*c),
		-(m[4]*b + m[5]*d),
	}, true
}
