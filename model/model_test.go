package model

import (
	"math"
	"testing"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func approxPoint(a, b Point) bool {
	return approxEqual(a.X, b.X) && approxEqual(a.Y, b.Y)
}

// ============================================================================
// Point Tests
// ============================================================================

func TestPointDistance(t *testing.T) {
	tests := []struct {
		name     string
		p1, p2   Point
		expected float64
	}{
		{"same point", Point{0, 0}, Point{0, 0}, 0},
		{"horizontal", Point{0, 0}, Point{3, 0}, 3},
		{"vertical", Point{0, 0}, Point{0, 4}, 4},
		{"diagonal 3-4-5", Point{0, 0}, Point{3, 4}, 5},
		{"negative coords", Point{-1, -1}, Point{2, 3}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.p1.Distance(tt.p2)
			if math.Abs(result-tt.expected) > 0.0001 {
				t.Errorf("Distance() = %v, want %v", result, tt.expected)
			}
		})
	}
}

// ============================================================================
// Rect Tests
// ============================================================================

func TestRectFromCorners(t *testing.T) {
	r := RectFromCorners(612, 792, 0, 0)
	if r != (Rect{0, 0, 612, 792}) {
		t.Errorf("RectFromCorners() = %+v", r)
	}
	if r.MaxX() != 612 || r.MaxY() != 792 {
		t.Errorf("MaxX/MaxY = %v, %v", r.MaxX(), r.MaxY())
	}
}

func TestRectIntersects(t *testing.T) {
	base := NewRect(0, 0, 100, 100)

	tests := []struct {
		name  string
		other Rect
		want  bool
	}{
		{"overlap", NewRect(50, 50, 100, 100), true},
		{"inside", NewRect(10, 10, 10, 10), true},
		{"touching edge", NewRect(100, 0, 50, 50), false},
		{"touching corner", NewRect(100, 100, 10, 10), false},
		{"disjoint", NewRect(200, 200, 10, 10), false},
		{"zero width", NewRect(10, 10, 0, 10), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Intersects(tt.other); got != tt.want {
				t.Errorf("Intersects() = %v, want %v", got, tt.want)
			}
			if got := tt.other.Intersects(base); got != tt.want {
				t.Errorf("Intersects() not symmetric")
			}
		})
	}
}

func TestRectIntersection(t *testing.T) {
	a := NewRect(0, 0, 100, 100)
	b := NewRect(50, 25, 100, 50)

	if got := a.Intersection(b); got != NewRect(50, 25, 50, 50) {
		t.Errorf("Intersection() = %+v", got)
	}
	if got := a.Intersection(NewRect(200, 0, 1, 1)); got != (Rect{}) {
		t.Errorf("disjoint Intersection() = %+v, want zero", got)
	}
}

func TestRectContains(t *testing.T) {
	r := NewRect(10, 10, 20, 20)
	if !r.Contains(Point{10, 10}) || !r.Contains(Point{30, 30}) || !r.Contains(Point{15, 25}) {
		t.Error("Contains() should include edges and interior")
	}
	if r.Contains(Point{5, 15}) {
		t.Error("Contains() should exclude outside points")
	}
}

func TestQuadBounds(t *testing.T) {
	q := Quad{{5, 0}, {10, 5}, {5, 10}, {0, 5}}
	if got := q.Bounds(); got != NewRect(0, 0, 10, 10) {
		t.Errorf("Bounds() = %+v", got)
	}
}

// ============================================================================
// Matrix Tests
// ============================================================================

func TestMatrixFromSlice(t *testing.T) {
	tests := []struct {
		name   string
		in     []float64
		want   Matrix
		wantOK bool
	}{
		{"six values", []float64{1, 2, 3, 4, 5, 6}, Matrix{1, 2, 3, 4, 5, 6}, true},
		{"nil", nil, Identity(), false},
		{"too short", []float64{1, 2, 3}, Identity(), false},
		{"too long", []float64{1, 0, 0, 1, 0, 0, 0}, Identity(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatrixFromSlice(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("MatrixFromSlice() = %v, %v; want %v, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestMatrixMultiplyOrder(t *testing.T) {
	m := Translate(10, 0).Multiply(Scale(2, 2))
	if got := m.Transform(Point{1, 1}); !approxPoint(got, Point{22, 2}) {
		t.Errorf("translate then scale: %v, want (22, 2)", got)
	}

	c := Identity().Concat(Translate(10, 0)).Concat(Scale(2, 2))
	if got := c.Transform(Point{1, 1}); !approxPoint(got, Point{12, 2}) {
		t.Errorf("concat: %v, want (12, 2)", got)
	}
}

func TestMatrixTransformRect(t *testing.T) {
	m := Matrix{10, 0, 0, 10, 72, 700}
	q := m.TransformRect(NewRect(0, 0, 5, 1))

	want := Quad{{72, 700}, {122, 700}, {122, 710}, {72, 710}}
	for i := range q {
		if !approxPoint(q[i], want[i]) {
			t.Errorf("corner %d = %v, want %v", i, q[i], want[i])
		}
	}
}

func TestRotateQuarter(t *testing.T) {
	for k := -4; k <= 4; k++ {
		exact := RotateQuarter(k)
		approx := Rotate(float64(k) * math.Pi / 2)
		for i := range exact {
			if !approxEqual(exact[i], approx[i]) {
				t.Errorf("RotateQuarter(%d) = %v, Rotate = %v", k, exact, approx)
				break
			}
		}
	}
	if got := RotateQuarter(1).Transform(Point{1, 0}); got != (Point{0, 1}) {
		t.Errorf("quarter turn of (1,0) = %v, want (0,1)", got)
	}
}

func TestMatrixInverse(t *testing.T) {
	m := Identity().Concat(Translate(30, -4)).Concat(Scale(2, 3)).Concat(RotateQuarter(1))
	inv, ok := m.Inverse()
	if !ok {
		t.Fatal("Inverse() not ok")
	}
	p := Point{7, 11}
	if got := inv.Transform(m.Transform(p)); !approxPoint(got, p) {
		t.Errorf("round trip = %v, want %v", got, p)
	}
	id := m.Multiply(inv)
	for i, v := range Identity() {
		if !approxEqual(id[i], v) {
			t.Errorf("m * inv = %v, want identity", id)
			break
		}
	}

	if _, ok := Scale(0, 1).Inverse(); ok {
		t.Error("singular matrix should not invert")
	}
}

func TestMatrixDeterminant(t *testing.T) {
	if d := Scale(2, 3).Determinant(); d != 6 {
		t.Errorf("Determinant() = %v, want 6", d)
	}
	if d := Scale(1, -1).Determinant(); d != -1 {
		t.Errorf("flip Determinant() = %v, want -1", d)
	}
}

// ============================================================================
// Rotation Tests
// ============================================================================

func TestNormalizeRotation(t *testing.T) {
	tests := []struct {
		in     int
		want   Rotation
		wantOK bool
	}{
		{0, Rotate0, true},
		{90, Rotate90, true},
		{180, Rotate180, true},
		{270, Rotate270, true},
		{360, Rotate0, true},
		{450, Rotate90, true},
		{-90, Rotate270, true},
		{-180, Rotate180, true},
		{-450, Rotate270, true},
		{45, Rotate0, false},
		{-30, Rotate0, false},
	}

	for _, tt := range tests {
		got, ok := NormalizeRotation(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("NormalizeRotation(%d) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestRotationAccessors(t *testing.T) {
	if Rotate270.Degrees() != 270 || Rotate270.String() != "270°" {
		t.Errorf("Rotate270 = %d, %s", Rotate270.Degrees(), Rotate270)
	}
	if !Rotate90.SwapsAxes() || Rotate180.SwapsAxes() {
		t.Error("SwapsAxes() wrong")
	}
}
