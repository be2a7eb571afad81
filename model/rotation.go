package model

import "fmt"

// Rotation is a page rotation normalized to a quarter turn. PDF rotations
// are clockwise when the page is displayed.
type Rotation int

const (
	Rotate0 Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

// NormalizeRotation maps any /Rotate value to a Rotation. Negative values
// count counterclockwise, so -90 becomes Rotate270. Values that are not a
// multiple of 90 are invalid in PDF; they map to Rotate0 and ok=false.
func NormalizeRotation(degrees int) (r Rotation, ok bool) {
	if degrees%90 != 0 {
		return Rotate0, false
	}
	d := ((degrees % 360) + 360) % 360
	return Rotation(d / 90), true
}

// Degrees returns the rotation in degrees (0, 90, 180 or 270)
func (r Rotation) Degrees() int {
	return int(r) * 90
}

// SwapsAxes reports whether the displayed page has its width and height
// exchanged relative to the crop box.
func (r Rotation) SwapsAxes() bool {
	return r == Rotate90 || r == Rotate270
}

// String returns the rotation as "0°", "90°", ...
func (r Rotation) String() string {
	return fmt.Sprintf("%d°", r.Degrees())
}
