// Package model provides the geometric primitives shared by the layout,
// search and rendering packages.
//
// # Coordinate Spaces
//
// Three spaces appear throughout the module:
//
//   - PDF page space: origin at the bottom-left of the media box, Y up
//   - view space: the scrolling document view, origin top-left, Y down
//   - device space: pixels of a tile or rendered image
//
// A [Matrix] maps between them. Matrices use the PDF layout [a b c d tx ty]
// and compose left to right with [Matrix.Multiply]:
//
//	m := model.Translate(10, 0).Multiply(model.Scale(2, 2))
//	p := m.Transform(model.Point{X: 1, Y: 1}) // (22, 2)
//
// [Matrix.Concat] composes the other way, the way a graphics context
// accumulates translate, scale and rotate calls.
//
// # Rotation
//
// [Rotation] holds a page rotation normalized to a quarter turn;
// [NormalizeRotation] maps raw /Rotate values onto it.
package model
