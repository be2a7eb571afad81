// Package geometry lays pages out in a vertically scrolling document view and
// computes the transforms that map PDF page space into that view.
//
// Pages are stacked top to bottom with no gaps, each scaled so its displayed
// width fills the view. Page rotations of 0, 90, 180 and 270 degrees are
// supported; the crop box is the visible page area.
//
//	layout := geometry.ComputePageFrames(boxes, 1024)
//	frame, _ := layout.Frame(1)
//	plan, _ := geometry.PageDrawTransform(boxes[0], frame.Rect)
//	quad, ok := plan.HighlightQuad(run.Transform(), startX, endX, run.Height())
package geometry
