package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/tsawler/pdfview/model"
)

// ErrDegenerateCropBox is returned when a page cannot be scaled into its
// frame.
var ErrDegenerateCropBox = errors.New("geometry: degenerate crop box")

// rotationSteps holds, per rotation, the operations concatenated onto the
// scaled frame transform, in call order. w and h are the crop box size.
// Each entry maps crop-relative PDF space (y up) onto the display rectangle
// of the page (y down).
var rotationSteps = [...]func(w, h float64) []model.Matrix{
	model.Rotate0: func(w, h float64) []model.Matrix {
		return []model.Matrix{model.Translate(0, h), model.Scale(1, -1)}
	},
	model.Rotate90: func(w, h float64) []model.Matrix {
		return []model.Matrix{model.Scale(1, -1), model.RotateQuarter(-1)}
	},
	model.Rotate180: func(w, h float64) []model.Matrix {
		return []model.Matrix{model.Scale(1, -1), model.Translate(w, 0), model.RotateQuarter(2)}
	},
	model.Rotate270: func(w, h float64) []model.Matrix {
		return []model.Matrix{model.Translate(h, w), model.RotateQuarter(1), model.Scale(-1, 1)}
	},
}

// RotationCorrection returns the matrix mapping crop-relative page space
// onto the unscaled display rectangle for rotation r.
func RotationCorrection(r model.Rotation, w, h float64) model.Matrix {
	m := model.Identity()
	for _, step := range rotationSteps[r](w, h) {
		m = m.Concat(step)
	}
	return m
}

// PagePlan is everything needed to draw one page into its frame.
type PagePlan struct {
	Rotation model.Rotation
	Scale    float64

	// Clip maps ClipRect (crop-relative page units) to view space. The
	// region should be filled white before drawing content.
	Clip     model.Matrix
	ClipRect model.Rect

	// Content maps PDF page space to view space.
	Content model.Matrix
}

// PageDrawTransform computes the transforms for drawing a page into frame.
// The composition, in graphics-context call order, is: translate to the
// frame origin, scale by frame width over displayed width, apply the
// rotation correction, clip to the crop box, then translate by the negated
// crop box origin for content.
func PageDrawTransform(box PageBox, frame model.Rect) (PagePlan, error) {
	rot, _ := box.Rotation90()
	w, h := box.CropBox.Width, box.CropBox.Height

	dispW, _ := box.DisplaySize()
	scale := frame.Width / dispW
	if dispW <= 0 || math.IsInf(scale, 0) || math.IsNaN(scale) {
		return PagePlan{}, fmt.Errorf("%w: %gx%g", ErrDegenerateCropBox, w, h)
	}

	ctm := model.Identity().
		Concat(model.Translate(frame.X, frame.Y)).
		Concat(model.Scale(scale, scale)).
		Concat(RotationCorrection(rot, w, h))

	return PagePlan{
		Rotation: rot,
		Scale:    scale,
		Clip:     ctm,
		ClipRect: model.Rect{Width: w, Height: h},
		Content:  ctm.Concat(model.Translate(-box.CropBox.X, -box.CropBox.Y)),
	}, nil
}

// ClipQuad returns the crop box in view space
func (p PagePlan) ClipQuad() model.Quad {
	return p.Clip.TransformRect(p.ClipRect)
}

// HighlightQuad maps a highlighted span of a run into view space. The span
// is given in text-space units along the run: the unit rectangle
// [startX/height, endX/height] x [0, 1] is mapped by the run transform
// and then by the page content transform. A run with zero height cannot be
// highlighted.
func (p PagePlan) HighlightQuad(run model.Matrix, startX, endX, height float64) (model.Quad, bool) {
	if height == 0 || math.IsNaN(height) {
		return model.Quad{}, false
	}
	unit := model.Rect{
		X:      startX / height,
		Y:      0,
		Width:  (endX - startX) / height,
		Height: 1,
	}
	return run.Multiply(p.Content).TransformRect(unit), true
}

// ViewToDevice maps view space inside clip onto device pixels at zoom.
func ViewToDevice(clip model.Rect, zoom float64) model.Matrix {
	return model.Translate(-clip.X, -clip.Y).Multiply(model.Scale(zoom, zoom))
}

// WithDevice returns the plan with every transform followed by device.
func (p PagePlan) WithDevice(device model.Matrix) PagePlan {
	p.Clip = p.Clip.Multiply(device)
	p.Content = p.Content.Multiply(device)
	return p
}
