package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/tsawler/pdfview/model"
)

const eps = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func nearPoint(a, b model.Point) bool {
	return near(a.X, b.X) && near(a.Y, b.Y)
}

func nearRect(a, b model.Rect) bool {
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Width, b.Width) && near(a.Height, b.Height)
}

// ============================================================================
// Layout Tests
// ============================================================================

func TestComputePageFrames(t *testing.T) {
	boxes := []PageBox{
		{CropBox: model.NewRect(0, 0, 612, 792)},
		{CropBox: model.NewRect(0, 0, 612, 792), Rotation: 90},
		{CropBox: model.NewRect(10, 20, 300, 300), Rotation: -90},
		{CropBox: model.NewRect(0, 0, 400, 200), Rotation: 180},
	}

	layout := ComputePageFrames(boxes, 1224)

	if layout.NumPages() != 4 {
		t.Fatalf("NumPages() = %d, want 4", layout.NumPages())
	}
	if len(layout.Warnings) != 0 {
		t.Errorf("unexpected warnings: %s", FormatWarnings(layout.Warnings))
	}

	wantHeights := []float64{1584, 1224 * 612.0 / 792.0, 1224, 612}
	y := 0.0
	sum := 0.0
	for i, f := range layout.Frames {
		if f.Page != i+1 {
			t.Errorf("frame %d Page = %d", i, f.Page)
		}
		if !near(f.Rect.Y, y) {
			t.Errorf("frame %d Y = %v, want %v", i, f.Rect.Y, y)
		}
		if !near(f.Rect.Width, 1224) || f.Rect.X != 0 {
			t.Errorf("frame %d = %+v, want full width at x=0", i, f.Rect)
		}
		if !near(f.Rect.Height, wantHeights[i]) {
			t.Errorf("frame %d Height = %v, want %v", i, f.Rect.Height, wantHeights[i])
		}
		y = f.Rect.MaxY()
		sum += f.Rect.Height
	}

	if !near(layout.ContentHeight, sum) {
		t.Errorf("ContentHeight = %v, want %v", layout.ContentHeight, sum)
	}
	w, h := layout.ContentSize()
	if w != 1224 || !near(h, sum) {
		t.Errorf("ContentSize() = %v, %v", w, h)
	}
}

func TestComputePageFramesDegenerate(t *testing.T) {
	boxes := []PageBox{
		{CropBox: model.NewRect(0, 0, 100, 100)},
		{CropBox: model.NewRect(0, 0, 0, 100)},
		{CropBox: model.NewRect(0, 0, 100, 0), Rotation: 90},
		{CropBox: model.NewRect(0, 0, 100, 50)},
	}

	layout := ComputePageFrames(boxes, 200)

	if layout.NumPages() != 4 {
		t.Fatalf("NumPages() = %d, want 4", layout.NumPages())
	}
	for _, i := range []int{1, 2} {
		f := layout.Frames[i]
		if !f.Degraded || f.Rect.Height != 0 {
			t.Errorf("frame %d = %+v, want degraded zero height", i, f)
		}
	}
	if len(layout.Warnings) != 2 {
		t.Errorf("len(Warnings) = %d, want 2", len(layout.Warnings))
	}
	if layout.Frames[3].Rect.Y != 200 || layout.ContentHeight != 300 {
		t.Errorf("last frame = %+v, content height %v", layout.Frames[3].Rect, layout.ContentHeight)
	}
}

func TestComputePageFramesInvalidRotation(t *testing.T) {
	layout := ComputePageFrames([]PageBox{{CropBox: model.NewRect(0, 0, 100, 200), Rotation: 45}}, 100)

	if len(layout.Warnings) != 1 || layout.Warnings[0].Page != 1 {
		t.Fatalf("Warnings = %v", layout.Warnings)
	}
	if layout.Frames[0].Rect.Height != 200 {
		t.Errorf("Height = %v, want unrotated 200", layout.Frames[0].Rect.Height)
	}
}

func TestComputePageFramesEmpty(t *testing.T) {
	layout := ComputePageFrames(nil, 500)
	if layout.NumPages() != 0 || layout.ContentHeight != 0 {
		t.Errorf("layout = %+v, want empty", layout)
	}
	if _, err := layout.Frame(1); !errors.Is(err, ErrPageOutOfRange) {
		t.Errorf("Frame(1) error = %v, want ErrPageOutOfRange", err)
	}
}

func TestLayoutFrame(t *testing.T) {
	layout := ComputePageFrames([]PageBox{
		{CropBox: model.NewRect(0, 0, 100, 100)},
		{CropBox: model.NewRect(0, 0, 100, 100)},
	}, 100)

	tests := []struct {
		page    int
		wantErr bool
	}{
		{0, true},
		{1, false},
		{2, false},
		{3, true},
		{-1, true},
	}
	for _, tt := range tests {
		f, err := layout.Frame(tt.page)
		if (err != nil) != tt.wantErr {
			t.Errorf("Frame(%d) error = %v, wantErr %v", tt.page, err, tt.wantErr)
			continue
		}
		if err == nil && f.Page != tt.page {
			t.Errorf("Frame(%d).Page = %d", tt.page, f.Page)
		}
	}
}

func TestLayoutIntersecting(t *testing.T) {
	boxes := make([]PageBox, 5)
	for i := range boxes {
		boxes[i] = PageBox{CropBox: model.NewRect(0, 0, 100, 100)}
	}
	layout := ComputePageFrames(boxes, 100)

	tests := []struct {
		name string
		clip model.Rect
		want []int
	}{
		{"first page", model.NewRect(0, 0, 100, 50), []int{1}},
		{"straddles", model.NewRect(0, 150, 100, 100), []int{2, 3}},
		{"edge only", model.NewRect(0, 100, 100, 100), []int{2}},
		{"below content", model.NewRect(0, 600, 100, 100), nil},
		{"everything", model.NewRect(-10, -10, 200, 1000), []int{1, 2, 3, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := layout.Intersecting(tt.clip)
			if len(got) != len(tt.want) {
				t.Fatalf("Intersecting() returned %d frames, want %d", len(got), len(tt.want))
			}
			for i, f := range got {
				if f.Page != tt.want[i] {
					t.Errorf("frame %d Page = %d, want %d", i, f.Page, tt.want[i])
				}
			}
		})
	}

	if p, ok := layout.PageAt(250); !ok || p != 3 {
		t.Errorf("PageAt(250) = %d, %v", p, ok)
	}
	if _, ok := layout.PageAt(500); ok {
		t.Error("PageAt(500) should be past the end")
	}
}

// ============================================================================
// Transform Tests
// ============================================================================

func TestRotationCorrectionCorners(t *testing.T) {
	const w, h = 200.0, 100.0

	tests := []struct {
		rot  model.Rotation
		from model.Point
		want model.Point
	}{
		{model.Rotate0, model.Point{X: 0, Y: 0}, model.Point{X: 0, Y: h}},
		{model.Rotate0, model.Point{X: 0, Y: h}, model.Point{X: 0, Y: 0}},
		{model.Rotate0, model.Point{X: w, Y: 0}, model.Point{X: w, Y: h}},
		{model.Rotate90, model.Point{X: 0, Y: 0}, model.Point{X: 0, Y: 0}},
		{model.Rotate90, model.Point{X: 0, Y: h}, model.Point{X: h, Y: 0}},
		{model.Rotate90, model.Point{X: w, Y: 0}, model.Point{X: 0, Y: w}},
		{model.Rotate180, model.Point{X: 0, Y: 0}, model.Point{X: w, Y: 0}},
		{model.Rotate180, model.Point{X: w, Y: h}, model.Point{X: 0, Y: h}},
		{model.Rotate270, model.Point{X: 0, Y: 0}, model.Point{X: h, Y: w}},
		{model.Rotate270, model.Point{X: 0, Y: h}, model.Point{X: 0, Y: w}},
		{model.Rotate270, model.Point{X: w, Y: 0}, model.Point{X: h, Y: 0}},
	}

	for _, tt := range tests {
		got := RotationCorrection(tt.rot, w, h).Transform(tt.from)
		if !nearPoint(got, tt.want) {
			t.Errorf("%v: %v -> %v, want %v", tt.rot, tt.from, got, tt.want)
		}
	}
}

func TestPageDrawTransformFillsFrame(t *testing.T) {
	crop := model.NewRect(36, 48, 540, 720)

	for _, deg := range []int{0, 90, 180, 270, -90, 450} {
		box := PageBox{CropBox: crop, Rotation: deg}
		layout := ComputePageFrames([]PageBox{box, box}, 800)
		frame := layout.Frames[1]

		plan, err := PageDrawTransform(box, frame.Rect)
		if err != nil {
			t.Fatalf("rotation %d: %v", deg, err)
		}

		if got := plan.ClipQuad().Bounds(); !nearRect(got, frame.Rect) {
			t.Errorf("rotation %d: clip bounds %+v, want %+v", deg, got, frame.Rect)
		}

		// The crop box in page space lands on the same rectangle.
		if got := plan.Content.TransformRect(crop).Bounds(); !nearRect(got, frame.Rect) {
			t.Errorf("rotation %d: crop bounds %+v, want %+v", deg, got, frame.Rect)
		}
	}
}

func TestPageDrawTransformOrigin(t *testing.T) {
	crop := model.NewRect(10, 20, 100, 200)
	frame := model.NewRect(0, 50, 50, 100)

	plan, err := PageDrawTransform(PageBox{CropBox: crop}, frame)
	if err != nil {
		t.Fatal(err)
	}
	if plan.Scale != 0.5 {
		t.Errorf("Scale = %v, want 0.5", plan.Scale)
	}

	// Top-left of the crop box is the frame origin.
	if got := plan.Content.Transform(model.Point{X: 10, Y: 220}); !nearPoint(got, model.Point{X: 0, Y: 50}) {
		t.Errorf("top-left -> %v, want (0, 50)", got)
	}
	// Bottom-right is the far corner.
	if got := plan.Content.Transform(model.Point{X: 110, Y: 20}); !nearPoint(got, model.Point{X: 50, Y: 150}) {
		t.Errorf("bottom-right -> %v, want (50, 150)", got)
	}
}

func TestPageDrawTransformDegenerate(t *testing.T) {
	_, err := PageDrawTransform(PageBox{CropBox: model.NewRect(0, 0, 0, 100)}, model.NewRect(0, 0, 100, 0))
	if !errors.Is(err, ErrDegenerateCropBox) {
		t.Errorf("error = %v, want ErrDegenerateCropBox", err)
	}
}

func TestHighlightQuad(t *testing.T) {
	crop := model.NewRect(0, 0, 612, 792)
	frame := model.NewRect(0, 0, 612, 792)
	plan, err := PageDrawTransform(PageBox{CropBox: crop}, frame)
	if err != nil {
		t.Fatal(err)
	}

	run := model.Matrix{10, 0, 0, 10, 72, 700}
	q, ok := plan.HighlightQuad(run, 40, 90, 10)
	if !ok {
		t.Fatal("HighlightQuad() not ok")
	}

	// Page space x [112, 162], y [700, 710]; flipped into view space.
	want := model.NewRect(112, 792-710, 50, 10)
	if got := q.Bounds(); !nearRect(got, want) {
		t.Errorf("bounds = %+v, want %+v", got, want)
	}

	if _, ok := plan.HighlightQuad(run, 0, 10, 0); ok {
		t.Error("zero height run should not be highlightable")
	}
}

func TestHighlightQuadRotatedRun(t *testing.T) {
	plan, err := PageDrawTransform(PageBox{CropBox: model.NewRect(0, 0, 100, 100)}, model.NewRect(0, 0, 100, 100))
	if err != nil {
		t.Fatal(err)
	}

	// Text running up the page.
	run := model.Matrix{0, 10, -10, 0, 50, 10}
	q, ok := plan.HighlightQuad(run, 0, 20, 10)
	if !ok {
		t.Fatal("not ok")
	}
	want := model.NewRect(40, 100-30, 10, 20)
	if got := q.Bounds(); !nearRect(got, want) {
		t.Errorf("bounds = %+v, want %+v", got, want)
	}
}

func TestViewToDevice(t *testing.T) {
	clip := model.NewRect(100, 200, 50, 50)
	m := ViewToDevice(clip, 4)

	if got := m.Transform(model.Point{X: 100, Y: 200}); !nearPoint(got, model.Point{}) {
		t.Errorf("clip origin -> %v", got)
	}
	if got := m.Transform(model.Point{X: 150, Y: 250}); !nearPoint(got, model.Point{X: 200, Y: 200}) {
		t.Errorf("clip corner -> %v", got)
	}
}

func TestComputePageFramesNoViewWidth(t *testing.T) {
	boxes := []PageBox{{CropBox: model.NewRect(0, 0, 100, 100)}}
	for _, w := range []float64{0, -5, math.NaN()} {
		layout := ComputePageFrames(boxes, w)
		if layout.NumPages() != 0 || layout.ContentHeight != 0 {
			t.Errorf("width %v: layout = %+v, want empty", w, layout)
		}
	}
}
