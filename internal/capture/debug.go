package capture

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"

	"github.com/tznthou/day-07-neon-drum/internal/detector"
)

// DebugView renders the detector's downsampled frame with cell borders,
// trigger highlights and per-cell brightness values, and keeps the latest
// annotated frame as JPEG for the diagnostics stream. Purely observational;
// it never feeds anything back into detection.
type DebugView struct {
	scale int

	mu   sync.Mutex
	jpeg []byte
}

var (
	gridColor      = color.RGBA{0, 255, 140, 0}
	triggerColor   = color.RGBA{255, 40, 180, 0}
	brightnessText = color.RGBA{255, 255, 255, 0}
)

// NewDebugView creates a view that upscales the detection frame by the
// given integer factor (values below 1 mean no upscaling).
func NewDebugView(scale int) *DebugView {
	if scale < 1 {
		scale = 1
	}
	return &DebugView{scale: scale}
}

// Paint implements detector.DebugSink.
func (v *DebugView) Paint(frame *detector.Frame, cells [detector.GridCells]detector.CellDebug) {
	// The detector hands us RGB; OpenCV wants BGR.
	bgr := make([]uint8, len(frame.Pix))
	for i := 0; i < len(frame.Pix); i += 3 {
		bgr[i], bgr[i+1], bgr[i+2] = frame.Pix[i+2], frame.Pix[i+1], frame.Pix[i]
	}

	mat, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC3, bgr)
	if err != nil {
		return
	}
	defer mat.Close()

	w := frame.Width * v.scale
	h := frame.Height * v.scale

	canvas := gocv.NewMat()
	defer canvas.Close()
	gocv.Resize(mat, &canvas, image.Pt(w, h), 0, 0, gocv.InterpolationNearestNeighbor)

	// Cell borders.
	for c := 1; c < detector.GridCols; c++ {
		x := c * w / detector.GridCols
		gocv.Line(&canvas, image.Pt(x, 0), image.Pt(x, h), gridColor, 1)
	}
	for r := 1; r < detector.GridRows; r++ {
		y := r * h / detector.GridRows
		gocv.Line(&canvas, image.Pt(0, y), image.Pt(w, y), gridColor, 1)
	}

	for i, cell := range cells {
		col, row := i%detector.GridCols, i/detector.GridCols
		x0 := col * w / detector.GridCols
		y0 := row * h / detector.GridRows
		x1 := (col + 1) * w / detector.GridCols
		y1 := (row + 1) * h / detector.GridRows

		if cell.Triggered {
			gocv.Rectangle(&canvas, image.Rect(x0, y0, x1, y1), triggerColor, 2)
		}

		text := fmt.Sprintf("%.0f", cell.Brightness)
		gocv.PutText(&canvas, text, image.Pt(x0+4, y1-6), gocv.FontHersheyPlain, 0.9, brightnessText, 1)
	}

	buf, err := gocv.IMEncode(".jpg", canvas)
	if err != nil {
		return
	}
	defer buf.Close()

	encoded := make([]byte, buf.Len())
	copy(encoded, buf.GetBytes())

	v.mu.Lock()
	v.jpeg = encoded
	v.mu.Unlock()
}

// Snapshot returns the most recent annotated frame as JPEG, or nil if
// nothing has been painted yet.
func (v *DebugView) Snapshot() []byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.jpeg
}
