package server

import (
	"fmt"
	"image"
	"image/color"
	"net/http"
	"time"

	"gocv.io/x/gocv"

	"github.com/tznthou/day-07-neon-drum/internal/capture"
	"github.com/tznthou/day-07-neon-drum/internal/detector"
)

const streamInterval = 66 * time.Millisecond // ~15 FPS

var gridColor = color.RGBA{R: 0, G: 255, B: 170, A: 0}

// StreamHandler serves the mirrored camera preview as MJPEG, with the
// three-by-three detection grid drawn over the region the detector actually
// samples.
type StreamHandler struct {
	camera capture.Camera
	crop   bool
}

// NewStreamHandler creates a StreamHandler over the given camera. crop must
// match the sampler's crop setting so the overlay lands on the sampled
// region.
func NewStreamHandler(camera capture.Camera, crop bool) *StreamHandler {
	return &StreamHandler{camera: camera, crop: crop}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for {
		select {
		case <-r.Context().Done():
			return
		default:
		}

		frame, err := h.camera.ReadFrame()
		if err != nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		mirrored := gocv.NewMat()
		gocv.Flip(*frame, &mirrored, 1)
		frame.Close()

		h.drawGrid(&mirrored)

		buf, err := gocv.IMEncode(".jpg", mirrored)
		mirrored.Close()
		if err != nil {
			continue
		}

		if !writeMJPEGFrame(w, buf.GetBytes()) {
			buf.Close()
			return
		}
		buf.Close()

		time.Sleep(streamInterval)
	}
}

// drawGrid overlays the detection grid on the mirrored frame. The grid is
// laid out inside the center-crop rectangle so each drawn cell corresponds
// to one detector cell.
func (h *StreamHandler) drawGrid(m *gocv.Mat) {
	region := image.Rect(0, 0, m.Cols(), m.Rows())
	if h.crop {
		region = capture.CenterCrop(m.Cols(), m.Rows(), detector.FrameWidth, detector.FrameHeight)
	}

	gocv.Rectangle(m, region, gridColor, 1)
	for i := 1; i < detector.GridCols; i++ {
		x := region.Min.X + i*region.Dx()/detector.GridCols
		gocv.Line(m, image.Pt(x, region.Min.Y), image.Pt(x, region.Max.Y), gridColor, 1)
	}
	for i := 1; i < detector.GridRows; i++ {
		y := region.Min.Y + i*region.Dy()/detector.GridRows
		gocv.Line(m, image.Pt(region.Min.X, y), image.Pt(region.Max.X, y), gridColor, 1)
	}
}

// DebugStreamHandler serves the annotated detection view as MJPEG. The
// frames are painted by the detection loop; this handler only replays the
// latest snapshot.
type DebugStreamHandler struct {
	view *capture.DebugView
}

// NewDebugStreamHandler creates a DebugStreamHandler over the given view.
func NewDebugStreamHandler(view *capture.DebugView) *DebugStreamHandler {
	return &DebugStreamHandler{view: view}
}

// ServeHTTP streams debug MJPEG frames to connected clients.
func (h *DebugStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for {
		select {
		case <-r.Context().Done():
			return
		default:
		}

		jpeg := h.view.Snapshot()
		if jpeg == nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		if !writeMJPEGFrame(w, jpeg) {
			return
		}

		time.Sleep(streamInterval)
	}
}

// writeMJPEGFrame writes one multipart JPEG frame and flushes it. It
// returns false once the client is gone.
func writeMJPEGFrame(w http.ResponseWriter, jpeg []byte) bool {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return false
	}
	if _, err := w.Write(jpeg); err != nil {
		return false
	}
	fmt.Fprintf(w, "\r\n")

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return true
}
