package capture

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/tznthou/day-07-neon-drum/internal/detector"
)

// FrameSampler renders camera frames into the detector's small RGB buffer.
// Each Sample call reads one frame, mirrors it horizontally so the on-screen
// image behaves like a mirror, optionally center-crops it to the grid's
// aspect ratio, and downsamples to the target size.
//
// The crop matters when the camera's native aspect ratio differs from the
// grid's (a 16:9 camera against the 4:3 grid): stretching the full frame
// would misregister the detection cells against any on-screen overlay that
// crops to fill. Cropping keeps both views of the scene aligned, so it is
// the default.
type FrameSampler struct {
	camera Camera
	crop   bool
	mu     sync.Mutex
}

// NewFrameSampler creates a sampler over the given camera. When crop is
// true, frames are center-cropped to the destination aspect ratio before
// downsampling.
func NewFrameSampler(camera Camera, crop bool) *FrameSampler {
	return &FrameSampler{camera: camera, crop: crop}
}

// Sample implements detector.Sampler. Any capture or conversion failure is
// returned as-is; the detector treats it as a skipped frame.
func (s *FrameSampler) Sample(dst *detector.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	frame, err := s.camera.ReadFrame()
	if err != nil {
		return err
	}
	defer frame.Close()

	mirrored := gocv.NewMat()
	defer mirrored.Close()
	gocv.Flip(*frame, &mirrored, 1) // around the vertical axis

	src := mirrored
	if s.crop {
		r := CenterCrop(mirrored.Cols(), mirrored.Rows(), dst.Width, dst.Height)
		if r.Dx() < mirrored.Cols() || r.Dy() < mirrored.Rows() {
			region := mirrored.Region(r)
			defer region.Close()
			src = region
		}
	}

	small := gocv.NewMat()
	defer small.Close()
	gocv.Resize(src, &small, image.Pt(dst.Width, dst.Height), 0, 0, gocv.InterpolationArea)

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(small, &rgb, gocv.ColorBGRToRGB)

	data := rgb.ToBytes()
	if len(data) != len(dst.Pix) {
		return fmt.Errorf("sampled %d bytes, want %d", len(data), len(dst.Pix))
	}
	copy(dst.Pix, data)

	return nil
}

// CenterCrop returns the largest centered sub-rectangle of srcW x srcH with
// the same aspect ratio as dstW x dstH. The sampler and the preview stream
// share this geometry so the detection cells and the on-screen grid refer
// to the same region of the scene.
func CenterCrop(srcW, srcH, dstW, dstH int) image.Rectangle {
	w, h := srcW, srcH

	// Compare srcW/srcH against dstW/dstH without floating point.
	if srcW*dstH > dstW*srcH {
		// Source is wider than the target: trim the sides.
		w = srcH * dstW / dstH
	} else if srcW*dstH < dstW*srcH {
		// Source is taller: trim top and bottom.
		h = srcW * dstH / dstW
	}

	x := (srcW - w) / 2
	y := (srcH - h) / 2
	return image.Rect(x, y, x+w, y+h)
}
