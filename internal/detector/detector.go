// Package detector implements grid-based motion detection over a downsampled
// video frame using frame-to-frame brightness differencing.
//
// The frame is partitioned into a 3x3 grid of cells. Each detection pass
// computes the average brightness of every cell, compares it against the
// value from the previous pass, and reports the cells whose delta exceeds
// the configured threshold while off cooldown. The detector never looks at
// the camera directly; anything that can render itself into a Frame via the
// Sampler interface can drive it, which keeps the core testable with
// synthetic frames.
package detector

import (
	"sync"
	"time"
)

// Detection grid geometry. The frame is downsampled to a small fixed
// resolution so per-pass cost is constant regardless of the camera's native
// resolution.
const (
	FrameWidth  = 64
	FrameHeight = 48
	GridCols    = 3
	GridRows    = 3
	// GridCells is the number of cells, indexed row-major 0..8.
	GridCells = GridCols * GridRows
)

// Configuration defaults and clamp bounds.
const (
	DefaultThreshold  = 20
	DefaultCooldownMs = 250
	MinThreshold      = 1
	MaxThreshold      = 100
	MinCooldownMs     = 50
	MaxCooldownMs     = 1000
)

// Sampler renders the current frame of a video source into dst, applying a
// horizontal mirror so on-screen left corresponds to the viewer's right
// hand. An error means the source has no decodable frame right now; the
// detector treats it as "skip this pass" and leaves all state untouched.
type Sampler interface {
	Sample(dst *Frame) error
}

// CellDebug carries per-cell diagnostics to an optional DebugSink.
type CellDebug struct {
	Brightness float64
	Triggered  bool
}

// DebugSink receives the downsampled frame plus per-cell diagnostics after
// every successful detection pass. Purely observational; it must not retain
// the frame.
type DebugSink interface {
	Paint(frame *Frame, cells [GridCells]CellDebug)
}

// Params is a snapshot of the detector configuration and grid geometry.
type Params struct {
	Threshold  int `json:"threshold"`
	CooldownMs int `json:"cooldown_ms"`
	Width      int `json:"width"`
	Height     int `json:"height"`
	Cols       int `json:"cols"`
	Rows       int `json:"rows"`
}

// Detector turns a frame source into debounced per-cell trigger events.
type Detector struct {
	mu         sync.Mutex
	source     Sampler
	debug      DebugSink
	frame      *Frame
	threshold  int
	cooldownMs int

	// Per-cell state. Exactly GridCells entries for the lifetime of the
	// detector; entries are only ever overwritten.
	prevBrightness [GridCells]float64
	cooldownUntil  [GridCells]int64

	// now returns the current time in unix milliseconds. Replaceable in
	// tests for deterministic cooldown behavior.
	now func() int64
}

// New creates a Detector with default threshold and cooldown. Init must be
// called before Detect does anything useful.
func New() *Detector {
	return &Detector{
		threshold:  DefaultThreshold,
		cooldownMs: DefaultCooldownMs,
		now:        func() int64 { return time.Now().UnixMilli() },
	}
}

// Init binds the frame source and an optional debug sink, and allocates the
// internal downsampled frame. Calling Init again rebinds without clearing
// per-cell state; use Reset for that.
func (d *Detector) Init(source Sampler, debug DebugSink) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.source = source
	d.debug = debug
	if d.frame == nil {
		d.frame = NewFrame(FrameWidth, FrameHeight)
	}
}

// Detect runs one detection pass and returns the indices of the cells that
// triggered, in ascending row-major order. It returns nil without touching
// any state when no source is bound or the source has no frame available.
//
// A cell triggers iff its brightness delta strictly exceeds the threshold
// and its cooldown has expired. Brightness tracking is unconditional: the
// previous-brightness entry updates every pass whether or not the cell
// triggered, so cooldown suppresses triggering, not tracking.
func (d *Detector) Detect() []int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.source == nil || d.frame == nil {
		return nil
	}
	if err := d.source.Sample(d.frame); err != nil {
		// Source not ready; skip this frame.
		return nil
	}

	now := d.now()
	var triggered []int
	var cells [GridCells]CellDebug

	for cell := 0; cell < GridCells; cell++ {
		brightness := d.cellBrightness(cell)
		diff := brightness - d.prevBrightness[cell]
		if diff < 0 {
			diff = -diff
		}

		if diff > float64(d.threshold) && now >= d.cooldownUntil[cell] {
			triggered = append(triggered, cell)
			d.cooldownUntil[cell] = now + int64(d.cooldownMs)
			cells[cell].Triggered = true
		}

		d.prevBrightness[cell] = brightness
		cells[cell].Brightness = brightness
	}

	if d.debug != nil {
		d.debug.Paint(d.frame, cells)
	}

	return triggered
}

// cellBrightness averages (R+G+B)/3 over every pixel of the cell, yielding a
// value in [0, 255]. Caller holds d.mu.
func (d *Detector) cellBrightness(cell int) float64 {
	col := cell % GridCols
	row := cell / GridCols

	x0 := col * d.frame.Width / GridCols
	x1 := (col + 1) * d.frame.Width / GridCols
	y0 := row * d.frame.Height / GridRows
	y1 := (row + 1) * d.frame.Height / GridRows

	var sum float64
	for y := y0; y < y1; y++ {
		i := (y*d.frame.Width + x0) * 3
		for x := x0; x < x1; x++ {
			sum += float64(int(d.frame.Pix[i]) + int(d.frame.Pix[i+1]) + int(d.frame.Pix[i+2]))
			i += 3
		}
	}

	pixels := (x1 - x0) * (y1 - y0)
	if pixels == 0 {
		return 0
	}
	return sum / float64(pixels) / 3.0
}

// Brightness returns the most recently computed average brightness of the
// given cell, or 0 for an out-of-range index.
func (d *Detector) Brightness(cell int) float64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if cell < 0 || cell >= GridCells {
		return 0
	}
	return d.prevBrightness[cell]
}

// SetThreshold sets the trigger threshold in brightness-delta units, clamped
// to [MinThreshold, MaxThreshold]. Takes effect on the next pass, uniformly
// across all cells.
func (d *Detector) SetThreshold(v int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.threshold = clamp(v, MinThreshold, MaxThreshold)
}

// SetCooldown sets the per-cell retrigger interval in milliseconds, clamped
// to [MinCooldownMs, MaxCooldownMs].
func (d *Detector) SetCooldown(ms int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cooldownMs = clamp(ms, MinCooldownMs, MaxCooldownMs)
}

// Params returns the current configuration and grid geometry.
func (d *Detector) Params() Params {
	d.mu.Lock()
	defer d.mu.Unlock()

	return Params{
		Threshold:  d.threshold,
		CooldownMs: d.cooldownMs,
		Width:      FrameWidth,
		Height:     FrameHeight,
		Cols:       GridCols,
		Rows:       GridRows,
	}
}

// Reset zeroes all per-cell brightness and cooldown state, as if no frame
// had ever been seen. The source binding and configuration are kept.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.prevBrightness {
		d.prevBrightness[i] = 0
		d.cooldownUntil[i] = 0
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
