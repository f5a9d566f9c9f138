package synth

import "math"

// Output format shared with the oto context: 44.1 kHz stereo, 32-bit float
// little-endian samples.
const (
	sampleRate   = 44100
	channelCount = 2
	// frameBytes is the size of one stereo float32 frame.
	frameBytes = 8
	// noiseSeconds is the length of the shared precomputed noise buffer.
	noiseSeconds = 2
)

// expRamp returns the value at time t of an exponential ramp from v0 to v1
// over dur seconds. Both endpoints must be positive; past the end of the
// ramp the value holds at v1.
func expRamp(v0, v1, t, dur float64) float64 {
	if t <= 0 {
		return v0
	}
	if t >= dur {
		return v1
	}
	return v0 * math.Pow(v1/v0, t/dur)
}

// Oscillator shapes.
type waveShape int

const (
	waveSine waveShape = iota
	waveTriangle
	waveSquare
)

// oscillator is a phase-accumulating waveform generator. Accumulating phase
// rather than evaluating sin(2*pi*f*t) keeps frequency ramps free of phase
// discontinuities.
type oscillator struct {
	shape waveShape
	phase float64
}

// next advances the oscillator by one sample at the given frequency and
// returns the sample in [-1, 1].
func (o *oscillator) next(freq float64) float64 {
	o.phase += freq / sampleRate
	if o.phase >= 1 {
		o.phase -= math.Floor(o.phase)
	}

	switch o.shape {
	case waveTriangle:
		return 4*math.Abs(o.phase-0.5) - 1
	case waveSquare:
		if o.phase < 0.5 {
			return 1
		}
		return -1
	default:
		return math.Sin(2 * math.Pi * o.phase)
	}
}

// Biquad filter kinds.
type filterKind int

const (
	filterLowpass filterKind = iota
	filterHighpass
	filterBandpass
)

// biquad is a direct-form-I second-order IIR filter with RBJ audio-cookbook
// coefficients. set may be called mid-stream to sweep the cutoff; the state
// variables carry over so the sweep stays click-free.
type biquad struct {
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

func newBiquad(kind filterKind, freq, q float64) *biquad {
	f := &biquad{}
	f.set(kind, freq, q)
	return f
}

// set recomputes the coefficients for the given kind, cutoff/center
// frequency in Hz and quality factor.
func (f *biquad) set(kind filterKind, freq, q float64) {
	w0 := 2 * math.Pi * freq / sampleRate
	cosw0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	var b0, b1, b2, a0, a1, a2 float64
	switch kind {
	case filterLowpass:
		b0 = (1 - cosw0) / 2
		b1 = 1 - cosw0
		b2 = (1 - cosw0) / 2
	case filterHighpass:
		b0 = (1 + cosw0) / 2
		b1 = -(1 + cosw0)
		b2 = (1 + cosw0) / 2
	case filterBandpass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
	}
	a0 = 1 + alpha
	a1 = -2 * cosw0
	a2 = 1 - alpha

	f.b0 = b0 / a0
	f.b1 = b1 / a0
	f.b2 = b2 / a0
	f.a1 = a1 / a0
	f.a2 = a2 / a0
}

// process filters one sample.
func (f *biquad) process(x float64) float64 {
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}

// newNoiseBuffer fills a buffer with uniform noise in [-1, 1] from a fixed
// LCG seed, so every run produces identical percussion timbres.
func newNoiseBuffer(n int) []float64 {
	buf := make([]float64, n)
	seed := uint64(0x6e656f6e) // arbitrary fixed seed
	for i := range buf {
		seed = seed*6364136223846793005 + 1442695040888963407
		buf[i] = float64(int64(seed>>33)-int64(1<<30)) / float64(1<<30)
	}
	return buf
}

// softSat applies gentle saturation so stacked voices cannot clip harshly.
func softSat(x float64) float64 {
	if x > 1.0 {
		return 1.0 - 0.5/x
	}
	if x < -1.0 {
		return -1.0 + 0.5/(-x)
	}
	return x - x*x*x/3.0
}

// makeBuf allocates a stereo float32-LE byte buffer for n frames.
func makeBuf(n int) []byte { return make([]byte, n*frameBytes) }

// putStereoF32 writes a [-1,1] sample as float32 LE to both channels of
// frame i.
func putStereoF32(buf []byte, i int, sample float64) {
	v := math.Float32bits(float32(sample))
	off := i * frameBytes
	buf[off] = byte(v)
	buf[off+1] = byte(v >> 8)
	buf[off+2] = byte(v >> 16)
	buf[off+3] = byte(v >> 24)
	buf[off+4] = byte(v)
	buf[off+5] = byte(v >> 8)
	buf[off+6] = byte(v >> 16)
	buf[off+7] = byte(v >> 24)
}
