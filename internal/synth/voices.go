package synth

// Voice names. Each is a fully specified signal recipe; there is no sample
// playback anywhere, every timbre is synthesized from oscillators and the
// shared noise buffer.
const (
	VoiceKick  = "kick"
	VoiceSnare = "snare"
	VoiceHihat = "hihat"
	VoiceClap  = "clap"
	VoiceTom1  = "tom1"
	VoiceTom2  = "tom2"
	VoiceCrash = "crash"
	VoiceRide  = "ride"
	VoiceSynth = "synth"
)

// CellVoices maps detection grid cell indices (row-major 0..8) to voices.
// The mapping is part of the public contract: the kick sits in the center
// cell where most deliberate hits land.
var CellVoices = [9]string{
	VoiceHihat, VoiceSnare, VoiceCrash,
	VoiceTom1, VoiceKick, VoiceTom2,
	VoiceClap, VoiceRide, VoiceSynth,
}

// VoiceForCell returns the voice for a grid cell index.
func VoiceForCell(cell int) (string, bool) {
	if cell < 0 || cell >= len(CellVoices) {
		return "", false
	}
	return CellVoices[cell], true
}

// IsVoice reports whether name is one of the nine defined voices.
func IsVoice(name string) bool {
	for _, v := range CellVoices {
		if v == name {
			return true
		}
	}
	return false
}

// Voices returns the nine voice names in cell order.
func Voices() []string {
	out := make([]string, len(CellVoices))
	copy(out, CellVoices[:])
	return out
}

// renderVoice synthesizes one hit of the named voice into a stereo
// float32-LE buffer, or nil for an unknown name. noise is the shared
// precomputed uniform-noise buffer.
func renderVoice(name string, noise []float64) []byte {
	switch name {
	case VoiceKick:
		return renderKick()
	case VoiceSnare:
		return renderSnare(noise)
	case VoiceHihat:
		return renderHihat(noise)
	case VoiceClap:
		return renderClap(noise)
	case VoiceTom1:
		return renderTom(200, 100)
	case VoiceTom2:
		return renderTom(120, 60)
	case VoiceCrash:
		return renderCrash(noise)
	case VoiceRide:
		return renderRide(noise)
	case VoiceSynth:
		return renderSynthStab()
	}
	return nil
}

func noiseAt(noise []float64, i int) float64 {
	return noise[i%len(noise)]
}

// renderKick: sine with a 150->40 Hz exponential drop over 100 ms, full
// gain decaying to near silence over 400 ms.
func renderKick() []byte {
	const dur = 0.4
	n := int(dur * sampleRate)
	buf := makeBuf(n)
	osc := oscillator{shape: waveSine}
	for i := 0; i < n; i++ {
		t := float64(i) / sampleRate
		s := osc.next(expRamp(150, 40, t, 0.1)) * expRamp(1.0, 0.01, t, dur)
		putStereoF32(buf, i, softSat(s))
	}
	return buf
}

// renderSnare: bandpassed noise body plus a short triangle thump dropping
// 180->100 Hz.
func renderSnare(noise []float64) []byte {
	const dur = 0.2
	n := int(dur * sampleRate)
	buf := makeBuf(n)
	bp := newBiquad(filterBandpass, 3000, 1)
	osc := oscillator{shape: waveTriangle}
	for i := 0; i < n; i++ {
		t := float64(i) / sampleRate
		s := bp.process(noiseAt(noise, i)) * expRamp(0.8, 0.01, t, 0.2)
		s += osc.next(expRamp(180, 100, t, 0.1)) * expRamp(0.7, 0.01, t, 0.1)
		putStereoF32(buf, i, softSat(s))
	}
	return buf
}

// renderHihat: a short highpassed noise tick.
func renderHihat(noise []float64) []byte {
	const dur = 0.08
	n := int(dur * sampleRate)
	buf := makeBuf(n)
	hp := newBiquad(filterHighpass, 7000, 0.707)
	for i := 0; i < n; i++ {
		t := float64(i) / sampleRate
		s := hp.process(noiseAt(noise, i)) * expRamp(0.4, 0.01, t, dur)
		putStereoF32(buf, i, softSat(s))
	}
	return buf
}

// renderClap: four bandpassed noise bursts 10 ms apart, the last one louder
// to fake the palm smack that follows the finger flams.
func renderClap(noise []float64) []byte {
	const (
		burstGap   = 0.01
		burstDecay = 0.15
		bursts     = 4
	)
	dur := burstGap*(bursts-1) + burstDecay
	n := int(dur * sampleRate)
	mono := make([]float64, n)

	for k := 0; k < bursts; k++ {
		start := int(float64(k) * burstGap * sampleRate)
		gain := 0.4
		if k == bursts-1 {
			gain = 0.8
		}
		bp := newBiquad(filterBandpass, 1500, 0.5)
		// Offset each burst into the noise buffer so the flams don't
		// phase-cancel.
		off := k * 1361
		for i := start; i < n; i++ {
			tb := float64(i-start) / sampleRate
			mono[i] += bp.process(noiseAt(noise, i-start+off)) * expRamp(gain, 0.01, tb, burstDecay)
		}
	}

	buf := makeBuf(n)
	for i := 0; i < n; i++ {
		putStereoF32(buf, i, softSat(mono[i]))
	}
	return buf
}

// renderTom: sine with an octave drop over 150 ms; tom1 and tom2 share the
// recipe at different pitches.
func renderTom(fromHz, toHz float64) []byte {
	const dur = 0.3
	n := int(dur * sampleRate)
	buf := makeBuf(n)
	osc := oscillator{shape: waveSine}
	for i := 0; i < n; i++ {
		t := float64(i) / sampleRate
		s := osc.next(expRamp(fromHz, toHz, t, 0.15)) * expRamp(0.8, 0.01, t, dur)
		putStereoF32(buf, i, softSat(s))
	}
	return buf
}

// renderCrash: noise through a highpass into a lowpass, with a long decay.
func renderCrash(noise []float64) []byte {
	const dur = 1.5
	n := int(dur * sampleRate)
	buf := makeBuf(n)
	hp := newBiquad(filterHighpass, 5000, 0.707)
	lp := newBiquad(filterLowpass, 12000, 0.707)
	for i := 0; i < n; i++ {
		t := float64(i) / sampleRate
		s := lp.process(hp.process(noiseAt(noise, i))) * expRamp(0.7, 0.01, t, dur)
		putStereoF32(buf, i, softSat(s))
	}
	return buf
}

// renderRide: bandpassed noise shimmer plus a quiet 6 kHz ping.
func renderRide(noise []float64) []byte {
	const dur = 0.6
	n := int(dur * sampleRate)
	buf := makeBuf(n)
	bp := newBiquad(filterBandpass, 8000, 2)
	osc := oscillator{shape: waveSine}
	for i := 0; i < n; i++ {
		t := float64(i) / sampleRate
		s := bp.process(noiseAt(noise, i)) * expRamp(0.3, 0.01, t, dur)
		s += osc.next(6000) * expRamp(0.1, 0.01, t, 0.4)
		putStereoF32(buf, i, softSat(s))
	}
	return buf
}

// renderSynthStab: square wave through a resonant lowpass sweeping
// 2000->200 Hz, the lone melodic voice in the kit.
func renderSynthStab() []byte {
	const dur = 0.3
	n := int(dur * sampleRate)
	buf := makeBuf(n)
	osc := oscillator{shape: waveSquare}
	lp := newBiquad(filterLowpass, 2000, 5)
	for i := 0; i < n; i++ {
		t := float64(i) / sampleRate
		lp.set(filterLowpass, expRamp(2000, 200, t, dur), 5)
		s := lp.process(osc.next(440)) * expRamp(0.4, 0.01, t, dur)
		putStereoF32(buf, i, softSat(s))
	}
	return buf
}

// voiceDuration returns the playback duration in seconds for a rendered
// buffer.
func voiceDuration(buf []byte) float64 {
	return float64(len(buf)/frameBytes) / sampleRate
}
