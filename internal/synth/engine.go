// Package synth implements a procedural nine-voice percussion synthesizer.
//
// Every trigger renders one voice from oscillators and a shared noise
// buffer into a short stereo buffer and hands it to the platform audio
// output. Voice lifetime is owned by the trigger: teardown is scheduled the
// moment the player is created, for the moment the buffer runs out. Nothing
// is pooled and no voice outlives its own sound.
package synth

import (
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/hajimehoshi/oto/v2"
)

// DefaultVolume is the master gain applied to every voice.
const DefaultVolume = 0.8

// Status is the lifecycle state of the audio pipeline.
type Status int

const (
	StatusUninitialized Status = iota
	StatusRunning
	StatusSuspended
	StatusDisposed
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusRunning:
		return "running"
	case StatusSuspended:
		return "suspended"
	case StatusDisposed:
		return "disposed"
	}
	return "unknown"
}

// Context abstracts the platform audio output so the engine is testable
// without a sound device. *oto.Context satisfies it.
type Context interface {
	NewPlayer(r io.Reader) oto.Player
	Suspend() error
	Resume() error
}

// The platform allows exactly one output context per process, so it is
// created once and shared across engine generations (a disposed engine that
// is re-initialized gets the same context back, resumed).
var (
	otoOnce  sync.Once
	otoCtx   *oto.Context
	otoReady chan struct{}
	otoErr   error
)

func sharedContext() (Context, <-chan struct{}, error) {
	otoOnce.Do(func() {
		otoCtx, otoReady, otoErr = oto.NewContext(sampleRate, channelCount, 0) // 0 selects 32-bit float samples
	})
	if otoErr != nil {
		return nil, nil, otoErr
	}
	return otoCtx, otoReady, nil
}

// Engine synthesizes and plays percussion voices through a shared master
// gain stage.
type Engine struct {
	mu      sync.Mutex
	ctx     Context
	ready   <-chan struct{}
	status  Status
	volume  float64
	noise   []float64
	players map[oto.Player]struct{}

	// newContext is swapped out in tests.
	newContext func() (Context, <-chan struct{}, error)
}

// NewEngine creates an uninitialized engine. Init must be called - from a
// user-initiated action, per platform audio policy - before Play produces
// sound.
func NewEngine() *Engine {
	return &Engine{
		status:     StatusUninitialized,
		volume:     DefaultVolume,
		players:    make(map[oto.Player]struct{}),
		newContext: sharedContext,
	}
}

// Init opens the audio output and precomputes the shared noise buffer.
// Calling Init on a running engine is a no-op; on a suspended or disposed
// engine it resumes the pipeline.
func (e *Engine) Init() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.status {
	case StatusRunning:
		return nil
	case StatusSuspended:
		if err := e.ctx.Resume(); err != nil {
			return fmt.Errorf("resume audio output: %w", err)
		}
		e.status = StatusRunning
		return nil
	}

	ctx, ready, err := e.newContext()
	if err != nil {
		return fmt.Errorf("open audio output: %w", err)
	}
	e.ctx = ctx
	e.ready = ready

	if e.noise == nil {
		e.noise = newNoiseBuffer(noiseSeconds * sampleRate)
	}

	// A previous engine generation may have left the shared context
	// suspended.
	if err := ctx.Resume(); err != nil {
		log.Printf("synth: resume after init: %v", err)
	}

	e.status = StatusRunning
	return nil
}

// Status returns the current pipeline state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Play synthesizes and plays one hit of the named voice. Before the engine
// is initialized, after disposal, or while the output device is still
// warming up it is a silent no-op. An unknown voice name is logged and
// ignored.
func (e *Engine) Play(name string) {
	e.mu.Lock()

	if e.status == StatusSuspended {
		if err := e.ctx.Resume(); err != nil {
			e.mu.Unlock()
			log.Printf("synth: resume: %v", err)
			return
		}
		e.status = StatusRunning
	}
	if e.status != StatusRunning {
		e.mu.Unlock()
		return
	}

	select {
	case <-e.ready:
	default:
		// Device not ready yet; drop the trigger rather than block the
		// detection loop.
		e.mu.Unlock()
		return
	}

	buf := renderVoice(name, e.noise)
	if buf == nil {
		e.mu.Unlock()
		log.Printf("synth: unknown voice %q", name)
		return
	}

	p := e.ctx.NewPlayer(&sampleReader{data: buf})
	p.SetVolume(e.volume)
	e.players[p] = struct{}{}
	e.mu.Unlock()

	p.Play()

	// Teardown is scheduled now: the buffer length fixes the playback
	// time, so there is nothing to poll.
	d := time.Duration(voiceDuration(buf)*float64(time.Second)) + 50*time.Millisecond
	time.AfterFunc(d, func() { e.release(p) })
}

// release closes a finished player and forgets it.
func (e *Engine) release(p oto.Player) {
	e.mu.Lock()
	_, tracked := e.players[p]
	delete(e.players, p)
	e.mu.Unlock()

	if tracked {
		p.Close()
	}
}

// SetVolume sets the master gain, clamped to [0, 1]. It applies to voices
// already sounding as well as future ones.
func (e *Engine) SetVolume(v float64) {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.volume = v
	for p := range e.players {
		p.SetVolume(v)
	}
}

// Volume returns the current master gain.
func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// Suspend pauses the output pipeline. Play auto-resumes it.
func (e *Engine) Suspend() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != StatusRunning {
		return nil
	}
	if err := e.ctx.Suspend(); err != nil {
		return fmt.Errorf("suspend audio output: %w", err)
	}
	e.status = StatusSuspended
	return nil
}

// Dispose tears the pipeline down: every live voice is closed and the
// output suspended. Afterwards Play is a no-op until Init is called again.
func (e *Engine) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status == StatusDisposed || e.status == StatusUninitialized {
		e.status = StatusDisposed
		return
	}

	for p := range e.players {
		p.Close()
		delete(e.players, p)
	}
	if err := e.ctx.Suspend(); err != nil {
		log.Printf("synth: suspend on dispose: %v", err)
	}
	e.status = StatusDisposed
}

// sampleReader streams a rendered voice buffer to the player.
type sampleReader struct {
	data []byte
	pos  int
}

func (r *sampleReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}
