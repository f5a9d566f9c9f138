// Package app wires the motion detector to the drum engine and owns the
// detection loop. It is deliberately thin: all the interesting behavior
// lives in internal/detector and internal/synth.
package app

import (
	"log"
	"sync"

	"github.com/tznthou/day-07-neon-drum/internal/capture"
	"github.com/tznthou/day-07-neon-drum/internal/detector"
	"github.com/tznthou/day-07-neon-drum/internal/synth"
)

// DefaultTickMs drives the detection loop at roughly display refresh rate.
const DefaultTickMs = 33

// Config holds construction options for the application.
type Config struct {
	// CameraID selects the capture device when no Camera is injected.
	CameraID int
	// Camera overrides the default gocv camera (tests, playback).
	Camera capture.Camera
	// Sampler overrides the camera-backed frame sampler entirely; when
	// set, Camera is not opened by Start.
	Sampler detector.Sampler
	// Debug, when set, receives annotated detection frames.
	Debug *capture.DebugView

	Threshold  int
	CooldownMs int
	Volume     float64
	// Crop center-crops camera frames to the grid aspect ratio before
	// downsampling, keeping detection cells aligned with cover-fit
	// overlays.
	Crop bool
	// TickMs is the detection loop period; 0 means DefaultTickMs.
	TickMs int
}

// TriggerFunc observes every cell trigger: cell index, voice name and the
// cell brightness that caused it.
type TriggerFunc func(cell int, voice string, brightness float64)

// App composes the camera, detector and drum engine into a running drum kit.
type App struct {
	config   Config
	camera   capture.Camera
	detector *detector.Detector
	engine   *synth.Engine

	mu        sync.RWMutex
	enabled   bool
	stopCh    chan struct{}
	onTrigger TriggerFunc
}

// New creates an App from the given configuration. Nothing is opened or
// started yet.
func New(config Config) *App {
	if config.TickMs <= 0 {
		config.TickMs = DefaultTickMs
	}

	camera := config.Camera
	if camera == nil && config.Sampler == nil {
		camera = capture.NewCamera(config.CameraID)
	}

	a := &App{
		config:   config,
		camera:   camera,
		detector: detector.New(),
		engine:   synth.NewEngine(),
		enabled:  true,
	}

	if config.Threshold != 0 {
		a.detector.SetThreshold(config.Threshold)
	}
	if config.CooldownMs != 0 {
		a.detector.SetCooldown(config.CooldownMs)
	}
	if config.Volume != 0 {
		a.engine.SetVolume(config.Volume)
	}

	return a
}

// OnTrigger registers the trigger observer. Must be set before Start.
func (a *App) OnTrigger(fn TriggerFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onTrigger = fn
}

// SetEnabled enables or disables detection without stopping the loop.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled reports whether detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Start opens the camera (unless a sampler was injected), binds the
// detector and launches the detection loop. Starting a started app is a
// no-op.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	sampler := a.config.Sampler
	if sampler == nil {
		if err := a.camera.Open(); err != nil {
			return err
		}
		sampler = capture.NewFrameSampler(a.camera, a.config.Crop)
	}

	var sink detector.DebugSink
	if a.config.Debug != nil {
		sink = a.config.Debug
	}
	a.detector.Init(sampler, sink)

	a.stopCh = make(chan struct{})
	go a.run(a.stopCh)

	log.Println("detection loop started")
	return nil
}

// Stop halts the detection loop and closes the camera. Per-cell detector
// state survives until Reset; the drum engine is left alone so the caller
// decides when to dispose audio.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh == nil {
		return
	}
	close(a.stopCh)
	a.stopCh = nil

	if a.camera != nil {
		if err := a.camera.Close(); err != nil {
			log.Printf("error closing camera: %v", err)
		}
	}

	log.Println("detection loop stopped")
}

// Detector returns the motion detector.
func (a *App) Detector() *detector.Detector {
	return a.detector
}

// Engine returns the drum engine.
func (a *App) Engine() *synth.Engine {
	return a.engine
}

// Camera returns the camera, which may be nil when a sampler was injected.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// DebugView returns the configured debug view, if any.
func (a *App) DebugView() *capture.DebugView {
	return a.config.Debug
}

func (a *App) triggerFn() TriggerFunc {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.onTrigger
}
