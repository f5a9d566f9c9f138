package app

import (
	"testing"
	"time"

	"github.com/tznthou/day-07-neon-drum/internal/detector"
	"github.com/tznthou/day-07-neon-drum/internal/synth"
)

// brightSampler renders a uniformly bright frame every pass. Against the
// zero-seeded detector state the first pass triggers all nine cells and
// later passes none.
type brightSampler struct{}

func (brightSampler) Sample(dst *detector.Frame) error {
	dst.Fill(200, 200, 200)
	return nil
}

type event struct {
	cell  int
	voice string
}

func collectTriggers(t *testing.T, n int, ch <-chan event) []event {
	t.Helper()
	var out []event
	deadline := time.After(3 * time.Second)
	for len(out) < n {
		select {
		case ev := <-ch:
			out = append(out, ev)
		case <-deadline:
			t.Fatalf("timed out after %d/%d triggers", len(out), n)
		}
	}
	return out
}

func TestApp_TriggersMapToVoices(t *testing.T) {
	a := New(Config{Sampler: brightSampler{}, Threshold: 20, TickMs: 5})

	ch := make(chan event, 32)
	a.OnTrigger(func(cell int, voice string, brightness float64) {
		ch <- event{cell, voice}
		if brightness != 200 {
			t.Errorf("brightness = %v, want 200", brightness)
		}
	})

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer a.Stop()

	events := collectTriggers(t, 9, ch)
	for i, ev := range events {
		if ev.cell != i {
			t.Errorf("event %d cell = %d, want %d", i, ev.cell, i)
		}
		want, _ := synth.VoiceForCell(i)
		if ev.voice != want {
			t.Errorf("cell %d voice = %q, want %q", i, ev.voice, want)
		}
	}

	// The frame never changes again, so no further triggers may arrive.
	select {
	case ev := <-ch:
		t.Errorf("unexpected extra trigger %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestApp_DisabledProducesNoTriggers(t *testing.T) {
	a := New(Config{Sampler: brightSampler{}, Threshold: 20, TickMs: 5})
	a.SetEnabled(false)

	ch := make(chan event, 32)
	a.OnTrigger(func(cell int, voice string, brightness float64) {
		ch <- event{cell, voice}
	})

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer a.Stop()

	select {
	case ev := <-ch:
		t.Errorf("disabled app produced trigger %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestApp_EnableToggle(t *testing.T) {
	a := New(Config{Sampler: brightSampler{}})

	if !a.IsEnabled() {
		t.Error("app should start enabled")
	}
	a.SetEnabled(false)
	if a.IsEnabled() {
		t.Error("SetEnabled(false) did not take")
	}
	a.SetEnabled(true)
	if !a.IsEnabled() {
		t.Error("SetEnabled(true) did not take")
	}
}

func TestApp_StartTwice(t *testing.T) {
	a := New(Config{Sampler: brightSampler{}, TickMs: 5})

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := a.Start(); err != nil {
		t.Errorf("second Start() error = %v, want nil no-op", err)
	}
	a.Stop()
	a.Stop() // stopping a stopped app must not panic
}

func TestApp_ConfigApplied(t *testing.T) {
	a := New(Config{Sampler: brightSampler{}, Threshold: 35, CooldownMs: 400, Volume: 0.5})

	p := a.Detector().Params()
	if p.Threshold != 35 {
		t.Errorf("threshold = %d, want 35", p.Threshold)
	}
	if p.CooldownMs != 400 {
		t.Errorf("cooldown = %d, want 400", p.CooldownMs)
	}
	if v := a.Engine().Volume(); v != 0.5 {
		t.Errorf("volume = %v, want 0.5", v)
	}
}

func TestApp_DefaultsWithoutConfig(t *testing.T) {
	a := New(Config{Sampler: brightSampler{}})

	p := a.Detector().Params()
	if p.Threshold != detector.DefaultThreshold {
		t.Errorf("threshold = %d, want default %d", p.Threshold, detector.DefaultThreshold)
	}
	if v := a.Engine().Volume(); v != synth.DefaultVolume {
		t.Errorf("volume = %v, want default %v", v, synth.DefaultVolume)
	}
	if a.Camera() != nil {
		t.Error("camera should be nil when a sampler is injected")
	}
}
