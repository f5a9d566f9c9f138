package app

import (
	"time"

	"github.com/tznthou/day-07-neon-drum/internal/synth"
)

// run is the detection loop: one Detect pass per tick, one Play per
// triggered cell. The ticker guarantees passes never overlap - Detect is
// synchronous and the next tick cannot fire into it on this goroutine - so
// the per-cell state needs no coordination beyond the detector's own lock.
func (a *App) run(stopCh <-chan struct{}) {
	interval := time.Duration(a.config.TickMs) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			cells := a.detector.Detect()
			if len(cells) == 0 {
				continue
			}

			fn := a.triggerFn()
			for _, cell := range cells {
				voice, ok := synth.VoiceForCell(cell)
				if !ok {
					continue
				}

				// Trigger-and-forget: Play schedules its own cleanup
				// and never blocks on the audio thread.
				a.engine.Play(voice)

				if fn != nil {
					fn(cell, voice, a.detector.Brightness(cell))
				}
			}
		}
	}
}
