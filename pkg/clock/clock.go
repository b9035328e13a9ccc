// Package clock implements the monotonic sample-indexed clock that every
// other component in the render pipeline derives its timing from.
package clock

import (
	"math"
	"sync/atomic"
)

// SampleClock tracks a monotonically increasing sample position and converts
// between samples, beats, and seconds at the clock's current tempo.
//
// Position is only ever touched by the render thread (advanced once per
// block); bpm is written by the controller and read by render, so it goes
// through an atomic load/store to avoid tearing a block's worth of work
// across a tempo change (spec §5: read once per block, cache locally).
type SampleClock struct {
	positionSamples float64
	sampleRate      float64

	// bpm is stored as the raw bits of a float64 so it can be updated with a
	// single atomic store without taking a lock on the render thread.
	bpmBits atomic.Uint64
}

// New creates a SampleClock at sample rate sr (Hz) and initial tempo bpm.
func New(sr float64, bpm float64) *SampleClock {
	c := &SampleClock{sampleRate: sr}
	c.SetBPM(bpm)
	return c
}

// SetBPM updates the tempo. Safe to call from the controller while the
// render thread is concurrently calling BPM/SamplesPerBeat/Advance.
func (c *SampleClock) SetBPM(bpm float64) {
	c.bpmBits.Store(math.Float64bits(bpm))
}

// BPM returns the current tempo.
func (c *SampleClock) BPM() float64 {
	return math.Float64frombits(c.bpmBits.Load())
}

// SamplesPerBeat returns sample_rate * 60 / bpm for the currently cached
// tempo. Invariant: always > 0 given bpm > 0.
func (c *SampleClock) SamplesPerBeat() float64 {
	return c.sampleRate * 60.0 / c.BPM()
}

// SampleRate returns the fixed sample rate this clock was created with.
func (c *SampleClock) SampleRate() float64 {
	return c.sampleRate
}

// Position returns the current monotonic sample position.
func (c *SampleClock) Position() float64 {
	return c.positionSamples
}

// Reset sets the clock's position back to sample zero, without touching
// the currently configured tempo. Used by Controller.Stop so the next Play
// restarts the pattern from beat zero. Like Advance, this touches
// positionSamples without synchronization: callers must ensure the render
// thread is not concurrently inside a Render call when this runs.
func (c *SampleClock) Reset() {
	c.positionSamples = 0
}

// Advance moves the clock forward by n frames. Called once per render
// block, after all other work for that block has completed (spec §4.5
// step 6). Must only be called from the render thread.
func (c *SampleClock) Advance(n int) {
	c.positionSamples += float64(n)
}

// BeatIndex returns floor(p / samples_per_beat) for the given sample
// position and the given samples-per-beat value.
func BeatIndex(p float64, samplesPerBeat float64) int64 {
	return int64(math.Floor(p / samplesPerBeat))
}

// BeatPhase returns p mod samples_per_beat: zero exactly at a click onset.
func BeatPhase(p float64, samplesPerBeat float64) float64 {
	phase := math.Mod(p, samplesPerBeat)
	if phase < 0 {
		phase += samplesPerBeat
	}
	return phase
}
