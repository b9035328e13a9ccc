// Package clickpattern owns the normal/accent click waveforms and the
// current time signature that ClickVoice renders against.
package clickpattern

import "sync/atomic"

// ClickPattern holds the mono sample buffers for a normal and an accented
// click, plus the time signature used to pick between them, and the last
// beat index that was announced to the beat-event dispatcher.
//
// The buffers are replaced via atomic.Pointer swaps (release on write,
// acquire on read) so a render block in flight always sees a complete,
// consistent buffer even if the controller replaces it mid-run: spec §3/§5
// require this to be safe whether or not the engine is currently running.
type ClickPattern struct {
	normal atomic.Pointer[[]float32]
	accent atomic.Pointer[[]float32]

	// timeSignature <= 1 disables accent selection entirely.
	timeSignature atomic.Int64

	// lastBeatFired is the most recently announced beat index, written by
	// the render thread and reset by Controller.Stop while no Render call
	// is in flight. Not synchronized. Initialized to -1.
	lastBeatFired int64
}

// New creates a ClickPattern with the given initial time signature and no
// loaded waveforms.
func New(timeSignature int) *ClickPattern {
	p := &ClickPattern{lastBeatFired: -1}
	p.timeSignature.Store(int64(timeSignature))
	empty := []float32{}
	p.normal.Store(&empty)
	p.accent.Store(&[]float32{})
	return p
}

// LoadNormal atomically replaces the normal click waveform.
func (p *ClickPattern) LoadNormal(samples []float32) {
	buf := append([]float32(nil), samples...)
	p.normal.Store(&buf)
}

// LoadAccent atomically replaces the accent click waveform.
func (p *ClickPattern) LoadAccent(samples []float32) {
	buf := append([]float32(nil), samples...)
	p.accent.Store(&buf)
}

// Normal returns the currently active normal click waveform. Safe to call
// from the render thread; acquires the latest published buffer.
func (p *ClickPattern) Normal() []float32 {
	return *p.normal.Load()
}

// Accent returns the currently active accent click waveform, or an empty
// slice if none has been loaded.
func (p *ClickPattern) Accent() []float32 {
	return *p.accent.Load()
}

// SetTimeSignature updates the time signature. Values <= 1 disable accents.
func (p *ClickPattern) SetTimeSignature(ts int) {
	p.timeSignature.Store(int64(ts))
}

// TimeSignature returns the current time signature.
func (p *ClickPattern) TimeSignature() int {
	return int(p.timeSignature.Load())
}

// WaveformFor returns the waveform that should sound for beat index k, and
// whether it is the accent waveform.
func (p *ClickPattern) WaveformFor(k int64) (samples []float32, isAccent bool) {
	ts := p.TimeSignature()
	accent := p.Accent()
	if ts >= 2 && len(accent) > 0 && k%int64(ts) == 0 {
		return accent, true
	}
	return p.Normal(), false
}

// LastBeatFired returns the most recently announced beat index.
// Render-thread only.
func (p *ClickPattern) LastBeatFired() int64 {
	return p.lastBeatFired
}

// SetLastBeatFired records the most recently announced beat index. Called
// by the render thread, or by another goroutine only while no Render call
// is in flight (Controller.Stop resets it to -1 that way).
func (p *ClickPattern) SetLastBeatFired(k int64) {
	p.lastBeatFired = k
}
