// Package clickvoice renders the metronome's click/accent waveforms into an
// output block and detects beat-boundary crossings for event dispatch.
package clickvoice

import (
	"math"
	"sync/atomic"

	"github.com/clickline/metronome/pkg/clickpattern"
	"github.com/clickline/metronome/pkg/clock"
)

// GuardSamples is the window (in samples) within which a frame whose beat
// index differs from lastBeatFired is considered "at" that beat boundary.
// Beat detection only fires inside this window so a single crossing is
// never announced twice from two different blocks.
const GuardSamples = 100

// BeatEvent is posted once per beat boundary crossed, carrying the beat
// index modulo the time signature (or 0 when the time signature is <= 1)
// plus the global sample position the boundary fired at, so a subscriber
// recording beat timestamps does not need to re-derive them from a
// possibly-since-changed tempo.
type BeatEvent struct {
	Value       int32
	SampleIndex int64
}

// ClickVoice is stateless across blocks: membership of a frame in a click is
// recomputed from the clock every call, so it can tolerate block-size
// changes and never needs its own sample counter.
type ClickVoice struct {
	// volumeBits holds math.Float32bits of the 0.0..1.0 scale applied to
	// both normal and accent amplitude; Render loads it once per block.
	volumeBits atomic.Uint32
}

// New creates a ClickVoice at full volume.
func New() *ClickVoice {
	v := &ClickVoice{}
	v.volumeBits.Store(math.Float32bits(1.0))
	return v
}

// SetVolume sets the output scale applied to every click sample, 0.0..1.0.
// Safe to call while the render thread is inside Render.
func (v *ClickVoice) SetVolume(vol float32) {
	v.volumeBits.Store(math.Float32bits(vol))
}

// Render writes the click waveform for samples [p0, p0+n) into outL/outR,
// which must be pre-zeroed and at least n long, summing into any existing
// content. Any beat boundaries crossed within the block are appended to
// events, and the extended slice is returned. The (possibly advanced)
// lastBeatFired value is stored back via pattern.SetLastBeatFired before
// Render returns.
//
// Allocation-free and non-blocking: safe to call from the render thread.
func (v *ClickVoice) Render(
	pattern *clickpattern.ClickPattern,
	c *clock.SampleClock,
	p0 float64,
	n int,
	outL, outR []float32,
	events []BeatEvent,
) []BeatEvent {
	samplesPerBeat := c.SamplesPerBeat()
	lastBeatFired := pattern.LastBeatFired()
	ts := pattern.TimeSignature()
	volume := math.Float32frombits(v.volumeBits.Load())

	for i := 0; i < n; i++ {
		pos := p0 + float64(i)
		phase := clock.BeatPhase(pos, samplesPerBeat)
		k := clock.BeatIndex(pos, samplesPerBeat)

		if k != lastBeatFired && phase < GuardSamples {
			lastBeatFired = k
			mod := int32(0)
			if ts > 1 {
				mod = int32(((k % int64(ts)) + int64(ts)) % int64(ts))
			}
			events = append(events, BeatEvent{Value: mod, SampleIndex: int64(pos)})
		}

		samples, _ := pattern.WaveformFor(k)
		clickLen := len(samples)
		if clickLen == 0 {
			continue
		}
		if idx := int(math.Floor(phase)); idx < clickLen {
			s := samples[idx] * volume
			outL[i] += s
			outR[i] += s
		}
	}

	pattern.SetLastBeatFired(lastBeatFired)
	return events
}
