// Package engine implements Engine, the unified render callback that
// drives click generation, pulls captured input, compensates for input-path
// latency, and publishes the mixed record-path signal to a lock-free queue.
// This is the core of the whole system: deterministic, allocation-free, and
// lock-free on the render thread.
package engine

import (
	"math"
	"sync/atomic"

	"github.com/clickline/metronome/pkg/clickpattern"
	"github.com/clickline/metronome/pkg/clickvoice"
	"github.com/clickline/metronome/pkg/clock"
	"github.com/clickline/metronome/pkg/recording"
)

// InputPuller pulls n frames of non-interleaved stereo input captured at
// time stamp t into inL/inR. Implementations must tolerate failure by
// returning false, in which case the engine uses whatever was already in
// inL/inR (the caller is expected to have pre-zeroed them, or to leave
// stale-but-harmless data — the engine does not zero them itself to avoid
// an allocation-free-but-still-wasted pass over the buffer on every block).
//
// This is the render thread's only contact with the device/OS input
// contract, which the core treats as an external collaborator.
type InputPuller interface {
	PullInput(inL, inR []float32, n int, timeStamp float64) bool
}

// maxEventsPerBlock bounds the scratch slice ClickVoice.Render appends
// into. No real block at any sane sample rate/BPM/block-size combination
// fires more than a handful of beats, but the bound keeps the capacity
// fixed at construction regardless.
const maxEventsPerBlock = 16

// Engine is the render callback plus every piece of state it reads or
// mutates. Exactly one goroutine — the render thread — may call Render.
// All other methods are safe to call concurrently from the controller.
type Engine struct {
	clock   *clock.SampleClock
	pattern *clickpattern.ClickPattern
	voice   *clickvoice.ClickVoice
	input   InputPuller

	playing     atomic.Bool
	monitoring  atomic.Bool
	micGainBits atomic.Uint64 // math.Float64bits

	// session is published by the controller via atomic.Pointer so a
	// render block in flight always sees either no session or a fully
	// constructed one: the render thread holds non-owning access for the
	// duration of a call, guaranteed valid by this acquire/release pairing.
	session atomic.Pointer[recording.Session]

	inputFailures atomic.Uint64

	// beatEvents receives non-blocking sends from the render thread; the
	// controller's dispatch goroutine is the sole reader.
	beatEvents chan<- clickvoice.BeatEvent

	// scratch buffers, preallocated at construction so Render never
	// allocates. Sized to maxBlockFrames.
	inL, inR     []float32
	dlyL, dlyR   []float32
	eventScratch []clickvoice.BeatEvent
	maxBlockSize int
}

// New constructs an Engine. maxBlockFrames bounds the largest n any single
// Render call will be given; scratch buffers are sized to it up front so
// the render path never allocates.
func New(
	c *clock.SampleClock,
	pattern *clickpattern.ClickPattern,
	voice *clickvoice.ClickVoice,
	input InputPuller,
	beatEvents chan<- clickvoice.BeatEvent,
	maxBlockFrames int,
) *Engine {
	e := &Engine{
		clock:        c,
		pattern:      pattern,
		voice:        voice,
		input:        input,
		beatEvents:   beatEvents,
		inL:          make([]float32, maxBlockFrames),
		inR:          make([]float32, maxBlockFrames),
		dlyL:         make([]float32, maxBlockFrames),
		dlyR:         make([]float32, maxBlockFrames),
		eventScratch: make([]clickvoice.BeatEvent, 0, maxEventsPerBlock),
		maxBlockSize: maxBlockFrames,
	}
	e.micGainBits.Store(math.Float64bits(1.0))
	return e
}

// SetPlaying flips whether the render thread generates clicks this block.
func (e *Engine) SetPlaying(playing bool) { e.playing.Store(playing) }

// IsPlaying reports the last value set by SetPlaying.
func (e *Engine) IsPlaying() bool { return e.playing.Load() }

// SetMonitoring enables or disables adding live mic to the monitor output.
func (e *Engine) SetMonitoring(on bool) { e.monitoring.Store(on) }

// SetMicGain sets the gain applied to mic input on the record path.
func (e *Engine) SetMicGain(g float64) { e.micGainBits.Store(math.Float64bits(g)) }

func (e *Engine) micGain() float64 { return math.Float64frombits(e.micGainBits.Load()) }

// ArmSession publishes a new recording session for the render thread to
// start using at the next block boundary. Must only be called by the
// controller while IsRecording() would observe false.
func (e *Engine) ArmSession(s *recording.Session) {
	e.session.Store(s)
}

// DisarmSession clears the published session. Render loads the session
// once at block entry, so a block already in flight finishes with the old
// session and the next block sees none.
func (e *Engine) DisarmSession() {
	e.session.Store(nil)
}

// IsRecording reports whether a session is currently armed.
func (e *Engine) IsRecording() bool {
	return e.session.Load() != nil
}

// InputFailures returns the number of blocks in which PullInput reported
// failure since construction.
func (e *Engine) InputFailures() uint64 {
	return e.inputFailures.Load()
}

// MaxBlockSize returns the largest block size this engine was constructed
// to accept, so callers sizing a RecordingSession's delay line know how
// much headroom it needs.
func (e *Engine) MaxBlockSize() int {
	return e.maxBlockSize
}

// Render is the render callback itself: invoked by the device once per
// block with n frames, output buffers outL/outR (which the caller must have
// allocated to at least n, but need not have zeroed — Render overwrites
// them), and the block's time stamp.
//
// Strict constraints apply on this path: no allocation, no unbounded
// looping beyond n, no locks, no blocking syscalls, no logging.
func (e *Engine) Render(n int, outL, outR []float32, timeStamp float64) {
	if n > e.maxBlockSize {
		// A caller that violates the sizing contract established at
		// construction gets truncated rather than an out-of-bounds write;
		// there is nowhere safe to report this from the render thread.
		n = e.maxBlockSize
	}

	p0 := e.clock.Position()
	session := e.session.Load()
	isRecording := session != nil

	// 1. Input pull.
	inL, inR := e.inL[:n], e.inR[:n]
	if isRecording {
		if ok := e.input.PullInput(inL, inR, n, timeStamp); !ok {
			e.inputFailures.Add(1)
		}
	}

	// 2. Click render, and collect any beat events the block crossed.
	for i := 0; i < n; i++ {
		outL[i], outR[i] = 0, 0
	}
	events := e.eventScratch[:0]
	if e.playing.Load() && len(e.pattern.Normal()) > 0 {
		events = e.voice.Render(e.pattern, e.clock, p0, n, outL[:n], outR[:n], events)
	}
	for _, ev := range events {
		select {
		case e.beatEvents <- ev:
		default:
			// Dispatch goroutine is behind; dropping a beat notification
			// never affects the audio itself.
		}
	}

	// 3/4. Record path: delay the just-rendered clicks, mix with mic, push
	// to the ring.
	if isRecording {
		dlyL, dlyR := e.dlyL[:n], e.dlyR[:n]
		session.DelayLine.PushBlock(outL[:n], outR[:n], n)
		session.DelayLine.ReadBlock(dlyL, dlyR, n)

		gain := float32(e.micGain())
		for i := 0; i < n; i++ {
			mixL := dlyL[i] + inL[i]*gain
			mixR := dlyR[i] + inR[i]*gain
			session.Ring.Write(mixL)
			session.Ring.Write(mixR)
		}
	}

	// 5. Monitor mix: live (undelayed) mic added to the output the
	// performer hears, if recording and monitoring are both enabled.
	if isRecording && e.monitoring.Load() {
		for i := 0; i < n; i++ {
			outL[i] += inL[i]
			outR[i] += inR[i]
		}
	}

	// 6. Advance clock.
	e.clock.Advance(n)
}
