// Package controller implements Controller, the host-facing API that owns
// a render engine instance: tempo/time-signature/volume/mic controls,
// click loading, recording session lifecycle, and beat-event subscription
// fan-out.
package controller

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/clickline/metronome/internal/resample"
	"github.com/clickline/metronome/pkg/clickpattern"
	"github.com/clickline/metronome/pkg/clickvoice"
	"github.com/clickline/metronome/pkg/clock"
	"github.com/clickline/metronome/pkg/engine"
	"github.com/clickline/metronome/pkg/filewriter"
	"github.com/clickline/metronome/pkg/metronomeerr"
	"github.com/clickline/metronome/pkg/recording"
)

// BeatSink receives a copy of every beat event fired while it is
// subscribed. Called from the controller's dispatch goroutine, never from
// the render thread; it must not block for long, since a slow sink delays
// delivery to every other subscriber.
type BeatSink func(clickvoice.BeatEvent)

type subscription struct {
	sink BeatSink
	done <-chan struct{}
}

// Config bundles the construction-time parameters of a Controller. These
// are read once and never touched by the render path.
type Config struct {
	SampleRate         int
	MaxBlockFrames     int
	RingSeconds        float64 // seconds of stereo audio the recording ring can absorb
	InputLatencyFrames int     // group delay applied to the click stream so it lines up with captured input
	BPM                float64
	TimeSignature      int
	Input              engine.InputPuller // external collaborator; see engine.InputPuller
}

// StopResult is returned by StopRecording, describing a finished take.
type StopResult struct {
	Path           string
	Timestamps     []int64 // sample indices, relative to recording start, of every beat fired during the recording
	BPM            float64
	TimeSignature  int
	DroppedSamples uint64
}

// Controller is safe for concurrent use by multiple goroutines. The
// Render method of its Engine is the exception: it is reserved for the
// single render thread.
type Controller struct {
	id     uuid.UUID
	logger *slog.Logger

	sampleRate   int
	inputLatency int
	ringSeconds  float64

	clock   *clock.SampleClock
	pattern *clickpattern.ClickPattern
	voice   *clickvoice.ClickVoice
	eng     *engine.Engine

	beatEvents   chan clickvoice.BeatEvent
	stopDispatch chan struct{}

	mu          sync.Mutex
	subscribers []subscription
	micEnabled  bool
	volume100   int

	recMu         sync.Mutex
	session       *recording.Session
	writer        *filewriter.Writer
	recStart      int64
	recTimestamps []int64
}

// New constructs a Controller and starts its beat-event dispatch loop.
func New(cfg Config) *Controller {
	id := uuid.New()
	c := &Controller{
		id:           id,
		logger:       slog.Default().With("component", "controller", "id", id),
		sampleRate:   cfg.SampleRate,
		inputLatency: cfg.InputLatencyFrames,
		ringSeconds:  cfg.RingSeconds,
		clock:        clock.New(float64(cfg.SampleRate), cfg.BPM),
		pattern:      clickpattern.New(cfg.TimeSignature),
		voice:        clickvoice.New(),
		beatEvents:   make(chan clickvoice.BeatEvent, 256),
		stopDispatch: make(chan struct{}),
		volume100:    100,
	}
	c.eng = engine.New(c.clock, c.pattern, c.voice, cfg.Input, c.beatEvents, cfg.MaxBlockFrames)
	go c.dispatchLoop()
	return c
}

// ID identifies this controller, e.g. as a registry.Registry key.
func (c *Controller) ID() uuid.UUID { return c.id }

// Engine exposes the underlying render engine so a host bridge can wire it
// to the actual device callback; the controller owns configuration and
// lifecycle, not block-by-block scheduling.
func (c *Controller) Engine() *engine.Engine { return c.eng }

func (c *Controller) dispatchLoop() {
	for {
		select {
		case ev := <-c.beatEvents:
			c.mu.Lock()
			subs := make([]subscription, 0, len(c.subscribers))
			for _, s := range c.subscribers {
				select {
				case <-s.done:
					continue // context cancelled since last fire; drop it
				default:
					subs = append(subs, s)
				}
			}
			c.subscribers = subs
			c.mu.Unlock()

			for _, s := range subs {
				s.sink(ev)
			}

			c.recMu.Lock()
			if c.session != nil {
				c.recTimestamps = append(c.recTimestamps, ev.SampleIndex-c.recStart)
			}
			c.recMu.Unlock()
		case <-c.stopDispatch:
			return
		}
	}
}

// SubscribeBeatEvents registers sink to receive beat events until ctx is
// done, at which point it is dropped from the fan-out list.
func (c *Controller) SubscribeBeatEvents(ctx context.Context, sink BeatSink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, subscription{sink: sink, done: ctx.Done()})
}

// LoadClick takes an already-decoded normal click waveform, resamples it to
// the device's sample rate if it was recorded at a different one, then
// loads it into the active pattern.
func (c *Controller) LoadClick(samples []float32, sourceSampleRate int) {
	c.pattern.LoadNormal(resample.Linear(samples, sourceSampleRate, c.sampleRate))
}

// LoadAccent loads an already-decoded accent click waveform, same contract
// as LoadClick.
func (c *Controller) LoadAccent(samples []float32, sourceSampleRate int) {
	c.pattern.LoadAccent(resample.Linear(samples, sourceSampleRate, c.sampleRate))
}

// Play starts click generation.
func (c *Controller) Play() { c.eng.SetPlaying(true) }

// Pause stops click generation without resetting the clock position.
func (c *Controller) Pause() { c.eng.SetPlaying(false) }

// Stop stops click generation and resets the clock back to sample zero,
// so the next Play starts the pattern from beat zero again.
func (c *Controller) Stop() {
	c.eng.SetPlaying(false)
	c.clock.Reset()
	c.pattern.SetLastBeatFired(-1)
}

// IsPlaying reports whether clicks are currently being generated.
func (c *Controller) IsPlaying() bool { return c.eng.IsPlaying() }

// SetBPM updates the tempo. Rejects non-positive values, since
// SamplesPerBeat divides by bpm.
func (c *Controller) SetBPM(bpm float64) error {
	if bpm <= 0 {
		return metronomeerr.InvalidState("bpm must be positive")
	}
	c.clock.SetBPM(bpm)
	return nil
}

// GetBPM returns the current tempo.
func (c *Controller) GetBPM() float64 { return c.clock.BPM() }

// SetTimeSignature updates the beats-per-accent-cycle. Values <= 1 disable
// accenting entirely, per pkg/clickpattern.
func (c *Controller) SetTimeSignature(ts int) error {
	if ts < 1 {
		return metronomeerr.InvalidState("time signature must be >= 1")
	}
	c.pattern.SetTimeSignature(ts)
	return nil
}

// GetTimeSignature returns the current time signature.
func (c *Controller) GetTimeSignature() int { return c.pattern.TimeSignature() }

// SetVolume sets the click output level on the host-facing 0..100 scale.
func (c *Controller) SetVolume(v int) error {
	if v < 0 || v > 100 {
		return metronomeerr.InvalidState("volume must be in [0, 100]")
	}
	c.mu.Lock()
	c.volume100 = v
	c.mu.Unlock()
	c.voice.SetVolume(float32(v) / 100.0)
	return nil
}

// GetVolume returns the last value accepted by SetVolume.
func (c *Controller) GetVolume() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume100
}

// SetMicGain sets the gain applied to captured input on the record path,
// 0.0..1.0. SetMicVolume is an alias for the same control.
func (c *Controller) SetMicGain(gain float64) error {
	if gain < 0 || gain > 1 {
		return metronomeerr.InvalidState("mic gain must be in [0.0, 1.0]")
	}
	c.eng.SetMicGain(gain)
	return nil
}

// SetMicVolume is an alias for SetMicGain.
func (c *Controller) SetMicVolume(gain float64) error { return c.SetMicGain(gain) }

// SetMonitoring enables or disables adding live mic input into the
// performer-facing output while recording.
func (c *Controller) SetMonitoring(on bool) { c.eng.SetMonitoring(on) }

// EnableMicrophone records whether the host has granted microphone
// permission/capture access. StartRecording refuses to arm a session
// until this has been set true, modeling an OS-level capture permission
// gate that must be granted before a RecordingSession can be armed.
func (c *Controller) EnableMicrophone(on bool) {
	c.mu.Lock()
	c.micEnabled = on
	c.mu.Unlock()
}

// StartRecording arms a new recording session writing to path. Returns
// false (with an error) if a recording is already in progress or the
// microphone has not been enabled.
func (c *Controller) StartRecording(path string) (bool, error) {
	c.mu.Lock()
	micEnabled := c.micEnabled
	c.mu.Unlock()
	if !micEnabled {
		return false, metronomeerr.PermissionDenied("microphone not enabled")
	}

	c.recMu.Lock()
	defer c.recMu.Unlock()
	if c.session != nil {
		return false, metronomeerr.InvalidState("already recording")
	}

	startSample := int64(c.clock.Position())
	session := recording.New(path, startSample, c.sampleRate, c.ringSeconds, c.inputLatency, c.eng.MaxBlockSize())

	writer, err := filewriter.New(session.Ring, path, c.sampleRate, 4096)
	if err != nil {
		return false, metronomeerr.IoError("could not open recording file", err)
	}
	writer.Start()

	c.eng.ArmSession(session)
	c.session = session
	c.writer = writer
	c.recStart = startSample
	c.recTimestamps = nil

	c.logger.Info("recording started", "path", path)
	return true, nil
}

// StopRecording disarms the current session, drains the writer, and
// returns the recorded metadata. The caller is responsible for ensuring
// the render thread is not concurrently mid-block when this is called, or
// has had at least one block boundary to observe the disarm — the same
// non-owning relationship the render thread has with every other
// controller mutation.
func (c *Controller) StopRecording() (StopResult, error) {
	c.recMu.Lock()
	defer c.recMu.Unlock()
	if c.session == nil {
		return StopResult{}, metronomeerr.InvalidState("not recording")
	}

	c.eng.DisarmSession()
	c.writer.Stop()

	result := StopResult{
		Path:           c.session.TargetPath,
		Timestamps:     c.recTimestamps,
		BPM:            c.clock.BPM(),
		TimeSignature:  c.pattern.TimeSignature(),
		DroppedSamples: c.session.Ring.Dropped(),
	}

	var err error
	if c.writer.Failed() {
		err = metronomeerr.IoError("recording write failed", c.writer.Err())
	}

	c.logger.Info("recording stopped", "path", result.Path, "beats", len(result.Timestamps))

	c.session = nil
	c.writer = nil
	c.recTimestamps = nil
	return result, err
}

// IsRecording reports whether a recording session is currently armed.
func (c *Controller) IsRecording() bool {
	c.recMu.Lock()
	defer c.recMu.Unlock()
	return c.session != nil
}

// Destroy stops any in-progress recording and shuts down the dispatch
// goroutine. The Controller must not be used after Destroy returns.
func (c *Controller) Destroy() {
	if c.IsRecording() {
		if _, err := c.StopRecording(); err != nil {
			c.logger.Error("error stopping recording during Destroy", "err", err)
		}
	}
	close(c.stopDispatch)
}
