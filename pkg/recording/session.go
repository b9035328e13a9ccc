// Package recording defines RecordingSession, the bundle of state that
// exists only while the engine is recording.
package recording

import (
	"github.com/google/uuid"

	"github.com/clickline/metronome/pkg/delayline"
	"github.com/clickline/metronome/pkg/ringbuffer"
)

// Session exists only while recording is armed: created before the render
// thread observes IsRecording() == true, and torn down only after the
// render thread has observed it false and the writer has drained.
type Session struct {
	ID          uuid.UUID
	TargetPath  string
	StartSample int64

	Ring      *ringbuffer.SPSCRingBuffer[float32]
	DelayLine *delayline.LatencyDelayLine
}

// New creates a session with a fresh ring sized in seconds of stereo float32
// audio at sampleRate, and a delay line targeting delayFrames of group
// delay, sized to absorb blocks up to maxBlockFrames.
func New(targetPath string, startSample int64, sampleRate int, ringSeconds float64, delayFrames, maxBlockFrames int) *Session {
	ringCapacitySamples := int(ringSeconds*float64(sampleRate))*2 + 1
	return &Session{
		ID:          uuid.New(),
		TargetPath:  targetPath,
		StartSample: startSample,
		Ring:        ringbuffer.New[float32](ringCapacitySamples),
		DelayLine:   delayline.New(delayFrames, maxBlockFrames),
	}
}
