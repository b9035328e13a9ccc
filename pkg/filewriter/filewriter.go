// Package filewriter implements the background worker that drains the
// render thread's ring buffer into a float PCM file.
package filewriter

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/clickline/metronome/pkg/ringbuffer"
	"github.com/clickline/metronome/pkg/wavfile"
)

// IdleSleep is how long the writer sleeps between polls of an empty ring.
// This is the only suspension point in the whole engine permitted to sleep:
// the render thread never does.
const IdleSleep = time.Millisecond

// Writer drains interleaved stereo float32 samples from a ring buffer and
// appends them to a WAV file until told to stop, at which point it drains
// whatever remains in the ring before closing the file.
type Writer struct {
	logger *slog.Logger
	ring   *ringbuffer.SPSCRingBuffer[float32]
	wav    *wavfile.Writer

	tmp []float32 // scratch buffer, sized once at construction

	stopRequested atomic.Bool
	stopped       chan struct{}
	stopOnce      sync.Once

	failed atomic.Bool
	ioErr  error
	errMu  sync.Mutex
}

// New creates a Writer that will append to a freshly created WAV file at
// path, draining ring. The caller must call Start to begin the worker.
func New(ring *ringbuffer.SPSCRingBuffer[float32], path string, sampleRate int, tmpCapacitySamples int) (*Writer, error) {
	wav, err := wavfile.Create(path, sampleRate, 2)
	if err != nil {
		return nil, fmt.Errorf("filewriter: %w", err)
	}
	if tmpCapacitySamples < 2 {
		tmpCapacitySamples = 2
	}
	return &Writer{
		logger:  slog.Default().With("component", "filewriter"),
		ring:    ring,
		wav:     wav,
		tmp:     make([]float32, tmpCapacitySamples),
		stopped: make(chan struct{}),
	}, nil
}

// Start launches the drain loop on a dedicated goroutine.
func (w *Writer) Start() {
	go w.run()
}

func (w *Writer) run() {
	defer close(w.stopped)
	for {
		k := min(len(w.tmp), w.ring.AvailableRead())
		if k > 0 {
			n := w.ring.ReadInto(w.tmp[:k])
			if err := w.wav.WriteInterleaved(w.tmp[:n]); err != nil {
				w.logger.Error("write failed, stopping writer", "err", err)
				w.errMu.Lock()
				w.ioErr = err
				w.errMu.Unlock()
				w.failed.Store(true)
				break
			}
			continue
		}
		if w.stopRequested.Load() && w.ring.AvailableRead() == 0 {
			break
		}
		time.Sleep(IdleSleep)
	}
	if err := w.wav.Close(); err != nil {
		w.logger.Error("error closing wav file", "err", err)
		w.errMu.Lock()
		if w.ioErr == nil {
			w.ioErr = err
		}
		w.errMu.Unlock()
		w.failed.Store(true)
	}
}

// Stop requests the writer drain whatever remains in the ring and exit,
// then blocks until it has done so. Idempotent; safe to call more than
// once or concurrently.
func (w *Writer) Stop() {
	w.stopOnce.Do(func() {
		w.stopRequested.Store(true)
	})
	<-w.stopped
}

// Failed reports whether the writer stopped because of an I/O error rather
// than a normal Stop request.
func (w *Writer) Failed() bool {
	return w.failed.Load()
}

// Err returns the I/O error that stopped the writer, if any.
func (w *Writer) Err() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.ioErr
}

// FramesWritten returns the number of stereo frames committed to disk.
func (w *Writer) FramesWritten() int64 {
	return w.wav.FramesWritten()
}
