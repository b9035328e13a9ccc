package filewriter

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/clickline/metronome/pkg/ringbuffer"
	"github.com/clickline/metronome/pkg/wavfile"
)

func TestDrainsRingIntoFile(t *testing.T) {
	ring := ringbuffer.New[float32](1 << 16)
	path := filepath.Join(t.TempDir(), "rec.wav")
	w, err := New(ring, path, 48000, 1024)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.Start()

	samples := []float32{0.1, -0.1, 0.2, -0.2, 0.3, -0.3}
	ring.WriteAll(samples)

	// Give the writer a moment to drain, then request a clean stop.
	time.Sleep(5 * IdleSleep)
	w.Stop()

	if w.Failed() {
		t.Fatalf("writer reported failure: %v", w.Err())
	}

	got, sr, ch, err := wavfile.ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if sr != 48000 || ch != 2 {
		t.Fatalf("sr/ch = %d/%d, want 48000/2", sr, ch)
	}
	if len(got) != len(samples) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(samples))
	}
	for i := range samples {
		if got[i] != samples[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], samples[i])
		}
	}
}

func TestStopDrainsRemainderBeforeClosing(t *testing.T) {
	ring := ringbuffer.New[float32](1 << 16)
	path := filepath.Join(t.TempDir(), "rec.wav")
	w, err := New(ring, path, 48000, 4) // small tmp buffer forces several drain passes
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.Start()

	const n = 2000
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(i)
	}
	ring.WriteAll(samples)

	w.Stop() // should block until every sample currently in the ring is drained

	got, _, _, err := wavfile.ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != n {
		t.Fatalf("len(got) = %d, want %d", len(got), n)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	ring := ringbuffer.New[float32](64)
	path := filepath.Join(t.TempDir(), "rec.wav")
	w, err := New(ring, path, 48000, 16)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.Start()
	w.Stop()
	w.Stop() // must not block or panic the second time
}
