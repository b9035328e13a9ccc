package recording

import "testing"

func TestNewSizesRingForConfiguredSeconds(t *testing.T) {
	s := New("/tmp/take.wav", 1000, 48000, 2.0, 64, 512)
	if s.TargetPath != "/tmp/take.wav" {
		t.Fatalf("TargetPath = %q", s.TargetPath)
	}
	if s.StartSample != 1000 {
		t.Fatalf("StartSample = %d, want 1000", s.StartSample)
	}
	// ringCapacitySamples = int(seconds*sampleRate)*2 + 1; Capacity() is
	// that minus the ring's one reserved slot.
	wantUsable := 2 * 48000 * 2
	if got := s.Ring.Capacity(); got != wantUsable {
		t.Fatalf("Ring.Capacity() = %d, want %d", got, wantUsable)
	}
	if got := s.DelayLine.TargetFrames(); got != 64 {
		t.Fatalf("DelayLine.TargetFrames() = %d, want 64", got)
	}
}

func TestEachSessionGetsAFreshID(t *testing.T) {
	a := New("/tmp/a.wav", 0, 48000, 1.0, 0, 256)
	b := New("/tmp/b.wav", 0, 48000, 1.0, 0, 256)
	if a.ID == b.ID {
		t.Fatal("two sessions got the same ID")
	}
}
