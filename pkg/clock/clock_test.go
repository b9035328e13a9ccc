package clock

import "testing"

func TestSamplesPerBeat(t *testing.T) {
	c := New(48000, 120)
	got := c.SamplesPerBeat()
	want := 48000.0 * 60.0 / 120.0
	if got != want {
		t.Fatalf("SamplesPerBeat() = %v, want %v", got, want)
	}
}

func TestBeatIndexAndPhase(t *testing.T) {
	spb := 24000.0 // 120bpm @ 48kHz
	cases := []struct {
		p         float64
		wantIndex int64
		wantPhase float64
	}{
		{0, 0, 0},
		{100, 0, 100},
		{24000, 1, 0},
		{24050, 1, 50},
		{48000, 2, 0},
	}
	for _, c := range cases {
		if idx := BeatIndex(c.p, spb); idx != c.wantIndex {
			t.Errorf("BeatIndex(%v) = %d, want %d", c.p, idx, c.wantIndex)
		}
		if ph := BeatPhase(c.p, spb); ph != c.wantPhase {
			t.Errorf("BeatPhase(%v) = %v, want %v", c.p, ph, c.wantPhase)
		}
	}
}

func TestAdvance(t *testing.T) {
	c := New(48000, 120)
	c.Advance(512)
	c.Advance(512)
	if c.Position() != 1024 {
		t.Fatalf("Position() = %v, want 1024", c.Position())
	}
}

func TestSetBPMRoundTrip(t *testing.T) {
	c := New(48000, 120)
	c.SetBPM(180)
	if c.BPM() != 180 {
		t.Fatalf("BPM() = %v, want 180", c.BPM())
	}
}
