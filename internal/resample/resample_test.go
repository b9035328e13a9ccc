package resample

import "testing"

func TestSameRateIsNoop(t *testing.T) {
	src := []float32{1, 2, 3}
	out := Linear(src, 48000, 48000)
	if len(out) != len(src) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(src))
	}
	for i := range src {
		if out[i] != src[i] {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], src[i])
		}
	}
}

func TestDownsampleHalvesLength(t *testing.T) {
	src := make([]float32, 100)
	for i := range src {
		src[i] = float32(i)
	}
	out := Linear(src, 48000, 24000)
	wantLen := 50
	if diff := out; len(diff) < wantLen-1 || len(diff) > wantLen+1 {
		t.Fatalf("len(out) = %d, want ~%d", len(out), wantLen)
	}
}

func TestUpsamplePreservesEndpoints(t *testing.T) {
	src := []float32{0, 1, 0}
	out := Linear(src, 24000, 48000)
	if out[0] != src[0] {
		t.Fatalf("out[0] = %v, want %v", out[0], src[0])
	}
	if last := out[len(out)-1]; last != src[len(src)-1] {
		t.Fatalf("out[last] = %v, want %v", last, src[len(src)-1])
	}
}

func TestEmptyInput(t *testing.T) {
	out := Linear(nil, 48000, 24000)
	if len(out) != 0 {
		t.Fatalf("len(out) = %d, want 0", len(out))
	}
}
