package delayline

import "testing"

// After at least L frames have been pushed, the i-th frame read equals
// the i-th frame pushed.
func TestGroupDelayAfterWarmup(t *testing.T) {
	const L = 240
	d := New(L, 64)

	total := L + 100
	pushedL := make([]float32, total)
	pushedR := make([]float32, total)
	for i := range pushedL {
		pushedL[i] = float32(i) + 0.5
		pushedR[i] = -float32(i) - 0.5
	}

	readL := make([]float32, total)
	readR := make([]float32, total)

	const block = 10
	for i := 0; i < total; i += block {
		n := block
		if i+n > total {
			n = total - i
		}
		d.PushBlock(pushedL[i:i+n], pushedR[i:i+n], n)
		d.ReadBlock(readL[i:i+n], readR[i:i+n], n)
	}

	for i := 0; i < total-L; i++ {
		if readL[i+L] != pushedL[i] {
			t.Fatalf("readL[%d] = %v, want pushedL[%d] = %v", i+L, readL[i+L], i, pushedL[i])
		}
		if readR[i+L] != pushedR[i] {
			t.Fatalf("readR[%d] = %v, want pushedR[%d] = %v", i+L, readR[i+L], i, pushedR[i])
		}
	}
}

func TestSilenceBeforeWarmup(t *testing.T) {
	const L = 240
	d := New(L, 64)

	l := make([]float32, 1)
	r := make([]float32, 1)
	l[0], r[0] = 1.0, 1.0

	outL := make([]float32, 1)
	outR := make([]float32, 1)

	for i := 0; i < L; i++ {
		d.PushBlock(l, r, 1)
		d.ReadBlock(outL, outR, 1)
		if outL[0] != 0 || outR[0] != 0 {
			t.Fatalf("frame %d: expected silence before warm-up, got %v/%v", i, outL[0], outR[0])
		}
	}
	if !d.WarmedUp() {
		t.Fatal("expected WarmedUp() after L frames pushed and read")
	}
}

func TestZeroLatencyIsPassThrough(t *testing.T) {
	d := New(0, 16)
	if !d.WarmedUp() {
		t.Fatal("a zero-latency line should be warmed up immediately")
	}
	l := []float32{0.25}
	r := []float32{-0.25}
	outL := make([]float32, 1)
	outR := make([]float32, 1)
	d.PushBlock(l, r, 1)
	d.ReadBlock(outL, outR, 1)
	if outL[0] != 0.25 || outR[0] != -0.25 {
		t.Fatalf("pass-through mismatch: got %v/%v", outL[0], outR[0])
	}
}
