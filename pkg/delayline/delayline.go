// Package delayline implements the fixed-length stereo delay applied to the
// click stream destined for the recording, so that on-disk clicks land at
// the sample the performer heard them.
package delayline

// LatencyDelayLine is a stereo interleaved ring targeting a fixed group
// delay of L frames. Confined to the render thread: PushBlock and ReadBlock
// are always called in order within a single render call, so no internal
// synchronization is needed.
//
// Storage is preallocated to L+maxBlockFrames frames at construction and
// never grows, so PushBlock/ReadBlock make no allocations on the render
// path. maxBlockFrames must be at least as large as any block size the
// caller will ever pass to PushBlock/ReadBlock in a single call.
type LatencyDelayLine struct {
	buf       []float32 // ring storage, interleaved L,R pairs, capFrames frames long
	capFrames int
	head      int // read index, in frames
	count     int // frames currently buffered

	l int // target group delay, in frames

	// warmupRemaining counts down from l to 0. While > 0, reads yield
	// silence without consuming buffered frames, so exactly l frames
	// accumulate before the first real frame is read.
	warmupRemaining int
}

// New creates a delay line targeting l frames (2*l interleaved samples) of
// group delay, with enough backing storage to absorb blocks of up to
// maxBlockFrames frames without allocating.
func New(l int, maxBlockFrames int) *LatencyDelayLine {
	if l < 0 {
		l = 0
	}
	if maxBlockFrames < 1 {
		maxBlockFrames = 1
	}
	capFrames := l + maxBlockFrames
	return &LatencyDelayLine{
		buf:             make([]float32, capFrames*2),
		capFrames:       capFrames,
		l:               l,
		warmupRemaining: l,
	}
}

// TargetFrames returns L, the configured group delay in frames.
func (d *LatencyDelayLine) TargetFrames() int {
	return d.l
}

// WarmedUp reports whether the line has accumulated its target L frames and
// has begun producing delayed output rather than silence.
func (d *LatencyDelayLine) WarmedUp() bool {
	return d.warmupRemaining == 0
}

// PushBlock appends n stereo frames (l[i], r[i] pairs) to the line.
func (d *LatencyDelayLine) PushBlock(l, r []float32, n int) {
	for i := 0; i < n; i++ {
		idx := (d.head + d.count) % d.capFrames
		d.buf[idx*2] = l[i]
		d.buf[idx*2+1] = r[i]
		d.count++
	}
}

// ReadBlock consumes n stereo frames from the front of the line into
// outL/outR. Before warm-up, reads yield silence; after warm-up, the i-th
// frame read equals the i-th frame pushed L frames earlier.
func (d *LatencyDelayLine) ReadBlock(outL, outR []float32, n int) {
	for i := 0; i < n; i++ {
		if d.warmupRemaining > 0 {
			outL[i], outR[i] = 0, 0
			d.warmupRemaining--
			continue
		}
		outL[i] = d.buf[d.head*2]
		outR[i] = d.buf[d.head*2+1]
		d.head = (d.head + 1) % d.capFrames
		d.count--
	}
}
