// Package resample converts a decoded click waveform from its source
// sample rate to the device's render sample rate before it is loaded into
// ClickPattern. It runs once, at load_click time on the controller's
// calling goroutine; the render thread never resamples.
package resample

// Linear resamples src, recorded at srcRate Hz, to dstRate Hz using linear
// interpolation between neighboring samples. Returns src unchanged if the
// rates already match.
//
// This is a small hand-rolled implementation rather than a dependency:
// see DESIGN.md for why no resampling library fit.
func Linear(src []float32, srcRate, dstRate int) []float32 {
	if srcRate <= 0 || dstRate <= 0 || srcRate == dstRate || len(src) == 0 {
		return src
	}

	ratio := float64(srcRate) / float64(dstRate)
	outLen := int(float64(len(src)) / ratio)
	if outLen < 1 {
		outLen = 1
	}
	out := make([]float32, outLen)

	for i := range out {
		srcPos := float64(i) * ratio
		i0 := int(srcPos)
		if i0 >= len(src)-1 {
			out[i] = src[len(src)-1]
			continue
		}
		frac := float32(srcPos - float64(i0))
		out[i] = src[i0] + (src[i0+1]-src[i0])*frac
	}
	return out
}
