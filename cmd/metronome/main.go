// Command metronome is a CLI harness around the controller/engine stack:
// it decodes a click WAV file, drives a simulated periodic render device,
// optionally records a take, and prints the stop_recording result as
// JSON. It stands in for the real host bridge a mobile plugin layer would
// provide, which the core never talks to directly.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/clickline/metronome/internal/config"
	"github.com/clickline/metronome/pkg/controller"
)

// silentInput is a stand-in InputPuller for environments with no real
// capture device wired up; it reports silence and never fails.
type silentInput struct{}

func (silentInput) PullInput(inL, inR []float32, n int, _ float64) bool {
	for i := 0; i < n; i++ {
		inL[i], inR[i] = 0, 0
	}
	return true
}

// decodeClickWAV loads a mono (or channel-0-only) PCM click sound as
// normalized float32 samples, decoding via go-audio/wav + go-audio/audio.
func decodeClickWAV(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("%s: not a valid WAV file", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: decode: %w", path, err)
	}
	return intBufferToFloat32Mono(buf), int(dec.SampleRate), nil
}

// intBufferToFloat32Mono takes channel 0 of a decoded int PCM buffer and
// normalizes it to float32 in [-1, 1], assuming 16-bit source samples.
func intBufferToFloat32Mono(buf *goaudio.IntBuffer) []float32 {
	const maxInt16 = float32(math.MaxInt16)
	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	frames := len(buf.Data) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		out[i] = float32(buf.Data[i*channels]) / maxInt16
	}
	return out
}

func main() {
	var (
		clickPath  = flag.String("click", "", "path to the normal click WAV file")
		accentPath = flag.String("accent", "", "path to the accent click WAV file (optional)")
		bpm        = flag.Float64("bpm", 0, "override the configured tempo")
		ts         = flag.Int("time-signature", 0, "override the configured time signature")
		outPath    = flag.String("out", "", "if set, record a take to this WAV path")
		duration   = flag.Duration("duration", 4*time.Second, "how long to run the simulated render loop")
		sampleRate = flag.Int("sample-rate", 48000, "render sample rate")
		blockSize  = flag.Int("block-size", 512, "render block size in frames")
		cfgPath    = flag.String("config", "", "optional viper config file")
	)
	flag.Parse()

	config.SetDefaults()
	config.LoadConfig(*cfgPath)
	if err := config.ConfigureDefaultLogger(); err != nil {
		fmt.Fprintln(os.Stderr, "could not configure logger:", err)
		os.Exit(1)
	}

	effectiveBPM := config.DefaultBPM()
	if *bpm > 0 {
		effectiveBPM = *bpm
	}
	effectiveTS := config.DefaultTimeSignature()
	if *ts > 0 {
		effectiveTS = *ts
	}

	c := controller.New(controller.Config{
		SampleRate:         *sampleRate,
		MaxBlockFrames:     *blockSize,
		RingSeconds:        config.RingSeconds(),
		InputLatencyFrames: *blockSize, // one block of assumed input-path latency absent a real device query
		BPM:                effectiveBPM,
		TimeSignature:      effectiveTS,
		Input:              silentInput{},
	})
	defer c.Destroy()

	if err := c.SetVolume(config.DefaultVolume()); err != nil {
		slog.Error("SetVolume", "err", err)
	}
	if err := c.SetMicGain(config.DefaultMicGain()); err != nil {
		slog.Error("SetMicGain", "err", err)
	}

	if *clickPath != "" {
		samples, sr, err := decodeClickWAV(*clickPath)
		if err != nil {
			slog.Error("decode click", "err", err)
			os.Exit(1)
		}
		c.LoadClick(samples, sr)
	}
	if *accentPath != "" {
		samples, sr, err := decodeClickWAV(*accentPath)
		if err != nil {
			slog.Error("decode accent", "err", err)
			os.Exit(1)
		}
		c.LoadAccent(samples, sr)
	}

	c.EnableMicrophone(true)
	c.Play()

	if *outPath != "" {
		if ok, err := c.StartRecording(*outPath); !ok {
			slog.Error("StartRecording", "err", err)
			os.Exit(1)
		}
	}

	runSimulatedRenderLoop(c, *sampleRate, *blockSize, *duration)

	if *outPath != "" {
		result, err := c.StopRecording()
		if err != nil {
			slog.Error("StopRecording", "err", err)
			os.Exit(1)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			slog.Error("encode result", "err", err)
			os.Exit(1)
		}
	}
}

// runSimulatedRenderLoop stands in for the real device's periodic
// callback: it invokes Engine.Render once per block on a ticker, for
// duration worth of blocks. A real host bridge would instead be called
// back by the OS audio stack at this cadence.
func runSimulatedRenderLoop(c *controller.Controller, sampleRate, blockSize int, duration time.Duration) {
	eng := c.Engine()
	outL := make([]float32, blockSize)
	outR := make([]float32, blockSize)

	blockPeriod := time.Duration(float64(blockSize) / float64(sampleRate) * float64(time.Second))
	ticker := time.NewTicker(blockPeriod)
	defer ticker.Stop()

	deadline := time.Now().Add(duration)
	var timeStamp float64
	for time.Now().Before(deadline) {
		<-ticker.C
		eng.Render(blockSize, outL, outR, timeStamp)
		timeStamp += float64(blockSize)
	}
}
