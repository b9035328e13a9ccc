// Package wavfile writes interleaved 32-bit IEEE-float stereo PCM to a WAV
// container incrementally, patching the RIFF/data chunk sizes on Close.
//
// A container that encodes 32-bit float stereo natively, without an
// integer round trip, needs a hand-rolled RIFF writer: go-audio/wav's
// Encoder is built around integer PCM via audio.IntBuffer (see
// DESIGN.md), so it isn't used for this path.
package wavfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const (
	// wavAudioFormatIEEEFloat is the WAVE_FORMAT_IEEE_FLOAT fmt-chunk code.
	wavAudioFormatIEEEFloat = 3
	bitsPerSample           = 32
)

// Writer incrementally appends interleaved float32 stereo frames to a WAV
// file on disk, fixing up the header on Close.
type Writer struct {
	f             *os.File
	sampleRate    int
	numChannels   int
	framesWritten int64
}

// Create opens path for writing and reserves a placeholder RIFF header that
// Close will patch with the final chunk sizes.
func Create(path string, sampleRate, numChannels int) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("wavfile: create %s: %w", path, err)
	}
	w := &Writer{f: f, sampleRate: sampleRate, numChannels: numChannels}
	if err := w.writeHeader(0); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeHeader(dataSize uint32) error {
	if _, err := w.f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	channels := uint16(w.numChannels)
	blockAlign := channels * (bitsPerSample / 8)
	byteRate := uint32(w.sampleRate) * uint32(blockAlign)

	bw := func(v any) error { return binary.Write(w.f, binary.LittleEndian, v) }

	if _, err := w.f.WriteString("RIFF"); err != nil {
		return err
	}
	if err := bw(uint32(36 + dataSize)); err != nil {
		return err
	}
	if _, err := w.f.WriteString("WAVE"); err != nil {
		return err
	}
	if _, err := w.f.WriteString("fmt "); err != nil {
		return err
	}
	if err := bw(uint32(16)); err != nil {
		return err
	}
	if err := bw(uint16(wavAudioFormatIEEEFloat)); err != nil {
		return err
	}
	if err := bw(channels); err != nil {
		return err
	}
	if err := bw(uint32(w.sampleRate)); err != nil {
		return err
	}
	if err := bw(byteRate); err != nil {
		return err
	}
	if err := bw(blockAlign); err != nil {
		return err
	}
	if err := bw(uint16(bitsPerSample)); err != nil {
		return err
	}
	if _, err := w.f.WriteString("data"); err != nil {
		return err
	}
	if err := bw(dataSize); err != nil {
		return err
	}
	return nil
}

// WriteInterleaved appends interleaved float32 samples (already L,R,L,R,...
// ordered for a stereo file) to the file.
func (w *Writer) WriteInterleaved(samples []float32) error {
	if _, err := w.f.Seek(0, io.SeekEnd); err != nil {
		return err
	}
	if err := binary.Write(w.f, binary.LittleEndian, samples); err != nil {
		return fmt.Errorf("wavfile: write samples: %w", err)
	}
	w.framesWritten += int64(len(samples)) / int64(w.numChannels)
	return nil
}

// FramesWritten returns the number of frames (not individual samples)
// written so far.
func (w *Writer) FramesWritten() int64 {
	return w.framesWritten
}

// Close patches the RIFF and data chunk sizes to reflect everything written
// and closes the underlying file.
func (w *Writer) Close() error {
	dataSize := uint32(w.framesWritten) * uint32(w.numChannels) * (bitsPerSample / 8)
	if err := w.writeHeader(dataSize); err != nil {
		w.f.Close()
		return err
	}
	if err := w.f.Sync(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
