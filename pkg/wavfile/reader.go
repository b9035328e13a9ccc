package wavfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// ReadAll reads back an entire float32 WAV file written by Writer. Used by
// tests to verify recordings; never called on the render thread.
func ReadAll(path string) (samples []float32, sampleRate, numChannels int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()

	var riff [12]byte
	if _, err := io.ReadFull(f, riff[:]); err != nil {
		return nil, 0, 0, err
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, 0, 0, fmt.Errorf("wavfile: not a RIFF/WAVE file")
	}

	var dataSize uint32
	for {
		var chunkID [4]byte
		var chunkSize uint32
		if _, err := io.ReadFull(f, chunkID[:]); err != nil {
			return nil, 0, 0, err
		}
		if err := binary.Read(f, binary.LittleEndian, &chunkSize); err != nil {
			return nil, 0, 0, err
		}
		switch string(chunkID[:]) {
		case "fmt ":
			var audioFormat, channels uint16
			var sr, byteRate uint32
			var blockAlign, bits uint16
			binary.Read(f, binary.LittleEndian, &audioFormat)
			binary.Read(f, binary.LittleEndian, &channels)
			binary.Read(f, binary.LittleEndian, &sr)
			binary.Read(f, binary.LittleEndian, &byteRate)
			binary.Read(f, binary.LittleEndian, &blockAlign)
			binary.Read(f, binary.LittleEndian, &bits)
			if audioFormat != wavAudioFormatIEEEFloat || bits != bitsPerSample {
				return nil, 0, 0, fmt.Errorf("wavfile: unexpected format %d/%d bits", audioFormat, bits)
			}
			sampleRate = int(sr)
			numChannels = int(channels)
			if extra := int64(chunkSize) - 16; extra > 0 {
				if _, err := f.Seek(extra, io.SeekCurrent); err != nil {
					return nil, 0, 0, err
				}
			}
		case "data":
			dataSize = chunkSize
			samples = make([]float32, dataSize/4)
			if err := binary.Read(f, binary.LittleEndian, samples); err != nil {
				return nil, 0, 0, err
			}
			return samples, sampleRate, numChannels, nil
		default:
			if _, err := f.Seek(int64(chunkSize), io.SeekCurrent); err != nil {
				return nil, 0, 0, err
			}
		}
	}
}
