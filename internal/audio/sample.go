// Package audio plays the piano's sound samples. Samples are decoded once
// into mono float32 at the output rate and mixed by a polyphonic Mixer that a
// portaudio stream pulls from.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither .wav nor .mp3.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrInvalidSample is returned when a file decodes to no audio.
	ErrInvalidSample = errors.New("invalid sample")
)

// Extensions lists the sample formats LoadSample understands, in lookup order.
var Extensions = []string{".wav", ".mp3"}

// Sample is a decoded sound, mono, at Rate samples per second.
type Sample struct {
	Path string
	Rate int
	Data []float32
}

// Duration returns the sample length in seconds.
func (s *Sample) Duration() float64 {
	if s.Rate == 0 {
		return 0
	}
	return float64(len(s.Data)) / float64(s.Rate)
}

// LoadSample decodes a .wav or .mp3 file and resamples it to rate.
func LoadSample(path string, rate int) (*Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		data    []float32
		srcRate int
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		data, srcRate, err = decodeWAV(f)
	case ".mp3":
		data, srcRate, err = decodeMP3(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s has no frames", ErrInvalidSample, path)
	}

	return &Sample{Path: path, Rate: rate, Data: Resample(data, srcRate, rate)}, nil
}

func decodeWAV(r io.ReadSeeker) ([]float32, int, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, 0, fmt.Errorf("%w: not a PCM wav file", ErrInvalidSample)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}
	return intBufferToMono(buf), int(d.SampleRate), nil
}

// intBufferToMono scales integer PCM to [-1,1] and averages the channels.
func intBufferToMono(buf *audio.IntBuffer) []float32 {
	channels := 1
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		channels = buf.Format.NumChannels
	}
	depth := buf.SourceBitDepth
	if depth == 0 {
		depth = 16
	}

	scale := float32(int64(1) << uint(depth-1))
	offset := 0
	if depth == 8 {
		// 8-bit wav is unsigned.
		offset = 128
	}

	frames := len(buf.Data) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += float32(buf.Data[i*channels+c]-offset) / scale
		}
		out[i] = sum / float32(channels)
	}
	return out
}

func decodeMP3(r io.Reader) ([]float32, int, error) {
	d, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, err
	}

	// The decoder always yields 16-bit little-endian stereo.
	raw, err := io.ReadAll(d)
	if err != nil {
		return nil, 0, err
	}

	frames := len(raw) / 4
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		left := int16(binary.LittleEndian.Uint16(raw[i*4:]))
		right := int16(binary.LittleEndian.Uint16(raw[i*4+2:]))
		out[i] = (float32(left) + float32(right)) / 2 / 32768
	}
	return out, d.SampleRate(), nil
}

// Resample converts in from one rate to another with linear interpolation.
// The input is returned unchanged when the rates match.
func Resample(in []float32, from, to int) []float32 {
	if from == to || from <= 0 || to <= 0 || len(in) == 0 {
		return in
	}

	n := int(int64(len(in)) * int64(to) / int64(from))
	if n == 0 {
		n = 1
	}
	out := make([]float32, n)
	step := float64(from) / float64(to)
	last := len(in) - 1
	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		if j >= last {
			out[i] = in[last]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = in[j]*(1-frac) + in[j+1]*frac
	}
	return out
}
