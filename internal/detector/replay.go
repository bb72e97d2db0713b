package detector

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// maxLineSize bounds one JSONL frame; two hands of 21 points fit easily.
const maxLineSize = 1 << 20

// SequenceReader reads recorded detections, one JSON frame per line.
// Blank lines are skipped.
type SequenceReader struct {
	scanner *bufio.Scanner
	line    int
}

// NewSequenceReader wraps r for frame-by-frame reading.
func NewSequenceReader(r io.Reader) *SequenceReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &SequenceReader{scanner: s}
}

// Next returns the next frame's detections, or io.EOF at the end of input.
func (r *SequenceReader) Next() ([]HandLandmarks, error) {
	for r.scanner.Scan() {
		r.line++
		line := bytes.TrimSpace(r.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		hands, err := DecodeFrame(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line, err)
		}
		return hands, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read sequence: %w", err)
	}
	return nil, io.EOF
}

// ReadAll drains the reader.
func (r *SequenceReader) ReadAll() ([][]HandLandmarks, error) {
	var frames [][]HandLandmarks
	for {
		hands, err := r.Next()
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return nil, err
		}
		frames = append(frames, hands)
	}
}
