// Package detector provides hand detection interfaces and the landmark types
// produced by the external hand-pose estimator.
package detector

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Handedness labels as reported by the estimator.
const (
	HandednessLeft  = "Left"
	HandednessRight = "Right"
)

var (
	// ErrLandmarkCount is returned when a detection does not carry exactly NumLandmarks points.
	ErrLandmarkCount = errors.New("wrong landmark count")
	// ErrHandedness is returned when a detection has a handedness other than Left or Right.
	ErrHandedness = errors.New("unknown handedness")
)

// Point3D represents a 3D point in space with x, y, z coordinates.
// X and Y are normalized to [0,1] image space; Z is unconstrained.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks is one detected hand: its handedness and 21 landmarks.
// Points is a slice so malformed detections survive decoding and can be
// rejected by Validate instead of being silently padded.
type HandLandmarks struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"` // "Left" or "Right"
	Score      float64   `json:"score"`
}

// Validate reports whether the detection is usable by the classifier.
func (h *HandLandmarks) Validate() error {
	if len(h.Points) != NumLandmarks {
		return fmt.Errorf("%w: got %d, want %d", ErrLandmarkCount, len(h.Points), NumLandmarks)
	}
	switch strings.ToLower(h.Handedness) {
	case "left", "right":
		return nil
	}
	return fmt.Errorf("%w: %q", ErrHandedness, h.Handedness)
}

// Clone returns a deep copy of the hand.
func (h HandLandmarks) Clone() HandLandmarks {
	c := h
	c.Points = append([]Point3D(nil), h.Points...)
	return c
}

// Frame is the JSON envelope for one video frame's detections, shared by the
// MediaPipe service and replay files.
type Frame struct {
	Hands     []HandLandmarks `json:"hands"`
	Timestamp int64           `json:"timestamp,omitempty"`
}

// DecodeFrame parses one JSON line into the frame's detections.
// A frame with no hands decodes to an empty slice, not an error.
func DecodeFrame(line []byte) ([]HandLandmarks, error) {
	var f Frame
	if err := json.Unmarshal(line, &f); err != nil {
		return nil, fmt.Errorf("parse frame: %w", err)
	}
	if f.Hands == nil {
		return []HandLandmarks{}, nil
	}
	return f.Hands, nil
}

// EncodeFrame is the inverse of DecodeFrame.
func EncodeFrame(hands []HandLandmarks) ([]byte, error) {
	if hands == nil {
		hands = []HandLandmarks{}
	}
	return json.Marshal(Frame{Hands: hands})
}
