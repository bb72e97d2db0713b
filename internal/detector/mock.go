package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results, either as a fixed set of
// hands returned on every call or as a sequence consumed one frame per call.
type MockDetector struct {
	hands    []HandLandmarks
	sequence [][]HandLandmarks
	calls    int
	err      error
	mu       sync.Mutex
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
	m.sequence = nil
}

// SetSequence makes Detect return frames[0], frames[1], ... on successive
// calls and no hands once the sequence is exhausted.
func (m *MockDetector) SetSequence(frames [][]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = frames
	m.hands = nil
	m.calls = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if m.sequence != nil {
		i := m.calls
		m.calls++
		if i >= len(m.sequence) {
			return nil, nil
		}
		return m.sequence[i], nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// openRight is a right hand facing the camera with every finger extended:
// finger tips above their PIP joints, thumb tip left of its IP joint.
var openRight = [NumLandmarks]Point3D{
	Wrist:     {X: 0.50, Y: 0.80},
	ThumbCMC:  {X: 0.45, Y: 0.75, Z: 0.01},
	ThumbMCP:  {X: 0.40, Y: 0.70, Z: 0.02},
	ThumbIP:   {X: 0.36, Y: 0.65, Z: 0.02},
	ThumbTip:  {X: 0.32, Y: 0.60, Z: 0.02},
	IndexMCP:  {X: 0.45, Y: 0.66},
	IndexPIP:  {X: 0.45, Y: 0.55},
	IndexDIP:  {X: 0.45, Y: 0.45},
	IndexTip:  {X: 0.45, Y: 0.36},
	MiddleMCP: {X: 0.50, Y: 0.65},
	MiddlePIP: {X: 0.50, Y: 0.52},
	MiddleDIP: {X: 0.50, Y: 0.41},
	MiddleTip: {X: 0.50, Y: 0.31},
	RingMCP:   {X: 0.55, Y: 0.66},
	RingPIP:   {X: 0.56, Y: 0.55},
	RingDIP:   {X: 0.56, Y: 0.46},
	RingTip:   {X: 0.56, Y: 0.38},
	PinkyMCP:  {X: 0.60, Y: 0.69},
	PinkyPIP:  {X: 0.62, Y: 0.60},
	PinkyDIP:  {X: 0.63, Y: 0.52},
	PinkyTip:  {X: 0.64, Y: 0.46},
}

// fistRight is the same hand with every finger curled: tips below their PIP
// joints, thumb tip folded across to the right of its IP joint.
var fistRight = [NumLandmarks]Point3D{
	Wrist:     {X: 0.50, Y: 0.80},
	ThumbCMC:  {X: 0.45, Y: 0.75, Z: 0.01},
	ThumbMCP:  {X: 0.41, Y: 0.70, Z: -0.01},
	ThumbIP:   {X: 0.40, Y: 0.66, Z: -0.03},
	ThumbTip:  {X: 0.46, Y: 0.66, Z: -0.04},
	IndexMCP:  {X: 0.45, Y: 0.66},
	IndexPIP:  {X: 0.45, Y: 0.60, Z: -0.05},
	IndexDIP:  {X: 0.45, Y: 0.66, Z: -0.06},
	IndexTip:  {X: 0.45, Y: 0.70, Z: -0.04},
	MiddleMCP: {X: 0.50, Y: 0.65},
	MiddlePIP: {X: 0.50, Y: 0.59, Z: -0.05},
	MiddleDIP: {X: 0.50, Y: 0.65, Z: -0.06},
	MiddleTip: {X: 0.50, Y: 0.69, Z: -0.04},
	RingMCP:   {X: 0.55, Y: 0.66},
	RingPIP:   {X: 0.55, Y: 0.60, Z: -0.05},
	RingDIP:   {X: 0.55, Y: 0.66, Z: -0.06},
	RingTip:   {X: 0.55, Y: 0.70, Z: -0.04},
	PinkyMCP:  {X: 0.60, Y: 0.69},
	PinkyPIP:  {X: 0.60, Y: 0.64, Z: -0.04},
	PinkyDIP:  {X: 0.60, Y: 0.69, Z: -0.05},
	PinkyTip:  {X: 0.60, Y: 0.72, Z: -0.03},
}

// OpenHandLandmarks returns a hand with all five fingers extended.
// Left hands are the right-hand pose mirrored about x=0.5.
func OpenHandLandmarks(handedness string) HandLandmarks {
	return preset(openRight, handedness)
}

// FistLandmarks returns a hand with all five fingers curled.
func FistLandmarks(handedness string) HandLandmarks {
	return preset(fistRight, handedness)
}

func preset(points [NumLandmarks]Point3D, handedness string) HandLandmarks {
	h := HandLandmarks{
		Points:     make([]Point3D, NumLandmarks),
		Handedness: handedness,
		Score:      0.95,
	}
	for i, p := range points {
		if handedness == HandednessLeft {
			p.X = 1 - p.X
		}
		h.Points[i] = p
	}
	return h
}
