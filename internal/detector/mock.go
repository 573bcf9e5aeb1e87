package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	queue [][]HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect once the queue is drained.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// Queue appends per-frame results that Detect returns in order before
// falling back to the hands set by SetHands.
func (m *MockDetector) Queue(frames ...[]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, frames...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the next queued frame, the pre-configured hands, or the error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return next, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Fingers selects which fingers a synthetic hand has extended.
type Fingers struct {
	Thumb  bool
	Index  bool
	Middle bool
	Ring   bool
	Pinky  bool
}

// Horizontal offsets of each finger column from the wrist. The hand leans
// left so the wrist-to-middle-MCP vector sits at about 34 degrees and does
// not read as a tilted palm.
var fingerColumns = [4]float64{-0.10, -0.18, -0.24, -0.30}

// SyntheticHand builds an upright hand with the wrist at (x, y) and the
// given fingers extended. Extended tips sit well above their PIP joints,
// curled tips sit 0.07 below them, which also satisfies the closed-fist margin.
func SyntheticHand(handedness string, x, y float64, f Fingers) HandLandmarks {
	h := HandLandmarks{
		Handedness: handedness,
		Score:      0.95,
	}

	h.Points[Wrist] = Point3D{X: x, Y: y}

	h.Points[ThumbCMC] = Point3D{X: x - 0.03, Y: y - 0.03}
	h.Points[ThumbMCP] = Point3D{X: x - 0.06, Y: y - 0.06}
	h.Points[ThumbIP] = Point3D{X: x - 0.08, Y: y - 0.08}
	if f.Thumb {
		h.Points[ThumbTip] = Point3D{X: x - 0.13, Y: y - 0.09}
	} else {
		h.Points[ThumbTip] = Point3D{X: x - 0.05, Y: y - 0.10}
	}

	extended := [4]bool{f.Index, f.Middle, f.Ring, f.Pinky}
	for i, mcp := range []int{IndexMCP, MiddleMCP, RingMCP, PinkyMCP} {
		fx := x + fingerColumns[i]
		h.Points[mcp] = Point3D{X: fx, Y: y - 0.12}
		h.Points[mcp+1] = Point3D{X: fx, Y: y - 0.20, Z: -0.01}
		if extended[i] {
			h.Points[mcp+2] = Point3D{X: fx, Y: y - 0.26, Z: -0.01}
			h.Points[mcp+3] = Point3D{X: fx, Y: y - 0.31, Z: -0.02}
		} else {
			h.Points[mcp+2] = Point3D{X: fx, Y: y - 0.16, Z: -0.04}
			h.Points[mcp+3] = Point3D{X: fx, Y: y - 0.13, Z: -0.03}
		}
	}

	return h
}

// OpenPalmLandmarks returns a hand with every finger extended.
func OpenPalmLandmarks(handedness string) HandLandmarks {
	return SyntheticHand(handedness, 0.5, 0.8, Fingers{true, true, true, true, true})
}

// FistLandmarks returns a closed fist with the wrist at (x, y).
func FistLandmarks(handedness string, x, y float64) HandLandmarks {
	return SyntheticHand(handedness, x, y, Fingers{})
}

// PinchLandmarks returns a right hand with thumb and index tips touching
// and the other fingers curled.
func PinchLandmarks() HandLandmarks {
	h := SyntheticHand(Right, 0.5, 0.8, Fingers{Index: true})
	tip := h.Points[IndexTip]
	h.Points[ThumbTip] = Point3D{X: tip.X + 0.01, Y: tip.Y + 0.01}
	return h
}

// PeaceLandmarks returns a left hand showing index and middle fingers.
func PeaceLandmarks() HandLandmarks {
	return SyntheticHand(Left, 0.5, 0.8, Fingers{Index: true, Middle: true})
}

// ThumbOutLandmarks returns a left fist with the thumb pushed sideways.
func ThumbOutLandmarks() HandLandmarks {
	return SyntheticHand(Left, 0.5, 0.8, Fingers{Thumb: true})
}

// PinkyOutLandmarks returns a left fist with only the pinky raised.
func PinkyOutLandmarks() HandLandmarks {
	return SyntheticHand(Left, 0.5, 0.8, Fingers{Pinky: true})
}

// TiltedPalmLandmarks returns a left hand whose middle MCP sits straight
// above the wrist, which reads as a palm tilted past any scroll angle below 90.
func TiltedPalmLandmarks() HandLandmarks {
	h := OpenPalmLandmarks(Left)
	wrist := h.Points[Wrist]
	h.Points[MiddleMCP] = Point3D{X: wrist.X, Y: wrist.Y - 0.12}
	return h
}
