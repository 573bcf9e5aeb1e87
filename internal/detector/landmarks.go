// Package detector provides hand landmark types and the detectors that produce them.
package detector

import (
	"errors"
	"fmt"
	"math"
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

// Handedness labels reported by the landmark model.
const (
	Left  = "Left"
	Right = "Right"
)

var (
	// ErrInvalidHandedness is returned for a hand labeled anything other than Left or Right.
	ErrInvalidHandedness = errors.New("invalid handedness")

	// ErrLandmarkCount is returned when a hand does not carry exactly NumLandmarks points.
	ErrLandmarkCount = errors.New("wrong landmark count")
)

// Point3D represents a 3D point in space with x, y, z coordinates.
// X and Y are normalized to the frame, Z is depth relative to the wrist.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Finite reports whether every coordinate is a real number.
func (p Point3D) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0) &&
		!math.IsNaN(p.Z) && !math.IsInf(p.Z, 0)
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Validate checks the preconditions the classifier relies on.
// The point count is fixed by the array type; only handedness can be wrong here.
func (h *HandLandmarks) Validate() error {
	if h.Handedness != Left && h.Handedness != Right {
		return fmt.Errorf("%w: %q", ErrInvalidHandedness, h.Handedness)
	}
	return nil
}

// IsRight reports whether the hand controls the pointer.
func (h *HandLandmarks) IsRight() bool {
	return h.Handedness == Right
}

// FromPoints builds a HandLandmarks from a variable-length point list,
// rejecting anything that is not exactly NumLandmarks points.
func FromPoints(points []Point3D, handedness string, score float64) (HandLandmarks, error) {
	h := HandLandmarks{Handedness: handedness, Score: score}
	if len(points) != NumLandmarks {
		return h, fmt.Errorf("%w: got %d, want %d", ErrLandmarkCount, len(points), NumLandmarks)
	}
	copy(h.Points[:], points)
	if err := h.Validate(); err != nil {
		return h, err
	}
	return h, nil
}
