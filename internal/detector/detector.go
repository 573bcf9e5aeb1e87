package detector

import (
	"strconv"
	"time"

	"gocv.io/x/gocv"
)

// Detector is a landmark source: it turns a camera frame into zero or more hands.
type Detector interface {
	// Detect returns the hands found in frame, or an empty slice.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds the hand tracker settings.
type Config struct {
	// MaxHands is the maximum number of hands to track.
	MaxHands int

	// MinConfidence and MinTrackingConf are MediaPipe's detection and
	// tracking thresholds in [0, 1].
	MinConfidence   float64
	MinTrackingConf float64

	// ModelComplexity selects the MediaPipe landmark model (0 or 1).
	ModelComplexity int

	// ScriptPath and Python override the service script and interpreter lookup.
	ScriptPath string
	Python     string

	// IdleShutdown stops the service after this long without a frame.
	// Zero keeps it running until Close.
	IdleShutdown time.Duration
}

// DefaultConfig returns the tracker settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.7,
		MinTrackingConf: 0.5,
		ModelComplexity: 1,
		IdleShutdown:    30 * time.Second,
	}
}

// serviceArgs returns the command line flags understood by mediapipe_service.py.
func (c Config) serviceArgs() []string {
	return []string{
		"--max-hands", strconv.Itoa(c.MaxHands),
		"--min-detection", strconv.FormatFloat(c.MinConfidence, 'f', -1, 64),
		"--min-tracking", strconv.FormatFloat(c.MinTrackingConf, 'f', -1, 64),
		"--model-complexity", strconv.Itoa(c.ModelComplexity),
	}
}
