package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/config"
)

// Motion detection constants.
const (
	// GaussianBlurSize is the kernel size for Gaussian blur (21x21).
	GaussianBlurSize = 21
	// DiffThreshold is the per-pixel intensity change counted as motion.
	DiffThreshold = 25
)

// MotionDetector compares consecutive frames by blurred grayscale
// differencing. The threshold is the percentage of pixels that must change.
type MotionDetector struct {
	threshold   float64
	prevGray    gocv.Mat
	initialized bool
	mu          sync.Mutex
}

// NewMotionDetector creates a MotionDetector; 1.0 means 1% of pixels.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: threshold,
		prevGray:  gocv.NewMat(),
	}
}

// Detect reports whether frame differs from the previous one and the
// percentage of changed pixels. The first frame only sets the baseline.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: GaussianBlurSize, Y: GaussianBlurSize}, 0, 0, gocv.BorderDefault)

	if !m.initialized || blurred.Rows() != m.prevGray.Rows() || blurred.Cols() != m.prevGray.Cols() {
		blurred.CopyTo(&m.prevGray)
		m.initialized = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, DiffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(thresh)) / float64(thresh.Rows()*thresh.Cols()) * 100.0
	blurred.CopyTo(&m.prevGray)

	return changed > m.threshold, changed
}

// Reset drops the baseline so the next frame starts a new comparison.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

// Close releases the baseline frame.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

func (m *MotionDetector) release() {
	if !m.prevGray.Empty() {
		m.prevGray.Close()
		m.prevGray = gocv.NewMat()
	}
	m.initialized = false
}

// Pacer picks the frame interval: ActiveFPS while the scene moves or a hand
// is visible, IdleFPS once neither has happened for IdleTimeout.
type Pacer struct {
	active      time.Duration
	idle        time.Duration
	idleTimeout time.Duration
	lastActive  time.Time
}

// NewPacer creates a Pacer from the camera settings.
func NewPacer(cfg config.CameraConfig) *Pacer {
	return &Pacer{
		active:      time.Second / time.Duration(cfg.ActiveFPS),
		idle:        time.Second / time.Duration(cfg.IdleFPS),
		idleTimeout: cfg.IdleTimeout,
	}
}

// Observe records one frame's activity and returns the interval to wait
// before the next frame. The first observation counts as activity.
func (p *Pacer) Observe(active bool, now time.Time) time.Duration {
	if active || p.lastActive.IsZero() {
		p.lastActive = now
	}
	if p.Idle(now) {
		return p.idle
	}
	return p.active
}

// Idle reports whether nothing has happened for the idle timeout.
func (p *Pacer) Idle(now time.Time) bool {
	return !p.lastActive.IsZero() && now.Sub(p.lastActive) >= p.idleTimeout
}
