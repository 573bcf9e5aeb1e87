// Package capture reads camera frames with GoCV and paces the frame loop
// by scene motion.
package capture

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/config"
)

var (
	// ErrCameraNotOpen is returned when reading from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")

	// ErrReadFailed is returned when the device yields no frame.
	ErrReadFailed = errors.New("failed to read frame from camera")

	// ErrEndOfStream is returned by finite sources once every frame is consumed.
	ErrEndOfStream = errors.New("no more frames")
)

// Camera is a source of BGR frames.
type Camera interface {
	Open() error
	Close() error
	// ReadFrame returns the next frame. The caller owns the Mat and must close it.
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// Webcam captures from a local video device.
type Webcam struct {
	cfg config.CameraConfig

	mu       sync.Mutex
	vc       *gocv.VideoCapture
	fps      int
	width    int
	height   int
	failures int
}

// NewCamera creates a Webcam for cfg.Device. Frames are flipped
// horizontally when cfg.Mirror is set so the image reads like a mirror.
func NewCamera(cfg config.CameraConfig) *Webcam {
	return &Webcam{cfg: cfg, fps: cfg.ActiveFPS}
}

// Open opens the device and requests the configured resolution. Drivers
// may pick a different one; Resolution reports what was granted.
func (w *Webcam) Open() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.vc != nil {
		return nil
	}

	vc, err := gocv.OpenVideoCapture(w.cfg.Device)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", w.cfg.Device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return fmt.Errorf("open camera %d: device unavailable", w.cfg.Device)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(w.cfg.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(w.cfg.Height))
	vc.Set(gocv.VideoCaptureFPS, float64(w.fps))

	w.vc = vc
	w.width = int(vc.Get(gocv.VideoCaptureFrameWidth))
	w.height = int(vc.Get(gocv.VideoCaptureFrameHeight))
	w.failures = 0
	log.Printf("Camera %d opened at %dx%d", w.cfg.Device, w.width, w.height)
	return nil
}

// Close releases the device.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.vc == nil {
		return nil
	}
	err := w.vc.Close()
	w.vc = nil
	return err
}

// ReadFrame grabs the next frame. Consecutive failures are counted in the
// returned error so a stalled device is visible in the log.
func (w *Webcam) ReadFrame() (*gocv.Mat, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.vc == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := w.vc.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		w.failures++
		return nil, fmt.Errorf("%w (%d in a row)", ErrReadFailed, w.failures)
	}
	w.failures = 0

	if w.cfg.Mirror {
		gocv.Flip(mat, &mat, 1)
	}
	return &mat, nil
}

// SetFPS changes the requested capture rate. Non-positive values are ignored.
func (w *Webcam) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.fps = fps
	if w.vc != nil {
		w.vc.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

func (w *Webcam) FPS() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fps
}

func (w *Webcam) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.vc != nil
}

// Resolution returns the frame size granted by the driver, or zeros
// before Open.
func (w *Webcam) Resolution() (width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}
