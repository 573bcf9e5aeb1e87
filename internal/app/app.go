// Package app runs the gesture control session: it owns the camera, the
// landmark detector, the orchestrator and the input backend, and drives
// them one frame at a time.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/overlay"
)

// Reasons a session ends, as recorded in the session history.
const (
	ReasonQuitGesture = "quit gesture"
	ReasonQuitKey     = "quit key"
	ReasonStopped     = "stopped"
	ReasonCancelled   = "cancelled"
	ReasonEndOfStream = "end of stream"
	ReasonError       = "error"
)

var (
	// ErrStarted is returned when Run is called a second time.
	ErrStarted = errors.New("session already started")

	// ErrMissingComponent is returned by New when a required component is nil.
	ErrMissingComponent = errors.New("missing session component")
)

// Backend is an input backend that releases held buttons and keys on Close.
type Backend interface {
	control.Backend
	Close() error
}

// Recorder persists the start and end of each session.
type Recorder interface {
	Start(id string, startedAt time.Time) error
	Finish(id string, endedAt time.Time, frames int64, reason string) error
}

// Options holds the components of a session.
type Options struct {
	Config   config.Config
	Camera   capture.Camera
	Detector detector.Detector
	Backend  Backend

	// Overlay is optional; a nil overlay runs headless.
	Overlay overlay.Renderer
	// Recorder is optional.
	Recorder Recorder
	// Clock defaults to time.Now. It is read once per frame.
	Clock func() time.Time
}

// Status is a snapshot of a session for the API and the tray.
type Status struct {
	SessionID   string         `json:"session_id"`
	Enabled     bool           `json:"enabled"`
	Running     bool           `json:"running"`
	Idle        bool           `json:"idle"`
	Frames      int64          `json:"frames"`
	FPS         float64        `json:"fps"`
	Hands       int            `json:"hands"`
	LastLabel   string         `json:"last_label,omitempty"`
	LastLabelAt time.Time      `json:"last_label_at,omitzero"`
	Last        control.Result `json:"last"`
}

// Session is one run of the frame loop.
type Session struct {
	id       string
	cfg      config.Config
	camera   capture.Camera
	detector detector.Detector
	backend  Backend
	overlay  overlay.Renderer
	recorder Recorder
	now      func() time.Time

	motion       *capture.MotionDetector
	pacer        *capture.Pacer
	orchestrator *control.Orchestrator
	publisher    *Publisher

	mu          sync.RWMutex
	enabled     bool
	started     bool
	running     bool
	idle        bool
	frames      int64
	fps         float64
	hands       int
	last        control.Result
	lastLabel   string
	lastLabelAt time.Time
	lastFrameAt time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

// New validates the configuration and assembles a session. The session
// starts enabled.
func New(opts Options) (*Session, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	switch {
	case opts.Camera == nil:
		return nil, fmt.Errorf("%w: camera", ErrMissingComponent)
	case opts.Detector == nil:
		return nil, fmt.Errorf("%w: detector", ErrMissingComponent)
	case opts.Backend == nil:
		return nil, fmt.Errorf("%w: backend", ErrMissingComponent)
	}

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Session{
		id:           uuid.NewString(),
		cfg:          opts.Config,
		camera:       opts.Camera,
		detector:     opts.Detector,
		backend:      opts.Backend,
		overlay:      opts.Overlay,
		recorder:     opts.Recorder,
		now:          clock,
		motion:       capture.NewMotionDetector(opts.Config.Camera.MotionThreshold),
		pacer:        capture.NewPacer(opts.Config.Camera),
		orchestrator: control.NewOrchestrator(opts.Config.Control, opts.Backend),
		publisher:    NewPublisher(),
		enabled:      true,
		stopCh:       make(chan struct{}),
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// SetEnabled pauses or resumes gesture control. A paused session keeps
// reading frames but runs no detection, and any hold in progress is dropped.
func (s *Session) SetEnabled(enabled bool) {
	s.mu.Lock()
	changed := s.enabled != enabled
	s.enabled = enabled
	s.mu.Unlock()

	if changed {
		if enabled {
			log.Println("Gesture control enabled")
		} else {
			log.Println("Gesture control paused")
		}
	}
}

// Enabled reports whether gesture control is active.
func (s *Session) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// Subscribe returns a channel of per-frame results and a function that
// cancels the subscription. Slow subscribers miss frames.
func (s *Session) Subscribe() (<-chan control.Result, func()) {
	return s.publisher.Subscribe()
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		SessionID:   s.id,
		Enabled:     s.enabled,
		Running:     s.running,
		Idle:        s.idle,
		Frames:      s.frames,
		FPS:         s.fps,
		Hands:       s.hands,
		LastLabel:   s.lastLabel,
		LastLabelAt: s.lastLabelAt,
		Last:        s.last,
	}
}

// Stop ends Run. It is safe to call from any goroutine, more than once.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Run opens the camera and processes frames until the quit gesture, the
// overlay quit key, Stop, the end of the camera stream, or ctx is done.
// Every component is closed when Run returns, so a session runs once.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrStarted
	}
	s.started = true
	s.running = true
	s.mu.Unlock()

	reason := ReasonError
	started := false
	defer func() { s.shutdown(reason, started) }()

	if err := s.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	s.camera.SetFPS(s.cfg.Camera.ActiveFPS)

	if s.recorder != nil {
		if err := s.recorder.Start(s.id, s.now()); err != nil {
			log.Printf("Error recording session start: %v", err)
		} else {
			started = true
		}
	}
	log.Printf("Session %s started", s.id)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			reason = ReasonCancelled
			return nil
		case <-s.stopCh:
			reason = ReasonStopped
			return nil
		case <-timer.C:
		}

		wait, stop, err := s.step()
		if err != nil {
			return err
		}
		if stop != "" {
			reason = stop
			return nil
		}
		timer.Reset(wait)
	}
}

// step processes one frame. It returns the wait before the next frame and
// a non-empty reason when the session should end.
func (s *Session) step() (time.Duration, string, error) {
	frame, err := s.camera.ReadFrame()
	switch {
	case errors.Is(err, capture.ErrEndOfStream):
		return 0, ReasonEndOfStream, nil
	case errors.Is(err, capture.ErrCameraNotOpen):
		return 0, "", fmt.Errorf("read frame: %w", err)
	case err != nil:
		log.Printf("Error reading frame: %v", err)
		return s.pace(false, s.now()), "", nil
	}
	defer frame.Close()

	now := s.now()
	moving, _ := s.motion.Detect(frame)

	var hands []detector.HandLandmarks
	if s.Enabled() {
		hands, err = s.detector.Detect(frame)
		if err != nil {
			log.Printf("Error detecting hands: %v", err)
			hands = nil
		}
	}

	res := s.orchestrator.Process(hands, now)
	wait := s.pace(moving || len(hands) > 0, now)
	s.record(res, len(hands), now)
	s.publisher.Publish(res)

	if res.Label != "" {
		log.Printf("Action: %s", res.Label)
	}
	if res.Quit {
		return 0, ReasonQuitGesture, nil
	}
	if s.render(frame, hands, res) {
		return 0, ReasonQuitKey, nil
	}
	return wait, "", nil
}

func (s *Session) render(frame *gocv.Mat, hands []detector.HandLandmarks, res control.Result) bool {
	if s.overlay == nil {
		return false
	}
	s.mu.RLock()
	fps := s.fps
	s.mu.RUnlock()
	return s.overlay.Render(frame, hands, res, fps)
}

// pace feeds the pacer and switches the camera between active and idle rates.
func (s *Session) pace(active bool, now time.Time) time.Duration {
	wait := s.pacer.Observe(active, now)
	idle := s.pacer.Idle(now)

	s.mu.Lock()
	changed := idle != s.idle
	s.idle = idle
	s.mu.Unlock()

	if changed {
		if idle {
			s.camera.SetFPS(s.cfg.Camera.IdleFPS)
			log.Println("Switched to idle mode")
		} else {
			s.camera.SetFPS(s.cfg.Camera.ActiveFPS)
			log.Println("Switched to active mode")
		}
	}
	return wait
}

func (s *Session) record(res control.Result, hands int, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lastFrameAt.IsZero() {
		if dt := now.Sub(s.lastFrameAt).Seconds(); dt > 0 {
			const alpha = 0.1
			if s.fps == 0 {
				s.fps = 1 / dt
			} else {
				s.fps = (1-alpha)*s.fps + alpha/dt
			}
		}
	}
	s.lastFrameAt = now
	s.frames++
	s.hands = hands
	s.last = res
	if res.Label != "" {
		s.lastLabel = res.Label
		s.lastLabelAt = now
	}
}

// shutdown releases every component and records the end of the session.
func (s *Session) shutdown(reason string, recorded bool) {
	if err := s.backend.Close(); err != nil {
		log.Printf("Error releasing input: %v", err)
	}
	if s.overlay != nil {
		if err := s.overlay.Close(); err != nil {
			log.Printf("Error closing overlay: %v", err)
		}
	}
	if err := s.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	s.motion.Close()
	if err := s.detector.Close(); err != nil {
		log.Printf("Error closing detector: %v", err)
	}
	s.publisher.Close()

	s.mu.Lock()
	s.running = false
	frames := s.frames
	s.mu.Unlock()

	if recorded {
		if err := s.recorder.Finish(s.id, s.now(), frames, reason); err != nil {
			log.Printf("Error recording session end: %v", err)
		}
	}
	log.Printf("Session %s stopped (%s) after %d frames", s.id, reason, frames)
}
