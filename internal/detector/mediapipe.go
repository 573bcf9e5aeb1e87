package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

const serviceScript = "mediapipe_service.py"

// ErrScriptNotFound is returned when mediapipe_service.py cannot be located.
var ErrScriptNotFound = errors.New(serviceScript + " not found")

// MediaPipeDetector is a Detector backed by a Python MediaPipe process.
//
// Each frame goes to the process as a 4-byte big-endian length followed by
// JPEG bytes. The process answers with one JSON line per frame:
// {"hands":[{"points":[...],"handedness":"Left","score":0.9}]}.
type MediaPipeDetector struct {
	cfg    Config
	script string

	mu   sync.Mutex
	svc  *service
	idle *time.Timer
}

// NewMediaPipeDetector locates the service script. The process itself is
// started on the first Detect call and restarted after an idle shutdown.
func NewMediaPipeDetector(cfg Config) (*MediaPipeDetector, error) {
	script := cfg.ScriptPath
	if script == "" {
		script = firstExisting(searchPaths(filepath.Join("scripts", serviceScript)))
	}
	if script == "" {
		return nil, ErrScriptNotFound
	}
	if _, err := os.Stat(script); err != nil {
		return nil, fmt.Errorf("mediapipe script: %w", err)
	}
	return &MediaPipeDetector{cfg: cfg, script: script}, nil
}

// Detect sends frame to the service and decodes the hands it reports.
// Hands with the wrong shape are dropped and logged.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.svc == nil {
		svc, err := startService(d.python(), d.script, d.cfg.serviceArgs())
		if err != nil {
			return nil, err
		}
		d.svc = svc
	}

	jpeg, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer jpeg.Close()

	line, err := d.svc.roundTrip(jpeg.GetBytes())
	if err != nil {
		// A broken pipe leaves the process unusable; start fresh next frame.
		d.stopLocked()
		return nil, err
	}
	d.armIdle()

	return decodeResponse(line)
}

// Close stops the service if it is running.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopLocked()
}

func (d *MediaPipeDetector) python() string {
	if d.cfg.Python != "" {
		return d.cfg.Python
	}
	if venv := firstExisting(searchPaths(filepath.Join("venv", "bin", "python"))); venv != "" {
		return venv
	}
	return "python3"
}

func (d *MediaPipeDetector) armIdle() {
	if d.cfg.IdleShutdown <= 0 {
		return
	}
	if d.idle != nil {
		d.idle.Reset(d.cfg.IdleShutdown)
		return
	}
	d.idle = time.AfterFunc(d.cfg.IdleShutdown, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.svc == nil {
			return
		}
		log.Printf("MediaPipe idle for %v, stopping service", d.cfg.IdleShutdown)
		if err := d.stopLocked(); err != nil {
			log.Printf("MediaPipe idle shutdown: %v", err)
		}
	})
}

func (d *MediaPipeDetector) stopLocked() error {
	if d.idle != nil {
		d.idle.Stop()
		d.idle = nil
	}
	if d.svc == nil {
		return nil
	}
	err := d.svc.stop()
	d.svc = nil
	return err
}

// service is one running mediapipe_service.py process.
type service struct {
	cmd *exec.Cmd
	in  io.WriteCloser
	out *bufio.Reader
}

func startService(python, script string, args []string) (*service, error) {
	cmd := exec.Command(python, append([]string{script}, args...)...)
	cmd.Stderr = os.Stderr

	in, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("mediapipe stdin: %w", err)
	}
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("mediapipe stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start mediapipe service: %w", err)
	}

	log.Printf("MediaPipe service started (pid %d)", cmd.Process.Pid)
	return &service{cmd: cmd, in: in, out: bufio.NewReader(out)}, nil
}

// roundTrip writes one length-prefixed frame and reads the reply line.
func (s *service) roundTrip(payload []byte) ([]byte, error) {
	msg := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(msg, uint32(len(payload)))
	copy(msg[4:], payload)

	if _, err := s.in.Write(msg); err != nil {
		return nil, fmt.Errorf("write frame: %w", err)
	}
	line, err := s.out.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return line, nil
}

// stop closes stdin, which ends the service loop, and waits for the exit.
func (s *service) stop() error {
	s.in.Close()
	return s.cmd.Wait()
}

// searchPaths lists where a file shipped next to the binary may live:
// the working directory and its parents, the executable's directory and ~/.mudra.
func searchPaths(rel string) []string {
	paths := []string{
		rel,
		filepath.Join("..", rel),
		filepath.Join("..", "..", rel),
	}
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), rel))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".mudra", rel))
	}
	return paths
}

func firstExisting(candidates []string) string {
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}

// serviceHand is one hand as the service encodes it.
type serviceHand struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"`
	Score      float64   `json:"score"`
}

// decodeResponse parses one service line. Malformed hands are skipped, not fatal.
func decodeResponse(line []byte) ([]HandLandmarks, error) {
	var resp struct {
		Hands []serviceHand `json:"hands"`
	}
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	hands := make([]HandLandmarks, 0, len(resp.Hands))
	for _, h := range resp.Hands {
		lm, err := FromPoints(h.Points, h.Handedness, h.Score)
		if err != nil {
			log.Printf("Dropping hand from detector: %v", err)
			continue
		}
		hands = append(hands, lm)
	}
	return hands, nil
}
