package control

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/gesture"
)

// Corner is a navigation corner of the camera frame.
type Corner int

const (
	NoCorner Corner = iota
	TopLeft
	TopRight
)

func (c Corner) String() string {
	switch c {
	case TopLeft:
		return "TOP_LEFT"
	case TopRight:
		return "TOP_RIGHT"
	}
	return "NONE"
}

// MarshalJSON encodes the corner by name.
func (c Corner) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func cornerOf(s gesture.State) Corner {
	switch s {
	case gesture.TopLeftHold:
		return TopLeft
	case gesture.TopRightHold:
		return TopRight
	}
	return NoCorner
}

// Labels reported for shortcuts and corner navigation.
const (
	LabelHoldLeft    = "HOLD LEFT CORNER"
	LabelHoldRight   = "HOLD RIGHT CORNER"
	LabelPageBack    = "PAGE BACK"
	LabelPageForward = "PAGE FORWARD"
	LabelSpace       = "SPACE"
	LabelShiftOn     = "SHIFT ON"
	LabelShiftOff    = "SHIFT OFF"
)

// ShortcutController handles the left-hand keyboard gestures and the
// corner hold-to-navigate state machine: idle, holding(corner, start),
// committed once the hold reaches NavHoldDuration.
//
// A committed hold is not cleared, so a corner held past the threshold
// fires its navigation hotkey on every frame until the hand leaves it.
type ShortcutController struct {
	backend    Backend
	hold       time.Duration
	thumbKey   string
	pinkyKey   string
	navBack    []string
	navForward []string

	shiftDown bool
	corner    Corner
	holdStart time.Time
}

// NewShortcutController creates a shortcut controller.
func NewShortcutController(b Backend, cfg config.Control) *ShortcutController {
	return &ShortcutController{
		backend:    b,
		hold:       cfg.NavHoldDuration,
		thumbKey:   cfg.ThumbKey,
		pinkyKey:   cfg.PinkyKey,
		navBack:    cfg.NavBack,
		navForward: cfg.NavForward,
	}
}

// Execute handles one left-hand state and returns the label to show.
func (s *ShortcutController) Execute(state gesture.State, now time.Time) (string, error) {
	switch {
	case state.IsCorner():
		return s.holdCorner(cornerOf(state), now)

	case state == gesture.ThumbOutLeft:
		if err := s.backend.KeyPress(s.thumbKey); err != nil {
			return "", fmt.Errorf("press %s: %w", s.thumbKey, err)
		}
		return LabelSpace, nil

	case state == gesture.PinkyOutLeft:
		return s.toggleShift()
	}

	return "", nil
}

func (s *ShortcutController) holdCorner(corner Corner, now time.Time) (string, error) {
	holding := LabelHoldLeft
	if corner == TopRight {
		holding = LabelHoldRight
	}

	if s.corner != corner {
		s.corner = corner
		s.holdStart = now
		return holding, nil
	}

	if now.Sub(s.holdStart) < s.hold {
		return holding, nil
	}

	keys, label := s.navBack, LabelPageBack
	if corner == TopRight {
		keys, label = s.navForward, LabelPageForward
	}
	if err := s.backend.Hotkey(keys...); err != nil {
		return "", fmt.Errorf("hotkey %v: %w", keys, err)
	}
	return label, nil
}

func (s *ShortcutController) toggleShift() (string, error) {
	if !s.shiftDown {
		if err := s.backend.KeyDown(s.pinkyKey); err != nil {
			return "", fmt.Errorf("key down %s: %w", s.pinkyKey, err)
		}
		s.shiftDown = true
		return LabelShiftOn, nil
	}

	if err := s.backend.KeyUp(s.pinkyKey); err != nil {
		return "", fmt.Errorf("key up %s: %w", s.pinkyKey, err)
	}
	s.shiftDown = false
	return LabelShiftOff, nil
}

// Reset abandons any corner hold in progress.
func (s *ShortcutController) Reset() {
	s.corner = NoCorner
	s.holdStart = time.Time{}
}

// CornerProgress returns the held corner and how far the hold is toward
// committing, from 0 to 1.
func (s *ShortcutController) CornerProgress(now time.Time) (Corner, float64) {
	if s.corner == NoCorner {
		return NoCorner, 0
	}
	return s.corner, progress(now.Sub(s.holdStart), s.hold)
}

// ShiftDown reports whether the pinky toggle currently holds its key down.
func (s *ShortcutController) ShiftDown() bool {
	return s.shiftDown
}

func progress(elapsed, total time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	if elapsed >= total {
		return 1
	}
	return float64(elapsed) / float64(total)
}
