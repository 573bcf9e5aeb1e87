package control

import (
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/gesture"
)

// Labels reported for scrolling.
const (
	LabelScrollUp   = "SCROLL UP"
	LabelScrollDown = "SCROLL DOWN"
)

// ScrollController emits fixed-size scroll steps no faster than its cooldown,
// independent of the frame rate.
type ScrollController struct {
	backend     Backend
	cooldown    time.Duration
	sensitivity int
	lastScroll  time.Time
}

// NewScrollController creates a scroll controller.
func NewScrollController(b Backend, cfg config.Control) *ScrollController {
	return &ScrollController{
		backend:     b,
		cooldown:    cfg.ScrollCooldown,
		sensitivity: cfg.ScrollSensitivity,
	}
}

// Update scrolls for SCROLL_UP and SCROLL_DOWN; any other state is ignored.
func (s *ScrollController) Update(state gesture.State, now time.Time) (string, error) {
	if !state.IsScroll() {
		return "", nil
	}
	if !s.lastScroll.IsZero() && now.Sub(s.lastScroll) <= s.cooldown {
		return "", nil
	}

	amount, label := s.sensitivity, LabelScrollUp
	if state == gesture.ScrollDown {
		amount, label = -s.sensitivity, LabelScrollDown
	}

	if err := s.backend.Scroll(amount); err != nil {
		return "", fmt.Errorf("scroll: %w", err)
	}
	s.lastScroll = now
	return label, nil
}
