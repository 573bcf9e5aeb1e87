package control

import (
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/gesture"
)

// Labels reported for pointer actions.
const (
	LabelLeftClick  = "LEFT CLICK"
	LabelRightClick = "RIGHT CLICK"
	LabelDragEnd    = "DRAG END"
)

// ClickController fires swipe clicks behind a cooldown and ends drags after
// a release delay, so one flickered frame does not drop what is being dragged.
type ClickController struct {
	backend   Backend
	drag      *Drag
	cooldown  time.Duration
	release   time.Duration
	lastClick time.Time
}

// NewClickController creates a click controller sharing the drag record with the cursor.
func NewClickController(b Backend, cfg config.Control, drag *Drag) *ClickController {
	return &ClickController{
		backend:  b,
		drag:     drag,
		cooldown: cfg.ClickCooldown,
		release:  cfg.DragReleaseTime,
	}
}

// Update handles one right-hand state. At most one action fires per call.
func (c *ClickController) Update(state gesture.State, now time.Time) (string, error) {
	switch {
	case state == gesture.LeftClick && c.ready(now):
		if err := c.backend.Click(ButtonLeft); err != nil {
			return "", fmt.Errorf("left click: %w", err)
		}
		c.lastClick = now
		return LabelLeftClick, nil

	case state == gesture.RightClick && c.ready(now):
		if err := c.backend.Click(ButtonRight); err != nil {
			return "", fmt.Errorf("right click: %w", err)
		}
		c.lastClick = now
		return LabelRightClick, nil

	case c.drag.Active && state != gesture.Drag:
		if now.Sub(c.drag.Start) <= c.release {
			return "", nil
		}
		if err := c.backend.MouseUp(); err != nil {
			return "", fmt.Errorf("mouse up: %w", err)
		}
		c.drag.Active = false
		return LabelDragEnd, nil
	}

	return "", nil
}

func (c *ClickController) ready(now time.Time) bool {
	return c.lastClick.IsZero() || now.Sub(c.lastClick) > c.cooldown
}
