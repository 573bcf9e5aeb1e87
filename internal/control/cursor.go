package control

import (
	"fmt"
	"math"
	"time"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// Drag records whether the primary button is held for a drag.
// The cursor controller engages it; only the click controller releases it.
type Drag struct {
	Active bool
	Start  time.Time
}

// CursorController maps the right index fingertip onto the screen.
type CursorController struct {
	backend   Backend
	drag      *Drag
	padding   float64
	smoothing float64
	width     float64
	height    float64
	x, y      float64
}

// NewCursorController creates a cursor controller starting from the
// backend's current pointer position.
func NewCursorController(b Backend, cfg config.Control, drag *Drag) *CursorController {
	w, h := b.ScreenSize()
	x, y := b.Position()
	return &CursorController{
		backend:   b,
		drag:      drag,
		padding:   cfg.ScreenPadding,
		smoothing: cfg.SmoothingFactor,
		width:     float64(w),
		height:    float64(h),
		x:         float64(x),
		y:         float64(y),
	}
}

// Update moves the pointer for MOVE (smoothed) and DRAG (direct) states.
// Other states leave the pointer alone. On a backend error the tracked
// position is left unchanged.
func (c *CursorController) Update(tip detector.Point3D, state gesture.State, now time.Time) error {
	tx := interp(tip.X, c.padding, 1-c.padding, c.width)
	ty := interp(tip.Y, c.padding, 1-c.padding, c.height)

	switch state {
	case gesture.Move:
		nx := c.x + (tx-c.x)*c.smoothing
		ny := c.y + (ty-c.y)*c.smoothing
		if err := c.backend.MoveCursor(round(nx), round(ny)); err != nil {
			return fmt.Errorf("move cursor: %w", err)
		}
		c.x, c.y = nx, ny

	case gesture.Drag:
		if !c.drag.Active {
			if err := c.backend.MouseDown(); err != nil {
				return fmt.Errorf("mouse down: %w", err)
			}
			c.drag.Active = true
			c.drag.Start = now
		}
		if err := c.backend.DragTo(round(tx), round(ty)); err != nil {
			return fmt.Errorf("drag to: %w", err)
		}
		c.x, c.y = tx, ty
	}

	return nil
}

// Position returns the last pointer position the controller produced.
func (c *CursorController) Position() (x, y float64) {
	return c.x, c.y
}

// interp maps v from [lo, hi] onto [0, out], clamping outside the range.
func interp(v, lo, hi, out float64) float64 {
	if v <= lo {
		return 0
	}
	if v >= hi {
		return out
	}
	return (v - lo) / (hi - lo) * out
}

func round(v float64) int {
	return int(math.Round(v))
}
