// Package input provides the OS input backends the controllers drive:
// a robotgo backend, a plugin-routed keyboard, a dry-run logger and a
// wrapper that makes any of them safe to abandon mid-gesture.
package input

import (
	"fmt"

	"github.com/go-vgo/robotgo"

	"github.com/ayusman/mudra/internal/control"
)

// Robot injects pointer and keyboard events through robotgo.
type Robot struct{}

// NewRobot returns the robotgo backend.
func NewRobot() *Robot {
	return &Robot{}
}

func (r *Robot) MoveCursor(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

func (r *Robot) DragTo(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

func (r *Robot) MouseDown() error {
	if err := robotgo.Toggle("left"); err != nil {
		return fmt.Errorf("press left button: %w", err)
	}
	return nil
}

func (r *Robot) MouseUp() error {
	if err := robotgo.Toggle("left", "up"); err != nil {
		return fmt.Errorf("release left button: %w", err)
	}
	return nil
}

func (r *Robot) Click(b control.Button) error {
	robotgo.Click(b.String())
	return nil
}

func (r *Robot) Scroll(amount int) error {
	robotgo.Scroll(0, amount)
	return nil
}

func (r *Robot) KeyPress(key string) error {
	if err := robotgo.KeyTap(key); err != nil {
		return fmt.Errorf("tap %s: %w", key, err)
	}
	return nil
}

func (r *Robot) KeyDown(key string) error {
	if err := robotgo.KeyToggle(key); err != nil {
		return fmt.Errorf("hold %s: %w", key, err)
	}
	return nil
}

func (r *Robot) KeyUp(key string) error {
	if err := robotgo.KeyToggle(key, "up"); err != nil {
		return fmt.Errorf("release %s: %w", key, err)
	}
	return nil
}

// Hotkey taps the last key with every earlier key held as a modifier.
func (r *Robot) Hotkey(keys ...string) error {
	if len(keys) == 0 {
		return ErrNoKeys
	}
	key := keys[len(keys)-1]
	mods := make([]interface{}, 0, len(keys)-1)
	for _, m := range keys[:len(keys)-1] {
		mods = append(mods, m)
	}
	if err := robotgo.KeyTap(key, mods...); err != nil {
		return fmt.Errorf("hotkey %v: %w", keys, err)
	}
	return nil
}

func (r *Robot) ScreenSize() (int, int) {
	return robotgo.GetScreenSize()
}

func (r *Robot) Position() (int, int) {
	return robotgo.Location()
}
