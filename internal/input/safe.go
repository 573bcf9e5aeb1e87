package input

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/ayusman/mudra/internal/control"
)

var (
	// ErrPanic wraps a panic raised inside a backend call.
	ErrPanic = errors.New("input backend panicked")

	// ErrClosed is returned by every action after Close.
	ErrClosed = errors.New("input backend closed")
)

// Safe serializes calls to a backend, turns panics into errors and
// remembers what it has pressed so Close can release it. A session that
// exits mid-drag or with shift held leaves nothing stuck down.
type Safe struct {
	mu       sync.Mutex
	inner    control.Backend
	buttonOn bool
	keysHeld map[string]bool
	closed   bool
}

// NewSafe wraps inner.
func NewSafe(inner control.Backend) *Safe {
	return &Safe{inner: inner, keysHeld: make(map[string]bool)}
}

func (s *Safe) call(name string, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	return s.guard(name, fn)
}

// guard runs fn with the lock held.
func (s *Safe) guard(name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrPanic, name, r)
		}
	}()
	return fn()
}

func (s *Safe) MoveCursor(x, y int) error {
	return s.call("move", func() error { return s.inner.MoveCursor(x, y) })
}

func (s *Safe) DragTo(x, y int) error {
	return s.call("drag", func() error { return s.inner.DragTo(x, y) })
}

func (s *Safe) MouseDown() error {
	return s.call("mouse down", func() error {
		if err := s.inner.MouseDown(); err != nil {
			return err
		}
		s.buttonOn = true
		return nil
	})
}

func (s *Safe) MouseUp() error {
	return s.call("mouse up", func() error {
		if err := s.inner.MouseUp(); err != nil {
			return err
		}
		s.buttonOn = false
		return nil
	})
}

func (s *Safe) Click(b control.Button) error {
	return s.call("click", func() error { return s.inner.Click(b) })
}

func (s *Safe) Scroll(amount int) error {
	return s.call("scroll", func() error { return s.inner.Scroll(amount) })
}

func (s *Safe) KeyPress(key string) error {
	return s.call("key press", func() error { return s.inner.KeyPress(key) })
}

func (s *Safe) KeyDown(key string) error {
	return s.call("key down", func() error {
		if err := s.inner.KeyDown(key); err != nil {
			return err
		}
		s.keysHeld[key] = true
		return nil
	})
}

func (s *Safe) KeyUp(key string) error {
	return s.call("key up", func() error {
		if err := s.inner.KeyUp(key); err != nil {
			return err
		}
		delete(s.keysHeld, key)
		return nil
	})
}

func (s *Safe) Hotkey(keys ...string) error {
	return s.call("hotkey", func() error { return s.inner.Hotkey(keys...) })
}

func (s *Safe) ScreenSize() (w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard("screen size", func() error {
		w, h = s.inner.ScreenSize()
		return nil
	}); err != nil {
		log.Printf("Screen size unavailable: %v", err)
	}
	return w, h
}

func (s *Safe) Position() (x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard("position", func() error {
		x, y = s.inner.Position()
		return nil
	}); err != nil {
		log.Printf("Pointer position unavailable: %v", err)
	}
	return x, y
}

// Held returns the pressed button state and the held keys, sorted.
func (s *Safe) Held() (bool, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buttonOn, s.heldKeys()
}

func (s *Safe) heldKeys() []string {
	keys := make([]string, 0, len(s.keysHeld))
	for k := range s.keysHeld {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Close releases the mouse button and every held key, then rejects further
// calls. It is safe to call more than once.
func (s *Safe) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if s.buttonOn {
		if err := s.guard("mouse up", s.inner.MouseUp); err != nil {
			errs = append(errs, fmt.Errorf("release button: %w", err))
		}
		s.buttonOn = false
	}
	for _, k := range s.heldKeys() {
		if err := s.guard("key up", func() error { return s.inner.KeyUp(k) }); err != nil {
			errs = append(errs, fmt.Errorf("release %s: %w", k, err))
		}
		delete(s.keysHeld, k)
	}
	return errors.Join(errs...)
}
