package input

import (
	"log"
	"strings"
	"sync"

	"github.com/ayusman/mudra/internal/control"
)

// Log is a dry-run backend: it logs every action instead of injecting it and
// tracks a virtual pointer on a fixed-size screen.
type Log struct {
	mu     sync.Mutex
	width  int
	height int
	x, y   int
}

// NewLog creates a dry-run backend for a width x height screen with the
// pointer in the middle.
func NewLog(width, height int) *Log {
	return &Log{width: width, height: height, x: width / 2, y: height / 2}
}

func (l *Log) MoveCursor(x, y int) error {
	l.mu.Lock()
	l.x, l.y = x, y
	l.mu.Unlock()
	return nil
}

func (l *Log) DragTo(x, y int) error {
	l.mu.Lock()
	l.x, l.y = x, y
	l.mu.Unlock()
	log.Printf("[dry-run] drag to %d,%d", x, y)
	return nil
}

func (l *Log) MouseDown() error {
	log.Printf("[dry-run] mouse down")
	return nil
}

func (l *Log) MouseUp() error {
	log.Printf("[dry-run] mouse up")
	return nil
}

func (l *Log) Click(b control.Button) error {
	log.Printf("[dry-run] %s click", b)
	return nil
}

func (l *Log) Scroll(amount int) error {
	log.Printf("[dry-run] scroll %d", amount)
	return nil
}

func (l *Log) KeyPress(key string) error {
	log.Printf("[dry-run] press %s", key)
	return nil
}

func (l *Log) KeyDown(key string) error {
	log.Printf("[dry-run] hold %s", key)
	return nil
}

func (l *Log) KeyUp(key string) error {
	log.Printf("[dry-run] release %s", key)
	return nil
}

func (l *Log) Hotkey(keys ...string) error {
	if len(keys) == 0 {
		return ErrNoKeys
	}
	log.Printf("[dry-run] hotkey %s", strings.Join(keys, "+"))
	return nil
}

func (l *Log) ScreenSize() (int, int) {
	return l.width, l.height
}

func (l *Log) Position() (int, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.x, l.y
}
