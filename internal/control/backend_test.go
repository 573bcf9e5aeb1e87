package control

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var errBackend = errors.New("backend unavailable")

// recorder is a Backend that records every call as a short string and can
// be told to fail specific primitives.
type recorder struct {
	calls  []string
	fail   map[string]bool
	width  int
	height int
	px, py int
}

func newRecorder() *recorder {
	return &recorder{fail: map[string]bool{}, width: 1920, height: 1080}
}

func (r *recorder) do(name, call string) error {
	if r.fail[name] {
		return errBackend
	}
	r.calls = append(r.calls, call)
	return nil
}

func (r *recorder) MoveCursor(x, y int) error { return r.do("move", fmt.Sprintf("move %d,%d", x, y)) }
func (r *recorder) DragTo(x, y int) error     { return r.do("drag", fmt.Sprintf("drag %d,%d", x, y)) }
func (r *recorder) MouseDown() error          { return r.do("down", "down") }
func (r *recorder) MouseUp() error            { return r.do("up", "up") }
func (r *recorder) Click(b Button) error      { return r.do("click", "click "+b.String()) }
func (r *recorder) Scroll(amount int) error   { return r.do("scroll", fmt.Sprintf("scroll %d", amount)) }
func (r *recorder) KeyPress(key string) error { return r.do("press", "press "+key) }
func (r *recorder) KeyDown(key string) error  { return r.do("keydown", "keydown "+key) }
func (r *recorder) KeyUp(key string) error    { return r.do("keyup", "keyup "+key) }
func (r *recorder) Hotkey(keys ...string) error {
	return r.do("hotkey", "hotkey "+strings.Join(keys, "+"))
}
func (r *recorder) ScreenSize() (int, int) { return r.width, r.height }
func (r *recorder) Position() (int, int)   { return r.px, r.py }

// count returns how many recorded calls start with prefix.
func (r *recorder) count(prefix string) int {
	n := 0
	for _, c := range r.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// t0 is an arbitrary fixed instant tests measure from.
var t0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func at(seconds float64) time.Time {
	return t0.Add(time.Duration(seconds * float64(time.Second)))
}
