// Package control turns per-frame hand states into pointer and keyboard actions.
//
// Each controller owns only its own timers and flags. The Orchestrator owns
// every controller and is the single place they are mutated, once per frame.
package control

// Button identifies a mouse button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
)

func (b Button) String() string {
	if b == ButtonRight {
		return "right"
	}
	return "left"
}

// Backend is the OS input surface the controllers drive.
// Every call is fire-and-forget; a returned error means the action did not happen.
type Backend interface {
	MoveCursor(x, y int) error
	DragTo(x, y int) error
	MouseDown() error
	MouseUp() error
	Click(b Button) error
	Scroll(amount int) error
	KeyPress(key string) error
	KeyDown(key string) error
	KeyUp(key string) error
	Hotkey(keys ...string) error

	// ScreenSize returns the primary screen size in pixels.
	ScreenSize() (width, height int)
	// Position returns the current pointer position in pixels.
	Position() (x, y int)
}
