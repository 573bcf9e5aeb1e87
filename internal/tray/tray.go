// Package tray provides the system tray menu of the mudra gesture controller.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/control"
)

// Controller is the part of a session the tray drives.
type Controller interface {
	Enabled() bool
	SetEnabled(enabled bool)
	Subscribe() (<-chan control.Result, func())
	Stop()
}

// Tray shows the session state in the system tray: an enable toggle, the
// last action and a quit item.
type Tray struct {
	session Controller
	mu      sync.Mutex
	last    string

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuLast   *systray.MenuItem
}

// New creates a Tray for session.
func New(session Controller) *Tray {
	return &Tray{session: session}
}

// Run starts the system tray. It must be called from the main goroutine
// and blocks until the tray quits, either from its menu or because the
// session ended.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra hand gesture control")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.session.Enabled()), "Pause or resume gesture control")
	systray.AddSeparator()
	t.menuLast = systray.AddMenuItem(lastTitle(t.last), "Last action performed")
	t.menuLast.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Stop gesture control and quit")

	results, unsubscribe := t.session.Subscribe()
	go t.follow(results, systray.Quit)

	go func() {
		defer unsubscribe()
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.toggle()
			case <-menuQuit.ClickedCh:
				t.session.Stop()
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// follow shows each labeled result as the last action and calls done once
// the session stops publishing.
func (t *Tray) follow(results <-chan control.Result, done func()) {
	for res := range results {
		if res.Label != "" {
			t.setLast(res.Label)
		}
	}
	done()
}

// toggle flips the session between enabled and paused.
func (t *Tray) toggle() {
	enabled := !t.session.Enabled()
	t.session.SetEnabled(enabled)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
}

func (t *Tray) setLast(label string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if label == t.last {
		return
	}
	t.last = label
	if t.menuLast != nil {
		t.menuLast.SetTitle(lastTitle(label))
	}
}

// Last returns the most recent action label.
func (t *Tray) Last() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Paused"
}

func lastTitle(label string) string {
	if label == "" {
		return "Last: none"
	}
	return "Last: " + label
}
