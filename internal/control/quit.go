package control

import (
	"fmt"
	"math"
	"time"

	"github.com/ayusman/mudra/internal/config"
)

// LabelQuitting is shown on the frame the quit gesture completes.
const LabelQuitting = "QUITTING..."

// QuitConfirmer requires the peace sign to be held for QuitGestureTime
// before it signals termination. Any interruption starts the count over.
type QuitConfirmer struct {
	hold       time.Duration
	confirming bool
	start      time.Time
}

// NewQuitConfirmer creates a quit confirmer.
func NewQuitConfirmer(cfg config.Control) *QuitConfirmer {
	return &QuitConfirmer{hold: cfg.QuitGestureTime}
}

// Update advances the confirmer. It returns true exactly once per completed
// hold; the confirmer is idle again afterwards.
func (q *QuitConfirmer) Update(peace bool, now time.Time) (string, bool) {
	if !peace {
		q.Reset()
		return "", false
	}

	if !q.confirming {
		q.confirming = true
		q.start = now
		return "", false
	}

	elapsed := now.Sub(q.start)
	if elapsed >= q.hold {
		q.Reset()
		return LabelQuitting, true
	}

	remaining := int(math.Ceil((q.hold - elapsed).Seconds()))
	return fmt.Sprintf("QUIT IN %ds", remaining), false
}

// Reset returns the confirmer to idle.
func (q *QuitConfirmer) Reset() {
	q.confirming = false
	q.start = time.Time{}
}

// Confirming reports whether a hold is in progress.
func (q *QuitConfirmer) Confirming() bool {
	return q.confirming
}

// Progress returns how far the current hold is toward quitting, from 0 to 1.
func (q *QuitConfirmer) Progress(now time.Time) float64 {
	if !q.confirming {
		return 0
	}
	return progress(now.Sub(q.start), q.hold)
}
