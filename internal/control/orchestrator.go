package control

import (
	"log"
	"time"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// Result is the outcome of one frame.
type Result struct {
	Time  time.Time `json:"time"`
	Label string    `json:"label,omitempty"`
	Quit  bool      `json:"quit"`

	Left     gesture.State `json:"left"`
	HasLeft  bool          `json:"has_left"`
	Right    gesture.State `json:"right"`
	HasRight bool          `json:"has_right"`

	Corner         Corner  `json:"corner"`
	CornerProgress float64 `json:"corner_progress"`
	QuitProgress   float64 `json:"quit_progress"`

	CursorX  float64 `json:"cursor_x"`
	CursorY  float64 `json:"cursor_y"`
	Dragging bool    `json:"dragging"`
	Shift    bool    `json:"shift"`
}

// Orchestrator classifies every hand of a frame and routes the right hand
// to the pointer controllers and the left hand to scroll, shortcuts and quit.
// It is not safe for concurrent use; the frame loop owns it.
type Orchestrator struct {
	classifier *gesture.Classifier
	swipe      gesture.Swipe
	drag       Drag

	cursor   *CursorController
	click    *ClickController
	scroll   *ScrollController
	shortcut *ShortcutController
	quit     *QuitConfirmer
}

// NewOrchestrator builds the classifier and every controller for one session.
func NewOrchestrator(cfg config.Control, b Backend) *Orchestrator {
	o := &Orchestrator{
		classifier: gesture.NewClassifier(cfg),
		scroll:     NewScrollController(b, cfg),
		shortcut:   NewShortcutController(b, cfg),
		quit:       NewQuitConfirmer(cfg),
	}
	o.cursor = NewCursorController(b, cfg, &o.drag)
	o.click = NewClickController(b, cfg, &o.drag)
	return o
}

// Process runs one frame. now is read once by the caller and shared by
// every controller. When both hands produce a label the left hand's wins.
func (o *Orchestrator) Process(hands []detector.HandLandmarks, now time.Time) Result {
	res := Result{Time: now}
	var leftLabel, rightLabel string

	for i := range hands {
		hand := &hands[i]

		state, swipe, err := o.classifier.Classify(*hand, o.swipe)
		if err != nil {
			log.Printf("Skipping hand: %v", err)
			continue
		}

		if hand.IsRight() {
			o.swipe = swipe
			res.Right, res.HasRight = state, true
			rightLabel = o.right(hand, state, now)
			continue
		}

		res.Left, res.HasLeft = state, true
		var quit bool
		leftLabel, quit = o.left(state, now)
		if quit {
			res.Quit = true
		}
	}

	// A missing left hand interrupts any hold in progress.
	if !res.HasLeft {
		o.quit.Reset()
		o.shortcut.Reset()
	}

	res.Label = rightLabel
	if leftLabel != "" {
		res.Label = leftLabel
	}

	res.Corner, res.CornerProgress = o.shortcut.CornerProgress(now)
	res.QuitProgress = o.quit.Progress(now)
	res.CursorX, res.CursorY = o.cursor.Position()
	res.Dragging = o.drag.Active
	res.Shift = o.shortcut.ShiftDown()

	return res
}

func (o *Orchestrator) right(hand *detector.HandLandmarks, state gesture.State, now time.Time) string {
	if state == gesture.Move || state == gesture.Drag {
		if err := o.cursor.Update(hand.Points[detector.IndexTip], state, now); err != nil {
			log.Printf("Movement error: %v", err)
		}
	}

	label, err := o.click.Update(state, now)
	if err != nil {
		log.Printf("Click error: %v", err)
	}
	return label
}

func (o *Orchestrator) left(state gesture.State, now time.Time) (string, bool) {
	if !state.IsCorner() {
		o.shortcut.Reset()
	}

	if state == gesture.Peace {
		return o.quit.Update(true, now)
	}
	o.quit.Reset()

	var (
		label string
		err   error
	)
	if state.IsScroll() {
		label, err = o.scroll.Update(state, now)
		if err != nil {
			log.Printf("Scroll error: %v", err)
		}
		return label, false
	}

	label, err = o.shortcut.Execute(state, now)
	if err != nil {
		log.Printf("Shortcut error: %v", err)
	}
	return label, false
}
