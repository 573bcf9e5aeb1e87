package gesture

import (
	"math"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
)

// fistMargin is how far below its PIP joint a fingertip must sit, in
// normalized units, for the finger to count as clenched.
const fistMargin = 0.05

// minTiltLength guards the palm angle against a degenerate wrist-to-knuckle vector.
const minTiltLength = 1e-9

// Swipe is the right index fingertip position seen on the previous frame.
// The zero value means no history.
type Swipe struct {
	X, Y  float64
	Valid bool
}

// Classifier maps one hand's landmarks to a State with a fixed, ordered rule
// set per handedness. It holds thresholds only; the swipe history is passed
// in and returned by the caller.
type Classifier struct {
	clickMovement float64
	pinch         float64
	scrollAngle   float64
	corner        float64
}

// NewClassifier creates a Classifier from the control thresholds.
func NewClassifier(cfg config.Control) *Classifier {
	return &Classifier{
		clickMovement: cfg.ClickMovementThreshold,
		pinch:         cfg.PinchThreshold,
		scrollAngle:   cfg.ScrollActivationAngle,
		corner:        cfg.NavCornerSize,
	}
}

// frame is what a rule sees: the hand and the previous swipe position.
type frame struct {
	p    *[detector.NumLandmarks]detector.Point3D
	prev Swipe
}

// rule returns a state and true when it matches.
type rule func(c *Classifier, f *frame) (State, bool)

var rightRules = []rule{
	swipeClick,
	pinchDrag,
	openOrClosed,
}

var leftRules = []rule{
	tiltScroll,
	cornerHold,
	thumbOut,
	pinkyOut,
	peaceSign,
	otherLeft,
}

// Classify returns the hand's state and the swipe history for the next frame.
// The error is non-nil only for malformed input; geometry that cannot be
// evaluated yields Error instead.
func (c *Classifier) Classify(hand detector.HandLandmarks, prev Swipe) (State, Swipe, error) {
	if err := hand.Validate(); err != nil {
		return Error, prev, err
	}

	if !finite(&hand.Points) {
		if hand.IsRight() {
			return Error, Swipe{}, nil
		}
		return Error, prev, nil
	}

	f := &frame{p: &hand.Points, prev: prev}

	if !hand.IsRight() {
		return evaluate(c, f, leftRules, OtherLeft), prev, nil
	}

	state := evaluate(c, f, rightRules, Closed)
	if state.IsClick() {
		return state, Swipe{}, nil
	}
	tip := hand.Points[detector.IndexTip]
	return state, Swipe{X: tip.X, Y: tip.Y, Valid: true}, nil
}

func evaluate(c *Classifier, f *frame, rules []rule, fallback State) State {
	for _, r := range rules {
		if s, ok := r(c, f); ok {
			return s
		}
	}
	return fallback
}

// Right hand.

func swipeClick(c *Classifier, f *frame) (State, bool) {
	if !f.prev.Valid {
		return 0, false
	}
	tip := f.p[detector.IndexTip]
	moved := math.Hypot(tip.X-f.prev.X, tip.Y-f.prev.Y)
	if moved <= c.clickMovement || tip.X <= f.prev.X {
		return 0, false
	}
	if extended(f.p, detector.MiddleTip) {
		return RightClick, true
	}
	return LeftClick, true
}

func pinchDrag(c *Classifier, f *frame) (State, bool) {
	thumb, index := f.p[detector.ThumbTip], f.p[detector.IndexTip]
	if math.Hypot(thumb.X-index.X, thumb.Y-index.Y) >= c.pinch {
		return 0, false
	}
	if extended(f.p, detector.MiddleTip) || extended(f.p, detector.RingTip) || extended(f.p, detector.PinkyTip) {
		return 0, false
	}
	return Drag, true
}

func openOrClosed(_ *Classifier, f *frame) (State, bool) {
	if openHand(f.p) {
		return Move, true
	}
	return Closed, true
}

// Left hand.

func tiltScroll(c *Classifier, f *frame) (State, bool) {
	wrist, mcp := f.p[detector.Wrist], f.p[detector.MiddleMCP]
	if wrist.Y <= mcp.Y {
		return 0, false
	}
	dx, dy := wrist.X-mcp.X, wrist.Y-mcp.Y
	if math.Hypot(dx, dy) < minTiltLength {
		return 0, false
	}
	angle := math.Atan2(dy, dx) * 180 / math.Pi
	if math.Abs(angle) <= c.scrollAngle {
		return 0, false
	}
	if angle > 0 {
		return ScrollDown, true
	}
	return ScrollUp, true
}

func cornerHold(c *Classifier, f *frame) (State, bool) {
	for _, tip := range fingerTips {
		if f.p[tip].Y <= f.p[tip-2].Y+fistMargin {
			return 0, false
		}
	}
	wrist := f.p[detector.Wrist]
	if wrist.Y >= c.corner {
		return 0, false
	}
	switch {
	case wrist.X < c.corner:
		return TopLeftHold, true
	case wrist.X > 1-c.corner:
		return TopRightHold, true
	}
	return 0, false
}

func thumbOut(_ *Classifier, f *frame) (State, bool) {
	if f.p[detector.ThumbTip].X < f.p[detector.ThumbIP].X && !extended(f.p, detector.IndexTip) {
		return ThumbOutLeft, true
	}
	return 0, false
}

func pinkyOut(_ *Classifier, f *frame) (State, bool) {
	if extended(f.p, detector.PinkyTip) && !extended(f.p, detector.IndexTip) {
		return PinkyOutLeft, true
	}
	return 0, false
}

func peaceSign(_ *Classifier, f *frame) (State, bool) {
	if extended(f.p, detector.IndexTip) && extended(f.p, detector.MiddleTip) &&
		!extended(f.p, detector.RingTip) && !extended(f.p, detector.PinkyTip) {
		return Peace, true
	}
	return 0, false
}

func otherLeft(_ *Classifier, _ *frame) (State, bool) {
	return OtherLeft, true
}

// Geometry.

var fingerTips = [4]int{detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}

// extended reports whether a non-thumb finger points up: its tip is above its PIP joint.
func extended(p *[detector.NumLandmarks]detector.Point3D, tip int) bool {
	return p[tip].Y < p[tip-2].Y
}

func openHand(p *[detector.NumLandmarks]detector.Point3D) bool {
	for _, tip := range fingerTips {
		if !extended(p, tip) {
			return false
		}
	}
	return true
}

func finite(p *[detector.NumLandmarks]detector.Point3D) bool {
	for _, pt := range p {
		if !pt.Finite() {
			return false
		}
	}
	return true
}
