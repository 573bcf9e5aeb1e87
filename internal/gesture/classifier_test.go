package gesture

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
)

func newTestClassifier() *Classifier {
	return NewClassifier(config.DefaultControl())
}

func TestClassifier_LeftHand(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		name string
		hand detector.HandLandmarks
		want State
	}{
		{"tilted palm scrolls down", detector.TiltedPalmLandmarks(), ScrollDown},
		{"fist in top-left corner", detector.FistLandmarks(detector.Left, 0.10, 0.15), TopLeftHold},
		{"fist in top-right corner", detector.FistLandmarks(detector.Left, 0.90, 0.15), TopRightHold},
		{"fist below the corners", detector.FistLandmarks(detector.Left, 0.10, 0.50), OtherLeft},
		{"fist at top centre", detector.FistLandmarks(detector.Left, 0.50, 0.15), OtherLeft},
		{"thumb out", detector.ThumbOutLandmarks(), ThumbOutLeft},
		{"pinky out", detector.PinkyOutLandmarks(), PinkyOutLeft},
		{"peace", detector.PeaceLandmarks(), Peace},
		{"open palm", detector.OpenPalmLandmarks(detector.Left), OtherLeft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := c.Classify(tt.hand, Swipe{})
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifier_LeftHandPriority(t *testing.T) {
	c := newTestClassifier()

	t.Run("thumb out in a corner reads as corner hold", func(t *testing.T) {
		h := detector.SyntheticHand(detector.Left, 0.1, 0.15, detector.Fingers{Thumb: true})
		got, _, _ := c.Classify(h, Swipe{})
		if got != TopLeftHold {
			t.Errorf("Classify() = %v, want %v", got, TopLeftHold)
		}
	})

	t.Run("tilted peace reads as scroll", func(t *testing.T) {
		h := detector.PeaceLandmarks()
		wrist := h.Points[detector.Wrist]
		h.Points[detector.MiddleMCP] = detector.Point3D{X: wrist.X, Y: wrist.Y - 0.12}
		got, _, _ := c.Classify(h, Swipe{})
		if got != ScrollDown {
			t.Errorf("Classify() = %v, want %v", got, ScrollDown)
		}
	})

	t.Run("left hand leaves swipe history untouched", func(t *testing.T) {
		prev := Swipe{X: 0.3, Y: 0.3, Valid: true}
		_, next, _ := c.Classify(detector.PeaceLandmarks(), prev)
		if next != prev {
			t.Errorf("swipe = %+v, want %+v", next, prev)
		}
	})
}

func TestClassifier_PalmNotDownNeverScrolls(t *testing.T) {
	c := newTestClassifier()

	h := detector.OpenPalmLandmarks(detector.Left)
	wrist := h.Points[detector.Wrist]
	// Knuckle below the wrist: the angle would be steep but the palm faces up.
	h.Points[detector.MiddleMCP] = detector.Point3D{X: wrist.X, Y: wrist.Y + 0.12}

	got, _, _ := c.Classify(h, Swipe{})
	if got.IsScroll() {
		t.Errorf("Classify() = %v, want a non-scroll state", got)
	}
}

func TestClassifier_RightHand(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		name string
		hand detector.HandLandmarks
		want State
	}{
		{"open palm moves", detector.OpenPalmLandmarks(detector.Right), Move},
		{"pinch drags", detector.PinchLandmarks(), Drag},
		{"fist is closed", detector.FistLandmarks(detector.Right, 0.5, 0.8), Closed},
		{"peace is closed", detector.SyntheticHand(detector.Right, 0.5, 0.8, detector.Fingers{Index: true, Middle: true}), Closed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, next, err := c.Classify(tt.hand, Swipe{})
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
			tip := tt.hand.Points[detector.IndexTip]
			if !next.Valid || next.X != tip.X || next.Y != tip.Y {
				t.Errorf("swipe = %+v, want current index tip %+v", next, tip)
			}
		})
	}
}

func TestClassifier_SwipeClick(t *testing.T) {
	c := newTestClassifier()

	shift := func(h detector.HandLandmarks, dx, dy float64) detector.HandLandmarks {
		for i := range h.Points {
			h.Points[i].X += dx
			h.Points[i].Y += dy
		}
		return h
	}

	t.Run("rightward swipe with middle extended is a right click", func(t *testing.T) {
		_, prev, _ := c.Classify(detector.OpenPalmLandmarks(detector.Right), Swipe{})
		got, next, _ := c.Classify(shift(detector.OpenPalmLandmarks(detector.Right), 0.1, 0), prev)
		if got != RightClick {
			t.Errorf("Classify() = %v, want %v", got, RightClick)
		}
		if next.Valid {
			t.Error("swipe history should be cleared after a click")
		}
	})

	t.Run("rightward swipe with middle curled is a left click", func(t *testing.T) {
		fist := detector.FistLandmarks(detector.Right, 0.5, 0.8)
		_, prev, _ := c.Classify(fist, Swipe{})
		got, next, _ := c.Classify(shift(fist, 0.08, 0.02), prev)
		if got != LeftClick {
			t.Errorf("Classify() = %v, want %v", got, LeftClick)
		}
		if next.Valid {
			t.Error("swipe history should be cleared after a click")
		}
	})

	t.Run("no click on the frame after a click", func(t *testing.T) {
		palm := detector.OpenPalmLandmarks(detector.Right)
		_, prev, _ := c.Classify(palm, Swipe{})
		_, prev, _ = c.Classify(shift(palm, 0.1, 0), prev)
		got, _, _ := c.Classify(shift(palm, 0.2, 0), prev)
		if got != Move {
			t.Errorf("Classify() = %v, want %v", got, Move)
		}
	})

	t.Run("leftward swipe does not click", func(t *testing.T) {
		palm := detector.OpenPalmLandmarks(detector.Right)
		_, prev, _ := c.Classify(palm, Swipe{})
		got, _, _ := c.Classify(shift(palm, -0.1, 0), prev)
		if got != Move {
			t.Errorf("Classify() = %v, want %v", got, Move)
		}
	})

	t.Run("small movement does not click", func(t *testing.T) {
		palm := detector.OpenPalmLandmarks(detector.Right)
		_, prev, _ := c.Classify(palm, Swipe{})
		got, _, _ := c.Classify(shift(palm, 0.03, 0.02), prev)
		if got != Move {
			t.Errorf("Classify() = %v, want %v", got, Move)
		}
	})

	t.Run("vertical swipe does not click", func(t *testing.T) {
		palm := detector.OpenPalmLandmarks(detector.Right)
		_, prev, _ := c.Classify(palm, Swipe{})
		got, _, _ := c.Classify(shift(palm, 0, -0.2), prev)
		if got != Move {
			t.Errorf("Classify() = %v, want %v", got, Move)
		}
	})
}

func TestClassifier_OpenHandAlwaysMoves(t *testing.T) {
	c := newTestClassifier()
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 500; i++ {
		var h detector.HandLandmarks
		h.Handedness = detector.Right
		for j := range h.Points {
			h.Points[j] = detector.Point3D{X: rng.Float64(), Y: rng.Float64(), Z: rng.Float64() - 0.5}
		}
		// Force every non-thumb tip strictly above its PIP joint.
		for _, tip := range []int{detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip} {
			h.Points[tip].Y = h.Points[tip-2].Y - 0.001 - rng.Float64()*0.2
		}

		got, _, err := c.Classify(h, Swipe{})
		if err != nil {
			t.Fatalf("Classify() error = %v", err)
		}
		if got != Move {
			t.Fatalf("iteration %d: Classify() = %v, want %v", i, got, Move)
		}
	}
}

func TestClassifier_PinchAlwaysDrags(t *testing.T) {
	c := newTestClassifier()
	rng := rand.New(rand.NewSource(2))

	for i := 0; i < 500; i++ {
		wx, wy := rng.Float64(), rng.Float64()
		h := detector.PinchLandmarks()
		dx := wx - h.Points[detector.Wrist].X
		dy := wy - h.Points[detector.Wrist].Y
		for j := range h.Points {
			h.Points[j].X += dx
			h.Points[j].Y += dy
		}

		got, _, _ := c.Classify(h, Swipe{})
		if got != Drag {
			t.Fatalf("iteration %d (wrist %.2f,%.2f): Classify() = %v, want %v", i, wx, wy, got, Drag)
		}
	}
}

func TestClassifier_Errors(t *testing.T) {
	c := newTestClassifier()

	t.Run("unknown handedness is rejected", func(t *testing.T) {
		h := detector.OpenPalmLandmarks("Both")
		_, _, err := c.Classify(h, Swipe{})
		if !errors.Is(err, detector.ErrInvalidHandedness) {
			t.Errorf("error = %v, want ErrInvalidHandedness", err)
		}
	})

	t.Run("non-finite left hand yields Error", func(t *testing.T) {
		h := detector.PeaceLandmarks()
		h.Points[detector.MiddleMCP].Y = math.NaN()
		got, _, err := c.Classify(h, Swipe{})
		if err != nil {
			t.Fatalf("Classify() error = %v", err)
		}
		if got != Error {
			t.Errorf("Classify() = %v, want %v", got, Error)
		}
	})

	t.Run("non-finite right hand yields Error and clears history", func(t *testing.T) {
		h := detector.OpenPalmLandmarks(detector.Right)
		h.Points[detector.IndexTip].X = math.Inf(1)
		got, next, err := c.Classify(h, Swipe{X: 0.1, Y: 0.1, Valid: true})
		if err != nil {
			t.Fatalf("Classify() error = %v", err)
		}
		if got != Error {
			t.Errorf("Classify() = %v, want %v", got, Error)
		}
		if next.Valid {
			t.Error("swipe history should be cleared")
		}
	})
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Move, "MOVE"},
		{TopRightHold, "TOP_RIGHT_HOLD"},
		{Error, "ERROR"},
		{State(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
