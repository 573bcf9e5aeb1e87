// Package gesture classifies a single hand's landmarks into a symbolic state.
package gesture

import "encoding/json"

// State is the gesture a hand shows in one frame.
type State int

// Right-hand states.
const (
	Move State = iota
	Closed
	Drag
	LeftClick
	RightClick

	// Left-hand states.
	ScrollUp
	ScrollDown
	TopLeftHold
	TopRightHold
	ThumbOutLeft
	PinkyOutLeft
	Peace
	OtherLeft

	// Error marks a hand whose geometry could not be evaluated. It is a no-op downstream.
	Error
)

var stateNames = [...]string{
	Move:         "MOVE",
	Closed:       "CLOSED",
	Drag:         "DRAG",
	LeftClick:    "LEFT_CLICK",
	RightClick:   "RIGHT_CLICK",
	ScrollUp:     "SCROLL_UP",
	ScrollDown:   "SCROLL_DOWN",
	TopLeftHold:  "TOP_LEFT_HOLD",
	TopRightHold: "TOP_RIGHT_HOLD",
	ThumbOutLeft: "THUMB_OUT_LEFT",
	PinkyOutLeft: "PINKY_OUT_LEFT",
	Peace:        "PEACE",
	OtherLeft:    "OTHER_LEFT",
	Error:        "ERROR",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// MarshalJSON encodes the state by name.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// IsScroll reports whether s is one of the scroll states.
func (s State) IsScroll() bool {
	return s == ScrollUp || s == ScrollDown
}

// IsCorner reports whether s is one of the corner-hold states.
func (s State) IsCorner() bool {
	return s == TopLeftHold || s == TopRightHold
}

// IsClick reports whether s is one of the swipe-click states.
func (s State) IsClick() bool {
	return s == LeftClick || s == RightClick
}
