// Package overlay draws the per-frame control state onto the camera image
// and shows it in an OpenCV window.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/detector"
)

// Renderer displays one processed frame. Render reports whether the user
// asked to quit from the window.
type Renderer interface {
	Render(frame *gocv.Mat, hands []detector.HandLandmarks, res control.Result, fps float64) bool
	Close() error
}

var (
	colorCorner   = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	colorActive   = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	colorQuit     = color.RGBA{R: 0, G: 0, B: 255, A: 0}
	colorLabel    = color.RGBA{R: 255, G: 255, B: 0, A: 0}
	colorLandmark = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	colorBone     = color.RGBA{R: 200, G: 200, B: 200, A: 0}
)

// connections are the landmark pairs drawn as the hand skeleton.
var connections = [][2]int{
	{detector.Wrist, detector.ThumbCMC}, {detector.ThumbCMC, detector.ThumbMCP},
	{detector.ThumbMCP, detector.ThumbIP}, {detector.ThumbIP, detector.ThumbTip},
	{detector.Wrist, detector.IndexMCP}, {detector.IndexMCP, detector.IndexPIP},
	{detector.IndexPIP, detector.IndexDIP}, {detector.IndexDIP, detector.IndexTip},
	{detector.IndexMCP, detector.MiddleMCP}, {detector.MiddleMCP, detector.MiddlePIP},
	{detector.MiddlePIP, detector.MiddleDIP}, {detector.MiddleDIP, detector.MiddleTip},
	{detector.MiddleMCP, detector.RingMCP}, {detector.RingMCP, detector.RingPIP},
	{detector.RingPIP, detector.RingDIP}, {detector.RingDIP, detector.RingTip},
	{detector.RingMCP, detector.PinkyMCP}, {detector.Wrist, detector.PinkyMCP},
	{detector.PinkyMCP, detector.PinkyPIP}, {detector.PinkyPIP, detector.PinkyDIP},
	{detector.PinkyDIP, detector.PinkyTip},
}

// Draw annotates frame in place: corner zones, hold and quit progress,
// the action label, FPS and the hand skeletons.
func Draw(frame *gocv.Mat, hands []detector.HandLandmarks, res control.Result, fps, cornerSize float64) {
	w, h := frame.Cols(), frame.Rows()
	if w == 0 || h == 0 {
		return
	}
	side := int(cornerSize * float64(w))
	sideY := int(cornerSize * float64(h))

	left := image.Rect(0, 0, side, sideY)
	right := image.Rect(w-side, 0, w, sideY)
	gocv.Rectangle(frame, left, cornerColor(res.Corner == control.TopLeft), 2)
	gocv.Rectangle(frame, right, cornerColor(res.Corner == control.TopRight), 2)

	if res.Corner != control.NoCorner && res.CornerProgress > 0 {
		zone := left
		if res.Corner == control.TopRight {
			zone = right
		}
		center := image.Pt((zone.Min.X+zone.Max.X)/2, (zone.Min.Y+zone.Max.Y)/2)
		radius := min(zone.Dx(), zone.Dy()) / 3
		gocv.Ellipse(frame, center, image.Pt(radius, radius), -90, 0, 360*res.CornerProgress, colorActive, 4)
	}

	if res.QuitProgress > 0 {
		bar := image.Rect(0, h-12, int(float64(w)*res.QuitProgress), h)
		gocv.Rectangle(frame, bar, colorQuit, -1)
	}

	for i := range hands {
		drawHand(frame, &hands[i], w, h)
	}

	if res.Label != "" {
		gocv.PutText(frame, res.Label, image.Pt(side+10, 40), gocv.FontHersheySimplex, 1.0, colorLabel, 2)
	}
	gocv.PutText(frame, fmt.Sprintf("FPS: %.0f", fps), image.Pt(10, h-24), gocv.FontHersheySimplex, 0.6, colorCorner, 1)
}

func cornerColor(active bool) color.RGBA {
	if active {
		return colorActive
	}
	return colorCorner
}

func drawHand(frame *gocv.Mat, hand *detector.HandLandmarks, w, h int) {
	if !hand.Points[detector.Wrist].Finite() {
		return
	}
	pt := func(i int) image.Point {
		p := hand.Points[i]
		return image.Pt(int(p.X*float64(w)), int(p.Y*float64(h)))
	}
	for _, c := range connections {
		gocv.Line(frame, pt(c[0]), pt(c[1]), colorBone, 1)
	}
	for i := range hand.Points {
		gocv.Circle(frame, pt(i), 3, colorLandmark, -1)
	}
}

// Window renders into an OpenCV window and watches for the quit key.
type Window struct {
	window     *gocv.Window
	quitKey    int
	cornerSize float64
}

// NewWindow opens a window titled title. Pressing quitKey in it ends the session.
func NewWindow(title string, quitKey byte, cornerSize float64) *Window {
	return &Window{
		window:     gocv.NewWindow(title),
		quitKey:    int(quitKey),
		cornerSize: cornerSize,
	}
}

// Render draws onto frame, shows it and polls the keyboard for one millisecond.
func (w *Window) Render(frame *gocv.Mat, hands []detector.HandLandmarks, res control.Result, fps float64) bool {
	Draw(frame, hands, res, fps, w.cornerSize)
	w.window.IMShow(*frame)
	return w.window.WaitKey(1) == w.quitKey
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.window.Close()
}
