// Package overlay annotates preview frames with each finger's key state.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/handpiano/internal/detector"
	"github.com/ayusman/handpiano/internal/piano"
)

// Layout of the state text, in pixels.
const (
	marginX     = 10
	columnWidth = 320
	firstLineY  = 30
	lineHeight  = 20
	tipRadius   = 8
	fontScale   = 0.6
	thickness   = 2
)

var (
	textColor = color.RGBA{R: 0, G: 0, B: 255, A: 0}
	downColor = color.RGBA{R: 255, G: 64, B: 64, A: 0}
	upColor   = color.RGBA{R: 64, G: 220, B: 64, A: 0}
)

// State returns "down" for a curled finger and "up" otherwise.
func State(curled bool) string {
	if curled {
		return "down"
	}
	return "up"
}

// HandLines formats one line per finger, e.g. "right index: down".
func HandLines(hs piano.HandState) []string {
	lines := make([]string, 0, piano.NumFingers)
	for _, f := range piano.Fingers {
		lines = append(lines, fmt.Sprintf("%s %s: %s", hs.Hand, f, State(hs.Fingers[f])))
	}
	return lines
}

// Lines formats every tracked hand, left hand first.
func Lines(snap piano.Snapshot) []string {
	var lines []string
	for _, hs := range snap {
		lines = append(lines, HandLines(hs)...)
	}
	return lines
}

// Draw writes the state text for each tracked hand in its own column and
// marks the fingertips of hands that are in the snapshot.
func Draw(frame *gocv.Mat, snap piano.Snapshot, hands []detector.HandLandmarks) {
	if frame == nil || frame.Empty() {
		return
	}

	for _, hs := range snap {
		x := marginX + int(hs.Hand)*columnWidth
		for i, line := range HandLines(hs) {
			pt := image.Pt(x, firstLineY+i*lineHeight)
			gocv.PutText(frame, line, pt, gocv.FontHersheySimplex, fontScale, textColor, thickness)
		}
	}

	cols, rows := frame.Cols(), frame.Rows()
	for _, h := range hands {
		if h.Validate() != nil {
			continue
		}
		hand, err := piano.ParseHand(h.Handedness)
		if err != nil {
			continue
		}
		curl, ok := snap.Get(hand)
		if !ok {
			continue
		}
		for _, f := range piano.Fingers {
			tip := h.Points[f.Tip()]
			c := upColor
			if curl[f] {
				c = downColor
			}
			center := image.Pt(int(tip.X*float64(cols)), int(tip.Y*float64(rows)))
			gocv.Circle(frame, center, tipRadius, c, -1)
		}
	}
}
