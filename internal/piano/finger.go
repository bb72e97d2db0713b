// Package piano turns per-frame hand landmarks into edge-triggered key presses.
// Every finger of each hand is a momentary key: it presses when it curls and
// releases when it extends again.
package piano

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ayusman/handpiano/internal/detector"
)

// ErrUnknownHand is returned when a handedness label is neither Left nor Right.
var ErrUnknownHand = errors.New("unknown hand")

// Hand identifies a tracked hand by the estimator's handedness label.
type Hand int

const (
	HandLeft Hand = iota
	HandRight
)

// Hands lists both identities in a fixed order.
var Hands = [2]Hand{HandLeft, HandRight}

// ParseHand maps an estimator label ("Left", "Right", any case) to a Hand.
func ParseHand(label string) (Hand, error) {
	switch strings.ToLower(label) {
	case "left":
		return HandLeft, nil
	case "right":
		return HandRight, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownHand, label)
}

func (h Hand) String() string {
	switch h {
	case HandLeft:
		return "left"
	case HandRight:
		return "right"
	}
	return fmt.Sprintf("hand(%d)", int(h))
}

// Finger identifies one of the five keys on a hand.
type Finger int

const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
	NumFingers = 5
)

// Fingers lists all fingers in anatomical order.
var Fingers = [NumFingers]Finger{Thumb, Index, Middle, Ring, Pinky}

var fingerNames = [NumFingers]string{"thumb", "index", "middle", "ring", "pinky"}

func (f Finger) String() string {
	if f < 0 || f >= NumFingers {
		return fmt.Sprintf("finger(%d)", int(f))
	}
	return fingerNames[f]
}

// joints holds the landmark pair compared for each finger: the tip and its
// reference joint (PIP for fingers, IP for the thumb).
var joints = [NumFingers]struct{ tip, ref int }{
	Thumb:  {detector.ThumbTip, detector.ThumbIP},
	Index:  {detector.IndexTip, detector.IndexPIP},
	Middle: {detector.MiddleTip, detector.MiddlePIP},
	Ring:   {detector.RingTip, detector.RingPIP},
	Pinky:  {detector.PinkyTip, detector.PinkyPIP},
}

// Tip returns the landmark index of the finger's tip.
func (f Finger) Tip() int { return joints[f].tip }

// Ref returns the landmark index the tip is compared against.
func (f Finger) Ref() int { return joints[f].ref }

// Curl holds one boolean per finger; true means curled (key down).
type Curl [NumFingers]bool

// Count returns how many fingers are curled.
func (c Curl) Count() int {
	n := 0
	for _, down := range c {
		if down {
			n++
		}
	}
	return n
}
