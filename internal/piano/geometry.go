package piano

import (
	"fmt"

	"github.com/ayusman/handpiano/internal/detector"
)

// ErrLandmarkCount is returned by Classify for a landmark set that is not 21 points.
var ErrLandmarkCount = detector.ErrLandmarkCount

// Classify reports which fingers of hand h are curled in this frame's landmarks.
//
// The thumb moves sideways in front of the camera, so it is judged on x: a
// right thumb is curled when its tip is at or right of the IP joint, a left
// thumb when its tip is at or left of it. The other fingers are curled when
// the tip is strictly lower in the image (larger y) than the PIP joint.
// The operators are exact: equal coordinates count as curled for the thumb
// and as extended for the other fingers.
func Classify(h Hand, pts []detector.Point3D) (Curl, error) {
	var c Curl
	if len(pts) != detector.NumLandmarks {
		return c, fmt.Errorf("%w: got %d, want %d", ErrLandmarkCount, len(pts), detector.NumLandmarks)
	}

	tip, ref := pts[Thumb.Tip()], pts[Thumb.Ref()]
	switch h {
	case HandRight:
		c[Thumb] = tip.X >= ref.X
	case HandLeft:
		c[Thumb] = tip.X <= ref.X
	default:
		return c, fmt.Errorf("%w: %v", ErrUnknownHand, h)
	}

	for _, f := range Fingers[Index:] {
		c[f] = pts[f.Tip()].Y > pts[f.Ref()].Y
	}
	return c, nil
}
