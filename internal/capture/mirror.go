package capture

import "gocv.io/x/gocv"

// Mirror flips frame around its vertical axis in place. Landmarks detected
// on a mirrored frame have x measured from the user's own left.
func Mirror(frame *gocv.Mat) {
	if frame == nil || frame.Empty() {
		return
	}
	gocv.Flip(*frame, frame, 1)
}
