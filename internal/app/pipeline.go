package app

import (
	"bytes"
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/handpiano/internal/detector"
	"github.com/ayusman/handpiano/internal/overlay"
)

// runPipeline is the capture loop. Each tick reads a frame, runs motion
// detection to pick the frame rate, detects hands, feeds the keyboard and
// renders the annotated preview.
//
// Detection runs in both modes; idle mode only lowers the rate, so a hand
// that sits still keeps its tracked state.
func (a *App) runPipeline(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	a.mu.RLock()
	camera, det := a.camera, a.detector
	a.mu.RUnlock()

	ticker := time.NewTicker(a.pacer.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			motion, _ := a.motion.Detect(frame)
			if active, changed := a.pacer.Observe(motion); changed {
				camera.SetFPS(a.pacer.FPS())
				ticker.Reset(a.pacer.Interval())
				if active {
					log.Println("Switched to active mode")
				} else {
					log.Println("Switched to idle mode")
				}
			}

			a.processFrame(frame, det)
			frame.Close()
		}
	}
}

// processFrame detects hands in frame, plays them and stores the annotated
// preview. A detector error skips the frame without touching tracked hands.
func (a *App) processFrame(frame *gocv.Mat, det detector.Detector) {
	hands, err := det.Detect(frame)
	if err != nil {
		log.Printf("Error detecting hands: %v", err)
		return
	}

	a.ProcessHands(hands)

	overlay.Draw(frame, a.Snapshot(), hands)
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		log.Printf("Error encoding preview: %v", err)
		return
	}
	a.setJPEG(bytes.Clone(buf.GetBytes()))
	buf.Close()
}
