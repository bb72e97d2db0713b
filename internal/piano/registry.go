package piano

import (
	"log"

	"github.com/ayusman/handpiano/internal/detector"
)

// Registry tracks which hand identities are currently visible and owns their
// finger states. It is not safe for concurrent use: call Process once per
// frame from a single goroutine and hand Snapshot copies to readers.
//
// Hands are keyed by handedness only. Two detections with the same label in
// one frame share a slot and the last one wins, so a slot moves at most one
// step per frame.
type Registry struct {
	hands    map[Hand]*TrackedHand
	rejected int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{hands: make(map[Hand]*TrackedHand)}
}

// Process reconciles this frame's detections with the tracked set and
// returns every press and release edge they produce.
//
// A hand seen for the first time takes this frame's classification as its
// baseline without emitting anything, so a hand that enters already curled
// is not a press. A tracked hand missing from the frame is dropped and its
// next sighting is a first sighting again. Malformed detections are logged
// and treated as absent.
func (r *Registry) Process(hands []detector.HandLandmarks) []Event {
	observed := make(map[Hand]Curl, len(hands))
	r.rejected = 0

	for i := range hands {
		det := &hands[i]
		if err := det.Validate(); err != nil {
			log.Printf("Rejected detection %d: %v", i, err)
			r.rejected++
			continue
		}
		h, err := ParseHand(det.Handedness)
		if err != nil {
			log.Printf("Rejected detection %d: %v", i, err)
			r.rejected++
			continue
		}
		curl, err := Classify(h, det.Points)
		if err != nil {
			log.Printf("Rejected detection %d: %v", i, err)
			r.rejected++
			continue
		}
		observed[h] = curl
	}

	for h := range r.hands {
		if _, ok := observed[h]; !ok {
			delete(r.hands, h)
		}
	}

	var events []Event
	for _, h := range Hands {
		curl, ok := observed[h]
		if !ok {
			continue
		}
		tracked, ok := r.hands[h]
		if !ok {
			tracked = newTrackedHand(h)
			tracked.seed(curl)
			r.hands[h] = tracked
			continue
		}
		events = tracked.Apply(curl, events)
	}

	return events
}

// Rejected returns how many detections the last Process call discarded.
func (r *Registry) Rejected() int {
	return r.rejected
}

// Tracked reports whether h was present in the last processed frame.
func (r *Registry) Tracked(h Hand) bool {
	_, ok := r.hands[h]
	return ok
}

// Snapshot copies the finger states of every tracked hand, left first.
func (r *Registry) Snapshot() Snapshot {
	snap := make(Snapshot, 0, len(r.hands))
	for _, h := range Hands {
		if t, ok := r.hands[h]; ok {
			snap = append(snap, HandState{Hand: h, Fingers: t.State()})
		}
	}
	return snap
}

// Reset forgets every tracked hand.
func (r *Registry) Reset() {
	r.hands = make(map[Hand]*TrackedHand)
	r.rejected = 0
}

// HandState is the read-only view of one tracked hand.
type HandState struct {
	Hand    Hand
	Fingers Curl
}

// Snapshot is the per-finger state of all tracked hands after a frame.
type Snapshot []HandState

// Get returns the finger states of h, if it is tracked.
func (s Snapshot) Get(h Hand) (Curl, bool) {
	for _, hs := range s {
		if hs.Hand == h {
			return hs.Fingers, true
		}
	}
	return Curl{}, false
}
