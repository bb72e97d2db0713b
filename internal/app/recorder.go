package app

import (
	"log"
	"sync"

	"github.com/ayusman/handpiano/internal/events"
	"github.com/ayusman/handpiano/internal/store"
)

// frameFlushEvery batches frame counter updates.
const frameFlushEvery = 30

// recorder persists bus events into the store. Press rows are written as
// they arrive; frame counts are accumulated and written in batches.
type recorder struct {
	store *store.Store

	mu        sync.Mutex
	sessionID string
	pending   int
}

func newRecorder(s *store.Store) *recorder {
	return &recorder{store: s}
}

// begin makes id the session frames are counted against.
func (r *recorder) begin(id string) {
	r.flush()
	r.mu.Lock()
	r.sessionID = id
	r.mu.Unlock()
}

func (r *recorder) press(ev events.Press) {
	if ev.SessionID == "" {
		return
	}
	p := &store.Press{
		SessionID: ev.SessionID,
		Hand:      ev.Press.Hand.String(),
		Finger:    ev.Press.Finger.String(),
		Key:       ev.Press.Key,
		PressedAt: ev.At,
	}
	if err := r.store.Presses().Create(p); err != nil {
		log.Printf("Failed to record press %s: %v", ev.Press.Key, err)
	}
}

func (r *recorder) frame(events.Frame) {
	r.mu.Lock()
	if r.sessionID == "" {
		r.mu.Unlock()
		return
	}
	r.pending++
	due := r.pending >= frameFlushEvery
	r.mu.Unlock()

	if due {
		r.flush()
	}
}

// flush writes the pending frame count.
func (r *recorder) flush() {
	r.mu.Lock()
	id, n := r.sessionID, r.pending
	r.pending = 0
	r.mu.Unlock()

	if id == "" || n == 0 {
		return
	}
	if err := r.store.Sessions().IncrementFrames(id, n); err != nil {
		log.Printf("Failed to record frames for session %s: %v", id, err)
	}
}
