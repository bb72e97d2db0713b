// Package events fans piano activity out to the store, tray and websocket
// clients without making the frame loop wait on any of them.
package events

import (
	"log"
	"sync"
	"time"

	evbus "github.com/asaskevich/EventBus"

	"github.com/ayusman/handpiano/internal/piano"
)

// Topics published on the bus.
const (
	TopicPress   = "piano:press"
	TopicFrame   = "piano:frame"
	TopicEnabled = "piano:enabled"
)

// Press is published once per dispatched key press.
type Press struct {
	SessionID string
	Press     piano.Press
	At        time.Time
}

// Frame is published after every processed frame.
type Frame struct {
	Snapshot piano.Snapshot
	Hands    int
	At       time.Time
}

// Enabled is published whenever the keyboard is switched on or off.
type Enabled struct {
	Enabled bool
	At      time.Time
}

type subscription struct {
	topic string
	fn    interface{}
}

// Bus is a typed wrapper over an EventBus instance. Handlers run off the
// publisher's goroutine in publish order; a publish only waits for the same
// handler's previous event to finish.
type Bus struct {
	bus  evbus.Bus
	subs []subscription
	mu   sync.Mutex
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{bus: evbus.New()}
}

// PublishPress queues p for every press handler.
func (b *Bus) PublishPress(p Press) {
	b.bus.Publish(TopicPress, p)
}

// PublishFrame queues f for every frame handler.
func (b *Bus) PublishFrame(f Frame) {
	b.bus.Publish(TopicFrame, f)
}

// PublishEnabled queues e for every enabled handler.
func (b *Bus) PublishEnabled(e Enabled) {
	b.bus.Publish(TopicEnabled, e)
}

// OnPress registers fn for press events.
func (b *Bus) OnPress(fn func(Press)) error {
	return b.subscribe(TopicPress, fn)
}

// OnFrame registers fn for frame events.
func (b *Bus) OnFrame(fn func(Frame)) error {
	return b.subscribe(TopicFrame, fn)
}

// OnEnabled registers fn for enable and disable events.
func (b *Bus) OnEnabled(fn func(Enabled)) error {
	return b.subscribe(TopicEnabled, fn)
}

func (b *Bus) subscribe(topic string, fn interface{}) error {
	if err := b.bus.SubscribeAsync(topic, fn, true); err != nil {
		return err
	}
	b.mu.Lock()
	b.subs = append(b.subs, subscription{topic: topic, fn: fn})
	b.mu.Unlock()
	return nil
}

// Wait blocks until every queued event has been handled.
func (b *Bus) Wait() {
	b.bus.WaitAsync()
}

// Close drains pending events and removes all handlers.
func (b *Bus) Close() {
	b.bus.WaitAsync()

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.subs {
		if err := b.bus.Unsubscribe(s.topic, s.fn); err != nil {
			log.Printf("Error unsubscribing from %s: %v", s.topic, err)
		}
	}
	b.subs = nil
}
