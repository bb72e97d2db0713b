package piano

import "github.com/ayusman/handpiano/internal/detector"

// Update runs one frame through the registry and dispatches its presses.
// Every sink call has returned by the time Update does.
func Update(r *Registry, d *Dispatcher, hands []detector.HandLandmarks) ([]Event, []Press) {
	events := r.Process(hands)
	return events, d.Dispatch(events)
}

// Keyboard bundles a registry with its dispatcher.
type Keyboard struct {
	registry   *Registry
	dispatcher *Dispatcher
}

// NewKeyboard creates a keyboard that plays keys on sink.
func NewKeyboard(sink Sink, keys KeyMap) (*Keyboard, error) {
	d, err := NewDispatcher(sink, keys)
	if err != nil {
		return nil, err
	}
	return &Keyboard{registry: NewRegistry(), dispatcher: d}, nil
}

// Frame processes one frame of detections.
func (k *Keyboard) Frame(hands []detector.HandLandmarks) ([]Event, []Press) {
	return Update(k.registry, k.dispatcher, hands)
}

// Snapshot returns the finger states after the last frame.
func (k *Keyboard) Snapshot() Snapshot {
	return k.registry.Snapshot()
}

// Registry exposes the keyboard's registry.
func (k *Keyboard) Registry() *Registry {
	return k.registry
}

// Dispatcher exposes the keyboard's dispatcher.
func (k *Keyboard) Dispatcher() *Dispatcher {
	return k.dispatcher
}

// Reset clears all tracked hands.
func (k *Keyboard) Reset() {
	k.registry.Reset()
}
