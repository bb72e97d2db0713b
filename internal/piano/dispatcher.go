package piano

import (
	"errors"
	"fmt"
)

// ErrIncompleteKeyMap is returned when a key map does not cover all ten
// hand/finger slots with distinct, non-empty keys.
var ErrIncompleteKeyMap = errors.New("incomplete key map")

// Sink receives sound-key triggers. Trigger must not block on playback.
type Sink interface {
	Trigger(key string)
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(key string)

// Trigger calls f(key).
func (f SinkFunc) Trigger(key string) { f(key) }

// Slot is one hand/finger pair.
type Slot struct {
	Hand   Hand
	Finger Finger
}

// KeyMap maps every slot to the sound key played when it is pressed.
type KeyMap map[Slot]string

// SoundKey is the stable default key for a slot, e.g. "right_index".
func SoundKey(h Hand, f Finger) string {
	return h.String() + "_" + f.String()
}

// DefaultKeyMap returns the ten {left,right}_{finger} keys.
func DefaultKeyMap() KeyMap {
	m := make(KeyMap, len(Hands)*NumFingers)
	for _, h := range Hands {
		for _, f := range Fingers {
			m[Slot{h, f}] = SoundKey(h, f)
		}
	}
	return m
}

// Validate checks that all ten slots have a distinct, non-empty key.
func (m KeyMap) Validate() error {
	seen := make(map[string]Slot, len(m))
	for _, h := range Hands {
		for _, f := range Fingers {
			slot := Slot{h, f}
			key, ok := m[slot]
			if !ok || key == "" {
				return fmt.Errorf("%w: no key for %s %s", ErrIncompleteKeyMap, h, f)
			}
			if other, dup := seen[key]; dup {
				return fmt.Errorf("%w: key %q used by %s %s and %s %s",
					ErrIncompleteKeyMap, key, other.Hand, other.Finger, h, f)
			}
			seen[key] = slot
		}
	}
	if len(m) != len(seen) {
		return fmt.Errorf("%w: %d entries, want %d", ErrIncompleteKeyMap, len(m), len(seen))
	}
	return nil
}

// Keys lists the mapped keys, left thumb through right pinky.
func (m KeyMap) Keys() []string {
	keys := make([]string, 0, len(Hands)*NumFingers)
	for _, h := range Hands {
		for _, f := range Fingers {
			keys = append(keys, m[Slot{h, f}])
		}
	}
	return keys
}

// Press is a dispatched rising edge together with the key that was triggered.
type Press struct {
	Hand   Hand
	Finger Finger
	Key    string
}

// Dispatcher forwards press edges to a sink. It holds no audio state.
type Dispatcher struct {
	sink Sink
	keys KeyMap
}

// NewDispatcher validates keys and returns a dispatcher bound to sink.
// A nil map selects DefaultKeyMap.
func NewDispatcher(sink Sink, keys KeyMap) (*Dispatcher, error) {
	if sink == nil {
		return nil, errors.New("dispatcher: nil sink")
	}
	if keys == nil {
		keys = DefaultKeyMap()
	}
	if err := keys.Validate(); err != nil {
		return nil, err
	}

	own := make(KeyMap, len(keys))
	for slot, key := range keys {
		own[slot] = key
	}
	return &Dispatcher{sink: sink, keys: own}, nil
}

// Key returns the sound key for a slot.
func (d *Dispatcher) Key(h Hand, f Finger) string {
	return d.keys[Slot{h, f}]
}

// Dispatch triggers the sink once per press edge, in event order, and
// returns what was played. Release edges are ignored.
func (d *Dispatcher) Dispatch(events []Event) []Press {
	var presses []Press
	for _, ev := range events {
		if ev.Edge != EdgePress {
			continue
		}
		key := d.keys[Slot{ev.Hand, ev.Finger}]
		d.sink.Trigger(key)
		presses = append(presses, Press{Hand: ev.Hand, Finger: ev.Finger, Key: key})
	}
	return presses
}
