package piano

import "sync"

// MockSink is a test Sink that records every triggered key.
type MockSink struct {
	keys []string
	mu   sync.Mutex
}

// NewMockSink creates an empty MockSink.
func NewMockSink() *MockSink {
	return &MockSink{}
}

// Trigger records key.
func (m *MockSink) Trigger(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, key)
}

// Keys returns the triggered keys in order.
func (m *MockSink) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.keys...)
}

// Count returns how many times key was triggered.
func (m *MockSink) Count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, k := range m.keys {
		if k == key {
			n++
		}
	}
	return n
}

// Reset forgets recorded keys.
func (m *MockSink) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = nil
}
