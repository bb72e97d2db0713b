package audio

import (
	"log"
	"sync"
)

// DefaultMaxVoices bounds how many samples play at once.
const DefaultMaxVoices = 16

type voice struct {
	data []float32
	pos  int
}

// Mixer sums the currently playing samples. Trigger only queues a voice, so
// it is safe to call from the frame loop while an audio callback runs Mix.
type Mixer struct {
	bank      Bank
	voices    []*voice
	maxVoices int
	gain      float32
	mu        sync.Mutex
}

// NewMixer creates a mixer over bank. maxVoices <= 0 selects
// DefaultMaxVoices; gain scales every voice.
func NewMixer(bank Bank, maxVoices int, gain float64) *Mixer {
	if maxVoices <= 0 {
		maxVoices = DefaultMaxVoices
	}
	return &Mixer{
		bank:      bank,
		maxVoices: maxVoices,
		gain:      float32(gain),
	}
}

// Trigger starts a new voice for key. When the voice limit is reached the
// oldest voice is cut. Unknown keys are logged and ignored.
func (m *Mixer) Trigger(key string) {
	s, ok := m.bank[key]
	if !ok {
		log.Printf("No sample for key %s", key)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.voices) >= m.maxVoices {
		m.voices = m.voices[1:]
	}
	m.voices = append(m.voices, &voice{data: s.Data})
}

// Mix overwrites out with the next len(out) frames of all voices, clipped to
// [-1,1], and retires voices that finished.
func (m *Mixer) Mix(out []float32) {
	for i := range out {
		out[i] = 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	live := m.voices[:0]
	for _, v := range m.voices {
		n := copyAdd(out, v.data[v.pos:], m.gain)
		v.pos += n
		if v.pos < len(v.data) {
			live = append(live, v)
		}
	}
	for i := len(live); i < len(m.voices); i++ {
		m.voices[i] = nil
	}
	m.voices = live

	for i, s := range out {
		switch {
		case s > 1:
			out[i] = 1
		case s < -1:
			out[i] = -1
		}
	}
}

func copyAdd(dst, src []float32, gain float32) int {
	n := len(src)
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] += src[i] * gain
	}
	return n
}

// Active returns the number of voices still playing.
func (m *Mixer) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.voices)
}

// Stop silences every voice.
func (m *Mixer) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voices = nil
}
