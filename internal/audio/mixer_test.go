package audio

import (
	"bytes"
	"log"
	"strings"
	"sync"
	"testing"

	"github.com/ayusman/handpiano/internal/piano"
)

func testBank() Bank {
	return Bank{
		"a": {Rate: 4, Data: []float32{0.5, 0.5, 0.5}},
		"b": {Rate: 4, Data: []float32{0.75, 0.75, 0.75, 0.75, 0.75}},
	}
}

func TestMixer_Mix(t *testing.T) {
	m := NewMixer(testBank(), 0, 1)
	var _ piano.Sink = m

	out := make([]float32, 4)
	m.Mix(out)
	for i, s := range out {
		if s != 0 {
			t.Errorf("silent mixer out[%d] = %v", i, s)
		}
	}

	m.Trigger("a")
	m.Trigger("b")
	if m.Active() != 2 {
		t.Fatalf("Active() = %d, want 2", m.Active())
	}

	m.Mix(out)
	want := []float32{1, 1, 1, 0.75}
	for i := range want {
		if !approx(out[i], want[i]) {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
	if m.Active() != 1 {
		t.Errorf("Active() = %d, want 1 after a finished", m.Active())
	}

	m.Mix(out)
	want = []float32{0.75, 0, 0, 0}
	for i := range want {
		if !approx(out[i], want[i]) {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
	if m.Active() != 0 {
		t.Errorf("Active() = %d, want 0", m.Active())
	}
}

func TestMixer_Clipping(t *testing.T) {
	bank := Bank{"loud": {Data: []float32{-0.9, 0.9}}}
	m := NewMixer(bank, 4, 1)
	m.Trigger("loud")
	m.Trigger("loud")

	out := make([]float32, 2)
	m.Mix(out)
	if out[0] != -1 || out[1] != 1 {
		t.Errorf("out = %v, want [-1 1]", out)
	}
}

func TestMixer_Gain(t *testing.T) {
	m := NewMixer(testBank(), 4, 0.5)
	m.Trigger("a")

	out := make([]float32, 1)
	m.Mix(out)
	if !approx(out[0], 0.25) {
		t.Errorf("out[0] = %v, want 0.25", out[0])
	}
}

func TestMixer_VoiceLimit(t *testing.T) {
	m := NewMixer(testBank(), 2, 1)
	for i := 0; i < 5; i++ {
		m.Trigger("b")
	}
	if m.Active() != 2 {
		t.Errorf("Active() = %d, want 2", m.Active())
	}

	m.Trigger("missing")
	if m.Active() != 2 {
		t.Errorf("unknown key changed voices: %d", m.Active())
	}

	m.Stop()
	if m.Active() != 0 {
		t.Errorf("Active() after Stop = %d", m.Active())
	}
}

func TestMixer_ConcurrentTrigger(t *testing.T) {
	m := NewMixer(testBank(), 8, 1)
	out := make([]float32, 16)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				m.Trigger("a")
			}
		}()
	}
	for i := 0; i < 50; i++ {
		m.Mix(out)
	}
	wg.Wait()

	if m.Active() > 8 {
		t.Errorf("Active() = %d exceeds voice limit", m.Active())
	}
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(nil, log.New(&buf, "", 0))
	var _ piano.Sink = sink

	sink.Trigger("right_index")
	sink.Trigger("left_pinky")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{
		"right index pressed (right_index)",
		"left pinky pressed (left_pinky)",
	}
	if len(lines) != len(want) {
		t.Fatalf("logged %q", buf.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}

	if got := sink.Line("custom_key"); got != "custom key pressed (custom_key)" {
		t.Errorf("Line() = %q", got)
	}
}
