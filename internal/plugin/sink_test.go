package plugin

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/handpiano/internal/piano"
)

func TestSink_TriggerRunsPluginInOrder(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "played.log")
	p := writePlugin(t, dir, "recorder", `INPUT=$(cat)
echo "$INPUT" >> `+logPath+`
echo '{"success":true}'
`, ActionTrigger)

	s := NewSink(NewExecutor(5*time.Second), p, nil, nil)
	var _ piano.Sink = s

	keys := []string{"right_index", "left_thumb", "right_index"}
	for _, k := range keys {
		s.Trigger(k)
	}
	s.Close()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read plugin log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != len(keys) {
		t.Fatalf("plugin ran %d times, want %d: %q", len(lines), len(keys), data)
	}
	for i, k := range keys {
		if !strings.Contains(lines[i], `"key":"`+k+`"`) {
			t.Errorf("call %d = %s, want key %s", i, lines[i], k)
		}
	}
	if !strings.Contains(lines[1], `"hand":"left"`) || !strings.Contains(lines[1], `"finger":"thumb"`) {
		t.Errorf("call 1 missing hand/finger: %s", lines[1])
	}

	dropped, failed := s.Stats()
	if dropped != 0 || failed != 0 {
		t.Errorf("Stats() = %d dropped, %d failed", dropped, failed)
	}
}

func TestSink_CountsFailures(t *testing.T) {
	p := writePlugin(t, t.TempDir(), "sad", "cat >/dev/null\necho '{\"success\":false,\"error\":\"muted\"}'\n")

	s := NewSink(NewExecutor(5*time.Second), p, nil, nil)
	s.Trigger("left_ring")
	s.Trigger("left_pinky")
	s.Close()

	if _, failed := s.Stats(); failed != 2 {
		t.Errorf("failed = %d, want 2", failed)
	}
}

func TestSink_Request(t *testing.T) {
	p := &Plugin{Manifest: Manifest{Name: "x"}}
	keys := piano.DefaultKeyMap()
	keys[piano.Slot{Hand: piano.HandRight, Finger: piano.Middle}] = "C4"

	s := NewSink(NewExecutor(time.Second), p, keys, []byte(`{"dir":"/s"}`))
	defer s.Close()

	req := s.Request("C4")
	if req.Action != ActionTrigger || req.Hand != "right" || req.Finger != "middle" {
		t.Errorf("Request(C4) = %+v", req)
	}
	if string(req.Config) != `{"dir":"/s"}` {
		t.Errorf("Config = %s", req.Config)
	}

	if req := s.Request("unknown"); req.Hand != "" || req.Key != "unknown" {
		t.Errorf("Request(unknown) = %+v", req)
	}
}

func TestSink_TriggerAfterClose(t *testing.T) {
	s := NewSink(NewExecutor(time.Second), &Plugin{Manifest: Manifest{Name: "x"}}, nil, nil)
	s.Close()
	s.Close()
	s.Trigger("left_thumb")

	if dropped, _ := s.Stats(); dropped != 0 {
		t.Errorf("closed sink should ignore presses, dropped = %d", dropped)
	}
}
