package audio

import (
	"log"
	"strings"

	"github.com/ayusman/handpiano/internal/piano"
)

// LogSink prints each press instead of playing it.
type LogSink struct {
	labels map[string]string
	logger *log.Logger
}

// NewLogSink creates a sink that names presses using keys. logger may be nil
// to use the standard logger.
func NewLogSink(keys piano.KeyMap, logger *log.Logger) *LogSink {
	if keys == nil {
		keys = piano.DefaultKeyMap()
	}
	labels := make(map[string]string, len(keys))
	for slot, key := range keys {
		labels[key] = slot.Hand.String() + " " + slot.Finger.String()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &LogSink{labels: labels, logger: logger}
}

// Trigger logs "right index pressed (right_index)".
func (s *LogSink) Trigger(key string) {
	s.logger.Print(s.Line(key))
}

// Line formats the message Trigger logs for key.
func (s *LogSink) Line(key string) string {
	label, ok := s.labels[key]
	if !ok {
		label = strings.ReplaceAll(key, "_", " ")
	}
	return label + " pressed (" + key + ")"
}
