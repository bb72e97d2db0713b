package audio

import (
	"fmt"
	"log"

	"github.com/gordonklaus/portaudio"
)

// Output drives a Mixer from the default portaudio output device.
type Output struct {
	mixer  *Mixer
	stream *portaudio.Stream
}

// NewOutput initializes portaudio and opens a mono float32 stream at rate
// that pulls framesPerBuffer frames at a time from m.
func NewOutput(m *Mixer, rate, framesPerBuffer int) (*Output, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio: initialize: %w", err)
	}

	o := &Output{mixer: m}
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(rate), framesPerBuffer, o.callback)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("portaudio: opening default stream failed: %w", err)
	}
	o.stream = stream
	return o, nil
}

func (o *Output) callback(out []float32) {
	o.mixer.Mix(out)
}

// Start begins playback.
func (o *Output) Start() error {
	if err := o.stream.Start(); err != nil {
		return fmt.Errorf("portaudio: starting stream failed: %w", err)
	}
	log.Println("Audio output started")
	return nil
}

// Trigger plays key through the mixer.
func (o *Output) Trigger(key string) {
	o.mixer.Trigger(key)
}

// Close stops the stream and releases portaudio.
func (o *Output) Close() error {
	o.mixer.Stop()
	var firstErr error
	if err := o.stream.Stop(); err != nil {
		firstErr = fmt.Errorf("portaudio: stopping stream failed: %w", err)
	}
	if err := o.stream.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("portaudio: closing stream failed: %w", err)
	}
	if err := portaudio.Terminate(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
