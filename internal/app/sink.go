package app

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"path/filepath"

	"github.com/ayusman/handpiano/internal/audio"
	"github.com/ayusman/handpiano/internal/config"
	"github.com/ayusman/handpiano/internal/piano"
	"github.com/ayusman/handpiano/internal/plugin"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

var nopCloser = closerFunc(func() error { return nil })

// NewSink builds the sink selected by cfg.Sink for keys. The closer stops
// playback and must be called after the app is closed. logger is used by
// the log sink and may be nil.
func NewSink(cfg *config.Config, keys piano.KeyMap, logger *log.Logger) (piano.Sink, io.Closer, error) {
	if keys == nil {
		keys = piano.DefaultKeyMap()
	}

	switch cfg.Sink {
	case config.SinkLog:
		return audio.NewLogSink(keys, logger), nopCloser, nil

	case config.SinkAudio:
		bank, err := audio.LoadBank(cfg.Audio.SoundsDir, keys.Keys(), cfg.Audio.SampleRate)
		if err != nil {
			return nil, nil, err
		}
		mixer := audio.NewMixer(bank, cfg.Audio.MaxVoices, cfg.Audio.Gain)
		out, err := audio.NewOutput(mixer, cfg.Audio.SampleRate, cfg.Audio.FramesPerBuffer)
		if err != nil {
			return nil, nil, err
		}
		if err := out.Start(); err != nil {
			out.Close()
			return nil, nil, err
		}
		log.Printf("Loaded %d samples from %s", len(bank), cfg.Audio.SoundsDir)
		return out, out, nil

	case config.SinkPlugin:
		mgr := plugin.NewManager(cfg.Plugin.Dir)
		if err := mgr.Discover(); err != nil {
			return nil, nil, fmt.Errorf("discover plugins: %w", err)
		}
		p, err := mgr.Get(cfg.Plugin.Name)
		if err != nil {
			return nil, nil, err
		}
		soundsDir, err := filepath.Abs(cfg.Audio.SoundsDir)
		if err != nil {
			return nil, nil, err
		}
		raw, err := json.Marshal(map[string]any{"sounds_dir": soundsDir, "volume": cfg.Audio.Gain})
		if err != nil {
			return nil, nil, err
		}
		s := plugin.NewSink(plugin.NewExecutor(cfg.Plugin.Timeout), p, keys, raw)
		log.Printf("Playing through plugin %s", p.Manifest.Name)
		return s, closerFunc(func() error { s.Close(); return nil }), nil
	}
	return nil, nil, fmt.Errorf("%w: unknown sink %q", config.ErrInvalid, cfg.Sink)
}
