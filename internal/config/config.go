// Package config loads handpiano settings from an optional YAML file, a .env
// file and HANDPIANO_* environment variables, in that order of precedence
// from lowest to highest.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ayusman/handpiano/internal/detector"
)

// Sink kinds selectable with Config.Sink.
const (
	SinkAudio  = "audio"
	SinkLog    = "log"
	SinkPlugin = "plugin"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Camera configures video capture.
type Camera struct {
	DeviceID int  `yaml:"device_id"`
	Mirror   bool `yaml:"mirror"`
}

// Audio configures the sample bank and output stream.
type Audio struct {
	SoundsDir       string  `yaml:"sounds_dir"`
	SampleRate      int     `yaml:"sample_rate"`
	FramesPerBuffer int     `yaml:"frames_per_buffer"`
	MaxVoices       int     `yaml:"max_voices"`
	Gain            float64 `yaml:"gain"`
}

// Pipeline configures frame pacing.
type Pipeline struct {
	ActiveInterval  time.Duration `yaml:"active_interval"`
	IdleInterval    time.Duration `yaml:"idle_interval"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	MotionThreshold float64       `yaml:"motion_threshold"`
}

// Plugin selects the plugin used when Sink is "plugin".
type Plugin struct {
	Dir     string        `yaml:"dir"`
	Name    string        `yaml:"name"`
	Timeout time.Duration `yaml:"timeout"`
}

// Config is the full application configuration.
type Config struct {
	Addr     string          `yaml:"addr"`
	DBPath   string          `yaml:"db"`
	WebDir   string          `yaml:"web_dir"`
	Sink     string          `yaml:"sink"`
	Camera   Camera          `yaml:"camera"`
	Detector detector.Config `yaml:"detector"`
	Audio    Audio           `yaml:"audio"`
	Pipeline Pipeline        `yaml:"pipeline"`
	Plugin   Plugin          `yaml:"plugin"`
}

// Dir returns the per-user data directory, ~/.handpiano.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".handpiano"
	}
	return filepath.Join(home, ".handpiano")
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Addr:     ":8080",
		DBPath:   filepath.Join(Dir(), "handpiano.db"),
		Sink:     SinkAudio,
		Camera:   Camera{DeviceID: 0, Mirror: true},
		Detector: detector.DefaultConfig(),
		Audio: Audio{
			SoundsDir:       "sounds",
			SampleRate:      44100,
			FramesPerBuffer: 256,
			MaxVoices:       16,
			Gain:            0.8,
		},
		Pipeline: Pipeline{
			ActiveInterval:  30 * time.Millisecond,
			IdleInterval:    200 * time.Millisecond,
			IdleTimeout:     2 * time.Second,
			MotionThreshold: 1.0,
		},
		Plugin: Plugin{
			Dir:     filepath.Join(Dir(), "plugins"),
			Name:    "afplay",
			Timeout: 5 * time.Second,
		},
	}
}

// Load reads path on top of Default, then applies .env and environment
// overrides. A missing file at the default path is not an error; a missing
// file at an explicit path is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// A missing .env is fine; the process environment is used as-is.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("HANDPIANO_SOUNDS_DIR"); ok {
		c.Audio.SoundsDir = v
	}
	if v, ok := os.LookupEnv("HANDPIANO_CAMERA_ID"); ok {
		id, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: HANDPIANO_CAMERA_ID=%q", ErrInvalid, v)
		}
		c.Camera.DeviceID = id
	}
	if v, ok := os.LookupEnv("HANDPIANO_ADDR"); ok {
		c.Addr = v
	}
	if v, ok := os.LookupEnv("HANDPIANO_DB"); ok {
		c.DBPath = v
	}
	if v, ok := os.LookupEnv("HANDPIANO_SINK"); ok {
		c.Sink = v
	}
	return nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	switch c.Sink {
	case SinkAudio, SinkLog, SinkPlugin:
	default:
		return fmt.Errorf("%w: unknown sink %q", ErrInvalid, c.Sink)
	}
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("%w: sample_rate must be positive", ErrInvalid)
	}
	if c.Audio.FramesPerBuffer <= 0 {
		return fmt.Errorf("%w: frames_per_buffer must be positive", ErrInvalid)
	}
	if c.Audio.MaxVoices <= 0 {
		return fmt.Errorf("%w: max_voices must be positive", ErrInvalid)
	}
	if c.Pipeline.ActiveInterval <= 0 || c.Pipeline.IdleInterval <= 0 {
		return fmt.Errorf("%w: frame intervals must be positive", ErrInvalid)
	}
	if c.Detector.MaxHands <= 0 {
		return fmt.Errorf("%w: detector.max_hands must be positive", ErrInvalid)
	}
	for name, v := range map[string]float64{
		"detector.min_confidence":          c.Detector.MinConfidence,
		"detector.min_tracking_confidence": c.Detector.MinTrackingConf,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s must be in [0,1], got %v", ErrInvalid, name, v)
		}
	}
	if c.Sink == SinkPlugin && c.Plugin.Name == "" {
		return fmt.Errorf("%w: plugin sink needs plugin.name", ErrInvalid)
	}
	return nil
}
