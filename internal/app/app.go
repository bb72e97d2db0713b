// Package app wires the camera, hand detector, finger keyboard and sound sink
// into the running hand piano.
package app

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/handpiano/internal/capture"
	"github.com/ayusman/handpiano/internal/detector"
	"github.com/ayusman/handpiano/internal/events"
	"github.com/ayusman/handpiano/internal/piano"
	"github.com/ayusman/handpiano/internal/store"
)

// Default pipeline timing.
const (
	DefaultActiveInterval = 30 * time.Millisecond
	DefaultIdleInterval   = 200 * time.Millisecond
	DefaultIdleTimeout    = 2 * time.Second
)

// Config holds configuration options for the application.
type Config struct {
	// Sink plays every press. Required.
	Sink piano.Sink
	// Keys maps slots to sound keys; nil selects the default ten keys.
	Keys piano.KeyMap
	// Store records sessions and presses when set.
	Store *store.Store

	Camera   capture.Config
	Detector detector.Config

	ActiveInterval time.Duration
	IdleInterval   time.Duration
	IdleTimeout    time.Duration
	MotionThresh   float64
}

// App is the main application that turns camera frames into key presses.
type App struct {
	config   Config
	camera   capture.Camera
	motion   *capture.MotionDetector
	pacer    *capture.Pacer
	detector detector.Detector
	keyboard *piano.Keyboard
	bus      *events.Bus
	recorder *recorder

	// kbMu guards keyboard, snapshot and lastKey.
	kbMu     sync.Mutex
	snapshot piano.Snapshot
	lastKey  string
	frames   int

	jpegMu sync.RWMutex
	jpeg   []byte

	mu        sync.RWMutex
	enabled   bool
	sessionID string
	stopCh    chan struct{}
	done      chan struct{}
}

// New creates a new App instance with the given configuration.
func New(config Config) (*App, error) {
	if config.Sink == nil {
		return nil, errors.New("app: no sink configured")
	}
	kb, err := piano.NewKeyboard(config.Sink, config.Keys)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	if config.ActiveInterval <= 0 {
		config.ActiveInterval = DefaultActiveInterval
	}
	if config.IdleInterval <= 0 {
		config.IdleInterval = DefaultIdleInterval
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = DefaultIdleTimeout
	}
	if config.MotionThresh <= 0 {
		config.MotionThresh = 1.0 // Default threshold: 1% pixel change
	}

	a := &App{
		config:   config,
		camera:   capture.NewCamera(config.Camera),
		motion:   capture.NewMotionDetector(config.MotionThresh),
		pacer:    capture.NewPacer(config.IdleInterval, config.ActiveInterval, config.IdleTimeout),
		keyboard: kb,
		bus:      events.New(),
		enabled:  true,
	}

	if config.Store != nil {
		a.recorder = newRecorder(config.Store)
		if err := a.bus.OnPress(a.recorder.press); err != nil {
			return nil, err
		}
		if err := a.bus.OnFrame(a.recorder.frame); err != nil {
			return nil, err
		}
		if v, err := config.Store.Settings().Get(store.SettingEnabled); err == nil {
			if enabled, err := strconv.ParseBool(v); err == nil {
				a.enabled = enabled
			} else {
				log.Printf("Ignoring invalid %s setting %q, keyboard stays enabled", store.SettingEnabled, v)
			}
		}
	}

	return a, nil
}

// UseDetector selects the hand detector. Without one, Start tries MediaPipe
// and falls back to the mock detector.
func (a *App) UseDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// UseCamera replaces the capture device. It must be called before Start.
func (a *App) UseCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// ensureDetector picks MediaPipe when it is installed.
func (a *App) ensureDetector() {
	if a.detector != nil {
		return
	}
	if mp, err := detector.NewMediaPipeDetector(a.config.Detector); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}
}

// SetEnabled turns the keyboard on or off and persists the choice. Turning
// it off forgets every tracked hand.
func (a *App) SetEnabled(enabled bool) {
	a.setEnabled(enabled)
	if a.config.Store != nil {
		if err := a.config.Store.Settings().Set(store.SettingEnabled, strconv.FormatBool(enabled)); err != nil {
			log.Printf("Failed to save enabled setting: %v", err)
		}
	}
}

func (a *App) setEnabled(enabled bool) {
	a.mu.Lock()
	a.enabled = enabled
	a.mu.Unlock()

	if !enabled {
		a.kbMu.Lock()
		a.keyboard.Reset()
		a.snapshot = nil
		a.kbMu.Unlock()
	}
	log.Printf("Keyboard enabled: %v", enabled)
	a.bus.PublishEnabled(events.Enabled{Enabled: enabled, At: time.Now()})
}

// ApplySetting reacts to a setting stored elsewhere, such as through the API.
func (a *App) ApplySetting(key, value string) {
	switch key {
	case store.SettingEnabled:
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			log.Printf("Ignoring invalid %s setting %q", key, value)
			return
		}
		a.setEnabled(enabled)
	}
}

// IsEnabled returns whether the keyboard is currently playing.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// BeginSession starts a new recorded session and returns its ID. Any open
// session is ended first.
func (a *App) BeginSession(source string) (string, error) {
	if err := a.EndSession(); err != nil {
		log.Printf("Failed to end previous session: %v", err)
	}

	id := uuid.NewString()
	if a.config.Store != nil {
		sess := &store.Session{ID: id, Source: source, StartedAt: time.Now()}
		if err := a.config.Store.Sessions().Create(sess); err != nil {
			return "", fmt.Errorf("begin session: %w", err)
		}
		a.recorder.begin(id)
	}

	a.mu.Lock()
	a.sessionID = id
	a.mu.Unlock()
	log.Printf("Session %s started (%s)", id, source)
	return id, nil
}

// EndSession flushes pending records and stamps the session's end time.
func (a *App) EndSession() error {
	a.mu.Lock()
	id := a.sessionID
	a.sessionID = ""
	a.mu.Unlock()
	if id == "" {
		return nil
	}

	a.bus.Wait()
	if a.config.Store == nil {
		return nil
	}
	a.recorder.flush()
	if err := a.config.Store.Sessions().End(id, time.Now()); err != nil {
		return fmt.Errorf("end session %s: %w", id, err)
	}
	log.Printf("Session %s ended", id)
	return nil
}

// SessionID returns the open session, or "" when none is open.
func (a *App) SessionID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sessionID
}

// ProcessHands runs one frame's detections through the keyboard, plays the
// resulting presses and publishes them. It returns the presses.
func (a *App) ProcessHands(hands []detector.HandLandmarks) []piano.Press {
	now := time.Now()
	sessionID := a.SessionID()

	a.kbMu.Lock()
	_, presses := a.keyboard.Frame(hands)
	snap := a.keyboard.Snapshot()
	a.snapshot = snap
	a.frames++
	if len(presses) > 0 {
		a.lastKey = presses[len(presses)-1].Key
	}
	a.kbMu.Unlock()

	for _, p := range presses {
		a.bus.PublishPress(events.Press{SessionID: sessionID, Press: p, At: now})
	}
	a.bus.PublishFrame(events.Frame{Snapshot: snap, Hands: len(hands), At: now})
	return presses
}

// Snapshot returns the finger state after the last processed frame.
func (a *App) Snapshot() piano.Snapshot {
	a.kbMu.Lock()
	defer a.kbMu.Unlock()
	return a.snapshot
}

// LastKey returns the most recently played key.
func (a *App) LastKey() string {
	a.kbMu.Lock()
	defer a.kbMu.Unlock()
	return a.lastKey
}

// Frames returns how many frames have been processed.
func (a *App) Frames() int {
	a.kbMu.Lock()
	defer a.kbMu.Unlock()
	return a.frames
}

// Keys returns the key map in use.
func (a *App) Keys() piano.KeyMap {
	keys := make(piano.KeyMap, piano.NumFingers*len(piano.Hands))
	d := a.keyboard.Dispatcher()
	for _, h := range piano.Hands {
		for _, f := range piano.Fingers {
			keys[piano.Slot{Hand: h, Finger: f}] = d.Key(h, f)
		}
	}
	return keys
}

// LatestJPEG returns the last annotated preview frame.
func (a *App) LatestJPEG() ([]byte, bool) {
	a.jpegMu.RLock()
	defer a.jpegMu.RUnlock()
	return a.jpeg, len(a.jpeg) > 0
}

func (a *App) setJPEG(buf []byte) {
	a.jpegMu.Lock()
	a.jpeg = buf
	a.jpegMu.Unlock()
}

// Start opens the camera, begins a camera session and runs the pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	if a.stopCh != nil {
		a.mu.Unlock()
		return nil
	}
	a.ensureDetector()
	camera := a.camera
	a.mu.Unlock()

	if err := camera.Open(); err != nil {
		return err
	}
	camera.SetFPS(a.pacer.FPS())

	if _, err := a.BeginSession(store.SourceCamera); err != nil {
		log.Printf("Recording disabled: %v", err)
	}

	a.mu.Lock()
	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.runPipeline(a.stopCh, a.done)
	a.mu.Unlock()

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the pipeline, closes the camera and ends the session.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, done := a.stopCh, a.done
	a.stopCh, a.done = nil, nil
	a.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-done

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	if err := a.EndSession(); err != nil {
		log.Printf("Error ending session: %v", err)
	}

	log.Println("Detection pipeline stopped")
}

// Close stops the pipeline and releases the detector and event bus.
func (a *App) Close() error {
	a.Stop()
	if err := a.EndSession(); err != nil {
		log.Printf("Error ending session: %v", err)
	}
	a.bus.Close()
	a.motion.Close()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.detector != nil {
		return a.detector.Close()
	}
	return nil
}

// Bus returns the event bus presses and frames are published on.
func (a *App) Bus() *events.Bus {
	return a.bus
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Pacer returns the frame pacer.
func (a *App) Pacer() *capture.Pacer {
	return a.pacer
}
