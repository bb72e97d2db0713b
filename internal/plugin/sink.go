package plugin

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/ayusman/handpiano/internal/piano"
)

// DefaultQueueSize bounds how many presses may wait for a slow plugin.
const DefaultQueueSize = 64

// Sink plays keys by running a plugin's trigger action. Presses are queued
// and executed one at a time in order on a background goroutine; when the
// queue is full the press is dropped.
type Sink struct {
	exec   *Executor
	plugin *Plugin
	config json.RawMessage
	slots  map[string]piano.Slot

	queue  chan string
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	dropped int
	failed  int
	closed  bool
}

// NewSink starts a sink for p. keys names the hand and finger sent with each
// request; nil selects the default key map.
func NewSink(exec *Executor, p *Plugin, keys piano.KeyMap, config json.RawMessage) *Sink {
	if keys == nil {
		keys = piano.DefaultKeyMap()
	}
	slots := make(map[string]piano.Slot, len(keys))
	for slot, key := range keys {
		slots[key] = slot
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Sink{
		exec:   exec,
		plugin: p,
		config: config,
		slots:  slots,
		queue:  make(chan string, DefaultQueueSize),
		ctx:    ctx,
		cancel: cancel,
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// Trigger queues key without waiting for the plugin.
func (s *Sink) Trigger(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.queue <- key:
	default:
		s.dropped++
		log.Printf("Plugin %s busy, dropped %s", s.plugin.Manifest.Name, key)
	}
}

// Request builds the trigger request sent for key.
func (s *Sink) Request(key string) *Request {
	req := &Request{Action: ActionTrigger, Key: key, Config: s.config}
	if slot, ok := s.slots[key]; ok {
		req.Hand = slot.Hand.String()
		req.Finger = slot.Finger.String()
	}
	return req
}

func (s *Sink) run() {
	defer s.wg.Done()
	for key := range s.queue {
		resp, err := s.exec.Execute(s.ctx, s.plugin, s.Request(key))
		switch {
		case err != nil:
			s.fail()
			log.Printf("Plugin %s failed for %s: %v", s.plugin.Manifest.Name, key, err)
		case !resp.Success:
			s.fail()
			log.Printf("Plugin %s rejected %s: %s", s.plugin.Manifest.Name, key, resp.Error)
		}
	}
}

func (s *Sink) fail() {
	s.mu.Lock()
	s.failed++
	s.mu.Unlock()
}

// Stats returns how many presses were dropped and how many failed.
func (s *Sink) Stats() (dropped, failed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped, s.failed
}

// Close stops accepting presses and waits for queued ones to finish.
func (s *Sink) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	s.wg.Wait()
	s.cancel()
}
