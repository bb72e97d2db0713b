package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/handpiano/internal/events"
	"github.com/ayusman/handpiano/internal/piano"
)

const writeWait = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// FingersHandler broadcasts per-finger key state via WebSocket.
type FingersHandler struct {
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewFingersHandler creates a handler with no clients.
func NewFingersHandler() *FingersHandler {
	return &FingersHandler{clients: make(map[*websocket.Conn]bool)}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *FingersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *FingersHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

type handMessage struct {
	Hand    string          `json:"hand"`
	Fingers map[string]bool `json:"fingers"`
	Down    int             `json:"down"`
}

type fingersMessage struct {
	Hands     []handMessage `json:"hands"`
	Detected  int           `json:"detected"`
	Timestamp int64         `json:"timestamp"`
}

// newFingersMessage flattens a frame event into its wire form. A finger
// maps to true while it is curled.
func newFingersMessage(f events.Frame) fingersMessage {
	msg := fingersMessage{
		Hands:     make([]handMessage, 0, len(f.Snapshot)),
		Detected:  f.Hands,
		Timestamp: f.At.UnixMilli(),
	}
	for _, hs := range f.Snapshot {
		hm := handMessage{
			Hand:    hs.Hand.String(),
			Fingers: make(map[string]bool, piano.NumFingers),
			Down:    hs.Fingers.Count(),
		}
		for _, finger := range piano.Fingers {
			hm.Fingers[finger.String()] = hs.Fingers[finger]
		}
		msg.Hands = append(msg.Hands, hm)
	}
	return msg
}

// Broadcast sends the frame's finger state to every connected client.
// Clients that fail a write are dropped.
func (h *FingersHandler) Broadcast(f events.Frame) {
	h.mu.RLock()
	if len(h.clients) == 0 {
		h.mu.RUnlock()
		return
	}
	h.mu.RUnlock()

	msg, err := json.Marshal(newFingersMessage(f))
	if err != nil {
		log.Printf("fingers: marshal: %v", err)
		return
	}

	var failed []*websocket.Conn
	h.mu.RLock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			failed = append(failed, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range failed {
		conn.Close()
	}
}
