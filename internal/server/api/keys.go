package api

import (
	"net/http"

	"github.com/ayusman/handpiano/internal/piano"
)

// KeysHandler serves the hand/finger to sound key table.
type KeysHandler struct {
	keys piano.KeyMap
}

// NewKeysHandler creates a KeysHandler. A nil map serves the default keys.
func NewKeysHandler(keys piano.KeyMap) *KeysHandler {
	if keys == nil {
		keys = piano.DefaultKeyMap()
	}
	return &KeysHandler{keys: keys}
}

type keyResponse struct {
	Hand   string `json:"hand"`
	Finger string `json:"finger"`
	Key    string `json:"key"`
}

type listKeysResponse struct {
	Keys []keyResponse `json:"keys"`
}

// ServeHTTP handles GET /api/keys.
func (h *KeysHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := listKeysResponse{Keys: make([]keyResponse, 0, len(h.keys))}
	for _, hand := range piano.Hands {
		for _, finger := range piano.Fingers {
			response.Keys = append(response.Keys, keyResponse{
				Hand:   hand.String(),
				Finger: finger.String(),
				Key:    h.keys[piano.Slot{Hand: hand, Finger: finger}],
			})
		}
	}
	writeJSON(w, http.StatusOK, response)
}
