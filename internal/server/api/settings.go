package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ayusman/handpiano/internal/store"
)

// SettingsHandler reads and writes the settings table.
type SettingsHandler struct {
	store *store.Store
	// onChange is called after each stored key, in request order.
	onChange func(key, value string)
}

// NewSettingsHandler creates a SettingsHandler. onChange may be nil.
func NewSettingsHandler(s *store.Store, onChange func(key, value string)) *SettingsHandler {
	return &SettingsHandler{store: s, onChange: onChange}
}

type settingsResponse struct {
	Settings map[string]string `json:"settings"`
}

// ServeHTTP handles GET and PUT /api/settings.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) list(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.Settings().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list settings")
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{Settings: settings})
}

// update stores every key in the body and returns the full table.
func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(req) == 0 {
		writeError(w, http.StatusBadRequest, "No settings given")
		return
	}
	for key, value := range req {
		if key == "" {
			writeError(w, http.StatusBadRequest, "Setting key is required")
			return
		}
		if err := validateSetting(key, value); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	for key, value := range req {
		if err := h.store.Settings().Set(key, value); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save settings")
			return
		}
		if h.onChange != nil {
			h.onChange(key, value)
		}
	}
	h.list(w, r)
}

// validateSetting rejects values the app cannot read back for known keys.
func validateSetting(key, value string) error {
	switch key {
	case store.SettingEnabled:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("invalid %s value %q: want true or false", key, value)
		}
	}
	return nil
}
