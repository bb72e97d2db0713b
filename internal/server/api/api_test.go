package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/handpiano/internal/piano"
	"github.com/ayusman/handpiano/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

// seedSession stores a session with the given presses.
func seedSession(t *testing.T, s *store.Store, id string, keys ...string) {
	t.Helper()

	if err := s.Sessions().Create(&store.Session{ID: id, StartedAt: time.Now()}); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	for _, k := range keys {
		p := &store.Press{SessionID: id, Hand: "right", Finger: "index", Key: k}
		if err := s.Presses().Create(p); err != nil {
			t.Fatalf("failed to create press: %v", err)
		}
	}
}

func TestKeysHandler(t *testing.T) {
	keys := piano.DefaultKeyMap()
	keys[piano.Slot{Hand: piano.HandLeft, Finger: piano.Thumb}] = "C3"
	handler := NewKeysHandler(keys)

	req := httptest.NewRequest(http.MethodGet, "/api/keys", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response listKeysResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Keys) != 10 {
		t.Fatalf("expected 10 keys, got %d", len(response.Keys))
	}
	first := response.Keys[0]
	if first.Hand != "left" || first.Finger != "thumb" || first.Key != "C3" {
		t.Errorf("first key = %+v", first)
	}
	last := response.Keys[9]
	if last.Key != "right_pinky" {
		t.Errorf("last key = %+v", last)
	}

	t.Run("method not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/keys", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
		}
	})
}

func TestSessionHandler_List(t *testing.T) {
	s := newTestStore(t)
	seedSession(t, s, "session-1", "right_index", "right_index")
	handler := NewSessionHandler(s)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var response listSessionsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(response.Sessions))
	}
	got := response.Sessions[0]
	if got.ID != "session-1" || got.Presses != 2 || !got.Active || got.EndedAt != "" {
		t.Errorf("session = %+v", got)
	}
}

func TestSessionHandler_ListEmpty(t *testing.T) {
	handler := NewSessionHandler(newTestStore(t))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))

	if rec.Body.String() != "{\"sessions\":[]}\n" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestSessionHandler_Get(t *testing.T) {
	s := newTestStore(t)
	seedSession(t, s, "session-1")
	if err := s.Sessions().End("session-1", time.Now()); err != nil {
		t.Fatalf("failed to end session: %v", err)
	}
	handler := NewSessionHandler(s)

	t.Run("existing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/session-1", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		var got sessionResponse
		json.NewDecoder(rec.Body).Decode(&got)
		if got.Active || got.EndedAt == "" {
			t.Errorf("ended session = %+v", got)
		}
	})

	t.Run("missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/nope", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})
}

func TestSessionHandler_Presses(t *testing.T) {
	s := newTestStore(t)
	seedSession(t, s, "session-1", "right_index", "left_thumb", "right_index")
	handler := NewSessionHandler(s)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/session-1/presses", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response listPressesResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Presses) != 3 {
		t.Fatalf("expected 3 presses, got %d", len(response.Presses))
	}
	if response.Presses[1].Key != "left_thumb" {
		t.Errorf("presses out of order: %+v", response.Presses)
	}
	if response.Counts["right_index"] != 2 || response.Counts["left_thumb"] != 1 {
		t.Errorf("counts = %v", response.Counts)
	}

	t.Run("unknown session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/nope/presses", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})

	t.Run("unknown sub-resource", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/session-1/frames", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})
}

func TestSessionHandler_Delete(t *testing.T) {
	s := newTestStore(t)
	seedSession(t, s, "session-1", "right_ring")
	handler := NewSessionHandler(s)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/sessions/session-1", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	if _, err := s.Sessions().GetByID("session-1"); err == nil {
		t.Error("session should be deleted")
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/sessions/session-1", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestSessionHandler_MethodNotAllowed(t *testing.T) {
	handler := NewSessionHandler(newTestStore(t))

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/sessions"},
		{http.MethodPut, "/api/sessions/x"},
		{http.MethodDelete, "/api/sessions/x/presses"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: expected status %d, got %d", tt.method, tt.path, http.StatusMethodNotAllowed, rec.Code)
		}
	}
}

func TestSettingsHandler(t *testing.T) {
	s := newTestStore(t)
	var changed []string
	handler := NewSettingsHandler(s, func(key, value string) {
		changed = append(changed, key+"="+value)
	})

	body := bytes.NewBufferString(`{"enabled":"false"}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/settings", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT: expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if len(changed) != 1 || changed[0] != "enabled=false" {
		t.Errorf("onChange calls = %v", changed)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	var response settingsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Settings[store.SettingEnabled] != "false" {
		t.Errorf("settings = %v", response.Settings)
	}

	t.Run("invalid json", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/settings", bytes.NewBufferString("nope")))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})

	t.Run("empty body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/settings", bytes.NewBufferString("{}")))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})

	t.Run("non-boolean enabled", func(t *testing.T) {
		changed = nil
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/settings", bytes.NewBufferString(`{"enabled":"yes","theme":"dark"}`)))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
		if len(changed) != 0 {
			t.Errorf("onChange called for rejected request: %v", changed)
		}
		if v, _ := s.Settings().Get(store.SettingEnabled); v != "false" {
			t.Errorf("stored enabled = %q, want unchanged false", v)
		}
		if _, err := s.Settings().Get("theme"); err == nil {
			t.Error("rejected request should store nothing")
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/settings", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
		}
	})
}
