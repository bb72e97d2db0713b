package plugin

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestPlugin_Afplay_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	if runtime.GOOS != "darwin" {
		t.Skip("afplay plugin only works on macOS")
	}

	pluginDir := findPluginDir("afplay")
	if pluginDir == "" {
		t.Skip("afplay plugin not built")
	}

	mgr := NewManager(filepath.Dir(pluginDir))
	if err := mgr.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	plug, err := mgr.Get("afplay")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	// A key with no sound file must be reported, not played.
	req := &Request{
		Action: ActionTrigger,
		Key:    "no_such_key",
		Config: []byte(`{"sounds_dir":"` + t.TempDir() + `"}`),
	}
	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), plug, req)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if resp.Success {
		t.Error("expected failure for missing sound file")
	}
}

func TestPlugin_Keyboard_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	if runtime.GOOS != "darwin" {
		t.Skip("keyboard plugin only works on macOS")
	}

	pluginDir := findPluginDir("keyboard")
	if pluginDir == "" {
		t.Skip("keyboard plugin not built")
	}

	mgr := NewManager(filepath.Dir(pluginDir))
	mgr.Discover()
	plug, err := mgr.Get("keyboard")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	// Unmapped keys are rejected before any keystroke is sent.
	req := &Request{Action: ActionTrigger, Key: "no_such_key"}
	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), plug, req)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if resp.Success {
		t.Error("expected failure for unmapped key")
	}
}

func findPluginDir(name string) string {
	candidates := []string{
		filepath.Join("../../plugins", name),
		filepath.Join("../../../plugins", name),
	}
	for _, dir := range candidates {
		if _, err := os.Stat(filepath.Join(dir, ManifestFile)); err == nil {
			return dir
		}
	}
	return ""
}
