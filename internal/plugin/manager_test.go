package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_Discover(t *testing.T) {
	dir := t.TempDir()
	writePlugin(t, dir, "zeta", "echo '{}'\n", ActionTrigger)
	writePlugin(t, dir, "alpha", "echo '{}'\n", ActionTrigger, "stop")

	// Not plugins: a file, a directory without manifest, a broken manifest.
	os.WriteFile(filepath.Join(dir, "README"), []byte("hi"), 0644)
	os.MkdirAll(filepath.Join(dir, "empty"), 0755)
	os.MkdirAll(filepath.Join(dir, "broken"), 0755)
	os.WriteFile(filepath.Join(dir, "broken", ManifestFile), []byte("{not json"), 0644)
	os.MkdirAll(filepath.Join(dir, "nameless"), 0755)
	os.WriteFile(filepath.Join(dir, "nameless", ManifestFile), []byte(`{"executable":"x"}`), 0644)

	m := NewManager(dir)
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	plugins := m.List()
	if len(plugins) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(plugins))
	}
	if plugins[0].Manifest.Name != "alpha" || plugins[1].Manifest.Name != "zeta" {
		t.Errorf("List() order = %s, %s", plugins[0].Manifest.Name, plugins[1].Manifest.Name)
	}

	p, err := m.Get("alpha")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if p.Executable != filepath.Join(dir, "alpha", "run.sh") {
		t.Errorf("Executable = %q", p.Executable)
	}
	if !p.Manifest.Supports("stop") || p.Manifest.Supports("dance") {
		t.Errorf("Supports() mismatch for %v", p.Manifest.Actions)
	}
	if m.PluginDir() != dir {
		t.Errorf("PluginDir() = %q", m.PluginDir())
	}
}

func TestManager_Get_NotFound(t *testing.T) {
	m := NewManager(t.TempDir())
	m.Discover()

	if _, err := m.Get("nope"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("Get() error = %v, want ErrPluginNotFound", err)
	}
}

func TestManager_Discover_MissingDir(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "missing"))
	if err := m.Discover(); err != nil {
		t.Errorf("Discover() on missing dir = %v, want nil", err)
	}
	if len(m.List()) != 0 {
		t.Error("expected no plugins")
	}
}

func TestManager_Discover_Rescan(t *testing.T) {
	dir := t.TempDir()
	writePlugin(t, dir, "first", "echo '{}'\n")

	m := NewManager(dir)
	m.Discover()
	if len(m.List()) != 1 {
		t.Fatalf("expected 1 plugin")
	}

	os.RemoveAll(filepath.Join(dir, "first"))
	writePlugin(t, dir, "second", "echo '{}'\n")
	m.Discover()

	if _, err := m.Get("first"); !errors.Is(err, ErrPluginNotFound) {
		t.Error("removed plugin should be forgotten")
	}
	if _, err := m.Get("second"); err != nil {
		t.Errorf("Get(second) error = %v", err)
	}
}
