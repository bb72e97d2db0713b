// Package tray provides a macOS system tray interface for the hand piano.
package tray

import (
	"strconv"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/handpiano/internal/events"
)

// Tray represents the macOS system tray application.
type Tray struct {
	onToggle   func(enabled bool)
	onSettings func()
	onQuit     func()
	enabled    bool
	lastKey    string
	presses    int
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuToggle  *systray.MenuItem
	menuLastKey *systray.MenuItem
	menuPresses *systray.MenuItem
}

// New creates a new Tray instance with the given enabled state.
func New(enabled bool) *Tray {
	return &Tray{
		enabled: enabled,
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSettings sets the callback function to be called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Follow keeps the last key, press count and enabled state in sync with bus.
func (t *Tray) Follow(bus *events.Bus) error {
	if err := bus.OnPress(func(p events.Press) {
		t.SetLastKey(p.Press.Key)
	}); err != nil {
		return err
	}
	return bus.OnEnabled(func(e events.Enabled) {
		t.SetEnabled(e.Enabled)
	})
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Hand Piano")
	systray.SetTooltip("Hand Piano")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle the keyboard")
	systray.AddSeparator()

	t.menuLastKey = systray.AddMenuItem(lastKeyTitle(t.lastKey), "Last key played")
	t.menuLastKey.Disable()
	t.menuPresses = systray.AddMenuItem(pressesTitle(t.presses), "Keys played since start")
	t.menuPresses.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Hand Piano")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func lastKeyTitle(key string) string {
	if key == "" {
		return "Last: none"
	}
	return "Last: " + key
}

func pressesTitle(n int) string {
	if n == 1 {
		return "1 press"
	}
	return strconv.Itoa(n) + " presses"
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// handleSettings handles the settings menu item click.
func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// Quit closes the tray, making Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// SetLastKey records a played key and updates the menu.
func (t *Tray) SetLastKey(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastKey = key
	t.presses++
	if t.menuLastKey != nil {
		t.menuLastKey.SetTitle(lastKeyTitle(key))
		t.menuPresses.SetTitle(pressesTitle(t.presses))
	}
}

// LastKey returns the most recent key and the number of presses seen.
func (t *Tray) LastKey() (string, int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastKey, t.presses
}

// SetEnabled updates the toggle without calling the toggle callback.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.enabled = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
