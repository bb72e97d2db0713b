// Package main provides a keyboard plugin for macOS.
// It turns key presses into keystrokes via AppleScript, so the hand piano
// can play any application that listens to the computer keyboard.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action string          `json:"action"`
	Key    string          `json:"key"`
	Hand   string          `json:"hand"`
	Finger string          `json:"finger"`
	Config json.RawMessage `json:"config"`
	Params json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Keystroke is what one sound key types.
type Keystroke struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"` // command, option, control, shift
}

// Config overrides the default key bindings.
type Config struct {
	Bindings map[string]Keystroke `json:"bindings"`
}

// defaultBindings places the fingers on the home row, thumbs on v and b.
var defaultBindings = map[string]Keystroke{
	"left_pinky":   {Key: "a"},
	"left_ring":    {Key: "s"},
	"left_middle":  {Key: "d"},
	"left_index":   {Key: "f"},
	"left_thumb":   {Key: "v"},
	"right_thumb":  {Key: "b"},
	"right_index":  {Key: "j"},
	"right_middle": {Key: "k"},
	"right_ring":   {Key: "l"},
	"right_pinky":  {Key: ";"},
}

// modifierMap maps user-friendly modifier names to AppleScript equivalents.
var modifierMap = map[string]string{
	"command": "command down",
	"cmd":     "command down",
	"option":  "option down",
	"alt":     "option down",
	"control": "control down",
	"ctrl":    "control down",
	"shift":   "shift down",
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	if req.Action != "trigger" {
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}

	var cfg Config
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeErrorResponse(fmt.Sprintf("invalid config: %v", err))
			return
		}
	}

	ks, ok := binding(cfg, req.Key)
	if !ok {
		writeErrorResponse(fmt.Sprintf("no keystroke bound to %q", req.Key))
		return
	}
	if err := runAppleScript(buildKeystrokeScript(ks.Key, ks.Modifiers)); err != nil {
		writeErrorResponse(fmt.Sprintf("keystroke for %s failed: %v", req.Key, err))
		return
	}
	writeSuccessResponse()
}

// binding looks key up in the configured bindings, then the defaults.
func binding(cfg Config, key string) (Keystroke, bool) {
	if ks, ok := cfg.Bindings[key]; ok && ks.Key != "" {
		return ks, true
	}
	ks, ok := defaultBindings[key]
	return ks, ok
}

// buildKeystrokeScript generates an AppleScript for the given key and modifiers.
func buildKeystrokeScript(key string, modifiers []string) string {
	key = strings.ReplaceAll(key, `"`, `\"`)

	var appleModifiers []string
	for _, mod := range modifiers {
		if appleMod, ok := modifierMap[strings.ToLower(mod)]; ok {
			appleModifiers = append(appleModifiers, appleMod)
		}
	}
	if len(appleModifiers) == 0 {
		return fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, key)
	}
	return fmt.Sprintf(`tell application "System Events" to keystroke "%s" using {%s}`,
		key, strings.Join(appleModifiers, ", "))
}

func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}

func writeSuccessResponse() {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true})
}

// runAppleScript executes an AppleScript command and returns any error.
func runAppleScript(script string) error {
	output, err := exec.Command("osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
