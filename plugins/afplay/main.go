// Package main provides a sound plugin for macOS.
// It plays {sounds_dir}/{key}.wav (or .mp3) with afplay for each key press.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
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

// Config is the plugin configuration passed with every request.
type Config struct {
	SoundsDir string  `json:"sounds_dir"`
	Volume    float64 `json:"volume"`
}

var extensions = []string{".wav", ".mp3", ".aiff", ".m4a"}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	cfg := Config{SoundsDir: "sounds", Volume: 1}
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeErrorResponse(fmt.Sprintf("invalid config: %v", err))
			return
		}
	}

	var err error
	switch req.Action {
	case "trigger":
		err = play(cfg, req.Key)
	case "stop":
		err = exec.Command("killall", "afplay").Run()
	default:
		err = fmt.Errorf("unknown action: %s", req.Action)
	}
	if err != nil {
		writeErrorResponse(err.Error())
		return
	}
	writeSuccessResponse()
}

// findSound returns the first sound file for key in dir.
func findSound(dir, key string) (string, error) {
	if key == "" {
		return "", errors.New("key is required")
	}
	for _, ext := range extensions {
		path := filepath.Join(dir, key+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no sound for %s in %s", key, dir)
}

// play starts afplay and returns without waiting for the sound to end.
func play(cfg Config, key string) error {
	path, err := findSound(cfg.SoundsDir, key)
	if err != nil {
		return err
	}
	cmd := exec.Command("afplay", "-v", strconv.FormatFloat(cfg.Volume, 'f', 2, 64), path)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("afplay: %w", err)
	}
	return cmd.Process.Release()
}

func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}

func writeSuccessResponse() {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true})
}
