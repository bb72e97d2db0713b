package audio

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// ErrMissingSample is returned when no file exists for a key.
var ErrMissingSample = errors.New("missing sample")

// Bank holds one decoded sample per sound key.
type Bank map[string]*Sample

// FindSample returns the file for key in dir, trying each of Extensions.
func FindSample(dir, key string) (string, error) {
	for _, ext := range Extensions {
		path := filepath.Join(dir, key+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s in %s", ErrMissingSample, key, dir)
}

// LoadBank decodes the sample for every key. Every key must resolve; a
// keyboard with silent keys is a configuration error.
func LoadBank(dir string, keys []string, rate int) (Bank, error) {
	bank := make(Bank, len(keys))
	for _, key := range keys {
		path, err := FindSample(dir, key)
		if err != nil {
			return nil, err
		}
		s, err := LoadSample(path, rate)
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", key, err)
		}
		bank[key] = s
	}
	log.Printf("Loaded %d samples from %s", len(bank), dir)
	return bank, nil
}
