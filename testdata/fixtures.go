// Package testdata holds recorded detection sequences for replay tests.
package testdata

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/ayusman/handpiano/internal/detector"
)

//go:embed sequences/*.jsonl
var sequencesFS embed.FS

// Open returns the raw JSONL for a sequence, e.g. "scale".
func Open(name string) (io.ReadCloser, error) {
	f, err := sequencesFS.Open(path.Join("sequences", name+".jsonl"))
	if err != nil {
		return nil, fmt.Errorf("open sequence %s: %w", name, err)
	}
	return f, nil
}

// LoadSequence decodes every frame of a sequence.
func LoadSequence(name string) ([][]detector.HandLandmarks, error) {
	f, err := Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	frames, err := detector.NewSequenceReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode sequence %s: %w", name, err)
	}
	return frames, nil
}

// Sequences lists the embedded sequence names.
func Sequences() ([]string, error) {
	entries, err := fs.ReadDir(sequencesFS, "sequences")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".jsonl"))
	}
	return names, nil
}
