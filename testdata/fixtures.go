// Package testdata holds recorded pose sequences for tests.
package testdata

import (
	"embed"
	"fmt"
	"strings"

	"github.com/ayusman/airdrum/internal/pose"
)

//go:embed poses/*.json
var posesFS embed.FS

// LoadRecording loads a recording by name, without the .json extension.
//
// "strikes" is 28 MoveNet frames: a left downstroke at frame 9, a right
// outward swing at frame 12, a left downstroke during cooldown at frame 15,
// lost tracking at frames 20-21 and a left downstroke at frame 26.
func LoadRecording(name string) (*pose.Recording, error) {
	f, err := posesFS.Open("poses/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("load recording %s: %w", name, err)
	}
	defer f.Close()

	rec, err := pose.ReadRecording(f)
	if err != nil {
		return nil, fmt.Errorf("recording %s: %w", name, err)
	}
	return rec, nil
}

// Names lists the available recordings.
func Names() ([]string, error) {
	entries, err := posesFS.ReadDir("poses")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	return names, nil
}
