// Package main provides the drum kit plugin.
// It plays a synthesized sample for each strike, rendering the sample on first use.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/ayusman/airdrum/internal/plugin"
	"github.com/ayusman/airdrum/internal/sound"
)

// Config is the per-binding configuration.
type Config struct {
	Sample string `json:"sample"`
	// Dir overrides the sample directory.
	Dir string `json:"dir,omitempty"`
	// Player overrides the audio player command.
	Player string `json:"player,omitempty"`
}

// actionHandler defines a function type for handling specific actions.
type actionHandler func(req plugin.Request, cfg Config) (any, error)

var actionHandlers = map[string]actionHandler{
	"play": play,
}

func main() {
	var req plugin.Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(plugin.Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	handler, ok := actionHandlers[req.Action]
	if !ok {
		writeResponse(plugin.Response{Error: fmt.Sprintf("unknown action: %s", req.Action)})
		return
	}

	var cfg Config
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeResponse(plugin.Response{Error: fmt.Sprintf("invalid config: %v", err)})
			return
		}
	}

	data, err := handler(req, cfg)
	if err != nil {
		writeResponse(plugin.Response{Error: fmt.Sprintf("action %s failed: %v", req.Action, err)})
		return
	}

	raw, _ := json.Marshal(data)
	writeResponse(plugin.Response{Success: true, Data: raw})
}

// play renders the sample if needed and plays it to completion.
func play(req plugin.Request, cfg Config) (any, error) {
	if cfg.Sample == "" {
		return nil, fmt.Errorf("no sample configured for %s %s", req.Event, req.Hand)
	}
	if _, err := sound.Lookup(cfg.Sample); err != nil {
		return nil, err
	}

	dir := cfg.Dir
	if dir == "" {
		dir = sampleDir()
	}

	path, err := sound.NewBank(dir).Sample(cfg.Sample)
	if err != nil {
		return nil, err
	}

	name, args := playerCommand(cfg.Player, path)
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, string(out))
	}

	return map[string]string{"sample": cfg.Sample, "path": path}, nil
}

// sampleDir returns AIRDRUM_SAMPLES or ~/.airdrum/samples.
func sampleDir() string {
	if dir := os.Getenv("AIRDRUM_SAMPLES"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "samples"
	}
	return filepath.Join(home, ".airdrum", "samples")
}

func playerCommand(override, path string) (string, []string) {
	if override != "" {
		return override, []string{path}
	}
	if runtime.GOOS == "darwin" {
		return "afplay", []string{path}
	}
	return "aplay", []string{"-q", path}
}

func writeResponse(resp plugin.Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}
