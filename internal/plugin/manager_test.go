package plugin

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// writeManifest creates dir/name/plugin.json. A string manifest is written verbatim.
// A Manifest also gets an executable stub.
func writeManifest(t *testing.T, dir, name string, manifest any) string {
	t.Helper()

	pluginDir := filepath.Join(dir, name)
	if err := os.MkdirAll(pluginDir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}

	var data []byte
	switch m := manifest.(type) {
	case string:
		data = []byte(m)
	case Manifest:
		if m.Executable != "" {
			stub := filepath.Join(pluginDir, m.Executable)
			if err := os.WriteFile(stub, []byte("#!/bin/sh\n"), 0755); err != nil {
				t.Fatalf("failed to write executable: %v", err)
			}
		}
		var err error
		data, err = json.Marshal(m)
		if err != nil {
			t.Fatalf("failed to marshal manifest: %v", err)
		}
	default:
		var err error
		data, err = json.Marshal(m)
		if err != nil {
			t.Fatalf("failed to marshal manifest: %v", err)
		}
	}

	if err := os.WriteFile(filepath.Join(pluginDir, "plugin.json"), data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return pluginDir
}

func TestManager_Discover(t *testing.T) {
	tmpDir := t.TempDir()
	pluginDir := writeManifest(t, tmpDir, "drumkit", Manifest{
		Name:        "drumkit",
		Version:     "1.0.0",
		Description: "Plays drum samples",
		Executable:  "drumkit",
		Actions:     []string{"play"},
	})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 1 {
		t.Fatalf("expected 1 plugin, got %d", len(plugins))
	}

	plugin := plugins[0]
	if plugin.Manifest.Name != "drumkit" {
		t.Errorf("expected plugin name 'drumkit', got %q", plugin.Manifest.Name)
	}
	if plugin.Manifest.Description != "Plays drum samples" {
		t.Errorf("unexpected description %q", plugin.Manifest.Description)
	}
	if plugin.Path != pluginDir {
		t.Errorf("expected path %q, got %q", pluginDir, plugin.Path)
	}
	if plugin.Executable != filepath.Join(pluginDir, "drumkit") {
		t.Errorf("unexpected executable %q", plugin.Executable)
	}
	if !plugin.Supports("play") || plugin.Supports("record") {
		t.Error("Supports() should follow the manifest actions")
	}
}

func TestManager_Discover_SortedAndSkipsInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{"zeta", "alpha"} {
		writeManifest(t, tmpDir, name, Manifest{Name: name, Executable: name})
	}
	writeManifest(t, tmpDir, "broken", "not valid json")
	writeManifest(t, tmpDir, "nameless", Manifest{Executable: "x"})

	// A stray file next to the plugin dirs is ignored.
	if err := os.WriteFile(filepath.Join(tmpDir, "README"), []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(plugins))
	}
	if plugins[0].Manifest.Name != "alpha" || plugins[1].Manifest.Name != "zeta" {
		t.Errorf("plugins not sorted: %s, %s", plugins[0].Manifest.Name, plugins[1].Manifest.Name)
	}
}

func TestManager_Discover_Rescan(t *testing.T) {
	tmpDir := t.TempDir()
	writeManifest(t, tmpDir, "one", Manifest{Name: "one", Executable: "one"})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	if _, err := manager.Get("one"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if err := os.RemoveAll(filepath.Join(tmpDir, "one")); err != nil {
		t.Fatal(err)
	}
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	if _, err := manager.Get("one"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("removed plugin still present, err = %v", err)
	}
}

func TestManager_Get_NotFound(t *testing.T) {
	manager := NewManager(t.TempDir())

	if _, err := manager.Get("nonexistent-plugin"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("expected ErrPluginNotFound, got %v", err)
	}
}

func TestManager_PluginDir(t *testing.T) {
	pluginDir := "/path/to/plugins"
	manager := NewManager(pluginDir)

	if manager.PluginDir() != pluginDir {
		t.Errorf("expected plugin dir %q, got %q", pluginDir, manager.PluginDir())
	}
}

func TestManager_Discover_NonExistentDir(t *testing.T) {
	manager := NewManager("/path/that/does/not/exist")

	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed on non-existent dir: %v", err)
	}
	if plugins := manager.List(); len(plugins) != 0 {
		t.Fatalf("expected 0 plugins, got %d", len(plugins))
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("no manifest", func(t *testing.T) {
		if _, err := Load(tmpDir); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Load() error = %v, want os.ErrNotExist", err)
		}
	})

	t.Run("missing executable", func(t *testing.T) {
		dir := writeManifest(t, tmpDir, "ghost", `{"name":"ghost","executable":"ghost"}`)
		if _, err := Load(dir); !errors.Is(err, ErrInvalidManifest) {
			t.Errorf("Load() error = %v, want ErrInvalidManifest", err)
		}
	})

	t.Run("not executable", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("no exec bit on Windows")
		}
		dir := writeManifest(t, tmpDir, "plain", `{"name":"plain","executable":"plain.sh"}`)
		if err := os.WriteFile(filepath.Join(dir, "plain.sh"), []byte("echo"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(dir); !errors.Is(err, ErrInvalidManifest) {
			t.Errorf("Load() error = %v, want ErrInvalidManifest", err)
		}
	})

	t.Run("valid", func(t *testing.T) {
		dir := writeManifest(t, tmpDir, "kit", Manifest{Name: "kit", Executable: "kit"})
		p, err := Load(dir)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if p.Executable != filepath.Join(dir, "kit") {
			t.Errorf("Executable = %q", p.Executable)
		}
	})
}
