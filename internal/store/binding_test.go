package store

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestBindingRepository_CRUD(t *testing.T) {
	repo := newTestStore(t).Bindings()

	b := &Binding{
		ID:         "binding-1",
		Kind:       "hit-down",
		Hand:       "left",
		PluginName: "drumkit",
		ActionName: "play",
		Config:     json.RawMessage(`{"sample":"snare"}`),
		Enabled:    true,
	}
	if err := repo.Create(b); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByID("binding-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Kind != "hit-down" || got.Hand != "left" || got.PluginName != "drumkit" || !got.Enabled {
		t.Errorf("unexpected binding %+v", got)
	}
	if string(got.Config) != `{"sample":"snare"}` {
		t.Errorf("Config = %s", got.Config)
	}

	b.Enabled = false
	b.Config = nil
	if err := repo.Update(b); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, _ = repo.GetByID("binding-1")
	if got.Enabled {
		t.Error("binding should be disabled after update")
	}
	if string(got.Config) != "{}" {
		t.Errorf("nil config should be stored as {}, got %s", got.Config)
	}

	if err := repo.Delete("binding-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete("binding-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestBindingRepository_OnePerKindAndHand(t *testing.T) {
	repo := newTestStore(t).Bindings()

	first := &Binding{ID: "a", Kind: "hit-down", Hand: "right", PluginName: "drumkit", ActionName: "play"}
	if err := repo.Create(first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	dup := &Binding{ID: "b", Kind: "hit-down", Hand: "right", PluginName: "other", ActionName: "play"}
	if err := repo.Create(dup); err == nil {
		t.Error("expected unique constraint error for duplicate kind and hand")
	}

	bad := &Binding{ID: "c", Kind: "wave", Hand: "right", PluginName: "drumkit", ActionName: "play"}
	if err := repo.Create(bad); err == nil {
		t.Error("expected check constraint error for unknown kind")
	}
}

func TestBindingRepository_Lookup(t *testing.T) {
	repo := newTestStore(t).Bindings()

	got, err := repo.Lookup("hit-down", "left")
	if err != nil || got != nil {
		t.Fatalf("Lookup() on empty store = (%+v, %v), want (nil, nil)", got, err)
	}

	n, err := repo.SeedDefaults("drumkit")
	if err != nil {
		t.Fatalf("SeedDefaults() error = %v", err)
	}
	if n != 4 {
		t.Errorf("SeedDefaults() inserted %d, want 4", n)
	}

	tests := []struct {
		kind, hand string
		sample     string
	}{
		{"hit-down", "left", "snare"},
		{"hit-down", "right", "hihat"},
		{"hit-sideways", "left", "tom"},
		{"hit-sideways", "right", "cymbal"},
	}
	for _, tt := range tests {
		t.Run(tt.kind+"/"+tt.hand, func(t *testing.T) {
			b, err := repo.Lookup(tt.kind, tt.hand)
			if err != nil || b == nil {
				t.Fatalf("Lookup() = (%+v, %v)", b, err)
			}
			var cfg struct {
				Sample string `json:"sample"`
			}
			if err := json.Unmarshal(b.Config, &cfg); err != nil {
				t.Fatalf("config is not JSON: %v", err)
			}
			if cfg.Sample != tt.sample {
				t.Errorf("sample = %q, want %q", cfg.Sample, tt.sample)
			}
		})
	}

	n, err = repo.SeedDefaults("drumkit")
	if err != nil || n != 0 {
		t.Errorf("second SeedDefaults() = (%d, %v), want (0, nil)", n, err)
	}
}

func TestBindingRepository_SeedDefaults_KeepsDeletions(t *testing.T) {
	repo := newTestStore(t).Bindings()

	if _, err := repo.SeedDefaults("drumkit"); err != nil {
		t.Fatalf("SeedDefaults() error = %v", err)
	}

	snare, err := repo.Lookup("hit-down", "left")
	if err != nil || snare == nil {
		t.Fatalf("Lookup() = (%+v, %v)", snare, err)
	}
	if err := repo.Delete(snare.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	// The next startup seeds again; the deleted default stays gone.
	n, err := repo.SeedDefaults("drumkit")
	if err != nil || n != 0 {
		t.Fatalf("SeedDefaults() = (%d, %v), want (0, nil)", n, err)
	}
	if got, err := repo.Lookup("hit-down", "left"); err != nil || got != nil {
		t.Errorf("deleted binding came back: (%+v, %v)", got, err)
	}
	if count, err := repo.Count(); err != nil || count != 3 {
		t.Errorf("Count() = (%d, %v), want (3, nil)", count, err)
	}
}

func TestBindingRepository_SeedDefaults_SkipsUserLayout(t *testing.T) {
	repo := newTestStore(t).Bindings()

	custom := &Binding{ID: "mine", Kind: "hit-sideways", Hand: "right", PluginName: "drumkit", ActionName: "play", Enabled: true}
	if err := repo.Create(custom); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	n, err := repo.SeedDefaults("drumkit")
	if err != nil || n != 0 {
		t.Errorf("SeedDefaults() = (%d, %v), want (0, nil)", n, err)
	}
}
