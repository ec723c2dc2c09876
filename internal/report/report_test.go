package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/airdrum/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestVelocities(t *testing.T) {
	session := &store.Session{ID: "s1", SchemaName: "movenet-wrist", Frames: 120}
	hits := []*store.Hit{
		{Frame: 9, Hand: "left", Kind: "hit-down", Velocity: 40},
		{Frame: 12, Hand: "right", Kind: "hit-sideways", Velocity: 30, Direction: 1},
		{Frame: 30, Hand: "left", Kind: "hit-sideways", Velocity: -25, Direction: -1},
		{Frame: 44, Hand: "left", Kind: "hit-down", Velocity: 18},
	}

	p, err := Velocities(session, hits)
	if err != nil {
		t.Fatalf("Velocities() error = %v", err)
	}

	if p.X.Max != 120 {
		t.Errorf("x max = %v, want session length 120", p.X.Max)
	}
	if p.Y.Min < 0 {
		t.Errorf("y min = %v, sideways velocities should be magnitudes", p.Y.Min)
	}
	if p.Title.Text != "Session s1 - movenet-wrist (4 hits)" {
		t.Errorf("title = %q", p.Title.Text)
	}
}

func TestVelocities_NoHits(t *testing.T) {
	if _, err := Velocities(&store.Session{ID: "s1"}, nil); !errors.Is(err, ErrNoHits) {
		t.Errorf("expected ErrNoHits, got %v", err)
	}
}

func TestSaveSession(t *testing.T) {
	st := newTestStore(t)
	if err := st.Sessions().Start(&store.Session{ID: "s1", SchemaName: "movenet-wrist"}); err != nil {
		t.Fatal(err)
	}
	for _, f := range []int{9, 26} {
		if err := st.Hits().Record(&store.Hit{SessionID: "s1", Frame: f, Hand: "left", Kind: "hit-down", Velocity: 40}); err != nil {
			t.Fatal(err)
		}
	}

	path := filepath.Join(t.TempDir(), "s1")
	n, err := SaveSession(st, "s1", path)
	if err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}
	if n != 2 {
		t.Errorf("plotted %d hits, want 2", n)
	}

	data, err := os.ReadFile(path + ".png")
	if err != nil {
		t.Fatalf("plot not written: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}

func TestSaveSession_Errors(t *testing.T) {
	st := newTestStore(t)

	if _, err := SaveSession(st, "missing", filepath.Join(t.TempDir(), "x.png")); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing session: expected ErrNotFound, got %v", err)
	}

	if err := st.Sessions().Start(&store.Session{ID: "empty"}); err != nil {
		t.Fatal(err)
	}
	if _, err := SaveSession(st, "empty", filepath.Join(t.TempDir(), "x.png")); !errors.Is(err, ErrNoHits) {
		t.Errorf("empty session: expected ErrNoHits, got %v", err)
	}
}
