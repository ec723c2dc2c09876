package sound

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
)

// Bank is a directory of rendered kit samples.
type Bank struct {
	dir  string
	seed int64
	mu   sync.Mutex
}

// NewBank creates a bank rooted at dir. Nothing is written until Ensure is called.
func NewBank(dir string) *Bank {
	return &Bank{dir: dir, seed: 1}
}

// Dir returns the bank directory.
func (b *Bank) Dir() string {
	return b.dir
}

// Path returns where the named sample lives in the bank.
func (b *Bank) Path(name string) string {
	return filepath.Join(b.dir, name+".wav")
}

// Ensure renders every kit piece that is missing from the bank directory.
// It returns the names of the samples it wrote.
func (b *Bank) Ensure() ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.MkdirAll(b.dir, 0755); err != nil {
		return nil, fmt.Errorf("create sample dir: %w", err)
	}

	var written []string
	for _, name := range Names() {
		path := b.Path(name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := b.render(name, path); err != nil {
			return written, err
		}
		written = append(written, name)
	}

	if len(written) > 0 {
		log.Printf("Generated %d samples in %s", len(written), b.dir)
	}
	return written, nil
}

// Sample returns the path to a sample, rendering it first if it is missing.
func (b *Bank) Sample(name string) (string, error) {
	if _, err := Lookup(name); err != nil {
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	path := b.Path(name)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := os.MkdirAll(b.dir, 0755); err != nil {
		return "", fmt.Errorf("create sample dir: %w", err)
	}
	if err := b.render(name, path); err != nil {
		return "", err
	}
	return path, nil
}

func (b *Bank) render(name, path string) error {
	piece, err := Lookup(name)
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewSource(b.seed))
	if err := WriteFile(path, piece.Render(rng)); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
