package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Binding maps an event kind on one hand to a plugin action.
type Binding struct {
	ID         string
	Kind       string
	Hand       string
	PluginName string
	ActionName string
	Config     json.RawMessage
	Enabled    bool
	CreatedAt  time.Time
}

// BindingRepository provides CRUD operations for bindings.
type BindingRepository struct {
	db *sql.DB
}

// Bindings returns the binding repository for this store.
func (s *Store) Bindings() *BindingRepository {
	return &BindingRepository{db: s.db}
}

const bindingColumns = `id, kind, hand, plugin_name, action_name, config, enabled, created_at`

// Create inserts a new binding. Only one binding may exist per kind and hand.
func (r *BindingRepository) Create(b *Binding) error {
	b.CreatedAt = time.Now()

	config := b.Config
	if config == nil {
		config = json.RawMessage("{}")
	}

	_, err := r.db.Exec(
		`INSERT INTO bindings (`+bindingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Kind, b.Hand, b.PluginName, b.ActionName, string(config), b.Enabled, b.CreatedAt,
	)
	return err
}

// GetByID retrieves a binding by its ID.
func (r *BindingRepository) GetByID(id string) (*Binding, error) {
	return scanBinding(r.db.QueryRow(`SELECT `+bindingColumns+` FROM bindings WHERE id = ?`, id))
}

// Lookup returns the binding for an event kind and hand.
// Returns nil, nil if nothing is bound.
func (r *BindingRepository) Lookup(kind, hand string) (*Binding, error) {
	b, err := scanBinding(r.db.QueryRow(
		`SELECT `+bindingColumns+` FROM bindings WHERE kind = ? AND hand = ?`, kind, hand,
	))
	if errors.Is(err, ErrNotFound) {
		return nil, nil // Silent skip - nothing bound
	}
	return b, err
}

// List retrieves all bindings.
func (r *BindingRepository) List() ([]*Binding, error) {
	rows, err := r.db.Query(`SELECT ` + bindingColumns + ` FROM bindings ORDER BY kind, hand`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bindings []*Binding
	for rows.Next() {
		b, err := scanBinding(rows)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bindings, nil
}

// Update updates an existing binding.
func (r *BindingRepository) Update(b *Binding) error {
	config := b.Config
	if config == nil {
		config = json.RawMessage("{}")
	}

	enabled := 0
	if b.Enabled {
		enabled = 1
	}

	result, err := r.db.Exec(
		`UPDATE bindings SET kind = ?, hand = ?, plugin_name = ?, action_name = ?, config = ?, enabled = ?
		 WHERE id = ?`,
		b.Kind, b.Hand, b.PluginName, b.ActionName, string(config), enabled, b.ID,
	)
	if err != nil {
		return err
	}
	return affectedOne(result)
}

// Delete removes a binding by its ID.
func (r *BindingRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM bindings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOne(result)
}

// DefaultBindings is the drum kit layout used when no bindings exist yet.
func DefaultBindings(plugin string) []*Binding {
	sample := func(name string) json.RawMessage {
		return json.RawMessage(fmt.Sprintf(`{"sample":%q}`, name))
	}
	return []*Binding{
		{Kind: "hit-down", Hand: "left", PluginName: plugin, ActionName: "play", Config: sample("snare"), Enabled: true},
		{Kind: "hit-down", Hand: "right", PluginName: plugin, ActionName: "play", Config: sample("hihat"), Enabled: true},
		{Kind: "hit-sideways", Hand: "left", PluginName: plugin, ActionName: "play", Config: sample("tom"), Enabled: true},
		{Kind: "hit-sideways", Hand: "right", PluginName: plugin, ActionName: "play", Config: sample("cymbal"), Enabled: true},
	}
}

// Count returns the number of stored bindings.
func (r *BindingRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM bindings`).Scan(&n)
	return n, err
}

// SeedDefaults inserts the default layout when the bindings table is empty.
// Once any binding exists the table belongs to the user, so defaults the user
// deleted are not brought back. It returns the number of bindings inserted.
func (r *BindingRepository) SeedDefaults(plugin string) (int, error) {
	n, err := r.Count()
	if err != nil {
		return 0, fmt.Errorf("count bindings: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	inserted := 0
	for _, b := range DefaultBindings(plugin) {
		b.ID = uuid.New().String()
		if err := r.Create(b); err != nil {
			return inserted, fmt.Errorf("seed binding %s/%s: %w", b.Kind, b.Hand, err)
		}
		inserted++
	}
	return inserted, nil
}

func scanBinding(row rowScanner) (*Binding, error) {
	b := &Binding{}
	var config string
	var enabled int

	err := row.Scan(&b.ID, &b.Kind, &b.Hand, &b.PluginName, &b.ActionName, &config, &enabled, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	b.Config = json.RawMessage(config)
	b.Enabled = enabled != 0
	return b, nil
}
