package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/airdrum/internal/pose"
)

// SchemaRecord is a stored hand mapping schema.
type SchemaRecord struct {
	ID        string
	Schema    pose.Schema
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SchemaRepository provides CRUD operations for schemas.
type SchemaRepository struct {
	db *sql.DB
}

// Schemas returns the schema repository for this store.
func (s *Store) Schemas() *SchemaRepository {
	return &SchemaRepository{db: s.db}
}

const schemaColumns = `id, name, model, left_hand, right_hand, created_at, updated_at`

// Create inserts a new schema. The schema must be valid.
func (r *SchemaRepository) Create(rec *SchemaRecord) error {
	if err := rec.Schema.Validate(); err != nil {
		return err
	}
	left, right, err := encodeHands(rec.Schema)
	if err != nil {
		return err
	}

	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	_, err = r.db.Exec(
		`INSERT INTO schemas (`+schemaColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Schema.Name, string(rec.Schema.Model), left, right, rec.CreatedAt, rec.UpdatedAt,
	)
	return err
}

// GetByID retrieves a schema by its ID.
func (r *SchemaRepository) GetByID(id string) (*SchemaRecord, error) {
	return scanSchema(r.db.QueryRow(`SELECT `+schemaColumns+` FROM schemas WHERE id = ?`, id))
}

// GetByName retrieves a schema by its unique name.
func (r *SchemaRepository) GetByName(name string) (*SchemaRecord, error) {
	return scanSchema(r.db.QueryRow(`SELECT `+schemaColumns+` FROM schemas WHERE name = ?`, name))
}

// List retrieves all schemas ordered by name.
func (r *SchemaRepository) List() ([]*SchemaRecord, error) {
	rows, err := r.db.Query(`SELECT ` + schemaColumns + ` FROM schemas ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*SchemaRecord
	for rows.Next() {
		rec, err := scanSchema(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// Update replaces an existing schema.
func (r *SchemaRepository) Update(rec *SchemaRecord) error {
	if err := rec.Schema.Validate(); err != nil {
		return err
	}
	left, right, err := encodeHands(rec.Schema)
	if err != nil {
		return err
	}

	rec.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE schemas SET name = ?, model = ?, left_hand = ?, right_hand = ?, updated_at = ?
		 WHERE id = ?`,
		rec.Schema.Name, string(rec.Schema.Model), left, right, rec.UpdatedAt, rec.ID,
	)
	if err != nil {
		return err
	}
	return affectedOne(result)
}

// Delete removes a schema by its ID.
func (r *SchemaRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM schemas WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOne(result)
}

// SeedPresets inserts every built-in schema whose name is not stored yet.
// It returns the number of schemas inserted.
func (r *SchemaRepository) SeedPresets() (int, error) {
	inserted := 0
	for _, preset := range pose.Presets() {
		_, err := r.GetByName(preset.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return inserted, err
		}
		if err := r.Create(&SchemaRecord{ID: uuid.New().String(), Schema: preset}); err != nil {
			return inserted, fmt.Errorf("seed schema %s: %w", preset.Name, err)
		}
		inserted++
	}
	return inserted, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchema(row rowScanner) (*SchemaRecord, error) {
	rec := &SchemaRecord{}
	var model, left, right string

	err := row.Scan(&rec.ID, &rec.Schema.Name, &model, &left, &right, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rec.Schema.Model = pose.Model(model)
	if err := json.Unmarshal([]byte(left), &rec.Schema.Left); err != nil {
		return nil, fmt.Errorf("decode left hand of %s: %w", rec.Schema.Name, err)
	}
	if err := json.Unmarshal([]byte(right), &rec.Schema.Right); err != nil {
		return nil, fmt.Errorf("decode right hand of %s: %w", rec.Schema.Name, err)
	}
	return rec, nil
}

func encodeHands(s pose.Schema) (string, string, error) {
	left, err := json.Marshal(s.Left)
	if err != nil {
		return "", "", err
	}
	right, err := json.Marshal(s.Right)
	if err != nil {
		return "", "", err
	}
	return string(left), string(right), nil
}
