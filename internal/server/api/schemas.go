package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/ayusman/airdrum/internal/pose"
	"github.com/ayusman/airdrum/internal/store"
)

// SchemaHandler handles HTTP requests for hand mapping schemas.
type SchemaHandler struct {
	store *store.Store
}

// NewSchemaHandler creates a new SchemaHandler with the given store.
func NewSchemaHandler(s *store.Store) *SchemaHandler {
	return &SchemaHandler{store: s}
}

// ServeHTTP routes /api/schemas and /api/schemas/{id}.
func (h *SchemaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/schemas")

	switch len(parts) {
	case 0:
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case 1:
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, parts[0])
		case http.MethodPut:
			h.update(w, r, parts[0])
		case http.MethodDelete:
			h.delete(w, r, parts[0])
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

type schemaResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Model     string           `json:"model"`
	Left      pose.HandMapping `json:"left"`
	Right     pose.HandMapping `json:"right"`
	CreatedAt string           `json:"created_at"`
	UpdatedAt string           `json:"updated_at"`
}

type listSchemasResponse struct {
	Schemas []schemaResponse `json:"schemas"`
}

func toSchemaResponse(rec *store.SchemaRecord) schemaResponse {
	return schemaResponse{
		ID:        rec.ID,
		Name:      rec.Schema.Name,
		Model:     string(rec.Schema.Model),
		Left:      rec.Schema.Left,
		Right:     rec.Schema.Right,
		CreatedAt: rec.CreatedAt.Format(timeFormat),
		UpdatedAt: rec.UpdatedAt.Format(timeFormat),
	}
}

func (h *SchemaHandler) list(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.Schemas().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list schemas")
		return
	}

	response := listSchemasResponse{Schemas: make([]schemaResponse, 0, len(records))}
	for _, rec := range records {
		response.Schemas = append(response.Schemas, toSchemaResponse(rec))
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *SchemaHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := h.store.Schemas().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Schema not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get schema")
		return
	}

	writeJSON(w, http.StatusOK, toSchemaResponse(rec))
}

func (h *SchemaHandler) create(w http.ResponseWriter, r *http.Request) {
	var schema pose.Schema
	if err := json.NewDecoder(r.Body).Decode(&schema); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if schema.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if err := schema.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.store.Schemas().GetByName(schema.Name); err == nil {
		writeError(w, http.StatusConflict, "Schema name already exists")
		return
	}

	rec := &store.SchemaRecord{ID: uuid.New().String(), Schema: schema}
	if err := h.store.Schemas().Create(rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create schema")
		return
	}

	writeJSON(w, http.StatusCreated, toSchemaResponse(rec))
}

func (h *SchemaHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := h.store.Schemas().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Schema not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get schema")
		return
	}

	// Decode over the stored schema so omitted fields keep their values.
	if err := json.NewDecoder(r.Body).Decode(&rec.Schema); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := rec.Schema.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Schemas().Update(rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update schema")
		return
	}

	writeJSON(w, http.StatusOK, toSchemaResponse(rec))
}

func (h *SchemaHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Schemas().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Schema not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete schema")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
