package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ayusman/airdrum/internal/pose"
	"github.com/ayusman/airdrum/internal/store"
)

// SettingHandler handles HTTP requests for key-value settings.
// Settings are read at startup, so changes apply on the next launch.
type SettingHandler struct {
	store *store.Store
}

// NewSettingHandler creates a new SettingHandler with the given store.
func NewSettingHandler(s *store.Store) *SettingHandler {
	return &SettingHandler{store: s}
}

// ServeHTTP routes /api/settings and /api/settings/{key}.
func (h *SettingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/settings")

	switch len(parts) {
	case 0:
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
	case 1:
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, parts[0])
		case http.MethodPut:
			h.put(w, r, parts[0])
		case http.MethodDelete:
			h.delete(w, r, parts[0])
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

type settingRequest struct {
	Value *string `json:"value"`
}

type settingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type listSettingsResponse struct {
	Settings map[string]string `json:"settings"`
}

// validators check the values of settings the app reads at startup.
var validators = map[string]func(*store.Store, string) error{
	"schema": validSchemaName,
}

// validSchemaName accepts a stored schema or a built-in preset.
func validSchemaName(s *store.Store, name string) error {
	_, err := s.Schemas().GetByName(name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if _, ok := pose.Preset(name); ok {
		return nil
	}
	return fmt.Errorf("unknown schema %q", name)
}

func (h *SettingHandler) list(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.Settings().All()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list settings")
		return
	}
	writeJSON(w, http.StatusOK, listSettingsResponse{Settings: settings})
}

func (h *SettingHandler) get(w http.ResponseWriter, r *http.Request, key string) {
	value, err := h.store.Settings().Get(key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Setting not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get setting")
		return
	}
	writeJSON(w, http.StatusOK, settingResponse{Key: key, Value: value})
}

func (h *SettingHandler) put(w http.ResponseWriter, r *http.Request, key string) {
	var req settingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Value == nil {
		writeError(w, http.StatusBadRequest, "value is required")
		return
	}

	if validate, ok := validators[key]; ok {
		if err := validate(h.store, *req.Value); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	if err := h.store.Settings().Set(key, *req.Value); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save setting")
		return
	}
	writeJSON(w, http.StatusOK, settingResponse{Key: key, Value: *req.Value})
}

func (h *SettingHandler) delete(w http.ResponseWriter, r *http.Request, key string) {
	if err := h.store.Settings().Delete(key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Setting not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete setting")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
