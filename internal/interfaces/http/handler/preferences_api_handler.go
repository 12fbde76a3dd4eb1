package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dreschagin/buoywatch/internal/domain/service"
	"github.com/dreschagin/buoywatch/internal/domain/valueobject"
	"github.com/dreschagin/buoywatch/pkg/logger"
)

// PreferencesAPIHandler обрабатывает чтение и смену предпочтений единиц
type PreferencesAPIHandler struct {
	preferences *service.PreferenceStore
	converter   *service.UnitConverter
	logger      *logger.Logger
}

// NewPreferencesAPIHandler создает новый handler
func NewPreferencesAPIHandler(
	preferences *service.PreferenceStore,
	converter *service.UnitConverter,
	logger *logger.Logger,
) *PreferencesAPIHandler {
	return &PreferencesAPIHandler{
		preferences: preferences,
		converter:   converter,
		logger:      logger,
	}
}

type setPreferenceRequest struct {
	Category string `json:"category"`
	Unit     string `json:"unit"`
}

// HandlePreferences диспетчеризует GET (снимок) и PUT (смена единицы)
func (h *PreferencesAPIHandler) HandlePreferences(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getPreferences(w, r)
	case http.MethodPut:
		h.setPreference(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *PreferencesAPIHandler) getPreferences(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.preferences.Snapshot()); err != nil {
		h.logger.Error("Failed to encode preferences response", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func (h *PreferencesAPIHandler) setPreference(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req setPreferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	category := valueobject.UnitCategory(strings.TrimSpace(req.Category))
	if err := h.preferences.Set(category, strings.TrimSpace(req.Unit)); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.logger.Info("Unit preference changed", "category", category.String(), "unit", req.Unit)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.preferences.Snapshot()); err != nil {
		h.logger.Error("Failed to encode preferences response", err)
	}
}
