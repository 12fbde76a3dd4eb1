package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dreschagin/buoywatch/internal/application/usecase"
	"github.com/dreschagin/buoywatch/pkg/logger"
)

// SnapshotAPIHandler обрабатывает API запросы снимка станции
type SnapshotAPIHandler struct {
	refreshLatestUC *usecase.RefreshLatestUseCase
	logger          *logger.Logger
}

// NewSnapshotAPIHandler создает новый handler
func NewSnapshotAPIHandler(refreshLatestUC *usecase.RefreshLatestUseCase, logger *logger.Logger) *SnapshotAPIHandler {
	return &SnapshotAPIHandler{
		refreshLatestUC: refreshLatestUC,
		logger:          logger,
	}
}

// GetSnapshot возвращает классифицированный снимок последних значений станции
func (h *SnapshotAPIHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stationID := strings.TrimSpace(r.URL.Query().Get("station_id"))
	if stationID == "" {
		http.Error(w, "Missing required parameter: station_id", http.StatusBadRequest)
		return
	}

	snapshot, err := h.refreshLatestUC.Execute(r.Context(), stationID)
	if err != nil {
		h.logger.Error("Failed to build station snapshot", err, "station_id", stationID)
		http.Error(w, "Failed to build snapshot", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		h.logger.Error("Failed to encode snapshot response", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
