package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dreschagin/buoywatch/internal/application/usecase"
	"github.com/dreschagin/buoywatch/pkg/logger"
)

// ExportsAPIHandler обрабатывает создание и листинг CSV экспортов
type ExportsAPIHandler struct {
	exportUC *usecase.ExportSeriesUseCase
	listUC   *usecase.ListExportsUseCase
	logger   *logger.Logger
}

// NewExportsAPIHandler создает новый handler
func NewExportsAPIHandler(
	exportUC *usecase.ExportSeriesUseCase,
	listUC *usecase.ListExportsUseCase,
	logger *logger.Logger,
) *ExportsAPIHandler {
	return &ExportsAPIHandler{
		exportUC: exportUC,
		listUC:   listUC,
		logger:   logger,
	}
}

type createExportRequest struct {
	TeamID       string  `json:"team_id"`
	ParameterIDs []int64 `json:"parameter_ids"`
	Start        string  `json:"start"`
	End          string  `json:"end"`
	Cadence      string  `json:"cadence,omitempty"`
	Fill         string  `json:"fill,omitempty"`
}

// HandleExports диспетчеризует POST (создание) и GET (листинг)
func (h *ExportsAPIHandler) HandleExports(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createExport(w, r)
	case http.MethodGet:
		h.listExports(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ExportsAPIHandler) createExport(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req createExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.TeamID) == "" || len(req.ParameterIDs) == 0 {
		http.Error(w, "team_id and parameter_ids are required", http.StatusBadRequest)
		return
	}

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		http.Error(w, "Invalid start: expected RFC3339", http.StatusBadRequest)
		return
	}
	end, err := time.Parse(time.RFC3339, req.End)
	if err != nil {
		http.Error(w, "Invalid end: expected RFC3339", http.StatusBadRequest)
		return
	}

	query := usecase.SeriesQuery{
		ParameterIDs: req.ParameterIDs,
		Start:        start,
		End:          end,
		Fill:         usecase.FillMode(req.Fill),
	}
	if req.Cadence != "" {
		cadence, err := time.ParseDuration(req.Cadence)
		if err != nil || cadence <= 0 {
			http.Error(w, "Invalid cadence", http.StatusBadRequest)
			return
		}
		query.Cadence = cadence
	}

	result, err := h.exportUC.Execute(r.Context(), usecase.ExportRequest{
		TeamID: req.TeamID,
		Query:  query,
	})
	if err != nil {
		h.logger.Error("Failed to create export", err, "team_id", req.TeamID)
		http.Error(w, "Failed to create export", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Error("Failed to encode export response", err)
	}
}

func (h *ExportsAPIHandler) listExports(w http.ResponseWriter, r *http.Request) {
	teamID := strings.TrimSpace(r.URL.Query().Get("team_id"))
	if teamID == "" {
		http.Error(w, "Missing required parameter: team_id", http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	records, err := h.listUC.Execute(r.Context(), teamID, limit)
	if err != nil {
		h.logger.Error("Failed to list exports", err, "team_id", teamID)
		http.Error(w, "Failed to list exports", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(records); err != nil {
		h.logger.Error("Failed to encode exports response", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
