package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dreschagin/buoywatch/internal/application/port"
	"github.com/dreschagin/buoywatch/internal/application/usecase"
	"github.com/dreschagin/buoywatch/internal/domain/entity"
	"github.com/dreschagin/buoywatch/pkg/logger"
)

// AlertsAPIHandler обрабатывает API запросы ленты алертов
type AlertsAPIHandler struct {
	backfillUC *usecase.BackfillAlertsUseCase
	streamUC   *usecase.StreamAlertsUseCase
	logger     *logger.Logger
}

// NewAlertsAPIHandler создает новый handler
func NewAlertsAPIHandler(
	backfillUC *usecase.BackfillAlertsUseCase,
	streamUC *usecase.StreamAlertsUseCase,
	logger *logger.Logger,
) *AlertsAPIHandler {
	return &AlertsAPIHandler{
		backfillUC: backfillUC,
		streamUC:   streamUC,
		logger:     logger,
	}
}

// GetAlerts возвращает страницу истории алертов, newest-first
func (h *AlertsAPIHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	criteria := port.AlertCriteria{}
	if stations := strings.TrimSpace(r.URL.Query().Get("station_ids")); stations != "" {
		criteria.StationIDs = strings.Split(stations, ",")
	}
	if severities := strings.TrimSpace(r.URL.Query().Get("severities")); severities != "" {
		for _, raw := range strings.Split(severities, ",") {
			criteria.Severities = append(criteria.Severities, entity.ParseAlertSeverity(raw))
		}
	}
	if since := r.URL.Query().Get("since"); since != "" {
		parsed, err := time.Parse(time.RFC3339, since)
		if err != nil {
			http.Error(w, "Invalid since: expected RFC3339", http.StatusBadRequest)
			return
		}
		criteria.Since = parsed
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	events, err := h.backfillUC.Execute(r.Context(), criteria, offset, limit)
	if err != nil {
		h.logger.Error("Failed to fetch alert history", err)
		http.Error(w, "Failed to fetch alerts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(events); err != nil {
		h.logger.Error("Failed to encode alerts response", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// GetToasts возвращает текущую очередь toast'ов, newest-first
func (h *AlertsAPIHandler) GetToasts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.streamUC.Toasts()); err != nil {
		h.logger.Error("Failed to encode toasts response", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

type dismissRequest struct {
	ID string `json:"id"`
}

// DismissToast убирает toast из очереди; повторная доставка события
// остается подавленной
func (h *AlertsAPIHandler) DismissToast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	defer r.Body.Close()
	var req dismissRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.ID) == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	dismissed := h.streamUC.Dismiss(req.ID)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"dismissed": dismissed})
}
