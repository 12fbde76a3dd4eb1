package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dreschagin/buoywatch/internal/application/usecase"
	"github.com/dreschagin/buoywatch/internal/domain/service"
	"github.com/dreschagin/buoywatch/internal/domain/valueobject"
	"github.com/dreschagin/buoywatch/pkg/logger"
)

// SeriesAPIHandler обрабатывает API запросы выровненных серий
type SeriesAPIHandler struct {
	loadSeriesUC *usecase.LoadSeriesUseCase
	maxRange     time.Duration
	logger       *logger.Logger
}

// NewSeriesAPIHandler создает новый handler
func NewSeriesAPIHandler(loadSeriesUC *usecase.LoadSeriesUseCase, maxRange time.Duration, logger *logger.Logger) *SeriesAPIHandler {
	if maxRange <= 0 {
		maxRange = 31 * 24 * time.Hour
	}

	return &SeriesAPIHandler{
		loadSeriesUC: loadSeriesUC,
		maxRange:     maxRange,
		logger:       logger,
	}
}

// GetSeries возвращает серии, приведенные к общей сетке
func (h *SeriesAPIHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query, err := h.parseQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	series, err := h.loadSeriesUC.Execute(r.Context(), query)
	if err != nil {
		if errors.Is(err, usecase.ErrStaleSeriesRequest) {
			// Запрос устарел еще в полете; клиент уже спрашивает новое
			http.Error(w, "Request superseded", http.StatusConflict)
			return
		}
		h.logger.Error("Failed to load series", err)
		http.Error(w, "Failed to load series", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(series); err != nil {
		h.logger.Error("Failed to encode series response", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// parseQuery разбирает параметры запроса серий из query string
func (h *SeriesAPIHandler) parseQuery(r *http.Request) (usecase.SeriesQuery, error) {
	var query usecase.SeriesQuery

	idsParam := strings.TrimSpace(r.URL.Query().Get("parameter_ids"))
	if idsParam == "" {
		return query, errors.New("missing required parameter: parameter_ids")
	}
	for _, raw := range strings.Split(idsParam, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return query, errors.New("invalid parameter_ids value")
		}
		query.ParameterIDs = append(query.ParameterIDs, id)
	}

	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		return query, errors.New("invalid start: expected RFC3339")
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		return query, errors.New("invalid end: expected RFC3339")
	}
	timeRange, err := valueobject.NewTimeRange(start, end)
	if err != nil {
		return query, errors.New("invalid time range: " + err.Error())
	}
	if timeRange.Duration() > h.maxRange {
		return query, errors.New("time range too large")
	}
	query.Start = timeRange.Start()
	query.End = timeRange.End()

	if cadenceStr := r.URL.Query().Get("cadence"); cadenceStr != "" {
		cadence, err := time.ParseDuration(cadenceStr)
		if err != nil || cadence <= 0 {
			return query, errors.New("invalid cadence")
		}
		query.Cadence = cadence
	}

	// Бюджет сетки: больше точек, чем дает полный диапазон на шаге по
	// умолчанию, отдавать нельзя — слишком мелкий шаг отклоняем сразу
	effectiveCadence := query.Cadence
	if effectiveCadence == 0 {
		effectiveCadence = service.DefaultCadence
	}
	maxSlots := int(h.maxRange/service.DefaultCadence) + 1
	if timeRange.GridSlots(effectiveCadence) > maxSlots {
		return query, errors.New("cadence too fine for requested range")
	}

	if fill := r.URL.Query().Get("fill"); fill != "" {
		query.Fill = usecase.FillMode(fill)
	}

	return query, nil
}
