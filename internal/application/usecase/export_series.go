package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dreschagin/buoywatch/internal/application/dto"
	"github.com/dreschagin/buoywatch/internal/application/port"
	"github.com/dreschagin/buoywatch/pkg/logger"
)

const exportContentType = "text/csv; charset=utf-8"

// ExportRequest — запрос на выгрузку серий в CSV
type ExportRequest struct {
	TeamID string
	Query  SeriesQuery
}

// ExportResult — результат выгрузки
type ExportResult struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Key      string `json:"key"`
	RowCount int    `json:"row_count"`
	Size     int    `json:"size_bytes"`
}

// ExportSeriesUseCase выгружает выровненные серии в CSV: строка на точку
// сетки, колонка на параметр. Файл уходит в объектное хранилище, запись
// о нем — в индекс экспортов
type ExportSeriesUseCase struct {
	loader   *LoadSeriesUseCase
	storage  port.ExportStorage
	metadata port.ExportMetadataRepository
	metrics  port.MetricsPublisher
	logger   *logger.Logger
}

// NewExportSeriesUseCase создает юзкейс экспорта
func NewExportSeriesUseCase(
	loader *LoadSeriesUseCase,
	storage port.ExportStorage,
	metadata port.ExportMetadataRepository,
	metrics port.MetricsPublisher,
	logger *logger.Logger,
) *ExportSeriesUseCase {
	return &ExportSeriesUseCase{
		loader:   loader,
		storage:  storage,
		metadata: metadata,
		metrics:  metrics,
		logger:   logger,
	}
}

// Execute строит CSV и загружает его в хранилище
func (uc *ExportSeriesUseCase) Execute(ctx context.Context, request ExportRequest) (*ExportResult, error) {
	if request.TeamID == "" {
		return nil, fmt.Errorf("team id is required")
	}
	if uc.storage == nil {
		return nil, fmt.Errorf("export storage is not configured")
	}

	series, err := uc.loader.Execute(ctx, request.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to load series for export: %w", err)
	}

	body, err := RenderCSV(series)
	if err != nil {
		return nil, fmt.Errorf("failed to render csv: %w", err)
	}

	now := time.Now().UTC()
	id := uuid.New().String()
	key := fmt.Sprintf("exports/%s/%s/%d_%s.csv",
		request.TeamID, now.Format("2006/01/02"), now.Unix(), id)

	url, err := uc.storage.PutObject(ctx, key, exportContentType, body)
	if err != nil {
		return nil, fmt.Errorf("failed to upload export: %w", err)
	}

	record := port.ExportMetadata{
		ID:           id,
		TeamID:       request.TeamID,
		S3Key:        key,
		URL:          url,
		ParameterIDs: request.Query.ParameterIDs,
		Start:        request.Query.Start.UTC(),
		End:          request.Query.End.UTC(),
		Cadence:      series.Cadence,
		RowCount:     len(series.Grid),
		SizeBytes:    len(body),
		CreatedAt:    now,
	}
	if uc.metadata != nil {
		if err := uc.metadata.Put(ctx, record); err != nil {
			// Файл уже в хранилище; потеря индексной записи не повод
			// отдавать клиенту ошибку
			uc.logger.Error("Failed to record export metadata", err, "export_id", id)
		}
	}

	if uc.metrics != nil {
		uc.metrics.Count(port.CounterExportsCreated, 1)
	}
	uc.logger.Info("Export created", "export_id", id, "key", key, "rows", len(series.Grid))

	return &ExportResult{
		ID:       id,
		URL:      url,
		Key:      key,
		RowCount: len(series.Grid),
		Size:     len(body),
	}, nil
}

// RenderCSV сериализует выровненные серии в CSV.
// Заголовок: timestamp, затем подпись каждой колонки. Времена — RFC3339
// в UTC; отсутствующее значение — пустая ячейка
func RenderCSV(series *dto.AlignedSeriesDTO) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := make([]string, 0, len(series.Columns)+1)
	header = append(header, "timestamp")
	for _, column := range series.Columns {
		header = append(header, column.Label)
	}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	row := make([]string, len(header))
	for i, slot := range series.Grid {
		row[0] = slot.UTC().Format(time.RFC3339)
		for j, column := range series.Columns {
			cell := ""
			if i < len(column.Values) && column.Values[i] != nil {
				cell = strconv.FormatFloat(*column.Values[i], 'f', -1, 64)
			}
			row[j+1] = cell
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
