package port

import (
	"context"
	"time"
)

// ExportMetadata — учетная запись одного созданного экспорта
type ExportMetadata struct {
	ID           string        `json:"id"`
	TeamID       string        `json:"team_id"`
	S3Key        string        `json:"s3_key"`
	URL          string        `json:"url"`
	ParameterIDs []int64       `json:"parameter_ids"`
	Start        time.Time     `json:"start"`
	End          time.Time     `json:"end"`
	Cadence      time.Duration `json:"cadence"`
	RowCount     int           `json:"row_count"`
	SizeBytes    int           `json:"size_bytes"`
	CreatedAt    time.Time     `json:"created_at"`
}

// ExportMetadataRepository — индекс созданных экспортов
type ExportMetadataRepository interface {
	Put(ctx context.Context, record ExportMetadata) error

	// List возвращает записи команды, newest-first
	List(ctx context.Context, teamID string, limit int) ([]ExportMetadata, error)
}
