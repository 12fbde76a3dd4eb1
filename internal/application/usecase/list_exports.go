package usecase

import (
	"context"
	"fmt"

	"github.com/dreschagin/buoywatch/internal/application/port"
)

const defaultExportListLimit = 50

// ListExportsUseCase возвращает историю экспортов команды
type ListExportsUseCase struct {
	metadata port.ExportMetadataRepository
}

// NewListExportsUseCase создает юзкейс списка экспортов
func NewListExportsUseCase(metadata port.ExportMetadataRepository) *ListExportsUseCase {
	return &ListExportsUseCase{metadata: metadata}
}

// Execute возвращает записи команды, newest-first
func (uc *ListExportsUseCase) Execute(ctx context.Context, teamID string, limit int) ([]port.ExportMetadata, error) {
	if teamID == "" {
		return nil, fmt.Errorf("team id is required")
	}
	if uc.metadata == nil {
		return []port.ExportMetadata{}, nil
	}
	if limit <= 0 {
		limit = defaultExportListLimit
	}

	records, err := uc.metadata.List(ctx, teamID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	return records, nil
}
