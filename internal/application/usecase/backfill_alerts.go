package usecase

import (
	"context"
	"fmt"

	"github.com/dreschagin/buoywatch/internal/application/dto"
	"github.com/dreschagin/buoywatch/internal/application/port"
)

const defaultAlertPageSize = 100

// BackfillAlertsUseCase отдает историю алертов постранично — для первичной
// загрузки ленты до того, как пойдет живой поток
type BackfillAlertsUseCase struct {
	feed port.AlertFeed
}

// NewBackfillAlertsUseCase создает юзкейс бэкафилла ленты
func NewBackfillAlertsUseCase(feed port.AlertFeed) *BackfillAlertsUseCase {
	return &BackfillAlertsUseCase{feed: feed}
}

// Execute возвращает страницу алертов по критериям, newest-first
func (uc *BackfillAlertsUseCase) Execute(ctx context.Context, criteria port.AlertCriteria, offset, limit int) ([]*dto.AlertEventDTO, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultAlertPageSize
	}

	events, err := uc.feed.FetchAlerts(ctx, criteria, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch alerts: %w", err)
	}
	return dto.ToAlertEventDTOs(events), nil
}
