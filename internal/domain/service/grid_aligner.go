package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/dreschagin/buoywatch/internal/domain/entity"
)

// DefaultCadence — шаг нормализационной сетки по умолчанию
const DefaultCadence = 10 * time.Minute

// GridAligner строит сетку с фиксированным шагом и укладывает на нее
// нерегулярные отсчеты (Domain Service, stateless)
//
// Общая сетка для нескольких серий обязательна: построчно выровненные
// колонки нужны и графикам, и табличному экспорту
type GridAligner struct{}

// NewGridAligner создает aligner
func NewGridAligner() *GridAligner {
	return &GridAligner{}
}

// BuildGrid возвращает все выровненные по шагу моменты от первой точки
// сетки >= start до последней <= end включительно.
// start > end дает пустую сетку, это не ошибка.
// Неположительный шаг — нарушение контракта вызывающей стороной, panic
func (a *GridAligner) BuildGrid(start, end time.Time, cadence time.Duration) []time.Time {
	if cadence <= 0 {
		panic(fmt.Sprintf("grid cadence must be positive, got %v", cadence))
	}
	if start.After(end) {
		return []time.Time{}
	}

	first := start.Truncate(cadence)
	if first.Before(start) {
		first = first.Add(cadence)
	}
	if first.After(end) {
		return []time.Time{}
	}

	grid := make([]time.Time, 0, end.Sub(first)/cadence+1)
	for t := first; !t.After(end); t = t.Add(cadence) {
		grid = append(grid, t)
	}

	return grid
}

// ForwardFill укладывает серию на сетку переносом последнего известного
// значения вперед. Серия сортируется по времени в защитной копии.
// Для каждой точки сетки курсор поглощает все отсчеты с timestamp <= точки,
// последнее поглощенное значение становится текущим. До первого отсчета
// слоты остаются nil; nil-отсчет (пропуск) переносится как пропуск.
// Амортизированная стоимость O(series + grid) за один проход
func (a *GridAligner) ForwardFill(series []entity.Measurement, grid []time.Time) []*float64 {
	values := make([]*float64, len(grid))
	if len(series) == 0 {
		return values
	}

	sorted := sortedCopy(series)

	cursor := 0
	var current *float64
	seen := false

	for i, slot := range grid {
		for cursor < len(sorted) && !sorted[cursor].Timestamp.After(slot) {
			current = sorted[cursor].Value
			seen = true
			cursor++
		}
		if seen {
			values[i] = current
		}
	}

	return values
}

// NearestFill укладывает серию на сетку выбором ближайшего отсчета в
// пределах окна tolerance. Используется для выравнивания мгновенных событий.
// Нет отсчета в окне — слот остается nil
func (a *GridAligner) NearestFill(series []entity.Measurement, grid []time.Time, tolerance time.Duration) []*float64 {
	values := make([]*float64, len(grid))
	if len(series) == 0 || tolerance < 0 {
		return values
	}

	sorted := sortedCopy(series)

	cursor := 0
	for i, slot := range grid {
		// Сдвигаем курсор к первому отсчету, который еще может быть ближайшим
		for cursor+1 < len(sorted) && absDuration(sorted[cursor+1].Timestamp.Sub(slot)) <= absDuration(sorted[cursor].Timestamp.Sub(slot)) {
			cursor++
		}
		if diff := absDuration(sorted[cursor].Timestamp.Sub(slot)); diff <= tolerance {
			values[i] = sorted[cursor].Value
		}
	}

	return values
}

// SeriesInput — одна входная серия для многосерийного выравнивания
type SeriesInput struct {
	Label        string
	Measurements []entity.Measurement
}

// AlignedColumn — колонка выровненной таблицы
type AlignedColumn struct {
	Label  string
	Values []*float64
}

// AlignedTable — таблица "строка на точку сетки, колонка на серию".
// Единая структура для графиков сравнения и CSV-экспорта
type AlignedTable struct {
	Grid    []time.Time
	Columns []AlignedColumn
}

// AlignTable прогоняет ForwardFill независимо для каждой серии
// против одной общей сетки
func (a *GridAligner) AlignTable(grid []time.Time, series ...SeriesInput) *AlignedTable {
	table := &AlignedTable{
		Grid:    grid,
		Columns: make([]AlignedColumn, 0, len(series)),
	}

	for _, s := range series {
		table.Columns = append(table.Columns, AlignedColumn{
			Label:  s.Label,
			Values: a.ForwardFill(s.Measurements, grid),
		})
	}

	return table
}

// RowCount возвращает количество строк таблицы
func (t *AlignedTable) RowCount() int {
	return len(t.Grid)
}

func sortedCopy(series []entity.Measurement) []entity.Measurement {
	sorted := make([]entity.Measurement, len(series))
	copy(sorted, series)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
