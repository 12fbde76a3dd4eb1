package service

import (
	"fmt"
	"sync"

	"github.com/dreschagin/buoywatch/internal/domain/valueobject"
)

// UnitPreferences — предпочитаемая единица на категорию.
// Передается явно в каждый вызов конвертации, а не читается глобально
type UnitPreferences map[valueobject.UnitCategory]string

// Preferred возвращает предпочитаемую единицу для категории
func (p UnitPreferences) Preferred(category valueobject.UnitCategory) (string, bool) {
	unit, ok := p[category]
	return unit, ok
}

// DefaultUnitPreferences — единицы по умолчанию для новой сессии
func DefaultUnitPreferences() UnitPreferences {
	return UnitPreferences{
		valueobject.Temperature:   "°C",
		valueobject.Pressure:      "hPa",
		valueobject.Speed:         "m/s",
		valueobject.Distance:      "m",
		valueobject.Concentration: "µg/L",
	}
}

// PreferenceStore владеет изменяемыми предпочтениями единиц на процесс.
// Чтение атомарно в пределах категории; кросс-категорийная атомарность
// не требуется. Snapshot отдает копию, чтобы чистые функции не зависели
// от последующих мутаций
type PreferenceStore struct {
	mu    sync.RWMutex
	prefs UnitPreferences
}

// NewPreferenceStore создает хранилище с указанными значениями
// (nil — значения по умолчанию)
func NewPreferenceStore(initial UnitPreferences) *PreferenceStore {
	if initial == nil {
		initial = DefaultUnitPreferences()
	}
	prefs := make(UnitPreferences, len(initial))
	for category, unit := range initial {
		prefs[category] = unit
	}
	return &PreferenceStore{prefs: prefs}
}

// Snapshot возвращает копию текущих предпочтений
func (s *PreferenceStore) Snapshot() UnitPreferences {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(UnitPreferences, len(s.prefs))
	for category, unit := range s.prefs {
		out[category] = unit
	}
	return out
}

// Set обновляет предпочитаемую единицу одной категории
func (s *PreferenceStore) Set(category valueobject.UnitCategory, unit string) error {
	if err := category.Validate(); err != nil {
		return err
	}
	if unit == "" {
		return fmt.Errorf("unit for category %s cannot be empty", category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[category] = unit
	return nil
}
