package usecase

import (
	"sync"
	"time"

	"github.com/dreschagin/buoywatch/internal/application/dto"
	"github.com/dreschagin/buoywatch/internal/application/port"
	"github.com/dreschagin/buoywatch/pkg/logger"
)

// SpotlightState — состояние планировщика ротации
type SpotlightState string

const (
	SpotlightIdle    SpotlightState = "idle"
	SpotlightRunning SpotlightState = "running"
	SpotlightPaused  SpotlightState = "paused"
)

// DefaultSpotlightInterval — шаг ротации по умолчанию
const DefaultSpotlightInterval = 30 * time.Second

// SpotlightScheduler циклически переводит фокус по приоритизированному
// списку станций. Курсором владеет ровно одна инстанция планировщика.
//
// Приоритет: пока хотя бы одна станция критична, список кандидатов
// сужается до критичных; когда критичных не осталось — возвращается
// полный активный список
type SpotlightScheduler struct {
	mu         sync.Mutex
	candidates []string
	position   int
	state      SpotlightState
	critical   bool
	interval   time.Duration

	// Смена интервала, паузы или списка кандидатов отменяет и пересоздает
	// тикер: в полете всегда не больше одного тика
	stop       chan struct{}
	generation int

	notifier port.NotificationService
	logger   *logger.Logger
}

// NewSpotlightScheduler создает планировщик в состоянии Idle
func NewSpotlightScheduler(interval time.Duration, notifier port.NotificationService, logger *logger.Logger) *SpotlightScheduler {
	if interval <= 0 {
		interval = DefaultSpotlightInterval
	}
	return &SpotlightScheduler{
		state:    SpotlightIdle,
		interval: interval,
		notifier: notifier,
		logger:   logger,
	}
}

// SetCandidates пересобирает список кандидатов.
// active — активные станции в порядке приоритета, critical — множество
// станций с хотя бы одним красным параметром. Если ранее сфокусированная
// станция исчезла из нового списка, курсор сбрасывается на 0
func (s *SpotlightScheduler) SetCandidates(active []string, critical map[string]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.focusedLocked()

	next := active
	restrict := false
	if len(critical) > 0 {
		restricted := make([]string, 0, len(critical))
		for _, id := range active {
			if critical[id] {
				restricted = append(restricted, id)
			}
		}
		if len(restricted) > 0 {
			next = restricted
			restrict = true
		}
	}

	s.candidates = next
	s.critical = restrict

	// Защитный re-clamp позиции при сжатии списка
	s.position = indexOf(s.candidates, previous)
	if s.position < 0 {
		s.position = 0
	}

	s.syncStateLocked()
	s.restartTickerLocked()
}

// Start включает ротацию (Idle → Running при непустом списке)
func (s *SpotlightScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SpotlightIdle {
		return
	}
	s.state = SpotlightRunning
	s.syncStateLocked()
	s.restartTickerLocked()
}

// Stop выключает ротацию и переводит планировщик в Idle
func (s *SpotlightScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = SpotlightIdle
	s.stopTickerLocked()
}

// Pause приостанавливает ротацию без сброса позиции
func (s *SpotlightScheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SpotlightRunning {
		return
	}
	s.state = SpotlightPaused
	s.stopTickerLocked()
	s.logger.Debug("Spotlight paused", "position", s.position)
}

// Resume возобновляет ротацию с текущей позиции
func (s *SpotlightScheduler) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SpotlightPaused {
		return
	}
	s.state = SpotlightRunning
	s.restartTickerLocked()
	s.logger.Debug("Spotlight resumed", "position", s.position)
}

// SetInterval меняет шаг ротации; активный тикер пересоздается
func (s *SpotlightScheduler) SetInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.interval = interval
	s.restartTickerLocked()
}

// Advance переводит курсор на следующего кандидата с wrap-around
// и рассылает смену фокуса
func (s *SpotlightScheduler) Advance() {
	s.mu.Lock()

	if len(s.candidates) == 0 {
		s.mu.Unlock()
		return
	}

	s.position = (s.position + 1) % len(s.candidates)
	change := s.spotlightLocked()
	s.mu.Unlock()

	if s.notifier != nil && change != nil {
		s.notifier.BroadcastSpotlight(change)
	}
}

// Focused возвращает текущую сфокусированную станцию
func (s *SpotlightScheduler) Focused() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.focusedLocked()
	return id, id != ""
}

// State возвращает состояние планировщика
func (s *SpotlightScheduler) State() SpotlightState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *SpotlightScheduler) focusedLocked() string {
	if len(s.candidates) == 0 || s.position >= len(s.candidates) {
		return ""
	}
	return s.candidates[s.position]
}

func (s *SpotlightScheduler) spotlightLocked() *dto.SpotlightDTO {
	id := s.focusedLocked()
	if id == "" {
		return nil
	}
	return &dto.SpotlightDTO{
		StationID: id,
		Position:  s.position,
		Total:     len(s.candidates),
		Critical:  s.critical,
		ChangedAt: time.Now().UTC(),
	}
}

// syncStateLocked согласует Running/Idle с наличием кандидатов
func (s *SpotlightScheduler) syncStateLocked() {
	if s.state == SpotlightRunning && len(s.candidates) == 0 {
		s.state = SpotlightIdle
	}
}

func (s *SpotlightScheduler) stopTickerLocked() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	s.generation++
}

func (s *SpotlightScheduler) restartTickerLocked() {
	s.stopTickerLocked()

	if s.state != SpotlightRunning || len(s.candidates) == 0 {
		return
	}

	stop := make(chan struct{})
	s.stop = stop
	generation := s.generation
	interval := s.interval

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				// Устаревший тикер молчит после пересоздания
				s.mu.Lock()
				stale := generation != s.generation
				s.mu.Unlock()
				if stale {
					return
				}
				s.Advance()
			case <-stop:
				return
			}
		}
	}()
}

func indexOf(items []string, target string) int {
	if target == "" {
		return -1
	}
	for i, item := range items {
		if item == target {
			return i
		}
	}
	return -1
}
