package usecase

import (
	"reflect"
	"testing"
	"time"
)

func TestSpotlightRotationOrder(t *testing.T) {
	notifier := &mockNotifier{}
	s := NewSpotlightScheduler(time.Minute, notifier, testLogger())
	s.SetCandidates([]string{"buoy-a", "buoy-b", "buoy-c"}, nil)

	if focused, ok := s.Focused(); !ok || focused != "buoy-a" {
		t.Fatalf("expected initial focus on buoy-a, got %q (%v)", focused, ok)
	}

	for i := 0; i < 5; i++ {
		s.Advance()
	}

	want := []string{"buoy-b", "buoy-c", "buoy-a", "buoy-b", "buoy-c"}
	if got := notifier.spotlightStations(); !reflect.DeepEqual(got, want) {
		t.Errorf("rotation visited %v, want %v", got, want)
	}
}

func TestSpotlightCriticalRestriction(t *testing.T) {
	notifier := &mockNotifier{}
	s := NewSpotlightScheduler(time.Minute, notifier, testLogger())
	s.SetCandidates([]string{"buoy-a", "buoy-b", "buoy-c"}, map[string]bool{"buoy-b": true})

	// The rotation set collapses to the critical stations only.
	if focused, ok := s.Focused(); !ok || focused != "buoy-b" {
		t.Fatalf("expected focus on the critical station, got %q (%v)", focused, ok)
	}

	s.Advance()
	s.Advance()
	for _, station := range notifier.spotlightStations() {
		if station != "buoy-b" {
			t.Fatalf("expected rotation to stay within critical stations, visited %s", station)
		}
	}

	// When the last critical station recovers, the full set is restored.
	s.SetCandidates([]string{"buoy-a", "buoy-b", "buoy-c"}, nil)
	if focused, _ := s.Focused(); focused != "buoy-b" {
		t.Errorf("expected focus to stay on buoy-b after recovery, got %q", focused)
	}
	s.Advance()
	stations := notifier.spotlightStations()
	if last := stations[len(stations)-1]; last != "buoy-c" {
		t.Errorf("expected rotation to continue to buoy-c, got %s", last)
	}
}

func TestSpotlightFocusedStationVanishes(t *testing.T) {
	s := NewSpotlightScheduler(time.Minute, &mockNotifier{}, testLogger())
	s.SetCandidates([]string{"buoy-a", "buoy-b", "buoy-c"}, nil)
	s.Advance() // focus buoy-b
	s.Advance() // focus buoy-c

	s.SetCandidates([]string{"buoy-a", "buoy-b"}, nil)
	if focused, ok := s.Focused(); !ok || focused != "buoy-a" {
		t.Fatalf("expected the cursor to reset to the first candidate, got %q (%v)", focused, ok)
	}
}

func TestSpotlightPauseResumeKeepsPosition(t *testing.T) {
	s := NewSpotlightScheduler(time.Minute, &mockNotifier{}, testLogger())
	s.SetCandidates([]string{"buoy-a", "buoy-b", "buoy-c"}, nil)
	s.Start()
	s.Advance() // focus buoy-b

	s.Pause()
	if got := s.State(); got != SpotlightPaused {
		t.Fatalf("expected paused state, got %s", got)
	}
	if focused, _ := s.Focused(); focused != "buoy-b" {
		t.Fatalf("expected pause to keep the position, got %q", focused)
	}

	s.Resume()
	if got := s.State(); got != SpotlightRunning {
		t.Fatalf("expected running state after resume, got %s", got)
	}
	if focused, _ := s.Focused(); focused != "buoy-b" {
		t.Errorf("expected resume to keep the position, got %q", focused)
	}

	s.Stop()
	if got := s.State(); got != SpotlightIdle {
		t.Errorf("expected idle state after stop, got %s", got)
	}
}

func TestSpotlightEmptyCandidates(t *testing.T) {
	notifier := &mockNotifier{}
	s := NewSpotlightScheduler(time.Minute, notifier, testLogger())

	s.Advance()
	if len(notifier.spotlightStations()) != 0 {
		t.Fatal("expected no broadcasts without candidates")
	}
	if _, ok := s.Focused(); ok {
		t.Fatal("expected no focus without candidates")
	}

	s.SetCandidates([]string{"buoy-a"}, nil)
	s.Start()
	s.SetCandidates(nil, nil)
	if got := s.State(); got != SpotlightIdle {
		t.Errorf("expected the scheduler to fall back to idle when candidates vanish, got %s", got)
	}
}
