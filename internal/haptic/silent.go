package haptic

import (
	"log/slog"
	"sync"
)

// Silent is a motor that only logs and counts pulses.
type Silent struct {
	mu        sync.Mutex
	intensity uint8
	pulses    int
}

func (s *Silent) Adjust(intensity uint8) {
	s.mu.Lock()
	s.intensity = intensity
	s.mu.Unlock()
}

func (s *Silent) Once() {
	s.mu.Lock()
	s.pulses++
	intensity := s.intensity
	s.mu.Unlock()
	slog.Debug("[HAPTIC] pulse", "intensity", intensity)
}

// Pulses returns how many pulses have been requested.
func (s *Silent) Pulses() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pulses
}

// Fixed wraps a motor and pins every pulse to one intensity.
type Fixed struct {
	Motor interface {
		Adjust(intensity uint8)
		Once()
	}
	Intensity uint8
}

func (f Fixed) Adjust(uint8) { f.Motor.Adjust(f.Intensity) }

func (f Fixed) Once() { f.Motor.Once() }
