package metrics

import "github.com/san-kum/sandbox/internal/physics"

// SleepRatio is the fraction of observed bodies asleep in the latest frame.
type SleepRatio struct {
	name     string
	sleeping int
	total    int
}

func NewSleepRatio() *SleepRatio {
	return &SleepRatio{name: "sleep_ratio"}
}

func (s *SleepRatio) Name() string { return s.name }

func (s *SleepRatio) Observe(bodies []*physics.Body, t float64) {
	s.sleeping, s.total = 0, len(bodies)
	for _, b := range bodies {
		if b.IsSleeping() {
			s.sleeping++
		}
	}
}

func (s *SleepRatio) Value() float64 {
	if s.total == 0 {
		return 0
	}
	return float64(s.sleeping) / float64(s.total)
}

func (s *SleepRatio) Reset() {
	s.sleeping = 0
	s.total = 0
}
