package sandbox

import (
	"context"
	"time"
)

// TickerScheduler paces frames on the wall clock, like a display refresh.
type TickerScheduler struct {
	ticker *time.Ticker
}

func NewTickerScheduler(fps int) *TickerScheduler {
	if fps < 1 {
		fps = 60
	}
	return &TickerScheduler{ticker: time.NewTicker(time.Second / time.Duration(fps))}
}

func (t *TickerScheduler) Next(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.ticker.C:
		return nil
	}
}

func (t *TickerScheduler) Stop() { t.ticker.Stop() }

// SimulatedScheduler advances a ManualSource by one period per frame
// without sleeping, and finishes once duration seconds have been covered.
type SimulatedScheduler struct {
	src      *ManualSource
	period   float64
	duration float64
	elapsed  float64
}

func NewSimulatedScheduler(src *ManualSource, fps int, duration float64) *SimulatedScheduler {
	if fps < 1 {
		fps = 60
	}
	return &SimulatedScheduler{src: src, period: 1 / float64(fps), duration: duration}
}

func (s *SimulatedScheduler) Next(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.elapsed+s.period > s.duration+1e-9 {
		return ErrSchedulerDone
	}
	s.elapsed += s.period
	s.src.Advance(s.period)
	return nil
}

func (s *SimulatedScheduler) Elapsed() float64 { return s.elapsed }
