// Package schedule runs the in-process scrape triggers: a deep pass once a
// day at a configured hour and a shallow pass every hour.
package schedule

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eventara/events-cli/internal/engine"
)

// Config tunes the two trigger loops.
type Config struct {
	DailyHour      int           // local hour (0-23) for the deep pass
	DailyMaxPages  int           // page cap for the deep pass
	HourlyInterval time.Duration // shallow pass interval; default 1h
	HourlyMaxPages int           // page cap for the shallow pass
}

// Scheduler drives the Engine on timers. Both loops are independent; a slow
// or failing pass never delays the other loop.
type Scheduler struct {
	engine *engine.Engine
	cfg    Config
	log    *zap.Logger

	// now is swapped in tests.
	now func() time.Time
}

// New creates a Scheduler over the given engine.
func New(e *engine.Engine, cfg Config) *Scheduler {
	if cfg.DailyMaxPages <= 0 {
		cfg.DailyMaxPages = 10
	}
	if cfg.HourlyInterval <= 0 {
		cfg.HourlyInterval = time.Hour
	}
	if cfg.HourlyMaxPages <= 0 {
		cfg.HourlyMaxPages = 2
	}
	return &Scheduler{
		engine: e,
		cfg:    cfg,
		log:    zap.L().With(zap.String("component", "schedule")),
		now:    time.Now,
	}
}

// Run starts both trigger loops. It blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.Info("starting scheduler",
		zap.Int("daily_hour", s.cfg.DailyHour),
		zap.Int("daily_max_pages", s.cfg.DailyMaxPages),
		zap.Duration("hourly_interval", s.cfg.HourlyInterval),
		zap.Int("hourly_max_pages", s.cfg.HourlyMaxPages),
	)

	done := make(chan struct{})
	go func() {
		s.runDaily(ctx)
		close(done)
	}()
	s.runHourly(ctx)
	<-done

	s.log.Info("scheduler stopped")
}

func (s *Scheduler) runHourly(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.HourlyInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pass(ctx, "hourly", engine.Options{MaxPages: s.cfg.HourlyMaxPages})
		}
	}
}

func (s *Scheduler) runDaily(ctx context.Context) {
	for {
		wait := s.untilDaily(s.now())
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.pass(ctx, "daily", engine.Options{
				MaxPages:     s.cfg.DailyMaxPages,
				FetchDetails: true,
			})
		}
	}
}

// untilDaily returns the duration until the next occurrence of the
// configured daily hour.
func (s *Scheduler) untilDaily(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.cfg.DailyHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

func (s *Scheduler) pass(ctx context.Context, kind string, opts engine.Options) {
	start := s.now()
	summary := s.engine.RunAll(ctx, opts)
	s.log.Info("scheduled pass complete",
		zap.String("pass", kind),
		zap.String("status", string(summary.Status)),
		zap.Int("scraped", summary.ScrapedEvents),
		zap.Int("saved", summary.SavedEvents),
		zap.Duration("took", s.now().Sub(start)),
	)
}
