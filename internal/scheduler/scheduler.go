// Package scheduler keeps the model catalog current by refreshing it from
// the configured sources on a fixed interval.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/carbonscope/co2-diagnostics/internal/cmip"
)

// Scheduler periodically re-lists the models of every configured source.
type Scheduler struct {
	scheduler *gocron.Scheduler
	catalog   *cmip.Catalog
	sources   []cmip.Source
	interval  time.Duration
	log       *slog.Logger
}

// New creates a new Scheduler over the given catalog and sources.
func New(catalog *cmip.Catalog, sources []cmip.Source, interval time.Duration, log *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		catalog:   catalog,
		sources:   sources,
		interval:  interval,
		log:       log,
	}
}

// Start schedules the periodic refresh and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.sources) == 0 {
		s.log.Info("no model sources configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 360
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		s.log.Debug("refreshing model catalog")
		if err := cmip.RefreshCatalog(ctx, s.catalog, s.sources...); err != nil {
			s.log.Warn("catalog refresh failed", "error", err)
			return
		}
		models := 0
		for _, names := range s.catalog.Models() {
			models += len(names)
		}
		s.log.Info("model catalog refreshed", "models", models)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future refreshes.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
