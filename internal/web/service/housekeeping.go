package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tenantry/internal/web/store"
)

// DefaultEventRetention is how long app events are kept when no retention
// is configured.
const DefaultEventRetention = 90 * 24 * time.Hour

// HousekeepingService periodically prunes app events older than Retention.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration

	now func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService defaults a non-positive interval to one hour and a
// non-positive retention to DefaultEventRetention.
func NewHousekeepingService(s store.Store, logger *slog.Logger, interval, retention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = DefaultEventRetention
	}
	return &HousekeepingService{
		Store:     s,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		now:       time.Now,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start runs the worker in the background. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "retention", s.Retention)
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup deletes events created before now minus Retention and returns how
// many were removed.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	cutoff := s.now().Add(-s.Retention)

	n, err := s.Store.AppEvents().DeleteAppEventsBefore(ctx, cutoff)
	if err != nil {
		s.Logger.Error("failed to prune app events", "error", err)
		return 0
	}
	s.Logger.Info("housekeeping cleanup completed", "deleted_events", n, "cutoff", cutoff)
	return n
}
