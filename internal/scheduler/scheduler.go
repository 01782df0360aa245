package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nflstats/ingestion/internal/config"
	"nflstats/ingestion/internal/ingest"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// FamilyRunner selects and runs feed families
type FamilyRunner interface {
	Selection(names []string, all bool) map[string]bool
	RunSelected(ctx context.Context, flags map[string]bool) ([]ingest.Result, error)
}

// PoolMonitor publishes connection pool statistics
type PoolMonitor interface {
	RefreshPoolMetrics()
}

// Scheduler manages background ingestion:
// - scheduled runs of the configured families on INGEST_CRON
// - periodic refresh of connection pool metrics
// A scheduled run is skipped while the previous one is still going.
type Scheduler struct {
	cfg      *config.Config
	runner   FamilyRunner
	pool     PoolMonitor
	cron     *cron.Cron
	ticker   *time.Ticker
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg *config.Config, runner FamilyRunner, pool PoolMonitor) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		runner: runner,
		pool:   pool,
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger{}),
			cron.SkipIfStillRunning(cronLogger{}),
		)),
		stopChan: make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.cfg.IngestCron, func() {
		log.Info().Msg("Running scheduled ingestion...")
		if err := s.RunOnce(ctx); err != nil {
			log.Error().Err(err).Msg("Scheduled ingestion finished with errors")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule ingestion: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.IngestCron).
		Strs("families", s.cfg.IngestFamilies).
		Msg("Ingestion scheduled")

	if s.pool != nil && s.cfg.PoolMetricsInterval > 0 {
		s.ticker = time.NewTicker(s.cfg.PoolMetricsInterval)
		go s.pollPoolStats(ctx)
	}

	return nil
}

// RunOnce runs the configured families once. An empty INGEST_FAMILIES
// selects every family in the catalog.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	start := time.Now()
	results, err := s.runner.RunSelected(ctx, s.runner.Selection(s.cfg.IngestFamilies, false))

	rows := 0
	for _, r := range results {
		rows += r.Summary.Rows
	}
	log.Info().
		Int("families", len(results)).
		Int("rows", rows).
		Dur("duration", time.Since(start)).
		Msg("Ingestion run complete")

	return err
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		log.Info().Msg("Stopping scheduler...")

		if s.cron != nil {
			<-s.cron.Stop().Done()
		}

		if s.ticker != nil {
			s.ticker.Stop()
		}

		close(s.stopChan)
		log.Info().Msg("Scheduler stopped")
	})
}

func (s *Scheduler) pollPoolStats(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-s.ticker.C:
			s.pool.RefreshPoolMetrics()
		}
	}
}

// cronLogger routes cron's own logging through zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
