package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"nflstats/ingestion/internal/feed"
	"nflstats/ingestion/internal/metrics"
)

// DefaultWorkers bounds row concurrency when no pool size is known
const DefaultWorkers = 10

// Summary reports the result of one family run
type Summary struct {
	Family    string
	URLs      int
	Rows      int
	Created   int
	Updated   int
	Unmatched int
	Failed    int
	Duration  time.Duration
	Skipped   bool // another process held the run lock
}

// Fields flattens the summary for the run ledger
func (s Summary) Fields() map[string]any {
	return map[string]any{
		"urls":        s.URLs,
		"rows":        s.Rows,
		"created":     s.Created,
		"updated":     s.Updated,
		"unmatched":   s.Unmatched,
		"failed":      s.Failed,
		"duration_ms": s.Duration.Milliseconds(),
		"finished_at": time.Now().UTC().Format(time.RFC3339),
	}
}

func (s *Summary) count(o Outcome) {
	s.Rows++
	switch o {
	case OutcomeCreated:
		s.Created++
	case OutcomeUpdated:
		s.Updated++
	case OutcomeUnmatched:
		s.Unmatched++
	default:
		s.Failed++
	}
}

// Option configures a Service
type Option func(*Service)

// WithWorkers bounds how many rows are processed at once
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithTracker enables the cross-process run lock and run ledger
func WithTracker(t RunTracker) Option {
	return func(s *Service) {
		s.tracker = t
	}
}

// Service runs the full ingest cycle for one family
type Service struct {
	family       *Family
	store        Store
	source       Source
	orchestrator *Orchestrator
	workers      int
	tracker      RunTracker
}

// NewService creates the service for one family
func NewService(family *Family, store Store, source Source, opts ...Option) *Service {
	s := &Service{
		family:       family,
		store:        store,
		source:       source,
		orchestrator: NewOrchestrator(store, family),
		workers:      DefaultWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Family returns the family the service ingests
func (s *Service) Family() *Family {
	return s.family
}

// Run fetches every URL of the family concurrently and processes all rows
// through a worker pool. A URL that cannot be fetched contributes no rows.
// Row failures do not stop sibling rows; they are joined into the returned
// error. Configured procedures run only after a run without row failures.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	summary := Summary{Family: s.family.Name, URLs: len(s.family.URLs)}
	logger := log.With().Str("family", s.family.Name).Logger()

	if s.tracker != nil {
		token, ok, err := s.tracker.AcquireRun(ctx, s.family.Name)
		if err != nil {
			logger.Warn().Err(err).Msg("Run lock unavailable, continuing without it")
		} else if !ok {
			logger.Info().Msg("Family already running elsewhere, skipping")
			summary.Skipped = true
			metrics.RecordFamilyRun(s.family.Name, "skipped", time.Since(start).Seconds())
			return summary, nil
		} else {
			defer func() {
				if err := s.tracker.ReleaseRun(context.WithoutCancel(ctx), s.family.Name, token); err != nil {
					logger.Warn().Err(err).Msg("Failed to release run lock")
				}
			}()
		}
	}

	logger.Info().Int("urls", len(s.family.URLs)).Msg("Starting feed family run")

	var (
		mu   sync.Mutex
		errs []error
		rows sync.WaitGroup
	)
	sem := semaphore.NewWeighted(int64(s.workers))

	// urls returns the cancellation that stopped dispatch, if any
	var urls errgroup.Group
	for _, url := range s.family.URLs {
		urls.Go(func() error {
			raws, err := s.source.Rows(ctx, url)
			if err != nil {
				metrics.RecordError("fetch", "feed")
				logger.Error().Err(err).Str("url", url).Msg("Failed to load feed, treating as empty")
				return nil
			}
			logger.Info().Str("url", url).Int("rows", len(raws)).Msg("Feed loaded")

			for i, raw := range raws {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := sem.Acquire(ctx, 1); err != nil {
					// cancelled: stop dispatching
					return err
				}
				rows.Add(1)
				go func(i int, raw feed.Raw) {
					defer rows.Done()
					defer sem.Release(1)

					outcome, err := s.orchestrator.ProcessRow(ctx, raw)
					metrics.RecordRow(s.family.Name, string(outcome))

					mu.Lock()
					defer mu.Unlock()
					summary.count(outcome)
					if err != nil {
						errs = append(errs, fmt.Errorf("%s row %d: %w", url, i+1, err))
						logger.Warn().Err(err).Str("url", url).Int("row", i+1).Msg("Row failed")
					}
				}(i, raw)
			}
			return nil
		})
	}

	dispatchErr := urls.Wait()
	rows.Wait()

	err := errors.Join(errs...)
	if dispatchErr != nil {
		err = errors.Join(err, dispatchErr)
	}

	if err == nil {
		for _, proc := range s.family.Procedures {
			if perr := s.store.CallProcedure(ctx, proc); perr != nil {
				err = errors.Join(err, perr)
			}
		}
	}

	summary.Duration = time.Since(start)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordFamilyRun(s.family.Name, status, summary.Duration.Seconds())

	if s.tracker != nil {
		fields := summary.Fields()
		fields["status"] = status
		if rerr := s.tracker.RecordRun(context.WithoutCancel(ctx), s.family.Name, fields); rerr != nil {
			logger.Warn().Err(rerr).Msg("Failed to record run")
		}
	}

	logger.Info().
		Int("rows", summary.Rows).
		Int("created", summary.Created).
		Int("updated", summary.Updated).
		Int("unmatched", summary.Unmatched).
		Int("failed", summary.Failed).
		Dur("duration", summary.Duration).
		Msg("Feed family run finished")

	return summary, err
}
