package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"nflstats/ingestion/internal/config"
)

// FamilyRunner runs one family to completion
type FamilyRunner interface {
	Run(ctx context.Context) (Summary, error)
}

// Result is the outcome of one family within a bulk run
type Result struct {
	Family  string
	Summary Summary
	Err     error
}

// Runner runs a selection of families concurrently
type Runner struct {
	families map[string]FamilyRunner
}

// NewRunner creates a runner over the given families keyed by name
func NewRunner(families map[string]FamilyRunner) *Runner {
	return &Runner{families: families}
}

// BuildRunner creates one Service per configured family
func BuildRunner(feeds *config.FeedsConfig, store Store, source Source, opts ...Option) (*Runner, error) {
	families := make(map[string]FamilyRunner, len(feeds.Feeds))
	for _, name := range feeds.Names() {
		f, err := BuildFamily(name, feeds.Feeds[name])
		if err != nil {
			return nil, err
		}
		families[name] = NewService(f, store, source, opts...)
	}
	return NewRunner(families), nil
}

// Names returns the known family names, sorted
func (r *Runner) Names() []string {
	names := make([]string, 0, len(r.families))
	for n := range r.families {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Selection turns a list of family names into run flags. With all set, or an
// empty list, every known family is selected.
func (r *Runner) Selection(names []string, all bool) map[string]bool {
	flags := make(map[string]bool)
	if all || len(names) == 0 {
		for _, n := range r.Names() {
			flags[n] = true
		}
		return flags
	}
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			flags[n] = true
		}
	}
	return flags
}

// RunSelected runs every family whose flag is set. Families run concurrently
// and a failing family never stops its siblings; each failure is logged with
// the family name and joined into the returned error. Results are ordered by
// family name.
func (r *Runner) RunSelected(ctx context.Context, flags map[string]bool) ([]Result, error) {
	var selected, unknown []string
	for name, on := range flags {
		if !on {
			continue
		}
		if _, ok := r.families[name]; !ok {
			unknown = append(unknown, name)
			continue
		}
		selected = append(selected, name)
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown feed families: %s", strings.Join(unknown, ", "))
	}
	sort.Strings(selected)

	results := make([]Result, len(selected))
	var (
		mu   sync.Mutex
		errs []error
		wg   sync.WaitGroup
	)

	for i, name := range selected {
		wg.Add(1)
		go func() {
			defer wg.Done()
			summary, err := r.families[name].Run(ctx)
			results[i] = Result{Family: name, Summary: summary, Err: err}
			if err != nil {
				log.Error().Err(err).Str("family", name).Msg("Feed family failed")
				mu.Lock()
				errs = append(errs, fmt.Errorf("family %s: %w", name, err))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return results, errors.Join(errs...)
}
