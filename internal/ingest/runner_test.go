package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nflstats/ingestion/internal/config"
)

type funcRunner struct {
	calls atomic.Int32
	run   func(ctx context.Context) (Summary, error)
}

func (f *funcRunner) Run(ctx context.Context) (Summary, error) {
	f.calls.Add(1)
	return f.run(ctx)
}

func okRunner(name string, rows int) *funcRunner {
	return &funcRunner{run: func(context.Context) (Summary, error) {
		return Summary{Family: name, Rows: rows}, nil
	}}
}

func TestRunSelected_FailingFamilyDoesNotStopSiblings(t *testing.T) {
	boom := errors.New("store unavailable")
	players := okRunner("players", 10)
	weekly := &funcRunner{run: func(context.Context) (Summary, error) {
		return Summary{Family: "weekly_offense"}, boom
	}}
	ngs := okRunner("ngs_passing", 4)
	skipped := okRunner("pfr_passing", 1)

	r := NewRunner(map[string]FamilyRunner{
		"players":        players,
		"weekly_offense": weekly,
		"ngs_passing":    ngs,
		"pfr_passing":    skipped,
	})

	results, err := r.RunSelected(context.Background(), map[string]bool{
		"players":        true,
		"weekly_offense": true,
		"ngs_passing":    true,
		"pfr_passing":    false,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "weekly_offense")

	require.Len(t, results, 3)
	assert.Equal(t, "ngs_passing", results[0].Family)
	assert.Equal(t, 4, results[0].Summary.Rows)
	assert.Equal(t, "players", results[1].Family)
	assert.NoError(t, results[1].Err)
	assert.Equal(t, "weekly_offense", results[2].Family)
	assert.ErrorIs(t, results[2].Err, boom)

	assert.Equal(t, int32(1), players.calls.Load())
	assert.Equal(t, int32(1), ngs.calls.Load())
	assert.Zero(t, skipped.calls.Load(), "unselected families do not run")
}

func TestRunSelected_UnknownFamily(t *testing.T) {
	players := okRunner("players", 1)
	r := NewRunner(map[string]FamilyRunner{"players": players})

	_, err := r.RunSelected(context.Background(), map[string]bool{"players": true, "punting": true})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "punting")
	assert.Zero(t, players.calls.Load())
}

func TestRunSelected_NothingSelected(t *testing.T) {
	r := NewRunner(map[string]FamilyRunner{"players": okRunner("players", 1)})

	results, err := r.RunSelected(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSelection(t *testing.T) {
	r := NewRunner(map[string]FamilyRunner{
		"players":        okRunner("players", 0),
		"weekly_offense": okRunner("weekly_offense", 0),
	})

	assert.Equal(t, map[string]bool{"players": true, "weekly_offense": true}, r.Selection(nil, false))
	assert.Equal(t, map[string]bool{"players": true, "weekly_offense": true}, r.Selection([]string{"players"}, true))
	assert.Equal(t, map[string]bool{"players": true}, r.Selection([]string{" players ", ""}, false))
}

func TestBuildRunner_ShippedCatalog(t *testing.T) {
	feeds, err := config.LoadFeeds(filepath.Join("..", "..", "configs", "feeds.yaml"))
	require.NoError(t, err)

	r, err := BuildRunner(feeds, newMemStore(), new(mockSource), WithWorkers(4))
	require.NoError(t, err)

	assert.Equal(t, feeds.Names(), r.Names())
	svc, ok := r.families["pfr_passing"].(*Service)
	require.True(t, ok)
	assert.True(t, svc.Family().Identity.Fallback)
	assert.Equal(t, 4, svc.workers)
}
