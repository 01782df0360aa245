package ingest

import (
	"context"

	"nflstats/ingestion/internal/feed"
	"nflstats/ingestion/internal/models"
	"nflstats/ingestion/internal/repository"
)

// Store is the persistence the ingest pipeline writes through.
// *repository.Database implements it.
type Store interface {
	Table(name string) repository.Table
	Upsert(ctx context.Context, t repository.Table, keyColumn string, keyValue any, fields map[string]any) (int64, bool, error)
	ResolvePeriod(ctx context.Context, kind models.PeriodKind, key models.PeriodKey, fields map[string]any) (int64, bool, error)
	FindPlayerBy(ctx context.Context, column, value string) (int64, error)
	FindPlayerByIDOrName(ctx context.Context, idColumn, id, fullName string) (int64, error)
	BackfillPlayerID(ctx context.Context, playerID int64, column, value string) error
	InsertUnmatched(ctx context.Context, u *models.UnmatchedPlayer) error
	CallProcedure(ctx context.Context, name string) error
}

// Source yields the rows published at a feed URL
type Source interface {
	Rows(ctx context.Context, url string) ([]feed.Raw, error)
}

// RunTracker coordinates runs of the same family across processes and keeps
// a record of the last run
type RunTracker interface {
	AcquireRun(ctx context.Context, family string) (token string, ok bool, err error)
	ReleaseRun(ctx context.Context, family, token string) error
	RecordRun(ctx context.Context, family string, fields map[string]any) error
}

var _ Store = (*repository.Database)(nil)
