package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type queryCall struct {
	sql  string
	args []any
}

// fakeRow scans canned values into destinations
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("fakeRow: %d destinations for %d values", len(dest), len(r.values))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *int64:
			*p = r.values[i].(int64)
		case *time.Time:
			*p = r.values[i].(time.Time)
		default:
			return fmt.Errorf("fakeRow: unsupported destination %T", d)
		}
	}
	return nil
}

// fakeQuerier replays scripted results in call order and records every statement
type fakeQuerier struct {
	mu      sync.Mutex
	rows    []fakeRow
	tags    []pgconn.CommandTag
	execErr error
	queries []queryCall
	execs   []queryCall
}

func (f *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, queryCall{sql: sql, args: args})
	if len(f.rows) == 0 {
		return fakeRow{err: fmt.Errorf("fakeQuerier: unexpected query %q", sql)}
	}
	r := f.rows[0]
	f.rows = f.rows[1:]
	return r
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execs = append(f.execs, queryCall{sql: sql, args: args})
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	if len(f.tags) == 0 {
		return pgconn.NewCommandTag("UPDATE 1"), nil
	}
	t := f.tags[0]
	f.tags = f.tags[1:]
	return t, nil
}

func idRow(id int64) fakeRow { return fakeRow{values: []any{id}} }

func noRows() fakeRow { return fakeRow{err: pgx.ErrNoRows} }
