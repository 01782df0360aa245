package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"nflstats/ingestion/internal/models"
	"nflstats/ingestion/internal/repository"
)

// memStore is an in-memory Store keyed like the Postgres schema
type memStore struct {
	mu        sync.Mutex
	tables    map[string]map[int64]map[string]any
	nextID    int64
	unmatched []*models.UnmatchedPlayer
	procs     []string

	identityQueries atomic.Int32
	inflight        atomic.Int32
	maxInflight     atomic.Int32
	lookupDelay     time.Duration

	// failUpsert fails writes to a table when it returns an error
	failUpsert func(table string, keyValue any) error
	failLookup error
}

func newMemStore() *memStore {
	return &memStore{tables: map[string]map[int64]map[string]any{}}
}

func same(a, b any) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func (m *memStore) table(name string) map[int64]map[string]any {
	t, ok := m.tables[name]
	if !ok {
		t = map[int64]map[string]any{}
		m.tables[name] = t
	}
	return t
}

// sortedIDs gives the store a stable natural order
func sortedIDs(t map[int64]map[string]any) []int64 {
	ids := make([]int64, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *memStore) rows(table string) []map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.table(table)
	out := make([]map[string]any, 0, len(t))
	for _, id := range sortedIDs(t) {
		out = append(out, t[id])
	}
	return out
}

func (m *memStore) Table(name string) repository.Table {
	return repository.Table{Schema: "nfl", Name: name}
}

func (m *memStore) Upsert(_ context.Context, t repository.Table, keyColumn string, keyValue any, fields map[string]any) (int64, bool, error) {
	if m.failUpsert != nil {
		if err := m.failUpsert(t.Name, keyValue); err != nil {
			return 0, false, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	tbl := m.table(t.Name)

	for _, id := range sortedIDs(tbl) {
		row := tbl[id]
		if keyColumn == "id" && same(id, keyValue) || keyColumn != "id" && same(row[keyColumn], keyValue) {
			for k, v := range fields {
				if k != keyColumn {
					row[k] = v
				}
			}
			return id, false, nil
		}
	}

	m.nextID++
	row := map[string]any{"id": m.nextID}
	for k, v := range fields {
		row[k] = v
	}
	row[keyColumn] = keyValue
	tbl[m.nextID] = row
	return m.nextID, true, nil
}

func (m *memStore) ResolvePeriod(_ context.Context, kind models.PeriodKind, key models.PeriodKey, fields map[string]any) (int64, bool, error) {
	if kind == models.PeriodNone {
		return 0, false, errors.New("no period")
	}
	if m.failUpsert != nil {
		if err := m.failUpsert(kind.Table(), key.PlayerID); err != nil {
			return 0, false, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	tbl := m.table(kind.Table())

	match := func(row map[string]any) bool {
		if !same(row["player_id"], key.PlayerID) || !same(row["season"], key.Season) {
			return false
		}
		return kind != models.PeriodWeek || same(row["week"], key.Week)
	}

	for _, id := range sortedIDs(tbl) {
		if row := tbl[id]; match(row) {
			for k, v := range fields {
				if k != "player_id" && k != "season" && k != "week" {
					row[k] = v
				}
			}
			return id, false, nil
		}
	}

	m.nextID++
	row := map[string]any{"id": m.nextID, "player_id": key.PlayerID, "season": key.Season}
	if kind == models.PeriodWeek {
		row["week"] = key.Week
	}
	for k, v := range fields {
		if _, isKey := row[k]; !isKey {
			row[k] = v
		}
	}
	tbl[m.nextID] = row
	return m.nextID, true, nil
}

func (m *memStore) enterLookup() func() {
	n := m.inflight.Add(1)
	for {
		peak := m.maxInflight.Load()
		if n <= peak || m.maxInflight.CompareAndSwap(peak, n) {
			break
		}
	}
	if m.lookupDelay > 0 {
		time.Sleep(m.lookupDelay)
	}
	m.identityQueries.Add(1)
	return func() { m.inflight.Add(-1) }
}

func (m *memStore) FindPlayerBy(_ context.Context, column, value string) (int64, error) {
	defer m.enterLookup()()
	if m.failLookup != nil {
		return 0, m.failLookup
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	tbl := m.table(playersTable)
	for _, id := range sortedIDs(tbl) {
		if same(tbl[id][column], value) {
			return id, nil
		}
	}
	return 0, nil
}

func (m *memStore) FindPlayerByIDOrName(_ context.Context, idColumn, id, fullName string) (int64, error) {
	defer m.enterLookup()()
	if m.failLookup != nil {
		return 0, m.failLookup
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	tbl := m.table(playersTable)
	ids := sortedIDs(tbl)
	if id != "" {
		for _, pid := range ids {
			if same(tbl[pid][idColumn], id) {
				return pid, nil
			}
		}
	}
	if fullName != "" {
		for _, pid := range ids {
			if same(tbl[pid]["full_name"], fullName) {
				return pid, nil
			}
		}
	}
	return 0, nil
}

func (m *memStore) BackfillPlayerID(_ context.Context, playerID int64, column, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.table(playersTable)[playerID]
	if !ok {
		return nil
	}
	if v, set := row[column]; !set || v == nil || v == "" {
		row[column] = value
	}
	return nil
}

func (m *memStore) InsertUnmatched(_ context.Context, u *models.UnmatchedPlayer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	u.ID = m.nextID
	m.unmatched = append(m.unmatched, u)
	return nil
}

func (m *memStore) CallProcedure(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.procs = append(m.procs, name)
	return nil
}

// seedPlayer inserts a player row directly
func (m *memStore) seedPlayer(fields map[string]any) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	row := map[string]any{"id": m.nextID}
	for k, v := range fields {
		row[k] = v
	}
	m.table(playersTable)[m.nextID] = row
	return m.nextID
}
