package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nflstats/ingestion/internal/models"
)

func TestBuildSelectID(t *testing.T) {
	tbl := Table{Schema: "nfl", Name: "player_games"}

	sql := buildSelectID(tbl, []string{"player_id", "season", "week"})

	assert.Equal(t,
		`SELECT id FROM "nfl"."player_games" WHERE "player_id" = $1 AND "season" = $2 AND "week" = $3 LIMIT 1`,
		sql)
}

func TestBuildInsert_SortsColumns(t *testing.T) {
	tbl := Table{Schema: "nfl", Name: "players"}

	sql, args := buildInsert(tbl, map[string]any{"smart_id": "4", "full_name": "Test Me", "gsis_id": nil})

	assert.Equal(t, `INSERT INTO "nfl"."players" ("full_name", "gsis_id", "smart_id") VALUES ($1, $2, $3) ON CONFLICT DO NOTHING RETURNING id`, sql)
	assert.Equal(t, []any{"Test Me", nil, "4"}, args)
}

func TestBuildUpdate(t *testing.T) {
	tbl := Table{Schema: "nfl", Name: "game_passing"}

	sql, args := buildUpdate(tbl, 12, map[string]any{"attempts": 30, "completions": 21})
	assert.Equal(t, `UPDATE "nfl"."game_passing" SET "attempts" = $1, "completions" = $2, updated_at = NOW() WHERE id = $3`, sql)
	assert.Equal(t, []any{30, 21, int64(12)}, args)

	sql, args = buildUpdate(tbl, 3, map[string]any{})
	assert.Equal(t, `UPDATE "nfl"."game_passing" SET updated_at = NOW() WHERE id = $1`, sql)
	assert.Equal(t, []any{int64(3)}, args)
}

func TestTable_IdentQuotesHostileNames(t *testing.T) {
	tbl := Table{Schema: "nfl", Name: `x"; DROP TABLE players; --`}
	assert.Equal(t, `"nfl"."x""; DROP TABLE players; --"`, tbl.Ident())
}

func TestUpsert_InsertsWhenKeyIsNew(t *testing.T) {
	q := &fakeQuerier{rows: []fakeRow{noRows(), idRow(41)}}
	db := New(q, "")

	fields := map[string]any{"full_name": "Test Me"}
	id, inserted, err := db.Upsert(context.Background(), db.Table("players"), "smart_id", "4", fields)

	require.NoError(t, err)
	assert.Equal(t, int64(41), id)
	assert.True(t, inserted)

	require.Len(t, q.queries, 2)
	assert.Equal(t, `SELECT id FROM "nfl"."players" WHERE "smart_id" = $1 LIMIT 1`, q.queries[0].sql)
	assert.Equal(t, []any{"4"}, q.queries[0].args)
	assert.Equal(t, `INSERT INTO "nfl"."players" ("full_name", "smart_id") VALUES ($1, $2) ON CONFLICT DO NOTHING RETURNING id`, q.queries[1].sql)
	assert.Equal(t, []any{"Test Me", "4"}, q.queries[1].args)
	assert.Empty(t, q.execs)

	assert.Equal(t, map[string]any{"full_name": "Test Me"}, fields, "caller fields must not be modified")
}

func TestUpsert_LosingInsertRaceUpdatesWinner(t *testing.T) {
	// lookup misses, insert hits the unique key, lookup again finds the winner
	q := &fakeQuerier{rows: []fakeRow{noRows(), noRows(), idRow(41)}}
	db := New(q, "")

	id, inserted, err := db.Upsert(context.Background(), db.Table("players"), "gsis_id", "00-0000001",
		map[string]any{"full_name": "Test Me"})

	require.NoError(t, err)
	assert.Equal(t, int64(41), id)
	assert.False(t, inserted)

	require.Len(t, q.queries, 3)
	assert.Equal(t, q.queries[0].sql, q.queries[2].sql)
	require.Len(t, q.execs, 1)
	assert.Equal(t, `UPDATE "nfl"."players" SET "full_name" = $1, updated_at = NOW() WHERE id = $2`, q.execs[0].sql)
	assert.Equal(t, []any{"Test Me", int64(41)}, q.execs[0].args)
}

func TestUpsert_ConflictOnOtherKeyFails(t *testing.T) {
	// the insert collides on a different unique column, so the key still misses
	q := &fakeQuerier{rows: []fakeRow{noRows(), noRows(), noRows()}}
	db := New(q, "")

	_, _, err := db.Upsert(context.Background(), db.Table("players"), "gsis_id", "00-0000002",
		map[string]any{"pfr_id": "MeTe00"})

	assert.ErrorIs(t, err, errInsertConflict)
	assert.Empty(t, q.execs)
}

func TestUpsert_UpdatesExistingRowWithoutReassigningKey(t *testing.T) {
	q := &fakeQuerier{rows: []fakeRow{idRow(41)}}
	db := New(q, "nfl")

	id, inserted, err := db.Upsert(context.Background(), db.Table("players"), "smart_id", "4",
		map[string]any{"smart_id": "999", "full_name": "Test Me Jr."})

	require.NoError(t, err)
	assert.Equal(t, int64(41), id)
	assert.False(t, inserted)

	require.Len(t, q.execs, 1)
	assert.Equal(t, `UPDATE "nfl"."players" SET "full_name" = $1, updated_at = NOW() WHERE id = $2`, q.execs[0].sql)
	assert.Equal(t, []any{"Test Me Jr.", int64(41)}, q.execs[0].args)
}

func TestUpsert_PropagatesStoreErrors(t *testing.T) {
	connLost := errors.New("connection reset by peer")

	q := &fakeQuerier{rows: []fakeRow{{err: connLost}}}
	db := New(q, "")
	_, _, err := db.Upsert(context.Background(), db.Table("players"), "gsis_id", "00-1", nil)
	assert.ErrorIs(t, err, connLost)

	q = &fakeQuerier{rows: []fakeRow{idRow(5)}, execErr: connLost}
	db = New(q, "")
	_, _, err = db.Upsert(context.Background(), db.Table("players"), "gsis_id", "00-1", map[string]any{"full_name": "A"})
	assert.ErrorIs(t, err, connLost)
	assert.Len(t, q.execs, 1, "store errors are not retried")
}

func TestUpsert_VanishedRowIsNotFound(t *testing.T) {
	q := &fakeQuerier{rows: []fakeRow{idRow(5)}, tags: []pgconn.CommandTag{pgconn.NewCommandTag("UPDATE 0")}}
	db := New(q, "")

	_, _, err := db.Upsert(context.Background(), db.Table("game_rushing"), "player_game_id", int64(9), map[string]any{"carries": 3})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindPlayerByIDOrName_BindsEmptyValuesAsNull(t *testing.T) {
	q := &fakeQuerier{rows: []fakeRow{idRow(7)}}
	db := New(q, "")

	id, err := db.FindPlayerByIDOrName(context.Background(), "pfr_id", "", "John Doe")

	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	require.Len(t, q.queries, 1)
	assert.Equal(t, `SELECT id FROM "nfl"."players" WHERE "pfr_id" = $1 OR full_name = $2 ORDER BY ("pfr_id" = $1) DESC NULLS LAST LIMIT 1`, q.queries[0].sql)
	assert.Equal(t, []any{nil, "John Doe"}, q.queries[0].args)
}

func TestFindPlayerBy_NoRowsIsZero(t *testing.T) {
	q := &fakeQuerier{rows: []fakeRow{noRows()}}
	db := New(q, "")

	id, err := db.FindPlayerBy(context.Background(), "gsis_id", "00-0000001")

	require.NoError(t, err)
	assert.Zero(t, id)
}

func TestBackfillPlayerID(t *testing.T) {
	q := &fakeQuerier{}
	db := New(q, "")

	require.NoError(t, db.BackfillPlayerID(context.Background(), 3, "pfr_id", "DoeJo00"))

	require.Len(t, q.execs, 1)
	assert.Equal(t,
		`UPDATE "nfl"."players" SET "pfr_id" = $1, updated_at = NOW() WHERE id = $2 AND ("pfr_id" IS NULL OR "pfr_id" = '')`,
		q.execs[0].sql)
	assert.Equal(t, []any{"DoeJo00", int64(3)}, q.execs[0].args)
}

func TestResolvePeriod_InsertsWeekWithCompositeKey(t *testing.T) {
	q := &fakeQuerier{rows: []fakeRow{noRows(), idRow(100)}}
	db := New(q, "")

	id, inserted, err := db.ResolvePeriod(context.Background(), models.PeriodWeek,
		models.PeriodKey{PlayerID: 3, Season: 2023, Week: 7},
		map[string]any{"team": "KC", "week": 99})

	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, int64(100), id)
	assert.Equal(t, []any{int64(3), 2023, 7}, q.queries[0].args)
	assert.Equal(t,
		`INSERT INTO "nfl"."player_games" ("player_id", "season", "team", "week") VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING RETURNING id`,
		q.queries[1].sql)
	assert.Equal(t, []any{int64(3), 2023, "KC", 7}, q.queries[1].args, "key columns come from the period key")
}

func TestResolvePeriod_UpdatesExistingSeason(t *testing.T) {
	q := &fakeQuerier{rows: []fakeRow{idRow(55)}}
	db := New(q, "")

	id, inserted, err := db.ResolvePeriod(context.Background(), models.PeriodSeason,
		models.PeriodKey{PlayerID: 3, Season: 2023, Week: 7},
		map[string]any{"team": "KC", "games": 17})

	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, int64(55), id)
	assert.Equal(t, `SELECT id FROM "nfl"."player_seasons" WHERE "player_id" = $1 AND "season" = $2 LIMIT 1`, q.queries[0].sql)
	require.Len(t, q.execs, 1)
	assert.Equal(t, `UPDATE "nfl"."player_seasons" SET "games" = $1, "team" = $2, updated_at = NOW() WHERE id = $3`, q.execs[0].sql)
}

func TestResolvePeriod_ConcurrentInsertConverges(t *testing.T) {
	q := &fakeQuerier{rows: []fakeRow{noRows(), noRows(), idRow(55)}}
	db := New(q, "")

	id, inserted, err := db.ResolvePeriod(context.Background(), models.PeriodSeason,
		models.PeriodKey{PlayerID: 3, Season: 2023},
		map[string]any{"team": "KC"})

	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, int64(55), id)
	require.Len(t, q.execs, 1)
	assert.Equal(t, `UPDATE "nfl"."player_seasons" SET "team" = $1, updated_at = NOW() WHERE id = $2`, q.execs[0].sql)
}

func TestResolvePeriod_RejectsNone(t *testing.T) {
	db := New(&fakeQuerier{}, "")
	_, _, err := db.ResolvePeriod(context.Background(), models.PeriodNone, models.PeriodKey{}, nil)
	assert.Error(t, err)
}

func TestInsertUnmatched(t *testing.T) {
	created := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)
	q := &fakeQuerier{rows: []fakeRow{{values: []any{int64(9), created}}}}
	db := New(q, "")

	u := &models.UnmatchedPlayer{
		Feed:     "pfr_passing",
		Reason:   models.ReasonNotFound,
		FullName: models.NullString("John Doe"),
	}
	require.NoError(t, db.InsertUnmatched(context.Background(), u))

	assert.Equal(t, int64(9), u.ID)
	assert.Equal(t, created, u.CreatedAt)
	require.Len(t, q.queries, 1)
	assert.Contains(t, q.queries[0].sql, `INSERT INTO "nfl"."unmatched_players"`)
	assert.Equal(t, "pfr_passing", q.queries[0].args[0])
}

func TestCreateTableSQL(t *testing.T) {
	db := New(&fakeQuerier{}, "")

	sql := db.createTableSQL(TableDef{
		Name:        "game_kicking",
		KeyColumn:   "player_game_id",
		ParentTable: "player_games",
		Columns:     []ColumnDef{{Name: "fg_made", SQLType: "INTEGER"}},
	})

	assert.Contains(t, sql, `CREATE TABLE IF NOT EXISTS "nfl"."game_kicking"`)
	assert.Contains(t, sql, `"player_game_id" BIGINT NOT NULL UNIQUE REFERENCES "nfl"."player_games" (id)`)
	assert.Contains(t, sql, `"fg_made" INTEGER,`)
}

func TestMigrate_RendersSchema(t *testing.T) {
	q := &fakeQuerier{}
	db := New(q, "stats")

	require.NoError(t, db.Migrate(context.Background(), []TableDef{{
		Name: "game_passing", KeyColumn: "player_game_id", ParentTable: "player_games",
	}}))

	require.Len(t, q.execs, 2)
	assert.Contains(t, q.execs[0].sql, `CREATE SCHEMA IF NOT EXISTS "stats"`)
	assert.NotContains(t, q.execs[0].sql, "{{schema}}")
	assert.Contains(t, q.execs[1].sql, `"stats"."game_passing"`)
}

func TestCallProcedure(t *testing.T) {
	q := &fakeQuerier{}
	db := New(q, "")

	require.NoError(t, db.CallProcedure(context.Background(), "nfl.refresh_season_totals"))

	require.Len(t, q.execs, 1)
	assert.Equal(t, `CALL "nfl"."refresh_season_totals"()`, q.execs[0].sql)
}
