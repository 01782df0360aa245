package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"nflstats/ingestion/internal/models"
)

// ResolvePeriod finds or creates the period header row for a player.
//
// Season periods are keyed by (player_id, season) and weekly periods by
// (player_id, season, week). An existing row has its non-key fields updated;
// a missing row is inserted with the key columns embedded. The row id is
// returned along with whether it was inserted. Concurrent rows for the same
// key converge on one period row.
func (db *Database) ResolvePeriod(ctx context.Context, kind models.PeriodKind, key models.PeriodKey, fields map[string]any) (int64, bool, error) {
	if kind == models.PeriodNone {
		return 0, false, fmt.Errorf("failed to resolve period: no period kind")
	}

	t := db.Table(kind.Table())
	keys := []string{"player_id", "season"}
	values := []any{key.PlayerID, key.Season}
	if kind == models.PeriodWeek {
		keys = append(keys, "week")
		values = append(values, key.Week)
	}

	row := make(map[string]any, len(fields))
	for k, v := range fields {
		row[k] = v
	}
	for _, k := range keys {
		delete(row, k)
	}

	id, inserted, err := db.writeByKey(ctx, t, keys, values, row)
	if err != nil {
		return 0, false, err
	}
	if !inserted {
		return id, false, nil
	}

	log.Debug().
		Str("table", t.String()).
		Int64("player_id", key.PlayerID).
		Int("season", key.Season).
		Int("week", key.Week).
		Int64("id", id).
		Msg("Period created")

	return id, true, nil
}
