package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"nflstats/ingestion/internal/models"
)

const (
	playersTable   = "players"
	unmatchedTable = "unmatched_players"
)

// GetPlayer loads a player by internal id
func (db *Database) GetPlayer(ctx context.Context, id int64) (*models.Player, error) {
	t := db.Table(playersTable)
	query := fmt.Sprintf(`
		SELECT id, gsis_id, pfr_id, smart_id, esb_id, COALESCE(full_name, ''),
		       first_name, last_name, football_name, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, t.Ident())

	p := &models.Player{}
	err := db.queryRow(ctx, "select", t, []any{
		&p.ID, &p.GsisID, &p.PfrID, &p.SmartID, &p.EsbID, &p.FullName,
		&p.FirstName, &p.LastName, &p.FootballName, &p.CreatedAt, &p.UpdatedAt,
	}, query, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("player %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player %d: %w", id, err)
	}
	return p, nil
}

// FindPlayerBy returns the id of the player whose identifier column equals
// value, or 0 when none matches
func (db *Database) FindPlayerBy(ctx context.Context, column, value string) (int64, error) {
	return db.findID(ctx, db.Table(playersTable), []string{column}, value)
}

// FindPlayerByIDOrName returns the first player matching either the external
// id or the exact full name, or 0. Empty inputs are bound as NULL so they can
// never match. A player matching the id always wins over one matching only
// the name; among several name matches the store's natural order decides.
func (db *Database) FindPlayerByIDOrName(ctx context.Context, idColumn, extID, fullName string) (int64, error) {
	t := db.Table(playersTable)
	query := fmt.Sprintf(
		"SELECT id FROM %s WHERE %s = $1 OR full_name = $2 ORDER BY (%s = $1) DESC NULLS LAST LIMIT 1",
		t.Ident(), quote(idColumn), quote(idColumn),
	)

	var idArg, nameArg any
	if extID != "" {
		idArg = extID
	}
	if fullName != "" {
		nameArg = fullName
	}

	id, err := db.findOne(ctx, t, query, idArg, nameArg)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve player by %s or name: %w", idColumn, err)
	}
	return id, nil
}

// BackfillPlayerID sets an external identifier on a player that does not have one yet
func (db *Database) BackfillPlayerID(ctx context.Context, playerID int64, column, value string) error {
	t := db.Table(playersTable)
	query := fmt.Sprintf(
		"UPDATE %s SET %s = $1, updated_at = NOW() WHERE id = $2 AND (%s IS NULL OR %s = '')",
		t.Ident(), quote(column), quote(column), quote(column),
	)

	tag, err := db.exec(ctx, "backfill", t, query, value, playerID)
	if err != nil {
		return fmt.Errorf("failed to backfill %s: %w", column, err)
	}

	if tag.RowsAffected() > 0 {
		log.Debug().
			Int64("player_id", playerID).
			Str("column", column).
			Str("value", value).
			Msg("Player identifier back-filled")
	}
	return nil
}

// InsertUnmatched appends a row that could not be tied to a player
func (db *Database) InsertUnmatched(ctx context.Context, u *models.UnmatchedPlayer) error {
	t := db.Table(unmatchedTable)
	query := fmt.Sprintf(`
		INSERT INTO %s (feed, reason, gsis_id, pfr_id, smart_id, full_name, season, week)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, t.Ident())

	err := db.queryRow(ctx, "insert", t, []any{&u.ID, &u.CreatedAt}, query,
		u.Feed, u.Reason, u.GsisID, u.PfrID, u.SmartID, u.FullName, u.Season, u.Week,
	)
	if err != nil {
		return fmt.Errorf("failed to record unmatched player: %w", err)
	}

	log.Debug().
		Str("feed", u.Feed).
		Str("reason", u.Reason).
		Str("full_name", u.FullName.String).
		Msg("Unmatched player recorded")

	return nil
}
