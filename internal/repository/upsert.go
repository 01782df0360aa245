package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned when an update targets a row that no longer exists
var ErrNotFound = errors.New("row not found")

// findID returns the id of the row whose key columns equal values, or 0
func (db *Database) findID(ctx context.Context, t Table, keys []string, values ...any) (int64, error) {
	id, err := db.findOne(ctx, t, buildSelectID(t, keys), values...)
	if err != nil {
		return 0, fmt.Errorf("failed to look up %s: %w", t, err)
	}
	return id, nil
}

// findOne runs a query selecting a single id column; no rows is 0
func (db *Database) findOne(ctx context.Context, t Table, query string, args ...any) (int64, error) {
	var id int64
	err := db.queryRow(ctx, "select", t, []any{&id}, query, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// errInsertConflict reports an insert that another writer beat to a unique key
var errInsertConflict = errors.New("insert conflicted with an existing row")

// insert writes a new row and returns its store-assigned id. A unique
// violation inserts nothing and returns errInsertConflict.
func (db *Database) insert(ctx context.Context, t Table, fields map[string]any) (int64, error) {
	sql, args := buildInsert(t, fields)
	var id int64
	err := db.queryRow(ctx, "insert", t, []any{&id}, sql, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, errInsertConflict
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert into %s: %w", t, err)
	}
	return id, nil
}

// updateByID overwrites fields on the row with the given id
func (db *Database) updateByID(ctx context.Context, t Table, id int64, fields map[string]any) error {
	sql, args := buildUpdate(t, id, fields)
	tag, err := db.exec(ctx, "update", t, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", t, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update %s id=%d: %w", t, id, ErrNotFound)
	}
	return nil
}

// writeByKey updates the row whose key columns equal values, or inserts it
// with the keys set. fields must not contain the key columns. When another
// writer inserts the same key between the lookup and the insert, the row it
// created is looked up again and updated instead.
func (db *Database) writeByKey(ctx context.Context, t Table, keys []string, values []any, fields map[string]any) (int64, bool, error) {
	id, err := db.findID(ctx, t, keys, values...)
	if err != nil {
		return 0, false, err
	}

	if id == 0 {
		row := make(map[string]any, len(fields)+len(keys))
		for k, v := range fields {
			row[k] = v
		}
		for i, k := range keys {
			row[k] = values[i]
		}

		id, err = db.insert(ctx, t, row)
		if err == nil {
			return id, true, nil
		}
		if !errors.Is(err, errInsertConflict) {
			return 0, false, err
		}

		if id, err = db.findID(ctx, t, keys, values...); err != nil {
			return 0, false, err
		}
		if id == 0 {
			return 0, false, fmt.Errorf("failed to insert into %s: %w", t, errInsertConflict)
		}
		log.Debug().Str("table", t.String()).Int64("id", id).Msg("Concurrent insert detected, updating")
	}

	if err := db.updateByID(ctx, t, id, fields); err != nil {
		return 0, false, err
	}
	return id, false, nil
}

// Upsert writes fields to the row whose natural key column equals keyValue.
//
// When the row exists the key is stripped from fields, every remaining field
// is updated and the existing id is returned with inserted=false. Otherwise
// the key is set on the fields, a new row is inserted and its id returned with
// inserted=true. The caller's map is never modified. Store errors are
// returned wrapped and are not retried.
func (db *Database) Upsert(ctx context.Context, t Table, keyColumn string, keyValue any, fields map[string]any) (int64, bool, error) {
	row := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == keyColumn {
			continue
		}
		row[k] = v
	}

	id, inserted, err := db.writeByKey(ctx, t, []string{keyColumn}, []any{keyValue}, row)
	if err != nil {
		return 0, false, err
	}

	msg := "Row updated"
	if inserted {
		msg = "Row inserted"
	}
	log.Debug().
		Str("table", t.String()).
		Str("key", keyColumn).
		Interface("value", keyValue).
		Int64("id", id).
		Msg(msg)
	return id, inserted, nil
}
