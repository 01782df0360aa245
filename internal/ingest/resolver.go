package ingest

import (
	"context"

	"github.com/rs/zerolog/log"

	"nflstats/ingestion/internal/feed"
	"nflstats/ingestion/internal/metrics"
	"nflstats/ingestion/internal/models"
)

// Resolution is the outcome of matching a record to a player
type Resolution struct {
	PlayerID int64
	ID       string // external id carried by the record
	Name     string
	Reason   string // why PlayerID is 0
}

// Found reports whether a player matched
func (r Resolution) Found() bool {
	return r.PlayerID != 0
}

// Resolver matches records to players using a family's identity strategy
type Resolver struct {
	store    Store
	identity Identity
	feed     string
}

// NewResolver creates a resolver for one family
func NewResolver(store Store, family string, identity Identity) *Resolver {
	return &Resolver{store: store, identity: identity, feed: family}
}

// Resolve returns the player a record belongs to.
//
// Exact resolution looks the external id up and never consults the name.
// Fallback resolution matches the external id or the exact full name in a
// single query. A record without any usable identifier resolves to nothing
// without touching the store.
func (r *Resolver) Resolve(ctx context.Context, rec feed.Record) (Resolution, error) {
	res := Resolution{
		ID:   rec.Text(r.identity.Column),
		Name: rec.Text(r.identity.NameColumn),
	}

	if !r.identity.Fallback {
		if res.ID == "" {
			res.Reason = models.ReasonMissingIdentifier
			return res, nil
		}
		id, err := r.store.FindPlayerBy(ctx, r.identity.Column, res.ID)
		if err != nil {
			return res, err
		}
		res.PlayerID = id
		if id == 0 {
			res.Reason = models.ReasonNotFound
		}
		return res, nil
	}

	if res.ID == "" && res.Name == "" {
		res.Reason = models.ReasonMissingIdentifier
		return res, nil
	}

	id, err := r.store.FindPlayerByIDOrName(ctx, r.identity.Column, res.ID, res.Name)
	if err != nil {
		return res, err
	}
	res.PlayerID = id
	if id == 0 {
		res.Reason = models.ReasonNotFound
		return res, nil
	}

	if r.identity.Backfill && res.ID != "" {
		// A conflicting id on another player must not fail the row
		if err := r.store.BackfillPlayerID(ctx, id, r.identity.Column, res.ID); err != nil {
			metrics.RecordError("resolver", "backfill")
			log.Warn().
				Err(err).
				Str("family", r.feed).
				Int64("player_id", id).
				Str("column", r.identity.Column).
				Str("value", res.ID).
				Msg("Failed to back-fill player identifier")
		}
	}

	return res, nil
}
