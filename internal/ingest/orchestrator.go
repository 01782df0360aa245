package ingest

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"nflstats/ingestion/internal/catalog"
	"nflstats/ingestion/internal/feed"
	"nflstats/ingestion/internal/models"
)

const playersTable = "players"

// Outcome is what happened to a processed row
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnmatched Outcome = "unmatched"
	OutcomeFailed    Outcome = "failed"
)

// Orchestrator writes single feed rows through the player hierarchy
type Orchestrator struct {
	store    Store
	family   *Family
	resolver *Resolver
}

// NewOrchestrator creates an orchestrator for one family
func NewOrchestrator(store Store, family *Family) *Orchestrator {
	return &Orchestrator{
		store:    store,
		family:   family,
		resolver: NewResolver(store, family.Name, family.Identity),
	}
}

// ProcessRow maps, resolves and writes one raw row.
//
// The player is resolved first. Unresolved rows are recorded as unmatched
// unless the family is authoritative and the row carries its external id, in
// which case the player is created under that id. Attribute writes then run
// alongside the period write, and once the period id is known the category
// writes fan out.
func (o *Orchestrator) ProcessRow(ctx context.Context, raw feed.Raw) (Outcome, error) {
	rec := feed.Map(raw, o.family.Columns)

	res, err := o.resolver.Resolve(ctx, rec)
	if err != nil {
		return OutcomeFailed, err
	}

	playerID := res.PlayerID
	outcome := OutcomeUpdated

	switch {
	case !res.Found() && (!o.family.Authoritative || res.ID == ""):
		if err := o.recordUnmatched(ctx, rec, res); err != nil {
			return OutcomeFailed, err
		}
		return OutcomeUnmatched, nil

	case !res.Found():
		playerID, _, err = o.store.Upsert(ctx, o.store.Table(playersTable), o.family.Identity.Column, res.ID, playerFields(rec))
		if err != nil {
			return OutcomeFailed, err
		}
		outcome = OutcomeCreated
		log.Debug().
			Str("family", o.family.Name).
			Int64("player_id", playerID).
			Str(o.family.Identity.Column, res.ID).
			Msg("Player created")

	case o.family.Authoritative:
		if _, _, err := o.store.Upsert(ctx, o.store.Table(playersTable), "id", playerID, playerFields(rec)); err != nil {
			return OutcomeFailed, err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, attr := range o.family.Attributes {
		g.Go(func() error {
			_, _, err := o.store.Upsert(gctx, o.store.Table(attr.Table), attr.KeyColumn(), playerID, attr.Parse(rec))
			return err
		})
	}

	if o.family.Period != models.PeriodNone {
		g.Go(func() error {
			return o.writePeriod(gctx, playerID, rec)
		})
	}

	if err := g.Wait(); err != nil {
		return OutcomeFailed, err
	}

	return outcome, nil
}

// writePeriod resolves the period row and fans out to the categories
func (o *Orchestrator) writePeriod(ctx context.Context, playerID int64, rec feed.Record) error {
	key := models.PeriodKey{
		PlayerID: playerID,
		Season:   rec.Int(catalog.SeasonField),
		Week:     rec.Int(catalog.WeekField),
	}

	periodID, _, err := o.store.ResolvePeriod(ctx, o.family.Period, key, feed.Extract(rec, catalog.PeriodFields(o.family.Period)))
	if err != nil {
		return err
	}
	if periodID == 0 {
		log.Warn().
			Str("family", o.family.Name).
			Int64("player_id", playerID).
			Int("season", key.Season).
			Int("week", key.Week).
			Msg("Period resolved without an id, skipping categories")
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, cat := range o.family.Categories {
		g.Go(func() error {
			if _, _, err := o.store.Upsert(gctx, o.store.Table(cat.Table()), cat.KeyColumn(), periodID, cat.Parse(rec)); err != nil {
				return fmt.Errorf("failed to write %s: %w", cat.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}

// playerFields extracts the player columns of rec. Blank external ids are
// left out so a row never clears an id another feed back-filled.
func playerFields(rec feed.Record) map[string]any {
	fields := feed.Extract(rec, catalog.PlayerFields)
	for _, col := range models.ExternalIDColumns {
		if v, ok := fields[col]; ok && v == nil {
			delete(fields, col)
		}
	}
	return fields
}

func (o *Orchestrator) recordUnmatched(ctx context.Context, rec feed.Record, res Resolution) error {
	u := &models.UnmatchedPlayer{
		Feed:     o.family.Name,
		Reason:   res.Reason,
		GsisID:   models.NullString(rec.Text(models.GsisID)),
		PfrID:    models.NullString(rec.Text(models.PfrID)),
		SmartID:  models.NullString(rec.Text(models.SmartID)),
		FullName: models.NullString(res.Name),
	}
	if o.family.Period != models.PeriodNone && rec.Has(catalog.SeasonField) {
		u.Season = sql.NullInt32{Int32: int32(rec.Int(catalog.SeasonField)), Valid: true}
	}
	if o.family.Period == models.PeriodWeek && rec.Has(catalog.WeekField) {
		u.Week = sql.NullInt32{Int32: int32(rec.Int(catalog.WeekField)), Valid: true}
	}

	return o.store.InsertUnmatched(ctx, u)
}
