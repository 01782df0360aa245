package ingest

import (
	"fmt"

	"nflstats/ingestion/internal/catalog"
	"nflstats/ingestion/internal/config"
	"nflstats/ingestion/internal/feed"
	"nflstats/ingestion/internal/models"
)

// DefaultNameColumn is the record field compared against players.full_name
const DefaultNameColumn = "full_name"

// Identity selects how a family's rows are matched to players
type Identity struct {
	Fallback   bool   // match on Column OR full name instead of Column alone
	Column     string // players column holding the external id
	NameColumn string // record field carrying the full name
	Backfill   bool   // set Column on players found by name
}

// Family is one configured feed: where to read it, how to match its rows
// to players and which tables its rows are written to
type Family struct {
	Name          string
	URLs          []string
	Columns       map[string]string
	Identity      Identity
	Authoritative bool
	Period        models.PeriodKind
	Attributes    []catalog.Attribute
	Categories    []catalog.Category
	Procedures    []string
}

// BuildFamily assembles a Family from its catalog entry. Every field the
// family writes is read from a same-named source column unless cfg.Columns
// remaps it.
func BuildFamily(name string, cfg config.FeedConfig) (*Family, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("feed %s: %w", name, err)
	}

	period, err := models.ParsePeriodKind(cfg.Period)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", name, err)
	}

	f := &Family{
		Name:          name,
		URLs:          cfg.URLs,
		Authoritative: cfg.Authoritative,
		Period:        period,
		Procedures:    cfg.Procedures,
		Identity: Identity{
			Fallback:   cfg.Identity.Strategy == config.StrategyFallback,
			Column:     cfg.Identity.Column,
			NameColumn: cfg.Identity.NameColumn,
			Backfill:   cfg.Identity.Backfill,
		},
	}
	if f.Identity.NameColumn == "" {
		f.Identity.NameColumn = DefaultNameColumn
	}

	for _, a := range cfg.Attributes {
		attr, err := catalog.LookupAttribute(a)
		if err != nil {
			return nil, fmt.Errorf("feed %s: %w", name, err)
		}
		f.Attributes = append(f.Attributes, attr)
	}

	for _, c := range cfg.Categories {
		cat, err := catalog.Lookup(c)
		if err != nil {
			return nil, fmt.Errorf("feed %s: %w", name, err)
		}
		if cat.Period() != period {
			return nil, fmt.Errorf("feed %s: category %s is %s-scoped but the feed period is %s", name, c, cat.Period(), period)
		}
		f.Categories = append(f.Categories, cat)
	}

	f.Columns = f.defaultColumns()
	for dest, source := range cfg.Columns {
		f.Columns[dest] = source
	}

	return f, nil
}

// defaultColumns maps every field the family can write to itself
func (f *Family) defaultColumns() map[string]string {
	cols := map[string]string{}
	add := func(fields []feed.Field) {
		for _, fl := range fields {
			cols[fl.Name] = fl.Name
		}
	}

	add(catalog.PlayerFields)
	cols[f.Identity.Column] = f.Identity.Column
	cols[f.Identity.NameColumn] = f.Identity.NameColumn
	for _, a := range f.Attributes {
		add(a.Fields)
	}
	add(catalog.PeriodKeyFields(f.Period))
	add(catalog.PeriodFields(f.Period))
	for _, c := range f.Categories {
		add(c.Fields())
	}
	return cols
}
