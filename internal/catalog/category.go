package catalog

import (
	"nflstats/ingestion/internal/feed"
	"nflstats/ingestion/internal/models"
	"nflstats/ingestion/internal/repository"
)

// Category turns a normalized record into the fields of one stat table
// hanging off a period row
type Category interface {
	Name() string
	Table() string
	Period() models.PeriodKind
	// KeyColumn is the column referencing the owning period row
	KeyColumn() string
	Fields() []feed.Field
	Parse(rec feed.Record) map[string]any
}

// StatCategory is a Category driven by a static field table
type StatCategory struct {
	name   string
	table  string
	period models.PeriodKind
	fields []feed.Field
}

// NewStatCategory builds a category writing fields to table under the given period
func NewStatCategory(name, table string, period models.PeriodKind, fields []feed.Field) *StatCategory {
	return &StatCategory{name: name, table: table, period: period, fields: fields}
}

func (c *StatCategory) Name() string              { return c.name }
func (c *StatCategory) Table() string             { return c.table }
func (c *StatCategory) Period() models.PeriodKind { return c.period }
func (c *StatCategory) KeyColumn() string         { return c.period.ForeignKey() }
func (c *StatCategory) Fields() []feed.Field      { return c.fields }

// Parse extracts the category's fields present in rec
func (c *StatCategory) Parse(rec feed.Record) map[string]any {
	return feed.Extract(rec, c.fields)
}

// TableDef returns the DDL description of the category table
func (c *StatCategory) TableDef() repository.TableDef {
	cols := make([]repository.ColumnDef, len(c.fields))
	for i, f := range c.fields {
		cols[i] = repository.ColumnDef{Name: f.Name, SQLType: f.Kind.SQLType()}
	}
	return repository.TableDef{
		Name:        c.table,
		KeyColumn:   c.KeyColumn(),
		ParentTable: c.period.Table(),
		Columns:     cols,
	}
}

// Attribute is a 1:1 player attribute set such as bio or league data
type Attribute struct {
	Name   string
	Table  string
	Fields []feed.Field
}

// KeyColumn is the column referencing the player
func (a Attribute) KeyColumn() string { return "player_id" }

// Parse extracts the attribute fields present in rec
func (a Attribute) Parse(rec feed.Record) map[string]any {
	return feed.Extract(rec, a.Fields)
}
