package repository

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ColumnDef is one column of a generated stat table
type ColumnDef struct {
	Name    string
	SQLType string
}

// TableDef describes a category table hanging off a period row
type TableDef struct {
	Name        string
	KeyColumn   string
	ParentTable string
	Columns     []ColumnDef
}

// Migrate applies the embedded base schema and then creates any missing
// category tables. Every statement is idempotent.
func (db *Database) Migrate(ctx context.Context, tables []TableDef) error {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(files)

	schema := pgx.Identifier{db.schema}.Sanitize()
	for _, f := range files {
		body, err := migrations.ReadFile(f)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", f, err)
		}
		sql := strings.ReplaceAll(string(body), "{{schema}}", schema)
		if _, err := db.q.Exec(ctx, sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("Migration applied")
	}

	for _, td := range tables {
		if _, err := db.q.Exec(ctx, db.createTableSQL(td)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", td.Name, err)
		}
	}
	log.Info().Int("tables", len(tables)).Msg("Category tables ensured")

	return nil
}

// createTableSQL renders the DDL for a category table
func (db *Database) createTableSQL(td TableDef) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", db.Table(td.Name).Ident())
	b.WriteString("    id BIGSERIAL PRIMARY KEY,\n")
	fmt.Fprintf(&b, "    %s BIGINT NOT NULL UNIQUE REFERENCES %s (id),\n", quote(td.KeyColumn), db.Table(td.ParentTable).Ident())
	for _, c := range td.Columns {
		fmt.Fprintf(&b, "    %s %s,\n", quote(c.Name), c.SQLType)
	}
	b.WriteString("    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),\n")
	b.WriteString("    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()\n")
	b.WriteString(")")
	return b.String()
}

// CallProcedure invokes a stored procedure by (optionally schema-qualified) name
func (db *Database) CallProcedure(ctx context.Context, name string) error {
	ident := parseQualified(name)
	if _, err := db.exec(ctx, "call", Table{Schema: db.schema, Name: name}, "CALL "+ident.Sanitize()+"()"); err != nil {
		return fmt.Errorf("failed to call procedure %s: %w", name, err)
	}
	log.Info().Str("procedure", name).Msg("Procedure executed")
	return nil
}
