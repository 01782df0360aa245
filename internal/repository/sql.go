package repository

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Table is a schema-qualified table name
type Table struct {
	Schema string
	Name   string
}

// Ident returns the quoted, schema-qualified identifier
func (t Table) Ident() string {
	return pgx.Identifier{t.Schema, t.Name}.Sanitize()
}

func (t Table) String() string {
	return t.Schema + "." + t.Name
}

func quote(column string) string {
	return pgx.Identifier{column}.Sanitize()
}

// sortedColumns returns field names in a stable order so statements and
// argument lists are deterministic
func sortedColumns(fields map[string]any) []string {
	cols := make([]string, 0, len(fields))
	for c := range fields {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// buildSelectID returns a query for the id of the row matching every key column
func buildSelectID(t Table, keys []string) string {
	conds := make([]string, len(keys))
	for i, k := range keys {
		conds[i] = fmt.Sprintf("%s = $%d", quote(k), i+1)
	}
	return fmt.Sprintf("SELECT id FROM %s WHERE %s LIMIT 1", t.Ident(), strings.Join(conds, " AND "))
}

// buildInsert returns an INSERT ... RETURNING id statement and its arguments.
// A row that would violate a unique constraint is skipped and returns no id.
func buildInsert(t Table, fields map[string]any) (string, []any) {
	cols := sortedColumns(fields)
	quoted := make([]string, len(cols))
	params := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		quoted[i] = quote(c)
		params[i] = fmt.Sprintf("$%d", i+1)
		args[i] = fields[c]
	}
	sql := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT DO NOTHING RETURNING id",
		t.Ident(), strings.Join(quoted, ", "), strings.Join(params, ", "),
	)
	return sql, args
}

// buildUpdate returns an UPDATE of every field on the row with the given id.
// updated_at is always bumped so a replay with no changed fields is still visible.
func buildUpdate(t Table, id int64, fields map[string]any) (string, []any) {
	cols := sortedColumns(fields)
	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+1)
	for i, c := range cols {
		sets = append(sets, fmt.Sprintf("%s = $%d", quote(c), i+1))
		args = append(args, fields[c])
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", t.Ident(), strings.Join(sets, ", "), len(args))
	return sql, args
}

// parseQualified splits "schema.name" into identifier parts
func parseQualified(name string) pgx.Identifier {
	return pgx.Identifier(strings.Split(name, "."))
}
