package feed

import (
	"strconv"
	"strings"
	"time"
)

// Raw is one CSV row keyed by its header names
type Raw map[string]string

// Record is a raw row renamed to internal field names
type Record map[string]string

// Map renames raw columns to destination fields using a dest -> source map.
// Destinations mapped to an empty source are dropped. A source column that
// is missing from the row leaves the destination absent.
func Map(raw Raw, columns map[string]string) Record {
	rec := make(Record, len(columns))
	for dest, source := range columns {
		if source == "" {
			continue
		}
		if v, ok := raw[source]; ok {
			rec[dest] = v
		}
	}
	return rec
}

// Has reports whether the field was present in the source row
func (r Record) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// Text returns the trimmed value of a field
func (r Record) Text(field string) string {
	return strings.TrimSpace(r[field])
}

// Int parses a field as an integer; blank or invalid values are 0.
// Feeds sometimes publish integers as "12.0", so a float parse is tried
// before giving up.
func (r Record) Int(field string) int {
	s := r.Text(field)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

// Float parses a field as a float; blank or invalid values are 0
func (r Record) Float(field string) float64 {
	s := r.Text(field)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

var dateLayouts = []string{"2006-01-02", "2006/01/02", "01/02/2006", time.RFC3339}

// Date parses a calendar date. ok is false for blank or unparseable values.
func (r Record) Date(field string) (time.Time, bool) {
	s := r.Text(field)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
