package feed

// Kind is the storage type a field is coerced to
type Kind int

const (
	Text Kind = iota
	Int
	Float
	Date
)

// SQLType returns the Postgres column type used for the kind
func (k Kind) SQLType() string {
	switch k {
	case Int:
		return "INTEGER"
	case Float:
		return "DOUBLE PRECISION"
	case Date:
		return "DATE"
	default:
		return "TEXT"
	}
}

// Field describes one typed destination field
type Field struct {
	Name string
	Kind Kind
}

// T, I, F and D are shorthands used by field tables
func T(name string) Field { return Field{Name: name, Kind: Text} }
func I(name string) Field { return Field{Name: name, Kind: Int} }
func F(name string) Field { return Field{Name: name, Kind: Float} }
func D(name string) Field { return Field{Name: name, Kind: Date} }

// Extract coerces the listed fields out of a record into column values.
// Only fields present in the record are returned so that an update never
// overwrites a column the feed does not carry. Numeric fields use
// parse-or-zero; blank text and unparseable dates become NULL.
func Extract(rec Record, fields []Field) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if !rec.Has(f.Name) {
			continue
		}
		switch f.Kind {
		case Int:
			out[f.Name] = rec.Int(f.Name)
		case Float:
			out[f.Name] = rec.Float(f.Name)
		case Date:
			if t, ok := rec.Date(f.Name); ok {
				out[f.Name] = t
			} else {
				out[f.Name] = nil
			}
		default:
			if s := rec.Text(f.Name); s != "" {
				out[f.Name] = s
			} else {
				out[f.Name] = nil
			}
		}
	}
	return out
}
