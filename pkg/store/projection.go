package store

import "strings"

// Projection is a field allow-list applied to records before they are
// written. A nil or empty projection passes records through unchanged.
type Projection []string

// ParseProjection splits a comma-separated field list, dropping empty
// entries. "id, date_filed" parses the same as "id,date_filed".
func ParseProjection(s string) Projection {
	if s == "" {
		return nil
	}

	var fields Projection
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// Apply reduces a record to the projected fields. Fields the record does
// not carry are dropped silently.
func (p Projection) Apply(record map[string]any) map[string]any {
	if len(p) == 0 {
		return record
	}

	out := make(map[string]any, len(p))
	for _, field := range p {
		if v, ok := record[field]; ok {
			out[field] = v
		}
	}
	return out
}
