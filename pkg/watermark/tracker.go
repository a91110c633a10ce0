// Package watermark tracks the newest date seen across a stream of
// records, for incremental fetching.
//
// Dates are compared as strings. CourtListener serves ISO-8601 dates
// (2023-01-15 or 2023-01-15T10:30:00Z), and for those the lexicographic
// order of the 10-character date prefix is the chronological order, so no
// time parsing is needed.
package watermark

import "fmt"

// DateLen is the length of the YYYY-MM-DD prefix kept from field values.
const DateLen = 10

// Tracker folds records into a running maximum of one date field.
type Tracker struct {
	field string
	max   string
	seen  bool
}

// NewTracker creates a tracker over the named record field, typically
// "date_filed".
func NewTracker(field string) *Tracker {
	return &Tracker{field: field}
}

// Observe folds one record into the running maximum. Records where the
// field is missing, null, or empty are ignored. Out-of-order records never
// regress the maximum.
func (t *Tracker) Observe(record map[string]any) {
	raw, ok := record[t.field]
	if !ok || raw == nil {
		return
	}

	value := fmt.Sprintf("%v", raw)
	if value == "" {
		return
	}
	if len(value) > DateLen {
		value = value[:DateLen]
	}

	if !t.seen || value > t.max {
		t.max = value
		t.seen = true
	}
}

// Current returns the maximum observed so far. ok is false when no record
// carried a usable value, which callers treat as "leave the stored
// watermark alone".
func (t *Tracker) Current() (string, bool) {
	return t.max, t.seen
}

// Field returns the record field this tracker watches.
func (t *Tracker) Field() string {
	return t.field
}
