package dates

import (
	"fmt"
	"strings"
	"time"
)

// Layouts accepted by Parse, in precedence order. The first one that parses wins.
var layouts = []struct {
	layout string
	name   string
}{
	{"2006-01-02 15:04:05", "ledger"},
	{"2006-01-02T15:04:05+00:00", "iso8601 utc"},
	{"2006-01-02T15:04:05.999999+00:00", "iso8601 utc fractional"},
	{"2006-01-02T15:04:05", "iso8601 naive"},
	{"2006-01-02T15:04:05.999999", "iso8601 naive fractional"},
}

// LedgerLayout is the text form written by the text-column ledgers.
const LedgerLayout = "2006-01-02T15:04:05+00:00"

type ParseError struct {
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse date: %q", e.Value)
}

// Parse normalizes the timestamp dialects emitted by the upstream API and the
// ledgers. Results are UTC and truncated to whole seconds.
func Parse(value string) (time.Time, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, &ParseError{Value: value}
	}

	for _, l := range layouts {
		// None of the layouts carry a zone name, so ParseInLocation pins them to UTC.
		// time accepts a fractional second after the seconds field even when the
		// layout has none; it is dropped by the truncation below.
		t, err := time.ParseInLocation(l.layout, s, time.UTC)
		if err != nil {
			continue
		}
		return t.UTC().Truncate(time.Second), nil
	}

	return time.Time{}, &ParseError{Value: value}
}

// Format renders t in LedgerLayout.
func Format(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(LedgerLayout)
}
