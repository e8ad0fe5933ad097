// Package normalize resolves partially missing article fields into their
// canonical form: publication dates, external links and abstracts.
package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/matsen/citeline/internal/reference"
)

// Date defaults applied when a field is absent.
const (
	DefaultMonth = "Jan"
	DefaultDay   = 1
)

// ErrMissingYear is returned for dates without a year. Callers exclude such
// records from date-dependent views.
var ErrMissingYear = errors.New("publication date has no year")

// monthNumbers maps three-letter month abbreviations to month numbers.
var monthNumbers = map[string]int{
	"Jan": 1, "Feb": 2, "Mar": 3, "Apr": 4, "May": 5, "Jun": 6,
	"Jul": 7, "Aug": 8, "Sep": 9, "Oct": 10, "Nov": 11, "Dec": 12,
}

// MalformedDateError reports a date field that is present but cannot be
// resolved. It fails the whole view being computed.
type MalformedDateError struct {
	Field string // Year, Month or Day
	Value string
	Err   error
}

func (e *MalformedDateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("malformed %s %q", e.Field, e.Value)
}

func (e *MalformedDateError) Unwrap() error {
	return e.Err
}

// MonthNumber returns the month number for a three-letter abbreviation.
// Matching is exact: full names, numbers and other casings are rejected.
func MonthNumber(abbr string) (int, bool) {
	n, ok := monthNumbers[abbr]
	return n, ok
}

// ResolveDate maps a partial publication date to a canonical date. A missing
// month resolves to January and a missing day to 1. Day values are not range
// checked.
func ResolveDate(d reference.PartialDate) (reference.CanonicalDate, error) {
	if !d.HasYear() {
		return reference.CanonicalDate{}, ErrMissingYear
	}

	year, err := ParseYear(d.Year.String())
	if err != nil {
		return reference.CanonicalDate{}, err
	}

	monthAbbr := d.Month.String()
	if monthAbbr == "" {
		monthAbbr = DefaultMonth
	}
	month, ok := MonthNumber(monthAbbr)
	if !ok {
		return reference.CanonicalDate{}, &MalformedDateError{Field: "Month", Value: monthAbbr}
	}

	day := DefaultDay
	if d.Day != "" {
		day, err = strconv.Atoi(strings.TrimSpace(d.Day.String()))
		if err != nil {
			return reference.CanonicalDate{}, &MalformedDateError{Field: "Day", Value: d.Day.String(), Err: err}
		}
	}

	return reference.CanonicalDate{Year: year, Month: month, Day: day}, nil
}

// ParseYear parses a stored year value.
func ParseYear(value string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, &MalformedDateError{Field: "Year", Value: value, Err: err}
	}
	return year, nil
}
