package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is how absolute sample times are written to datasets
const TimestampLayout = "2006-01-02 15:04:05.000000"

// TimeError reports a relative time value that could not be read as seconds
type TimeError struct {
	Value string
	Err   error
}

func (e *TimeError) Error() string {
	return fmt.Sprintf("invalid time value %q: %v", e.Value, e.Err)
}

func (e *TimeError) Unwrap() error {
	return e.Err
}

// NormalizeDecimal rewrites a locale-formatted number into the form
// strconv understands: comma decimal separators become periods and the
// exponent marker is lowercased ("2,3E-4" -> "2.3e-4").
func NormalizeDecimal(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ",", ".")
	return strings.ReplaceAll(s, "E", "e")
}

// ParseSeconds parses a relative time in seconds.
// Accepts period or comma decimals and optional exponent notation, e.g.
// "1.5", "1,5", "2,3E-4".
func ParseSeconds(raw string) (float64, error) {
	v, err := strconv.ParseFloat(NormalizeDecimal(raw), 64)
	if err != nil {
		return 0, &TimeError{Value: raw, Err: err}
	}
	return v, nil
}

// FormatSeconds renders seconds in plain decimal notation without
// trailing zeros. ParseSeconds(FormatSeconds(v)) == v.
func FormatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SecondsToDuration converts seconds to a duration rounded to the nanosecond
func SecondsToDuration(seconds float64) (time.Duration, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, &TimeError{Value: FormatSeconds(seconds), Err: fmt.Errorf("not a finite number")}
	}
	ns := math.Round(seconds * float64(time.Second))
	if ns > math.MaxInt64 || ns < math.MinInt64 {
		return 0, &TimeError{Value: FormatSeconds(seconds), Err: fmt.Errorf("out of duration range")}
	}
	return time.Duration(ns), nil
}

// startDateLayouts lists the accepted session start formats. Fractional
// seconds are accepted after the seconds field for every layout.
var startDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	time.RFC3339,
	"2006-01-02 15:04:05 UTC-07:00",
	"2006-01-02 15:04:05 MST",
	"2006-01-02",
}

// ParseStartDate parses a session start date.
// Supported formats:
// - "2023-05-12 14:33:21" (optionally with fractional seconds)
// - ISO 8601 / RFC 3339, with or without offset
// - "2023-05-12 14:33:21.123 UTC+02:00" (phyphox system time text)
// - "2023-05-12" (midnight)
// Values without an offset are read as UTC.
func ParseStartDate(raw string) (time.Time, error) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return time.Time{}, fmt.Errorf("empty start date")
	}
	for _, layout := range startDateLayouts {
		if t, err := time.Parse(layout, input); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid start date %q", raw)
}

// FormatTimestamp renders t in its own location without an offset suffix
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
