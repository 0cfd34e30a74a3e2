package archive

import (
	"errors"
	"fmt"
	"time"
)

// ErrDateParse is returned when an epoch boundary string cannot be parsed.
var ErrDateParse = errors.New("unparseable date")

// Unix epoch (1970-01-01T00:00:00Z) expressed as a Julian date.
const unixEpochJD = 2440587.5

// dateLayouts are accepted epoch boundary formats, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// JulianDate converts a time to a Julian date.
func JulianDate(t time.Time) float64 {
	return unixEpochJD + float64(t.UnixNano())/float64(24*time.Hour)
}

// ParseDateToJD parses a calendar date string (UTC) and converts it to a
// Julian date. Malformed input wraps ErrDateParse.
func ParseDateToJD(s string) (float64, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return JulianDate(t), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrDateParse, s)
}
