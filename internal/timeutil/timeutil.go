// Package timeutil converts client-local timestamps into UTC instants.
package timeutil

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidFormat marks input that cannot be parsed as a date-and-time.
var ErrInvalidFormat = errors.New("invalid datetime format")

// Accepted layouts for the datetime-local form value, most common first.
var layouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// ToUTC converts a timezone-less local datetime string into a UTC
// instant. offsetMinutes is the number of minutes local time is ahead
// of UTC (positive east of Greenwich), so UTC = local - offset.
// Browsers report the opposite sign via Date.getTimezoneOffset();
// clients must negate that value before sending it.
func ToUTC(local string, offsetMinutes int) (time.Time, error) {
	var parsed time.Time
	var err error
	for _, layout := range layouts {
		parsed, err = time.Parse(layout, local)
		if err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q (expected YYYY-MM-DDTHH:MM)", ErrInvalidFormat, local)
	}

	return parsed.Add(-time.Duration(offsetMinutes) * time.Minute).UTC(), nil
}
