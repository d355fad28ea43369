// Package timezone resolves IANA zone names for the clock the bot answers in.
package timezone

import (
	"fmt"
	"sync"
	"time"
)

// TimezoneUTC is the UTC timezone identifier
const TimezoneUTC = "UTC"

// loaded caches zones by name; a turn may name its zone on every activity.
var loaded sync.Map

// ParseTimezone parses an IANA timezone identifier (e.g., "America/New_York").
// An empty name yields fallback, or UTC when fallback is nil.
// If the timezone is invalid, returns fallback and an error.
func ParseTimezone(tz string, fallback *time.Location) (*time.Location, error) {
	if fallback == nil {
		fallback = time.UTC
	}
	switch tz {
	case "":
		return fallback, nil
	case TimezoneUTC:
		return time.UTC, nil
	}

	if loc, ok := loaded.Load(tz); ok {
		return loc.(*time.Location), nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fallback, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	loaded.Store(tz, loc)
	return loc, nil
}

// IsValidTimezone checks if a timezone identifier is valid.
func IsValidTimezone(tz string) bool {
	_, err := ParseTimezone(tz, nil)
	return err == nil
}
