package utils

import (
	"fmt"
	"time"
)

// OrgLocation resolves an organization's IANA timezone identifier. Every
// "now" and "start of day" computation for that organization's attendance is
// anchored in this location, never UTC or the client's timezone.
func OrgLocation(tz string) (*time.Location, error) {
	if tz == "" {
		return nil, fmt.Errorf("organization timezone is not configured")
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid organization timezone %q: %w", tz, err)
	}
	return loc, nil
}

// StartOfDay truncates t to midnight in the given location.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// TimeOfDayOn anchors a "HH:MM:SS" (or "HH:MM") local time-of-day string onto
// the calendar day containing day, in day's location.
func TimeOfDayOn(day time.Time, timeOfDay string) (time.Time, error) {
	parsed, err := parseTimeOfDay(timeOfDay)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(),
		parsed.Hour(), parsed.Minute(), parsed.Second(), 0, day.Location()), nil
}

func parseTimeOfDay(s string) (time.Time, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time of day %q, want HH:MM[:SS]", s)
}
