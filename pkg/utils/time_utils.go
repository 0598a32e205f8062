package utils

import "time"

const DefaultTimezone = "Africa/Nairobi"

// LoadLocation resolves name, falling back to East Africa Time (+03:00) when
// the host has no tzdata.
func LoadLocation(name string) *time.Location {
	if name == "" {
		name = DefaultTimezone
	}
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.FixedZone("EAT", 3*3600)
}

// Convert an epoch value in **seconds** to loc.
// Returns zero time if t<=0 to let callers decide how to render.
func FromUnixSeconds(t int64, loc *time.Location) time.Time {
	if t <= 0 {
		return time.Time{}
	}
	return time.Unix(t, 0).In(loc)
}

func FormatRFC3339(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(time.RFC3339) // e.g. 2026-10-18T15:12:00+03:00
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
