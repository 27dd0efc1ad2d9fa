package schedule

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO layout used for date keys and flags.
const DateLayout = "2006-01-02"

// ParseDate parses a date expression relative to now. It accepts "today",
// "yesterday", "tomorrow", ISO dates ("2024-03-10") and German dates
// ("10.03.2024", "10.3.2024"). The result is midnight in now's location.
func ParseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))

	switch s {
	case "today", "heute":
		return truncateToDay(now), nil
	case "yesterday", "gestern":
		return truncateToDay(now).AddDate(0, 0, -1), nil
	case "tomorrow", "morgen":
		return truncateToDay(now).AddDate(0, 0, 1), nil
	}

	for _, layout := range []string{DateLayout, "02.01.2006", "2.1.2006"} {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q (expected YYYY-MM-DD)", s)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysIn returns the number of days in the given month; month may be out of
// range and is normalised the way time.Date does it.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// monthDay returns day of the given month, clamped to the month's last day.
func monthDay(year int, month time.Month, day int, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, loc)
}

func dateKey(t time.Time) string {
	return t.Format(DateLayout)
}
