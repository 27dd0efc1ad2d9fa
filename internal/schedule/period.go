package schedule

import (
	"fmt"
	"time"
)

// Period is an inclusive range of calendar days covered by one report.
type Period struct {
	Start time.Time
	End   time.Time
}

// Empty reports whether the period contains no days.
func (p Period) Empty() bool {
	return p.Start.After(p.End)
}

// String returns the period as "YYYY-MM-DD..YYYY-MM-DD".
func (p Period) String() string {
	return fmt.Sprintf("%s..%s", dateKey(p.Start), dateKey(p.End))
}

// ResolvePeriod computes the range a report run on today covers. The range
// always ends yesterday. With a previous shipment it starts the day after
// that shipment's day in the previous month; without one it starts on the
// first of the month two months back.
func ResolvePeriod(today time.Time, lastDay *int) Period {
	today = truncateToDay(today)
	end := today.AddDate(0, 0, -1)

	var start time.Time
	if lastDay != nil {
		start = monthDay(today.Year(), today.Month()-1, *lastDay, today.Location()).AddDate(0, 0, 1)
	} else {
		start = time.Date(today.Year(), today.Month()-2, 1, 0, 0, 0, 0, today.Location())
	}

	return Period{Start: start, End: end}
}
