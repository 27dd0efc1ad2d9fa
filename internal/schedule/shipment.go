package schedule

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDay is returned for a shipment day outside 1-31.
var ErrInvalidDay = errors.New("shipment day must be between 1 and 31")

// Calendar tells which dates are public holidays.
type Calendar interface {
	IsHoliday(t time.Time) bool
}

// ValidateDay checks that d can be used as a day of month.
func ValidateDay(d int) error {
	if d < 1 || d > 31 {
		return fmt.Errorf("%d: %w", d, ErrInvalidDay)
	}
	return nil
}

// Candidate returns the unadjusted next shipment date: targetDay of the month
// after today's month, clamped to that month's length. A candidate that is not
// strictly after today moves one month further.
func Candidate(targetDay int, today time.Time) time.Time {
	today = truncateToDay(today)
	c := monthDay(today.Year(), today.Month()+1, targetDay, today.Location())
	if !c.After(today) {
		c = monthDay(today.Year(), today.Month()+2, targetDay, today.Location())
	}
	return c
}

// HolidayWindow returns the inclusive range of holidays that can affect a
// candidate: from the first of the month before it through the candidate.
func HolidayWindow(candidate time.Time) (from, to time.Time) {
	from = time.Date(candidate.Year(), candidate.Month()-1, 1, 0, 0, 0, 0, candidate.Location())
	return from, candidate
}

// IsBusinessDay reports whether t is a weekday that is not a holiday.
// A nil calendar has no holidays.
func IsBusinessDay(t time.Time, cal Calendar) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return cal == nil || !cal.IsHoliday(t)
}

// NextShipment returns the next valid shipment date for targetDay. The
// candidate slides backward over weekends and holidays to the nearest
// preceding business day; it never moves forward.
func NextShipment(targetDay int, today time.Time, cal Calendar) time.Time {
	d := Candidate(targetDay, today)
	for !IsBusinessDay(d, cal) {
		d = d.AddDate(0, 0, -1)
	}
	return d
}
