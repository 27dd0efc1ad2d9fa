package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/chronoduo/reportjob/internal/store"
	"github.com/teambition/rrule-go"
)

// HolidaySet is a Calendar backed by concrete holiday dates.
type HolidaySet struct {
	days map[string]string // date key -> holiday name
}

// NewHolidaySet builds a set from stored holidays. Fixed dates are taken as
// they are; recurrence rules are expanded between from and to (inclusive).
func NewHolidaySet(holidays []store.Holiday, from, to time.Time) (*HolidaySet, error) {
	s := &HolidaySet{days: make(map[string]string)}

	from = utcDay(from)
	to = utcDay(to)

	for _, h := range holidays {
		if h.Date != nil {
			s.Add(*h.Date, h.Name)
		}
		if h.RRule == "" {
			continue
		}

		dates, err := expandRule(h.RRule, from, to)
		if err != nil {
			return nil, fmt.Errorf("holiday %q: %w", h.Name, err)
		}
		for _, d := range dates {
			s.Add(d, h.Name)
		}
	}
	return s, nil
}

// Add marks t as a holiday.
func (s *HolidaySet) Add(t time.Time, name string) {
	s.days[dateKey(t)] = name
}

// IsHoliday reports whether t's calendar day is in the set.
func (s *HolidaySet) IsHoliday(t time.Time) bool {
	_, ok := s.days[dateKey(t)]
	return ok
}

// Name returns the holiday name for t, if any.
func (s *HolidaySet) Name(t time.Time) (string, bool) {
	name, ok := s.days[dateKey(t)]
	return name, ok
}

// Len returns the number of holiday dates.
func (s *HolidaySet) Len() int {
	return len(s.days)
}

// expandRule evaluates an RRULE between from and to. Rules without DTSTART
// are anchored at from so Between covers the requested window.
func expandRule(raw string, from, to time.Time) ([]time.Time, error) {
	raw = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(raw)), "RRULE:")
	r, err := rrule.StrToRRule(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid RRULE %q: %w", raw, err)
	}

	opts := r.OrigOptions
	if opts.Dtstart.IsZero() {
		opts.Dtstart = from
	}
	r, err = rrule.NewRRule(opts)
	if err != nil {
		return nil, err
	}
	return r.Between(from, to, true), nil
}

func utcDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
