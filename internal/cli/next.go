package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/chronoduo/reportjob/internal/schedule"
	"github.com/chronoduo/reportjob/internal/store"
	"github.com/spf13/cobra"
)

var nextCmd = LeafCommand{
	Use:   "next",
	Short: "Show the next shipment date for a target day",
	IntFlags: []IntFlag{
		{Name: "day", Usage: "target shipment day of month (1-31)"},
	},
	StrFlags: []StringFlag{
		{Name: "date", Usage: "compute from this date instead of today"},
		{Name: "country", Usage: "country code whose holidays apply (needs the database)"},
		{Name: "region", Usage: "region code within the country"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		day, _ := cmd.Flags().GetInt("day")
		dateFlag, _ := cmd.Flags().GetString("date")
		country, _ := cmd.Flags().GetString("country")
		region, _ := cmd.Flags().GetString("region")

		var source holidaySource
		if country != "" {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			source = a.store.Holidays
		}
		return runNext(cmd, day, dateFlag, country, region, source, time.Now)
	},
}.Build()

// holidaySource matches store.Store.Holidays.
type holidaySource func(ctx context.Context, country, region string, from, to time.Time) ([]store.Holiday, error)

func runNext(
	cmd *cobra.Command,
	day int,
	dateFlag, country, region string,
	source holidaySource,
	nowFunc func() time.Time,
) error {
	if err := schedule.ValidateDay(day); err != nil {
		return err
	}

	today, err := resolveToday(dateFlag, nowFunc)
	if err != nil {
		return err
	}

	candidate := schedule.Candidate(day, today)
	from, to := schedule.HolidayWindow(candidate)

	cal, err := schedule.NewHolidaySet(nil, from, to)
	if err != nil {
		return err
	}
	if source != nil && country != "" {
		holidays, err := source(commandContext(cmd), country, region, from, to)
		if err != nil {
			return fmt.Errorf("loading holidays: %w", err)
		}
		if cal, err = schedule.NewHolidaySet(holidays, from, to); err != nil {
			return err
		}
	}

	next := schedule.NextShipment(day, today, cal)
	w := cmd.OutOrStdout()

	_, _ = fmt.Fprintf(w, "%s %s\n", Silent("Candidate:"), formatDay(candidate))
	for d := candidate; d.After(next); d = d.AddDate(0, 0, -1) {
		reason := "weekend"
		if name, ok := cal.Name(d); ok {
			reason = name
		}
		_, _ = fmt.Fprintf(w, "  %s %s  %s\n", Warning("skipped"), formatDay(d), Silent(reason))
	}
	_, _ = fmt.Fprintf(w, "%s %s\n", Silent("Next shipment:"), Primary(formatDay(next)))
	return nil
}

// resolveToday returns the run date from a --date flag, or today.
func resolveToday(dateFlag string, nowFunc func() time.Time) (time.Time, error) {
	now := nowFunc()
	if dateFlag == "" {
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
	}
	return schedule.ParseDate(dateFlag, now)
}

func formatDay(t time.Time) string {
	return fmt.Sprintf("%s (%s)", t.Format(time.DateOnly), t.Weekday())
}
