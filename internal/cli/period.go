package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/chronoduo/reportjob/internal/render"
	"github.com/chronoduo/reportjob/internal/schedule"
	"github.com/spf13/cobra"
)

var periodCmd = LeafCommand{
	Use:   "period",
	Short: "Show the period a report run would cover",
	StrFlags: []StringFlag{
		{Name: "last", Usage: "day of month of the previous shipment (empty if none)"},
		{Name: "date", Usage: "run date (default today)"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		last, _ := cmd.Flags().GetString("last")
		dateFlag, _ := cmd.Flags().GetString("date")
		return runPeriod(cmd, last, dateFlag, time.Now)
	},
}.Build()

func runPeriod(cmd *cobra.Command, last, dateFlag string, nowFunc func() time.Time) error {
	var lastDay *int
	if last != "" {
		d, err := strconv.Atoi(last)
		if err != nil {
			return fmt.Errorf("invalid --last %q: %w", last, err)
		}
		if err := schedule.ValidateDay(d); err != nil {
			return err
		}
		lastDay = &d
	}

	today, err := resolveToday(dateFlag, nowFunc)
	if err != nil {
		return err
	}

	p := schedule.ResolvePeriod(today, lastDay)
	w := cmd.OutOrStdout()
	if p.Empty() {
		_, _ = fmt.Fprintf(w, "%s %s\n", Silent("Period:"), Warning("empty"))
		return nil
	}
	_, _ = fmt.Fprintf(w, "%s %s to %s\n", Silent("Period:"),
		Primary(render.FormatDate(p.Start)), Primary(render.FormatDate(p.End)))
	return nil
}
