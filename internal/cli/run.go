package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/chronoduo/reportjob/internal/report"
	"github.com/chronoduo/reportjob/internal/schedule"
	"github.com/chronoduo/reportjob/internal/storage"
	"github.com/chronoduo/reportjob/internal/store"
	"github.com/spf13/cobra"
)

var runCmd = LeafCommand{
	Use:   "run",
	Short: "Render and publish reports for every client due today",
	BoolFlags: []BoolFlag{
		{Name: "dry-run", Usage: "render documents without uploading or updating schedules"},
	},
	StrFlags: []StringFlag{
		{Name: "date", Usage: "run as if today were this date (YYYY-MM-DD)"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		renderers, err := a.renderers()
		if err != nil {
			return err
		}

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		dateFlag, _ := cmd.Flags().GetString("date")

		return runJob(cmd, a.store, a.bucket(), report.Options{
			Renderers: renderers,
			Logger:    a.log,
			Location:  a.cfg.Location(),
			LogoPath:  a.cfg.LogoPath,
			DryRun:    dryRun,
		}, dateFlag, time.Now)
	},
}.Build()

func runJob(
	cmd *cobra.Command,
	st store.Store,
	bucket storage.Bucket,
	opts report.Options,
	dateFlag string,
	nowFunc func() time.Time,
) error {
	if opts.Location == nil {
		opts.Location = time.Local
	}

	opts.Now = nowFunc
	if dateFlag != "" {
		d, err := schedule.ParseDate(dateFlag, nowFunc().In(opts.Location))
		if err != nil {
			return err
		}
		opts.Now = func() time.Time { return d }
	}

	sum, err := report.New(st, bucket, opts).Run(commandContext(cmd))
	if err != nil {
		return err
	}

	printSummary(cmd.OutOrStdout(), sum)
	return nil
}

func printSummary(w io.Writer, sum *report.Summary) {
	header := fmt.Sprintf("Run %s for %s", sum.RunID, sum.Today.Format(time.DateOnly))
	if sum.DryRun {
		header += " " + Warning("(dry run)")
	}
	_, _ = fmt.Fprintln(w, Primary(header))

	if len(sum.Clients) == 0 {
		_, _ = fmt.Fprintln(w, Silent("No clients due."))
		return
	}

	for _, c := range sum.Clients {
		_, _ = fmt.Fprintf(w, "%s %s  %s\n", statusLabel(c.Status), c.Client.Name, Silent(c.Period.String()))
		if c.Reason != "" {
			_, _ = fmt.Fprintf(w, "    %s\n", Silent(c.Reason))
		}

		for _, e := range c.Employees {
			line := fmt.Sprintf("    %s %s", statusLabel(e.Status), e.Employee.Name)
			switch {
			case e.Status == report.StatusPublished:
				line += Silent(fmt.Sprintf("  %d records, %d documents", e.Records, len(e.Paths)))
			case e.Reason != "":
				line += "  " + Silent(e.Reason)
			}
			_, _ = fmt.Fprintln(w, line)
		}

		switch {
		case c.ScheduleErr != nil:
			_, _ = fmt.Fprintf(w, "    %s %s\n", Error("schedule not fully advanced:"), c.ScheduleErr)
		case c.Schedule != nil && c.Schedule.NextDay != nil:
			_, _ = fmt.Fprintf(w, "    %s %s\n", Info("next shipment:"), c.Schedule.NextDate.Format(time.DateOnly))
		case c.Schedule != nil:
			_, _ = fmt.Fprintf(w, "    %s %d\n", Info("last shipment day:"), c.Schedule.LastDay)
		}
	}

	_, _ = fmt.Fprintf(w, "%d published, %d skipped, %d failed, %d documents\n",
		sum.Count(report.StatusPublished),
		sum.Count(report.StatusSkipped),
		sum.Count(report.StatusFailed),
		sum.Documents())
}
