package report

import (
	"time"

	"github.com/chronoduo/reportjob/internal/duration"
	"github.com/chronoduo/reportjob/internal/render"
	"github.com/chronoduo/reportjob/internal/schedule"
	"github.com/chronoduo/reportjob/internal/store"
)

// BuildReport turns one employee's records into renderer input. Clock times
// are shown in loc as "HH:MM"; durations are copied as stored and summed.
func BuildReport(
	client store.Client,
	emp store.Employee,
	period schedule.Period,
	issued time.Time,
	records []store.TimeRecord,
	loc *time.Location,
	logoPath string,
) render.Report {
	rows := make([]render.Row, len(records))
	breaks := make([]string, len(records))
	nets := make([]string, len(records))
	deltas := make([]string, len(records))

	for i, rec := range records {
		rows[i] = render.Row{
			Date:   rec.Date,
			Status: rec.Status,
			Start:  clock(rec.FirstStart, loc),
			End:    clock(rec.LastEnd, loc),
			Break:  rec.Break,
			Net:    rec.Net,
			Delta:  rec.Delta,
		}
		breaks[i] = rec.Break
		nets[i] = rec.Net
		deltas[i] = rec.Delta
	}

	netSecs := duration.Seconds(nets)
	deltaSecs := duration.Seconds(deltas)

	return render.Report{
		ClientID:     client.ID,
		ClientName:   client.Name,
		EmployeeID:   emp.ID,
		EmployeeName: emp.Name,
		Period:       period,
		Issued:       issued,
		Rows:         rows,
		TotalBreak:   duration.Sum(breaks),
		TotalNet:     duration.Format(netSecs),
		TotalDelta:   duration.Format(deltaSecs),
		NetSeconds:   netSecs,
		DeltaSeconds: deltaSecs,
		LogoPath:     logoPath,
	}
}

// clock truncates a timestamp to hour:minute in loc.
func clock(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	if loc != nil {
		return t.In(loc).Format("15:04")
	}
	return t.Format("15:04")
}
