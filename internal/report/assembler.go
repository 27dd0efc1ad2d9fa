package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/chronoduo/reportjob/internal/render"
	"github.com/chronoduo/reportjob/internal/schedule"
	"github.com/chronoduo/reportjob/internal/store"
	"github.com/chronoduo/reportjob/internal/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Options configures an Assembler. Zero values fall back to defaults.
type Options struct {
	// Renderers produce the documents for each employee, in upload order.
	// Defaults to PDF then XLSX.
	Renderers []render.Renderer
	Logger    logrus.FieldLogger
	Now       func() time.Time
	Location  *time.Location
	LogoPath  string
	DryRun    bool
}

// Assembler runs the monthly report job for all clients due today.
type Assembler struct {
	store     store.Store
	publisher *Publisher
	renderers []render.Renderer
	log       logrus.FieldLogger
	now       func() time.Time
	loc       *time.Location
	logoPath  string
	dryRun    bool
}

// New returns an Assembler reading from st and publishing to bucket.
func New(st store.Store, bucket storage.Bucket, opts Options) *Assembler {
	a := &Assembler{
		store:     st,
		publisher: NewPublisher(bucket, opts.DryRun),
		renderers: opts.Renderers,
		log:       opts.Logger,
		now:       opts.Now,
		loc:       opts.Location,
		logoPath:  opts.LogoPath,
		dryRun:    opts.DryRun,
	}
	if len(a.renderers) == 0 {
		a.renderers = []render.Renderer{render.PDF{}, render.XLSX{}}
	}
	if a.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		a.log = l
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.loc == nil {
		a.loc = time.Local
	}
	return a
}

// Today returns the run date: the clock in the configured location,
// truncated to midnight.
func (a *Assembler) Today() time.Time {
	t := a.now().In(a.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, a.loc)
}

// Run processes every due client. Only a failure to load the due clients is
// returned as an error; everything else is recorded in the summary.
func (a *Assembler) Run(ctx context.Context) (*Summary, error) {
	today := a.Today()
	sum := &Summary{
		RunID:  uuid.NewString(),
		Today:  today,
		DryRun: a.dryRun,
	}
	log := a.log.WithFields(logrus.Fields{
		"run_id":  sum.RunID,
		"date":    today.Format(time.DateOnly),
		"dry_run": a.dryRun,
	})

	clients, err := a.store.DueClients(ctx, today.Day())
	if err != nil {
		return nil, fmt.Errorf("loading due clients: %w", err)
	}
	log.WithField("clients", len(clients)).Info("run started")

	for _, c := range clients {
		sum.Clients = append(sum.Clients, a.runClient(ctx, log, c, today))
	}

	log.WithFields(logrus.Fields{
		"published": sum.Count(StatusPublished),
		"skipped":   sum.Count(StatusSkipped),
		"failed":    sum.Count(StatusFailed),
		"documents": sum.Documents(),
	}).Info("run finished")
	return sum, nil
}

func (a *Assembler) runClient(ctx context.Context, log logrus.FieldLogger, c store.Client, today time.Time) ClientResult {
	res := ClientResult{
		Client: c,
		Period: schedule.ResolvePeriod(today, c.LastDay),
	}
	log = log.WithFields(logrus.Fields{
		"client_id": c.ID,
		"client":    c.Name,
		"period":    res.Period.String(),
	})

	employees, err := a.store.Employees(ctx, c.ID)
	if err != nil {
		res.Status = StatusSkipped
		res.Reason = fmt.Sprintf("listing employees: %v", err)
		log.WithError(err).Warn("client skipped")
		return res
	}
	if len(employees) == 0 {
		res.Status = StatusSkipped
		res.Reason = "no employees"
		log.Info("client skipped: no employees")
		return res
	}

	failed := 0
	for _, e := range employees {
		er := a.runEmployee(ctx, log, c, e, res.Period, today)
		if er.Status == StatusFailed {
			failed++
		}
		res.Employees = append(res.Employees, er)
	}

	switch {
	case res.Published() > 0:
		res.Status = StatusPublished
	case failed > 0:
		res.Status = StatusFailed
		res.Reason = fmt.Sprintf("%d of %d employees failed", failed, len(employees))
		log.Warn("client failed: nothing published")
		return res
	default:
		res.Status = StatusSkipped
		res.Reason = "no records"
		log.Info("client skipped: no records in period")
		return res
	}

	res.Schedule, res.ScheduleErr = a.advance(ctx, c, today)
	if res.ScheduleErr != nil {
		log.WithError(res.ScheduleErr).Error("schedule not fully advanced")
		return res
	}

	fields := logrus.Fields{"lastversand": res.Schedule.LastDay}
	if res.Schedule.NextDay != nil {
		fields["istversand"] = *res.Schedule.NextDay
		fields["next_date"] = res.Schedule.NextDate.Format(time.DateOnly)
	}
	log.WithFields(fields).Info("client published")
	return res
}

func (a *Assembler) runEmployee(ctx context.Context, log logrus.FieldLogger, c store.Client, e store.Employee, period schedule.Period, today time.Time) EmployeeResult {
	res := EmployeeResult{Employee: e}
	log = log.WithFields(logrus.Fields{
		"employee_id": e.ID,
		"employee":    e.Name,
	})

	if period.Empty() {
		res.Status = StatusSkipped
		res.Reason = "no records"
		log.Debug("employee skipped: empty period")
		return res
	}

	records, err := a.store.TimeRecords(ctx, c.ID, e.ID, period.Start, period.End)
	if err != nil {
		return a.fail(log, res, fmt.Errorf("loading time records: %w", err))
	}
	res.Records = len(records)
	if len(records) == 0 {
		res.Status = StatusSkipped
		res.Reason = "no records"
		log.Debug("employee skipped: no records")
		return res
	}

	rep := BuildReport(c, e, period, today, records, a.loc, a.logoPath)
	docs := make([]render.Document, 0, len(a.renderers))
	for _, r := range a.renderers {
		doc, err := r.Render(rep)
		if err != nil {
			return a.fail(log, res, fmt.Errorf("rendering: %w", err))
		}
		docs = append(docs, doc)
	}

	paths, err := a.publisher.Publish(ctx, c, e, today, docs)
	res.Paths = paths
	if err != nil {
		return a.fail(log, res, err)
	}

	res.Status = StatusPublished
	log.WithFields(logrus.Fields{
		"records":   res.Records,
		"documents": len(paths),
	}).Info("employee published")
	return res
}

func (a *Assembler) fail(log logrus.FieldLogger, res EmployeeResult, err error) EmployeeResult {
	res.Status = StatusFailed
	res.Reason = err.Error()
	log.WithError(err).Error("employee failed")
	return res
}

// advance computes the client's new schedule state and, outside a dry run,
// writes it back. lastversand always becomes today's day. istversand is
// recomputed when the client has a target day; if that fails, lastversand is
// still written and the scheduling error is returned with the update.
func (a *Assembler) advance(ctx context.Context, c store.Client, today time.Time) (*ScheduleUpdate, error) {
	upd := &ScheduleUpdate{LastDay: today.Day()}

	var schedErr error
	if c.TargetDay != nil {
		next, err := a.nextShipment(ctx, c, *c.TargetDay, today)
		if err != nil {
			schedErr = err
		} else {
			upd.NextDate = next
			upd.NextDay = store.Day(next.Day())
		}
	}

	if a.dryRun {
		return upd, schedErr
	}
	if err := a.store.UpdateSchedule(ctx, c.ID, upd.LastDay, upd.NextDay); err != nil {
		return upd, errors.Join(schedErr, fmt.Errorf("updating schedule: %w", err))
	}
	return upd, schedErr
}

func (a *Assembler) nextShipment(ctx context.Context, c store.Client, targetDay int, today time.Time) (time.Time, error) {
	if err := schedule.ValidateDay(targetDay); err != nil {
		return time.Time{}, fmt.Errorf("sollversand: %w", err)
	}

	from, to := schedule.HolidayWindow(schedule.Candidate(targetDay, today))
	holidays, err := a.store.Holidays(ctx, c.Country, c.Region, from, to)
	if err != nil {
		return time.Time{}, fmt.Errorf("loading holidays: %w", err)
	}
	cal, err := schedule.NewHolidaySet(holidays, from, to)
	if err != nil {
		return time.Time{}, err
	}
	return schedule.NextShipment(targetDay, today, cal), nil
}
