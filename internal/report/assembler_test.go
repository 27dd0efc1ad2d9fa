package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/chronoduo/reportjob/internal/render"
	"github.com/chronoduo/reportjob/internal/schedule"
	"github.com/chronoduo/reportjob/internal/storage"
	"github.com/chronoduo/reportjob/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var berlin = mustLocation("Europe/Berlin")

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func stamp(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

// fixedClock returns 2024-03-15 10:00 in Berlin.
func fixedClock() time.Time {
	return time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
}

// textRenderer renders a plain-text summary so tests can inspect content.
type textRenderer struct{ ext string }

func (r textRenderer) Render(rep render.Report) (render.Document, error) {
	var b strings.Builder
	b.WriteString(rep.ClientName + "|" + rep.EmployeeName + "|" + rep.Period.String() + "\n")
	for _, row := range rep.Rows {
		b.WriteString(row.Date.Format(time.DateOnly) + " " + row.Start + "-" + row.End + " " + row.Net + "\n")
	}
	b.WriteString("total " + rep.TotalBreak + " " + rep.TotalNet + " " + rep.TotalDelta)
	return render.Document{Ext: r.ext, ContentType: storage.ContentType(r.ext), Body: []byte(b.String())}, nil
}

type failingRenderer struct{}

func (failingRenderer) Render(render.Report) (render.Document, error) {
	return render.Document{}, errors.New("boom")
}

func dataset() store.Dataset {
	return store.Dataset{
		Clients: []store.Client{
			{
				ID: "k1", Name: "Muster GmbH", Status: store.StatusActive,
				TargetDay: store.Day(12), LastDay: store.Day(15), NextDay: store.Day(15),
				Country: "DE", Region: "BY",
			},
			{ID: "k2", Name: "Leer AG", Status: store.StatusActive, NextDay: store.Day(15)},
			{ID: "k3", Name: "Inaktiv KG", Status: "inaktiv", NextDay: store.Day(15)},
			{ID: "k4", Name: "Später GmbH", Status: store.StatusActive, NextDay: store.Day(20)},
		},
		Employees: []store.Employee{
			{ID: "m1", ClientID: "k1", Name: "Erika Mustermann"},
			{ID: "m2", ClientID: "k1", Name: "Max Ohnezeit"},
			{ID: "m3", ClientID: "k1", Name: "Gelöscht", DeletedAt: stamp("2024-01-01T00:00:00Z")},
		},
		Records: []store.TimeRecord{
			{
				ClientID: "k1", EmployeeID: "m1", Date: date(2024, 3, 4),
				FirstStart: stamp("2024-03-04T07:00:00Z"), LastEnd: stamp("2024-03-04T14:30:00Z"),
				Break: "0:30:00", Net: "7:00:00", Delta: "-0:30:00", Status: "anwesend",
			},
			{
				ClientID: "k1", EmployeeID: "m1", Date: date(2024, 3, 1),
				FirstStart: stamp("2024-03-01T07:30:00Z"), LastEnd: stamp("2024-03-01T16:00:00Z"),
				Break: "0:30:00", Net: "8:00:00", Delta: "0:30:00", Status: "anwesend",
			},
			// before the period
			{
				ClientID: "k1", EmployeeID: "m1", Date: date(2024, 2, 10),
				Break: "0:00:00", Net: "9:00:00", Delta: "1:00:00",
			},
		},
		Holidays: []store.Holiday{
			{Country: "DE", RRule: "FREQ=YEARLY;BYMONTH=4;BYMONTHDAY=12", Name: "Betriebsfeiertag"},
		},
	}
}

func newAssembler(st store.Store, bucket storage.Bucket, opts Options) *Assembler {
	opts.Now = fixedClock
	opts.Location = berlin
	if opts.Renderers == nil {
		opts.Renderers = []render.Renderer{textRenderer{ext: "pdf"}, textRenderer{ext: "xlsx"}}
	}
	return New(st, bucket, opts)
}

func TestRun_PublishesAndAdvancesSchedule(t *testing.T) {
	st := store.NewMemory(dataset())
	bucket := storage.NewMemoryBucket()

	sum, err := newAssembler(st, bucket, Options{}).Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, sum.RunID)
	assert.Equal(t, "2024-03-15", sum.Today.Format(time.DateOnly))
	require.Len(t, sum.Clients, 2, "only active clients due today")

	k1 := sum.Clients[0]
	assert.Equal(t, StatusPublished, k1.Status)
	assert.Equal(t, "2024-02-16..2024-03-14", k1.Period.String())
	require.Len(t, k1.Employees, 2, "deleted employees are excluded")
	assert.Equal(t, StatusPublished, k1.Employees[0].Status)
	assert.Equal(t, 2, k1.Employees[0].Records)
	assert.Equal(t, StatusSkipped, k1.Employees[1].Status)
	assert.Equal(t, "no records", k1.Employees[1].Reason)

	assert.Equal(t, []string{
		"k1/2024_3/Muster_GmbH_3_2024_Erika_Mustermann.pdf",
		"k1/2024_3/Muster_GmbH_3_2024_Erika_Mustermann.xlsx",
	}, bucket.Paths())
	assert.Equal(t, 2, sum.Documents())

	obj, ok := bucket.Get("k1/2024_3/Muster_GmbH_3_2024_Erika_Mustermann.pdf")
	require.True(t, ok)
	assert.Equal(t, storage.ContentTypePDF, obj.ContentType)
	assert.Equal(t, "Muster GmbH|Erika Mustermann|2024-02-16..2024-03-14\n"+
		"2024-03-01 08:30-17:00 8:00:00\n"+
		"2024-03-04 08:00-15:30 7:00:00\n"+
		"total 1:00:00 15:00:00 0:00:00", string(obj.Body))

	// April 12 2024 is a Friday holiday, so the shipment slides to Thursday.
	require.NoError(t, k1.ScheduleErr)
	require.NotNil(t, k1.Schedule)
	assert.Equal(t, 15, k1.Schedule.LastDay)
	require.NotNil(t, k1.Schedule.NextDay)
	assert.Equal(t, 11, *k1.Schedule.NextDay)
	assert.Equal(t, "2024-04-11", k1.Schedule.NextDate.Format(time.DateOnly))

	c, ok := st.Client("k1")
	require.True(t, ok)
	assert.Equal(t, 15, *c.LastDay)
	assert.Equal(t, 11, *c.NextDay)

	k2 := sum.Clients[1]
	assert.Equal(t, StatusSkipped, k2.Status)
	assert.Equal(t, "no employees", k2.Reason)
	assert.Nil(t, k2.Schedule)

	assert.Equal(t, 1, sum.Count(StatusPublished))
	assert.Equal(t, 1, sum.Count(StatusSkipped))
	assert.Empty(t, sum.ScheduleErrors())
}

func TestRun_DryRunDoesNotWrite(t *testing.T) {
	st := store.NewMemory(dataset())
	bucket := storage.NewMemoryBucket()

	sum, err := newAssembler(st, bucket, Options{DryRun: true}).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, sum.DryRun)
	assert.Empty(t, bucket.Paths())
	assert.Equal(t, 2, sum.Documents())

	k1 := sum.Clients[0]
	require.NotNil(t, k1.Schedule)
	assert.Equal(t, 11, *k1.Schedule.NextDay)

	c, _ := st.Client("k1")
	assert.Equal(t, 15, *c.NextDay, "schedule untouched")
}

func TestRun_NoTargetDayOnlyWritesLastDay(t *testing.T) {
	ds := dataset()
	ds.Clients[0].TargetDay = nil
	st := store.NewMemory(ds)

	sum, err := newAssembler(st, storage.NewMemoryBucket(), Options{}).Run(context.Background())
	require.NoError(t, err)

	k1 := sum.Clients[0]
	require.NotNil(t, k1.Schedule)
	assert.Nil(t, k1.Schedule.NextDay)

	c, _ := st.Client("k1")
	assert.Equal(t, 15, *c.LastDay)
	assert.Equal(t, 15, *c.NextDay)
}

func TestRun_NoHistoryUsesTwoMonthWindow(t *testing.T) {
	ds := dataset()
	ds.Clients[0].LastDay = nil
	st := store.NewMemory(ds)

	sum, err := newAssembler(st, storage.NewMemoryBucket(), Options{}).Run(context.Background())
	require.NoError(t, err)

	k1 := sum.Clients[0]
	assert.Equal(t, "2024-01-01..2024-03-14", k1.Period.String())
	assert.Equal(t, 3, k1.Employees[0].Records)
}

func TestRun_RenderFailureFailsEmployee(t *testing.T) {
	st := store.NewMemory(dataset())
	bucket := storage.NewMemoryBucket()

	sum, err := newAssembler(st, bucket, Options{
		Renderers: []render.Renderer{textRenderer{ext: "pdf"}, failingRenderer{}},
	}).Run(context.Background())
	require.NoError(t, err)

	k1 := sum.Clients[0]
	assert.Equal(t, StatusFailed, k1.Status)
	assert.Equal(t, StatusFailed, k1.Employees[0].Status)
	assert.Contains(t, k1.Employees[0].Reason, "boom")
	assert.Empty(t, bucket.Paths(), "nothing uploaded when a render fails")
	assert.Nil(t, k1.Schedule)

	c, _ := st.Client("k1")
	assert.Equal(t, 15, *c.NextDay)
}

type failingBucket struct {
	failOn string
	calls  []string
}

func (b *failingBucket) Upload(_ context.Context, objectPath, _ string, _ []byte) error {
	b.calls = append(b.calls, objectPath)
	if strings.HasSuffix(objectPath, b.failOn) {
		return errors.New("503 service unavailable")
	}
	return nil
}

func TestRun_UploadFailureFailsEmployee(t *testing.T) {
	st := store.NewMemory(dataset())
	bucket := &failingBucket{failOn: ".xlsx"}

	sum, err := newAssembler(st, bucket, Options{}).Run(context.Background())
	require.NoError(t, err)

	k1 := sum.Clients[0]
	assert.Equal(t, StatusFailed, k1.Status)
	e := k1.Employees[0]
	assert.Equal(t, StatusFailed, e.Status)
	assert.Contains(t, e.Reason, "503")
	assert.Equal(t, []string{"k1/2024_3/Muster_GmbH_3_2024_Erika_Mustermann.pdf"}, e.Paths)
	assert.Len(t, bucket.calls, 2)
	assert.Equal(t, 0, sum.Documents())
}

// faultyStore wraps a Memory store and injects errors.
type faultyStore struct {
	*store.Memory
	dueErr       error
	employeesErr error
	recordsErr   error
	holidaysErr  error
	updateErr    error
}

func (s *faultyStore) DueClients(ctx context.Context, day int) ([]store.Client, error) {
	if s.dueErr != nil {
		return nil, s.dueErr
	}
	return s.Memory.DueClients(ctx, day)
}

func (s *faultyStore) Employees(ctx context.Context, clientID string) ([]store.Employee, error) {
	if s.employeesErr != nil {
		return nil, s.employeesErr
	}
	return s.Memory.Employees(ctx, clientID)
}

func (s *faultyStore) TimeRecords(ctx context.Context, clientID, employeeID string, from, to time.Time) ([]store.TimeRecord, error) {
	if s.recordsErr != nil {
		return nil, s.recordsErr
	}
	return s.Memory.TimeRecords(ctx, clientID, employeeID, from, to)
}

func (s *faultyStore) Holidays(ctx context.Context, country, region string, from, to time.Time) ([]store.Holiday, error) {
	if s.holidaysErr != nil {
		return nil, s.holidaysErr
	}
	return s.Memory.Holidays(ctx, country, region, from, to)
}

func (s *faultyStore) UpdateSchedule(ctx context.Context, clientID string, lastDay int, nextDay *int) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	return s.Memory.UpdateSchedule(ctx, clientID, lastDay, nextDay)
}

func TestRun_DueClientsFailureIsFatal(t *testing.T) {
	st := &faultyStore{Memory: store.NewMemory(dataset()), dueErr: errors.New("connection refused")}

	sum, err := newAssembler(st, storage.NewMemoryBucket(), Options{}).Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, sum)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRun_PerUnitStoreFailures(t *testing.T) {
	tests := []struct {
		name           string
		st             func(*faultyStore)
		clientStatus   Status
		employeeStatus Status
		scheduleErr    string
		lastDay        int
	}{
		{
			name:         "employees",
			st:           func(s *faultyStore) { s.employeesErr = errors.New("timeout") },
			clientStatus: StatusSkipped,
			lastDay:      10,
		},
		{
			name:           "records",
			st:             func(s *faultyStore) { s.recordsErr = errors.New("timeout") },
			clientStatus:   StatusFailed,
			employeeStatus: StatusFailed,
			lastDay:        10,
		},
		{
			name:           "holidays",
			st:             func(s *faultyStore) { s.holidaysErr = errors.New("timeout") },
			clientStatus:   StatusPublished,
			employeeStatus: StatusPublished,
			scheduleErr:    "loading holidays",
			lastDay:        15,
		},
		{
			name:           "update",
			st:             func(s *faultyStore) { s.updateErr = errors.New("read-only") },
			clientStatus:   StatusPublished,
			employeeStatus: StatusPublished,
			scheduleErr:    "updating schedule",
			lastDay:        10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := dataset()
			ds.Clients[0].LastDay = store.Day(10)
			st := &faultyStore{Memory: store.NewMemory(ds)}
			tt.st(st)

			sum, err := newAssembler(st, storage.NewMemoryBucket(), Options{}).Run(context.Background())
			require.NoError(t, err)
			require.Len(t, sum.Clients, 2)

			k1 := sum.Clients[0]
			assert.Equal(t, tt.clientStatus, k1.Status)
			if tt.employeeStatus != "" {
				assert.Equal(t, tt.employeeStatus, k1.Employees[0].Status)
			}
			if tt.scheduleErr != "" {
				require.Error(t, k1.ScheduleErr)
				assert.Contains(t, k1.ScheduleErr.Error(), tt.scheduleErr)
				assert.Len(t, sum.ScheduleErrors(), 1)
			}

			c, _ := st.Client("k1")
			assert.Equal(t, tt.lastDay, *c.LastDay)
			assert.Equal(t, 15, *c.NextDay, "istversand unchanged")
		})
	}
}

func TestRun_InvalidRuleStillWritesLastDay(t *testing.T) {
	ds := dataset()
	ds.Clients[0].LastDay = store.Day(10)
	ds.Holidays = append(ds.Holidays, store.Holiday{Country: "DE", RRule: "FREQ=SOMETIMES", Name: "Kaputt"})
	st := store.NewMemory(ds)

	sum, err := newAssembler(st, storage.NewMemoryBucket(), Options{}).Run(context.Background())
	require.NoError(t, err)

	k1 := sum.Clients[0]
	assert.Equal(t, StatusPublished, k1.Status)
	require.Error(t, k1.ScheduleErr)
	assert.Contains(t, k1.ScheduleErr.Error(), "Kaputt")
	require.NotNil(t, k1.Schedule)
	assert.Equal(t, 15, k1.Schedule.LastDay)
	assert.Nil(t, k1.Schedule.NextDay)

	c, _ := st.Client("k1")
	assert.Equal(t, 15, *c.LastDay)
	assert.Equal(t, 15, *c.NextDay)
}

func TestRun_InvalidTargetDay(t *testing.T) {
	ds := dataset()
	ds.Clients[0].TargetDay = store.Day(32)
	ds.Clients[0].LastDay = store.Day(10)
	st := store.NewMemory(ds)

	sum, err := newAssembler(st, storage.NewMemoryBucket(), Options{}).Run(context.Background())
	require.NoError(t, err)
	require.Error(t, sum.Clients[0].ScheduleErr)
	assert.Contains(t, sum.Clients[0].ScheduleErr.Error(), "sollversand")

	c, _ := st.Client("k1")
	assert.Equal(t, 15, *c.LastDay)
	assert.Equal(t, 15, *c.NextDay)
}

func TestRun_RealRenderers(t *testing.T) {
	st := store.NewMemory(dataset())
	bucket := storage.NewMemoryBucket()
	tmpl := render.NewTemplate("<h1>{{firma_name}}</h1><table>{{table_rows}}</table>")

	a := New(st, bucket, Options{
		Renderers: []render.Renderer{render.PDF{}, render.XLSX{}, tmpl},
		Now:       fixedClock,
		Location:  berlin,
	})
	sum, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Documents())

	pdf, ok := bucket.Get("k1/2024_3/Muster_GmbH_3_2024_Erika_Mustermann.pdf")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(string(pdf.Body), "%PDF"))

	xlsx, ok := bucket.Get("k1/2024_3/Muster_GmbH_3_2024_Erika_Mustermann.xlsx")
	require.True(t, ok)
	assert.Equal(t, storage.ContentTypeXLSX, xlsx.ContentType)
	assert.True(t, strings.HasPrefix(string(xlsx.Body), "PK"), "xlsx is a zip archive")

	html, ok := bucket.Get("k1/2024_3/Muster_GmbH_3_2024_Erika_Mustermann.html")
	require.True(t, ok)
	assert.Contains(t, string(html.Body), "<h1>Muster GmbH</h1>")
}

func TestAssembler_Today(t *testing.T) {
	// 23:30 UTC on the 14th is already the 15th in Berlin.
	a := New(store.NewMemory(store.Dataset{}), storage.NewMemoryBucket(), Options{
		Now:      func() time.Time { return time.Date(2024, 3, 14, 23, 30, 0, 0, time.UTC) },
		Location: berlin,
	})
	assert.Equal(t, "2024-03-15", a.Today().Format(time.DateOnly))
	assert.Equal(t, 0, a.Today().Hour())
}

func TestBuildReport_EmptyClockTimes(t *testing.T) {
	rep := BuildReport(
		store.Client{ID: "k1", Name: "K"}, store.Employee{ID: "m1", Name: "M"},
		schedule.Period{Start: date(2024, 3, 1), End: date(2024, 3, 14)}, date(2024, 3, 15),
		[]store.TimeRecord{{Date: date(2024, 3, 1), Break: "bad", Net: "1:00:00", Delta: "-2:00:00", Status: "krank"}},
		berlin, "logo.png",
	)
	require.Len(t, rep.Rows, 1)
	assert.Empty(t, rep.Rows[0].Start)
	assert.Empty(t, rep.Rows[0].End)
	assert.Equal(t, "0:00:00", rep.TotalBreak)
	assert.Equal(t, "-2:00:00", rep.TotalDelta)
	assert.EqualValues(t, 3600, rep.NetSeconds)
	assert.EqualValues(t, -7200, rep.DeltaSeconds)
	assert.Equal(t, "logo.png", rep.LogoPath)
}
