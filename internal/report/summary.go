package report

import (
	"time"

	"github.com/chronoduo/reportjob/internal/schedule"
	"github.com/chronoduo/reportjob/internal/store"
)

// Status is the outcome of one unit of work.
type Status string

const (
	StatusPublished Status = "published"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// EmployeeResult records what happened to one employee's report.
type EmployeeResult struct {
	Employee store.Employee
	Status   Status
	Reason   string
	Records  int
	Paths    []string // object paths, in upload order
}

// ScheduleUpdate is the schedule state written back for a client.
// NextDay and NextDate are empty when the client has no target day.
type ScheduleUpdate struct {
	LastDay  int
	NextDay  *int
	NextDate time.Time
}

// ClientResult records what happened to one client.
type ClientResult struct {
	Client    store.Client
	Period    schedule.Period
	Status    Status
	Reason    string
	Employees []EmployeeResult

	// Schedule is nil when no schedule change was computed.
	Schedule    *ScheduleUpdate
	ScheduleErr error
}

// Published returns how many employees got their documents uploaded.
func (r ClientResult) Published() int {
	n := 0
	for _, e := range r.Employees {
		if e.Status == StatusPublished {
			n++
		}
	}
	return n
}

// Summary is the result of a whole run.
type Summary struct {
	RunID   string
	Today   time.Time
	DryRun  bool
	Clients []ClientResult
}

// Documents returns the number of documents published (or, in a dry run,
// that would have been).
func (s *Summary) Documents() int {
	n := 0
	for _, c := range s.Clients {
		for _, e := range c.Employees {
			if e.Status == StatusPublished {
				n += len(e.Paths)
			}
		}
	}
	return n
}

// Count returns the number of clients with the given status.
func (s *Summary) Count(status Status) int {
	n := 0
	for _, c := range s.Clients {
		if c.Status == status {
			n++
		}
	}
	return n
}

// ScheduleErrors returns the clients whose schedule could not be advanced.
func (s *Summary) ScheduleErrors() []ClientResult {
	var out []ClientResult
	for _, c := range s.Clients {
		if c.ScheduleErr != nil {
			out = append(out, c)
		}
	}
	return out
}
