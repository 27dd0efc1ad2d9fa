package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Memory is an in-memory Store for tests and dry runs.
type Memory struct {
	mu        sync.RWMutex
	clients   []Client
	employees []Employee
	records   []TimeRecord
	holidays  []Holiday
}

// NewMemory returns a Memory store holding a copy of ds.
func NewMemory(ds Dataset) *Memory {
	m := &Memory{}
	m.Load(ds)
	return m
}

// Load appends every row of ds.
func (m *Memory) Load(ds Dataset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients = append(m.clients, ds.Clients...)
	m.employees = append(m.employees, ds.Employees...)
	m.records = append(m.records, ds.Records...)
	m.holidays = append(m.holidays, ds.Holidays...)
}

// Client returns the client with the given ID.
func (m *Memory) Client(id string) (Client, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.clients {
		if c.ID == id {
			return c, true
		}
	}
	return Client{}, false
}

func (m *Memory) DueClients(_ context.Context, day int) ([]Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Client
	for _, c := range m.clients {
		if c.Status == StatusActive && c.NextDay != nil && *c.NextDay == day {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Memory) Employees(_ context.Context, clientID string) ([]Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Employee
	for _, e := range m.employees {
		if e.ClientID == clientID && e.DeletedAt == nil {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) TimeRecords(_ context.Context, clientID, employeeID string, from, to time.Time) ([]TimeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []TimeRecord
	for _, r := range m.records {
		if r.ClientID == clientID && r.EmployeeID == employeeID && InRange(r.Date, from, to) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (m *Memory) Holidays(_ context.Context, country, region string, from, to time.Time) ([]Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Holiday
	for _, h := range m.holidays {
		if h.Country != country || (h.Region != "" && h.Region != region) {
			continue
		}
		if h.RRule != "" || (h.Date != nil && InRange(*h.Date, from, to)) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *Memory) UpdateSchedule(_ context.Context, clientID string, lastDay int, nextDay *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.clients {
		if m.clients[i].ID != clientID {
			continue
		}
		m.clients[i].LastDay = Day(lastDay)
		if nextDay != nil {
			m.clients[i].NextDay = Day(*nextDay)
		}
		return nil
	}
	return fmt.Errorf("client %q: %w", clientID, ErrNotFound)
}
