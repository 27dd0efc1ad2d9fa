package store

import (
	"context"
	"errors"
	"time"
)

// StatusActive marks clients that receive reports.
const StatusActive = "aktiv"

// ErrNotFound is returned when a write targets a client that does not exist.
var ErrNotFound = errors.New("not found")

// Client is an organization that receives periodic reports.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	TargetDay *int      `json:"sollversand,omitempty"`
	LastDay   *int      `json:"lastversand,omitempty"`
	NextDay   *int      `json:"istversand,omitempty"`
	CreatedAt time.Time `json:"erstellungsdatum"`
	Country   string    `json:"land,omitempty"`
	Region    string    `json:"region,omitempty"`
}

// Employee belongs to exactly one client.
type Employee struct {
	ID        string     `json:"id"`
	ClientID  string     `json:"kunden_id"`
	Name      string     `json:"name"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// TimeRecord is one employee's attendance aggregate for one day.
// Break, Net and Delta hold signed "[-]H:MM:SS" durations.
type TimeRecord struct {
	ClientID   string     `json:"kunden_id"`
	EmployeeID string     `json:"mitarbeiter_id"`
	Date       time.Time  `json:"datum"`
	FirstStart *time.Time `json:"erster_start,omitempty"`
	LastEnd    *time.Time `json:"letzter_ende,omitempty"`
	Break      string     `json:"gesamt_pause"`
	Net        string     `json:"gesamt_netto"`
	Delta      string     `json:"ueber_unter_stunden"`
	Status     string     `json:"tagesstatus"`
}

// Holiday is either a fixed date or a recurrence rule. An empty Region
// applies to the whole country.
type Holiday struct {
	Country string     `json:"land"`
	Region  string     `json:"region,omitempty"`
	Date    *time.Time `json:"datum,omitempty"`
	RRule   string     `json:"rrule,omitempty"`
	Name    string     `json:"name"`
}

// Store is the data access the report job needs.
type Store interface {
	// DueClients returns active clients whose next shipment day is day.
	DueClients(ctx context.Context, day int) ([]Client, error)
	// Employees returns the non-deleted employees of a client.
	Employees(ctx context.Context, clientID string) ([]Employee, error)
	// TimeRecords returns records between from and to (inclusive), oldest first.
	TimeRecords(ctx context.Context, clientID, employeeID string, from, to time.Time) ([]TimeRecord, error)
	// Holidays returns fixed holidays between from and to plus every
	// recurring holiday for the country and region.
	Holidays(ctx context.Context, country, region string, from, to time.Time) ([]Holiday, error)
	// UpdateSchedule writes lastversand and, when nextDay is set, istversand.
	UpdateSchedule(ctx context.Context, clientID string, lastDay int, nextDay *int) error
}

// Dataset is a bulk snapshot of every table, used for imports and fixtures.
type Dataset struct {
	Clients   []Client     `json:"kunden"`
	Employees []Employee   `json:"mitarbeitende"`
	Records   []TimeRecord `json:"tageszeiten"`
	Holidays  []Holiday    `json:"feiertage"`
}

// Day returns a pointer to d, for the optional day-of-month fields.
func Day(d int) *int {
	return &d
}

// InRange reports whether t falls on a calendar day between from and to, inclusive.
func InRange(t, from, to time.Time) bool {
	d := dateOnly(t)
	return !d.Before(dateOnly(from)) && !d.After(dateOnly(to))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
