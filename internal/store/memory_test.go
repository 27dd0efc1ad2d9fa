package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testDataset() Dataset {
	deleted := date(2024, 1, 5)
	christmas := date(2024, 12, 25)
	return Dataset{
		Clients: []Client{
			{ID: "k1", Name: "Acme", Status: StatusActive, NextDay: Day(10)},
			{ID: "k2", Name: "Paused", Status: "inaktiv", NextDay: Day(10)},
			{ID: "k3", Name: "Other day", Status: StatusActive, NextDay: Day(11)},
			{ID: "k4", Name: "Unscheduled", Status: StatusActive},
		},
		Employees: []Employee{
			{ID: "m1", ClientID: "k1", Name: "Anna"},
			{ID: "m2", ClientID: "k1", Name: "Gone", DeletedAt: &deleted},
			{ID: "m3", ClientID: "k3", Name: "Bert"},
		},
		Records: []TimeRecord{
			{ClientID: "k1", EmployeeID: "m1", Date: date(2024, 2, 20), Net: "8:00:00"},
			{ClientID: "k1", EmployeeID: "m1", Date: date(2024, 2, 16), Net: "7:00:00"},
			{ClientID: "k1", EmployeeID: "m1", Date: date(2024, 3, 10), Net: "6:00:00"},
			{ClientID: "k3", EmployeeID: "m1", Date: date(2024, 2, 20), Net: "1:00:00"},
		},
		Holidays: []Holiday{
			{Country: "DE", Date: &christmas, Name: "1. Weihnachtstag"},
			{Country: "DE", Region: "BY", RRule: "FREQ=YEARLY;BYMONTH=8;BYMONTHDAY=15", Name: "Mariä Himmelfahrt"},
			{Country: "DE", Region: "BE", RRule: "FREQ=YEARLY;BYMONTH=3;BYMONTHDAY=8", Name: "Frauentag"},
			{Country: "AT", Date: &christmas, Name: "Christtag"},
		},
	}
}

func TestMemory_DueClients(t *testing.T) {
	m := NewMemory(testDataset())

	clients, err := m.DueClients(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "k1", clients[0].ID)

	clients, err = m.DueClients(context.Background(), 3)
	require.NoError(t, err)
	assert.Empty(t, clients)
}

func TestMemory_EmployeesSkipsDeleted(t *testing.T) {
	m := NewMemory(testDataset())

	emps, err := m.Employees(context.Background(), "k1")
	require.NoError(t, err)
	require.Len(t, emps, 1)
	assert.Equal(t, "Anna", emps[0].Name)
}

func TestMemory_TimeRecordsFilteredAndSorted(t *testing.T) {
	m := NewMemory(testDataset())

	recs, err := m.TimeRecords(context.Background(), "k1", "m1", date(2024, 2, 16), date(2024, 3, 9))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, date(2024, 2, 16), recs[0].Date)
	assert.Equal(t, date(2024, 2, 20), recs[1].Date)
}

func TestMemory_Holidays(t *testing.T) {
	m := NewMemory(testDataset())

	hs, err := m.Holidays(context.Background(), "DE", "BY", date(2024, 12, 1), date(2024, 12, 31))
	require.NoError(t, err)

	names := make([]string, len(hs))
	for i, h := range hs {
		names[i] = h.Name
	}
	assert.ElementsMatch(t, []string{"1. Weihnachtstag", "Mariä Himmelfahrt"}, names)
}

func TestMemory_UpdateSchedule(t *testing.T) {
	m := NewMemory(testDataset())
	ctx := context.Background()

	require.NoError(t, m.UpdateSchedule(ctx, "k1", 10, Day(8)))
	c, ok := m.Client("k1")
	require.True(t, ok)
	assert.Equal(t, 10, *c.LastDay)
	assert.Equal(t, 8, *c.NextDay)

	// nil next day leaves istversand alone
	require.NoError(t, m.UpdateSchedule(ctx, "k1", 12, nil))
	c, _ = m.Client("k1")
	assert.Equal(t, 12, *c.LastDay)
	assert.Equal(t, 8, *c.NextDay)

	err := m.UpdateSchedule(ctx, "missing", 1, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}
