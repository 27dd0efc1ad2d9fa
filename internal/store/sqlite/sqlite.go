/*
Package sqlite provides a SQLite-backed store.Store.

TABLES:

	kunden:        clients and their shipment schedule (sollversand, lastversand, istversand)
	mitarbeitende: employees, soft-deleted through deleted_at
	tageszeiten:   one attendance aggregate per employee and day
	feiertage:     fixed-date or RRULE holidays per country/region

Dates are stored as ISO text ("2006-01-02"), timestamps as RFC 3339 text,
durations as signed "[-]H:MM:SS" text. The schema is migrated on New().
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chronoduo/reportjob/internal/store"
	_ "github.com/mattn/go-sqlite3"
)

const dateLayout = "2006-01-02"

// Store implements store.Store on SQLite.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// New opens the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// dsn appends the connection options to dbPath, which may already be a
// "file:" URI with its own query string.
func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_foreign_keys=on&_journal_mode=WAL"
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kunden (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		sollversand INTEGER,
		lastversand INTEGER,
		istversand INTEGER,
		erstellungsdatum TEXT NOT NULL DEFAULT '',
		land TEXT NOT NULL DEFAULT '',
		region TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_kunden_due
		ON kunden(status, istversand);

	CREATE TABLE IF NOT EXISTS mitarbeitende (
		id TEXT PRIMARY KEY,
		kunden_id TEXT NOT NULL REFERENCES kunden(id),
		name TEXT NOT NULL,
		deleted_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_mitarbeitende_kunde
		ON mitarbeitende(kunden_id);

	CREATE TABLE IF NOT EXISTS tageszeiten (
		kunden_id TEXT NOT NULL,
		mitarbeiter_id TEXT NOT NULL REFERENCES mitarbeitende(id),
		datum TEXT NOT NULL,
		erster_start TEXT,
		letzter_ende TEXT,
		gesamt_pause TEXT NOT NULL DEFAULT '',
		gesamt_netto TEXT NOT NULL DEFAULT '',
		ueber_unter_stunden TEXT NOT NULL DEFAULT '',
		tagesstatus TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (kunden_id, mitarbeiter_id, datum)
	);

	CREATE TABLE IF NOT EXISTS feiertage (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		land TEXT NOT NULL,
		region TEXT NOT NULL DEFAULT '',
		datum TEXT NOT NULL DEFAULT '',
		rrule TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT '',
		UNIQUE (land, region, datum, rrule)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) DueClients(ctx context.Context, day int) ([]store.Client, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+clientColumns+`
		FROM kunden
		WHERE status = ? AND istversand = ?
		ORDER BY name, id`, store.StatusActive, day)
	if err != nil {
		return nil, fmt.Errorf("querying due clients: %w", err)
	}
	defer rows.Close()

	var out []store.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Employees(ctx context.Context, clientID string) ([]store.Employee, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kunden_id, name
		FROM mitarbeitende
		WHERE kunden_id = ? AND deleted_at IS NULL
		ORDER BY name, id`, clientID)
	if err != nil {
		return nil, fmt.Errorf("querying employees: %w", err)
	}
	defer rows.Close()

	var out []store.Employee
	for rows.Next() {
		var e store.Employee
		if err := rows.Scan(&e.ID, &e.ClientID, &e.Name); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) TimeRecords(ctx context.Context, clientID, employeeID string, from, to time.Time) ([]store.TimeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kunden_id, mitarbeiter_id, datum, erster_start, letzter_ende,
		       gesamt_pause, gesamt_netto, ueber_unter_stunden, tagesstatus
		FROM tageszeiten
		WHERE kunden_id = ? AND mitarbeiter_id = ? AND datum >= ? AND datum <= ?
		ORDER BY datum ASC`,
		clientID, employeeID, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("querying time records: %w", err)
	}
	defer rows.Close()

	var out []store.TimeRecord
	for rows.Next() {
		var (
			r          store.TimeRecord
			datum      string
			start, end sql.NullString
		)
		if err := rows.Scan(&r.ClientID, &r.EmployeeID, &datum, &start, &end,
			&r.Break, &r.Net, &r.Delta, &r.Status); err != nil {
			return nil, err
		}
		if r.Date, err = time.Parse(dateLayout, datum); err != nil {
			return nil, fmt.Errorf("time record %s: datum: %w", datum, err)
		}
		if r.FirstStart, err = nullTime(start); err != nil {
			return nil, fmt.Errorf("time record %s: erster_start: %w", datum, err)
		}
		if r.LastEnd, err = nullTime(end); err != nil {
			return nil, fmt.Errorf("time record %s: letzter_ende: %w", datum, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Holidays(ctx context.Context, country, region string, from, to time.Time) ([]store.Holiday, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT land, region, datum, rrule, name
		FROM feiertage
		WHERE land = ? AND (region = '' OR region = ?)
		  AND (rrule <> '' OR (datum >= ? AND datum <= ?))
		ORDER BY datum`,
		country, region, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("querying holidays: %w", err)
	}
	defer rows.Close()

	var out []store.Holiday
	for rows.Next() {
		var (
			h     store.Holiday
			datum sql.NullString
		)
		if err := rows.Scan(&h.Country, &h.Region, &datum, &h.RRule, &h.Name); err != nil {
			return nil, err
		}
		if datum.Valid && datum.String != "" {
			d, err := time.Parse(dateLayout, datum.String)
			if err != nil {
				return nil, fmt.Errorf("holiday %q: datum: %w", h.Name, err)
			}
			h.Date = &d
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *Store) UpdateSchedule(ctx context.Context, clientID string, lastDay int, nextDay *int) error {
	var (
		res sql.Result
		err error
	)
	if nextDay != nil {
		res, err = s.db.ExecContext(ctx,
			`UPDATE kunden SET lastversand = ?, istversand = ? WHERE id = ?`, lastDay, *nextDay, clientID)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE kunden SET lastversand = ? WHERE id = ?`, lastDay, clientID)
	}
	if err != nil {
		return fmt.Errorf("updating schedule: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("client %q: %w", clientID, store.ErrNotFound)
	}
	return nil
}

// Client loads a single client by ID.
func (s *Store) Client(ctx context.Context, id string) (store.Client, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM kunden WHERE id = ?`, id)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Client{}, fmt.Errorf("client %q: %w", id, store.ErrNotFound)
	}
	return c, err
}

const clientColumns = `id, name, status, sollversand, lastversand, istversand, erstellungsdatum, land, region`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (store.Client, error) {
	var (
		c                store.Client
		soll, last, next sql.NullInt64
		created          string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Status, &soll, &last, &next, &created, &c.Country, &c.Region); err != nil {
		return store.Client{}, err
	}
	c.TargetDay = nullDay(soll)
	c.LastDay = nullDay(last)
	c.NextDay = nullDay(next)
	if created != "" {
		t, err := time.Parse(dateLayout, created)
		if err != nil {
			return store.Client{}, fmt.Errorf("client %s: erstellungsdatum: %w", c.ID, err)
		}
		c.CreatedAt = t
	}
	return c, nil
}

func nullDay(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	return store.Day(int(n.Int64))
}

func nullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
