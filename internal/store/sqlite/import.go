package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/chronoduo/reportjob/internal/store"
)

// ReadDataset reads a JSON dataset file.
func ReadDataset(path string) (store.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return store.Dataset{}, err
	}

	var ds store.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return store.Dataset{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return ds, nil
}

// Import upserts every row of ds in one transaction. Clients are written
// before employees, employees before time records. Holidays are keyed by
// country, region, date and rule, so importing the same dataset twice
// leaves one copy of each.
func (s *Store) Import(ctx context.Context, ds store.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range ds.Clients {
		created := ""
		if !c.CreatedAt.IsZero() {
			created = c.CreatedAt.Format(dateLayout)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO kunden
				(id, name, status, sollversand, lastversand, istversand, erstellungsdatum, land, region)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.Status, dayValue(c.TargetDay), dayValue(c.LastDay), dayValue(c.NextDay),
			created, c.Country, c.Region); err != nil {
			return fmt.Errorf("importing client %s: %w", c.ID, err)
		}
	}

	for _, e := range ds.Employees {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO mitarbeitende (id, kunden_id, name, deleted_at)
			VALUES (?, ?, ?, ?)`,
			e.ID, e.ClientID, e.Name, timeValue(e.DeletedAt)); err != nil {
			return fmt.Errorf("importing employee %s: %w", e.ID, err)
		}
	}

	for _, r := range ds.Records {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO tageszeiten
				(kunden_id, mitarbeiter_id, datum, erster_start, letzter_ende,
				 gesamt_pause, gesamt_netto, ueber_unter_stunden, tagesstatus)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ClientID, r.EmployeeID, r.Date.Format(dateLayout), timeValue(r.FirstStart), timeValue(r.LastEnd),
			r.Break, r.Net, r.Delta, r.Status); err != nil {
			return fmt.Errorf("importing time record %s/%s: %w", r.EmployeeID, r.Date.Format(dateLayout), err)
		}
	}

	for _, h := range ds.Holidays {
		datum := ""
		if h.Date != nil {
			datum = h.Date.Format(dateLayout)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO feiertage (land, region, datum, rrule, name)
			VALUES (?, ?, ?, ?, ?)`,
			h.Country, h.Region, datum, h.RRule, h.Name); err != nil {
			return fmt.Errorf("importing holiday %q: %w", h.Name, err)
		}
	}

	return tx.Commit()
}

func dayValue(d *int) sql.NullInt64 {
	if d == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*d), Valid: true}
}

func timeValue(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339), Valid: true}
}
