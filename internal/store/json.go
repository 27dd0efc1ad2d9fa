package store

import (
	"encoding/json"
	"fmt"
	"time"
)

// Dataset files may carry calendar dates either as plain "2006-01-02", the
// way the source database exports date columns, or as RFC 3339 timestamps.

func (c *Client) UnmarshalJSON(data []byte) error {
	type plain Client
	aux := struct {
		*plain
		CreatedAt string `json:"erstellungsdatum"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	created, err := parseJSONDate(aux.CreatedAt)
	if err != nil {
		return fmt.Errorf("client %s: erstellungsdatum: %w", c.ID, err)
	}
	c.CreatedAt = created
	return nil
}

func (r *TimeRecord) UnmarshalJSON(data []byte) error {
	type plain TimeRecord
	aux := struct {
		*plain
		Date string `json:"datum"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if aux.Date == "" {
		return fmt.Errorf("time record %s: datum is required", r.EmployeeID)
	}
	d, err := parseJSONDate(aux.Date)
	if err != nil {
		return fmt.Errorf("time record %s: datum: %w", r.EmployeeID, err)
	}
	r.Date = d
	return nil
}

func (h *Holiday) UnmarshalJSON(data []byte) error {
	type plain Holiday
	aux := struct {
		*plain
		Date string `json:"datum"`
	}{plain: (*plain)(h)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	h.Date = nil
	if aux.Date == "" {
		return nil
	}
	d, err := parseJSONDate(aux.Date)
	if err != nil {
		return fmt.Errorf("holiday %q: datum: %w", h.Name, err)
	}
	h.Date = &d
	return nil
}

// parseJSONDate accepts "2006-01-02" or RFC 3339. Empty text is the zero time.
func parseJSONDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
