package render

import (
	"time"

	"github.com/chronoduo/reportjob/internal/schedule"
)

// DateLayout is the German date format used in documents.
const DateLayout = "02.01.2006"

// Row is one day in the report table. Durations are signed "[-]H:MM:SS".
type Row struct {
	Date   time.Time
	Status string
	Start  string // "HH:MM" or empty
	End    string // "HH:MM" or empty
	Break  string
	Net    string
	Delta  string
}

// Report is everything a renderer needs for one employee's document.
type Report struct {
	ClientID     string
	ClientName   string
	EmployeeID   string
	EmployeeName string
	Period       schedule.Period
	Issued       time.Time
	Rows         []Row

	TotalBreak string
	TotalNet   string
	TotalDelta string

	// Totals in seconds, for numeric cells.
	NetSeconds   int64
	DeltaSeconds int64

	LogoPath string
}

// Document is a rendered report ready for upload.
type Document struct {
	Ext         string
	ContentType string
	Body        []byte
}

// Renderer turns a Report into a document. Implementations escape any text
// they embed in markup.
type Renderer interface {
	Render(r Report) (Document, error)
}

// FormatDate formats t as dd.mm.yyyy, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
