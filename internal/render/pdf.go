package render

import (
	"fmt"

	"github.com/chronoduo/reportjob/internal/duration"
	"github.com/chronoduo/reportjob/internal/storage"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	pdfHeaderColor = props.Color{Red: 50, Green: 50, Blue: 50}
	pdfMutedColor  = props.Color{Red: 120, Green: 120, Blue: 120}
	pdfLineColor   = props.Color{Red: 200, Green: 200, Blue: 200}
)

// column widths on maroto's 12-column grid
var pdfColumns = []struct {
	title string
	size  int
}{
	{"Datum", 2},
	{"Status", 2},
	{"Start", 1},
	{"Ende", 1},
	{"Pause", 2},
	{"Netto", 2},
	{"Über-/Minusstd.", 2},
}

// PDF renders the monthly report as an A4 PDF.
type PDF struct{}

func (PDF) Render(r Report) (Document, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	// Document header
	if r.LogoPath != "" {
		m.AddRow(16, image.NewFromFileCol(3, r.LogoPath, props.Rect{Percent: 100}))
	}
	m.AddRow(12,
		text.NewCol(12, r.ClientName, props.Text{
			Style: fontstyle.Bold,
			Size:  16,
			Color: &pdfHeaderColor,
		}),
	)
	m.AddRow(8,
		text.NewCol(12, r.EmployeeName, props.Text{
			Style: fontstyle.Bold,
			Size:  12,
		}),
	)
	m.AddRow(6,
		text.NewCol(12, fmt.Sprintf("Zeitraum: %s – %s", FormatDate(r.Period.Start), FormatDate(r.Period.End)), props.Text{
			Size:  10,
			Color: &pdfMutedColor,
		}),
	)
	m.AddRow(4, line.NewCol(12, props.Line{Color: &pdfLineColor}))

	// Table header
	header := make([]core.Col, len(pdfColumns))
	for i, c := range pdfColumns {
		header[i] = text.NewCol(c.size, c.title, props.Text{
			Style: fontstyle.Bold,
			Size:  9,
			Color: &pdfHeaderColor,
			Align: cellAlign(i),
		})
	}
	m.AddRow(7, header...)

	for _, row := range r.Rows {
		values := []string{
			FormatDate(row.Date),
			row.Status,
			row.Start,
			row.End,
			duration.Display(row.Break),
			duration.Display(row.Net),
			duration.Display(row.Delta),
		}
		cols := make([]core.Col, len(pdfColumns))
		for i, c := range pdfColumns {
			cols[i] = text.NewCol(c.size, values[i], props.Text{Size: 8, Align: cellAlign(i)})
		}
		m.AddRow(5, cols...)
	}

	// Totals footer
	m.AddRow(4, line.NewCol(12, props.Line{Color: &pdfLineColor}))
	m.AddRow(8,
		text.NewCol(6, "Summe", props.Text{Style: fontstyle.Bold, Size: 10, Color: &pdfHeaderColor}),
		text.NewCol(2, duration.Display(r.TotalBreak), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
		text.NewCol(2, duration.Display(r.TotalNet), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
		text.NewCol(2, duration.Display(r.TotalDelta), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return Document{}, fmt.Errorf("generating PDF: %w", err)
	}

	return Document{Ext: "pdf", ContentType: storage.ContentTypePDF, Body: doc.GetBytes()}, nil
}

// cellAlign right-aligns the duration columns.
func cellAlign(col int) align.Type {
	if col >= 4 {
		return align.Right
	}
	return align.Left
}
