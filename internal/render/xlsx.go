package render

import (
	"fmt"

	"github.com/chronoduo/reportjob/internal/duration"
	"github.com/chronoduo/reportjob/internal/storage"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the report table.
const SheetName = "Monatsbericht"

var xlsxColumns = []struct {
	title string
	width float64
}{
	{"Datum", 12},
	{"Status", 16},
	{"Start", 10},
	{"Ende", 10},
	{"Pause", 10},
	{"Netto", 10},
	{"Über-/Minusstunden", 18},
}

// XLSX renders the report as an Excel workbook. Durations keep their plain
// "-" sign so the cells stay machine readable.
type XLSX struct{}

func (XLSX) Render(r Report) (Document, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return Document{}, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return Document{}, err
	}

	for i, c := range xlsxColumns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, col, col, c.width); err != nil {
			return Document{}, err
		}
	}

	if err := setRow(f, 1, headerValues()); err != nil {
		return Document{}, err
	}
	if err := f.SetCellStyle(SheetName, "A1", "G1", bold); err != nil {
		return Document{}, err
	}

	row := 2
	for _, rec := range r.Rows {
		values := []any{FormatDate(rec.Date), rec.Status, rec.Start, rec.End, rec.Break, rec.Net, rec.Delta}
		if err := setRow(f, row, values); err != nil {
			return Document{}, err
		}
		row++
	}

	// A blank row separates the totals.
	row++
	if err := setRow(f, row, []any{"Summe", "", "", "", r.TotalBreak, r.TotalNet, r.TotalDelta}); err != nil {
		return Document{}, err
	}
	row++
	if err := setRow(f, row, []any{"Stunden (dezimal)", "", "", "", "",
		duration.Hours(r.NetSeconds).InexactFloat64(),
		duration.Hours(r.DeltaSeconds).InexactFloat64()}); err != nil {
		return Document{}, err
	}
	if err := f.SetCellStyle(SheetName, fmt.Sprintf("A%d", row-1), fmt.Sprintf("G%d", row), bold); err != nil {
		return Document{}, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return Document{}, fmt.Errorf("writing workbook: %w", err)
	}
	return Document{Ext: "xlsx", ContentType: storage.ContentTypeXLSX, Body: buf.Bytes()}, nil
}

func headerValues() []any {
	values := make([]any, len(xlsxColumns))
	for i, c := range xlsxColumns {
		values[i] = c.title
	}
	return values
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(SheetName, cell, &values)
}
