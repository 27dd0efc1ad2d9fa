package render

import (
	"fmt"
	"html"
	"os"
	"sort"
	"strings"

	"github.com/chronoduo/reportjob/internal/duration"
	"github.com/chronoduo/reportjob/internal/storage"
)

// Template is an HTML document with {{name}} placeholders. Placeholders are
// replaced literally in a single pass; unknown ones are left untouched.
type Template struct {
	text string
}

// LoadTemplate reads an HTML template from disk.
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading report template: %w", err)
	}
	return NewTemplate(string(data)), nil
}

// NewTemplate wraps template text.
func NewTemplate(text string) *Template {
	return &Template{text: text}
}

// Fill substitutes vars into the template. Values are inserted as given.
func (t *Template) Fill(vars map[string]string) string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{{"+k+"}}", vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(t.text)
}

// Vars returns the placeholder values for r with all text escaped.
func Vars(r Report) map[string]string {
	esc := html.EscapeString
	return map[string]string{
		"firma_name":       esc(r.ClientName),
		"mitarbeiter_name": esc(r.EmployeeName),
		"zeitraum_start":   esc(FormatDate(r.Period.Start)),
		"zeitraum_ende":    esc(FormatDate(r.Period.End)),
		"table_rows":       tableRows(r.Rows),
		"summe_pause":      esc(duration.Display(r.TotalBreak)),
		"summe_netto":      esc(duration.Display(r.TotalNet)),
		"summe_uebermin":   esc(duration.Display(r.TotalDelta)),
		"logo_path":        esc(r.LogoPath),
	}
}

func (t *Template) Render(r Report) (Document, error) {
	body := t.Fill(Vars(r))
	return Document{Ext: "html", ContentType: storage.ContentTypeHTML, Body: []byte(body)}, nil
}

func tableRows(rows []Row) string {
	var b strings.Builder
	for _, row := range rows {
		cells := []string{
			FormatDate(row.Date),
			row.Status,
			row.Start,
			row.End,
			duration.Display(row.Break),
			duration.Display(row.Net),
			duration.Display(row.Delta),
		}
		b.WriteString("<tr>")
		for _, c := range cells {
			b.WriteString("<td>")
			b.WriteString(html.EscapeString(c))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>\n")
	}
	return b.String()
}
