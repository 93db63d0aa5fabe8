package output

import (
	"github.com/jedib0t/go-pretty/v6/table"
)

func newWriter(report Report) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	if report.Title != "" {
		t.SetTitle(report.Title)
	}
	if len(report.Header) > 0 {
		t.AppendHeader(toRow(report.Header))
	}
	for _, r := range report.Rows {
		t.AppendRow(toRow(r))
	}
	if len(report.Footer) > 0 {
		t.AppendFooter(toRow(report.Footer))
	}
	return t
}

func renderTable(report Report) string {
	return newWriter(report).Render()
}

func toRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}
