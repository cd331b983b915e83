package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func (a columnAlignment) text() text.Align {
	if a == alignRight {
		return text.AlignRight
	}
	return text.AlignLeft
}

// renderTable draws a rounded table. aligns applies per column (missing
// entries are left aligned), rows shorter than headers are blank padded and
// footer, when given, closes the table.
func renderTable(headers []string, rows [][]string, aligns []columnAlignment, footer ...string) string {
	width := len(headers)
	if width == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(toRow(headers, width))
	for _, row := range rows {
		tw.AppendRow(toRow(row, width))
	}
	if len(footer) > 0 {
		tw.AppendFooter(toRow(footer, width))
	}

	columns := make([]table.ColumnConfig, width)
	for i := range columns {
		align := alignLeft
		if i < len(aligns) {
			align = aligns[i]
		}
		columns[i] = table.ColumnConfig{Number: i + 1, Align: align.text(), AlignFooter: align.text(), AlignHeader: text.AlignLeft}
	}
	tw.SetColumnConfigs(columns)
	return tw.Render()
}

func toRow(values []string, width int) table.Row {
	row := make(table.Row, width)
	for i := range row {
		row[i] = ""
		if i < len(values) {
			row[i] = values[i]
		}
	}
	return row
}
