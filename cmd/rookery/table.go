package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// tableColumn describes one column of a CLI table. Columns flagged as
// status carry lifecycle states and get per-cell coloring on terminals.
type tableColumn struct {
	title  string
	right  bool
	status bool
}

var (
	gameColumns = []tableColumn{
		{title: "Played"},
		{title: "White"},
		{title: "Black"},
		{title: "Result"},
		{title: "Source"},
		{title: "Status", status: true},
		{title: "ID"},
	}
	jobColumns = []tableColumn{
		{title: "Job"},
		{title: "Game"},
		{title: "Status", status: true},
		{title: "Prio", right: true},
		{title: "Depth", right: true},
		{title: "Progress", right: true},
		{title: "Created"},
	}
	healthColumns = []tableColumn{
		{title: "Status", status: true},
		{title: "Count", right: true},
	}
)

func renderTable(columns []tableColumn, rows [][]string, colorize bool) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	for i, col := range columns {
		header[i] = col.title
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i, col := range columns {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if col.status && colorize {
				cell = colorStatusCell(cell)
			}
			r[i] = cell
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, len(columns))
	for i, col := range columns {
		align := text.AlignLeft
		if col.right {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// colorStatusCell maps game and job lifecycle states onto the palette
// render.go uses for status lines. Unknown states pass through unchanged.
func colorStatusCell(status string) string {
	var color string
	switch status {
	case "completed":
		color = ansiGreen
	case "failed":
		color = ansiRed
	case "running", "processing":
		color = ansiBlue
	case "queued", "pending":
		color = ansiYellow
	default:
		return status
	}
	return color + status + ansiReset
}
