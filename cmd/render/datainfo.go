package render

import (
	"fmt"
	"strings"

	"dataroom-cli/cmd/api"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const previewRows = 3

// DataInfo renders the dataset panel: header stats, the column list and the
// first preview rows.
func DataInfo(info *api.DataInfo, width int) string {
	if info == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("📁 " + info.Filename))
	b.WriteString("\n")
	b.WriteString(DataStats(info))

	if len(info.ColumnDetails) > 0 {
		b.WriteString("\n\n" + headerStyle.Render("Columns"))
		for _, col := range info.ColumnDetails {
			line := fmt.Sprintf("  %s %s  %s",
				col.Name,
				dimStyle.Render(col.Type),
				fmt.Sprintf("%s unique", FormatInt(col.UniqueCount)))
			if col.NullCount > 0 {
				line += "  " + errorStyle.Render(fmt.Sprintf("%s nulls", FormatInt(col.NullCount)))
			}
			b.WriteString("\n" + line)
		}
	}

	if len(info.Preview) > 0 {
		b.WriteString("\n\n" + headerStyle.Render("Preview"))
		b.WriteString("\n" + previewTable(info.Preview, width))
	}
	return b.String()
}

// DataStats is the one-line header used in the status bar and `info`.
func DataStats(info *api.DataInfo) string {
	if info == nil {
		return ""
	}
	parts := []string{
		labelStyle.Render("Rows:") + " " + FormatInt(info.Rows),
		labelStyle.Render("Columns:") + " " + FormatInt(info.Columns),
	}
	if info.Size != "" {
		parts = append(parts, labelStyle.Render("Size:")+" "+info.Size)
	}
	if info.MemoryUsage != "" {
		parts = append(parts, labelStyle.Render("Memory:")+" "+info.MemoryUsage)
	}
	return strings.Join(parts, "  ")
}

func previewTable(rows []api.Record, width int) string {
	n := min(len(rows), previewRows)
	res := api.NewResult(recordsToAny(rows[:n]))
	headers, cells := tableCells(res)
	for _, row := range cells {
		for i := range row {
			row[i] = truncate(singleLine(row[i]), maxCellWidth/2)
		}
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		Rows(cells...)
	if width > 0 {
		t = t.Width(width)
	}
	return t.Render()
}

func recordsToAny(rows []api.Record) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out
}
