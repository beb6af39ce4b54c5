package render

import (
	"fmt"
	"strings"

	"dataroom-cli/cmd/api"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// maxCellWidth keeps one long text column from pushing the rest off screen.
const maxCellWidth = 40

// Result renders a chat result. A nil result renders as "".
func Result(res *api.Result, width int) string {
	if res == nil {
		return ""
	}
	var body string
	switch res.Kind {
	case api.ResultTable:
		body = resultTable(res, width)
	case api.ResultKeyValue:
		body = keyValues(res.Pairs)
	default:
		body = FormatValue(res.Value)
	}
	return headerStyle.Render("📋 Results") + "\n" + body
}

func resultTable(res *api.Result, width int) string {
	if len(res.Rows) == 0 {
		return dimStyle.Render("(no rows)")
	}
	headers, rows := tableCells(res)
	for i := range headers {
		headers[i] = truncate(headers[i], maxCellWidth)
	}
	for _, row := range rows {
		for i := range row {
			row[i] = truncate(singleLine(row[i]), maxCellWidth)
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	if width > 0 {
		t = t.Width(width)
	}
	out := t.Render()
	if n := len(res.Rows); n > 1 {
		out += "\n" + dimStyle.Render(fmt.Sprintf("%s rows", FormatInt(n)))
	}
	return out
}

// tableCells lays out a table result: headers from the first row, each row's
// values in its own order. Ragged rows are padded so every line has as many
// cells as the widest one.
func tableCells(res *api.Result) ([]string, [][]string) {
	headers := append([]string(nil), res.Columns...)
	rows := make([][]string, len(res.Rows))
	maxCols := len(headers)
	for i, rec := range res.Rows {
		cells := make([]string, len(rec))
		for j, f := range rec {
			cells[j] = FormatValue(f.Value)
		}
		rows[i] = cells
		if len(cells) > maxCols {
			maxCols = len(cells)
		}
	}
	for len(headers) < maxCols {
		headers = append(headers, "")
	}
	for i := range rows {
		for len(rows[i]) < maxCols {
			rows[i] = append(rows[i], "")
		}
	}
	return headers, rows
}

func keyValues(pairs api.Record) string {
	if len(pairs) == 0 {
		return dimStyle.Render("(empty)")
	}
	lines := make([]string, len(pairs))
	for i, f := range pairs {
		lines[i] = labelStyle.Render(f.Key+":") + " " + FormatValue(f.Value)
	}
	return strings.Join(lines, "\n")
}

// ResultTSV renders a result as tab-separated text for the clipboard.
func ResultTSV(res *api.Result) string {
	if res == nil {
		return ""
	}
	clean := func(s string) string {
		return strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(s)
	}
	var b strings.Builder
	switch res.Kind {
	case api.ResultTable:
		headers, rows := tableCells(res)
		if len(res.Rows) == 0 {
			return ""
		}
		for i, h := range headers {
			headers[i] = clean(h)
		}
		b.WriteString(strings.Join(headers, "\t"))
		for _, row := range rows {
			for i, c := range row {
				row[i] = clean(c)
			}
			b.WriteString("\n" + strings.Join(row, "\t"))
		}
	case api.ResultKeyValue:
		for i, f := range res.Pairs {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(clean(f.Key) + "\t" + clean(FormatValue(f.Value)))
		}
	default:
		b.WriteString(FormatValue(res.Value))
	}
	return b.String()
}
