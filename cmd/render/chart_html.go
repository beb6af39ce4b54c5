package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
)

// PlotlyCDN is the script the exported page loads Plotly from.
const PlotlyCDN = "https://cdn.plot.ly/plotly-2.35.2.min.js"

var chartPage = template.Must(template.New("chart").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.Script}}"></script>
<style>html,body{margin:0;height:100%}#chart{width:100%;height:100%}</style>
</head>
<body>
<div id="chart"></div>
<script>
Plotly.newPlot("chart", {{.Data}}, {{.Layout}}, {{.Config}});
</script>
</body>
</html>
`))

type chartPageData struct {
	Title  string
	Script string
	Data   any
	Layout map[string]any
	Config map[string]any
}

// ChartHTML turns a serialized Plotly figure into a standalone page. The
// figure's data and layout are kept, except that fixed width/height are
// dropped in favour of autosize and fixed margins so the chart fills the
// browser window.
func ChartHTML(figJSON string) ([]byte, error) {
	var fig map[string]any
	if err := json.Unmarshal([]byte(figJSON), &fig); err != nil {
		return nil, fmt.Errorf("invalid chart figure: %w", err)
	}
	if fig == nil {
		return nil, fmt.Errorf("invalid chart figure: not an object")
	}

	layout, _ := fig["layout"].(map[string]any)
	if layout == nil {
		layout = map[string]any{}
	}
	delete(layout, "width")
	delete(layout, "height")
	layout["autosize"] = true
	layout["margin"] = map[string]any{"l": 60, "r": 40, "t": 40, "b": 60}

	data := fig["data"]
	if data == nil {
		data = []any{}
	}
	title := ChartTitle(figJSON)
	if title == "" {
		title = "Visualization"
	}

	var buf bytes.Buffer
	err := chartPage.Execute(&buf, chartPageData{
		Title:  title,
		Script: PlotlyCDN,
		Data:   data,
		Layout: layout,
		Config: map[string]any{
			"responsive":     true,
			"displayModeBar": true,
			"displaylogo":    false,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("render chart page: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteChartHTML writes the page for the figure to path.
func WriteChartHTML(figJSON, path string) error {
	page, err := ChartHTML(figJSON)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, page, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
