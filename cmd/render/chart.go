package render

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ChartError is shown in place of a chart whose figure cannot be parsed.
const ChartError = "Error rendering visualization"

const maxBars = 20

var sparkTicks = []rune("▁▂▃▄▅▆▇█")

type figure struct {
	Data   []trace        `json:"data"`
	Layout map[string]any `json:"layout"`
}

type trace struct {
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	Orientation string          `json:"orientation"`
	X           json.RawMessage `json:"x"`
	Y           json.RawMessage `json:"y"`
	Labels      json.RawMessage `json:"labels"`
	Values      json.RawMessage `json:"values"`
}

func parseFigure(figJSON string) (*figure, error) {
	var fig figure
	if err := json.Unmarshal([]byte(figJSON), &fig); err != nil {
		return nil, fmt.Errorf("invalid chart figure: %w", err)
	}
	return &fig, nil
}

func (f *figure) title() string {
	switch t := f.Layout["title"].(type) {
	case string:
		return t
	case map[string]any:
		if s, ok := t["text"].(string); ok {
			return s
		}
	}
	return ""
}

// ChartTitle returns the figure title, or "" when there is none or the figure
// cannot be parsed.
func ChartTitle(figJSON string) string {
	fig, err := parseFigure(figJSON)
	if err != nil {
		return ""
	}
	return fig.title()
}

// Chart renders a serialized Plotly figure for the terminal. An empty figure
// renders as ""; an unparsable one as the ChartError block.
func Chart(figJSON string, width int) string {
	if strings.TrimSpace(figJSON) == "" {
		return ""
	}
	fig, err := parseFigure(figJSON)
	if err != nil {
		return errorStyle.Render("⚠ " + ChartError)
	}
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("📊 Visualization"))
	if title := fig.title(); title != "" {
		b.WriteString("  " + singleLine(title))
	}
	if len(fig.Data) == 0 {
		b.WriteString("\n" + dimStyle.Render("(no traces)"))
		return b.String()
	}
	for _, tr := range fig.Data {
		b.WriteString("\n")
		b.WriteString(renderTrace(tr, width))
	}
	return b.String()
}

func renderTrace(tr trace, width int) string {
	kind := strings.ToLower(tr.Type)
	if kind == "" {
		kind = "scatter"
	}
	var out string
	switch kind {
	case "bar":
		labels, values := decodeArray(tr.X), decodeArray(tr.Y)
		if strings.EqualFold(tr.Orientation, "h") {
			labels, values = values, labels
		}
		out = bars(labels, values, width)
	case "scatter", "scattergl", "line":
		out = sparkline(decodeArray(tr.Y), width)
	case "pie":
		out = pie(decodeArray(tr.Labels), decodeArray(tr.Values))
	default:
		n := len(decodeArray(tr.Y))
		if n == 0 {
			n = len(decodeArray(tr.Values))
		}
		out = dimStyle.Render(fmt.Sprintf("%s trace with %d points (use /open to view)", kind, n))
	}
	if tr.Name != "" {
		out = labelStyle.Render(tr.Name) + "\n" + out
	}
	return out
}

func bars(labels, values []any, width int) string {
	n := len(values)
	if len(labels) < n {
		n = len(labels)
	}
	if n == 0 {
		return dimStyle.Render("(no data)")
	}
	shown := n
	if shown > maxBars {
		shown = maxBars
	}

	labelW, valueW, maxV := 0, 0, 0.0
	names := make([]string, shown)
	nums := make([]float64, shown)
	texts := make([]string, shown)
	for i := 0; i < shown; i++ {
		names[i] = truncate(singleLine(FormatValue(labels[i])), 20)
		if f, ok := toFloat(values[i]); ok && finite(f) {
			nums[i] = f
		}
		texts[i] = FormatValue(values[i])
		labelW = max(labelW, len([]rune(names[i])))
		valueW = max(valueW, len([]rune(texts[i])))
		maxV = math.Max(maxV, math.Abs(nums[i]))
	}
	barW := width - labelW - valueW - 4
	if barW < 5 {
		barW = 5
	}

	lines := make([]string, 0, shown+1)
	for i := 0; i < shown; i++ {
		w := 0
		if maxV > 0 {
			w = int(math.Round(math.Abs(nums[i]) / maxV * float64(barW)))
		}
		bar := strings.Repeat("█", w)
		if nums[i] < 0 {
			bar = errorStyle.Render(bar)
		} else {
			bar = activeStyle.Render(bar)
		}
		pad := strings.Repeat(" ", labelW-len([]rune(names[i])))
		lines = append(lines, fmt.Sprintf("%s%s │%s %s", names[i], pad, bar, texts[i]))
	}
	if n > shown {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("… %d more", n-shown)))
	}
	return strings.Join(lines, "\n")
}

func sparkline(values []any, width int) string {
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := toFloat(v); ok && finite(f) {
			nums = append(nums, f)
		}
	}
	if len(nums) == 0 {
		return dimStyle.Render("(no data)")
	}
	nums = resample(nums, width-2)

	lo, hi := nums[0], nums[0]
	for _, f := range nums {
		lo, hi = math.Min(lo, f), math.Max(hi, f)
	}
	// halves keep hi-lo finite across the whole float64 range
	span := hi/2 - lo/2
	var b strings.Builder
	for _, f := range nums {
		idx := 0
		if span > 0 {
			idx = sparkIndex((f/2 - lo/2) / span)
		}
		b.WriteRune(sparkTicks[idx])
	}
	lowS, _ := FormatNumber(lo)
	highS, _ := FormatNumber(hi)
	return activeStyle.Render(b.String()) + "\n" + dimStyle.Render(fmt.Sprintf("min %s  max %s  (%d points)", lowS, highS, len(values)))
}

// resample averages buckets so at most n points remain.
func resample(nums []float64, n int) []float64 {
	if n <= 0 || len(nums) <= n {
		return nums
	}
	out := make([]float64, n)
	for i := range out {
		start := i * len(nums) / n
		end := (i + 1) * len(nums) / n
		if end <= start {
			end = start + 1
		}
		count := float64(end - start)
		mean := 0.0
		for _, f := range nums[start:end] {
			mean += f / count
		}
		out[i] = mean
	}
	return out
}

// sparkIndex maps a position in [0, 1] to a tick, clamping anything outside
// that range and NaN.
func sparkIndex(t float64) int {
	if !(t > 0) {
		return 0
	}
	idx := int(t * float64(len(sparkTicks)-1))
	return min(idx, len(sparkTicks)-1)
}

func pie(labels, values []any) string {
	n := min(len(labels), len(values))
	if n == 0 {
		return dimStyle.Render("(no data)")
	}
	total := 0.0
	nums := make([]float64, n)
	for i := 0; i < n; i++ {
		if f, ok := toFloat(values[i]); ok && finite(f) {
			nums[i] = f
		}
		total += nums[i]
	}
	lines := make([]string, n)
	for i := 0; i < n; i++ {
		pct := 0.0
		if total != 0 {
			pct = nums[i] / total * 100
		}
		lines[i] = fmt.Sprintf("%s %s  %s", activeStyle.Render("●"), FormatValue(labels[i]), dimStyle.Render(fmt.Sprintf("%.1f%%", pct)))
	}
	return strings.Join(lines, "\n")
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// decodeArray accepts a plain JSON array or Plotly's packed typed-array form
// {"dtype": "f8", "bdata": "<base64>"} and returns the values.
func decodeArray(raw json.RawMessage) []any {
	if len(raw) == 0 {
		return nil
	}
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	switch val := v.(type) {
	case []any:
		return val
	case map[string]any:
		dtype, _ := val["dtype"].(string)
		bdata, _ := val["bdata"].(string)
		out, err := unpackTyped(dtype, bdata)
		if err != nil {
			return nil
		}
		return out
	}
	return nil
}

var errUnknownDtype = errors.New("unknown dtype")

func unpackTyped(dtype, bdata string) ([]any, error) {
	data, err := base64.StdEncoding.DecodeString(bdata)
	if err != nil {
		return nil, err
	}
	size := map[string]int{"i1": 1, "u1": 1, "i2": 2, "u2": 2, "i4": 4, "u4": 4, "f4": 4, "i8": 8, "u8": 8, "f8": 8}[dtype]
	if size == 0 {
		return nil, fmt.Errorf("%w %q", errUnknownDtype, dtype)
	}
	le := binary.LittleEndian
	out := make([]any, 0, len(data)/size)
	for off := 0; off+size <= len(data); off += size {
		chunk := data[off : off+size]
		switch dtype {
		case "i1":
			out = append(out, int64(int8(chunk[0])))
		case "u1":
			out = append(out, uint64(chunk[0]))
		case "i2":
			out = append(out, int64(int16(le.Uint16(chunk))))
		case "u2":
			out = append(out, uint64(le.Uint16(chunk)))
		case "i4":
			out = append(out, int64(int32(le.Uint32(chunk))))
		case "u4":
			out = append(out, uint64(le.Uint32(chunk)))
		case "f4":
			out = append(out, float64(math.Float32frombits(le.Uint32(chunk))))
		case "i8":
			out = append(out, int64(le.Uint64(chunk)))
		case "u8":
			out = append(out, le.Uint64(chunk))
		case "f8":
			out = append(out, math.Float64frombits(le.Uint64(chunk)))
		}
	}
	return out, nil
}
