package render

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"dataroom-cli/cmd/api"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// FormatNumber formats a numeric value with thousands grouping and at most
// three fraction digits, e.g. 1234 -> "1,234", 0.12345 -> "0.123". ok is
// false when v is not a number.
func FormatNumber(v any) (s string, ok bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return printer.Sprintf("%d", i), true
		}
		f, err := n.Float64()
		if err != nil {
			return n.String(), true
		}
		return formatFloat(f), true
	case int:
		return printer.Sprintf("%d", n), true
	case int32:
		return printer.Sprintf("%d", n), true
	case int64:
		return printer.Sprintf("%d", n), true
	case uint:
		return printer.Sprintf("%d", n), true
	case uint64:
		return printer.Sprintf("%d", n), true
	case float32:
		return formatFloat(float64(n)), true
	case float64:
		return formatFloat(n), true
	}
	return "", false
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "∞"
	case math.IsInf(f, -1):
		return "-∞"
	}
	return printer.Sprint(number.Decimal(f, number.MaxFractionDigits(3)))
}

// FormatValue renders any decoded JSON value for display. Numbers are
// grouped, null prints as "null", and nested values become compact JSON.
func FormatValue(v any) string {
	if s, ok := FormatNumber(v); ok {
		return s
	}
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case api.Record, []any, map[string]any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
	return fmt.Sprint(v)
}

// FormatInt groups an integer count, used for row totals.
func FormatInt(n int) string {
	return printer.Sprintf("%d", n)
}

func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
