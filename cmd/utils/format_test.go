package utils

import "testing"

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name     string
		bytes    int64
		expected string
	}{
		{"bytes", 500, "500 B"},
		{"kilobytes", 1024, "1.0 KB"},
		{"upload limit", 10 * 1024 * 1024, "10.0 MB"},
		{"fractional megabytes", 1536 * 1024, "1.5 MB"},
		{"gigabytes", 1024 * 1024 * 1024, "1.0 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := FormatBytes(tt.bytes); result != tt.expected {
				t.Errorf("FormatBytes(%d) = %s, want %s", tt.bytes, result, tt.expected)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		seconds  float64
		expected string
	}{
		{"negative duration", -1, "unknown"},
		{"sub-second", 0.4, "0s"},
		{"seconds only", 45, "45s"},
		{"minutes with seconds", 150, "2m 30s"},
		{"minutes only", 120, "2m"},
		{"hours with minutes", 5400, "1h 30m"},
		{"hours only", 7200, "2h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := FormatDuration(tt.seconds); result != tt.expected {
				t.Errorf("FormatDuration(%f) = %s, want %s", tt.seconds, result, tt.expected)
			}
		})
	}
}

func TestIconForStatus(t *testing.T) {
	tests := map[string]string{
		"healthy":     "✅",
		" OK ":        "✅",
		"unreachable": "❌",
		"":            "❓",
		"rebooting":   "❓",
	}
	for status, want := range tests {
		if got := IconForStatus(status); got != want {
			t.Errorf("IconForStatus(%q) = %q, want %q", status, got, want)
		}
	}
}
