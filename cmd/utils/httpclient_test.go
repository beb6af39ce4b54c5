package utils

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogBodyContent(t *testing.T) {
	tests := []struct {
		name        string
		body        io.ReadCloser
		contentType string
		wantBody    string
		wantNil     bool
	}{
		{name: "nil body", body: nil, wantNil: true},
		{name: "empty body", body: io.NopCloser(bytes.NewReader(nil)), wantBody: ""},
		{
			name:        "JSON body",
			body:        io.NopCloser(strings.NewReader(`{"message":"top 5 customers"}`)),
			contentType: "application/json",
			wantBody:    `{"message":"top 5 customers"}`,
		},
		{
			name:        "multipart body is restored intact",
			body:        io.NopCloser(strings.NewReader("--b\r\nraw,csv,bytes\r\n--b--")),
			contentType: "multipart/form-data; boundary=b",
			wantBody:    "--b\r\nraw,csv,bytes\r\n--b--",
		},
		{
			name:     "large body",
			body:     io.NopCloser(strings.NewReader(strings.Repeat("a", 2000))),
			wantBody: strings.Repeat("a", 2000),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := LogBodyContent(tt.body, "test body", tt.contentType)
			if tt.wantNil {
				if result != nil {
					t.Fatalf("expected nil result")
				}
				return
			}
			got, err := io.ReadAll(result)
			if err != nil {
				t.Fatalf("failed to read restored body: %v", err)
			}
			if string(got) != tt.wantBody {
				t.Errorf("restored body = %q, want %q", got, tt.wantBody)
			}
		})
	}
}

func TestLogHeadersRedactsSensitiveValues(t *testing.T) {
	ResetDebugLoggerForTesting()
	defer ResetDebugLoggerForTesting()
	logPath := filepath.Join(t.TempDir(), "headers.log")
	if err := InitDebugLogger(logPath, true); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	defer func() { enableDebug = false }()

	LogHeaders("request", http.Header{
		"Authorization": {"Bearer secret-token"},
		"Cookie":        {"session=abc123"},
		"X-Request-Id":  {"req-42"},
	})
	_ = debugFile.Sync()

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	logStr := string(content)
	for _, secret := range []string{"secret-token", "session=abc123"} {
		if strings.Contains(logStr, secret) {
			t.Errorf("log should not contain %q:\n%s", secret, logStr)
		}
	}
	if !strings.Contains(logStr, "X-Request-Id: req-42") {
		t.Errorf("non-sensitive header missing from log:\n%s", logStr)
	}
}

func TestPrettyServerError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"backend error envelope", 400, `{"success":false,"error":"No file provided"}`, "No file provided"},
		{"error wins over message", 500, `{"success":false,"error":"model timeout","message":"I encountered an error: model timeout"}`, "model timeout"},
		{"detail string", 422, `{"detail":"bad input"}`, "bad input"},
		{"plain text", 502, "upstream unavailable", "upstream unavailable"},
		{"html page", 502, "<html><body>Bad Gateway</body></html>", "502 Bad Gateway"},
		{"empty body", 500, "", "500 Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{StatusCode: tt.status}
			if got := PrettyServerError(resp, []byte(tt.body)); got != tt.want {
				t.Errorf("PrettyServerError() = %q, want %q", got, tt.want)
			}
		})
	}
}
