package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// HTTPClient interface for testing
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// DefaultHTTPClient is the default HTTP client
type DefaultHTTPClient struct{ Timeout time.Duration }

// Do implements the HTTPClient interface. A zero Timeout waits for the
// transport indefinitely, which is what upload and chat need.
func (c *DefaultHTTPClient) Do(req *http.Request) (*http.Response, error) {
	client := &http.Client{Timeout: c.Timeout}
	return client.Do(req)
}

var httpClient HTTPClient = &DefaultHTTPClient{}

const maxLogBodySize = 1024

// LogBodyContent reads and logs a body, then returns an equivalent reader so
// the caller can still consume it. Multipart uploads are summarized instead
// of dumped since they carry raw spreadsheet bytes.
func LogBodyContent(body io.ReadCloser, label string, contentType string) io.ReadCloser {
	if body == nil {
		LogDebug(fmt.Sprintf("  -> %s: <nil>", label))
		return nil
	}

	bodyBytes, err := io.ReadAll(body)
	body.Close()
	if err != nil {
		LogDebug(fmt.Sprintf("  -> %s: <error reading: %v>", label, err))
		return io.NopCloser(bytes.NewReader([]byte{}))
	}

	switch {
	case len(bodyBytes) == 0:
		LogDebug(fmt.Sprintf("  -> %s: <empty>", label))
	case strings.HasPrefix(strings.ToLower(contentType), "multipart/"):
		LogDebug(fmt.Sprintf("  -> %s: <multipart, %s>", label, FormatBytes(int64(len(bodyBytes)))))
	default:
		bodyStr := string(bodyBytes)
		if len(bodyStr) > maxLogBodySize {
			bodyStr = bodyStr[:maxLogBodySize] + "... (truncated)"
		}
		LogDebug(fmt.Sprintf("  -> %s: %s", label, bodyStr))
	}
	return io.NopCloser(bytes.NewReader(bodyBytes))
}

// VerboseHTTPClient wraps another HTTPClient and logs request/response basics and headers.
type VerboseHTTPClient struct{ Inner HTTPClient }

func (v *VerboseHTTPClient) Do(req *http.Request) (*http.Response, error) {
	inner := v.Inner
	if inner == nil {
		inner = &DefaultHTTPClient{}
	}
	if !DebugEnabled() {
		return inner.Do(req)
	}

	LogDebug(fmt.Sprintf("HTTP %s %s", req.Method, req.URL.String()))
	LogHeaders("request", req.Header)
	if req.Body != nil {
		req.Body = LogBodyContent(req.Body, "request body", req.Header.Get("Content-Type"))
	}

	resp, err := inner.Do(req)
	if err != nil {
		LogDebug(fmt.Sprintf("  -> error: %v", err))
		return nil, err
	}
	LogDebug(fmt.Sprintf("  -> %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
	LogHeaders("response", resp.Header)
	resp.Body = LogBodyContent(resp.Body, "response body", resp.Header.Get("Content-Type"))
	return resp, nil
}

// GetHTTPClient returns the shared client wrapped for debug logging.
func GetHTTPClient() HTTPClient {
	return &VerboseHTTPClient{Inner: httpClient}
}

var sensitiveHeaders = map[string]struct{}{
	"authorization":       {},
	"proxy-authorization": {},
	"cookie":              {},
	"set-cookie":          {},
	"x-api-key":           {},
	"api-key":             {},
	"x-auth-token":        {},
	"x-access-token":      {},
	"x-csrf-token":        {},
}

func LogHeaders(kind string, hdr http.Header) {
	if len(hdr) == 0 {
		return
	}
	keys := make([]string, 0, len(hdr))
	for k := range hdr {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_, isSensitive := sensitiveHeaders[strings.ToLower(k)]
		for _, v := range hdr.Values(k) {
			if isSensitive {
				LogDebug(fmt.Sprintf("  %s header: %s: [REDACTED]", kind, k))
			} else {
				LogDebug(fmt.Sprintf("  %s header: %s: %s", kind, k, v))
			}
		}
	}
}

// PrettyServerError extracts a readable message from a server error response body.
// It parses the JSON shapes the backend and common proxies produce:
// {"error":...}, {"message":...}, {"detail":...}.
func PrettyServerError(resp *http.Response, body []byte) string {
	var env struct {
		Detail    any    `json:"detail"`
		Message   string `json:"message"`
		Error     string `json:"error"`
		RequestID string `json:"request_id"`
	}
	if json.Unmarshal(body, &env) == nil {
		if env.Error != "" {
			return env.Error
		}
		switch v := env.Detail.(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]any:
			if m, ok := v["message"].(string); ok && m != "" {
				return m
			}
		}
		if env.Message != "" {
			return env.Message
		}
	}
	s := strings.TrimSpace(string(body))
	if s == "" || strings.HasPrefix(s, "<") {
		// empty or an HTML error page from a proxy / dev server
		return fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	if env.RequestID != "" {
		return s + " (request_id=" + env.RequestID + ")"
	}
	return s
}
