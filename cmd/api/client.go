package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dataroom-cli/cmd/utils"

	"github.com/google/uuid"
)

// DefaultBaseURL is where the analysis backend listens in development.
const DefaultBaseURL = "http://localhost:5000"

// diagnosticTimeout bounds info/history/health. Upload, chat and clear wait
// as long as the backend needs.
const diagnosticTimeout = 10 * time.Second

// Client talks to the analysis backend's HTTP API.
type Client struct {
	baseURL string
	http    utils.HTTPClient
}

// NewClient returns a client for baseURL. A nil httpClient uses the shared
// debug-logging client from utils.
func NewClient(baseURL string, httpClient utils.HTTPClient) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = utils.GetHTTPClient()
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// BaseURL returns the backend root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// UploadFile sends a local spreadsheet as multipart field "file".
func (c *Client) UploadFile(ctx context.Context, path string) (*UploadResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return c.Upload(ctx, filepath.Base(path), f)
}

// Upload streams r to /api/upload under the given filename.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (*UploadResponse, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	var out UploadResponse
	if err := c.do(ctx, "upload", http.MethodPost, "/api/upload", body, writer.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendMessage asks the backend a question about the loaded dataset.
func (c *Client) SendMessage(ctx context.Context, text string) (*ChatResponse, error) {
	payload, err := json.Marshal(chatRequest{Message: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}
	var out ChatResponse
	if err := c.do(ctx, "chat", http.MethodPost, "/api/chat", bytes.NewReader(payload), "application/json", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClearSession drops the backend's dataset and conversation.
func (c *Client) ClearSession(ctx context.Context) (*ClearResponse, error) {
	var out ClearResponse
	if err := c.do(ctx, "clear", http.MethodPost, "/api/clear", nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DataInfo fetches the current dataset summary. The backend answers 400
// with success=false when nothing is loaded.
func (c *Client) DataInfo(ctx context.Context) (*DataInfoResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, diagnosticTimeout)
	defer cancel()
	var out DataInfoResponse
	if err := c.do(ctx, "data-info", http.MethodGet, "/api/data-info", nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// History fetches the stored conversation.
func (c *Client) History(ctx context.Context) (*HistoryResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, diagnosticTimeout)
	defer cancel()
	var out HistoryResponse
	if err := c.do(ctx, "history", http.MethodGet, "/api/history", nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health probes the backend and reports whether its model key is set.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, diagnosticTimeout)
	defer cancel()
	var out HealthResponse
	if err := c.do(ctx, "health", http.MethodGet, "/api/health", nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// envelopeProbe detects whether a non-2xx body is a backend envelope or
// something a proxy produced.
type envelopeProbe struct {
	Success *bool   `json:"success"`
	Error   *string `json:"error"`
	Status  *string `json:"status"`
}

func (p envelopeProbe) isEnvelope() bool {
	return p.Success != nil || p.Error != nil || p.Status != nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, utils.JoinURL(c.baseURL, path), body)
	if err != nil {
		return &Error{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok {
		var probe envelopeProbe
		if json.Unmarshal(data, &probe) != nil || !probe.isEnvelope() {
			return &Error{
				Op:          op,
				StatusCode:  resp.StatusCode,
				ServerError: utils.PrettyServerError(resp, data),
				Err:         fmt.Errorf("server returned %d", resp.StatusCode),
			}
		}
		utils.LogDebug(fmt.Sprintf("%s: backend reported failure with status %d", op, resp.StatusCode))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("malformed response: %w", err)}
	}
	return nil
}
