package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ColumnDetail describes one dataset column as profiled by the backend.
type ColumnDetail struct {
	Name         string `json:"name" yaml:"name"`
	Type         string `json:"type" yaml:"type"`
	NullCount    int    `json:"null_count" yaml:"null_count"`
	UniqueCount  int    `json:"unique_count" yaml:"unique_count"`
	SampleValues []any  `json:"sample_values,omitempty" yaml:"sample_values,omitempty"`
}

// DataInfo summarizes the loaded dataset. Preview rows keep column order.
type DataInfo struct {
	Filename      string         `json:"filename" yaml:"filename"`
	Rows          int            `json:"rows" yaml:"rows"`
	Columns       int            `json:"columns" yaml:"columns"`
	Size          string         `json:"size,omitempty" yaml:"size,omitempty"`
	ColumnDetails []ColumnDetail `json:"column_details" yaml:"column_details"`
	MemoryUsage   string         `json:"memory_usage" yaml:"memory_usage"`
	Preview       []Record       `json:"preview,omitempty" yaml:"-"`
}

// StringList decodes either a JSON array or a single value into strings.
// Plans are produced by an LLM and are not always shaped consistently.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*s = nil
		return nil
	}
	v, err := decodeValue(newDecoder(trimmed))
	if err != nil {
		return err
	}
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, stringify(item))
		}
		*s = out
	default:
		*s = StringList{stringify(val)}
	}
	return nil
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	case json.Number:
		return val.String()
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

// ExecutionPlan is the planner agent's description of how a question will
// be answered.
type ExecutionPlan struct {
	QuestionAnalysis      string     `json:"question_analysis" yaml:"question_analysis"`
	RequiresVisualization bool       `json:"requires_visualization" yaml:"requires_visualization"`
	VisualizationType     string     `json:"visualization_type,omitempty" yaml:"visualization_type,omitempty"`
	Steps                 StringList `json:"steps" yaml:"steps"`
	DataOperations        StringList `json:"data_operations,omitempty" yaml:"data_operations,omitempty"`
	ExpectedOutput        string     `json:"expected_output" yaml:"expected_output"`
	Reasoning             string     `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`
	Status                string     `json:"status,omitempty" yaml:"status,omitempty"`
}

// Visualization is a serialized Plotly figure. The backend sends it as a
// JSON string; an inline object is accepted and kept as its raw text.
type Visualization string

func (v *Visualization) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*v = ""
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = Visualization(s)
	default:
		*v = Visualization(trimmed)
	}
	return nil
}

// HistoryMetadata carries the flags the backend attaches to stored turns.
type HistoryMetadata struct {
	HasVisualization bool           `json:"has_visualization,omitempty" yaml:"has_visualization,omitempty"`
	Plan             *ExecutionPlan `json:"plan,omitempty" yaml:"plan,omitempty"`
	Error            bool           `json:"error,omitempty" yaml:"error,omitempty"`
}

// HistoryEntry is one stored conversation turn.
type HistoryEntry struct {
	Role     string          `json:"role" yaml:"role"`
	Content  string          `json:"content" yaml:"content"`
	Metadata HistoryMetadata `json:"metadata" yaml:"metadata,omitempty"`
}

type UploadResponse struct {
	Success  bool      `json:"success"`
	Message  string    `json:"message,omitempty"`
	Error    string    `json:"error,omitempty"`
	DataInfo *DataInfo `json:"data_info,omitempty"`
}

type ChatResponse struct {
	Success             bool           `json:"success"`
	Message             string         `json:"message"`
	Result              *Result        `json:"result,omitempty"`
	Visualization       Visualization  `json:"visualization,omitempty"`
	Plan                *ExecutionPlan `json:"plan,omitempty"`
	Code                string         `json:"code,omitempty"`
	Error               string         `json:"error,omitempty"`
	ConversationHistory []HistoryEntry `json:"conversation_history,omitempty"`
}

type ClearResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type DataInfoResponse struct {
	Success  bool      `json:"success"`
	DataInfo *DataInfo `json:"data_info,omitempty"`
	Error    string    `json:"error,omitempty"`
}

type HistoryResponse struct {
	Success bool           `json:"success"`
	History []HistoryEntry `json:"history"`
	Error   string         `json:"error,omitempty"`
}

type HealthResponse struct {
	Status           string `json:"status"`
	APIKeyConfigured bool   `json:"api_key_configured"`
}

// Healthy reports whether the backend answered with status "healthy".
func (h *HealthResponse) Healthy() bool {
	return h != nil && strings.EqualFold(h.Status, "healthy")
}

type chatRequest struct {
	Message string `json:"message"`
}
