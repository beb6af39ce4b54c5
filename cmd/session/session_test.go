package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dataroom-cli/cmd/api"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeBackend struct {
	upload   *api.UploadResponse
	chat     *api.ChatResponse
	clear    *api.ClearResponse
	info     *api.DataInfoResponse
	history  *api.HistoryResponse
	err      error
	calls    map[string]int
	messages []string
}

func (f *fakeBackend) count(op string) {
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[op]++
}

func (f *fakeBackend) UploadFile(ctx context.Context, path string) (*api.UploadResponse, error) {
	f.count("upload")
	return f.upload, f.err
}

func (f *fakeBackend) SendMessage(ctx context.Context, text string) (*api.ChatResponse, error) {
	f.count("chat")
	f.messages = append(f.messages, text)
	return f.chat, f.err
}

func (f *fakeBackend) ClearSession(ctx context.Context) (*api.ClearResponse, error) {
	f.count("clear")
	return f.clear, f.err
}

func (f *fakeBackend) DataInfo(ctx context.Context) (*api.DataInfoResponse, error) {
	f.count("data-info")
	return f.info, f.err
}

func (f *fakeBackend) History(ctx context.Context) (*api.HistoryResponse, error) {
	f.count("history")
	return f.history, f.err
}

func writeCSV(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("region,sales\nEast,10\nWest,20\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func salesInfo() *api.DataInfo {
	return &api.DataInfo{Filename: "sales.csv", Rows: 2, Columns: 2}
}

// loaded returns a session that has completed one successful upload.
func loaded(t *testing.T, fb *fakeBackend) *Session {
	t.Helper()
	fb.upload = &api.UploadResponse{Success: true, DataInfo: salesInfo()}
	s := New(fb)
	cmd, err := s.Upload(writeCSV(t, "sales.csv"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	s.Handle(cmd())
	if s.State() != DatasetLoaded {
		t.Fatalf("state = %v, want DatasetLoaded", s.State())
	}
	return s
}

func run(s *Session, cmd tea.Cmd) Notice {
	if cmd == nil {
		return Notice{}
	}
	return s.Handle(cmd())
}

func TestUploadSuccess(t *testing.T) {
	fb := &fakeBackend{}
	s := loaded(t, fb)
	snap := s.Snapshot()
	if snap.Dataset == nil || snap.Dataset.Filename != "sales.csv" {
		t.Fatalf("dataset = %+v", snap.Dataset)
	}
	if snap.UploadInFlight {
		t.Error("upload flag should be cleared")
	}
	if snap.Generation != 1 {
		t.Errorf("generation = %d, want 1", snap.Generation)
	}
}

func TestUploadSuccessNotice(t *testing.T) {
	fb := &fakeBackend{upload: &api.UploadResponse{Success: true, DataInfo: &api.DataInfo{Rows: 1234, Columns: 5}}}
	s := New(fb)
	cmd, err := s.Upload(writeCSV(t, "a.csv"))
	if err != nil {
		t.Fatal(err)
	}
	n := run(s, cmd)
	if n.Kind != NoticeSuccess || n.Text != "File uploaded successfully! 1234 rows, 5 columns." {
		t.Errorf("notice = %+v", n)
	}
}

func TestUploadReplacesDatasetAndResetsTranscript(t *testing.T) {
	fb := &fakeBackend{chat: &api.ChatResponse{Success: true, Message: "ok"}}
	s := loaded(t, fb)
	run(s, s.SendUserMessage("hello"))
	if got := len(s.Snapshot().Messages); got != 2 {
		t.Fatalf("messages = %d, want 2", got)
	}

	fb.upload = &api.UploadResponse{Success: true, DataInfo: &api.DataInfo{Filename: "b.xlsx", Rows: 9, Columns: 3}}
	cmd, err := s.Upload(writeCSV(t, "b.csv"))
	if err != nil {
		t.Fatal(err)
	}
	run(s, cmd)
	snap := s.Snapshot()
	if len(snap.Messages) != 0 {
		t.Errorf("transcript not reset: %d messages", len(snap.Messages))
	}
	if snap.Dataset.Filename != "b.xlsx" {
		t.Errorf("dataset not replaced: %+v", snap.Dataset)
	}
}

func TestUploadFailures(t *testing.T) {
	tests := []struct {
		name string
		resp *api.UploadResponse
		err  error
		want string
	}{
		{"application error", &api.UploadResponse{Success: false, Error: "Unsupported file format"}, nil, "Upload failed: Unsupported file format"},
		{"application error without text", &api.UploadResponse{Success: false}, nil, "Upload failed: Unknown error"},
		{"success without descriptor", &api.UploadResponse{Success: true}, nil, "Upload failed: Unknown error"},
		{"transport error", nil, &api.Error{Op: "upload", Err: errors.New("connection refused")}, "Upload error: connection refused"},
		{"transport error with server text", nil, &api.Error{Op: "upload", StatusCode: 413, ServerError: "Request Entity Too Large"}, "Upload error: Request Entity Too Large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &fakeBackend{upload: tt.resp, err: tt.err}
			s := New(fb)
			cmd, err := s.Upload(writeCSV(t, "x.csv"))
			if err != nil {
				t.Fatal(err)
			}
			n := run(s, cmd)
			if n.Kind != NoticeError || n.Text != tt.want {
				t.Errorf("notice = %+v, want %q", n, tt.want)
			}
			snap := s.Snapshot()
			if snap.State != NoDataset || snap.Dataset != nil || snap.UploadInFlight {
				t.Errorf("state after failure = %+v", snap)
			}
		})
	}
}

func TestUploadFailureKeepsExistingDataset(t *testing.T) {
	fb := &fakeBackend{chat: &api.ChatResponse{Success: true, Message: "ok"}}
	s := loaded(t, fb)
	run(s, s.SendUserMessage("q"))

	fb.upload = &api.UploadResponse{Success: false, Error: "bad file"}
	cmd, _ := s.Upload(writeCSV(t, "c.csv"))
	run(s, cmd)
	snap := s.Snapshot()
	if snap.State != DatasetLoaded || snap.Dataset.Filename != "sales.csv" || len(snap.Messages) != 2 {
		t.Errorf("failed upload changed state: %+v", snap)
	}
}

func TestUploadRejectedWhileInFlight(t *testing.T) {
	fb := &fakeBackend{}
	s := New(fb)
	if _, err := s.Upload(writeCSV(t, "a.csv")); err != nil {
		t.Fatal(err)
	}
	_, err := s.Upload(writeCSV(t, "b.csv"))
	if !errors.Is(err, ErrUploadInFlight) {
		t.Fatalf("err = %v, want ErrUploadInFlight", err)
	}
}

func TestUploadValidationBlocksNetwork(t *testing.T) {
	fb := &fakeBackend{}
	s := New(fb)
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("just some prose and nothing tabular"), 0644); err != nil {
		t.Fatal(err)
	}
	cmd, err := s.Upload(path)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Reason != MsgUnsupportedType {
		t.Fatalf("err = %v, want validation error", err)
	}
	if cmd != nil || fb.calls["upload"] != 0 || s.Snapshot().UploadInFlight {
		t.Error("validation failure must not start an upload")
	}
}

func TestSendUserMessageGuards(t *testing.T) {
	fb := &fakeBackend{chat: &api.ChatResponse{Success: true, Message: "ok"}}

	s := New(fb)
	if cmd := s.SendUserMessage("hello"); cmd != nil {
		t.Error("send without dataset should be refused")
	}
	if !errors.Is(s.CanSend(), ErrNoDataset) {
		t.Errorf("CanSend() = %v", s.CanSend())
	}

	s = loaded(t, fb)
	for _, blank := range []string{"", "   ", "\n\t"} {
		if cmd := s.SendUserMessage(blank); cmd != nil {
			t.Errorf("blank text %q should be refused", blank)
		}
	}
	if len(s.Snapshot().Messages) != 0 {
		t.Fatal("refused sends must not append")
	}

	cmd := s.SendUserMessage("first")
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if second := s.SendUserMessage("second"); second != nil {
		t.Error("send while chat in flight should be refused")
	}
	snap := s.Snapshot()
	if len(snap.Messages) != 1 || snap.Messages[0].Role != RoleUser || snap.Messages[0].Content != "first" {
		t.Fatalf("user record not appended immediately: %+v", snap.Messages)
	}
	if !snap.ChatInFlight {
		t.Error("chat flag should be set")
	}
	run(s, cmd)
	if s.Snapshot().ChatInFlight {
		t.Error("chat flag should be cleared")
	}
	if fb.calls["chat"] != 1 {
		t.Errorf("chat calls = %d, want 1", fb.calls["chat"])
	}
}

func TestChatOutcomes(t *testing.T) {
	plan := &api.ExecutionPlan{QuestionAnalysis: "top customers", Steps: api.StringList{"sort", "head"}}
	result, _ := api.ParseResult([]byte(`[{"customer":"A","sales":1234}]`))

	tests := []struct {
		name      string
		resp      *api.ChatResponse
		err       error
		content   string
		wantError bool
		wantPlan  bool
		wantViz   bool
	}{
		{
			name:     "success with chart",
			resp:     &api.ChatResponse{Success: true, Message: "Here are the top customers", Result: result, Visualization: `{"data":[]}`, Plan: plan},
			content:  "Here are the top customers",
			wantPlan: true,
			wantViz:  true,
		},
		{
			name:      "application failure keeps plan",
			resp:      &api.ChatResponse{Success: false, Error: "KeyError: 'Profit'", Plan: plan},
			content:   "Sorry, I encountered an error: KeyError: 'Profit'",
			wantError: true,
			wantPlan:  true,
		},
		{
			name:      "application failure without text",
			resp:      &api.ChatResponse{Success: false},
			content:   "Sorry, I encountered an error: Unknown error",
			wantError: true,
		},
		{
			name:      "transport failure",
			err:       &api.Error{Op: "chat", Err: errors.New("connection reset")},
			content:   "Sorry, something went wrong: connection reset",
			wantError: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &fakeBackend{}
			s := loaded(t, fb)
			fb.chat, fb.err = tt.resp, tt.err
			run(s, s.SendUserMessage("Show me the top 5 customers by sales"))

			msgs := s.Snapshot().Messages
			if len(msgs) != 2 {
				t.Fatalf("messages = %d, want exactly one assistant reply", len(msgs))
			}
			reply := msgs[1]
			if reply.Role != RoleAssistant || reply.Content != tt.content {
				t.Errorf("reply = %q (%s), want %q", reply.Content, reply.Role, tt.content)
			}
			md := reply.Metadata
			if md == nil {
				t.Fatal("assistant reply without metadata")
			}
			if md.Error != tt.wantError {
				t.Errorf("error flag = %v", md.Error)
			}
			if (md.Plan != nil) != tt.wantPlan {
				t.Errorf("plan present = %v", md.Plan != nil)
			}
			if md.HasVisualization != tt.wantViz || (md.Visualization != "") != tt.wantViz {
				t.Errorf("visualization = %v %q", md.HasVisualization, md.Visualization)
			}
			wantResult := (*api.Result)(nil)
			if tt.resp != nil && tt.resp.Success {
				wantResult = tt.resp.Result
			}
			if md.Result != wantResult {
				t.Errorf("result = %+v, want %+v", md.Result, wantResult)
			}
			if s.Snapshot().ChatInFlight {
				t.Error("chat flag must be cleared on every outcome")
			}
		})
	}
}

func TestChatKeyValueAnswer(t *testing.T) {
	var resp api.ChatResponse
	if err := json.Unmarshal([]byte(`{"success":true,"message":"Avg profit is 12.3","result":{"avg":12.3}}`), &resp); err != nil {
		t.Fatal(err)
	}
	fb := &fakeBackend{}
	s := loaded(t, fb)
	fb.chat = &resp
	run(s, s.SendUserMessage("What is the average profit?"))

	msgs := s.Snapshot().Messages
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	reply := msgs[1]
	if reply.Content != "Avg profit is 12.3" {
		t.Errorf("content = %q", reply.Content)
	}
	md := reply.Metadata
	if md.Error || md.Plan != nil || md.HasVisualization || md.Visualization != "" {
		t.Errorf("unexpected metadata %+v", md)
	}
	if md.Result == nil || md.Result.Kind != api.ResultKeyValue {
		t.Fatalf("result = %+v, want key-value", md.Result)
	}
	pairs := md.Result.Pairs
	if len(pairs) != 1 || pairs[0].Key != "avg" || pairs[0].Value != json.Number("12.3") {
		t.Errorf("pairs = %+v, want avg=12.3", pairs)
	}
}

func TestClearConfirmation(t *testing.T) {
	fb := &fakeBackend{chat: &api.ChatResponse{Success: true, Message: "ok"}, clear: &api.ClearResponse{Success: true}}
	s := loaded(t, fb)
	run(s, s.SendUserMessage("q"))

	if !s.RequestClear() {
		t.Fatal("RequestClear should open the confirmation")
	}
	if cmd := s.Confirm(false); cmd != nil {
		t.Fatal("declining must not clear")
	}
	snap := s.Snapshot()
	if snap.State != DatasetLoaded || len(snap.Messages) != 2 || snap.Confirming {
		t.Fatalf("declined clear changed state: %+v", snap)
	}
	if fb.calls["clear"] != 0 {
		t.Fatal("declined clear must not call the backend")
	}

	s.RequestClear()
	n := run(s, s.Confirm(true))
	snap = s.Snapshot()
	if snap.State != NoDataset || snap.Dataset != nil || len(snap.Messages) != 0 {
		t.Errorf("clear did not reset: %+v", snap)
	}
	if snap.ChatInFlight || snap.UploadInFlight || snap.ClearInFlight {
		t.Errorf("flags not reset: %+v", snap)
	}
	if n.Kind != NoticeInfo {
		t.Errorf("notice = %+v", n)
	}
}

func TestConfirmWithoutRequestIsNoop(t *testing.T) {
	s := New(&fakeBackend{})
	if cmd := s.Confirm(true); cmd != nil {
		t.Error("Confirm without a pending request should do nothing")
	}
}

func TestClearFailureStillResets(t *testing.T) {
	tests := []struct {
		name string
		resp *api.ClearResponse
		err  error
		want string
	}{
		{"transport", nil, &api.Error{Op: "clear", Err: errors.New("dial tcp: refused")}, "Error clearing session: dial tcp: refused"},
		{"application", &api.ClearResponse{Success: false, Error: "disk full"}, nil, "Error clearing session: disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &fakeBackend{}
			s := loaded(t, fb)
			fb.clear, fb.err = tt.resp, tt.err
			s.RequestClear()
			n := run(s, s.Confirm(true))
			if n.Kind != NoticeError || n.Text != tt.want {
				t.Errorf("notice = %+v, want %q", n, tt.want)
			}
			if s.State() != NoDataset || len(s.Snapshot().Messages) != 0 {
				t.Error("clear failure must not block the reset")
			}
		})
	}
}

func TestLateChatAfterClearIsDropped(t *testing.T) {
	fb := &fakeBackend{chat: &api.ChatResponse{Success: true, Message: "late answer"}, clear: &api.ClearResponse{Success: true}}
	s := loaded(t, fb)
	chatCmd := s.SendUserMessage("slow question")

	s.RequestClear()
	run(s, s.Confirm(true))

	// the chat completes after the clear
	if n := run(s, chatCmd); !n.IsZero() {
		t.Errorf("stale completion produced notice %+v", n)
	}
	snap := s.Snapshot()
	if len(snap.Messages) != 0 {
		t.Errorf("stale reply appended: %+v", snap.Messages)
	}
	if snap.State != NoDataset {
		t.Errorf("state = %v", snap.State)
	}
}

func TestLateChatAfterNewUploadIsDropped(t *testing.T) {
	fb := &fakeBackend{chat: &api.ChatResponse{Success: true, Message: "answer about old data"}}
	s := loaded(t, fb)
	chatCmd := s.SendUserMessage("question about old data")

	fb.upload = &api.UploadResponse{Success: true, DataInfo: &api.DataInfo{Filename: "new.csv", Rows: 1, Columns: 1}}
	upCmd, err := s.Upload(writeCSV(t, "new.csv"))
	if err != nil {
		t.Fatal(err)
	}
	run(s, upCmd)
	run(s, chatCmd)

	snap := s.Snapshot()
	if len(snap.Messages) != 0 {
		t.Errorf("answer for previous dataset leaked into new transcript: %+v", snap.Messages)
	}
	if snap.ChatInFlight {
		t.Error("chat flag should not stay set after the dataset changed")
	}
	if s.SendUserMessage("fresh question") == nil {
		t.Error("should be able to chat about the new dataset")
	}
}

func TestResume(t *testing.T) {
	fb := &fakeBackend{
		info: &api.DataInfoResponse{Success: true, DataInfo: salesInfo()},
		history: &api.HistoryResponse{Success: true, History: []api.HistoryEntry{
			{Role: "user", Content: "What is the average profit by region?"},
			{Role: "assistant", Content: "East leads.", Metadata: api.HistoryMetadata{HasVisualization: true}},
		}},
	}
	s := New(fb)
	n := run(s, s.Resume())
	snap := s.Snapshot()
	if snap.State != DatasetLoaded || len(snap.Messages) != 2 {
		t.Fatalf("resume = %+v", snap)
	}
	if snap.Messages[0].Metadata != nil || snap.Messages[1].Metadata == nil || !snap.Messages[1].Metadata.HasVisualization {
		t.Errorf("history metadata not carried: %+v", snap.Messages)
	}
	if !strings.Contains(n.Text, "sales.csv") {
		t.Errorf("notice = %+v", n)
	}
}

func TestResumeWithoutDataset(t *testing.T) {
	fb := &fakeBackend{info: &api.DataInfoResponse{Success: false, Error: "No data loaded"}}
	s := New(fb)
	if n := run(s, s.Resume()); !n.IsZero() {
		t.Errorf("notice = %+v", n)
	}
	if s.State() != NoDataset || fb.calls["history"] != 0 {
		t.Error("resume without dataset should change nothing")
	}
}

func TestResumeLosesToLocalUpload(t *testing.T) {
	fb := &fakeBackend{info: &api.DataInfoResponse{Success: true, DataInfo: &api.DataInfo{Filename: "old.csv"}}, history: &api.HistoryResponse{Success: true}}
	s := New(fb)
	resume := s.Resume()

	fb.upload = &api.UploadResponse{Success: true, DataInfo: salesInfo()}
	up, _ := s.Upload(writeCSV(t, "sales.csv"))
	run(s, up)
	run(s, resume)

	if got := s.Snapshot().Dataset.Filename; got != "sales.csv" {
		t.Errorf("dataset = %q, resume must not override a local upload", got)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	fb := &fakeBackend{chat: &api.ChatResponse{Success: true, Message: "ok"}}
	s := loaded(t, fb)
	run(s, s.SendUserMessage("q"))
	snap := s.Snapshot()
	snap.Messages[0].Content = "mutated"
	if s.Snapshot().Messages[0].Content != "q" {
		t.Error("snapshot mutation leaked into the session")
	}
}
