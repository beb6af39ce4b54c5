package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dataroom-cli/cmd/api"
	"dataroom-cli/cmd/utils"

	tea "github.com/charmbracelet/bubbletea"
)

// State is the coarse session state. Only DatasetLoaded shows the
// conversation view.
type State int

const (
	NoDataset State = iota
	DatasetLoaded
)

func (s State) String() string {
	if s == DatasetLoaded {
		return "dataset-loaded"
	}
	return "no-dataset"
}

var (
	ErrUploadInFlight = errors.New("an upload is already in progress")
	ErrChatInFlight   = errors.New("still waiting for the previous answer")
	ErrClearInFlight  = errors.New("the session is being cleared")
	ErrNoDataset      = errors.New("no dataset loaded, upload a CSV or Excel file first")
)

// Backend is the subset of the API client the session drives.
type Backend interface {
	UploadFile(ctx context.Context, path string) (*api.UploadResponse, error)
	SendMessage(ctx context.Context, text string) (*api.ChatResponse, error)
	ClearSession(ctx context.Context) (*api.ClearResponse, error)
	DataInfo(ctx context.Context) (*api.DataInfoResponse, error)
	History(ctx context.Context) (*api.HistoryResponse, error)
}

// Session owns the dataset, the transcript and the in-flight flags. It is
// not safe for concurrent use: every method is called from the Bubble Tea
// update loop, and network work happens inside the returned commands.
type Session struct {
	backend Backend
	ctx     context.Context
	now     func() time.Time

	state      State
	dataset    *api.DataInfo
	transcript Transcript

	uploadInFlight bool
	chatInFlight   bool
	clearInFlight  bool
	confirming     bool

	// generation is bumped by clear and by a successful upload. Completions
	// issued under an older generation are discarded.
	generation uint64
}

func New(backend Backend) *Session {
	return &Session{backend: backend, ctx: context.Background(), now: time.Now}
}

// Snapshot is a read-only copy of the session for rendering.
type Snapshot struct {
	State          State
	Dataset        *api.DataInfo
	Messages       []Message
	UploadInFlight bool
	ChatInFlight   bool
	ClearInFlight  bool
	Confirming     bool
	Generation     uint64
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		State:          s.state,
		Dataset:        s.dataset,
		Messages:       s.transcript.Messages(),
		UploadInFlight: s.uploadInFlight,
		ChatInFlight:   s.chatInFlight,
		ClearInFlight:  s.clearInFlight,
		Confirming:     s.confirming,
		Generation:     s.generation,
	}
}

func (s *Session) State() State { return s.state }

// Upload validates path and returns the command that sends it. Validation
// failures come back as *ValidationError without touching the network.
func (s *Session) Upload(path string) (tea.Cmd, error) {
	if s.uploadInFlight {
		return nil, ErrUploadInFlight
	}
	if s.clearInFlight {
		return nil, ErrClearInFlight
	}
	if err := ValidateUpload(path); err != nil {
		return nil, err
	}
	s.uploadInFlight = true
	gen := s.generation
	backend, ctx := s.backend, s.ctx
	utils.LogDebug(fmt.Sprintf("session: upload %s (gen %d)", path, gen))
	return func() tea.Msg {
		resp, err := backend.UploadFile(ctx, path)
		return UploadDoneMsg{Gen: gen, Path: path, Resp: resp, Err: err}
	}, nil
}

// CanSend explains why a message would be refused, or returns nil.
func (s *Session) CanSend() error {
	switch {
	case s.state != DatasetLoaded:
		return ErrNoDataset
	case s.clearInFlight:
		return ErrClearInFlight
	case s.chatInFlight:
		return ErrChatInFlight
	}
	return nil
}

// SendUserMessage appends the user's record and returns the chat command.
// Blank text, a missing dataset or a request already in flight yield nil
// and leave the session untouched.
func (s *Session) SendUserMessage(text string) tea.Cmd {
	if strings.TrimSpace(text) == "" || s.CanSend() != nil {
		return nil
	}
	s.transcript.Append(Message{Role: RoleUser, Content: text, Time: s.now()})
	s.chatInFlight = true
	gen := s.generation
	backend, ctx, now := s.backend, s.ctx, s.now
	return func() tea.Msg {
		start := now()
		resp, err := backend.SendMessage(ctx, text)
		return ChatDoneMsg{Gen: gen, Resp: resp, Err: err, Elapsed: now().Sub(start)}
	}
}

// RequestClear opens the confirmation step. It reports false when a clear
// is already running.
func (s *Session) RequestClear() bool {
	if s.clearInFlight {
		return false
	}
	s.confirming = true
	return true
}

// Confirm answers the pending clear confirmation. Declining changes nothing.
func (s *Session) Confirm(yes bool) tea.Cmd {
	if !s.confirming {
		return nil
	}
	s.confirming = false
	if !yes {
		return nil
	}
	s.generation++
	s.clearInFlight = true
	gen := s.generation
	backend, ctx := s.backend, s.ctx
	utils.LogDebug(fmt.Sprintf("session: clear confirmed (gen %d)", gen))
	return func() tea.Msg {
		resp, err := backend.ClearSession(ctx)
		return ClearDoneMsg{Gen: gen, Resp: resp, Err: err}
	}
}

// Resume asks the backend whether a dataset is already loaded so a restarted
// client can pick the conversation back up.
func (s *Session) Resume() tea.Cmd {
	gen := s.generation
	backend, ctx := s.backend, s.ctx
	return func() tea.Msg {
		info, err := backend.DataInfo(ctx)
		if err != nil {
			return ResumeMsg{Gen: gen, Err: err}
		}
		if !info.Success || info.DataInfo == nil {
			return ResumeMsg{Gen: gen}
		}
		msg := ResumeMsg{Gen: gen, Info: info.DataInfo}
		hist, err := backend.History(ctx)
		if err != nil {
			msg.Err = err
			return msg
		}
		if hist.Success {
			msg.History = hist.History
		}
		return msg
	}
}

// Handle applies a completion message. It returns the notice to show, which
// is zero when the message was not a session message or was stale.
func (s *Session) Handle(msg tea.Msg) Notice {
	switch m := msg.(type) {
	case UploadDoneMsg:
		return s.handleUpload(m)
	case ChatDoneMsg:
		return s.handleChat(m)
	case ClearDoneMsg:
		return s.handleClear(m)
	case ResumeMsg:
		return s.handleResume(m)
	}
	return Notice{}
}

func (s *Session) stale(kind string, gen uint64) bool {
	if gen == s.generation {
		return false
	}
	utils.LogDebug(fmt.Sprintf("session: dropping stale %s completion (gen %d, current %d)", kind, gen, s.generation))
	return true
}

func (s *Session) handleUpload(m UploadDoneMsg) Notice {
	if s.stale("upload", m.Gen) {
		return Notice{}
	}
	s.uploadInFlight = false
	if m.Err != nil {
		return Notice{Kind: NoticeError, Text: "Upload error: " + api.ErrorMessage(m.Err)}
	}
	if m.Resp == nil || !m.Resp.Success || m.Resp.DataInfo == nil {
		reason := "Unknown error"
		if m.Resp != nil && m.Resp.Error != "" {
			reason = m.Resp.Error
		}
		return Notice{Kind: NoticeError, Text: "Upload failed: " + reason}
	}

	info := m.Resp.DataInfo
	s.state = DatasetLoaded
	s.dataset = info
	s.transcript.ResetAll()
	// an answer still pending belongs to the previous dataset
	s.chatInFlight = false
	s.generation++
	return Notice{
		Kind: NoticeSuccess,
		Text: fmt.Sprintf("File uploaded successfully! %d rows, %d columns.", info.Rows, info.Columns),
	}
}

func (s *Session) handleChat(m ChatDoneMsg) Notice {
	if s.stale("chat", m.Gen) {
		return Notice{}
	}
	s.chatInFlight = false

	reply := Message{Role: RoleAssistant, Time: s.now(), Metadata: &Metadata{Elapsed: m.Elapsed}}
	switch {
	case m.Err != nil:
		reply.Content = "Sorry, something went wrong: " + api.ErrorMessage(m.Err)
		reply.Metadata.Error = true
	case m.Resp == nil:
		reply.Content = "Sorry, something went wrong: empty response from server"
		reply.Metadata.Error = true
	case !m.Resp.Success:
		reason := m.Resp.Error
		if reason == "" {
			reason = "Unknown error"
		}
		reply.Content = "Sorry, I encountered an error: " + reason
		reply.Metadata.Error = true
		reply.Metadata.Plan = m.Resp.Plan
		reply.Metadata.Code = m.Resp.Code
	default:
		viz := string(m.Resp.Visualization)
		reply.Content = m.Resp.Message
		reply.Metadata.HasVisualization = viz != ""
		reply.Metadata.Visualization = viz
		reply.Metadata.Plan = m.Resp.Plan
		reply.Metadata.Result = m.Resp.Result
		reply.Metadata.Code = m.Resp.Code
	}
	s.transcript.Append(reply)
	return Notice{}
}

func (s *Session) handleClear(m ClearDoneMsg) Notice {
	if s.stale("clear", m.Gen) {
		return Notice{}
	}
	s.clearInFlight = false
	s.state = NoDataset
	s.dataset = nil
	s.transcript.ResetAll()
	s.chatInFlight = false
	s.uploadInFlight = false

	switch {
	case m.Err != nil:
		return Notice{Kind: NoticeError, Text: "Error clearing session: " + api.ErrorMessage(m.Err)}
	case m.Resp != nil && !m.Resp.Success:
		reason := m.Resp.Error
		if reason == "" {
			reason = "Unknown error"
		}
		return Notice{Kind: NoticeError, Text: "Error clearing session: " + reason}
	}
	return Notice{Kind: NoticeInfo, Text: "Session cleared"}
}

func (s *Session) handleResume(m ResumeMsg) Notice {
	if m.Err != nil {
		utils.LogDebug(fmt.Sprintf("session: resume skipped: %v", m.Err))
	}
	if m.Info == nil || s.stale("resume", m.Gen) || s.state != NoDataset || s.uploadInFlight || s.clearInFlight {
		return Notice{}
	}
	s.state = DatasetLoaded
	s.dataset = m.Info
	s.transcript.ResetAll()
	for _, e := range m.History {
		s.transcript.Append(fromHistory(e))
	}
	return Notice{Kind: NoticeInfo, Text: fmt.Sprintf("Resumed session with %s (%d messages)", m.Info.Filename, len(m.History))}
}
