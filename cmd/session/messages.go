package session

import (
	"time"

	"dataroom-cli/cmd/api"
)

// Completion messages carry the generation they were issued under. The
// session drops any whose generation is no longer current.

type UploadDoneMsg struct {
	Gen  uint64
	Path string
	Resp *api.UploadResponse
	Err  error
}

type ChatDoneMsg struct {
	Gen     uint64
	Resp    *api.ChatResponse
	Err     error
	Elapsed time.Duration
}

type ClearDoneMsg struct {
	Gen  uint64
	Resp *api.ClearResponse
	Err  error
}

// ResumeMsg reports what the backend already holds at start-up.
type ResumeMsg struct {
	Gen     uint64
	Info    *api.DataInfo
	History []api.HistoryEntry
	Err     error
}

type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeInfo
	NoticeSuccess
	NoticeError
)

// Notice is user-facing feedback produced by a state transition.
type Notice struct {
	Kind NoticeKind
	Text string
}

func (n Notice) IsZero() bool { return n.Kind == NoticeNone }
