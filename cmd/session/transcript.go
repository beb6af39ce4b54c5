package session

import (
	"time"

	"dataroom-cli/cmd/api"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Metadata is attached to assistant records. User records carry none.
type Metadata struct {
	HasVisualization bool
	Plan             *api.ExecutionPlan
	Error            bool
	Visualization    string
	Result           *api.Result
	Code             string
	Elapsed          time.Duration
}

// Message is one transcript record. Records are never modified after they
// are appended.
type Message struct {
	Role     Role
	Content  string
	Metadata *Metadata
	Time     time.Time
}

// Transcript is the ordered conversation for the current dataset.
type Transcript struct {
	msgs []Message
}

func (t *Transcript) Append(m Message) {
	t.msgs = append(t.msgs, m)
}

// ResetAll drops every record. The backing array is released so snapshots
// handed out earlier stay untouched.
func (t *Transcript) ResetAll() {
	t.msgs = nil
}

// Messages returns a copy of the records in append order.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.msgs))
	copy(out, t.msgs)
	return out
}

// fromHistory converts a stored backend turn into a transcript record.
func fromHistory(e api.HistoryEntry) Message {
	m := Message{Role: Role(e.Role), Content: e.Content}
	if m.Role != RoleUser {
		m.Role = RoleAssistant
		m.Metadata = &Metadata{
			HasVisualization: e.Metadata.HasVisualization,
			Plan:             e.Metadata.Plan,
			Error:            e.Metadata.Error,
		}
	}
	return m
}
