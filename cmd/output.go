package cmd

import (
	"fmt"
	"io"
	"os"
	"sync"

	"dataroom-cli/cmd/utils"

	tea "github.com/charmbracelet/bubbletea"
)

// MessageType represents the type of output message
type MessageType int

const (
	InfoMessage MessageType = iota
	WarningMessage
	ErrorMessage
	SuccessMessage
	DebugMessage
)

// OutputMessage represents a message to be displayed
type OutputMessage struct {
	Type    MessageType
	Content string
	Writer  io.Writer // fallback writer when not in TUI mode
	NoEmoji bool
}

// TUIMessageMsg is a Bubble Tea message for routing output to the TUI
type TUIMessageMsg struct {
	Message OutputMessage
}

// OutputManager manages all CLI output routing
type OutputManager struct {
	mu            sync.RWMutex
	tuiProgram    *tea.Program
	inTUIMode     bool
	messageQueue  []OutputMessage
	disableEmojis bool
	stdout        io.Writer
	stderr        io.Writer
}

var outputManager = &OutputManager{stdout: os.Stdout, stderr: os.Stderr}

// SetTUIMode configures the output manager for TUI mode. Messages queued
// before the program existed are flushed into it.
func SetTUIMode(program *tea.Program) {
	outputManager.mu.Lock()
	defer outputManager.mu.Unlock()
	outputManager.tuiProgram = program
	outputManager.inTUIMode = true

	for _, msg := range outputManager.messageQueue {
		if program != nil {
			program.Send(TUIMessageMsg{Message: msg})
		}
	}
	outputManager.messageQueue = nil
}

// ClearTUIMode disables TUI mode
func ClearTUIMode() {
	outputManager.mu.Lock()
	defer outputManager.mu.Unlock()
	outputManager.tuiProgram = nil
	outputManager.inTUIMode = false
	outputManager.messageQueue = nil
}

// SetEmojiEnabled controls whether emojis are added to output messages globally
func SetEmojiEnabled(enabled bool) {
	outputManager.mu.Lock()
	defer outputManager.mu.Unlock()
	outputManager.disableEmojis = !enabled
}

// setOutputWriters redirects direct-mode output; used by tests.
func setOutputWriters(stdout, stderr io.Writer) {
	outputManager.mu.Lock()
	defer outputManager.mu.Unlock()
	outputManager.stdout = stdout
	outputManager.stderr = stderr
}

func sendMessage(msgType MessageType, format string, args ...interface{}) {
	content := fmt.Sprintf(format, args...)

	outputManager.mu.RLock()
	msg := OutputMessage{
		Type:    msgType,
		Content: content,
		Writer:  outputManager.writerFor(msgType),
		NoEmoji: outputManager.disableEmojis,
	}
	inTUI := outputManager.inTUIMode
	program := outputManager.tuiProgram
	outputManager.mu.RUnlock()

	utils.LogDebug(fmt.Sprintf("output[%d]: %s", msgType, content))

	switch {
	case inTUI && program != nil:
		program.Send(TUIMessageMsg{Message: msg})
	case inTUI:
		outputManager.mu.Lock()
		outputManager.messageQueue = append(outputManager.messageQueue, msg)
		outputManager.mu.Unlock()
	default:
		fmt.Fprintln(msg.Writer, FormatMessage(msg))
	}
}

func (o *OutputManager) writerFor(msgType MessageType) io.Writer {
	switch msgType {
	case ErrorMessage, WarningMessage, DebugMessage:
		return o.stderr
	default:
		return o.stdout
	}
}

// OutputInfo sends an informational message
func OutputInfo(format string, args ...interface{}) {
	sendMessage(InfoMessage, format, args...)
}

// OutputWarning sends a warning message
func OutputWarning(format string, args ...interface{}) {
	sendMessage(WarningMessage, format, args...)
}

// OutputError sends an error message
func OutputError(format string, args ...interface{}) {
	sendMessage(ErrorMessage, format, args...)
}

// OutputSuccess sends a success message
func OutputSuccess(format string, args ...interface{}) {
	sendMessage(SuccessMessage, format, args...)
}

// OutputDebug sends a debug message (respects the global debug flag)
func OutputDebug(format string, args ...interface{}) {
	if !debug {
		return
	}
	sendMessage(DebugMessage, format, args...)
}

// FormatMessage prefixes the content with the marker for its type.
func FormatMessage(msg OutputMessage) string {
	if msg.NoEmoji {
		return msg.Content
	}

	var prefix string
	switch msg.Type {
	case InfoMessage:
		prefix = "ℹ️"
	case WarningMessage:
		prefix = "⚠️"
	case ErrorMessage:
		prefix = "❌"
	case SuccessMessage:
		prefix = "✅"
	case DebugMessage:
		prefix = "🐛"
	}
	return fmt.Sprintf("%s  %s", prefix, msg.Content)
}
