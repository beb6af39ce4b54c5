package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	debugOnce   sync.Once
	debugFile   *os.File
	debugLogger *log.Logger
	enableDebug bool

	// Order matters: specific patterns must run before the generic ones.
	sensitivePatterns = []struct {
		pattern     *regexp.Regexp
		replacement string
	}{
		{regexp.MustCompile(`\beyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`), "[REDACTED-JWT]"},
		// Gemini/Google API keys are what the analysis backend is usually configured with
		{regexp.MustCompile(`\bAIza[0-9A-Za-z\-_]{30,}`), "[REDACTED-KEY]"},
		{regexp.MustCompile(`\b(sk|pk|sess)-[a-zA-Z0-9\-_]{20,}`), "[REDACTED-KEY]"},
		{regexp.MustCompile(`(?i)(authorization[=:\s]+['"]?)(Basic|Bearer|Digest)\s+[a-zA-Z0-9\-_\.=]+`), "${1}${2} [REDACTED]"},
		{regexp.MustCompile(`(?i)(bearer\s+)[a-zA-Z0-9\-_\.]+`), "${1}[REDACTED]"},
		{regexp.MustCompile(`(?i)(api[_-]?key[=:\s]+['"]?)[a-zA-Z0-9\-_]{16,}`), "${1}[REDACTED]"},
		{regexp.MustCompile(`(?i)(password[=:\s]+['"]?)[^\s&'"]+`), "${1}[REDACTED]"},
		{regexp.MustCompile(`(?i)(token[=:\s]+['"]?)[a-zA-Z0-9\-_\.]{16,}`), "${1}[REDACTED]"},
		{regexp.MustCompile(`(?i)(cookie[=:\s]+['"]?)[^;\n]+`), "${1}[REDACTED]"},
	}
)

// InitDebugLogger initializes a shared file-backed logger and Bubble Tea logging.
// If path is empty, it defaults to "dataroom-debug.log" in the effective working
// directory. Safe to call multiple times.
func InitDebugLogger(path string, debug bool) error {
	enableDebug = debug
	var initErr error
	debugOnce.Do(func() {
		if path == "" {
			path = filepath.Join(GetEffectiveCWD(), "dataroom-debug.log")
		}

		if debug {
			absPath, err := filepath.Abs(path)
			if err != nil {
				absPath = path
			}
			fmt.Printf("[DEBUG] Logging to: %s\n", absPath)
		}

		f, err := tea.LogToFile(path, "debug")
		if err != nil {
			initErr = err
			return
		}
		debugFile = f
		debugLogger = log.New(io.MultiWriter(f), "", log.LstdFlags)
	})
	return initErr
}

// CloseDebugLogger closes the underlying debug log file if it was opened.
func CloseDebugLogger() {
	if debugFile != nil {
		_ = debugFile.Sync()
		_ = debugFile.Close()
	}
}

// ResetDebugLoggerForTesting resets the debug logger state so tests can
// reinitialize it with a different path. Only call this from tests.
func ResetDebugLoggerForTesting() {
	CloseDebugLogger()
	debugOnce = sync.Once{}
	debugFile = nil
	debugLogger = nil
}

func sanitizeLogMessage(msg string) string {
	sanitized := msg
	for _, sp := range sensitivePatterns {
		sanitized = sp.pattern.ReplaceAllString(sanitized, sp.replacement)
	}
	return sanitized
}

// DebugEnabled reports whether --debug (or DATAROOM_DEBUG) is active.
func DebugEnabled() bool {
	return enableDebug
}

// LogDebug writes a sanitized message to the debug log file. Nothing is
// written unless the logger was initialized with debug enabled.
func LogDebug(msg string) {
	if !enableDebug {
		return
	}
	if debugLogger == nil {
		if err := InitDebugLogger("", enableDebug); err != nil {
			fmt.Fprintf(os.Stderr, "failed to initialize debug logger: %v\n", err)
			return
		}
	}
	if debugLogger != nil {
		debugLogger.Println(sanitizeLogMessage(msg))
	}
}
