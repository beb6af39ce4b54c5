package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxUploadSize is the largest spreadsheet the client will send.
const MaxUploadSize = 10 * 1024 * 1024

const (
	MsgUnsupportedType = "Please upload a CSV or Excel file"
	MsgFileTooLarge    = "File size must be less than 10MB"
)

var allowedExtensions = map[string]bool{
	".csv":  true,
	".xls":  true,
	".xlsx": true,
}

var allowedMIMETypes = []string{
	"text/csv",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// AllowedExtensions lists the extensions offered by file pickers.
func AllowedExtensions() []string {
	return []string{".csv", ".xls", ".xlsx"}
}

// ValidationError is a client-side rejection of an upload. Nothing was sent.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ValidateUpload checks the file type (extension or sniffed content) and
// the size cap. The backend re-validates; this only saves a round trip.
func ValidateUpload(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	if info.IsDir() || !allowedType(path) {
		return &ValidationError{Path: path, Reason: MsgUnsupportedType}
	}
	if info.Size() > MaxUploadSize {
		return &ValidationError{Path: path, Reason: MsgFileTooLarge}
	}
	return nil
}

func allowedType(path string) bool {
	if allowedExtensions[strings.ToLower(filepath.Ext(path))] {
		return true
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return false
	}
	for _, m := range allowedMIMETypes {
		if mt.Is(m) {
			return true
		}
	}
	return false
}
