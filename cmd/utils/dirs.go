package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDataRoomDir returns the directory holding user-level client state
// (global config, exported charts). DATAROOM_HOME overrides the default.
func GetDataRoomDir() (string, error) {
	if dir := os.Getenv("DATAROOM_HOME"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("GetDataRoomDir: could not determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".dataroom"), nil
}

// GetChartsDir returns (and creates) the directory charts are exported to.
func GetChartsDir() (string, error) {
	base, err := GetDataRoomDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, "charts")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create charts directory: %w", err)
	}
	return dir, nil
}
