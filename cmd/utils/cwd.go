package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// OverrideCwd is set from the global --cwd flag.
var OverrideCwd string

// GetEffectiveCWD returns the directory to treat as the working directory:
// the absolute form of --cwd when given, otherwise os.Getwd().
func GetEffectiveCWD() string {
	if dir := strings.TrimSpace(OverrideCwd); dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "."
		}
		return abs
	}

	wd, _ := os.Getwd()
	if wd == "" {
		return "."
	}
	return wd
}

// ResolvePath makes p absolute relative to the effective working directory.
func ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(GetEffectiveCWD(), p)
}
