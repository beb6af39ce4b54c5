package cmd

import (
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"
)

// Version will be set by build flags during release builds
var Version = "dev"

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of the Data Room CLI",
	Long:  "Print the version number of the Data Room CLI",
	Run: func(cmd *cobra.Command, args []string) {
		display := formatVersionForDisplay(Version)
		if _, ok := parseVersion(Version); !ok {
			display += " (development build)"
		}
		OutputInfo("Data Room CLI %s (%s, %s/%s)", display, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// parseVersion strips a leading v/V and parses the rest as semver.
func parseVersion(raw string) (*semver.Version, bool) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(raw), "v"), "V")
	if trimmed == "" {
		return nil, false
	}
	v, err := semver.NewVersion(trimmed)
	if err != nil {
		return nil, false
	}
	return v, true
}

// formatVersionForDisplay normalizes a version string for consistent display.
// Examples: "v1.0.0" -> "v1.0.0", "1.0" -> "v1.0.0", "" -> "unknown"
func formatVersionForDisplay(version string) string {
	if strings.TrimSpace(version) == "" {
		return "unknown"
	}
	if v, ok := parseVersion(version); ok {
		return "v" + v.String()
	}
	return strings.TrimSpace(version)
}
