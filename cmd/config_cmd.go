package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"dataroom-cli/cmd/config"
	"dataroom-cli/cmd/utils"

	"github.com/spf13/cobra"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the client configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings and where they came from",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		source := settings.ConfigFile
		if source == "" {
			source = "(none, using defaults and environment)"
		}
		fmt.Fprintf(w, "config file:  %s\n", source)
		fmt.Fprintf(w, "server url:   %s\n", settings.ServerURL)
		fmt.Fprintf(w, "debug:        %t\n", settings.Debug)
		if settings.LogFile != "" {
			fmt.Fprintf(w, "log file:     %s\n", settings.LogFile)
		}
		fmt.Fprintf(w, "show plans:   %t\n", settings.ShowPlans)
		fmt.Fprintf(w, "emoji:        %t\n", settings.Emoji)
		if dir, err := resolveChartsDir(settings.ChartsDir); err == nil {
			fmt.Fprintf(w, "charts dir:   %s\n", dir)
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a dataroom.yaml with the current settings",
	Long: `Write a dataroom.yaml into the working directory, seeded with the
settings currently in effect (flags, environment and any existing file).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := filepath.Join(utils.GetEffectiveCWD(), "dataroom.yaml")
		if _, err := os.Stat(path); err == nil && !configInitForce {
			return fmt.Errorf("%s already exists, pass --force to overwrite it", path)
		}
		if err := config.SaveConfig(config.FromSettings(settings), path); err != nil {
			return err
		}
		OutputSuccess("Wrote %s", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing dataroom.yaml")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

// resolveChartsDir is where /open writes chart pages: ui.charts_dir when
// set, otherwise ~/.dataroom/charts.
func resolveChartsDir(dir string) (string, error) {
	if dir != "" {
		return utils.ResolvePath(dir), nil
	}
	return utils.GetChartsDir()
}
