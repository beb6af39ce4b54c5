package cmd

import (
	"fmt"
	"os"

	"dataroom-cli/cmd/api"
	"dataroom-cli/cmd/config"
	"dataroom-cli/cmd/utils"

	"github.com/spf13/cobra"
)

var (
	debug       bool
	serverURL   string
	overrideCwd string
	configFile  string
	logFile     string
)

// settings is resolved once per invocation in PersistentPreRunE.
var settings = defaultSettings()

var rootCmd = &cobra.Command{
	Use:   "dataroom",
	Short: "Data Room CLI - ask questions about your spreadsheets",
	Long: `Data Room CLI is a terminal client for the Data Room analysis backend.
Upload a CSV or Excel file, then ask questions about it in plain language.
A planner agent turns each question into an execution plan and an executor
agent answers it with tables, numbers and charts.

Getting started:
  # Open the interactive data room
  dataroom chat

  # Upload a file and start chatting right away
  dataroom chat --file sales.csv

  # Ask a single question about the loaded dataset
  dataroom ask "What is the average profit by region?"`,

	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Welcome to the Data Room!")
		cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		utils.OverrideCwd = overrideCwd
		s, err := config.Resolve(config.Overrides{
			ConfigFile: configFile,
			ServerURL:  serverURL,
			Debug:      debug,
			LogFile:    logFile,
		})
		if err != nil {
			return err
		}
		settings = s
		debug = s.Debug
		if s.Debug || s.LogFile != "" {
			if err := utils.InitDebugLogger(s.LogFile, s.Debug); err != nil {
				OutputWarning("Could not open debug log: %v", err)
			}
		}
		SetEmojiEnabled(s.Emoji)
		if s.ConfigFile != "" {
			OutputDebug("Using config file %s", s.ConfigFile)
		}
		utils.LogDebug(fmt.Sprintf("server url: %s", s.ServerURL))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		utils.CloseDebugLogger()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server-url", "", "Data Room backend URL (default: http://localhost:5000)")
	rootCmd.PersistentFlags().StringVar(&overrideCwd, "cwd", "", "Override the current working directory for CLI operations")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a dataroom.yaml|toml|json config file")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write the debug log to this file (default: ./dataroom-debug.log)")
}

func defaultSettings() *config.Settings {
	return &config.Settings{
		ServerURL:     config.DefaultServerURL,
		SamplePrompts: config.DefaultSamplePrompts,
		Emoji:         true,
	}
}

// newAPIClient builds a client for the resolved server URL.
func newAPIClient() *api.Client {
	return api.NewClient(settings.ServerURL, utils.GetHTTPClient())
}
