package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var chatInputFile string

// chatCmd represents the `dataroom chat` command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive data room",
	Long: `Open the interactive data room. Pick a CSV or Excel file, then ask
questions about it. If the backend already holds a dataset from an earlier
session, the conversation is resumed.

Examples:
  # Pick a file in the upload view
  dataroom chat

  # Upload a file straight away
  dataroom chat --file ./sales.xlsx`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runRoomTUI(newAPIClient(), chatInputFile); err != nil {
			return fmt.Errorf("error running TUI: %w", err)
		}
		return nil
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatInputFile, "file", "f", "", "CSV or Excel file to upload on start")
	rootCmd.AddCommand(chatCmd)
}
