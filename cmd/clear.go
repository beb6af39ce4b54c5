package cmd

import (
	"errors"
	"fmt"

	"dataroom-cli/cmd/api"

	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the uploaded dataset and chat history",
	Long: `Clear the session on the backend: the uploaded dataset and the whole
conversation are removed. You are asked to confirm unless --yes is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes {
			if !stdinIsTerminal() {
				return errors.New("refusing to clear without confirmation, pass --yes")
			}
			if !promptYesNo(cmd.InOrStdin(), cmd.OutOrStdout(), "Clear session? This removes the uploaded file and chat history.") {
				OutputInfo("Nothing cleared")
				return nil
			}
		}

		resp, err := newAPIClient().ClearSession(cmd.Context())
		if err != nil {
			return fmt.Errorf("error clearing session: %s", api.ErrorMessage(err))
		}
		if !resp.Success {
			reason := resp.Error
			if reason == "" {
				reason = "Unknown error"
			}
			return fmt.Errorf("error clearing session: %s", reason)
		}
		OutputSuccess("Session cleared")
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(clearCmd)
}
