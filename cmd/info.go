package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"dataroom-cli/cmd/api"
	"dataroom-cli/cmd/render"
	"dataroom-cli/cmd/utils"

	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v2"
)

var historyOutput string

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the dataset the backend holds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newAPIClient().DataInfo(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get dataset info: %s", api.ErrorMessage(err))
		}
		if !resp.Success || resp.DataInfo == nil {
			OutputInfo("No dataset loaded. Upload one with 'dataroom upload FILE'.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), render.DataInfo(resp.DataInfo, outputWidth()))
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the conversation history",
	Long: `Print the conversation the backend keeps for the current dataset.

Examples:
  dataroom history
  dataroom history -o json > conversation.json
  dataroom history -o yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(historyOutput)
		switch format {
		case "text", "json", "yaml":
		default:
			return fmt.Errorf("unsupported output format %q (use text, json or yaml)", historyOutput)
		}
		resp, err := newAPIClient().History(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get history: %s", api.ErrorMessage(err))
		}
		if !resp.Success {
			return fmt.Errorf("failed to get history: %s", resp.Error)
		}
		return writeHistory(cmd.OutOrStdout(), resp.History, format)
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the backend is reachable and configured",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()
		resp, err := client.Health(cmd.Context())
		w := cmd.OutOrStdout()
		if err != nil {
			fmt.Fprintf(w, "%s %s: unreachable\n", utils.IconForStatus("unreachable"), client.BaseURL())
			if utils.IsLocalhost(client.BaseURL()) {
				OutputInfo("Is the backend running? Start it with 'python app.py' and retry.")
			}
			return fmt.Errorf("health check failed: %s", api.ErrorMessage(err))
		}
		fmt.Fprintf(w, "%s %s: %s\n", utils.IconForStatus(resp.Status), client.BaseURL(), resp.Status)
		if !resp.APIKeyConfigured {
			OutputWarning("The backend has no API key configured, questions will fail")
		}
		if !resp.Healthy() {
			return fmt.Errorf("backend status is %q", resp.Status)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVarP(&historyOutput, "output", "o", "text", "Output format: text, json or yaml")
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(healthCmd)
}

func writeHistory(w io.Writer, history []api.HistoryEntry, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(history, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode history: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		data, err := yaml.Marshal(history)
		if err != nil {
			return fmt.Errorf("failed to encode history: %w", err)
		}
		_, err = w.Write(data)
		return err
	}

	if len(history) == 0 {
		_, err := fmt.Fprintln(w, "No messages yet.")
		return err
	}
	for i, e := range history {
		label := userPrompt
		if e.Role != "user" {
			label = assistantPrompt
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s %s\n", label, e.Content)
		var flags []string
		if e.Metadata.Plan != nil {
			flags = append(flags, fmt.Sprintf("plan: %d steps", len(e.Metadata.Plan.Steps)))
		}
		if e.Metadata.HasVisualization {
			flags = append(flags, "chart")
		}
		if e.Metadata.Error {
			flags = append(flags, "error")
		}
		if len(flags) > 0 {
			fmt.Fprintf(w, "   (%s)\n", strings.Join(flags, ", "))
		}
	}
	return nil
}
