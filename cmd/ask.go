package cmd

import (
	"errors"
	"fmt"
	"strings"

	"dataroom-cli/cmd/api"
	"dataroom-cli/cmd/render"
	"dataroom-cli/cmd/utils"

	"github.com/spf13/cobra"
)

var (
	askShowPlan  bool
	askChartHTML string
)

var askCmd = &cobra.Command{
	Use:   "ask \"question\"",
	Short: "Ask one question about the loaded dataset",
	Long: `Ask a single question about the dataset the backend holds and print the
answer, any result table and a terminal rendering of the chart.

Examples:
  dataroom ask "What is the average profit by region?"

  # Show the planner's execution plan as well
  dataroom ask --plan "Which products have negative profit?"

  # Save the chart as an interactive HTML page
  dataroom ask --chart-html sales.html "Create a bar chart of sales by category"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.TrimSpace(strings.Join(args, " "))
		if question == "" {
			return errors.New("question must not be empty")
		}

		resp, err := newAPIClient().SendMessage(cmd.Context(), question)
		if err != nil {
			return fmt.Errorf("sorry, something went wrong: %s", api.ErrorMessage(err))
		}

		fmt.Fprintln(cmd.OutOrStdout(), formatAnswer(resp, askShowPlan, outputWidth()))
		if !resp.Success {
			return errors.New("the backend could not answer the question")
		}

		if askChartHTML != "" {
			if resp.Visualization == "" {
				OutputWarning("The answer has no chart, %s was not written", askChartHTML)
				return nil
			}
			path := utils.ResolvePath(askChartHTML)
			if err := render.WriteChartHTML(string(resp.Visualization), path); err != nil {
				return err
			}
			OutputSuccess("Chart written to %s", path)
		}
		return nil
	},
}

func init() {
	askCmd.Flags().BoolVar(&askShowPlan, "plan", false, "Show the execution plan")
	askCmd.Flags().StringVar(&askChartHTML, "chart-html", "", "Write the chart to this HTML file")
	rootCmd.AddCommand(askCmd)
}

// formatAnswer lays out a chat response the way the conversation view does,
// without the transcript chrome.
func formatAnswer(resp *api.ChatResponse, showPlan bool, width int) string {
	var parts []string
	if !resp.Success {
		reason := resp.Error
		if reason == "" {
			reason = "Unknown error"
		}
		parts = append(parts, "Sorry, I encountered an error: "+reason)
		if showPlan && resp.Plan != nil {
			parts = append(parts, render.PlanDetails(resp.Plan))
		}
		if showPlan && resp.Code != "" {
			parts = append(parts, "Generated code:\n"+resp.Code)
		}
		return strings.Join(parts, "\n\n")
	}

	if showPlan && resp.Plan != nil {
		parts = append(parts, render.Plan(resp.Plan, false, width), render.PlanDetails(resp.Plan))
	}
	if md := render.Markdown(resp.Message, width); md != "" {
		parts = append(parts, md)
	}
	if resp.Result != nil {
		parts = append(parts, render.Result(resp.Result, width))
	}
	if resp.Visualization != "" {
		parts = append(parts, render.Chart(string(resp.Visualization), width))
	}
	return strings.Join(parts, "\n\n")
}
