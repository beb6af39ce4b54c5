package render

import (
	"fmt"
	"strings"

	"dataroom-cli/cmd/api"

	"github.com/charmbracelet/lipgloss"
)

const (
	plannerName  = "Planner Agent"
	executorName = "Executor Agent"
)

// PlannerStatus is the planner stage line of the agent flow.
func PlannerStatus(loading bool) string {
	if loading {
		return "Analyzing question & creating execution plan..."
	}
	return "Plan created"
}

// ExecutorStatus is the executor stage line of the agent flow.
func ExecutorStatus(plan *api.ExecutionPlan, loading bool) string {
	switch {
	case plan == nil:
		return "Waiting for plan..."
	case loading:
		return "Executing plan & generating code..."
	default:
		return "Execution complete"
	}
}

// Plan renders the two-stage planner/executor flow. It returns "" when there
// is neither a plan nor a request in flight.
func Plan(plan *api.ExecutionPlan, loading bool, width int) string {
	if plan == nil && !loading {
		return ""
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("🤝 Multi-Agent Collaboration"))
	b.WriteString("\n")

	plannerMark, executorMark := doneStyle.Render("✓"), dimStyle.Render("·")
	if loading {
		plannerMark = activeStyle.Render("●")
	}
	if plan != nil {
		executorMark = doneStyle.Render("✓")
		if loading {
			executorMark = activeStyle.Render("●")
		}
	}

	b.WriteString(fmt.Sprintf("%s 🧠 %s  %s\n", plannerMark, plannerName, dimStyle.Render(PlannerStatus(loading))))
	if plan != nil {
		b.WriteString("    " + labelStyle.Render("Analysis:") + " " + plan.QuestionAnalysis + "\n")
		if plan.RequiresVisualization {
			b.WriteString("    " + labelStyle.Render("Visualization:") + " " + plan.VisualizationType + "\n")
		}
		b.WriteString("    " + labelStyle.Render("Steps:") + " " + fmt.Sprintf("%d steps planned", len(plan.Steps)) + "\n")
		b.WriteString("    " + dimStyle.Render("📋 Plan & Instructions →") + "\n")
	}

	b.WriteString(fmt.Sprintf("%s ⚡ %s  %s", executorMark, executorName, dimStyle.Render(ExecutorStatus(plan, loading))))
	if plan != nil && !loading {
		b.WriteString("\n    " + labelStyle.Render("Status:") + " " + doneStyle.Render("✓ Executed successfully"))
		b.WriteString("\n    " + labelStyle.Render("Operations:") + " " + strings.Join(plan.DataOperations, ", "))
	}

	out := b.String()
	if width > 0 {
		out = lipgloss.NewStyle().Width(width).Render(out)
	}
	return out
}

// PlanSummary is the collapsed one-line form shown under an answer.
func PlanSummary(plan *api.ExecutionPlan) string {
	if plan == nil {
		return ""
	}
	return dimStyle.Render(fmt.Sprintf("🧠 Execution plan: %d steps (ctrl+p to expand)", len(plan.Steps)))
}

// PlanDetails renders the expanded plan: analysis, numbered steps and the
// reasoning when present.
func PlanDetails(plan *api.ExecutionPlan) string {
	if plan == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("🧠 Execution Plan"))
	b.WriteString("\n" + labelStyle.Render("Analysis:") + " " + plan.QuestionAnalysis)
	b.WriteString("\n" + labelStyle.Render("Steps:"))
	for i, step := range plan.Steps {
		b.WriteString(fmt.Sprintf("\n  %d. %s", i+1, step))
	}
	if plan.Reasoning != "" {
		b.WriteString("\n" + labelStyle.Render("Reasoning:") + " " + plan.Reasoning)
	}
	return b.String()
}
