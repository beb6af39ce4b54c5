package render

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Markdown renders an answer's text for the terminal. Rendering failures
// fall back to the raw text.
func Markdown(text string, width int) string {
	return markdown(text, width, glamour.WithAutoStyle())
}

// MarkdownStyled renders with a named glamour style ("dark", "light",
// "notty"). The auto style probes the terminal, which must not happen while
// the interactive view owns it.
func MarkdownStyled(text string, width int, style string) string {
	return markdown(text, width, glamour.WithStandardStyle(style))
}

func markdown(text string, width int, style glamour.TermRendererOption) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		style,
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}
