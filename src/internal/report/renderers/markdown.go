package renderers

import (
	"fmt"
	"strings"
)

type MarkdownRenderer struct{}

func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// RenderFinding renders one checker message. Multi-line messages keep their
// continuation lines indented under the bullet.
func (r *MarkdownRenderer) RenderFinding(message string) string {
	lines := strings.Split(message, "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = "  " + strings.TrimSpace(lines[i])
	}
	return "- " + strings.Join(lines, "\n") + "\n"
}

func (r *MarkdownRenderer) RenderFileResult(path, verdict string, errs, warnings, suggestions []string) string {
	var result strings.Builder

	result.WriteString(fmt.Sprintf("## %s `%s`\n\n", getVerdictIcon(len(errs) == 0), path))
	result.WriteString(fmt.Sprintf("**Verdict**: %s\n\n", verdict))

	r.renderSection(&result, "Errors", errs)
	r.renderSection(&result, "Warnings", warnings)
	r.renderSection(&result, "Suggestions", suggestions)

	return result.String()
}

func (r *MarkdownRenderer) renderSection(sb *strings.Builder, title string, messages []string) {
	if len(messages) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("### %s (%d)\n\n", title, len(messages)))
	for _, msg := range messages {
		sb.WriteString(r.RenderFinding(msg))
	}
	sb.WriteString("\n")
}

func getVerdictIcon(passed bool) string {
	if passed {
		return "✅"
	}
	return "❌"
}
