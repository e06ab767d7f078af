package report

import (
	"fmt"
	"strings"

	"github.com/VectorBits/clearsign/src/internal/report/renderers"
)

type Generator interface {
	Generate(report *Report) (string, error)
}

type MarkdownGenerator struct {
	renderer *renderers.MarkdownRenderer
}

func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{renderer: renderers.NewMarkdownRenderer()}
}

// Generate renders the run summary followed by one section per file.
// Suggestions are included only for strict runs.
func (g *MarkdownGenerator) Generate(report *Report) (string, error) {
	var sb strings.Builder

	sb.WriteString("# Clearsign Check Report\n\n")
	sb.WriteString(fmt.Sprintf("**Check Time**: %s\n", report.CheckTime.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("**Strict Mode**: %t\n\n", report.Strict))

	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Total Files**: %d\n", report.TotalFiles))
	sb.WriteString(fmt.Sprintf("- **Passed**: %d\n", report.TotalFiles-report.FailedFiles))
	sb.WriteString(fmt.Sprintf("- **Failed**: %d\n\n", report.FailedFiles))

	for i, res := range report.Results {
		var suggestions []string
		if report.Strict {
			suggestions = res.Suggestions
		}
		sb.WriteString(g.renderer.RenderFileResult(res.Path, res.Verdict, res.Errors, res.Warnings, suggestions))
		if i < len(report.Results)-1 {
			sb.WriteString("---\n\n")
		}
	}
	return sb.String(), nil
}
