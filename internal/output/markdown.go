package output

import (
	"fmt"
	"strings"
)

// renderMarkdown writes a heading for the title followed by a pipe table.
func renderMarkdown(report Report) string {
	var sb strings.Builder
	if report.Title != "" {
		sb.WriteString(fmt.Sprintf("## %s\n\n", report.Title))
	}
	if len(report.Header) > 0 {
		sb.WriteString(markdownRow(report.Header))
		sep := make([]string, len(report.Header))
		for i := range sep {
			sep[i] = "---"
		}
		sb.WriteString(markdownRow(sep))
	}
	for _, r := range report.Rows {
		sb.WriteString(markdownRow(r))
	}
	if summary := strings.TrimSpace(strings.Join(report.Footer, " ")); summary != "" {
		sb.WriteString(fmt.Sprintf("\n**Summary**: %s\n", summary))
	}
	return sb.String()
}

func markdownRow(cells []string) string {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = escapeMarkdownCell(c)
	}
	return "| " + strings.Join(escaped, " | ") + " |\n"
}

func escapeMarkdownCell(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	return strings.ReplaceAll(value, "|", "\\|")
}
