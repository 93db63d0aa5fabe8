// Package output renders command results as a table, JSON or Markdown.
package output

import (
	"fmt"
	"strings"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Report is tabular command output. Data is what the JSON format encodes;
// the other formats render Header, Rows and Footer.
type Report struct {
	Title  string
	Header []string
	Rows   [][]string
	Footer []string
	Data   any
}

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMarkdown), "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// Render renders report in format.
func Render(format Format, report Report) (string, error) {
	switch format {
	case FormatJSON:
		return renderJSON(report.Data, true)
	case FormatMarkdown:
		return renderMarkdown(report), nil
	default:
		return renderTable(report), nil
	}
}
