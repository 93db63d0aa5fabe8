package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("table")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	format, err = ParseFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, format)

	format, err = ParseFormat("md")
	require.NoError(t, err)
	require.Equal(t, FormatMarkdown, format)

	format, err = ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	_, err = ParseFormat("csv")
	require.Error(t, err)
}

func sampleReport() Report {
	type row struct {
		Check  string `json:"check"`
		Status string `json:"status"`
	}
	return Report{
		Title:  "lightspeed doctor",
		Header: []string{"Check", "Status", "Detail"},
		Rows: [][]string{
			{"chat credential", "fail", "ANTHROPIC_API_KEY is not set"},
			{"site url", "ok", "https://lightspeed.tech | main"},
		},
		Footer: []string{"", "1/2 ok", ""},
		Data:   []row{{Check: "chat credential", Status: "fail"}},
	}
}

func TestRenderTable(t *testing.T) {
	rendered, err := Render(FormatTable, sampleReport())
	require.NoError(t, err)
	// go-pretty upper-cases header and footer cells.
	lower := strings.ToLower(rendered)
	require.Contains(t, lower, "lightspeed doctor")
	require.Contains(t, lower, "chat credential")
	require.Contains(t, lower, "1/2 ok")
}

func TestRenderJSONEncodesData(t *testing.T) {
	rendered, err := Render(FormatJSON, sampleReport())
	require.NoError(t, err)

	var decoded []map[string]string
	require.NoError(t, json.Unmarshal([]byte(rendered), &decoded))
	require.Len(t, decoded, 1)
	require.Equal(t, "fail", decoded[0]["status"])
	require.NotContains(t, rendered, "Detail", "JSON ignores the table layout")
}

func TestRenderMarkdownEscapesCells(t *testing.T) {
	rendered, err := Render(FormatMarkdown, sampleReport())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(rendered, "## lightspeed doctor\n"))
	require.Contains(t, rendered, "| Check | Status | Detail |\n| --- | --- | --- |\n")
	require.Contains(t, rendered, `https://lightspeed.tech \| main`)
	require.Contains(t, rendered, "**Summary**: 1/2 ok")
}
