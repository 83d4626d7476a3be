package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleData() Data {
	return Data{
		Headers: []string{"Export Name", "Event Kind"},
		Rows: [][]string{
			{"ProgramSelection", "SelectionEvent"},
			{"TOOL_RENAMED", "RenameEvent"},
		},
	}
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, sampleData()))

	out := buf.String()
	assert.Contains(t, out, "TOOL_RENAMED")
	assert.Contains(t, out, "SelectionEvent")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(&buf, sampleData()))

	assert.JSONEq(t, `[
		{"export_name":"ProgramSelection","event_kind":"SelectionEvent"},
		{"export_name":"TOOL_RENAMED","event_kind":"RenameEvent"}
	]`, buf.String())
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML).Format(&buf, sampleData()))

	assert.Contains(t, buf.String(), "export_name: TOOL_RENAMED")
}

func TestTableFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, map[string]int{"count": 2}))
	assert.JSONEq(t, `{"count":2}`, buf.String())
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Tool Renamed", Title("TOOL_RENAMED"))
	assert.Equal(t, "Event Name", Title("event_name"))
	assert.Equal(t, "Programselection", Title("ProgramSelection"))
}

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"table", "JSON", "yaml", ""} {
		_, err := ParseFormat(in)
		assert.NoError(t, err, in)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}
