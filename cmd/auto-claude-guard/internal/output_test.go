package internal

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextFormatter_Table(t *testing.T) {
	var buf bytes.Buffer
	f := NewTextFormatter(&buf)

	err := f.PrintTable(
		[]string{"rule", "severity"},
		[][]string{
			{"bash-rm-rf-root", "critical"},
			{"env-file-write", "high"},
		},
	)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "RULE")
	assert.Contains(t, out, "SEVERITY")
	assert.Contains(t, out, "bash-rm-rf-root")
	assert.Contains(t, out, "critical")
}

func TestTextFormatter_Messages(t *testing.T) {
	var buf bytes.Buffer
	f := NewTextFormatter(&buf)

	require.NoError(t, f.PrintSuccess("created token"))
	require.NoError(t, f.PrintError("tool call blocked"))

	assert.Contains(t, buf.String(), "✓ created token")
	assert.Contains(t, buf.String(), "✗ tool call blocked")
}

func TestJSONFormatter_Table(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(&buf)

	err := f.PrintTable(
		[]string{"token", "rule"},
		[][]string{{"abc", "bash-force-push"}},
	)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	data, ok := decoded["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, data, 1)
	row := data[0].(map[string]interface{})
	assert.Equal(t, "bash-force-push", row["rule"])
}

func TestNewFormatter_SelectsByFormat(t *testing.T) {
	assert.IsType(t, &JSONFormatter{}, NewFormatter(FormatJSON, nil))
	assert.IsType(t, &TextFormatter{}, NewFormatter(FormatText, nil))
	assert.IsType(t, &TextFormatter{}, NewFormatter("unknown", nil))
}
