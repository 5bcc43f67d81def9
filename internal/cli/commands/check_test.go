package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollectXMLFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o750))
	for _, name := range []string{"a.xml", "b.XML", "note.txt", "sub/c.xml"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("<x/>"), 0o600))
	}

	files, err := collectXMLFiles([]string{dir})
	require.NoError(t, err)
	require.Len(t, files, 3)

	// Explicit files are taken regardless of extension.
	files, err = collectXMLFiles([]string{filepath.Join(dir, "note.txt")})
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "note.txt")}, files)

	_, err = collectXMLFiles([]string{filepath.Join(dir, "absent.xml")})
	require.Error(t, err)
}

func TestLineCol(t *testing.T) {
	text := "abc\ndef\nghi"
	tests := []struct {
		offset    int
		line, col int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{4, 2, 1},
		{6, 2, 3},
		{8, 3, 1},
		{99, 3, 4},
	}
	for _, tt := range tests {
		line, col := lineCol(text, tt.offset)
		if line != tt.line || col != tt.col {
			t.Errorf("lineCol(%d) = %d,%d, want %d,%d", tt.offset, line, col, tt.line, tt.col)
		}
	}
}

func TestRenderFindingsJSON(t *testing.T) {
	var buf bytes.Buffer
	in := []finding{{File: "a.xml", Line: 3, Column: 7, Severity: "error", Message: "boom"}}
	require.NoError(t, renderFindings(&buf, in, "json"))

	var out []finding
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Equal(t, in, out)
}

func TestRenderFindingsTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderFindings(&buf, nil, "table"))
	require.Contains(t, buf.String(), "No problems found.")

	buf.Reset()
	in := []finding{{File: "a.xml", Line: 1, Column: 1, Severity: "warning", Message: "odd"}}
	require.NoError(t, renderFindings(&buf, in, "table"))
	got := buf.String()
	require.Contains(t, got, "a.xml")
	require.Contains(t, got, "odd")
	require.Contains(t, got, "(1 findings)")
}

func TestRenderFindingsYAML(t *testing.T) {
	var buf bytes.Buffer
	in := []finding{{File: "a.xml", Line: 2, Column: 5, Severity: "error", Message: "bad"}}
	require.NoError(t, renderFindings(&buf, in, "yaml"))
	require.True(t, strings.Contains(buf.String(), "file: a.xml"))
	require.True(t, strings.Contains(buf.String(), "line: 2"))
}
