package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const bistroFloor = "testdata/bistro.yaml"

// execute runs cmd with args and returns what it wrote to stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// response is CLIResponse with a typed payload.
type response[T any] struct {
	Status string    `json:"status"`
	Data   T         `json:"data"`
	Error  *CLIError `json:"error"`
}

func decode[T any](t *testing.T, out string) response[T] {
	t.Helper()
	var resp response[T]
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}

// importBistro stores the bistro floor in a fresh database and returns its path.
func importBistro(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "expo.db")
	_, err := execute(t, NewImportCommand(&RootOptions{Format: "text"}), bistroFloor, "--db", dbPath)
	require.NoError(t, err)
	return dbPath
}

// analyzeJSON runs analyze in JSON mode with args.
func analyzeJSON(t *testing.T, args ...string) AnalyzeResult {
	t.Helper()
	return analyzeJSONWith(t, &RootOptions{Format: "json"}, args...)
}

func analyzeJSONWith(t *testing.T, opts *RootOptions, args ...string) AnalyzeResult {
	t.Helper()
	out, err := execute(t, NewAnalyzeCommand(opts), args...)
	require.NoError(t, err)
	resp := decode[AnalyzeResult](t, out)
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}
