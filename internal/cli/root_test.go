package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the command tree with args and returns combined stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "fieldkit", cmd.Use)
	assert.Contains(t, cmd.Long, "QDPI")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"init", "tutorial", "item", "suggest", "bond", "holologue", "ledger", "curate", "export"}

	for _, name := range commands {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			require.NotNil(t, sub)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	dataDir := cmd.PersistentFlags().Lookup("data-dir")
	require.NotNil(t, dataDir)
	assert.Equal(t, ".fieldkit", dataDir.DefValue)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
}

func TestInvalidFormatRejected(t *testing.T) {
	_, err := runCLI(t, "--format", "xml", "init", "--data-dir", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestInitThenResume(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, "init", "--data-dir", dir, "--title", "Test Kit")
	require.NoError(t, err)
	assert.Contains(t, out, "initialized network")
	assert.Contains(t, out, "balance 100")

	out, err = runCLI(t, "init", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "resumed network")
}

func TestCommandsRequireInit(t *testing.T) {
	_, err := runCLI(t, "ledger", "open", "--data-dir", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "not initialized")
}

func TestItemCreateJSON(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, "init", "--data-dir", dir)
	require.NoError(t, err)

	out, err := runCLI(t, "--format", "json", "item", "create", "What breaks first?", "--data-dir", dir)
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "Q", data["type"])
	assert.Equal(t, "What breaks first?", data["title"])
	assert.NotEmpty(t, data["id"])
}

func TestItemCreateValidationError(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, "init", "--data-dir", dir)
	require.NoError(t, err)

	out, err := runCLI(t, "--format", "json", "item", "create", "   ", "--data-dir", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "validation", resp.Error.Kind)
}

func TestBondFlow(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, "init", "--data-dir", dir)
	require.NoError(t, err)

	out, err := runCLI(t, "--format", "json", "item", "create", "seed question", "--data-dir", dir)
	require.NoError(t, err)
	var created Response
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	itemID := created.Data.(map[string]interface{})["id"].(string)

	out, err = runCLI(t, "--format", "json", "bond", "create",
		"--input", itemID, "--prompt", "Expand into a checklist", "--data-dir", dir)
	require.NoError(t, err)
	var drafted Response
	require.NoError(t, json.Unmarshal([]byte(out), &drafted))
	bond := drafted.Data.(map[string]interface{})
	assert.Equal(t, "draft", bond["status"])
	bondID := bond["id"].(string)

	out, err = runCLI(t, "--format", "json", "bond", "run", bondID, "--data-dir", dir)
	require.NoError(t, err)
	var ran Response
	require.NoError(t, json.Unmarshal([]byte(out), &ran))
	run := ran.Data.(map[string]interface{})
	assert.Equal(t, "M", run["type"])
	// 100 seed + 1 item - 10 spend + 3 reward
	assert.Equal(t, float64(94), run["balance"])

	// A second run of the same bond is an invalid-state failure.
	_, err = runCLI(t, "bond", "run", bondID, "--data-dir", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestLedgerOpenText(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, "init", "--data-dir", dir)
	require.NoError(t, err)
	_, err = runCLI(t, "item", "create", "one", "--data-dir", dir)
	require.NoError(t, err)

	out, err := runCLI(t, "ledger", "open", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "balance 101")
	assert.Contains(t, out, "1 items")
}

func TestExportWritesFile(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, "init", "--data-dir", dir)
	require.NoError(t, err)
	_, err = runCLI(t, "item", "create", "keep me", "--data-dir", dir)
	require.NoError(t, err)

	out, err := runCLI(t, "export", "--data-dir", dir)
	require.NoError(t, err)

	var export map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &export))
	assert.Contains(t, export, "episode")
	assert.Contains(t, export, "items")
	assert.Contains(t, export, "curated")
}
