package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadScenarioRejectsUnknownField(t *testing.T) {
	path := writeScenario(t, `
name: typo
steps:
  - op: init
    titel: misspelled
expect_balance: 100
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse scenario")
}

func TestLoadScenarioRejectsNonInitFirstStep(t *testing.T) {
	path := writeScenario(t, `
name: no-init
steps:
  - op: create_item
    title: orphan
expect_balance: 0
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first step must be init")
}

func TestLoadScenarioRejectsBadExpectError(t *testing.T) {
	path := writeScenario(t, `
name: bad-class
steps:
  - op: init
    title: t
  - op: run_bond
    bond: bd_000001
    expect_error: explosion
expect_balance: 100
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown expect_error "explosion"`)
}

func TestLoadScenarioRejectsBadSynth(t *testing.T) {
	path := writeScenario(t, `
name: bad-synth
synth: maybe
steps:
  - op: init
    title: t
expect_balance: 100
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "synth must be")
}

func TestRunRejectsBalanceMismatch(t *testing.T) {
	path := writeScenario(t, `
name: wrong-balance
steps:
  - op: init
    title: t
expect_balance: 42
`)
	sc, err := LoadScenario(path)
	require.NoError(t, err)

	_, err = Run(sc, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "balance 100, expected 42")
}

func TestRunFailsWhenExpectedErrorMissing(t *testing.T) {
	path := writeScenario(t, `
name: too-happy
steps:
  - op: init
    title: t
  - op: create_item
    title: fine
    expect_error: validation
expect_balance: 101
`)
	sc, err := LoadScenario(path)
	require.NoError(t, err)

	_, err = Run(sc, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected a validation error, step succeeded")
}

func TestResolvePassesLiteralsThrough(t *testing.T) {
	r := &Result{Labels: map[string]string{"a": "it_000001"}}
	assert.Equal(t, "it_000001", r.resolve("$a"))
	assert.Equal(t, "it_000009", r.resolve("it_000009"))
	assert.Equal(t, "$missing", r.resolve("$missing"))
}
