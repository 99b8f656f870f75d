package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoldenScenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no scenario files found")

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			RunWithGolden(t, path)
		})
	}
}

func TestGoldenFlowTrace(t *testing.T) {
	result := RunWithGolden(t, "testdata/scenarios/golden_flow.yaml")

	assert.Equal(t, int64(73), result.Balance)
	assert.Len(t, result.Events, 30)

	// Labels resolve to the ids the flow produced.
	assert.NotEmpty(t, result.Labels["i1"])
	assert.NotEmpty(t, result.Labels["h1"])
	assert.NotEqual(t, result.Labels["o1"], result.Labels["o2"])
}
