package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden loads a scenario, runs it in a fresh temp directory, and
// compares the rendered trace against testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenarioPath string) *Result {
	t.Helper()

	sc, err := LoadScenario(scenarioPath)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	result, err := Run(sc, t.TempDir())
	if err != nil {
		t.Fatalf("run scenario: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, sc.Name, []byte(RenderTrace(result.Events)))
	return result
}
