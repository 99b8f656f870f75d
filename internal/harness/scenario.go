// Package harness runs conformance scenarios against a fresh data
// directory with a deterministic clock and id generator, and compares the
// rendered event trace against golden files.
package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a YAML-defined conformance flow: an ordered list of
// operations and the balance the log must fold to at the end.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario demonstrates.
	Description string `yaml:"description"`

	// Synth selects the synthesizer: "ok" (default) or "fail" to force
	// every synthesis call to error.
	Synth string `yaml:"synth,omitempty"`

	// Steps is the operation flow. Steps run in order against one session.
	Steps []Step `yaml:"steps"`

	// ExpectBalance is the verified balance after the final step.
	ExpectBalance int64 `yaml:"expect_balance"`
}

// Step is one operation in a scenario flow. Op selects the operation; the
// other fields are its arguments. Ids produced by earlier steps are
// referenced as $label where a step declared `as: label`.
type Step struct {
	// Op is one of: init, tutorial, create_item, suggest, create_bond,
	// run_bond, run_holologue, open_ledger, archive_item, curate_item_add,
	// curate_item_remove.
	Op string `yaml:"op"`

	// As stores the id this step produced under a label for later steps.
	// For run_bond the label binds to the output item.
	As string `yaml:"as,omitempty"`

	Title  string   `yaml:"title,omitempty"`
	Body   string   `yaml:"body,omitempty"`
	Item   string   `yaml:"item,omitempty"`
	Bond   string   `yaml:"bond,omitempty"`
	Inputs []string `yaml:"inputs,omitempty"`
	Prompt string   `yaml:"prompt,omitempty"`
	Items  []string `yaml:"items,omitempty"`
	Kind   string   `yaml:"kind,omitempty"`

	// ExpectError names the error class the step must fail with:
	// "validation", "invalid_state", or "execution". A step without it
	// must succeed.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// LoadScenario reads and parses a scenario file. Unknown YAML fields are
// rejected so a typo fails loudly instead of silently skipping a check.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := validateScenario(&sc); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &sc, nil
}

func validateScenario(sc *Scenario) error {
	if sc.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(sc.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if sc.Synth != "" && sc.Synth != "ok" && sc.Synth != "fail" {
		return fmt.Errorf("synth must be \"ok\" or \"fail\", got %q", sc.Synth)
	}
	if sc.Steps[0].Op != "init" {
		return fmt.Errorf("first step must be init, got %q", sc.Steps[0].Op)
	}
	for i, st := range sc.Steps {
		if st.Op == "" {
			return fmt.Errorf("steps[%d]: op is required", i)
		}
		switch st.ExpectError {
		case "", "validation", "invalid_state", "execution":
		default:
			return fmt.Errorf("steps[%d]: unknown expect_error %q", i, st.ExpectError)
		}
	}
	return nil
}
