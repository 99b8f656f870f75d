package harness

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/holographic-rest/field-kit/internal/engine"
	"github.com/holographic-rest/field-kit/internal/ledger"
	"github.com/holographic-rest/field-kit/internal/qdpi"
	"github.com/holographic-rest/field-kit/internal/store"
	"github.com/holographic-rest/field-kit/internal/testutil"
)

// scenarioStart anchors every scenario clock so traces are byte-stable.
var scenarioStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// Result is the outcome of a scenario run.
type Result struct {
	Events  []qdpi.Event
	Balance int64
	Labels  map[string]string
}

// failSynth forces execution-failure paths in scenarios.
type failSynth struct{}

func (failSynth) Transform(context.Context, engine.TransformRequest) (engine.Synthesis, error) {
	return engine.Synthesis{}, fmt.Errorf("synthesis refused")
}

func (failSynth) Synthesize(context.Context, engine.SynthesizeRequest) (engine.Synthesis, error) {
	return engine.Synthesis{}, fmt.Errorf("synthesis refused")
}

// Run executes a scenario against a fresh store in dir. The final balance
// is verified against every recorded balance_after, then checked against
// the scenario's expectation.
func Run(sc *Scenario, dir string) (*Result, error) {
	s, err := store.Open(dir)
	if err != nil {
		return nil, err
	}

	opts := []engine.Option{
		engine.WithClock(testutil.NewClock(scenarioStart, time.Second).Now),
		engine.WithIDs(testutil.NewIDs()),
	}
	if sc.Synth == "fail" {
		opts = append(opts, engine.WithSynthesizer(failSynth{}))
	}
	e, err := engine.New(s, opts...)
	if err != nil {
		return nil, err
	}

	r := &Result{Labels: make(map[string]string)}
	var sess engine.Session
	ctx := context.Background()

	for i, st := range sc.Steps {
		id, err := runStep(ctx, e, &sess, r, st)
		if stepErr := checkStepError(st, err); stepErr != nil {
			return nil, fmt.Errorf("scenario %s: steps[%d] %s: %w", sc.Name, i, st.Op, stepErr)
		}
		if st.As != "" && id != "" {
			r.Labels[st.As] = id
		}
	}

	balance, err := ledger.Verify(s, "")
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	if balance != sc.ExpectBalance {
		return nil, fmt.Errorf("scenario %s: balance %d, expected %d", sc.Name, balance, sc.ExpectBalance)
	}
	r.Balance = balance

	r.Events, err = s.Events("")
	if err != nil {
		return nil, err
	}
	return r, nil
}

// runStep executes one step and returns the id to bind to the step label.
func runStep(ctx context.Context, e *engine.Engine, sess *engine.Session, r *Result, st Step) (string, error) {
	switch st.Op {
	case "init":
		got, err := e.Init(st.Title)
		if err != nil {
			return "", err
		}
		*sess = got
		return "", nil

	case "tutorial":
		_, err := e.StartTutorial(*sess)
		return "", err

	case "create_item":
		item, err := e.CreateItem(*sess, engine.CreateItemParams{Title: st.Title, Body: st.Body})
		if err != nil {
			return "", err
		}
		return item.ID, nil

	case "suggest":
		_, err := e.ShowSuggestions(*sess, r.resolve(st.Item))
		return "", err

	case "create_bond":
		inputs := make([]string, len(st.Inputs))
		for i, in := range st.Inputs {
			inputs[i] = r.resolve(in)
		}
		bond, err := e.CreateBond(*sess, engine.CreateBondParams{
			InputItemIDs: inputs,
			PromptText:   st.Prompt,
		})
		if err != nil {
			return "", err
		}
		return bond.ID, nil

	case "run_bond":
		run, err := e.RunBond(ctx, *sess, r.resolve(st.Bond))
		if err != nil {
			return "", err
		}
		return run.Output.ID, nil

	case "run_holologue":
		items := make([]string, len(st.Items))
		for i, it := range st.Items {
			items[i] = r.resolve(it)
		}
		res, err := e.RunHolologue(ctx, *sess, engine.RunHolologueParams{
			SelectedItemIDs: items,
			ArtifactKind:    st.Kind,
		})
		if err != nil {
			return "", err
		}
		return res.Output.ID, nil

	case "open_ledger":
		_, err := e.OpenLedger(*sess)
		return "", err

	case "archive_item":
		_, err := e.ArchiveItem(*sess, r.resolve(st.Item))
		return "", err

	case "curate_item_add":
		_, err := e.CurateItemAdd(*sess, r.resolve(st.Item))
		return "", err

	case "curate_item_remove":
		_, err := e.CurateItemRemove(*sess, r.resolve(st.Item))
		return "", err
	}
	return "", fmt.Errorf("unknown op %q", st.Op)
}

// resolve maps a $label back to the id it was bound to; anything else
// passes through as a literal id.
func (r *Result) resolve(ref string) string {
	if strings.HasPrefix(ref, "$") {
		if id, ok := r.Labels[ref[1:]]; ok {
			return id
		}
	}
	return ref
}

// checkStepError matches a step's outcome against its expectation.
func checkStepError(st Step, err error) error {
	switch st.ExpectError {
	case "":
		return err
	case "validation":
		if engine.IsValidation(err) {
			return nil
		}
	case "invalid_state":
		if engine.IsInvalidState(err) {
			return nil
		}
	case "execution":
		if engine.IsExecution(err) {
			return nil
		}
	}
	if err == nil {
		return fmt.Errorf("expected a %s error, step succeeded", st.ExpectError)
	}
	return fmt.Errorf("expected a %s error, got: %w", st.ExpectError, err)
}
