package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holographic-rest/field-kit/internal/engine"
	"github.com/holographic-rest/field-kit/internal/qdpi"
)

// HolologueOutput is the output of holologue run.
type HolologueOutput struct {
	OutputID  string            `json:"output_id"`
	Kind      string            `json:"artifact_kind"`
	Title     string            `json:"title"`
	Balance   int64             `json:"balance"`
	Proposals []qdpi.Suggestion `json:"proposals"`
}

func (r HolologueOutput) String() string {
	return fmt.Sprintf("holologue completed: %s (H/%s) %q, balance %d, %d proposals",
		r.OutputID, r.Kind, r.Title, r.Balance, len(r.Proposals))
}

// NewHolologueCommand creates the holologue command group.
func NewHolologueCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holologue",
		Short: "Synthesize one artifact from many items",
	}
	cmd.AddCommand(newHolologueRunCommand(rootOpts))
	return cmd
}

func newHolologueRunCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		items []string
		kind  string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a holologue over selected items (spends 20, rewards 5)",
		Long: `Synthesize exactly one type-H artifact from at least two distinct
selected items. The artifact kind must be one of the policy's kinds.

Example:
  fieldkit holologue run --item it_4f2c --item it_9a1b --kind plan`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := formatterFor(cmd, rootOpts)
			e, err := openEngine(rootOpts)
			if err != nil {
				return err
			}
			sess, err := resume(e)
			if err != nil {
				return err
			}
			res, err := e.RunHolologue(cmd.Context(), sess, engine.RunHolologueParams{
				SelectedItemIDs: items,
				ArtifactKind:    kind,
			})
			return emit(f, HolologueOutput{
				OutputID:  res.Output.ID,
				Kind:      kind,
				Title:     res.Output.Title,
				Balance:   res.Balance,
				Proposals: res.Proposals,
			}, err)
		},
	}

	cmd.Flags().StringArrayVar(&items, "item", nil, "selected item id (repeatable, at least 2 distinct)")
	cmd.Flags().StringVar(&kind, "kind", "", "artifact kind (required)")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}
