package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/holographic-rest/field-kit/internal/engine"
)

// BondResult is the output of bond create.
type BondResult struct {
	ID     string   `json:"id"`
	Status string   `json:"status"`
	Inputs []string `json:"inputs"`
	Prompt string   `json:"prompt"`
}

func (r BondResult) String() string {
	return fmt.Sprintf("created bond %s (%s) over [%s]", r.ID, r.Status, strings.Join(r.Inputs, ", "))
}

// BondRunOutput is the output of bond run.
type BondRunOutput struct {
	BondID   string `json:"bond_id"`
	OutputID string `json:"output_id"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Balance  int64  `json:"balance"`
}

func (r BondRunOutput) String() string {
	return fmt.Sprintf("bond %s executed: %s (%s) %q, balance %d",
		r.BondID, r.OutputID, r.Type, r.Title, r.Balance)
}

// NewBondCommand creates the bond command group.
func NewBondCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bond",
		Short: "Draft and run bonds",
	}
	cmd.AddCommand(newBondCreateCommand(rootOpts))
	cmd.AddCommand(newBondRunCommand(rootOpts))
	return cmd
}

func newBondCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		inputs []string
		prompt string
		origin string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Draft a bond over one or more input items",
		Long: `Draft a bond: a stored intent to transform the input items with the
prompt. Drafting is free and writes no output; run the bond to execute
it.

Example:
  fieldkit bond create --input it_4f2c --prompt "Expand into a checklist"`,
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
			bond, err := e.CreateBond(sess, engine.CreateBondParams{
				InputItemIDs: inputs,
				PromptText:   prompt,
				Origin:       origin,
			})
			return emit(f, BondResult{
				ID:     bond.ID,
				Status: string(bond.Status),
				Inputs: bond.InputItemIDs,
				Prompt: bond.PromptText,
			}, err)
		},
	}

	cmd.Flags().StringArrayVar(&inputs, "input", nil, "input item id (repeatable)")
	cmd.Flags().StringVar(&prompt, "prompt", "", "prompt text (required)")
	cmd.Flags().StringVar(&origin, "origin", "", "suggestion recipe this prompt came from")
	_ = cmd.MarkFlagRequired("prompt")
	return cmd
}

func newBondRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <bond-id>",
		Short: "Execute a draft bond (spends 10, rewards 3 on success)",
		Args:  cobra.ExactArgs(1),
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
			run, err := e.RunBond(cmd.Context(), sess, args[0])
			return emit(f, bondRunOutput(run), err)
		},
	}
	return cmd
}

func bondRunOutput(run engine.BondRunResult) BondRunOutput {
	var out BondRunOutput
	out.BondID = run.Bond.ID
	out.OutputID = run.Output.ID
	out.Type = string(run.Output.Type)
	out.Title = run.Output.Title
	out.Balance = run.Balance
	return out
}
