package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/holographic-rest/field-kit/internal/model"
)

// CurateResult is the output of curate add/remove.
type CurateResult struct {
	EpisodeID string   `json:"episode_id"`
	ItemIDs   []string `json:"item_ids"`
	BondIDs   []string `json:"bond_ids"`
}

func (r CurateResult) String() string {
	return fmt.Sprintf("episode %s curates items [%s], bonds [%s]",
		r.EpisodeID, strings.Join(r.ItemIDs, ", "), strings.Join(r.BondIDs, ", "))
}

func curateResult(ep model.Episode) CurateResult {
	return CurateResult{EpisodeID: ep.ID, ItemIDs: ep.CuratedItemIDs, BondIDs: ep.CuratedBondIDs}
}

// CurateShowResult is the output of curate show.
type CurateShowResult struct {
	Items    []ItemResult `json:"items"`
	Bonds    []string     `json:"bond_ids"`
	Warnings []string     `json:"warnings,omitempty"`
}

func (r CurateShowResult) String() string {
	var b strings.Builder
	b.WriteString("curated items:")
	for _, it := range r.Items {
		fmt.Fprintf(&b, "\n  %s (%s) %q", it.ID, it.Type, it.Title)
	}
	if len(r.Bonds) > 0 {
		fmt.Fprintf(&b, "\ncurated bonds: [%s]", strings.Join(r.Bonds, ", "))
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "\nwarning: %s", w)
	}
	return b.String()
}

// NewCurateCommand creates the curate command group.
func NewCurateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curate",
		Short: "Maintain the episode's curated lists",
	}
	cmd.AddCommand(newCurateMutateCommand(rootOpts, "add", "Add an item or bond to the curated lists"))
	cmd.AddCommand(newCurateMutateCommand(rootOpts, "remove", "Remove an item or bond from the curated lists"))
	cmd.AddCommand(newCurateShowCommand(rootOpts))
	return cmd
}

func newCurateMutateCommand(rootOpts *RootOptions, verb, short string) *cobra.Command {
	var (
		itemID string
		bondID string
	)

	cmd := &cobra.Command{
		Use:   verb,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (itemID == "") == (bondID == "") {
				return WrapExitError(ExitCommandError, "exactly one of --item or --bond is required", nil)
			}
			f := formatterFor(cmd, rootOpts)
			e, err := openEngine(rootOpts)
			if err != nil {
				return err
			}
			sess, err := resume(e)
			if err != nil {
				return err
			}

			var ep model.Episode
			switch {
			case itemID != "" && verb == "add":
				ep, err = e.CurateItemAdd(sess, itemID)
			case itemID != "":
				ep, err = e.CurateItemRemove(sess, itemID)
			case verb == "add":
				ep, err = e.CurateBondAdd(sess, bondID)
			default:
				ep, err = e.CurateBondRemove(sess, bondID)
			}
			return emit(f, curateResult(ep), err)
		},
	}

	cmd.Flags().StringVar(&itemID, "item", "", "item id")
	cmd.Flags().StringVar(&bondID, "bond", "", "bond id")
	return cmd
}

func newCurateShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Resolve and show the curated projection",
		Args:  cobra.NoArgs,
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
			cur, err := e.CuratedProjection(sess)
			if err != nil {
				return emit(f, nil, err)
			}
			out := CurateShowResult{Warnings: cur.Warnings}
			for _, it := range cur.Items {
				out.Items = append(out.Items, itemResult(it))
			}
			for _, b := range cur.Bonds {
				out.Bonds = append(out.Bonds, b.ID)
			}
			return emit(f, out, nil)
		},
	}
	return cmd
}
