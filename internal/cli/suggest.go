package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/holographic-rest/field-kit/internal/qdpi"
)

// SuggestResult is the output of the suggest command.
type SuggestResult struct {
	ItemID      string            `json:"item_id"`
	Suggestions []qdpi.Suggestion `json:"suggestions"`
}

func (r SuggestResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "suggestions for %s:", r.ItemID)
	for _, s := range r.Suggestions {
		fmt.Fprintf(&b, "\n  %-22s %s", s.RecipeID, s.PromptText)
	}
	return b.String()
}

// NewSuggestCommand creates the suggest command.
func NewSuggestCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest <item-id>",
		Short: "Show bond prompt suggestions anchored to an item",
		Long: `Show the bond prompt suggestions for an item. Each suggestion anchors
a recipe to a phrase drawn from the item's title, ready to use as a
bond prompt.

Example:
  fieldkit suggest it_4f2c`,
		Args: cobra.ExactArgs(1),
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
			sugs, err := e.ShowSuggestions(sess, args[0])
			return emit(f, SuggestResult{ItemID: args[0], Suggestions: sugs}, err)
		},
	}
	return cmd
}
