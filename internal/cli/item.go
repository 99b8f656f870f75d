package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holographic-rest/field-kit/internal/engine"
	"github.com/holographic-rest/field-kit/internal/model"
)

// ItemResult is the output of item create and item archive.
type ItemResult struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Archived bool   `json:"archived,omitempty"`
}

func (r ItemResult) String() string {
	if r.Archived {
		return fmt.Sprintf("archived %s (%s) %q", r.ID, r.Type, r.Title)
	}
	return fmt.Sprintf("created %s (%s) %q", r.ID, r.Type, r.Title)
}

func itemResult(it model.Item) ItemResult {
	return ItemResult{ID: it.ID, Type: string(it.Type), Title: it.Title, Archived: it.Archived()}
}

// NewItemCommand creates the item command group.
func NewItemCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Create and archive content items",
	}
	cmd.AddCommand(newItemCreateCommand(rootOpts))
	cmd.AddCommand(newItemArchiveCommand(rootOpts))
	return cmd
}

func newItemCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		itemType string
		body     string
	)

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create an item and earn the item_created credit",
		Long: `Create a content item. The type defaults to Q (question); M, D, and H
are also accepted, though D and H items normally come from bond and
holologue runs.

Example:
  fieldkit item create "What breaks first under load?" --body "notes"`,
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
			item, err := e.CreateItem(sess, engine.CreateItemParams{
				Type:  model.ItemType(itemType),
				Title: args[0],
				Body:  body,
			})
			return emit(f, itemResult(item), err)
		},
	}

	cmd.Flags().StringVar(&itemType, "type", "", "item type (Q|M|D|H, default Q)")
	cmd.Flags().StringVar(&body, "body", "", "item body text")
	return cmd
}

func newItemArchiveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <item-id>",
		Short: "Archive an item (kept in the log, hidden from default reads)",
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
			item, err := e.ArchiveItem(sess, args[0])
			return emit(f, itemResult(item), err)
		},
	}
	return cmd
}
