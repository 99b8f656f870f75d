package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/holographic-rest/field-kit/internal/ledger"
	"github.com/holographic-rest/field-kit/internal/qdpi"
)

// LedgerSummary is the output of ledger open.
type LedgerSummary struct {
	EpisodeID string `json:"episode_id"`
	Items     int    `json:"items"`
	Bonds     int    `json:"bonds"`
	Events    int    `json:"events"`
	Balance   int64  `json:"balance"`
}

func (r LedgerSummary) String() string {
	return fmt.Sprintf("episode %s: %d items, %d bonds, %d events, balance %d",
		r.EpisodeID, r.Items, r.Bonds, r.Events, r.Balance)
}

// HistoryOutput is the output of ledger history.
type HistoryOutput struct {
	Rows []ledger.HistoryRow `json:"rows"`
}

func (r HistoryOutput) String() string {
	var b strings.Builder
	for i, row := range r.Rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %3d %-32s %s %-14s %s",
			row.EpisodeID, row.Seq, row.Name, row.QDPI, row.Direction, row.CreatedAt)
	}
	return b.String()
}

// CreditsOutput is the output of ledger credits.
type CreditsOutput struct {
	Entries []ledger.Entry `json:"entries"`
}

func (r CreditsOutput) String() string {
	var b strings.Builder
	for i, en := range r.Entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %3d %+4d -> %4d %s", en.EpisodeID, en.Seq, en.Delta, en.BalanceAfter, en.Reason)
	}
	return b.String()
}

// LineageOutput is the output of ledger lineage.
type LineageOutput struct {
	ItemID string        `json:"item_id"`
	Origin ledger.Origin `json:"origin"`
}

func (r LineageOutput) String() string {
	switch r.Origin.Kind {
	case "bond":
		return fmt.Sprintf("%s: produced by bond %s from [%s]",
			r.ItemID, r.Origin.BondID, strings.Join(r.Origin.SourceItemIDs, ", "))
	case "holologue":
		return fmt.Sprintf("%s: synthesized (%s) by holologue event %s from [%s]",
			r.ItemID, r.Origin.ArtifactKind, r.Origin.HolologueEventID, strings.Join(r.Origin.SourceItemIDs, ", "))
	}
	return fmt.Sprintf("%s: created directly by the user", r.ItemID)
}

// NewLedgerCommand creates the ledger command group.
func NewLedgerCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the event log and credit ledger",
	}
	cmd.AddCommand(newLedgerOpenCommand(rootOpts))
	cmd.AddCommand(newLedgerHistoryCommand(rootOpts))
	cmd.AddCommand(newLedgerCreditsCommand(rootOpts))
	cmd.AddCommand(newLedgerLineageCommand(rootOpts))
	return cmd
}

func newLedgerOpenCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open the ledger: verify the balance and summarize the episode",
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
			view, err := e.OpenLedger(sess)
			return emit(f, LedgerSummary{
				EpisodeID: sess.EpisodeID,
				Items:     len(view.Items),
				Bonds:     len(view.Bonds),
				Events:    len(view.Events),
				Balance:   view.Balance,
			}, err)
		},
	}
	return cmd
}

func newLedgerHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded events in log order",
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
			idx, err := ledger.OpenIndex(cmd.Context(), e.Store())
			if err != nil {
				return WrapExitError(ExitCommandError, "build event index", err)
			}
			defer idx.Close()
			rows, err := idx.History(cmd.Context(), sess.EpisodeID, limit)
			return emit(f, HistoryOutput{Rows: rows}, err)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows (0 = all)")
	return cmd
}

func newLedgerCreditsCommand(rootOpts *RootOptions) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "credits",
		Short: "List credit deltas with running balances",
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
			idx, err := ledger.OpenIndex(cmd.Context(), e.Store())
			if err != nil {
				return WrapExitError(ExitCommandError, "build event index", err)
			}
			defer idx.Close()
			entries, err := idx.CreditHistory(cmd.Context(), sess.EpisodeID, qdpi.Reason(reason))
			return emit(f, CreditsOutput{Entries: entries}, err)
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "filter by delta reason (e.g. item_created)")
	return cmd
}

func newLedgerLineageCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lineage <item-id>",
		Short: "Show where an item came from",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := formatterFor(cmd, rootOpts)
			e, err := openEngine(rootOpts)
			if err != nil {
				return err
			}
			if _, err := resume(e); err != nil {
				return err
			}
			origin, found, err := e.Lineage(args[0])
			if err != nil {
				return emit(f, nil, err)
			}
			out := LineageOutput{ItemID: args[0], Origin: origin}
			if !found {
				out.Origin = ledger.Origin{Kind: "user"}
			}
			return emit(f, out, nil)
		},
	}
	return cmd
}
