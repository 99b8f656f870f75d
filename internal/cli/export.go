package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the episode as a JSON document",
		Long: `Export the session's episode: the episode snapshot, all of its items
and bonds (archived included), and the curated projection. The export
is always a JSON document; --format does not apply.

Example:
  fieldkit export --out episode.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEngine(rootOpts)
			if err != nil {
				return err
			}
			sess, err := resume(e)
			if err != nil {
				return err
			}
			export, err := e.ExportEpisode(sess)
			if err != nil {
				return emit(formatterFor(cmd, rootOpts), nil, err)
			}

			data, err := json.MarshalIndent(export, "", "  ")
			if err != nil {
				return WrapExitError(ExitCommandError, "encode export", err)
			}
			data = append(data, '\n')

			if out != "" {
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return WrapExitError(ExitCommandError, "write export file", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported episode %s to %s\n", sess.EpisodeID, out)
				return nil
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "write the export to a file instead of stdout")
	return cmd
}
