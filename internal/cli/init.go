package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// InitResult is the output of the init command.
type InitResult struct {
	NetworkID string `json:"network_id"`
	EpisodeID string `json:"episode_id"`
	Resumed   bool   `json:"resumed"`
}

func (r InitResult) String() string {
	if r.Resumed {
		return fmt.Sprintf("resumed network %s, episode %s", r.NetworkID, r.EpisodeID)
	}
	return fmt.Sprintf("initialized network %s, episode %s, balance 100", r.NetworkID, r.EpisodeID)
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a data directory",
		Long: `Initialize the data directory: create the network and Episode 0,
seed the credit balance, and commit. Running init on an initialized
directory resumes the existing session without writing anything.

Example:
  fieldkit init --data-dir ./kit --title "My Field Kit"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := formatterFor(cmd, rootOpts)
			e, err := openEngine(rootOpts)
			if err != nil {
				return err
			}

			// Init is idempotent; detect resume by whether a network
			// already existed.
			nets, err := e.Store().Networks()
			if err != nil {
				return WrapExitError(ExitCommandError, "read networks", err)
			}
			resumed := len(nets) > 0

			sess, err := e.Init(title)
			return emit(f, InitResult{
				NetworkID: sess.NetworkID,
				EpisodeID: sess.EpisodeID,
				Resumed:   resumed,
			}, err)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "network title (default \"Field Kit\")")
	return cmd
}

// TutorialResult is the output of tutorial start.
type TutorialResult struct {
	EventID   string `json:"event_id"`
	EpisodeID string `json:"episode_id"`
}

func (r TutorialResult) String() string {
	return fmt.Sprintf("tutorial started in episode %s", r.EpisodeID)
}

// NewTutorialCommand creates the tutorial command group.
func NewTutorialCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tutorial",
		Short: "Tutorial entry points",
	}

	start := &cobra.Command{
		Use:   "start",
		Short: "Record the tutorial entry point",
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
			ev, err := e.StartTutorial(sess)
			return emit(f, TutorialResult{EventID: ev.ID, EpisodeID: sess.EpisodeID}, err)
		},
	}

	cmd.AddCommand(start)
	return cmd
}
