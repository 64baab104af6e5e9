package cli

import (
	"github.com/spf13/cobra"

	"github.com/holonoms/ghtree/internal/tui"
)

// newBrowseCmd creates the browse command
func newBrowseCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse <owner/repo[@branch] | url>",
		Short: "Explore the repository tree interactively",
		Long: `Explore the repository tree interactively. The listing is fetched once;
re-sorting (s), restyling (t), searching (/) and copying (y, c) reuse it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Repo = args[0]
			}
			if opts.Repo == "" && opts.Local == "" {
				return cmd.Help()
			}

			session, snap, err := load(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}

			m := tui.New(session, snap.Ref.String(), opts.clipboard, tui.OpenURL)
			return tui.Run(cmd.Context(), m)
		},
	}

	return cmd
}
