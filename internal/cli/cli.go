// Package cli provides the command-line interface for ghtree.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	// Default version for development/non-release builds
	// GoReleaser overrides this for release builds with the git tag.
	version = "dev"
)

// NewRootCmd creates the root command with all subcommands. A nil opts
// allocates fresh options.
func NewRootCmd(opts *Options) *cobra.Command {
	if opts == nil {
		opts = &Options{}
	}

	rootCmd := &cobra.Command{
		Use:   "ghtree <owner/repo[@branch] | url>",
		Short: "Print the file tree of a GitHub repository",
		Long: `Print the file tree of a GitHub repository, sorted and drawn with
connector lines, and copy it to the clipboard.

Repositories may be given as owner/repo, owner/repo@branch, a github.com URL
or a shared /repo/<owner>/<repo>/<branch>/ link. Use --local to list a clone
on disk instead.`,
		Example: `  ghtree facebook/react
  ghtree mgks/dhwani -b dev --icons
  ghtree https://github.com/spf13/cobra/tree/main --sort name-asc -x "*_test.go"
  ghtree --local . --worktree --no-copy`,
		Version:      version,
		SilenceUsage: true,
		// NB: ArbitraryArgs is required to avoid interpreting the repository
		// argument as a subcommand.
		Args: cobra.ArbitraryArgs,
		RunE: newTreeCmd(opts).RunE,
	}

	rootCmd.PersistentFlags().BoolVar(&opts.Verbose, "verbose", false, "Log API requests and tree diagnostics")
	opts.addFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newTreeCmd(opts),
		newBrowseCmd(opts),
		newConfigCmd(opts),
		newTokenCmd(opts),
	)

	return rootCmd
}
