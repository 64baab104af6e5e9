package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/holonoms/ghtree/internal/config"
	"github.com/holonoms/ghtree/internal/export"
	"github.com/holonoms/ghtree/internal/filetree"
	"github.com/holonoms/ghtree/internal/github"
	"github.com/holonoms/ghtree/internal/source"
	"github.com/holonoms/ghtree/internal/util"
	"github.com/holonoms/ghtree/internal/view"
)

// newTreeCmd creates the tree command, which is also what the root command
// runs when no subcommand is given.
func newTreeCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree <owner/repo[@branch] | url>",
		Short: "Print the repository tree and copy it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return fmt.Errorf("expected one repository, got %d", len(args))
			}
			if len(args) == 1 {
				opts.Repo = args[0]
			}
			if opts.Repo == "" && opts.Local == "" {
				return cmd.Help()
			}
			return runTree(cmd.Context(), cmd, opts)
		},
	}

	return cmd
}

func runTree(ctx context.Context, cmd *cobra.Command, opts *Options) error {
	session, snap, err := load(ctx, cmd, opts)
	if err != nil {
		return err
	}

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	res := session.Current()
	doc := export.Document{
		Title:  snap.Ref.String(),
		Header: opts.Header,
		Output: res.Output,
		Theme:  filetree.DefaultTheme(),
	}

	if opts.OutputFile != "" {
		size, err := export.WriteFile(opts.OutputFile, doc, opts.Format)
		if err != nil {
			return err
		}
		fmt.Fprintf(errOut, "Saved tree to '%s' (%s)\n", opts.OutputFile, util.FormatSize(size))
	} else {
		if err := export.Write(out, doc, opts.Format); err != nil {
			return fmt.Errorf("unable to write tree: %w", err)
		}
	}

	containers, leaves := snap.Counts()
	fmt.Fprintf(errOut, "\n%s\n", util.Summary(containers, leaves, snap.Size))

	if !opts.NoCopy && !res.Output.Empty() {
		if err := export.CopyTree(opts.clipboard, res.Output); err != nil {
			fmt.Fprintf(errOut, "(Could not auto-copy: %v)\n", err)
		} else {
			fmt.Fprintln(errOut, "✨ Tree copied to clipboard!")
		}
	}

	return nil
}

// load resolves the options, fetches the listing and builds a session over
// it. Progress and notices go to the command's error stream.
func load(ctx context.Context, cmd *cobra.Command, opts *Options) (*view.Session, *source.Snapshot, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.New(opts.projectDir())
	if err != nil {
		return nil, nil, fmt.Errorf("unable to load config: %w", err)
	}
	if err := opts.resolve(cmd.Flags(), cfg); err != nil {
		return nil, nil, err
	}

	errOut := cmd.ErrOrStderr()
	log := newLogger(errOut, opts.Verbose)

	src, ref, err := opts.source(log)
	if err != nil {
		return nil, nil, err
	}
	flt, err := opts.filter()
	if err != nil {
		return nil, nil, err
	}

	name := ref.String()
	if opts.Local != "" {
		name = opts.Local
	}
	fmt.Fprintf(errOut, "🌳 Fetching %s...\n", name)

	start := time.Now()
	snap, err := src.Fetch(ctx, ref)
	if err != nil {
		return nil, nil, explain(err)
	}
	log.Debug("fetched listing", "entries", len(snap.Entries), "elapsed", time.Since(start))

	if !flt.Empty() {
		var removed int
		snap.Entries, removed = flt.Apply(snap.Entries)
		log.Debug("excluded entries", "patterns", flt.Patterns(), "removed", removed)
	}

	if snap.BranchSwitched() {
		fmt.Fprintf(errOut, "\nℹ️  Branch '%s' not found.\n   Switched to default branch: '%s'\n", snap.Requested, snap.Ref.Branch)
	}
	if snap.Truncated {
		fmt.Fprintln(errOut, "\n⚠️  GitHub returned a truncated listing. Large repositories might be incomplete.")
	}
	if snap.Description != "" {
		log.Info("repository", "description", snap.Description)
	}

	session := view.NewSession(
		view.WithLogger(log),
		view.WithPolicy(opts.Sort),
		view.WithRenderOptions(filetree.Options{Style: opts.Style, Icons: opts.Icons}),
	)
	session.Load(snap)

	return session, snap, nil
}

// explain adds a hint to errors the user can act on.
func explain(err error) error {
	var rl *github.RateLimitError
	switch {
	case errors.As(err, &rl):
		wait := rl.Wait(time.Now()).Round(time.Minute)
		return fmt.Errorf("%w (about %s)\n   Tip: run 'ghtree token save <token>' to increase limits", err, wait)
	case errors.Is(err, github.ErrUnauthorized):
		return fmt.Errorf("%w\n   Tip: check the token with 'ghtree config get %s'", err, config.KeyToken)
	case errors.Is(err, github.ErrNotFound):
		return fmt.Errorf("%w\n   Tip: private repositories need a token with access", err)
	}
	return err
}
