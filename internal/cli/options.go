package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/holonoms/ghtree/internal/config"
	"github.com/holonoms/ghtree/internal/export"
	"github.com/holonoms/ghtree/internal/filetree"
	"github.com/holonoms/ghtree/internal/filter"
	"github.com/holonoms/ghtree/internal/github"
	"github.com/holonoms/ghtree/internal/gitlocal"
	"github.com/holonoms/ghtree/internal/hierarchy"
	"github.com/holonoms/ghtree/internal/source"
)

// TokenEnv is the environment variable consulted for a token when no flag is
// given.
const TokenEnv = "GITHUB_TOKEN"

// Options holds the command-line options shared across commands
type Options struct {
	// Repo is the repository reference as typed by the user (see
	// source.ParseRef). Ignored when Local is set.
	Repo string

	// Branch overrides the branch named in Repo.
	Branch string

	// Token authenticates GitHub API requests. Resolved from the flag, then
	// $GITHUB_TOKEN, then the saved token.
	Token string

	// APIURL is the GitHub API root.
	APIURL string

	Sort   hierarchy.SortPolicy
	Style  filetree.Style
	Icons  bool
	Format export.Format

	// OutputFile writes the tree to a file instead of stdout.
	OutputFile string

	// NoCopy disables copying the tree to the clipboard.
	NoCopy bool

	// Header prints the repository name above the plain-text tree.
	Header bool

	// Exclude holds gitignore-style patterns; config and .ghtreeignore
	// patterns are added to them.
	Exclude []string

	// Local lists a repository on disk instead of fetching from GitHub.
	Local string

	// Worktree lists the files of Local instead of its committed tree.
	Worktree bool

	// ProjectDir is where the project config and ignore file are read from.
	// If empty, defaults to the current directory (".").
	ProjectDir string

	Verbose bool

	clipboard export.Clipboard
}

func (o *Options) addFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&o.Branch, "branch", "b", "", "Branch to list (default: the repository's default branch)")
	flags.StringVarP(&o.Token, "token", "t", "", "GitHub token (overrides $"+TokenEnv+" and the saved token)")
	flags.StringVar(&o.APIURL, "api-url", "", "GitHub API root (default: "+github.DefaultBaseURL+")")
	flags.VarP(&o.Sort, "sort", "s", "Sort policy: "+strings.Join(hierarchy.PolicyNames(), ", "))
	flags.Var(&o.Style, "style", "Tree style: "+strings.Join(filetree.StyleNames(), ", "))
	flags.BoolVar(&o.Icons, "icons", false, "Show icons in the plain-text tree")
	flags.VarP(&o.Format, "format", "f", "Output format: plain, ansi or html")
	flags.StringVarP(&o.OutputFile, "output", "o", "", "Write the tree to a file")
	flags.BoolVar(&o.NoCopy, "no-copy", false, "Do not copy the tree to the clipboard")
	flags.BoolVar(&o.Header, "header", false, "Print the repository name above the tree")
	flags.StringArrayVarP(&o.Exclude, "exclude", "x", nil, "Exclude paths matching a gitignore-style pattern (repeatable)")
	flags.StringVar(&o.Local, "local", "", "List a git repository on disk instead of GitHub")
	flags.BoolVar(&o.Worktree, "worktree", false, "With --local, list working files honouring .gitignore")
	flags.StringVar(&o.ProjectDir, "project-dir", "", "Directory holding the .ghtree config (default: .)")
}

// resolve fills every option the user did not set on the command line from
// the environment, then the config, then the defaults.
func (o *Options) resolve(flags *pflag.FlagSet, cfg *config.Config) error {
	if !flags.Changed("token") {
		if env := os.Getenv(TokenEnv); env != "" {
			o.Token = env
		} else {
			o.Token = cfg.Get(config.KeyToken)
		}
	}

	if !flags.Changed("api-url") {
		o.APIURL = cfg.Get(config.KeyAPIURL)
	}
	if o.APIURL == "" {
		o.APIURL = github.DefaultBaseURL
	}

	if !flags.Changed("sort") && cfg.Has(config.KeySort) {
		if err := o.Sort.Set(cfg.Get(config.KeySort)); err != nil {
			return fmt.Errorf("%s in %s: %w", config.KeySort, config.ProjectFile, err)
		}
	}
	if o.Sort == "" {
		o.Sort = hierarchy.DefaultSortPolicy
	}

	if !flags.Changed("style") && cfg.Has(config.KeyStyle) {
		if err := o.Style.Set(cfg.Get(config.KeyStyle)); err != nil {
			return fmt.Errorf("%s in %s: %w", config.KeyStyle, config.ProjectFile, err)
		}
	}
	if o.Style == "" {
		o.Style = filetree.Classic
	}

	if !flags.Changed("icons") {
		o.Icons = cfg.GetBool(config.KeyIcons, false)
	}

	if o.Format == "" {
		o.Format = export.Plain
	}

	o.Exclude = append(o.Exclude, cfg.GetList(config.KeyExclude)...)

	if o.clipboard == nil {
		o.clipboard = export.SystemClipboard{}
	}

	return nil
}

// filter combines the exclude patterns with the project's ignore file.
func (o *Options) filter() (*filter.Filter, error) {
	f, err := filter.LoadFile(filepath.Join(o.projectDir(), filter.IgnoreFile))
	if err != nil {
		return nil, err
	}
	return f.Merge(filter.New(o.Exclude...)), nil
}

// source picks the listing source and the reference to fetch.
func (o *Options) source(log *slog.Logger) (source.Source, source.Ref, error) {
	if o.Local != "" {
		ref := source.Ref{Branch: o.Branch}
		if o.Worktree {
			return gitlocal.OpenWorktree(o.Local), ref, nil
		}
		repo, err := gitlocal.Open(o.Local)
		if err != nil {
			return nil, source.Ref{}, err
		}
		return repo, ref, nil
	}

	ref, err := source.ParseRef(o.Repo)
	if err != nil {
		return nil, source.Ref{}, err
	}
	if o.Branch != "" {
		ref.Branch = o.Branch
	}

	client := github.New(
		github.WithBaseURL(o.APIURL),
		github.WithToken(o.Token),
		github.WithLogger(log),
	)
	return client, ref, nil
}

func (o *Options) projectDir() string {
	if o.ProjectDir == "" {
		return "."
	}
	return o.ProjectDir
}

// newLogger logs warnings to w, or everything when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
