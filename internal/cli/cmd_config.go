package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/holonoms/ghtree/internal/config"
	"github.com/holonoms/ghtree/internal/filetree"
	"github.com/holonoms/ghtree/internal/hierarchy"
)

// MARK: Sub-commands

// newConfigCmd creates the config command and its subcommands
func newConfigCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(
		newConfigListCmd(opts),
		newConfigGetCmd(opts),
		newConfigSetCmd(opts),
		newConfigUnsetCmd(opts),
	)

	return cmd
}

func newConfigListCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigList(cmd.OutOrStdout(), opts)
		},
	}

	return cmd
}

func runConfigList(w io.Writer, opts *Options) error {
	cfg, err := config.New(opts.projectDir())
	if err != nil {
		return fmt.Errorf("unable to load config: %w", err)
	}

	fmt.Fprintln(w, "Available configuration options:")
	fmt.Fprintln(w)

	for _, key := range config.Keys {
		scope := "project"
		if key.Global {
			scope = "global"
		}
		fmt.Fprintf(w, "  %s (%s)\n", key.Name, scope)
		fmt.Fprintf(w, "    Description: %s\n", key.Usage)

		if cfg.Has(key.Name) {
			fmt.Fprintf(w, "    Current: %s\n", display(key, cfg.Get(key.Name)))
		} else {
			fmt.Fprintln(w, "    Current: (default)")
		}
		fmt.Fprintln(w)
	}

	return nil
}

func newConfigSetCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd.OutOrStdout(), opts, args[0], args[1])
		},
		ValidArgsFunction: func(
			_ *cobra.Command,
			args []string,
			_ string,
		) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return configKeys(), cobra.ShellCompDirectiveNoFileComp
			}
			if len(args) == 1 {
				return validValues(args[0]), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	return cmd
}

func runConfigSet(w io.Writer, opts *Options, key, value string) error {
	if err := config.Validate(key, value); err != nil {
		return fmt.Errorf("%w\n\nRun 'ghtree config list' to see available options", err)
	}

	cfg, err := config.New(opts.projectDir())
	if err != nil {
		return fmt.Errorf("unable to load config: %w", err)
	}

	if err := cfg.Set(key, value); err != nil {
		return fmt.Errorf("unable to set config: %w", err)
	}

	k, _ := config.LookupKey(key)
	fmt.Fprintf(w, "Set %s = %s\n", key, display(k, value))
	return nil
}

func newConfigGetCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd.OutOrStdout(), opts, args[0])
		},
		ValidArgsFunction: func(
			_ *cobra.Command,
			args []string,
			_ string,
		) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return configKeys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	return cmd
}

func runConfigGet(w io.Writer, opts *Options, key string) error {
	k, ok := config.LookupKey(key)
	if !ok {
		return fmt.Errorf("unknown configuration option: %s\n\nRun 'ghtree config list' to see available options", key)
	}

	cfg, err := config.New(opts.projectDir())
	if err != nil {
		return fmt.Errorf("unable to load config: %w", err)
	}

	if !cfg.Has(key) {
		fmt.Fprintf(w, "%s = (default)\n", key)
		return nil
	}

	fmt.Fprintf(w, "%s = %s\n", key, display(k, cfg.Get(key)))
	return nil
}

func newConfigUnsetCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unset <key>",
		Short: "Unset a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigUnset(cmd.OutOrStdout(), opts, args[0])
		},
		ValidArgsFunction: func(
			_ *cobra.Command,
			args []string,
			_ string,
		) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return configKeys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	return cmd
}

func runConfigUnset(w io.Writer, opts *Options, key string) error {
	if _, ok := config.LookupKey(key); !ok {
		return fmt.Errorf("unknown configuration option: %s", key)
	}

	cfg, err := config.New(opts.projectDir())
	if err != nil {
		return fmt.Errorf("unable to load config: %w", err)
	}

	if err := cfg.Delete(key); err != nil {
		return fmt.Errorf("unable to unset config: %w", err)
	}

	fmt.Fprintf(w, "Unset %s\n", key)
	return nil
}

// MARK: Helpers

func configKeys() []string {
	keys := make([]string, len(config.Keys))
	for i, k := range config.Keys {
		keys[i] = k.Name
	}
	return keys
}

func validValues(key string) []string {
	switch key {
	case config.KeySort:
		return hierarchy.PolicyNames()
	case config.KeyStyle:
		return filetree.StyleNames()
	case config.KeyIcons:
		return []string{"true", "false"}
	}
	return nil
}

// display masks secret values, keeping the last four characters.
func display(k config.Key, value string) string {
	if !k.Secret || value == "" {
		return value
	}
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
}
