package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/holonoms/ghtree/internal/config"
)

// newTokenCmd creates the token command, which manages the saved GitHub token
func newTokenCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the saved GitHub token",
		Long: `Manage the GitHub token used for API requests. A token raises the
rate limit and gives access to private repositories. A --token flag or
$` + TokenEnv + ` takes precedence over the saved token.`,
	}

	saveCmd := &cobra.Command{
		Use:   "save <token>",
		Short: "Save a token to the global config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := strings.TrimSpace(args[0])
			if token == "" {
				return errors.New("token must not be empty")
			}

			cfg, err := config.New(opts.projectDir())
			if err != nil {
				return fmt.Errorf("unable to load config: %w", err)
			}
			if err := cfg.Set(config.KeyToken, token); err != nil {
				return fmt.Errorf("unable to save token: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ Token saved to %s\n", cfg.GlobalPath())
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the saved token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.New(opts.projectDir())
			if err != nil {
				return fmt.Errorf("unable to load config: %w", err)
			}
			if !cfg.Has(config.KeyToken) {
				fmt.Fprintln(cmd.OutOrStdout(), "No token saved")
				return nil
			}
			if err := cfg.Delete(config.KeyToken); err != nil {
				return fmt.Errorf("unable to clear token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Token cleared")
			return nil
		},
	}

	cmd.AddCommand(saveCmd, clearCmd)
	return cmd
}
