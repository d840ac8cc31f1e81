package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sizemap/pkg/config"
)

// configCommand creates the config inspection command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return fmt.Errorf("get config path: %w", err)
				}
				path = p
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Config.Write(cmd.OutOrStdout())
		},
	})

	return cmd
}
