// Package cli assembles the surge command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/surgecloud/surge/internal/commands"
)

// Root returns the root command for the surge CLI.
func Root() *cobra.Command {
	opts := &commands.RootOptions{}

	cmd := &cobra.Command{
		Use:   "surge",
		Short: "Provision and tear down compute clusters",
		Long: `surge provisions compute clusters from declarative cluster files
(JSON or the bracketed cluster syntax) against a pluggable cloud driver,
and tears them down again by name.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.Driver, "driver", "", "Cloud driver (hcloud or azure), overrides the config file")
	pf.StringVar(&opts.DriverConfig, "driver-config", "", "Path to the tool configuration file")
	pf.CountVarP(&opts.Verbosity, "verbose", "v", "Increase log verbosity (repeatable)")

	cmd.AddCommand(commands.Create(opts))
	cmd.AddCommand(commands.Destroy(opts))
	cmd.AddCommand(commands.List(opts))
	cmd.AddCommand(commands.Version())

	return cmd
}
