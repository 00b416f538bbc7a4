package commands

import (
	"github.com/spf13/cobra"
)

// Destroy returns the destroy command group.
func Destroy(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Tear down resources",
	}
	cmd.AddCommand(destroyCluster(opts))
	cmd.AddCommand(destroyNode(opts))
	return cmd
}

func destroyCluster(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cluster NAME...",
		Short: "Destroy clusters and all of their nodes",
		Long: `Destroy tears down the named clusters. Every name is checked against
the live cluster list before anything is destroyed; an unknown name aborts
the whole operation with no side effects.

WARNING: This operation is irreversible. All node data will be lost.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := opts.Manager()
			if err != nil {
				return err
			}
			return mgr.DestroyClusters(cmd.Context(), args...)
		},
	}
}

func destroyNode(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "node NAME...",
		Short: "Destroy individual nodes",
		Long: `Destroy tears down the named nodes, leaving the rest of their clusters
in place. Unknown names abort the whole operation before anything is
destroyed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := opts.Manager()
			if err != nil {
				return err
			}
			return mgr.DestroyNodes(cmd.Context(), args...)
		},
	}
}
