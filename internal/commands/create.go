package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/surgecloud/surge/pkg/cluster"
	"github.com/surgecloud/surge/pkg/deploy"
	"github.com/surgecloud/surge/pkg/render"
	"github.com/surgecloud/surge/pkg/spec"
	"github.com/surgecloud/surge/pkg/sshutil"
)

// Create returns the create command group.
func Create(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Provision resources",
	}
	cmd.AddCommand(createCluster(opts))
	return cmd
}

func createCluster(opts *RootOptions) *cobra.Command {
	var (
		configPath string
		name       string
		cpus       int
		ramMb      int
		disks      []int
		imageID    string
		locationID string
		nodeCount  int
	)

	cmd := &cobra.Command{
		Use:   "cluster [NODE...]",
		Short: "Create a cluster from a cluster file and flag overrides",
		Long: `Create provisions a cluster described by a cluster file (JSON or the
bracketed cluster syntax), with individual fields overridable by flags.
Node names given as arguments replace the file's node list wholesale.

Example:
  surge create cluster -c demo.surge --nodes 5 --disk 50 --disk 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := opts.Logger()

			cfg := &spec.Config{Cluster: spec.New()}
			if configPath != "" {
				format, err := spec.FormatForPath(configPath)
				if err != nil {
					return err
				}
				text, err := os.ReadFile(configPath)
				if err != nil {
					return fmt.Errorf("failed to read cluster file: %w", err)
				}
				cfg, err = spec.Parse(text, format)
				if err != nil {
					return err
				}
				for _, warning := range cfg.Warnings {
					log.Warn().Msg(warning)
				}
			}

			ov := cluster.Overrides{
				Name:       name,
				CPUs:       cpus,
				RAMMb:      ramMb,
				ImageID:    imageID,
				LocationID: locationID,
				NodeNames:  args,
				NodeCount:  nodeCount,
			}
			if cmd.Flags().Changed("disk") {
				ov.Disks = disks
			}

			mgr, err := opts.Manager()
			if err != nil {
				return err
			}

			created, err := mgr.CreateCluster(cmd.Context(), cfg.Cluster, ov)
			if err != nil {
				return err
			}
			log.Info().Str("cluster", created.Name).Int("nodes", len(created.Nodes)).Msg("cluster created")
			fmt.Fprint(cmd.OutOrStdout(), render.Nodes(created.Nodes, true))
			for _, node := range created.Nodes {
				if len(node.PublicIPs) == 0 {
					continue
				}
				user := node.Extra["ssh_user"]
				if user == "" {
					user = "root"
				}
				log.Info().Str("node", node.Name).Msgf("connect with %s", sshutil.Command(user, node.PublicIPs[0]))
			}

			if len(cfg.Deployments) > 0 {
				runner := deploy.LogRunner{Log: log}
				if failed := deploy.RunAll(cmd.Context(), runner, cfg.Deployments, created.Nodes, log); failed > 0 {
					return &ExitError{Code: failed}
				}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "Path to the cluster file (.json or .surge)")
	flags.StringVar(&name, "cluster", "", "Cluster name (default {user}-{timestamp})")
	flags.IntVar(&cpus, "cpus", 0, "CPUs per node")
	flags.IntVar(&ramMb, "ram", 0, "RAM per node in MB")
	flags.IntSliceVar(&disks, "disk", nil, "Data disk capacity in GB (repeatable, replaces the file's disks)")
	flags.StringVar(&imageID, "image", "", "Image identifier")
	flags.StringVar(&locationID, "location", "", "Location identifier")
	flags.IntVar(&nodeCount, "nodes", 0, "Number of nodes (names are synthesized)")

	return cmd
}
