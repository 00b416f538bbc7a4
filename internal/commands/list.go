package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/surgecloud/surge/pkg/render"
)

// List returns the list command group.
func List(opts *RootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List driver inventory and managed resources",
	}
	cmd.PersistentFlags().StringVar(&format, "format", "table", "Output format (table or json)")

	cmd.AddCommand(listClusters(opts, &format))
	cmd.AddCommand(listImages(opts, &format))
	cmd.AddCommand(listLocations(opts, &format))
	cmd.AddCommand(listNodes(opts, &format))
	cmd.AddCommand(listSizes(opts, &format))
	return cmd
}

func listClusters(opts *RootOptions, format *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clusters",
		Short: "List managed clusters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := opts.Manager()
			if err != nil {
				return err
			}
			clusters, err := mgr.Clusters(cmd.Context())
			if err != nil {
				return err
			}
			return emit(cmd, *format, clusters, func() string { return render.Clusters(clusters) })
		},
	}
}

func listImages(opts *RootOptions, format *string) *cobra.Command {
	return &cobra.Command{
		Use:   "images",
		Short: "List the driver image catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := opts.Manager()
			if err != nil {
				return err
			}
			images, err := mgr.Images(cmd.Context())
			if err != nil {
				return err
			}
			return emit(cmd, *format, images, func() string { return render.Images(images) })
		},
	}
}

func listLocations(opts *RootOptions, format *string) *cobra.Command {
	return &cobra.Command{
		Use:   "locations",
		Short: "List the driver location catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := opts.Manager()
			if err != nil {
				return err
			}
			locations, err := mgr.Locations(cmd.Context())
			if err != nil {
				return err
			}
			return emit(cmd, *format, locations, func() string { return render.Locations(locations) })
		},
	}
}

func listNodes(opts *RootOptions, format *string) *cobra.Command {
	var (
		passwords bool
		filters   []string
	)

	cmd := &cobra.Command{
		Use:   "nodes",
		Short: "List managed nodes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := opts.Manager()
			if err != nil {
				return err
			}
			nodes, err := mgr.Nodes(cmd.Context(), filters)
			if err != nil {
				return err
			}
			return emit(cmd, *format, nodes, func() string { return render.Nodes(nodes, passwords) })
		},
	}

	cmd.Flags().BoolVar(&passwords, "passwords", false, "Show initial root passwords where the driver reports them")
	cmd.Flags().StringSliceVar(&filters, "filter", nil, "Keep only nodes whose name starts with PREFIX (repeatable)")
	return cmd
}

func listSizes(opts *RootOptions, format *string) *cobra.Command {
	var extras bool

	cmd := &cobra.Command{
		Use:   "sizes",
		Short: "List the driver size catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := opts.Manager()
			if err != nil {
				return err
			}
			sizes, err := mgr.Sizes(cmd.Context())
			if err != nil {
				return err
			}
			return emit(cmd, *format, sizes, func() string { return render.Sizes(sizes, extras) })
		},
	}

	cmd.Flags().BoolVar(&extras, "extras", false, "Show driver-specific extra columns")
	return cmd
}

// emit writes the listing in the requested format.
func emit(cmd *cobra.Command, format string, v any, table func() string) error {
	switch format {
	case "json":
		out, err := render.JSON(v)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
	case "table":
		fmt.Fprint(cmd.OutOrStdout(), table())
	default:
		return fmt.Errorf("unsupported format: %s (supported: table, json)", format)
	}
	return nil
}
