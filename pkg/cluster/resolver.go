// Package cluster turns a normalized cluster specification into live driver
// operations: resolving symbolic identifiers against the driver inventory,
// issuing the single creation call, and mapping names to driver objects for
// teardown.
package cluster

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/surgecloud/surge/pkg/driver"
	"github.com/surgecloud/surge/pkg/spec"
)

// Overrides carries the CLI flag values layered on top of a parsed spec.
// Zero values mean "not provided"; each field overrides its spec
// counterpart individually, never the spec as a whole.
type Overrides struct {
	Name  string
	CPUs  int
	RAMMb int
	// Disks holds user disk capacities; the OS disk prepend is reapplied
	// exactly once to the new list.
	Disks      []int
	ImageID    string
	LocationID string
	// NodeNames replaces the node list wholesale when non-empty.
	NodeNames []string
	// NodeCount regenerates synthesized names when NodeNames is empty.
	NodeCount int
}

// Resolver maps a merged ClusterSpec onto concrete driver inventory
// objects. All lookups are point-in-time reads over already-fetched lists;
// nothing is retried.
type Resolver struct {
	driver driver.Driver
	log    zerolog.Logger
}

// NewResolver returns a resolver backed by the given driver.
func NewResolver(d driver.Driver, log zerolog.Logger) *Resolver {
	return &Resolver{driver: d, log: log}
}

// Resolve merges the overrides into the spec field-by-field and resolves
// image, location, node names and size, in that fixed order. The first
// unresolvable reference aborts with a *ResolutionError before any
// mutating call can be issued.
func (r *Resolver) Resolve(ctx context.Context, clusterSpec spec.ClusterSpec, ov Overrides) (*driver.CreateClusterRequest, error) {
	merged := clusterSpec.Clone()

	// Name: override, else spec, else the default computed now.
	if ov.Name != "" {
		merged.Name = ov.Name
	}
	merged.FinalizeName()
	r.log.Info().Str("cluster", merged.Name).Msg("using cluster name")

	// Compute shape, field by field.
	if ov.CPUs > 0 {
		merged.CPUs = ov.CPUs
	}
	if ov.RAMMb > 0 {
		merged.RAMMb = ov.RAMMb
	}
	if ov.Disks != nil {
		merged.SetDisks(ov.Disks)
	}

	// Image: exact identifier match, no fuzzy fallback.
	if ov.ImageID != "" {
		merged.ImageID = ov.ImageID
	}
	image, err := r.resolveImage(ctx, merged.ImageID)
	if err != nil {
		return nil, err
	}
	r.log.Info().Str("image", image.Name).Msg("using image")

	// Location: only resolved when set; absence is a valid state.
	if ov.LocationID != "" {
		merged.LocationID = ov.LocationID
	}
	var location *driver.Location
	if merged.LocationID != "" {
		location, err = r.resolveLocation(ctx, merged.LocationID)
		if err != nil {
			return nil, err
		}
		r.log.Info().Str("location", location.Name).Msg("using location")
	}

	// Node names: explicit names win over a count; otherwise the spec stands.
	if len(ov.NodeNames) > 0 {
		merged.Nodes = spec.NamedNodes(ov.NodeNames)
	} else if ov.NodeCount > 0 {
		merged.Nodes = spec.CountNodes(ov.NodeCount)
	}
	r.log.Info().Str("nodes", strings.Join(merged.Nodes.Names(), ",")).Msg("using node names")

	if err := merged.Validate(); err != nil {
		return nil, err
	}

	// Size: exact (cpu, ram, disks) triple match against the catalog.
	size, err := r.resolveSize(ctx, merged.CPUs, merged.RAMMb, merged.Disks)
	if err != nil {
		return nil, err
	}
	r.log.Info().Str("size", size.Name).Msg("using size")

	return &driver.CreateClusterRequest{
		Name:      merged.Name,
		Image:     *image,
		Location:  location,
		NodeNames: merged.Nodes.Names(),
		Size:      *size,
	}, nil
}

func (r *Resolver) resolveImage(ctx context.Context, imageID string) (*driver.Image, error) {
	images, err := r.driver.ListImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	for i := range images {
		if images[i].ID == imageID {
			return &images[i], nil
		}
	}
	return nil, &ResolutionError{Kind: "image", Ref: imageID}
}

func (r *Resolver) resolveLocation(ctx context.Context, locationID string) (*driver.Location, error) {
	locations, err := r.driver.ListLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	for i := range locations {
		if locations[i].ID == locationID {
			return &locations[i], nil
		}
	}
	return nil, &ResolutionError{Kind: "location", Ref: locationID}
}

func (r *Resolver) resolveSize(ctx context.Context, cpus, ramMb int, disks []int) (*driver.Size, error) {
	sizes, err := r.driver.ListSizes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sizes: %w", err)
	}
	for i := range sizes {
		if sizes[i].Matches(cpus, ramMb, disks) {
			return &sizes[i], nil
		}
	}
	ref := fmt.Sprintf("%d cpus, %d MB ram, %v GB disks", cpus, ramMb, disks)
	return nil, &ResolutionError{Kind: "size", Ref: ref}
}
