package cluster

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/surgecloud/surge/pkg/driver"
	"github.com/surgecloud/surge/pkg/spec"
)

// HostsCleaner removes addresses from the local SSH known_hosts cache.
// Cleanup failures are logged and never fail the surrounding operation.
type HostsCleaner interface {
	RemoveIPs(ips []string) error
}

// Manager drives cluster and node lifecycle operations against a single
// driver: resolve-then-create, name-mapped teardown, and the inventory
// listings behind the list commands.
type Manager struct {
	driver   driver.Driver
	resolver *Resolver
	hosts    HostsCleaner
	log      zerolog.Logger
}

// NewManager returns a manager for the given driver. hosts may be nil to
// skip known_hosts maintenance.
func NewManager(d driver.Driver, hosts HostsCleaner, log zerolog.Logger) *Manager {
	return &Manager{
		driver:   d,
		resolver: NewResolver(d, log),
		hosts:    hosts,
		log:      log,
	}
}

// CreateCluster resolves the spec plus overrides and issues exactly one
// creation call. All nodes in the cluster are started automatically by the
// driver. No creation call is attempted once resolution has failed, and a
// partially failed creation is the driver's to report; nothing is rolled
// back here.
func (m *Manager) CreateCluster(ctx context.Context, clusterSpec spec.ClusterSpec, ov Overrides) (*driver.Cluster, error) {
	req, err := m.resolver.Resolve(ctx, clusterSpec, ov)
	if err != nil {
		return nil, err
	}

	created, err := m.driver.CreateCluster(ctx, *req)
	if err != nil {
		return nil, err
	}

	m.log.Debug().Str("cluster", created.Name).Msg("cleaning up known_hosts")
	m.cleanupHosts(created.Nodes)

	return created, nil
}

// DestroyClusters tears down the named clusters. Every name is mapped to a
// live cluster before the first destroy call; an unknown name aborts the
// whole operation with no side effects.
func (m *Manager) DestroyClusters(ctx context.Context, names ...string) error {
	clusters, err := m.driver.ListClusters(ctx)
	if err != nil {
		return err
	}

	byName := make(map[string]*driver.Cluster, len(clusters))
	for i := range clusters {
		byName[clusters[i].Name] = &clusters[i]
	}

	targets := make([]*driver.Cluster, 0, len(names))
	for _, name := range names {
		target, ok := byName[name]
		if !ok {
			return &ResolutionError{Kind: "cluster", Ref: name}
		}
		targets = append(targets, target)
	}

	var errs []error
	for _, target := range targets {
		if err := m.driver.DestroyCluster(ctx, target); err != nil {
			errs = append(errs, err)
			continue
		}
		m.log.Info().Str("cluster", target.Name).Msg("cluster destroyed")
		m.cleanupHosts(target.Nodes)
	}
	return errors.Join(errs...)
}

// DestroyNodes tears down the named nodes, with the same map-first,
// fail-fast contract as DestroyClusters.
func (m *Manager) DestroyNodes(ctx context.Context, names ...string) error {
	nodes, err := m.driver.ListNodes(ctx)
	if err != nil {
		return err
	}

	byName := make(map[string]*driver.Node, len(nodes))
	for i := range nodes {
		byName[nodes[i].Name] = &nodes[i]
	}

	targets := make([]*driver.Node, 0, len(names))
	for _, name := range names {
		target, ok := byName[name]
		if !ok {
			return &ResolutionError{Kind: "node", Ref: name}
		}
		targets = append(targets, target)
	}

	var errs []error
	for _, target := range targets {
		if err := m.driver.DestroyNode(ctx, target); err != nil {
			errs = append(errs, err)
			continue
		}
		m.log.Info().Str("node", target.Name).Msg("node destroyed")
		m.cleanupHosts([]driver.Node{*target})
	}
	return errors.Join(errs...)
}

// Clusters lists all managed clusters.
func (m *Manager) Clusters(ctx context.Context) ([]driver.Cluster, error) {
	return m.driver.ListClusters(ctx)
}

// Images lists the driver image inventory.
func (m *Manager) Images(ctx context.Context) ([]driver.Image, error) {
	return m.driver.ListImages(ctx)
}

// Locations lists the driver location inventory.
func (m *Manager) Locations(ctx context.Context) ([]driver.Location, error) {
	return m.driver.ListLocations(ctx)
}

// Sizes lists the driver size catalog.
func (m *Manager) Sizes(ctx context.Context) ([]driver.Size, error) {
	return m.driver.ListSizes(ctx)
}

// Nodes lists managed nodes, keeping only those whose name starts with one
// of the given prefixes. An empty filter keeps everything.
func (m *Manager) Nodes(ctx context.Context, prefixes []string) ([]driver.Node, error) {
	nodes, err := m.driver.ListNodes(ctx)
	if err != nil {
		return nil, err
	}
	if len(prefixes) == 0 {
		return nodes, nil
	}

	filtered := nodes[:0]
	for _, node := range nodes {
		for _, prefix := range prefixes {
			if strings.HasPrefix(node.Name, prefix) {
				filtered = append(filtered, node)
				break
			}
		}
	}
	return filtered, nil
}

func (m *Manager) cleanupHosts(nodes []driver.Node) {
	if m.hosts == nil {
		return
	}
	var ips []string
	for _, node := range nodes {
		ips = append(ips, node.PublicIPs...)
	}
	if err := m.hosts.RemoveIPs(ips); err != nil {
		m.log.Warn().Err(err).Msg("known_hosts cleanup failed")
	}
}
