// Package driver defines the cloud driver abstraction: inventory listings
// (images, locations, sizes, clusters, nodes) and the mutating cluster and
// node operations. Concrete drivers live in the subpackages.
package driver

import (
	"context"
	"sort"
)

// Driver is the interface to a cloud provider. Listing calls are ordinary
// blocking point-in-time reads; the mutating calls are treated as atomic by
// callers, which never retry or roll back on their behalf.
type Driver interface {
	// ListImages returns the image inventory.
	ListImages(ctx context.Context) ([]Image, error)

	// ListLocations returns the location inventory.
	ListLocations(ctx context.Context) ([]Location, error)

	// ListSizes returns the size catalog.
	ListSizes(ctx context.Context) ([]Size, error)

	// ListClusters returns all clusters managed by this driver.
	ListClusters(ctx context.Context) ([]Cluster, error)

	// ListNodes returns all nodes managed by this driver.
	ListNodes(ctx context.Context) ([]Node, error)

	// CreateCluster provisions a cluster with one node per requested name.
	CreateCluster(ctx context.Context, req CreateClusterRequest) (*Cluster, error)

	// DestroyCluster removes a cluster and all of its nodes.
	DestroyCluster(ctx context.Context, cluster *Cluster) error

	// DestroyNode removes a single node.
	DestroyNode(ctx context.Context, node *Node) error
}

// Image is an OS image in the driver inventory.
type Image struct {
	ID   string
	Name string
}

// Location is a datacenter location in the driver inventory.
type Location struct {
	ID      string
	Name    string
	Country string
	Extra   map[string]string
}

// Size is a compute shape in the driver catalog.
type Size struct {
	ID    string
	Name  string
	CPUs  int
	RAMMb int
	// Disks holds the disk capacities in GB attached to this size.
	Disks []int
	Extra map[string]string
}

// Matches reports whether the size carries exactly the given shape. Drivers
// expose exact-triple matching only; there is no fuzzy sizing.
func (s Size) Matches(cpus, ramMb int, disks []int) bool {
	if s.CPUs != cpus || s.RAMMb != ramMb || len(s.Disks) != len(disks) {
		return false
	}
	for i, capacity := range disks {
		if s.Disks[i] != capacity {
			return false
		}
	}
	return true
}

// NodeState is the lifecycle state a driver reports for a node.
type NodeState string

const (
	NodeStateStarting NodeState = "starting"
	NodeStateRunning  NodeState = "running"
	NodeStateStopped  NodeState = "stopped"
	NodeStateDeleting NodeState = "deleting"
	NodeStateUnknown  NodeState = "unknown"
)

// Node is a provisioned machine.
type Node struct {
	ID          string
	Name        string
	ClusterName string
	PublicIPs   []string
	PrivateIPs  []string
	State       NodeState
	Size        Size
	Extra       map[string]string
}

// Cluster is a named group of nodes.
type Cluster struct {
	Name  string
	Nodes []Node
}

// NodeNames returns the cluster's node names in sorted order.
func (c Cluster) NodeNames() []string {
	names := make([]string, len(c.Nodes))
	for i, node := range c.Nodes {
		names[i] = node.Name
	}
	sort.Strings(names)
	return names
}

// CreateClusterRequest carries fully resolved driver handles. The location
// is nil when the spec left it unspecified, a valid state for drivers with
// a default placement.
type CreateClusterRequest struct {
	Name      string
	Image     Image
	Location  *Location
	NodeNames []string
	Size      Size
}
