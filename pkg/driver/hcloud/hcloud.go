// Package hcloud implements the cloud driver for Hetzner Cloud. Clusters
// are modelled as a shared label on the member servers; there is no
// server-side grouping object to create or delete.
package hcloud

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/rs/zerolog"

	"github.com/surgecloud/surge/pkg/driver"
	"github.com/surgecloud/surge/pkg/httputil"
)

// clusterLabel marks servers as members of a named cluster.
const clusterLabel = "surge-cluster"

// Driver talks to the Hetzner Cloud API.
type Driver struct {
	client *hcloud.Client
	log    zerolog.Logger
}

// New returns a driver authenticated with the given API token.
func New(token string, log zerolog.Logger) (*Driver, error) {
	token = sanitizeToken(token)
	if token == "" {
		return nil, fmt.Errorf("API token is required")
	}

	client := hcloud.NewClient(
		hcloud.WithToken(token),
		hcloud.WithHTTPClient(httputil.NewClient(30*time.Second)),
	)
	return &Driver{client: client, log: log}, nil
}

// sanitizeToken strips whitespace and control characters that sneak in when
// tokens are pasted from clipboards or files with odd line endings.
func sanitizeToken(token string) string {
	var b strings.Builder
	b.Grow(len(token))
	for _, r := range strings.TrimSpace(token) {
		if r >= 0x21 && r <= 0x7E {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ListImages returns the system images. The image name doubles as the
// identifier, matching how images are referenced in cluster files.
func (d *Driver) ListImages(ctx context.Context) ([]driver.Image, error) {
	images, err := d.client.Image.AllWithOpts(ctx, hcloud.ImageListOpts{
		Type: []hcloud.ImageType{hcloud.ImageTypeSystem},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	result := make([]driver.Image, 0, len(images))
	for _, image := range images {
		name := image.Description
		if name == "" {
			name = image.Name
		}
		result = append(result, driver.Image{ID: image.Name, Name: name})
	}
	return result, nil
}

// ListLocations returns the datacenter locations.
func (d *Driver) ListLocations(ctx context.Context) ([]driver.Location, error) {
	locations, err := d.client.Location.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}

	result := make([]driver.Location, 0, len(locations))
	for _, location := range locations {
		result = append(result, driver.Location{
			ID:      location.Name,
			Name:    location.Description,
			Country: location.Country,
			Extra:   map[string]string{"city": location.City},
		})
	}
	return result, nil
}

// ListSizes returns the server type catalog.
func (d *Driver) ListSizes(ctx context.Context) ([]driver.Size, error) {
	serverTypes, err := d.client.ServerType.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list server types: %w", err)
	}

	result := make([]driver.Size, 0, len(serverTypes))
	for _, st := range serverTypes {
		result = append(result, convertSize(st))
	}
	return result, nil
}

// ListClusters groups the labelled servers by cluster name.
func (d *Driver) ListClusters(ctx context.Context) ([]driver.Cluster, error) {
	nodes, err := d.ListNodes(ctx)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*driver.Cluster)
	var order []string
	for _, node := range nodes {
		cluster, ok := byName[node.ClusterName]
		if !ok {
			cluster = &driver.Cluster{Name: node.ClusterName}
			byName[node.ClusterName] = cluster
			order = append(order, node.ClusterName)
		}
		cluster.Nodes = append(cluster.Nodes, node)
	}

	result := make([]driver.Cluster, 0, len(order))
	for _, name := range order {
		result = append(result, *byName[name])
	}
	return result, nil
}

// ListNodes returns every server carrying the cluster label.
func (d *Driver) ListNodes(ctx context.Context) ([]driver.Node, error) {
	servers, err := d.client.Server.AllWithOpts(ctx, hcloud.ServerListOpts{
		ListOpts: hcloud.ListOpts{LabelSelector: clusterLabel},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}

	result := make([]driver.Node, 0, len(servers))
	for _, server := range servers {
		result = append(result, convertServer(server))
	}
	return result, nil
}

// CreateCluster creates one server per node name, all labelled with the
// cluster name. A failed creation aborts the loop; servers created before
// the failure are left running and reported via the error.
func (d *Driver) CreateCluster(ctx context.Context, req driver.CreateClusterRequest) (*driver.Cluster, error) {
	serverType, _, err := d.client.ServerType.GetByName(ctx, req.Size.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get server type: %w", err)
	}
	if serverType == nil {
		return nil, fmt.Errorf("server type not found: %s", req.Size.ID)
	}

	image, _, err := d.client.Image.GetByName(ctx, req.Image.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	if image == nil {
		return nil, fmt.Errorf("image not found: %s", req.Image.ID)
	}

	var location *hcloud.Location
	if req.Location != nil {
		location, _, err = d.client.Location.GetByName(ctx, req.Location.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get location: %w", err)
		}
		if location == nil {
			return nil, fmt.Errorf("location not found: %s", req.Location.ID)
		}
	}

	cluster := &driver.Cluster{Name: req.Name}
	for _, nodeName := range req.NodeNames {
		opts := hcloud.ServerCreateOpts{
			Name:             nodeName,
			ServerType:       serverType,
			Image:            image,
			Location:         location,
			Labels:           map[string]string{clusterLabel: req.Name},
			StartAfterCreate: hcloud.Ptr(true),
		}

		result, _, err := d.client.Server.Create(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to create node %s (%d of %d created): %w",
				nodeName, len(cluster.Nodes), len(req.NodeNames), err)
		}

		node := convertServer(result.Server)
		node.Extra = map[string]string{"ssh_user": "root"}
		if result.RootPassword != "" {
			node.Extra["password"] = result.RootPassword
		}
		cluster.Nodes = append(cluster.Nodes, node)
		d.log.Info().Str("node", nodeName).Str("cluster", req.Name).Msg("node created")
	}

	return cluster, nil
}

// DestroyCluster deletes every server carrying the cluster's label.
func (d *Driver) DestroyCluster(ctx context.Context, cluster *driver.Cluster) error {
	selector := fmt.Sprintf("%s=%s", clusterLabel, cluster.Name)
	servers, err := d.client.Server.AllWithOpts(ctx, hcloud.ServerListOpts{
		ListOpts: hcloud.ListOpts{LabelSelector: selector},
	})
	if err != nil {
		return fmt.Errorf("failed to list cluster servers: %w", err)
	}

	var errs []error
	for _, server := range servers {
		if _, _, err := d.client.Server.DeleteWithResult(ctx, server); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete node %s: %w", server.Name, err))
			continue
		}
		d.log.Info().Str("node", server.Name).Str("cluster", cluster.Name).Msg("node deleted")
	}
	return errors.Join(errs...)
}

// DestroyNode deletes a single server by name.
func (d *Driver) DestroyNode(ctx context.Context, node *driver.Node) error {
	server, _, err := d.client.Server.GetByName(ctx, node.Name)
	if err != nil {
		return fmt.Errorf("failed to get server: %w", err)
	}
	if server == nil {
		return fmt.Errorf("server not found: %s", node.Name)
	}

	if _, _, err := d.client.Server.DeleteWithResult(ctx, server); err != nil {
		return fmt.Errorf("failed to delete server: %w", err)
	}
	return nil
}

func convertServer(server *hcloud.Server) driver.Node {
	var publicIPs []string
	if server.PublicNet.IPv4.IP != nil {
		publicIPs = append(publicIPs, server.PublicNet.IPv4.IP.String())
	}
	if server.PublicNet.IPv6.IP != nil {
		publicIPs = append(publicIPs, server.PublicNet.IPv6.IP.String())
	}

	var privateIPs []string
	for _, net := range server.PrivateNet {
		if net.IP != nil {
			privateIPs = append(privateIPs, net.IP.String())
		}
	}

	return driver.Node{
		ID:          fmt.Sprintf("%d", server.ID),
		Name:        server.Name,
		ClusterName: server.Labels[clusterLabel],
		PublicIPs:   publicIPs,
		PrivateIPs:  privateIPs,
		State:       convertState(server.Status),
		Size:        convertSize(server.ServerType),
	}
}

func convertSize(st *hcloud.ServerType) driver.Size {
	return driver.Size{
		ID:    st.Name,
		Name:  st.Description,
		CPUs:  st.Cores,
		RAMMb: int(st.Memory * 1024),
		Disks: []int{st.Disk},
		Extra: map[string]string{
			"architecture": string(st.Architecture),
			"storage":      string(st.StorageType),
		},
	}
}

func convertState(status hcloud.ServerStatus) driver.NodeState {
	switch status {
	case hcloud.ServerStatusInitializing, hcloud.ServerStatusStarting:
		return driver.NodeStateStarting
	case hcloud.ServerStatusRunning:
		return driver.NodeStateRunning
	case hcloud.ServerStatusStopping, hcloud.ServerStatusOff:
		return driver.NodeStateStopped
	case hcloud.ServerStatusDeleting:
		return driver.NodeStateDeleting
	default:
		return driver.NodeStateUnknown
	}
}
