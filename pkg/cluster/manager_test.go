package cluster

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surgecloud/surge/pkg/driver"
	"github.com/surgecloud/surge/pkg/spec"
)

// recordingHosts records every known_hosts cleanup request.
type recordingHosts struct {
	removed [][]string
	err     error
}

func (r *recordingHosts) RemoveIPs(ips []string) error {
	r.removed = append(r.removed, ips)
	return r.err
}

func liveClusters() []driver.Cluster {
	return []driver.Cluster{
		{Name: "alpha", Nodes: []driver.Node{
			{Name: "node1", ClusterName: "alpha", PublicIPs: []string{"192.0.2.10"}},
			{Name: "node2", ClusterName: "alpha", PublicIPs: []string{"192.0.2.11"}},
		}},
		{Name: "beta", Nodes: []driver.Node{
			{Name: "web1", ClusterName: "beta", PublicIPs: []string{"192.0.2.20"}},
		}},
	}
}

func TestCreateClusterIssuesOneCreateCall(t *testing.T) {
	fake := testInventory()
	hosts := &recordingHosts{}
	m := NewManager(fake, hosts, zerolog.Nop())

	created, err := m.CreateCluster(context.Background(), spec.New(), Overrides{Name: "demo"})
	require.NoError(t, err)

	require.Len(t, fake.created, 1)
	assert.Equal(t, "demo", fake.created[0].Name)
	assert.Equal(t, "demo", created.Name)
	assert.Len(t, created.Nodes, 3)

	// Fresh node IPs are purged from known_hosts.
	require.Len(t, hosts.removed, 1)
	assert.Contains(t, hosts.removed[0], "192.0.2.1")
}

func TestCreateClusterAbortsBeforeMutationOnResolutionError(t *testing.T) {
	fake := testInventory()
	m := NewManager(fake, nil, zerolog.Nop())

	_, err := m.CreateCluster(context.Background(), spec.New(), Overrides{ImageID: "windows-3.1"})

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "image", resErr.Kind)
	assert.Empty(t, fake.created)
	assert.Empty(t, fake.destroyed)
}

func TestCreateClusterDriverErrorPropagates(t *testing.T) {
	fake := testInventory()
	fake.createErr = errors.New("quota exceeded")
	m := NewManager(fake, nil, zerolog.Nop())

	_, err := m.CreateCluster(context.Background(), spec.New(), Overrides{})
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestDestroyClusters(t *testing.T) {
	fake := testInventory()
	fake.clusters = liveClusters()
	hosts := &recordingHosts{}
	m := NewManager(fake, hosts, zerolog.Nop())

	err := m.DestroyClusters(context.Background(), "alpha", "beta")
	require.NoError(t, err)

	assert.Equal(t, []string{"cluster:alpha", "cluster:beta"}, fake.destroyed)
	require.Len(t, hosts.removed, 2)
	assert.Equal(t, []string{"192.0.2.10", "192.0.2.11"}, hosts.removed[0])
}

func TestDestroyClustersFailsFastOnUnknownName(t *testing.T) {
	fake := testInventory()
	fake.clusters = liveClusters()
	m := NewManager(fake, nil, zerolog.Nop())

	err := m.DestroyClusters(context.Background(), "alpha", "ghost")

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "cluster", resErr.Kind)
	assert.Equal(t, "ghost", resErr.Ref)
	// Nothing is destroyed, not even the known names.
	assert.Empty(t, fake.destroyed)
}

func TestDestroyClustersCollectsDriverErrors(t *testing.T) {
	fake := testInventory()
	fake.clusters = liveClusters()
	fake.destroyErr = errors.New("locked")
	m := NewManager(fake, nil, zerolog.Nop())

	err := m.DestroyClusters(context.Background(), "alpha", "beta")

	assert.ErrorContains(t, err, "locked")
	// Both destroys are attempted despite the failures.
	assert.Len(t, fake.destroyed, 2)
}

func TestDestroyNodesFailsFastOnUnknownName(t *testing.T) {
	fake := testInventory()
	fake.clusters = liveClusters()
	m := NewManager(fake, nil, zerolog.Nop())

	err := m.DestroyNodes(context.Background(), "node1", "ghost")

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "node", resErr.Kind)
	assert.Empty(t, fake.destroyed)
}

func TestDestroyNodes(t *testing.T) {
	fake := testInventory()
	fake.clusters = liveClusters()
	m := NewManager(fake, nil, zerolog.Nop())

	err := m.DestroyNodes(context.Background(), "web1")
	require.NoError(t, err)
	assert.Equal(t, []string{"node:web1"}, fake.destroyed)
}

func TestNodesPrefixFilter(t *testing.T) {
	fake := testInventory()
	fake.clusters = liveClusters()
	m := NewManager(fake, nil, zerolog.Nop())

	tests := []struct {
		name     string
		prefixes []string
		want     []string
	}{
		{"no filter keeps all", nil, []string{"node1", "node2", "web1"}},
		{"single prefix", []string{"node"}, []string{"node1", "node2"}},
		{"several prefixes", []string{"web", "node2"}, []string{"node2", "web1"}},
		{"no match", []string{"db"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, err := m.Nodes(context.Background(), tt.prefixes)
			require.NoError(t, err)

			var names []string
			for _, node := range nodes {
				names = append(names, node.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestHostsCleanupFailureDoesNotFailOperation(t *testing.T) {
	fake := testInventory()
	hosts := &recordingHosts{err: errors.New("read-only fs")}
	m := NewManager(fake, hosts, zerolog.Nop())

	_, err := m.CreateCluster(context.Background(), spec.New(), Overrides{Name: "demo"})
	assert.NoError(t, err)
}
