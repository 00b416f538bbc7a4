package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surgecloud/surge/pkg/cluster"
	"github.com/surgecloud/surge/pkg/config"
	"github.com/surgecloud/surge/pkg/driver"
)

// stubDriver serves a fixed inventory and records mutations.
type stubDriver struct {
	created   []driver.CreateClusterRequest
	destroyed []string
	clusters  []driver.Cluster
}

func (s *stubDriver) ListImages(context.Context) ([]driver.Image, error) {
	return []driver.Image{{ID: "centos-7.2", Name: "CentOS 7.2"}}, nil
}

func (s *stubDriver) ListLocations(context.Context) ([]driver.Location, error) {
	return []driver.Location{{ID: "fsn1", Name: "Falkenstein", Country: "DE"}}, nil
}

func (s *stubDriver) ListSizes(context.Context) ([]driver.Size, error) {
	return []driver.Size{{ID: "small", Name: "Small", CPUs: 2, RAMMb: 2048, Disks: []int{100}}}, nil
}

func (s *stubDriver) ListClusters(context.Context) ([]driver.Cluster, error) {
	return s.clusters, nil
}

func (s *stubDriver) ListNodes(context.Context) ([]driver.Node, error) {
	var nodes []driver.Node
	for _, c := range s.clusters {
		nodes = append(nodes, c.Nodes...)
	}
	return nodes, nil
}

func (s *stubDriver) CreateCluster(_ context.Context, req driver.CreateClusterRequest) (*driver.Cluster, error) {
	s.created = append(s.created, req)
	c := driver.Cluster{Name: req.Name}
	for _, name := range req.NodeNames {
		c.Nodes = append(c.Nodes, driver.Node{Name: name, ClusterName: req.Name, State: driver.NodeStateRunning})
	}
	return &c, nil
}

func (s *stubDriver) DestroyCluster(_ context.Context, c *driver.Cluster) error {
	s.destroyed = append(s.destroyed, c.Name)
	return nil
}

func (s *stubDriver) DestroyNode(_ context.Context, n *driver.Node) error {
	s.destroyed = append(s.destroyed, n.Name)
	return nil
}

// withStubDriver reroutes driver construction and known_hosts maintenance
// for the duration of a test.
func withStubDriver(t *testing.T) *stubDriver {
	t.Helper()
	stub := &stubDriver{}

	origDriver := newDriver
	origHosts := knownhostsFile
	newDriver = func(*config.Config, zerolog.Logger) (driver.Driver, error) { return stub, nil }
	knownhostsFile = func() (cluster.HostsCleaner, error) { return nil, nil }
	t.Cleanup(func() {
		newDriver = origDriver
		knownhostsFile = origHosts
	})

	return stub
}

func testRootOptions(t *testing.T) *RootOptions {
	t.Helper()
	path := filepath.Join(t.TempDir(), "surge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("driver: hcloud\nhcloud:\n  token: test\n"), 0o600))
	return &RootOptions{DriverConfig: path}
}

func TestCreateClusterCommand(t *testing.T) {
	stub := withStubDriver(t)
	opts := testRootOptions(t)

	specPath := filepath.Join(t.TempDir(), "demo.surge")
	require.NoError(t, os.WriteFile(specPath, []byte("cluster { name: demo nodes: 2 }"), 0o600))

	var out bytes.Buffer
	cmd := Create(opts)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"cluster", "-c", specPath})

	require.NoError(t, cmd.Execute())

	require.Len(t, stub.created, 1)
	assert.Equal(t, "demo", stub.created[0].Name)
	assert.Equal(t, []string{"node1", "node2"}, stub.created[0].NodeNames)
	assert.Contains(t, out.String(), "node1")
}

func TestCreateClusterNodeArgsReplaceFileNodes(t *testing.T) {
	stub := withStubDriver(t)
	opts := testRootOptions(t)

	var out bytes.Buffer
	cmd := Create(opts)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"cluster", "--cluster", "demo", "web1", "web2"})

	require.NoError(t, cmd.Execute())

	require.Len(t, stub.created, 1)
	assert.Equal(t, []string{"web1", "web2"}, stub.created[0].NodeNames)
}

func TestCreateClusterUnknownImageFailsWithoutMutation(t *testing.T) {
	stub := withStubDriver(t)
	opts := testRootOptions(t)

	cmd := Create(opts)
	cmd.SetArgs([]string{"cluster", "--image", "windows-3.1"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.Execute()
	var resErr *cluster.ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Empty(t, stub.created)
}

func TestDestroyClusterCommand(t *testing.T) {
	stub := withStubDriver(t)
	stub.clusters = []driver.Cluster{{Name: "alpha"}}
	opts := testRootOptions(t)

	cmd := Destroy(opts)
	cmd.SetArgs([]string{"cluster", "alpha"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, []string{"alpha"}, stub.destroyed)
}

func TestDestroyNodeUnknownNameFailsFast(t *testing.T) {
	stub := withStubDriver(t)
	stub.clusters = []driver.Cluster{{Name: "alpha", Nodes: []driver.Node{{Name: "node1", ClusterName: "alpha"}}}}
	opts := testRootOptions(t)

	cmd := Destroy(opts)
	cmd.SetArgs([]string{"node", "ghost"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.Execute()
	var resErr *cluster.ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Empty(t, stub.destroyed)
}

func TestListSizesJSON(t *testing.T) {
	withStubDriver(t)
	opts := testRootOptions(t)

	var out bytes.Buffer
	cmd := List(opts)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"sizes", "--format", "json"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `"small"`)
}

func TestListBadFormat(t *testing.T) {
	withStubDriver(t)
	opts := testRootOptions(t)

	cmd := List(opts)
	cmd.SetArgs([]string{"images", "--format", "xml"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	assert.ErrorContains(t, cmd.Execute(), "unsupported format")
}

func TestVersionCommand(t *testing.T) {
	SetVersionInfo("1.2.3", "abc", "today")
	t.Cleanup(func() { SetVersionInfo("dev", "none", "unknown") })

	var out bytes.Buffer
	cmd := Version()
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "surge 1.2.3")
	assert.Contains(t, out.String(), "commit: abc")
}
