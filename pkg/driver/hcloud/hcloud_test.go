package hcloud

import (
	"net"
	"testing"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/surgecloud/surge/pkg/driver"
)

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"clean", "abc123", "abc123"},
		{"surrounding whitespace", "  abc123\n", "abc123"},
		{"embedded carriage return", "abc\r123", "abc123"},
		{"bom", "\uFEFFabc123", "abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeToken(tt.token))
		})
	}
}

func TestConvertSize(t *testing.T) {
	st := &hcloud.ServerType{
		Name:         "cx21",
		Description:  "CX21",
		Cores:        2,
		Memory:       4,
		Disk:         40,
		Architecture: hcloud.ArchitectureX86,
		StorageType:  hcloud.StorageTypeLocal,
	}

	size := convertSize(st)
	assert.Equal(t, "cx21", size.ID)
	assert.Equal(t, 2, size.CPUs)
	assert.Equal(t, 4096, size.RAMMb)
	assert.Equal(t, []int{40}, size.Disks)
	assert.Equal(t, "x86", size.Extra["architecture"])
}

func TestConvertState(t *testing.T) {
	tests := []struct {
		status hcloud.ServerStatus
		want   driver.NodeState
	}{
		{hcloud.ServerStatusInitializing, driver.NodeStateStarting},
		{hcloud.ServerStatusStarting, driver.NodeStateStarting},
		{hcloud.ServerStatusRunning, driver.NodeStateRunning},
		{hcloud.ServerStatusOff, driver.NodeStateStopped},
		{hcloud.ServerStatusStopping, driver.NodeStateStopped},
		{hcloud.ServerStatusDeleting, driver.NodeStateDeleting},
		{hcloud.ServerStatusMigrating, driver.NodeStateUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, convertState(tt.status), string(tt.status))
	}
}

func TestConvertServer(t *testing.T) {
	server := &hcloud.Server{
		ID:     42,
		Name:   "node1",
		Status: hcloud.ServerStatusRunning,
		Labels: map[string]string{clusterLabel: "demo"},
		PublicNet: hcloud.ServerPublicNet{
			IPv4: hcloud.ServerPublicNetIPv4{IP: net.ParseIP("192.0.2.1")},
		},
		PrivateNet: []hcloud.ServerPrivateNet{
			{IP: net.ParseIP("10.0.0.2")},
		},
		ServerType: &hcloud.ServerType{Name: "cx21", Memory: 4},
	}

	node := convertServer(server)
	assert.Equal(t, "42", node.ID)
	assert.Equal(t, "node1", node.Name)
	assert.Equal(t, "demo", node.ClusterName)
	assert.Equal(t, []string{"192.0.2.1"}, node.PublicIPs)
	assert.Equal(t, []string{"10.0.0.2"}, node.PrivateIPs)
	assert.Equal(t, driver.NodeStateRunning, node.State)
	assert.Equal(t, "cx21", node.Size.ID)
}

func TestNewRejectsEmptyToken(t *testing.T) {
	_, err := New(" \n ", zerolog.Nop())
	assert.Error(t, err)
}
