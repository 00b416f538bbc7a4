package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSizeMatches(t *testing.T) {
	size := Size{CPUs: 2, RAMMb: 2048, Disks: []int{100, 50}}

	tests := []struct {
		name  string
		cpus  int
		ramMb int
		disks []int
		want  bool
	}{
		{"exact", 2, 2048, []int{100, 50}, true},
		{"cpu mismatch", 4, 2048, []int{100, 50}, false},
		{"ram mismatch", 2, 4096, []int{100, 50}, false},
		{"disk count mismatch", 2, 2048, []int{100}, false},
		{"disk capacity mismatch", 2, 2048, []int{100, 60}, false},
		{"disk order matters", 2, 2048, []int{50, 100}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, size.Matches(tt.cpus, tt.ramMb, tt.disks))
		})
	}
}

func TestClusterNodeNamesSorted(t *testing.T) {
	c := Cluster{Nodes: []Node{{Name: "web2"}, {Name: "db1"}, {Name: "web1"}}}
	assert.Equal(t, []string{"db1", "web1", "web2"}, c.NodeNames())
}
