package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDSLCluster(t *testing.T) {
	text := `cluster {
		name: demo
		nodes: 3
		disks: [50,50]
	}`

	cfg, err := Parse([]byte(text), FormatDSL)
	require.NoError(t, err)

	s := cfg.Cluster
	assert.Equal(t, "demo", s.Name)
	assert.Equal(t, 3, s.Nodes.Count())
	assert.Equal(t, []string{"node1", "node2", "node3"}, s.Nodes.Names())
	assert.Equal(t, []int{100, 50, 50}, s.Disks)
	// Untouched fields keep their defaults.
	assert.Equal(t, 2, s.CPUs)
	assert.Equal(t, 2048, s.RAMMb)
	assert.Equal(t, "centos-7.2", s.ImageID)
}

func TestParseDSLNodeNameList(t *testing.T) {
	text := `cluster { nodes: [web1, web2, db1] }`

	cfg, err := Parse([]byte(text), FormatDSL)
	require.NoError(t, err)

	assert.Equal(t, []string{"web1", "web2", "db1"}, cfg.Cluster.Nodes.Names())
	assert.Equal(t, 3, cfg.Cluster.Nodes.Count())
}

func TestParseDSLQuotedValues(t *testing.T) {
	text := `cluster { name: "my demo" imageId: "7" }`

	cfg, err := Parse([]byte(text), FormatDSL)
	require.NoError(t, err)

	assert.Equal(t, "my demo", cfg.Cluster.Name)
	assert.Equal(t, "7", cfg.Cluster.ImageID)
}

func TestParseDSLDeployments(t *testing.T) {
	text := `cluster {
    name: demo
}
deployments: [
    ssh.AddAuthorizedKey: {
        publicKeyPath: ~/.ssh/id_rsa.pub
    }
    software.UpdateKernel
]`

	cfg, err := Parse([]byte(text), FormatDSL)
	require.NoError(t, err)

	require.Len(t, cfg.Deployments, 2)
	assert.Equal(t, "ssh.AddAuthorizedKey", cfg.Deployments[0].Name)
	assert.Equal(t, map[string]string{"publicKeyPath": "~/.ssh/id_rsa.pub"}, cfg.Deployments[0].Params)
	assert.Equal(t, "software.UpdateKernel", cfg.Deployments[1].Name)

	// Extracting the deployments section must not disturb cluster fields.
	assert.Equal(t, "demo", cfg.Cluster.Name)
	assert.Equal(t, 3, cfg.Cluster.Nodes.Count())
}

func TestParseDSLDeploymentsOnly(t *testing.T) {
	text := `deployments: [ software.UpdateKernel ]`

	cfg, err := Parse([]byte(text), FormatDSL)
	require.NoError(t, err)

	require.Len(t, cfg.Deployments, 1)
	assert.Equal(t, New(), cfg.Cluster)
}

func TestParseDSLUnknownKeyWarns(t *testing.T) {
	text := `cluster { name: demo flavour: large }`

	cfg, err := Parse([]byte(text), FormatDSL)
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Cluster.Name)
	require.Len(t, cfg.Warnings, 1)
	assert.Contains(t, cfg.Warnings[0], "flavour")
}

func TestParseDSLErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"missing cluster keyword", `{ name: demo }`},
		{"unbalanced braces", `cluster { name: demo`},
		{"trailing garbage", `cluster { name: demo } extra`},
		{"unterminated list", `cluster { disks: [50, 50 }`},
		{"missing value", `cluster { name: }`},
		{"unterminated deployments", `deployments: [ software.UpdateKernel`},
		{"unterminated string", `cluster { name: "demo }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.text), FormatDSL)

			var parseErr *ParseError
			assert.ErrorAs(t, err, &parseErr)
		})
	}
}

func TestParseDSLTypeMismatch(t *testing.T) {
	_, err := Parse([]byte(`cluster { cpus: four }`), FormatDSL)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "cpus", parseErr.Field)
}
