package azure

import (
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceNames(t *testing.T) {
	names := newResourceNames("demo")

	assert.Equal(t, "surge-demo", names.ResourceGroup)
	assert.Equal(t, "demo-nsg", names.NSG)
	assert.Equal(t, "demo-vnet", names.VNet)
	assert.Equal(t, "demo-subnet", names.Subnet)
	assert.Equal(t, "node1-nic", names.NIC("node1"))
	assert.Equal(t, "node1-pip", names.PublicIP("node1"))
}

func TestParseImageURN(t *testing.T) {
	publisher, offer, sku, version, err := parseImageURN("OpenLogic:CentOS:7.2:latest")
	require.NoError(t, err)
	assert.Equal(t, "OpenLogic", publisher)
	assert.Equal(t, "CentOS", offer)
	assert.Equal(t, "7.2", sku)
	assert.Equal(t, "latest", version)

	_, _, _, _, err = parseImageURN("not-a-urn")
	assert.Error(t, err)
}

func TestImageCatalogURNsAreWellFormed(t *testing.T) {
	for _, image := range imageCatalog {
		_, _, _, _, err := parseImageURN(image.Name)
		assert.NoError(t, err, image.ID)
	}
}

func TestManagedClusterName(t *testing.T) {
	tests := []struct {
		name string
		tags map[string]*string
		want string
		ok   bool
	}{
		{"managed", map[string]*string{TagManagedBy: to.Ptr("surge"), TagCluster: to.Ptr("demo")}, "demo", true},
		{"foreign", map[string]*string{TagManagedBy: to.Ptr("terraform"), TagCluster: to.Ptr("demo")}, "", false},
		{"missing cluster tag", map[string]*string{TagManagedBy: to.Ptr("surge")}, "", false},
		{"no tags", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := managedClusterName(tt.tags)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNodeTagsIncludeClusterTags(t *testing.T) {
	tags := nodeTags("demo", "node1")

	require.NotNil(t, tags[TagManagedBy])
	assert.Equal(t, TagManagedByValue, *tags[TagManagedBy])
	require.NotNil(t, tags[TagCluster])
	assert.Equal(t, "demo", *tags[TagCluster])
	require.NotNil(t, tags[TagNode])
	assert.Equal(t, "node1", *tags[TagNode])
}
