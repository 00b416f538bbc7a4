package azure

import (
	"fmt"
	"strings"

	"github.com/surgecloud/surge/pkg/driver"
)

const (
	// TagManagedBy identifies resources provisioned by surge.
	TagManagedBy = "managed-by"
	// TagManagedByValue is the tag value on surge-managed resources.
	TagManagedByValue = "surge"
	// TagCluster holds the cluster name a resource belongs to.
	TagCluster = "surge-cluster"
	// TagNode holds the node name on per-node resources.
	TagNode = "surge-node"
)

// resourceNames generates consistent Azure resource names for a cluster.
// Per-node resources hang off the node name inside the cluster's resource
// group.
type resourceNames struct {
	Cluster       string
	ResourceGroup string
	NSG           string
	VNet          string
	Subnet        string
}

func newResourceNames(cluster string) resourceNames {
	return resourceNames{
		Cluster:       cluster,
		ResourceGroup: fmt.Sprintf("surge-%s", cluster),
		NSG:           fmt.Sprintf("%s-nsg", cluster),
		VNet:          fmt.Sprintf("%s-vnet", cluster),
		Subnet:        fmt.Sprintf("%s-subnet", cluster),
	}
}

func (n resourceNames) NIC(node string) string      { return fmt.Sprintf("%s-nic", node) }
func (n resourceNames) PublicIP(node string) string { return fmt.Sprintf("%s-pip", node) }

// clusterTags returns the standard tags for cluster-scoped resources.
func clusterTags(cluster string) map[string]*string {
	managed := TagManagedByValue
	name := cluster
	return map[string]*string{
		TagManagedBy: &managed,
		TagCluster:   &name,
	}
}

// nodeTags returns the tags for per-node resources.
func nodeTags(cluster, node string) map[string]*string {
	tags := clusterTags(cluster)
	name := node
	tags[TagNode] = &name
	return tags
}

// imageCatalog maps the image identifiers accepted in cluster files onto
// marketplace URNs (Publisher:Offer:SKU:Version). Azure has no flat image
// namespace, so the driver exposes a curated alias catalog instead.
var imageCatalog = []driver.Image{
	{ID: "centos-7.2", Name: "OpenLogic:CentOS:7.2:latest"},
	{ID: "centos-7.9", Name: "OpenLogic:CentOS:7_9:latest"},
	{ID: "debian-12", Name: "Debian:debian-12:12-gen2:latest"},
	{ID: "ubuntu-22.04", Name: "Canonical:0001-com-ubuntu-server-jammy:22_04-lts-gen2:latest"},
	{ID: "ubuntu-24.04", Name: "Canonical:ubuntu-24_04-lts:server:latest"},
}

// locationCatalog is the static region list the driver advertises. Region
// metadata is stable enough that a live lookup (a separate ARM subscription
// API) is not worth the extra client.
var locationCatalog = []driver.Location{
	{ID: "eastus", Name: "East US", Country: "US"},
	{ID: "westus2", Name: "West US 2", Country: "US"},
	{ID: "northeurope", Name: "North Europe", Country: "IE"},
	{ID: "westeurope", Name: "West Europe", Country: "NL"},
	{ID: "germanywestcentral", Name: "Germany West Central", Country: "DE"},
	{ID: "uksouth", Name: "UK South", Country: "GB"},
	{ID: "southeastasia", Name: "Southeast Asia", Country: "SG"},
}

// parseImageURN parses "Publisher:Offer:SKU:Version" into components.
func parseImageURN(urn string) (publisher, offer, sku, version string, err error) {
	parts := strings.Split(urn, ":")
	if len(parts) != 4 {
		return "", "", "", "", fmt.Errorf("invalid image URN %q, expected Publisher:Offer:SKU:Version", urn)
	}
	return parts[0], parts[1], parts[2], parts[3], nil
}
