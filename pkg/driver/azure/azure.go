// Package azure implements the cloud driver for Microsoft Azure. A cluster
// is a tagged resource group holding one NSG, one VNet with a single
// subnet, and a public IP + NIC + VM per node; teardown deletes the
// resource group.
package azure

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v5"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork/v5"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/rs/zerolog"

	"github.com/surgecloud/surge/pkg/driver"
)

// osDiskGB is the OS disk capacity advertised for every size. The managed
// OS disk is sized from the resolved request at creation, which carries the
// same value.
const osDiskGB = 100

// adminUsername is the account provisioned on every VM.
const adminUsername = "azureuser"

// Options configures the Azure driver.
type Options struct {
	SubscriptionID string
	TenantID       string
	ClientID       string
	ClientSecret   string
	// Location is the region clusters are provisioned into.
	Location string
	// SSHPublicKeyPath points at the public key installed on every node.
	SSHPublicKeyPath string
}

// Driver talks to the Azure Resource Manager APIs.
type Driver struct {
	location     string
	sshPublicKey string
	log          zerolog.Logger

	rgClient    *armresources.ResourceGroupsClient
	vmClient    *armcompute.VirtualMachinesClient
	sizesClient *armcompute.VirtualMachineSizesClient
	nsgClient   *armnetwork.SecurityGroupsClient
	vnetClient  *armnetwork.VirtualNetworksClient
	pipClient   *armnetwork.PublicIPAddressesClient
	nicClient   *armnetwork.InterfacesClient
}

var _ driver.Driver = (*Driver)(nil)

// New returns a driver authenticated as the given service principal.
func New(opts Options, log zerolog.Logger) (*Driver, error) {
	cred, err := azidentity.NewClientSecretCredential(opts.TenantID, opts.ClientID, opts.ClientSecret, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credentials: %w", err)
	}

	rgClient, err := armresources.NewResourceGroupsClient(opts.SubscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource groups client: %w", err)
	}

	vmClient, err := armcompute.NewVirtualMachinesClient(opts.SubscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create VM client: %w", err)
	}

	sizesClient, err := armcompute.NewVirtualMachineSizesClient(opts.SubscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create VM sizes client: %w", err)
	}

	nsgClient, err := armnetwork.NewSecurityGroupsClient(opts.SubscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create NSG client: %w", err)
	}

	vnetClient, err := armnetwork.NewVirtualNetworksClient(opts.SubscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create VNet client: %w", err)
	}

	pipClient, err := armnetwork.NewPublicIPAddressesClient(opts.SubscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create public IP client: %w", err)
	}

	nicClient, err := armnetwork.NewInterfacesClient(opts.SubscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create NIC client: %w", err)
	}

	sshPublicKey := ""
	if opts.SSHPublicKeyPath != "" {
		data, err := os.ReadFile(opts.SSHPublicKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read SSH public key: %w", err)
		}
		sshPublicKey = strings.TrimSpace(string(data))
	}

	return &Driver{
		location:     opts.Location,
		sshPublicKey: sshPublicKey,
		log:          log,
		rgClient:     rgClient,
		vmClient:     vmClient,
		sizesClient:  sizesClient,
		nsgClient:    nsgClient,
		vnetClient:   vnetClient,
		pipClient:    pipClient,
		nicClient:    nicClient,
	}, nil
}

// ListImages returns the curated marketplace image catalog.
func (d *Driver) ListImages(ctx context.Context) ([]driver.Image, error) {
	images := make([]driver.Image, len(imageCatalog))
	copy(images, imageCatalog)
	return images, nil
}

// ListLocations returns the static region catalog.
func (d *Driver) ListLocations(ctx context.Context) ([]driver.Location, error) {
	locations := make([]driver.Location, len(locationCatalog))
	copy(locations, locationCatalog)
	return locations, nil
}

// ListSizes returns the live VM size catalog for the configured region.
func (d *Driver) ListSizes(ctx context.Context) ([]driver.Size, error) {
	var sizes []driver.Size

	pager := d.sizesClient.NewListPager(d.location, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list VM sizes: %w", err)
		}
		for _, size := range page.Value {
			if size.Name == nil {
				continue
			}
			converted := driver.Size{
				ID:    *size.Name,
				Name:  *size.Name,
				Disks: []int{osDiskGB},
				Extra: map[string]string{},
			}
			if size.NumberOfCores != nil {
				converted.CPUs = int(*size.NumberOfCores)
			}
			if size.MemoryInMB != nil {
				converted.RAMMb = int(*size.MemoryInMB)
			}
			if size.ResourceDiskSizeInMB != nil {
				converted.Extra["resource_disk_mb"] = fmt.Sprintf("%d", *size.ResourceDiskSizeInMB)
			}
			if size.MaxDataDiskCount != nil {
				converted.Extra["max_data_disks"] = fmt.Sprintf("%d", *size.MaxDataDiskCount)
			}
			sizes = append(sizes, converted)
		}
	}

	return sizes, nil
}

// ListClusters discovers clusters from resource groups tagged
// managed-by=surge.
func (d *Driver) ListClusters(ctx context.Context) ([]driver.Cluster, error) {
	var clusters []driver.Cluster

	pager := d.rgClient.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list resource groups: %w", err)
		}
		for _, rg := range page.Value {
			name, ok := managedClusterName(rg.Tags)
			if !ok || rg.Name == nil {
				continue
			}
			nodes, err := d.listClusterNodes(ctx, *rg.Name, name)
			if err != nil {
				return nil, err
			}
			clusters = append(clusters, driver.Cluster{Name: name, Nodes: nodes})
		}
	}

	return clusters, nil
}

// ListNodes returns the nodes of every managed cluster.
func (d *Driver) ListNodes(ctx context.Context) ([]driver.Node, error) {
	clusters, err := d.ListClusters(ctx)
	if err != nil {
		return nil, err
	}

	var nodes []driver.Node
	for _, cluster := range clusters {
		nodes = append(nodes, cluster.Nodes...)
	}
	return nodes, nil
}

// DestroyCluster deletes the cluster's resource group and everything in it.
func (d *Driver) DestroyCluster(ctx context.Context, cluster *driver.Cluster) error {
	names := newResourceNames(cluster.Name)

	poller, err := d.rgClient.BeginDelete(ctx, names.ResourceGroup, nil)
	if err != nil {
		return fmt.Errorf("failed to begin resource group deletion: %w", err)
	}
	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		return fmt.Errorf("failed to delete resource group: %w", err)
	}

	d.log.Info().Str("cluster", cluster.Name).Str("resource_group", names.ResourceGroup).Msg("resource group deleted")
	return nil
}

// DestroyNode deletes a node's VM together with its NIC and public IP. The
// shared cluster networking stays in place for the remaining nodes.
func (d *Driver) DestroyNode(ctx context.Context, node *driver.Node) error {
	names := newResourceNames(node.ClusterName)

	vmPoller, err := d.vmClient.BeginDelete(ctx, names.ResourceGroup, node.Name, nil)
	if err != nil {
		return fmt.Errorf("failed to begin VM deletion: %w", err)
	}
	if _, err := vmPoller.PollUntilDone(ctx, nil); err != nil {
		return fmt.Errorf("failed to delete VM: %w", err)
	}

	var errs []error
	nicPoller, err := d.nicClient.BeginDelete(ctx, names.ResourceGroup, names.NIC(node.Name), nil)
	if err == nil {
		_, err = nicPoller.PollUntilDone(ctx, nil)
	}
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to delete NIC: %w", err))
	}

	pipPoller, err := d.pipClient.BeginDelete(ctx, names.ResourceGroup, names.PublicIP(node.Name), nil)
	if err == nil {
		_, err = pipPoller.PollUntilDone(ctx, nil)
	}
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to delete public IP: %w", err))
	}

	return errors.Join(errs...)
}

// listClusterNodes builds the node list for one cluster's resource group.
func (d *Driver) listClusterNodes(ctx context.Context, resourceGroup, cluster string) ([]driver.Node, error) {
	names := newResourceNames(cluster)
	var nodes []driver.Node

	pager := d.vmClient.NewListPager(resourceGroup, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list VMs: %w", err)
		}
		for _, vm := range page.Value {
			if vm.Name == nil {
				continue
			}
			node := driver.Node{
				Name:        *vm.Name,
				ClusterName: cluster,
				State:       d.vmState(ctx, resourceGroup, *vm.Name),
			}
			if vm.ID != nil {
				node.ID = *vm.ID
			}
			if vm.Properties != nil && vm.Properties.HardwareProfile != nil && vm.Properties.HardwareProfile.VMSize != nil {
				sizeName := string(*vm.Properties.HardwareProfile.VMSize)
				node.Size = driver.Size{ID: sizeName, Name: sizeName}
			}

			if pipResp, err := d.pipClient.Get(ctx, resourceGroup, names.PublicIP(*vm.Name), nil); err == nil {
				if pipResp.Properties != nil && pipResp.Properties.IPAddress != nil {
					node.PublicIPs = append(node.PublicIPs, *pipResp.Properties.IPAddress)
				}
			}
			if nicResp, err := d.nicClient.Get(ctx, resourceGroup, names.NIC(*vm.Name), nil); err == nil {
				if nicResp.Properties != nil {
					for _, ipCfg := range nicResp.Properties.IPConfigurations {
						if ipCfg.Properties != nil && ipCfg.Properties.PrivateIPAddress != nil {
							node.PrivateIPs = append(node.PrivateIPs, *ipCfg.Properties.PrivateIPAddress)
						}
					}
				}
			}

			nodes = append(nodes, node)
		}
	}

	return nodes, nil
}

// vmState fetches the power state from the VM instance view.
func (d *Driver) vmState(ctx context.Context, resourceGroup, vmName string) driver.NodeState {
	resp, err := d.vmClient.Get(ctx, resourceGroup, vmName, &armcompute.VirtualMachinesClientGetOptions{
		Expand: to.Ptr(armcompute.InstanceViewTypesInstanceView),
	})
	if err != nil || resp.Properties == nil || resp.Properties.InstanceView == nil {
		return driver.NodeStateUnknown
	}

	for _, status := range resp.Properties.InstanceView.Statuses {
		if status.Code == nil || !strings.HasPrefix(*status.Code, "PowerState/") {
			continue
		}
		switch *status.Code {
		case "PowerState/running":
			return driver.NodeStateRunning
		case "PowerState/starting":
			return driver.NodeStateStarting
		case "PowerState/stopped", "PowerState/deallocated":
			return driver.NodeStateStopped
		case "PowerState/deleting":
			return driver.NodeStateDeleting
		}
	}
	return driver.NodeStateUnknown
}

// managedClusterName extracts the cluster name from resource group tags,
// reporting whether the group is surge-managed.
func managedClusterName(tags map[string]*string) (string, bool) {
	if tags == nil || tags[TagManagedBy] == nil || *tags[TagManagedBy] != TagManagedByValue {
		return "", false
	}
	if tags[TagCluster] == nil || *tags[TagCluster] == "" {
		return "", false
	}
	return *tags[TagCluster], true
}
