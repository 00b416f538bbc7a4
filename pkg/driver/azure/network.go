package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v5"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork/v5"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"

	"github.com/surgecloud/surge/pkg/driver"
)

const (
	vnetCIDR   = "10.42.0.0/16"
	subnetCIDR = "10.42.1.0/24"
)

// CreateCluster provisions the resource group, the shared networking stack
// and one VM per node name. A failed node creation aborts the loop; the
// resource group and any nodes created before the failure are left in
// place and reported via the error.
func (d *Driver) CreateCluster(ctx context.Context, req driver.CreateClusterRequest) (*driver.Cluster, error) {
	if d.sshPublicKey == "" {
		return nil, fmt.Errorf("azure.ssh_public_key_path is required to create clusters")
	}

	publisher, offer, sku, version, err := parseImageURN(req.Image.Name)
	if err != nil {
		return nil, err
	}

	location := d.location
	if req.Location != nil {
		location = req.Location.ID
	}

	names := newResourceNames(req.Name)
	subnetID, err := d.ensureNetwork(ctx, names, location)
	if err != nil {
		return nil, err
	}

	imageRef := &armcompute.ImageReference{
		Publisher: to.Ptr(publisher),
		Offer:     to.Ptr(offer),
		SKU:       to.Ptr(sku),
		Version:   to.Ptr(version),
	}

	cluster := &driver.Cluster{Name: req.Name}
	for _, nodeName := range req.NodeNames {
		node, err := d.createNode(ctx, names, location, nodeName, subnetID, imageRef, req.Size)
		if err != nil {
			return nil, fmt.Errorf("failed to create node %s (%d of %d created): %w",
				nodeName, len(cluster.Nodes), len(req.NodeNames), err)
		}
		cluster.Nodes = append(cluster.Nodes, *node)
		d.log.Info().Str("node", nodeName).Str("cluster", req.Name).Msg("node created")
	}

	return cluster, nil
}

// ensureNetwork creates the resource group, the NSG with an SSH rule, and
// the VNet with its single subnet. It returns the subnet resource ID.
func (d *Driver) ensureNetwork(ctx context.Context, names resourceNames, location string) (string, error) {
	tags := clusterTags(names.Cluster)

	d.log.Debug().Str("resource_group", names.ResourceGroup).Msg("creating resource group")
	_, err := d.rgClient.CreateOrUpdate(ctx, names.ResourceGroup, armresources.ResourceGroup{
		Location: to.Ptr(location),
		Tags:     tags,
	}, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create resource group: %w", err)
	}

	d.log.Debug().Str("nsg", names.NSG).Msg("creating network security group")
	nsgPoller, err := d.nsgClient.BeginCreateOrUpdate(ctx, names.ResourceGroup, names.NSG, armnetwork.SecurityGroup{
		Location: to.Ptr(location),
		Tags:     tags,
		Properties: &armnetwork.SecurityGroupPropertiesFormat{
			SecurityRules: []*armnetwork.SecurityRule{
				{
					Name: to.Ptr("AllowSSH"),
					Properties: &armnetwork.SecurityRulePropertiesFormat{
						Priority:                 to.Ptr[int32](100),
						Protocol:                 to.Ptr(armnetwork.SecurityRuleProtocolTCP),
						Access:                   to.Ptr(armnetwork.SecurityRuleAccessAllow),
						Direction:                to.Ptr(armnetwork.SecurityRuleDirectionInbound),
						SourceAddressPrefix:      to.Ptr("*"),
						SourcePortRange:          to.Ptr("*"),
						DestinationAddressPrefix: to.Ptr("*"),
						DestinationPortRange:     to.Ptr("22"),
					},
				},
			},
		},
	}, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin NSG creation: %w", err)
	}
	nsgResp, err := nsgPoller.PollUntilDone(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create NSG: %w", err)
	}

	d.log.Debug().Str("vnet", names.VNet).Str("cidr", vnetCIDR).Msg("creating virtual network")
	vnetPoller, err := d.vnetClient.BeginCreateOrUpdate(ctx, names.ResourceGroup, names.VNet, armnetwork.VirtualNetwork{
		Location: to.Ptr(location),
		Tags:     tags,
		Properties: &armnetwork.VirtualNetworkPropertiesFormat{
			AddressSpace: &armnetwork.AddressSpace{
				AddressPrefixes: []*string{to.Ptr(vnetCIDR)},
			},
			Subnets: []*armnetwork.Subnet{
				{
					Name: to.Ptr(names.Subnet),
					Properties: &armnetwork.SubnetPropertiesFormat{
						AddressPrefix: to.Ptr(subnetCIDR),
						NetworkSecurityGroup: &armnetwork.SecurityGroup{
							ID: nsgResp.ID,
						},
					},
				},
			},
		},
	}, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin VNet creation: %w", err)
	}
	vnetResp, err := vnetPoller.PollUntilDone(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create VNet: %w", err)
	}

	if vnetResp.Properties == nil || len(vnetResp.Properties.Subnets) == 0 || vnetResp.Properties.Subnets[0].ID == nil {
		return "", fmt.Errorf("VNet %s has no subnet", names.VNet)
	}
	return *vnetResp.Properties.Subnets[0].ID, nil
}

// createNode provisions the public IP, NIC and VM for one node.
func (d *Driver) createNode(ctx context.Context, names resourceNames, location, nodeName, subnetID string, imageRef *armcompute.ImageReference, size driver.Size) (*driver.Node, error) {
	tags := nodeTags(names.Cluster, nodeName)

	pipPoller, err := d.pipClient.BeginCreateOrUpdate(ctx, names.ResourceGroup, names.PublicIP(nodeName), armnetwork.PublicIPAddress{
		Location: to.Ptr(location),
		Tags:     tags,
		Properties: &armnetwork.PublicIPAddressPropertiesFormat{
			PublicIPAllocationMethod: to.Ptr(armnetwork.IPAllocationMethodStatic),
		},
		SKU: &armnetwork.PublicIPAddressSKU{
			Name: to.Ptr(armnetwork.PublicIPAddressSKUNameStandard),
		},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin public IP creation: %w", err)
	}
	pipResp, err := pipPoller.PollUntilDone(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create public IP: %w", err)
	}

	nicPoller, err := d.nicClient.BeginCreateOrUpdate(ctx, names.ResourceGroup, names.NIC(nodeName), armnetwork.Interface{
		Location: to.Ptr(location),
		Tags:     tags,
		Properties: &armnetwork.InterfacePropertiesFormat{
			IPConfigurations: []*armnetwork.InterfaceIPConfiguration{
				{
					Name: to.Ptr("ipconfig1"),
					Properties: &armnetwork.InterfaceIPConfigurationPropertiesFormat{
						Subnet: &armnetwork.Subnet{
							ID: to.Ptr(subnetID),
						},
						PublicIPAddress: &armnetwork.PublicIPAddress{
							ID: pipResp.ID,
						},
						PrivateIPAllocationMethod: to.Ptr(armnetwork.IPAllocationMethodDynamic),
					},
				},
			},
		},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin NIC creation: %w", err)
	}
	nicResp, err := nicPoller.PollUntilDone(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create NIC: %w", err)
	}

	vmParams := armcompute.VirtualMachine{
		Location: to.Ptr(location),
		Tags:     tags,
		Properties: &armcompute.VirtualMachineProperties{
			HardwareProfile: &armcompute.HardwareProfile{
				VMSize: to.Ptr(armcompute.VirtualMachineSizeTypes(size.ID)),
			},
			StorageProfile: &armcompute.StorageProfile{
				ImageReference: imageRef,
				OSDisk: &armcompute.OSDisk{
					CreateOption: to.Ptr(armcompute.DiskCreateOptionTypesFromImage),
					DiskSizeGB:   to.Ptr(int32(size.Disks[0])),
					ManagedDisk: &armcompute.ManagedDiskParameters{
						StorageAccountType: to.Ptr(armcompute.StorageAccountTypesStandardLRS),
					},
				},
				DataDisks: dataDisks(nodeName, size.Disks[1:]),
			},
			OSProfile: &armcompute.OSProfile{
				ComputerName:  to.Ptr(nodeName),
				AdminUsername: to.Ptr(adminUsername),
				LinuxConfiguration: &armcompute.LinuxConfiguration{
					DisablePasswordAuthentication: to.Ptr(true),
					SSH: &armcompute.SSHConfiguration{
						PublicKeys: []*armcompute.SSHPublicKey{
							{
								Path:    to.Ptr(fmt.Sprintf("/home/%s/.ssh/authorized_keys", adminUsername)),
								KeyData: to.Ptr(d.sshPublicKey),
							},
						},
					},
				},
			},
			NetworkProfile: &armcompute.NetworkProfile{
				NetworkInterfaces: []*armcompute.NetworkInterfaceReference{
					{
						ID: nicResp.ID,
						Properties: &armcompute.NetworkInterfaceReferenceProperties{
							Primary: to.Ptr(true),
						},
					},
				},
			},
		},
	}

	vmPoller, err := d.vmClient.BeginCreateOrUpdate(ctx, names.ResourceGroup, nodeName, vmParams, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin VM creation: %w", err)
	}
	vmResp, err := vmPoller.PollUntilDone(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create VM: %w", err)
	}

	node := &driver.Node{
		Name:        nodeName,
		ClusterName: names.Cluster,
		State:       driver.NodeStateStarting,
		Size:        size,
		Extra:       map[string]string{"ssh_user": adminUsername},
	}
	if vmResp.ID != nil {
		node.ID = *vmResp.ID
	}
	if pipResp.Properties != nil && pipResp.Properties.IPAddress != nil {
		node.PublicIPs = append(node.PublicIPs, *pipResp.Properties.IPAddress)
	}
	if nicResp.Properties != nil {
		for _, ipCfg := range nicResp.Properties.IPConfigurations {
			if ipCfg.Properties != nil && ipCfg.Properties.PrivateIPAddress != nil {
				node.PrivateIPs = append(node.PrivateIPs, *ipCfg.Properties.PrivateIPAddress)
			}
		}
	}
	return node, nil
}

// dataDisks builds empty managed data disks for the capacities beyond the
// OS disk.
func dataDisks(nodeName string, capacities []int) []*armcompute.DataDisk {
	var disks []*armcompute.DataDisk
	for i, gb := range capacities {
		disks = append(disks, &armcompute.DataDisk{
			Name:         to.Ptr(fmt.Sprintf("%s-data-%d", nodeName, i)),
			Lun:          to.Ptr(int32(i)),
			CreateOption: to.Ptr(armcompute.DiskCreateOptionTypesEmpty),
			DiskSizeGB:   to.Ptr(int32(gb)),
			ManagedDisk: &armcompute.ManagedDiskParameters{
				StorageAccountType: to.Ptr(armcompute.StorageAccountTypesStandardLRS),
			},
		})
	}
	return disks
}
