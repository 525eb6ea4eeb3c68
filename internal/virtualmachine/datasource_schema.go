package virtualmachine

import (
	"github.com/hashicorp/terraform-plugin-framework/datasource/schema"
)

var virtualMachineDataSourceSchema = schema.Schema{
	MarkdownDescription: "The signed in user's VM as the control plane reports it. Reading it refreshes the local cache shared with the cloudram CLI.",
	Attributes: map[string]schema.Attribute{
		"wait_for_network_up": schema.BoolAttribute{
			MarkdownDescription: "Wait until an existing VM is running and has an address",
			Optional:            true,
		},
		"exists": schema.BoolAttribute{
			MarkdownDescription: "Whether the user has a VM",
			Computed:            true,
		},
		"id": schema.StringAttribute{
			MarkdownDescription: "VM id",
			Computed:            true,
		},
		"state": schema.StringAttribute{
			MarkdownDescription: "VM state",
			Computed:            true,
		},
		"address": schema.StringAttribute{
			MarkdownDescription: "VM address, empty until the VM is running",
			Computed:            true,
		},
		"status_url": schema.StringAttribute{
			MarkdownDescription: "Operational view, set once the VM is running with an address",
			Computed:            true,
		},
		"cached_id": schema.StringAttribute{
			MarkdownDescription: "VM id cached before this read. May be stale.",
			Computed:            true,
		},
		"cached_address": schema.StringAttribute{
			MarkdownDescription: "VM address cached before this read. May be stale.",
			Computed:            true,
		},
	},
}
