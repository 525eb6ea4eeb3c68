package virtualmachine

import "github.com/hashicorp/terraform-plugin-framework/types"

type VirtualMachineDataSourceModel struct {
	WaitForNetworkUp types.Bool   `tfsdk:"wait_for_network_up"`
	Exists           types.Bool   `tfsdk:"exists"`
	ID               types.String `tfsdk:"id"`
	State            types.String `tfsdk:"state"`
	Address          types.String `tfsdk:"address"`
	StatusUrl        types.String `tfsdk:"status_url"`
	CachedID         types.String `tfsdk:"cached_id"`
	CachedAddress    types.String `tfsdk:"cached_address"`
}
