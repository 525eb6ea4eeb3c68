package vmallocation

import (
	"github.com/hashicorp/terraform-plugin-framework-timeouts/resource/timeouts"
	"github.com/hashicorp/terraform-plugin-framework/types"
)

// VmAllocationResourceModel describes the resource data model.
type VmAllocationResourceModel struct {
	ID             types.String   `tfsdk:"id"`
	Size           types.Int64    `tfsdk:"size"`
	OnStopped      types.String   `tfsdk:"on_stopped"`
	ConfirmDestroy types.Bool     `tfsdk:"confirm_destroy"`
	State          types.String   `tfsdk:"state"`
	Address        types.String   `tfsdk:"address"`
	StatusUrl      types.String   `tfsdk:"status_url"`
	Timeouts       timeouts.Value `tfsdk:"timeouts"`
}
