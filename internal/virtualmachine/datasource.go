package virtualmachine

import (
	"context"
	"fmt"

	"terraform-provider-cloudram/internal/apiclient/apimodels"
	"terraform-provider-cloudram/internal/localstore"
	"terraform-provider-cloudram/internal/stack"

	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"
)

var (
	_ datasource.DataSource              = &VirtualMachineDataSource{}
	_ datasource.DataSourceWithConfigure = &VirtualMachineDataSource{}
)

func NewVirtualMachineDataSource() datasource.DataSource {
	return &VirtualMachineDataSource{}
}

type VirtualMachineDataSource struct {
	stack *stack.Stack
}

func (d *VirtualMachineDataSource) Configure(_ context.Context, req datasource.ConfigureRequest, resp *datasource.ConfigureResponse) {
	if req.ProviderData == nil {
		return
	}

	data, ok := req.ProviderData.(*stack.Stack)
	if !ok {
		resp.Diagnostics.AddError(
			"Unexpected Data Source Configure Type",
			fmt.Sprintf("Expected *stack.Stack, got: %T. Please report this issue to the provider developers.", req.ProviderData),
		)
		return
	}

	d.stack = data
}

func (d *VirtualMachineDataSource) Metadata(_ context.Context, req datasource.MetadataRequest, resp *datasource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_vm"
}

func (d *VirtualMachineDataSource) Schema(_ context.Context, req datasource.SchemaRequest, resp *datasource.SchemaResponse) {
	resp.Schema = virtualMachineDataSourceSchema
}

func (d *VirtualMachineDataSource) Read(ctx context.Context, req datasource.ReadRequest, resp *datasource.ReadResponse) {
	var data VirtualMachineDataSourceModel

	resp.Diagnostics.Append(req.Config.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	status, cached, err := read(ctx, d.stack, data.WaitForNetworkUp.ValueBool())
	if err != nil {
		resp.Diagnostics.AddError("error reading vm", err.Error())
		return
	}

	data.Exists = types.BoolValue(status.Exists)
	data.ID = types.StringValue(status.ID)
	data.State = types.StringValue(status.DisplayState())
	data.Address = types.StringValue(status.Address)
	data.StatusUrl = types.StringValue(d.stack.ViewUrl(status))
	data.CachedID = types.StringValue(cached.VmId)
	data.CachedAddress = types.StringValue(cached.VmIp)

	diags := resp.State.Set(ctx, &data)
	resp.Diagnostics.Append(diags...)
}

// read returns the fresh status and the hint that was cached before it.
// With waitForNetwork an existing VM that is not usable yet is polled until
// it is.
func read(ctx context.Context, s *stack.Stack, waitForNetwork bool) (*apimodels.ResourceStatus, localstore.Hint, error) {
	cached, err := s.Store.LoadHint()
	if err != nil {
		tflog.Warn(ctx, "could not read the cached vm hint: "+err.Error())
	}

	status, err := s.Refresh(ctx)
	if err != nil {
		return nil, cached, err
	}

	if !waitForNetwork || !status.Exists || status.IsUsable() || status.IsStopped() {
		return status, cached, nil
	}

	tflog.Info(ctx, fmt.Sprintf("Vm %s is %s, waiting for it to come up", status.ID, status.DisplayState()))
	cred, err := s.Credential(ctx)
	if err != nil {
		return nil, cached, err
	}
	status, err = s.Poller.Poll(ctx, cred, stack.PollOptions(s.Config))
	if err != nil {
		return nil, cached, err
	}
	return status, cached, nil
}
