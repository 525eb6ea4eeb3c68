package vmallocation

import (
	"context"
	"fmt"

	"terraform-provider-cloudram/internal/apiclient/apimodels"
	"terraform-provider-cloudram/internal/constants"
	"terraform-provider-cloudram/internal/stack"

	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// Ensure provider defined types fully satisfy framework interfaces.
var _ resource.Resource = &VmAllocationResource{}
var _ resource.ResourceWithImportState = &VmAllocationResource{}

func NewVmAllocationResource() resource.Resource {
	return &VmAllocationResource{}
}

// VmAllocationResource defines the resource implementation.
type VmAllocationResource struct {
	stack *stack.Stack
}

func (r *VmAllocationResource) Metadata(ctx context.Context, req resource.MetadataRequest, resp *resource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_vm"
}

func (r *VmAllocationResource) Schema(ctx context.Context, req resource.SchemaRequest, resp *resource.SchemaResponse) {
	resp.Schema = getSchema(ctx)
}

func (r *VmAllocationResource) Configure(ctx context.Context, req resource.ConfigureRequest, resp *resource.ConfigureResponse) {
	if req.ProviderData == nil {
		return
	}

	data, ok := req.ProviderData.(*stack.Stack)
	if !ok {
		resp.Diagnostics.AddError(
			"Unexpected Resource Configure Type",
			fmt.Sprintf("Expected *stack.Stack, got: %T. Please report this issue to the provider developers.", req.ProviderData),
		)
		return
	}

	r.stack = data
}

func (r *VmAllocationResource) Create(ctx context.Context, req resource.CreateRequest, resp *resource.CreateResponse) {
	var data VmAllocationResourceModel

	resp.Diagnostics.Append(req.Plan.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	// Setting the default timeout
	createTimeout, diags := data.Timeouts.Create(ctx, constants.DEFAULT_CREATE_TIMEOUT)
	resp.Diagnostics.Append(diags...)
	if resp.Diagnostics.HasError() {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, createTimeout)
	defer cancel()

	a := &allocator{stack: r.stack}
	status, err := a.ensure(ctx, allocationRequest{
		Size:           int(data.Size.ValueInt64()),
		OnStopped:      data.OnStopped.ValueString(),
		ConfirmDestroy: data.ConfirmDestroy.ValueBool(),
		Deadline:       createTimeout,
	})
	if err != nil {
		resp.Diagnostics.AddError("error allocating vm", err.Error())
		return
	}

	r.setStatus(&data, status)
	tflog.Info(ctx, "Allocated vm with id "+data.ID.ValueString())

	// Save data into Terraform state
	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *VmAllocationResource) Read(ctx context.Context, req resource.ReadRequest, resp *resource.ReadResponse) {
	var data VmAllocationResourceModel

	resp.Diagnostics.Append(req.State.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	status, err := r.stack.Refresh(ctx)
	if err != nil {
		resp.Diagnostics.AddError("error reading vm", err.Error())
		return
	}

	if !status.Exists || status.ID != data.ID.ValueString() {
		tflog.Info(ctx, "Vm "+data.ID.ValueString()+" no longer exists, removing it from the state")
		resp.State.RemoveResource(ctx)
		return
	}

	r.setStatus(&data, status)
	if data.Size.IsNull() {
		data.Size = types.Int64Value(constants.DefaultVmSize)
	}
	if data.OnStopped.IsNull() {
		data.OnStopped = types.StringValue(OnStoppedResume)
	}
	if data.ConfirmDestroy.IsNull() {
		data.ConfirmDestroy = types.BoolValue(false)
	}

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

// Update only sees changes to on_stopped, confirm_destroy and timeouts,
// which take effect on the next create.
func (r *VmAllocationResource) Update(ctx context.Context, req resource.UpdateRequest, resp *resource.UpdateResponse) {
	var data VmAllocationResourceModel
	var state VmAllocationResourceModel

	resp.Diagnostics.Append(req.Plan.Get(ctx, &data)...)
	resp.Diagnostics.Append(req.State.Get(ctx, &state)...)
	if resp.Diagnostics.HasError() {
		return
	}

	data.ID = state.ID
	data.State = state.State
	data.Address = state.Address
	data.StatusUrl = state.StatusUrl

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *VmAllocationResource) Delete(ctx context.Context, req resource.DeleteRequest, resp *resource.DeleteResponse) {
	var data VmAllocationResourceModel

	// Read Terraform prior state data into the model
	resp.Diagnostics.Append(req.State.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	deleteTimeout, diags := data.Timeouts.Delete(ctx, constants.DEFAULT_DELETE_TIMEOUT)
	resp.Diagnostics.Append(diags...)
	if resp.Diagnostics.HasError() {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, deleteTimeout)
	defer cancel()

	if data.ID.ValueString() == "" {
		return
	}

	if err := r.stack.Resolver.Terminate(ctx, data.ID.ValueString()); err != nil {
		resp.Diagnostics.AddError("error terminating vm", err.Error())
		return
	}

	tflog.Info(ctx, "Terminated vm "+data.ID.ValueString())
}

func (r *VmAllocationResource) ImportState(ctx context.Context, req resource.ImportStateRequest, resp *resource.ImportStateResponse) {
	resource.ImportStatePassthroughID(ctx, path.Root("id"), req, resp)
}

func (r *VmAllocationResource) setStatus(data *VmAllocationResourceModel, status *apimodels.ResourceStatus) {
	data.ID = types.StringValue(status.ID)
	data.State = types.StringValue(status.DisplayState())
	data.Address = types.StringValue(status.Address)
	data.StatusUrl = types.StringValue(r.stack.ViewUrl(status))
}
