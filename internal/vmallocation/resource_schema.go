package vmallocation

import (
	"context"

	"terraform-provider-cloudram/internal/constants"
	"terraform-provider-cloudram/internal/resolver"

	"github.com/hashicorp/terraform-plugin-framework-timeouts/resource/timeouts"
	"github.com/hashicorp/terraform-plugin-framework-validators/int64validator"
	"github.com/hashicorp/terraform-plugin-framework-validators/stringvalidator"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/booldefault"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/int64default"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/int64planmodifier"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/planmodifier"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/stringdefault"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/stringplanmodifier"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
)

const (
	OnStoppedResume   = string(resolver.ChoiceResume)
	OnStoppedRecreate = string(resolver.ChoiceRecreate)
	OnStoppedFail     = "fail"
)

func getSchema(ctx context.Context) schema.Schema {
	return schema.Schema{
		// This description is used by the documentation generator and the language server.
		MarkdownDescription: "The signed in user's cloud RAM VM. Creating it reuses a running VM, resumes or recreates a stopped one, or allocates a new one. Destroying it terminates the VM.",
		Attributes: map[string]schema.Attribute{
			"timeouts": timeouts.Attributes(ctx, timeouts.Opts{
				Create: true,
				Delete: true,
			}),
			"id": schema.StringAttribute{
				MarkdownDescription: "VM id assigned by the control plane",
				Computed:            true,
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
			},
			"size": schema.Int64Attribute{
				MarkdownDescription: "RAM size requested when a new VM is allocated",
				Optional:            true,
				Computed:            true,
				Default:             int64default.StaticInt64(constants.DefaultVmSize),
				Validators: []validator.Int64{
					int64validator.AtLeast(1),
				},
				PlanModifiers: []planmodifier.Int64{
					int64planmodifier.RequiresReplace(),
				},
			},
			"on_stopped": schema.StringAttribute{
				MarkdownDescription: "What to do when the VM exists but is stopped: `resume` it, `recreate` it (requires `confirm_destroy`), or `fail`",
				Optional:            true,
				Computed:            true,
				Default:             stringdefault.StaticString(OnStoppedResume),
				Validators: []validator.String{
					stringvalidator.OneOf(OnStoppedResume, OnStoppedRecreate, OnStoppedFail),
				},
			},
			"confirm_destroy": schema.BoolAttribute{
				MarkdownDescription: "Allows `on_stopped = \"recreate\"` to terminate a stopped VM and all of its data",
				Optional:            true,
				Computed:            true,
				Default:             booldefault.StaticBool(false),
			},
			"state": schema.StringAttribute{
				MarkdownDescription: "VM state as last reported by the control plane",
				Computed:            true,
			},
			"address": schema.StringAttribute{
				MarkdownDescription: "VM address",
				Computed:            true,
			},
			"status_url": schema.StringAttribute{
				MarkdownDescription: "Operational view of the VM",
				Computed:            true,
			},
		},
	}
}
