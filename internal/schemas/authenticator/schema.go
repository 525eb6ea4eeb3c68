package authenticator

import (
	"github.com/hashicorp/terraform-plugin-framework-validators/stringvalidator"
	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/provider/schema"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
)

var SchemaName = "authenticator"
var SchemaBlock = schema.SingleNestedBlock{
	MarkdownDescription: "How the provider obtains the session token sent to the control plane. Falls back to the `CLOUDRAM_ACCESS_TOKEN` environment variable.",

	Attributes: map[string]schema.Attribute{
		"access_token": schema.StringAttribute{
			MarkdownDescription: "Bearer token of the signed in user",
			Optional:            true,
			Sensitive:           true,
			Validators: []validator.String{
				stringvalidator.LengthAtLeast(1),
				stringvalidator.ConflictsWith(path.Expressions{
					path.MatchRelative().AtParent().AtName("token_file"),
				}...),
			},
		},
		"token_file": schema.StringAttribute{
			MarkdownDescription: "File holding the bearer token. It is read again before every call, so an external sign-in can rotate it.",
			Optional:            true,
			Validators: []validator.String{
				stringvalidator.LengthAtLeast(1),
			},
		},
	},
}
