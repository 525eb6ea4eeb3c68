package models

import (
	"terraform-provider-cloudram/internal/schemas/authenticator"

	"github.com/hashicorp/terraform-plugin-framework/types"
)

type CloudRamProviderModel struct {
	ApiBaseUrl           types.String                  `tfsdk:"api_base_url"`
	AgentUrl             types.String                  `tfsdk:"agent_url"`
	StatusUrl            types.String                  `tfsdk:"status_url"`
	DataDir              types.String                  `tfsdk:"data_dir"`
	DisableTlsValidation types.Bool                    `tfsdk:"disable_tls_validation"`
	Authenticator        *authenticator.Authentication `tfsdk:"authenticator"`
}
