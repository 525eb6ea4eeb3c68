package authenticator

import (
	"github.com/hashicorp/terraform-plugin-framework/types"
)

// Authentication is the provider authenticator block.
type Authentication struct {
	AccessToken types.String `tfsdk:"access_token"`
	TokenFile   types.String `tfsdk:"token_file"`
}
