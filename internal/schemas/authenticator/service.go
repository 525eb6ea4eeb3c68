package authenticator

import (
	"context"
	"os"

	"terraform-provider-cloudram/internal/config"

	"github.com/hashicorp/terraform-plugin-log/tflog"
)

const AccessTokenEnv = "CLOUDRAM_ACCESS_TOKEN"

// Apply copies the token settings into cfg. Without a block, or with an
// empty one, the token comes from the environment and then from whatever
// the cloudram CLI cached after its last sign-in.
func Apply(ctx context.Context, authenticator *Authentication, cfg *config.Config) {
	if authenticator != nil {
		if token := authenticator.AccessToken.ValueString(); token != "" {
			tflog.Debug(ctx, "Using the access token from the authenticator block")
			cfg.Token = token
			return
		}
		if file := authenticator.TokenFile.ValueString(); file != "" {
			tflog.Debug(ctx, "Using the token file "+file)
			cfg.TokenFile = file
			return
		}
	}

	if token := os.Getenv(AccessTokenEnv); token != "" {
		tflog.Debug(ctx, "Using the access token from "+AccessTokenEnv)
		cfg.Token = token
		return
	}

	tflog.Info(ctx, "No access token configured, falling back to the cached session")
}
