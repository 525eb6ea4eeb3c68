package provider

import (
	"context"
	"fmt"
	"os"

	"terraform-provider-cloudram/internal/config"
	"terraform-provider-cloudram/internal/models"
	"terraform-provider-cloudram/internal/schemas/authenticator"
	"terraform-provider-cloudram/internal/stack"
	"terraform-provider-cloudram/internal/virtualmachine"
	"terraform-provider-cloudram/internal/vmallocation"

	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/provider"
	"github.com/hashicorp/terraform-plugin-framework/provider/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-log/tflog"
)

const (
	ApiBaseUrlEnv = "CLOUDRAM_API_BASE_URL"
	AgentUrlEnv   = "CLOUDRAM_AGENT_URL"
)

// Ensure the implementation satisfies the expected interfaces.
var (
	_ provider.Provider = &CloudRamProvider{}
)

// New is a helper function to simplify provider server and testing implementation.
func New(version string) func() provider.Provider {
	return func() provider.Provider {
		return &CloudRamProvider{
			version: version,
		}
	}
}

// CloudRamProvider is the provider implementation.
type CloudRamProvider struct {
	// version is set to the provider version on release, "dev" when the
	// provider is built and ran locally, and "test" when running acceptance
	// testing.
	version string
}

// Metadata returns the provider type name.
func (p *CloudRamProvider) Metadata(_ context.Context, _ provider.MetadataRequest, resp *provider.MetadataResponse) {
	resp.TypeName = "cloudram"
	resp.Version = p.version
}

// Schema defines the provider-level schema for configuration data.
func (p *CloudRamProvider) Schema(_ context.Context, _ provider.SchemaRequest, resp *provider.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Allocates and resumes the signed in user's cloud RAM VM through the local Agent and the control plane.",
		Blocks: map[string]schema.Block{
			authenticator.SchemaName: authenticator.SchemaBlock,
		},
		Attributes: map[string]schema.Attribute{
			"api_base_url": schema.StringAttribute{
				MarkdownDescription: "Control plane base url. Can also be set with `" + ApiBaseUrlEnv + "`.",
				Optional:            true,
			},
			"agent_url": schema.StringAttribute{
				MarkdownDescription: "Local Agent url. Can also be set with `" + AgentUrlEnv + "`.",
				Optional:            true,
			},
			"status_url": schema.StringAttribute{
				MarkdownDescription: "Operational view a ready VM is opened in",
				Optional:            true,
			},
			"data_dir": schema.StringAttribute{
				MarkdownDescription: "Directory of the local cache shared with the cloudram CLI",
				Optional:            true,
			},
			"disable_tls_validation": schema.BoolAttribute{
				MarkdownDescription: "Skip TLS certificate validation on every call",
				Optional:            true,
			},
		},
	}
}

func (p *CloudRamProvider) Configure(ctx context.Context, req provider.ConfigureRequest, resp *provider.ConfigureResponse) {
	var data models.CloudRamProviderModel
	diags := req.Config.Get(ctx, &data)
	resp.Diagnostics.Append(diags...)
	if resp.Diagnostics.HasError() {
		return
	}

	if data.ApiBaseUrl.IsUnknown() {
		resp.Diagnostics.AddAttributeError(
			path.Root("api_base_url"),
			"Unknown control plane url",
			"The provider cannot be configured with an api_base_url that is only known after apply.",
		)
	}
	if data.AgentUrl.IsUnknown() {
		resp.Diagnostics.AddAttributeError(
			path.Root("agent_url"),
			"Unknown Agent url",
			"The provider cannot be configured with an agent_url that is only known after apply.",
		)
	}
	if resp.Diagnostics.HasError() {
		return
	}

	cfg, err := buildConfig(ctx, data)
	if err != nil {
		resp.Diagnostics.AddError("Invalid provider configuration", err.Error())
		return
	}

	tflog.Info(ctx, fmt.Sprintf("Configured cloudram provider for %s", cfg.ApiBaseUrl))
	s := stack.New(ctx, cfg, stack.Options{})
	resp.DataSourceData = s
	resp.ResourceData = s
}

// buildConfig layers defaults, environment and provider attributes.
func buildConfig(ctx context.Context, data models.CloudRamProviderModel) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if value := os.Getenv(ApiBaseUrlEnv); value != "" {
		cfg.ApiBaseUrl = value
	}
	if value := os.Getenv(AgentUrlEnv); value != "" {
		cfg.AgentUrl = value
	}

	if value := data.ApiBaseUrl.ValueString(); value != "" {
		cfg.ApiBaseUrl = value
	}
	if value := data.AgentUrl.ValueString(); value != "" {
		cfg.AgentUrl = value
	}
	if value := data.StatusUrl.ValueString(); value != "" {
		cfg.StatusUrl = value
	}
	if value := data.DataDir.ValueString(); value != "" {
		cfg.DataDir = value
	}
	cfg.DisableTlsValidation = data.DisableTlsValidation.ValueBool()

	authenticator.Apply(ctx, data.Authenticator, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DataSources defines the data sources implemented in the provider.
func (p *CloudRamProvider) DataSources(_ context.Context) []func() datasource.DataSource {
	return []func() datasource.DataSource{
		virtualmachine.NewVirtualMachineDataSource,
	}
}

// Resources defines the resources implemented in the provider.
func (p *CloudRamProvider) Resources(_ context.Context) []func() resource.Resource {
	return []func() resource.Resource{
		vmallocation.NewVmAllocationResource,
	}
}
