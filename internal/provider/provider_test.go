package provider

import (
	"context"
	"testing"

	"terraform-provider-cloudram/internal/models"
	"terraform-provider-cloudram/internal/schemas/authenticator"

	"github.com/hashicorp/terraform-plugin-framework/provider"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emptyModel() models.CloudRamProviderModel {
	return models.CloudRamProviderModel{
		ApiBaseUrl:           types.StringNull(),
		AgentUrl:             types.StringNull(),
		StatusUrl:            types.StringNull(),
		DataDir:              types.StringNull(),
		DisableTlsValidation: types.BoolNull(),
	}
}

func TestMetadataAndSchema(t *testing.T) {
	ctx := context.Background()
	p := New("test")()

	metadata := &provider.MetadataResponse{}
	p.Metadata(ctx, provider.MetadataRequest{}, metadata)
	assert.Equal(t, "cloudram", metadata.TypeName)
	assert.Equal(t, "test", metadata.Version)

	schema := &provider.SchemaResponse{}
	p.Schema(ctx, provider.SchemaRequest{}, schema)
	require.False(t, schema.Diagnostics.HasError())
	assert.False(t, schema.Schema.ValidateImplementation(ctx).HasError())
	assert.Contains(t, schema.Schema.Blocks, authenticator.SchemaName)

	assert.Len(t, p.Resources(ctx), 1)
	assert.Len(t, p.DataSources(ctx), 1)
}

func TestBuildConfig_Defaults(t *testing.T) {
	t.Setenv(ApiBaseUrlEnv, "")
	t.Setenv(AgentUrlEnv, "")
	t.Setenv(authenticator.AccessTokenEnv, "")

	cfg, err := buildConfig(context.Background(), emptyModel())

	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.ApiBaseUrl)
	assert.Equal(t, "http://127.0.0.1:7071", cfg.AgentUrl)
	assert.Empty(t, cfg.Token)
}

func TestBuildConfig_EnvironmentThenAttributes(t *testing.T) {
	t.Setenv(ApiBaseUrlEnv, "https://env.example")
	t.Setenv(AgentUrlEnv, "http://127.0.0.1:9999")
	t.Setenv(authenticator.AccessTokenEnv, "env-token")

	data := emptyModel()
	data.ApiBaseUrl = types.StringValue("https://attr.example")
	data.StatusUrl = types.StringValue("https://view.example/status")
	data.DisableTlsValidation = types.BoolValue(true)

	cfg, err := buildConfig(context.Background(), data)

	require.NoError(t, err)
	assert.Equal(t, "https://attr.example", cfg.ApiBaseUrl)
	assert.Equal(t, "http://127.0.0.1:9999", cfg.AgentUrl)
	assert.Equal(t, "https://view.example/status", cfg.StatusUrl)
	assert.True(t, cfg.DisableTlsValidation)
	assert.Equal(t, "env-token", cfg.Token)
}

func TestBuildConfig_TokenFileFromAuthenticator(t *testing.T) {
	t.Setenv(authenticator.AccessTokenEnv, "env-token")

	data := emptyModel()
	data.Authenticator = &authenticator.Authentication{
		AccessToken: types.StringNull(),
		TokenFile:   types.StringValue("/run/cloudram/token"),
	}

	cfg, err := buildConfig(context.Background(), data)

	require.NoError(t, err)
	assert.Empty(t, cfg.Token)
	assert.Equal(t, "/run/cloudram/token", cfg.TokenFile)
}
