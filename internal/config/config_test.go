package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CLOUDRAM_DATA_DIR", t.TempDir())

	cfg, err := Load(viper.New(), "", nil)

	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.ApiBaseUrl)
	assert.Equal(t, "http://127.0.0.1:7071", cfg.AgentUrl)
	assert.Equal(t, 1, cfg.Size)
	assert.Equal(t, 2500*time.Millisecond, cfg.ProbeTimeout)
	assert.Equal(t, 1200*time.Millisecond, cfg.WatchInterval)
	assert.Equal(t, 15*time.Minute, cfg.PollCeiling)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, 90*time.Second, cfg.PollRequestTimeout)
	assert.Equal(t, 25*time.Second, cfg.ActionTimeout)
	assert.Equal(t, 90*time.Second, cfg.TerminateTimeout)
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
api_base_url: https://api.example.com
size: 4
poll_interval: 2s
`), 0o600))
	t.Setenv("CLOUDRAM_DATA_DIR", dir)
	t.Setenv("CLOUDRAM_POLL_CEILING", "3m")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("size", 1, "")
	flags.String("api-base-url", "", "")
	flags.Bool("yes", false, "")
	require.NoError(t, flags.Parse([]string{"--size", "8"}))

	cfg, err := Load(viper.New(), "", flags)

	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.ApiBaseUrl)
	assert.Equal(t, 8, cfg.Size)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, 3*time.Minute, cfg.PollCeiling)
}

func TestLoad_DashedFlagsMapToKeys(t *testing.T) {
	t.Setenv("CLOUDRAM_DATA_DIR", t.TempDir())

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("api-base-url", "", "")
	flags.Duration("poll-interval", 0, "")
	require.NoError(t, flags.Parse([]string{"--api-base-url", "http://10.1.1.1:8000", "--poll-interval", "1s"}))

	cfg, err := Load(viper.New(), "", flags)

	require.NoError(t, err)
	assert.Equal(t, "http://10.1.1.1:8000", cfg.ApiBaseUrl)
	assert.Equal(t, time.Second, cfg.PollInterval)
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Token = "a"
	cfg.TokenFile = "/tmp/token"
	assert.EqualError(t, cfg.Validate(), "token and token_file are mutually exclusive")

	cfg = DefaultConfig()
	cfg.PollInterval = 0
	assert.EqualError(t, cfg.Validate(), "poll_interval must be positive, got 0s")

	cfg = DefaultConfig()
	cfg.Size = 0
	assert.Error(t, cfg.Validate())
}
