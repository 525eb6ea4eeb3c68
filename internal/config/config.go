// Package config loads the cloudram CLI configuration from defaults, the
// config file, CLOUDRAM_* environment variables and command line flags.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"terraform-provider-cloudram/internal/constants"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "CLOUDRAM"

type Config struct {
	// ApiBaseUrl is the control plane base url.
	ApiBaseUrl string `mapstructure:"api_base_url"`
	// AgentUrl is where the local Agent listens.
	AgentUrl string `mapstructure:"agent_url"`
	// StatusUrl is the operational view a ready VM is opened in.
	StatusUrl string `mapstructure:"status_url"`
	SignInUrl string `mapstructure:"sign_in_url"`

	// Token and TokenFile are the two ways to hand over the bearer token.
	// A token file is re-read on every use.
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"token_file"`

	// DataDir holds the local cache file.
	DataDir string `mapstructure:"data_dir"`

	// Size is the requested RAM size for new VMs.
	Size int `mapstructure:"size"`

	DisableTlsValidation bool `mapstructure:"disable_tls_validation"`

	ProbeTimeout       time.Duration `mapstructure:"probe_timeout"`
	WatchInterval      time.Duration `mapstructure:"watch_interval"`
	StatusTimeout      time.Duration `mapstructure:"status_timeout"`
	ActionTimeout      time.Duration `mapstructure:"action_timeout"`
	TerminateTimeout   time.Duration `mapstructure:"terminate_timeout"`
	PollCeiling        time.Duration `mapstructure:"poll_ceiling"`
	PollInterval       time.Duration `mapstructure:"poll_interval"`
	PollRequestTimeout time.Duration `mapstructure:"poll_request_timeout"`
}

// DefaultDataDir is ~/.cloudram, or a temp dir when there is no home.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "cloudram")
	}
	return filepath.Join(home, ".cloudram")
}

func DefaultConfig() *Config {
	return &Config{
		ApiBaseUrl:         constants.DefaultApiBaseUrl,
		AgentUrl:           constants.DefaultAgentUrl,
		StatusUrl:          constants.DefaultStatusUrl,
		SignInUrl:          constants.DefaultSignInUrl,
		DataDir:            DefaultDataDir(),
		Size:               constants.DefaultVmSize,
		ProbeTimeout:       constants.DEFAULT_AGENT_PROBE_TIMEOUT,
		WatchInterval:      constants.DEFAULT_AGENT_WATCH_INTERVAL,
		StatusTimeout:      constants.DEFAULT_STATUS_TIMEOUT,
		ActionTimeout:      constants.DEFAULT_ACTION_TIMEOUT,
		TerminateTimeout:   constants.DEFAULT_TERMINATE_TIMEOUT,
		PollCeiling:        constants.DEFAULT_POLL_CEILING,
		PollInterval:       constants.DEFAULT_POLL_INTERVAL,
		PollRequestTimeout: constants.DEFAULT_POLL_REQUEST_TIMEOUT,
	}
}

// SetDefaults registers every key with its default so that environment
// variables are picked up for keys absent from the config file.
func SetDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("api_base_url", defaults.ApiBaseUrl)
	v.SetDefault("agent_url", defaults.AgentUrl)
	v.SetDefault("status_url", defaults.StatusUrl)
	v.SetDefault("sign_in_url", defaults.SignInUrl)
	v.SetDefault("token", "")
	v.SetDefault("token_file", "")
	v.SetDefault("data_dir", defaults.DataDir)
	v.SetDefault("size", defaults.Size)
	v.SetDefault("disable_tls_validation", false)
	v.SetDefault("probe_timeout", defaults.ProbeTimeout)
	v.SetDefault("watch_interval", defaults.WatchInterval)
	v.SetDefault("status_timeout", defaults.StatusTimeout)
	v.SetDefault("action_timeout", defaults.ActionTimeout)
	v.SetDefault("terminate_timeout", defaults.TerminateTimeout)
	v.SetDefault("poll_ceiling", defaults.PollCeiling)
	v.SetDefault("poll_interval", defaults.PollInterval)
	v.SetDefault("poll_request_timeout", defaults.PollRequestTimeout)
}

// Load reads the configuration into a Config. configFile may be empty, in
// which case config.yaml is looked up in the data dir. Flags, when given,
// take precedence over everything else.
func Load(v *viper.Viper, configFile string, flags *pflag.FlagSet) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := bindFlags(v, flags); err != nil {
		return nil, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(v.GetString("data_dir"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// bindFlags binds every flag whose name, with dashes read as underscores,
// is a configuration key. Other flags are left alone.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}

	keys := map[string]bool{}
	for _, key := range v.AllKeys() {
		keys[key] = true
	}

	var bindErr error
	flags.VisitAll(func(flag *pflag.Flag) {
		key := strings.ReplaceAll(flag.Name, "-", "_")
		if !keys[key] || bindErr != nil {
			return
		}
		if err := v.BindPFlag(key, flag); err != nil {
			bindErr = errors.Wrapf(err, "failed to bind flag %s", flag.Name)
		}
	})

	return bindErr
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.ApiBaseUrl) == "" {
		return errors.New("api_base_url cannot be empty")
	}
	if strings.TrimSpace(c.AgentUrl) == "" {
		return errors.New("agent_url cannot be empty")
	}
	if c.Size <= 0 {
		return errors.Errorf("size must be positive, got %d", c.Size)
	}
	if c.Token != "" && c.TokenFile != "" {
		return errors.New("token and token_file are mutually exclusive")
	}

	durations := map[string]time.Duration{
		"probe_timeout":        c.ProbeTimeout,
		"watch_interval":       c.WatchInterval,
		"status_timeout":       c.StatusTimeout,
		"action_timeout":       c.ActionTimeout,
		"terminate_timeout":    c.TerminateTimeout,
		"poll_ceiling":         c.PollCeiling,
		"poll_interval":        c.PollInterval,
		"poll_request_timeout": c.PollRequestTimeout,
	}
	for key, value := range durations {
		if value <= 0 {
			return errors.Errorf("%s must be positive, got %s", key, value)
		}
	}

	return nil
}
