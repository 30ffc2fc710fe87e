// Package config loads the storefront configuration from an optional
// file with environment overrides (prefix CSP).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// APIBaseURL is the storefront REST API root.
	APIBaseURL string `mapstructure:"api_base_url"`
	// IdentityBaseURL is the hosted identity service root. Defaults to
	// APIBaseURL when empty.
	IdentityBaseURL string `mapstructure:"identity_base_url"`
	// DataDir holds the local files: guest cart, tokens, order history,
	// wishlist.
	DataDir string `mapstructure:"data_dir"`
	// ListenAddr is where the local API listens. Loopback by default;
	// this surface carries the session and is not meant to be exposed.
	ListenAddr string `mapstructure:"listen_addr"`

	RequestTimeout       time.Duration `mapstructure:"request_timeout"`
	RefreshMargin        time.Duration `mapstructure:"refresh_margin"`
	PendingOrderInterval time.Duration `mapstructure:"pending_order_interval"`
}

// Load reads the config file at path (ignored when absent) and applies
// CSP_* environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("CSP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.IdentityBaseURL == "" {
		cfg.IdentityBaseURL = cfg.APIBaseURL
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("api_base_url is required")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Empty defaults register the keys so AutomaticEnv can fill them.
	v.SetDefault("api_base_url", "")
	v.SetDefault("identity_base_url", "")
	v.SetDefault("data_dir", ".storefront")
	v.SetDefault("listen_addr", "127.0.0.1:8600")
	v.SetDefault("request_timeout", 15*time.Second)
	v.SetDefault("refresh_margin", 5*time.Minute)
	v.SetDefault("pending_order_interval", time.Minute)
}
