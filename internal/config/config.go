package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Mohsinsiddi/bnbpanel/internal/network"
	"github.com/spf13/viper"
)

const (
	defaultNetwork     = string(network.Testnet)
	defaultProvider    = ProviderLocal
	defaultProviderURL = "http://127.0.0.1:1248"
	defaultLogLevel    = "info"
	defaultInterval    = 15

	configFile  = "config.json"
	walletsFile = "wallets.json"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "BNBPANEL"
	// EnvConfigDir relocates the config directory.
	EnvConfigDir = EnvPrefix + "_CONFIG_DIR"
)

// envKeys maps config keys to the variables that override them.
var envKeys = map[string]string{
	"default_network": EnvPrefix + "_NETWORK",
	"default_wallet":  EnvPrefix + "_WALLET",
	"provider":        EnvPrefix + "_PROVIDER",
	"provider_url":    EnvPrefix + "_PROVIDER_URL",
	"log_level":       EnvPrefix + "_LOG_LEVEL",
	"metrics_addr":    EnvPrefix + "_METRICS_ADDR",
	"poll_interval":   EnvPrefix + "_POLL_INTERVAL",
}

// ResolveDir picks the config directory: the flag value, then
// BNBPANEL_CONFIG_DIR, then ~/.bnbpanel.
func ResolveDir(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	v := viper.New()
	_ = v.BindEnv("config_dir", EnvConfigDir)
	if dir := v.GetString("config_dir"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home dir: %w", err)
	}
	return filepath.Join(home, ".bnbpanel"), nil
}

// Load reads config from dir (or creates defaults) and applies the
// environment overlay. dir defaults to ResolveDir("").
func Load(dir string) (*Config, error) {
	dir, err := ResolveDir(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	data, err := os.ReadFile(filepath.Join(dir, configFile))
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.configDir = dir
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[string]string)
	}
	if cfg.Contracts == nil {
		cfg.Contracts = make(map[string]map[string]string)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// applyEnv overlays BNBPANEL_* variables on the values read from disk.
func (c *Config) applyEnv() error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("binding %s: %w", env, err)
		}
	}
	v.AutomaticEnv()

	set := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	set("default_network", &c.DefaultNetwork)
	set("default_wallet", &c.DefaultWallet)
	set("provider", &c.Provider)
	set("provider_url", &c.ProviderURL)
	set("log_level", &c.LogLevel)
	set("metrics_addr", &c.MetricsAddr)
	if v.IsSet("poll_interval") {
		c.PollInterval = v.GetInt("poll_interval")
	}
	return nil
}

// Validate rejects values the rest of the program cannot act on.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderLocal, ProviderRemote, ProviderNone:
	default:
		return fmt.Errorf("unknown provider %q (want local, remote or none)", c.Provider)
	}
	if _, err := network.NewRegistry().Get(c.DefaultNetwork); err != nil {
		return fmt.Errorf("default network: %w", err)
	}
	if c.PollInterval < 0 {
		return fmt.Errorf("poll_interval must not be negative")
	}
	return nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// SetRPC overrides the RPC endpoint for a network. An empty url clears it.
func (c *Config) SetRPC(net, url string) {
	if url == "" {
		delete(c.CustomRPCs, net)
		return
	}
	c.CustomRPCs[net] = url
}

// SetContract overrides a feature address on a network.
func (c *Config) SetContract(net string, f network.Feature, addr string) {
	if c.Contracts[net] == nil {
		c.Contracts[net] = make(map[string]string)
	}
	c.Contracts[net][string(f)] = addr
}

// Registry builds the network registry with this config's overrides
// applied.
func (c *Config) Registry() *network.Registry {
	var opts []network.Option
	for net, url := range c.CustomRPCs {
		opts = append(opts, network.WithRPC(network.Key(net), url))
	}
	for net, byFeature := range c.Contracts {
		for f, addr := range byFeature {
			opts = append(opts, network.WithContract(network.Key(net), network.Feature(f), addr))
		}
	}
	return network.NewRegistry(opts...)
}

// Poll returns the background refresh interval.
func (c *Config) Poll() time.Duration {
	if c.PollInterval <= 0 {
		return PollInterval
	}
	return time.Duration(c.PollInterval) * time.Second
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath is where the wallet list is stored.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		DefaultNetwork: defaultNetwork,
		Provider:       defaultProvider,
		ProviderURL:    defaultProviderURL,
		LogLevel:       defaultLogLevel,
		PollInterval:   defaultInterval,
		CustomRPCs:     make(map[string]string),
		Contracts:      make(map[string]map[string]string),
		configDir:      dir,
	}
}
