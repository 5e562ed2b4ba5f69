package config

// Config holds all bnbpanel configuration.
type Config struct {
	DefaultNetwork string `json:"default_network" mapstructure:"default_network"`
	DefaultWallet  string `json:"default_wallet"  mapstructure:"default_wallet"`
	Provider       string `json:"provider"        mapstructure:"provider"` // "local" | "remote" | "none"
	ProviderURL    string `json:"provider_url"    mapstructure:"provider_url"`
	// CustomRPCs maps a network key to the RPC URL used instead of the
	// registry default.
	CustomRPCs map[string]string `json:"custom_rpcs" mapstructure:"custom_rpcs"`
	// Contracts maps network key → feature → address. An empty address
	// removes the feature from that network.
	Contracts    map[string]map[string]string `json:"contracts"     mapstructure:"contracts"`
	LogLevel     string                       `json:"log_level"     mapstructure:"log_level"`
	MetricsAddr  string                       `json:"metrics_addr"  mapstructure:"metrics_addr"`
	PollInterval int                          `json:"poll_interval" mapstructure:"poll_interval"` // seconds

	// internal: config dir path used for Save()
	configDir string
}

// Provider kinds.
const (
	ProviderLocal  = "local"
	ProviderRemote = "remote"
	ProviderNone   = "none"
)
