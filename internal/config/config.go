// Package config loads coordinator configuration from defaults, an optional
// YAML file and WGMESH_* environment variables, in that precedence order.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"

	"github.com/spf13/viper"
)

var (
	// ErrInvalidBind is returned when the bind address is empty.
	ErrInvalidBind = errors.New("bind address cannot be empty")
	// ErrInvalidNetworkFile is returned when the network file path is empty.
	ErrInvalidNetworkFile = errors.New("network file path cannot be empty")
)

// Config holds every tunable of the coordinator process.
type Config struct {
	// Bind is the "host:port" the HTTP API listens on.
	Bind string `mapstructure:"bind"`

	// NetworkFile is the path of the persisted network state.
	NetworkFile string `mapstructure:"network_file"`

	// Subnet overrides the subnet of a freshly generated network.
	Subnet string `mapstructure:"subnet"`

	// AdvertiseEndpoint is the coordinator's publicly reachable "host:port",
	// handed out as a reachability hint on /discover.
	AdvertiseEndpoint string `mapstructure:"advertise_endpoint"`

	// ListenPort is the WireGuard port written into rendered configs.
	ListenPort int `mapstructure:"listen_port"`

	// EventLogCapacity bounds the in-memory event log.
	EventLogCapacity int `mapstructure:"event_log_capacity"`

	// AdminSecret signs admin JWTs. Admin endpoints are disabled while it is
	// empty.
	AdminSecret string `mapstructure:"admin_secret"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration. An empty cfgFile searches wgmesh.yaml in the
// working directory, $HOME/.wgmesh and /etc/wgmesh; a missing file is fine,
// defaults and environment still apply.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Every key needs a default, even an empty one: AutomaticEnv only
	// surfaces WGMESH_* variables for keys viper already knows about.
	v.SetDefault("bind", "0.0.0.0:64001")
	v.SetDefault("network_file", "network.yaml")
	v.SetDefault("subnet", "10.42.0.0/24")
	v.SetDefault("advertise_endpoint", "")
	v.SetDefault("listen_port", 51820)
	v.SetDefault("event_log_capacity", 1000)
	v.SetDefault("admin_secret", "")
	v.SetDefault("log_level", "info")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("wgmesh")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.wgmesh")
		v.AddConfigPath("/etc/wgmesh")
	}

	v.SetEnvPrefix("WGMESH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Bind == "" {
		return ErrInvalidBind
	}
	if c.NetworkFile == "" {
		return ErrInvalidNetworkFile
	}
	if _, err := netip.ParsePrefix(c.Subnet); err != nil {
		return fmt.Errorf("invalid subnet %q: %w", c.Subnet, err)
	}
	if c.ListenPort < 0 || c.ListenPort > 65535 {
		return fmt.Errorf("invalid listen port %d", c.ListenPort)
	}
	if c.EventLogCapacity < 0 {
		return fmt.Errorf("invalid event log capacity %d", c.EventLogCapacity)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return nil
}
