// Package config provides configuration handling for the tapio daemon.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete daemon configuration.
type Config struct {
	// Device describes the virtual network device to open.
	Device DeviceConfig `json:"device" yaml:"device"`

	// Logging configures log level and optional rotated file output.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Stats configures the periodic counter reporter.
	Stats StatsConfig `json:"stats" yaml:"stats"`

	// HealthAddr, when set, serves GET /healthz on this address.
	HealthAddr string `json:"healthAddr" yaml:"healthAddr"`
}

// DeviceConfig describes the device to connect at startup.
type DeviceConfig struct {
	// Name is the interface name hint; empty lets the kernel assign one.
	Name string `json:"name" yaml:"name"`

	// Mode is "tap" (Ethernet frames) or "tun" (IP packets).
	Mode string `json:"mode" yaml:"mode"`

	// MTU of the device; 0 keeps the platform default.
	MTU int `json:"mtu" yaml:"mtu"`

	// Address is an optional CIDR to assign, e.g. "10.80.0.1/24".
	Address string `json:"address" yaml:"address"`

	// Backend is "native" (/dev/net/tun) or "wireguard"
	// (wireguard-go userspace tun, TUN mode only).
	Backend string `json:"backend" yaml:"backend"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string `json:"level" yaml:"level"`
	Dir        string `json:"dir" yaml:"dir"`
	File       string `json:"file" yaml:"file"`
	MaxSize    int    `json:"maxSize" yaml:"maxSize"`
	MaxBackups int    `json:"maxBackups" yaml:"maxBackups"`
	MaxAge     int    `json:"maxAge" yaml:"maxAge"`
}

// StatsConfig configures the periodic stats reporter.
type StatsConfig struct {
	// Interval between counter dumps; empty disables the reporter.
	Interval string `json:"interval" yaml:"interval"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			Name:    "tap0",
			Mode:    "tap",
			MTU:     1500,
			Backend: "native",
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     7,
		},
	}
}

// LoadFromFile loads configuration from a YAML or JSON file, keyed on
// the file extension.
func LoadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	switch {
	case strings.HasSuffix(path, ".json"):
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse JSON config: %w", err)
		}
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse YAML config: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file format: %s", path)
	}
	return nil
}

// LoadFromEnv overrides configuration from TAPIO_* environment variables.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("TAPIO_DEVICE_NAME"); v != "" {
		cfg.Device.Name = v
	}
	if v := os.Getenv("TAPIO_DEVICE_MODE"); v != "" {
		cfg.Device.Mode = v
	}
	if v := os.Getenv("TAPIO_DEVICE_MTU"); v != "" {
		if mtu, err := strconv.Atoi(v); err == nil {
			cfg.Device.MTU = mtu
		}
	}
	if v := os.Getenv("TAPIO_DEVICE_ADDRESS"); v != "" {
		cfg.Device.Address = v
	}
	if v := os.Getenv("TAPIO_DEVICE_BACKEND"); v != "" {
		cfg.Device.Backend = v
	}
	if v := os.Getenv("TAPIO_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TAPIO_LOG_DIR"); v != "" {
		cfg.Logging.Dir = v
	}
	if v := os.Getenv("TAPIO_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
	if v := os.Getenv("TAPIO_STATS_INTERVAL"); v != "" {
		cfg.Stats.Interval = v
	}
	if v := os.Getenv("TAPIO_HEALTH_ADDR"); v != "" {
		cfg.HealthAddr = v
	}
}

// Validate checks the configuration for values that cannot be acted on.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Device.Mode) {
	case "tap", "tun":
	default:
		return fmt.Errorf("device mode must be \"tap\" or \"tun\", got %q", c.Device.Mode)
	}
	switch strings.ToLower(c.Device.Backend) {
	case "", "native":
	case "wireguard":
		if strings.ToLower(c.Device.Mode) != "tun" {
			return fmt.Errorf("wireguard backend supports tun mode only")
		}
	default:
		return fmt.Errorf("device backend must be \"native\" or \"wireguard\", got %q", c.Device.Backend)
	}
	if c.Device.MTU < 0 {
		return fmt.Errorf("device mtu must not be negative")
	}
	if c.Stats.Interval != "" {
		if _, err := time.ParseDuration(c.Stats.Interval); err != nil {
			return fmt.Errorf("stats interval: %w", err)
		}
	}
	return nil
}
