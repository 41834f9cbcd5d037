package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "tap0", cfg.Device.Name)
	assert.Equal(t, "tap", cfg.Device.Mode)
	assert.Equal(t, 1500, cfg.Device.MTU)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tapio.yaml")
	body := `
device:
  name: tun3
  mode: tun
  mtu: 1420
  address: 10.80.0.1/24
  backend: wireguard
logging:
  level: debug
stats:
  interval: 15s
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg := Default()
	require.NoError(t, LoadFromFile(path, cfg))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "tun3", cfg.Device.Name)
	assert.Equal(t, "tun", cfg.Device.Mode)
	assert.Equal(t, 1420, cfg.Device.MTU)
	assert.Equal(t, "10.80.0.1/24", cfg.Device.Address)
	assert.Equal(t, "wireguard", cfg.Device.Backend)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "15s", cfg.Stats.Interval)
}

func TestLoadFromJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tapio.json")
	body := `{"device":{"name":"tap9","mode":"tap"}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg := Default()
	require.NoError(t, LoadFromFile(path, cfg))
	assert.Equal(t, "tap9", cfg.Device.Name)
}

func TestLoadFromFileUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tapio.toml")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0o644))
	assert.Error(t, LoadFromFile(path, Default()))
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TAPIO_DEVICE_NAME", "tap7")
	t.Setenv("TAPIO_DEVICE_MTU", "9000")
	t.Setenv("TAPIO_LOG_LEVEL", "warn")
	t.Setenv("TAPIO_STATS_INTERVAL", "1m")

	cfg := Default()
	LoadFromEnv(cfg)

	assert.Equal(t, "tap7", cfg.Device.Name)
	assert.Equal(t, 9000, cfg.Device.MTU)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "1m", cfg.Stats.Interval)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Device.Mode = "bridge"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Device.Backend = "hardware"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Device.Backend = "wireguard" // tap mode by default
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Stats.Interval = "soon"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Device.MTU = -1
	assert.Error(t, cfg.Validate())
}
