package piltc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().validate())
}

func TestLoadConfigDefaultsOnly(t *testing.T) {
	var cfg, loadErr = LoadConfig("")
	require.NoError(t, loadErr)

	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFile(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "piltc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
broadcast_addr: 192.168.4.255
broadcast_port: 9123
timer_cpu: 1
encoder_cpu: 0
pins:
  data: 4
  stable: 5
  encoder_active: 6
  heartbeat: 7
  safety_clock: 8
dns_sd:
  enabled: true
  name: studio-clock
`), 0644))

	var cfg, loadErr = LoadConfig(path)
	require.NoError(t, loadErr)

	assert.Equal(t, "192.168.4.255", cfg.BroadcastAddr)
	assert.Equal(t, 9123, cfg.BroadcastPort)
	assert.Equal(t, 1, cfg.TimerCPU)
	assert.Equal(t, 0, cfg.EncoderCPU)
	assert.Equal(t, 4, cfg.Pins.Data)
	assert.True(t, cfg.DNSSD.Enabled)
	assert.Equal(t, "studio-clock", cfg.DNSSD.Name)

	/* Keys not in the file keep their defaults. */
	assert.Equal(t, "gpiochip0", cfg.GPIOChip)
	assert.Equal(t, 80, cfg.RTPriority)
}

func TestLoadConfigMissingFile(t *testing.T) {
	var _, loadErr = LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, loadErr, "reading config file")
}

func TestConfigValidation(t *testing.T) {
	var cases = []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad address", func(c *Config) { c.BroadcastAddr = "not-an-ip" }, "broadcast_addr"},
		{"bad port", func(c *Config) { c.BroadcastPort = 70000 }, "broadcast_port"},
		{"same cpu", func(c *Config) { c.EncoderCPU = 3; c.TimerCPU = 3 }, "different CPUs"},
		{"negative cpu", func(c *Config) { c.TimerCPU = -1 }, "non-negative"},
		{"priority range", func(c *Config) { c.RTPriority = 120 }, "rt_priority"},
		{"duplicate pin", func(c *Config) { c.Pins.Heartbeat = c.Pins.Data }, "share offset"},
		{"negative pin", func(c *Config) { c.Pins.SafetyClock = -2 }, "negative offset"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var cfg = DefaultConfig()
			tc.mutate(cfg)
			assert.ErrorContains(t, cfg.validate(), tc.want)
		})
	}
}
