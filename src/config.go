package piltc

/*------------------------------------------------------------------
 *
 * Purpose:   	Configuration file handling.
 *
 * Description:	Everything that was hard-coded in the C version is
 *		configuration here: the announce broadcast
 *		destination, the CPU each worker is pinned to, and
 *		the GPIO chip and line offsets.
 *
 *		The file is YAML.  Missing keys keep their defaults,
 *		which match the old wiring on a Raspberry Pi.
 *		The command line can override the broadcast
 *		destination (see cmd/piltc).
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"net/netip"
	"os"

	"gopkg.in/yaml.v3"
)

type PinConfig struct {
	Data          int `yaml:"data"`
	Stable        int `yaml:"stable"`
	EncoderActive int `yaml:"encoder_active"`
	Heartbeat     int `yaml:"heartbeat"`
	SafetyClock   int `yaml:"safety_clock"`
}

type DNSSDConfig struct {
	Enabled bool   `yaml:"enabled"`
	Name    string `yaml:"name"`
}

type Config struct {
	BroadcastAddr string `yaml:"broadcast_addr"`
	BroadcastPort int    `yaml:"broadcast_port"`

	EncoderCPU int `yaml:"encoder_cpu"`
	TimerCPU   int `yaml:"timer_cpu"`

	/* SCHED_FIFO priority for the timing loop.  0 disables. */
	RTPriority int `yaml:"rt_priority"`

	GPIOChip string    `yaml:"gpio_chip"`
	Pins     PinConfig `yaml:"pins"`

	DNSSD DNSSDConfig `yaml:"dns_sd"`

	/* Seconds between timing statistics log lines.  0 disables. */
	StatsInterval int `yaml:"stats_interval"`
}

func DefaultConfig() *Config {
	return &Config{
		BroadcastAddr: "255.255.255.255",
		BroadcastPort: 8101,
		EncoderCPU:    2,
		TimerCPU:      3,
		RTPriority:    80,
		GPIOChip:      "gpiochip0",
		Pins: PinConfig{
			Data:          17,
			Stable:        18,
			EncoderActive: 22,
			Heartbeat:     23,
			SafetyClock:   24,
		},
		StatsInterval: 60,
	}
}

/*
 * Read the configuration file, if there is one, on top of the
 * defaults.  An empty path means defaults only.
 */
func LoadConfig(path string) (*Config, error) {
	var cfg = DefaultConfig()

	if path != "" {
		var raw, readErr = os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("reading config file: %w", readErr)
		}

		if yamlErr := yaml.Unmarshal(raw, cfg); yamlErr != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, yamlErr)
		}
	}

	if validErr := cfg.validate(); validErr != nil {
		return nil, validErr
	}

	return cfg, nil
}

func (cfg *Config) validate() error {
	if _, addrErr := netip.ParseAddr(cfg.BroadcastAddr); addrErr != nil {
		return fmt.Errorf("broadcast_addr %q: %w", cfg.BroadcastAddr, addrErr)
	}

	if cfg.BroadcastPort < 1 || cfg.BroadcastPort > 65535 {
		return fmt.Errorf("broadcast_port %d out of range", cfg.BroadcastPort)
	}

	if cfg.EncoderCPU < 0 || cfg.TimerCPU < 0 {
		return fmt.Errorf("CPU indices must be non-negative, got encoder %d timer %d", cfg.EncoderCPU, cfg.TimerCPU)
	}

	if cfg.EncoderCPU == cfg.TimerCPU {
		return fmt.Errorf("encoder and timer must be pinned to different CPUs, both are %d", cfg.EncoderCPU)
	}

	if cfg.RTPriority < 0 || cfg.RTPriority > 99 {
		return fmt.Errorf("rt_priority %d out of range 0-99", cfg.RTPriority)
	}

	var seen = map[int]string{}
	for name, offset := range map[string]int{
		"data":           cfg.Pins.Data,
		"stable":         cfg.Pins.Stable,
		"encoder_active": cfg.Pins.EncoderActive,
		"heartbeat":      cfg.Pins.Heartbeat,
		"safety_clock":   cfg.Pins.SafetyClock,
	} {
		if offset < 0 {
			return fmt.Errorf("pin %s has negative offset %d", name, offset)
		}
		if other, dup := seen[offset]; dup {
			return fmt.Errorf("pins %s and %s share offset %d", name, other, offset)
		}
		seen[offset] = name
	}

	return nil
}
