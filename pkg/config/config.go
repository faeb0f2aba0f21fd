package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the daemon configuration.
type Config struct {
	Network  NetworkConfig  `yaml:"network"`
	Bus      BusConfig      `yaml:"bus"`
	Sampling SamplingConfig `yaml:"sampling"`
}

// NetworkConfig contains the TCP listener configuration.
type NetworkConfig struct {
	Listen string `yaml:"listen"`
}

// BusConfig contains I2C bus and device addressing.
type BusConfig struct {
	Name       string `yaml:"name"`        // i2creg bus name, e.g. "1" or "/dev/i2c-1"
	MuxAddr    uint16 `yaml:"mux_addr"`    // TCA9548A address
	SensorAddr uint16 `yaml:"sensor_addr"` // LIS3DH address (same on every channel)
}

// SamplingConfig contains boot-time sampling parameters.
type SamplingConfig struct {
	Datarate int `yaml:"datarate"` // Hz, applied to every detected sensor at boot
	Range    int `yaml:"range"`    // g, applied to every detected sensor at boot
	Buffer   int `yaml:"buffer"`   // sample queue capacity
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Network: NetworkConfig{
			Listen: ":8080",
		},
		Bus: BusConfig{
			Name:       "1",
			MuxAddr:    0x70,
			SensorAddr: 0x18,
		},
		Sampling: SamplingConfig{
			Datarate: 1,
			Range:    2,
			Buffer:   50,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Ensure minimum required fields are set (use defaults if missing)
	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Network.Listen == "" {
		c.Network.Listen = def.Network.Listen
	}

	if c.Bus.Name == "" {
		c.Bus.Name = def.Bus.Name
	}
	if c.Bus.MuxAddr == 0 {
		c.Bus.MuxAddr = def.Bus.MuxAddr
	}
	if c.Bus.SensorAddr == 0 {
		c.Bus.SensorAddr = def.Bus.SensorAddr
	}

	if c.Sampling.Datarate == 0 {
		c.Sampling.Datarate = def.Sampling.Datarate
	}
	if c.Sampling.Range == 0 {
		c.Sampling.Range = def.Sampling.Range
	}
	if c.Sampling.Buffer == 0 {
		c.Sampling.Buffer = def.Sampling.Buffer
	}
}
