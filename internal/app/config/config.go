package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jordauld1/pi-sensor/internal/ports"
)

type Config struct {
	Policy    ports.Policy    `yaml:"policy"`
	Location  string          `yaml:"location"`
	I2C       I2CConfig       `yaml:"i2c"`
	Timescale TimescaleConfig `yaml:"timescale"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Display   DisplayConfig   `yaml:"display"`
}

// I2CConfig names the bus and the breakout addresses. Zero addresses fall
// back to the PiicoDev defaults in the sensor adapters.
type I2CConfig struct {
	Bus        string `yaml:"bus"`
	TMP117Addr uint16 `yaml:"tmp117_addr"`
	BME280Addr uint16 `yaml:"bme280_addr"`
	ENS160Addr uint16 `yaml:"ens160_addr"`
}

type TimescaleConfig struct {
	ConnString string `yaml:"conn_string"`
	Table      string `yaml:"table"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// MQTTConfig is optional: with no broker configured, nothing is published.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
}

type DisplayConfig struct {
	Console bool `yaml:"console"`
	OLED    bool `yaml:"oled"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.Policy.SampleInterval == 0 {
		c.Policy.SampleInterval = time.Second
	}
	if c.Policy.FlushInterval == 0 {
		c.Policy.FlushInterval = 30 * time.Second
	}
	if c.Policy.ReadTimeout == 0 {
		c.Policy.ReadTimeout = 2 * time.Second
	}
	if c.Policy.BufferCapacity == 0 {
		c.Policy.BufferCapacity = 1024
	}
	if c.Policy.BatchSize == 0 {
		c.Policy.BatchSize = 50
	}
	if c.Policy.MaxRetries == 0 {
		c.Policy.MaxRetries = 3
	}
	if c.Policy.RetryBackoff == 0 {
		c.Policy.RetryBackoff = 5 * time.Second
	}
	if c.Policy.DegradedAfter == 0 {
		c.Policy.DegradedAfter = 3
	}
	if c.Policy.FailedAfter == 0 {
		c.Policy.FailedAfter = 10
	}
	if c.Location == "" {
		c.Location = "indoor"
	}
	if c.Timescale.Table == "" {
		c.Timescale.Table = "env_samples"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}
	if c.MQTT.Broker != "" {
		if c.MQTT.ClientID == "" {
			c.MQTT.ClientID = "pi-sensor"
		}
		if c.MQTT.Topic == "" {
			c.MQTT.Topic = "pisensor/sample"
		}
	}
}

func (c *Config) Validate() error {
	if c.Timescale.ConnString == "" {
		return fmt.Errorf("timescale.conn_string is required")
	}
	if c.Policy.DegradedAfter >= c.Policy.FailedAfter {
		return fmt.Errorf("policy.degraded_after (%d) must be below policy.failed_after (%d)",
			c.Policy.DegradedAfter, c.Policy.FailedAfter)
	}
	if c.Policy.BatchSize > c.Policy.BufferCapacity {
		return fmt.Errorf("policy.batch_size (%d) exceeds policy.buffer_capacity (%d)",
			c.Policy.BatchSize, c.Policy.BufferCapacity)
	}
	return nil
}
