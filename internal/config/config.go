package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Version string        `yaml:"version" json:"version"`
	Server  ServerConfig  `yaml:"server" json:"server"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Sweep   SweepConfig   `yaml:"sweep" json:"sweep"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

type StorageConfig struct {
	DataDir string `yaml:"data_dir" json:"data_dir"`
}

type SweepConfig struct {
	IntervalMinutes int `yaml:"interval_minutes" json:"interval_minutes"`
}

type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
}

func Default() *Config {
	return &Config{
		Version: "1",
		Server:  ServerConfig{Addr: ":8080"},
		Storage: StorageConfig{DataDir: "data"},
		Sweep:   SweepConfig{IntervalMinutes: 15},
		Logging: LoggingConfig{Level: "info"},
	}
}

func (c *Config) ApplyDefaults() {
	d := Default()
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = d.Storage.DataDir
	}
	if c.Sweep.IntervalMinutes <= 0 {
		c.Sweep.IntervalMinutes = d.Sweep.IntervalMinutes
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
}

func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Sweep.IntervalMinutes) * time.Minute
}

// Load reads a YAML config file. A missing file is not an error; the
// defaults apply and env overrides can take it from there.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	return &c, nil
}
