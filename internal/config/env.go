package config

import "github.com/kelseyhightower/envconfig"

// envOverrides mirrors the yaml fields that can be overridden from the
// environment. Only set variables win; empty values leave the file/default
// value alone.
type envOverrides struct {
	Addr            string `envconfig:"ADDR"`
	DataDir         string `envconfig:"DATA_DIR"`
	SweepIntervalMM int    `envconfig:"SWEEP_INTERVAL_MINUTES"`
	LogLevel        string `envconfig:"LOG_LEVEL"`
}

// ApplyEnv layers WT_* environment variables over c.
func (c *Config) ApplyEnv() error {
	var env envOverrides
	if err := envconfig.Process("wt", &env); err != nil {
		return err
	}
	if env.Addr != "" {
		c.Server.Addr = env.Addr
	}
	if env.DataDir != "" {
		c.Storage.DataDir = env.DataDir
	}
	if env.SweepIntervalMM > 0 {
		c.Sweep.IntervalMinutes = env.SweepIntervalMM
	}
	if env.LogLevel != "" {
		c.Logging.Level = env.LogLevel
	}
	return nil
}
