/*
 * SPDX-FileCopyrightText: Mjpegflow Copyright © 2021 ODMedia B.V. All right reserved.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultWorkers      = 4
	DefaultProbeTimeout = 10 * time.Second
)

type Config struct {
	Identifier   string          `yaml:"identifier"`
	ListenHTTP   string          `yaml:"listenhttp"`
	StoreFile    string          `yaml:"storefile"`
	LogLevel     string          `yaml:"loglevel"`
	Workers      int             `yaml:"workers"`
	ProbeTimeout time.Duration   `yaml:"probetimeout"`
	StatsStdOut  bool            `yaml:"statsstdout"`
	StatsFile    string          `yaml:"statsfile"`
	InfluxDB     *InfluxDBConfig `yaml:"influxdb,omitempty"`
}

// ApplyDefaults fills zero values, the probe timeout never exceeds the 10
// second bound.
func ApplyDefaults(c *Config) {
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.ProbeTimeout <= 0 || c.ProbeTimeout > DefaultProbeTimeout {
		c.ProbeTimeout = DefaultProbeTimeout
	}
}

func ValidateConfig(c *Config) error {
	if c.Identifier == "" {
		return errors.New("config identifier empty")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers: %d must be positive", c.Workers)
	}
	if c.StatsFile != "" {
		if _, err := os.Stat(c.StatsFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("statsfile: %s error: %w", c.StatsFile, err)
		}
	}
	if err := ValidateInfluxDBConfig(c.InfluxDB); err != nil {
		return fmt.Errorf("influx-db validation failed: %w", err)
	}
	return nil
}

func LoadFromFile(filename string) (*Config, error) {
	yamlData, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	conf := Config{}

	if err := yaml.Unmarshal(yamlData, &conf); err != nil {
		return nil, err
	}
	ApplyDefaults(&conf)
	return &conf, nil
}
