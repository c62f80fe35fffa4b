/*
 * SPDX-FileCopyrightText: Mjpegflow Copyright © 2021 ODMedia B.V. All right reserved.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package config

type InfluxDBConfig struct {
	Url                    string `yaml:"url"`
	Token                  string `yaml:"token"`
	Bucket                 string `yaml:"bucket"`
	Org                    string `yaml:"org"`
	ProbeMeasurement       string `yaml:"probe"`
	ApplicationMeasurement string `yaml:"application"`
}

func ValidateInfluxDBConfig(c *InfluxDBConfig) error {
	if c == nil {
		return nil
	}
	return validateURL(c.Url)
}
