/*
 * SPDX-FileCopyrightText: Mjpegflow Copyright © 2021 ODMedia B.V. All right reserved.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/odmedia/mjpegflow/config"
	"github.com/odmedia/mjpegflow/logging"
	"github.com/odmedia/mjpegflow/version"
)

func parseArguments(args []string) (*config.Config, error) {
	var (
		listen         string
		storeFile      string
		identifier     string
		logLevel       string
		workers        int
		statsFile      string
		statsStdOut    bool
		influxDBUrl    string
		influxDBToken  string
		influxDBOrg    string
		influxDBBucket string
		configTest     bool
		showVersion    bool
		conf           *config.Config
	)
	fs := flag.NewFlagSet("mjpegflow", flag.ContinueOnError)
	fs.StringVar(&configFile, "configfile", "", "config file")
	fs.BoolVar(&configTest, "configtest", false, "don't load config, just validate it")
	fs.StringVar(&listen, "listen", "", "address for the http api, overrides the config file")
	fs.StringVar(&storeFile, "storefile", "", "file to persist entries to, overrides the config file")
	fs.StringVar(&identifier, "identifier", "DEFAULTID", "identifier used in stats, when running without configfile")
	fs.StringVar(&logLevel, "loglevel", "", "log level (debug, info, warn, error)")
	fs.IntVar(&workers, "workers", config.DefaultWorkers, "number of probe workers, when running without configfile")
	fs.StringVar(&statsFile, "stats-file", "", "base name for probe stats file")
	fs.BoolVar(&statsStdOut, "stats-stdout", false, "print probe stats to stdout")
	fs.StringVar(&influxDBUrl, "influxdb-url", "", "url of influxdb server to write stats to")
	fs.StringVar(&influxDBToken, "influxdb-token", "", "influxdb token")
	fs.StringVar(&influxDBOrg, "influxdb-org", "", "influxdb org")
	fs.StringVar(&influxDBBucket, "influxdb-bucket", "", "influxdb bucket")
	fs.BoolVar(&showVersion, "version", false, "")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if showVersion {
		fmt.Printf("Mjpegflow: %s git: %s\n", version.ProjectVersion, version.GitVersion)
		os.Exit(0)
	}
	if configTest && configFile == "" {
		return nil, errors.New("cannot test config without configfile")
	}

	if configFile == "" {
		conf = &config.Config{
			Identifier:  identifier,
			Workers:     workers,
			StatsFile:   statsFile,
			StatsStdOut: statsStdOut,
			LogLevel:    logLevel,
		}
		if influxDBUrl != "" {
			conf.InfluxDB = &config.InfluxDBConfig{
				Url:    influxDBUrl,
				Token:  influxDBToken,
				Bucket: influxDBBucket,
				Org:    influxDBOrg,
			}
		}
		config.ApplyDefaults(conf)
	} else {
		var err error
		conf, err = config.LoadFromFile(configFile)
		if err != nil {
			return nil, err
		}
		if logLevel != "" {
			conf.LogLevel = logLevel
		}
	}
	if listen != "" {
		conf.ListenHTTP = listen
	}
	if storeFile != "" {
		conf.StoreFile = storeFile
	}

	if err := config.ValidateConfig(conf); err != nil {
		return nil, err
	}
	if configTest {
		logging.Log.Info().Msg("config OK")
		os.Exit(0)
	}
	return conf, nil
}
