/*
 * SPDX-FileCopyrightText: Mjpegflow Copyright © 2021 ODMedia B.V. All right reserved.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package main

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/odmedia/mjpegflow/config"
	"github.com/odmedia/mjpegflow/entry"
	"github.com/odmedia/mjpegflow/executor"
	"github.com/odmedia/mjpegflow/flow"
	"github.com/odmedia/mjpegflow/logging"
	"github.com/odmedia/mjpegflow/probe"
	"github.com/odmedia/mjpegflow/sensor"
	"github.com/odmedia/mjpegflow/stats"
)

type application struct {
	executor *executor.Executor
	stats    *stats.Stats
	api      *api
}

// newApplication wires the entry store, the flows and the sensor platform.
func newApplication(ctx context.Context, c *config.Config) (*application, error) {
	s, err := stats.SetupStats(c.StatsStdOut, c.Identifier, c.StatsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to setup stats %w", err)
	}
	store := entry.NewStore(c.StoreFile)
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("failed to load entries %w", err)
	}
	ex := executor.New(ctx, c.Workers)
	prober := probe.New(c.ProbeTimeout, logging.Component("probe"), s)
	manager := flow.NewManager(store, ex, prober)
	entities := sensor.NewRegistry()
	manager.OnEntry(entities.Setup)
	for _, e := range store.Entries() {
		entities.Setup(e)
	}
	return &application{
		executor: ex,
		stats:    s,
		api:      &api{manager: manager, store: store, entities: entities},
	}, nil
}

func (a *application) stop(timeout time.Duration) {
	a.executor.Stop()
	a.executor.Wait(timeout)
	if err := a.stats.Close(); err != nil {
		logging.Log.Error().Err(err).Msg("closing stats file")
	}
}

func applyConfig(ctx context.Context, c *config.Config) error {
	var (
		influxctx context.Context
		err       error
	)
	if err := logging.SetLevel(c.LogLevel); err != nil {
		return err
	}

	influxctx, influxcancel = context.WithCancel(ctx)
	if c.InfluxDB != nil {
		if err := stats.SetupInfluxDB(influxctx, c.InfluxDB, c.Identifier); err != nil {
			return err
		}
	}
	app, err = newApplication(ctx, c)
	if err != nil {
		return err
	}
	if c.ListenHTTP != "" {
		httpsrv, err = startHttpServer(c.ListenHTTP, app.api.routes())
		if err != nil {
			return err
		}
	}
	configLock.Lock()
	runningConfig = c
	configLock.Unlock()
	return nil
}

func reloadConfigfile(ctx context.Context) {
	conf, err := config.LoadFromFile(configFile)
	if err != nil {
		logging.Log.Error().Err(err).Msg("failed to read configfile")
		return
	}

	if err := config.ValidateConfig(conf); err != nil {
		logging.Log.Error().Err(err).Msgf("failed to validate config file, not reloading: %s", err)
		return
	}

	configLock.Lock()
	defer configLock.Unlock()

	if reflect.DeepEqual(runningConfig, conf) {
		logging.Log.Info().Msg("config unchanged")
		return
	}

	if err := logging.SetLevel(conf.LogLevel); err != nil {
		logging.Log.Error().Err(err).Msg("invalid log level")
	}

	if !reflect.DeepEqual(runningConfig.InfluxDB, conf.InfluxDB) {
		influxcancel()
		var influxctx context.Context
		influxctx, influxcancel = context.WithCancel(ctx)
		if conf.InfluxDB != nil {
			if err := stats.SetupInfluxDB(influxctx, conf.InfluxDB, conf.Identifier); err != nil {
				logging.Log.Error().Err(err).Msg("failed to reconfigure influxdb")
				return
			}
		} else {
			stats.InfluxDisable()
		}
	}

	if runningConfig.ListenHTTP != conf.ListenHTTP {
		if httpsrv != nil {
			shutdownctx, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()
			if err := httpsrv.Shutdown(shutdownctx); err != nil {
				logging.Log.Error().Err(err).Msg("error stopping webserver")
				return
			}
			httpsrv = nil
		}
		if conf.ListenHTTP != "" {
			httpsrv, err = startHttpServer(conf.ListenHTTP, app.api.routes())
			if err != nil {
				logging.Log.Error().Err(err).Msg("failed to start webserver")
				return
			}
		}
	}

	if runningConfig.StoreFile != conf.StoreFile || runningConfig.Workers != conf.Workers ||
		runningConfig.ProbeTimeout != conf.ProbeTimeout || runningConfig.StatsFile != conf.StatsFile ||
		runningConfig.StatsStdOut != conf.StatsStdOut {
		logging.Log.Warn().Msg("store, worker and stats settings only apply after a restart")
		conf.StoreFile = runningConfig.StoreFile
		conf.Workers = runningConfig.Workers
		conf.ProbeTimeout = runningConfig.ProbeTimeout
		conf.StatsFile = runningConfig.StatsFile
		conf.StatsStdOut = runningConfig.StatsStdOut
	}

	runningConfig = conf
}
