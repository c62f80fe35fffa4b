/*
 * SPDX-FileCopyrightText: Mjpegflow Copyright © 2021 ODMedia B.V. All right reserved.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/odmedia/mjpegflow/config"
	"github.com/odmedia/mjpegflow/logging"
)

var (
	influxcancel  context.CancelFunc
	configFile    string
	configLock    sync.Mutex
	runningConfig *config.Config
	httpsrv       *http.Server
	app           *application
)

func SignalHandler(ctx context.Context, cancel context.CancelFunc) {
	signalChan := make(chan os.Signal, 1)
	signals := []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	if configFile != "" {
		signals = append(signals, syscall.SIGHUP)
	}
	signal.Notify(signalChan, signals...)

	go func() {
		for {
			select {
			case s := <-signalChan:
				if s == syscall.SIGTERM || s == syscall.SIGINT {
					logging.Log.Info().Msg("received termination signal, shutting down")
					cancel()
					return
				}
				if s == syscall.SIGHUP {
					logging.Log.Info().Msg("got SIGHUP, reloading config")
					go reloadConfigfile(ctx)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	conf, err := parseArguments(os.Args[1:])
	if err != nil {
		logging.Log.Error().Err(err).Msgf("failed to configure application %s", err)
		os.Exit(1)
	}

	if err := applyConfig(ctx, conf); err != nil {
		logging.Log.Error().Err(err).Msgf("failed to configure application %s", err)
		os.Exit(1)
	}

	SignalHandler(ctx, cancel)

	<-ctx.Done()

	if httpsrv != nil {
		shutdownctx, shutdowncancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := httpsrv.Shutdown(shutdownctx); err != nil {
			logging.Log.Error().Err(err).Msg("error stopping webserver")
		}
		shutdowncancel()
	}
	influxcancel()
	app.stop(time.Second)
}
