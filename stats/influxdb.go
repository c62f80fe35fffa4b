/*
 * SPDX-FileCopyrightText: Mjpegflow Copyright © 2021 ODMedia B.V. All right reserved.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package stats

import (
	"context"
	"net/url"
	"reflect"
	"sync"
	"time"

	"github.com/Showmax/go-fqdn"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/odmedia/mjpegflow/config"
	"github.com/odmedia/mjpegflow/logging"
	"github.com/odmedia/mjpegflow/version"
	"github.com/sam-kamerer/go-runtime-metrics/v2/pkg/collector"
)

var (
	configlock             sync.RWMutex
	influxClient           influxdb2.Client
	influxDBWriteApi       api.WriteAPIBlocking = nil
	hostname               string
	applicationidentifier  string
	probemeasurement       string
	applicationmeasurement string
)

func SetupInfluxDB(ctx context.Context, c *config.InfluxDBConfig, identifier string) error {
	configlock.Lock()
	defer configlock.Unlock()
	var err error
	probemeasurement = "mjpeg-probe"
	applicationmeasurement = "mjpegflow"
	if c.ProbeMeasurement != "" {
		probemeasurement = c.ProbeMeasurement
	}
	if c.ApplicationMeasurement != "" {
		applicationmeasurement = c.ApplicationMeasurement
	}
	hostname, err = fqdn.FqdnHostname()
	if err != nil {
		return err
	}
	applicationidentifier = identifier
	if influxClient != nil {
		influxClient.Close()
	}
	influxClient = influxdb2.NewClient(c.Url, c.Token)
	influxDBWriteApi = influxClient.WriteAPIBlocking(c.Org, c.Bucket)
	go InfluxDBPeriodic(ctx)
	return nil
}

func InfluxDisable() {
	configlock.Lock()
	defer configlock.Unlock()
	if influxClient != nil {
		influxClient.Close()
	}
	influxClient = nil
	influxDBWriteApi = nil
}

func influxEnabled() bool {
	configlock.RLock()
	defer configlock.RUnlock()
	return influxDBWriteApi != nil
}

func structToMap(s interface{}) map[string]interface{} {
	m := make(map[string]interface{})
	elem := reflect.ValueOf(s).Elem()
	relType := elem.Type()
	for i := 0; i < relType.NumField(); i++ {
		m[relType.Field(i).Name] = elem.Field(i).Interface()
	}
	return m
}

func probePoint(identifier string, p *ProbeStats, ts time.Time) *influxdbPoint {
	values := structToMap(p)
	tags := map[string]string{"identifier": identifier, "hostname": hostname, "field": p.Field}
	delete(values, "Field")
	delete(values, "Url")
	if u, err := url.Parse(p.Url); err == nil && u.Host != "" {
		tags["remotehost"] = u.Host
	}
	if values["Error"] == "" {
		delete(values, "Error")
	}
	return &influxdbPoint{measurement: probemeasurement, tags: tags, values: values, ts: ts}
}

type influxdbPoint struct {
	measurement string
	tags        map[string]string
	values      map[string]interface{}
	ts          time.Time
}

func (s *Stats) writeInfluxStats(p *ProbeStats, ts time.Time) {
	configlock.RLock()
	defer configlock.RUnlock()
	if influxDBWriteApi == nil {
		return
	}
	pt := probePoint(s.identifier, p, ts)
	point := influxdb2.NewPoint(pt.measurement, pt.tags, pt.values, pt.ts)
	if err := influxDBWriteApi.WritePoint(context.Background(), point); err != nil {
		logging.Log.Error().Str("module", "influxdb-stats").Err(err).Msg("error writing probe point")
	}
}

func InfluxDBPeriodic(ctx context.Context) {
	collector := collector.New(nil)
	ticker := time.NewTicker(collector.PauseDur)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			configlock.RLock()
			if influxDBWriteApi == nil {
				configlock.RUnlock()
				return
			}
			fields := collector.CollectStats()
			tags := fields.Tags()
			tags["identifier"] = applicationidentifier
			tags["hostname"] = hostname
			values := fields.Values()
			values["go.os"] = tags["go.os"]
			values["go.arch"] = tags["go.arch"]
			values["go.version"] = tags["go.version"]
			values["mjpegflow.version"] = version.CombinedVersion
			delete(tags, "go.os")
			delete(tags, "go.arch")
			delete(tags, "go.version")
			point := influxdb2.NewPoint(
				applicationmeasurement,
				tags,
				values,
				time.Now(),
			)
			err := influxDBWriteApi.WritePoint(context.Background(), point)
			if err != nil {
				logging.Log.Error().Str("module", "influxdb-stats").Err(err).Msg("error writing application point")
			}
			configlock.RUnlock()
		}
	}
}
