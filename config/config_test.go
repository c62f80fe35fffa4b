/*
 * SPDX-FileCopyrightText: Mjpegflow Copyright © 2021 ODMedia B.V. All right reserved.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "mjpegflow.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
identifier: node-1
listenhttp: ":8080"
storefile: /var/lib/mjpegflow/entries.yaml
probetimeout: 30s
influxdb:
  url: http://influx:8086
  bucket: cameras
`), 0o644))

	c, err := LoadFromFile(file)
	require.NoError(t, err)
	assert.Equal(t, "node-1", c.Identifier)
	assert.Equal(t, ":8080", c.ListenHTTP)
	assert.Equal(t, DefaultWorkers, c.Workers)
	assert.Equal(t, 10*time.Second, c.ProbeTimeout)
	require.NotNil(t, c.InfluxDB)
	assert.Equal(t, "cameras", c.InfluxDB.Bucket)
	assert.NoError(t, ValidateConfig(c))
}

func TestValidateConfig(t *testing.T) {
	assert.Error(t, ValidateConfig(&Config{}))
	assert.Error(t, ValidateConfig(&Config{Identifier: "x", Workers: -1}))
	assert.Error(t, ValidateConfig(&Config{Identifier: "x", InfluxDB: &InfluxDBConfig{Url: "influx"}}))
	assert.NoError(t, ValidateConfig(&Config{Identifier: "x", InfluxDB: &InfluxDBConfig{Url: "http://influx:8086"}}))
}

func TestSettingsFromInput(t *testing.T) {
	s, err := SettingsFromInput(map[string]any{
		KeyName:     "Porch",
		KeyMjpegURL: "http://cam/video",
	})
	require.NoError(t, err)
	assert.Equal(t, ConnectionSettings{Name: "Porch", Address: "http://cam/video", VerifyTLS: true}, s)
	assert.Equal(t, "Porch", s.Title())

	s, err = SettingsFromInput(map[string]any{KeyMjpegURL: "http://cam/video", KeyVerifySSL: false})
	require.NoError(t, err)
	assert.False(t, s.VerifyTLS)
	assert.Equal(t, "http://cam/video", s.Title())

	_, err = SettingsFromInput(map[string]any{KeyMjpegURL: 12})
	assert.Error(t, err)
	_, err = SettingsFromInput(map[string]any{KeyMjpegURL: "http://cam", KeyVerifySSL: "no"})
	assert.Error(t, err)
}

func TestOptionsDropsNameAndEmptyStill(t *testing.T) {
	s := ConnectionSettings{Name: "Porch", Address: "http://cam/video", VerifyTLS: true}
	o := s.Options()
	assert.Equal(t, "http://cam/video", o.Address)
	assert.Nil(t, o.StillImageAddress)
	assert.Equal(t, ConnectionSettings{Address: "http://cam/video", VerifyTLS: true}, SettingsFromOptions(o))

	s.StillImageAddress = "http://cam/still"
	o = s.Options()
	require.NotNil(t, o.StillImageAddress)
	assert.Equal(t, "http://cam/still", *o.StillImageAddress)
}

func TestSettingsValidate(t *testing.T) {
	fields, err := ConnectionSettings{Address: "http://cam/video"}.Validate()
	require.NoError(t, err)
	assert.Empty(t, fields)

	fields, err = ConnectionSettings{Address: "cam", StillImageAddress: "still"}.Validate()
	require.NoError(t, err)
	assert.Contains(t, fields, KeyMjpegURL)
	assert.Contains(t, fields, KeyStillImageURL)

	fields, err = ConnectionSettings{}.Validate()
	require.NoError(t, err)
	assert.Contains(t, fields, KeyMjpegURL)
	assert.NotContains(t, fields, KeyStillImageURL)
}
