/*
 * SPDX-FileCopyrightText: Mjpegflow Copyright © 2021 ODMedia B.V. All right reserved.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/odmedia/mjpegflow/config"
	"github.com/odmedia/mjpegflow/entry"
	"github.com/odmedia/mjpegflow/flow"
	"github.com/odmedia/mjpegflow/sensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	c := &config.Config{
		Identifier: "test",
		StoreFile:  filepath.Join(t.TempDir(), "entries.yaml"),
	}
	config.ApplyDefaults(c)
	a, err := newApplication(context.Background(), c)
	require.NoError(t, err)
	t.Cleanup(func() { a.stop(time.Second) })
	srv := httptest.NewServer(a.api.routes())
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, method, url string, body interface{}, out interface{}) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestAPISetupAndEdit(t *testing.T) {
	cam := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer cam.Close()
	srv := testServer(t)

	var res flow.Result
	require.Equal(t, http.StatusOK, call(t, http.MethodPost, srv.URL+"/flows", nil, &res))
	assert.Equal(t, flow.ResultForm, res.Type)
	assert.Equal(t, config.KeyName, res.Schema[0].Key)

	var done flow.Result
	require.Equal(t, http.StatusOK, call(t, http.MethodPost, srv.URL+"/flows/"+res.FlowID, map[string]interface{}{
		config.KeyName:     "Porch",
		config.KeyMjpegURL: cam.URL + "/video",
	}, &done))
	require.Equal(t, flow.ResultCreateEntry, done.Type)
	require.NotNil(t, done.Entry)

	var entries []entry.Entry
	require.Equal(t, http.StatusOK, call(t, http.MethodGet, srv.URL+"/entries", nil, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Porch", entries[0].Title)

	var entities []sensor.State
	require.Equal(t, http.StatusOK, call(t, http.MethodGet, srv.URL+"/entities", nil, &entities))
	require.Len(t, entities, 1)
	assert.Equal(t, "Example Sensor", entities[0].Name)

	var opts flow.Result
	require.Equal(t, http.StatusOK, call(t, http.MethodPost, srv.URL+"/entries/"+done.Entry.ID+"/options", nil, &opts))
	assert.Equal(t, flow.StepInit, opts.StepID)
	require.Equal(t, http.StatusOK, call(t, http.MethodPost, srv.URL+"/flows/"+opts.FlowID, map[string]interface{}{
		config.KeyMjpegURL:      cam.URL + "/other",
		config.KeyStillImageURL: cam.URL + "/still",
	}, &opts))
	assert.Equal(t, flow.ResultCreateEntry, opts.Type)
	assert.Equal(t, "Porch", opts.Title)

	assert.Equal(t, http.StatusNoContent, call(t, http.MethodDelete, srv.URL+"/entries/"+done.Entry.ID, nil, nil))
	assert.Equal(t, http.StatusNotFound, call(t, http.MethodDelete, srv.URL+"/entries/"+done.Entry.ID, nil, nil))
	require.Equal(t, http.StatusOK, call(t, http.MethodGet, srv.URL+"/entities", nil, &entities))
	assert.Empty(t, entities)
}

func TestAPIErrors(t *testing.T) {
	srv := testServer(t)

	assert.Equal(t, http.StatusNotFound, call(t, http.MethodPost, srv.URL+"/flows/unknown", map[string]interface{}{}, nil))
	assert.Equal(t, http.StatusNotFound, call(t, http.MethodPost, srv.URL+"/entries/unknown/options", nil, nil))

	var res flow.Result
	require.Equal(t, http.StatusOK, call(t, http.MethodPost, srv.URL+"/flows", nil, &res))
	assert.Equal(t, http.StatusBadRequest, call(t, http.MethodPost, srv.URL+"/flows/"+res.FlowID, map[string]interface{}{
		config.KeyName: "missing url",
	}, nil))

	resp, err := http.Post(srv.URL+"/flows/"+res.FlowID, "application/json", bytes.NewReader([]byte("{")))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var progress []flow.Progress
	require.Equal(t, http.StatusOK, call(t, http.MethodGet, srv.URL+"/flows", nil, &progress))
	require.Len(t, progress, 1)
	assert.Equal(t, flow.KindSetup, progress[0].Kind)

	assert.Equal(t, http.StatusNoContent, call(t, http.MethodDelete, srv.URL+"/flows/"+res.FlowID, nil, nil))

	var status map[string]interface{}
	require.Equal(t, http.StatusOK, call(t, http.MethodGet, srv.URL+"/status", nil, &status))
	assert.Equal(t, "OK", status["status"])
	assert.EqualValues(t, 0, status["flows"])
}
