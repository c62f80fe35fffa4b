/*
 * SPDX-FileCopyrightText: Mjpegflow Copyright © 2021 ODMedia B.V. All right reserved.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/odmedia/mjpegflow/entry"
	"github.com/odmedia/mjpegflow/flow"
	"github.com/odmedia/mjpegflow/logging"
	"github.com/odmedia/mjpegflow/sensor"
	"github.com/odmedia/mjpegflow/version"
)

type api struct {
	manager  *flow.Manager
	store    *entry.Store
	entities *sensor.Registry
}

func (a *api) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/status", a.status).Methods(http.MethodGet)
	r.HandleFunc("/entries", a.listEntries).Methods(http.MethodGet)
	r.HandleFunc("/entries/{id}", a.removeEntry).Methods(http.MethodDelete)
	r.HandleFunc("/entries/{id}/options", a.startOptions).Methods(http.MethodPost)
	r.HandleFunc("/entities", a.listEntities).Methods(http.MethodGet)
	r.HandleFunc("/flows", a.listFlows).Methods(http.MethodGet)
	r.HandleFunc("/flows", a.startSetup).Methods(http.MethodPost)
	r.HandleFunc("/flows/{id}", a.configure).Methods(http.MethodPost)
	r.HandleFunc("/flows/{id}", a.abortFlow).Methods(http.MethodDelete)
	return r
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	bytes, err := json.Marshal(v)
	if err != nil {
		logging.Log.Error().Err(err).Msg("unable to marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Unable to marshal to json"))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(code)
	_, _ = w.Write(bytes)
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, flow.ErrUnknownFlow), errors.Is(err, flow.ErrUnknownEntry), errors.Is(err, entry.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, flow.ErrInvalidInput):
		code = http.StatusBadRequest
	case errors.Is(err, flow.ErrFlowFinished):
		code = http.StatusConflict
	default:
		logging.Log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, code, map[string]string{"message": err.Error()})
}

func (a *api) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "OK",
		"OK":      true,
		"version": version.CombinedVersion,
		"entries": len(a.store.Entries()),
		"flows":   len(a.manager.Progress()),
	})
}

func (a *api) listEntries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.store.Entries())
}

func (a *api) removeEntry(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := a.store.Remove(id); err != nil {
		writeError(w, err)
		return
	}
	a.entities.Unload(id)
	logging.Log.Info().Str("entry_id", id).Msg("entry removed")
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) listEntities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.entities.States())
}

func (a *api) listFlows(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.manager.Progress())
}

func (a *api) startSetup(w http.ResponseWriter, r *http.Request) {
	res, err := a.manager.StartSetup(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *api) startOptions(w http.ResponseWriter, r *http.Request) {
	res, err := a.manager.StartOptions(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *api) configure(w http.ResponseWriter, r *http.Request) {
	var input map[string]interface{}
	if r.ContentLength != 0 {
		err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64*1024)).Decode(&input)
		if err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid json: " + err.Error()})
			return
		}
	}
	res, err := a.manager.Configure(r.Context(), mux.Vars(r)["id"], input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *api) abortFlow(w http.ResponseWriter, r *http.Request) {
	if err := a.manager.Abort(mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func startHttpServer(listen string, handler http.Handler) (*http.Server, error) {
	srv := &http.Server{
		Addr:              listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	ec := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			ec <- err
		}
	}()
	select {
	case err := <-ec:
		return nil, err
	case <-time.After(10 * time.Millisecond):
		logging.Log.Info().Str("listen", listen).Msg("http server started")
		return srv, nil
	}
}
