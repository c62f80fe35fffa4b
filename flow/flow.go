/*
 * SPDX-FileCopyrightText: Mjpegflow Copyright © 2021 ODMedia B.V. All right reserved.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

// Package flow implements the camera setup and options flows and the manager
// driving them.
package flow

import (
	"context"

	"github.com/odmedia/mjpegflow/config"
	"github.com/odmedia/mjpegflow/entry"
	"github.com/odmedia/mjpegflow/probe"
	"github.com/odmedia/mjpegflow/schema"
)

const (
	StepUser = "user"
	StepInit = "init"

	ReasonAlreadyConfigured = "already_configured"
	ReasonUnknownEntry      = "unknown_entry"
)

// Host is what a flow needs from its surroundings: a read-only view of the
// existing entries and a worker context for blocking calls.
type Host interface {
	probe.Executor
	Entries() []entry.Entry
}

// Validator checks submitted settings, see probe.Prober.
type Validator interface {
	Validate(ctx context.Context, ex probe.Executor, s config.ConnectionSettings) probe.Errors
}

// Flow handles one step at a time. A nil input asks for the initial form.
type Flow interface {
	Step(ctx context.Context, input map[string]any) (*Result, error)
}

type ResultType string

const (
	ResultForm        ResultType = "form"
	ResultCreateEntry ResultType = "create_entry"
	ResultAbort       ResultType = "abort"
)

type Result struct {
	Type    ResultType     `json:"type"`
	FlowID  string         `json:"flow_id"`
	Handler string         `json:"handler,omitempty"`
	StepID  string         `json:"step_id,omitempty"`
	Schema  schema.Schema  `json:"data_schema,omitempty"`
	Errors  probe.Errors   `json:"errors,omitempty"`
	Title   string         `json:"title,omitempty"`
	Options *entry.Options `json:"options,omitempty"`
	Reason  string         `json:"reason,omitempty"`
	Entry   *entry.Entry   `json:"result,omitempty"`
}

func showForm(stepID string, s schema.Schema, errs probe.Errors) *Result {
	if errs == nil {
		errs = probe.Errors{}
	}
	return &Result{Type: ResultForm, StepID: stepID, Schema: s, Errors: errs}
}

func createEntry(title string, opts entry.Options) *Result {
	return &Result{Type: ResultCreateEntry, Title: title, Options: &opts}
}

func abort(reason string) *Result {
	return &Result{Type: ResultAbort, Reason: reason}
}
