/*
 * SPDX-FileCopyrightText: Mjpegflow Copyright © 2021 ODMedia B.V. All right reserved.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package flow

import (
	"context"
	"fmt"

	"github.com/odmedia/mjpegflow/config"
	"github.com/odmedia/mjpegflow/entry"
	"github.com/odmedia/mjpegflow/probe"
	"github.com/odmedia/mjpegflow/schema"
)

// OptionsFlow edits the options of an existing entry. The title is left
// alone and the options are replaced, not merged.
type OptionsFlow struct {
	host      Host
	validator Validator
	entryID   string
}

func NewOptionsFlow(host Host, v Validator, entryID string) *OptionsFlow {
	return &OptionsFlow{host: host, validator: v, entryID: entryID}
}

func (f *OptionsFlow) current() (entry.Entry, bool) {
	for _, e := range f.host.Entries() {
		if e.ID == f.entryID {
			return e, true
		}
	}
	return entry.Entry{}, false
}

func (f *OptionsFlow) Step(ctx context.Context, input map[string]any) (*Result, error) {
	current, ok := f.current()
	if !ok {
		return abort(ReasonUnknownEntry), nil
	}
	errs := probe.Errors{}
	if input != nil {
		s, err := config.SettingsFromInput(input)
		if err != nil {
			return nil, fmt.Errorf("decoding input: %w", err)
		}
		s.Name = ""
		errs = f.validator.Validate(ctx, f.host, s)
		if len(errs) == 0 {
			for _, e := range f.host.Entries() {
				if e.ID != f.entryID && e.Matches(s.Address) {
					errs = probe.Errors{config.KeyMjpegURL: probe.ErrAlreadyConfigured}
				}
			}
		}
		if len(errs) == 0 {
			return createEntry("", s.Options()), nil
		}
	}
	defaults := input
	if len(defaults) == 0 {
		defaults = config.SettingsFromOptions(current.Options).Input()
	}
	return showForm(StepInit, schema.Build(defaults, false), errs), nil
}
