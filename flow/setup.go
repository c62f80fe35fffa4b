/*
 * SPDX-FileCopyrightText: Mjpegflow Copyright © 2021 ODMedia B.V. All right reserved.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package flow

import (
	"context"
	"fmt"

	"github.com/odmedia/mjpegflow/config"
	"github.com/odmedia/mjpegflow/probe"
	"github.com/odmedia/mjpegflow/schema"
)

// SetupFlow adds a new camera.
type SetupFlow struct {
	host      Host
	validator Validator
}

func NewSetupFlow(host Host, v Validator) *SetupFlow {
	return &SetupFlow{host: host, validator: v}
}

func (f *SetupFlow) Step(ctx context.Context, input map[string]any) (*Result, error) {
	errs := probe.Errors{}
	if input != nil {
		s, err := config.SettingsFromInput(input)
		if err != nil {
			return nil, fmt.Errorf("decoding input: %w", err)
		}
		errs = f.validator.Validate(ctx, f.host, s)
		if len(errs) == 0 {
			for _, e := range f.host.Entries() {
				if e.Matches(s.Address) {
					return abort(ReasonAlreadyConfigured), nil
				}
			}
			return createEntry(s.Title(), s.Options()), nil
		}
	} else {
		input = map[string]any{}
	}
	return showForm(StepUser, schema.Build(input, true), errs), nil
}
