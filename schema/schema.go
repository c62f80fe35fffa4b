/*
 * SPDX-FileCopyrightText: Mjpegflow Copyright © 2021 ODMedia B.V. All right reserved.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

// Package schema describes the connection form shown during setup and edit.
package schema

import (
	"errors"
	"fmt"

	"github.com/odmedia/mjpegflow/config"
)

var (
	ErrMissingField = errors.New("required field missing")
	ErrInvalidType  = errors.New("invalid field type")
)

type FieldType string

const (
	TypeString  FieldType = "string"
	TypeBoolean FieldType = "boolean"
)

// Field is a single form field. Default is applied when the field is not
// submitted, SuggestedValue only prefills the form.
type Field struct {
	Key            string    `json:"name"`
	Type           FieldType `json:"type"`
	Required       bool      `json:"required"`
	Default        any       `json:"default,omitempty"`
	SuggestedValue any       `json:"suggested_value,omitempty"`
}

// Schema is an ordered list of fields.
type Schema []Field

// Build returns the camera form, with a leading name field when showName is
// set. defaults usually holds the previous submission or the stored options.
func Build(defaults map[string]any, showName bool) Schema {
	verify := true
	if v, ok := defaults[config.KeyVerifySSL].(bool); ok {
		verify = v
	}
	s := Schema{
		{Key: config.KeyMjpegURL, Type: TypeString, Required: true, Default: defaults[config.KeyMjpegURL]},
		{Key: config.KeyStillImageURL, Type: TypeString, SuggestedValue: defaults[config.KeyStillImageURL]},
		{Key: config.KeyVerifySSL, Type: TypeBoolean, Default: verify},
	}
	if showName {
		name := Field{Key: config.KeyName, Type: TypeString, Required: true, Default: defaults[config.KeyName]}
		s = append(Schema{name}, s...)
	}
	return s
}

// Field looks up a field by key.
func (s Schema) Field(key string) (Field, bool) {
	for _, f := range s {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Keys returns the field keys in order.
func (s Schema) Keys() []string {
	keys := make([]string, len(s))
	for i, f := range s {
		keys[i] = f.Key
	}
	return keys
}

// Coerce checks submitted values against the schema and fills defaults.
// Keys not in the schema are dropped.
func (s Schema) Coerce(input map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(s))
	for _, f := range s {
		v, ok := input[f.Key]
		if !ok || v == nil {
			if f.Default != nil {
				out[f.Key] = f.Default
				continue
			}
			if f.Required {
				return nil, fmt.Errorf("%s: %w", f.Key, ErrMissingField)
			}
			continue
		}
		switch f.Type {
		case TypeString:
			if _, ok := v.(string); !ok {
				return nil, fmt.Errorf("%s: expected string, got %T: %w", f.Key, v, ErrInvalidType)
			}
		case TypeBoolean:
			if _, ok := v.(bool); !ok {
				return nil, fmt.Errorf("%s: expected boolean, got %T: %w", f.Key, v, ErrInvalidType)
			}
		}
		out[f.Key] = v
	}
	return out, nil
}
