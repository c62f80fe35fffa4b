/*
 * SPDX-FileCopyrightText: Mjpegflow Copyright © 2021 ODMedia B.V. All right reserved.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/odmedia/mjpegflow/entry"
)

// Form and option keys.
const (
	KeyName          = "name"
	KeyMjpegURL      = "mjpeg_url"
	KeyStillImageURL = "still_image_url"
	KeyVerifySSL     = "verify_ssl"
)

// ConnectionSettings is what a user submits to set up or edit a camera. It
// only lives for the duration of a single flow step.
type ConnectionSettings struct {
	Name              string `json:"name"`
	Address           string `json:"mjpeg_url" validate:"required,url"`
	StillImageAddress string `json:"still_image_url" validate:"omitempty,url"`
	VerifyTLS         bool   `json:"verify_ssl"`
}

// SettingsFromInput decodes submitted form values. A missing verify_ssl
// means true.
func SettingsFromInput(input map[string]any) (ConnectionSettings, error) {
	s := ConnectionSettings{VerifyTLS: true}
	var err error
	if s.Name, err = stringField(input, KeyName); err != nil {
		return s, err
	}
	if s.Address, err = stringField(input, KeyMjpegURL); err != nil {
		return s, err
	}
	if s.StillImageAddress, err = stringField(input, KeyStillImageURL); err != nil {
		return s, err
	}
	if v, ok := input[KeyVerifySSL]; ok && v != nil {
		b, ok := v.(bool)
		if !ok {
			return s, fmt.Errorf("%s: expected boolean, got %T", KeyVerifySSL, v)
		}
		s.VerifyTLS = b
	}
	return s, nil
}

func stringField(input map[string]any, key string) (string, error) {
	v, ok := input[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected string, got %T", key, v)
	}
	return s, nil
}

// SettingsFromOptions turns stored options back into settings, used as form
// defaults by the options flow.
func SettingsFromOptions(o entry.Options) ConnectionSettings {
	s := ConnectionSettings{Address: o.Address, VerifyTLS: o.VerifyTLS}
	if o.StillImageAddress != nil {
		s.StillImageAddress = *o.StillImageAddress
	}
	return s
}

// Options drops the name, an empty still image address is stored as null.
func (s ConnectionSettings) Options() entry.Options {
	o := entry.Options{Address: s.Address, VerifyTLS: s.VerifyTLS}
	if s.StillImageAddress != "" {
		still := s.StillImageAddress
		o.StillImageAddress = &still
	}
	return o
}

// Input is the inverse of SettingsFromInput, used to prefill forms.
func (s ConnectionSettings) Input() map[string]any {
	in := map[string]any{
		KeyMjpegURL:  s.Address,
		KeyVerifySSL: s.VerifyTLS,
	}
	if s.Name != "" {
		in[KeyName] = s.Name
	}
	if s.StillImageAddress != "" {
		in[KeyStillImageURL] = s.StillImageAddress
	}
	return in
}

// Title is the entry title: the name, or the address when no name was given.
func (s ConnectionSettings) Title() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Address
}

// Validate checks the URLs syntactically and returns the offending form keys.
func (s ConnectionSettings) Validate() (map[string]error, error) {
	err := structValidator().Struct(s)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}
	fields := make(map[string]error, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fmt.Errorf("%s failed %q validation", fe.Field(), fe.Tag())
	}
	return fields, nil
}
