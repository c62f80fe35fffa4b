/*
 * SPDX-FileCopyrightText: Mjpegflow Copyright © 2021 ODMedia B.V. All right reserved.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package config

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		// report failures by form key instead of Go field name
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

func validateURL(u string) error {
	if u == "" {
		return errors.New("empty url not allowed")
	}
	check, err := url.Parse(u)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", u, err)
	}
	if check.Scheme == "" || check.Host == "" {
		return fmt.Errorf("url %s needs a scheme and a host", u)
	}
	return nil
}
