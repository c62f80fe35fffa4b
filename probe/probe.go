/*
 * SPDX-FileCopyrightText: Mjpegflow Copyright © 2021 ODMedia B.V. All right reserved.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

// Package probe checks that the camera URLs of a submission answer over HTTP.
package probe

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/odmedia/mjpegflow/config"
	"github.com/odmedia/mjpegflow/stats"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single probe, connect and response headers
// included.
const DefaultTimeout = config.DefaultProbeTimeout

// Error codes reported per form field.
const (
	ErrCannotConnect     = "cannot_connect"
	ErrAlreadyConfigured = "already_configured"
)

// Errors maps a form field to an error code, empty means valid.
type Errors map[string]string

// Executor runs blocking work away from the caller and waits for it.
type Executor interface {
	Run(ctx context.Context, fn func(context.Context) error) error
}

// StatusError is returned when the camera answers with a status outside
// 200-399.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

type Prober struct {
	timeout  time.Duration
	logger   zerolog.Logger
	stats    *stats.Stats
	verified *http.Client
	insecure *http.Client
}

// New returns a Prober, a zero timeout means DefaultTimeout. stats may be nil.
func New(timeout time.Duration, logger zerolog.Logger, s *stats.Stats) *Prober {
	if timeout <= 0 || timeout > DefaultTimeout {
		timeout = DefaultTimeout
	}
	insecureTransport := http.DefaultTransport.(*http.Transport).Clone()
	insecureTransport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // verify_ssl turned off by the user
	return &Prober{
		timeout:  timeout,
		logger:   logger,
		stats:    s,
		verified: &http.Client{Timeout: timeout, Transport: http.DefaultTransport.(*http.Transport).Clone()},
		insecure: &http.Client{Timeout: timeout, Transport: insecureTransport},
	}
}

// Probe issues one GET against url. The body is never read, only the status
// line and headers have to arrive within the timeout.
func (p *Prober) Probe(ctx context.Context, url string, verifyTLS bool) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	client := p.verified
	if !verifyTLS {
		client = p.insecure
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode, &StatusError{StatusCode: resp.StatusCode}
	}
	return resp.StatusCode, nil
}

// Validate probes the stream and still image URLs of s on ex. Every failure
// is logged and reported as cannot_connect against its field; it never
// returns an error of its own.
func (p *Prober) Validate(ctx context.Context, ex Executor, s config.ConnectionSettings) Errors {
	errs := Errors{}
	invalid, err := s.Validate()
	if err != nil {
		p.logger.Error().Err(err).Msg("validating settings")
	}
	fields := []struct {
		key string
		url string
	}{
		{config.KeyMjpegURL, s.Address},
		{config.KeyStillImageURL, s.StillImageAddress},
	}
	for _, f := range fields {
		f := f // per-iteration copy (go 1.22 loopvar semantics) for the job closure below
		if ferr, ok := invalid[f.key]; ok {
			p.logger.Warn().Err(ferr).Str("field", f.key).Str("url", f.url).Msg("invalid url")
			errs[f.key] = ErrCannotConnect
			continue
		}
		if f.url == "" {
			continue
		}
		var status int
		start := time.Now()
		err := ex.Run(ctx, func(ctx context.Context) error {
			var perr error
			status, perr = p.Probe(ctx, f.url, s.VerifyTLS)
			return perr
		})
		ps := &stats.ProbeStats{
			Field:      f.key,
			Url:        f.url,
			OK:         err == nil,
			DurationMS: time.Since(start).Milliseconds(),
		}
		// status is only safe to read once the job reported back
		var serr *StatusError
		switch {
		case err == nil:
			ps.StatusCode = status
		case errors.As(err, &serr):
			ps.StatusCode = serr.StatusCode
		}
		if err != nil {
			ps.Error = err.Error()
			p.logger.Error().Err(err).Str("field", f.key).Str("url", f.url).Msgf("cannot connect to %s", f.url)
			errs[f.key] = ErrCannotConnect
		}
		p.stats.HandleProbe(ps)
	}
	return errs
}
