/*
 * SPDX-FileCopyrightText: Mjpegflow Copyright © 2021 ODMedia B.V. All right reserved.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var (
	Log zerolog.Logger
)

func init() {
	Log = New(os.Stdout)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// New returns a timestamped logger writing to out, human readable when out
// is a terminal.
func New(out *os.File) zerolog.Logger {
	var output io.Writer = out
	if fileInfo, err := out.Stat(); err == nil && (fileInfo.Mode()&os.ModeCharDevice) != 0 {
		output = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(output).With().Timestamp().Logger()
}

// Component returns the global logger tagged with a module name.
func Component(name string) zerolog.Logger {
	return Log.With().Str("module", name).Logger()
}

// SetLevel changes the global level, empty keeps the current one.
func SetLevel(level string) error {
	if level == "" {
		return nil
	}
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(l)
	return nil
}
