/*
 * SPDX-FileCopyrightText: Mjpegflow Copyright © 2021 ODMedia B.V. All right reserved.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/odmedia/mjpegflow/logging"
)

// ProbeStats is the outcome of a single reachability probe.
type ProbeStats struct {
	Field      string
	Url        string
	OK         bool
	StatusCode int
	DurationMS int64
	Error      string
}

type Stats struct {
	stdout     io.Writer
	identifier string
	statsFile  *rotatelogs.RotateLogs
}

func SetupStats(stdout bool, identifier, filename string) (*Stats, error) {
	logging.Log.Info().Str("identifier", identifier).Msg("setting up stats")
	var stats Stats
	var err error
	if filename != "" {
		stats.statsFile, err = setupStatsFile(filename)
		if err != nil {
			return nil, err
		}
	}
	if stdout {
		stats.stdout = os.Stdout
	}
	stats.identifier = identifier
	return &stats, nil
}

func setupStatsFile(file string) (*rotatelogs.RotateLogs, error) {
	logging.Log.Info().Msgf("setting up stats file: %s", file)
	statsFilePattern := file + ".%Y%m%d"
	statsFile, err := rotatelogs.New(
		statsFilePattern,
		rotatelogs.WithClock(rotatelogs.Local),
		rotatelogs.WithLinkName(file),
	)
	if err != nil {
		return nil, err
	}
	return statsFile, nil
}

type statsPrepend struct {
	Timestamp  string
	Type       string
	Identifier string
}

type wrappedProbeStats struct {
	*statsPrepend
	*ProbeStats
}

// HandleProbe writes the probe outcome to every configured sink. A nil
// Stats discards it.
func (s *Stats) HandleProbe(p *ProbeStats) {
	if s == nil {
		return
	}
	now := time.Now()
	if s.stdout != nil || s.statsFile != nil {
		prepend := &statsPrepend{now.Format("2006-01-02T15:04:05-0700"), "ProbeStats", s.identifier}
		statsJson, err := json.Marshal(&wrappedProbeStats{prepend, p})
		if err != nil {
			logging.Log.Error().Str("module", "mjpegflow-stats").Err(err).Msg("error encoding probe stats")
			return
		}
		statsString := string(statsJson) + "\n"
		if s.stdout != nil {
			fmt.Fprint(s.stdout, statsString)
		}
		if s.statsFile != nil {
			if _, err := s.statsFile.Write([]byte(statsString)); err != nil {
				logging.Log.Error().Str("module", "mjpegflow-stats").Err(err).Msg("error writing to stats file")
			}
		}
	}

	if influxEnabled() {
		s.writeInfluxStats(p, now)
	}
}

func (s *Stats) Close() error {
	if s == nil || s.statsFile == nil {
		return nil
	}
	return s.statsFile.Close()
}
