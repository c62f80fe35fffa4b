/*
 * SPDX-FileCopyrightText: Mjpegflow Copyright © 2021 ODMedia B.V. All right reserved.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

// Package sensor is a minimal entity platform set up for every entry.
package sensor

import "github.com/odmedia/mjpegflow/entry"

// Entity is a value reported for one entry.
type Entity interface {
	EntryID() string
	Name() string
	NativeValue() any
}

type ExampleSensor struct {
	entryID string
	name    string
	value   int
}

func NewExampleSensor(entryID string) *ExampleSensor {
	return &ExampleSensor{entryID: entryID, name: "Example Sensor", value: 42}
}

func (s *ExampleSensor) Name() string     { return s.name }
func (s *ExampleSensor) NativeValue() any { return s.value }
func (s *ExampleSensor) EntryID() string  { return s.entryID }

// SetupEntry adds the entities of e.
func SetupEntry(e entry.Entry, add func(...Entity)) {
	add(NewExampleSensor(e.ID))
}
