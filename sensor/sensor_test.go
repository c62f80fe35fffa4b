/*
 * SPDX-FileCopyrightText: Mjpegflow Copyright © 2021 ODMedia B.V. All right reserved.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package sensor

import (
	"testing"

	"github.com/odmedia/mjpegflow/entry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupEntry(t *testing.T) {
	var got []Entity
	SetupEntry(entry.Entry{ID: "abc"}, func(e ...Entity) { got = append(got, e...) })
	require.Len(t, got, 1)
	assert.Equal(t, "abc", got[0].EntryID())
	assert.Equal(t, "Example Sensor", got[0].Name())
	assert.Equal(t, 42, got[0].NativeValue())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Setup(entry.Entry{ID: "b"})
	r.Setup(entry.Entry{ID: "a"})
	r.Setup(entry.Entry{ID: "a"})

	states := r.States()
	require.Len(t, states, 2)
	assert.Equal(t, State{EntryID: "a", Name: "Example Sensor", Value: 42}, states[0])
	assert.Equal(t, "b", states[1].EntryID)

	r.Unload("a")
	assert.Len(t, r.States(), 1)
}
