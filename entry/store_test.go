/*
 * SPDX-FileCopyrightText: Mjpegflow Copyright © 2021 ODMedia B.V. All right reserved.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package entry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestStoreAddUpdateRemove(t *testing.T) {
	s := NewStore("")

	a, err := s.Add("Porch", Options{Address: "http://porch/video", VerifyTLS: true})
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)

	_, err = s.Add("Porch again", Options{Address: "http://porch/video"})
	assert.ErrorIs(t, err, ErrDuplicate)

	updated, err := s.UpdateOptions(a.ID, Options{Address: "http://porch/mjpeg", StillImageAddress: strptr("http://porch/still")})
	require.NoError(t, err)
	assert.Equal(t, "Porch", updated.Title)
	assert.False(t, updated.Options.VerifyTLS)

	got, err := s.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	require.NoError(t, s.Remove(a.ID))
	assert.ErrorIs(t, s.Remove(a.ID), ErrNotFound)
	_, err = s.UpdateOptions(a.ID, Options{})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, s.Entries())
}

func TestStorePersists(t *testing.T) {
	file := filepath.Join(t.TempDir(), "entries.yaml")
	s := NewStore(file)
	require.NoError(t, s.Load())

	a, err := s.Add("Porch", Options{Address: "http://porch/video", VerifyTLS: true})
	require.NoError(t, err)
	b, err := s.Add("Garage", Options{Address: "http://garage/video", StillImageAddress: strptr("http://garage/still")})
	require.NoError(t, err)

	reloaded := NewStore(file)
	require.NoError(t, reloaded.Load())
	entries := reloaded.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, a.ID, entries[0].ID)
	assert.Equal(t, b.Options, entries[1].Options)
}

func TestStoreLoadRejectsDuplicates(t *testing.T) {
	file := filepath.Join(t.TempDir(), "entries.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
entries:
  - id: a
    title: one
    options: {mjpeg_url: "http://cam", verify_ssl: true}
  - id: b
    title: two
    options: {mjpeg_url: "http://cam", verify_ssl: true}
`), 0o644))

	assert.ErrorIs(t, NewStore(file).Load(), ErrDuplicate)
}

func TestStoreUpdateRejectsOtherAddress(t *testing.T) {
	s := NewStore("")
	a, err := s.Add("A", Options{Address: "http://a/video", VerifyTLS: true})
	require.NoError(t, err)
	b, err := s.Add("B", Options{Address: "http://b/video", VerifyTLS: true})
	require.NoError(t, err)

	_, err = s.UpdateOptions(b.ID, Options{Address: "http://b/video"})
	require.NoError(t, err)

	_, err = s.UpdateOptions(b.ID, Options{Address: a.Options.Address, VerifyTLS: true})
	assert.ErrorIs(t, err, ErrDuplicate)
	got, err := s.Get(b.ID)
	require.NoError(t, err)
	assert.Equal(t, Options{Address: "http://b/video"}, got.Options)
}
