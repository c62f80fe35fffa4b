/*
 * SPDX-FileCopyrightText: Mjpegflow Copyright © 2021 ODMedia B.V. All right reserved.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

// Package entry holds the persisted camera entries.
package entry

import "time"

// Options are the persisted connection settings of an entry.
type Options struct {
	Address           string  `yaml:"mjpeg_url" json:"mjpeg_url"`
	StillImageAddress *string `yaml:"still_image_url" json:"still_image_url"`
	VerifyTLS         bool    `yaml:"verify_ssl" json:"verify_ssl"`
}

type Entry struct {
	ID        string    `yaml:"id" json:"entry_id"`
	Title     string    `yaml:"title" json:"title"`
	Options   Options   `yaml:"options" json:"options"`
	CreatedAt time.Time `yaml:"created" json:"created"`
}

// Matches reports whether the entry is configured for address.
func (e *Entry) Matches(address string) bool {
	return e.Options.Address == address
}
