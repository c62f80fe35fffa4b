/*
 * SPDX-FileCopyrightText: Mjpegflow Copyright © 2021 ODMedia B.V. All right reserved.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package version

// Set through -ldflags "-X github.com/odmedia/mjpegflow/version.ProjectVersion=..."
var (
	ProjectVersion  string
	GitVersion      string
	CombinedVersion string
)

func init() {
	if ProjectVersion == "" {
		ProjectVersion = "0.1"
		GitVersion = "unknown"
	}
	CombinedVersion = ProjectVersion + "-" + GitVersion
}
