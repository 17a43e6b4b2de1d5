// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package target

import (
	"net/url"
	"path/filepath"
	"strings"
)

// Normalize processes a given compile target and converts it into a standard
// form.
//
// Targets may be any valid URI or file path. Only targets with a scheme are
// parsed as URIs, so '#' and '?' in a plain path are part of the file name.
// File paths and file URIs are converted to an absolute form rooted at "/" so
// that they resolve against each configured search root. All non-file URIs
// are left as-is with the expectation that they will be handled by some other
// FileSystem.
func Normalize(target string) string {
	if strings.HasPrefix(target, "file:") {
		if u, err := url.Parse(target); err == nil {
			target = u.Path
		}
	} else if strings.Contains(target, "://") {
		return target
	}
	if !filepath.IsAbs(target) {
		return filepath.Join("/", target)
	}
	return filepath.Clean(target)
}
