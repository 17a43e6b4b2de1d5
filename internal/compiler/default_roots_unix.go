// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

//go:build aix || darwin || dragonfly || freebsd || (js && wasm) || linux || netbsd || openbsd || solaris

package compiler

import (
	"os"
	"path/filepath"
	"strings"
)

// getDefaultRoots follows the XDG base directory layout. The per-user data
// directory is searched before the system wide ones.
func getDefaultRoots(lookup func(string) (string, bool)) []string {
	expand := func(p string) string {
		return os.Expand(p, func(s string) string {
			v, _ := lookup(s)
			return v
		})
	}
	dataHome, ok := lookup("XDG_DATA_HOME")
	if !ok || dataHome == "" {
		dataHome = "$HOME/.local/share"
	}
	xdgDirs, ok := lookup("XDG_DATA_DIRS")
	if !ok || xdgDirs == "" {
		xdgDirs = "/usr/local/share/:/usr/share/"
	}
	roots := []string{filepath.Join(expand(dataHome), "fnc")}
	for _, dataDir := range strings.Split(xdgDirs, ":") {
		if dataDir == "" {
			continue
		}
		roots = append(roots, filepath.Join(expand(dataDir), "fnc"))
	}
	return roots
}
